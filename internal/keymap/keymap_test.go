package keymap

import "testing"

// TestClassifyKeycode tests the key type classification function
func TestClassifyKeycode(t *testing.T) {
	tests := []struct {
		name     string
		keycode  int
		expected string
	}{
		// Letters (A-Z physical keys on ANSI layout)
		{"A key (keycode 0)", 0, "letter"},
		{"S key (keycode 1)", 1, "letter"},
		{"D key (keycode 2)", 2, "letter"},
		{"Q key (keycode 12)", 12, "letter"},
		{"Z key (keycode 6)", 6, "letter"},
		{"M key (keycode 46)", 46, "letter"},

		// Modifier keys
		{"Left Shift (keycode 56)", 56, "modifier"},
		{"Right Shift (keycode 60)", 60, "modifier"},
		{"Left Control (keycode 59)", 59, "modifier"},
		{"Left Option (keycode 58)", 58, "modifier"},
		{"Left Command (keycode 55)", 55, "modifier"},
		{"Right Command (keycode 54)", 54, "modifier"},
		{"Fn key (keycode 63)", 63, "modifier"},
		{"Caps Lock (keycode 57)", 57, "modifier"},

		// Special keys
		{"Space (keycode 49)", 49, "special"},
		{"Return (keycode 36)", 36, "special"},
		{"Backspace (keycode 51)", 51, "special"},
		{"1 key (keycode 18)", 18, "special"},
		{"unmapped keycode", 200, "special"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ClassifyKeycode(tt.keycode)
			if result != tt.expected {
				t.Errorf("ClassifyKeycode(%d) = %q, want %q", tt.keycode, result, tt.expected)
			}
		})
	}
}

func TestDarwinNames(t *testing.T) {
	tests := []struct {
		keycode  int
		expected string
	}{
		{0, "A"},
		{11, "B"},
		{49, "Space"},
		{56, "LeftShift"},
		{122, "F1"},
		{200, "Key200"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := Darwin(tt.keycode); got != tt.expected {
				t.Errorf("Darwin(%d) = %q, want %q", tt.keycode, got, tt.expected)
			}
		})
	}
}

func TestWindowsNames(t *testing.T) {
	tests := []struct {
		vk       uint32
		expected string
	}{
		{'A', "A"},
		{'7', "7"},
		{0x20, "Space"},
		{0x60, "Num0"},
		{0x70, "F1"},
		{0x7B, "F12"},
		{0xA0, "LeftShift"},
		{0xFF, "VK255"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := Windows(tt.vk); got != tt.expected {
				t.Errorf("Windows(%#x) = %q, want %q", tt.vk, got, tt.expected)
			}
		})
	}
}

func TestDarwinAndWindowsAgreeOnNames(t *testing.T) {
	// The same physical key must land in the same counter on both platforms
	if Darwin(0) != Windows('A') {
		t.Errorf("A differs: %q vs %q", Darwin(0), Windows('A'))
	}
	if Darwin(56) != Windows(0xA0) {
		t.Errorf("LeftShift differs: %q vs %q", Darwin(56), Windows(0xA0))
	}
	if Darwin(49) != Windows(0x20) {
		t.Errorf("Space differs: %q vs %q", Darwin(49), Windows(0x20))
	}
}
