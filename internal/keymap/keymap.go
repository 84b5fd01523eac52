// Package keymap turns platform key codes into stable logical key names and
// classifies them. Only the identity of the physical key is kept.
package keymap

import "fmt"

// Key classes
const (
	ClassLetter   = "letter"
	ClassModifier = "modifier"
	ClassSpecial  = "special"
)

// macOS virtual keycodes (ANSI layout)
var darwinNames = map[int]string{
	0: "A", 1: "S", 2: "D", 3: "F", 4: "H", 5: "G", 6: "Z", 7: "X", 8: "C", 9: "V",
	11: "B", 12: "Q", 13: "W", 14: "E", 15: "R", 16: "Y", 17: "T",
	18: "1", 19: "2", 20: "3", 21: "4", 22: "6", 23: "5", 24: "Equal", 25: "9", 26: "7",
	27: "Minus", 28: "8", 29: "0", 30: "RightBracket", 31: "O", 32: "U", 33: "LeftBracket",
	34: "I", 35: "P", 36: "Return", 37: "L", 38: "J", 39: "Quote", 40: "K", 41: "Semicolon",
	42: "Backslash", 43: "Comma", 44: "Slash", 45: "N", 46: "M", 47: "Period", 48: "Tab",
	49: "Space", 50: "Grave", 51: "Backspace", 53: "Escape",
	54: "RightCmd", 55: "LeftCmd", 56: "LeftShift", 57: "CapsLock", 58: "LeftAlt",
	59: "LeftCtrl", 60: "RightShift", 61: "RightAlt", 62: "RightCtrl", 63: "Fn",
	96: "F5", 97: "F6", 98: "F7", 99: "F3", 100: "F8", 101: "F9", 103: "F11", 109: "F10",
	111: "F12", 115: "Home", 116: "PageUp", 117: "Delete", 118: "F4", 119: "End",
	120: "F2", 121: "PageDown", 122: "F1", 123: "Left", 124: "Right", 125: "Down", 126: "Up",
}

// Windows virtual-key codes that are not letters or digits
var windowsNames = map[uint32]string{
	0x08: "Backspace", 0x09: "Tab", 0x0D: "Return", 0x13: "Pause", 0x14: "CapsLock",
	0x1B: "Escape", 0x20: "Space", 0x21: "PageUp", 0x22: "PageDown", 0x23: "End",
	0x24: "Home", 0x25: "Left", 0x26: "Up", 0x27: "Right", 0x28: "Down",
	0x2C: "PrintScreen", 0x2D: "Insert", 0x2E: "Delete",
	0x5B: "LeftCmd", 0x5C: "RightCmd", 0x5D: "Menu",
	0xA0: "LeftShift", 0xA1: "RightShift", 0xA2: "LeftCtrl", 0xA3: "RightCtrl",
	0xA4: "LeftAlt", 0xA5: "RightAlt",
	0xBA: "Semicolon", 0xBB: "Equal", 0xBC: "Comma", 0xBD: "Minus", 0xBE: "Period",
	0xBF: "Slash", 0xC0: "Grave", 0xDB: "LeftBracket", 0xDC: "Backslash",
	0xDD: "RightBracket", 0xDE: "Quote",
}

var modifiers = map[string]bool{
	"LeftShift": true, "RightShift": true, "LeftCtrl": true, "RightCtrl": true,
	"LeftAlt": true, "RightAlt": true, "LeftCmd": true, "RightCmd": true,
	"Fn": true, "CapsLock": true,
}

// Darwin returns the key name for a macOS virtual keycode.
func Darwin(keycode int) string {
	if name, ok := darwinNames[keycode]; ok {
		return name
	}
	return fmt.Sprintf("Key%d", keycode)
}

// Windows returns the key name for a Windows virtual-key code.
func Windows(vk uint32) string {
	switch {
	case vk >= 'A' && vk <= 'Z', vk >= '0' && vk <= '9':
		return string(rune(vk))
	case vk >= 0x60 && vk <= 0x69:
		return fmt.Sprintf("Num%d", vk-0x60)
	case vk >= 0x70 && vk <= 0x87:
		return fmt.Sprintf("F%d", vk-0x6F)
	}
	if name, ok := windowsNames[vk]; ok {
		return name
	}
	return fmt.Sprintf("VK%d", vk)
}

// Classify returns the class of a logical key name.
func Classify(name string) string {
	if modifiers[name] {
		return ClassModifier
	}
	if len(name) == 1 && name[0] >= 'A' && name[0] <= 'Z' {
		return ClassLetter
	}
	return ClassSpecial
}

// ClassifyKeycode classifies a macOS virtual keycode.
func ClassifyKeycode(keycode int) string {
	return Classify(Darwin(keycode))
}

// IsModifier reports whether the name is a modifier key.
func IsModifier(name string) bool { return modifiers[name] }
