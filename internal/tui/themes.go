package tui

import "github.com/charmbracelet/lipgloss"

// Theme is a dashboard color scheme. Colors are #rrggbb.
type Theme struct {
	Name            string
	PrimaryAccent   string
	SecondaryAccent string
	ValueText       string
	WarnText        string
	LabelText       string
	MutedText       string
	Border          string
	SelectedBg      string
}

// Themes holds every built-in theme by key.
var Themes = map[string]Theme{
	"default": {
		Name:            "Default",
		PrimaryAccent:   "#7d56f4",
		SecondaryAccent: "#04b575",
		ValueText:       "#fafafa",
		WarnText:        "#ff5f87",
		LabelText:       "#a8a8a8",
		MutedText:       "#626262",
		Border:          "#3c3c3c",
		SelectedBg:      "#303030",
	},
	"gruvbox": {
		Name:            "Gruvbox",
		PrimaryAccent:   "#fabd2f",
		SecondaryAccent: "#b8bb26",
		ValueText:       "#ebdbb2",
		WarnText:        "#fb4934",
		LabelText:       "#a89984",
		MutedText:       "#665c54",
		Border:          "#504945",
		SelectedBg:      "#3c3836",
	},
	"tokyonight": {
		Name:            "Tokyo Night",
		PrimaryAccent:   "#7aa2f7",
		SecondaryAccent: "#9ece6a",
		ValueText:       "#c0caf5",
		WarnText:        "#f7768e",
		LabelText:       "#a9b1d6",
		MutedText:       "#565f89",
		Border:          "#3b4261",
		SelectedBg:      "#292e42",
	},
	"catppuccin": {
		Name:            "Catppuccin",
		PrimaryAccent:   "#cba6f7",
		SecondaryAccent: "#a6e3a1",
		ValueText:       "#cdd6f4",
		WarnText:        "#f38ba8",
		LabelText:       "#bac2de",
		MutedText:       "#6c7086",
		Border:          "#45475a",
		SelectedBg:      "#313244",
	},
}

// ThemeNames lists theme keys in display order.
var ThemeNames = []string{"default", "gruvbox", "tokyonight", "catppuccin"}

// CurrentTheme is the active theme.
var CurrentTheme = Themes["default"]

var (
	titleStyle  lipgloss.Style
	headerStyle lipgloss.Style
	labelStyle  lipgloss.Style
	valueStyle  lipgloss.Style
	mutedStyle  lipgloss.Style
	errorStyle  lipgloss.Style
	barStyle    lipgloss.Style
	boxStyle    lipgloss.Style
	heatStyle   lipgloss.Style
)

func init() {
	regenerateStyles()
}

// SetTheme switches to the named theme. Unknown names are ignored.
func SetTheme(name string) {
	theme, ok := Themes[name]
	if !ok {
		return
	}
	CurrentTheme = theme
	regenerateStyles()
}

func regenerateStyles() {
	t := CurrentTheme
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(t.ValueText)).
		Background(lipgloss.Color(t.PrimaryAccent)).
		Padding(0, 1)
	headerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(t.PrimaryAccent))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(t.LabelText))
	valueStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.ValueText))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(t.MutedText))
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.WarnText))
	barStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(t.SecondaryAccent))
	boxStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(t.Border)).
		Padding(0, 1)
	heatStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(t.PrimaryAccent))
}
