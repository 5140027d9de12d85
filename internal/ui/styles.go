package ui

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme represents the current color scheme
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

type themeColors struct {
	Bg, Surface, Border, Text, Dim lipgloss.Color
	Accent, Match, Header, Error   lipgloss.Color
}

// Tokyo Night
var darkColors = themeColors{
	Bg:      lipgloss.Color("#1a1b26"),
	Surface: lipgloss.Color("#24283b"),
	Border:  lipgloss.Color("#414868"),
	Text:    lipgloss.Color("#c0caf5"),
	Dim:     lipgloss.Color("#787fa0"),
	Accent:  lipgloss.Color("#7aa2f7"),
	Match:   lipgloss.Color("#e0af68"),
	Header:  lipgloss.Color("#7dcfff"),
	Error:   lipgloss.Color("#f7768e"),
}

// Tokyo Night Light
var lightColors = themeColors{
	Bg:      lipgloss.Color("#d5d6db"),
	Surface: lipgloss.Color("#e9e9ec"),
	Border:  lipgloss.Color("#9699a3"),
	Text:    lipgloss.Color("#343b58"),
	Dim:     lipgloss.Color("#6a6d7c"),
	Accent:  lipgloss.Color("#34548a"),
	Match:   lipgloss.Color("#8f5e15"),
	Header:  lipgloss.Color("#166775"),
	Error:   lipgloss.Color("#8c4351"),
}

var (
	currentTheme = ThemeDark
	colors       themeColors

	// themeMu guards the style variables during a live theme switch
	themeMu sync.RWMutex
)

// Palette styles, rebuilt by InitTheme
var (
	FrameStyle       lipgloss.Style
	InputBoxStyle    lipgloss.Style
	GroupHeaderStyle lipgloss.Style
	RowStyle         lipgloss.Style
	RowSelectedStyle lipgloss.Style
	SubtitleStyle    lipgloss.Style
	IconStyle        lipgloss.Style
	HintStyle        lipgloss.Style
	EmptyStyle       lipgloss.Style
	ErrorStyle       lipgloss.Style
	CompletionStyle  lipgloss.Style
)

// InitTheme sets the active colors. Anything other than "light" is dark.
// Must be called before rendering; safe to call again on a live switch.
func InitTheme(theme string) {
	themeMu.Lock()
	defer themeMu.Unlock()
	if theme == string(ThemeLight) {
		currentTheme, colors = ThemeLight, lightColors
	} else {
		currentTheme, colors = ThemeDark, darkColors
	}
	initStyles()
}

// GetCurrentTheme returns the active theme
func GetCurrentTheme() Theme {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return currentTheme
}

func init() {
	InitTheme(string(ThemeDark))
}

func initStyles() {
	FrameStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colors.Border).
		Padding(0, 1)

	InputBoxStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colors.Accent).
		Padding(0, 1)

	GroupHeaderStyle = lipgloss.NewStyle().
		Foreground(colors.Header).
		Bold(true)

	RowStyle = lipgloss.NewStyle().
		Foreground(colors.Text).
		Padding(0, 1)

	RowSelectedStyle = lipgloss.NewStyle().
		Foreground(colors.Bg).
		Background(colors.Accent).
		Bold(true).
		Padding(0, 1)

	SubtitleStyle = lipgloss.NewStyle().
		Foreground(colors.Dim)

	IconStyle = lipgloss.NewStyle().
		Foreground(colors.Match)

	HintStyle = lipgloss.NewStyle().
		Foreground(colors.Dim)

	EmptyStyle = lipgloss.NewStyle().
		Foreground(colors.Dim).
		Italic(true)

	ErrorStyle = lipgloss.NewStyle().
		Foreground(colors.Error).
		Bold(true)

	CompletionStyle = lipgloss.NewStyle().
		Foreground(colors.Dim).
		Italic(true)
}
