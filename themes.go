package main

import (
	"strings"

	lipgloss "github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/nulifyer/hoteldash/dropdown"
	"github.com/nulifyer/hoteldash/logger"
)

type Theme struct {
	Border lipgloss.TerminalColor
	Muted  lipgloss.TerminalColor
	Text   lipgloss.TerminalColor
	Subtle lipgloss.TerminalColor
	Accent lipgloss.TerminalColor
	Green  lipgloss.TerminalColor
	Yellow lipgloss.TerminalColor
	Red    lipgloss.TerminalColor
	Purple lipgloss.TerminalColor
	Cyan   lipgloss.TerminalColor
}

var validThemeNames = []string{"auto", "auto-light", "auto-dark", "dracula", "nord", "gruvbox"}

var themes = map[string]Theme{
	"auto": {
		Border: lipgloss.AdaptiveColor{Dark: "#30363d", Light: "#d0d7de"},
		Muted:  lipgloss.AdaptiveColor{Dark: "#484f58", Light: "#8c959f"},
		Text:   lipgloss.AdaptiveColor{Dark: "#e6edf3", Light: "#1f2328"},
		Subtle: lipgloss.AdaptiveColor{Dark: "#8b949e", Light: "#656d76"},
		Accent: lipgloss.AdaptiveColor{Dark: "#58a6ff", Light: "#0969da"},
		Green:  lipgloss.AdaptiveColor{Dark: "#3fb950", Light: "#1a7f37"},
		Yellow: lipgloss.AdaptiveColor{Dark: "#d29922", Light: "#9a6700"},
		Red:    lipgloss.AdaptiveColor{Dark: "#f85149", Light: "#cf222e"},
		Purple: lipgloss.AdaptiveColor{Dark: "#bc8cff", Light: "#8250df"},
		Cyan:   lipgloss.AdaptiveColor{Dark: "#56d7c2", Light: "#0d7680"},
	},
	"auto-light": {
		Border: lipgloss.Color("#d0d7de"),
		Muted:  lipgloss.Color("#8c959f"),
		Text:   lipgloss.Color("#1f2328"),
		Subtle: lipgloss.Color("#656d76"),
		Accent: lipgloss.Color("#0969da"),
		Green:  lipgloss.Color("#1a7f37"),
		Yellow: lipgloss.Color("#9a6700"),
		Red:    lipgloss.Color("#cf222e"),
		Purple: lipgloss.Color("#8250df"),
		Cyan:   lipgloss.Color("#0d7680"),
	},
	"auto-dark": {
		Border: lipgloss.Color("#30363d"),
		Muted:  lipgloss.Color("#484f58"),
		Text:   lipgloss.Color("#e6edf3"),
		Subtle: lipgloss.Color("#8b949e"),
		Accent: lipgloss.Color("#58a6ff"),
		Green:  lipgloss.Color("#3fb950"),
		Yellow: lipgloss.Color("#d29922"),
		Red:    lipgloss.Color("#f85149"),
		Purple: lipgloss.Color("#bc8cff"),
		Cyan:   lipgloss.Color("#56d7c2"),
	},
	"dracula": {
		Border: lipgloss.Color("#44475a"),
		Muted:  lipgloss.Color("#6272a4"),
		Text:   lipgloss.Color("#f8f8f2"),
		Subtle: lipgloss.Color("#6272a4"),
		Accent: lipgloss.Color("#8be9fd"),
		Green:  lipgloss.Color("#50fa7b"),
		Yellow: lipgloss.Color("#f1fa8c"),
		Red:    lipgloss.Color("#ff5555"),
		Purple: lipgloss.Color("#bd93f9"),
		Cyan:   lipgloss.Color("#8be9fd"),
	},
	"nord": {
		Border: lipgloss.Color("#3b4252"),
		Muted:  lipgloss.Color("#4c566a"),
		Text:   lipgloss.Color("#eceff4"),
		Subtle: lipgloss.Color("#d8dee9"),
		Accent: lipgloss.Color("#88c0d0"),
		Green:  lipgloss.Color("#a3be8c"),
		Yellow: lipgloss.Color("#ebcb8b"),
		Red:    lipgloss.Color("#bf616a"),
		Purple: lipgloss.Color("#b48ead"),
		Cyan:   lipgloss.Color("#8fbcbb"),
	},
	"gruvbox": {
		Border: lipgloss.Color("#665c54"),
		Muted:  lipgloss.Color("#a89984"),
		Text:   lipgloss.Color("#ebdbb2"),
		Subtle: lipgloss.Color("#bdae93"),
		Accent: lipgloss.Color("#83a598"),
		Green:  lipgloss.Color("#b8bb26"),
		Yellow: lipgloss.Color("#fabd2f"),
		Red:    lipgloss.Color("#fb4934"),
		Purple: lipgloss.Color("#d3869b"),
		Cyan:   lipgloss.Color("#8ec07c"),
	},
}

// initTheme applies the named theme to the package-level color and style
// vars, the dropdown styles and the log tag colors. Call it before NewModel.
// It returns the name actually applied.
func initTheme(name string, noColor bool) string {
	if noColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	name = strings.ToLower(strings.TrimSpace(name))
	t, ok := themes[name]
	if !ok {
		logger.Warn("Unknown theme %q, falling back to \"auto\"", name)
		name = "auto"
		t = themes[name]
	}

	colorBorder = t.Border
	colorMuted = t.Muted
	colorText = t.Text
	colorSubtle = t.Subtle
	colorAccent = t.Accent
	colorGreen = t.Green
	colorYellow = t.Yellow
	colorRed = t.Red
	colorPurple = t.Purple
	colorCyan = t.Cyan

	switch {
	case noColor:
		helpMarkdownStyle = "notty"
	case name == "auto-light", name == "auto" && !lipgloss.HasDarkBackground():
		helpMarkdownStyle = "light"
	default:
		helpMarkdownStyle = "dark"
	}

	rebuildStyles()
	return name
}

// rebuildStyles reassigns every style var from the current color vars.
func rebuildStyles() {
	styleMuted = lipgloss.NewStyle().Foreground(colorMuted)
	styleSubtle = lipgloss.NewStyle().Foreground(colorSubtle)
	styleText = lipgloss.NewStyle().Foreground(colorText)
	styleTextBold = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	styleAccent = lipgloss.NewStyle().Foreground(colorAccent)
	styleAccentBold = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	styleGreen = lipgloss.NewStyle().Foreground(colorGreen)
	styleYellow = lipgloss.NewStyle().Foreground(colorYellow)
	styleRed = lipgloss.NewStyle().Foreground(colorRed)
	styleCyan = lipgloss.NewStyle().Foreground(colorCyan)
	styleBorder = lipgloss.NewStyle().Foreground(colorBorder)

	styleHeaderTitle = styleAccentBold.Padding(0, 2)
	styleHeaderBar = lipgloss.NewStyle().BorderBottom(true).BorderStyle(lipgloss.NormalBorder()).BorderBottomForeground(colorBorder)
	styleFooterBar = lipgloss.NewStyle().BorderTop(true).BorderStyle(lipgloss.NormalBorder()).BorderTopForeground(colorBorder).Padding(0, 2)
	styleOverlay = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorAccent).Padding(1, 2)
	stylePanel = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorBorder).Padding(0, 1)

	styleFieldLabel = styleSubtle
	styleFieldLabelFocused = styleAccentBold

	dropdownStyles = dropdown.NewStyles(dropdown.Palette{
		Border: colorBorder,
		Muted:  colorMuted,
		Text:   colorText,
		Subtle: colorSubtle,
		Accent: colorAccent,
		Green:  colorGreen,
		Red:    colorRed,
		Purple: colorPurple,
	})

	logger.SetPalette(logger.Palette{
		Trace: colorSubtle,
		Debug: colorCyan,
		Info:  colorGreen,
		Warn:  colorYellow,
		Error: colorRed,
	})
}
