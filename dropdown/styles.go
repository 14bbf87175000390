package dropdown

import lipgloss "github.com/charmbracelet/lipgloss"

// Palette is the subset of a console theme the dropdown draws with.
type Palette struct {
	Border lipgloss.TerminalColor
	Muted  lipgloss.TerminalColor
	Text   lipgloss.TerminalColor
	Subtle lipgloss.TerminalColor
	Accent lipgloss.TerminalColor
	Green  lipgloss.TerminalColor
	Red    lipgloss.TerminalColor
	Purple lipgloss.TerminalColor
}

type Styles struct {
	Control         lipgloss.Style
	ControlFocused  lipgloss.Style
	ControlDisabled lipgloss.Style
	Placeholder     lipgloss.Style
	Value           lipgloss.Style

	Popover   lipgloss.Style
	Row       lipgloss.Style
	RowActive lipgloss.Style
	Cursor    lipgloss.Style
	Check     lipgloss.Style
	Badge     lipgloss.Style
	Status    lipgloss.Style
	Error     lipgloss.Style
	Spinner   lipgloss.Style
}

func DefaultPalette() Palette {
	return Palette{
		Border: lipgloss.Color("#30363d"),
		Muted:  lipgloss.Color("#484f58"),
		Text:   lipgloss.Color("#e6edf3"),
		Subtle: lipgloss.Color("#8b949e"),
		Accent: lipgloss.Color("#58a6ff"),
		Green:  lipgloss.Color("#3fb950"),
		Red:    lipgloss.Color("#f85149"),
		Purple: lipgloss.Color("#bc8cff"),
	}
}

func DefaultStyles() Styles { return NewStyles(DefaultPalette()) }

func NewStyles(p Palette) Styles {
	box := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	return Styles{
		Control:         box.BorderForeground(p.Border),
		ControlFocused:  box.BorderForeground(p.Accent),
		ControlDisabled: box.BorderForeground(p.Muted).Foreground(p.Muted),
		Placeholder:     lipgloss.NewStyle().Foreground(p.Muted),
		Value:           lipgloss.NewStyle().Foreground(p.Text),

		Popover:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.Accent),
		Row:       lipgloss.NewStyle().Foreground(p.Text),
		RowActive: lipgloss.NewStyle().Foreground(p.Accent).Bold(true),
		Cursor:    lipgloss.NewStyle().Foreground(p.Accent),
		Check:     lipgloss.NewStyle().Foreground(p.Green),
		Badge:     lipgloss.NewStyle().Foreground(p.Purple),
		Status:    lipgloss.NewStyle().Foreground(p.Subtle),
		Error:     lipgloss.NewStyle().Foreground(p.Red),
		Spinner:   lipgloss.NewStyle().Foreground(p.Accent),
	}
}
