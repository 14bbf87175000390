package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	lipgloss "github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/nulifyer/hoteldash/dropdown"
	"github.com/nulifyer/hoteldash/logger"
)

func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	header := m.renderHeader()
	footer := m.renderFooter()
	headerH := lipgloss.Height(header)
	bodyH := m.bodyHeight()

	var body string
	if m.showHelp {
		body = m.renderHelpOverlay(bodyH)
	} else {
		body = m.renderForm(bodyH)
	}

	parts := []string{header, body}
	if m.showLogs {
		parts = append(parts, m.renderLogPanel())
	}
	parts = append(parts, footer)
	content := lipgloss.JoinVertical(lipgloss.Left, parts...)

	if !m.showHelp {
		if lines, y := m.popoverRows(bodyH); len(lines) > 0 {
			content = dropdown.Overlay(content, lines, formIndent, headerH+y)
		}
	}

	if m.width > m.layoutWidth() {
		content = lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Top, content)
	}
	if m.zones != nil {
		return m.zones.Scan(content)
	}
	return content
}

// popoverRows returns the focused popover clipped to the body, and the body
// row its first line lands on.
func (m Model) popoverRows(bodyH int) ([]string, int) {
	dd := m.fields[m.focus].dd
	lines := dd.PopoverLines()
	if len(lines) == 0 {
		return nil, 0
	}
	top := m.controlTop(m.focus)
	y := top + controlHeight
	if dd.Placement() == dropdown.Above {
		y = top - len(lines)
	}
	if y < 0 {
		lines = lines[min(-y, len(lines)):]
		y = 0
	}
	if over := y + len(lines) - bodyH; over > 0 {
		lines = lines[:max(len(lines)-over, 0)]
	}
	return lines, y
}

func (m Model) renderHeader() string {
	title := styleHeaderTitle.Render("◈ HotelDash")
	source := "static catalog"
	if m.client != nil {
		source = m.client.BaseURL()
	}
	subtitle := styleSubtle.Render("hotel search filters · " + source)

	return styleHeaderBar.
		Width(m.layoutWidth()).
		Render(lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", subtitle))
}

// renderForm draws every field and returns the h rows starting at the
// current scroll offset.
func (m Model) renderForm(h int) string {
	indent := strings.Repeat(" ", formIndent)
	var lines []string
	for i := range m.fields {
		f := &m.fields[i]

		label := styleFieldLabel
		if i == m.focus {
			label = styleFieldLabelFocused
		}
		head := label.Render(f.label)
		if f.dd.Multi() {
			head += styleMuted.Render("  (multiple)")
		}
		if n := f.dd.Value().Len(); n > 0 && f.dd.Multi() {
			head += styleGreen.Render(fmt.Sprintf("  %d selected", n))
		}
		if err := f.dd.Err(); err != nil {
			head += "  " + styleRed.Render(truncate("✗ "+err.Error(), m.layoutWidth()/2))
		}

		lines = append(lines, indent+head)
		for _, row := range strings.Split(f.dd.ControlView(), "\n") {
			lines = append(lines, indent+row)
		}
		lines = append(lines, "")
	}

	start := min(m.scroll, len(lines))
	end := min(start+h, len(lines))
	window := append([]string(nil), lines[start:end]...)
	for len(window) < h {
		window = append(window, "")
	}
	return strings.Join(window, "\n")
}

func (m Model) renderLogPanel() string {
	title := styleAccentBold.Render("Logs")
	div := styleBorder.Render(strings.Repeat("─", m.layoutWidth()-6))
	content := lipgloss.JoinVertical(lipgloss.Left, title, div, m.logView.View())

	return stylePanel.Width(m.layoutWidth()).
		Render(content)
}

const footerKeyRows = 2

type footerKey struct {
	k string
	v string
}

func (m Model) footerKeys() []footerKey {
	if m.showHelp {
		return []footerKey{{"↑/↓", "scroll"}, {"esc/f1", "close help"}}
	}
	dd := m.fields[m.focus].dd
	if dd.IsOpen() {
		keys := []footerKey{
			{"↑/↓", "move"},
			{"enter", "select"},
			{"esc", "close"},
			{"type", "to search"},
		}
		if dd.Multi() {
			keys[1] = footerKey{"enter", "toggle"}
		}
		return keys
	}
	return []footerKey{
		{"tab", "next field"},
		{"enter", "open"},
		{"pgup/pgdn", "scroll"},
		{"ctrl+r", "reload"},
		{"ctrl+l", "logs"},
		{"f1", "help"},
		{"esc", "quit"},
	}
}

func (m Model) renderFooter() string {
	keys := m.footerKeys()

	w := m.layoutWidth() - 4 // padding
	var lines []string
	var cur []string
	curW := 0
	sep := "  ·  "
	sepW := 5

	for _, pair := range keys {
		entry := styleAccentBold.Render(pair.k) + " " + styleSubtle.Render(pair.v)
		entryW := lipgloss.Width(pair.k) + 1 + lipgloss.Width(pair.v)

		needed := entryW
		if len(cur) > 0 {
			needed += sepW
		}
		if curW+needed > w && len(cur) > 0 {
			lines = append(lines, strings.Join(cur, sep))
			cur = nil
			curW = 0
		}
		cur = append(cur, entry)
		if curW > 0 {
			curW += sepW
		}
		curW += entryW
	}
	if len(cur) > 0 {
		lines = append(lines, strings.Join(cur, sep))
	}
	// fixed height keeps popover anchors stable when the key set changes
	for len(lines) < footerKeyRows {
		lines = append(lines, "")
	}
	keybinds := strings.Join(lines[:footerKeyRows], "\n")

	// always reserve the status row so the height is stable
	statusStr := ""
	if m.statusLine != "" {
		s := styleGreen
		if m.statusIsErr {
			s = styleRed
		}
		statusStr = s.Render(m.statusLine)
	}

	return styleFooterBar.
		Width(m.layoutWidth()).
		Render(statusStr + "\n" + keybinds)
}

func (m Model) helpWidth() int {
	return clampW(m.layoutWidth()*60/100, 44, m.layoutWidth()-4)
}

type helpSection struct {
	title string
	rows  [][2]string
}

var helpSections = []helpSection{
	{
		title: "Form",
		rows: [][2]string{
			{"tab / shift+tab", "next / previous field"},
			{"pgup / pgdn", "scroll the form"},
			{"click", "focus a field"},
			{"ctrl+r", "reload every list"},
		},
	},
	{
		title: "Dropdown",
		rows: [][2]string{
			{"enter / ↓", "open"},
			{"type", "filter options"},
			{"↑ / ↓", "move highlight"},
			{"enter", "select (toggle in multi-select)"},
			{"esc", "close without changing"},
		},
	},
	{
		title: "View",
		rows: [][2]string{
			{"ctrl+l", "toggle log panel"},
			{"f1", "toggle this help"},
			{"esc / ctrl+c", "quit"},
		},
	},
}

func helpMarkdown() string {
	var b strings.Builder
	b.WriteString("# Keybindings\n")
	for _, sec := range helpSections {
		fmt.Fprintf(&b, "\n## %s\n\n| Key | Action |\n|---|---|\n", sec.title)
		for _, row := range sec.rows {
			fmt.Fprintf(&b, "| `%s` | %s |\n", row[0], row[1])
		}
	}
	return b.String()
}

// refreshHelpView renders the help markdown at the current overlay width and
// sizes the viewport.
func (m *Model) refreshHelpView() {
	// border (2) + padding (2)
	m.helpView.Width = m.helpWidth() - 4
	m.helpView.Height = max(m.bodyHeight()-4, 4)

	md := helpMarkdown()
	content := md
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(helpMarkdownStyle),
		glamour.WithWordWrap(m.helpView.Width),
	)
	if err == nil {
		content, err = r.Render(md)
	}
	if err != nil {
		logger.Warn("Rendering help: %v", err)
		content = md
	}
	m.helpView.SetContent(strings.TrimSpace(content))
}

func (m Model) renderHelpOverlay(h int) string {
	box := styleOverlay.
		Width(m.helpWidth()).
		Render(m.helpView.View())
	return lipgloss.Place(m.layoutWidth(), h, lipgloss.Center, lipgloss.Center, box)
}

func clampW(w, minW, maxW int) int {
	if w < minW {
		w = minW
	}
	if w > maxW {
		w = maxW
	}
	if w < 10 {
		w = 10
	}
	return w
}

func truncate(s string, n int) string {
	return ansi.Truncate(s, max(n, 1), "…")
}
