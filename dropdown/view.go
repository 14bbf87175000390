package dropdown

import (
	"fmt"
	"strconv"
	"strings"

	lipgloss "github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

func (m Model) zoneID(part string) string {
	return "dropdown-" + strconv.Itoa(m.id) + "-" + part
}

func (m Model) rowZoneID(key string) string {
	return m.zoneID("row-" + key)
}

func (m Model) mark(id, s string) string {
	if m.cfg.Zones == nil {
		return s
	}
	return m.cfg.Zones.Mark(id, s)
}

// window is the slice of visible options currently scrolled into view.
func (m Model) window() []Option {
	visible := m.Visible()
	start := min(m.offset, len(visible))
	end := min(start+m.cfg.MaxVisible, len(visible))
	return visible[start:end]
}

// Summary is the text shown in the idle control: the selected label, the
// joined labels of a small multi-selection, or a count beyond the display
// threshold. SelectedRenderer replaces all of it.
func (m Model) Summary() string {
	resolved := m.Selected()
	if m.cfg.SelectedRenderer != nil {
		return m.cfg.SelectedRenderer(resolved)
	}
	switch n := len(resolved); {
	case n == 0:
		return ""
	case n == 1:
		return m.schema.Label(resolved[0])
	case n <= m.cfg.DisplayThreshold:
		labels := make([]string, n)
		for i, o := range resolved {
			labels[i] = m.schema.Label(o)
		}
		return strings.Join(labels, ", ")
	default:
		return fmt.Sprintf("%d items selected", n)
	}
}

// ControlView renders the input box. While the user is searching it shows
// the query; otherwise the summary or the placeholder.
func (m Model) ControlView() string {
	inner := m.cfg.Width - 2 // horizontal padding
	var content string
	switch {
	case m.focused && (m.open || m.input.Value() != ""):
		content = m.input.View()
	default:
		if summary := m.Summary(); summary != "" {
			content = m.styles.Value.Render(ansi.Truncate(summary, inner, "…"))
		} else {
			content = m.styles.Placeholder.Render(ansi.Truncate(m.cfg.Placeholder, inner, "…"))
		}
	}

	style := m.styles.Control
	switch {
	case m.cfg.Disabled:
		style = m.styles.ControlDisabled
	case m.focused:
		style = m.styles.ControlFocused
	}
	return m.mark(m.zoneID("control"), style.Width(m.cfg.Width).Render(content))
}

// PopoverLines renders the open popover, one string per screen row, for
// hosts that place it themselves. It is nil while closed.
func (m Model) PopoverLines() []string {
	if !m.open {
		return nil
	}
	inner := m.cfg.Width

	var body []string
	visible := m.Visible()
	switch {
	case m.src.loading:
		body = append(body, m.mark(m.zoneID("status"),
			m.spinner.View()+" "+m.styles.Status.Render("Loading…")))

	case len(visible) == 0 && m.src.err != nil:
		body = append(body, m.mark(m.zoneID("status"),
			m.styles.Error.Render("✗ Could not load options")))

	case len(visible) == 0:
		body = append(body, m.mark(m.zoneID("status"),
			m.styles.Status.Render("No options found")))

	default:
		for i, o := range m.window() {
			body = append(body, m.renderRow(o, m.offset+i == m.cursor, inner))
		}
	}

	box := m.styles.Popover.Width(inner).Render(strings.Join(body, "\n"))
	return strings.Split(box, "\n")
}

func (m Model) renderRow(o Option, active bool, width int) string {
	k, _ := m.schema.Key(o)

	marker := "  "
	if active {
		marker = m.styles.Cursor.Render("▶ ")
	}
	check := "  "
	if m.value.Has(k) {
		check = m.styles.Check.Render("✓ ")
	}
	room := max(width-4, 1)

	var content string
	if m.cfg.OptionRenderer != nil {
		content = ansi.Truncate(m.cfg.OptionRenderer(o), room, "…")
	} else {
		labelStyle := m.styles.Row
		if active {
			labelStyle = m.styles.RowActive
		}
		label := m.schema.Label(o)
		if badge, ok := m.schema.Badge(o); ok {
			tag := " [" + badge + "]"
			label = ansi.Truncate(label, max(room-lipgloss.Width(tag), 1), "…")
			content = labelStyle.Render(label) + m.styles.Badge.Render(tag)
		} else {
			content = labelStyle.Render(ansi.Truncate(label, room, "…"))
		}
	}
	return m.mark(m.rowZoneID(k), marker+check+content)
}

// View renders the control with the popover stacked on the side chosen by
// the placement decision.
func (m Model) View() string {
	control := m.ControlView()
	lines := m.PopoverLines()
	if lines == nil {
		return control
	}
	popover := strings.Join(lines, "\n")
	if m.pos.placement == Above {
		return lipgloss.JoinVertical(lipgloss.Left, popover, control)
	}
	return lipgloss.JoinVertical(lipgloss.Left, control, popover)
}
