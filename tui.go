package main

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	bubbles_viewport "github.com/charmbracelet/bubbles/viewport"
	bubble_tea "github.com/charmbracelet/bubbletea"
	lipgloss "github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/nulifyer/hoteldash/catalog"
	"github.com/nulifyer/hoteldash/config"
	"github.com/nulifyer/hoteldash/dropdown"
	"github.com/nulifyer/hoteldash/logger"
)

const (
	logPanelLines       = 6
	logPanelOuterHeight = logPanelLines + 4 // border(2) + title(1) + divider(1)
	maxLayoutWidth      = 120
	minLayoutWidth      = 60

	formIndent     = 2
	controlHeight  = 3 // rounded border around one line
	fieldRowHeight = controlHeight + 2

	resizeDelay     = 50 * time.Millisecond
	userSearchDelay = 300 * time.Millisecond
	logPollInterval = 250 * time.Millisecond
)

const (
	fieldHotel = iota
	fieldAmenities
	fieldThematics
	fieldCondition
	fieldUser
	fieldCount
)

type resizeDebounceMsg struct {
	id int
}

type userSearchDebounceMsg struct {
	id    int
	query string
}

type logPollMsg struct{}

type formField struct {
	label    string
	resource catalog.Resource
	dd       dropdown.Model
}

type appOptions struct {
	client   *catalog.Client // nil: static catalog only
	static   catalog.Static
	zones    *zone.Manager
	ring     *logger.Ring
	dropdown config.Dropdown
}

type Model struct {
	width  int
	height int

	fields [fieldCount]formField
	focus  int
	scroll int

	hub      *dropdown.Hub
	client   *catalog.Client
	static   catalog.Static
	zones    *zone.Manager
	initCmds []bubble_tea.Cmd

	refreshGen   int
	userSearchID int

	showHelp bool
	helpView bubbles_viewport.Model

	ring     *logger.Ring
	logSeen  uint64
	logLines []string
	logView  bubbles_viewport.Model
	showLogs bool

	statusLine  string
	statusIsErr bool

	resizeDebounceID int
}

func NewModel(opts appOptions) Model {
	m := Model{
		hub:      dropdown.NewHub(),
		client:   opts.client,
		static:   opts.static,
		zones:    opts.zones,
		ring:     opts.ring,
		helpView: bubbles_viewport.New(60, 20),
		logView:  bubbles_viewport.New(80, logPanelLines),
	}

	base := dropdown.Config{
		Width:            opts.dropdown.Width,
		PopoverHeight:    opts.dropdown.PopoverHeight,
		DisplayThreshold: opts.dropdown.DisplayThreshold,
		Mode:             dropdown.ParseMatchMode(opts.dropdown.Search),
		Styles:           &dropdownStyles,
		Events:           m.hub,
		Deps:             []any{0},
	}
	if opts.zones != nil {
		base.Zones = dropdown.BubbleZones(opts.zones)
	}

	field := func(label string, r catalog.Resource, tweak func(*dropdown.Config)) formField {
		cfg := base
		cfg.Name = label
		cfg.Schema = catalog.SchemaFor(r)
		cfg.Options = opts.static.Options(r)
		if m.client != nil {
			cfg.Fetcher = m.client.Fetcher(r, nil)
		}
		if tweak != nil {
			tweak(&cfg)
		}
		return formField{label: label, resource: r, dd: dropdown.New(cfg)}
	}

	m.fields[fieldHotel] = field("Hotel", catalog.Hotels, func(c *dropdown.Config) {
		c.Placeholder = "Choose a hotel…"
	})
	m.fields[fieldAmenities] = field("Amenities", catalog.Amenities, func(c *dropdown.Config) {
		c.Multi = true
		c.Placeholder = "Any amenity"
		if m.client != nil {
			// Scoped to the chosen hotel once there is one.
			c.Fetcher = nil
			c.Disabled = true
			c.Placeholder = "Choose a hotel first"
		}
	})
	m.fields[fieldThematics] = field("Thematics", catalog.Thematics, func(c *dropdown.Config) {
		c.Multi = true
		c.Placeholder = "Any theme"
	})
	m.fields[fieldCondition] = field("Condition", catalog.Conditions, func(c *dropdown.Config) {
		c.Fetcher = nil
		if len(c.Options) == 0 {
			c.Options = defaultConditions()
		}
		c.Placeholder = "Any condition"
	})
	m.fields[fieldUser] = field("Assigned user", catalog.Users, func(c *dropdown.Config) {
		c.Placeholder = "Search users…"
	})

	for i := range m.fields {
		if cmd := m.fields[i].dd.Init(); cmd != nil {
			m.initCmds = append(m.initCmds, cmd)
		}
	}

	// start on the first field with its popover closed
	if cmd := m.fields[fieldHotel].dd.Focus(); cmd != nil {
		m.initCmds = append(m.initCmds, cmd)
	}
	m.fields[fieldHotel].dd.Close()
	return m
}

func (m Model) Init() bubble_tea.Cmd {
	cmds := append([]bubble_tea.Cmd(nil), m.initCmds...)
	if m.ring != nil {
		cmds = append(cmds, logPollCmd())
	}
	return bubble_tea.Batch(cmds...)
}

func logPollCmd() bubble_tea.Cmd {
	return bubble_tea.Tick(logPollInterval, func(time.Time) bubble_tea.Msg { return logPollMsg{} })
}

func (m Model) Update(msg bubble_tea.Msg) (bubble_tea.Model, bubble_tea.Cmd) {
	var cmds []bubble_tea.Cmd

	switch msg := msg.(type) {

	case bubble_tea.WindowSizeMsg:
		first := m.width == 0
		m.width = msg.Width
		m.height = msg.Height
		if first {
			m.relayout()
		}
		m.resizeDebounceID++
		id := m.resizeDebounceID
		cmds = append(cmds, bubble_tea.Tick(resizeDelay, func(t time.Time) bubble_tea.Msg {
			return resizeDebounceMsg{id: id}
		}))

	case resizeDebounceMsg:
		if msg.id == m.resizeDebounceID {
			m.relayout()
			m.hub.Publish(dropdown.ViewportEvent{Kind: dropdown.EventResize, Height: m.bodyHeight()})
			if m.showHelp {
				m.refreshHelpView()
			}
		}

	case logPollMsg:
		m.pollLogs()
		cmds = append(cmds, logPollCmd())

	case dropdown.ChangeMsg:
		cmds = append(cmds, m.applyChange(msg))

	case dropdown.QueryMsg:
		cmds = append(cmds, m.onQuery(msg))

	case dropdown.FocusRequestMsg:
		if i := m.fieldByID(msg.ID); i >= 0 {
			cmds = append(cmds, m.focusField(i))
		}

	case userSearchDebounceMsg:
		if msg.id == m.userSearchID {
			cmds = append(cmds, m.searchUsers(msg.query))
		}

	case bubble_tea.MouseMsg:
		cmds = append(cmds, m.handleMouse(msg))

	case bubble_tea.KeyMsg:
		cmds = append(cmds, m.handleKey(msg))

	default:
		// load results and spinner ticks; each dropdown ignores the ones
		// that are not its own
		for i := range m.fields {
			var cmd bubble_tea.Cmd
			m.fields[i].dd, cmd = m.fields[i].dd.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, bubble_tea.Batch(cmds...)
}

func (m *Model) setStatus(text string, isErr bool) {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	m.statusLine = truncate(text, m.layoutWidth()-6)
	m.statusIsErr = isErr
}

func (m *Model) handleKey(msg bubble_tea.KeyMsg) bubble_tea.Cmd {
	if m.showHelp {
		switch msg.String() {
		case "esc", "f1", "q":
			m.showHelp = false
			return nil
		}
		var cmd bubble_tea.Cmd
		m.helpView, cmd = m.helpView.Update(msg)
		return cmd
	}

	dd := &m.fields[m.focus].dd
	switch msg.String() {
	case "ctrl+c":
		if dd.IsOpen() {
			dd.Close()
			return nil
		}
		return bubble_tea.Quit
	case "esc":
		if !dd.IsOpen() {
			return bubble_tea.Quit
		}
	case "tab":
		return m.focusField(m.nextField(1))
	case "shift+tab":
		return m.focusField(m.nextField(-1))
	case "pgdown":
		m.scrollBy(max(m.bodyHeight()/2, 1))
		return nil
	case "pgup":
		m.scrollBy(-max(m.bodyHeight()/2, 1))
		return nil
	case "ctrl+r":
		return m.reloadAll()
	case "f1":
		m.showHelp = true
		m.refreshHelpView()
		return nil
	case "ctrl+l":
		m.showLogs = !m.showLogs
		m.relayout()
		return nil
	}

	var cmd bubble_tea.Cmd
	*dd, cmd = dd.Update(msg)
	return cmd
}

func (m *Model) handleMouse(msg bubble_tea.MouseMsg) bubble_tea.Cmd {
	if m.showHelp {
		var cmd bubble_tea.Cmd
		m.helpView, cmd = m.helpView.Update(msg)
		return cmd
	}
	switch msg.Button {
	case bubble_tea.MouseButtonWheelUp:
		m.scrollBy(-1)
		return nil
	case bubble_tea.MouseButtonWheelDown:
		m.scrollBy(1)
		return nil
	}

	var cmds []bubble_tea.Cmd
	for i := range m.fields {
		var cmd bubble_tea.Cmd
		m.fields[i].dd, cmd = m.fields[i].dd.Update(msg)
		cmds = append(cmds, cmd)
	}
	return bubble_tea.Batch(cmds...)
}

func (m *Model) fieldByID(id int) int {
	for i := range m.fields {
		if m.fields[i].dd.ID() == id {
			return i
		}
	}
	return -1
}

// nextField walks from the focused field in direction dir, skipping
// disabled ones.
func (m *Model) nextField(dir int) int {
	for step := 1; step <= fieldCount; step++ {
		i := ((m.focus+dir*step)%fieldCount + fieldCount) % fieldCount
		if !m.fields[i].dd.Disabled() {
			return i
		}
	}
	return m.focus
}

func (m *Model) focusField(i int) bubble_tea.Cmd {
	if m.fields[i].dd.Disabled() {
		return nil
	}
	if i != m.focus {
		m.fields[m.focus].dd.Blur()
	}
	m.focus = i
	m.ensureVisible(i)
	m.layoutAnchors()
	return m.fields[i].dd.Focus()
}

func (m *Model) applyChange(msg dropdown.ChangeMsg) bubble_tea.Cmd {
	i := m.fieldByID(msg.ID)
	if i < 0 {
		return nil
	}
	f := &m.fields[i]
	if f.dd.Superseded(msg) {
		return nil
	}
	f.dd.SetValue(msg.Value)
	logger.Info("%s set to %v", f.label, msg.Value.Keys())

	if summary := f.dd.Summary(); summary != "" {
		m.setStatus(fmt.Sprintf("✓ %s: %s", f.label, summary), false)
	} else {
		m.setStatus(fmt.Sprintf("✓ %s cleared", f.label), false)
	}

	if i == fieldHotel {
		return m.rescopeAmenities()
	}
	return nil
}

// rescopeAmenities points the amenities list at the chosen hotel and drops
// any amenities picked for the previous one.
func (m *Model) rescopeAmenities() bubble_tea.Cmd {
	hotel, ok := m.fields[fieldHotel].dd.Value().Key()
	am := &m.fields[fieldAmenities].dd
	am.SetValue(dropdown.None())

	if m.client == nil {
		return am.SetOptions(scopeByHotel(m.static.Options(catalog.Amenities), hotel))
	}
	if !ok {
		am.SetDisabled(true)
		return am.SetFetcher(nil)
	}
	am.SetDisabled(false)
	return am.SetFetcher(m.client.Fetcher(catalog.Amenities, url.Values{"hotel": {hotel}}))
}

// scopeByHotel keeps records tagged with hotel, plus untagged ones.
func scopeByHotel(items []dropdown.Option, hotel string) []dropdown.Option {
	if hotel == "" {
		return items
	}
	out := make([]dropdown.Option, 0, len(items))
	for _, o := range items {
		v, tagged := o["hotel"]
		if !tagged || fmt.Sprint(v) == hotel {
			out = append(out, o)
		}
	}
	return out
}

func (m *Model) onQuery(msg dropdown.QueryMsg) bubble_tea.Cmd {
	if m.client == nil || msg.ID != m.fields[fieldUser].dd.ID() {
		return nil
	}
	m.userSearchID++
	id, query := m.userSearchID, msg.Query
	return bubble_tea.Tick(userSearchDelay, func(time.Time) bubble_tea.Msg {
		return userSearchDebounceMsg{id: id, query: query}
	})
}

func (m *Model) searchUsers(query string) bubble_tea.Cmd {
	var params url.Values
	if query != "" {
		params = url.Values{"q": {query}}
	}
	logger.Debug("searching users for %q", query)
	return m.fields[fieldUser].dd.SetFetcher(m.client.Fetcher(catalog.Users, params))
}

// reloadAll bumps the refresh generation every dropdown depends on.
func (m *Model) reloadAll() bubble_tea.Cmd {
	m.refreshGen++
	logger.Info("reloading all fields (generation %d)", m.refreshGen)
	var cmds []bubble_tea.Cmd
	for i := range m.fields {
		cmds = append(cmds, m.fields[i].dd.SetDeps(m.refreshGen))
	}
	m.setStatus("↻ Reloading…", false)
	return bubble_tea.Batch(cmds...)
}

func (m *Model) shutdown() {
	for i := range m.fields {
		m.fields[i].dd.Unmount()
	}
}

// -------------------------------
// Layout
// --------------------------------

// layoutWidth returns the effective width for the form, capped so the UI
// stays readable on very wide terminals.
func (m *Model) layoutWidth() int {
	return clampW(m.width, minLayoutWidth, maxLayoutWidth)
}

func (m *Model) headerHeight() int { return lipgloss.Height(m.renderHeader()) }
func (m *Model) footerHeight() int { return lipgloss.Height(m.renderFooter()) }

func (m *Model) bodyHeight() int {
	h := m.height - m.headerHeight() - m.footerHeight()
	if m.showLogs {
		h -= logPanelOuterHeight
	}
	return max(h, 0)
}

func (m *Model) formHeight() int { return fieldCount * fieldRowHeight }

func (m *Model) clampScroll() {
	m.scroll = max(min(m.scroll, m.formHeight()-m.bodyHeight()), 0)
}

func (m *Model) scrollBy(delta int) {
	prev := m.scroll
	m.scroll += delta
	m.clampScroll()
	if m.scroll == prev {
		return
	}
	m.layoutAnchors()
	m.hub.Publish(dropdown.ViewportEvent{Kind: dropdown.EventScroll})
}

func (m *Model) ensureVisible(i int) {
	top := i * fieldRowHeight
	if top < m.scroll {
		m.scroll = top
	}
	if bottom := top + fieldRowHeight; bottom > m.scroll+m.bodyHeight() {
		m.scroll = bottom - m.bodyHeight()
	}
	m.clampScroll()
}

// controlTop is the body row of field i's control box.
func (m *Model) controlTop(i int) int {
	return i*fieldRowHeight + 1 - m.scroll
}

// layoutAnchors tells every dropdown where its control sits within the
// scrolled body.
func (m *Model) layoutAnchors() {
	h := m.bodyHeight()
	for i := range m.fields {
		top := m.controlTop(i)
		m.fields[i].dd.SetAnchor(dropdown.Rect{Top: top, Bottom: top + controlHeight})
		m.fields[i].dd.SetViewportHeight(h)
	}
}

func (m *Model) relayout() {
	m.logView.Width = m.layoutWidth() - 4
	m.logView.Height = logPanelLines
	m.clampScroll()
	m.layoutAnchors()
}

// -------------------------------
// Logs
// --------------------------------

func (m *Model) pollLogs() {
	if m.ring == nil {
		return
	}
	if n := m.ring.Written(); n != m.logSeen {
		m.logSeen = n
		m.logLines = m.ring.Lines()
		m.updateLogView()
	}
}

func (m *Model) updateLogView() {
	colored := make([]string, len(m.logLines))
	for i, line := range m.logLines {
		colored[i] = colorizeLogLine(line)
	}
	m.logView.SetContent(strings.Join(colored, "\n"))
	m.logView.GotoBottom()
}

func colorizeLogLine(line string) string {
	switch {
	case strings.HasPrefix(line, "[TRACE]"):
		return styleMuted.Render(line)
	case strings.HasPrefix(line, "[DEBUG]"):
		return styleCyan.Render(line)
	case strings.HasPrefix(line, "[INFO]"):
		return styleGreen.Render(line)
	case strings.HasPrefix(line, "[WARN]"):
		return styleYellow.Render(line)
	case strings.HasPrefix(line, "[ERROR]"), strings.HasPrefix(line, "[FATAL]"):
		return styleRed.Render(line)
	default:
		return styleText.Render(line)
	}
}
