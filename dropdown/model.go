package dropdown

import (
	"context"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	defaultWidth            = 32
	defaultDisplayThreshold = 3
)

var lastID int64

func nextID() int {
	return int(atomic.AddInt64(&lastID, 1))
}

// Config describes one dropdown. Options and Fetcher are alternatives; when
// both are set the static options stand in until the first fetch resolves.
type Config struct {
	Name   string // used in log lines
	Schema Schema

	Options []Option
	Fetcher Fetcher
	Deps    []any
	Context context.Context

	Value            Selection
	Multi            bool
	DisplayThreshold int
	Disabled         bool

	Placeholder   string
	Width         int
	PopoverHeight int
	MaxVisible    int
	Mode          MatchMode

	OptionRenderer   func(Option) string
	SelectedRenderer func([]Option) string

	OnChange func(Selection)
	OnSearch func(string)
	OnLoaded func([]Option)

	Styles *Styles
	KeyMap *KeyMap
	Events EventSource
	Zones  Zones
}

// ChangeMsg reports the value the dropdown wants its owner to apply. Seq
// numbers commits per dropdown; see Superseded.
type ChangeMsg struct {
	ID    int
	Value Selection
	Seq   uint64
}

// QueryMsg reports the search text after every change, for owners that
// search server-side.
type QueryMsg struct {
	ID    int
	Query string
}

// FocusRequestMsg is sent when the user clicks an unfocused control.
type FocusRequestMsg struct {
	ID int
}

// Model is a searchable selection control. The selection is owned by the
// caller: committing an option emits ChangeMsg and calls OnChange, and the
// caller applies the new value with SetValue.
type Model struct {
	id     int
	name   string
	cfg    Config
	schema Schema
	value  Selection

	// pending is the last multi-select toggle not yet applied by the owner.
	// Further toggles build on it so keys queued ahead of ChangeMsg are
	// not lost.
	pending    Selection
	hasPending bool
	commits    uint64

	// reported is the query last sent in a QueryMsg.
	reported string

	input   textinput.Model
	spinner spinner.Model
	keys    KeyMap
	styles  Styles

	src    source
	filter *filterCache
	pos    *positioner

	focused bool
	open    bool
	cursor  int
	offset  int
}

func New(cfg Config) Model {
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	if cfg.Width <= 0 {
		cfg.Width = defaultWidth
	}
	if cfg.PopoverHeight <= 0 {
		cfg.PopoverHeight = DefaultPopoverHeight
	}
	if cfg.MaxVisible <= 0 {
		cfg.MaxVisible = max(cfg.PopoverHeight-2, 1)
	}
	if cfg.DisplayThreshold <= 0 {
		cfg.DisplayThreshold = defaultDisplayThreshold
	}
	if cfg.Placeholder == "" {
		cfg.Placeholder = "Select…"
	}

	styles := DefaultStyles()
	if cfg.Styles != nil {
		styles = *cfg.Styles
	}
	keys := DefaultKeyMap()
	if cfg.KeyMap != nil {
		keys = *cfg.KeyMap
	}

	ti := textinput.New()
	ti.Placeholder = "Search…"
	ti.Prompt = ""
	ti.CharLimit = 100
	ti.Width = cfg.Width - 3

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	m := Model{
		id:      nextID(),
		name:    cfg.Name,
		cfg:     cfg,
		schema:  cfg.Schema.withDefaults(),
		value:   cfg.Value,
		input:   ti,
		spinner: sp,
		keys:    keys,
		styles:  styles,
		filter:  &filterCache{},
		pos:     &positioner{popoverHeight: cfg.PopoverHeight},
		src: source{
			static:  cfg.Options,
			fetcher: cfg.Fetcher,
			deps:    cfg.Deps,
			parent:  cfg.Context,
		},
	}
	if m.name == "" {
		m.name = m.schema.LabelField
	}
	m.src.setItems(m.schema, m.schema.normalize(cfg.Options))
	return m
}

// Init resolves the working collection for the first time.
func (m *Model) Init() tea.Cmd {
	return m.load()
}

func (m Model) ID() int             { return m.id }
func (m Model) Name() string        { return m.name }
func (m Model) Value() Selection    { return m.value }
func (m Model) Focused() bool       { return m.focused }
func (m Model) IsOpen() bool        { return m.open }
func (m Model) Loading() bool       { return m.src.loading }
func (m Model) Err() error          { return m.src.err }
func (m Model) Query() string       { return m.input.Value() }
func (m Model) Placement() Placement { return m.pos.placement }
func (m Model) Items() []Option     { return m.src.items }
func (m Model) Multi() bool         { return m.cfg.Multi }
func (m Model) Disabled() bool      { return m.cfg.Disabled }
func (m Model) Schema() Schema      { return m.schema }
func (m Model) PopoverHeight() int  { return m.cfg.PopoverHeight }
func (m Model) KeyMap() KeyMap      { return m.keys }
func (m Model) Cursor() int         { return m.cursor }

// Superseded reports whether a later commit has replaced msg. Commands run
// concurrently, so ChangeMsgs can arrive out of order; the latest one
// already carries every earlier toggle.
func (m Model) Superseded(msg ChangeMsg) bool {
	return msg.ID == m.id && msg.Seq != m.commits
}

// SetValue applies the owner's selection. The pending toggle is settled once
// the owner has caught up with it.
func (m *Model) SetValue(v Selection) {
	m.value = v
	if m.hasPending && m.pending.Equal(v) {
		m.pending, m.hasPending = Selection{}, false
	}
}

// Visible is the working collection narrowed by the current query.
func (m Model) Visible() []Option {
	return m.filter.view(m.src.items, m.src.gen, m.input.Value(), m.schema.SearchField, m.cfg.Mode)
}

// Selected resolves the current value against the working collection.
// Keys that no longer resolve are skipped.
func (m Model) Selected() []Option {
	out := make([]Option, 0, m.value.Len())
	for _, k := range m.value.keys {
		if o, ok := m.src.lookup(k); ok {
			out = append(out, o)
		}
	}
	return out
}

// Highlighted is the option under the cursor.
func (m Model) Highlighted() (Option, bool) {
	visible := m.Visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return nil, false
	}
	return visible[m.cursor], true
}

func (m *Model) SetStyles(s Styles) {
	m.styles = s
	m.spinner.Style = s.Spinner
}

func (m *Model) SetDisabled(disabled bool) {
	m.cfg.Disabled = disabled
	if disabled {
		m.Blur()
	}
}

// SetAnchor records where the host drew the control. It does not move an
// open popover; the next open, resize or scroll does.
func (m *Model) SetAnchor(r Rect) { m.pos.anchor = r }

func (m *Model) SetViewportHeight(h int) { m.pos.viewport = h }

// SetOptions replaces the static collection and reloads.
func (m *Model) SetOptions(items []Option) tea.Cmd {
	m.src.static = items
	return m.load()
}

// SetFetcher installs a new fetcher and reloads. Functions cannot be
// compared, so installing one always counts as a change.
func (m *Model) SetFetcher(f Fetcher) tea.Cmd {
	m.src.fetcher = f
	return m.load()
}

// SetDeps reloads when the dependency list differs from the current one.
func (m *Model) SetDeps(deps ...any) tea.Cmd {
	if depsEqual(m.src.deps, deps) {
		return nil
	}
	m.src.deps = deps
	return m.load()
}

// Reload re-runs the current source unconditionally.
func (m *Model) Reload() tea.Cmd {
	return m.load()
}

// Focus makes the control editable and opens the popover with an empty
// query.
func (m *Model) Focus() tea.Cmd {
	if m.cfg.Disabled {
		return nil
	}
	m.focused = true
	reset := m.resetQuery()
	m.openPopover()
	return tea.Batch(m.input.Focus(), reset)
}

func (m *Model) Blur() {
	m.focused = false
	m.input.Blur()
	m.input.SetValue("")
	m.closePopover()
}

// Close dismisses the popover without touching the selection.
func (m *Model) Close() {
	m.closePopover()
}

// Unmount releases everything the dropdown holds: viewport listeners and
// any in-flight fetch.
func (m *Model) Unmount() {
	m.closePopover()
	m.src.stop()
	m.src.seq++
	m.src.loading = false
}

// Select commits key as if the user picked it.
func (m *Model) Select(key string) tea.Cmd {
	return m.commit(key)
}

// resetQuery clears the search text. Owners that filtered server-side on the
// old query are told it is now empty.
func (m *Model) resetQuery() tea.Cmd {
	m.input.SetValue("")
	if m.reported == "" {
		return nil
	}
	return m.reportQuery("")
}

func (m *Model) reportQuery(query string) tea.Cmd {
	m.reported = query
	if m.cfg.OnSearch != nil {
		m.cfg.OnSearch(query)
	}
	id := m.id
	return func() tea.Msg { return QueryMsg{ID: id, Query: query} }
}

func (m *Model) openPopover() {
	if m.open {
		return
	}
	m.pos.detach()
	m.open = true
	m.cursor, m.offset = 0, 0
	if m.cfg.Events != nil {
		m.pos.release = m.cfg.Events.Subscribe(m.pos.handle)
	}
	m.pos.recompute()
}

func (m *Model) closePopover() {
	m.open = false
	m.pending, m.hasPending = Selection{}, false
	m.pos.detach()
}

func (m *Model) commit(key string) tea.Cmd {
	var next Selection
	var reset tea.Cmd
	if m.cfg.Multi {
		base := m.value
		if m.hasPending {
			base = m.pending
		}
		next = base.Toggle(key)
		m.pending, m.hasPending = next, true
	} else {
		next = Single(key)
		reset = m.resetQuery()
		m.closePopover()
	}
	if m.cfg.OnChange != nil {
		m.cfg.OnChange(next)
	}
	m.commits++
	id, seq := m.id, m.commits
	change := func() tea.Msg { return ChangeMsg{ID: id, Value: next, Seq: seq} }
	if reset == nil {
		return change
	}
	return tea.Batch(change, reset)
}

func (m *Model) moveCursor(delta int) {
	n := len(m.Visible())
	if n == 0 {
		m.cursor, m.offset = 0, 0
		return
	}
	m.cursor = (m.cursor + delta + n) % n
	m.scrollToCursor()
}

func (m *Model) scrollToCursor() {
	rows := m.cfg.MaxVisible
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
}

func (m *Model) clampCursor() {
	n := len(m.Visible())
	if m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	if m.offset > m.cursor {
		m.offset = m.cursor
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.id == m.id {
			m.finishLoad(msg)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.src.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.pos.viewport = msg.Height
		if m.open && m.cfg.Events == nil {
			m.pos.recompute()
		}
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if !m.focused || m.cfg.Disabled {
			return m, nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Close):
		m.closePopover()
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if !m.open {
			m.openPopover()
			return m, nil
		}
		m.moveCursor(-1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if !m.open {
			m.openPopover()
			return m, nil
		}
		m.moveCursor(1)
		return m, nil

	case key.Matches(msg, m.keys.Commit):
		if !m.open {
			m.openPopover()
			return m, nil
		}
		if m.src.loading {
			return m, nil
		}
		o, ok := m.Highlighted()
		if !ok {
			return m, nil
		}
		k, _ := m.schema.Key(o)
		cmd := m.commit(k)
		return m, cmd
	}

	// Forward everything else to the search input.
	prev := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	query := m.input.Value()
	if query == prev {
		return m, cmd
	}

	m.cursor, m.offset = 0, 0
	if query != "" {
		m.openPopover()
	}
	report := m.reportQuery(query)
	return m, tea.Batch(cmd, report)
}

func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	z := m.cfg.Zones
	if z == nil || m.cfg.Disabled {
		return m, nil
	}
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}

	onControl := z.InBounds(m.zoneID("control"), msg)
	if !m.open {
		if !onControl {
			return m, nil
		}
		if !m.focused {
			id := m.id
			return m, func() tea.Msg { return FocusRequestMsg{ID: id} }
		}
		m.openPopover()
		return m, nil
	}

	if !m.src.loading {
		for _, o := range m.window() {
			k, _ := m.schema.Key(o)
			if z.InBounds(m.rowZoneID(k), msg) {
				cmd := m.commit(k)
				return m, cmd
			}
		}
	}
	if onControl || z.InBounds(m.zoneID("status"), msg) {
		return m, nil
	}
	// Anywhere else is the backdrop.
	m.closePopover()
	return m, nil
}
