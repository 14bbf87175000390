package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	bubble_tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nulifyer/hoteldash/catalog"
	"github.com/nulifyer/hoteldash/config"
	"github.com/nulifyer/hoteldash/dropdown"
	"github.com/nulifyer/hoteldash/logger"
)

// -------------------------------
// Helpers
// --------------------------------

func update(t *testing.T, m Model, msg bubble_tea.Msg) (Model, bubble_tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	mm, ok := next.(Model)
	require.True(t, ok, "Update returned %T", next)
	return mm, cmd
}

func send(t *testing.T, m Model, msg bubble_tea.Msg) Model {
	t.Helper()
	m, _ = update(t, m, msg)
	return m
}

func press(t *testing.T, m Model, k string) (Model, bubble_tea.Cmd) {
	t.Helper()
	return update(t, m, keyMsg(k))
}

func keyMsg(k string) bubble_tea.KeyMsg {
	special := map[string]bubble_tea.KeyType{
		"tab":       bubble_tea.KeyTab,
		"shift+tab": bubble_tea.KeyShiftTab,
		"enter":     bubble_tea.KeyEnter,
		"esc":       bubble_tea.KeyEsc,
		"up":        bubble_tea.KeyUp,
		"down":      bubble_tea.KeyDown,
		"pgup":      bubble_tea.KeyPgUp,
		"pgdown":    bubble_tea.KeyPgDown,
		"ctrl+c":    bubble_tea.KeyCtrlC,
		"ctrl+l":    bubble_tea.KeyCtrlL,
		"ctrl+r":    bubble_tea.KeyCtrlR,
		"f1":        bubble_tea.KeyF1,
	}
	if t, ok := special[k]; ok {
		return bubble_tea.KeyMsg{Type: t}
	}
	return bubble_tea.KeyMsg{Type: bubble_tea.KeyRunes, Runes: []rune(k)}
}

func typeQuery(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m, _ = press(t, m, string(r))
	}
	return m
}

// collect runs cmd and everything it batches, dropping spinner ticks.
func collect(cmd bubble_tea.Cmd) []bubble_tea.Msg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case nil, spinner.TickMsg:
		return nil
	case bubble_tea.BatchMsg:
		var out []bubble_tea.Msg
		for _, c := range msg {
			out = append(out, collect(c)...)
		}
		return out
	default:
		return []bubble_tea.Msg{msg}
	}
}

func settle(t *testing.T, m Model, cmd bubble_tea.Cmd) Model {
	t.Helper()
	for _, msg := range collect(cmd) {
		m = send(t, m, msg)
	}
	return m
}

func resize(t *testing.T, m Model, w, h int) Model {
	t.Helper()
	m = send(t, m, bubble_tea.WindowSizeMsg{Width: w, Height: h})
	return send(t, m, resizeDebounceMsg{id: m.resizeDebounceID})
}

func newStaticModel(t *testing.T, h int) Model {
	t.Helper()
	m := NewModel(appOptions{static: builtinStatic(), dropdown: config.Default().Dropdown})
	return resize(t, m, 100, h)
}

func labels(dd dropdown.Model) []string {
	var out []string
	for _, o := range dd.Visible() {
		out = append(out, dd.Schema().Label(o))
	}
	return out
}

// -------------------------------
// Static catalog
// --------------------------------

func TestStartsOnHotelWithPopoverClosed(t *testing.T) {
	m := newStaticModel(t, 40)

	hotel := m.fields[fieldHotel].dd
	assert.True(t, hotel.Focused())
	assert.False(t, hotel.IsOpen())
	assert.Len(t, hotel.Items(), 5)

	view := ansi.Strip(m.View())
	assert.Contains(t, view, "HotelDash")
	assert.Contains(t, view, "Choose a hotel")
	assert.Contains(t, view, "Condition")
	assert.NotContains(t, view, "Harbour View")
}

func TestViewBeforeFirstResize(t *testing.T) {
	m := NewModel(appOptions{static: builtinStatic(), dropdown: config.Default().Dropdown})
	assert.Equal(t, "Initializing...", m.View())
}

func TestTabCyclesFocus(t *testing.T) {
	m := newStaticModel(t, 40)

	m, _ = press(t, m, "tab")
	assert.Equal(t, fieldAmenities, m.focus)
	assert.False(t, m.fields[fieldHotel].dd.Focused())
	assert.True(t, m.fields[fieldAmenities].dd.Focused())
	assert.True(t, m.fields[fieldAmenities].dd.IsOpen())

	m, _ = press(t, m, "shift+tab")
	assert.Equal(t, fieldHotel, m.focus)
	assert.False(t, m.fields[fieldAmenities].dd.IsOpen())

	m, _ = press(t, m, "shift+tab")
	assert.Equal(t, fieldUser, m.focus, "focus wraps backwards")
}

func TestTabSkipsDisabledFields(t *testing.T) {
	m := newStaticModel(t, 40)
	m.fields[fieldAmenities].dd.SetDisabled(true)

	m, _ = press(t, m, "tab")
	assert.Equal(t, fieldThematics, m.focus)
}

func TestSelectingHotelRescopesAmenities(t *testing.T) {
	m := newStaticModel(t, 40)
	m.fields[fieldAmenities].dd.SetValue(dropdown.Multi("12"))

	m, _ = press(t, m, "enter")
	require.True(t, m.fields[fieldHotel].dd.IsOpen())
	m, cmd := press(t, m, "enter")
	m = settle(t, m, cmd)

	key, ok := m.fields[fieldHotel].dd.Value().Key()
	require.True(t, ok)
	assert.Equal(t, "1", key)
	assert.False(t, m.fields[fieldHotel].dd.IsOpen())
	assert.Contains(t, m.statusLine, "Hotel: Grand Palace")

	am := m.fields[fieldAmenities].dd
	assert.True(t, am.Value().Empty(), "previous amenities are dropped")
	assert.ElementsMatch(t, []string{"Pool", "Spa", "Free Wi-Fi", "Parking"}, labels(am))
}

func TestScopeByHotel(t *testing.T) {
	items := []dropdown.Option{
		{"id": 1, "name": "Pool", "hotel": 1},
		{"id": 2, "name": "Sauna", "hotel": "3"},
		{"id": 3, "name": "Parking"},
	}
	assert.Len(t, scopeByHotel(items, ""), 3)
	assert.Len(t, scopeByHotel(items, "1"), 2)
	assert.Len(t, scopeByHotel(items, "3"), 2)
	assert.Len(t, scopeByHotel(items, "9"), 1)
}

func TestMultiSelectKeepsPopoverOpen(t *testing.T) {
	m := newStaticModel(t, 40)
	m, _ = press(t, m, "tab")
	m, _ = press(t, m, "tab")
	require.Equal(t, fieldThematics, m.focus)

	m, cmd := press(t, m, "enter")
	m = settle(t, m, cmd)
	m, _ = press(t, m, "down")
	m, cmd = press(t, m, "enter")
	m = settle(t, m, cmd)

	th := m.fields[fieldThematics].dd
	assert.True(t, th.IsOpen())
	assert.Equal(t, []string{"20", "21"}, th.Value().Keys())
	assert.Contains(t, ansi.Strip(m.View()), "2 selected")
}

func TestQueuedTogglesSettleToLatest(t *testing.T) {
	for _, reversed := range []bool{false, true} {
		t.Run(fmt.Sprintf("reversed=%v", reversed), func(t *testing.T) {
			m := newStaticModel(t, 40)
			m, _ = press(t, m, "tab")
			m, _ = press(t, m, "tab")
			require.Equal(t, fieldThematics, m.focus)

			// Two enters on the same row before either change is applied.
			m, first := press(t, m, "enter")
			m, second := press(t, m, "enter")
			if reversed {
				first, second = second, first
			}
			m = settle(t, m, first)
			m = settle(t, m, second)

			th := m.fields[fieldThematics].dd
			assert.Empty(t, th.Value().Keys())
			assert.NotContains(t, ansi.Strip(m.View()), "selected")
		})
	}
}

func TestTypingFiltersThenEscClosesThenQuits(t *testing.T) {
	m := newStaticModel(t, 40)

	m = typeQuery(t, m, "harb")
	hotel := m.fields[fieldHotel].dd
	assert.True(t, hotel.IsOpen())
	assert.Equal(t, []string{"Harbour View"}, labels(hotel))

	m, cmd := press(t, m, "esc")
	assert.Nil(t, cmd)
	assert.False(t, m.fields[fieldHotel].dd.IsOpen())
	assert.True(t, m.fields[fieldHotel].dd.Value().Empty())

	_, cmd = press(t, m, "esc")
	require.NotNil(t, cmd)
	assert.IsType(t, bubble_tea.QuitMsg{}, cmd())
}

func TestCtrlCClosesPopoverBeforeQuitting(t *testing.T) {
	m := newStaticModel(t, 40)
	m, _ = press(t, m, "enter")
	require.True(t, m.fields[fieldHotel].dd.IsOpen())

	m, cmd := press(t, m, "ctrl+c")
	assert.Nil(t, cmd)
	assert.False(t, m.fields[fieldHotel].dd.IsOpen())

	_, cmd = press(t, m, "ctrl+c")
	require.NotNil(t, cmd)
	assert.IsType(t, bubble_tea.QuitMsg{}, cmd())
}

func TestPopoverIsDrawnBelowControl(t *testing.T) {
	m := newStaticModel(t, 40)
	m, _ = press(t, m, "enter")

	hotel := m.fields[fieldHotel].dd
	require.True(t, hotel.IsOpen())
	assert.Equal(t, dropdown.Below, hotel.Placement())

	rows := strings.Split(ansi.Strip(m.View()), "\n")
	controlRow, optionRow := -1, -1
	for i, row := range rows {
		if controlRow < 0 && strings.TrimSpace(row) == "Hotel" {
			controlRow = i
		}
		if strings.Contains(row, "Grand Palace") {
			optionRow = i
		}
	}
	require.GreaterOrEqual(t, controlRow, 0)
	assert.Greater(t, optionRow, controlRow)
	assert.Equal(t, 1, m.hub.Len(), "open popover listens for viewport events")
}

func TestPopoverFlipsAboveNearBottom(t *testing.T) {
	m := newStaticModel(t, 24)

	m, _ = press(t, m, "shift+tab")
	require.Equal(t, fieldUser, m.focus)
	assert.Positive(t, m.scroll, "focused field is scrolled into view")

	user := m.fields[fieldUser].dd
	require.True(t, user.IsOpen())
	assert.Equal(t, dropdown.Above, user.Placement())
	assert.Contains(t, ansi.Strip(m.View()), "Ana Sousa")
}

func TestScrollPublishesViewportEvents(t *testing.T) {
	m := newStaticModel(t, 24)
	m, _ = press(t, m, "enter")
	require.Equal(t, dropdown.Below, m.fields[fieldHotel].dd.Placement())

	m, _ = press(t, m, "pgdown")
	assert.Equal(t, m.formHeight()-m.bodyHeight(), m.scroll, "scroll clamps at the end of the form")
	assert.Less(t, m.controlTop(fieldHotel), 0)

	m, _ = press(t, m, "pgup")
	m, _ = press(t, m, "pgup")
	assert.Zero(t, m.scroll)

	m, _ = press(t, m, "esc")
	assert.Zero(t, m.hub.Len(), "listener released on close")
}

func TestWheelScrollsForm(t *testing.T) {
	m := newStaticModel(t, 24)
	m = send(t, m, bubble_tea.MouseMsg{Button: bubble_tea.MouseButtonWheelDown, Action: bubble_tea.MouseActionPress})
	assert.Equal(t, 1, m.scroll)
	m = send(t, m, bubble_tea.MouseMsg{Button: bubble_tea.MouseButtonWheelUp, Action: bubble_tea.MouseActionPress})
	assert.Zero(t, m.scroll)
}

func TestResizeUpdatesViewport(t *testing.T) {
	m := newStaticModel(t, 60)
	m, _ = press(t, m, "shift+tab")
	require.Equal(t, dropdown.Below, m.fields[fieldUser].dd.Placement())

	m = resize(t, m, 100, 24)
	assert.Equal(t, dropdown.Above, m.fields[fieldUser].dd.Placement())
}

func TestStaleResizeIsIgnored(t *testing.T) {
	m := newStaticModel(t, 40)
	m = send(t, m, bubble_tea.WindowSizeMsg{Width: 100, Height: 24})
	stale := m.resizeDebounceID
	m = send(t, m, bubble_tea.WindowSizeMsg{Width: 100, Height: 30})

	before := m.fields[fieldHotel].dd
	m = send(t, m, resizeDebounceMsg{id: stale})
	assert.Equal(t, before.Placement(), m.fields[fieldHotel].dd.Placement())
	assert.Equal(t, 30, m.height)
}

func TestHelpOverlayToggles(t *testing.T) {
	m := newStaticModel(t, 40)

	m, _ = press(t, m, "f1")
	assert.True(t, m.showHelp)
	assert.Contains(t, ansi.Strip(m.View()), "Keybindings")

	m, cmd := press(t, m, "esc")
	assert.Nil(t, cmd, "esc closes help instead of quitting")
	assert.False(t, m.showHelp)
}

func newTestRing(t *testing.T, lines ...string) *logger.Ring {
	t.Helper()
	ring := logger.NewRing(10)
	for _, line := range lines {
		_, err := fmt.Fprintln(ring, line)
		require.NoError(t, err)
	}
	return ring
}

func TestLogPanelShowsRing(t *testing.T) {
	ring := newTestRing(t, "[INFO] catalog warmed up", "[WARN] slow response")
	m := NewModel(appOptions{static: builtinStatic(), ring: ring, dropdown: config.Default().Dropdown})
	m = resize(t, m, 100, 40)
	before := m.bodyHeight()

	m = send(t, m, logPollMsg{})
	m, _ = press(t, m, "ctrl+l")
	assert.Equal(t, before-logPanelOuterHeight, m.bodyHeight())

	view := ansi.Strip(m.View())
	assert.Contains(t, view, "Logs")
	assert.Contains(t, view, "catalog warmed up")
}

func TestReloadBumpsGeneration(t *testing.T) {
	m := newStaticModel(t, 40)
	m, _ = press(t, m, "ctrl+r")
	assert.Equal(t, 1, m.refreshGen)
	assert.Contains(t, m.statusLine, "Reloading")
	assert.Len(t, m.fields[fieldHotel].dd.Items(), 5)
}

func TestShutdownReleasesListeners(t *testing.T) {
	m := newStaticModel(t, 40)
	m, _ = press(t, m, "enter")
	require.Equal(t, 1, m.hub.Len())
	m.shutdown()
	assert.Zero(t, m.hub.Len())
}

// -------------------------------
// API catalog
// --------------------------------

type fakeAPI struct {
	mu      sync.Mutex
	queries map[string][]string
}

func (f *fakeAPI) seen(path string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries[path]...)
}

func newFakeAPI(t *testing.T) (*fakeAPI, *catalog.Client) {
	t.Helper()
	api := &fakeAPI{queries: map[string][]string{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		api.queries[r.URL.Path] = append(api.queries[r.URL.Path], r.URL.RawQuery)
		api.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/hotels":
			_, _ = w.Write([]byte(`[{"id":1,"name":"Grand Palace","city":"Lisbon"},{"id":2,"name":"Harbour View","city":"Porto"}]`))
		case "/amenities":
			_, _ = w.Write([]byte(`{"data":[{"id":10,"name":"Pool"},{"id":11,"name":"Spa"}],"total":"2"}`))
		case "/users":
			if r.URL.Query().Get("q") == "" {
				_, _ = w.Write([]byte(`[{"id":100,"name":"Ana Sousa"},{"id":101,"name":"Jonas Berg"}]`))
				return
			}
			_, _ = w.Write([]byte(`[{"id":100,"name":"Ana Sousa"}]`))
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	}))
	t.Cleanup(srv.Close)

	client, err := catalog.NewClient(srv.URL)
	require.NoError(t, err)
	return api, client
}

func newAPIModel(t *testing.T, client *catalog.Client) Model {
	t.Helper()
	m := NewModel(appOptions{client: client, dropdown: config.Default().Dropdown})
	cmd := m.Init()
	m = settle(t, m, cmd)
	return resize(t, m, 100, 40)
}

func TestAPIModeLoadsLists(t *testing.T) {
	_, client := newFakeAPI(t)
	m := newAPIModel(t, client)

	assert.Len(t, m.fields[fieldHotel].dd.Items(), 2)
	assert.Len(t, m.fields[fieldUser].dd.Items(), 2)
	assert.True(t, m.fields[fieldAmenities].dd.Disabled(), "amenities wait for a hotel")
	assert.Len(t, m.fields[fieldCondition].dd.Items(), 3, "conditions fall back to built-ins")
	assert.Contains(t, ansi.Strip(m.View()), client.BaseURL())
}

func TestAPIModeScopesAmenitiesToHotel(t *testing.T) {
	api, client := newFakeAPI(t)
	m := newAPIModel(t, client)

	m, _ = press(t, m, "enter")
	m, _ = press(t, m, "down")
	m, cmd := press(t, m, "enter")

	// ChangeMsg, then the amenities fetch it triggers
	m = settle(t, m, cmd)
	m = settle(t, m, m.fields[fieldAmenities].dd.Reload())

	am := m.fields[fieldAmenities].dd
	assert.False(t, am.Disabled())
	assert.Equal(t, []string{"Pool", "Spa"}, labels(am))
	assert.Contains(t, api.seen("/amenities"), "hotel=2")
}

func TestUserSearchIsDebounced(t *testing.T) {
	api, client := newFakeAPI(t)
	m := newAPIModel(t, client)
	userID := m.fields[fieldUser].dd.ID()

	m, cmd := update(t, m, dropdown.QueryMsg{ID: userID, Query: "a"})
	require.NotNil(t, cmd)
	m, _ = update(t, m, dropdown.QueryMsg{ID: userID, Query: "an"})
	require.Equal(t, 2, m.userSearchID)

	m, cmd = update(t, m, userSearchDebounceMsg{id: 1, query: "a"})
	assert.Nil(t, cmd, "superseded search is dropped")

	m, cmd = update(t, m, userSearchDebounceMsg{id: 2, query: "an"})
	require.NotNil(t, cmd)
	assert.True(t, m.fields[fieldUser].dd.Loading())

	m = settle(t, m, cmd)
	assert.False(t, m.fields[fieldUser].dd.Loading())
	assert.Equal(t, []string{"Ana Sousa"}, labels(m.fields[fieldUser].dd))
	assert.Contains(t, api.seen("/users"), "q=an")
}

func TestRefocusingUserFieldDropsServerFilter(t *testing.T) {
	api, client := newFakeAPI(t)
	m := newAPIModel(t, client)
	for i := 0; i < 3; i++ {
		m, _ = press(t, m, "tab")
	}
	require.Equal(t, fieldUser, m.focus)

	m = typeQuery(t, m, "an")
	m, cmd := update(t, m, userSearchDebounceMsg{id: m.userSearchID, query: "an"})
	m = settle(t, m, cmd)
	require.Equal(t, []string{"Ana Sousa"}, labels(m.fields[fieldUser].dd))

	// user -> hotel -> thematics -> condition -> user
	for i := 0; i < 4; i++ {
		m, cmd = press(t, m, "tab")
	}
	require.Equal(t, fieldUser, m.focus)
	m = settle(t, m, cmd)
	require.Equal(t, 1, m.userSearchID, "cleared query starts a new search")

	m, cmd = update(t, m, userSearchDebounceMsg{id: 1, query: ""})
	m = settle(t, m, cmd)
	assert.Equal(t, []string{"Ana Sousa", "Jonas Berg"}, labels(m.fields[fieldUser].dd))
	seen := api.seen("/users")
	require.NotEmpty(t, seen)
	assert.Equal(t, "", seen[len(seen)-1])
}

func TestQueryFromOtherFieldsIsIgnored(t *testing.T) {
	_, client := newFakeAPI(t)
	m := newAPIModel(t, client)

	m, cmd := update(t, m, dropdown.QueryMsg{ID: m.fields[fieldHotel].dd.ID(), Query: "grand"})
	assert.Nil(t, cmd)
	assert.Zero(t, m.userSearchID)
}
