package dropdown

import (
	"context"
	"fmt"
	"reflect"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nulifyer/hoteldash/logger"
)

// Fetcher produces a fresh working collection. It runs inside a tea.Cmd,
// off the UI loop; ctx is cancelled when a newer load supersedes it or the
// dropdown is unmounted.
type Fetcher func(ctx context.Context) ([]Option, error)

// loadedMsg carries a fetch result back to the model that issued it.
type loadedMsg struct {
	id    int
	seq   uint64
	items []Option
	err   error
}

// source resolves the working collection from either a static slice or a
// fetcher. Only the most recently issued load may update it.
type source struct {
	static  []Option
	fetcher Fetcher
	deps    []any
	parent  context.Context

	seq     uint64
	cancel  context.CancelFunc
	loading bool
	err     error

	items []Option
	index map[string]int
	gen   uint64
}

func (s *source) setItems(schema Schema, items []Option) {
	s.items = items
	s.index = make(map[string]int, len(items))
	for i, o := range items {
		if key, ok := schema.Key(o); ok {
			s.index[key] = i
		}
	}
	s.gen++
}

func (s *source) lookup(key string) (Option, bool) {
	i, ok := s.index[key]
	if !ok {
		return nil, false
	}
	return s.items[i], true
}

func (s *source) stop() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// load starts a new load cycle. Static collections resolve immediately and
// return no command; fetchers return the command that runs them.
func (m *Model) load() tea.Cmd {
	s := &m.src
	s.stop()
	s.seq++

	if s.fetcher == nil {
		s.loading = false
		s.err = nil
		s.setItems(m.schema, m.schema.normalize(s.static))
		m.clampCursor()
		return nil
	}

	ctx, cancel := context.WithCancel(s.parent)
	s.cancel = cancel
	s.loading = true

	id, seq, fetch := m.id, s.seq, s.fetcher
	logger.Debug("dropdown %s: load #%d started", m.name, seq)
	return tea.Batch(
		func() tea.Msg { return runFetch(ctx, id, seq, fetch) },
		m.spinner.Tick,
	)
}

// runFetch turns a panicking fetcher into an ordinary load error.
func runFetch(ctx context.Context, id int, seq uint64, fetch Fetcher) (msg loadedMsg) {
	defer func() {
		if r := recover(); r != nil {
			msg = loadedMsg{id: id, seq: seq, err: fmt.Errorf("fetcher panicked: %v", r)}
		}
	}()
	items, err := fetch(ctx)
	return loadedMsg{id: id, seq: seq, items: items, err: err}
}

// finishLoad applies a fetch result. Results from superseded loads are
// dropped; failures leave an empty collection and never reach the caller.
func (m *Model) finishLoad(msg loadedMsg) {
	s := &m.src
	if msg.seq != s.seq {
		logger.Debug("dropdown %s: discarding stale load #%d (latest #%d)", m.name, msg.seq, s.seq)
		return
	}
	s.stop()
	s.loading = false

	if msg.err != nil {
		logger.Error("dropdown %s: load failed: %v", m.name, msg.err)
		s.err = msg.err
		s.setItems(m.schema, nil)
		m.clampCursor()
		return
	}

	s.err = nil
	s.setItems(m.schema, m.schema.normalize(msg.items))
	m.clampCursor()
	logger.Debug("dropdown %s: load #%d resolved %d option(s)", m.name, msg.seq, len(s.items))
	if m.cfg.OnLoaded != nil {
		m.cfg.OnLoaded(s.items)
	}
}

func depsEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !reflect.DeepEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}
