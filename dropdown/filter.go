package dropdown

import (
	"sort"
	"strings"
	"sync"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// MatchMode selects how the query narrows the working collection.
type MatchMode int

const (
	// MatchSubstring keeps options whose search field contains the query,
	// ignoring case. Collection order is preserved.
	MatchSubstring MatchMode = iota
	// MatchFuzzy ranks options with fzf's scoring, best match first.
	MatchFuzzy
)

func (m MatchMode) String() string {
	if m == MatchFuzzy {
		return "fuzzy"
	}
	return "substring"
}

func ParseMatchMode(s string) MatchMode {
	if strings.EqualFold(strings.TrimSpace(s), "fuzzy") {
		return MatchFuzzy
	}
	return MatchSubstring
}

// Filter returns the options whose search field contains query, compared
// case-insensitively. An empty query returns items unchanged. Options whose
// search field is missing or not a string never match a non-empty query.
func Filter(items []Option, query, field string) []Option {
	if query == "" {
		return items
	}
	q := strings.ToLower(query)
	out := make([]Option, 0, len(items))
	for _, o := range items {
		text, ok := o[field].(string)
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(text), q) {
			out = append(out, o)
		}
	}
	return out
}

// fzf fills its scoring tables in Init; matching before that scores zero.
var initScheme sync.Once

// FuzzyFilter keeps options that fzf matches against query and orders them
// by descending score. Ties keep collection order.
func FuzzyFilter(items []Option, query, field string, slab *util.Slab) []Option {
	if query == "" {
		return items
	}
	initScheme.Do(func() { algo.Init("default") })
	pattern := []rune(strings.ToLower(query))

	type scored struct {
		option Option
		score  int
	}
	var hits []scored
	for _, o := range items {
		text, ok := o[field].(string)
		if !ok {
			continue
		}
		chars := util.ToChars([]byte(text))
		result, _ := algo.FuzzyMatchV2(false, true, true, &chars, pattern, false, slab)
		if result.Start < 0 || result.Score <= 0 {
			continue
		}
		hits = append(hits, scored{option: o, score: result.Score})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	out := make([]Option, len(hits))
	for i, h := range hits {
		out[i] = h.option
	}
	return out
}

// filterCache memoizes the filtered view on the identity of its inputs. The
// working collection is identified by a generation counter bumped on every
// replacement.
type filterCache struct {
	valid bool
	gen   uint64
	query string
	field string
	mode  MatchMode
	out   []Option
	slab  *util.Slab
}

func (c *filterCache) view(items []Option, gen uint64, query, field string, mode MatchMode) []Option {
	if c.valid && c.gen == gen && c.query == query && c.field == field && c.mode == mode {
		return c.out
	}
	switch mode {
	case MatchFuzzy:
		if c.slab == nil {
			c.slab = util.MakeSlab(100*1024, 2048)
		}
		c.out = FuzzyFilter(items, query, field, c.slab)
	default:
		c.out = Filter(items, query, field)
	}
	c.valid, c.gen, c.query, c.field, c.mode = true, gen, query, field, mode
	return c.out
}
