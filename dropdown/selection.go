package dropdown

import "slices"

// Selection is the caller-owned value of a dropdown: at most one key in
// single-select mode, an ordered set of keys in multi-select mode.
type Selection struct {
	keys []string
}

// None is the empty selection.
func None() Selection { return Selection{} }

func Single(key string) Selection {
	if key == "" {
		return Selection{}
	}
	return Selection{keys: []string{key}}
}

// Multi builds a set from keys, ignoring blanks and repeats.
func Multi(keys ...string) Selection {
	var s Selection
	for _, k := range keys {
		if k != "" && !s.Has(k) {
			s.keys = append(s.keys, k)
		}
	}
	return s
}

// Key returns the first selected key.
func (s Selection) Key() (string, bool) {
	if len(s.keys) == 0 {
		return "", false
	}
	return s.keys[0], true
}

func (s Selection) Keys() []string { return slices.Clone(s.keys) }
func (s Selection) Len() int       { return len(s.keys) }
func (s Selection) Empty() bool    { return len(s.keys) == 0 }

func (s Selection) Has(key string) bool {
	return slices.Contains(s.keys, key)
}

// Toggle returns a new selection with key added when absent and removed
// when present. The receiver is left untouched.
func (s Selection) Toggle(key string) Selection {
	if i := slices.Index(s.keys, key); i >= 0 {
		return Selection{keys: slices.Delete(slices.Clone(s.keys), i, i+1)}
	}
	return Selection{keys: append(slices.Clone(s.keys), key)}
}

// Equal compares as sets.
func (s Selection) Equal(other Selection) bool {
	if len(s.keys) != len(other.keys) {
		return false
	}
	for _, k := range s.keys {
		if !other.Has(k) {
			return false
		}
	}
	return true
}
