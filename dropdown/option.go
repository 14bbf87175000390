package dropdown

import (
	"fmt"
	"strings"

	"github.com/nulifyer/hoteldash/logger"
)

// Option is one selectable record. Fields are looked up by the names held in
// a Schema, so any decoded JSON or YAML object can be used directly.
type Option map[string]any

// Schema names the Option fields the dropdown reads.
type Schema struct {
	KeyField    string // identity; defaults to "id"
	LabelField  string // display text; defaults to "name"
	SearchField string // filtered field; defaults to LabelField
	BadgeField  string // optional
}

// DefaultSchema matches records shaped like {"id": ..., "name": ...}.
func DefaultSchema() Schema {
	return Schema{KeyField: "id", LabelField: "name"}
}

func (s Schema) withDefaults() Schema {
	if s.KeyField == "" {
		s.KeyField = "id"
	}
	if s.LabelField == "" {
		s.LabelField = "name"
	}
	if s.SearchField == "" {
		s.SearchField = s.LabelField
	}
	return s
}

// Key returns the option's identity as a string. Numbers and other scalars
// are formatted with fmt.Sprint so 12 and "12" address the same record.
func (s Schema) Key(o Option) (string, bool) {
	v, ok := o[s.KeyField]
	if !ok || v == nil {
		return "", false
	}
	if str, ok := v.(string); ok {
		return str, str != ""
	}
	return fmt.Sprint(v), true
}

// Label returns the display text, falling back to the key when the label
// field is missing.
func (s Schema) Label(o Option) string {
	if v, ok := o[s.LabelField]; ok && v != nil {
		if str, ok := v.(string); ok {
			return str
		}
		return fmt.Sprint(v)
	}
	key, _ := s.Key(o)
	return key
}

// SearchText returns the search field only when it holds a string.
func (s Schema) SearchText(o Option) (string, bool) {
	str, ok := o[s.SearchField].(string)
	return str, ok
}

func (s Schema) Badge(o Option) (string, bool) {
	if s.BadgeField == "" {
		return "", false
	}
	v, ok := o[s.BadgeField]
	if !ok || v == nil {
		return "", false
	}
	badge := fmt.Sprint(v)
	return badge, badge != ""
}

// Validate reports which configured fields are absent from sample.
func (s Schema) Validate(sample Option) error {
	var missing []string
	for _, field := range []string{s.KeyField, s.LabelField, s.SearchField} {
		if _, ok := sample[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("schema fields missing from record: %s", strings.Join(missing, ", "))
	}
	return nil
}

// normalize drops options without a key and later duplicates of a key
// already seen. The first occurrence of a key wins.
func (s Schema) normalize(items []Option) []Option {
	if len(items) == 0 {
		return nil
	}
	if err := s.Validate(items[0]); err != nil {
		logger.Warn("dropdown: %v", err)
	}
	seen := make(map[string]struct{}, len(items))
	out := make([]Option, 0, len(items))
	for i, o := range items {
		key, ok := s.Key(o)
		if !ok {
			logger.Warn("dropdown: record %d has no %q field, skipped", i, s.KeyField)
			continue
		}
		if _, dup := seen[key]; dup {
			logger.Warn("dropdown: duplicate key %q at record %d, keeping first", key, i)
			continue
		}
		seen[key] = struct{}{}
		out = append(out, o)
	}
	return out
}
