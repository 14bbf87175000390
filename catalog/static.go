package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nulifyer/hoteldash/dropdown"
	"github.com/nulifyer/hoteldash/logger"
)

// Static holds offline collections keyed by resource, for running the
// console without an API.
type Static map[Resource][]dropdown.Option

// Options returns the records for r, or nil.
func (s Static) Options(r Resource) []dropdown.Option {
	return s[r]
}

// LoadStatic reads a YAML document mapping resource names to record lists:
//
//	hotels:
//	  - {id: 1, name: Grand Palace, city: Lisbon}
//	conditions:
//	  - {code: new, label: New}
//
// Unknown resource names are skipped with a warning.
func LoadStatic(path string) (Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return ParseStatic(data)
}

func ParseStatic(data []byte) (Static, error) {
	var raw map[string][]map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	out := make(Static, len(raw))
	for name, records := range raw {
		r, err := ParseResource(name)
		if err != nil {
			logger.Warn("catalog: %v, skipped", err)
			continue
		}
		items := make([]dropdown.Option, len(records))
		for i, rec := range records {
			items[i] = dropdown.Option(rec)
		}
		out[r] = items
		logger.Debug("catalog: %d static %s record(s)", len(items), r)
	}
	return out, nil
}
