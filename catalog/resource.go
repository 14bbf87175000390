package catalog

import (
	"fmt"
	"strings"

	"github.com/nulifyer/hoteldash/dropdown"
)

// Resource names a collection exposed by the hotel API.
type Resource string

const (
	Hotels          Resource = "hotels"
	Users           Resource = "users"
	Amenities       Resource = "amenities"
	Thematics       Resource = "thematics"
	Conditions      Resource = "conditions"
	ContactRequests Resource = "contact-requests"
)

var resources = []Resource{Hotels, Users, Amenities, Thematics, Conditions, ContactRequests}

// Resources lists every known resource in display order.
func Resources() []Resource {
	out := make([]Resource, len(resources))
	copy(out, resources)
	return out
}

func ParseResource(s string) (Resource, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, r := range resources {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown resource %q", s)
}

var schemas = map[Resource]dropdown.Schema{
	Hotels:          {KeyField: "id", LabelField: "name", SearchField: "name", BadgeField: "city"},
	Users:           {KeyField: "id", LabelField: "name", SearchField: "name", BadgeField: "email"},
	Amenities:       {KeyField: "id", LabelField: "name", SearchField: "name"},
	Thematics:       {KeyField: "id", LabelField: "name", SearchField: "name", BadgeField: "category"},
	Conditions:      {KeyField: "code", LabelField: "label", SearchField: "label"},
	ContactRequests: {KeyField: "id", LabelField: "subject", SearchField: "subject", BadgeField: "status"},
}

// SchemaFor returns the field mapping records of r are rendered with.
// Unknown resources get the dropdown default.
func SchemaFor(r Resource) dropdown.Schema {
	if s, ok := schemas[r]; ok {
		return s
	}
	return dropdown.DefaultSchema()
}
