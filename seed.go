package main

import (
	"github.com/nulifyer/hoteldash/catalog"
	"github.com/nulifyer/hoteldash/dropdown"
	"github.com/nulifyer/hoteldash/logger"
)

// builtinCatalog is used when neither an API nor a catalog file is given.
const builtinCatalog = `
hotels:
  - {id: 1, name: Grand Palace, city: Lisbon}
  - {id: 2, name: Harbour View, city: Porto}
  - {id: 3, name: Alpine Lodge, city: Innsbruck}
  - {id: 4, name: Dune Retreat, city: Agadir}
  - {id: 5, name: Old Town Inn, city: Tallinn}
amenities:
  - {id: 10, name: Pool, hotel: 1}
  - {id: 11, name: Spa, hotel: 1}
  - {id: 12, name: Rooftop bar, hotel: 2}
  - {id: 13, name: Ski storage, hotel: 3}
  - {id: 14, name: Sauna, hotel: 3}
  - {id: 15, name: Camel trekking, hotel: 4}
  - {id: 16, name: Free Wi-Fi}
  - {id: 17, name: Parking}
thematics:
  - {id: 20, name: Romantic getaway, category: leisure}
  - {id: 21, name: Family friendly, category: leisure}
  - {id: 22, name: Conference ready, category: business}
  - {id: 23, name: Eco certified, category: label}
conditions:
  - {code: new, label: New}
  - {code: open, label: Open}
  - {code: pending, label: Pending}
  - {code: closed, label: Closed}
users:
  - {id: 100, name: Ana Sousa, email: ana@example.com}
  - {id: 101, name: Jonas Berg, email: jonas@example.com}
  - {id: 102, name: Mei Tanaka, email: mei@example.com}
`

func builtinStatic() catalog.Static {
	static, err := catalog.ParseStatic([]byte(builtinCatalog))
	if err != nil {
		logger.Fatal("Built-in catalog is invalid: %v", err)
	}
	return static
}

// defaultConditions backs the condition field when the catalog has none.
func defaultConditions() []dropdown.Option {
	return []dropdown.Option{
		{"code": "new", "label": "New"},
		{"code": "open", "label": "Open"},
		{"code": "closed", "label": "Closed"},
	}
}
