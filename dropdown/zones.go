package dropdown

import (
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
)

// Zones marks rendered regions and answers mouse hit tests against them.
type Zones interface {
	Mark(id, s string) string
	InBounds(id string, msg tea.MouseMsg) bool
}

// BubbleZones adapts a bubblezone manager. The host must pass its final
// view through manager.Scan for hit tests to resolve.
func BubbleZones(manager *zone.Manager) Zones {
	return bubbleZones{manager: manager}
}

type bubbleZones struct {
	manager *zone.Manager
}

func (z bubbleZones) Mark(id, s string) string {
	return z.manager.Mark(id, s)
}

func (z bubbleZones) InBounds(id string, msg tea.MouseMsg) bool {
	info := z.manager.Get(id)
	return info != nil && info.InBounds(msg)
}
