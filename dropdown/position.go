package dropdown

// Placement is the side of the control the popover opens on.
type Placement int

const (
	Below Placement = iota
	Above
)

func (p Placement) String() string {
	if p == Above {
		return "above"
	}
	return "below"
}

// DefaultPopoverHeight is the assumed popover height in terminal rows: eight
// option rows plus the border.
const DefaultPopoverHeight = 10

// preferAboveRatio is how much more room above the control is needed before
// the popover flips up when both sides can hold it.
const preferAboveRatio = 1.5

// Decide picks the popover side for a control spanning rows
// [controlTop, controlBottom) in a viewport of viewportHeight rows, given
// the fixed popover height.
func Decide(viewportHeight, controlTop, controlBottom, popoverHeight int) Placement {
	spaceBelow := viewportHeight - controlBottom
	spaceAbove := controlTop

	switch {
	case spaceBelow < popoverHeight && spaceAbove > popoverHeight:
		return Above
	case spaceAbove < popoverHeight && spaceBelow > popoverHeight:
		return Below
	case float64(spaceAbove) > float64(spaceBelow)*preferAboveRatio:
		return Above
	default:
		return Below
	}
}

// Rect is the control's vertical extent in screen rows, Bottom exclusive.
type Rect struct {
	Top    int
	Bottom int
}

// positioner holds the geometry a placement decision is made from. It is
// shared by pointer between copies of a Model so viewport listeners, which
// run outside Update, see and update the same state.
type positioner struct {
	anchor        Rect
	viewport      int
	popoverHeight int
	placement     Placement

	release func()
}

func (p *positioner) recompute() Placement {
	if p.viewport <= 0 {
		p.placement = Below
		return p.placement
	}
	p.placement = Decide(p.viewport, p.anchor.Top, p.anchor.Bottom, p.popoverHeight)
	return p.placement
}

func (p *positioner) handle(ev ViewportEvent) {
	if ev.Kind == EventResize && ev.Height > 0 {
		p.viewport = ev.Height
	}
	p.recompute()
}

// detach releases the viewport subscription, if any. Safe to call on every
// exit path.
func (p *positioner) detach() {
	if p.release != nil {
		p.release()
		p.release = nil
	}
}
