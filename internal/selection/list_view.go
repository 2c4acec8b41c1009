package selection

import "time"

// DefaultHighlight is how long a card pulses after being selected
const DefaultHighlight = time.Second

// CardState is the visual state of a result card
type CardState string

const (
	CardNormal      CardState = "normal"
	CardHighlighted CardState = "highlighted"
	CardSelected    CardState = "selected"
)

// ListView tracks the list-side effects of selection: the card to scroll
// into view (centered) and a transient highlight that decays into the
// persistent selected state.
type ListView struct {
	highlight time.Duration
	now       func() time.Time

	selected string
	until    time.Time
	scrollTo string
	pulse    int
}

func NewListView(highlight time.Duration, now func() time.Time) *ListView {
	if highlight <= 0 {
		highlight = DefaultHighlight
	}
	if now == nil {
		now = time.Now
	}
	return &ListView{highlight: highlight, now: now}
}

func (v *ListView) Selected(id string) {
	v.selected = id
	v.scrollTo = id
	v.until = v.now().Add(v.highlight)
	v.pulse++
}

func (v *ListView) Cleared() {
	v.selected = ""
	v.scrollTo = ""
	v.until = time.Time{}
}

// CardState returns how the card for id should be drawn right now
func (v *ListView) CardState(id string) CardState {
	if id == "" || id != v.selected {
		return CardNormal
	}
	if v.now().Before(v.until) {
		return CardHighlighted
	}
	return CardSelected
}

// ScrollTarget is the card to center in the list, empty for none
func (v *ListView) ScrollTarget() string {
	return v.scrollTo
}

// Pulse counts highlight triggers. It changes on every selection, even
// of the same card, so the page knows to replay the animation.
func (v *ListView) Pulse() int {
	return v.pulse
}

// HighlightUntil is when the current highlight ends
func (v *ListView) HighlightUntil() time.Time {
	return v.until
}
