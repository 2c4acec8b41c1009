package selection

// Listener reacts to selection changes. Select is delivered on every
// call to Coordinator.Select, including repeats of the current id, so
// views can replay their scroll/highlight affordances.
type Listener interface {
	Selected(id string)
	Cleared()
}

// Coordinator holds the single selected listing shared by the list and
// the map views.
type Coordinator struct {
	selected  string
	listeners []Listener
}

func NewCoordinator(listeners ...Listener) *Coordinator {
	return &Coordinator{listeners: listeners}
}

// Subscribe adds a listener
func (c *Coordinator) Subscribe(l Listener) {
	c.listeners = append(c.listeners, l)
}

// Select makes id the selected listing and notifies every listener.
// An empty id is the same as Clear.
func (c *Coordinator) Select(id string) {
	if id == "" {
		c.Clear()
		return
	}
	c.selected = id
	for _, l := range c.listeners {
		l.Selected(id)
	}
}

// Clear drops the selection
func (c *Coordinator) Clear() {
	c.selected = ""
	for _, l := range c.listeners {
		l.Cleared()
	}
}

// Selected returns the selected id, ok=false when nothing is selected
func (c *Coordinator) Selected() (string, bool) {
	return c.selected, c.selected != ""
}

// IsSelected reports whether id is the current selection
func (c *Coordinator) IsSelected(id string) bool {
	return id != "" && c.selected == id
}
