package session

import (
	"time"

	"property-search/internal/markers"
	"property-search/internal/presenter"
	"property-search/internal/query"
	"property-search/internal/selection"
)

// SelectionView is the list-side selection state the page animates from
type SelectionView struct {
	ListingID      string             `json:"listing_id,omitempty"`
	ScrollTo       string             `json:"scroll_to,omitempty"`
	Pulse          int                `json:"pulse"`
	HighlightUntil *time.Time         `json:"highlight_until,omitempty"`
	Overlay        *selection.Overlay `json:"overlay,omitempty"`
}

// OpinionsView is the opinions panel for the selected listing
type OpinionsView struct {
	ListingID string                  `json:"listing_id"`
	Loading   bool                    `json:"loading"`
	Failed    bool                    `json:"failed"`
	Cards     []presenter.OpinionCard `json:"cards"`
}

// View is a full snapshot of a session, rendered for the page
type View struct {
	ID        string               `json:"id"`
	Query     query.State          `json:"query"`
	QueryKey  string               `json:"query_key"`
	Version   uint64               `json:"version"`
	Loading   bool                 `json:"loading"`
	Failed    bool                 `json:"failed"`
	Results   presenter.ResultView `json:"results"`
	Markers   markers.Layer        `json:"markers"`
	MapPhase  string               `json:"map_phase"`
	Selection SelectionView        `json:"selection"`
	Opinions  *OpinionsView        `json:"opinions,omitempty"`
}

// View renders the current state. Results are the last successful page
// even while a newer fetch is loading or after one failed.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		ID:       s.ID,
		Query:    s.state.Clone(),
		QueryKey: s.state.Key(),
		Version:  s.version,
		Loading:  s.settled != s.version,
		Failed:   s.failed,
		Results:  presenter.Render(s.page, s.state, s.list.CardState),
		Markers:  s.opts.Markers.Build(s.itemsLocked()),
		MapPhase: s.viewport.Phase().String(),
	}

	if id, ok := s.coordinator.Selected(); ok {
		v.Selection = SelectionView{
			ListingID: id,
			ScrollTo:  s.list.ScrollTarget(),
			Pulse:     s.list.Pulse(),
			Overlay:   s.mapView.Overlay(),
		}
		if until := s.list.HighlightUntil(); until.After(s.opts.Now()) {
			v.Selection.HighlightUntil = &until
		}
	} else {
		v.Selection.Pulse = s.list.Pulse()
	}

	if s.opinionsFor != "" {
		ov := &OpinionsView{
			ListingID: s.opinionsFor,
			Loading:   s.opinionsSettled != s.opinionsVersion,
			Failed:    s.opinionsFailed,
			Cards:     []presenter.OpinionCard{},
		}
		if s.opinionsData != nil {
			ov.Cards = presenter.RenderOpinions(s.opinionsData.Opinions)
		}
		v.Opinions = ov
	}
	return v
}
