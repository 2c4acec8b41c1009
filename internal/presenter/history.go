package presenter

import "property-search/internal/models"

// HistorySummary condenses a listing's price history
type HistorySummary struct {
	Points    int      `json:"points"`
	FirstDate string   `json:"first_date"`
	LastDate  string   `json:"last_date"`
	Change    float64  `json:"change"`
	ChangePct *float64 `json:"change_pct,omitempty"`
	Rising    bool     `json:"rising"`
}

// SummarizeHistory compares the first and last price points. History is
// ordered by date ascending. Returns nil for fewer than two points.
func SummarizeHistory(hist []models.PricePoint) *HistorySummary {
	if len(hist) < 2 {
		return nil
	}
	first, last := hist[0], hist[len(hist)-1]
	s := &HistorySummary{
		Points:    len(hist),
		FirstDate: first.Date,
		LastDate:  last.Date,
		Change:    last.Price - first.Price,
	}
	if first.Price != 0 {
		pct := s.Change / first.Price * 100
		s.ChangePct = &pct
	}
	s.Rising = s.Change > 0
	return s
}
