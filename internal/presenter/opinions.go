package presenter

import (
	"fmt"

	"property-search/internal/models"
)

// OpinionMetric is one labelled score on an opinion card
type OpinionMetric struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// OpinionCard is a rendered review
type OpinionCard struct {
	OpinionID string          `json:"opinion_id"`
	Source    string          `json:"source"`
	Text      string          `json:"text"`
	Metrics   []OpinionMetric `json:"metrics"`
	Overall   string          `json:"overall"`
}

// RenderOpinions turns opinions into cards, keeping service order
func RenderOpinions(ops []models.Opinion) []OpinionCard {
	cards := make([]OpinionCard, 0, len(ops))
	for _, op := range ops {
		cards = append(cards, OpinionCard{
			OpinionID: op.OpinionID,
			Source:    "Synthetic • " + op.Source,
			Text:      op.ReviewText,
			Metrics: []OpinionMetric{
				{"Clean", op.Cleanliness},
				{"Safety", op.Safety},
				{"Parking", op.Parking},
				{"Noise", op.Noise},
				{"Transit", op.TransitAccess},
				{"Sunlight", op.Sunlight},
			},
			Overall: fmt.Sprintf("%d/5", op.Overall),
		})
	}
	return cards
}
