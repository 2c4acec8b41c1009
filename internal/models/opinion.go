package models

// Opinion is a review of a listing served by the opinions service
type Opinion struct {
	OpinionID     string `json:"opinion_id" validate:"required"`
	ListingID     string `json:"listing_id" validate:"required"`
	Source        string `json:"source"`
	ReviewText    string `json:"review_text"`
	Cleanliness   int    `json:"cleanliness" validate:"gte=0,lte=5"`
	Safety        int    `json:"safety" validate:"gte=0,lte=5"`
	Parking       int    `json:"parking" validate:"gte=0,lte=5"`
	Noise         int    `json:"noise" validate:"gte=0,lte=5"`
	TransitAccess int    `json:"transit_access" validate:"gte=0,lte=5"`
	Sunlight      int    `json:"sunlight" validate:"gte=0,lte=5"`
	Overall       int    `json:"overall" validate:"gte=0,lte=5"`
}

// OpinionsResponse is the body of GET /listings/{id}/opinions
type OpinionsResponse struct {
	ListingID string    `json:"listing_id"`
	Opinions  []Opinion `json:"opinions" validate:"dive"`
}
