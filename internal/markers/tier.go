package markers

import (
	"fmt"
	"math"

	"property-search/internal/models"
)

// Metric names a listing attribute used to style map markers
type Metric string

const (
	MetricCentreDistance     Metric = "centre_distance"
	MetricSchoolDistance     Metric = "school_distance"
	MetricClinicDistance     Metric = "clinic_distance"
	MetricRestaurantDistance Metric = "restaurant_distance"
	MetricPoiCount           Metric = "poi_count"
)

// Metrics lists every supported metric
var Metrics = []Metric{
	MetricCentreDistance,
	MetricPoiCount,
	MetricSchoolDistance,
	MetricClinicDistance,
	MetricRestaurantDistance,
}

// ParseMetric validates a metric name
func ParseMetric(name string) (Metric, error) {
	for _, m := range Metrics {
		if string(m) == name {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown marker metric %q", name)
}

// IsDistance reports whether m is measured in meters
func (m Metric) IsDistance() bool {
	return m != MetricPoiCount
}

// Size is the rendered marker size class
type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
	SizeXLarge Size = "xlarge"
)

// Pixels is the pin height for s
func (s Size) Pixels() int {
	switch s {
	case SizeSmall:
		return 24
	case SizeLarge:
		return 40
	case SizeXLarge:
		return 48
	default:
		return 32
	}
}

// Tier is a discrete visual bucket for a metric value
type Tier struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Size  Size   `json:"size"`
}

var (
	TierNear    = Tier{Name: "tier1", Color: "#16a34a", Size: SizeMedium}
	TierClose   = Tier{Name: "tier2", Color: "#84cc16", Size: SizeMedium}
	TierMid     = Tier{Name: "tier3", Color: "#f59e0b", Size: SizeMedium}
	TierFar     = Tier{Name: "tier4", Color: "#dc2626", Size: SizeMedium}
	TierUnknown = Tier{Name: "unknown", Color: "#9ca3af", Size: SizeMedium}

	// poi_count is encoded by size only
	poiColor  = "#2563eb"
	TierPoiS  = Tier{Name: "poi-small", Color: poiColor, Size: SizeSmall}
	TierPoiM  = Tier{Name: "poi-medium", Color: poiColor, Size: SizeMedium}
	TierPoiL  = Tier{Name: "poi-large", Color: poiColor, Size: SizeLarge}
	TierPoiXL = Tier{Name: "poi-xlarge", Color: poiColor, Size: SizeXLarge}

	allTiers   = []Tier{TierNear, TierClose, TierMid, TierFar, TierUnknown, TierPoiS, TierPoiM, TierPoiL, TierPoiXL}
	tierByName = map[string]Tier{}
)

func init() {
	for _, t := range allTiers {
		tierByName[t.Name] = t
	}
}

// Tiers returns every tier the colorizer can produce
func Tiers() []Tier {
	return append([]Tier(nil), allTiers...)
}

// TierByName looks up a tier by its Name
func TierByName(name string) (Tier, bool) {
	t, ok := tierByName[name]
	return t, ok
}

// ForDistance buckets a distance in meters. Bands are inclusive on the
// upper bound: 300 is tier1, 301 is tier2. nil and NaN map to unknown.
func ForDistance(meters *float64) Tier {
	if meters == nil || math.IsNaN(*meters) {
		return TierUnknown
	}
	switch d := *meters; {
	case d <= 300:
		return TierNear
	case d <= 800:
		return TierClose
	case d <= 1500:
		return TierMid
	default:
		return TierFar
	}
}

// ForPoiCount buckets a points-of-interest count into a size class
func ForPoiCount(count *float64) Tier {
	if count == nil || math.IsNaN(*count) {
		return TierUnknown
	}
	switch n := *count; {
	case n <= 2:
		return TierPoiS
	case n <= 6:
		return TierPoiM
	case n <= 12:
		return TierPoiL
	default:
		return TierPoiXL
	}
}

// For maps (metric, value) to a tier. It never fails: unknown metrics
// and missing values give TierUnknown.
func For(metric Metric, value *float64) Tier {
	switch metric {
	case MetricPoiCount:
		return ForPoiCount(value)
	case MetricCentreDistance, MetricSchoolDistance, MetricClinicDistance, MetricRestaurantDistance:
		return ForDistance(value)
	default:
		return TierUnknown
	}
}

// Value extracts metric from l, nil when the listing has no value for it
func Value(l *models.Listing, metric Metric) *float64 {
	switch metric {
	case MetricCentreDistance:
		return l.CentreDistance
	case MetricSchoolDistance:
		return l.SchoolDistance
	case MetricClinicDistance:
		return l.ClinicDistance
	case MetricRestaurantDistance:
		return l.RestaurantDistance
	case MetricPoiCount:
		if l.PoiCount == nil {
			return nil
		}
		v := float64(*l.PoiCount)
		return &v
	}
	return nil
}

// TierFor is For(metric, Value(l, metric))
func TierFor(l *models.Listing, metric Metric) Tier {
	return For(metric, Value(l, metric))
}
