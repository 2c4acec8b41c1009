package dedupe

import "property-search/internal/models"

// Listings collapses items to one entry per ListingID. The last
// occurrence of an id wins and is emitted at the position of that last
// occurrence, so the output keeps the order in which each surviving
// record was written. Backend pagination windows may overlap between
// fetches, which is why both the card list and the map markers go
// through here.
func Listings(items []models.Listing) []models.Listing {
	return By(items, func(l models.Listing) string { return l.ListingID })
}

// By is Listings for any record type keyed by key
func By[T any](items []T, key func(T) string) []T {
	if len(items) == 0 {
		return nil
	}
	last := make(map[string]int, len(items))
	for i, it := range items {
		last[key(it)] = i
	}
	out := make([]T, 0, len(last))
	for i, it := range items {
		if last[key(it)] == i {
			out = append(out, it)
		}
	}
	return out
}
