// Package query is the stateless engine that filters, sorts, and
// similarity-ranks the cache's resolved fragrance list. It never touches
// storage and never mutates its input.
package query

import (
	"sort"
	"strings"

	"scentbase-backend/domain/catalog"
)

// Filters are AND-ed together; zero values mean "predicate not supplied".
// Notes is the one OR-within predicate: a fragrance qualifies when any of
// its note IDs (across all three pyramid layers) appears in the set.
type Filters struct {
	Search        string
	Brand         string
	Concentration string
	Gender        string
	Notes         []string
}

// Apply returns the fragrances matching every supplied predicate
func Apply(fragrances []catalog.Fragrance, f Filters) []catalog.Fragrance {
	result := fragrances

	if search := strings.ToLower(strings.TrimSpace(f.Search)); search != "" {
		result = keep(result, func(fr catalog.Fragrance) bool {
			return strings.Contains(strings.ToLower(fr.Name), search) ||
				strings.Contains(strings.ToLower(fr.Brand.Name), search)
		})
	}

	if brand := strings.TrimSpace(f.Brand); brand != "" {
		result = keep(result, func(fr catalog.Fragrance) bool {
			return fr.Brand.ID == brand
		})
	}

	if concentration := strings.TrimSpace(f.Concentration); concentration != "" {
		result = keep(result, func(fr catalog.Fragrance) bool {
			return fr.Concentration == concentration
		})
	}

	if gender := strings.TrimSpace(f.Gender); gender != "" {
		result = keep(result, func(fr catalog.Fragrance) bool {
			return fr.Gender == gender
		})
	}

	if len(f.Notes) > 0 {
		wanted := make(map[string]struct{}, len(f.Notes))
		for _, id := range f.Notes {
			if id = strings.TrimSpace(id); id != "" {
				wanted[id] = struct{}{}
			}
		}
		if len(wanted) > 0 {
			result = keep(result, func(fr catalog.Fragrance) bool {
				for id := range fr.NoteIDSet() {
					if _, ok := wanted[id]; ok {
						return true
					}
				}
				return false
			})
		}
	}

	return result
}

func keep(fragrances []catalog.Fragrance, pred func(catalog.Fragrance) bool) []catalog.Fragrance {
	out := make([]catalog.Fragrance, 0, len(fragrances))
	for _, fr := range fragrances {
		if pred(fr) {
			out = append(out, fr)
		}
	}
	return out
}

// SortBy orders a copy of the list by the given key. Unknown keys degrade to
// the default rating sort rather than erroring. All sorts are stable.
//
// Keys: reviews (review count, desc), price-low (amount asc, absent price
// counts as 0), price-high (amount desc), newest (release year desc),
// rating/default (overall rating desc).
func SortBy(fragrances []catalog.Fragrance, key string) []catalog.Fragrance {
	// Callers share snapshot slices; sort a copy, never the input.
	sorted := make([]catalog.Fragrance, len(fragrances))
	copy(sorted, fragrances)

	switch key {
	case "reviews":
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Ratings.ReviewCount > sorted[j].Ratings.ReviewCount
		})
	case "price-low":
		sort.SliceStable(sorted, func(i, j int) bool {
			return priceAmount(sorted[i]) < priceAmount(sorted[j])
		})
	case "price-high":
		sort.SliceStable(sorted, func(i, j int) bool {
			return priceAmount(sorted[i]) > priceAmount(sorted[j])
		})
	case "newest":
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].ReleaseYear > sorted[j].ReleaseYear
		})
	default:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Ratings.Overall > sorted[j].Ratings.Overall
		})
	}

	return sorted
}

func priceAmount(f catalog.Fragrance) float64 {
	if f.Price == nil {
		return 0
	}
	return f.Price.Amount
}
