package query

import (
	"sort"

	"scentbase-backend/domain/catalog"
	apperrors "scentbase-backend/pkg/errors"
)

// DefaultSimilarLimit is how many similar fragrances are returned when the
// caller does not ask for a specific count
const DefaultSimilarLimit = 6

// SimilarityWeights tunes the ranking policy. Whether metadata matches
// should ever outrank genuine note overlap is a product decision, so the
// weights are data rather than constants baked into the scoring.
type SimilarityWeights struct {
	NoteOverlap       float64
	SameBrand         float64
	SameGender        float64
	SameConcentration float64
}

// DefaultSimilarityWeights reproduce the established ranking behavior
var DefaultSimilarityWeights = SimilarityWeights{
	NoteOverlap:       2.0,
	SameBrand:         0.15,
	SameGender:        0.10,
	SameConcentration: 0.05,
}

// SimilarTo ranks the candidates most similar to the fragrance with the
// given ID. Candidates scoring zero are excluded; ties keep input order.
// A target absent from the list is a distinct not-found outcome, never an
// empty success. Negative limits clamp to 0; there is no upper clamp.
func SimilarTo(fragrances []catalog.Fragrance, targetID string, limit int, w SimilarityWeights) ([]catalog.Fragrance, error) {
	var target *catalog.Fragrance
	for i := range fragrances {
		if fragrances[i].ID == targetID {
			target = &fragrances[i]
			break
		}
	}
	if target == nil {
		return nil, apperrors.NewNotFoundError("fragrance")
	}

	if limit < 0 {
		limit = 0
	}

	targetNotes := target.NoteIDSet()

	type scored struct {
		fragrance catalog.Fragrance
		score     float64
	}
	candidates := make([]scored, 0, len(fragrances))

	for _, c := range fragrances {
		if c.ID == target.ID {
			continue
		}

		score := w.NoteOverlap * jaccard(targetNotes, c.NoteIDSet())
		if c.Brand.ID == target.Brand.ID {
			score += w.SameBrand
		}
		if c.Gender == target.Gender {
			score += w.SameGender
		}
		if c.Concentration == target.Concentration {
			score += w.SameConcentration
		}

		if score > 0 {
			candidates = append(candidates, scored{fragrance: c, score: score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if limit < len(candidates) {
		candidates = candidates[:limit]
	}

	result := make([]catalog.Fragrance, 0, len(candidates))
	for _, c := range candidates {
		result = append(result, c.fragrance)
	}
	return result, nil
}

// jaccard is |A∩B| / |A∪B|, defined as 0 when either set is empty
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	intersection := 0
	for id := range a {
		if _, ok := b[id]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
