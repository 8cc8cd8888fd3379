// Package catalog holds the catalogue entities in both their stored
// (normalized, foreign-key) and served (resolved, embedded) shapes, plus the
// pure resolution logic between them.
package catalog

// NoteFamilies is the ordered list of olfactory families exposed to clients
var NoteFamilies = []string{"Citrus", "Floral", "Woody", "Oriental", "Fresh", "Gourmand", "Spicy"}

// Brand is immutable reference data describing a fragrance house
type Brand struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Country     string `json:"country"`
	FoundedYear *int   `json:"foundedYear,omitempty"`
}

// Note is a single olfactory note; Family is nil when unclassified
type Note struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Family *string `json:"family"`
}

// NoteIDs is the stored note pyramid, holding note identifiers only
type NoteIDs struct {
	Top    []string `json:"top"`
	Middle []string `json:"middle"`
	Base   []string `json:"base"`
}

// NotePyramid is the served note pyramid with embedded Note objects
type NotePyramid struct {
	Top    []Note `json:"top"`
	Middle []Note `json:"middle"`
	Base   []Note `json:"base"`
}

// Ratings aggregates community scores for a fragrance
type Ratings struct {
	Overall     float64 `json:"overall"`
	Longevity   float64 `json:"longevity"`
	Sillage     float64 `json:"sillage"`
	Value       float64 `json:"value"`
	ReviewCount int     `json:"reviewCount"`
}

// Price is optional retail information
type Price struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Size     string  `json:"size"`
}

// NormalizedFragrance is the stored document shape: foreign keys, not objects
type NormalizedFragrance struct {
	ID            string
	Name          string
	BrandID       string
	ReleaseYear   int
	Concentration string
	Gender        string
	Description   string
	Perfumer      *string
	ImageURL      string
	Notes         NoteIDs
	Ratings       Ratings
	Price         *Price
}

// Fragrance is the fully resolved shape served to clients
type Fragrance struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Brand         Brand       `json:"brand"`
	ReleaseYear   int         `json:"releaseYear"`
	Concentration string      `json:"concentration"`
	Gender        string      `json:"gender"`
	Description   string      `json:"description"`
	Perfumer      *string     `json:"perfumer"`
	ImageURL      string      `json:"imageUrl"`
	Notes         NotePyramid `json:"notes"`
	Ratings       Ratings     `json:"ratings"`
	Price         *Price      `json:"price"`
}

// NoteIDSet returns the union of the fragrance's top/middle/base note IDs
func (f Fragrance) NoteIDSet() map[string]struct{} {
	set := make(map[string]struct{})
	for _, layer := range [][]Note{f.Notes.Top, f.Notes.Middle, f.Notes.Base} {
		for _, n := range layer {
			set[n.ID] = struct{}{}
		}
	}
	return set
}
