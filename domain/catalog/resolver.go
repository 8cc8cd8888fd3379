package catalog

import "encoding/json"

// ResolveFragrance projects a normalized fragrance into the served shape by
// looking up its brand and note identifiers in the given tables. Missing
// references are a normal state (a note can be deleted after a fragrance
// referenced it) and resolve to a placeholder carrying the original ID.
func ResolveFragrance(n NormalizedFragrance, brands map[string]Brand, notes map[string]Note) Fragrance {
	brand, ok := brands[n.BrandID]
	if !ok {
		brand = Brand{ID: n.BrandID}
	}

	return Fragrance{
		ID:            n.ID,
		Name:          n.Name,
		Brand:         brand,
		ReleaseYear:   n.ReleaseYear,
		Concentration: n.Concentration,
		Gender:        n.Gender,
		Description:   n.Description,
		Perfumer:      n.Perfumer,
		ImageURL:      n.ImageURL,
		Notes: NotePyramid{
			Top:    resolveNotes(n.Notes.Top, notes),
			Middle: resolveNotes(n.Notes.Middle, notes),
			Base:   resolveNotes(n.Notes.Base, notes),
		},
		Ratings: n.Ratings,
		Price:   n.Price,
	}
}

func resolveNotes(ids []string, notes map[string]Note) []Note {
	resolved := make([]Note, 0, len(ids))
	for _, id := range ids {
		note, ok := notes[id]
		if !ok {
			note = Note{ID: id}
		}
		resolved = append(resolved, note)
	}
	return resolved
}

// BrandRef accepts either a bare brand ID or an embedded brand object
type BrandRef struct {
	ID string
}

// UnmarshalJSON implements the dual-shape decoding
func (r *BrandRef) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	r.ID = obj.ID
	return nil
}

// NoteRef accepts either a bare note ID or an embedded note object
type NoteRef struct {
	ID string
}

// UnmarshalJSON implements the dual-shape decoding
func (r *NoteRef) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	r.ID = obj.ID
	return nil
}

// NoteRefPyramid is the write-side note pyramid
type NoteRefPyramid struct {
	Top    []NoteRef `json:"top"`
	Middle []NoteRef `json:"middle"`
	Base   []NoteRef `json:"base"`
}

// FragranceWrite is the payload writers submit. Brand and notes may arrive
// fully denormalized (nested objects) or as bare IDs; absent fields stay nil
// so partial updates only touch what the caller sent.
type FragranceWrite struct {
	Name          *string         `json:"name"`
	Brand         *BrandRef       `json:"brand"`
	BrandID       *string         `json:"brandId"`
	ReleaseYear   *int            `json:"releaseYear"`
	Concentration *string         `json:"concentration"`
	Gender        *string         `json:"gender"`
	Description   *string         `json:"description"`
	Perfumer      *string         `json:"perfumer"`
	ImageURL      *string         `json:"imageUrl"`
	Notes         *NoteRefPyramid `json:"notes"`
	Ratings       *Ratings        `json:"ratings"`
	Price         *Price          `json:"price"`
}

// NormalizeFragranceForWrite extracts a store-ready document from a write
// payload, reducing embedded objects to their identifiers. Fields absent from
// the payload are omitted from the result.
func NormalizeFragranceForWrite(w FragranceWrite) map[string]interface{} {
	doc := make(map[string]interface{})

	if w.Name != nil {
		doc["name"] = *w.Name
	}
	if w.ReleaseYear != nil {
		doc["releaseYear"] = *w.ReleaseYear
	}
	if w.Concentration != nil {
		doc["concentration"] = *w.Concentration
	}
	if w.Gender != nil {
		doc["gender"] = *w.Gender
	}
	if w.Description != nil {
		doc["description"] = *w.Description
	}
	if w.Perfumer != nil {
		doc["perfumer"] = *w.Perfumer
	}
	if w.ImageURL != nil {
		doc["imageUrl"] = *w.ImageURL
	}

	// Brand object wins over a bare brandId when both are present
	if w.Brand != nil {
		doc["brandId"] = w.Brand.ID
	} else if w.BrandID != nil {
		doc["brandId"] = *w.BrandID
	}

	if w.Notes != nil {
		doc["notes"] = map[string]interface{}{
			"top":    noteRefIDs(w.Notes.Top),
			"middle": noteRefIDs(w.Notes.Middle),
			"base":   noteRefIDs(w.Notes.Base),
		}
	}

	if w.Ratings != nil {
		doc["ratings"] = map[string]interface{}{
			"overall":     w.Ratings.Overall,
			"longevity":   w.Ratings.Longevity,
			"sillage":     w.Ratings.Sillage,
			"value":       w.Ratings.Value,
			"reviewCount": w.Ratings.ReviewCount,
		}
	}

	if w.Price != nil {
		currency := w.Price.Currency
		if currency == "" {
			currency = "USD"
		}
		doc["price"] = map[string]interface{}{
			"amount":   w.Price.Amount,
			"currency": currency,
			"size":     w.Price.Size,
		}
	}

	return doc
}

func noteRefIDs(refs []NoteRef) []string {
	ids := make([]string, 0, len(refs))
	for _, r := range refs {
		ids = append(ids, r.ID)
	}
	return ids
}
