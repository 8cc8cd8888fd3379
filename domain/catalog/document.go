package catalog

import "scentbase-backend/pkg/docfields"

// Decoding of loosely typed store documents into the catalogue entities.
// All defaulting for the catalogue document shapes lives here so read sites
// never have to guess at absent keys.

// BrandFromDocument builds a Brand from a stored document
func BrandFromDocument(id string, fields map[string]interface{}) Brand {
	return Brand{
		ID:          id,
		Name:        docfields.String(fields, "name"),
		Country:     docfields.String(fields, "country"),
		FoundedYear: docfields.OptInt(fields, "foundedYear"),
	}
}

// NoteFromDocument builds a Note from a stored document
func NoteFromDocument(id string, fields map[string]interface{}) Note {
	return Note{
		ID:     id,
		Name:   docfields.String(fields, "name"),
		Family: docfields.OptString(fields, "family"),
	}
}

// NormalizedFragranceFromDocument builds a NormalizedFragrance from a stored
// document. The stored shape must stay as-is for interop with the seeder.
func NormalizedFragranceFromDocument(id string, fields map[string]interface{}) NormalizedFragrance {
	rawNotes := docfields.Map(fields, "notes")
	rawRatings := docfields.Map(fields, "ratings")

	n := NormalizedFragrance{
		ID:            id,
		Name:          docfields.String(fields, "name"),
		BrandID:       docfields.String(fields, "brandId"),
		ReleaseYear:   docfields.Int(fields, "releaseYear"),
		Concentration: docfields.String(fields, "concentration"),
		Gender:        docfields.String(fields, "gender"),
		Description:   docfields.String(fields, "description"),
		Perfumer:      docfields.OptString(fields, "perfumer"),
		ImageURL:      docfields.String(fields, "imageUrl"),
		Notes: NoteIDs{
			Top:    docfields.StringSlice(rawNotes, "top"),
			Middle: docfields.StringSlice(rawNotes, "middle"),
			Base:   docfields.StringSlice(rawNotes, "base"),
		},
		Ratings: Ratings{
			Overall:     docfields.Float(rawRatings, "overall"),
			Longevity:   docfields.Float(rawRatings, "longevity"),
			Sillage:     docfields.Float(rawRatings, "sillage"),
			Value:       docfields.Float(rawRatings, "value"),
			ReviewCount: docfields.Int(rawRatings, "reviewCount"),
		},
	}

	if rawPrice := docfields.Map(fields, "price"); rawPrice != nil {
		currency := docfields.String(rawPrice, "currency")
		if currency == "" {
			currency = "USD"
		}
		n.Price = &Price{
			Amount:   docfields.Float(rawPrice, "amount"),
			Currency: currency,
			Size:     docfields.String(rawPrice, "size"),
		}
	}

	return n
}
