package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scentbase-backend/domain/catalog"
)

func fixture() []catalog.Fragrance {
	price := func(amount float64) *catalog.Price {
		return &catalog.Price{Amount: amount, Currency: "USD", Size: "100ml"}
	}
	note := func(id string) catalog.Note { return catalog.Note{ID: id, Name: id} }

	return []catalog.Fragrance{
		{
			ID:            "f1",
			Name:          "Oud Royale",
			Brand:         catalog.Brand{ID: "b1", Name: "Maison Noir"},
			Concentration: "EDP",
			Gender:        "Unisex",
			ReleaseYear:   2019,
			Notes: catalog.NotePyramid{
				Top:  []catalog.Note{note("bergamot")},
				Base: []catalog.Note{note("oud")},
			},
			Ratings: catalog.Ratings{Overall: 4.5, ReviewCount: 120},
			Price:   price(250),
		},
		{
			ID:            "f2",
			Name:          "Citrus Dawn",
			Brand:         catalog.Brand{ID: "b2", Name: "Lumière"},
			Concentration: "EDT",
			Gender:        "Feminine",
			ReleaseYear:   2022,
			Notes: catalog.NotePyramid{
				Top: []catalog.Note{note("bergamot"), note("lemon")},
			},
			Ratings: catalog.Ratings{Overall: 4.1, ReviewCount: 300},
			Price:   price(80),
		},
		{
			ID:            "f3",
			Name:          "Bois Sombre",
			Brand:         catalog.Brand{ID: "b1", Name: "Maison Noir"},
			Concentration: "Parfum",
			Gender:        "Masculine",
			ReleaseYear:   2024,
			Notes: catalog.NotePyramid{
				Base: []catalog.Note{note("cedar"), note("oud")},
			},
			Ratings: catalog.Ratings{Overall: 4.8, ReviewCount: 45},
		},
	}
}

func ids(fragrances []catalog.Fragrance) []string {
	out := make([]string, 0, len(fragrances))
	for _, f := range fragrances {
		out = append(out, f.ID)
	}
	return out
}

func TestApplyFilters(t *testing.T) {
	tests := []struct {
		name    string
		filters Filters
		want    []string
	}{
		{name: "no filters keeps everything", filters: Filters{}, want: []string{"f1", "f2", "f3"}},
		{name: "search matches name case-insensitively", filters: Filters{Search: "oud roy"}, want: []string{"f1"}},
		{name: "search matches brand name", filters: Filters{Search: "maison"}, want: []string{"f1", "f3"}},
		{name: "brand is exact on ID", filters: Filters{Brand: "b1"}, want: []string{"f1", "f3"}},
		{name: "concentration equality", filters: Filters{Concentration: "EDT"}, want: []string{"f2"}},
		{name: "gender equality", filters: Filters{Gender: "Unisex"}, want: []string{"f1"}},
		{name: "notes OR within the set", filters: Filters{Notes: []string{"lemon", "cedar"}}, want: []string{"f2", "f3"}},
		{name: "filters AND together", filters: Filters{Brand: "b1", Notes: []string{"oud"}, Gender: "Masculine"}, want: []string{"f3"}},
		{name: "blank note entries are ignored", filters: Filters{Notes: []string{" ", ""}}, want: []string{"f1", "f2", "f3"}},
		{name: "no match yields empty, not error", filters: Filters{Search: "nonexistent"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(fixture(), tt.filters)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestSortBy(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want []string
	}{
		{name: "rating by default", key: "", want: []string{"f3", "f1", "f2"}},
		{name: "unknown key degrades to rating", key: "alphabetical", want: []string{"f3", "f1", "f2"}},
		{name: "reviews descending", key: "reviews", want: []string{"f2", "f1", "f3"}},
		{name: "price-low treats missing price as zero", key: "price-low", want: []string{"f3", "f2", "f1"}},
		{name: "price-high", key: "price-high", want: []string{"f1", "f2", "f3"}},
		{name: "newest by release year", key: "newest", want: []string{"f3", "f2", "f1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SortBy(fixture(), tt.key)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestSortByDoesNotMutateInput(t *testing.T) {
	input := fixture()
	_ = SortBy(input, "reviews")
	assert.Equal(t, []string{"f1", "f2", "f3"}, ids(input))
}

func TestSortByIsStable(t *testing.T) {
	a := catalog.Fragrance{ID: "a", Ratings: catalog.Ratings{Overall: 4.0}}
	b := catalog.Fragrance{ID: "b", Ratings: catalog.Ratings{Overall: 4.0}}
	c := catalog.Fragrance{ID: "c", Ratings: catalog.Ratings{Overall: 4.0}}

	got := SortBy([]catalog.Fragrance{a, b, c}, "rating")
	require.Equal(t, []string{"a", "b", "c"}, ids(got))
}
