package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeDeduplicatesProviders(t *testing.T) {
	netflix := Provider{ProviderID: 8, ProviderName: "Netflix"}
	apple := Provider{ProviderID: 2, ProviderName: "Apple TV"}
	google := Provider{ProviderID: 3, ProviderName: "Google Play"}

	region := RegionProviders{
		Link:     "https://example.test/watch",
		Flatrate: []Provider{netflix},
		Rent:     []Provider{apple, google},
		Buy:      []Provider{{ProviderID: 2, ProviderName: "Apple TV (buy)"}, google, netflix},
	}

	set := region.Merge("MX")
	assert.Equal(t, "MX", set.Region)
	assert.Equal(t, "https://example.test/watch", set.Link)
	require.Len(t, set.Providers, 3)
	assert.Equal(t, []Provider{netflix, apple, google}, set.Providers)

	seen := map[int]int{}
	for _, p := range set.Providers {
		seen[p.ProviderID]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "provider %d", id)
	}
}

func TestMergeEmptyRegion(t *testing.T) {
	var region RegionProviders

	set := region.Merge("FR")
	assert.Empty(t, set.Providers)
	assert.NotNil(t, set.Providers)
}

func TestTruncate(t *testing.T) {
	page := &MoviePage{Results: []MovieSummary{{ID: 1}, {ID: 2}, {ID: 3}}}

	two := page.Truncate(2)
	assert.Equal(t, []MovieSummary{{ID: 1}, {ID: 2}}, two)

	two[0].ID = 99
	assert.Equal(t, 1, page.Results[0].ID, "truncate must copy")

	assert.Len(t, page.Truncate(8), 3)

	var nilPage *MoviePage
	assert.Empty(t, nilPage.Truncate(8))
}

func TestReleaseYear(t *testing.T) {
	assert.Equal(t, 1999, MovieSummary{ReleaseDate: "1999-03-31"}.ReleaseYear())
	assert.Equal(t, 2024, MovieSummary{ReleaseDate: "2024"}.ReleaseYear())
	assert.Equal(t, 0, MovieSummary{ReleaseDate: ""}.ReleaseYear())
	assert.Equal(t, 0, MovieSummary{ReleaseDate: "soon"}.ReleaseYear())
}

func TestDetailSummary(t *testing.T) {
	d := &MovieDetail{
		ID:     603,
		Title:  "The Matrix",
		Genres: []Genre{{ID: 28, Name: "Action"}, {ID: 878, Name: "Science Fiction"}},
	}
	s := d.Summary()
	assert.Equal(t, 603, s.ID)
	assert.Equal(t, []int{28, 878}, s.GenreIDs)
}
