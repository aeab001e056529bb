// Package models defines data structures for metadata API responses.
package models

import (
	"strconv"
	"time"
)

// MovieSummary is a list entry produced by trending, upcoming, discover,
// search and recommendation endpoints.
type MovieSummary struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	GenreIDs     []int   `json:"genre_ids"`
	Popularity   float64 `json:"popularity"`
}

// ReleaseYear returns the year of ReleaseDate, or 0 when unknown.
func (m MovieSummary) ReleaseYear() int {
	return yearOf(m.ReleaseDate)
}

// MoviePage is one paginated list response.
type MoviePage struct {
	Page         int            `json:"page"`
	Results      []MovieSummary `json:"results"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}

// Truncate returns at most n results, preserving order. The backing array is
// copied so callers can publish the slice without aliasing the page.
func (p *MoviePage) Truncate(n int) []MovieSummary {
	if p == nil {
		return []MovieSummary{}
	}
	if n > len(p.Results) {
		n = len(p.Results)
	}
	out := make([]MovieSummary, n)
	copy(out, p.Results[:n])
	return out
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// MovieDetail is the payload of GET /movie/{id}.
type MovieDetail struct {
	ID                  int                 `json:"id"`
	IMDBId              string              `json:"imdb_id"`
	Title               string              `json:"title"`
	OriginalTitle       string              `json:"original_title"`
	Tagline             string              `json:"tagline"`
	Overview            string              `json:"overview"`
	PosterPath          string              `json:"poster_path"`
	BackdropPath        string              `json:"backdrop_path"`
	ReleaseDate         string              `json:"release_date"`
	Runtime             int                 `json:"runtime"`
	Budget              int64               `json:"budget"`
	Revenue             int64               `json:"revenue"`
	VoteAverage         float64             `json:"vote_average"`
	VoteCount           int                 `json:"vote_count"`
	Homepage            string              `json:"homepage"`
	Status              string              `json:"status"`
	Genres              []Genre             `json:"genres"`
	ProductionCompanies []ProductionCompany `json:"production_companies"`
	ProductionCountries []ProductionCountry `json:"production_countries"`
	SpokenLanguages     []SpokenLanguage    `json:"spoken_languages"`
}

// Summary projects the detail onto the list shape.
func (d *MovieDetail) Summary() MovieSummary {
	genreIDs := make([]int, 0, len(d.Genres))
	for _, g := range d.Genres {
		genreIDs = append(genreIDs, g.ID)
	}
	return MovieSummary{
		ID:           d.ID,
		Title:        d.Title,
		Overview:     d.Overview,
		PosterPath:   d.PosterPath,
		BackdropPath: d.BackdropPath,
		ReleaseDate:  d.ReleaseDate,
		VoteAverage:  d.VoteAverage,
		VoteCount:    d.VoteCount,
		GenreIDs:     genreIDs,
	}
}

// StatusResponse is the body of account write endpoints.
type StatusResponse struct {
	Success       bool   `json:"success"`
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}

// FavoriteRequest is the body of POST /account/{id}/favorite.
type FavoriteRequest struct {
	MediaType string `json:"media_type"`
	MediaID   int    `json:"media_id"`
	Favorite  bool   `json:"favorite"`
}

func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	if t, err := time.Parse("2006-01-02", date); err == nil {
		return t.Year()
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
