package model

import (
	"net/url"
	"strconv"
)

// Game is a catalog item as served by the backend.
type Game struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Genre       string   `json:"genre"`
	Platform    string   `json:"platform"`
	Rating      float64  `json:"rating"`
	Likes       int      `json:"likes"`
	Views       int      `json:"views"`
	Price       float64  `json:"price,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
	ReleaseDate string   `json:"release_date,omitempty"`
	Developer   string   `json:"developer,omitempty"`
	Publisher   string   `json:"publisher,omitempty"`
	Screenshots []string `json:"screenshots,omitempty"`
	Features    []string `json:"features,omitempty"`
	IsLiked     bool     `json:"is_liked"`
}

// SubjectID is the identity a rating widget uses for the game.
func (g Game) SubjectID() string { return GameSubject(g.ID) }

// GameSubject renders a game id as a rating subject.
func GameSubject(id int64) string { return strconv.FormatInt(id, 10) }

// Sort orders accepted by the search endpoint.
const (
	SortRelevance = "relevance"
	SortRating    = "rating"
	SortPriceLow  = "price_low"
	SortPriceHigh = "price_high"
	SortNewest    = "newest"
	SortPopular   = "popular"
)

// SearchFilters narrows a catalog search. Zero fields are not sent.
type SearchFilters struct {
	Query     string  `json:"q" validate:"max=200"`
	Genre     string  `json:"genre"`
	Platform  string  `json:"platform"`
	MinRating float64 `json:"min_rating" validate:"gte=0,lte=5"`
	MaxPrice  float64 `json:"max_price" validate:"gte=0"`
	SortBy    string  `json:"sort_by" validate:"omitempty,oneof=relevance rating price_low price_high newest popular"`
}

// Values encodes f as search query parameters.
func (f SearchFilters) Values() url.Values {
	v := url.Values{}
	if f.Query != "" {
		v.Set("q", f.Query)
	}
	if f.Genre != "" {
		v.Set("genre", f.Genre)
	}
	if f.Platform != "" {
		v.Set("platform", f.Platform)
	}
	if f.MinRating > 0 {
		v.Set("min_rating", strconv.FormatFloat(f.MinRating, 'f', -1, 64))
	}
	if f.MaxPrice > 0 {
		v.Set("max_price", strconv.FormatFloat(f.MaxPrice, 'f', -1, 64))
	}
	sortBy := f.SortBy
	if sortBy == "" {
		sortBy = SortRelevance
	}
	v.Set("sort_by", sortBy)
	return v
}

// ParseSearchFilters is the inverse of Values. Unparsable numbers are dropped.
func ParseSearchFilters(v url.Values) SearchFilters {
	f := SearchFilters{
		Query:    v.Get("q"),
		Genre:    v.Get("genre"),
		Platform: v.Get("platform"),
		SortBy:   v.Get("sort_by"),
	}
	if n, err := strconv.ParseFloat(v.Get("min_rating"), 64); err == nil {
		f.MinRating = n
	}
	if n, err := strconv.ParseFloat(v.Get("max_price"), 64); err == nil {
		f.MaxPrice = n
	}
	return f
}
