package domain

import "strings"

// Book is a catalog entry as collected by the scraper
type Book struct {
	ID              int64   `json:"id"`
	UPC             string  `json:"upc"`
	Title           string  `json:"title"`
	Genre           string  `json:"genre"`
	Price           float64 `json:"price"`
	Availability    int     `json:"availability"`
	Rating          string  `json:"rating"`
	Description     *string `json:"description"`
	ProductType     string  `json:"product_type"`
	PriceExclTax    float64 `json:"price_excl_tax"`
	PriceInclTax    float64 `json:"price_incl_tax"`
	Tax             float64 `json:"tax"`
	NumberOfReviews int     `json:"number_of_reviews"`
	URL             string  `json:"url"`
	ImageURL        string  `json:"image_url"`
}

// BookSummary is the reduced view returned by list endpoints
type BookSummary struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Genre    string  `json:"genre"`
	Price    float64 `json:"price"`
	Rating   string  `json:"rating"`
	ImageURL string  `json:"image_url"`
}

// ToSummary converts a Book to BookSummary
func (b *Book) ToSummary() *BookSummary {
	return &BookSummary{
		ID:       b.ID,
		Title:    b.Title,
		Genre:    b.Genre,
		Price:    b.Price,
		Rating:   b.Rating,
		ImageURL: b.ImageURL,
	}
}

// Star ratings as the catalog spells them
var ratingWords = []string{"One", "Two", "Three", "Four", "Five"}

// RatingValue maps a word rating ("One".."Five") to 1..5, or 0 if unknown
func RatingValue(word string) int {
	for i, w := range ratingWords {
		if strings.EqualFold(w, strings.TrimSpace(word)) {
			return i + 1
		}
	}
	return 0
}

// RatingWord maps 1..5 back to its word form, or "" if out of range
func RatingWord(value int) string {
	if value < 1 || value > len(ratingWords) {
		return ""
	}
	return ratingWords[value-1]
}

// BookSearch filters books by title and/or category (case-insensitive substring)
type BookSearch struct {
	Title    string
	Category string
}

// IsEmpty reports whether no filter was supplied
func (s BookSearch) IsEmpty() bool {
	return strings.TrimSpace(s.Title) == "" && strings.TrimSpace(s.Category) == ""
}

// PriceRange is an inclusive price filter
type PriceRange struct {
	Min float64
	Max float64
}

// Valid reports whether the range is well formed
func (r PriceRange) Valid() bool {
	return r.Min >= 0 && r.Max >= r.Min
}

// DefaultTopRatedLimit is used when the caller does not supply a limit
const DefaultTopRatedLimit = 10
