package domain

// RatingCount is the number of books carrying a rating
type RatingCount struct {
	Rating string `json:"rating"`
	Count  int    `json:"count"`
}

// StatsOverview summarizes the whole catalog
type StatsOverview struct {
	TotalBooks         int           `json:"total_books"`
	AveragePrice       float64       `json:"average_price"`
	RatingDistribution []RatingCount `json:"rating_distribution"`
}

// CategoryStats summarizes one genre
type CategoryStats struct {
	Category     string  `json:"category"`
	TotalBooks   int     `json:"total_books"`
	AveragePrice float64 `json:"average_price"`
}
