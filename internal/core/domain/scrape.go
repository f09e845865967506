package domain

import "time"

// ScrapeResult reports the outcome of a catalog scrape
type ScrapeResult struct {
	Message   string        `json:"msg"`
	Inserted  int           `json:"inserted"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"-"`
	StartedAt time.Time     `json:"started_at"`
}
