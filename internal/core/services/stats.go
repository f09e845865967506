package services

import (
	"context"
	"fmt"
	"math"

	"github.com/shelfwise/shelfwise-core/internal/core/domain"
	"github.com/shelfwise/shelfwise-core/internal/core/ports/driven"
	"github.com/shelfwise/shelfwise-core/internal/core/ports/driving"
)

// Ensure statsService implements StatsService
var _ driving.StatsService = (*statsService)(nil)

// statsService implements the StatsService interface
type statsService struct {
	bookStore driven.BookStore
}

// NewStatsService creates a new StatsService
func NewStatsService(bookStore driven.BookStore) driving.StatsService {
	return &statsService{bookStore: bookStore}
}

// Overview returns totals, the average price and the rating distribution.
// An empty catalog yields domain.ErrNotFound.
func (s *statsService) Overview(ctx context.Context) (*domain.StatsOverview, error) {
	overview, err := s.bookStore.Overview(ctx)
	if err != nil {
		return nil, fmt.Errorf("stats overview: %w", err)
	}
	if overview.TotalBooks == 0 {
		return nil, domain.ErrNotFound
	}
	overview.AveragePrice = round2(overview.AveragePrice)
	return overview, nil
}

// Categories returns count and average price per genre. An empty catalog
// yields domain.ErrNotFound.
func (s *statsService) Categories(ctx context.Context) ([]domain.CategoryStats, error) {
	stats, err := s.bookStore.CategoryStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("category stats: %w", err)
	}
	if len(stats) == 0 {
		return nil, domain.ErrNotFound
	}
	for i := range stats {
		stats[i].AveragePrice = round2(stats[i].AveragePrice)
	}
	return stats, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
