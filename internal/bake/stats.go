package bake

import (
	"context"
	"fmt"

	"github.com/hammamikhairi/proofbox/internal/domain"
)

// HistoryStats summarizes finished bakes.
type HistoryStats struct {
	Total       int
	Completed   int
	Abandoned   int
	SuccessRate float64 // completed / total, 0 when history is empty
	AvgRating   float64 // over completed bakes that carry a rating
	Rated       int     // how many bakes AvgRating covers
}

// Stats computes history statistics from the store. Unrated bakes are
// excluded from the average rather than counted as zero.
func (l *Lifecycle) Stats(ctx context.Context) (HistoryStats, error) {
	history, err := l.store.History(ctx)
	if err != nil {
		return HistoryStats{}, fmt.Errorf("loading history: %w", err)
	}

	var s HistoryStats
	var ratingSum int
	for _, b := range history {
		s.Total++
		switch b.Status {
		case domain.BakeCompleted:
			s.Completed++
			if b.Rating != nil {
				s.Rated++
				ratingSum += *b.Rating
			}
		case domain.BakeAbandoned:
			s.Abandoned++
		}
	}
	if s.Total > 0 {
		s.SuccessRate = float64(s.Completed) / float64(s.Total)
	}
	if s.Rated > 0 {
		s.AvgRating = float64(ratingSum) / float64(s.Rated)
	}
	return s, nil
}
