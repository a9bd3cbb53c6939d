package domain

import "context"

// TripRepository defines the interface for trip persistence. Update runs the
// mutation under the repository's write lock so concurrent submissions to the
// same trip cannot lose updates.
type TripRepository interface {
	Get(ctx context.Context, id string) (*Trip, error)
	Save(ctx context.Context, trip *Trip) error
	Update(ctx context.Context, id string, fn func(*Trip) error) (*Trip, error)
	Delete(ctx context.Context, id string) error
}

// Matcher defines the scoring engine contract consumed by the trip layer.
type Matcher interface {
	ScoreRegions(ctx context.Context, group []UserPreference, scope, tripType string) ([]ScoredResult, error)
	ScoreCities(ctx context.Context, regionID string, group []UserPreference, tripType string) ([]ScoredResult, error)
}
