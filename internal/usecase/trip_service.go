package usecase

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/tripmatch/backend/internal/domain"
)

// tripIDLength is the number of uuid characters kept for shareable trip ids.
const tripIDLength = 8

// Calculation fan-out: how many of the group's geographic preferences are
// searched, how many regions each scope contributes, and how many survive
// the final merge.
const (
	maxScopesSearched  = 3
	regionsPerScope    = 3
	maxCombinedResults = 7
)

// defaultScopes is searched when every participant asked for "Anywhere".
var defaultScopes = []string{"Europe", "Asia"}

// defaultClimate is assumed when a participant leaves climate unset.
const defaultClimate = "flexible"

// TripServiceConfig holds configuration for the trip service
type TripServiceConfig struct {
	EnableDebugLogging bool
}

// TripService owns the trip lifecycle: participants, match calculation, and
// votes. The matcher itself stays stateless; all mutable state lives in the
// trip repository.
type TripService struct {
	trips              domain.TripRepository
	matcher            domain.Matcher
	enableDebugLogging bool
}

// NewTripService creates a trip service with its dependencies.
func NewTripService(trips domain.TripRepository, matcher domain.Matcher, config TripServiceConfig) *TripService {
	return &TripService{
		trips:              trips,
		matcher:            matcher,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// CreateTrip starts a new planning session and returns it with a short
// shareable id.
func (s *TripService) CreateTrip(ctx context.Context, tripName, organizerName, tripType string, durationDays int) (*domain.Trip, error) {
	if tripName == "" {
		tripName = "Untitled Trip"
	}

	trip := &domain.Trip{
		ID:            uuid.NewString()[:tripIDLength],
		TripName:      tripName,
		OrganizerName: organizerName,
		TripType:      tripType,
		DurationDays:  durationDays,
		Status:        domain.TripStatusCollecting,
		CreatedAt:     time.Now(),
		Participants:  []domain.UserPreference{},
	}

	if err := s.trips.Save(ctx, trip); err != nil {
		return nil, err
	}

	if s.enableDebugLogging {
		log.Printf("[TRIP] Created trip %s (%q, type=%q)", trip.ID, trip.TripName, trip.TripType)
	}

	return trip, nil
}

// GetTrip returns a trip by id.
func (s *TripService) GetTrip(ctx context.Context, id string) (*domain.Trip, error) {
	return s.trips.Get(ctx, id)
}

// SubmitPreferences records one participant's preferences. Submitting again
// under the same name replaces the earlier record in full, not merged.
func (s *TripService) SubmitPreferences(ctx context.Context, tripID string, pref domain.UserPreference) (*domain.Trip, error) {
	if pref.Name == "" {
		return nil, domain.ErrInvalidRequest
	}
	if pref.BudgetRange == [2]int{} {
		pref.BudgetRange = [2]int{50, 150}
	}
	if pref.Climate == "" {
		pref.Climate = defaultClimate
	}

	return s.trips.Update(ctx, tripID, func(trip *domain.Trip) error {
		for i := range trip.Participants {
			if trip.Participants[i].Name == pref.Name {
				trip.Participants[i] = pref
				return nil
			}
		}
		trip.Participants = append(trip.Participants, pref)
		return nil
	})
}

// CalculateMatches runs the matcher across the group's top geographic
// preferences, merges the per-scope results, and stores the top picks on the
// trip. Requires at least two participants.
func (s *TripService) CalculateMatches(ctx context.Context, tripID string) (*domain.TripResults, error) {
	trip, err := s.trips.Get(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if len(trip.Participants) < 2 {
		return nil, domain.ErrNotEnoughParticipants
	}

	group := trip.Participants
	counts, scopes := analyzeScopes(group)

	var combined []domain.ScoredResult
	for _, scope := range scopes {
		results, err := s.matcher.ScoreRegions(ctx, group, scope, trip.TripType)
		if err != nil {
			if s.enableDebugLogging {
				log.Printf("[TRIP] Scope %q failed for trip %s: %v", scope, tripID, err)
			}
			return nil, err
		}
		if len(results) > regionsPerScope {
			results = results[:regionsPerScope]
		}
		combined = append(combined, results...)
	}

	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].AggregateScore > combined[j].AggregateScore
	})
	if len(combined) > maxCombinedResults {
		combined = combined[:maxCombinedResults]
	}

	results := &domain.TripResults{
		Regions: combined,
		GeographicAnalysis: domain.GeographicAnalysis{
			Preferences: counts,
			IsSplit:     len(counts) > 2,
		},
		CalculatedAt: time.Now(),
	}

	_, err = s.trips.Update(ctx, tripID, func(trip *domain.Trip) error {
		trip.Results = results
		trip.Status = domain.TripStatusResultsReady
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.enableDebugLogging {
		log.Printf("[TRIP] Trip %s: %d regions across %d scopes", tripID, len(combined), len(scopes))
	}

	return results, nil
}

// Vote records one participant's pick; voting again replaces the earlier
// vote. Returns the tally per region id.
func (s *TripService) Vote(ctx context.Context, tripID, userName, regionID string) (map[string]int, error) {
	if userName == "" || regionID == "" {
		return nil, domain.ErrInvalidRequest
	}

	trip, err := s.trips.Update(ctx, tripID, func(trip *domain.Trip) error {
		votes := trip.Votes[:0]
		for _, vote := range trip.Votes {
			if vote.UserName != userName {
				votes = append(votes, vote)
			}
		}
		trip.Votes = append(votes, domain.Vote{
			UserName: userName,
			RegionID: regionID,
			VotedAt:  time.Now(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	tally := make(map[string]int, len(trip.Votes))
	for _, vote := range trip.Votes {
		tally[vote.RegionID]++
	}
	return tally, nil
}

// CityMatches ranks the cities of a chosen region for the trip's group.
func (s *TripService) CityMatches(ctx context.Context, tripID, regionID string) ([]domain.ScoredResult, error) {
	trip, err := s.trips.Get(ctx, tripID)
	if err != nil {
		return nil, err
	}

	return s.matcher.ScoreCities(ctx, regionID, trip.Participants, trip.TripType)
}

// analyzeScopes tallies the group's geographic preferences and picks the
// scopes to search: up to three distinct preferences excluding "Anywhere",
// falling back to the defaults when everyone is flexible.
func analyzeScopes(group []domain.UserPreference) (map[string]int, []string) {
	counts := make(map[string]int, len(group))
	var ordered []string
	for _, user := range group {
		scope := user.GeographicPreference
		if scope == "" {
			scope = ScopeAnywhere
		}
		if counts[scope] == 0 {
			ordered = append(ordered, scope)
		}
		counts[scope]++
	}

	var scopes []string
	for _, scope := range ordered {
		if scope == ScopeAnywhere {
			continue
		}
		scopes = append(scopes, scope)
	}

	// Most requested first; ties keep submission order.
	sort.SliceStable(scopes, func(i, j int) bool {
		return counts[scopes[i]] > counts[scopes[j]]
	})

	if len(scopes) == 0 {
		scopes = append(scopes, defaultScopes...)
	}
	if len(scopes) > maxScopesSearched {
		scopes = scopes[:maxScopesSearched]
	}

	return counts, scopes
}
