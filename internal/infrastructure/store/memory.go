package store

import (
	"context"
	"sync"
	"time"

	"github.com/tripmatch/backend/internal/domain"
)

// storedTrip pairs a trip with its last-touched time for retention sweeps.
type storedTrip struct {
	trip      *domain.Trip
	touchedAt time.Time
}

// MemoryStore is a thread-safe in-memory trip store. Writers go through
// Update, which runs the whole read-modify-write under the store lock, so
// concurrent preference submissions to the same trip cannot lose updates.
type MemoryStore struct {
	trips     map[string]storedTrip
	retention time.Duration
	mutex     sync.RWMutex
}

// NewMemoryStore creates an in-memory trip store. Trips untouched for the
// retention period are evicted; a non-positive retention disables eviction.
func NewMemoryStore(retention time.Duration) *MemoryStore {
	store := &MemoryStore{
		trips:     make(map[string]storedTrip),
		retention: retention,
	}

	if retention > 0 {
		go store.sweepStale()
	}

	return store
}

// Get retrieves a trip by id. The returned trip is a deep copy: callers use
// it after the lock is released, so it must not alias state a later Update
// will mutate.
func (s *MemoryStore) Get(ctx context.Context, id string) (*domain.Trip, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	stored, exists := s.trips[id]
	if !exists {
		return nil, domain.ErrTripNotFound
	}

	return stored.trip.Clone(), nil
}

// Save stores a deep copy of the trip, replacing any previous version. The
// copy keeps the caller's pointer disjoint from state later Updates mutate.
func (s *MemoryStore) Save(ctx context.Context, trip *domain.Trip) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.trips[trip.ID] = storedTrip{trip: trip.Clone(), touchedAt: time.Now()}
	return nil
}

// Update applies fn to the stored trip under the write lock and returns a
// deep copy of the post-mutation state. An error from fn aborts the update;
// callers must validate before mutating.
func (s *MemoryStore) Update(ctx context.Context, id string, fn func(*domain.Trip) error) (*domain.Trip, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	stored, exists := s.trips[id]
	if !exists {
		return nil, domain.ErrTripNotFound
	}

	if err := fn(stored.trip); err != nil {
		return nil, err
	}

	s.trips[id] = storedTrip{trip: stored.trip, touchedAt: time.Now()}
	return stored.trip.Clone(), nil
}

// Delete removes a trip. Deleting a missing trip is not an error.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.trips, id)
	return nil
}

// Size returns the current number of stored trips (for debugging/monitoring)
func (s *MemoryStore) Size() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.trips)
}

// sweepStale evicts trips past the retention period periodically
func (s *MemoryStore) sweepStale() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		s.mutex.Lock()
		cutoff := time.Now().Add(-s.retention)
		for id, stored := range s.trips {
			if stored.touchedAt.Before(cutoff) {
				delete(s.trips, id)
			}
		}
		s.mutex.Unlock()
	}
}
