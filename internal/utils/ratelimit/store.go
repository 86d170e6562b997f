package ratelimit

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Store keeps one limiter per client and evicts limiters of clients that
// have been idle for longer than the configured TTL.
type Store struct {
	rate     Rate
	idleTTL  time.Duration
	limiters map[string]*Limiter
	mu       sync.Mutex

	// now is replaced in tests
	now func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewStore creates a store and starts its cleanup goroutine, which runs
// every cleanupInterval until Stop is called.
func NewStore(rate Rate, cleanupInterval, idleTTL time.Duration) *Store {
	s := newStore(rate, idleTTL, time.Now)
	go s.cleanupRoutine(cleanupInterval)
	return s
}

func newStore(rate Rate, idleTTL time.Duration, now func() time.Time) *Store {
	return &Store{
		rate:     rate,
		idleTTL:  idleTTL,
		limiters: make(map[string]*Limiter),
		now:      now,
		stop:     make(chan struct{}),
	}
}

// Allow reports whether clientID may make another request now.
func (s *Store) Allow(clientID string) bool {
	now := s.now()

	s.mu.Lock()
	limiter, ok := s.limiters[clientID]
	if !ok {
		limiter = NewLimiter(s.rate, now)
		s.limiters[clientID] = limiter
	}
	s.mu.Unlock()

	return limiter.Allow(now)
}

// size returns the number of tracked clients.
func (s *Store) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (s *Store) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Store) cleanupRoutine(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stop:
			return
		}
	}
}

// cleanup drops limiters idle for longer than the TTL. A dropped client
// starts again with a full bucket, which is never stricter than keeping it.
func (s *Store) cleanup() {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for clientID, limiter := range s.limiters {
		if limiter.idleSince(cutoff) {
			delete(s.limiters, clientID)
			evicted++
		}
	}

	if evicted > 0 {
		log.Debug().
			Int("evicted", evicted).
			Int("remaining", len(s.limiters)).
			Msg("Evicted idle rate limiters")
	}
}
