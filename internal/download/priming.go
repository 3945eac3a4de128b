package download

import (
	"sync"
	"time"
)

// PrimeState tracks where a calendar date sits in the platform's
// priming protocol.
type PrimeState int

const (
	// Unprimed means no index page request has been made for the date;
	// media requests for it come back blank.
	Unprimed PrimeState = iota

	// Primed means the date's index page was fetched in this session,
	// so its media files are retrievable.
	Primed

	// Fetched means at least one media file for the date downloaded
	// successfully after priming.
	Fetched
)

// PrimeTracker records the priming state per calendar date.
//
// The platform only serves a date's media files after its index page
// has been requested in the same session. The tracker makes that
// protocol explicit: a fetch must observe Primed (or later) for its
// date before requesting media, and a blank media response resets the
// date to Unprimed so the next attempt re-primes.
type PrimeTracker struct {
	mu     sync.Mutex
	states map[string]PrimeState
}

// NewPrimeTracker creates an empty tracker; every date starts Unprimed.
func NewPrimeTracker() *PrimeTracker {
	return &PrimeTracker{states: make(map[string]PrimeState)}
}

// State returns the date's current priming state.
func (t *PrimeTracker) State(date time.Time) PrimeState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.states[key(date)]
}

// MarkPrimed records a successful index page request for the date.
func (t *PrimeTracker) MarkPrimed(date time.Time) {
	t.set(date, Primed)
}

// MarkFetched records a successful media download for the date.
func (t *PrimeTracker) MarkFetched(date time.Time) {
	t.set(date, Fetched)
}

// Reset returns the date to Unprimed, forcing the next fetch for it to
// prime again. Called when the platform serves a blank response for a
// date believed primed.
func (t *PrimeTracker) Reset(date time.Time) {
	t.set(date, Unprimed)
}

func (t *PrimeTracker) set(date time.Time, state PrimeState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.states[key(date)] = state
}

func key(date time.Time) string {
	return date.Format("2006-01-02")
}
