// Package session holds the single mutable session record for the lifetime
// of the portal process: the access token, authentication flag, last-known
// profile, hydration state, and the client collections.
//
// The record is owned by the application root and handed to the lifecycle
// controller, which is its only mutator. Readers never observe a partially
// updated profile or collection set: every mutation happens at a completed
// operation boundary, under the state's lock.
package session

import (
	"sync"

	"github.com/aivise/portal-session/internal/portal/models"
)

// HydrationState tracks the one-time fetch of role-specific collections.
// The in-flight marker lets concurrent navigations coalesce on a single
// outstanding request instead of racing to issue duplicates.
type HydrationState int

const (
	HydrationIdle HydrationState = iota
	HydrationInFlight
	HydrationDone
)

// State is the tab-wide session record.
//
// Invariants, maintained by the lifecycle controller:
//   - authenticated implies a stored profile and a non-empty token;
//   - hydration moves Idle → InFlight → Done, with Done reached at most
//     once per session, and only after authentication;
//   - collections are present only for client-role profiles.
type State struct {
	mu sync.Mutex

	accessToken     string
	isAuthenticated bool
	profile         *models.UserProfile
	lastMessage     string

	currentYearStartDate string
	currentYearEndDate   string

	hydration    HydrationState
	epoch        uint64
	attempt      *hydrationAttempt
	hydrationErr error
	collections  *models.ClientCollections

	activePage string
}

// hydrationAttempt identifies one fetch. The epoch ties a FinishHydration
// call to the BeginHydration that started it, so a response arriving after
// an identity change (or after a newer attempt started) is discarded instead
// of being stored against the wrong session. err is written before done is
// closed and read only after, so waiters observe it without the lock.
type hydrationAttempt struct {
	epoch uint64
	done  chan struct{}
	err   error
}

// New returns an empty, unauthenticated session state.
func New() *State {
	return &State{}
}

// AccessToken returns the current credential; empty means absent.
func (s *State) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

// SetAccessToken overwrites the credential.
func (s *State) SetAccessToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = token
}

// IsAuthenticated reports whether the session is confirmed.
func (s *State) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isAuthenticated
}

// Profile returns the last-known user profile, or nil.
func (s *State) Profile() *models.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// SetProfile stores the profile and its year bounds.
func (s *State) SetProfile(p *models.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
	if p != nil {
		s.currentYearStartDate = p.CurrentYearStartDate
		s.currentYearEndDate = p.CurrentYearEndDate
	}
}

// YearBounds returns the ISO date bounds of the current year view.
func (s *State) YearBounds() (start, end string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentYearStartDate, s.currentYearEndDate
}

// MarkAuthenticated flips the authenticated flag. The flag is only set when
// both a token and a profile are present, preserving the session invariant.
func (s *State) MarkAuthenticated() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.accessToken == "" || s.profile == nil {
		return
	}
	s.isAuthenticated = true
}

// LastMessage returns the most recent human-readable status message.
func (s *State) LastMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastMessage
}

// SetMessage overwrites the status message.
func (s *State) SetMessage(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastMessage = msg
}

// ActivePage returns the ephemeral navigation marker.
func (s *State) ActivePage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activePage
}

// SetActivePage records the ephemeral navigation marker.
func (s *State) SetActivePage(page string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activePage = page
}

// Collections returns the hydrated client collections, or nil before
// hydration (and always nil for staff sessions).
func (s *State) Collections() *models.ClientCollections {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collections
}

// DataHydrated reports whether the one-time collection fetch completed.
func (s *State) DataHydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydration == HydrationDone
}

// Hydration returns the current hydration state.
func (s *State) Hydration() HydrationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydration
}

// BeginHydration claims the hydration slot. When it returns begin=true the
// caller owns the fetch and must call FinishHydration exactly once, passing
// epoch back. When another fetch is already in flight, begin is false and
// wait blocks until that fetch finishes, returning its outcome. When
// hydration is already done, begin is false and wait is nil.
func (s *State) BeginHydration() (begin bool, epoch uint64, wait func() error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.hydration {
	case HydrationDone:
		return false, 0, nil
	case HydrationInFlight:
		at := s.attempt
		return false, 0, func() error {
			<-at.done
			return at.err
		}
	default:
		s.hydration = HydrationInFlight
		s.epoch++
		s.attempt = &hydrationAttempt{epoch: s.epoch, done: make(chan struct{})}
		return true, s.epoch, nil
	}
}

// FinishHydration completes the fetch that BeginHydration handed out epoch
// for. A mismatched epoch means the session moved on (identity reset, newer
// attempt); that result is discarded untouched. On success the collections
// snapshot (nil for staff) is stored and the state becomes Done; on failure
// nothing is stored and the state returns to Idle so a later navigation can
// retry. Waiters on the attempt are released either way.
func (s *State) FinishHydration(epoch uint64, cols *models.ClientCollections, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	at := s.attempt
	if s.hydration != HydrationInFlight || at == nil || at.epoch != epoch {
		return
	}
	at.err = err
	s.hydrationErr = err
	if err != nil {
		s.hydration = HydrationIdle
	} else {
		s.hydration = HydrationDone
		s.collections = cols
	}
	close(at.done)
	s.attempt = nil
}

// HydrationErr returns the error recorded by the most recent finished
// hydration attempt, nil after a successful one.
func (s *State) HydrationErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrationErr
}

// ResetIdentity drops every field tied to a user identity before a fresh
// login, so no stale profile or collections can leak across identities.
// Bumping the epoch orphans any in-flight fetch: its FinishHydration call
// will not match the attempt of a hydration started afterwards, so a slow
// response for the old identity can never be stored against the new one.
func (s *State) ResetIdentity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = ""
	s.isAuthenticated = false
	s.profile = nil
	s.currentYearStartDate = ""
	s.currentYearEndDate = ""
	s.collections = nil
	s.hydrationErr = nil
	s.epoch++
	if at := s.attempt; at != nil {
		close(at.done)
		s.attempt = nil
	}
	s.hydration = HydrationIdle
}

// ClearSession empties the credential and identity after a confirmed
// logout. The hydration flag and message are left as they are; a new login
// resets them via ResetIdentity.
func (s *State) ClearSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = ""
	s.isAuthenticated = false
	s.profile = nil
	s.activePage = ""
}
