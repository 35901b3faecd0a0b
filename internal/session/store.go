// Copyright (c) 2026 Logistiq
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"logistiq/cli/internal/provider"
)

// Persister is the durable storage the Store rehydrates from and writes
// through to. The keychain manager satisfies it; tests use an in-memory one.
type Persister interface {
	SaveSessionBlob(data []byte) error
	LoadSessionBlob() ([]byte, error)
	ClearSessionBlob() error
}

// SyncPhase is the store's single-flight guard, expressed as a state rather
// than an out-of-band flag so it cannot be left set on an error path.
type SyncPhase string

const (
	PhaseIdle    SyncPhase = "idle"
	PhaseSyncing SyncPhase = "syncing"
)

// Store holds the session state. It is explicitly constructed and passed to
// its consumers; there is no package-level instance. All mutations go through
// the bootstrap machine or Clear.
type Store struct {
	mu        sync.Mutex
	st        State
	phase     SyncPhase
	syncEmail string // identity email owning the in-flight sync
	gen       uint64 // bumped on identity change and logout

	persist Persister
	log     zerolog.Logger
}

// Snapshot is a consistent view of the store at one point in time.
type Snapshot struct {
	State      State
	Phase      SyncPhase
	Generation uint64
}

// NewStore constructs a Store, rehydrating persisted session state when
// present. A corrupt blob is discarded rather than propagated: the session
// simply starts empty and re-syncs.
func NewStore(p Persister, log zerolog.Logger) *Store {
	s := &Store{
		st:      State{AuthStatus: StatusUnauthenticated},
		phase:   PhaseIdle,
		persist: p,
		log:     log,
	}
	if p == nil {
		return s
	}
	raw, err := p.LoadSessionBlob()
	if err != nil || len(raw) == 0 {
		return s
	}
	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		log.Warn().Err(err).Msg("discarding corrupt persisted session state")
		_ = p.ClearSessionBlob()
		return s
	}
	s.st = st
	return s
}

// Snapshot returns the current state, sync phase, and generation.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{State: s.st, Phase: s.phase, Generation: s.gen}
}

// SetIdentity records the provider identity for this evaluation. When the
// email differs from the last synced identity, the init cursor is reset
// before any routing decision can be made for the new identity, and the
// generation is bumped so an in-flight sync for the old identity is
// discarded on arrival.
func (s *Store) SetIdentity(id provider.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := s.st.Identity == nil || s.st.Identity.Email != id.Email
	cp := id
	s.st.Identity = &cp
	if s.st.AuthStatus != StatusAuthenticated {
		s.st.AuthStatus = StatusAuthenticated
		s.st.ErrorReason = ""
	}
	if changed && s.st.LastSyncedEmail != id.Email {
		s.st.IsInitialized = false
		s.st.AppUser = nil
		s.st.Token = ""
		s.st.Companies = nil
		s.gen++
		s.persistLocked()
	}
}

// BeginSync acquires the single-flight guard for the given identity email.
// It returns the generation the sync belongs to and whether the guard was
// acquired; a second caller while a sync is in flight gets ok=false.
func (s *Store) BeginSync(email string) (gen uint64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseIdle {
		return 0, false
	}
	s.phase = PhaseSyncing
	s.syncEmail = email
	return s.gen, true
}

// FinishSync releases the guard and, when the result is still current,
// applies user, token, companies, and the init cursor in one transition.
// A result from a superseded generation or a different identity is
// discarded: the guard is released but the state is untouched.
func (s *Store) FinishSync(gen uint64, email string, user AppUser, token string, companies []Company) (applied bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.phase = PhaseIdle
	s.syncEmail = ""

	if gen != s.gen {
		s.log.Debug().Str("email", email).Msg("discarding stale sync result")
		return false
	}
	if s.st.Identity == nil || s.st.Identity.Email != email {
		s.log.Debug().Str("email", email).Msg("discarding sync result for replaced identity")
		return false
	}

	s.st.AuthStatus = StatusAuthenticated
	s.st.ErrorReason = ""
	s.st.AppUser = &user
	s.st.Token = token
	s.st.Companies = companies
	s.st.IsInitialized = true
	s.st.LastSyncedEmail = email
	s.persistLocked()
	return true
}

// FailSync releases the guard without touching state. Called on every
// non-success exit path so the machine can never wedge.
func (s *Store) FailSync(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = PhaseIdle
	s.syncEmail = ""
}

// SetError records a non-fatal error state without destroying cached
// user/token data.
func (s *Store) SetError(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.ErrorReason = reason
}

// SetActiveCompany updates the active-company linkage after an organization
// sync or company switch. The update is atomic with the membership flags.
func (s *Store) SetActiveCompany(id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st.AppUser == nil {
		return
	}
	s.st.AppUser.HasActiveCompany = id != ""
	s.st.AppUser.CurrentCompanyID = id
	s.st.AppUser.CurrentCompanyName = name
	for i := range s.st.Companies {
		s.st.Companies[i].IsActive = s.st.Companies[i].ID == id
	}
	s.persistLocked()
}

// SetCompanies replaces the membership list.
func (s *Store) SetCompanies(companies []Company) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.Companies = companies
	s.persistLocked()
}

// Clear wipes the session entirely: logout or unrecoverable auth error.
// The generation is bumped so any in-flight sync result is discarded.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st = State{AuthStatus: StatusUnauthenticated}
	s.gen++
	if s.persist != nil {
		_ = s.persist.ClearSessionBlob()
	}
}

// persistLocked writes the current state through to durable storage.
// Callers must hold s.mu.
func (s *Store) persistLocked() {
	if s.persist == nil {
		return
	}
	b, err := json.Marshal(s.st)
	if err != nil {
		s.log.Warn().Err(err).Msg("marshal session state")
		return
	}
	if err := s.persist.SaveSessionBlob(b); err != nil {
		s.log.Warn().Err(err).Msg("persist session state")
	}
}
