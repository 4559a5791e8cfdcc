package draft

import (
	"sync"
	"time"

	"github.com/hospiq/scheduling-api/internal/model"
)

// DefaultTTL is how long an idle draft survives between conversation
// turns.
const DefaultTTL = 30 * time.Minute

// Store holds live drafts in process memory, keyed by session key.
// Terminal drafts never live here; they are archived and removed the
// moment they leave the active state machine.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
}

// entry pairs a draft with the lock serializing its transitions. The
// lock is held across a confirm, including the booking call, so a
// concurrent abandon waits and then observes the outcome.
type entry struct {
	mu    sync.Mutex
	draft *model.Draft
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		entries: make(map[string]*entry),
		ttl:     ttl,
	}
}

func (s *Store) TTL() time.Duration {
	return s.ttl
}

// get returns the live entry for the key. Expired drafts are invisible:
// they stay in the map for the janitor to archive but are never handed
// to callers.
func (s *Store) get(sessionKey string, now time.Time) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[sessionKey]
	if !ok || e.draft.Expired(now) {
		return nil
	}
	return e
}

// getOrCreate returns the live entry for the key, creating one with the
// factory when the key is vacant or holds an expired draft. The second
// return value reports whether a new draft was created; an expired
// predecessor is returned for archiving.
func (s *Store) getOrCreate(sessionKey string, now time.Time, create func() *model.Draft) (e *entry, created bool, expired *model.Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[sessionKey]; ok {
		if !e.draft.Expired(now) {
			return e, false, nil
		}
		e.draft.State = model.DraftStateExpired
		expired = e.draft
	}

	e = &entry{draft: create()}
	s.entries[sessionKey] = e
	return e, true, expired
}

// remove drops the entry; callers do this after archiving a terminal
// draft. Removal is keyed to the entry so a sweep cannot drop a
// successor draft that reused the session key.
func (s *Store) remove(sessionKey string, e *entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.entries[sessionKey]; ok && cur == e {
		delete(s.entries, sessionKey)
	}
}

// sweep collects every expired draft, marks it expired, and removes it
// from the store. The janitor archives what comes back.
func (s *Store) sweep(now time.Time) []*model.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()

	var swept []*model.Draft
	for key, e := range s.entries {
		if e.draft.Expired(now) {
			e.draft.State = model.DraftStateExpired
			e.draft.UpdatedAt = now
			swept = append(swept, e.draft)
			delete(s.entries, key)
		}
	}
	return swept
}

// Len reports the number of drafts currently held, expired included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
