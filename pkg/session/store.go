package session

import (
	"context"
	"hash/fnv"
	"log"
	"sync"
	"time"

	"blood-helpline/pkg/models"
)

const defaultShards = 16

// Store holds in-progress call sessions keyed by call id. Keys are spread
// over independently locked shards, so concurrent webhooks for different
// calls never contend on one lock. Sessions idle for longer than the TTL are
// evicted by Sweep.
type Store struct {
	shards []*shard
	ttl    time.Duration
	now    func() time.Time
}

type shard struct {
	mu       sync.RWMutex
	sessions map[string]*models.CallSession
}

// NewStore creates a session store. A zero ttl disables eviction.
func NewStore(ttl time.Duration) *Store {
	s := &Store{
		shards: make([]*shard, defaultShards),
		ttl:    ttl,
		now:    time.Now,
	}
	for i := range s.shards {
		s.shards[i] = &shard{sessions: make(map[string]*models.CallSession)}
	}
	return s
}

func (s *Store) shardFor(callID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(callID))
	return s.shards[h.Sum32()%uint32(len(s.shards))]
}

// Get returns a copy of the session for callID
func (s *Store) Get(callID string) (models.CallSession, bool) {
	sh := s.shardFor(callID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	sess, ok := sh.sessions[callID]
	if !ok {
		return models.CallSession{}, false
	}
	return *sess, true
}

// Update applies fn to the session for callID under the shard lock, creating
// the session on first write, and returns the updated copy.
func (s *Store) Update(callID string, fn func(*models.CallSession)) models.CallSession {
	sh := s.shardFor(callID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sess, ok := sh.sessions[callID]
	if !ok {
		sess = &models.CallSession{CallID: callID, Locale: models.DefaultLocale}
		sh.sessions[callID] = sess
	}
	fn(sess)
	sess.CallID = callID
	sess.UpdatedAt = s.now()
	return *sess
}

// MarkFinalized flags the session as finalized. It returns false when the
// session was already finalized, so exactly one caller wins per call id.
func (s *Store) MarkFinalized(callID string) (models.CallSession, bool) {
	sh := s.shardFor(callID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sess, ok := sh.sessions[callID]
	if !ok {
		sess = &models.CallSession{CallID: callID, Locale: models.DefaultLocale}
		sh.sessions[callID] = sess
	}
	if sess.Finalized {
		return *sess, false
	}
	sess.Finalized = true
	sess.UpdatedAt = s.now()
	return *sess, true
}

// ClearFinalized undoes MarkFinalized, used when persisting the record failed
func (s *Store) ClearFinalized(callID string) {
	sh := s.shardFor(callID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if sess, ok := sh.sessions[callID]; ok {
		sess.Finalized = false
	}
}

// Delete removes the session for callID
func (s *Store) Delete(callID string) {
	sh := s.shardFor(callID)
	sh.mu.Lock()
	delete(sh.sessions, callID)
	sh.mu.Unlock()
}

// Len returns the number of sessions currently held
func (s *Store) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		n += len(sh.sessions)
		sh.mu.RUnlock()
	}
	return n
}

// Sweep evicts sessions not updated within the TTL and returns how many were removed
func (s *Store) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		for id, sess := range sh.sessions {
			if sess.UpdatedAt.Before(cutoff) {
				delete(sh.sessions, id)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed
}

// Run sweeps expired sessions every interval until ctx is cancelled
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				log.Printf("Evicted %d expired call sessions", n)
			}
		}
	}
}
