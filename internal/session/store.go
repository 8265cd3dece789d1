// Package session owns the per-visitor state: one cart, one checkout and one
// wishlist per session id. Sessions live in memory and expire when idle.
package session

import (
	"sync"
	"time"

	"github.com/fjod/go_bookstore/internal/cart"
	"github.com/fjod/go_bookstore/internal/checkout/service"
	"github.com/fjod/go_bookstore/internal/wishlist"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultTTL is how long an idle session is kept
	DefaultTTL = 30 * time.Minute

	// CleanupInterval is how often the background cleanup runs
	CleanupInterval = 30 * time.Second
)

// Session groups everything a visitor owns. Handlers hold Lock for the whole
// request so one session sees its requests one at a time.
type Session struct {
	sync.Mutex

	ID       string
	Ledger   *cart.Ledger
	Checkout *service.Checkout
	Wishlist *wishlist.Wishlist

	lastSeen time.Time
}

// MemoryStore keeps sessions in a map guarded by an RWMutex.
type MemoryStore struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	ttl       time.Duration
	assembler *service.OrderAssembler
	log       *zap.Logger
	now       func() time.Time

	stopCleanup chan struct{}
	wg          sync.WaitGroup
}

// NewMemoryStore starts the cleanup loop. All sessions share the assembler
// so order ids stay increasing across sessions.
func NewMemoryStore(ttl time.Duration, assembler *service.OrderAssembler, log *zap.Logger) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if assembler == nil {
		assembler = service.NewOrderAssembler(nil, nil)
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &MemoryStore{
		sessions:    make(map[string]*Session),
		ttl:         ttl,
		assembler:   assembler,
		log:         log,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}

	s.wg.Add(1)
	go s.cleanupLoop()

	return s
}

func (s *MemoryStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.expireSessions()
		case <-s.stopCleanup:
			return
		}
	}
}

// expireSessions drops every session idle for longer than the TTL
func (s *MemoryStore) expireSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	expired := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			expired++
		}
	}
	if expired > 0 {
		s.log.Info("sessions expired", zap.Int("count", expired))
	}
	return expired
}

// GetOrCreate returns the live session for id. An empty, unknown or expired
// id yields a fresh session under a new id; created reports that case.
func (s *MemoryStore) GetOrCreate(id string) (sess *Session, created bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if existing, ok := s.sessions[id]; ok && !existing.lastSeen.Before(now.Add(-s.ttl)) {
		existing.lastSeen = now
		return existing, false
	}
	delete(s.sessions, id)

	ledger := cart.NewLedger()
	sess = &Session{
		ID:       uuid.NewString(),
		Ledger:   ledger,
		Checkout: service.NewCheckout(s.log, ledger, s.assembler),
		Wishlist: wishlist.New(),
		lastSeen: now,
	}
	s.sessions[sess.ID] = sess
	return sess, true
}

// Delete ends a session and everything it owns.
func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close stops the background cleanup and waits for it to finish
func (s *MemoryStore) Close() error {
	close(s.stopCleanup)
	s.wg.Wait()
	return nil
}
