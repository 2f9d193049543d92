// Package sessions keeps the in-memory table of login sessions and mirrors
// it to the process-wide sessions record.
package sessions

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/studyvault/internal/common"
	"github.com/dmitrijs2005/studyvault/internal/logging"
	"github.com/dmitrijs2005/studyvault/internal/server/models"
	"github.com/dmitrijs2005/studyvault/internal/server/repositories/records"
)

// DefaultTTL is the idle time after which a session expires.
const DefaultTTL = 24 * time.Hour

// Registry maps opaque tokens to sessions.
//
// Issue and Revoke persist before returning. Validate only touches memory;
// the refreshed activity times reach storage on the next Flush.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session

	store  *records.Store
	ttl    time.Duration
	now    func() time.Time
	logger logging.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(r *Registry) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

func NewRegistry(store *records.Store, logger logging.Logger, opts ...Option) *Registry {
	r := &Registry{
		sessions: make(map[string]*models.Session),
		store:    store,
		ttl:      DefaultTTL,
		now:      time.Now,
		logger:   logger,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Init replaces the in-memory table with the persisted one.
func (r *Registry) Init(ctx context.Context) error {
	set, err := records.Get(ctx, r.store, "", models.RecordSessions, models.NewSessionSet)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.sessions = set.Sessions
	n := len(r.sessions)
	r.mu.Unlock()

	r.logger.Info(ctx, "sessions loaded", "count", n)
	return nil
}

// Issue creates a session for owner and persists the table.
func (r *Registry) Issue(ctx context.Context, owner, email, username string) (string, error) {
	if owner == "" {
		return "", fmt.Errorf("%w: empty owner", common.ErrInvalidInput)
	}
	token, err := common.MakeRandHexString(common.SessionTokenBytes)
	if err != nil {
		return "", err
	}

	now := r.now().UTC()
	r.mu.Lock()
	r.sessions[token] = &models.Session{
		UserID:       owner,
		Email:        email,
		Username:     username,
		CreatedAt:    now,
		LastActivity: now,
	}
	r.mu.Unlock()

	if err := r.Flush(ctx); err != nil {
		r.mu.Lock()
		delete(r.sessions, token)
		r.mu.Unlock()
		return "", err
	}
	return token, nil
}

// Validate returns the session for token and slides its expiry. Expired
// sessions are refused but left for SweepExpired to remove.
func (r *Registry) Validate(token string) (models.Session, bool) {
	if token == "" {
		return models.Session{}, false
	}
	now := r.now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[token]
	if !ok || s.Expired(now, r.ttl) {
		return models.Session{}, false
	}
	s.LastActivity = now
	return *s, true
}

// Revoke removes token and persists the table. Unknown tokens are ignored.
func (r *Registry) Revoke(ctx context.Context, token string) error {
	r.mu.Lock()
	_, ok := r.sessions[token]
	delete(r.sessions, token)
	r.mu.Unlock()

	if !ok {
		return nil
	}
	return r.Flush(ctx)
}

// SweepExpired drops expired sessions and returns how many were removed.
func (r *Registry) SweepExpired(ctx context.Context) (int, error) {
	now := r.now().UTC()

	r.mu.Lock()
	n := 0
	for token, s := range r.sessions {
		if s.Expired(now, r.ttl) {
			delete(r.sessions, token)
			n++
		}
	}
	r.mu.Unlock()

	if n == 0 {
		return 0, nil
	}
	r.logger.Info(ctx, "expired sessions swept", "count", n)
	return n, r.Flush(ctx)
}

// Flush writes the current table. The snapshot is taken while the record
// lock is held, so concurrent flushes land in order. The stored copy is
// never read: the in-memory table is authoritative.
func (r *Registry) Flush(ctx context.Context) error {
	err := records.Replace(ctx, r.store, "", models.RecordSessions, func() *models.SessionSet {
		set := models.NewSessionSet()
		set.Sessions = r.snapshot()
		return set
	})
	if err != nil {
		r.logger.Error(ctx, "sessions flush failed", "error", err)
	}
	return err
}

// Len returns the number of sessions held in memory, expired ones included.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) snapshot() map[string]*models.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]*models.Session, len(r.sessions))
	for token, s := range r.sessions {
		c := *s
		out[token] = &c
	}
	return out
}
