// Package session implements the console's authentication core: one record
// per browser session holding the fleet API bearer token, the identity
// resolved from it, and a readiness flag that flips true exactly once per
// token change.
//
// Resolution (token → user via the fleet API's /auth/me) is asynchronous and
// deliberately decoupled from Login so a caller can never observe a stale
// user attached to a new token. Every token change bumps a per-record version
// stamp; a resolution result is applied only if its stamp is still current,
// so a rapid logout→login or login→login sequence cannot be corrupted by an
// out-of-order response.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/printwatch/fleet-console/internal/api/metrics"
	"github.com/printwatch/fleet-console/internal/core/domain"
	"github.com/printwatch/fleet-console/internal/core/ports"
)

const defaultResolveTimeout = 10 * time.Second

type record struct {
	token   string
	user    *domain.User
	ready   bool
	version uint64
}

// Store tracks all live browser sessions. Tokens are additionally written
// through to a TokenRepository so a login survives console restarts; the
// persisted token is adopted lazily the first time Get sees the session ID
// again.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*record

	tokens   ports.TokenRepository
	resolver ports.UserResolver
	logger   zerolog.Logger

	resolveTimeout time.Duration

	// inflight tracks spawned resolutions; tests wait on it.
	inflight sync.WaitGroup
}

// NewStore builds a session store resolving identities through resolver and
// persisting tokens through tokens.
func NewStore(tokens ports.TokenRepository, resolver ports.UserResolver, logger zerolog.Logger) *Store {
	return &Store{
		sessions:       make(map[string]*record),
		tokens:         tokens,
		resolver:       resolver,
		logger:         logger,
		resolveTimeout: defaultResolveTimeout,
	}
}

// Login stores the token for the session and starts identity resolution. The
// session is not ready until that resolution completes; resolution failure is
// converted into a logout rather than surfaced to the caller.
func (s *Store) Login(ctx context.Context, sessionID, token string) {
	if err := s.tokens.Save(ctx, sessionID, token); err != nil {
		// The session still works for this process lifetime; it just will
		// not survive a restart.
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("persist session token")
	}

	s.mu.Lock()
	rec := s.record(sessionID)
	rec.token = token
	rec.user = nil
	rec.ready = false
	rec.version++
	version := rec.version
	s.mu.Unlock()

	s.spawnResolve(sessionID, token, version)
}

// Logout clears the session's token and identity, removes the persisted
// token, and marks the session ready. Any in-flight resolution for an earlier
// token is superseded by the version bump and will be discarded.
func (s *Store) Logout(ctx context.Context, sessionID string) {
	if err := s.tokens.Delete(ctx, sessionID); err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("delete session token")
	}

	s.mu.Lock()
	rec := s.record(sessionID)
	rec.token = ""
	rec.user = nil
	rec.ready = true
	rec.version++
	s.mu.Unlock()
}

// Get returns a snapshot of the session. When the session ID is unknown in
// memory but a token was persisted (console restarted since login), the token
// is adopted and resolution starts; callers observe a not-ready session until
// it completes.
func (s *Store) Get(ctx context.Context, sessionID string) domain.Session {
	s.mu.Lock()
	rec, ok := s.sessions[sessionID]
	if ok {
		snap := snapshot(rec)
		s.mu.Unlock()
		return snap
	}
	s.mu.Unlock()

	// Not in memory: check the persistent store outside the lock.
	token, err := s.tokens.Find(ctx, sessionID)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("load session token")
		token = ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok = s.sessions[sessionID]
	if ok {
		// Raced with another request for the same session; it won.
		return snapshot(rec)
	}
	rec = &record{}
	s.sessions[sessionID] = rec
	if token == "" {
		// No persisted token: the check is complete, nobody is logged in.
		rec.ready = true
		return snapshot(rec)
	}
	rec.token = token
	rec.version++
	s.spawnResolve(sessionID, token, rec.version)
	return snapshot(rec)
}

// record returns the session's record, creating it if needed. Callers hold mu.
func (s *Store) record(sessionID string) *record {
	rec, ok := s.sessions[sessionID]
	if !ok {
		rec = &record{}
		s.sessions[sessionID] = rec
	}
	return rec
}

func snapshot(rec *record) domain.Session {
	return domain.Session{Token: rec.token, User: rec.user, Ready: rec.ready}
}

func (s *Store) spawnResolve(sessionID, token string, version uint64) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		// Resolution outlives the HTTP request that triggered it: its outcome
		// belongs to the session, so it runs on its own context.
		ctx, cancel := context.WithTimeout(context.Background(), s.resolveTimeout)
		defer cancel()
		s.resolve(ctx, sessionID, token, version)
	}()
}

// resolve turns a token into a user and applies the outcome, unless the
// session's version moved on while the call was in flight.
func (s *Store) resolve(ctx context.Context, sessionID, token string, version uint64) {
	user, err := s.resolver.CurrentUser(ctx, token)

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.sessions[sessionID]
	if !ok || rec.version != version {
		metrics.SessionResolutionsTotal.WithLabelValues("superseded").Inc()
		s.logger.Debug().Str("session_id", sessionID).Msg("stale resolution discarded")
		return
	}

	if err != nil {
		// Expired token, invalid token, upstream down: all collapse into a
		// silent logout. The persisted token is removed so the next restart
		// does not retry a dead credential.
		metrics.SessionResolutionsTotal.WithLabelValues("failure").Inc()
		s.logger.Info().Err(err).Str("session_id", sessionID).Msg("identity resolution failed, ending session")
		rec.token = ""
		rec.user = nil
		rec.ready = true
		s.inflight.Add(1)
		go func() {
			defer s.inflight.Done()
			cleanupCtx, cancel := context.WithTimeout(context.Background(), s.resolveTimeout)
			defer cancel()
			if derr := s.tokens.Delete(cleanupCtx, sessionID); derr != nil {
				s.logger.Error().Err(derr).Str("session_id", sessionID).Msg("delete session token")
			}
		}()
		return
	}

	metrics.SessionResolutionsTotal.WithLabelValues("success").Inc()
	rec.user = user
	rec.ready = true
}

// waitForResolutions blocks until all spawned resolutions have finished.
// Test helper.
func (s *Store) waitForResolutions() {
	s.inflight.Wait()
}
