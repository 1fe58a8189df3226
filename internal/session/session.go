// Package session owns the signed-in organization and its access token.
// The durable copy is always written before the in-memory snapshot changes
// and before subscribers hear about it.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"sharebite/internal/apiclient"
	"sharebite/internal/domain"
	"sharebite/internal/logger"
	"sharebite/internal/storage"
)

// ExpiredNotice is shown after the server rejected the stored token.
const ExpiredNotice = "Your session has expired. Please log in again."

// AuthAPI is the part of the API client the store depends on.
type AuthAPI interface {
	Login(ctx context.Context, creds apiclient.Credentials) (*apiclient.LoginResponse, error)
	Register(ctx context.Context, req apiclient.RegisterRequest) (*apiclient.RegisterResponse, error)
	Logout(ctx context.Context, token string) error
}

// Session is an immutable snapshot handed to readers.
type Session struct {
	User            *domain.Organization
	Token           string
	IsAuthenticated bool
	Loading         bool
	// Notice is a message for the user, e.g. why they were signed out.
	Notice string
}

type Store struct {
	api     AuthAPI
	durable storage.Store
	log     *slog.Logger

	// writeMu serializes mutations so durable state, snapshot and
	// notifications happen in the same order.
	writeMu sync.Mutex

	mu      sync.RWMutex
	current Session
	subs    map[int]func(Session)
	nextSub int

	logoutTimeout time.Duration
	pending       sync.WaitGroup
}

func New(api AuthAPI, durable storage.Store) *Store {
	return &Store{
		api:           api,
		durable:       durable,
		log:           logger.WithComponent("session"),
		current:       Session{Loading: true},
		subs:          make(map[int]func(Session)),
		logoutTimeout: 5 * time.Second,
	}
}

// Current returns the latest snapshot.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Token returns the bearer token, or "" when signed out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Token
}

// Actor describes the signed-in organization. ok is false when signed out.
func (s *Store) Actor() (actor domain.Actor, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.current.IsAuthenticated || s.current.User == nil {
		return domain.Actor{}, false
	}
	return s.current.User.Actor(), true
}

// Subscribe registers fn for every future snapshot. The returned func
// removes the subscription. fn runs while the store is mid-mutation and must
// not call back into Login, Logout or Invalidate.
func (s *Store) Subscribe(fn func(Session)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// publish installs next and notifies subscribers. Callers hold writeMu.
func (s *Store) publish(next Session) {
	s.mu.Lock()
	s.current = next
	subs := make([]func(Session), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
}

// Restore loads a previous session from durable storage. The stored token
// is trusted as is; the server rejects it later if it has expired.
func (s *Store) Restore(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next := Session{}
	token, tokenErr := s.durable.Get(ctx, storage.KeyToken)
	rawUser, userErr := s.durable.Get(ctx, storage.KeyUser)

	var readErr error
	for _, err := range []error{tokenErr, userErr} {
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			readErr = err
		}
	}

	if tokenErr == nil && userErr == nil && token != "" {
		var user domain.Organization
		if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
			s.log.Warn("Discarding unreadable stored user", "error", err)
		} else {
			next = Session{User: &user, Token: token, IsAuthenticated: true}
		}
	}

	s.publish(next)
	if readErr != nil {
		return domain.NewInternalError(fmt.Errorf("restore session: %w", readErr))
	}
	return nil
}

// Login signs in and persists the new session. On failure the current
// session is left as it was.
func (s *Store) Login(ctx context.Context, email, password string) (Session, error) {
	if email == "" || password == "" {
		return Session{}, domain.NewValidationError("Email and password are required")
	}

	resp, err := s.api.Login(ctx, apiclient.Credentials{Email: email, Password: password})
	if err != nil {
		return Session{}, err
	}

	userJSON, err := json.Marshal(resp.User)
	if err != nil {
		return Session{}, domain.NewInternalError(err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.durable.Set(ctx, storage.KeyUser, string(userJSON)); err != nil {
		return Session{}, domain.NewInternalError(fmt.Errorf("persist user: %w", err))
	}
	if err := s.durable.Set(ctx, storage.KeyToken, resp.Token); err != nil {
		_ = s.durable.Delete(ctx, storage.KeyUser)
		return Session{}, domain.NewInternalError(fmt.Errorf("persist token: %w", err))
	}

	next := Session{User: resp.User, Token: resp.Token, IsAuthenticated: true}
	s.publish(next)
	s.log.Info("Signed in", "org_id", resp.User.ID, "role", resp.User.Role)
	return next, nil
}

// Logout clears the session locally, then tells the server in the
// background. The server call never blocks or fails the local sign-out.
func (s *Store) Logout(ctx context.Context) {
	token := s.clear(ctx, "")
	if token == "" {
		return
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.logoutTimeout)
		defer cancel()
		if err := s.api.Logout(ctx, token); err != nil {
			s.log.Warn("Server logout failed", "error", err)
		}
	}()
}

// Invalidate drops a session the server no longer accepts.
func (s *Store) Invalidate(reason string) {
	if reason == "" {
		reason = ExpiredNotice
	}
	if s.clear(context.Background(), reason) != "" {
		s.log.Warn("Session invalidated", "reason", reason)
	}
}

// Wait blocks until background server calls have finished.
func (s *Store) Wait() {
	s.pending.Wait()
}

// clear removes the session everywhere and returns the token it held.
func (s *Store) clear(ctx context.Context, notice string) string {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	token := s.Token()
	for _, key := range []string{storage.KeyToken, storage.KeyUser} {
		if err := s.durable.Delete(ctx, key); err != nil {
			s.log.Warn("Failed to clear stored session", "key", key, "error", err)
		}
	}
	s.publish(Session{Notice: notice})
	return token
}
