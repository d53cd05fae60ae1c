// Package session owns the console's authentication state and reconciles the
// credentials kept in storage against the remote service.
//
// Every commit (sign-in, sign-out, purge) bumps a generation counter. A "who am
// I" result is applied only when the generation is unchanged since the call was
// issued, so a verification that resolves after a sign-out cannot bring the
// user back.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"purecerts-console/internal/model"
	"purecerts-console/internal/obs"
	"purecerts-console/internal/rpc"
	"purecerts-console/internal/storage"
)

const DefaultRevokeTimeout = 5 * time.Second

var (
	ErrAlreadyInitialized = errors.New("session already initialized")
	ErrNoAccessToken      = errors.New("sign-in returned no access token")
	ErrMFARequired        = errors.New("multi-factor authentication required")
)

type Tokens interface {
	CreateToken(ctx context.Context, grant model.GrantType, username, password string) (model.TokenResponse, error)
	RevokeToken(ctx context.Context, token string) error
}

type Users interface {
	GetCurrentUser(ctx context.Context) (model.User, error)
}

type Config struct {
	Tokens  Tokens
	Users   Users
	Storage storage.Storage
	// RevokeTimeout bounds the best-effort revoke on sign-out.
	RevokeTimeout time.Duration
}

type Store struct {
	tokens        Tokens
	users         Users
	storage       storage.Storage
	revokeTimeout time.Duration
	policy        Policy

	// writeMu makes a generation check and the storage writes after it one
	// step. Every state change runs under it, so subscribers see commit order.
	writeMu sync.Mutex

	mu          sync.Mutex
	state       AuthState
	generation  uint64
	initialized bool
	subs        map[int]func(AuthState)
	nextSub     int

	loaded     chan struct{}
	loadedOnce sync.Once
}

func New(cfg Config) *Store {
	timeout := cfg.RevokeTimeout
	if timeout <= 0 {
		timeout = DefaultRevokeTimeout
	}
	return &Store{
		tokens:        cfg.Tokens,
		users:         cfg.Users,
		storage:       cfg.Storage,
		revokeTimeout: timeout,
		policy:        DefaultPolicy(),
		state:         AuthState{Loading: true},
		subs:          make(map[int]func(AuthState)),
		loaded:        make(chan struct{}),
	}
}

func (s *Store) State() AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Loaded is closed once the startup reconciliation has resolved.
func (s *Store) Loaded() <-chan struct{} { return s.loaded }

// Subscribe registers fn for every state change and returns its unsubscribe
// func. fn runs synchronously after the change and must not call SignIn,
// SignOut, RefreshUser or Initialize.
func (s *Store) Subscribe(fn func(AuthState)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Initialize runs the startup reconciliation. With no stored token it resolves
// to signed out without a network call. Otherwise the stored snapshot becomes a
// provisional user and the token is checked with the remote service.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return ErrAlreadyInitialized
	}
	s.initialized = true
	gen := s.generation
	s.mu.Unlock()

	defer s.settle()

	token, ok, err := s.storage.Get(ctx, storage.KeyAccessToken)
	if err != nil {
		s.apply(gen, signedOut)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("read access token: %w", err)
	}
	if !ok || token == "" {
		s.apply(gen, signedOut)
		return nil
	}

	if u, ok := s.restoreUser(ctx); ok {
		s.apply(gen, func(st *AuthState) { st.User = &Identity{User: u} })
	}

	u, err := s.users.GetCurrentUser(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			// Abandoned, not rejected: the stored credentials stay for the next start.
			s.apply(gen, signedOut)
			return ctxErr
		}
		return s.fail(ctx, OpVerify, gen, err)
	}
	s.adopt(context.WithoutCancel(ctx), gen, u)
	return nil
}

// SignIn exchanges email and password for a token bundle. Nothing is written
// unless the response carries an access token.
func (s *Store) SignIn(ctx context.Context, email, password string) error {
	resp, err := s.tokens.CreateToken(ctx, model.GrantTypePassword, email, password)
	if err != nil {
		return s.fail(ctx, OpSignIn, s.currentGeneration(), err)
	}
	if resp.AccessToken == "" {
		if resp.MFARequired {
			return ErrMFARequired
		}
		return ErrNoAccessToken
	}

	wctx := context.WithoutCancel(ctx)
	gen, err := s.commitSignIn(wctx, resp)
	if err != nil {
		return err
	}
	if resp.User != nil {
		return nil
	}

	u, err := s.users.GetCurrentUser(ctx)
	if err != nil {
		s.purge(wctx, gen)
		return err
	}
	s.adopt(wctx, gen, u)
	return nil
}

func (s *Store) commitSignIn(ctx context.Context, resp model.TokenResponse) (uint64, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.persistTokens(ctx, resp); err != nil {
		if rmErr := s.storage.Remove(ctx, storage.SessionKeys...); rmErr != nil {
			log.Printf("session: purge after failed sign-in write: %v", rmErr)
		}
		s.mutate(true, signedOut)
		return 0, fmt.Errorf("persist credentials: %w", err)
	}

	var next *Identity
	if resp.User != nil {
		next = &Identity{User: *resp.User, Confirmed: true}
	}
	gen := s.mutate(true, func(st *AuthState) { st.User = next })
	return gen, nil
}

func (s *Store) persistTokens(ctx context.Context, resp model.TokenResponse) error {
	if err := s.storage.Set(ctx, storage.KeyAccessToken, resp.AccessToken); err != nil {
		return err
	}
	if resp.RefreshToken != "" {
		if err := s.storage.Set(ctx, storage.KeyRefreshToken, resp.RefreshToken); err != nil {
			return err
		}
	} else if err := s.storage.Remove(ctx, storage.KeyRefreshToken); err != nil {
		return err
	}
	if resp.User == nil {
		return s.storage.Remove(ctx, storage.KeyUser)
	}
	return s.saveUser(ctx, *resp.User)
}

// SignOut clears the session locally first and then asks the remote service to
// revoke the token. It cannot fail: revoke errors and timeouts are dropped.
func (s *Store) SignOut(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)

	s.writeMu.Lock()
	token, ok, err := s.storage.Get(ctx, storage.KeyAccessToken)
	if err != nil {
		log.Printf("session: read access token on sign-out: %v", err)
	}
	if err := s.storage.Remove(ctx, storage.SessionKeys...); err != nil {
		log.Printf("session: purge on sign-out: %v", err)
	}
	gen := s.mutate(true, signedOut)
	s.writeMu.Unlock()

	if !ok || token == "" {
		return
	}

	rctx, cancel := context.WithTimeout(rpc.WithBearer(ctx, token), s.revokeTimeout)
	defer cancel()
	if err := s.tokens.RevokeToken(rctx, token); err != nil {
		_ = s.fail(ctx, OpRevoke, gen, err)
	}
}

// RefreshUser re-reads the current user. A failure of any kind signs the
// session out and returns nil. If ctx ends first the result is discarded and
// ctx.Err() returned.
func (s *Store) RefreshUser(ctx context.Context) error {
	gen := s.currentGeneration()

	token, ok, err := s.storage.Get(ctx, storage.KeyAccessToken)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("read access token: %w", err)
	}
	if !ok || token == "" {
		s.purge(context.WithoutCancel(ctx), gen)
		return nil
	}

	u, err := s.users.GetCurrentUser(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return s.fail(ctx, OpRefreshUser, gen, err)
	}
	s.adopt(context.WithoutCancel(ctx), gen, u)
	return nil
}

func (s *Store) fail(ctx context.Context, op Operation, gen uint64, err error) error {
	switch s.policy.Action(op) {
	case RecoverSignedOut:
		log.Printf("session: %s failed, signing out: %v", op, err)
		s.purge(context.WithoutCancel(ctx), gen)
		return nil
	case Ignore:
		log.Printf("session: %s failed (ignored): %v", op, err)
		return nil
	default:
		return err
	}
}

// purge removes the stored credentials and signs out, unless another commit
// happened since gen was read.
func (s *Store) purge(ctx context.Context, gen uint64) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.currentGeneration() != gen {
		log.Printf("session: stale purge dropped")
		return false
	}
	if err := s.storage.Remove(ctx, storage.SessionKeys...); err != nil {
		log.Printf("session: purge: %v", err)
	}
	s.mutate(true, signedOut)
	return true
}

// adopt installs a user confirmed by the remote service, unless another commit
// happened since gen was read.
func (s *Store) adopt(ctx context.Context, gen uint64, u model.User) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.currentGeneration() != gen {
		log.Printf("session: stale user %s dropped", u.ID)
		return false
	}
	if err := s.saveUser(ctx, u); err != nil {
		log.Printf("session: save user snapshot: %v", err)
	}
	s.mutate(false, func(st *AuthState) { st.User = &Identity{User: u, Confirmed: true} })
	return true
}

// apply changes in-memory state only, under the same generation rule.
func (s *Store) apply(gen uint64, fn func(*AuthState)) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.currentGeneration() != gen {
		return
	}
	s.mutate(false, fn)
}

func (s *Store) settle() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.loadedOnce.Do(func() {
		s.mutate(false, func(st *AuthState) { st.Loading = false })
		close(s.loaded)
	})
}

func (s *Store) currentGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// mutate applies fn, optionally bumping the generation, and notifies
// subscribers. Callers hold writeMu. It returns the generation after the change.
func (s *Store) mutate(bump bool, fn func(*AuthState)) uint64 {
	s.mu.Lock()
	before := s.state.Status()
	if bump {
		s.generation++
	}
	fn(&s.state)
	next := s.state
	gen := s.generation
	subs := make([]func(AuthState), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	if status := next.Status(); status != before {
		obs.ObserveAuthTransition(status.String())
	}
	for _, sub := range subs {
		sub(next)
	}
	return gen
}

func (s *Store) restoreUser(ctx context.Context) (model.User, bool) {
	raw, ok, err := s.storage.Get(ctx, storage.KeyUser)
	if err != nil {
		log.Printf("session: read user snapshot: %v", err)
		return model.User{}, false
	}
	if !ok || raw == "" {
		return model.User{}, false
	}
	var u model.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		log.Printf("session: discard unreadable user snapshot: %v", err)
		return model.User{}, false
	}
	if u.ID == "" && u.Email == "" {
		return model.User{}, false
	}
	return u, true
}

func (s *Store) saveUser(ctx context.Context, u model.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.storage.Set(ctx, storage.KeyUser, string(data))
}
