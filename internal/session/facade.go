// Package session wraps the identity provider behind a small facade that
// client code holds explicitly. There is no package-level session; each
// caller owns its own Facade.
package session

import (
	"context"
	"sync"

	"ripple/internal/identity"
	"ripple/internal/models"
	"ripple/internal/observability"
)

// LoginResult reports the outcome of a login attempt. Credential failures
// are reported through Success and Message rather than an error.
type LoginResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// LogoutResult reports the outcome of a logout attempt. Success is always
// true; the field exists so logout shares the result-object shape of login.
type LogoutResult struct {
	Success bool `json:"success"`
}

// Facade tracks the signed-in user for one client session.
type Facade struct {
	provider *identity.Provider
	log      *observability.Logger

	mu   sync.RWMutex
	user *models.User

	initOnce   sync.Once
	settleOnce sync.Once
	settled    chan struct{}
	unsub      func()
}

// NewFacade creates a session facade over the given provider.
func NewFacade(provider *identity.Provider, log *observability.Logger) *Facade {
	return &Facade{
		provider: provider,
		log:      log,
		settled:  make(chan struct{}),
	}
}

// Init subscribes to auth-state changes and blocks until the initial
// state is known or the context is done. Calling Init again returns
// immediately once the first call has settled.
func (f *Facade) Init(ctx context.Context) error {
	f.initOnce.Do(func() {
		f.unsub = f.provider.OnAuthStateChanged(func(user *models.User) {
			f.mu.Lock()
			f.user = user
			f.mu.Unlock()
			// The immediate callback and a concurrent state fan-out can
			// both reach here; only one may close the channel.
			f.settleOnce.Do(func() { close(f.settled) })
		})
	})

	select {
	case <-f.settled:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Login attempts to sign in. Invalid credentials produce a failed
// LoginResult; only infrastructure faults surface as errors.
func (f *Facade) Login(ctx context.Context, email, password string) (LoginResult, error) {
	user, err := f.provider.SignIn(ctx, email, password)
	if err != nil {
		if models.IsCode(err, models.CodeUnauthenticated) {
			return LoginResult{Success: false, Message: err.Error()}, nil
		}
		return LoginResult{}, err
	}

	f.mu.Lock()
	f.user = user
	f.mu.Unlock()
	return LoginResult{Success: true}, nil
}

// Logout signs out and always reports success. Provider failures are
// logged and swallowed so callers can treat logout as fire-and-forget.
func (f *Facade) Logout(ctx context.Context) (result LogoutResult) {
	defer func() {
		if r := recover(); r != nil {
			f.log.Warn("logout recovered", "panic", r)
		}
		f.mu.Lock()
		f.user = nil
		f.mu.Unlock()
		result = LogoutResult{Success: true}
	}()

	f.provider.SignOut()
	return
}

// User returns the signed-in user, or nil.
func (f *Facade) User() *models.User {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.user
}

// LoggedIn reports whether a user is signed in.
func (f *Facade) LoggedIn() bool {
	return f.User() != nil
}

// Close unsubscribes from auth-state changes.
func (f *Facade) Close() {
	if f.unsub != nil {
		f.unsub()
	}
}
