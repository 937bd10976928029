package identity

import (
	"context"
	"sync"

	"ripple/internal/models"
	"ripple/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// AuthStateListener receives the current user whenever it changes.
// A nil user means signed out.
type AuthStateListener func(user *models.User)

// Provider verifies credentials against the user store and tracks the
// signed-in user for a single client session. Listeners subscribed via
// OnAuthStateChanged are invoked immediately with the current state and
// again on every subsequent change.
type Provider struct {
	userRepo repository.UserRepository

	mu        sync.Mutex
	current   *models.User
	listeners map[int]AuthStateListener
	nextID    int
}

// NewProvider creates an identity provider backed by the given user repository.
func NewProvider(userRepo repository.UserRepository) *Provider {
	return &Provider{
		userRepo:  userRepo,
		listeners: make(map[int]AuthStateListener),
	}
}

// SignIn verifies the email and password and marks the user as signed in.
// Bad credentials return an unauthenticated error without revealing which
// part was wrong.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	user, err := p.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthenticatedError("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthenticatedError("invalid email or password")
	}

	p.setCurrent(user)
	return user, nil
}

// SignUp creates a new account and signs it in.
func (p *Provider) SignUp(ctx context.Context, email, password, displayName string) (*models.User, error) {
	if err := ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := ValidatePassword(password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	existing, err := p.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewValidationError("user already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewRemoteFaultError(err)
	}

	user := &models.User{
		Email:       email,
		Password:    string(hashed),
		DisplayName: displayName,
	}
	if err := p.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	p.setCurrent(user)
	return user, nil
}

// SignOut clears the signed-in user. Signing out while already signed
// out is a no-op.
func (p *Provider) SignOut() {
	p.setCurrent(nil)
}

// Current returns the signed-in user, or nil.
func (p *Provider) Current() *models.User {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// OnAuthStateChanged registers a listener and invokes it immediately with
// the current state. The returned function unsubscribes the listener.
func (p *Provider) OnAuthStateChanged(fn AuthStateListener) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	current := p.current
	p.mu.Unlock()

	fn(current)

	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

func (p *Provider) setCurrent(user *models.User) {
	p.mu.Lock()
	p.current = user
	fns := make([]AuthStateListener, 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(user)
	}
}
