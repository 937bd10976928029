package identity

import (
	"context"
	"testing"

	"ripple/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type userRepoStub struct {
	getByEmailFn func(ctx context.Context, email string) (*models.User, error)
	createFn     func(ctx context.Context, user *models.User) error
}

func (s *userRepoStub) GetByID(_ context.Context, id uint) (*models.User, error) {
	return nil, models.NewNotFoundError("User", id)
}

func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	if s.createFn != nil {
		return s.createFn(ctx, user)
	}
	return nil
}

func (s *userRepoStub) Update(_ context.Context, _ *models.User) error { return nil }

func (s *userRepoStub) List(_ context.Context, _, _ int) ([]models.User, error) {
	return nil, nil
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestProvider_SignIn(t *testing.T) {
	t.Parallel()

	stored := &models.User{Email: "alice@example.com", DisplayName: "Alice"}
	stored.ID = 1

	t.Run("valid credentials", func(t *testing.T) {
		t.Parallel()

		user := *stored
		user.Password = hashed(t, "Str0ngPass!word")
		repo := &userRepoStub{getByEmailFn: func(_ context.Context, _ string) (*models.User, error) {
			return &user, nil
		}}
		p := NewProvider(repo)

		got, err := p.SignIn(context.Background(), "alice@example.com", "Str0ngPass!word")
		require.NoError(t, err)
		assert.Equal(t, uint(1), got.ID)
		assert.Equal(t, got, p.Current())
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()

		user := *stored
		user.Password = hashed(t, "Str0ngPass!word")
		repo := &userRepoStub{getByEmailFn: func(_ context.Context, _ string) (*models.User, error) {
			return &user, nil
		}}
		p := NewProvider(repo)

		_, err := p.SignIn(context.Background(), "alice@example.com", "wrong")
		assert.True(t, models.IsCode(err, models.CodeUnauthenticated))
		assert.Nil(t, p.Current())
	})

	t.Run("unknown email", func(t *testing.T) {
		t.Parallel()

		repo := &userRepoStub{getByEmailFn: func(_ context.Context, _ string) (*models.User, error) {
			return nil, nil
		}}
		p := NewProvider(repo)

		_, err := p.SignIn(context.Background(), "nobody@example.com", "whatever")
		assert.True(t, models.IsCode(err, models.CodeUnauthenticated))
	})

	t.Run("store fault propagates", func(t *testing.T) {
		t.Parallel()

		repo := &userRepoStub{getByEmailFn: func(_ context.Context, _ string) (*models.User, error) {
			return nil, models.NewRemoteFaultError(assert.AnError)
		}}
		p := NewProvider(repo)

		_, err := p.SignIn(context.Background(), "alice@example.com", "Str0ngPass!word")
		assert.True(t, models.IsCode(err, models.CodeRemoteFault))
	})
}

func TestProvider_SignUp(t *testing.T) {
	t.Parallel()

	t.Run("creates and signs in", func(t *testing.T) {
		t.Parallel()

		var created *models.User
		repo := &userRepoStub{
			getByEmailFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
			createFn: func(_ context.Context, user *models.User) error {
				user.ID = 7
				created = user
				return nil
			},
		}
		p := NewProvider(repo)

		user, err := p.SignUp(context.Background(), "bob@example.com", "Str0ngPass!word", "Bob")
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, uint(7), user.ID)
		assert.NotEqual(t, "Str0ngPass!word", created.Password, "password must be hashed")
		assert.Equal(t, user, p.Current())
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		t.Parallel()

		existing := &models.User{Email: "bob@example.com"}
		repo := &userRepoStub{getByEmailFn: func(_ context.Context, _ string) (*models.User, error) {
			return existing, nil
		}}
		p := NewProvider(repo)

		_, err := p.SignUp(context.Background(), "bob@example.com", "Str0ngPass!word", "Bob")
		assert.True(t, models.IsCode(err, models.CodeValidation))
	})

	t.Run("weak password rejected", func(t *testing.T) {
		t.Parallel()

		repo := &userRepoStub{getByEmailFn: func(_ context.Context, _ string) (*models.User, error) {
			return nil, nil
		}}
		p := NewProvider(repo)

		_, err := p.SignUp(context.Background(), "bob@example.com", "short", "Bob")
		assert.True(t, models.IsCode(err, models.CodeValidation))
	})
}

func TestProvider_OnAuthStateChanged(t *testing.T) {
	t.Parallel()

	user := &models.User{Email: "alice@example.com"}
	user.ID = 1
	user.Password = hashed(t, "Str0ngPass!word")
	repo := &userRepoStub{getByEmailFn: func(_ context.Context, _ string) (*models.User, error) {
		return user, nil
	}}
	p := NewProvider(repo)

	var states []*models.User
	unsub := p.OnAuthStateChanged(func(u *models.User) {
		states = append(states, u)
	})

	// Fires immediately with the signed-out state.
	require.Len(t, states, 1)
	assert.Nil(t, states[0])

	_, err := p.SignIn(context.Background(), "alice@example.com", "Str0ngPass!word")
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.Equal(t, uint(1), states[1].ID)

	p.SignOut()
	require.Len(t, states, 3)
	assert.Nil(t, states[2])

	unsub()
	_, err = p.SignIn(context.Background(), "alice@example.com", "Str0ngPass!word")
	require.NoError(t, err)
	assert.Len(t, states, 3, "unsubscribed listener must not fire")
}
