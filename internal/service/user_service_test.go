package service

import (
	"context"
	"testing"

	"ripple/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_DisplayName(t *testing.T) {
	t.Parallel()

	users := noopUserRepo()
	users.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		switch id {
		case 1:
			return &models.User{ID: 1, FirstName: "Alan", LastName: "Turing"}, nil
		case 2:
			return &models.User{ID: 2, Email: "anon@example.com"}, nil
		default:
			return nil, models.NewNotFoundError("User", id)
		}
	}
	svc := NewUserService(users)
	ctx := context.Background()

	name, err := svc.DisplayName(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Alan Turing", name)

	name, err = svc.DisplayName(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "anon@example.com", name)

	_, err = svc.DisplayName(ctx, 3)
	assertCode(t, err, models.CodeNotFound)
}

func TestUserService_UpdateProfile(t *testing.T) {
	t.Parallel()

	var saved *models.User
	users := noopUserRepo()
	users.updateFn = func(_ context.Context, u *models.User) error {
		saved = u
		return nil
	}
	svc := NewUserService(users)

	_, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{UserID: 0})
	assertCode(t, err, models.CodeUnauthenticated)

	updated, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{
		UserID:      9,
		DisplayName: "  Margaret  ",
		FirstName:   "Margaret",
		LastName:    "Hamilton",
	})
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "Margaret", updated.DisplayName)
	assert.Equal(t, "Margaret Hamilton", updated.FullDisplayName())
}
