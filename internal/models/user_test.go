package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFullDisplayName_FallbackChain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		user User
		want string
	}{
		{
			name: "first and last name win",
			user: User{FirstName: "Ada", LastName: "Lovelace", DisplayName: "ada_l", Email: "ada@example.com"},
			want: "Ada Lovelace",
		},
		{
			name: "first name alone",
			user: User{FirstName: "Ada", DisplayName: "ada_l", Email: "ada@example.com"},
			want: "Ada",
		},
		{
			name: "last name alone",
			user: User{LastName: "Lovelace", DisplayName: "ada_l"},
			want: "Lovelace",
		},
		{
			name: "display name fallback",
			user: User{DisplayName: "ada_l", Email: "ada@example.com"},
			want: "ada_l",
		},
		{
			name: "email fallback",
			user: User{Email: "ada@example.com"},
			want: "ada@example.com",
		},
		{
			name: "nothing set",
			user: User{},
			want: UnknownUserName,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.user.FullDisplayName())
		})
	}
}
