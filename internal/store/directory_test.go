package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdelr/todoshare-be/internal/models"
)

func TestDirectory_CreateAndFind(t *testing.T) {
	d := NewDirectory()
	alice := models.User{ID: "u1", Username: "alice", Email: "alice@x.com"}
	require.NoError(t, d.Create(alice))

	got, ok := d.FindByUsernameOrEmail("alice")
	require.True(t, ok)
	assert.Equal(t, "u1", got.ID)

	got, ok = d.FindByUsernameOrEmail("alice@x.com")
	require.True(t, ok)
	assert.Equal(t, "u1", got.ID)

	_, ok = d.FindByUsernameOrEmail("Alice")
	assert.False(t, ok, "lookups are case-sensitive")

	got, ok = d.FindByID("u1")
	require.True(t, ok)
	assert.Equal(t, "alice", got.Username)

	_, ok = d.FindByID("missing")
	assert.False(t, ok)
	assert.Equal(t, 1, d.Count())
}

func TestDirectory_CreateDuplicates(t *testing.T) {
	tests := []struct {
		name    string
		user    models.User
		wantMsg string
	}{
		{"same username", models.User{ID: "u2", Username: "alice", Email: "other@x.com"}, "username already exists"},
		{"same email", models.User{ID: "u2", Username: "other", Email: "alice@x.com"}, "email already exists"},
		{"username equals existing email", models.User{ID: "u2", Username: "alice@x.com", Email: "new@x.com"}, "email already exists"},
		{"email equals existing username", models.User{ID: "u2", Username: "new", Email: "alice"}, "email already exists"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDirectory()
			require.NoError(t, d.Create(models.User{ID: "u1", Username: "alice", Email: "alice@x.com"}))

			err := d.Create(tt.user)
			require.ErrorIs(t, err, ErrDuplicateIdentity)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Equal(t, 1, d.Count())
		})
	}
}
