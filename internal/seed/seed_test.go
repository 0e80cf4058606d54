package seed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdelr/todoshare-be/internal/auth"
	"github.com/isdelr/todoshare-be/internal/services"
	"github.com/isdelr/todoshare-be/internal/store"
)

func TestLoad(t *testing.T) {
	dir := store.NewDirectory()
	lists := store.NewListStore(dir)
	users := services.NewUserService(dir, auth.NewProvider("test-secret", time.Hour))

	require.NoError(t, Load(users, lists))

	assert.Equal(t, 3, dir.Count())
	res, err := users.Login("admin@example.com", SamplePassword)
	require.NoError(t, err)

	owned := lists.ListsOwnedBy(res.User.ID)
	require.Len(t, owned, 4)
	assert.Equal(t, "Work Tasks", owned[0].Name)
	assert.Len(t, owned[0].Todos, 4)
	assert.Equal(t, "Fitness Goals", owned[3].Name)

	// A second run leaves everything alone.
	require.NoError(t, Load(users, lists))
	assert.Equal(t, 3, dir.Count())
	assert.Equal(t, 4, lists.ListCount())
}
