package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdelr/todoshare-be/internal/models"
)

// newTestStore returns a store whose directory knows alice, bob and carol.
func newTestStore(t *testing.T) *ListStore {
	t.Helper()
	d := NewDirectory()
	for _, u := range []models.User{
		{ID: "alice", Username: "alice", Email: "alice@x.com"},
		{ID: "bob", Username: "bob", Email: "bob@x.com"},
		{ID: "carol", Username: "carol", Email: "carol@x.com"},
	} {
		require.NoError(t, d.Create(u))
	}
	return NewListStore(d)
}

func TestListStore_CreateList(t *testing.T) {
	s := newTestStore(t)

	list := s.CreateList("Groceries", "alice")
	assert.NotEmpty(t, list.ID)
	assert.Equal(t, "Groceries", list.Name)
	assert.Empty(t, list.Todos)
	assert.True(t, list.IsOwner)

	assert.True(t, s.IsOwner("alice", list.ID))
	assert.False(t, s.IsOwner("bob", list.ID))
	owner, ok := s.OwnerOf(list.ID)
	require.True(t, ok)
	assert.Equal(t, "alice", owner)

	other := s.CreateList("Groceries", "alice")
	assert.NotEqual(t, list.ID, other.ID)
}

func TestListStore_WriteAccessFollowsGrants(t *testing.T) {
	s := newTestStore(t)
	list := s.CreateList("Groceries", "alice")

	assert.False(t, s.HasWriteAccess("bob", list.ID))
	assert.False(t, s.HasReadAccess("bob", list.ID))

	_, err := s.ShareList(list.ID, "alice", "bob@x.com", models.PermissionRead)
	require.NoError(t, err)
	assert.True(t, s.HasReadAccess("bob", list.ID))
	assert.False(t, s.HasWriteAccess("bob", list.ID))

	_, err = s.ShareList(list.ID, "alice", "bob", models.PermissionWrite)
	require.NoError(t, err)
	assert.True(t, s.HasWriteAccess("bob", list.ID))

	removed, err := s.RevokeShare(list.ID, "alice", "bob")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.False(t, s.HasWriteAccess("bob", list.ID))
	assert.False(t, s.HasReadAccess("bob", list.ID))

	removed, err = s.RevokeShare(list.ID, "alice", "bob")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestListStore_ShareOverwritesPermission(t *testing.T) {
	s := newTestStore(t)
	list := s.CreateList("Groceries", "alice")

	_, err := s.ShareList(list.ID, "alice", "bob@x.com", models.PermissionWrite)
	require.NoError(t, err)
	_, err = s.ShareList(list.ID, "alice", "bob@x.com", models.PermissionRead)
	require.NoError(t, err)

	grants, err := s.Grants(list.ID, "alice")
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, models.PermissionRead, grants[0].Permission)

	grant, ok := s.SharedWith("bob", list.ID)
	require.True(t, ok)
	assert.Equal(t, models.PermissionRead, grant.Permission)
}

func TestListStore_ShareErrors(t *testing.T) {
	s := newTestStore(t)
	list := s.CreateList("Groceries", "alice")

	_, err := s.ShareList(list.ID, "bob", "carol", models.PermissionRead)
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = s.ShareList("missing", "alice", "bob", models.PermissionRead)
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = s.ShareList(list.ID, "alice", "nobody@x.com", models.PermissionRead)
	assert.ErrorIs(t, err, ErrUnknownUser)

	_, err = s.ShareList(list.ID, "alice", "alice@x.com", models.PermissionRead)
	assert.ErrorIs(t, err, ErrSelfShare)

	_, err = s.RevokeShare(list.ID, "bob", "carol")
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = s.Grants(list.ID, "bob")
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestListStore_DeleteListCascades(t *testing.T) {
	s := newTestStore(t)
	list := s.CreateList("Groceries", "alice")
	_, ok := s.AddTodo(list.ID, models.Todo{ID: "t1", Text: "milk"})
	require.True(t, ok)
	_, err := s.ShareList(list.ID, "alice", "bob", models.PermissionWrite)
	require.NoError(t, err)
	_, err = s.ShareList(list.ID, "alice", "carol", models.PermissionRead)
	require.NoError(t, err)

	_, ok = s.DeleteList(list.ID, "bob")
	assert.False(t, ok, "only the owner may delete")
	assert.True(t, s.HasReadAccess("bob", list.ID))

	deleted, ok := s.DeleteList(list.ID, "alice")
	require.True(t, ok)
	assert.Equal(t, "alice", deleted.OwnerID)
	assert.Equal(t, []string{"bob", "carol"}, deleted.GranteeIDs)
	assert.Equal(t, []string{"alice", "bob", "carol"}, deleted.Readers())

	for _, u := range []string{"alice", "bob", "carol"} {
		assert.False(t, s.HasReadAccess(u, list.ID), u)
	}
	_, ok = s.Todo(list.ID, "t1")
	assert.False(t, ok)
	_, ok = s.AddTodo(list.ID, models.Todo{ID: "t2"})
	assert.False(t, ok)
	_, ok = s.OwnerOf(list.ID)
	assert.False(t, ok)
	assert.Empty(t, s.ListsSharedWith("bob"))
	assert.Equal(t, 0, s.ListCount())

	_, ok = s.DeleteList(list.ID, "alice")
	assert.False(t, ok)
}

func TestListStore_TodoMutations(t *testing.T) {
	s := newTestStore(t)
	list := s.CreateList("Groceries", "alice")

	_, ok := s.AddTodo("missing", models.Todo{ID: "t0"})
	assert.False(t, ok)

	_, ok = s.AddTodo(list.ID, models.Todo{ID: "t1", Text: "milk", Priority: models.PriorityMedium})
	require.True(t, ok)

	text := "oat milk"
	updated, ok := s.UpdateTodo(list.ID, "t1", models.TodoPatch{Text: &text})
	require.True(t, ok)
	assert.Equal(t, "oat milk", updated.Text)
	assert.Equal(t, models.PriorityMedium, updated.Priority, "omitted fields are preserved")

	_, ok = s.UpdateTodo(list.ID, "missing", models.TodoPatch{Text: &text})
	assert.False(t, ok)

	assert.True(t, s.DeleteTodo(list.ID, "t1"))
	assert.False(t, s.DeleteTodo(list.ID, "t1"))
	assert.False(t, s.DeleteTodo("missing", "t1"))
}

func TestListStore_ToggleCycle(t *testing.T) {
	s := newTestStore(t)
	list := s.CreateList("Groceries", "alice")
	_, ok := s.AddTodo(list.ID, models.Todo{ID: "t1", Text: "milk"})
	require.True(t, ok)

	want := []models.Status{models.StatusInProgress, models.StatusCompleted, models.StatusTodo}
	for _, status := range want {
		todo, ok := s.ToggleTodoStatus(list.ID, "t1")
		require.True(t, ok)
		assert.Equal(t, status, todo.Status)
	}

	_, ok = s.ToggleTodoStatus(list.ID, "missing")
	assert.False(t, ok)
}

func TestListStore_ReadsAttachItemsAndFlags(t *testing.T) {
	s := newTestStore(t)
	groceries := s.CreateList("Groceries", "alice")
	chores := s.CreateList("Chores", "bob")
	_, _ = s.AddTodo(groceries.ID, models.Todo{ID: "t1", Text: "milk"})
	_, err := s.ShareList(groceries.ID, "alice", "bob", models.PermissionRead)
	require.NoError(t, err)

	owned := s.ListsOwnedBy("bob")
	require.Len(t, owned, 1)
	assert.Equal(t, chores.ID, owned[0].ID)
	assert.True(t, owned[0].IsOwner)

	shared := s.ListsSharedWith("bob")
	require.Len(t, shared, 1)
	assert.Equal(t, groceries.ID, shared[0].ID)
	assert.True(t, shared[0].IsShared)
	assert.False(t, shared[0].IsOwner)
	assert.Equal(t, models.PermissionRead, shared[0].Permission)
	require.Len(t, shared[0].Todos, 1)
	assert.Equal(t, "milk", shared[0].Todos[0].Text)

	all := s.AllAccessibleLists("bob")
	require.Len(t, all, 2)
	assert.Equal(t, chores.ID, all[0].ID)
	assert.Equal(t, groceries.ID, all[1].ID)

	view, ok := s.AccessibleList("bob", groceries.ID)
	require.True(t, ok)
	assert.True(t, view.IsShared)

	_, ok = s.AccessibleList("carol", groceries.ID)
	assert.False(t, ok)

	// Returned items are copies.
	view.Todos[0].Text = "changed"
	again, _ := s.Todo(groceries.ID, "t1")
	assert.Equal(t, "milk", again.Text)
}

func TestListStore_ConcurrentMutations(t *testing.T) {
	s := newTestStore(t)
	list := s.CreateList("Groceries", "alice")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.AddTodo(list.ID, models.Todo{ID: "x", Text: "item"})
		}()
		go func() {
			defer wg.Done()
			s.AllAccessibleLists("alice")
		}()
	}
	wg.Wait()

	view, ok := s.AccessibleList("alice", list.ID)
	require.True(t, ok)
	assert.Len(t, view.Todos, 50)
}
