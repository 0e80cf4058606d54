package store

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/todoshare-be/internal/models"
)

// UserResolver is the part of the Directory the list store needs.
type UserResolver interface {
	FindByUsernameOrEmail(key string) (models.User, bool)
	FindByID(id string) (models.User, bool)
}

type listMeta struct {
	id        string
	name      string
	createdAt time.Time
}

// ListStore owns every todo list, todo item, ownership record and share grant.
// A single lock guards all of it, and every mutation holds that lock for its
// whole duration, so cascades such as DeleteList and BulkReplace are never
// observed half-done.
type ListStore struct {
	mu    sync.RWMutex
	users UserResolver
	now   func() time.Time

	lists  map[string]*listMeta
	order  []string                                // list ids in creation order
	todos  map[string][]models.Todo                // list id -> items
	owners map[string]string                       // list id -> owner id
	owned  map[string]map[string]struct{}          // owner id -> list ids
	grants map[string]map[string]models.Permission // list id -> grantee id -> permission
}

// NewListStore creates an empty store that resolves share targets through users.
func NewListStore(users UserResolver) *ListStore {
	return &ListStore{
		users:  users,
		now:    time.Now,
		lists:  make(map[string]*listMeta),
		todos:  make(map[string][]models.Todo),
		owners: make(map[string]string),
		owned:  make(map[string]map[string]struct{}),
		grants: make(map[string]map[string]models.Permission),
	}
}

// IsOwner reports whether userID owns listID.
func (s *ListStore) IsOwner(userID, listID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isOwnerLocked(userID, listID)
}

// SharedWith returns the grant for (userID, listID), if any.
func (s *ListStore) SharedWith(userID, listID string) (models.ShareGrant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	perm, ok := s.grants[listID][userID]
	if !ok {
		return models.ShareGrant{}, false
	}
	return models.ShareGrant{ListID: listID, GranteeID: userID, Permission: perm}, true
}

// HasReadAccess is true for the owner and for any grantee.
func (s *ListStore) HasReadAccess(userID, listID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasReadAccessLocked(userID, listID)
}

// HasWriteAccess is true for the owner and for write grantees.
func (s *ListStore) HasWriteAccess(userID, listID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasWriteAccessLocked(userID, listID)
}

// OwnerOf returns the owner of listID.
func (s *ListStore) OwnerOf(listID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.owners[listID]
	return id, ok
}

// CreateList registers a new, empty list owned by ownerID.
func (s *ListStore) CreateList(name, ownerID string) models.TodoList {
	s.mu.Lock()
	defer s.mu.Unlock()
	meta := s.createLocked(uuid.New().String(), name, ownerID, s.now(), nil)
	return s.viewLocked(meta, ownerID)
}

// DeleteList removes a list with its items and grants. It is a no-op
// returning false unless requesterID owns the list.
func (s *ListStore) DeleteList(listID, requesterID string) (models.DeletedList, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isOwnerLocked(requesterID, listID) {
		return models.DeletedList{}, false
	}
	return s.deleteLocked(listID), true
}

// ShareList upserts a grant for the user that target resolves to.
func (s *ListStore) ShareList(listID, ownerID, target string, permission models.Permission) (models.ShareGrant, error) {
	user, found := s.users.FindByUsernameOrEmail(target)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isOwnerLocked(ownerID, listID) {
		return models.ShareGrant{}, ErrNotOwner
	}
	if !found {
		return models.ShareGrant{}, fmt.Errorf("%w: %s", ErrUnknownUser, target)
	}
	if user.ID == ownerID {
		return models.ShareGrant{}, ErrSelfShare
	}
	if s.grants[listID] == nil {
		s.grants[listID] = make(map[string]models.Permission)
	}
	s.grants[listID][user.ID] = permission
	return models.ShareGrant{ListID: listID, GranteeID: user.ID, Permission: permission}, nil
}

// RevokeShare removes the grant for targetUserID and reports whether one existed.
func (s *ListStore) RevokeShare(listID, ownerID, targetUserID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isOwnerLocked(ownerID, listID) {
		return false, ErrNotOwner
	}
	grants := s.grants[listID]
	if _, ok := grants[targetUserID]; !ok {
		return false, nil
	}
	delete(grants, targetUserID)
	if len(grants) == 0 {
		delete(s.grants, listID)
	}
	return true, nil
}

// Grants returns every grant on listID, ordered by grantee id. Only the owner may ask.
func (s *ListStore) Grants(listID, ownerID string) ([]models.ShareGrant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isOwnerLocked(ownerID, listID) {
		return nil, ErrNotOwner
	}
	out := make([]models.ShareGrant, 0, len(s.grants[listID]))
	for _, granteeID := range s.granteesLocked(listID) {
		out = append(out, models.ShareGrant{ListID: listID, GranteeID: granteeID, Permission: s.grants[listID][granteeID]})
	}
	return out, nil
}

// AddTodo appends todo to listID. Write access is the caller's responsibility.
func (s *ListStore) AddTodo(listID string, todo models.Todo) (models.Todo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lists[listID]; !ok {
		return models.Todo{}, false
	}
	s.todos[listID] = append(s.todos[listID], todo)
	return todo, true
}

// Todo returns a single item.
func (s *ListStore) Todo(listID, todoID string) (models.Todo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.todoIndexLocked(listID, todoID)
	if i < 0 {
		return models.Todo{}, false
	}
	return s.todos[listID][i], true
}

// UpdateTodo merges patch into an existing item.
func (s *ListStore) UpdateTodo(listID, todoID string, patch models.TodoPatch) (models.Todo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.todoIndexLocked(listID, todoID)
	if i < 0 {
		return models.Todo{}, false
	}
	s.todos[listID][i] = patch.Apply(s.todos[listID][i])
	return s.todos[listID][i], true
}

// ToggleTodoStatus advances an item's status one step around its cycle.
func (s *ListStore) ToggleTodoStatus(listID, todoID string) (models.Todo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.todoIndexLocked(listID, todoID)
	if i < 0 {
		return models.Todo{}, false
	}
	todo := &s.todos[listID][i]
	todo.Status = todo.Status.Next()
	return *todo, true
}

// DeleteTodo removes an item and reports whether it existed.
func (s *ListStore) DeleteTodo(listID, todoID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.todoIndexLocked(listID, todoID)
	if i < 0 {
		return false
	}
	s.todos[listID] = slices.Delete(s.todos[listID], i, i+1)
	return true
}

// ListsOwnedBy returns userID's lists with items attached.
func (s *ListStore) ListsOwnedBy(userID string) []models.TodoList {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ownedViewsLocked(userID)
}

// ListsSharedWith returns the lists other users have shared with userID.
func (s *ListStore) ListsSharedWith(userID string) []models.TodoList {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sharedViewsLocked(userID)
}

// AllAccessibleLists returns owned lists followed by shared ones.
func (s *ListStore) AllAccessibleLists(userID string) []models.TodoList {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append(s.ownedViewsLocked(userID), s.sharedViewsLocked(userID)...)
}

// AccessibleList returns listID as userID sees it, if userID can read it.
func (s *ListStore) AccessibleList(userID, listID string) (models.TodoList, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meta, ok := s.lists[listID]
	if !ok || !s.hasReadAccessLocked(userID, listID) {
		return models.TodoList{}, false
	}
	return s.viewLocked(meta, userID), true
}

// ListCount returns the number of lists in the store.
func (s *ListStore) ListCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lists)
}

func (s *ListStore) isOwnerLocked(userID, listID string) bool {
	_, ok := s.owned[userID][listID]
	return ok
}

func (s *ListStore) hasReadAccessLocked(userID, listID string) bool {
	if s.isOwnerLocked(userID, listID) {
		return true
	}
	_, ok := s.grants[listID][userID]
	return ok
}

func (s *ListStore) hasWriteAccessLocked(userID, listID string) bool {
	if s.isOwnerLocked(userID, listID) {
		return true
	}
	return s.grants[listID][userID] == models.PermissionWrite
}

func (s *ListStore) createLocked(id, name, ownerID string, createdAt time.Time, todos []models.Todo) *listMeta {
	meta := &listMeta{id: id, name: name, createdAt: createdAt}
	s.lists[id] = meta
	s.order = append(s.order, id)
	s.todos[id] = todos
	s.owners[id] = ownerID
	if s.owned[ownerID] == nil {
		s.owned[ownerID] = make(map[string]struct{})
	}
	s.owned[ownerID][id] = struct{}{}
	return meta
}

func (s *ListStore) deleteLocked(listID string) models.DeletedList {
	ownerID := s.owners[listID]
	deleted := models.DeletedList{
		ListID:     listID,
		Name:       s.lists[listID].name,
		OwnerID:    ownerID,
		GranteeIDs: s.granteesLocked(listID),
	}

	delete(s.lists, listID)
	if i := slices.Index(s.order, listID); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	delete(s.todos, listID)
	delete(s.owners, listID)
	delete(s.owned[ownerID], listID)
	if len(s.owned[ownerID]) == 0 {
		delete(s.owned, ownerID)
	}
	delete(s.grants, listID)
	return deleted
}

func (s *ListStore) granteesLocked(listID string) []string {
	ids := make([]string, 0, len(s.grants[listID]))
	for id := range s.grants[listID] {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (s *ListStore) todoIndexLocked(listID, todoID string) int {
	return slices.IndexFunc(s.todos[listID], func(t models.Todo) bool { return t.ID == todoID })
}

// viewLocked builds the caller-relative view of a list with a copy of its items.
func (s *ListStore) viewLocked(meta *listMeta, userID string) models.TodoList {
	view := models.TodoList{
		ID:        meta.id,
		Name:      meta.name,
		Todos:     slices.Clone(s.todos[meta.id]),
		CreatedAt: meta.createdAt,
	}
	if view.Todos == nil {
		view.Todos = []models.Todo{}
	}
	if s.isOwnerLocked(userID, meta.id) {
		view.IsOwner = true
	} else if perm, ok := s.grants[meta.id][userID]; ok {
		view.IsShared = true
		view.Permission = perm
	}
	return view
}

func (s *ListStore) ownedViewsLocked(userID string) []models.TodoList {
	out := []models.TodoList{}
	for _, id := range s.order {
		if s.isOwnerLocked(userID, id) {
			out = append(out, s.viewLocked(s.lists[id], userID))
		}
	}
	return out
}

func (s *ListStore) sharedViewsLocked(userID string) []models.TodoList {
	out := []models.TodoList{}
	for _, id := range s.order {
		if _, ok := s.grants[id][userID]; ok && !s.isOwnerLocked(userID, id) {
			out = append(out, s.viewLocked(s.lists[id], userID))
		}
	}
	return out
}
