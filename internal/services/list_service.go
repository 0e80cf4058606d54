package services

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/isdelr/todoshare-be/internal/broadcast"
	"github.com/isdelr/todoshare-be/internal/metrics"
	"github.com/isdelr/todoshare-be/internal/models"
	"github.com/isdelr/todoshare-be/internal/store"
	"github.com/rs/zerolog/log"
)

// TodoInput is the body of an add-todo request. Missing status and priority
// default to TODO and MEDIUM.
type TodoInput struct {
	Text     string           `json:"text"`
	Status   *models.Status   `json:"status"`
	Priority *models.Priority `json:"priority"`
}

// ListServiceProvider defines the interface for list and todo operations.
// Every method takes the id of the authenticated caller first.
type ListServiceProvider interface {
	AllLists(userID string) []models.TodoList
	OwnedLists(userID string) []models.TodoList
	SharedLists(userID string) []models.TodoList
	GetList(userID, listID string) (models.TodoList, error)
	CreateList(userID, name string) (models.TodoList, error)
	DeleteList(userID, listID string) error
	ShareList(userID, listID, target string, permission models.Permission) (models.ShareGrant, error)
	RevokeShare(userID, listID, targetUserID string) error
	Collaborators(userID, listID string) ([]models.Collaborator, error)
	AddTodo(userID, listID string, input TodoInput) (models.Todo, error)
	ToggleTodo(userID, listID, todoID string) (models.Todo, error)
	UpdateTodo(userID, listID, todoID string, patch models.TodoPatch) (models.Todo, error)
	DeleteTodo(userID, listID, todoID string) error
	ReplaceLists(userID string, lists []models.ListSubmission) ([]models.TodoList, error)
}

// ListService checks input and access, mutates the list store, then records
// activity and publishes realtime events for whatever changed.
//
// Mutations run one at a time together with their Publish call, so events
// leave in the same order the store applied the changes.
type ListService struct {
	mu sync.Mutex

	lists     *store.ListStore
	users     store.UserResolver
	publisher broadcast.Publisher
	activity  ActivityServiceProvider
}

// NewListService creates a new ListService.
func NewListService(lists *store.ListStore, users store.UserResolver, publisher broadcast.Publisher, activity ActivityServiceProvider) *ListService {
	return &ListService{lists: lists, users: users, publisher: publisher, activity: activity}
}

// AllLists returns owned lists followed by lists shared with the caller.
func (s *ListService) AllLists(userID string) []models.TodoList {
	return s.lists.AllAccessibleLists(userID)
}

// OwnedLists returns the caller's own lists.
func (s *ListService) OwnedLists(userID string) []models.TodoList {
	return s.lists.ListsOwnedBy(userID)
}

// SharedLists returns lists other users shared with the caller.
func (s *ListService) SharedLists(userID string) []models.TodoList {
	return s.lists.ListsSharedWith(userID)
}

// GetList returns one list the caller can read.
func (s *ListService) GetList(userID, listID string) (models.TodoList, error) {
	if !s.lists.HasReadAccess(userID, listID) {
		return models.TodoList{}, forbidden("access denied")
	}
	list, ok := s.lists.AccessibleList(userID, listID)
	if !ok {
		return models.TodoList{}, notFound("todo list")
	}
	return list, nil
}

// CreateList creates an empty list owned by the caller.
func (s *ListService) CreateList(userID, name string) (models.TodoList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return models.TodoList{}, invalid("name is required")
	}

	list := s.lists.CreateList(name, userID)
	s.mutated("create_list")
	s.record(models.ActivityListCreate, userID, fmt.Sprintf("created list %q", list.Name), list.ID)
	s.publisher.Publish(broadcast.ListCreated(list, userID))
	return list, nil
}

// DeleteList removes a list the caller owns.
func (s *ListService) DeleteList(userID, listID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted, ok := s.lists.DeleteList(listID, userID)
	if !ok {
		log.Warn().Str("user_id", userID).Str("list_id", listID).Msg("Rejected list deletion by non-owner")
		return forbidden("only the list owner can delete it")
	}

	s.mutated("delete_list")
	s.record(models.ActivityListDelete, userID, fmt.Sprintf("deleted list %q", deleted.Name), "")
	s.publisher.Publish(broadcast.ListDeleted(deleted))
	return nil
}

// ShareList grants target (a username or email) access to a list the caller owns.
func (s *ListService) ShareList(userID, listID, target string, permission models.Permission) (models.ShareGrant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target = strings.TrimSpace(target)
	if target == "" {
		return models.ShareGrant{}, invalid("email is required")
	}
	if !permission.Valid() {
		return models.ShareGrant{}, invalid("valid permission (read/write) is required")
	}

	grant, err := s.lists.ShareList(listID, userID, target, permission)
	if err != nil {
		return models.ShareGrant{}, translateStoreErr(err)
	}

	s.mutated("share_list")
	s.record(models.ActivityListShare, userID, fmt.Sprintf("shared list with %s (%s)", target, permission), listID)
	if list, ok := s.lists.AccessibleList(grant.GranteeID, listID); ok {
		s.publisher.Publish(broadcast.ListShared(list, grant.GranteeID, permission))
	}
	return grant, nil
}

// RevokeShare removes a grant on a list the caller owns.
func (s *ListService) RevokeShare(userID, listID, targetUserID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.lists.RevokeShare(listID, userID, targetUserID)
	if err != nil {
		return translateStoreErr(err)
	}
	if !removed {
		return notFound("shared list")
	}

	s.mutated("revoke_share")
	s.record(models.ActivityListUnshare, userID, "stopped sharing list with user "+targetUserID, listID)
	return nil
}

// Collaborators lists the grantees of a list the caller owns.
func (s *ListService) Collaborators(userID, listID string) ([]models.Collaborator, error) {
	grants, err := s.lists.Grants(listID, userID)
	if err != nil {
		return nil, translateStoreErr(err)
	}
	out := make([]models.Collaborator, 0, len(grants))
	for _, g := range grants {
		c := models.Collaborator{UserID: g.GranteeID, Permission: g.Permission}
		if u, ok := s.users.FindByID(g.GranteeID); ok {
			c.Username = u.Username
			c.Email = u.Email
		}
		out = append(out, c)
	}
	return out, nil
}

// AddTodo appends a new item to a list the caller can write to.
func (s *ListService) AddTodo(userID, listID string, input TodoInput) (models.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text := strings.TrimSpace(input.Text)
	if text == "" {
		return models.Todo{}, invalid("text is required")
	}
	if err := s.requireWrite(userID, listID); err != nil {
		return models.Todo{}, err
	}

	todo := models.Todo{
		ID:       uuid.New().String(),
		Text:     text,
		Status:   models.StatusTodo,
		Priority: models.PriorityMedium,
	}
	if input.Status != nil {
		todo.Status = *input.Status
	}
	if input.Priority != nil {
		todo.Priority = *input.Priority
	}

	todo, ok := s.lists.AddTodo(listID, todo)
	if !ok {
		return models.Todo{}, notFound("todo list")
	}

	s.mutated("add_todo")
	s.record(models.ActivityTodoAdd, userID, fmt.Sprintf("added %q", todo.Text), listID)
	s.publisher.Publish(broadcast.TodoAdded(listID, todo))
	return todo, nil
}

// ToggleTodo advances an item's status.
func (s *ListService) ToggleTodo(userID, listID, todoID string) (models.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireWrite(userID, listID); err != nil {
		return models.Todo{}, err
	}
	todo, ok := s.lists.ToggleTodoStatus(listID, todoID)
	if !ok {
		return models.Todo{}, notFound("todo list or todo item")
	}

	s.mutated("toggle_todo")
	s.record(models.ActivityTodoToggle, userID, fmt.Sprintf("marked %q as %s", todo.Text, todo.Status), listID)
	s.publisher.Publish(broadcast.TodoToggled(listID, todo))
	return todo, nil
}

// UpdateTodo applies patch to an item.
func (s *ListService) UpdateTodo(userID, listID, todoID string, patch models.TodoPatch) (models.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireWrite(userID, listID); err != nil {
		return models.Todo{}, err
	}
	todo, ok := s.lists.UpdateTodo(listID, todoID, patch)
	if !ok {
		return models.Todo{}, notFound("todo list or todo item")
	}

	s.mutated("update_todo")
	s.record(models.ActivityTodoUpdate, userID, fmt.Sprintf("updated %q", todo.Text), listID)
	s.publisher.Publish(broadcast.TodoUpdated(listID, todo))
	return todo, nil
}

// DeleteTodo removes an item.
func (s *ListService) DeleteTodo(userID, listID, todoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireWrite(userID, listID); err != nil {
		return err
	}
	if !s.lists.DeleteTodo(listID, todoID) {
		return notFound("todo list or todo item")
	}

	s.mutated("delete_todo")
	s.record(models.ActivityTodoDelete, userID, "deleted an item", listID)
	s.publisher.Publish(broadcast.TodoDeleted(listID, todoID))
	return nil
}

// ReplaceLists makes the caller's lists match lists. Owned lists left out
// are deleted.
func (s *ListService) ReplaceLists(userID string, lists []models.ListSubmission) ([]models.TodoList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range lists {
		for _, t := range l.Todos {
			if (t.Patch.Status != nil && !t.Patch.Status.Valid()) || (t.Patch.Priority != nil && !t.Patch.Priority.Valid()) {
				return nil, invalid("todo %q has an invalid status or priority", t.ID)
			}
		}
	}

	result := s.lists.BulkReplace(lists, userID)

	s.mutated("replace_lists")
	s.record(models.ActivityListsSync, userID,
		fmt.Sprintf("synced lists: %d created, %d updated, %d deleted", len(result.Created), len(result.Updated), len(result.Deleted)), "")
	for _, deleted := range result.Deleted {
		s.publisher.Publish(broadcast.ListDeleted(deleted))
	}
	s.publisher.Publish(broadcast.ListsUpdated(result.Lists, userID))
	return result.Lists, nil
}

func (s *ListService) requireWrite(userID, listID string) error {
	if !s.lists.HasWriteAccess(userID, listID) {
		log.Warn().Str("user_id", userID).Str("list_id", listID).Msg("Rejected write without access")
		return forbidden("write access required")
	}
	return nil
}

func (s *ListService) record(activityType, actorID, message, listID string) {
	var ref *string
	if listID != "" {
		ref = &listID
	}
	s.activity.Record(activityType, actorID, message, ref)
}

func (s *ListService) mutated(op string) {
	metrics.StoreMutations.WithLabelValues(op).Inc()
}
