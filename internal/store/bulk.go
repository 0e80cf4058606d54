package store

import (
	"github.com/google/uuid"
	"github.com/isdelr/todoshare-be/internal/models"
)

// BulkResult describes what a BulkReplace did.
type BulkResult struct {
	Lists   []models.TodoList // requester's owned lists afterwards
	Created []string
	Updated []string
	Deleted []models.DeletedList
}

// BulkReplace makes the requester's lists match submitted in one step.
//
// Owned lists get their name and items replaced; an empty name keeps the
// current one. Lists the requester may
// write to but does not own get their items replaced and keep their name.
// Ids that do not exist yet become new lists owned by the requester. Ids that
// exist but are neither owned nor writable are ignored. Finally, every list
// the requester owned before the call and left out of submitted is deleted,
// so an empty submission deletes all of them.
func (s *ListStore) BulkReplace(submitted []models.ListSubmission, requesterID string) BulkResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := make([]string, 0, len(s.owned[requesterID]))
	for _, id := range s.order {
		if s.isOwnerLocked(requesterID, id) {
			before = append(before, id)
		}
	}

	var result BulkResult
	kept := make(map[string]struct{}, len(submitted))
	for _, list := range submitted {
		id := list.ID
		if id == "" {
			id = uuid.New().String()
		}
		kept[id] = struct{}{}

		_, exists := s.lists[id]
		switch {
		case s.isOwnerLocked(requesterID, id):
			if list.Name != "" {
				s.lists[id].name = list.Name
			}
			s.reconcileLocked(id, list.Todos)
			result.Updated = append(result.Updated, id)
		case s.hasWriteAccessLocked(requesterID, id):
			s.reconcileLocked(id, list.Todos)
			result.Updated = append(result.Updated, id)
		case !exists:
			createdAt := list.CreatedAt
			if createdAt.IsZero() {
				createdAt = s.now()
			}
			s.createLocked(id, list.Name, requesterID, createdAt, nil)
			s.reconcileLocked(id, list.Todos)
			result.Created = append(result.Created, id)
		}
	}

	for _, id := range before {
		if _, ok := kept[id]; !ok {
			result.Deleted = append(result.Deleted, s.deleteLocked(id))
		}
	}

	result.Lists = s.ownedViewsLocked(requesterID)
	return result
}

// reconcileLocked makes a list's items match submitted, matching by id.
// Items in both get the submitted fields merged in and keep their position,
// items only in the store are dropped, and items only in submitted are
// appended in submission order with TODO/MEDIUM defaults for missing fields.
func (s *ListStore) reconcileLocked(listID string, submitted []models.TodoSubmission) {
	current := s.todos[listID]
	stored := make(map[string]models.Todo, len(current))
	for _, t := range current {
		stored[t.ID] = t
	}

	merged := make(map[string]models.Todo, len(submitted))
	var fresh []string
	for _, sub := range submitted {
		id := sub.ID
		if id == "" {
			id = uuid.New().String()
		}
		base, ok := merged[id]
		if !ok {
			if base, ok = stored[id]; !ok {
				base = models.Todo{ID: id, Status: models.StatusTodo, Priority: models.PriorityMedium}
				fresh = append(fresh, id)
			}
		}
		merged[id] = sub.Patch.Apply(base)
	}

	next := make([]models.Todo, 0, len(merged))
	for _, t := range current {
		if m, ok := merged[t.ID]; ok {
			next = append(next, m)
		}
	}
	for _, id := range fresh {
		next = append(next, merged[id])
	}
	s.todos[listID] = next
}
