package models

import "time"

// Activity types recorded by the list service.
const (
	ActivityListCreate  = "list.create"
	ActivityListDelete  = "list.delete"
	ActivityListShare   = "list.share"
	ActivityListUnshare = "list.unshare"
	ActivityTodoAdd     = "todo.add"
	ActivityTodoToggle  = "todo.toggle"
	ActivityTodoUpdate  = "todo.update"
	ActivityTodoDelete  = "todo.delete"
	ActivityListsSync   = "lists.sync"
)

// Activity represents a single mutation in the activity feed.
type Activity struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"` // e.g., "list.create", "todo.toggle"
	ActorID   string    `json:"actorId"`
	Message   string    `json:"message"`
	ListID    *string   `json:"listId,omitempty"` // Nil for account-wide entries such as a sync
	CreatedAt time.Time `json:"createdAt"`
}
