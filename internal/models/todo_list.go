package models

import (
	"encoding/json"
	"time"
)

// Permission is the access level granted to a grantee.
type Permission string

const (
	PermissionRead  Permission = "read"
	PermissionWrite Permission = "write"
)

// Valid reports whether p is "read" or "write".
func (p Permission) Valid() bool {
	return p == PermissionRead || p == PermissionWrite
}

// TodoList is a list as seen by one caller. Todos are joined in at read time
// and the ownership/sharing flags describe the caller's relation to the list;
// none of them are stored on the list itself.
type TodoList struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Todos      []Todo     `json:"todos"`
	CreatedAt  time.Time  `json:"createdAt"`
	IsOwner    bool       `json:"isOwner,omitempty"`
	IsShared   bool       `json:"isShared,omitempty"`
	Permission Permission `json:"permission,omitempty"`
}

// ListSubmission is one list of a bulk sync as the client sent it.
type ListSubmission struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	CreatedAt time.Time        `json:"createdAt"`
	Todos     []TodoSubmission `json:"todos"`
}

// TodoSubmission is one item of a bulk sync. Patch carries only the fields
// present in the request, so an existing item keeps whatever was left out.
type TodoSubmission struct {
	ID    string
	Patch TodoPatch
}

// SubmitTodo wraps a complete todo as a submission that sets every field.
func SubmitTodo(t Todo) TodoSubmission {
	return TodoSubmission{
		ID:    t.ID,
		Patch: TodoPatch{Text: &t.Text, Status: &t.Status, Priority: &t.Priority},
	}
}

// UnmarshalJSON reads the id and decodes the rest with ParseTodoPatch.
func (s *TodoSubmission) UnmarshalJSON(data []byte) error {
	var head struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	patch, err := ParseTodoPatch(data)
	if err != nil {
		return err
	}
	*s = TodoSubmission{ID: head.ID, Patch: patch}
	return nil
}

// ShareGrant gives a non-owner access to a list.
type ShareGrant struct {
	ListID     string     `json:"listId"`
	GranteeID  string     `json:"granteeId"`
	Permission Permission `json:"permission"`
}

// Collaborator is a grant joined with the grantee's public profile.
type Collaborator struct {
	UserID     string     `json:"userId"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	Permission Permission `json:"permission"`
}

// DeletedList records who could read a list right before it was removed.
type DeletedList struct {
	ListID     string
	Name       string
	OwnerID    string
	GranteeIDs []string
}

// Readers returns the owner followed by every grantee.
func (d DeletedList) Readers() []string {
	return append([]string{d.OwnerID}, d.GranteeIDs...)
}
