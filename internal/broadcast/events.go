package broadcast

import "github.com/isdelr/todoshare-be/internal/models"

// Server-to-client actions.
const (
	ActionListCreated  = "list:created"
	ActionListDeleted  = "list:deleted"
	ActionTodoAdded    = "todo:added"
	ActionTodoToggled  = "todo:toggled"
	ActionTodoDeleted  = "todo:deleted"
	ActionListsUpdated = "lists:updated"
	ActionListShared   = "list:shared"
)

// Audience names who should receive an event: every connection authenticated
// as one of Users plus every connection joined to one of Rooms.
type Audience struct {
	Users []string
	Rooms []string
}

// Event is a mutation notification together with its audience.
type Event struct {
	Action   string
	Payload  interface{}
	Audience Audience
}

type listIDPayload struct {
	ListID string `json:"listId"`
}

type todoPayload struct {
	ListID string      `json:"listId"`
	Todo   models.Todo `json:"todo"`
}

type todoIDPayload struct {
	ListID string `json:"listId"`
	TodoID string `json:"todoId"`
}

type listsPayload struct {
	Lists []models.TodoList `json:"lists"`
}

type listPayload struct {
	List sharedListView `json:"list"`
}

// sharedListView always carries isOwner, even when false.
type sharedListView struct {
	models.TodoList
	IsOwner bool `json:"isOwner"`
}

// ListCreated goes to the owner's connections.
func ListCreated(list models.TodoList, ownerID string) Event {
	return Event{
		Action:   ActionListCreated,
		Payload:  list,
		Audience: Audience{Users: []string{ownerID}},
	}
}

// ListDeleted goes to everyone who could read the list right before it was
// deleted and to everyone still joined to its room.
func ListDeleted(deleted models.DeletedList) Event {
	return Event{
		Action:   ActionListDeleted,
		Payload:  listIDPayload{ListID: deleted.ListID},
		Audience: Audience{Users: deleted.Readers(), Rooms: []string{deleted.ListID}},
	}
}

// TodoAdded goes to the list room only.
func TodoAdded(listID string, todo models.Todo) Event {
	return roomEvent(ActionTodoAdded, listID, todoPayload{ListID: listID, Todo: todo})
}

// TodoToggled goes to the list room only.
func TodoToggled(listID string, todo models.Todo) Event {
	return roomEvent(ActionTodoToggled, listID, todoPayload{ListID: listID, Todo: todo})
}

// TodoUpdated reuses the todo:added action; clients upsert by todo id.
func TodoUpdated(listID string, todo models.Todo) Event {
	return TodoAdded(listID, todo)
}

// TodoDeleted goes to the list room only.
func TodoDeleted(listID, todoID string) Event {
	return roomEvent(ActionTodoDeleted, listID, todoIDPayload{ListID: listID, TodoID: todoID})
}

// ListsUpdated goes to the requester's connections after a bulk replace.
func ListsUpdated(lists []models.TodoList, requesterID string) Event {
	return Event{
		Action:   ActionListsUpdated,
		Payload:  listsPayload{Lists: lists},
		Audience: Audience{Users: []string{requesterID}},
	}
}

// ListShared goes to the grantee's connections. The list is presented from
// the grantee's side.
func ListShared(list models.TodoList, granteeID string, permission models.Permission) Event {
	list.IsOwner = false
	list.IsShared = true
	list.Permission = permission
	return Event{
		Action:   ActionListShared,
		Payload:  listPayload{List: sharedListView{TodoList: list}},
		Audience: Audience{Users: []string{granteeID}},
	}
}

func roomEvent(action, listID string, payload interface{}) Event {
	return Event{Action: action, Payload: payload, Audience: Audience{Rooms: []string{listID}}}
}
