package presence

import (
	"sort"
	"sync"

	"github.com/isdelr/todoshare-be/internal/models"
)

// AccessChecker answers whether a user may read a list.
type AccessChecker interface {
	HasReadAccess(userID, listID string) bool
}

type connState struct {
	identity models.Identity
	authed   bool
	rooms    map[string]struct{}
}

// Registry tracks live realtime connections, the identity each one resolved
// to, and which list rooms each one has joined.
//
// Room membership is checked against list access only when joining. A grant
// revoked later does not evict the connection from the room.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*connState
	rooms map[string]map[string]struct{} // list id -> connection ids
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]*connState),
		rooms: make(map[string]map[string]struct{}),
	}
}

// Connect records a new, unauthenticated connection.
func (r *Registry) Connect(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[connID]; ok {
		return
	}
	r.conns[connID] = &connState{rooms: make(map[string]struct{})}
}

// Authenticate binds an identity to connID. Re-authenticating as a different
// user drops the rooms joined under the previous identity. It returns false
// for unknown connections.
func (r *Registry) Authenticate(connID string, identity models.Identity) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[connID]
	if !ok {
		return false
	}
	if c.authed && c.identity.UserID != identity.UserID {
		r.leaveAllLocked(connID, c)
	}
	c.identity = identity
	c.authed = true
	return true
}

// Identity returns the identity bound to connID, if any.
func (r *Registry) Identity(connID string) (models.Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[connID]
	if !ok || !c.authed {
		return models.Identity{}, false
	}
	return c.identity, true
}

// Join adds connID to the room of listID when the connection is authenticated
// and its user can read the list. It reports whether the connection is in the
// room afterwards.
func (r *Registry) Join(connID, listID string, access AccessChecker) bool {
	identity, ok := r.Identity(connID)
	if !ok || listID == "" {
		return false
	}
	if !access.HasReadAccess(identity.UserID, listID) {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[connID]
	// The identity may have changed or the connection closed meanwhile.
	if !ok || !c.authed || c.identity.UserID != identity.UserID {
		return false
	}
	c.rooms[listID] = struct{}{}
	if r.rooms[listID] == nil {
		r.rooms[listID] = make(map[string]struct{})
	}
	r.rooms[listID][connID] = struct{}{}
	return true
}

// Leave removes connID from the room of listID. Leaving a room the connection
// never joined is a no-op.
func (r *Registry) Leave(connID, listID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[connID]
	if !ok {
		return
	}
	delete(c.rooms, listID)
	r.removeMemberLocked(listID, connID)
}

// Disconnect forgets connID along with its identity and rooms.
func (r *Registry) Disconnect(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[connID]
	if !ok {
		return
	}
	r.leaveAllLocked(connID, c)
	delete(r.conns, connID)
}

// ConnectionsOf returns every connection authenticated as userID, sorted.
func (r *Registry) ConnectionsOf(userID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []string
	for id, c := range r.conns {
		if c.authed && c.identity.UserID == userID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// RoomMembers returns the connections joined to listID, sorted.
func (r *Registry) RoomMembers(listID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.rooms[listID]))
	for id := range r.rooms[listID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Rooms returns the list ids connID has joined, sorted.
func (r *Registry) Rooms(connID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[connID]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(c.rooms))
	for id := range c.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count returns the number of live connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

func (r *Registry) leaveAllLocked(connID string, c *connState) {
	for listID := range c.rooms {
		r.removeMemberLocked(listID, connID)
	}
	c.rooms = make(map[string]struct{})
}

func (r *Registry) removeMemberLocked(listID, connID string) {
	members, ok := r.rooms[listID]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(r.rooms, listID)
	}
}
