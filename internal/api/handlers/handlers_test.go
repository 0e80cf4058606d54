package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/isdelr/todoshare-be/internal/models"
	"github.com/isdelr/todoshare-be/internal/presence"
	"github.com/isdelr/todoshare-be/internal/services"
	ws "github.com/isdelr/todoshare-be/internal/websocket"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{services.ErrUnauthenticated, http.StatusUnauthorized},
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{fmt.Errorf("%w: write access required", services.ErrForbidden), http.StatusForbidden},
		{services.ErrUnknownUser, http.StatusNotFound},
		{fmt.Errorf("%w: text is required", services.ErrInvalidInput), http.StatusBadRequest},
		{services.ErrDuplicateIdentity, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestWriteError_HidesInternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("database on fire"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"http://localhost:5173"})
	req := func(origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}

	assert.True(t, check(req("")), "non-browser clients send no origin")
	assert.True(t, check(req("http://localhost:5173")))
	assert.False(t, check(req("http://evil.example")))
	assert.True(t, originChecker([]string{"*"})(req("http://evil.example")))
}

type fakeVerifier map[string]models.Identity

func (f fakeVerifier) Verify(token string) (models.Identity, bool) {
	id, ok := f[token]
	return id, ok
}

type fakeAccess map[string]bool // "user/list"

func (f fakeAccess) HasReadAccess(userID, listID string) bool {
	return f[userID+"/"+listID]
}

func newWSHandler(registry *presence.Registry) *WebSocketHandler {
	verifier := fakeVerifier{
		"alice-token": {UserID: "alice", Username: "alice"},
		"bob-token":   {UserID: "bob", Username: "bob"},
	}
	access := fakeAccess{"alice/l1": true, "bob/l2": true}
	return NewWebSocketHandler(nil, registry, verifier, access, nil)
}

func TestHandleMessage_ControlFrames(t *testing.T) {
	registry := presence.NewRegistry()
	h := newWSHandler(registry)
	client := ws.NewClient(nil, nil)
	registry.Connect(client.ID)

	// Joining before authenticating is ignored.
	h.handleMessage(client, []byte(`{"action":"join:list","payload":{"listId":"l1"}}`))
	assert.Empty(t, registry.RoomMembers("l1"))

	h.handleMessage(client, []byte(`{"action":"authenticate","payload":{"token":"bad"}}`))
	_, ok := registry.Identity(client.ID)
	assert.False(t, ok)

	h.handleMessage(client, []byte(`{"action":"authenticate","payload":{"token":"alice-token"}}`))
	identity, ok := registry.Identity(client.ID)
	assert.True(t, ok)
	assert.Equal(t, "alice", identity.UserID)

	h.handleMessage(client, []byte(`{"action":"join:list","payload":{"listId":"l2"}}`))
	assert.Empty(t, registry.RoomMembers("l2"), "no read access")

	h.handleMessage(client, []byte(`{"action":"join:list","payload":{"listId":"l1"}}`))
	assert.Equal(t, []string{client.ID}, registry.RoomMembers("l1"))

	// A failed re-authentication keeps the current identity and rooms.
	h.handleMessage(client, []byte(`{"action":"authenticate","payload":{"token":"expired"}}`))
	assert.Equal(t, []string{client.ID}, registry.RoomMembers("l1"))

	h.handleMessage(client, []byte(`{"action":"leave:list","payload":{"listId":"l1"}}`))
	assert.Empty(t, registry.RoomMembers("l1"))

	h.handleMessage(client, []byte(`{"action":"join:list","payload":{"listId":"l1"}}`))
	h.handleMessage(client, []byte(`{"action":"authenticate","payload":{"token":"bob-token"}}`))
	assert.Empty(t, registry.RoomMembers("l1"), "switching user drops rooms")
}

func TestHandleMessage_IgnoresGarbage(t *testing.T) {
	registry := presence.NewRegistry()
	h := newWSHandler(registry)
	client := ws.NewClient(nil, nil)
	registry.Connect(client.ID)

	for _, frame := range []string{
		`not json`,
		`{"action":"authenticate"}`,
		`{"action":"authenticate","payload":"alice-token"}`,
		`{"action":"todo:added","payload":{}}`,
	} {
		assert.NotPanics(t, func() { h.handleMessage(client, []byte(frame)) }, frame)
	}
	_, ok := registry.Identity(client.ID)
	assert.False(t, ok)
}
