package handlers

import (
	"encoding/json"
	"net/http"
	"slices"

	"github.com/gorilla/websocket"
	"github.com/isdelr/todoshare-be/internal/auth"
	"github.com/isdelr/todoshare-be/internal/presence"
	ws "github.com/isdelr/todoshare-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler upgrades HTTP connections and applies the control frames
// clients send: authenticate, join:list and leave:list.
type WebSocketHandler struct {
	hub      *ws.Hub
	presence *presence.Registry
	verifier auth.Verifier
	access   presence.AccessChecker
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler. Browsers may connect
// from allowedOrigins; "*" allows any origin.
func NewWebSocketHandler(hub *ws.Hub, registry *presence.Registry, verifier auth.Verifier, access presence.AccessChecker, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		hub:      hub,
		presence: registry,
		verifier: verifier,
		access:   access,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		return slices.Contains(allowed, "*") || slices.Contains(allowed, origin)
	}
}

type tokenPayload struct {
	Token string `json:"token"`
}

type listPayload struct {
	ListID string `json:"listId"`
}

// Serve handles the WebSocket connection request.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	client := ws.NewClient(h.hub, conn)
	if !h.hub.Attach(client) {
		_ = conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump(h.handleMessage)
}

// handleMessage processes a frame received from a websocket client. The
// channel has no error replies: bad frames and refused joins are logged and
// dropped.
func (h *WebSocketHandler) handleMessage(client *ws.Client, data []byte) {
	msg, err := ws.Decode(data)
	if err != nil {
		log.Debug().Err(err).Str("conn_id", client.ID).Msg("Error decoding websocket message")
		return
	}

	switch msg.Action {
	case ws.ActionAuthenticate:
		var p tokenPayload
		if !decodePayload(client, msg, &p) {
			return
		}
		identity, ok := h.verifier.Verify(p.Token)
		if !ok {
			log.Debug().Str("conn_id", client.ID).Msg("Websocket authentication failed")
			return
		}
		if h.presence.Authenticate(client.ID, identity) {
			log.Info().Str("conn_id", client.ID).Str("user_id", identity.UserID).Msg("Websocket authenticated")
		}

	case ws.ActionJoinList:
		var p listPayload
		if !decodePayload(client, msg, &p) {
			return
		}
		if h.presence.Join(client.ID, p.ListID, h.access) {
			log.Debug().Str("conn_id", client.ID).Str("list_id", p.ListID).Msg("Joined list room")
		} else {
			log.Debug().Str("conn_id", client.ID).Str("list_id", p.ListID).Msg("Join refused")
		}

	case ws.ActionLeaveList:
		var p listPayload
		if !decodePayload(client, msg, &p) {
			return
		}
		h.presence.Leave(client.ID, p.ListID)
		log.Debug().Str("conn_id", client.ID).Str("list_id", p.ListID).Msg("Left list room")

	default:
		log.Debug().Str("conn_id", client.ID).Str("action", msg.Action).Msg("Unknown websocket action received")
	}
}

func decodePayload(client *ws.Client, msg ws.Message, v interface{}) bool {
	if len(msg.Payload) == 0 {
		log.Debug().Str("conn_id", client.ID).Str("action", msg.Action).Msg("Missing websocket payload")
		return false
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		log.Debug().Err(err).Str("conn_id", client.ID).Str("action", msg.Action).Msg("Invalid websocket payload")
		return false
	}
	return true
}
