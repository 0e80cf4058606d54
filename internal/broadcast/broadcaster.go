package broadcast

import (
	"github.com/isdelr/todoshare-be/internal/metrics"
	"github.com/isdelr/todoshare-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

// Publisher accepts mutation events for delivery.
type Publisher interface {
	Publish(evt Event)
}

// Presence is the read side of the presence registry.
type Presence interface {
	ConnectionsOf(userID string) []string
	RoomMembers(listID string) []string
}

// Sender queues a frame on a live connection. It returns false when the
// connection is gone or cannot take more frames.
type Sender interface {
	Send(connID string, frame []byte) bool
}

// Broadcaster resolves an event's audience against live presence at publish
// time and hands the frame to each connection at most once. Delivery is fire
// and forget.
type Broadcaster struct {
	presence Presence
	sender   Sender
}

// NewBroadcaster creates a new Broadcaster.
func NewBroadcaster(presence Presence, sender Sender) *Broadcaster {
	return &Broadcaster{presence: presence, sender: sender}
}

// Publish delivers evt to its audience.
func (b *Broadcaster) Publish(evt Event) {
	targets := b.Resolve(evt.Audience)
	if len(targets) == 0 {
		return
	}

	frame, err := websocket.Encode(evt.Action, evt.Payload)
	if err != nil {
		log.Error().Err(err).Str("action", evt.Action).Msg("Failed to encode realtime event")
		return
	}

	delivered := 0
	for _, connID := range targets {
		if b.sender.Send(connID, frame) {
			delivered++
			metrics.EventsDelivered.WithLabelValues(evt.Action).Inc()
		} else {
			metrics.EventsDropped.WithLabelValues(evt.Action).Inc()
		}
	}
	log.Debug().Str("action", evt.Action).Int("audience", len(targets)).Int("delivered", delivered).Msg("Published realtime event")
}

// Resolve returns the distinct connections in audience, users first and then
// rooms, in a stable order.
func (b *Broadcaster) Resolve(audience Audience) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(ids []string) {
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	for _, userID := range audience.Users {
		add(b.presence.ConnectionsOf(userID))
	}
	for _, listID := range audience.Rooms {
		add(b.presence.RoomMembers(listID))
	}
	return out
}
