package websocket

import "encoding/json"

// Actions a client may send.
const (
	ActionAuthenticate = "authenticate"
	ActionJoinList     = "join:list"
	ActionLeaveList    = "leave:list"
)

// Message defines the structure for websocket messages in both directions.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Encode builds a frame for action carrying payload.
func Encode(action string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Action: action, Payload: raw})
}

// Decode parses an inbound frame.
func Decode(data []byte) (Message, error) {
	var msg Message
	err := json.Unmarshal(data, &msg)
	return msg, err
}
