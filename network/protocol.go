package network

import "encoding/json"

// Client-originated events.
const (
	EventJoinRoom     = "join-room"
	EventCheckRoom    = "check-room"
	EventSendMessage  = "send-message"
	EventPassTurn     = "pass-turn"
	EventCheckRestart = "check-restart"
	EventRelayRestart = "relay-restart"
)

// Server-originated events.
const (
	EventReceiveMessage = "receive-message"
	EventReceiveTurn    = "receive-turn"
	EventStartGame      = "start-game"
	EventConfirmRestart = "confirm-restart"
	EventRestartGame    = "restart-game"
)

// Envelope is the wire frame for every event in both directions. Replies
// to a request reuse the request's event name.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}
