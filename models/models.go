// models/models.go
package models

import (
	"encoding/json"
	"time"
)

// Wire payloads for the client-facing event protocol. Relayed fields stay
// json.RawMessage: the server forwards them without looking inside.

// JoinReply acknowledges a join-room request.
type JoinReply struct {
	Status string `json:"status"`
}

// CheckRoomRequest announces a display name and asks for a seat and role.
type CheckRoomRequest struct {
	Room     string `json:"room"`
	Username string `json:"username"`
}

// RoleReply answers check-room with the caller's turn-order role.
type RoleReply struct {
	Player string `json:"player"`
}

// ChatRelay is an inbound send-message payload.
type ChatRelay struct {
	Room    string          `json:"room"`
	Message json.RawMessage `json:"message"`
}

// ServerChat is a server-originated receive-message payload.
type ServerChat struct {
	User    string `json:"user"`
	Message string `json:"message"`
}

// TurnRelay is an inbound pass-turn payload.
type TurnRelay struct {
	Room        string          `json:"room"`
	TileClicked json.RawMessage `json:"tileClicked"`
}

// RestartAnswer is an inbound relay-restart payload.
type RestartAnswer struct {
	Room      string `json:"room"`
	Confirmed bool   `json:"confirmed"`
}

// MatchRecord captures one started game for the score store.
type MatchRecord struct {
	RoomID    string    `json:"room_id"`
	Players   []string  `json:"players"`
	StartedAt time.Time `json:"started_at"`
}

// PlayerScore holds the per-display-name counters kept by the score store.
type PlayerScore struct {
	Name     string         `json:"name"`
	Counters map[string]int `json:"counters"`
}

// Score counter names.
const (
	CounterGames    = "games"
	CounterRestarts = "restarts"
)
