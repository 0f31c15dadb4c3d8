// broadcast/broadcast.go
package broadcast

import (
	"github.com/priyankabothsa/priyanka-tic-tac-toe/room"
	"github.com/priyankabothsa/priyanka-tic-tac-toe/session"
)

// Broadcaster delivers events to rooms. Delivery is fire and forget: send
// errors on individual connections are skipped, and a room ID that maps to
// no live room means zero recipients, not an error.
type Broadcaster interface {
	BroadcastToRoom(roomID string, event string, data any) error
	BroadcastToOthers(roomID string, senderID string, event string, data any) error
	BroadcastToAll(event string, data any) error
}

// RoomBroadcaster fans events out over the room registry.
type RoomBroadcaster struct {
	roomManager    *room.Manager
	sessionManager *session.Manager
}

func NewRoomBroadcaster(roomManager *room.Manager, sessionManager *session.Manager) *RoomBroadcaster {
	return &RoomBroadcaster{
		roomManager:    roomManager,
		sessionManager: sessionManager,
	}
}

func (b *RoomBroadcaster) BroadcastToRoom(roomID string, event string, data any) error {
	return b.send(roomID, "", event, data)
}

// BroadcastToOthers excludes the sender, which is how relayed turns and chat
// reach only the opposing player.
func (b *RoomBroadcaster) BroadcastToOthers(roomID string, senderID string, event string, data any) error {
	return b.send(roomID, senderID, event, data)
}

func (b *RoomBroadcaster) send(roomID, excludeID, event string, data any) error {
	r, exists := b.roomManager.Get(roomID)
	if !exists {
		return nil
	}

	for _, s := range r.Occupants() {
		if s.ID == excludeID {
			continue
		}
		if err := s.Send(event, data); err != nil {
			// Dead connections are cleaned up by the gateway's
			// disconnect path, not here.
			continue
		}
	}
	return nil
}

func (b *RoomBroadcaster) BroadcastToAll(event string, data any) error {
	for _, s := range b.sessionManager.All() {
		if err := s.Send(event, data); err != nil {
			continue
		}
	}
	return nil
}
