package room

// Broadcaster defines the interface for delivering events to a room.
// This is defined here to break the import cycle between room and broadcast.
// Sender-excluding relay delivery stays on the broadcast package; rooms only
// ever address all of their occupants.
type Broadcaster interface {
	BroadcastToRoom(roomID string, event string, data any) error
}
