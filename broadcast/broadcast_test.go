package broadcast

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/priyankabothsa/priyanka-tic-tac-toe/network"
	"github.com/priyankabothsa/priyanka-tic-tac-toe/room"
	"github.com/priyankabothsa/priyanka-tic-tac-toe/session"
)

// RecordingConnection captures every event sent through it.
type RecordingConnection struct {
	mutex  sync.Mutex
	events []string
}

func (c *RecordingConnection) Send(event string, data any) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *RecordingConnection) Close() error                            { return nil }
func (c *RecordingConnection) RemoteAddr() net.Addr                    { return &net.TCPAddr{} }
func (c *RecordingConnection) SetHeartbeat(interval time.Duration)     {}
func (c *RecordingConnection) ReadEnvelope() (*network.Envelope, error) { return nil, nil }

func (c *RecordingConnection) Events() []string {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	out := make([]string, len(c.events))
	copy(out, c.events)
	return out
}

func setup() (*RoomBroadcaster, *room.Manager, *session.Manager) {
	rooms := room.NewRoomManager()
	sessions := session.NewManager()
	return NewRoomBroadcaster(rooms, sessions), rooms, sessions
}

func addMember(t *testing.T, b room.Broadcaster, rooms *room.Manager, sessions *session.Manager, roomID, sessID string) (*session.Session, *RecordingConnection) {
	t.Helper()
	conn := &RecordingConnection{}
	sess := session.NewSession(sessID, conn)
	sessions.Add(sess)
	if status := rooms.GetOrCreate(roomID, b).Join(sess); status != room.JoinOK {
		t.Fatalf("Failed to seat session %s in room %s", sessID, roomID)
	}
	return sess, conn
}

func TestBroadcastToRoom(t *testing.T) {
	b, rooms, sessions := setup()
	_, conn1 := addMember(t, b, rooms, sessions, "r1", "s1")
	_, conn2 := addMember(t, b, rooms, sessions, "r1", "s2")

	if err := b.BroadcastToRoom("r1", "start-game", "start"); err != nil {
		t.Fatalf("BroadcastToRoom returned error: %v", err)
	}

	for _, conn := range []*RecordingConnection{conn1, conn2} {
		if events := conn.Events(); len(events) != 1 || events[0] != "start-game" {
			t.Errorf("Expected one start-game delivery, got %v", events)
		}
	}
}

func TestBroadcastToOthers_ExcludesSender(t *testing.T) {
	b, rooms, sessions := setup()
	sender, senderConn := addMember(t, b, rooms, sessions, "r1", "s1")
	_, peerConn := addMember(t, b, rooms, sessions, "r1", "s2")

	if err := b.BroadcastToOthers("r1", sender.GetID(), "receive-turn", 4); err != nil {
		t.Fatalf("BroadcastToOthers returned error: %v", err)
	}

	if events := senderConn.Events(); len(events) != 0 {
		t.Errorf("Sender should not receive its own relay, got %v", events)
	}
	if events := peerConn.Events(); len(events) != 1 || events[0] != "receive-turn" {
		t.Errorf("Peer should receive the relay, got %v", events)
	}
}

func TestBroadcastToOthers_AloneInRoom(t *testing.T) {
	b, rooms, sessions := setup()
	sender, senderConn := addMember(t, b, rooms, sessions, "r1", "s1")

	if err := b.BroadcastToOthers("r1", sender.GetID(), "receive-message", "hi"); err != nil {
		t.Fatalf("Relay with no recipients should not error, got %v", err)
	}
	if events := senderConn.Events(); len(events) != 0 {
		t.Errorf("Expected zero deliveries, got %v", events)
	}
}

func TestBroadcast_UnknownRoom(t *testing.T) {
	b, _, _ := setup()

	if err := b.BroadcastToRoom("nowhere", "start-game", "start"); err != nil {
		t.Errorf("Unknown room should mean zero recipients, not error %v", err)
	}
	if err := b.BroadcastToOthers("nowhere", "s1", "receive-turn", 4); err != nil {
		t.Errorf("Unknown room should mean zero recipients, not error %v", err)
	}
}

func TestBroadcastToAll(t *testing.T) {
	b, rooms, sessions := setup()
	_, conn1 := addMember(t, b, rooms, sessions, "r1", "s1")
	_, conn2 := addMember(t, b, rooms, sessions, "r2", "s2")

	if err := b.BroadcastToAll("receive-message", "hello"); err != nil {
		t.Fatalf("BroadcastToAll returned error: %v", err)
	}

	for _, conn := range []*RecordingConnection{conn1, conn2} {
		if events := conn.Events(); len(events) != 1 {
			t.Errorf("Expected one delivery per session, got %v", events)
		}
	}
}
