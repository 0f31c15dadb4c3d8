package session

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/priyankabothsa/priyanka-tic-tac-toe/network"
)

// MockConnection is a test double for the network.Connection interface.
type MockConnection struct{}

func (m *MockConnection) Send(event string, data any) error       { return nil }
func (m *MockConnection) Close() error                            { return nil }
func (m *MockConnection) RemoteAddr() net.Addr                    { return &net.TCPAddr{} }
func (m *MockConnection) SetHeartbeat(interval time.Duration)     {}
func (m *MockConnection) ReadEnvelope() (*network.Envelope, error) { return nil, nil }

func TestNewManager(t *testing.T) {
	manager := NewManager()
	if manager == nil {
		t.Fatal("NewManager should not return nil")
	}
	if manager.sessions == nil {
		t.Fatal("NewManager should initialize the sessions map")
	}
}

func TestManager_Add_Get_Remove(t *testing.T) {
	manager := NewManager()
	sessionID := "test_session_1"
	sess := NewSession(sessionID, &MockConnection{})

	// Test Add
	manager.Add(sess)
	if manager.Count() != 1 {
		t.Fatalf("Expected session count to be 1, got %d", manager.Count())
	}

	// Test Get
	retrievedSess, exists := manager.Get(sessionID)
	if !exists {
		t.Fatal("Get should find the added session")
	}
	if retrievedSess != sess {
		t.Fatal("Get should return the same session instance")
	}

	// Test Remove
	manager.Remove(sessionID)
	if manager.Count() != 0 {
		t.Fatalf("Expected session count to be 0 after removal, got %d", manager.Count())
	}

	_, exists = manager.Get(sessionID)
	if exists {
		t.Fatal("Get should not find the removed session")
	}
}

func TestManager_All(t *testing.T) {
	manager := NewManager()
	manager.Add(NewSession("session1", &MockConnection{}))
	manager.Add(NewSession("session2", &MockConnection{}))

	all := manager.All()
	if len(all) != 2 {
		t.Errorf("Expected 2 sessions, got %d", len(all))
	}
}

func TestManager_GetByName(t *testing.T) {
	manager := NewManager()

	sess1 := NewSession("session1", &MockConnection{})
	sess1.SetName("alice")

	sess2 := NewSession("session2", &MockConnection{})
	sess2.SetName("bob")

	sess3 := NewSession("session3", &MockConnection{})
	sess3.SetName("alice")

	manager.Add(sess1)
	manager.Add(sess2)
	manager.Add(sess3)

	aliceSessions := manager.GetByName("alice")
	if len(aliceSessions) != 2 {
		t.Errorf("Expected 2 sessions for alice, got %d", len(aliceSessions))
	}

	bobSessions := manager.GetByName("bob")
	if len(bobSessions) != 1 {
		t.Errorf("Expected 1 session for bob, got %d", len(bobSessions))
	}

	carolSessions := manager.GetByName("carol")
	if len(carolSessions) != 0 {
		t.Errorf("Expected 0 sessions for carol, got %d", len(carolSessions))
	}
}

// Relayed events are delivered from the peers' reader goroutines, so Send
// gets called concurrently with the session's own handler.
func TestSession_ConcurrentSend(t *testing.T) {
	sess := NewSession("test_session", &MockConnection{})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if err := sess.Send("receive-message", "hello"); err != nil {
					t.Errorf("Send returned error: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if sess.LastActive.IsZero() {
		t.Error("Send should stamp the session's activity time")
	}
}

func TestSession_Name(t *testing.T) {
	sess := NewSession("test_session", &MockConnection{})

	if sess.Name() != "" {
		t.Errorf("Expected empty name before SetName, got %q", sess.Name())
	}

	sess.SetName("alice")
	if sess.Name() != "alice" {
		t.Errorf("Expected name %q, got %q", "alice", sess.Name())
	}
}
