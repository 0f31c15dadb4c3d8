// room/room.go
package room

import (
	"sync"
	"time"

	"github.com/priyankabothsa/priyanka-tic-tac-toe/session"
	"github.com/priyankabothsa/priyanka-tic-tac-toe/state"
)

// Capacity is the fixed number of seats in a room.
const Capacity = 2

// Role is the turn-order label derived from join order. The first member of
// a room plays X, the second plays O. It is never stored on the member, only
// computed from the member list, so it cannot drift out of sync.
type Role string

const (
	RoleX    Role = "X"
	RoleO    Role = "O"
	RoleNone Role = ""
)

// JoinStatus is the admission outcome reported to a joining connection.
type JoinStatus string

const (
	JoinOK   JoinStatus = "ok"
	JoinFull JoinStatus = "full"
)

// Room is a capacity-two session identified by a caller-chosen ID. All
// membership and restart-vote mutation is serialized by memberMutex; state
// transitions happen outside it so broadcasts triggered by a transition can
// read the member list.
type Room struct {
	ID           string
	StateMachine state.StateMachine
	CreatedAt    time.Time

	broadcaster  Broadcaster
	members      []*session.Session // join order, index 0 is X
	restartVotes map[string]struct{}
	restartOpen  bool
	memberMutex  sync.RWMutex
}

// NewRoom creates a room in the empty state. Rooms are created lazily by the
// manager on first reference, never by an explicit client operation.
func NewRoom(id string, broadcaster Broadcaster) *Room {
	room := &Room{
		ID:           id,
		CreatedAt:    time.Now(),
		broadcaster:  broadcaster,
		restartVotes: make(map[string]struct{}),
	}

	empty := state.NewEmptyState(room)
	room.StateMachine = state.NewBaseStateMachine(empty)

	// Forward transitions are guarded by the member count; backward
	// transitions (members leaving) are unrestricted.
	waiting := state.NewWaitingState(room)
	ready := state.NewReadyState(room)
	playing := state.NewPlayingState(room)
	room.StateMachine.AddTransition(empty, waiting, func() bool { return room.MemberCount() == 1 })
	room.StateMachine.AddTransition(waiting, ready, func() bool { return room.MemberCount() == Capacity })
	room.StateMachine.AddTransition(ready, playing, func() bool { return room.MemberCount() == Capacity })
	room.StateMachine.AddTransition(ready, waiting, func() bool { return room.MemberCount() == 1 })

	return room
}

// --- state.RoomContext ---

func (r *Room) GetID() string {
	return r.ID
}

func (r *Room) MemberCount() int {
	r.memberMutex.RLock()
	defer r.memberMutex.RUnlock()
	return len(r.members)
}

// --- membership ---

// Join admits the session if a seat is free. Re-joining a room the session
// already occupies succeeds without a second seat. The capacity check and
// the append happen under one lock, so concurrent joins for the same room
// cannot race past the limit.
func (r *Room) Join(s *session.Session) JoinStatus {
	r.memberMutex.Lock()
	if r.indexOf(s.ID) >= 0 {
		r.memberMutex.Unlock()
		return JoinOK
	}
	if len(r.members) >= Capacity {
		r.memberMutex.Unlock()
		return JoinFull
	}
	r.members = append(r.members, s)
	s.RoomID = r.ID
	count := len(r.members)
	r.memberMutex.Unlock()

	switch count {
	case 1:
		r.StateMachine.ChangeState(state.NewWaitingState(r))
	case Capacity:
		r.StateMachine.ChangeState(state.NewReadyState(r))
	}
	return JoinOK
}

// Admit is Join plus the role the caller holds after (re-)admission.
func (r *Room) Admit(s *session.Session) (Role, JoinStatus) {
	if status := r.Join(s); status != JoinOK {
		return RoleNone, status
	}
	return r.RoleOf(s.ID), JoinOK
}

// RoleOf derives the member's role from its position in join order.
func (r *Room) RoleOf(sessionID string) Role {
	r.memberMutex.RLock()
	defer r.memberMutex.RUnlock()

	switch r.indexOf(sessionID) {
	case 0:
		return RoleX
	case 1:
		return RoleO
	default:
		return RoleNone
	}
}

// Leave removes the session and its pending restart vote. The remaining
// member keeps its role. Returns true when the room is now empty.
func (r *Room) Leave(sessionID string) bool {
	r.memberMutex.Lock()
	defer r.memberMutex.Unlock()

	i := r.indexOf(sessionID)
	if i < 0 {
		return len(r.members) == 0
	}
	r.members[i].RoomID = ""
	r.members = append(r.members[:i], r.members[i+1:]...)
	delete(r.restartVotes, sessionID)
	return len(r.members) == 0
}

// Occupants returns a snapshot of the member list in join order.
func (r *Room) Occupants() []*session.Session {
	r.memberMutex.RLock()
	defer r.memberMutex.RUnlock()

	occupants := make([]*session.Session, len(r.members))
	copy(occupants, r.members)
	return occupants
}

// indexOf must be called with memberMutex held.
func (r *Room) indexOf(sessionID string) int {
	for i, m := range r.members {
		if m.ID == sessionID {
			return i
		}
	}
	return -1
}

// --- game lifecycle ---

// StartGame moves the room into the playing state and clears any restart
// votes left over from a previous game.
func (r *Room) StartGame() error {
	r.memberMutex.Lock()
	r.restartVotes = make(map[string]struct{})
	r.memberMutex.Unlock()

	return r.StateMachine.ChangeState(state.NewPlayingState(r))
}

// VoteRestart records a restart confirmation. A single affirmative answer
// from an occupant is enough: it returns true exactly once, resets the
// vote set and closes any open proposal, signalling the caller to
// broadcast the restart. A negative answer records nothing and leaves the
// room as it was.
func (r *Room) VoteRestart(sessionID string, confirmed bool) bool {
	if !confirmed {
		return false
	}

	r.memberMutex.Lock()
	defer r.memberMutex.Unlock()

	if r.indexOf(sessionID) < 0 {
		return false
	}
	r.restartVotes[sessionID] = struct{}{}
	// A single confirmation completes the handshake.
	if len(r.restartVotes) >= 1 {
		r.restartVotes = make(map[string]struct{})
		r.restartOpen = false
		return true
	}
	return false
}

// OpenRestartProposal marks the room as having a restart proposal awaiting
// an answer. Only used when a bounded proposal wait is configured; without
// one, proposals allocate no state at all.
func (r *Room) OpenRestartProposal() {
	r.memberMutex.Lock()
	defer r.memberMutex.Unlock()
	r.restartOpen = true
}

// RestartProposalOpen reports whether a proposal is still awaiting an
// answer.
func (r *Room) RestartProposalOpen() bool {
	r.memberMutex.RLock()
	defer r.memberMutex.RUnlock()
	return r.restartOpen
}

// ClearRestartVotes drops pending confirmations and closes any open
// proposal, used by the restart-proposal expiry.
func (r *Room) ClearRestartVotes() {
	r.memberMutex.Lock()
	defer r.memberMutex.Unlock()
	r.restartVotes = make(map[string]struct{})
	r.restartOpen = false
}

// Broadcast sends an event to every occupant.
func (r *Room) Broadcast(event string, data any) error {
	return r.broadcaster.BroadcastToRoom(r.ID, event, data)
}

// --- Room registry ---

// Manager is the process-wide room registry. Rooms are created on first
// reference and reclaimed once empty.
type Manager struct {
	rooms map[string]*Room
	mutex sync.RWMutex
}

// NewRoomManager creates an empty registry.
func NewRoomManager() *Manager {
	return &Manager{
		rooms: make(map[string]*Room),
	}
}

// GetOrCreate returns the room for the ID, creating it if this is the first
// reference. A malformed or unknown ID is just a fresh empty room.
func (m *Manager) GetOrCreate(id string, broadcaster Broadcaster) *Room {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if room, exists := m.rooms[id]; exists {
		return room
	}
	room := NewRoom(id, broadcaster)
	m.rooms[id] = room
	return room
}

// Get looks up a room without creating it.
func (m *Manager) Get(id string) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	room, exists := m.rooms[id]
	return room, exists
}

// Reclaim removes the room if it is still empty.
func (m *Manager) Reclaim(id string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if room, exists := m.rooms[id]; exists && room.MemberCount() == 0 {
		delete(m.rooms, id)
	}
}

// Count reports the number of live rooms.
func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}
