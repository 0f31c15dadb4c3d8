package state

import (
	"github.com/priyankabothsa/priyanka-tic-tac-toe/logger"
)

// Room lifecycle state identifiers.
const (
	StateEmpty   = "empty"
	StateWaiting = "waiting"
	StateReady   = "ready"
	StatePlaying = "playing"
)

// EmptyState is the phase of a room that has been referenced but has no
// members yet. Rooms spring into existence in this state.
type EmptyState struct {
	RoomStateBase
}

func NewEmptyState(room RoomContext) *EmptyState {
	return &EmptyState{RoomStateBase{ID: StateEmpty, Room: room}}
}

// WaitingState is the phase with a single member waiting for an opponent.
type WaitingState struct {
	RoomStateBase
}

func NewWaitingState(room RoomContext) *WaitingState {
	return &WaitingState{RoomStateBase{ID: StateWaiting, Room: room}}
}

func (s *WaitingState) OnEnter() {
	logger.Log.Infof("Room %s waiting for a second player", s.Room.GetID())
}

// ReadyState is the phase where both seats are filled but the game has not
// been announced yet.
type ReadyState struct {
	RoomStateBase
}

func NewReadyState(room RoomContext) *ReadyState {
	return &ReadyState{RoomStateBase{ID: StateReady, Room: room}}
}

// PlayingState is the in-progress phase. Re-entering it after a confirmed
// restart is a valid self transition.
type PlayingState struct {
	RoomStateBase
}

func NewPlayingState(room RoomContext) *PlayingState {
	return &PlayingState{RoomStateBase{ID: StatePlaying, Room: room}}
}

func (s *PlayingState) OnEnter() {
	logger.Log.Infof("Room %s game in progress with %d players", s.Room.GetID(), s.Room.MemberCount())
}
