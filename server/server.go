package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/rpc"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/priyankabothsa/priyanka-tic-tac-toe/broadcast"
	"github.com/priyankabothsa/priyanka-tic-tac-toe/config"
	"github.com/priyankabothsa/priyanka-tic-tac-toe/logger"
	"github.com/priyankabothsa/priyanka-tic-tac-toe/models"
	"github.com/priyankabothsa/priyanka-tic-tac-toe/monitor"
	"github.com/priyankabothsa/priyanka-tic-tac-toe/network"
	"github.com/priyankabothsa/priyanka-tic-tac-toe/persistence"
	"github.com/priyankabothsa/priyanka-tic-tac-toe/room"
	gamerpc "github.com/priyankabothsa/priyanka-tic-tac-toe/rpc"
	"github.com/priyankabothsa/priyanka-tic-tac-toe/services"
	"github.com/priyankabothsa/priyanka-tic-tac-toe/session"
	"github.com/priyankabothsa/priyanka-tic-tac-toe/timer"
)

// GameServer is the connection gateway. It upgrades websockets, gives every
// connection a session, and dispatches inbound events against the room
// registry. Each connection is served by its own goroutine; all shared room
// state sits behind the registry's per-room locking.
type GameServer struct {
	addr           string
	upgrader       websocket.Upgrader
	roomManager    *room.Manager
	sessionManager *session.Manager
	broadcaster    broadcast.Broadcaster
	scoreService   *services.ScoreService
	rpcServer      *gamerpc.Server
	monitor        *monitor.Monitor
	timers         *timer.TimerManager
	restartTTL     time.Duration
	shutdownChan   chan struct{}
}

// NewGameServer wires the registry, broadcaster and collaborators together.
// An empty RPC address skips the stats endpoint; a nil database skips score
// recording.
func NewGameServer(cfg *config.Config, db persistence.Database) *GameServer {
	s := &GameServer{
		addr:           cfg.Server.HTTPAddress,
		roomManager:    room.NewRoomManager(),
		sessionManager: session.NewManager(),
		restartTTL:     cfg.Game.RestartTTL,
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // allow all origins
			},
		},
	}

	s.broadcaster = broadcast.NewRoomBroadcaster(s.roomManager, s.sessionManager)

	if db != nil {
		s.scoreService = services.NewScoreService(db)
	}

	if s.restartTTL > 0 {
		s.timers = timer.NewTimerManager()
	}

	if cfg.Server.RPCAddress != "" {
		rpcServer, err := gamerpc.NewServer(cfg.Server.RPCAddress)
		if err != nil {
			logger.Log.Fatalf("Failed to create RPC server: %v", err)
		}
		s.rpcServer = rpcServer

		statsService := gamerpc.NewStatsService(s.scoreService, s.roomManager, s.sessionManager)
		rpc.Register(statsService)
	}

	return s
}

// SetMonitor attaches metrics collection. Optional, main wires it.
func (s *GameServer) SetMonitor(m *monitor.Monitor) {
	s.monitor = m
}

func (s *GameServer) Start() error {
	if s.rpcServer != nil {
		go s.rpcServer.Start()
	}

	http.HandleFunc("/ws", s.handleWebSocket)
	logger.Log.Infof("Game server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, nil)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	if s.rpcServer != nil {
		s.rpcServer.Stop()
	}
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(network.NewWSConnection(conn))
}

func (s *GameServer) handleConnection(conn network.Connection) {
	sess := session.NewSession(uuid.New().String(), conn)
	s.sessionManager.Add(sess)
	if s.monitor != nil {
		s.monitor.IncOnlineConnections()
	}

	logger.Log.Infof("New connection from %s, session ID: %s", conn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", conn.RemoteAddr(), sess.GetID())
		s.leaveCurrentRoom(sess)
		s.sessionManager.Remove(sess.GetID())
		if s.monitor != nil {
			s.monitor.DecOnlineConnections()
		}
		conn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			env, err := conn.ReadEnvelope()
			if err != nil {
				return
			}
			s.handleEvent(sess, env)
		}
	}
}

// handleEvent is the single typed dispatch point for the event protocol.
func (s *GameServer) handleEvent(sess *session.Session, env *network.Envelope) {
	start := time.Now()
	if s.monitor != nil {
		s.monitor.IncEventsReceived()
		defer func() {
			s.monitor.ObserveEventLatency(time.Since(start))
		}()
	}

	switch env.Event {
	case network.EventJoinRoom:
		s.handleJoinRoom(sess, env.Data)
	case network.EventCheckRoom:
		s.handleCheckRoom(sess, env.Data)
	case network.EventSendMessage:
		s.handleSendMessage(sess, env.Data)
	case network.EventPassTurn:
		s.handlePassTurn(sess, env.Data)
	case network.EventCheckRestart:
		s.handleCheckRestart(sess, env.Data)
	case network.EventRelayRestart:
		s.handleRelayRestart(sess, env.Data)
	default:
		logger.Log.Infof("Unknown event %q from session %s", env.Event, sess.GetID())
	}
}

// handleJoinRoom admits the session if the room has a free seat and replies
// with the admission status. The room springs into existence on first
// reference.
func (s *GameServer) handleJoinRoom(sess *session.Session, data json.RawMessage) {
	roomID := decodeRoomID(data)
	s.leaveOtherRoom(sess, roomID)

	r := s.roomManager.GetOrCreate(roomID, s.broadcaster)
	status := r.Join(sess)
	if s.monitor != nil {
		s.monitor.SetActiveRooms(s.roomManager.Count())
	}

	logger.Log.Infof("Session %s join-room %s: %s", sess.GetID(), roomID, status)
	sess.Send(network.EventJoinRoom, models.JoinReply{Status: string(status)})
}

// handleCheckRoom announces the caller's display name, (re-)admits it and
// reports its role. The second admission starts the game. A caller bounced
// off a full room gets no reply and triggers no announcement.
func (s *GameServer) handleCheckRoom(sess *session.Session, data json.RawMessage) {
	var req models.CheckRoomRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return
	}
	sess.SetName(req.Username)
	s.leaveOtherRoom(sess, req.Room)

	r := s.roomManager.GetOrCreate(req.Room, s.broadcaster)
	role, status := r.Admit(sess)
	if s.monitor != nil {
		s.monitor.SetActiveRooms(s.roomManager.Count())
	}
	if status != room.JoinOK {
		logger.Log.Infof("Session %s check-room %s rejected: room full", sess.GetID(), req.Room)
		return
	}

	r.Broadcast(network.EventReceiveMessage, models.ServerChat{
		User:    "server",
		Message: fmt.Sprintf("A wild %s has appeared!", req.Username),
	})

	switch role {
	case room.RoleX:
		sess.Send(network.EventCheckRoom, models.RoleReply{Player: string(role)})
		r.Broadcast(network.EventReceiveMessage, models.ServerChat{
			User:    "server",
			Message: "Send the room ID to a friend and have them join your room to begin playing.",
		})
	case room.RoleO:
		sess.Send(network.EventCheckRoom, models.RoleReply{Player: string(role)})
		s.startGame(r)
	}
}

// startGame flips the room into play and tells everyone.
func (s *GameServer) startGame(r *room.Room) {
	if err := r.StartGame(); err != nil {
		logger.Log.Errorf("Room %s failed to start: %v", r.GetID(), err)
		return
	}

	r.Broadcast(network.EventStartGame, "start")
	r.Broadcast(network.EventReceiveMessage, models.ServerChat{
		User:    "server",
		Message: "Let the game begin!",
	})

	if s.monitor != nil {
		s.monitor.IncGamesStarted()
	}
	s.scoreService.RecordGameStart(r.GetID(), occupantNames(r))
}

// handleSendMessage relays an opaque chat payload to everyone else in the
// room. With no one else there, it delivers to no one.
func (s *GameServer) handleSendMessage(sess *session.Session, data json.RawMessage) {
	var req models.ChatRelay
	if err := json.Unmarshal(data, &req); err != nil {
		return
	}
	s.broadcaster.BroadcastToOthers(req.Room, sess.GetID(), network.EventReceiveMessage, req.Message)
}

// handlePassTurn relays an opaque turn payload to everyone else in the room.
func (s *GameServer) handlePassTurn(sess *session.Session, data json.RawMessage) {
	var req models.TurnRelay
	if err := json.Unmarshal(data, &req); err != nil {
		return
	}
	s.broadcaster.BroadcastToOthers(req.Room, sess.GetID(), network.EventReceiveTurn, req.TileClicked)
}

// handleCheckRestart proposes a restart to the other occupant. Without a
// restart TTL the proposal allocates no state; with one, the room carries
// an open proposal that expires after the deadline.
func (s *GameServer) handleCheckRestart(sess *session.Session, data json.RawMessage) {
	roomID := decodeRoomID(data)
	s.broadcaster.BroadcastToOthers(roomID, sess.GetID(), network.EventConfirmRestart, roomID)

	if s.timers != nil {
		if r, exists := s.roomManager.Get(roomID); exists {
			r.OpenRestartProposal()
			s.timers.AddTimer(s.restartTTL, 0, func() {
				if r, exists := s.roomManager.Get(roomID); exists {
					r.ClearRestartVotes()
				}
			})
		}
	}
}

// handleRelayRestart answers a restart proposal. One affirmative answer
// resets the game for everyone; a negative answer changes nothing.
func (s *GameServer) handleRelayRestart(sess *session.Session, data json.RawMessage) {
	var req models.RestartAnswer
	if err := json.Unmarshal(data, &req); err != nil {
		return
	}
	if !req.Confirmed {
		return
	}

	r, exists := s.roomManager.Get(req.Room)
	if !exists {
		return
	}
	// With a bounded proposal wait configured, a confirmation only counts
	// while a proposal is open; a late answer is dropped.
	if s.timers != nil && !r.RestartProposalOpen() {
		return
	}
	if !r.VoteRestart(sess.GetID(), req.Confirmed) {
		return
	}

	logger.Log.Infof("Room %s restart confirmed by session %s", req.Room, sess.GetID())
	r.Broadcast(network.EventRestartGame, "restart")

	if s.monitor != nil {
		s.monitor.IncGamesRestarted()
	}
	s.scoreService.RecordRestart(r.GetID(), occupantNames(r))
}

// leaveCurrentRoom is the implicit leave on disconnect.
func (s *GameServer) leaveCurrentRoom(sess *session.Session) {
	roomID := sess.RoomID
	if roomID == "" {
		return
	}

	if r, exists := s.roomManager.Get(roomID); exists {
		if empty := r.Leave(sess.GetID()); empty {
			s.roomManager.Reclaim(roomID)
		}
	}
	sess.RoomID = ""
	if s.monitor != nil {
		s.monitor.SetActiveRooms(s.roomManager.Count())
	}
}

// leaveOtherRoom frees the session's old seat when it targets a different
// room; a session occupies at most one room at a time.
func (s *GameServer) leaveOtherRoom(sess *session.Session, roomID string) {
	if sess.RoomID != "" && sess.RoomID != roomID {
		s.leaveCurrentRoom(sess)
	}
}

func occupantNames(r *room.Room) []string {
	occupants := r.Occupants()
	names := make([]string, 0, len(occupants))
	for _, o := range occupants {
		names = append(names, o.Name())
	}
	return names
}

// decodeRoomID accepts a JSON string or number as a room identifier.
// Anything else degrades to the empty ID, which is just another room.
func decodeRoomID(data json.RawMessage) string {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		return id
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		return num.String()
	}
	return ""
}
