package rpc

import (
	"net"
	"net/rpc"

	"github.com/priyankabothsa/priyanka-tic-tac-toe/logger"
	"github.com/priyankabothsa/priyanka-tic-tac-toe/models"
	"github.com/priyankabothsa/priyanka-tic-tac-toe/room"
	"github.com/priyankabothsa/priyanka-tic-tac-toe/services"
	"github.com/priyankabothsa/priyanka-tic-tac-toe/session"
)

// Server manages the RPC listener for the admin/stats endpoint.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer creates a new RPC server.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// StatsService exposes runtime and score queries over net/rpc.
type StatsService struct {
	scores   *services.ScoreService
	rooms    *room.Manager
	sessions *session.Manager
}

func NewStatsService(scores *services.ScoreService, rooms *room.Manager, sessions *session.Manager) *StatsService {
	return &StatsService{scores: scores, rooms: rooms, sessions: sessions}
}

type GetScoreArgs struct {
	Name string
}

type GetScoreReply struct {
	Score *models.PlayerScore
}

func (ss *StatsService) GetScore(args *GetScoreArgs, reply *GetScoreReply) error {
	score, err := ss.scores.GetPlayerScore(args.Name)
	if err != nil {
		return err
	}
	reply.Score = score
	return nil
}

type ServerStatsArgs struct{}

type ServerStatsReply struct {
	Rooms       int
	Connections int
}

func (ss *StatsService) GetServerStats(args *ServerStatsArgs, reply *ServerStatsReply) error {
	reply.Rooms = ss.rooms.Count()
	reply.Connections = ss.sessions.Count()
	return nil
}
