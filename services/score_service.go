// services/score_service.go
package services

import (
	"time"

	"github.com/priyankabothsa/priyanka-tic-tac-toe/logger"
	"github.com/priyankabothsa/priyanka-tic-tac-toe/models"
	"github.com/priyankabothsa/priyanka-tic-tac-toe/persistence"
)

// ScoreService is the score-counter collaborator. The relay core calls it
// best-effort: a nil service or a failing store never blocks or fails a
// game, it only costs the record.
type ScoreService struct {
	db persistence.Database
}

func NewScoreService(db persistence.Database) *ScoreService {
	return &ScoreService{db: db}
}

// RecordGameStart stores a match record and bumps each player's game
// counter.
func (s *ScoreService) RecordGameStart(roomID string, players []string) {
	if s == nil || s.db == nil {
		return
	}

	record := &models.MatchRecord{
		RoomID:    roomID,
		Players:   players,
		StartedAt: time.Now(),
	}
	if err := s.db.SaveMatch(record); err != nil {
		logger.Log.Warnf("Failed to save match record for room %s: %v", roomID, err)
	}

	for _, name := range players {
		if name == "" {
			continue
		}
		if err := s.db.IncrementScore(name, models.CounterGames); err != nil {
			logger.Log.Warnf("Failed to bump game counter for %s: %v", name, err)
		}
	}
}

// RecordRestart bumps the restart count of the room's latest match and of
// each player's restart counter.
func (s *ScoreService) RecordRestart(roomID string, players []string) {
	if s == nil || s.db == nil {
		return
	}

	if err := s.db.IncrementMatchRestarts(roomID); err != nil && err != persistence.ErrRecordNotFound {
		logger.Log.Warnf("Failed to bump restart count for room %s: %v", roomID, err)
	}

	for _, name := range players {
		if name == "" {
			continue
		}
		if err := s.db.IncrementScore(name, models.CounterRestarts); err != nil {
			logger.Log.Warnf("Failed to bump restart counter for %s: %v", name, err)
		}
	}
}

// GetPlayerScore looks up the counters for a display name.
func (s *ScoreService) GetPlayerScore(name string) (*models.PlayerScore, error) {
	if s == nil || s.db == nil {
		return nil, persistence.ErrRecordNotFound
	}
	return s.db.GetScore(name)
}
