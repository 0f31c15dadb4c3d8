// persistence/interface.go
package persistence

import (
	"fmt"

	"github.com/priyankabothsa/priyanka-tic-tac-toe/models"
)

// Database is the score-counter store the relay core calls best-effort.
// Room and game state never go through here for recovery purposes; the
// store only accumulates match records and per-player counters.
type Database interface {
	SaveMatch(record *models.MatchRecord) error
	IncrementScore(name string, counter string) error
	IncrementMatchRestarts(roomID string) error
	GetScore(name string) (*models.PlayerScore, error)
	Close() error
}

var (
	ErrRecordNotFound = fmt.Errorf("record not found")
)
