// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/priyankabothsa/priyanka-tic-tac-toe/models"
)

// PostgreSQL is a plain database/sql implementation of the score store,
// for deployments that prefer raw SQL over GORM.
type PostgreSQL struct {
	db *sql.DB
}

// NewPostgreSQL opens a pooled connection and creates the score tables.
func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

func initTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS player_scores (
            id SERIAL PRIMARY KEY,
            name VARCHAR(255) UNIQUE NOT NULL,
            counters JSONB NOT NULL DEFAULT '{}',
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS match_records (
            id SERIAL PRIMARY KEY,
            room_id VARCHAR(255) NOT NULL,
            players JSONB NOT NULL,
            restarts INT NOT NULL DEFAULT 0,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE INDEX IF NOT EXISTS idx_player_scores_name ON player_scores(name);
        CREATE INDEX IF NOT EXISTS idx_match_records_room_id ON match_records(room_id);
        CREATE INDEX IF NOT EXISTS idx_match_records_created_at ON match_records(created_at);
    `)

	return err
}

// SaveMatch stores one started game.
func (p *PostgreSQL) SaveMatch(record *models.MatchRecord) error {
	players, err := json.Marshal(record.Players)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `INSERT INTO match_records (room_id, players) VALUES ($1, $2)`
	_, err = p.db.ExecContext(ctx, query, record.RoomID, players)
	return err
}

// IncrementScore bumps one counter for the named player with a jsonb upsert.
func (p *PostgreSQL) IncrementScore(name string, counter string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
        INSERT INTO player_scores (name, counters)
        VALUES ($1, jsonb_build_object($2::text, 1))
        ON CONFLICT (name)
        DO UPDATE SET counters = jsonb_set(
            player_scores.counters,
            ARRAY[$2::text],
            to_jsonb(COALESCE((player_scores.counters->>$2)::int, 0) + 1)
        ), updated_at = CURRENT_TIMESTAMP
    `

	_, err := p.db.ExecContext(ctx, query, name, counter)
	return err
}

// IncrementMatchRestarts bumps the restart count on the latest match for
// the room.
func (p *PostgreSQL) IncrementMatchRestarts(roomID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
        UPDATE match_records SET restarts = restarts + 1
        WHERE id = (
            SELECT id FROM match_records
            WHERE room_id = $1
            ORDER BY created_at DESC
            LIMIT 1
        )
    `

	result, err := p.db.ExecContext(ctx, query, roomID)
	if err != nil {
		return err
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// GetScore loads the counters for a player.
func (p *PostgreSQL) GetScore(name string) (*models.PlayerScore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var data []byte
	query := `SELECT counters FROM player_scores WHERE name = $1`
	err := p.db.QueryRowContext(ctx, query, name).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	score := &models.PlayerScore{Name: name}
	if err := json.Unmarshal(data, &score.Counters); err != nil {
		return nil, err
	}
	return score, nil
}

// Close closes the database connection.
func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
