// persistence/gorm_postgresql.go
package persistence

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/priyankabothsa/priyanka-tic-tac-toe/models"
)

// GormPostgreSQL is the GORM-backed score store.
type GormPostgreSQL struct {
	db *gorm.DB
}

// NewGormPostgreSQL opens a pooled PostgreSQL connection and migrates the
// score tables.
func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&models.GormPlayerScore{}, &models.GormMatchRecord{}); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

// SaveMatch stores one started game.
func (p *GormPostgreSQL) SaveMatch(record *models.MatchRecord) error {
	row := models.GormMatchRecord{
		RoomID:  record.RoomID,
		Players: record.Players,
	}
	return p.db.Create(&row).Error
}

// IncrementScore bumps one counter for the named player, creating the row
// on first sight.
func (p *GormPostgreSQL) IncrementScore(name string, counter string) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		var score models.GormPlayerScore
		result := tx.Where("name = ?", name).First(&score)

		if result.Error == gorm.ErrRecordNotFound {
			score = models.GormPlayerScore{
				Name:     name,
				Counters: map[string]int{counter: 1},
			}
			return tx.Create(&score).Error
		} else if result.Error != nil {
			return result.Error
		}

		if score.Counters == nil {
			score.Counters = make(map[string]int)
		}
		score.Counters[counter]++
		return tx.Save(&score).Error
	})
}

// IncrementMatchRestarts bumps the restart count on the latest match for
// the room.
func (p *GormPostgreSQL) IncrementMatchRestarts(roomID string) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		var record models.GormMatchRecord
		err := tx.Where("room_id = ?", roomID).Order("created_at DESC").First(&record).Error
		if err == gorm.ErrRecordNotFound {
			return ErrRecordNotFound
		} else if err != nil {
			return err
		}

		return tx.Model(&record).Update("restarts", gorm.Expr("restarts + 1")).Error
	})
}

// GetScore loads the counters for a player.
func (p *GormPostgreSQL) GetScore(name string) (*models.PlayerScore, error) {
	var score models.GormPlayerScore
	if err := p.db.Where("name = ?", name).First(&score).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	return &models.PlayerScore{Name: score.Name, Counters: score.Counters}, nil
}

// Close closes the underlying connection pool.
func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
