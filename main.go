package main

import (
	"github.com/priyankabothsa/priyanka-tic-tac-toe/config"
	"github.com/priyankabothsa/priyanka-tic-tac-toe/logger"
	"github.com/priyankabothsa/priyanka-tic-tac-toe/monitor"
	"github.com/priyankabothsa/priyanka-tic-tac-toe/persistence"
	"github.com/priyankabothsa/priyanka-tic-tac-toe/server"
)

func main() {
	// Initialize logger
	logger.Init()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize score store
	db, err := persistence.NewGormPostgreSQL(
		cfg.Database.Postgres.Host,
		cfg.Database.Postgres.Port,
		cfg.Database.Postgres.User,
		cfg.Database.Postgres.Password,
		cfg.Database.Postgres.DBName,
	)
	if err != nil {
		logger.Log.Fatalf("Failed to connect to database: %v", err)
	}
	logger.Log.Info("Database connection successful.")

	// Initialize game server
	gameServer := server.NewGameServer(cfg, db)

	// Metrics endpoint
	if cfg.Server.MetricsAddress != "" {
		mon := monitor.NewMonitor("tictactoe")
		mon.StartServer(cfg.Server.MetricsAddress)
		gameServer.SetMonitor(mon)
	}

	// Start server
	logger.Log.Infof("Starting game server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}
