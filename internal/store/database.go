package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Database wraps the PostgreSQL connection shared by the repositories.
type Database struct {
	conn *sql.DB
	dsn  string
}

// NewDatabase opens a connection pool and verifies it with a ping.
func NewDatabase(dsn string) (*Database, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{
		conn: db,
		dsn:  dsn,
	}, nil
}

// Close closes the database connection
func (db *Database) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// DB returns the underlying *sql.DB for queries
func (db *Database) DB() *sql.DB {
	return db.conn
}

// migration pairs a tracked version name with its DDL.
type migration struct {
	version string
	ddl     string
}

const countingStatsColumns = `
		minutes INTEGER NOT NULL DEFAULT 0,
		points INTEGER NOT NULL DEFAULT 0,
		offense_reb INTEGER NOT NULL DEFAULT 0,
		defense_reb INTEGER NOT NULL DEFAULT 0,
		rebounds INTEGER NOT NULL DEFAULT 0,
		assists INTEGER NOT NULL DEFAULT 0,
		steals INTEGER NOT NULL DEFAULT 0,
		blocks INTEGER NOT NULL DEFAULT 0,
		turnovers INTEGER NOT NULL DEFAULT 0,
		fouls INTEGER NOT NULL DEFAULT 0,
		fg_made INTEGER NOT NULL DEFAULT 0,
		fg_attempt INTEGER NOT NULL DEFAULT 0,
		fg_percent DOUBLE PRECISION NOT NULL DEFAULT 0,
		fg3_made INTEGER NOT NULL DEFAULT 0,
		fg3_attempt INTEGER NOT NULL DEFAULT 0,
		fg3_percent DOUBLE PRECISION NOT NULL DEFAULT 0,
		ft_made INTEGER NOT NULL DEFAULT 0,
		ft_attempt INTEGER NOT NULL DEFAULT 0,
		ft_percent DOUBLE PRECISION NOT NULL DEFAULT 0`

var migrations = []migration{
	{"001_create_teams", `
	CREATE TABLE IF NOT EXISTS teams (
		team_id INTEGER NOT NULL,
		season VARCHAR(16) NOT NULL,
		team_abb VARCHAR(8) NOT NULL,
		team_conf VARCHAR(16) NOT NULL DEFAULT '',
		team_div VARCHAR(32) NOT NULL DEFAULT '',
		team_city VARCHAR(64) NOT NULL DEFAULT '',
		team_name VARCHAR(64) NOT NULL DEFAULT '',
		wins INTEGER NOT NULL DEFAULT 0,
		losses INTEGER NOT NULL DEFAULT 0,
		nba_debut VARCHAR(16) NOT NULL DEFAULT '',
		max_year VARCHAR(16) NOT NULL DEFAULT '',
		PRIMARY KEY (team_id, season)
	)`},
	{"002_create_players", `
	CREATE TABLE IF NOT EXISTS players (
		player_id INTEGER NOT NULL,
		season VARCHAR(16) NOT NULL,
		team_id INTEGER NOT NULL,
		first_name VARCHAR(64) NOT NULL DEFAULT '',
		last_name VARCHAR(64) NOT NULL DEFAULT '',
		birth_date VARCHAR(32) NOT NULL DEFAULT '',
		draft_year VARCHAR(16) NOT NULL DEFAULT '',
		draft_round VARCHAR(16) NOT NULL DEFAULT '',
		draft_number VARCHAR(16) NOT NULL DEFAULT '',
		position VARCHAR(32) NOT NULL DEFAULT '',
		jersey INTEGER NOT NULL DEFAULT 0,
		height VARCHAR(8) NOT NULL DEFAULT '',
		weight INTEGER NOT NULL DEFAULT 0,
		school VARCHAR(64) NOT NULL DEFAULT '',
		country VARCHAR(64) NOT NULL DEFAULT '',
		season_exp INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (player_id, season),
		FOREIGN KEY (team_id, season) REFERENCES teams (team_id, season) ON DELETE CASCADE
	)`},
	{"003_create_games", `
	CREATE TABLE IF NOT EXISTS games (
		game_id VARCHAR(16) PRIMARY KEY,
		season VARCHAR(16) NOT NULL,
		game_date VARCHAR(32) NOT NULL DEFAULT '',
		home_team INTEGER NOT NULL,
		away_team INTEGER NOT NULL,
		broadcaster VARCHAR(32) NOT NULL DEFAULT '',
		inactive_players INTEGER[] NOT NULL DEFAULT '{}',
		dnp_players JSONB NOT NULL DEFAULT '{}',
		FOREIGN KEY (home_team, season) REFERENCES teams (team_id, season) ON DELETE CASCADE,
		FOREIGN KEY (away_team, season) REFERENCES teams (team_id, season) ON DELETE CASCADE
	)`},
	{"004_create_standings", `
	CREATE TABLE IF NOT EXISTS standings (
		team INTEGER NOT NULL,
		season VARCHAR(16) NOT NULL,
		conference VARCHAR(16) NOT NULL,
		wins INTEGER NOT NULL DEFAULT 0,
		losses INTEGER NOT NULL DEFAULT 0,
		home_record VARCHAR(16) NOT NULL DEFAULT '',
		road_record VARCHAR(16) NOT NULL DEFAULT '',
		win_percent DOUBLE PRECISION NOT NULL DEFAULT 0,
		PRIMARY KEY (team, season),
		FOREIGN KEY (team, season) REFERENCES teams (team_id, season) ON DELETE CASCADE
	)`},
	{"005_create_team_game_logs", `
	CREATE TABLE IF NOT EXISTS team_game_logs (
		game VARCHAR(16) NOT NULL REFERENCES games (game_id) ON DELETE CASCADE,
		team INTEGER NOT NULL,
		season VARCHAR(16) NOT NULL,
		game_date VARCHAR(32) NOT NULL DEFAULT '',
		matchup VARCHAR(32) NOT NULL DEFAULT '',
		result VARCHAR(4) NOT NULL DEFAULT '',
		curr_wins INTEGER NOT NULL DEFAULT 0,
		curr_losses INTEGER NOT NULL DEFAULT 0,` + countingStatsColumns + `,
		pts_q1 INTEGER NOT NULL DEFAULT 0,
		pts_q2 INTEGER NOT NULL DEFAULT 0,
		pts_q3 INTEGER NOT NULL DEFAULT 0,
		pts_q4 INTEGER NOT NULL DEFAULT 0,
		pts_ot1 INTEGER NOT NULL DEFAULT 0,
		pts_ot2 INTEGER NOT NULL DEFAULT 0,
		pts_ot3 INTEGER NOT NULL DEFAULT 0,
		pts_ot4 INTEGER NOT NULL DEFAULT 0,
		pts_ot5 INTEGER NOT NULL DEFAULT 0,
		pts_ot6 INTEGER NOT NULL DEFAULT 0,
		pts_ot7 INTEGER NOT NULL DEFAULT 0,
		pts_ot8 INTEGER NOT NULL DEFAULT 0,
		pts_ot9 INTEGER NOT NULL DEFAULT 0,
		pts_ot10 INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (game, team),
		FOREIGN KEY (team, season) REFERENCES teams (team_id, season) ON DELETE CASCADE
	)`},
	{"006_create_player_game_logs", `
	CREATE TABLE IF NOT EXISTS player_game_logs (
		game VARCHAR(16) NOT NULL,
		player INTEGER NOT NULL,
		curr_team INTEGER NOT NULL,
		season VARCHAR(16) NOT NULL,
		game_date VARCHAR(32) NOT NULL DEFAULT '',
		matchup VARCHAR(32) NOT NULL DEFAULT '',
		result VARCHAR(4) NOT NULL DEFAULT '',
		player_order INTEGER NOT NULL DEFAULT 0,` + countingStatsColumns + `,
		plus_minus INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (game, player),
		FOREIGN KEY (game, curr_team) REFERENCES team_game_logs (game, team) ON DELETE CASCADE,
		FOREIGN KEY (player, season) REFERENCES players (player_id, season) ON DELETE CASCADE
	)`},
	{"007_create_team_season_stats", `
	CREATE TABLE IF NOT EXISTS team_season_stats (
		team INTEGER NOT NULL,
		season VARCHAR(16) NOT NULL,
		season_type VARCHAR(16) NOT NULL,
		wins INTEGER NOT NULL DEFAULT 0,
		losses INTEGER NOT NULL DEFAULT 0,
		win_percent DOUBLE PRECISION NOT NULL DEFAULT 0,` + countingStatsColumns + `,
		PRIMARY KEY (team, season, season_type),
		FOREIGN KEY (team, season) REFERENCES teams (team_id, season) ON DELETE CASCADE
	)`},
	{"008_create_player_season_stats", `
	CREATE TABLE IF NOT EXISTS player_season_stats (
		player INTEGER NOT NULL,
		season VARCHAR(16) NOT NULL,
		stat_season VARCHAR(16) NOT NULL,
		season_type VARCHAR(16) NOT NULL,
		curr_team INTEGER NOT NULL DEFAULT 0,
		games_played INTEGER NOT NULL DEFAULT 0,
		games_started INTEGER NOT NULL DEFAULT 0,` + countingStatsColumns + `,
		PRIMARY KEY (player, season, stat_season, season_type),
		FOREIGN KEY (player, season) REFERENCES players (player_id, season) ON DELETE CASCADE
	)`},
	{"009_create_player_career_stats", `
	CREATE TABLE IF NOT EXISTS player_career_stats (
		player INTEGER NOT NULL,
		season VARCHAR(16) NOT NULL,
		season_type VARCHAR(16) NOT NULL,
		games_played INTEGER NOT NULL DEFAULT 0,
		games_started INTEGER NOT NULL DEFAULT 0,` + countingStatsColumns + `,
		PRIMARY KEY (player, season, season_type),
		FOREIGN KEY (player, season) REFERENCES players (player_id, season) ON DELETE CASCADE
	)`},
	{"010_create_indexes", `
	CREATE INDEX IF NOT EXISTS idx_players_team ON players (team_id, season);
	CREATE INDEX IF NOT EXISTS idx_games_date ON games (season, game_date);
	CREATE INDEX IF NOT EXISTS idx_team_game_logs_team ON team_game_logs (team, season);
	CREATE INDEX IF NOT EXISTS idx_player_game_logs_player ON player_game_logs (player, season)`},
}

// RunMigrations applies schema migrations in order, tracking applied
// versions so reruns are no-ops.
func (db *Database) RunMigrations() error {
	log.Println("Running database migrations...")

	if err := db.createMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, m := range migrations {
		if err := db.runMigration(m); err != nil {
			return fmt.Errorf("failed to run migration %s: %w", m.version, err)
		}
	}

	log.Println("✓ All migrations completed successfully")

	return nil
}

// createMigrationsTable creates a table to track which migrations have been run
func (db *Database) createMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	_, err := db.conn.Exec(query)
	return err
}

// runMigration applies a single migration if it hasn't been applied yet.
func (db *Database) runMigration(m migration) error {
	var exists bool
	err := db.conn.QueryRow("SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)", m.version).Scan(&exists)
	if err != nil {
		return err
	}

	if exists {
		log.Printf("  ⊘ Skipping %s (already applied)", m.version)
		return nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.ddl); err != nil {
		return fmt.Errorf("failed to execute migration: %w", err)
	}

	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES ($1)", m.version); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	log.Printf("  ✓ Applied %s", m.version)
	return nil
}

// HealthCheck performs a health check on the database
func (db *Database) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	return db.conn.PingContext(ctx)
}
