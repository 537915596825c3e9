package main

import (
	"database/sql"
	"log"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// AccountRow represents a registered account
type AccountRow struct {
	ID        int64
	Username  string
	PassHash  string
	CreatedAt time.Time
}

// StatsRow represents persistent per-account stats
type StatsRow struct {
	PlayerID int64
	Kills    int
	Deaths   int
	Wins     int
	Losses   int
	Playtime float64 // seconds
}

// OpenDB opens (or creates) the SQLite database
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates tables if they don't exist
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		pass_hash TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS stats (
		player_id INTEGER PRIMARY KEY REFERENCES accounts(id),
		kills INTEGER NOT NULL DEFAULT 0,
		deaths INTEGER NOT NULL DEFAULT 0,
		wins INTEGER NOT NULL DEFAULT 0,
		losses INTEGER NOT NULL DEFAULT 0,
		playtime REAL NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS match_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		code TEXT NOT NULL,
		winner_id TEXT NOT NULL DEFAULT '',
		duration REAL NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS match_result_players (
		result_id INTEGER NOT NULL REFERENCES match_results(id),
		player_id TEXT NOT NULL,
		username TEXT NOT NULL,
		kills INTEGER NOT NULL DEFAULT 0,
		deaths INTEGER NOT NULL DEFAULT 0,
		winner INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (result_id, player_id)
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_accounts_username ON accounts(username);
	CREATE INDEX IF NOT EXISTS idx_match_results_code ON match_results(code);
	`
	_, err := db.conn.Exec(schema)
	if err != nil {
		log.Printf("DB migration error: %v", err)
	}
	return err
}

// GetSetting returns a settings value, or "" if absent
func (db *DB) GetSetting(key string) string {
	var value string
	err := db.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err != nil {
		return ""
	}
	return value
}

// SetSetting upserts a settings value
func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}

// CreateAccount creates a new account and its stats row (returns account ID)
func (db *DB) CreateAccount(username, passHash string) (int64, error) {
	res, err := db.conn.Exec(
		"INSERT INTO accounts (username, pass_hash) VALUES (?, ?)",
		username, passHash,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	_, err = db.conn.Exec("INSERT INTO stats (player_id) VALUES (?)", id)
	return id, err
}

// GetAccountByUsername returns an account by username, or nil
func (db *DB) GetAccountByUsername(username string) (*AccountRow, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, pass_hash, created_at FROM accounts WHERE username = ?",
		username,
	)
	a := &AccountRow{}
	err := row.Scan(&a.ID, &a.Username, &a.PassHash, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

// UsernameExists checks if a username is taken
func (db *DB) UsernameExists(username string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM accounts WHERE username = ?", username).Scan(&count)
	return count > 0, err
}

// GetStats returns persistent stats for an account
func (db *DB) GetStats(playerID int64) (*StatsRow, error) {
	row := db.conn.QueryRow(
		"SELECT player_id, kills, deaths, wins, losses, playtime FROM stats WHERE player_id = ?",
		playerID,
	)
	s := &StatsRow{}
	err := row.Scan(&s.PlayerID, &s.Kills, &s.Deaths, &s.Wins, &s.Losses, &s.Playtime)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

// RecordMatchResult persists a finished match and its standings, and folds
// kills/deaths/wins into the stats of any registered account whose username
// appears in the results.
func (db *DB) RecordMatchResult(code, winnerID string, duration float64, results []PlayerResult) error {
	res, err := db.conn.Exec(
		"INSERT INTO match_results (code, winner_id, duration) VALUES (?, ?, ?)",
		code, winnerID, duration,
	)
	if err != nil {
		return err
	}
	resultID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for _, r := range results {
		winner := 0
		winInc, lossInc := 0, 1
		if r.Winner {
			winner = 1
			winInc, lossInc = 1, 0
		}
		if _, err := db.conn.Exec(
			`INSERT INTO match_result_players (result_id, player_id, username, kills, deaths, winner)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			resultID, r.PlayerID, r.Username, r.Kills, r.Deaths, winner,
		); err != nil {
			return err
		}
		if _, err := db.conn.Exec(
			`UPDATE stats SET
				kills = kills + ?,
				deaths = deaths + ?,
				wins = wins + ?,
				losses = losses + ?,
				playtime = playtime + ?
			 WHERE player_id = (SELECT id FROM accounts WHERE username = ?)`,
			r.Kills, r.Deaths, winInc, lossInc, duration, r.Username,
		); err != nil {
			return err
		}
	}
	return nil
}

// GetMatchHistory returns recent recorded matches for a player id
func (db *DB) GetMatchHistory(playerID string, limit int) ([]PlayerResult, error) {
	rows, err := db.conn.Query(`
		SELECT mrp.player_id, mrp.username, mrp.kills, mrp.deaths, mrp.winner
		FROM match_result_players mrp
		JOIN match_results mr ON mr.id = mrp.result_id
		WHERE mrp.player_id = ?
		ORDER BY mr.created_at DESC
		LIMIT ?`,
		playerID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []PlayerResult
	for rows.Next() {
		var r PlayerResult
		var winner int
		if err := rows.Scan(&r.PlayerID, &r.Username, &r.Kills, &r.Deaths, &winner); err != nil {
			return nil, err
		}
		r.Winner = winner == 1
		result = append(result, r)
	}
	return result, rows.Err()
}
