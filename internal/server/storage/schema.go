package storage

import "time"

// GameRecord is a row in the games table
type GameRecord struct {
	GameID       string    `db:"game_id"`
	Mode         string    `db:"mode"` // "1vs1" or "1vsbot"
	StartTimeUTC time.Time `db:"start_time_utc"`
}

// MoveRecord is a row in the moves table
type MoveRecord struct {
	MoveID      int64     `db:"move_id"`
	GameID      string    `db:"game_id"`
	MoveNumber  int       `db:"move_number"` // 1-based ply
	MoveUCI     string    `db:"move_uci"`
	PlayerColor string    `db:"player_color"`
	MoveTimeUTC time.Time `db:"move_time_utc"`
}

const Schema = `
CREATE TABLE IF NOT EXISTS games (
	game_id TEXT PRIMARY KEY,
	mode TEXT NOT NULL DEFAULT '1vs1' CHECK(mode IN ('1vs1', '1vsbot')),
	start_time_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS moves (
	move_id INTEGER PRIMARY KEY AUTOINCREMENT,
	game_id TEXT NOT NULL,
	move_number INTEGER NOT NULL,
	move_uci TEXT NOT NULL,
	player_color TEXT NOT NULL CHECK(player_color IN ('white', 'black')),
	move_time_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (game_id) REFERENCES games(game_id) ON DELETE CASCADE,
	UNIQUE(game_id, move_number)
);

CREATE INDEX IF NOT EXISTS idx_moves_game_id ON moves(game_id);
`
