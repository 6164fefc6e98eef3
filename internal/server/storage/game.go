package storage

import (
	"database/sql"
	"fmt"
)

// RecordNewGame queues a game row, replacing one started under the same id
func (s *Store) RecordNewGame(record GameRecord) {
	s.enqueue("game", func(tx *sql.Tx) error {
		_, err := tx.Exec(
			`INSERT INTO games (game_id, mode, start_time_utc) VALUES (?, ?, ?)
			ON CONFLICT(game_id) DO UPDATE SET mode = excluded.mode, start_time_utc = excluded.start_time_utc`,
			record.GameID, record.Mode, record.StartTimeUTC,
		)
		return err
	})
}

// RecordMove queues a move row
func (s *Store) RecordMove(record MoveRecord) {
	s.enqueue("move", func(tx *sql.Tx) error {
		_, err := tx.Exec(
			`INSERT INTO moves (game_id, move_number, move_uci, player_color, move_time_utc)
			VALUES (?, ?, ?, ?, ?)`,
			record.GameID, record.MoveNumber, record.MoveUCI,
			record.PlayerColor, record.MoveTimeUTC,
		)
		return err
	})
}

// DeleteUndoneMoves queues removal of moves after afterMoveNumber; zero
// clears the game's moves, as on restart
func (s *Store) DeleteUndoneMoves(gameID string, afterMoveNumber int) {
	s.enqueue("undo", func(tx *sql.Tx) error {
		_, err := tx.Exec(`DELETE FROM moves WHERE game_id = ? AND move_number > ?`, gameID, afterMoveNumber)
		return err
	})
}

// QueryGames lists games, newest first. An empty or "*" id matches all.
func (s *Store) QueryGames(gameID string) ([]GameRecord, error) {
	query := `SELECT game_id, mode, start_time_utc FROM games`
	var args []any
	if gameID != "" && gameID != "*" {
		query += ` WHERE game_id = ?`
		args = append(args, gameID)
	}
	query += ` ORDER BY start_time_utc DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var games []GameRecord
	for rows.Next() {
		var g GameRecord
		if err := rows.Scan(&g.GameID, &g.Mode, &g.StartTimeUTC); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return games, nil
}

// QueryMoves returns a game's moves in play order
func (s *Store) QueryMoves(gameID string) ([]MoveRecord, error) {
	rows, err := s.db.Query(
		`SELECT move_id, game_id, move_number, move_uci, player_color, move_time_utc
		FROM moves WHERE game_id = ? ORDER BY move_number`, gameID)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var moves []MoveRecord
	for rows.Next() {
		var m MoveRecord
		if err := rows.Scan(&m.MoveID, &m.GameID, &m.MoveNumber, &m.MoveUCI, &m.PlayerColor, &m.MoveTimeUTC); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		moves = append(moves, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return moves, nil
}
