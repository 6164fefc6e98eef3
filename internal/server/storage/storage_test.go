package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "journal.db"), false, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := store.InitDB(); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func flush(t *testing.T, s *Store) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

func TestJournalRoundTrip(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()

	s.RecordNewGame(GameRecord{GameID: "g1", Mode: "1vsbot", StartTimeUTC: now})
	s.RecordMove(MoveRecord{GameID: "g1", MoveNumber: 1, MoveUCI: "e2e4", PlayerColor: "white", MoveTimeUTC: now})
	s.RecordMove(MoveRecord{GameID: "g1", MoveNumber: 2, MoveUCI: "e7e5", PlayerColor: "black", MoveTimeUTC: now})
	flush(t, s)

	games, err := s.QueryGames("*")
	if err != nil || len(games) != 1 || games[0].Mode != "1vsbot" {
		t.Fatalf("QueryGames = %+v, %v", games, err)
	}
	moves, err := s.QueryMoves("g1")
	if err != nil || len(moves) != 2 || moves[0].MoveUCI != "e2e4" || moves[1].PlayerColor != "black" {
		t.Fatalf("QueryMoves = %+v, %v", moves, err)
	}

	s.DeleteUndoneMoves("g1", 1)
	flush(t, s)
	if moves, _ := s.QueryMoves("g1"); len(moves) != 1 {
		t.Fatalf("undo left %d moves", len(moves))
	}

	s.DeleteUndoneMoves("g1", 0)
	flush(t, s)
	if moves, _ := s.QueryMoves("g1"); len(moves) != 0 {
		t.Fatalf("restart left %d moves", len(moves))
	}
}

func TestFailedWriteDegrades(t *testing.T) {
	s := newTestStore(t)

	// no such game: the foreign key rejects the move
	s.RecordMove(MoveRecord{GameID: "missing", MoveNumber: 1, MoveUCI: "e2e4", PlayerColor: "white"})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Flush(ctx); !errors.Is(err, ErrDegraded) {
		t.Fatalf("Flush = %v, want ErrDegraded", err)
	}

	if s.IsHealthy() {
		t.Fatalf("store should be degraded after a failed write")
	}
	s.RecordNewGame(GameRecord{GameID: "g2", Mode: "1vs1"})
	if games, _ := s.QueryGames("g2"); len(games) != 0 {
		t.Fatalf("write accepted while degraded")
	}
}

func TestFlushReturnsWhenWriteDegradesQueue(t *testing.T) {
	s := newTestStore(t)

	// queued while healthy, applied after the failing write
	s.RecordMove(MoveRecord{GameID: "missing", MoveNumber: 1, MoveUCI: "e2e4", PlayerColor: "white"})
	s.RecordNewGame(GameRecord{GameID: "g3", Mode: "1vs1"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	start := time.Now()
	err := s.Flush(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Flush waited for its context after degradation")
	}
	if !errors.Is(err, ErrDegraded) {
		t.Fatalf("Flush = %v, want ErrDegraded", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("Flush took %v", time.Since(start))
	}
	if games, _ := s.QueryGames("g3"); len(games) != 0 {
		t.Fatalf("write queued behind a failure was applied")
	}
}
