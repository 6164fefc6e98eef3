// Package service keeps the games served by the reference server and
// journals their moves.
package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"chessboard/internal/core"
	"chessboard/internal/server/game"
	"chessboard/internal/server/storage"
	"chessboard/internal/wire"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	ModeHuman = "1vs1"
	ModeBot   = "1vsbot"

	MaxGames = 1000

	engineTimeout = 5 * time.Second
)

// Engine suggests moves for the bot
type Engine interface {
	BestMove(ctx context.Context, moves []string) (string, error)
}

type entry struct {
	mu   sync.Mutex
	game *game.Game
	mode string
}

// Service coordinates game state and storage
type Service struct {
	games  map[string]*entry
	mu     sync.RWMutex
	store  *storage.Store
	engine Engine
	logger *zap.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New creates a service; store may be nil to disable the journal
func New(store *storage.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		games:  make(map[string]*entry),
		store:  store,
		logger: logger.Named("service"),
		rng:    rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
	}
}

// SetSeed makes bot replies reproducible
func (s *Service) SetSeed(seed uint64) {
	s.rngMu.Lock()
	s.rng = rand.New(rand.NewPCG(seed, seed))
	s.rngMu.Unlock()
}

// SetEngine makes the bot ask e first; the built-in picker is the fallback
func (s *Service) SetEngine(e Engine) {
	s.engine = e
}

// GetStorageHealth returns the storage component status
func (s *Service) GetStorageHealth() string {
	if s.store == nil {
		return "disabled"
	}
	if s.store.IsHealthy() {
		return "ok"
	}
	return "degraded"
}

// StartGame creates a game under gameID, or a fresh uuid when empty. An
// existing game with the same id is replaced.
func (s *Service) StartGame(gameID, mode string) (string, error) {
	if gameID == "" {
		gameID = uuid.NewString()
	}
	if mode == "" {
		mode = ModeHuman
	}

	s.mu.Lock()
	if _, exists := s.games[gameID]; !exists && len(s.games) >= MaxGames {
		s.mu.Unlock()
		return "", fmt.Errorf("game limit of %d reached", MaxGames)
	}
	s.games[gameID] = &entry{game: game.New(), mode: mode}
	s.mu.Unlock()

	if s.store != nil {
		s.store.DeleteUndoneMoves(gameID, 0)
		s.store.RecordNewGame(storage.GameRecord{GameID: gameID, Mode: mode, StartTimeUTC: time.Now().UTC()})
	}
	s.logger.Info("game started", zap.String("game_id", gameID), zap.String("mode", mode))
	return gameID, nil
}

// with runs fn holding the game's lock
func (s *Service) with(gameID string, fn func(e *entry) error) error {
	s.mu.RLock()
	e, ok := s.games[gameID]
	s.mu.RUnlock()
	if !ok {
		return core.ErrGameNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e)
}

// Board returns the position without captured pieces; clients fetch those
// separately
func (s *Service) Board(gameID string) (*wire.StateDocument, error) {
	var doc wire.StateDocument
	err := s.with(gameID, func(e *entry) error {
		doc = document(e.game, false)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *Service) LegalMoves(gameID string, from core.Coord) ([]core.Coord, error) {
	var moves []core.Coord
	err := s.with(gameID, func(e *entry) error {
		moves = e.game.LegalMoves(from)
		return nil
	})
	return moves, err
}

func (s *Service) Move(gameID string, from, to core.Coord) (*wire.MoveResponse, error) {
	var resp *wire.MoveResponse
	err := s.with(gameID, func(e *entry) error {
		resp = s.play(gameID, e, from, to, "invalid move")
		return nil
	})
	return resp, err
}

// BotMove plays a reply for the side to move
func (s *Service) BotMove(gameID string) (*wire.MoveResponse, error) {
	var resp *wire.MoveResponse
	err := s.with(gameID, func(e *entry) error {
		if over, _ := e.game.Outcome(); over {
			resp = &wire.MoveResponse{Status: wire.StatusGameOver, StateDocument: document(e.game, true)}
			return nil
		}
		from, to, ok := s.engineMove(gameID, e.game)
		if !ok {
			s.rngMu.Lock()
			from, to, ok = e.game.BotMove(s.rng)
			s.rngMu.Unlock()
		}
		if !ok {
			resp = &wire.MoveResponse{Status: "bot move invalid", StateDocument: document(e.game, false)}
			return nil
		}
		resp = s.play(gameID, e, from, to, "bot move invalid")
		return nil
	})
	return resp, err
}

func (s *Service) engineMove(gameID string, g *game.Game) (from, to core.Coord, ok bool) {
	if s.engine == nil {
		return from, to, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), engineTimeout)
	defer cancel()

	uci, err := s.engine.BestMove(ctx, g.Moves())
	if err == nil {
		from, to, err = game.ParseUCI(uci)
	}
	if err != nil {
		s.logger.Warn("engine move unavailable, using built-in bot", zap.String("game_id", gameID), zap.Error(err))
		return from, to, false
	}
	return from, to, true
}

func (s *Service) play(gameID string, e *entry, from, to core.Coord, rejected string) *wire.MoveResponse {
	if over, _ := e.game.Outcome(); over {
		return &wire.MoveResponse{Status: wire.StatusGameOver, StateDocument: document(e.game, true)}
	}

	mover := e.game.Turn()
	uci, err := e.game.Move(from, to)
	if err != nil {
		s.logger.Debug("move rejected",
			zap.String("game_id", gameID),
			zap.String("from", from.Algebraic()),
			zap.String("to", to.Algebraic()),
			zap.Error(err))
		doc := document(e.game, false)
		return &wire.MoveResponse{Status: rejected, StateDocument: wire.StateDocument{Board: doc.Board, Turn: doc.Turn}}
	}

	if s.store != nil {
		s.store.RecordMove(storage.MoveRecord{
			GameID:      gameID,
			MoveNumber:  len(e.game.Moves()),
			MoveUCI:     uci,
			PlayerColor: string(mover),
			MoveTimeUTC: time.Now().UTC(),
		})
	}
	return &wire.MoveResponse{Status: wire.StatusMoveMade, StateDocument: document(e.game, true)}
}

// Restart resets the game to the initial position
func (s *Service) Restart(gameID string) error {
	return s.with(gameID, func(e *entry) error {
		e.game = game.New()
		if s.store != nil {
			s.store.DeleteUndoneMoves(gameID, 0)
		}
		s.logger.Info("game restarted", zap.String("game_id", gameID))
		return nil
	})
}

// Undo takes back the last move by replaying the rest
func (s *Service) Undo(gameID string) (*wire.UndoResponse, error) {
	var resp *wire.UndoResponse
	err := s.with(gameID, func(e *entry) error {
		moves := e.game.Moves()
		if len(moves) == 0 {
			resp = &wire.UndoResponse{Status: "error", Message: "No moves to undo"}
			return nil
		}
		prev, err := game.Replay(moves[:len(moves)-1])
		if err != nil {
			return err
		}
		e.game = prev
		if s.store != nil {
			s.store.DeleteUndoneMoves(gameID, len(moves)-1)
		}
		resp = &wire.UndoResponse{Status: wire.StatusSuccess, Message: "Move undone", StateDocument: document(prev, true)}
		return nil
	})
	return resp, err
}

func (s *Service) Captured(gameID string) (*core.Captured, error) {
	var captured *core.Captured
	err := s.with(gameID, func(e *entry) error {
		captured = e.game.Captured()
		return nil
	})
	return captured, err
}

// Mode reports whether the game was started against the bot
func (s *Service) Mode(gameID string) (string, error) {
	var mode string
	err := s.with(gameID, func(e *entry) error {
		mode = e.mode
		return nil
	})
	return mode, err
}

// Shutdown drops all games and closes storage
func (s *Service) Shutdown() error {
	s.mu.Lock()
	s.games = make(map[string]*entry)
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			return fmt.Errorf("storage: %w", err)
		}
	}
	return nil
}

func document(g *game.Game, withCaptured bool) wire.StateDocument {
	over, winner := g.Outcome()
	doc := wire.StateDocument{
		Board:    g.Board(),
		Turn:     string(g.Turn()),
		GameOver: over,
		Winner:   winner,
	}
	if withCaptured {
		doc.Captured = wire.ToCapturedDoc(g.Captured())
	}
	return doc
}
