// Package engine drives an external UCI engine such as stockfish for bot
// replies.
package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	handshakeTimeout = 5 * time.Second
	quitTimeout      = time.Second
)

var ErrClosed = errors.New("engine closed unexpectedly")

// UCI is one engine process. Searches are serialized.
type UCI struct {
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	lines    chan string
	mu       sync.Mutex
	moveTime time.Duration
	logger   *zap.Logger
}

type Options struct {
	// MoveTime bounds each search
	MoveTime time.Duration
	// SkillLevel is passed to engines that support it, 0-20; negative
	// leaves the engine default
	SkillLevel int
}

// New starts the engine at path and completes the UCI handshake
func New(ctx context.Context, path string, opts Options, logger *zap.Logger) (*UCI, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MoveTime <= 0 {
		opts.MoveTime = 200 * time.Millisecond
	}

	cmd := exec.Command(path)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start engine: %w", err)
	}

	u := &UCI{
		cmd:      cmd,
		stdin:    stdin,
		lines:    make(chan string, 64),
		moveTime: opts.MoveTime,
		logger:   logger.Named("engine"),
	}
	go u.read(stdout)

	ctx, cancel := context.WithTimeout(ctx, handshakeTimeout)
	defer cancel()
	if err := u.handshake(ctx, opts.SkillLevel); err != nil {
		u.Close()
		return nil, err
	}
	u.logger.Info("engine ready", zap.String("path", path))
	return u, nil
}

// read is the only reader of stdout; lines is closed when the engine exits
func (u *UCI) read(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		u.lines <- scanner.Text()
	}
	close(u.lines)
}

func (u *UCI) handshake(ctx context.Context, skill int) error {
	if err := u.send("uci"); err != nil {
		return err
	}
	if _, err := u.await(ctx, "uciok"); err != nil {
		return fmt.Errorf("waiting for uciok: %w", err)
	}
	if skill >= 0 {
		if err := u.send(fmt.Sprintf("setoption name Skill Level value %d", min(skill, 20))); err != nil {
			return err
		}
	}
	return u.ready(ctx)
}

func (u *UCI) ready(ctx context.Context) error {
	if err := u.send("isready"); err != nil {
		return err
	}
	if _, err := u.await(ctx, "readyok"); err != nil {
		return fmt.Errorf("waiting for readyok: %w", err)
	}
	return nil
}

func (u *UCI) send(cmd string) error {
	_, err := fmt.Fprintln(u.stdin, cmd)
	return err
}

// await returns the first line starting with prefix
func (u *UCI) await(ctx context.Context, prefix string) (string, error) {
	for {
		select {
		case line, ok := <-u.lines:
			if !ok {
				return "", ErrClosed
			}
			if strings.HasPrefix(line, prefix) {
				return line, nil
			}
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

// BestMove searches the position reached by moves from the start position
// and returns the engine's move in UCI notation
func (u *UCI) BestMove(ctx context.Context, moves []string) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	// drop output left over from an abandoned search
	if err := u.ready(ctx); err != nil {
		return "", err
	}

	position := "position startpos"
	if len(moves) > 0 {
		position += " moves " + strings.Join(moves, " ")
	}
	if err := u.send(position); err != nil {
		return "", err
	}
	if err := u.send(fmt.Sprintf("go movetime %d", u.moveTime.Milliseconds())); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, 2*u.moveTime+time.Second)
	defer cancel()
	line, err := u.await(ctx, "bestmove ")
	if err != nil {
		u.send("stop")
		return "", fmt.Errorf("waiting for bestmove: %w", err)
	}

	fields := strings.Fields(line)
	if len(fields) < 2 || fields[1] == "(none)" {
		return "", fmt.Errorf("engine found no move")
	}
	u.logger.Debug("bestmove", zap.String("move", fields[1]), zap.Int("plies", len(moves)))
	return fields[1], nil
}

func (u *UCI) Close() error {
	u.send("quit")
	u.stdin.Close()

	done := make(chan error, 1)
	go func() {
		done <- u.cmd.Wait()
	}()

	select {
	case <-done:
		return nil
	case <-time.After(quitTimeout):
		return u.cmd.Process.Kill()
	}
}
