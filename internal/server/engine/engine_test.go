package engine

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

// fakeEngine answers like a UCI engine, replying e7e5 after 1.e4 and
// e2e4 otherwise
const fakeEngine = `#!/bin/sh
while read -r line; do
  case "$line" in
    uci) echo "id name fake"; echo "uciok" ;;
    isready) echo "readyok" ;;
    "position startpos moves e2e4") reply=e7e5 ;;
    position*) reply=e2e4 ;;
    go*) echo "info depth 1 score cp 20"; echo "bestmove $reply" ;;
    quit) exit 0 ;;
  esac
done
`

func startFake(t *testing.T) *UCI {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs /bin/sh")
	}
	path := filepath.Join(t.TempDir(), "engine.sh")
	if err := os.WriteFile(path, []byte(fakeEngine), 0o755); err != nil {
		t.Fatal(err)
	}
	u, err := New(context.Background(), path, Options{MoveTime: 10 * time.Millisecond, SkillLevel: -1}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { u.Close() })
	return u
}

func TestBestMove(t *testing.T) {
	u := startFake(t)
	ctx := context.Background()

	move, err := u.BestMove(ctx, nil)
	if err != nil || move != "e2e4" {
		t.Fatalf("BestMove(start) = %q, %v", move, err)
	}
	move, err = u.BestMove(ctx, []string{"e2e4"})
	if err != nil || move != "e7e5" {
		t.Fatalf("BestMove(e2e4) = %q, %v", move, err)
	}
}

func TestMissingBinary(t *testing.T) {
	_, err := New(context.Background(), filepath.Join(t.TempDir(), "nope"), Options{}, nil)
	if err == nil || !strings.Contains(err.Error(), "failed to start engine") {
		t.Fatalf("expected start error, got %v", err)
	}
}
