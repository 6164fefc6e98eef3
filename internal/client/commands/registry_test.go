package commands

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chessboard/internal/client/api"
	"chessboard/internal/client/display"
	"chessboard/internal/client/selection"
	"chessboard/internal/core"
)

type immediate struct{ posted int }

func (p *immediate) Post(fn func()) {
	p.posted++
	fn()
}

type fakeSession struct {
	clicks   []core.Coord
	restarts int
	undos    int
}

func (f *fakeSession) Click(cell core.Coord) { f.clicks = append(f.clicks, cell) }
func (f *fakeSession) Restart() { f.restarts++ }
func (f *fakeSession) Undo() { f.undos++ }
func (f *fakeSession) Phase() core.Phase { return core.PhaseReady }
func (f *fakeSession) GameID() string { return "g1" }
func (f *fakeSession) Busy() bool { return false }

func (f *fakeSession) Selection() selection.State { return selection.Idle }

func (f *fakeSession) Snapshot() core.Snapshot {
	return core.Snapshot{Turn: core.ColorBlack, GameOver: true, Winner: "white"}
}

func newTestRegistry() (*Registry, *fakeSession, *bytes.Buffer, *immediate) {
	var out bytes.Buffer
	sess := &fakeSession{}
	loop := &immediate{}
	surface := display.NewSurface(nil, nil)
	r := NewRegistry(Options{
		Session:  sess,
		Loop:     loop,
		Surface:  surface,
		Terminal: display.NewTerminal(&out, display.ThemeOff),
		Client:   api.New("http://localhost:5000", nil),
		Out:      &out,
	})
	return r, sess, &out, loop
}

func TestClickForms(t *testing.T) {
	r, sess, _, loop := newTestRegistry()

	r.Execute("click 6,0")
	r.Execute("c e2")
	r.Execute("a7")

	want := []core.Coord{{Row: 6, Col: 0}, {Row: 6, Col: 4}, {Row: 1, Col: 0}}
	if len(sess.clicks) != len(want) {
		t.Fatalf("clicks = %v", sess.clicks)
	}
	for i := range want {
		if sess.clicks[i] != want[i] {
			t.Fatalf("click %d = %v, want %v", i, sess.clicks[i], want[i])
		}
	}
	if loop.posted != 3 {
		t.Fatalf("clicks must run on the loop, posted %d", loop.posted)
	}
}

func TestBadInput(t *testing.T) {
	r, sess, out, _ := newTestRegistry()

	r.Execute("click z9")
	r.Execute("fly")
	if len(sess.clicks) != 0 {
		t.Fatalf("invalid input produced clicks")
	}
	if !strings.Contains(out.String(), "Error:") || !strings.Contains(out.String(), "Unknown command: fly") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestActionsAndExit(t *testing.T) {
	r, sess, _, _ := newTestRegistry()

	if r.Execute("restart") || r.Execute("u") {
		t.Fatalf("actions must not exit")
	}
	if sess.restarts != 1 || sess.undos != 1 {
		t.Fatalf("restart=%d undo=%d", sess.restarts, sess.undos)
	}
	if !r.Execute("exit") || !r.Execute("x") {
		t.Fatalf("exit not reported")
	}
}

func TestStateAndURL(t *testing.T) {
	r, _, out, _ := newTestRegistry()

	r.Execute("state")
	if s := out.String(); !strings.Contains(s, "Game:      g1") || !strings.Contains(s, "Winner:    white") {
		t.Fatalf("unexpected state output %q", s)
	}

	r.Execute("url chess.local:8080")
	if got := r.client.BaseURL(); got != "http://chess.local:8080" {
		t.Fatalf("base URL = %q", got)
	}
}

func TestShowAndTheme(t *testing.T) {
	r, _, out, _ := newTestRegistry()

	r.Execute("show")
	if !strings.Contains(out.String(), "a b c d e f g h") {
		t.Fatalf("board not drawn: %q", out.String())
	}

	r.Execute("theme neon")
	if !strings.Contains(out.String(), "invalid theme") {
		t.Fatalf("expected theme error")
	}
	r.Execute("theme green")
	if !r.color {
		t.Fatalf("colour output not enabled")
	}
}

func TestNewGameOpensPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/start_game" {
			http.NotFound(w, req)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"game started","game_id":"g42"}`))
	}))
	defer srv.Close()

	r, _, out, _ := newTestRegistry()
	r.client.SetBaseURL(srv.URL)
	r.pageBase = "http://pages.local"

	if r.Execute("new chess960") {
		t.Fatalf("invalid mode must not exit")
	}
	if !strings.Contains(out.String(), "invalid mode") {
		t.Fatalf("expected mode error, got %q", out.String())
	}

	if !r.Execute("new 1vsbot") {
		t.Fatalf("new should end the current session")
	}
	if got := r.NextPage(); got != "http://pages.local/1vsbot?game_id=g42" {
		t.Fatalf("next page = %q", got)
	}
}
