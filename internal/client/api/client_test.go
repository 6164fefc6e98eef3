package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chessboard/internal/core"
	"chessboard/internal/wire"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", nil)
}

func TestGetStateDecodesDocument(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/board/g1" || r.Method != http.MethodGet {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Errorf("missing request id")
		}
		w.Write([]byte(`{"board":[["white pawn",""]],"turn":"white","game_over":false,"winner":null,
			"captured":{"white":["black knight"],"black":[]}}`))
	})

	doc, err := c.GetState(context.Background(), "g1")
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}
	snap, skipped := doc.Snapshot()
	if skipped != 0 {
		t.Fatalf("unexpected skipped cells: %d", skipped)
	}
	if snap.Turn != core.ColorWhite || snap.Board.At(core.Coord{Row: 0, Col: 0}).Name() != "white pawn" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.Captured == nil || len(snap.Captured.White) != 1 || snap.Captured.White[0] != core.Knight {
		t.Fatalf("unexpected captured: %+v", snap.Captured)
	}
}

func TestGetStateNotFoundIsDocument(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Game not found"}`))
	})

	doc, err := c.GetState(context.Background(), "missing")
	if err != nil {
		t.Fatalf("expected document, got error %v", err)
	}
	if doc.Error != "Game not found" {
		t.Fatalf("expected error field, got %+v", doc)
	}
}

func TestNonJSONErrorStatus(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("bad gateway"))
	})

	_, err := c.GetState(context.Background(), "g1")
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected StatusError 502, got %v", err)
	}
}

func TestMoveSendsCoordinates(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/move" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		var req wire.MoveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.GameID != "g1" || req.Start != [2]int{6, 0} || req.End != [2]int{4, 0} {
			t.Errorf("unexpected request %+v", req)
		}
		w.Write([]byte(`{"status":"move made","board":[],"turn":"black","game_over":false}`))
	})

	resp, err := c.Move(context.Background(), "g1", core.Coord{Row: 6, Col: 0}, core.Coord{Row: 4, Col: 0})
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if !resp.Accepted() || resp.Turn != "black" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestRequestValidation(t *testing.T) {
	called := false
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	if _, err := c.Move(context.Background(), "g1", core.Coord{Row: 6, Col: 0}, core.Coord{Row: 9, Col: 0}); err == nil {
		t.Fatalf("expected validation error for off-board destination")
	}
	if _, err := c.Restart(context.Background(), ""); err == nil {
		t.Fatalf("expected validation error for missing game id")
	}
	if called {
		t.Fatalf("invalid requests must not reach the server")
	}
}

func TestLegalMovesAbsentVersusEmpty(t *testing.T) {
	body := `{"legal_moves":[[5,0],[4,0],[9,9],[1]]}`
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	})

	resp, err := c.LegalMoves(context.Background(), "g1", core.Coord{Row: 6, Col: 0})
	if err != nil {
		t.Fatalf("LegalMoves: %v", err)
	}
	dests := resp.Destinations()
	if len(dests) != 2 || dests[0] != (core.Coord{Row: 5, Col: 0}) || dests[1] != (core.Coord{Row: 4, Col: 0}) {
		t.Fatalf("unexpected destinations %v", dests)
	}

	body = `{"error":"Game not found"}`
	resp, err = c.LegalMoves(context.Background(), "g1", core.Coord{Row: 6, Col: 0})
	if err != nil {
		t.Fatalf("LegalMoves: %v", err)
	}
	if resp.LegalMoves != nil || len(resp.Destinations()) != 0 {
		t.Fatalf("expected absent legal moves, got %+v", resp)
	}
}

func TestContextDeadline(t *testing.T) {
	release := make(chan struct{})
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Undo(ctx, "g1")
	if err == nil || !IsTimeout(err) {
		t.Fatalf("expected timeout error, got %v", err)
	}
}
