package webserver

import (
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func get(t *testing.T, cfg Config, path string) (int, string) {
	t.Helper()
	app, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestPages(t *testing.T) {
	cfg := Config{APIURL: "http://localhost:5000"}

	if code, body := get(t, cfg, "/"); code != 200 || !strings.Contains(body, "start_game") {
		t.Fatalf("index: %d", code)
	}
	for _, path := range []string{"/1vs1?game_id=x", "/1vsbot"} {
		if code, body := get(t, cfg, path); code != 200 || !strings.Contains(body, "chess-client.wasm") {
			t.Fatalf("%s: %d", path, code)
		}
	}
	if _, body := get(t, cfg, "/config"); !strings.Contains(body, `"apiUrl":"http://localhost:5000"`) {
		t.Fatalf("config = %s", body)
	}
	if code, _ := get(t, cfg, "/assets/wasm_exec.js"); code != 404 {
		t.Fatalf("assets served without a directory: %d", code)
	}
}

func TestAssets(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "white-king.png"), []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	code, body := get(t, Config{AssetsDir: dir}, "/assets/white-king.png")
	if code != 200 || body != "png" {
		t.Fatalf("asset: %d %q", code, body)
	}
}
