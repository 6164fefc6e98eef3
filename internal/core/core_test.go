package core

import "testing"

func TestParseCoord(t *testing.T) {
	tests := []struct {
		in      string
		want    Coord
		wantErr bool
	}{
		{"6,0", Coord{6, 0}, false},
		{" 4 , 7 ", Coord{4, 7}, false},
		{"a2", Coord{6, 0}, false},
		{"H8", Coord{0, 7}, false},
		{"e4", Coord{4, 4}, false},
		{"8,0", Coord{}, true},
		{"i1", Coord{}, true},
		{"a9", Coord{}, true},
		{"x,1", Coord{}, true},
		{"", Coord{}, true},
	}

	for _, tt := range tests {
		got, err := ParseCoord(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseCoord(%q) err=%v, wantErr=%v", tt.in, err, tt.wantErr)
		}
		if err == nil && got != tt.want {
			t.Fatalf("ParseCoord(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCoordAlgebraic(t *testing.T) {
	if got := (Coord{Row: 6, Col: 0}).Algebraic(); got != "a2" {
		t.Fatalf("expected a2, got %s", got)
	}
	if got := (Coord{Row: 0, Col: 4}).Algebraic(); got != "e8" {
		t.Fatalf("expected e8, got %s", got)
	}
}

func TestParseCell(t *testing.T) {
	c, err := ParseCell("white pawn")
	if err != nil {
		t.Fatalf("ParseCell: %v", err)
	}
	if c.Color != ColorWhite || c.Kind != Pawn || c.Name() != "white pawn" {
		t.Fatalf("unexpected cell: %+v", c)
	}

	empty, err := ParseCell("")
	if err != nil || !empty.Empty() || empty.Name() != "" {
		t.Fatalf("expected empty cell, got %+v err=%v", empty, err)
	}

	for _, bad := range []string{"white", "green pawn", "black dragon", "white pawn extra"} {
		if _, err := ParseCell(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestBoardFromRowsSkipsUnparseable(t *testing.T) {
	rows := [][]string{
		{"black rook", "purple blob", ""},
		{"white king"},
	}
	b, skipped := BoardFromRows(rows)
	if skipped != 1 {
		t.Fatalf("expected 1 skipped cell, got %d", skipped)
	}
	if b.At(Coord{0, 0}).Name() != "black rook" {
		t.Fatalf("unexpected (0,0): %+v", b.At(Coord{0, 0}))
	}
	if !b.At(Coord{0, 1}).Empty() {
		t.Fatalf("unparseable cell should be empty")
	}
	if !b.At(Coord{1, 5}).Empty() {
		t.Fatalf("cell past a short row should read as empty")
	}
	if !b.At(Coord{-1, 0}).Empty() {
		t.Fatalf("negative coordinate should read as empty")
	}

	back := b.Rows()
	if back[1][0] != "white king" || back[0][1] != "" {
		t.Fatalf("unexpected round trip rows: %v", back)
	}
}

func TestCapturedPiecesNil(t *testing.T) {
	var c *Captured
	if c.Pieces(ColorWhite) != nil {
		t.Fatalf("nil captured should yield no pieces")
	}
	c = &Captured{White: []PieceKind{Pawn}, Black: []PieceKind{Queen, Rook}}
	if len(c.Pieces(ColorBlack)) != 2 || c.Pieces(ColorWhite)[0] != Pawn {
		t.Fatalf("unexpected pieces: %+v", c)
	}
}
