//go:build !js && !wasm

package main

import (
	"fmt"
	"io"

	"chessboard/internal/client/display"
)

func handleExit(out io.Writer, theme display.Theme) (restart bool) {
	fmt.Fprintln(out, paint(theme, display.Cyan, "Goodbye!"))
	return false
}
