//go:build js && wasm

package main

import (
	"fmt"
	"io"

	"chessboard/internal/client/display"
)

func handleExit(out io.Writer, theme display.Theme) (restart bool) {
	fmt.Fprintln(out, paint(theme, display.Cyan, "Goodbye!"))

	fmt.Fprintln(out, paint(theme, display.Yellow, "\n━━━━━━━━━━━━━━━━━━━━━━━━"))
	fmt.Fprintln(out, paint(theme, display.Yellow, "Session ended."))
	fmt.Fprintln(out, paint(theme, display.Yellow, "Restarting the client."))
	fmt.Fprintln(out, paint(theme, display.Yellow, "━━━━━━━━━━━━━━━━━━━━━━━━\n"))

	return true
}
