//go:build js && wasm

package main

import "syscall/js"

// In the browser the page URL is the location the client was opened at,
// so the game_id query parameter comes straight from the address bar
var defaultPageURL = js.Global().Get("location").Get("href").String()
