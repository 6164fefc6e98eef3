//go:build !js && !wasm

package main

const defaultPageURL = ""
