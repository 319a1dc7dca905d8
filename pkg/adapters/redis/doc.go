// Package redis provides a Redis-backed state store and distributed locker
// for running several colloquy hosts against shared session state.
package redis
