package app

import "errors"

// Coordination errors. All of them are non-fatal: the router converts
// them into an "error" event addressed to the offending connection.
var (
	ErrRoomNotFound     = errors.New("RoomNotFound")
	ErrRoomFull         = errors.New("RoomFull")
	ErrAlreadyInRoom    = errors.New("AlreadyInRoom")
	ErrIdentityNotFound = errors.New("IdentityNotFound")
)

// ErrBackpressure is returned by a SignalConnection whose send buffer is
// full. The coordinator treats it the same as a dead connection.
var ErrBackpressure = errors.New("backpressure")
