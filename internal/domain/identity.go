// Package domain contains entity without logic, just meta-data
package domain

import "errors"

const (
	MaxConnIDLen   = 36
	MaxUsernameLen = 36
)

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
)

// ConnID identifies one live transport connection. It is assigned at
// connect time and never reused while the connection is registered.
type ConnID string

// Identity is the server-side record of a connection: its chosen display
// name and current room assignment. RoomID is empty while not in a room.
type Identity struct {
	ID       ConnID
	Username string
	RoomID   RoomID
}

// NewIdentity is a tiny helper to avoid ad-hoc struct literals in adapters.
// The username stays empty until an explicit registration event.
func NewIdentity(id ConnID) *Identity {
	return &Identity{ID: id}
}

func (i *Identity) SetUsername(username string) error {
	if len(username) == 0 {
		return ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return ErrUsernameTooLong
	}
	i.Username = username
	return nil
}

// InRoom reports whether the identity currently has a room assignment.
func (i *Identity) InRoom() bool { return i.RoomID != "" }
