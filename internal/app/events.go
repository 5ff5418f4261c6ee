package app

import (
	"encoding/json"

	"signalrelay/internal/domain"
)

// Outbound event types.
const (
	evtRoomID           = "room-id"
	evtRoomJoined       = "room-joined"
	evtUserJoined       = "user-joined"
	evtUserLeft         = "user-left"
	evtUserList         = "user-list"
	evtSignal           = "signal"
	evtError            = "error"
	evtMatched          = "matched"
	evtNoAvailableUsers = "no-available-users"
	evtPeerDisconnected = "peer-disconnected"
	evtPong             = "pong"
)

// Inbound event types.
const (
	evtRegisterUsername = "register-username"
	evtCreateRoom       = "create-room"
	evtJoinRoom         = "join-room"
	evtLeaveRoom        = "leave-room"
	evtGoLive           = "go-live"
	evtGoOff            = "go-off"
	evtLogout           = "logout"
	evtPing             = "ping"
)

// Outbound pairs one recipient with one event. The coordinator computes
// these under its lock; delivery happens after the lock is released.
type Outbound struct {
	To    domain.ConnID
	Event any
}

// MemberInfo is the read-only member view sent to clients.
type MemberInfo struct {
	ID       domain.ConnID `json:"id"`
	Username string        `json:"username"`
}

type RoomIDEvent struct {
	Type string        `json:"type"`
	Room domain.RoomID `json:"room"`
}

type RoomJoinedEvent struct {
	Type    string        `json:"type"`
	Room    domain.RoomID `json:"room"`
	Members []MemberInfo  `json:"members"`
}

type UserJoinedEvent struct {
	Type     string        `json:"type"`
	ID       domain.ConnID `json:"id"`
	Username string        `json:"username"`
}

type UserLeftEvent struct {
	Type string        `json:"type"`
	ID   domain.ConnID `json:"id"`
}

type UserListEvent struct {
	Type    string        `json:"type"`
	Room    domain.RoomID `json:"room"`
	Members []MemberInfo  `json:"members"`
}

type SignalEvent struct {
	Type    string          `json:"type"`
	From    domain.ConnID   `json:"from"`
	Payload json.RawMessage `json:"payload"`
}

type ErrorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

type MatchedEvent struct {
	Type string        `json:"type"`
	Peer MemberInfo    `json:"peer"`
	Room domain.RoomID `json:"room"`
}

type NoAvailableUsersEvent struct {
	Type string `json:"type"`
}

type PeerDisconnectedEvent struct {
	Type string        `json:"type"`
	ID   domain.ConnID `json:"id"`
}

type PongEvent struct {
	Type string `json:"type"`
}

func errorTo(id domain.ConnID, err error) []Outbound {
	return []Outbound{{To: id, Event: ErrorEvent{Type: evtError, Error: err.Error()}}}
}
