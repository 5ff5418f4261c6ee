package app

import (
	"encoding/json"

	"signalrelay/internal/domain"

	"github.com/rs/zerolog/log"
)

// Dispatch parses one inbound frame and applies it, returning the
// outbound events to deliver. Malformed frames and unknown types are
// dropped without an error event: the router never leaks protocol
// internals back to the sender.
func (c *Coordinator) Dispatch(id domain.ConnID, data []byte) []Outbound {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "app.router").Str("conn", string(id)).Msg("bad json, dropped")
		return nil
	}

	switch env.Type {
	case evtRegisterUsername:
		var p struct {
			Username string `json:"username"`
		}
		if err := json.Unmarshal(data, &p); err != nil || p.Username == "" {
			log.Warn().Str("module", "app.router").Str("conn", string(id)).Msg("bad register payload, dropped")
			return nil
		}
		return c.registerUsername(id, p.Username)

	case evtCreateRoom:
		return c.createRoom(id)

	case evtJoinRoom:
		var p struct {
			Room string `json:"room"`
		}
		if err := json.Unmarshal(data, &p); err != nil || p.Room == "" {
			log.Warn().Str("module", "app.router").Str("conn", string(id)).Msg("bad join payload, dropped")
			return nil
		}
		return c.joinRoom(id, domain.RoomID(p.Room))

	case evtLeaveRoom:
		var p struct {
			Room string `json:"room"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			log.Warn().Str("module", "app.router").Str("conn", string(id)).Msg("bad leave payload, dropped")
			return nil
		}
		return c.leaveRoom(id, domain.RoomID(p.Room))

	case evtSignal:
		var p struct {
			Target  string          `json:"target"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := json.Unmarshal(data, &p); err != nil || p.Target == "" || len(p.Payload) == 0 {
			log.Warn().Str("module", "app.router").Str("conn", string(id)).Msg("bad signal payload, dropped")
			return nil
		}
		return c.relaySignal(id, domain.ConnID(p.Target), p.Payload)

	case evtUserList:
		var p struct {
			Room string `json:"room"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			log.Warn().Str("module", "app.router").Str("conn", string(id)).Msg("bad user-list payload, dropped")
			return nil
		}
		return c.userList(id, domain.RoomID(p.Room))

	case evtGoLive:
		return c.goLive(id)

	case evtGoOff:
		return c.goOff(id)

	case evtLogout:
		return c.Logout(id)

	case evtPing:
		return c.ping(id)

	default:
		log.Warn().Str("module", "app.router").Str("type", env.Type).Msg("unknown event, dropped")
		return nil
	}
}
