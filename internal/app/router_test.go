package app

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchDropsMalformedFrames(t *testing.T) {
	c := NewCoordinator(Options{})
	ids, _ := connectN(t, c, 1)
	id := ids[0]

	cases := map[string]string{
		"not json":          `{{{`,
		"unknown type":      `{"type":"teleport"}`,
		"missing type":      `{"foo":1}`,
		"register no name":  `{"type":"register-username"}`,
		"register empty":    `{"type":"register-username","username":""}`,
		"join no room":      `{"type":"join-room"}`,
		"signal no target":  `{"type":"signal","payload":{"a":1}}`,
		"signal no payload": `{"type":"signal","target":"abc"}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Empty(t, c.Dispatch(id, []byte(raw)), "malformed frames never produce events")
		})
	}
}

func TestDispatchRoutesOperations(t *testing.T) {
	c := NewCoordinator(Options{})
	ids, _ := connectN(t, c, 2)
	x, y := ids[0], ids[1]

	assert.Empty(t, c.Dispatch(x, []byte(`{"type":"register-username","username":"xavier"}`)))

	outs := c.Dispatch(x, []byte(`{"type":"create-room"}`))
	require.Len(t, outs, 1)
	roomID := outs[0].Event.(RoomIDEvent).Room

	join := fmt.Sprintf(`{"type":"join-room","room":%q}`, roomID)
	outs = c.Dispatch(y, []byte(join))
	require.Len(t, outs, 2)

	outs = c.Dispatch(y, []byte(`{"type":"user-list","room":""}`))
	require.Len(t, outs, 1)
	assert.Len(t, outs[0].Event.(UserListEvent).Members, 2)

	sig := fmt.Sprintf(`{"type":"signal","target":%q,"payload":{"sdp":"v=0"}}`, x)
	outs = c.Dispatch(y, []byte(sig))
	require.Len(t, outs, 1)
	assert.Equal(t, x, outs[0].To)

	outs = c.Dispatch(y, []byte(`{"type":"leave-room","room":""}`))
	require.Len(t, outs, 1)
	assert.Equal(t, UserLeftEvent{Type: "user-left", ID: y}, outs[0].Event)

	outs = c.Dispatch(x, []byte(`{"type":"ping"}`))
	require.Len(t, outs, 1)
	assert.Equal(t, PongEvent{Type: "pong"}, outs[0].Event)
}

func TestDispatchErrorEventsGoToSenderOnly(t *testing.T) {
	c := NewCoordinator(Options{})
	ids, _ := connectN(t, c, 1)

	outs := c.Dispatch(ids[0], []byte(`{"type":"join-room","room":"deadbe"}`))
	require.Len(t, outs, 1)
	assert.Equal(t, ids[0], outs[0].To)
	assert.Equal(t, ErrorEvent{Type: "error", Error: "RoomNotFound"}, outs[0].Event)
}

func TestDispatchLifecycleEvents(t *testing.T) {
	c := NewCoordinator(Options{})
	ids, _ := connectN(t, c, 2)
	x, y := ids[0], ids[1]

	outs := c.Dispatch(x, []byte(`{"type":"go-live"}`))
	require.Len(t, outs, 1)
	assert.Equal(t, NoAvailableUsersEvent{Type: "no-available-users"}, outs[0].Event)

	assert.Empty(t, c.Dispatch(x, []byte(`{"type":"go-off"}`)))

	outs = c.Dispatch(x, []byte(`{"type":"go-live"}`))
	require.Len(t, outs, 1)
	outs = c.Dispatch(y, []byte(`{"type":"go-live"}`))
	require.Len(t, outs, 2)

	outs = c.Dispatch(x, []byte(`{"type":"logout"}`))
	require.Len(t, outs, 1)
	assert.Equal(t, y, outs[0].To)
	assert.IsType(t, PeerDisconnectedEvent{}, outs[0].Event)
}
