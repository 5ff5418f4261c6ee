package app

import (
	"encoding/json"
	"sync"

	"signalrelay/internal/core"
	"signalrelay/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	DefaultMaxRoomSize = 4
	DefaultRoomIDBytes = 3
)

// Options tune the coordination engine. Zero values fall back to the
// defaults above.
type Options struct {
	MaxRoomSize int
	RoomIDBytes int
	RelayScope  RelayScope
}

// Coordinator owns the Identity Registry, the Room Store and the
// matchmaking pool. One mutex serializes every mutation, so no operation
// ever observes a partially applied change and the room-id collision
// check is atomic with the insert.
//
// Every operation computes its outbound events under the lock and
// returns them; Deliver performs the actual sends with the lock
// released, so a slow client cannot stall unrelated rooms.
type Coordinator struct {
	mu       sync.Mutex
	registry *Registry
	rooms    *RoomStore
	waiting  []domain.ConnID
	scope    RelayScope
}

func NewCoordinator(opts Options) *Coordinator {
	if opts.MaxRoomSize <= 0 {
		opts.MaxRoomSize = DefaultMaxRoomSize
	}
	if opts.RoomIDBytes <= 0 {
		opts.RoomIDBytes = DefaultRoomIDBytes
	}
	return &Coordinator{
		registry: NewRegistry(),
		rooms:    NewRoomStore(opts.MaxRoomSize, opts.RoomIDBytes),
		scope:    opts.RelayScope,
	}
}

// Connect allocates a fresh connection id and registers an empty
// identity bound to the transport handle. No outbound event.
func (c *Coordinator) Connect(conn core.SignalConnection) domain.ConnID {
	id := domain.ConnID(uuid.NewString())
	c.mu.Lock()
	c.registry.Add(id, conn)
	c.mu.Unlock()
	return id
}

// Disconnect runs full lifecycle cleanup: forced leave of the current
// room, matchmaking pool removal, identity teardown. Survivors of the
// abandoned room get peer-disconnected. Safe to call more than once.
func (c *Coordinator) Disconnect(id domain.ConnID) []Outbound {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.registry.Lookup(id); !ok {
		return nil
	}
	outs := c.abandonRoom(id)
	c.removeWaiting(id)
	c.registry.Remove(id)
	return outs
}

// Logout resets the connection to a fresh empty identity while the
// socket stays open: same cleanup as Disconnect, then re-registration.
func (c *Coordinator) Logout(id domain.ConnID) []Outbound {
	c.mu.Lock()
	defer c.mu.Unlock()
	conn, ok := c.registry.Conn(id)
	if !ok {
		return nil
	}
	outs := c.abandonRoom(id)
	c.removeWaiting(id)
	c.registry.Remove(id)
	c.registry.Add(id, conn)
	return outs
}

// abandonRoom removes the identity from its current room, if any, and
// notifies survivors with peer-disconnected. Caller holds the lock.
func (c *Coordinator) abandonRoom(id domain.ConnID) []Outbound {
	ident, ok := c.registry.Lookup(id)
	if !ok || !ident.InRoom() {
		return nil
	}
	survivors, removed := c.rooms.Leave(ident.RoomID, id)
	_ = c.registry.SetRoom(id, "")
	if !removed {
		return nil
	}
	outs := make([]Outbound, 0, len(survivors))
	for _, s := range survivors {
		outs = append(outs, Outbound{To: s, Event: PeerDisconnectedEvent{Type: evtPeerDisconnected, ID: id}})
	}
	return outs
}

func (c *Coordinator) registerUsername(id domain.ConnID, username string) []Outbound {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.registry.Register(id, username)
	switch {
	case err == nil:
		return nil
	case err == ErrIdentityNotFound:
		return errorTo(id, err)
	default:
		// invalid name: treated as a malformed event, dropped
		return nil
	}
}

func (c *Coordinator) createRoom(id domain.ConnID) []Outbound {
	c.mu.Lock()
	defer c.mu.Unlock()
	ident, ok := c.registry.Lookup(id)
	if !ok {
		return errorTo(id, ErrIdentityNotFound)
	}
	if ident.InRoom() {
		return errorTo(id, ErrAlreadyInRoom)
	}
	c.removeWaiting(id)
	room := c.rooms.Create(id)
	_ = c.registry.SetRoom(id, room.ID)
	return []Outbound{{To: id, Event: RoomIDEvent{Type: evtRoomID, Room: room.ID}}}
}

func (c *Coordinator) joinRoom(id domain.ConnID, roomID domain.RoomID) []Outbound {
	c.mu.Lock()
	defer c.mu.Unlock()
	ident, ok := c.registry.Lookup(id)
	if !ok {
		return errorTo(id, ErrIdentityNotFound)
	}
	if ident.InRoom() {
		return errorTo(id, ErrAlreadyInRoom)
	}
	members, err := c.rooms.Join(roomID, id)
	if err != nil {
		return errorTo(id, err)
	}
	c.removeWaiting(id)
	_ = c.registry.SetRoom(id, roomID)

	// members holds join order; the joiner is last.
	outs := make([]Outbound, 0, len(members))
	joined := UserJoinedEvent{Type: evtUserJoined, ID: id, Username: ident.Username}
	for _, m := range members[:len(members)-1] {
		outs = append(outs, Outbound{To: m, Event: joined})
	}
	outs = append(outs, Outbound{To: id, Event: RoomJoinedEvent{
		Type:    evtRoomJoined,
		Room:    roomID,
		Members: c.memberInfos(members),
	}})
	return outs
}

func (c *Coordinator) leaveRoom(id domain.ConnID, roomID domain.RoomID) []Outbound {
	c.mu.Lock()
	defer c.mu.Unlock()
	ident, ok := c.registry.Lookup(id)
	if !ok {
		return nil
	}
	if roomID == "" {
		roomID = ident.RoomID
	}
	if roomID == "" {
		return nil
	}
	survivors, removed := c.rooms.Leave(roomID, id)
	if ident.RoomID == roomID {
		_ = c.registry.SetRoom(id, "")
	}
	if !removed {
		return nil
	}
	outs := make([]Outbound, 0, len(survivors))
	for _, s := range survivors {
		outs = append(outs, Outbound{To: s, Event: UserLeftEvent{Type: evtUserLeft, ID: id}})
	}
	return outs
}

// relaySignal forwards an opaque negotiation payload to the target
// connection. A missing or closed target is dropped silently: the relay
// never surfaces delivery state to the sender.
func (c *Coordinator) relaySignal(id, target domain.ConnID, payload json.RawMessage) []Outbound {
	c.mu.Lock()
	defer c.mu.Unlock()
	sender, ok := c.registry.Lookup(id)
	if !ok {
		return nil
	}
	conn, ok := c.registry.Conn(target)
	if !ok || !conn.IsOpen() {
		log.Debug().Str("module", "app.coordinator").Str("target", string(target)).Msg("signal target gone, dropped")
		return nil
	}
	if c.scope == RelayRoom {
		tgt, ok := c.registry.Lookup(target)
		if !ok || !sender.InRoom() || sender.RoomID != tgt.RoomID {
			log.Debug().Str("module", "app.coordinator").Str("target", string(target)).Msg("signal outside room scope, dropped")
			return nil
		}
	}
	return []Outbound{{To: target, Event: SignalEvent{Type: evtSignal, From: id, Payload: payload}}}
}

func (c *Coordinator) userList(id domain.ConnID, roomID domain.RoomID) []Outbound {
	c.mu.Lock()
	defer c.mu.Unlock()
	if roomID == "" {
		if ident, ok := c.registry.Lookup(id); ok {
			roomID = ident.RoomID
		}
	}
	members, err := c.rooms.Members(roomID)
	if err != nil {
		members = nil
	}
	return []Outbound{{To: id, Event: UserListEvent{
		Type:    evtUserList,
		Room:    roomID,
		Members: c.memberInfos(members),
	}}}
}

// goLive pairs the caller with the longest-waiting live connection. When
// nobody is waiting the caller joins the pool instead.
func (c *Coordinator) goLive(id domain.ConnID) []Outbound {
	c.mu.Lock()
	defer c.mu.Unlock()
	ident, ok := c.registry.Lookup(id)
	if !ok {
		return errorTo(id, ErrIdentityNotFound)
	}
	if ident.InRoom() {
		return errorTo(id, ErrAlreadyInRoom)
	}

	peer, ok := c.popWaiting(id)
	if !ok {
		if !c.isWaiting(id) {
			c.waiting = append(c.waiting, id)
		}
		return []Outbound{{To: id, Event: NoAvailableUsersEvent{Type: evtNoAvailableUsers}}}
	}

	// The waiter was there first, so it becomes the room creator.
	room := c.rooms.Create(peer)
	if _, err := c.rooms.Join(room.ID, id); err != nil {
		// cannot happen with a two-member room below capacity
		return errorTo(id, err)
	}
	_ = c.registry.SetRoom(peer, room.ID)
	_ = c.registry.SetRoom(id, room.ID)
	log.Info().Str("module", "app.coordinator").Str("room", string(room.ID)).Str("a", string(peer)).Str("b", string(id)).Msg("matched")
	return []Outbound{
		{To: id, Event: MatchedEvent{Type: evtMatched, Peer: c.memberInfo(peer), Room: room.ID}},
		{To: peer, Event: MatchedEvent{Type: evtMatched, Peer: c.memberInfo(id), Room: room.ID}},
	}
}

func (c *Coordinator) goOff(id domain.ConnID) []Outbound {
	c.mu.Lock()
	c.removeWaiting(id)
	c.mu.Unlock()
	return nil
}

func (c *Coordinator) ping(id domain.ConnID) []Outbound {
	return []Outbound{{To: id, Event: PongEvent{Type: evtPong}}}
}

// popWaiting pops the first pool entry that is not self and still has an
// open handle. Stale entries found along the way are discarded.
func (c *Coordinator) popWaiting(self domain.ConnID) (domain.ConnID, bool) {
	kept := c.waiting[:0]
	var found domain.ConnID
	ok := false
	for _, w := range c.waiting {
		if ok || w == self {
			kept = append(kept, w)
			continue
		}
		if conn, live := c.registry.Conn(w); !live || !conn.IsOpen() {
			continue // stale entry
		}
		found, ok = w, true
	}
	c.waiting = kept
	return found, ok
}

func (c *Coordinator) isWaiting(id domain.ConnID) bool {
	for _, w := range c.waiting {
		if w == id {
			return true
		}
	}
	return false
}

func (c *Coordinator) removeWaiting(id domain.ConnID) {
	for i, w := range c.waiting {
		if w == id {
			c.waiting = append(c.waiting[:i], c.waiting[i+1:]...)
			return
		}
	}
}

func (c *Coordinator) memberInfo(id domain.ConnID) MemberInfo {
	return MemberInfo{ID: id, Username: c.registry.Username(id)}
}

func (c *Coordinator) memberInfos(ids []domain.ConnID) []MemberInfo {
	out := make([]MemberInfo, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.memberInfo(id))
	}
	return out
}

// RoomList snapshots the store for the HTTP API.
func (c *Coordinator) RoomList() []RoomInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rooms.List()
}

// Deliver sends each outbound event through the recipient's handle,
// resolved via the registry at send time. A failed or backpressured send
// is treated as that recipient's disconnect; the cleanup events it
// produces are delivered in the same pass. Never called under the lock.
func (c *Coordinator) Deliver(outs []Outbound) {
	for len(outs) > 0 {
		out := outs[0]
		outs = outs[1:]

		c.mu.Lock()
		conn, ok := c.registry.Conn(out.To)
		c.mu.Unlock()
		if !ok {
			continue
		}

		frame, err := json.Marshal(out.Event)
		if err != nil {
			log.Error().Err(err).Str("module", "app.coordinator").Msg("marshal outbound")
			continue
		}
		if err := conn.TrySend(core.Frame(frame)); err != nil {
			log.Warn().Err(err).Str("module", "app.coordinator").Str("conn", string(out.To)).Msg("send failed, dropping connection")
			conn.Close()
			outs = append(outs, c.Disconnect(out.To)...)
		}
	}
}
