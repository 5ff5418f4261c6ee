package app

// RelayScope controls which targets a "signal" event may reach.
type RelayScope int

const (
	// RelayAny relays to any live connection addressed by id. This is the
	// reference behavior: connection ids are unguessable and only
	// disclosed through room membership events.
	RelayAny RelayScope = iota
	// RelayRoom additionally requires sender and target to share a room.
	RelayRoom
)

func ParseRelayScope(s string) RelayScope {
	if s == "room" {
		return RelayRoom
	}
	return RelayAny
}

func (s RelayScope) String() string {
	if s == RelayRoom {
		return "room"
	}
	return "any"
}
