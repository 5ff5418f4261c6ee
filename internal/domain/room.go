package domain

type RoomID string

// Room is a bounded set of connections eligible to exchange signaling
// messages. Members keep insertion order: index 0 joined first.
type Room struct {
	ID      RoomID
	Members []ConnID
}

func NewRoom(id RoomID, creator ConnID) *Room {
	return &Room{ID: id, Members: []ConnID{creator}}
}

func (r *Room) HasMember(id ConnID) bool {
	for _, m := range r.Members {
		if m == id {
			return true
		}
	}
	return false
}
