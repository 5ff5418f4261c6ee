package app

import (
	"crypto/rand"
	"encoding/hex"

	"signalrelay/internal/domain"

	"github.com/rs/zerolog/log"
)

// RoomStore owns every Room. A room always has between one and maxSize
// members; the store deletes a room the moment its last member leaves, so
// an empty room is never observable.
//
// Like Registry, the store carries no lock of its own: the Coordinator's
// mutex covers it, which also makes the id collision check atomic with
// the insert.
type RoomStore struct {
	rooms   map[domain.RoomID]*domain.Room
	maxSize int
	idBytes int
}

func NewRoomStore(maxSize, idBytes int) *RoomStore {
	return &RoomStore{
		rooms:   make(map[domain.RoomID]*domain.Room),
		maxSize: maxSize,
		idBytes: idBytes,
	}
}

// newRoomID draws random bytes and renders them as lowercase hex,
// retrying on the (unlikely) collision with an existing room.
func (s *RoomStore) newRoomID() domain.RoomID {
	for {
		buf := make([]byte, s.idBytes)
		if _, err := rand.Read(buf); err != nil {
			// crypto/rand never fails on supported platforms
			log.Panic().Err(err).Str("module", "app.rooms").Msg("rand.Read")
		}
		id := domain.RoomID(hex.EncodeToString(buf))
		if _, exists := s.rooms[id]; !exists {
			return id
		}
		log.Warn().Str("module", "app.rooms").Str("room", string(id)).Msg("room id collision, retrying")
	}
}

// Create makes a room with a fresh id and the creator as sole member.
func (s *RoomStore) Create(creator domain.ConnID) *domain.Room {
	room := domain.NewRoom(s.newRoomID(), creator)
	s.rooms[room.ID] = room
	log.Info().Str("module", "app.rooms").Str("room", string(room.ID)).Str("conn", string(creator)).Msg("room created")
	return room
}

// Join appends the connection to the room's member list, preserving join
// order, and returns the updated list.
func (s *RoomStore) Join(id domain.RoomID, conn domain.ConnID) ([]domain.ConnID, error) {
	room, ok := s.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	if len(room.Members) >= s.maxSize {
		return nil, ErrRoomFull
	}
	if room.HasMember(conn) {
		return nil, ErrAlreadyInRoom
	}
	room.Members = append(room.Members, conn)
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Str("conn", string(conn)).Int("members", len(room.Members)).Msg("member joined")
	return room.Members, nil
}

// Leave removes the connection from the room if present. An unknown room
// or a non-member is a no-op. When the last member leaves, the room is
// deleted synchronously; its id is never resurrected.
//
// removed reports whether the member was actually in the room; survivors
// is the remaining member list (nil when the room was deleted).
func (s *RoomStore) Leave(id domain.RoomID, conn domain.ConnID) (survivors []domain.ConnID, removed bool) {
	room, ok := s.rooms[id]
	if !ok {
		return nil, false
	}
	for i, m := range room.Members {
		if m == conn {
			room.Members = append(room.Members[:i], room.Members[i+1:]...)
			removed = true
			break
		}
	}
	if !removed {
		return room.Members, false
	}
	if len(room.Members) == 0 {
		delete(s.rooms, id)
		log.Info().Str("module", "app.rooms").Str("room", string(id)).Msg("room deleted")
		return nil, true
	}
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Str("conn", string(conn)).Int("members", len(room.Members)).Msg("member left")
	return room.Members, true
}

// Members returns the member list in join order.
func (s *RoomStore) Members(id domain.RoomID) ([]domain.ConnID, error) {
	room, ok := s.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room.Members, nil
}

func (s *RoomStore) Len() int { return len(s.rooms) }

// RoomInfo is the read-only view exposed over the HTTP API.
type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	MemberCount int           `json:"member_count"`
}

func (s *RoomStore) List() []RoomInfo {
	out := make([]RoomInfo, 0, len(s.rooms))
	for id, r := range s.rooms {
		out = append(out, RoomInfo{ID: id, MemberCount: len(r.Members)})
	}
	return out
}
