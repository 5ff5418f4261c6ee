package app

import (
	"regexp"
	"testing"

	"signalrelay/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomStoreCreateAssignsHexID(t *testing.T) {
	s := NewRoomStore(4, 3)
	hexID := regexp.MustCompile(`^[0-9a-f]{6}$`)

	seen := map[domain.RoomID]bool{}
	for i := 0; i < 50; i++ {
		room := s.Create(domain.ConnID("c"))
		assert.Regexp(t, hexID, string(room.ID))
		assert.False(t, seen[room.ID], "room id reused")
		seen[room.ID] = true
	}
	assert.Equal(t, 50, s.Len())
}

func TestRoomStoreJoinPreservesOrder(t *testing.T) {
	s := NewRoomStore(4, 3)
	room := s.Create("a")

	for _, id := range []domain.ConnID{"b", "c", "d"} {
		_, err := s.Join(room.ID, id)
		require.NoError(t, err)
	}

	members, err := s.Members(room.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.ConnID{"a", "b", "c", "d"}, members)
}

func TestRoomStoreJoinErrors(t *testing.T) {
	s := NewRoomStore(2, 3)
	room := s.Create("a")

	_, err := s.Join("deadbeef", "b")
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, err = s.Join(room.ID, "a")
	assert.ErrorIs(t, err, ErrAlreadyInRoom)

	_, err = s.Join(room.ID, "b")
	require.NoError(t, err)

	// at capacity the size check wins, even for an existing member
	_, err = s.Join(room.ID, "c")
	assert.ErrorIs(t, err, ErrRoomFull)
	_, err = s.Join(room.ID, "a")
	assert.ErrorIs(t, err, ErrRoomFull)

	members, err := s.Members(room.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2, "failed joins must not mutate membership")
}

func TestRoomStoreCapacityInvariant(t *testing.T) {
	s := NewRoomStore(4, 3)
	room := s.Create("m0")
	ids := []domain.ConnID{"m1", "m2", "m3", "m4", "m5", "m6"}
	for _, id := range ids {
		s.Join(room.ID, id)
		members, err := s.Members(room.ID)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(members), 4)
	}
}

func TestRoomStoreLeave(t *testing.T) {
	s := NewRoomStore(4, 3)
	room := s.Create("a")
	_, err := s.Join(room.ID, "b")
	require.NoError(t, err)

	survivors, removed := s.Leave(room.ID, "a")
	assert.True(t, removed)
	assert.Equal(t, []domain.ConnID{"b"}, survivors)

	// second leave of the same member is a no-op
	survivors, removed = s.Leave(room.ID, "a")
	assert.False(t, removed)
	assert.Equal(t, []domain.ConnID{"b"}, survivors)

	// unknown room is a no-op
	_, removed = s.Leave("deadbeef", "b")
	assert.False(t, removed)
}

func TestRoomStoreDeleteWhenEmpty(t *testing.T) {
	s := NewRoomStore(4, 3)
	room := s.Create("a")

	survivors, removed := s.Leave(room.ID, "a")
	assert.True(t, removed)
	assert.Nil(t, survivors)
	assert.Zero(t, s.Len())

	// the emptied id is never resurrected
	_, err := s.Join(room.ID, "b")
	assert.ErrorIs(t, err, ErrRoomNotFound)
	_, err = s.Members(room.ID)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRoomStoreList(t *testing.T) {
	s := NewRoomStore(4, 3)
	r1 := s.Create("a")
	r2 := s.Create("b")
	s.Join(r2.ID, "c")

	list := s.List()
	require.Len(t, list, 2)
	counts := map[domain.RoomID]int{}
	for _, info := range list {
		counts[info.ID] = info.MemberCount
	}
	assert.Equal(t, 1, counts[r1.ID])
	assert.Equal(t, 2, counts[r2.ID])
}
