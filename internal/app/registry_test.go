package app

import (
	"testing"

	"signalrelay/internal/core"
	"signalrelay/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn is an in-memory SignalConnection used across the app tests.
type fakeConn struct {
	frames []core.Frame
	closed bool
	full   bool
}

func (f *fakeConn) TrySend(fr core.Frame) error {
	if f.closed {
		return assert.AnError
	}
	if f.full {
		return ErrBackpressure
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close()       { f.closed = true }
func (f *fakeConn) IsOpen() bool { return !f.closed }

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry()
	conn := &fakeConn{}

	r.Add("c1", conn)
	ident, ok := r.Lookup("c1")
	require.True(t, ok)
	assert.Empty(t, ident.Username, "display name stays empty until registration")
	assert.False(t, ident.InRoom())

	require.NoError(t, r.Register("c1", "alice"))
	assert.Equal(t, "alice", r.Username("c1"))

	// register overwrites, no uniqueness constraint
	require.NoError(t, r.Register("c1", "bob"))
	assert.Equal(t, "bob", r.Username("c1"))

	require.NoError(t, r.SetRoom("c1", "abc123"))
	ident, _ = r.Lookup("c1")
	assert.Equal(t, domain.RoomID("abc123"), ident.RoomID)
	require.NoError(t, r.SetRoom("c1", ""))
	ident, _ = r.Lookup("c1")
	assert.False(t, ident.InRoom())

	got, ok := r.Conn("c1")
	require.True(t, ok)
	assert.Same(t, conn, got.(*fakeConn))

	r.Remove("c1")
	_, ok = r.Lookup("c1")
	assert.False(t, ok)
	_, ok = r.Conn("c1")
	assert.False(t, ok)

	// Remove is idempotent
	r.Remove("c1")
}

func TestRegistryUnknownConnection(t *testing.T) {
	r := NewRegistry()
	assert.ErrorIs(t, r.Register("ghost", "alice"), ErrIdentityNotFound)
	assert.ErrorIs(t, r.SetRoom("ghost", "abc123"), ErrIdentityNotFound)
	assert.Empty(t, r.Username("ghost"))
}

func TestRegistryRejectsBadUsernames(t *testing.T) {
	r := NewRegistry()
	r.Add("c1", &fakeConn{})

	assert.ErrorIs(t, r.Register("c1", ""), domain.ErrUsernameEmpty)

	long := make([]byte, domain.MaxUsernameLen+1)
	for i := range long {
		long[i] = 'x'
	}
	assert.ErrorIs(t, r.Register("c1", string(long)), domain.ErrUsernameTooLong)
}
