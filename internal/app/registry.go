package app

import (
	"signalrelay/internal/core"
	"signalrelay/internal/domain"

	"github.com/rs/zerolog/log"
)

// Registry maps connection ids to identities and to their transport
// handles. It owns every Identity; rooms and events reference members by
// ConnID only and resolve the handle here at send time.
//
// Registry is not safe for concurrent use on its own: the Coordinator
// serializes all access behind its single mutex.
type Registry struct {
	identities map[domain.ConnID]*domain.Identity
	conns      map[domain.ConnID]core.SignalConnection
}

func NewRegistry() *Registry {
	return &Registry{
		identities: make(map[domain.ConnID]*domain.Identity),
		conns:      make(map[domain.ConnID]core.SignalConnection),
	}
}

// Add creates an empty identity for a freshly connected client and binds
// its transport handle.
func (r *Registry) Add(id domain.ConnID, conn core.SignalConnection) {
	r.identities[id] = domain.NewIdentity(id)
	r.conns[id] = conn
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("identity created")
}

// Register sets the display name for a known connection, overwriting any
// prior name. Names are not unique across connections.
func (r *Registry) Register(id domain.ConnID, username string) error {
	ident, ok := r.identities[id]
	if !ok {
		return ErrIdentityNotFound
	}
	if err := ident.SetUsername(username); err != nil {
		return err
	}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Str("username", username).Msg("registered username")
	return nil
}

func (r *Registry) Lookup(id domain.ConnID) (*domain.Identity, bool) {
	ident, ok := r.identities[id]
	return ident, ok
}

// SetRoom records the identity's current room; empty clears it.
func (r *Registry) SetRoom(id domain.ConnID, room domain.RoomID) error {
	ident, ok := r.identities[id]
	if !ok {
		return ErrIdentityNotFound
	}
	ident.RoomID = room
	return nil
}

// Remove drops the identity and its handle binding. Idempotent.
func (r *Registry) Remove(id domain.ConnID) {
	delete(r.identities, id)
	delete(r.conns, id)
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("identity removed")
}

// Conn resolves the transport handle for a connection. Callers must treat
// a missing or closed handle as a disconnect, never as a crash.
func (r *Registry) Conn(id domain.ConnID) (core.SignalConnection, bool) {
	c, ok := r.conns[id]
	return c, ok
}

// Username returns the display name for a connection, or "" if unknown.
func (r *Registry) Username(id domain.ConnID) string {
	if ident, ok := r.identities[id]; ok {
		return ident.Username
	}
	return ""
}
