// Package core holds the transport-facing contracts shared by the
// coordination engine and its adapters.
package core

// Frame is a raw outbound payload, already JSON-encoded.
type Frame []byte

// SignalConnection abstracts a per-connection messaging transport.
// Owned by the adapter; the adapter must Close() it. The engine only
// ever calls TrySend and IsOpen.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
	IsOpen() bool
}
