// Package wire implements the Wayland wire format: message framing,
// argument marshalling, and the Unix socket transport that carries
// file descriptors alongside the byte stream.
package wire

// ServerIDStart is the first object ID in the server-allocated
// range. IDs below it belong to the client.
const ServerIDStart uint32 = 0xFF000000

// DisplayID is the object ID of the wl_display singleton. It is the
// only ID that exists implicitly on every connection.
const DisplayID uint32 = 1

// Object represents a Wayland protocol object.
type Object interface {
	// ID returns the object's ID, or 0 if it has not been registered
	// with a connection yet.
	ID() uint32

	// SetID changes the object's ID. It is intended for use during
	// registration and deletion and should not be called by other
	// code.
	SetID(id uint32)

	// Delete is called after the object has been removed from its
	// connection's object store.
	Delete()

	// Dispatch performs the operation requested by the message in the
	// buffer.
	Dispatch(msg *MessageBuffer) error

	// MethodName returns the name of the method that op corresponds
	// to on this object. It is intended for debugging.
	MethodName(op uint16) string
}

// NewID is the argument of a request that creates an object whose
// interface is not fixed by the protocol, such as wl_registry.bind.
type NewID struct {
	Interface string
	Version   uint32
	ID        uint32
}
