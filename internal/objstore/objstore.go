// Package objstore tracks the protocol objects belonging to a single
// client connection.
package objstore

import (
	"errors"

	"github.com/tfufuz1/NovaDE-sub008/internal/debug"
	"github.com/tfufuz1/NovaDE-sub008/wire"
	"golang.org/x/exp/maps"
)

var (
	ErrZeroID     = errors.New("object ID is zero")
	ErrIDInUse    = errors.New("object ID is already in use")
	ErrIDReserved = errors.New("object ID is in the locally allocated range")
)

type Store struct {
	objects map[uint32]wire.Object

	// lo and hi bound the half-open ID range that this side of the
	// connection allocates from. IDs inside it are rejected when
	// claimed by the remote end.
	lo, hi uint32
	nextID uint32
}

// New returns a Store for the server side of a connection. It hands
// out IDs at or above start and rejects IDs in that range when the
// client claims them.
func New(start uint32) *Store {
	return &Store{
		objects: make(map[uint32]wire.Object),
		lo:      start,
		hi:      ^uint32(0),
		nextID:  start,
	}
}

// NewClient returns a Store for the client side of a connection. It
// hands out IDs from the client range, starting just above the
// wl_display singleton, and rejects claimed IDs from that range.
func NewClient() *Store {
	return &Store{
		objects: make(map[uint32]wire.Object),
		lo:      wire.DisplayID + 1,
		hi:      wire.ServerIDStart,
		nextID:  wire.DisplayID + 1,
	}
}

// Add registers obj, allocating an ID from the local range for it if
// it does not already have one.
func (s *Store) Add(obj wire.Object) {
	id := obj.ID()
	if id == 0 {
		id = s.nextID
		obj.SetID(id)
		s.nextID++
	}

	s.objects[id] = obj
}

// AddWithID registers obj under an ID chosen by the remote end.
func (s *Store) AddWithID(obj wire.Object, id uint32) error {
	if id == 0 {
		return ErrZeroID
	}
	if id >= s.lo && id < s.hi {
		return ErrIDReserved
	}
	if _, ok := s.objects[id]; ok {
		return ErrIDInUse
	}

	obj.SetID(id)
	s.objects[id] = obj
	return nil
}

func (s *Store) Get(id uint32) wire.Object {
	return s.objects[id]
}

// All returns a snapshot of every live object in the store.
func (s *Store) All() []wire.Object {
	return maps.Values(s.objects)
}

func (s *Store) Delete(id uint32) {
	obj := s.objects[id]
	delete(s.objects, id)
	if obj != nil {
		obj.Delete()
	}
}

// Clear drops every object from the store, invoking each object's
// delete hook after the map has been emptied.
func (s *Store) Clear() {
	objs := maps.Values(s.objects)
	clear(s.objects)
	for _, obj := range objs {
		obj.Delete()
	}
}

// Dispatch routes msg to the object that it names as its sender.
func (s *Store) Dispatch(msg *wire.MessageBuffer) error {
	obj := s.objects[msg.Sender()]
	if obj == nil {
		return wire.UnknownSenderIDError{Msg: msg}
	}

	err := obj.Dispatch(msg)
	debug.Printf("%v", msg.Debug(obj))
	return err
}
