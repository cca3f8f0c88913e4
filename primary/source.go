package primary

import (
	"fmt"
	"os"

	wl "github.com/tfufuz1/NovaDE-sub008/server"
	"github.com/tfufuz1/NovaDE-sub008/wire"
)

const (
	SourceInterface = "zwp_primary_selection_source_v1"
	SourceVersion   = DeviceManagerVersion
)

// Source is the provider side of a selection. The owning client
// declares mime types up front and serves transfer requests through
// Send.
type Source struct {
	Listener SourceListener

	client  *wl.Client
	id      uint32
	version uint32

	mimeTypes []string
}

type SourceListener interface {
	Destroy()
}

func (s *Source) Client() *wl.Client { return s.client }
func (s *Source) ID() uint32         { return s.id }
func (s *Source) SetID(id uint32)    { s.id = id }
func (s *Source) Delete()            {}
func (s *Source) Version() uint32    { return s.version }

// MimeTypes returns the types offered so far, in offer order.
func (s *Source) MimeTypes() []string { return s.mimeTypes }

func (s *Source) String() string {
	return fmt.Sprintf("%v@%v", SourceInterface, s.id)
}

func (s *Source) MethodName(op uint16) string {
	switch op {
	case 0:
		return "offer"
	case 1:
		return "destroy"
	}
	return "unknown"
}

// Send asks the owning client to write the selection contents in
// mimeType to file. The message duplicates the descriptor; the
// caller keeps ownership of file.
func (s *Source) Send(mimeType string, file *os.File) {
	msg := wire.NewMessage(s, 0)
	msg.Method = "send"
	msg.Args = []any{mimeType, file}
	msg.WriteString(mimeType)
	msg.WriteFile(file)
	s.client.Enqueue(msg)
}

// Cancelled tells the owning client the selection was replaced and
// the source will not be used again.
func (s *Source) Cancelled() {
	msg := wire.NewMessage(s, 1)
	msg.Method = "cancelled"
	s.client.Enqueue(msg)
}

func (s *Source) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // offer
		mimeType := msg.ReadString()
		if err := msg.Err(); err != nil {
			return err
		}
		s.mimeTypes = append(s.mimeTypes, mimeType)
		return nil

	case 1: // destroy
		if err := msg.Err(); err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.Destroy()
		}
		s.client.Destroy(s)
		return nil
	}

	return wire.UnknownOpError{Interface: SourceInterface, Type: "request", Op: msg.Op()}
}
