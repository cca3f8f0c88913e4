package wl

import (
	"fmt"

	"github.com/tfufuz1/NovaDE-sub008/wire"
)

// ProtocolError describes a client's violation of the protocol. A
// dispatch that returns one causes the error to be reported to the
// client via wl_display.error, after which the client is
// disconnected. Other clients are unaffected.
type ProtocolError struct {
	// ObjectID is the ID of the object that the error occurred on.
	ObjectID uint32
	Code     uint32
	Message  string
}

func (err *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error on object %v: %v (code %v)", err.ObjectID, err.Message, err.Code)
}

// Errorf builds a ProtocolError attributed to obj.
func Errorf(obj wire.Object, code uint32, format string, args ...any) *ProtocolError {
	return &ProtocolError{
		ObjectID: obj.ID(),
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
	}
}
