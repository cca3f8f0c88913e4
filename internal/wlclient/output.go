package wlclient

import (
	"github.com/tfufuz1/NovaDE-sub008/wire"
)

// Output mirrors one advertised wl_output. Property events overwrite
// the fields; Dones counts the bursts.
type Output struct {
	object

	X, Y          int32
	Maker, Model  string
	Width, Height int32
	Refresh       int32
	Scale         int32
	Name          string
	Description   string
	Dones         int
}

func (o *Output) Release() {
	msg := wire.NewMessage(o, 0)
	msg.Method = "release"
	o.client.send(msg)
}

func (o *Output) MethodName(op uint16) string {
	switch op {
	case 0:
		return "geometry"
	case 1:
		return "mode"
	case 2:
		return "done"
	case 3:
		return "scale"
	case 4:
		return "name"
	case 5:
		return "description"
	}
	return "unknown"
}

func (o *Output) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // geometry
		o.X = msg.ReadInt()
		o.Y = msg.ReadInt()
		msg.ReadInt()
		msg.ReadInt()
		msg.ReadInt()
		o.Maker = msg.ReadString()
		o.Model = msg.ReadString()
		msg.ReadInt()
		return msg.Err()

	case 1: // mode
		msg.ReadUint()
		o.Width = msg.ReadInt()
		o.Height = msg.ReadInt()
		o.Refresh = msg.ReadInt()
		return msg.Err()

	case 2: // done
		o.Dones++
		return nil

	case 3: // scale
		o.Scale = msg.ReadInt()
		return msg.Err()

	case 4: // name
		o.Name = msg.ReadString()
		return msg.Err()

	case 5: // description
		o.Description = msg.ReadString()
		return msg.Err()
	}

	return wire.UnknownOpError{Interface: "wl_output", Type: "event", Op: msg.Op()}
}
