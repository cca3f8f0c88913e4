package wl

import (
	"fmt"

	"github.com/tfufuz1/NovaDE-sub008/wire"
)

const (
	OutputInterface = "wl_output"
	OutputVersion   = 4
)

type OutputSubpixel uint32

const (
	OutputSubpixelUnknown       OutputSubpixel = 0
	OutputSubpixelNone          OutputSubpixel = 1
	OutputSubpixelHorizontalRgb OutputSubpixel = 2
	OutputSubpixelHorizontalBgr OutputSubpixel = 3
	OutputSubpixelVerticalRgb   OutputSubpixel = 4
	OutputSubpixelVerticalBgr   OutputSubpixel = 5
)

type OutputTransform uint32

const (
	OutputTransformNormal     OutputTransform = 0
	OutputTransform90         OutputTransform = 1
	OutputTransform180        OutputTransform = 2
	OutputTransform270        OutputTransform = 3
	OutputTransformFlipped    OutputTransform = 4
	OutputTransformFlipped90  OutputTransform = 5
	OutputTransformFlipped180 OutputTransform = 6
	OutputTransformFlipped270 OutputTransform = 7
)

type OutputMode uint32

const (
	OutputModeCurrent   OutputMode = 1 << 0
	OutputModePreferred OutputMode = 1 << 1
)

type Output struct {
	Listener OutputListener

	client  *Client
	id      uint32
	version uint32
}

type OutputListener interface {
	Release()
}

// BindOutput creates the server-side Output object for a client's
// registry bind. The caller is expected to describe the output with
// Geometry, Mode, and friends, ending with Done.
func BindOutput(client *Client, id wire.NewID) *Output {
	o := &Output{client: client, version: id.Version}
	client.Bind(o, id.ID)
	return o
}

func (o *Output) Client() *Client { return o.client }
func (o *Output) ID() uint32      { return o.id }
func (o *Output) SetID(id uint32) { o.id = id }
func (o *Output) Delete()         {}
func (o *Output) Version() uint32 { return o.version }

func (o *Output) String() string {
	return fmt.Sprintf("%v@%v", OutputInterface, o.id)
}

func (o *Output) MethodName(op uint16) string {
	if op == 0 {
		return "release"
	}
	return "unknown"
}

func (o *Output) Geometry(x, y, physicalWidth, physicalHeight int32, subpixel OutputSubpixel, maker, model string, transform OutputTransform) {
	msg := wire.NewMessage(o, 0)
	msg.Method = "geometry"
	msg.Args = []any{x, y, physicalWidth, physicalHeight, subpixel, maker, model, transform}
	msg.WriteInt(x)
	msg.WriteInt(y)
	msg.WriteInt(physicalWidth)
	msg.WriteInt(physicalHeight)
	msg.WriteInt(int32(subpixel))
	msg.WriteString(maker)
	msg.WriteString(model)
	msg.WriteInt(int32(transform))
	o.client.Enqueue(msg)
}

func (o *Output) Mode(flags OutputMode, width, height, refresh int32) {
	msg := wire.NewMessage(o, 1)
	msg.Method = "mode"
	msg.Args = []any{flags, width, height, refresh}
	msg.WriteUint(uint32(flags))
	msg.WriteInt(width)
	msg.WriteInt(height)
	msg.WriteInt(refresh)
	o.client.Enqueue(msg)
}

// Done marks the end of a burst of output property events.
func (o *Output) Done() {
	if o.version < 2 {
		return
	}
	msg := wire.NewMessage(o, 2)
	msg.Method = "done"
	o.client.Enqueue(msg)
}

func (o *Output) Scale(factor int32) {
	if o.version < 2 {
		return
	}
	msg := wire.NewMessage(o, 3)
	msg.Method = "scale"
	msg.Args = []any{factor}
	msg.WriteInt(factor)
	o.client.Enqueue(msg)
}

func (o *Output) Name(name string) {
	if o.version < 4 {
		return
	}
	msg := wire.NewMessage(o, 4)
	msg.Method = "name"
	msg.Args = []any{name}
	msg.WriteString(name)
	o.client.Enqueue(msg)
}

func (o *Output) Description(description string) {
	if o.version < 4 {
		return
	}
	msg := wire.NewMessage(o, 5)
	msg.Method = "description"
	msg.Args = []any{description}
	msg.WriteString(description)
	o.client.Enqueue(msg)
}

func (o *Output) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // release
		if err := msg.Err(); err != nil {
			return err
		}
		if o.Listener != nil {
			o.Listener.Release()
		}
		o.client.Destroy(o)
		return nil
	}

	return wire.UnknownOpError{Interface: OutputInterface, Type: "request", Op: msg.Op()}
}
