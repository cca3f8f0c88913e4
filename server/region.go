package wl

import (
	"fmt"
	"image"

	"github.com/tfufuz1/NovaDE-sub008/internal/region"
	"github.com/tfufuz1/NovaDE-sub008/wire"
)

const (
	RegionInterface = "wl_region"
	RegionVersion   = 1
)

// Region is a pure data object: the client builds up an area with
// add and subtract and then passes the object to a request that
// consumes it.
type Region struct {
	client  *Client
	id      uint32
	version uint32
	area    region.Region
}

func (r *Region) Client() *Client { return r.client }
func (r *Region) ID() uint32      { return r.id }
func (r *Region) SetID(id uint32) { r.id = id }
func (r *Region) Delete()         {}
func (r *Region) Version() uint32 { return r.version }

func (r *Region) String() string {
	return fmt.Sprintf("%v@%v", RegionInterface, r.id)
}

func (r *Region) MethodName(op uint16) string {
	switch op {
	case 0:
		return "destroy"
	case 1:
		return "add"
	case 2:
		return "subtract"
	}
	return "unknown"
}

// Area returns a copy of the accumulated area. Copying matters:
// consumers snapshot the region at the time of the consuming
// request, while the client may keep mutating the object.
func (r *Region) Area() region.Region {
	return r.area.Clone()
}

func (r *Region) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // destroy
		if err := msg.Err(); err != nil {
			return err
		}
		r.client.Destroy(r)
		return nil

	case 1: // add
		x := msg.ReadInt()
		y := msg.ReadInt()
		width := msg.ReadInt()
		height := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		r.area.Add(image.Rect(int(x), int(y), int(x+width), int(y+height)))
		return nil

	case 2: // subtract
		x := msg.ReadInt()
		y := msg.ReadInt()
		width := msg.ReadInt()
		height := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		r.area.Subtract(image.Rect(int(x), int(y), int(x+width), int(y+height)))
		return nil
	}

	return wire.UnknownOpError{Interface: RegionInterface, Type: "request", Op: msg.Op()}
}
