package wl

import (
	"fmt"

	"github.com/tfufuz1/NovaDE-sub008/wire"
)

const (
	CompositorInterface = "wl_compositor"
	CompositorVersion   = 5
)

type Compositor struct {
	Listener CompositorListener

	client  *Client
	id      uint32
	version uint32
}

type CompositorListener interface {
	CreateSurface(s *Surface)
	CreateRegion(r *Region)
}

// BindCompositor creates the server-side Compositor object for a
// client's registry bind.
func BindCompositor(client *Client, id wire.NewID) *Compositor {
	c := &Compositor{client: client, version: id.Version}
	client.Bind(c, id.ID)
	return c
}

func (c *Compositor) Client() *Client { return c.client }
func (c *Compositor) ID() uint32      { return c.id }
func (c *Compositor) SetID(id uint32) { c.id = id }
func (c *Compositor) Delete()         {}
func (c *Compositor) Version() uint32 { return c.version }

func (c *Compositor) String() string {
	return fmt.Sprintf("%v@%v", CompositorInterface, c.id)
}

func (c *Compositor) MethodName(op uint16) string {
	switch op {
	case 0:
		return "create_surface"
	case 1:
		return "create_region"
	}
	return "unknown"
}

func (c *Compositor) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // create_surface
		id := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		s := &Surface{client: c.client, version: c.version}
		if err := c.client.AddWithID(s, id); err != nil {
			return err
		}
		if c.Listener != nil {
			c.Listener.CreateSurface(s)
		}
		return nil

	case 1: // create_region
		id := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		r := &Region{client: c.client, version: c.version}
		if err := c.client.AddWithID(r, id); err != nil {
			return err
		}
		if c.Listener != nil {
			c.Listener.CreateRegion(r)
		}
		return nil
	}

	return wire.UnknownOpError{Interface: CompositorInterface, Type: "request", Op: msg.Op()}
}
