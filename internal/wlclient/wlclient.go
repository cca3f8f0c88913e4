// Package wlclient is a minimal synchronous Wayland client. It
// exists to drive real protocol sessions against the compositor over
// a Unix socket: the compositor's tests script requests with it and
// assert on the events it records, and the example clients use it as
// their protocol layer.
//
// Unlike a production client library there is no event loop. Requests
// are written immediately, and events are only read when the caller
// pumps the connection, usually via RoundTrip. That keeps test
// interleavings deterministic: after a RoundTrip the client has seen
// every event the compositor emitted for its requests so far.
package wlclient

import (
	"errors"
	"fmt"
	"time"

	"github.com/tfufuz1/NovaDE-sub008/internal/objstore"
	"github.com/tfufuz1/NovaDE-sub008/wire"
)

// ReadTimeout bounds a single pump of the connection. A compositor
// that fails to answer a sync within this window is treated as hung.
const ReadTimeout = 5 * time.Second

// PostedError is a wl_display.error received from the compositor.
type PostedError struct {
	Object  uint32
	Code    uint32
	Message string
}

func (err PostedError) Error() string {
	return fmt.Sprintf("protocol error on object %v: %v (code %v)", err.Object, err.Message, err.Code)
}

// Client is one connection to a compositor. Create it with Dial and
// drive it with request methods on the proxies rooted at Display.
type Client struct {
	conn    *wire.Conn
	store   *objstore.Store
	display *Display
	err     error

	// Errors collects every protocol error the compositor posts.
	// The compositor disconnects after posting one, so a pump that
	// follows a deliberate violation ends with a read error; the
	// posted error still lands here first.
	Errors []PostedError
}

// Dial connects to the compositor socket at path.
func Dial(path string) (*Client, error) {
	conn, err := wire.DialAt(path)
	if err != nil {
		return nil, err
	}

	c := &Client{
		conn:  conn,
		store: objstore.NewClient(),
	}
	c.display = &Display{object: object{client: c, iface: "wl_display"}}
	if err := c.store.AddWithID(c.display, wire.DisplayID); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

// Close closes the connection. Proxies are unusable afterwards.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Display returns the wl_display singleton.
func (c *Client) Display() *Display { return c.display }

// Err returns the first transport error encountered while sending
// requests or pumping events.
func (c *Client) Err() error { return c.err }

func (c *Client) send(msg *wire.MessageBuilder) {
	if c.err != nil {
		return
	}
	c.err = msg.Build(c.conn)
}

// add registers a freshly created proxy, allocating its ID. It must
// run before the proxy's ID is written into a request.
func (c *Client) add(obj wire.Object) {
	c.store.Add(obj)
}

// pump reads and dispatches a single message. Events for objects
// this side no longer knows are dropped, which mirrors how real
// clients treat events that race a destroy.
func (c *Client) pump(deadline time.Time) error {
	c.conn.SetReadDeadline(deadline)
	msg, err := wire.ReadMessage(c.conn)
	if err != nil {
		return err
	}
	err = c.store.Dispatch(msg)
	msg.CloseUnused()
	if err != nil {
		var unknown wire.UnknownSenderIDError
		if errors.As(err, &unknown) {
			return nil
		}
		return err
	}
	return nil
}

// RoundTrip sends a wl_display.sync and pumps the connection until
// its callback fires. Afterwards every event the compositor emitted
// in response to earlier requests has been dispatched.
func (c *Client) RoundTrip() error {
	if c.err != nil {
		return c.err
	}

	done := false
	cb := c.display.Sync()
	cb.Done = func(uint32) { done = true }
	if c.err != nil {
		return c.err
	}

	deadline := time.Now().Add(ReadTimeout)
	for !done {
		if err := c.pump(deadline); err != nil {
			if c.err == nil {
				c.err = err
			}
			return err
		}
	}
	return nil
}

// PumpFor dispatches events as they arrive until d has elapsed. It
// is for events that a sync cannot force out, like frame callbacks
// fired by the compositor's own scheduler. Read errors end the pump
// silently; the sticky error state is untouched.
func (c *Client) PumpFor(d time.Duration) {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if err := c.pump(deadline); err != nil {
			return
		}
	}
}

// object is the common proxy core. Every proxy embeds it and adds
// its own event dispatch.
type object struct {
	client *Client
	iface  string
	oid    uint32
}

func (o *object) ID() uint32      { return o.oid }
func (o *object) SetID(id uint32) { o.oid = id }
func (o *object) Delete()         {}

func (o *object) String() string {
	return fmt.Sprintf("%v@%v", o.iface, o.oid)
}
