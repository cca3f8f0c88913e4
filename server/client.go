package wl

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/tfufuz1/NovaDE-sub008/internal/debug"
	"github.com/tfufuz1/NovaDE-sub008/internal/objstore"
	"github.com/tfufuz1/NovaDE-sub008/wire"
)

// outgoingBuffer is the number of events that may be queued for a
// client before the server considers it unresponsive and disconnects
// it.
const outgoingBuffer = 1024

// Client represents a single client connection. Requests read from
// the socket are dispatched on the server's event queue; events are
// handed to a per-client writer so that a slow client never blocks
// the flushing goroutine.
type Client struct {
	server *Server
	conn   *wire.Conn
	store  *objstore.Store

	done  chan struct{}
	close sync.Once

	// out carries built messages to the writer goroutine. A nil entry
	// closes the connection once everything before it has been
	// written.
	out chan *wire.MessageBuilder
}

func newClient(server *Server, conn *wire.Conn) *Client {
	client := Client{
		server: server,
		conn:   conn,
		store:  objstore.New(wire.ServerIDStart),
		done:   make(chan struct{}),
		out:    make(chan *wire.MessageBuilder, outgoingBuffer),
	}

	display := newDisplay(&client)
	display.SetID(wire.DisplayID)
	client.store.Add(display)

	go client.read()
	go client.write()

	return &client
}

func (client *Client) Server() *Server {
	return client.server
}

// Close tears down the connection. It may be called from any
// goroutine. Object cleanup happens on the server's event queue.
func (client *Client) Close() error {
	client.close.Do(func() {
		close(client.done)
		client.conn.Close()
		client.server.enqueue(func() error {
			client.server.removeClient(client)
			client.store.Clear()
			return nil
		})
	})
	return nil
}

func (client *Client) read() {
	defer client.Close()

	for {
		msg, err := wire.ReadMessage(client.conn)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
				return
			}

			select {
			case <-client.done:
			case <-client.server.done:
			case client.server.queue.Add() <- func() error { return fmt.Errorf("read client message: %w", err) }:
			}
			return
		}

		select {
		case <-client.done:
			return
		case <-client.server.done:
			return
		case client.server.queue.Add() <- func() error { return client.dispatch(msg) }:
		}
	}
}

func (client *Client) write() {
	for {
		select {
		case <-client.done:
			return
		case msg := <-client.out:
			if msg == nil {
				client.Close()
				return
			}

			debug.Printf(" -> %v", msg)
			err := msg.Build(client.conn)
			if err != nil {
				client.Close()
				return
			}
		}
	}
}

func (client *Client) dispatch(msg *wire.MessageBuffer) error {
	defer msg.CloseUnused()

	err := client.store.Dispatch(msg)
	if err == nil {
		err = msg.Err()
		if err != nil {
			client.PostError(msg.Sender(), uint32(DisplayErrorInvalidMethod), fmt.Sprintf("malformed arguments for opcode %v", msg.Op()))
			return fmt.Errorf("decode request: %w", err)
		}
		return nil
	}

	var pe *ProtocolError
	var uop wire.UnknownOpError
	var usid wire.UnknownSenderIDError
	switch {
	case errors.As(err, &pe):
		client.PostError(pe.ObjectID, pe.Code, pe.Message)
	case errors.As(err, &uop):
		client.PostError(msg.Sender(), uint32(DisplayErrorInvalidMethod), err.Error())
	case errors.As(err, &usid):
		client.PostError(wire.DisplayID, uint32(DisplayErrorInvalidObject), err.Error())
	default:
		client.PostError(wire.DisplayID, uint32(DisplayErrorImplementation), err.Error())
	}
	return err
}

// Enqueue queues msg to be sent to the client. It never blocks: a
// client that has stopped reading long enough for the outgoing
// buffer to fill up is disconnected instead.
func (client *Client) Enqueue(msg *wire.MessageBuilder) {
	select {
	case client.out <- msg:
	case <-client.done:
	default:
		client.Close()
	}
}

// PostError reports a protocol error to the client and severs the
// connection once the error event has been written out.
func (client *Client) PostError(objectID, code uint32, message string) {
	client.Display().Error(objectID, code, message)
	select {
	case client.out <- nil:
	case <-client.done:
	default:
		client.Close()
	}
}

// Post reports err to the client. Protocol errors keep their object
// and code; anything else is reported as an implementation error.
func (client *Client) Post(err error) {
	var pe *ProtocolError
	if errors.As(err, &pe) {
		client.PostError(pe.ObjectID, pe.Code, pe.Message)
		return
	}
	client.PostError(wire.DisplayID, uint32(DisplayErrorImplementation), err.Error())
}

// Add registers obj, allocating a server-side ID for it.
func (client *Client) Add(obj wire.Object) {
	client.store.Add(obj)
}

// AddWithID registers obj under a client-allocated ID.
func (client *Client) AddWithID(obj wire.Object, id uint32) error {
	err := client.store.AddWithID(obj, id)
	if err != nil {
		return &ProtocolError{
			ObjectID: wire.DisplayID,
			Code:     uint32(DisplayErrorInvalidObject),
			Message:  fmt.Sprintf("cannot create object %v: %v", id, err),
		}
	}
	return nil
}

// Bind is AddWithID for registry binds and other paths that have no
// way to propagate an error; failures are posted directly.
func (client *Client) Bind(obj wire.Object, id uint32) {
	err := client.AddWithID(obj, id)
	if err != nil {
		client.Post(err)
	}
}

func (client *Client) Get(id uint32) wire.Object {
	return client.store.Get(id)
}

func (client *Client) Delete(id uint32) {
	client.store.Delete(id)
}

// Destroy removes obj from the client's object map and tells the
// client that the ID is free for reuse.
func (client *Client) Destroy(obj wire.Object) {
	id := obj.ID()
	if id == 0 {
		return
	}
	client.Display().DeleteId(id)
	client.store.Delete(id)
}

func (client *Client) Display() *Display {
	return client.Get(wire.DisplayID).(*Display)
}

// LookupObject resolves an object ID argument of a request sent to
// from. An ID of 0 yields a nil object without error.
func LookupObject[T wire.Object](client *Client, from wire.Object, id uint32) (obj T, err error) {
	if id == 0 {
		return obj, nil
	}

	got := client.Get(id)
	if got == nil {
		return obj, Errorf(from, uint32(DisplayErrorInvalidObject), "unknown object %v", id)
	}
	obj, ok := got.(T)
	if !ok {
		return obj, Errorf(from, uint32(DisplayErrorInvalidObject), "object %v is a %v, not a %T", id, got, obj)
	}
	return obj, nil
}
