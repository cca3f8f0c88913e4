// Package wl implements the server side of the core Wayland
// protocol. Protocol objects deliver requests to listener interfaces
// and expose events as methods. All listener callbacks run on the
// goroutine that flushes the server's event queue, so everything
// built on top of this package is effectively single-threaded.
package wl

import (
	"errors"
	"net"
	"sync"

	"github.com/tfufuz1/NovaDE-sub008/internal/ev"
	"github.com/tfufuz1/NovaDE-sub008/internal/set"
	"github.com/tfufuz1/NovaDE-sub008/wire"
)

type Server struct {
	// Listener, if set, is notified of client arrivals and
	// departures.
	Listener ServerListener

	done    chan struct{}
	close   sync.Once
	lis     *net.UnixListener
	clients set.Set[*Client]
	queue   *ev.Queue
}

type ServerListener interface {
	Client(c *Client)
	ClientRemove(c *Client)
}

// ListenAndServe creates a Server on a fresh socket path as chosen
// by wire.NewSocketPath.
func ListenAndServe() (*Server, error) {
	lis, err := wire.Listen()
	if err != nil {
		return nil, err
	}
	return NewServer(lis), nil
}

// ListenAndServeAt creates a Server listening at the given socket
// path.
func ListenAndServeAt(path string) (*Server, error) {
	lis, err := wire.ListenAt(path)
	if err != nil {
		return nil, err
	}
	return NewServer(lis), nil
}

func NewServer(lis *net.UnixListener) *Server {
	server := Server{
		done:    make(chan struct{}),
		lis:     lis,
		clients: make(set.Set[*Client]),
		queue:   ev.NewQueue(),
	}
	go server.listen()

	return &server
}

// Addr returns the address of the socket that the server is
// listening on.
func (server *Server) Addr() net.Addr {
	return server.lis.Addr()
}

// Events returns the channel that the server's event batches are
// delivered on. Receiving a batch and calling its Flush method runs
// the pending work. All listener callbacks happen inside Flush.
func (server *Server) Events() <-chan *ev.Events {
	return server.queue.Get()
}

// Flush runs whatever events are ready without blocking. It is a
// convenience for callers that poll the server instead of selecting
// on Events.
func (server *Server) Flush() error {
	return ev.Drain(server.queue)
}

func (server *Server) Close() error {
	var err error
	server.close.Do(func() {
		close(server.done)
		err = server.lis.Close()
		for client := range server.clients {
			client.Close()
		}
		clear(server.clients)
		server.queue.Stop()
	})
	return err
}

// enqueue adds f to the server's event queue unless the server is
// shutting down.
func (server *Server) enqueue(f func() error) {
	select {
	case <-server.done:
	case server.queue.Add() <- f:
	}
}

func (server *Server) listen() {
	for {
		c, err := server.lis.AcceptUnix()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}

			select {
			case <-server.done:
				return
			case server.queue.Add() <- func() error { return err }:
				continue
			}
		}

		select {
		case <-server.done:
			c.Close()
			return
		case server.queue.Add() <- func() error { server.addClient(c); return nil }:
		}
	}
}

func (server *Server) addClient(c *net.UnixConn) {
	client := newClient(server, wire.NewConn(c))
	server.clients.Add(client)
	if server.Listener != nil {
		server.Listener.Client(client)
	}
}

func (server *Server) removeClient(client *Client) {
	if !server.clients.Has(client) {
		return
	}
	server.clients.Delete(client)
	if server.Listener != nil {
		server.Listener.ClientRemove(client)
	}
}
