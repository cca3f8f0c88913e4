package wl

import (
	"fmt"
	"image"

	"github.com/tfufuz1/NovaDE-sub008/shm"
	"github.com/tfufuz1/NovaDE-sub008/wire"
)

const (
	ShmInterface = "wl_shm"
	ShmVersion   = 1

	ShmPoolInterface = "wl_shm_pool"
	ShmPoolVersion   = ShmVersion

	BufferInterface = "wl_buffer"
	BufferVersion   = 1
)

type ShmFormat uint32

const (
	ShmFormatArgb8888 ShmFormat = 0
	ShmFormatXrgb8888 ShmFormat = 1
)

func (f ShmFormat) String() string {
	switch f {
	case ShmFormatArgb8888:
		return "argb8888"
	case ShmFormatXrgb8888:
		return "xrgb8888"
	}
	return fmt.Sprintf("unknown(%v)", uint32(f))
}

type ShmError uint32

const (
	ShmErrorInvalidFormat ShmError = 0
	ShmErrorInvalidStride ShmError = 1
	ShmErrorInvalidFd     ShmError = 2
)

type Shm struct {
	Listener ShmListener

	client  *Client
	id      uint32
	version uint32
}

type ShmListener interface {
	// CreatePool is called with a freshly mapped pool. The pool's
	// backing file belongs to the pool object; the listener must not
	// close it.
	CreatePool(pool *ShmPool)
}

// BindShm creates the server-side Shm object for a client's registry
// bind. The caller is expected to advertise the supported formats
// with Format afterwards.
func BindShm(client *Client, id wire.NewID) *Shm {
	s := &Shm{client: client, version: id.Version}
	client.Bind(s, id.ID)
	return s
}

func (s *Shm) Client() *Client { return s.client }
func (s *Shm) ID() uint32      { return s.id }
func (s *Shm) SetID(id uint32) { s.id = id }
func (s *Shm) Delete()         {}
func (s *Shm) Version() uint32 { return s.version }

func (s *Shm) String() string {
	return fmt.Sprintf("%v@%v", ShmInterface, s.id)
}

func (s *Shm) MethodName(op uint16) string {
	if op == 0 {
		return "create_pool"
	}
	return "unknown"
}

// Format advertises a pixel format that buffers may be created in.
func (s *Shm) Format(format ShmFormat) {
	msg := wire.NewMessage(s, 0)
	msg.Method = "format"
	msg.Args = []any{format}
	msg.WriteUint(uint32(format))
	s.client.Enqueue(msg)
}

func (s *Shm) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // create_pool
		id := msg.ReadUint()
		file := msg.ReadFile()
		size := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}

		if size <= 0 {
			file.Close()
			return Errorf(s, uint32(ShmErrorInvalidStride), "invalid pool size %v", size)
		}
		mapped, err := shm.OpenPool(file, size)
		if err != nil {
			file.Close()
			return Errorf(s, uint32(ShmErrorInvalidFd), "map pool: %v", err)
		}

		pool := &ShmPool{client: s.client, version: s.version, pool: mapped}
		if err := s.client.AddWithID(pool, id); err != nil {
			mapped.Close()
			return err
		}
		if s.Listener != nil {
			s.Listener.CreatePool(pool)
		}
		return nil
	}

	return wire.UnknownOpError{Interface: ShmInterface, Type: "request", Op: msg.Op()}
}

// ShmPool is a client's shared memory pool. The pool's mapping stays
// alive for as long as any buffer created from it exists, even after
// the pool object itself has been destroyed.
type ShmPool struct {
	client  *Client
	id      uint32
	version uint32

	pool      *shm.Pool
	refs      int
	destroyed bool
}

func (p *ShmPool) Client() *Client { return p.client }
func (p *ShmPool) ID() uint32      { return p.id }
func (p *ShmPool) SetID(id uint32) { p.id = id }
func (p *ShmPool) Version() uint32 { return p.version }

func (p *ShmPool) Delete() {
	if !p.destroyed {
		p.destroyed = true
		p.maybeClose()
	}
}

func (p *ShmPool) String() string {
	return fmt.Sprintf("%v@%v", ShmPoolInterface, p.id)
}

func (p *ShmPool) MethodName(op uint16) string {
	switch op {
	case 0:
		return "create_buffer"
	case 1:
		return "destroy"
	case 2:
		return "resize"
	}
	return "unknown"
}

// Bytes returns the pool's current contents. The slice is
// invalidated by a resize, so it must not be held across events.
func (p *ShmPool) Bytes() []byte {
	if p.pool == nil {
		return nil
	}
	return p.pool.Bytes()
}

func (p *ShmPool) Size() int32 {
	if p.pool == nil {
		return 0
	}
	return p.pool.Size()
}

func (p *ShmPool) ref() {
	p.refs++
}

func (p *ShmPool) unref() {
	p.refs--
	p.maybeClose()
}

func (p *ShmPool) maybeClose() {
	if p.destroyed && p.refs == 0 && p.pool != nil {
		p.pool.Close()
		p.pool = nil
	}
}

func (p *ShmPool) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // create_buffer
		id := msg.ReadUint()
		offset := msg.ReadInt()
		width := msg.ReadInt()
		height := msg.ReadInt()
		stride := msg.ReadInt()
		format := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}

		switch ShmFormat(format) {
		case ShmFormatArgb8888, ShmFormatXrgb8888:
		default:
			return Errorf(p, uint32(ShmErrorInvalidFormat), "unsupported format %v", format)
		}
		if width <= 0 || height <= 0 {
			return Errorf(p, uint32(ShmErrorInvalidStride), "invalid buffer size %vx%v", width, height)
		}
		if stride < width*4 {
			return Errorf(p, uint32(ShmErrorInvalidStride), "stride %v too small for width %v", stride, width)
		}
		if offset < 0 || int64(offset)+int64(stride)*int64(height) > int64(p.Size()) {
			return Errorf(p, uint32(ShmErrorInvalidStride), "buffer extends past the end of the pool")
		}

		buffer := &Buffer{
			client:  p.client,
			version: BufferVersion,
			pool:    p,
			offset:  offset,
			width:   width,
			height:  height,
			stride:  stride,
			format:  ShmFormat(format),
		}
		if err := p.client.AddWithID(buffer, id); err != nil {
			return err
		}
		p.ref()
		return nil

	case 1: // destroy
		if err := msg.Err(); err != nil {
			return err
		}
		p.client.Destroy(p)
		return nil

	case 2: // resize
		size := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		if size < p.Size() {
			return Errorf(p, uint32(ShmErrorInvalidFd), "shrinking a pool is not allowed")
		}
		if size == p.Size() {
			return nil
		}
		if err := p.pool.Resize(size); err != nil {
			return &ProtocolError{
				ObjectID: wire.DisplayID,
				Code:     uint32(DisplayErrorNoMemory),
				Message:  fmt.Sprintf("resize pool: %v", err),
			}
		}
		return nil
	}

	return wire.UnknownOpError{Interface: ShmPoolInterface, Type: "request", Op: msg.Op()}
}

// Buffer is a client-owned chunk of pixels inside a shared memory
// pool.
type Buffer struct {
	Listener BufferListener

	client  *Client
	id      uint32
	version uint32

	pool     *ShmPool
	offset   int32
	width    int32
	height   int32
	stride   int32
	format   ShmFormat
	released bool
}

type BufferListener interface {
	Destroy()
}

func (b *Buffer) Client() *Client { return b.client }
func (b *Buffer) ID() uint32      { return b.id }
func (b *Buffer) SetID(id uint32) { b.id = id }
func (b *Buffer) Version() uint32 { return b.version }

func (b *Buffer) Delete() {
	if !b.released {
		b.released = true
		b.pool.unref()
	}
}

func (b *Buffer) String() string {
	return fmt.Sprintf("%v@%v", BufferInterface, b.id)
}

func (b *Buffer) MethodName(op uint16) string {
	if op == 0 {
		return "destroy"
	}
	return "unknown"
}

func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, int(b.width), int(b.height))
}

func (b *Buffer) Stride() int32 {
	return b.stride
}

func (b *Buffer) Format() ShmFormat {
	return b.format
}

// Bytes returns the buffer's pixels, including any per-row padding
// implied by the stride. The slice aliases the pool mapping and must
// not be held across events.
func (b *Buffer) Bytes() []byte {
	data := b.pool.Bytes()
	if data == nil {
		return nil
	}
	return data[b.offset : int64(b.offset)+int64(b.stride)*int64(b.height)]
}

// Release tells the client that the compositor is done reading the
// buffer and that it may be reused.
func (b *Buffer) Release() {
	msg := wire.NewMessage(b, 0)
	msg.Method = "release"
	b.client.Enqueue(msg)
}

func (b *Buffer) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // destroy
		if err := msg.Err(); err != nil {
			return err
		}
		if b.Listener != nil {
			b.Listener.Destroy()
		}
		b.client.Destroy(b)
		return nil
	}

	return wire.UnknownOpError{Interface: BufferInterface, Type: "request", Op: msg.Op()}
}
