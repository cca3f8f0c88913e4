package wlclient

import (
	"os"

	"github.com/tfufuz1/NovaDE-sub008/shm"
	"github.com/tfufuz1/NovaDE-sub008/wire"
	"golang.org/x/sys/unix"
)

// Pixel formats from the wl_shm format enum.
const (
	FormatArgb8888 uint32 = 0
	FormatXrgb8888 uint32 = 1
)

// Shm is the wl_shm global.
type Shm struct {
	object

	// Formats records the advertised pixel formats.
	Formats []uint32
}

// CreatePool shares size bytes of file with the compositor. The
// compositor maps its own descriptor; file stays owned by the
// caller.
func (s *Shm) CreatePool(file *os.File, size int32) *ShmPool {
	p := &ShmPool{object: object{client: s.client, iface: "wl_shm_pool"}}
	s.client.add(p)

	msg := wire.NewMessage(s, 0)
	msg.Method = "create_pool"
	msg.Args = []any{p, file, size}
	msg.WriteUint(p.oid)
	msg.WriteFile(file)
	msg.WriteInt(size)
	s.client.send(msg)
	return p
}

// CreateARGBBuffer allocates a width by height wl_buffer backed by a
// fresh anonymous shared memory pool and returns it along with the
// mapped pixels. The pixels alias the mapping that the compositor
// reads, so writes become visible without further protocol.
func (s *Shm) CreateARGBBuffer(width, height int32) (*Buffer, []byte, error) {
	stride := width * 4
	size := stride * height

	file, err := shm.CreateSize(int64(size))
	if err != nil {
		return nil, nil, err
	}
	data, err := shm.MapShared(file, int(size), unix.PROT_READ|unix.PROT_WRITE)
	if err != nil {
		file.Close()
		return nil, nil, err
	}

	pool := s.CreatePool(file, size)
	pool.file = file
	pool.mapping = data
	buf := pool.CreateBuffer(0, width, height, stride, FormatArgb8888)
	return buf, data, nil
}

func (s *Shm) MethodName(op uint16) string {
	if op == 0 {
		return "format"
	}
	return "unknown"
}

func (s *Shm) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // format
		format := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		s.Formats = append(s.Formats, format)
		return nil
	}

	return wire.UnknownOpError{Interface: "wl_shm", Type: "event", Op: msg.Op()}
}

// ShmPool is a client-side handle to a shared memory pool.
type ShmPool struct {
	object

	file    *os.File
	mapping shm.Mmap
}

func (p *ShmPool) CreateBuffer(offset, width, height, stride int32, format uint32) *Buffer {
	b := &Buffer{object: object{client: p.client, iface: "wl_buffer"}, Pool: p}
	p.client.add(b)

	msg := wire.NewMessage(p, 0)
	msg.Method = "create_buffer"
	msg.Args = []any{b, offset, width, height, stride, format}
	msg.WriteUint(b.oid)
	msg.WriteInt(offset)
	msg.WriteInt(width)
	msg.WriteInt(height)
	msg.WriteInt(stride)
	msg.WriteUint(format)
	p.client.send(msg)
	return b
}

func (p *ShmPool) Destroy() {
	msg := wire.NewMessage(p, 1)
	msg.Method = "destroy"
	p.client.send(msg)
}

func (p *ShmPool) Resize(size int32) {
	msg := wire.NewMessage(p, 2)
	msg.Method = "resize"
	msg.Args = []any{size}
	msg.WriteInt(size)
	p.client.send(msg)
}

// Close releases the local mapping and backing file. It does not
// touch protocol state.
func (p *ShmPool) Close() {
	if p.mapping != nil {
		p.mapping.Unmap()
		p.mapping = nil
	}
	if p.file != nil {
		p.file.Close()
		p.file = nil
	}
}

func (p *ShmPool) MethodName(op uint16) string { return "unknown" }

func (p *ShmPool) Dispatch(msg *wire.MessageBuffer) error {
	return wire.UnknownOpError{Interface: "wl_shm_pool", Type: "event", Op: msg.Op()}
}

// Buffer is one wl_buffer carved out of a pool.
type Buffer struct {
	object

	Pool *ShmPool

	// Releases counts release events from the compositor.
	Releases int
}

func (b *Buffer) Destroy() {
	msg := wire.NewMessage(b, 0)
	msg.Method = "destroy"
	b.client.send(msg)
}

func (b *Buffer) MethodName(op uint16) string {
	if op == 0 {
		return "release"
	}
	return "unknown"
}

func (b *Buffer) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // release
		b.Releases++
		return nil
	}

	return wire.UnknownOpError{Interface: "wl_buffer", Type: "event", Op: msg.Op()}
}
