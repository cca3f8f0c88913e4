package comp

import (
	"github.com/tfufuz1/NovaDE-sub008/internal/set"
	wl "github.com/tfufuz1/NovaDE-sub008/server"
)

// attachedBuffer tracks one client buffer from commit until the
// compositor stops reading its pixels. refs counts committed
// surfaces plus in-flight frames; release fires when it reaches
// zero. Copying renderers detach at import, so their buffers are
// released early and refs only gates the record's lifetime.
type attachedBuffer struct {
	comp     *Compositor
	res      *wl.Buffer
	refs     int
	released bool
	gone     bool
	users    set.Set[*surface]
}

// attach refs the tracking record for buf, creating it on first
// sight. Every attach starts a new read cycle, so the release flag
// rearms.
func (c *Compositor) attach(buf *wl.Buffer) *attachedBuffer {
	ab := c.attached[buf]
	if ab == nil {
		ab = &attachedBuffer{comp: c, res: buf, users: make(set.Set[*surface])}
		buf.Listener = ab
		c.attached[buf] = ab
	}
	ab.refs++
	ab.released = false
	return ab
}

func (ab *attachedBuffer) ref() { ab.refs++ }

func (ab *attachedBuffer) unref() {
	ab.refs--
	if ab.refs > 0 {
		return
	}
	delete(ab.comp.attached, ab.res)
	ab.release()
}

// release sends wl_buffer.release at most once per read cycle.
func (ab *attachedBuffer) release() {
	if ab.released || ab.gone {
		return
	}
	ab.released = true
	ab.res.Release()
}

// Destroy implements wl.BufferListener. Surfaces still showing the
// buffer copy their textures out now, while the backing pool bytes
// are guaranteed valid.
func (ab *attachedBuffer) Destroy() {
	for s := range ab.users {
		s.detachTexture()
	}
	ab.gone = true
	delete(ab.comp.attached, ab.res)
}
