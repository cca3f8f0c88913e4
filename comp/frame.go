package comp

import (
	"image"
	"time"

	"github.com/tfufuz1/NovaDE-sub008/internal/xslices"
	"github.com/tfufuz1/NovaDE-sub008/render"
	"golang.org/x/image/colornames"
)

// scheduler paces redraws to each output's refresh cadence. Damage
// marks an output due; the output renders once its frame period has
// passed, however many commits arrived in between.
type scheduler struct {
	comp  *Compositor
	timer *time.Timer
	due   []*Output
}

func newScheduler(c *Compositor) *scheduler {
	t := time.NewTimer(time.Hour)
	if !t.Stop() {
		<-t.C
	}
	return &scheduler{comp: c, timer: t}
}

// schedule marks out as needing a frame.
func (sc *scheduler) schedule(out *Output) {
	if out.scheduled {
		return
	}
	out.scheduled = true
	sc.due = append(sc.due, out)
	sc.rearm()
}

func (sc *scheduler) forget(out *Output) {
	out.scheduled = false
	sc.due = xslices.Remove(sc.due, out)
}

// rearm points the timer at the earliest deadline.
func (sc *scheduler) rearm() {
	if len(sc.due) == 0 {
		sc.timer.Stop()
		return
	}
	now := time.Now()
	wait := time.Duration(1<<63 - 1)
	for _, out := range sc.due {
		w := out.lastFrame.Add(out.period()).Sub(now)
		if w < 0 {
			w = 0
		}
		if w < wait {
			wait = w
		}
	}
	sc.timer.Reset(wait)
}

// fire renders every due output whose period has elapsed and rearms
// for the rest.
func (sc *scheduler) fire(now time.Time) {
	due := sc.due
	sc.due = sc.due[:0]
	for _, out := range due {
		if now.Before(out.lastFrame.Add(out.period())) {
			sc.due = append(sc.due, out)
			continue
		}
		out.scheduled = false
		sc.comp.renderOutput(out, now)
	}
	sc.rearm()
}

// renderOutput composes one frame. Aliased textures pin their
// buffers for the duration; frame callbacks complete afterwards with
// the frame's timestamp.
func (c *Compositor) renderOutput(out *Output, now time.Time) {
	fb := out.bo.Framebuffer()

	var damage []image.Rectangle
	if out.full {
		damage = append(damage, fb.Rect)
	} else {
		for _, r := range out.damage.Rects() {
			damage = append(damage, r.Sub(out.position))
		}
	}
	out.damage.Clear()
	out.full = false

	var (
		nodes     []render.Node
		callbacks []*surface
		pinned    []*attachedBuffer
	)
	for _, s := range c.visibleSurfaces() {
		if !s.extent().Overlaps(out.box()) {
			continue
		}
		if s.tex != nil {
			nodes = append(nodes, render.Node{Texture: s.tex, Dst: s.extent().Sub(out.position)})
			if s.tex.Aliased() && s.buf != nil {
				s.buf.ref()
				pinned = append(pinned, s.buf)
			}
		}
		if len(s.callbacks) > 0 {
			callbacks = append(callbacks, s)
		}
	}
	if cur, ok := c.seat.cursorNode(out); ok {
		nodes = append(nodes, cur)
	}

	if len(damage) > 0 {
		c.renderer.Compose(fb, colornames.Darkslategray, nodes, damage)
		if err := out.bo.Present(); err != nil {
			c.logger.Error("present failed", "output", out.bo.Name(), "err", err)
		}
	}
	out.lastFrame = now

	ts := c.stamp(now)
	for _, s := range callbacks {
		cbs := s.callbacks
		s.callbacks = nil
		for _, cb := range cbs {
			cb.Done(ts)
		}
	}
	for _, ab := range pinned {
		ab.unref()
	}
}
