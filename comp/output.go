package comp

import (
	"fmt"
	"image"
	"time"

	"github.com/tfufuz1/NovaDE-sub008/backend"
	"github.com/tfufuz1/NovaDE-sub008/internal/handle"
	"github.com/tfufuz1/NovaDE-sub008/internal/region"
	wl "github.com/tfufuz1/NovaDE-sub008/server"
	"github.com/tfufuz1/NovaDE-sub008/wire"
)

// Output is one backend output placed in the global coordinate
// space. It owns the damage that drives redraws and the layer
// surfaces anchored to it.
type Output struct {
	comp   *Compositor
	bo     *backend.Output
	global *global
	handle handle.Handle

	position image.Point
	scale    int32

	// layers holds the output's layer surfaces in creation order;
	// bands are filtered at arrange and render time.
	layers []handle.Handle

	// usable is the box left for windows after exclusive zones.
	usable image.Rectangle

	damage    region.Region
	full      bool
	scheduled bool
	lastFrame time.Time
}

// box is the output's full area in global coordinates.
func (out *Output) box() image.Rectangle {
	return image.Rectangle{Max: out.bo.Size()}.Add(out.position)
}

func (out *Output) String() string {
	return out.bo.Name()
}

// period is the nominal frame duration.
func (out *Output) period() time.Duration {
	refresh := out.bo.Refresh()
	if refresh <= 0 {
		return time.Second / 60
	}
	return time.Second * 1000 / time.Duration(refresh)
}

// outputAdded wires up a new backend output: place it, advertise the
// global, and schedule a first frame.
func (c *Compositor) outputAdded(bo *backend.Output) {
	pos := image.Point{}
	for _, other := range c.space.outputs.All() {
		if r := other.box().Max.X; r > pos.X {
			pos.X = r
		}
	}

	out := &Output{
		comp:     c,
		bo:       bo,
		position: pos,
		scale:    max(bo.Scale(), 1),
	}
	out.usable = out.box()
	out.handle = c.space.outputs.Insert(out)

	out.global = c.addGlobal(wl.OutputInterface, wl.OutputVersion, func(sess *session, id wire.NewID) {
		res := wl.BindOutput(sess.client, id)
		sess.outputs[out] = append(sess.outputs[out], res)
		out.describe(res)
		for _, s := range sess.surfaces {
			if s.mapped && s.outputs.Has(out) {
				s.res.Enter(res)
			}
		}
	})

	c.space.arrange(c)
	for _, sess := range c.sessions {
		for _, s := range sess.surfaces {
			c.updateOutputs(s)
		}
	}
	c.damageAll(out)
	c.logger.Info("output added", "name", bo.Name(), "size", bo.Size(), "position", pos)
}

// describe sends the full description of the output to one bound
// resource.
func (out *Output) describe(res *wl.Output) {
	size := out.bo.Size()
	// assume ~96 dpi for the advertised physical size
	physW := int32(float64(size.X) * 25.4 / 96)
	physH := int32(float64(size.Y) * 25.4 / 96)
	res.Geometry(int32(out.position.X), int32(out.position.Y), physW, physH, wl.OutputSubpixelUnknown, "novawc", out.bo.Name(), wl.OutputTransformNormal)
	res.Mode(wl.OutputModeCurrent|wl.OutputModePreferred, int32(size.X), int32(size.Y), out.bo.Refresh())
	res.Scale(out.scale)
	res.Name(out.bo.Name())
	res.Description(fmt.Sprintf("novawc %v output", out.bo.Name()))
	res.Done()
}

// outputRemoved drops an output. Its layer surfaces close, its
// windows move elsewhere, and the global goes away.
func (c *Compositor) outputRemoved(bo *backend.Output) {
	var out *Output
	for _, o := range c.space.outputs.All() {
		if o.bo == bo {
			out = o
			break
		}
	}
	if out == nil {
		return
	}

	for _, h := range out.layers {
		if ls, ok := c.space.layers.Get(h); ok {
			c.space.layers.Remove(h)
			ls.handle = handle.Handle{}
			ls.outputGone()
		}
	}
	out.layers = nil

	c.space.outputs.Remove(out.handle)
	c.sched.forget(out)

	fallback := c.space.preferredOutput(c)
	for _, w := range c.space.windows.All() {
		if w.output == out {
			w.output = fallback
		}
		if w.fullscreenOutput == out {
			w.fullscreenOutput = nil
		}
	}

	c.removeGlobal(out.global)
	for _, sess := range c.sessions {
		for _, s := range sess.surfaces {
			s.leaveOutput(out)
		}
		delete(sess.outputs, out)
	}

	c.space.arrange(c)
	for _, o := range c.space.outputs.All() {
		c.damageAll(o)
	}
	c.logger.Info("output removed", "name", bo.Name())
}
