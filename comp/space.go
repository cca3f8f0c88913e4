package comp

import (
	"image"

	"github.com/tfufuz1/NovaDE-sub008/internal/handle"
	"github.com/tfufuz1/NovaDE-sub008/internal/xslices"
	"github.com/tfufuz1/NovaDE-sub008/layer"
)

// Space owns the window stack, the layer surfaces, and the outputs,
// and decides where everything goes.
type Space struct {
	layout  string
	windows *handle.Arena[*window]
	layers  *handle.Arena[*layerSurface]
	outputs *handle.Arena[*Output]

	// stack is the raise order, bottom to top.
	stack []handle.Handle
}

func newSpace(layout string) *Space {
	if layout == "" {
		layout = "floating"
	}
	return &Space{
		layout:  layout,
		windows: handle.NewArena[*window](),
		layers:  handle.NewArena[*layerSurface](),
		outputs: handle.NewArena[*Output](),
	}
}

// preferredOutput is where new windows go: the output under the
// pointer, or failing that the first one.
func (sp *Space) preferredOutput(c *Compositor) *Output {
	if out := sp.outputAt(c.seat.pointerPos()); out != nil {
		return out
	}
	outs := sp.outputs.All()
	if len(outs) == 0 {
		return nil
	}
	return outs[0]
}

func (sp *Space) outputAt(p image.Point) *Output {
	for _, out := range sp.outputs.All() {
		if p.In(out.box()) {
			return out
		}
	}
	return nil
}

// raise moves w to the top of the stack.
func (sp *Space) raise(w *window) {
	if w.handle.IsZero() {
		return
	}
	sp.stack = xslices.MoveToBack(sp.stack, w.handle)
}

// top returns the highest focusable window.
func (sp *Space) top() *window {
	for i := len(sp.stack) - 1; i >= 0; i-- {
		if w, ok := sp.windows.Get(sp.stack[i]); ok && !w.minimized {
			return w
		}
	}
	return nil
}

// arrange recomputes every placement: layer surfaces claim their
// edges and exclusive zones first, then windows fill what is left.
// Position changes apply immediately; size changes are proposed and
// take effect when the client commits.
func (sp *Space) arrange(c *Compositor) {
	for _, out := range sp.outputs.All() {
		c.arrangeLayers(out)
	}
	for _, out := range sp.outputs.All() {
		sp.arrangeWindows(c, out)
	}
}

// arrangeLayers lays out one output's layer surfaces and recomputes
// its usable box. Bands claim exclusive space from the most
// assertive down, overlay first.
func (c *Compositor) arrangeLayers(out *Output) {
	usable := out.box()
	for _, band := range []layer.Layer{layer.LayerOverlay, layer.LayerTop, layer.LayerBottom, layer.LayerBackground} {
		for _, h := range out.layers {
			ls, ok := c.space.layers.Get(h)
			if !ok || ls.state.layer != band {
				continue
			}
			st := ls.state

			base := usable
			if st.exclusive < 0 {
				base = out.box()
			}
			box := layerBox(base, st.size, st.anchor, st.margin)

			if box.Min != ls.bounds.Min && ls.s.mapped {
				c.damageArea(ls.s.extent())
			}
			old := ls.bounds
			ls.bounds = box
			if old != box && ls.s.mapped {
				c.damageArea(ls.s.extent())
				c.updateOutputs(ls.s)
			}

			if want := box.Size(); want != ls.s.size && !ls.sizeProposed(want) {
				ls.sendConfigure(want)
			}

			usable = exclusiveInset(usable, st)
		}
	}
	if out.usable != usable {
		out.usable = usable
		// exclusive zones moved, so maximized and tiled windows
		// need new sizes
		c.space.arrangeWindows(c, out)
	}
}

// sizeProposed reports whether size is already the last one sent.
func (ls *layerSurface) sizeProposed(size image.Point) bool {
	return len(ls.outstanding) > 0 && ls.outstanding[len(ls.outstanding)-1].size == size
}

func (sp *Space) arrangeWindows(c *Compositor, out *Output) {
	var ws []*window
	for _, w := range sp.windows.All() {
		if w.output == out && !w.minimized {
			ws = append(ws, w)
		}
	}
	if len(ws) == 0 {
		return
	}

	if sp.layout == "tiling" {
		sp.tile(c, out, ws)
		return
	}

	for _, w := range ws {
		sp.place(c, w, sp.targetFor(w, out))
	}
}

// targetFor picks a window's box from its committed state.
func (sp *Space) targetFor(w *window, out *Output) image.Rectangle {
	switch {
	case w.state.fullscreen:
		if w.fullscreenOutput != nil {
			return w.fullscreenOutput.box()
		}
		return out.box()
	case w.state.maximized:
		return out.usable
	default:
		return w.floatBounds
	}
}

// tile splits the usable area into a master column and a stack
// column. Fullscreen windows escape the tiling and cover the whole
// output.
func (sp *Space) tile(c *Compositor, out *Output, ws []*window) {
	tiled := make([]*window, 0, len(ws))
	for _, w := range ws {
		if w.state.fullscreen {
			sp.place(c, w, sp.targetFor(w, out))
			continue
		}
		tiled = append(tiled, w)
	}

	area := out.usable
	switch len(tiled) {
	case 0:
	case 1:
		sp.place(c, tiled[0], area)
	default:
		split := area.Min.X + area.Dx()/2
		master := image.Rect(area.Min.X, area.Min.Y, split, area.Max.Y)
		sp.place(c, tiled[0], master)

		rest := tiled[1:]
		h := area.Dy() / len(rest)
		for i, w := range rest {
			top := area.Min.Y + i*h
			bottom := top + h
			if i == len(rest)-1 {
				bottom = area.Max.Y
			}
			sp.place(c, w, image.Rect(split, top, area.Max.X, bottom))
		}
	}
}

// place moves w to target now and proposes target's size if the
// client isn't there yet.
func (sp *Space) place(c *Compositor, w *window, target image.Rectangle) {
	if target.Empty() {
		return
	}

	newBounds := image.Rectangle{Min: target.Min, Max: target.Min.Add(w.geometry().Size())}
	if newBounds != w.bounds {
		if w.s.mapped {
			c.damageArea(w.s.extent())
		}
		w.bounds = newBounds
		if w.s.mapped {
			c.damageArea(w.s.extent())
			c.updateOutputs(w.s)
		}
	}

	if want := target.Size(); want != w.geometry().Size() && !w.sizeProposed(want) {
		w.want.size = want
		w.sendConfigure()
	}
}

// sizeProposed reports whether size is already the last one sent.
func (w *window) sizeProposed(size image.Point) bool {
	return len(w.outstanding) > 0 && w.outstanding[len(w.outstanding)-1].state.size == size
}

// sizeFor predicts the box a state change will give w, for the
// configure that proposes the change.
func (sp *Space) sizeFor(w *window, st windowState) image.Point {
	out := w.output
	if out == nil {
		return w.geometry().Size()
	}
	switch {
	case st.fullscreen:
		if w.fullscreenOutput != nil {
			return w.fullscreenOutput.box().Size()
		}
		return out.box().Size()
	case st.maximized:
		return out.usable.Size()
	case sp.layout == "tiling":
		return w.bounds.Size()
	case !w.floatBounds.Empty():
		return w.floatBounds.Size()
	default:
		return image.Point{}
	}
}

// visibleSurfaces returns every surface that composites, bottom to
// top: background and bottom layers, then windows with their popups,
// then top and overlay layers.
func (c *Compositor) visibleSurfaces() []*surface {
	var list []*surface

	add := func(ls *layerSurface) { list = appendTree(list, ls.s) }
	c.eachLayer(add, layer.LayerBackground, layer.LayerBottom)
	for _, h := range c.space.stack {
		w, ok := c.space.windows.Get(h)
		if !ok || w.minimized {
			continue
		}
		list = appendTree(list, w.s)
	}
	c.eachLayer(add, layer.LayerTop, layer.LayerOverlay)

	return list
}

func (c *Compositor) eachLayer(fn func(*layerSurface), bands ...layer.Layer) {
	for _, band := range bands {
		for _, out := range c.space.outputs.All() {
			for _, h := range out.layers {
				if ls, ok := c.space.layers.Get(h); ok && ls.state.layer == band {
					fn(ls)
				}
			}
		}
	}
}

// appendTree walks a surface, its subsurfaces, and its popups in
// paint order.
func appendTree(list []*surface, s *surface) []*surface {
	if !s.mapped {
		return list
	}
	for _, el := range s.order {
		if el == s {
			list = append(list, s)
		} else if el.mapped {
			list = appendTree(list, el)
		}
	}
	for _, p := range s.popups {
		list = appendTree(list, p.s)
	}
	return list
}

// surfaceAt finds the topmost surface whose input region contains p.
func (c *Compositor) surfaceAt(p image.Point) *surface {
	list := c.visibleSurfaces()
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].acceptsInput(p) {
			return list[i]
		}
	}
	return nil
}
