package comp

import (
	"image"

	"github.com/tfufuz1/NovaDE-sub008/internal/region"
)

// damageSurface records surface-local damage on the outputs the
// surface shows on. Damage hidden behind opaque content stacked
// above contributes nothing.
func (c *Compositor) damageSurface(s *surface, dmg region.Region) {
	if dmg.Empty() {
		return
	}
	abs := dmg.Clone()
	abs.Translate(s.pos())

	list := c.visibleSurfaces()
	if i := lastIndex(list, s); i >= 0 {
		for _, t := range list[i+1:] {
			for _, r := range t.opaqueArea().Rects() {
				abs.Subtract(r)
			}
			if abs.Empty() {
				return
			}
		}
	}

	for _, r := range abs.Rects() {
		c.damageArea(r)
	}
}

func lastIndex(list []*surface, s *surface) int {
	for i := len(list) - 1; i >= 0; i-- {
		if list[i] == s {
			return i
		}
	}
	return -1
}

// damageArea records a raw global rectangle on every output it
// touches.
func (c *Compositor) damageArea(r image.Rectangle) {
	if r.Empty() {
		return
	}
	for _, out := range c.space.outputs.All() {
		clipped := r.Intersect(out.box())
		if clipped.Empty() {
			continue
		}
		out.damage.Add(clipped)
		c.sched.schedule(out)
	}
}

// damageAll redraws the whole output next frame.
func (c *Compositor) damageAll(out *Output) {
	out.full = true
	c.sched.schedule(out)
}
