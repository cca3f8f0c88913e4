// Package region implements a simple rectangle-set algebra. A Region
// is a set of non-overlapping rectangles that supports union,
// subtraction, and intersection, which is enough bookkeeping for
// damage accumulation and input masks.
package region

import "image"

// maxRects caps how finely a Region is allowed to fragment. Once a
// Region crosses the cap it collapses to its bounding box, trading
// precision for a bounded cost per operation.
const maxRects = 64

type Region struct {
	rects []image.Rectangle
}

// Rect returns a Region covering exactly r.
func Rect(r image.Rectangle) Region {
	var rg Region
	rg.Add(r)
	return rg
}

// Rects returns the rectangles that make up rg. The returned slice is
// shared with rg and must not be modified.
func (rg Region) Rects() []image.Rectangle {
	return rg.rects
}

func (rg Region) Empty() bool {
	return len(rg.rects) == 0
}

func (rg Region) Bounds() (b image.Rectangle) {
	for _, r := range rg.rects {
		b = b.Union(r)
	}
	return b
}

func (rg Region) Contains(p image.Point) bool {
	for _, r := range rg.rects {
		if p.In(r) {
			return true
		}
	}
	return false
}

func (rg Region) Overlaps(r image.Rectangle) bool {
	for _, c := range rg.rects {
		if c.Overlaps(r) {
			return true
		}
	}
	return false
}

func (rg Region) Clone() Region {
	return Region{rects: append([]image.Rectangle(nil), rg.rects...)}
}

func (rg *Region) Clear() {
	rg.rects = rg.rects[:0]
}

// Add grows rg to also cover r.
func (rg *Region) Add(r image.Rectangle) {
	r = r.Canon()
	if r.Empty() {
		return
	}

	pieces := []image.Rectangle{r}
	for _, c := range rg.rects {
		pieces = subtractAll(pieces, c)
		if len(pieces) == 0 {
			return
		}
	}

	rg.rects = append(rg.rects, pieces...)
	rg.cap()
}

// AddRegion grows rg to also cover everything in o.
func (rg *Region) AddRegion(o Region) {
	for _, r := range o.rects {
		rg.Add(r)
	}
}

// Subtract removes r's area from rg.
func (rg *Region) Subtract(r image.Rectangle) {
	r = r.Canon()
	if r.Empty() {
		return
	}

	rg.rects = subtractAll(rg.rects, r)
}

// Intersect clips rg to r.
func (rg *Region) Intersect(r image.Rectangle) {
	out := rg.rects[:0]
	for _, c := range rg.rects {
		if i := c.Intersect(r); !i.Empty() {
			out = append(out, i)
		}
	}
	rg.rects = out
}

// Translate moves every rectangle in rg by d.
func (rg *Region) Translate(d image.Point) {
	for i := range rg.rects {
		rg.rects[i] = rg.rects[i].Add(d)
	}
}

func (rg *Region) cap() {
	if len(rg.rects) > maxRects {
		b := rg.Bounds()
		rg.rects = append(rg.rects[:0], b)
	}
}

// subtractAll removes cut from every rectangle in rects, returning
// the surviving pieces. The input slice is reused.
func subtractAll(rects []image.Rectangle, cut image.Rectangle) []image.Rectangle {
	out := rects[:0]
	for _, r := range rects {
		out = subtract(out, r, cut)
	}
	return out
}

// subtract appends to out the parts of r not covered by cut. The
// split produces at most four rectangles, one per side of cut.
func subtract(out []image.Rectangle, r, cut image.Rectangle) []image.Rectangle {
	i := r.Intersect(cut)
	if i.Empty() {
		return append(out, r)
	}
	if r == i {
		return out
	}

	if r.Min.Y < i.Min.Y {
		out = append(out, image.Rect(r.Min.X, r.Min.Y, r.Max.X, i.Min.Y))
	}
	if i.Max.Y < r.Max.Y {
		out = append(out, image.Rect(r.Min.X, i.Max.Y, r.Max.X, r.Max.Y))
	}
	if r.Min.X < i.Min.X {
		out = append(out, image.Rect(r.Min.X, i.Min.Y, i.Min.X, i.Max.Y))
	}
	if i.Max.X < r.Max.X {
		out = append(out, image.Rect(i.Max.X, i.Min.Y, r.Max.X, i.Max.Y))
	}
	return out
}
