package render

import (
	"image"
	"image/color"

	"deedles.dev/ximage"
	"golang.org/x/image/draw"
)

// Software is a CPU renderer over ximage framebuffers. It is the
// only renderer that works everywhere and the default.
type Software struct{}

func NewSoftware() *Software {
	return &Software{}
}

type softwareTexture struct {
	img     *ximage.FormatImage
	opaque  bool
	aliased bool
}

func (t *softwareTexture) Bounds() image.Rectangle { return t.img.Rect }
func (t *softwareTexture) Opaque() bool            { return t.opaque }
func (t *softwareTexture) Aliased() bool           { return t.aliased }

func (r *Software) Import(src Source) Texture {
	bw, bh := src.Bounds.Dx(), src.Bounds.Dy()
	w, h := bw, bh
	if src.Transform.Swapped() {
		w, h = bh, bw
	}

	if src.Alias && src.Transform == TransformNormal && src.Stride == 4*bw {
		img := &ximage.FormatImage{
			Format: ximage.ARGB8888,
			Rect:   image.Rect(0, 0, w, h),
			Pix:    src.Pix,
		}
		return &softwareTexture{img: img, opaque: src.Opaque, aliased: true}
	}

	img := &ximage.FormatImage{
		Format: ximage.ARGB8888,
		Rect:   image.Rect(0, 0, w, h),
		Pix:    make([]byte, 4*w*h),
	}

	if src.Transform == TransformNormal {
		for y := 0; y < h; y++ {
			row := src.Pix[y*src.Stride : y*src.Stride+4*w]
			copy(img.Pix[y*4*w:], row)
		}
		return &softwareTexture{img: img, opaque: src.Opaque}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sx, sy := bufferAt(src.Transform, w, h, x, y)
			copy(img.Pix[(y*w+x)*4:], src.Pix[sy*src.Stride+sx*4:sy*src.Stride+sx*4+4])
		}
	}
	return &softwareTexture{img: img, opaque: src.Opaque}
}

// bufferAt maps an upright pixel back to its position in the client
// buffer, undoing the client's transform.
func bufferAt(t Transform, w, h, x, y int) (int, int) {
	switch t {
	case Transform90:
		return y, w - 1 - x
	case Transform180:
		return w - 1 - x, h - 1 - y
	case Transform270:
		return h - 1 - y, x
	case TransformFlipped:
		return w - 1 - x, y
	case TransformFlipped90:
		return y, x
	case TransformFlipped180:
		return x, h - 1 - y
	case TransformFlipped270:
		return h - 1 - y, w - 1 - x
	}
	return x, y
}

func (r *Software) Compose(fb *ximage.FormatImage, background color.Color, nodes []Node, damage []image.Rectangle) {
	for _, d := range damage {
		d = d.Intersect(fb.Rect)
		if d.Empty() {
			continue
		}
		fillRect(fb, d, background)
		for _, n := range nodes {
			drawNode(fb, n, d)
		}
	}
}

func drawNode(fb *ximage.FormatImage, n Node, clip image.Rectangle) {
	t, ok := n.Texture.(*softwareTexture)
	if !ok {
		return
	}
	dst := n.Dst.Intersect(clip)
	if dst.Empty() {
		return
	}

	op := draw.Over
	if t.opaque {
		op = draw.Src
	}

	tb := t.img.Rect
	if n.Dst.Dx() == tb.Dx() && n.Dst.Dy() == tb.Dy() {
		sp := tb.Min.Add(dst.Min.Sub(n.Dst.Min))
		draw.Draw(fb, dst, t.img, sp, op)
		return
	}

	// The node is scaled. Map the clipped destination back onto the
	// matching source window and let the scaler fill it.
	src := image.Rect(
		tb.Min.X+(dst.Min.X-n.Dst.Min.X)*tb.Dx()/n.Dst.Dx(),
		tb.Min.Y+(dst.Min.Y-n.Dst.Min.Y)*tb.Dy()/n.Dst.Dy(),
		tb.Min.X+(dst.Max.X-n.Dst.Min.X)*tb.Dx()/n.Dst.Dx(),
		tb.Min.Y+(dst.Max.Y-n.Dst.Min.Y)*tb.Dy()/n.Dst.Dy(),
	)
	draw.ApproxBiLinear.Scale(fb, dst, t.img, src.Intersect(tb), op, nil)
}

func fillRect(img draw.Image, r image.Rectangle, c color.Color) {
	r = r.Canon()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Set(x, y, c)
		}
	}
}
