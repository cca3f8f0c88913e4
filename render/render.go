// Package render composes client buffers into output framebuffers.
package render

import (
	"fmt"
	"image"
	"image/color"

	"deedles.dev/ximage"
)

// Transform mirrors the wl_output transform enum. It names the
// transform the client already applied to the buffer contents; the
// renderer applies the inverse when importing.
type Transform uint32

const (
	TransformNormal     Transform = 0
	Transform90         Transform = 1
	Transform180        Transform = 2
	Transform270        Transform = 3
	TransformFlipped    Transform = 4
	TransformFlipped90  Transform = 5
	TransformFlipped180 Transform = 6
	TransformFlipped270 Transform = 7
)

// Swapped reports whether the transform exchanges width and height.
func (t Transform) Swapped() bool {
	switch t {
	case Transform90, Transform270, TransformFlipped90, TransformFlipped270:
		return true
	}
	return false
}

// Source describes client pixels to import. Pix is tightly rowed at
// Stride bytes covering Bounds; Opaque marks formats without alpha.
// Alias permits the renderer to keep sampling Pix in place instead of
// copying; the caller must then keep Pix valid until the texture is
// replaced or the renderer reports it released.
type Source struct {
	Pix       []byte
	Stride    int
	Bounds    image.Rectangle
	Opaque    bool
	Transform Transform
	Alias     bool
}

// Texture is an imported buffer, upright and densely packed. Bounds
// is the post-transform pixel size. Aliased reports whether the
// texture still reads the source memory it was imported from.
type Texture interface {
	Bounds() image.Rectangle
	Opaque() bool
	Aliased() bool
}

// Node is one textured layer of a frame. Dst places it in output
// pixel coordinates; a Dst size different from the texture size
// scales it.
type Node struct {
	Texture Texture
	Dst     image.Rectangle
}

// Renderer is the seam between the scene and the pixels. Import
// detaches the texture from the client memory it came from unless the
// source allows aliasing; a detached buffer can be released
// immediately, an aliased one only once no frame reads it anymore.
type Renderer interface {
	Import(src Source) Texture
	// Compose draws nodes back to front into fb, touching only the
	// damage rectangles. Damaged areas are cleared to background
	// first.
	Compose(fb *ximage.FormatImage, background color.Color, nodes []Node, damage []image.Rectangle)
}

// New returns the renderer selected by name. An empty name picks the
// software renderer.
func New(name string) (Renderer, error) {
	switch name {
	case "", "software":
		return NewSoftware(), nil
	}
	return nil, fmt.Errorf("unknown renderer %q", name)
}
