// Package cursor provides the compositor's own pointer images,
// loaded from XCursor themes with a built-in fallback.
package cursor

import (
	"image"
	"image/color"

	"deedles.dev/ximage"
	"deedles.dev/ximage/xcursor"
)

const defaultSize = 24

// Image is one pointer image with its hotspot.
type Image struct {
	Image *ximage.FormatImage
	Hot   image.Point
}

// Theme is a loaded XCursor theme pinned to a nominal size.
type Theme struct {
	theme *xcursor.Theme
	size  int
}

// LoadTheme loads the named theme, following inheritance. An empty
// name loads the default theme. size selects the nominal cursor
// size; zero or negative picks a sensible one.
func LoadTheme(name string, size int) (*Theme, error) {
	if size <= 0 {
		size = defaultSize
	}
	theme, err := xcursor.LoadTheme(name)
	if err != nil {
		return nil, err
	}
	return &Theme{theme: theme, size: size}, nil
}

// Cursor returns the first frame of the named cursor at the theme's
// size.
func (t *Theme) Cursor(name string) (Image, bool) {
	c, ok := t.theme.Cursors[name]
	if !ok {
		return Image{}, false
	}
	frames := c.Images[c.BestSize(t.size)]
	if len(frames) == 0 {
		return Image{}, false
	}
	f := frames[0]
	return Image{Image: f.Image, Hot: f.Hot}, true
}

// Default returns the standard arrow pointer, falling back to the
// built-in one when the theme has nothing suitable. It works on a
// nil theme.
func (t *Theme) Default() Image {
	if t != nil {
		for _, name := range []string{"left_ptr", "default", "arrow"} {
			if img, ok := t.Cursor(name); ok {
				return img
			}
		}
	}
	return Fallback()
}

var fallbackMask = []string{
	"#          ",
	"##         ",
	"#+#        ",
	"#++#       ",
	"#+++#      ",
	"#++++#     ",
	"#+++++#    ",
	"#++++++#   ",
	"#+++++++#  ",
	"#++++++++# ",
	"#+++++#####",
	"#++#++#    ",
	"#+# #++#   ",
	"##  #++#   ",
	"#    #++#  ",
	"     #++#  ",
	"      ##   ",
}

// Fallback returns a small built-in arrow for systems without any
// cursor theme installed.
func Fallback() Image {
	h := len(fallbackMask)
	w := len(fallbackMask[0])
	img := &ximage.FormatImage{
		Format: ximage.ARGB8888,
		Rect:   image.Rect(0, 0, w, h),
		Pix:    make([]byte, 4*w*h),
	}
	for y, row := range fallbackMask {
		for x := 0; x < len(row); x++ {
			switch row[x] {
			case '#':
				img.Set(x, y, color.RGBA{A: 0xFF})
			case '+':
				img.Set(x, y, color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF})
			}
		}
	}
	return Image{Image: img}
}
