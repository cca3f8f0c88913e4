package backend

import (
	"image"

	"deedles.dev/ximage"
)

// OutputConfig describes one synthesized output.
type OutputConfig struct {
	Name    string
	Width   int
	Height  int
	Refresh int32 // mHz
	Scale   int32
}

// DefaultOutput is the output a backend creates when none are
// configured.
var DefaultOutput = OutputConfig{
	Name:    "HEADLESS-1",
	Width:   1920,
	Height:  1080,
	Refresh: 60000,
	Scale:   1,
}

// Output is a backend display. The framebuffer belongs to the
// compositor between Present calls.
type Output struct {
	name    string
	size    image.Point
	refresh int32
	scale   int32
	fb      *ximage.FormatImage

	frames uint64
}

func newOutput(cfg OutputConfig) *Output {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = DefaultOutput.Width, DefaultOutput.Height
	}
	if cfg.Refresh <= 0 {
		cfg.Refresh = DefaultOutput.Refresh
	}
	if cfg.Scale <= 0 {
		cfg.Scale = 1
	}
	if cfg.Name == "" {
		cfg.Name = DefaultOutput.Name
	}

	return &Output{
		name:    cfg.Name,
		size:    image.Pt(cfg.Width, cfg.Height),
		refresh: cfg.Refresh,
		scale:   cfg.Scale,
		fb: &ximage.FormatImage{
			Format: ximage.ARGB8888,
			Rect:   image.Rect(0, 0, cfg.Width, cfg.Height),
			Pix:    make([]byte, 4*cfg.Width*cfg.Height),
		},
	}
}

func (o *Output) Name() string { return o.name }

// Size is the output's pixel size.
func (o *Output) Size() image.Point { return o.size }

// Refresh is the mode's refresh rate in mHz.
func (o *Output) Refresh() int32 { return o.refresh }

func (o *Output) Scale() int32 { return o.scale }

// Framebuffer is the image frames are composed into.
func (o *Output) Framebuffer() *ximage.FormatImage { return o.fb }

// Present hands the framebuffer's current contents to the display.
// For a headless output that only means counting the frame;
// completion is immediate.
func (o *Output) Present() error {
	o.frames++
	return nil
}

// Frames reports how many frames were presented.
func (o *Output) Frames() uint64 { return o.frames }
