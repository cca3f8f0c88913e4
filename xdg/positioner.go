package xdg

import (
	"fmt"
	"image"

	wl "github.com/tfufuz1/NovaDE-sub008/server"
	"github.com/tfufuz1/NovaDE-sub008/wire"
)

const (
	PositionerInterface = "xdg_positioner"
	PositionerVersion   = WmBaseVersion
)

type PositionerError uint32

const PositionerErrorInvalidInput PositionerError = 0

type Anchor uint32

const (
	AnchorNone        Anchor = 0
	AnchorTop         Anchor = 1
	AnchorBottom      Anchor = 2
	AnchorLeft        Anchor = 3
	AnchorRight       Anchor = 4
	AnchorTopLeft     Anchor = 5
	AnchorBottomLeft  Anchor = 6
	AnchorTopRight    Anchor = 7
	AnchorBottomRight Anchor = 8
)

type Gravity uint32

const (
	GravityNone        Gravity = 0
	GravityTop         Gravity = 1
	GravityBottom      Gravity = 2
	GravityLeft        Gravity = 3
	GravityRight       Gravity = 4
	GravityTopLeft     Gravity = 5
	GravityBottomLeft  Gravity = 6
	GravityTopRight    Gravity = 7
	GravityBottomRight Gravity = 8
)

type ConstraintAdjustment uint32

const (
	ConstraintAdjustmentNone    ConstraintAdjustment = 0
	ConstraintAdjustmentSlideX  ConstraintAdjustment = 1 << 0
	ConstraintAdjustmentSlideY  ConstraintAdjustment = 1 << 1
	ConstraintAdjustmentFlipX   ConstraintAdjustment = 1 << 2
	ConstraintAdjustmentFlipY   ConstraintAdjustment = 1 << 3
	ConstraintAdjustmentResizeX ConstraintAdjustment = 1 << 4
	ConstraintAdjustmentResizeY ConstraintAdjustment = 1 << 5
)

// Rules is the accumulated placement state of a positioner. The
// anchor rectangle and the solved result are relative to the parent
// surface's window geometry.
type Rules struct {
	Size            image.Point
	AnchorRect      image.Rectangle
	Anchor          Anchor
	Gravity         Gravity
	Adjustment      ConstraintAdjustment
	Offset          image.Point
	Reactive        bool
	ParentSize      image.Point
	ParentConfigure uint32
}

// Solve places a rectangle of r.Size at the configured anchor and
// gravity, then unconstrains it against bounds using the requested
// adjustments, flip first, then slide, then resize, per axis. bounds
// must be in the same coordinate space as the anchor rectangle.
func (r Rules) Solve(bounds image.Rectangle) image.Rectangle {
	rect := r.place(r.Anchor, r.Gravity)

	if constrainedX(rect, bounds) && r.Adjustment&ConstraintAdjustmentFlipX != 0 {
		flipped := r.place(r.Anchor.flipX(), r.Gravity.flipX())
		if !constrainedX(flipped, bounds) {
			rect.Min.X, rect.Max.X = flipped.Min.X, flipped.Max.X
		}
	}
	if constrainedX(rect, bounds) && r.Adjustment&ConstraintAdjustmentSlideX != 0 {
		rect = slideX(rect, bounds)
	}
	if constrainedX(rect, bounds) && r.Adjustment&ConstraintAdjustmentResizeX != 0 {
		rect = resizeX(rect, bounds)
	}

	if constrainedY(rect, bounds) && r.Adjustment&ConstraintAdjustmentFlipY != 0 {
		flipped := r.place(r.Anchor.flipY(), r.Gravity.flipY())
		if !constrainedY(flipped, bounds) {
			rect.Min.Y, rect.Max.Y = flipped.Min.Y, flipped.Max.Y
		}
	}
	if constrainedY(rect, bounds) && r.Adjustment&ConstraintAdjustmentSlideY != 0 {
		rect = slideY(rect, bounds)
	}
	if constrainedY(rect, bounds) && r.Adjustment&ConstraintAdjustmentResizeY != 0 {
		rect = resizeY(rect, bounds)
	}

	return rect
}

func (r Rules) place(anchor Anchor, gravity Gravity) image.Rectangle {
	ap := anchorPoint(r.AnchorRect, anchor)
	origin := gravitate(ap, r.Size, gravity).Add(r.Offset)
	return image.Rectangle{Min: origin, Max: origin.Add(r.Size)}
}

func anchorPoint(rect image.Rectangle, anchor Anchor) image.Point {
	p := rect.Min.Add(rect.Max).Div(2)
	switch anchor {
	case AnchorTop, AnchorTopLeft, AnchorTopRight:
		p.Y = rect.Min.Y
	case AnchorBottom, AnchorBottomLeft, AnchorBottomRight:
		p.Y = rect.Max.Y
	}
	switch anchor {
	case AnchorLeft, AnchorTopLeft, AnchorBottomLeft:
		p.X = rect.Min.X
	case AnchorRight, AnchorTopRight, AnchorBottomRight:
		p.X = rect.Max.X
	}
	return p
}

// gravitate picks the popup origin so that the popup extends away
// from the anchor point in the gravity's direction. A centered axis
// straddles the anchor point.
func gravitate(ap, size image.Point, gravity Gravity) image.Point {
	o := image.Pt(ap.X-size.X/2, ap.Y-size.Y/2)
	switch gravity {
	case GravityTop, GravityTopLeft, GravityTopRight:
		o.Y = ap.Y - size.Y
	case GravityBottom, GravityBottomLeft, GravityBottomRight:
		o.Y = ap.Y
	}
	switch gravity {
	case GravityLeft, GravityTopLeft, GravityBottomLeft:
		o.X = ap.X - size.X
	case GravityRight, GravityTopRight, GravityBottomRight:
		o.X = ap.X
	}
	return o
}

func (a Anchor) flipX() Anchor {
	switch a {
	case AnchorLeft:
		return AnchorRight
	case AnchorRight:
		return AnchorLeft
	case AnchorTopLeft:
		return AnchorTopRight
	case AnchorTopRight:
		return AnchorTopLeft
	case AnchorBottomLeft:
		return AnchorBottomRight
	case AnchorBottomRight:
		return AnchorBottomLeft
	}
	return a
}

func (a Anchor) flipY() Anchor {
	switch a {
	case AnchorTop:
		return AnchorBottom
	case AnchorBottom:
		return AnchorTop
	case AnchorTopLeft:
		return AnchorBottomLeft
	case AnchorBottomLeft:
		return AnchorTopLeft
	case AnchorTopRight:
		return AnchorBottomRight
	case AnchorBottomRight:
		return AnchorTopRight
	}
	return a
}

func (g Gravity) flipX() Gravity {
	switch g {
	case GravityLeft:
		return GravityRight
	case GravityRight:
		return GravityLeft
	case GravityTopLeft:
		return GravityTopRight
	case GravityTopRight:
		return GravityTopLeft
	case GravityBottomLeft:
		return GravityBottomRight
	case GravityBottomRight:
		return GravityBottomLeft
	}
	return g
}

func (g Gravity) flipY() Gravity {
	switch g {
	case GravityTop:
		return GravityBottom
	case GravityBottom:
		return GravityTop
	case GravityTopLeft:
		return GravityBottomLeft
	case GravityBottomLeft:
		return GravityTopLeft
	case GravityTopRight:
		return GravityBottomRight
	case GravityBottomRight:
		return GravityTopRight
	}
	return g
}

func constrainedX(rect, bounds image.Rectangle) bool {
	return rect.Min.X < bounds.Min.X || rect.Max.X > bounds.Max.X
}

func constrainedY(rect, bounds image.Rectangle) bool {
	return rect.Min.Y < bounds.Min.Y || rect.Max.Y > bounds.Max.Y
}

func slideX(rect, bounds image.Rectangle) image.Rectangle {
	switch {
	case rect.Dx() > bounds.Dx(), rect.Min.X < bounds.Min.X:
		return rect.Add(image.Pt(bounds.Min.X-rect.Min.X, 0))
	case rect.Max.X > bounds.Max.X:
		return rect.Sub(image.Pt(rect.Max.X-bounds.Max.X, 0))
	}
	return rect
}

func slideY(rect, bounds image.Rectangle) image.Rectangle {
	switch {
	case rect.Dy() > bounds.Dy(), rect.Min.Y < bounds.Min.Y:
		return rect.Add(image.Pt(0, bounds.Min.Y-rect.Min.Y))
	case rect.Max.Y > bounds.Max.Y:
		return rect.Sub(image.Pt(0, rect.Max.Y-bounds.Max.Y))
	}
	return rect
}

func resizeX(rect, bounds image.Rectangle) image.Rectangle {
	rect.Min.X = max(rect.Min.X, bounds.Min.X)
	rect.Max.X = max(min(rect.Max.X, bounds.Max.X), rect.Min.X)
	return rect
}

func resizeY(rect, bounds image.Rectangle) image.Rectangle {
	rect.Min.Y = max(rect.Min.Y, bounds.Min.Y)
	rect.Max.Y = max(min(rect.Max.Y, bounds.Max.Y), rect.Min.Y)
	return rect
}

// Positioner accumulates placement rules for a popup. It has no
// listener: requests only mutate local state, which the compositor
// reads when the positioner is used.
type Positioner struct {
	client  *wl.Client
	id      uint32
	version uint32

	rules    Rules
	sized    bool
	anchored bool
}

func (p *Positioner) Client() *wl.Client { return p.client }
func (p *Positioner) ID() uint32         { return p.id }
func (p *Positioner) SetID(id uint32)    { p.id = id }
func (p *Positioner) Delete()            {}
func (p *Positioner) Version() uint32    { return p.version }

// Rules returns a snapshot of the accumulated placement rules.
func (p *Positioner) Rules() Rules { return p.rules }

// Complete reports whether the positioner has the non-defaultable
// rules set. Using an incomplete positioner is a protocol error.
func (p *Positioner) Complete() bool { return p.sized && p.anchored }

func (p *Positioner) String() string {
	return fmt.Sprintf("%v@%v", PositionerInterface, p.id)
}

func (p *Positioner) MethodName(op uint16) string {
	switch op {
	case 0:
		return "destroy"
	case 1:
		return "set_size"
	case 2:
		return "set_anchor_rect"
	case 3:
		return "set_anchor"
	case 4:
		return "set_gravity"
	case 5:
		return "set_constraint_adjustment"
	case 6:
		return "set_offset"
	case 7:
		return "set_reactive"
	case 8:
		return "set_parent_size"
	case 9:
		return "set_parent_configure"
	}
	return "unknown"
}

func (p *Positioner) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // destroy
		if err := msg.Err(); err != nil {
			return err
		}
		p.client.Destroy(p)
		return nil

	case 1: // set_size
		width := msg.ReadInt()
		height := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		if width <= 0 || height <= 0 {
			return wl.Errorf(p, uint32(PositionerErrorInvalidInput), "%v: size %vx%v is not positive", p, width, height)
		}
		p.rules.Size = image.Pt(int(width), int(height))
		p.sized = true
		return nil

	case 2: // set_anchor_rect
		x := msg.ReadInt()
		y := msg.ReadInt()
		width := msg.ReadInt()
		height := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		if width < 0 || height < 0 {
			return wl.Errorf(p, uint32(PositionerErrorInvalidInput), "%v: anchor rect %vx%v is negative", p, width, height)
		}
		p.rules.AnchorRect = image.Rect(int(x), int(y), int(x+width), int(y+height))
		p.anchored = true
		return nil

	case 3: // set_anchor
		anchor := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		if anchor > uint32(AnchorBottomRight) {
			return wl.Errorf(p, uint32(PositionerErrorInvalidInput), "%v: invalid anchor %v", p, anchor)
		}
		p.rules.Anchor = Anchor(anchor)
		return nil

	case 4: // set_gravity
		gravity := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		if gravity > uint32(GravityBottomRight) {
			return wl.Errorf(p, uint32(PositionerErrorInvalidInput), "%v: invalid gravity %v", p, gravity)
		}
		p.rules.Gravity = Gravity(gravity)
		return nil

	case 5: // set_constraint_adjustment
		adjustment := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		p.rules.Adjustment = ConstraintAdjustment(adjustment)
		return nil

	case 6: // set_offset
		x := msg.ReadInt()
		y := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		p.rules.Offset = image.Pt(int(x), int(y))
		return nil

	case 7: // set_reactive
		if err := msg.Err(); err != nil {
			return err
		}
		p.rules.Reactive = true
		return nil

	case 8: // set_parent_size
		width := msg.ReadInt()
		height := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		p.rules.ParentSize = image.Pt(int(width), int(height))
		return nil

	case 9: // set_parent_configure
		serial := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		p.rules.ParentConfigure = serial
		return nil
	}

	return wire.UnknownOpError{Interface: PositionerInterface, Type: "request", Op: msg.Op()}
}
