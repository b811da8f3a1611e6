package capture

// Region is a rectangle in screen pixel coordinates.
type Region struct {
	X, Y          int
	Width, Height int
}

// Centered returns a w×h region whose center sits at (cx, cy).
func Centered(cx, cy, w, h int) Region {
	return Region{X: cx - w/2, Y: cy - h/2, Width: w, Height: h}
}

// ClampTo constrains the region so the copied rectangle never exceeds the
// frame: the size is capped at the frame size and the origin is clamped into
// [0, frameW-Width] × [0, frameH-Height]. A region configured larger than
// the display or positioned off-edge therefore still yields an in-bounds
// copy.
func (r Region) ClampTo(frameW, frameH int) Region {
	c := r
	if c.Width > frameW {
		c.Width = frameW
	}
	if c.Height > frameH {
		c.Height = frameH
	}
	if c.X < 0 {
		c.X = 0
	} else if c.X > frameW-c.Width {
		c.X = frameW - c.Width
	}
	if c.Y < 0 {
		c.Y = 0
	} else if c.Y > frameH-c.Height {
		c.Y = frameH - c.Height
	}
	return c
}
