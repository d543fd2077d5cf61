package iface

import "context"

// Candidate is one raw detector output before filtering: class label,
// confidence and bounding box in pixel coordinates (x1<x2, y1<y2).
type Candidate struct {
	Label      string
	Confidence float64
	X1, Y1     int
	X2, Y2     int
}

// BoxArea returns the bounding box area in pixels.
func (c Candidate) BoxArea() int {
	return (c.X2 - c.X1) * (c.Y2 - c.Y1)
}

// Frame holds the dimensions of one prepared camera frame.
type Frame struct {
	Width  int
	Height int
}

// Area returns Width*Height.
func (f Frame) Area() int {
	return f.Width * f.Height
}

// Valid reports whether both dimensions are positive.
func (f Frame) Valid() bool {
	return f.Width > 0 && f.Height > 0
}

// Detector is the external inference collaborator. Implementations take an
// encoded JPEG frame and return raw candidates in pixel coordinates. The
// pipeline never retries a failed call.
type Detector interface {
	Detect(ctx context.Context, jpeg []byte) ([]Candidate, error)
	Close()
}
