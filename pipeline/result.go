package pipeline

import (
	"time"

	"VisionAlertServer/iface"
)

// BBox is a bounding box in pixel coordinates of the prepared frame.
type BBox struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Detection is one classified candidate in the per-frame response.
type Detection struct {
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
	Position   string  `json:"position"`
	Distance   string  `json:"distance"`
	IsPriority bool    `json:"isPriority"`
	BBox       BBox    `json:"bbox"`
}

// Result is the aggregate output for one frame. Alert always equals the
// first element of Alerts, or "" when no alert fired.
type Result struct {
	Alert       string      `json:"alert"`
	Alerts      []string    `json:"alerts"`
	Objects     []string    `json:"objects"`
	Detections  []Detection `json:"detections"`
	FrameWidth  int         `json:"frameWidth"`
	FrameHeight int         `json:"frameHeight"`
	FrameSeq    uint64      `json:"frameSeq"`
	Timestamp   time.Time   `json:"timestamp"`
}

// Assemble aggregates one frame's detections and alerts into a Result.
// Pure aggregation, no policy: given the same inputs it produces the same
// output. Slices are never nil so the JSON encodes [] instead of null.
func Assemble(frame iface.Frame, detections []Detection, alerts []string, seq uint64, ts time.Time) Result {
	if detections == nil {
		detections = []Detection{}
	}
	if alerts == nil {
		alerts = []string{}
	}
	objects := make([]string, 0, len(detections))
	for _, d := range detections {
		objects = append(objects, d.Class)
	}
	primary := ""
	if len(alerts) > 0 {
		primary = alerts[0]
	}
	return Result{
		Alert:       primary,
		Alerts:      alerts,
		Objects:     objects,
		Detections:  detections,
		FrameWidth:  frame.Width,
		FrameHeight: frame.Height,
		FrameSeq:    seq,
		Timestamp:   ts,
	}
}
