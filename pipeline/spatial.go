package pipeline

import "fmt"

// Qualitative position and distance labels. These strings appear verbatim
// in alert text and in the JSON response, so they must stay stable.
const (
	PositionLeft  = "left"
	PositionFront = "front"
	PositionRight = "right"

	DistanceClose  = "close"
	DistanceMedium = "medium"
	DistanceFar    = "far"
)

// ClassifyPosition buckets a box into left/front/right from its horizontal
// center. A band of frameWidth*centerRatio around the frame center counts
// as front.
func ClassifyPosition(x1, x2, frameWidth int, centerRatio float64) (string, error) {
	if frameWidth <= 0 {
		return "", fmt.Errorf("%w: width %d", ErrInvalidFrame, frameWidth)
	}
	center := float64(x1+x2) / 2
	frameCenter := float64(frameWidth) / 2
	band := float64(frameWidth) * centerRatio
	switch {
	case center < frameCenter-band:
		return PositionLeft, nil
	case center > frameCenter+band:
		return PositionRight, nil
	default:
		return PositionFront, nil
	}
}

// ClassifyDistance buckets a box into close/medium/far from the ratio of
// box area to frame area. Comparisons are strictly greater-than: a ratio
// exactly at a threshold falls into the lower bucket.
func ClassifyDistance(boxArea, frameArea int, closeRatio, mediumRatio float64) (string, error) {
	if frameArea <= 0 {
		return "", fmt.Errorf("%w: area %d", ErrInvalidFrame, frameArea)
	}
	ratio := float64(boxArea) / float64(frameArea)
	switch {
	case ratio > closeRatio:
		return DistanceClose, nil
	case ratio > mediumRatio:
		return DistanceMedium, nil
	default:
		return DistanceFar, nil
	}
}
