package pipeline

import "errors"

// Sentinel errors separating caller mistakes from collaborator failures.
// The HTTP layer maps these to status codes; the pipeline never retries.
var (
	// ErrInvalidImage marks frames that could not be decoded.
	ErrInvalidImage = errors.New("invalid image")
	// ErrInvalidFrame marks non-positive frame dimensions.
	ErrInvalidFrame = errors.New("invalid frame dimensions")
	// ErrDetector marks a failure inside the inference collaborator.
	ErrDetector = errors.New("detector failure")
)
