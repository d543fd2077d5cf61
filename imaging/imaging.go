package imaging

import (
	"encoding/base64"
	"fmt"
	"strings"

	"gocv.io/x/gocv"

	"VisionAlertServer/iface"
	"VisionAlertServer/pipeline"
)

// Processor normalizes raw uploads for the detector: decode, optionally
// rotate 90 degrees clockwise (the handset is held vertically while the
// camera sensor reports landscape), and re-encode as JPEG.
type Processor struct {
	rotateToPortrait bool
}

// NewProcessor returns a Processor; rotate selects portrait correction.
func NewProcessor(rotate bool) *Processor {
	return &Processor{rotateToPortrait: rotate}
}

// Prepare implements pipeline.Preprocessor.
func (p *Processor) Prepare(data []byte) ([]byte, iface.Frame, error) {
	if len(data) == 0 {
		return nil, iface.Frame{}, fmt.Errorf("%w: empty payload", pipeline.ErrInvalidImage)
	}
	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return nil, iface.Frame{}, fmt.Errorf("%w: %v", pipeline.ErrInvalidImage, err)
	}
	defer mat.Close()
	if mat.Empty() {
		// IMDecode returns an empty Mat when decoding fails
		return nil, iface.Frame{}, fmt.Errorf("%w: empty or unsupported format", pipeline.ErrInvalidImage)
	}

	work := mat
	if p.rotateToPortrait {
		rotated := gocv.NewMat()
		defer rotated.Close()
		gocv.Rotate(mat, &rotated, gocv.Rotate90Clockwise)
		work = rotated
	}

	frame := iface.Frame{Width: work.Cols(), Height: work.Rows()}
	buf, err := gocv.IMEncode(".jpg", work)
	if err != nil {
		return nil, iface.Frame{}, fmt.Errorf("%w: re-encode: %v", pipeline.ErrInvalidImage, err)
	}
	defer buf.Close()
	jpeg := make([]byte, len(buf.GetBytes()))
	copy(jpeg, buf.GetBytes())
	return jpeg, frame, nil
}

// DecodeBase64 turns a base64 string (optionally a data:image/... URL)
// into raw image bytes.
func DecodeBase64(b64 string) ([]byte, error) {
	if i := strings.Index(b64, ","); i != -1 && strings.HasPrefix(b64, "data:") {
		b64 = b64[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pipeline.ErrInvalidImage, err)
	}
	return data, nil
}
