package imaging

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"VisionAlertServer/pipeline"
)

func encodeTestJPEG(t *testing.T, rows, cols int) []byte {
	t.Helper()
	mat := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8UC3)
	defer mat.Close()
	buf, err := gocv.IMEncode(".jpg", mat)
	require.NoError(t, err)
	defer buf.Close()
	data := make([]byte, len(buf.GetBytes()))
	copy(data, buf.GetBytes())
	return data
}

func TestPrepareReportsDimensions(t *testing.T) {
	data := encodeTestJPEG(t, 480, 640)
	p := NewProcessor(false)
	jpeg, frame, err := p.Prepare(data)
	require.NoError(t, err)
	assert.NotEmpty(t, jpeg)
	assert.Equal(t, 640, frame.Width)
	assert.Equal(t, 480, frame.Height)
}

func TestPrepareRotatesToPortrait(t *testing.T) {
	data := encodeTestJPEG(t, 480, 640)
	p := NewProcessor(true)
	_, frame, err := p.Prepare(data)
	require.NoError(t, err)
	assert.Equal(t, 480, frame.Width)
	assert.Equal(t, 640, frame.Height)
}

func TestPrepareRejectsGarbage(t *testing.T) {
	p := NewProcessor(false)

	_, _, err := p.Prepare(nil)
	assert.ErrorIs(t, err, pipeline.ErrInvalidImage)

	_, _, err = p.Prepare([]byte("definitely not an image"))
	assert.ErrorIs(t, err, pipeline.ErrInvalidImage)
}

func TestDecodeBase64(t *testing.T) {
	raw := []byte{0x01, 0x02, 0x03}
	b64 := base64.StdEncoding.EncodeToString(raw)

	got, err := DecodeBase64(b64)
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	got, err = DecodeBase64("data:image/jpeg;base64," + b64)
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	_, err = DecodeBase64("!!not base64!!")
	assert.ErrorIs(t, err, pipeline.ErrInvalidImage)
}
