package detector

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"VisionAlertServer/iface"
)

type detectRequest struct {
	Image string `json:"image"`
}

type wireResult struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
	X1         int     `json:"x1"`
	Y1         int     `json:"y1"`
	X2         int     `json:"x2"`
	Y2         int     `json:"y2"`
}

type detectResponse struct {
	Success bool         `json:"success"`
	Error   string       `json:"error"`
	Results []wireResult `json:"results"`
}

// Remote calls an external inference service over HTTP. The pipeline owns
// the decision not to retry; Remote performs exactly one request per call.
type Remote struct {
	client *resty.Client
}

// NewRemote builds a client for the inference service at baseURL.
func NewRemote(baseURL string, timeout time.Duration) *Remote {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)
	return &Remote{client: client}
}

// Detect implements iface.Detector: POSTs the base64 JPEG and maps the
// wire results to candidates.
func (r *Remote) Detect(ctx context.Context, jpeg []byte) ([]iface.Candidate, error) {
	var respBody detectResponse
	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(detectRequest{Image: base64.StdEncoding.EncodeToString(jpeg)}).
		SetResult(&respBody).
		Post("/api/detect")
	if err != nil {
		return nil, fmt.Errorf("inference request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("inference server returned %s: %s", resp.Status(), resp.String())
	}
	if !respBody.Success {
		return nil, fmt.Errorf("inference failed: %s", respBody.Error)
	}
	candidates := make([]iface.Candidate, 0, len(respBody.Results))
	for _, res := range respBody.Results {
		candidates = append(candidates, iface.Candidate{
			Label:      res.Name,
			Confidence: res.Confidence,
			X1:         res.X1,
			Y1:         res.Y1,
			X2:         res.X2,
			Y2:         res.Y2,
		})
	}
	return candidates, nil
}

// Close implements iface.Detector.
func (r *Remote) Close() {}
