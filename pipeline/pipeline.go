package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"VisionAlertServer/config"
	"VisionAlertServer/iface"
	"VisionAlertServer/logger"
	"VisionAlertServer/monitor"
)

// Preprocessor is the image-preparation collaborator: it decodes and
// orients a raw upload and returns the normalized JPEG plus its dimensions.
// Undecodable input must be reported wrapping ErrInvalidImage.
type Preprocessor interface {
	Prepare(data []byte) ([]byte, iface.Frame, error)
}

// AlertSink receives every emitted alert event, e.g. for publishing to a
// broker. Publish must not block the request path.
type AlertSink interface {
	Publish(event AlertEvent)
}

// Stats is the snapshot served by the stats introspection endpoint.
type Stats struct {
	FramesProcessed  uint64  `json:"framesProcessed"`
	AlertsEmitted    uint64  `json:"alertsEmitted"`
	AlertsSuppressed uint64  `json:"alertsSuppressed"`
	ActiveCooldowns  int     `json:"activeCooldowns"`
	UptimeSeconds    float64 `json:"uptimeSeconds"`
}

// Pipeline is the detection-to-alert core. The cooldown registry and the
// frame sequence counter are its only cross-request mutable state; every
// other stage is a pure function, so concurrent requests need no further
// synchronization.
type Pipeline struct {
	cfg         *config.Config
	prioritySet map[string]struct{}
	prep        Preprocessor
	detector    iface.Detector
	cooldowns   *CooldownRegistry
	sink        AlertSink

	frameSeq         atomic.Uint64
	framesProcessed  atomic.Uint64
	alertsEmitted    atomic.Uint64
	alertsSuppressed atomic.Uint64
	started          time.Time
}

// New builds a pipeline around the two external collaborators.
func New(cfg *config.Config, prep Preprocessor, detector iface.Detector) *Pipeline {
	return &Pipeline{
		cfg:         cfg,
		prioritySet: cfg.PrioritySet(),
		prep:        prep,
		detector:    detector,
		cooldowns:   NewCooldownRegistry(),
		started:     time.Now(),
	}
}

// SetAlertSink attaches an optional sink for emitted alert events.
func (p *Pipeline) SetAlertSink(sink AlertSink) {
	p.sink = sink
}

// ProcessImage is the sole full entry point for one raw frame: prepare the
// image, invoke the detector once (never retried), then run the core over
// the raw candidates. The cooldown registry and the sequence counter are
// untouched when preparation or detection fails.
func (p *Pipeline) ProcessImage(ctx context.Context, data []byte, now time.Time) (Result, error) {
	jpeg, frame, err := p.prep.Prepare(data)
	if err != nil {
		return Result{}, err
	}
	if !frame.Valid() {
		return Result{}, fmt.Errorf("%w: %dx%d", ErrInvalidFrame, frame.Width, frame.Height)
	}
	candidates, err := p.detector.Detect(ctx, jpeg)
	if err != nil {
		monitor.DetectorErrors.Inc()
		return Result{}, fmt.Errorf("%w: %v", ErrDetector, err)
	}
	return p.Run(candidates, frame, now)
}

// Run executes the core over raw candidates for a frame of known size:
// filter, classify, cooldown-gated alert synthesis, assembly.
func (p *Pipeline) Run(candidates []iface.Candidate, frame iface.Frame, now time.Time) (Result, error) {
	if !frame.Valid() {
		return Result{}, fmt.Errorf("%w: %dx%d", ErrInvalidFrame, frame.Width, frame.Height)
	}
	seq := p.frameSeq.Add(1)

	filtered := Filter(candidates, p.cfg.ConfidenceThreshold, p.cfg.MaxDetections)
	detections := make([]Detection, 0, len(filtered))
	for _, c := range filtered {
		position, err := ClassifyPosition(c.X1, c.X2, frame.Width, p.cfg.CenterThresholdRatio)
		if err != nil {
			return Result{}, err
		}
		distance, err := ClassifyDistance(c.BoxArea(), frame.Area(), p.cfg.DistanceCloseRatio, p.cfg.DistanceMediumRatio)
		if err != nil {
			return Result{}, err
		}
		detections = append(detections, Detection{
			Class:      c.Label,
			Confidence: c.Confidence,
			Position:   position,
			Distance:   distance,
			BBox:       BBox{X1: c.X1, Y1: c.Y1, X2: c.X2, Y2: c.Y2},
		})
	}

	events, suppressed := EvaluateAlerts(detections, p.prioritySet, p.cooldowns, now, p.cfg.Cooldown())
	alerts := make([]string, 0, len(events))
	for i := range events {
		events[i].FrameSeq = seq
		alerts = append(alerts, events[i].Text)
	}
	result := Assemble(frame, detections, alerts, seq, now)

	p.framesProcessed.Add(1)
	monitor.FramesTotal.Inc()
	if len(events) > 0 {
		p.alertsEmitted.Add(uint64(len(events)))
		monitor.AlertsTotal.Add(float64(len(events)))
		logger.Log().Info("alerts emitted",
			zap.Uint64("frameSeq", seq),
			zap.Int("count", len(events)),
			zap.String("primary", result.Alert))
	}
	if suppressed > 0 {
		p.alertsSuppressed.Add(uint64(suppressed))
		monitor.SuppressedTotal.Add(float64(suppressed))
	}
	if p.sink != nil {
		for _, event := range events {
			p.sink.Publish(event)
		}
	}
	return result, nil
}

// ResetCooldowns clears the cooldown registry. The frame sequence counter
// is deliberately untouched.
func (p *Pipeline) ResetCooldowns() {
	p.cooldowns.Reset()
	logger.Log().Info("cooldown registry reset")
}

// Stats returns a consistent-enough snapshot for introspection.
func (p *Pipeline) Stats() Stats {
	return Stats{
		FramesProcessed:  p.framesProcessed.Load(),
		AlertsEmitted:    p.alertsEmitted.Load(),
		AlertsSuppressed: p.alertsSuppressed.Load(),
		ActiveCooldowns:  p.cooldowns.Len(),
		UptimeSeconds:    time.Since(p.started).Seconds(),
	}
}
