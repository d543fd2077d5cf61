package pipeline

import (
	"fmt"
	"time"
)

// AlertEvent is one emitted spoken warning, with enough context for the
// optional event publisher. EventID is assigned by the publisher.
type AlertEvent struct {
	EventID   string    `json:"event_id,omitempty"`
	Class     string    `json:"class"`
	Position  string    `json:"position"`
	Distance  string    `json:"distance"`
	Text      string    `json:"text"`
	FrameSeq  uint64    `json:"frame_seq"`
	Timestamp time.Time `json:"timestamp"`
}

// EvaluateAlerts annotates every detection with its priority flag and, for
// priority classes the registry permits at now, synthesizes the spoken
// warning. Detections are annotated in place and all of them stay in the
// output: the cooldown suppresses only the spoken text, never the
// structured record. The returned suppressed count is the number of
// priority detections silenced by an active cooldown.
func EvaluateAlerts(detections []Detection, priority map[string]struct{}, registry *CooldownRegistry, now time.Time, cooldown time.Duration) (events []AlertEvent, suppressed int) {
	for i := range detections {
		d := &detections[i]
		_, d.IsPriority = priority[d.Class]
		if !d.IsPriority {
			continue
		}
		if !registry.ShouldAnnounce(d.Class, now, cooldown) {
			suppressed++
			continue
		}
		events = append(events, AlertEvent{
			Class:     d.Class,
			Position:  d.Position,
			Distance:  d.Distance,
			Text:      fmt.Sprintf("Warning! %s %s %s", d.Class, d.Distance, d.Position),
			Timestamp: now,
		})
	}
	return events, suppressed
}
