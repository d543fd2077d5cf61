package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testPriority = map[string]struct{}{
	"person": {},
	"car":    {},
	"dog":    {},
}

func TestEvaluateAlertsSynthesizesWarning(t *testing.T) {
	reg := NewCooldownRegistry()
	now := time.Unix(1000, 0)
	dets := []Detection{
		{Class: "person", Confidence: 0.9, Position: PositionLeft, Distance: DistanceClose},
	}

	events, suppressed := EvaluateAlerts(dets, testPriority, reg, now, 3*time.Second)
	assert.Equal(t, 0, suppressed)
	if assert.Len(t, events, 1) {
		assert.Equal(t, "Warning! person close left", events[0].Text)
		assert.Equal(t, "person", events[0].Class)
		assert.Equal(t, PositionLeft, events[0].Position)
		assert.Equal(t, DistanceClose, events[0].Distance)
		assert.Equal(t, now, events[0].Timestamp)
	}
	assert.True(t, dets[0].IsPriority)
}

func TestEvaluateAlertsNonPriorityNeverAlerts(t *testing.T) {
	reg := NewCooldownRegistry()
	now := time.Unix(1000, 0)
	dets := []Detection{
		{Class: "chair", Confidence: 0.8, Position: PositionFront, Distance: DistanceMedium},
	}

	events, suppressed := EvaluateAlerts(dets, testPriority, reg, now, 3*time.Second)
	assert.Empty(t, events)
	assert.Equal(t, 0, suppressed)
	assert.False(t, dets[0].IsPriority)
	// non-priority classes never enter the cooldown registry
	assert.Equal(t, 0, reg.Len())
}

func TestEvaluateAlertsCooldownSuppressesTextOnly(t *testing.T) {
	reg := NewCooldownRegistry()
	t0 := time.Unix(1000, 0)
	dets := []Detection{
		{Class: "person", Confidence: 0.9, Position: PositionLeft, Distance: DistanceClose},
	}

	events, suppressed := EvaluateAlerts(dets, testPriority, reg, t0, 3*time.Second)
	assert.Len(t, events, 1)
	assert.Equal(t, 0, suppressed)

	// same hazard one second later: silenced, but still annotated priority
	dets2 := []Detection{
		{Class: "person", Confidence: 0.9, Position: PositionLeft, Distance: DistanceClose},
	}
	events, suppressed = EvaluateAlerts(dets2, testPriority, reg, t0.Add(time.Second), 3*time.Second)
	assert.Empty(t, events)
	assert.Equal(t, 1, suppressed)
	assert.True(t, dets2[0].IsPriority)
}

func TestEvaluateAlertsPreservesCandidateOrder(t *testing.T) {
	reg := NewCooldownRegistry()
	now := time.Unix(1000, 0)
	dets := []Detection{
		{Class: "person", Position: PositionLeft, Distance: DistanceClose},
		{Class: "chair", Position: PositionFront, Distance: DistanceFar},
		{Class: "dog", Position: PositionRight, Distance: DistanceMedium},
	}

	events, _ := EvaluateAlerts(dets, testPriority, reg, now, 3*time.Second)
	if assert.Len(t, events, 2) {
		assert.Equal(t, "person", events[0].Class)
		assert.Equal(t, "dog", events[1].Class)
	}
	// every detection stays in the output list
	assert.Len(t, dets, 3)
}
