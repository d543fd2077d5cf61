package pipeline

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShouldAnnounceWithinCooldown(t *testing.T) {
	reg := NewCooldownRegistry()
	t0 := time.Unix(1000, 0)
	cooldown := 3 * time.Second

	assert.True(t, reg.ShouldAnnounce("person", t0, cooldown))
	assert.False(t, reg.ShouldAnnounce("person", t0.Add(1*time.Second), cooldown))
	assert.False(t, reg.ShouldAnnounce("person", t0.Add(2999*time.Millisecond), cooldown))
}

func TestShouldAnnounceAfterCooldownElapsed(t *testing.T) {
	reg := NewCooldownRegistry()
	t0 := time.Unix(1000, 0)
	cooldown := 3 * time.Second

	assert.True(t, reg.ShouldAnnounce("person", t0, cooldown))
	// exactly the cooldown boundary permits again
	assert.True(t, reg.ShouldAnnounce("person", t0.Add(cooldown), cooldown))
	// and the window restarts from the second announcement
	assert.False(t, reg.ShouldAnnounce("person", t0.Add(cooldown).Add(time.Second), cooldown))
}

func TestShouldAnnounceIndependentPerClass(t *testing.T) {
	reg := NewCooldownRegistry()
	t0 := time.Unix(1000, 0)
	cooldown := 3 * time.Second

	assert.True(t, reg.ShouldAnnounce("person", t0, cooldown))
	assert.True(t, reg.ShouldAnnounce("dog", t0, cooldown))
	assert.False(t, reg.ShouldAnnounce("person", t0.Add(time.Second), cooldown))
	assert.False(t, reg.ShouldAnnounce("dog", t0.Add(time.Second), cooldown))
}

func TestResetClearsAllState(t *testing.T) {
	reg := NewCooldownRegistry()
	t0 := time.Unix(1000, 0)
	cooldown := 3 * time.Second

	assert.True(t, reg.ShouldAnnounce("person", t0, cooldown))
	assert.True(t, reg.ShouldAnnounce("car", t0, cooldown))
	assert.Equal(t, 2, reg.Len())

	reg.Reset()
	assert.Equal(t, 0, reg.Len())
	// immediately after reset every class may announce again, same instant
	assert.True(t, reg.ShouldAnnounce("person", t0, cooldown))
	assert.True(t, reg.ShouldAnnounce("car", t0, cooldown))
}

func TestShouldAnnounceConcurrentSameClass(t *testing.T) {
	reg := NewCooldownRegistry()
	now := time.Unix(1000, 0)
	cooldown := 3 * time.Second

	const callers = 32
	var wg sync.WaitGroup
	results := make(chan bool, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- reg.ShouldAnnounce("person", now, cooldown)
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for ok := range results {
		if ok {
			wins++
		}
	}
	assert.Equal(t, 1, wins, "exactly one concurrent caller may win the announce check")
}
