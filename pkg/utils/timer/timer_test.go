package timer_test

import (
	"testing"
	"time"

	"github.com/bacalhau-project/bacboot/pkg/utils/timer"
	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	current time.Time
}

func (c *fakeClock) now() time.Time { return c.current }

func (c *fakeClock) advance(d time.Duration) { c.current = c.current.Add(d) }

func TestStageTimer_ZeroBeforeStart(t *testing.T) {
	t.Parallel()

	total, stage := timer.New().GetTiming()

	assert.Zero(t, total)
	assert.Zero(t, stage)
}

func TestStageTimer_TracksStages(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{current: time.Unix(1_700_000_000, 0)}
	tmr := timer.NewWithClock(clock.now)

	tmr.Start()
	clock.advance(2 * time.Second)
	tmr.NewStage()
	clock.advance(500 * time.Millisecond)

	total, stage := tmr.GetTiming()

	assert.Equal(t, 2500*time.Millisecond, total)
	assert.Equal(t, 500*time.Millisecond, stage)
}

func TestStageTimer_StopFreezes(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{current: time.Unix(1_700_000_000, 0)}
	tmr := timer.NewWithClock(clock.now)

	tmr.Start()
	clock.advance(time.Second)
	tmr.Stop()
	clock.advance(time.Hour)
	tmr.Stop()

	total, stage := tmr.GetTiming()

	assert.Equal(t, time.Second, total)
	assert.Equal(t, time.Second, stage)
}
