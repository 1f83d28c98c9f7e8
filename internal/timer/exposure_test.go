package timer

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testInterval = 10 * time.Millisecond

func TestExposureRunsToCompletion(t *testing.T) {
	var clears atomic.Int32
	e := New(testInterval, func() { clears.Add(1) })

	e.Start(10)
	assert.True(t, e.Active())
	assert.Equal(t, 10, e.Remaining())

	require.Eventually(t, func() bool { return clears.Load() == 1 }, 2*time.Second, testInterval)
	assert.False(t, e.Active())
	assert.Equal(t, 0, e.Remaining())

	// No second clear ever fires
	time.Sleep(5 * testInterval)
	assert.Equal(t, int32(1), clears.Load())
}

func TestExposureCancelAtTickThree(t *testing.T) {
	var clears atomic.Int32
	e := New(testInterval, func() { clears.Add(1) })

	e.Start(10)
	deadline := time.After(2 * time.Second)
wait:
	for {
		select {
		case left := <-e.Ticks():
			if left <= 7 {
				break wait
			}
		case <-deadline:
			t.Fatal("countdown never ticked")
		}
	}

	assert.True(t, e.Cancel())
	assert.False(t, e.Active())
	assert.Equal(t, 0, e.Remaining())

	time.Sleep(15 * testInterval)
	assert.Equal(t, int32(0), clears.Load(), "cancel must not clear")
	assert.False(t, e.Cancel(), "nothing left to cancel")
}

func TestExposureRestartDoesNotStack(t *testing.T) {
	var clears atomic.Int32
	e := New(testInterval, func() { clears.Add(1) })

	e.Start(50)
	time.Sleep(3 * testInterval)
	e.Start(5)
	assert.LessOrEqual(t, e.Remaining(), 5)

	require.Eventually(t, func() bool { return clears.Load() == 1 }, 2*time.Second, testInterval)
	time.Sleep(60 * testInterval)
	assert.Equal(t, int32(1), clears.Load(), "the replaced countdown must never clear")
}

func TestExposureTicksReportRemaining(t *testing.T) {
	e := New(testInterval, func() {})
	e.Start(3)

	var seen []int
	timeout := time.After(2 * time.Second)
	for len(seen) == 0 || seen[len(seen)-1] != 0 {
		select {
		case left := <-e.Ticks():
			seen = append(seen, left)
		case <-timeout:
			t.Fatalf("ticks stalled after %v", seen)
		}
	}

	for i := 1; i < len(seen); i++ {
		assert.Less(t, seen[i], seen[i-1], "remaining count must strictly decrease")
	}
}

func TestExposureCancelIdle(t *testing.T) {
	e := New(0, nil)
	assert.False(t, e.Cancel())
	assert.Equal(t, 0, e.Remaining())
}

func TestExposureReplacedRunPublishesNothing(t *testing.T) {
	interval := 50 * time.Millisecond
	e := New(interval, nil)

	e.Start(100)
	time.Sleep(4*interval - interval/2)
	e.Start(100)

	select {
	case left := <-e.Ticks():
		t.Fatalf("replaced countdown published %d", left)
	case <-time.After(interval / 2):
	}

	select {
	case left := <-e.Ticks():
		assert.Equal(t, 99, left)
	case <-time.After(time.Second):
		t.Fatal("no tick from the new countdown")
	}
	e.Cancel()
}
