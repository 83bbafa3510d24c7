package batch

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncer_LatestWins(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	var got atomic.Int32
	fired := make(chan struct{})
	for _, v := range []int32{10, 20, 30} {
		v := v
		d.Schedule(1, func() {
			got.Store(v)
			if v == 30 {
				close(fired)
			}
		})
	}

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced work never ran")
	}
	// Give any wrongly surviving earlier timers a chance to misfire.
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(30), got.Load(), "only the latest request runs")
}

func TestDebouncer_IndependentIDs(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)

	var count atomic.Int32
	done := make(chan struct{}, 2)
	for _, id := range []int{1, 2} {
		d.Schedule(id, func() {
			count.Add(1)
			done <- struct{}{}
		})
	}
	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("per-id work never ran")
		}
	}
	assert.Equal(t, int32(2), count.Load(), "distinct ids do not coalesce")
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var ran atomic.Bool
	d.Schedule(7, func() { ran.Store(true) })
	d.Cancel(7)

	time.Sleep(80 * time.Millisecond)
	assert.False(t, ran.Load(), "cancelled request must not run")
}

func TestDebouncer_CancelAll(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var ran atomic.Bool
	d.Schedule(1, func() { ran.Store(true) })
	d.Schedule(2, func() { ran.Store(true) })
	d.CancelAll()

	time.Sleep(80 * time.Millisecond)
	assert.False(t, ran.Load())
}
