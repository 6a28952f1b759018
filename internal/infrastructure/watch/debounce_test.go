package watch

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_CoalescesRapidTriggers(t *testing.T) {
	var count atomic.Int32
	got := make(chan int, 10)
	d := NewDebouncer(50*time.Millisecond, func(v int) {
		count.Add(1)
		got <- v
	})
	defer d.Stop()

	for i := 0; i < 10; i++ {
		d.Trigger(i)
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case v := <-got:
		if v != 9 {
			t.Errorf("expected last value 9, got %d", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("callback never fired")
	}

	time.Sleep(100 * time.Millisecond)
	if n := count.Load(); n != 1 {
		t.Errorf("expected 1 callback invocation, got %d", n)
	}
}

func TestDebouncer_Stop(t *testing.T) {
	var count atomic.Int32
	d := NewDebouncer(50*time.Millisecond, func(string) {
		count.Add(1)
	})

	d.Trigger("a")
	d.Stop()

	time.Sleep(100 * time.Millisecond)

	if got := count.Load(); got != 0 {
		t.Errorf("expected 0 callback invocations after stop, got %d", got)
	}
}

func TestDebouncer_StopWaitsForRunningCallback(t *testing.T) {
	started := make(chan struct{})
	var finished atomic.Bool
	d := NewDebouncer(time.Millisecond, func(struct{}) {
		close(started)
		time.Sleep(50 * time.Millisecond)
		finished.Store(true)
	})

	d.Trigger(struct{}{})
	<-started
	d.Stop()

	if !finished.Load() {
		t.Error("Stop returned before the running callback finished")
	}
}
