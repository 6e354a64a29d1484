package synth

import (
	"testing"

	"golang.org/x/sync/errgroup"
)

func TestEventQueuePushDrainFIFO(t *testing.T) {
	q := NewEventQueue(4)
	q.Push(ControllerEvent{Kind: NoteOn, Pitch: 60})
	q.Push(ControllerEvent{Kind: NoteOn, Pitch: 64})

	var got []uint8
	q.Drain(func(ev ControllerEvent) { got = append(got, ev.Pitch) })

	if len(got) != 2 || got[0] != 60 || got[1] != 64 {
		t.Fatalf("drained %v, want [60 64] in order", got)
	}
	if q.Len() != 0 {
		t.Fatalf("Len() after drain = %d, want 0", q.Len())
	}
}

func TestEventQueuePushReportsFullness(t *testing.T) {
	q := NewEventQueue(2) // rounds up to 2
	if !q.Push(ControllerEvent{Pitch: 1}) {
		t.Fatal("first push should succeed")
	}
	if !q.Push(ControllerEvent{Pitch: 2}) {
		t.Fatal("second push should succeed")
	}
	if q.Push(ControllerEvent{Pitch: 3}) {
		t.Fatal("third push should report full")
	}
}

// TestEventQueueConcurrentProducerConsumer stresses the lock-free ring
// across real goroutines: one producer, one consumer, checking every
// pushed event is eventually observed exactly once.
func TestEventQueueConcurrentProducerConsumer(t *testing.T) {
	q := NewEventQueue(64)
	const n = 5000

	var g errgroup.Group
	received := 0
	done := make(chan struct{})

	g.Go(func() error {
		for received < n {
			q.Drain(func(ControllerEvent) { received++ })
		}
		close(done)
		return nil
	})
	g.Go(func() error {
		for i := 0; i < n; i++ {
			for !q.Push(ControllerEvent{Pitch: uint8(i % 128)}) {
				// back off until the consumer drains room
			}
		}
		<-done
		return nil
	})

	if err := g.Wait(); err != nil {
		t.Fatalf("errgroup returned error: %v", err)
	}
	if received != n {
		t.Fatalf("received %d events, want %d", received, n)
	}
}
