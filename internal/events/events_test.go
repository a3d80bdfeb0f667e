package events

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
)

func TestRingBuffer_Emit(t *testing.T) {
	rb := NewRingBuffer(10)

	rb.Emit(context.Background(), Event{Type: EventTransfer, Contract: "c1", TokenID: 1})

	if rb.Count() != 1 {
		t.Errorf("Count() = %d, want 1", rb.Count())
	}

	recent := rb.Recent(1)
	if len(recent) != 1 {
		t.Fatalf("Recent(1) len = %d, want 1", len(recent))
	}
	if recent[0].ID == "" {
		t.Error("ID should be generated")
	}
	if recent[0].Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
	if recent[0].Sequence != 1 {
		t.Errorf("Sequence = %d, want 1", recent[0].Sequence)
	}
}

func TestRingBuffer_Overflow(t *testing.T) {
	rb := NewRingBuffer(5)

	for i := uint64(1); i <= 10; i++ {
		rb.Emit(context.Background(), Event{Type: EventTransfer, TokenID: i})
	}

	if rb.Count() != 5 {
		t.Errorf("Count() = %d, want 5", rb.Count())
	}

	recent := rb.Recent(5)
	if len(recent) != 5 {
		t.Fatalf("Recent(5) len = %d, want 5", len(recent))
	}
	if recent[0].TokenID != 10 {
		t.Errorf("most recent token = %d, want 10", recent[0].TokenID)
	}
	if recent[4].TokenID != 6 {
		t.Errorf("oldest token = %d, want 6", recent[4].TokenID)
	}
	if recent[0].Sequence != 10 {
		t.Errorf("sequence keeps counting past capacity, got %d", recent[0].Sequence)
	}
}

func TestRingBuffer_Filters(t *testing.T) {
	rb := NewRingBuffer(20)
	ctx := context.Background()

	rb.Emit(ctx, Event{Type: EventInitialized, Contract: "a"})
	rb.Emit(ctx, Event{Type: EventTransfer, Contract: "a", TokenID: 1})
	rb.Emit(ctx, Event{Type: EventTransfer, Contract: "b", TokenID: 1})
	rb.Emit(ctx, Event{Type: EventBaseURIUpdated, Contract: "a"})

	if got := rb.RecentByContract("a", 10); len(got) != 3 {
		t.Errorf("RecentByContract(a) len = %d, want 3", len(got))
	}
	if got := rb.RecentByType(EventTransfer, 10); len(got) != 2 {
		t.Errorf("RecentByType(Transfer) len = %d, want 2", len(got))
	}
	if got := rb.Recent(0); got != nil {
		t.Errorf("Recent(0) = %v, want nil", got)
	}
}

func TestRingBuffer_Subscribe(t *testing.T) {
	rb := NewRingBuffer(10)
	var all, transfers int32

	unsubAll := rb.Subscribe(nil, func(Event) { atomic.AddInt32(&all, 1) })
	rb.Subscribe(func(e Event) bool { return e.Type == EventTransfer }, func(Event) {
		atomic.AddInt32(&transfers, 1)
	})

	rb.Emit(context.Background(), Event{Type: EventTransfer})
	rb.Emit(context.Background(), Event{Type: EventUpgraded})
	unsubAll()
	rb.Emit(context.Background(), Event{Type: EventTransfer})

	if all != 2 {
		t.Errorf("all handler calls = %d, want 2", all)
	}
	if transfers != 2 {
		t.Errorf("transfer handler calls = %d, want 2", transfers)
	}
}

func TestRingBuffer_RequestID(t *testing.T) {
	rb := NewRingBuffer(2)
	ctx := WithRequestID(context.Background(), "req-42")

	rb.Emit(ctx, Event{Type: EventTransfer})

	if got := rb.Recent(1)[0].RequestID; got != "req-42" {
		t.Errorf("RequestID = %q, want req-42", got)
	}
}

func TestRingBuffer_Concurrent(t *testing.T) {
	rb := NewRingBuffer(100)
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				rb.Emit(context.Background(), Event{Type: EventTransfer})
				_ = rb.Recent(5)
			}
		}()
	}
	wg.Wait()

	if rb.Count() != 100 {
		t.Errorf("Count() = %d, want 100", rb.Count())
	}
	if seq := rb.Recent(1)[0].Sequence; seq != 500 {
		t.Errorf("last sequence = %d, want 500", seq)
	}
}
