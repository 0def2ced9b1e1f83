package otel

import (
	"sync"
	"testing"
)

func TestRingSnapshotOrder(t *testing.T) {
	r := NewRingBuffer(8)
	for i := 0; i < 5; i++ {
		r.Push(Event{Kind: KindFetchStart, Count: i})
	}
	snap := r.Snapshot()
	if len(snap) != 5 {
		t.Fatalf("expected 5 events, got %d", len(snap))
	}
	for i, e := range snap {
		if e.Count != i {
			t.Errorf("snap[%d].Count = %d, want %d", i, e.Count, i)
		}
	}
}

func TestRingWrapAround(t *testing.T) {
	r := NewRingBuffer(4)
	for i := 0; i < 10; i++ {
		r.Push(Event{Count: i})
	}
	snap := r.Snapshot()
	if len(snap) != 4 {
		t.Fatalf("expected 4 events, got %d", len(snap))
	}
	for i, e := range snap {
		if e.Count != i+6 {
			t.Errorf("snap[%d].Count = %d, want %d", i, e.Count, i+6)
		}
	}
}

func TestRingLast(t *testing.T) {
	r := NewRingBuffer(4)
	for i := 0; i < 6; i++ {
		r.Push(Event{Count: i})
	}

	tests := []struct {
		n    int
		want []int
	}{
		{0, nil},
		{-1, nil},
		{2, []int{4, 5}},
		{4, []int{2, 3, 4, 5}},
		{10, []int{2, 3, 4, 5}},
	}
	for _, tt := range tests {
		got := r.Last(tt.n)
		if len(got) != len(tt.want) {
			t.Errorf("Last(%d) len = %d, want %d", tt.n, len(got), len(tt.want))
			continue
		}
		for i := range got {
			if got[i].Count != tt.want[i] {
				t.Errorf("Last(%d)[%d] = %d, want %d", tt.n, i, got[i].Count, tt.want[i])
			}
		}
	}
}

func TestRingEmpty(t *testing.T) {
	r := NewRingBuffer(0)
	if r.Cap() != DefaultRingSize {
		t.Errorf("Cap = %d, want %d", r.Cap(), DefaultRingSize)
	}
	if r.Snapshot() != nil || r.Last(3) != nil {
		t.Error("empty ring should return nil")
	}
}

func TestRingExtraCopied(t *testing.T) {
	r := NewRingBuffer(2)
	extra := map[string]any{"k": 1}
	r.Push(Event{Extra: extra})
	extra["k"] = 2
	if got := r.Snapshot()[0].Extra["k"]; got != 1 {
		t.Errorf("Extra aliased: got %v", got)
	}
}

func TestRingStats(t *testing.T) {
	r := NewRingBuffer(8)
	r.Push(Event{Kind: KindFetchStart})
	r.Push(Event{Kind: KindFetchComplete})
	r.Push(Event{Kind: KindFetchStart})

	stats := r.Stats()
	if stats[KindFetchStart] != 2 || stats[KindFetchComplete] != 1 {
		t.Errorf("unexpected stats %v", stats)
	}
}

func TestRingConcurrent(t *testing.T) {
	r := NewRingBuffer(16)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Push(Event{Count: j})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = r.Last(4)
			}
		}()
	}
	wg.Wait()
	if r.Len() != 16 {
		t.Errorf("Len = %d, want 16", r.Len())
	}
}
