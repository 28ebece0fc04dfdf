package pipeline

import (
	"context"
	"errors"
	"iter"
	"sync/atomic"
	"testing"
	"time"
)

func ints(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// failAfter yields n items then a terminal error.
func failAfter(n int, err error) iter.Seq2[int, error] {
	return func(yield func(int, error) bool) {
		for i := 0; i < n; i++ {
			if !yield(i, nil) {
				return
			}
		}
		yield(0, err)
	}
}

func countingSink(total *int, batches *[][]int) func(context.Context, []int) (int, error) {
	return func(_ context.Context, batch []int) (int, error) {
		if batches != nil {
			*batches = append(*batches, batch)
		}
		*total += len(batch)
		return len(batch), nil
	}
}

func TestBatcher_AllItemsDelivered(t *testing.T) {
	cases := []struct {
		name      string
		items     int
		batchSize int
	}{
		{"exact multiple", 100, 10},
		{"remainder batch", 105, 10},
		{"batch size one", 7, 1},
		{"batch larger than input", 3, 50},
		{"empty source", 0, 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got int
			var batches [][]int
			b := NewBatcher(Items(ints(tc.items)), tc.batchSize, 4)

			total, err := b.Run(context.Background(), countingSink(&got, &batches))
			if err != nil {
				t.Fatalf("Run returned error: %v", err)
			}
			if total != tc.items {
				t.Errorf("total = %d, want %d", total, tc.items)
			}
			for i, batch := range batches {
				if len(batch) > tc.batchSize {
					t.Errorf("batch %d has %d items, exceeds batch size %d", i, len(batch), tc.batchSize)
				}
				if len(batch) == 0 {
					t.Errorf("batch %d is empty", i)
				}
			}
		})
	}
}

func TestBatcher_PreservesOrder(t *testing.T) {
	var seen []int
	b := NewBatcher(Items(ints(25)), 4, 2)

	_, err := b.Run(context.Background(), func(_ context.Context, batch []int) (int, error) {
		seen = append(seen, batch...)
		return len(batch), nil
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	for i, v := range seen {
		if v != i {
			t.Fatalf("item %d = %d, batches delivered out of order", i, v)
		}
	}
}

func TestBatcher_SourceErrorSurfacedAfterDrain(t *testing.T) {
	sourceErr := errors.New("pbf read failed")

	var got int
	b := NewBatcher(failAfter(25, sourceErr), 10, 4)
	total, err := b.Run(context.Background(), countingSink(&got, nil))

	if !errors.Is(err, sourceErr) {
		t.Fatalf("error = %v, want the source error", err)
	}
	// Two full batches were enqueued before the failure; the partial third
	// batch is discarded.
	if total != 20 {
		t.Errorf("total = %d, want 20 items drained before the error", total)
	}
}

func TestBatcher_SinkErrorAborts(t *testing.T) {
	sinkErr := errors.New("store unavailable")

	calls := 0
	b := NewBatcher(Items(ints(100)), 10, 4)
	total, err := b.Run(context.Background(), func(_ context.Context, batch []int) (int, error) {
		calls++
		if calls == 2 {
			return 0, sinkErr
		}
		return len(batch), nil
	})

	if !errors.Is(err, sinkErr) {
		t.Fatalf("error = %v, want the sink error", err)
	}
	if total != 10 {
		t.Errorf("total = %d, want 10 (one successful batch)", total)
	}
	if calls != 2 {
		t.Errorf("sink called %d times, want 2", calls)
	}
}

func TestBatcher_SinkErrorTakesPrecedence(t *testing.T) {
	sourceErr := errors.New("source died")
	sinkErr := errors.New("sink died")

	b := NewBatcher(failAfter(10, sourceErr), 5, 4)
	_, err := b.Run(context.Background(), func(_ context.Context, _ []int) (int, error) {
		return 0, sinkErr
	})

	if !errors.Is(err, sinkErr) {
		t.Errorf("error = %v, want the sink error to win", err)
	}
}

func TestBatcher_BackpressureBoundsProduction(t *testing.T) {
	const batchSize, queueDepth = 10, 2

	var produced atomic.Int64
	slowSource := func(yield func(int, error) bool) {
		for i := 0; i < 200; i++ {
			produced.Add(1)
			if !yield(i, nil) {
				return
			}
		}
	}

	release := make(chan struct{})
	b := NewBatcher(iter.Seq2[int, error](slowSource), batchSize, queueDepth)

	firstBatch := make(chan struct{})
	go func() {
		b.Run(context.Background(), func(_ context.Context, batch []int) (int, error) {
			select {
			case <-firstBatch:
			default:
				close(firstBatch)
			}
			<-release
			return len(batch), nil
		})
	}()

	<-firstBatch
	// Give the producer every chance to run ahead while the sink is blocked.
	time.Sleep(50 * time.Millisecond)

	// With the sink holding one batch and the queue holding queueDepth more,
	// the producer can be at most one unqueued batch ahead.
	limit := int64((queueDepth + 2) * batchSize)
	if got := produced.Load(); got > limit {
		t.Errorf("produced %d items while sink was blocked, want at most %d", got, limit)
	}
	close(release)
}

func TestBatcher_ProducerExitsWhenConsumerAborts(t *testing.T) {
	sinkErr := errors.New("abort")

	// Unbounded source with a tiny queue: the producer would deadlock on a
	// full queue if the consumer's abort did not unblock it.
	endless := func(yield func(int, error) bool) {
		for i := 0; ; i++ {
			if !yield(i, nil) {
				return
			}
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		b := NewBatcher(iter.Seq2[int, error](endless), 10, 1)
		b.Run(context.Background(), func(_ context.Context, _ []int) (int, error) {
			return 0, sinkErr
		})
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after sink error, producer likely deadlocked")
	}
}

func TestNewBatcher_ClampsSizes(t *testing.T) {
	var got int
	b := NewBatcher(Items(ints(5)), 0, -1)
	total, err := b.Run(context.Background(), countingSink(&got, nil))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
}
