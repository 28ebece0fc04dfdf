package pipeline

import (
	"context"
	"fmt"
	"iter"
	"sync"
)

// Batcher bridges a pull-based source sequence to a push-based batch sink.
// A producer goroutine reads up to batchSize items at a time and pushes
// each batch onto a bounded queue; the consumer invokes the sink per batch
// in FIFO order. The queue bound is the backpressure limit: at most
// maxQueueSize batches of at most batchSize items are buffered, so peak
// memory is independent of the source size.
//
// The batcher knows nothing about entity kinds; each instance owns its
// queue exclusively (single producer, single consumer).
type Batcher[T any] struct {
	source    iter.Seq2[T, error]
	batchSize int
	queue     chan []T

	sourceErr error // written once by the producer, read after it exits
}

// NewBatcher builds a batcher over source. batchSize and maxQueueSize
// must be positive.
func NewBatcher[T any](source iter.Seq2[T, error], batchSize, maxQueueSize int) *Batcher[T] {
	if batchSize < 1 {
		batchSize = 1
	}
	if maxQueueSize < 1 {
		maxQueueSize = 1
	}
	return &Batcher[T]{
		source:    source,
		batchSize: batchSize,
		queue:     make(chan []T, maxQueueSize),
	}
}

// produce reads batches from the source and enqueues them until the source
// is exhausted or fails, then closes the queue (the terminal marker). A
// source error is recorded and ends production without retry; the batch
// being accumulated when the error hit is discarded. done unblocks a
// producer stalled on a full queue when the consumer aborts.
func (b *Batcher[T]) produce(done <-chan struct{}) {
	defer close(b.queue)

	next, stop := iter.Pull2(b.source)
	defer stop()

	for {
		batch := make([]T, 0, b.batchSize)
		for len(batch) < b.batchSize {
			item, err, ok := next()
			if !ok {
				break
			}
			if err != nil {
				b.sourceErr = err
				return
			}
			batch = append(batch, item)
		}

		if len(batch) == 0 {
			return
		}

		select {
		case b.queue <- batch:
		case <-done:
			return
		}

		if len(batch) < b.batchSize {
			// Short batch means the source is exhausted.
			return
		}
	}
}

// Run starts the producer and consumes batches through sink until the
// terminal marker, returning the sum of the sink's reported counts.
//
// A source error is surfaced only after the consumer has drained every
// batch enqueued before it; the partial work is kept but the run is
// reported as failed. A sink error aborts consumption immediately and
// takes precedence.
func (b *Batcher[T]) Run(ctx context.Context, sink func(context.Context, []T) (int, error)) (int, error) {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		b.produce(done)
	}()

	total := 0
	var sinkErr error
	for batch := range b.queue {
		n, err := sink(ctx, batch)
		if err != nil {
			sinkErr = err
			break
		}
		total += n
	}

	close(done)
	wg.Wait()

	if sinkErr != nil {
		return total, fmt.Errorf("persist batch: %w", sinkErr)
	}
	if b.sourceErr != nil {
		return total, b.sourceErr
	}
	return total, nil
}
