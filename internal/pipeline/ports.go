// Package pipeline coordinates extraction and loading of geographic
// entities. It owns the generic bounded batcher, the sequential/parallel
// orchestration strategies and the capability interfaces the orchestrator
// depends on; infrastructure adapters implement those interfaces.
package pipeline

import (
	"context"
	"iter"

	"github.com/ny-randriantsarafara/chorographer/internal/model"
)

// Extractor produces restartable, finite, lazily-evaluated entity streams.
// Iterating a stream may perform I/O; a mid-stream failure is yielded as
// the sequence's error value and terminates the stream.
type Extractor interface {
	Roads(ctx context.Context) iter.Seq2[model.Road, error]
	POIs(ctx context.Context) iter.Seq2[model.POI, error]
	Zones(ctx context.Context) iter.Seq2[model.Zone, error]
}

// Repository persists entity streams or pre-built batches, returning the
// number of records written. The batch variants are what the batcher
// invokes per queued batch.
type Repository interface {
	SaveRoads(ctx context.Context, roads iter.Seq2[model.Road, error]) (int, error)
	SaveRoadsBatch(ctx context.Context, roads []model.Road) (int, error)

	SavePOIs(ctx context.Context, pois iter.Seq2[model.POI, error]) (int, error)
	SavePOIsBatch(ctx context.Context, pois []model.POI) (int, error)

	SaveZones(ctx context.Context, zones iter.Seq2[model.Zone, error]) (int, error)
	SaveZonesBatch(ctx context.Context, zones []model.Zone) (int, error)

	SaveSegments(ctx context.Context, segments iter.Seq2[model.Segment, error]) (int, error)
	SaveSegmentsBatch(ctx context.Context, segments []model.Segment) (int, error)
}

// Items adapts a materialized slice to the stream shape the ports consume.
func Items[T any](items []T) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for _, item := range items {
			if !yield(item, nil) {
				return
			}
		}
	}
}

// Collect drains a stream into a slice, stopping at the first error.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var out []T
	for item, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}
