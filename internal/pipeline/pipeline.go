package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ny-randriantsarafara/chorographer/internal/model"
	"github.com/ny-randriantsarafara/chorographer/internal/segmenter"
)

// Result reports how many entities of each kind a run persisted and how
// long the run took. Kinds that were not requested report zero.
type Result struct {
	RoadsCount    int
	POIsCount     int
	ZonesCount    int
	SegmentsCount int
	Duration      time.Duration
}

// Options tunes a pipeline run. Zero values fall back to the defaults the
// store was sized for.
type Options struct {
	BatchSize  int
	QueueDepth int
	Parallel   bool
}

const (
	defaultBatchSize  = 1000
	defaultQueueDepth = 10
)

// Pipeline extracts entities from the source and loads them into the
// repository, one run at a time.
type Pipeline struct {
	extractor Extractor
	repo      Repository
	opts      Options
	log       *zap.Logger
}

// New wires a pipeline over the given ports.
func New(extractor Extractor, repo Repository, opts Options, log *zap.Logger) *Pipeline {
	if opts.BatchSize < 1 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.QueueDepth < 1 {
		opts.QueueDepth = defaultQueueDepth
	}
	return &Pipeline{extractor: extractor, repo: repo, opts: opts, log: log}
}

// Run processes the requested entity kinds (all four when kinds is empty)
// and returns per-kind counts plus wall-clock duration.
//
// In parallel mode any failure falls back to a fresh sequential run; the
// sequential counts are the ones reported and partial parallel results are
// discarded. A sequential failure is fatal.
func (p *Pipeline) Run(ctx context.Context, kinds KindSet) (Result, error) {
	start := time.Now()
	if kinds.IsEmpty() {
		kinds = AllKinds()
	}

	var res Result
	var err error
	if p.opts.Parallel {
		res, err = p.runParallel(ctx, kinds)
		if err != nil {
			p.log.Warn("parallel pipeline failed, retrying sequentially", zap.Error(err))
			res, err = p.runSequential(ctx, kinds)
		}
	} else {
		res, err = p.runSequential(ctx, kinds)
	}
	if err != nil {
		return Result{}, err
	}

	res.Duration = time.Since(start).Round(10 * time.Millisecond)
	return res, nil
}

// runSequential processes each kind to completion before the next begins:
// roads, then segments, then POIs, then zones. Roads are materialized only
// when segments need the complete road set.
func (p *Pipeline) runSequential(ctx context.Context, kinds KindSet) (Result, error) {
	var res Result

	var roads []model.Road
	if kinds.Segments {
		p.log.Info("processing roads")
		var err error
		roads, err = Collect(p.extractor.Roads(ctx))
		if err != nil {
			return Result{}, err
		}
		if kinds.Roads {
			count, err := p.repo.SaveRoads(ctx, Items(roads))
			if err != nil {
				return Result{}, err
			}
			res.RoadsCount = count
			p.log.Info("roads processed", zap.Int("count", count))
		}
	} else if kinds.Roads {
		p.log.Info("processing roads")
		count, err := p.repo.SaveRoads(ctx, p.extractor.Roads(ctx))
		if err != nil {
			return Result{}, err
		}
		res.RoadsCount = count
		p.log.Info("roads processed", zap.Int("count", count))
	}

	if kinds.Segments {
		p.log.Info("processing segments")
		segments := segmenter.SplitRoads(roads)
		count, err := p.repo.SaveSegments(ctx, Items(segments))
		if err != nil {
			return Result{}, err
		}
		res.SegmentsCount = count
		p.log.Info("segments processed", zap.Int("count", count))
	}

	if kinds.POIs {
		p.log.Info("processing POIs")
		count, err := p.repo.SavePOIs(ctx, p.extractor.POIs(ctx))
		if err != nil {
			return Result{}, err
		}
		res.POIsCount = count
		p.log.Info("POIs processed", zap.Int("count", count))
	}

	if kinds.Zones {
		p.log.Info("processing zones")
		count, err := p.repo.SaveZones(ctx, p.extractor.Zones(ctx))
		if err != nil {
			return Result{}, err
		}
		res.ZonesCount = count
		p.log.Info("zones processed", zap.Int("count", count))
	}

	return res, nil
}

// runParallel overlaps extraction with loading through one batcher per
// kind. Roads are materialized up front only when segments depend on them;
// every other stream runs concurrently. All tasks are awaited to
// completion, never cancelled early, and the first recorded failure is
// returned afterwards so the caller can decide on the fallback.
func (p *Pipeline) runParallel(ctx context.Context, kinds KindSet) (Result, error) {
	var res Result
	var g errgroup.Group

	if kinds.Segments {
		p.log.Info("materializing roads for segmentation")
		roads, err := Collect(p.extractor.Roads(ctx))
		if err != nil {
			return Result{}, err
		}

		if kinds.Roads {
			g.Go(func() error {
				b := NewBatcher(Items(roads), p.opts.BatchSize, p.opts.QueueDepth)
				count, err := b.Run(ctx, p.repo.SaveRoadsBatch)
				res.RoadsCount = count
				return err
			})
		}

		g.Go(func() error {
			segments := segmenter.SplitRoads(roads)
			b := NewBatcher(Items(segments), p.opts.BatchSize, p.opts.QueueDepth)
			count, err := b.Run(ctx, p.repo.SaveSegmentsBatch)
			res.SegmentsCount = count
			return err
		})
	} else if kinds.Roads {
		g.Go(func() error {
			b := NewBatcher(p.extractor.Roads(ctx), p.opts.BatchSize, p.opts.QueueDepth)
			count, err := b.Run(ctx, p.repo.SaveRoadsBatch)
			res.RoadsCount = count
			return err
		})
	}

	if kinds.POIs {
		g.Go(func() error {
			b := NewBatcher(p.extractor.POIs(ctx), p.opts.BatchSize, p.opts.QueueDepth)
			count, err := b.Run(ctx, p.repo.SavePOIsBatch)
			res.POIsCount = count
			return err
		})
	}

	if kinds.Zones {
		g.Go(func() error {
			b := NewBatcher(p.extractor.Zones(ctx), p.opts.BatchSize, p.opts.QueueDepth)
			count, err := b.Run(ctx, p.repo.SaveZonesBatch)
			res.ZonesCount = count
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	return res, nil
}
