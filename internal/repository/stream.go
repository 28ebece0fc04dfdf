// Package repository persists domain entities. Two stores implement the
// pipeline's Repository port: Postgres (PostGIS geometry, spatial zone
// hierarchy) and SQLite (WKT text columns, for local runs without a
// database server).
package repository

import (
	"context"
	"encoding/json"
	"iter"
)

// saveStream drains an entity stream through the batch writer, batchSize
// records at a time. A stream error stops the save; batches already
// written stay written and the count reflects them.
func saveStream[T any](
	ctx context.Context,
	seq iter.Seq2[T, error],
	batchSize int,
	saveBatch func(context.Context, []T) (int, error),
) (int, error) {
	count := 0
	batch := make([]T, 0, batchSize)

	flush := func() error {
		n, err := saveBatch(ctx, batch)
		count += n
		batch = batch[:0]
		return err
	}

	for item, err := range seq {
		if err != nil {
			return count, err
		}
		batch = append(batch, item)
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return count, err
			}
		}
	}

	if len(batch) > 0 {
		if err := flush(); err != nil {
			return count, err
		}
	}
	return count, nil
}

func tagsJSON(tags map[string]string) *string {
	if len(tags) == 0 {
		return nil
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return nil
	}
	s := string(raw)
	return &s
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullInt(i int) *int {
	if i == 0 {
		return nil
	}
	return &i
}

func nullInt64(i int64) *int64 {
	if i == 0 {
		return nil
	}
	return &i
}
