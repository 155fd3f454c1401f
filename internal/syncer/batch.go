// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package syncer

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/capsync/pkg/types"
)

// Progress reports batch position. Current is 1-based.
type Progress struct {
	Current     int
	Total       int
	CurrentItem string
}

// ProgressFunc receives a Progress before each item attempt.
type ProgressFunc func(Progress)

// BatchOptions control a batch run.
type BatchOptions struct {
	Force      bool
	OnProgress ProgressFunc
}

// BatchSummary holds counts from a batch run.
type BatchSummary struct {
	Synced int
	Failed int
}

// Total returns the number of items attempted.
func (s BatchSummary) Total() int { return s.Synced + s.Failed }

// Summarize counts successes and failures in a result list.
func Summarize(results []types.SyncResult) BatchSummary {
	var s BatchSummary
	for _, r := range results {
		if r.Success {
			s.Synced++
		} else {
			s.Failed++
		}
	}
	return s
}

// SyncItems syncs items strictly sequentially, in the given order,
// pacing consecutive attempts by RequestDelay to stay under the remote
// rate limit. One item's failure never aborts the batch; every item
// yields a result. The context is checked before each item and during
// the pacing wait, and a cancelled batch returns the results collected
// so far along with the context error.
func (s *Service) SyncItems(ctx context.Context, w io.Writer, keys []string, opts BatchOptions) ([]types.SyncResult, error) {
	results := make([]types.SyncResult, 0, len(keys))
	total := len(keys)

	for i, key := range keys {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		if opts.OnProgress != nil {
			opts.OnProgress(Progress{
				Current:     i + 1,
				Total:       total,
				CurrentItem: s.titleFor(ctx, key),
			})
		}

		result := s.SyncItem(ctx, w, key, Options{Force: opts.Force})
		results = append(results, result)

		if w != nil {
			if result.Success {
				fmt.Fprintf(w, "synced: %s (%s)\n", result.ItemKey, result.ItemTitle)
			} else {
				fmt.Fprintf(w, "failed: %s (%s)\n", result.ItemKey, result.Error)
			}
		}

		if i < total-1 && s.RequestDelay > 0 {
			select {
			case <-ctx.Done():
				return results, ctx.Err()
			case <-time.After(s.RequestDelay):
			}
		}
	}

	if w != nil {
		sum := Summarize(results)
		fmt.Fprintf(w, "\nBatch summary: %d synced, %d failed (total: %d)\n",
			sum.Synced, sum.Failed, sum.Total())
	}
	return results, nil
}
