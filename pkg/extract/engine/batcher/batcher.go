// Package batcher turns one source read stream into bounded groups of
// records. The engine drains a strategy with Next until ErrNoMoreBatches,
// checkpointing after every group.
package batcher

import (
	"context"
	"errors"
	"fmt"

	port "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/application/port"
	model "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/domain/model"
)

// ErrNoMoreBatches signals that the strategy has been exhausted. It is a
// normal termination condition, not a failure.
var ErrNoMoreBatches = errors.New("no more batches")

// Group is one bounded slice of the read stream, processed in a single
// transaction by the engine.
type Group struct {
	Records []port.Record
	// Number is the 1-based sequence number of this group within the run.
	Number int
	// CursorValue is the highest cursor value observed in this group, empty
	// when no cursor field is configured.
	CursorValue string
}

// Params bounds one run's iteration over a source.
type Params struct {
	Client port.SourceClient
	Source model.SourceConfig
	Query  string
	// CursorField and CursorValue bound incremental reads.
	CursorField string
	CursorValue string
	// Offset is the resume point: rows already consumed for offset sources,
	// the last completed page for page sources.
	Offset int64
	// Limit caps the rows requested per source query. A short read terminates
	// the offset strategy.
	Limit int
	// BatchSize is the number of records per yielded group. Page sources
	// yield one page per group regardless.
	BatchSize int
	// SingleShot requests exactly one source query, yielded as one group.
	SingleShot bool
}

// Strategy iterates a source read stream in groups.
type Strategy interface {
	// Next returns the next group, or ErrNoMoreBatches once the stream is
	// exhausted.
	Next(ctx context.Context) (*Group, error)
	// CurrentOffset reports the resume point after the most recently returned
	// group, suitable for checkpointing.
	CurrentOffset() int64
}

// New selects the strategy for the source's increment type.
func New(p Params) (Strategy, error) {
	if p.Client == nil {
		return nil, errors.New("batcher: source client is required")
	}
	if p.SingleShot {
		return newSingleStrategy(p), nil
	}
	switch p.Source.IncrementType {
	case model.IncrementTypePage:
		return newPageStrategy(p), nil
	case model.IncrementTypeOffset, "":
		if p.Limit <= 0 || p.BatchSize <= 0 {
			return nil, fmt.Errorf("batcher: limit (%d) and batch size (%d) must be positive", p.Limit, p.BatchSize)
		}
		return newOffsetStrategy(p), nil
	default:
		return nil, fmt.Errorf("batcher: unsupported increment type: %s", p.Source.IncrementType)
	}
}

// maxCursor returns the highest cursor value across records, starting from
// the given floor.
func maxCursor(records []port.Record, cursorField, floor string) string {
	if cursorField == "" {
		return ""
	}
	highest := floor
	for _, rec := range records {
		raw, ok := rec.Data[cursorField]
		if !ok {
			continue
		}
		val := model.CursorValueString(raw)
		if val == "" {
			continue
		}
		if highest == "" || model.CompareCursor(val, highest) > 0 {
			highest = val
		}
	}
	return highest
}
