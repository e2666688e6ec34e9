package batcher

import (
	"context"

	port "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/application/port"
)

// offsetStrategy reads the source in limit-sized queries and slices each
// result into BatchSize groups. A query returning fewer rows than the limit
// marks the stream exhausted; no further query is issued.
type offsetStrategy struct {
	params Params

	offset    int64
	buffered  [][]port.Record
	exhausted bool
	groupNum  int
}

func newOffsetStrategy(p Params) *offsetStrategy {
	return &offsetStrategy{params: p, offset: p.Offset}
}

func (s *offsetStrategy) Next(ctx context.Context) (*Group, error) {
	if len(s.buffered) == 0 {
		if s.exhausted {
			return nil, ErrNoMoreBatches
		}
		if err := s.fetch(ctx); err != nil {
			return nil, err
		}
		if len(s.buffered) == 0 {
			return nil, ErrNoMoreBatches
		}
	}

	records := s.buffered[0]
	s.buffered = s.buffered[1:]
	s.offset += int64(len(records))
	s.groupNum++

	return &Group{
		Records:     records,
		Number:      s.groupNum,
		CursorValue: maxCursor(records, s.params.CursorField, ""),
	}, nil
}

// fetch issues one source query at the current offset and slices the result
// into groups.
func (s *offsetStrategy) fetch(ctx context.Context) error {
	src := s.params.Source
	rows, err := s.params.Client.Read(ctx, port.ReadParams{
		Query:       s.params.Query,
		CursorField: s.params.CursorField,
		CursorValue: s.params.CursorValue,
		Variables: map[string]int64{
			src.OffsetVariable(): s.offset,
			src.LimitVariable():  int64(s.params.Limit),
		},
		Source: src,
	})
	if err != nil {
		return err
	}

	if len(rows) < s.params.Limit {
		s.exhausted = true
	}

	for start := 0; start < len(rows); start += s.params.BatchSize {
		end := start + s.params.BatchSize
		if end > len(rows) {
			end = len(rows)
		}
		s.buffered = append(s.buffered, rows[start:end])
	}
	return nil
}

// CurrentOffset reports the number of rows consumed so far.
func (s *offsetStrategy) CurrentOffset() int64 {
	return s.offset
}
