package batcher

import (
	"context"

	port "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/application/port"
)

// singleStrategy issues exactly one source query and yields the whole result
// as one group. Used for sources whose reads are not resumable, such as
// web-scrape pages.
type singleStrategy struct {
	params Params
	done   bool
}

func newSingleStrategy(p Params) *singleStrategy {
	return &singleStrategy{params: p}
}

func (s *singleStrategy) Next(ctx context.Context) (*Group, error) {
	if s.done {
		return nil, ErrNoMoreBatches
	}
	s.done = true

	src := s.params.Source
	rows, err := s.params.Client.Read(ctx, port.ReadParams{
		Query:       s.params.Query,
		CursorField: s.params.CursorField,
		CursorValue: s.params.CursorValue,
		Variables: map[string]int64{
			src.OffsetVariable(): 0,
			src.LimitVariable():  int64(s.params.Limit),
		},
		Source: src,
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoMoreBatches
	}

	return &Group{
		Records:     rows,
		Number:      1,
		CursorValue: maxCursor(rows, s.params.CursorField, ""),
	}, nil
}

func (s *singleStrategy) CurrentOffset() int64 {
	return 0
}
