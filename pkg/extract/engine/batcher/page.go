package batcher

import (
	"context"

	port "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/application/port"
)

// pageStrategy reads page-style sources one page per group. An empty page
// ends the stream; a short page is returned and then ends it.
type pageStrategy struct {
	params Params

	page      int64
	lastDone  int64
	exhausted bool
	groupNum  int
}

func newPageStrategy(p Params) *pageStrategy {
	start := int64(p.Source.StartPage)
	if start <= 0 {
		start = 1
	}
	// A positive offset resumes after the last completed page.
	if p.Offset > 0 {
		start = p.Offset + 1
	}
	return &pageStrategy{params: p, page: start, lastDone: p.Offset}
}

func (s *pageStrategy) Next(ctx context.Context) (*Group, error) {
	if s.exhausted {
		return nil, ErrNoMoreBatches
	}

	src := s.params.Source
	perPage := int64(src.PageSize)
	if perPage <= 0 {
		perPage = int64(s.params.Limit)
	}

	rows, err := s.params.Client.Read(ctx, port.ReadParams{
		Query:       s.params.Query,
		CursorField: s.params.CursorField,
		CursorValue: s.params.CursorValue,
		Variables: map[string]int64{
			src.OffsetVariable(): s.page,
			src.LimitVariable():  perPage,
		},
		Source: src,
	})
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		s.exhausted = true
		return nil, ErrNoMoreBatches
	}
	if int64(len(rows)) < perPage {
		s.exhausted = true
	}

	s.lastDone = s.page
	s.page++
	s.groupNum++

	return &Group{
		Records:     rows,
		Number:      s.groupNum,
		CursorValue: maxCursor(rows, s.params.CursorField, ""),
	}, nil
}

// CurrentOffset reports the last completed page number.
func (s *pageStrategy) CurrentOffset() int64 {
	return s.lastDone
}
