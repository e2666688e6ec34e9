package batcher

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	port "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/application/port"
	model "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/domain/model"
)

// fakeSource serves rows from a fixed dataset, honoring the offset/limit or
// page/per-page variables of each read.
type fakeSource struct {
	rows  []port.Record
	calls []port.ReadParams
	err   error
}

func (f *fakeSource) Read(_ context.Context, params port.ReadParams) ([]port.Record, error) {
	f.calls = append(f.calls, params)
	if f.err != nil {
		return nil, f.err
	}

	var start, count int64
	if params.Source.IncrementType == model.IncrementTypePage {
		page := params.Variables[params.Source.OffsetVariable()]
		perPage := params.Variables[params.Source.LimitVariable()]
		first := int64(params.Source.StartPage)
		if first <= 0 {
			first = 1
		}
		start = (page - first) * perPage
		count = perPage
	} else {
		start = params.Variables[params.Source.OffsetVariable()]
		count = params.Variables[params.Source.LimitVariable()]
	}

	if start >= int64(len(f.rows)) {
		return nil, nil
	}
	end := start + count
	if end > int64(len(f.rows)) {
		end = int64(len(f.rows))
	}
	return f.rows[start:end], nil
}

func makeRows(n int) []port.Record {
	rows := make([]port.Record, n)
	for i := range rows {
		rows[i] = port.Record{Data: model.RecordData{
			"id":         fmt.Sprintf("pk-%03d", i),
			"updated_at": float64(1000 + i),
		}}
	}
	return rows
}

func TestOffsetStrategy_SlicesQueriesIntoGroups(t *testing.T) {
	src := &fakeSource{rows: makeRows(25)}
	strategy, err := New(Params{
		Client:      src,
		Source:      model.SourceConfig{IncrementType: model.IncrementTypeOffset},
		CursorField: "updated_at",
		Limit:       10,
		BatchSize:   4,
	})
	require.NoError(t, err)

	var groups []*Group
	for {
		g, err := strategy.Next(context.Background())
		if errors.Is(err, ErrNoMoreBatches) {
			break
		}
		require.NoError(t, err)
		groups = append(groups, g)
	}

	// 25 rows at limit 10: two full queries plus a short one of 5 rows,
	// sliced into groups of up to 4.
	require.Len(t, groups, 8)
	assert.Equal(t, 4, len(groups[0].Records))
	assert.Equal(t, 2, len(groups[2].Records)) // tail of the first query
	assert.Equal(t, 1, len(groups[7].Records)) // tail of the short query

	// The short read (5 < 10) terminates iteration without a fourth query.
	assert.Len(t, src.calls, 3)

	total := 0
	for _, g := range groups {
		total += len(g.Records)
	}
	assert.Equal(t, 25, total)
	assert.Equal(t, int64(25), strategy.CurrentOffset())
}

func TestOffsetStrategy_GroupNumbersAndCursor(t *testing.T) {
	src := &fakeSource{rows: makeRows(6)}
	strategy, err := New(Params{
		Client:      src,
		Source:      model.SourceConfig{IncrementType: model.IncrementTypeOffset},
		CursorField: "updated_at",
		Limit:       10,
		BatchSize:   3,
	})
	require.NoError(t, err)

	first, err := strategy.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Number)
	assert.Equal(t, "1002", first.CursorValue)

	second, err := strategy.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, second.Number)
	assert.Equal(t, "1005", second.CursorValue)

	_, err = strategy.Next(context.Background())
	assert.ErrorIs(t, err, ErrNoMoreBatches)
}

func TestOffsetStrategy_ResumesFromOffset(t *testing.T) {
	src := &fakeSource{rows: makeRows(10)}
	strategy, err := New(Params{
		Client:    src,
		Source:    model.SourceConfig{IncrementType: model.IncrementTypeOffset},
		Offset:    6,
		Limit:     10,
		BatchSize: 10,
	})
	require.NoError(t, err)

	g, err := strategy.Next(context.Background())
	require.NoError(t, err)
	require.Len(t, g.Records, 4)
	assert.Equal(t, "pk-006", g.Records[0].Data["id"])
	assert.Equal(t, int64(10), strategy.CurrentOffset())
}

func TestOffsetStrategy_EmptyResult(t *testing.T) {
	src := &fakeSource{}
	strategy, err := New(Params{
		Client:    src,
		Source:    model.SourceConfig{IncrementType: model.IncrementTypeOffset},
		Limit:     10,
		BatchSize: 5,
	})
	require.NoError(t, err)

	_, err = strategy.Next(context.Background())
	assert.ErrorIs(t, err, ErrNoMoreBatches)
	assert.Equal(t, int64(0), strategy.CurrentOffset())
}

func TestOffsetStrategy_PropagatesSourceError(t *testing.T) {
	src := &fakeSource{err: errors.New("connection refused")}
	strategy, err := New(Params{
		Client:    src,
		Source:    model.SourceConfig{IncrementType: model.IncrementTypeOffset},
		Limit:     10,
		BatchSize: 5,
	})
	require.NoError(t, err)

	_, err = strategy.Next(context.Background())
	assert.ErrorContains(t, err, "connection refused")
}

func TestPageStrategy_OnePagePerGroup(t *testing.T) {
	src := &fakeSource{rows: makeRows(11)}
	strategy, err := New(Params{
		Client: src,
		Source: model.SourceConfig{
			IncrementType: model.IncrementTypePage,
			PageSize:      5,
		},
	})
	require.NoError(t, err)

	var sizes []int
	for {
		g, err := strategy.Next(context.Background())
		if errors.Is(err, ErrNoMoreBatches) {
			break
		}
		require.NoError(t, err)
		sizes = append(sizes, len(g.Records))
	}

	assert.Equal(t, []int{5, 5, 1}, sizes)
	// The short third page terminates iteration; no fourth request is made.
	assert.Len(t, src.calls, 3)
	assert.Equal(t, int64(3), strategy.CurrentOffset())
}

func TestPageStrategy_UsesConnectorVariableNames(t *testing.T) {
	src := &fakeSource{rows: makeRows(3)}
	strategy, err := New(Params{
		Client: src,
		Source: model.SourceConfig{
			IncrementType: model.IncrementTypePage,
			OffsetParam:   "page_number",
			LimitParam:    "page_length",
			PageSize:      10,
		},
	})
	require.NoError(t, err)

	_, err = strategy.Next(context.Background())
	require.NoError(t, err)

	require.Len(t, src.calls, 1)
	vars := src.calls[0].Variables
	assert.Equal(t, int64(1), vars["page_number"])
	assert.Equal(t, int64(10), vars["page_length"])
}

func TestPageStrategy_ResumesAfterLastCompletedPage(t *testing.T) {
	src := &fakeSource{rows: makeRows(20)}
	strategy, err := New(Params{
		Client: src,
		Source: model.SourceConfig{
			IncrementType: model.IncrementTypePage,
			PageSize:      5,
		},
		Offset: 2,
	})
	require.NoError(t, err)

	g, err := strategy.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pk-010", g.Records[0].Data["id"])
	assert.Equal(t, int64(3), strategy.CurrentOffset())
}

func TestSingleShot_OneQueryOneGroup(t *testing.T) {
	source := &fakeSource{rows: makeRows(10)}
	strategy, err := New(Params{
		Client:      source,
		Source:      model.SourceConfig{IncrementType: model.IncrementTypeOffset},
		Query:       "SELECT * FROM pages",
		CursorField: "updated_at",
		Limit:       10,
		SingleShot:  true,
	})
	require.NoError(t, err)

	group, err := strategy.Next(context.Background())
	require.NoError(t, err)
	assert.Len(t, group.Records, 10)
	assert.Equal(t, 1, group.Number)
	assert.Equal(t, "1009", group.CursorValue)
	assert.Equal(t, int64(0), strategy.CurrentOffset())

	// The whole result came from a single read, even when it fills the limit.
	require.Len(t, source.calls, 1)
	assert.Equal(t, int64(0), source.calls[0].Variables[source.calls[0].Source.OffsetVariable()])

	_, err = strategy.Next(context.Background())
	assert.ErrorIs(t, err, ErrNoMoreBatches)
	assert.Len(t, source.calls, 1)
}

func TestSingleShot_EmptyResult(t *testing.T) {
	source := &fakeSource{}
	strategy, err := New(Params{
		Client:     source,
		Source:     model.SourceConfig{},
		Limit:      5,
		SingleShot: true,
	})
	require.NoError(t, err)

	_, err = strategy.Next(context.Background())
	assert.ErrorIs(t, err, ErrNoMoreBatches)
	require.Len(t, source.calls, 1)
}

func TestNew_RejectsInvalidParams(t *testing.T) {
	_, err := New(Params{Source: model.SourceConfig{}})
	assert.Error(t, err)

	_, err = New(Params{
		Client: &fakeSource{},
		Source: model.SourceConfig{IncrementType: "snapshot"},
	})
	assert.ErrorContains(t, err, "unsupported increment type")

	_, err = New(Params{
		Client: &fakeSource{},
		Source: model.SourceConfig{IncrementType: model.IncrementTypeOffset},
	})
	assert.Error(t, err)
}
