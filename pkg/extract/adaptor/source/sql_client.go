package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	gormadaptor "github.com/Multiwoven/multiwoven-sub000/pkg/extract/adaptor/database/gorm"
	port "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/application/port"
	model "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/domain/model"
	"github.com/Multiwoven/multiwoven-sub000/pkg/extract/support/util/exception"
)

const moduleName = "source"

// SQLClient reads a database connector through a managed gorm connection.
// The model query is wrapped as a subquery so cursor bounds and pagination
// can be applied without parsing it.
type SQLClient struct {
	conn    *gormadaptor.Connection
	limiter *rate.Limiter
}

// NewSQLClient creates a SQLClient over an established connection.
// ratePerMinute bounds the number of source queries; zero means unlimited.
func NewSQLClient(conn *gormadaptor.Connection, ratePerMinute int) *SQLClient {
	return &SQLClient{conn: conn, limiter: newLimiter(ratePerMinute)}
}

// Read executes one bounded query and returns the rows as records.
func (c *SQLClient) Read(ctx context.Context, params port.ReadParams) ([]port.Record, error) {
	if err := waitLimiter(ctx, c.limiter); err != nil {
		return nil, exception.NewExtractError(moduleName, "rate limit wait interrupted", err, false, false)
	}

	query, args := boundedQuery(params)
	var rows []map[string]interface{}
	if err := c.conn.Gorm().WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, exception.NewExtractError(moduleName,
			fmt.Sprintf("source query failed on connection '%s'", c.conn.Name()), err, false, true)
	}

	now := time.Now()
	records := make([]port.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, port.Record{Data: model.RecordData(row), EmittedAt: now})
	}
	return records, nil
}

// boundedQuery wraps the model query as a subquery, applies the cursor bound
// as a parameterized predicate and appends the pagination window. The cursor
// bound is inclusive; re-read rows are deduplicated downstream by
// fingerprint.
func boundedQuery(p port.ReadParams) (string, []interface{}) {
	base := strings.TrimSuffix(strings.TrimSpace(p.Query), ";")

	var sb strings.Builder
	var args []interface{}
	fmt.Fprintf(&sb, "SELECT * FROM (%s) AS subquery", base)
	if p.CursorField != "" && p.CursorValue != "" {
		fmt.Fprintf(&sb, " WHERE %s >= ?", p.CursorField)
		args = append(args, p.CursorValue)
	}
	fmt.Fprintf(&sb, " LIMIT %d OFFSET %d",
		p.Variables[p.Source.LimitVariable()], p.Variables[p.Source.OffsetVariable()])
	return sb.String(), args
}
