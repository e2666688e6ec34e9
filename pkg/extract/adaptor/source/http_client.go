package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	port "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/application/port"
	model "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/domain/model"
	"github.com/Multiwoven/multiwoven-sub000/pkg/extract/support/util/exception"
)

const defaultHTTPTimeout = 30 * time.Second

// HTTPClient reads a JSON collection endpoint. Pagination variables are sent
// as query parameters under the connector-specific names; the cursor bound,
// when present, is sent as an equally named query parameter.
type HTTPClient struct {
	cfg     ConnectorConfig
	client  *http.Client
	limiter *rate.Limiter
}

// NewHTTPClient creates an HTTPClient for one connector. ratePerMinute bounds
// the request rate; zero means unlimited.
func NewHTTPClient(cfg ConnectorConfig, ratePerMinute int) *HTTPClient {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &HTTPClient{
		cfg:     cfg,
		client:  &http.Client{Timeout: timeout},
		limiter: newLimiter(ratePerMinute),
	}
}

// Read fetches one page of records from the collection endpoint.
func (c *HTTPClient) Read(ctx context.Context, params port.ReadParams) ([]port.Record, error) {
	if err := waitLimiter(ctx, c.limiter); err != nil {
		return nil, exception.NewExtractError(moduleName, "rate limit wait interrupted", err, false, false)
	}

	endpoint, err := c.buildURL(params)
	if err != nil {
		return nil, exception.NewExtractError(moduleName,
			fmt.Sprintf("invalid endpoint for connector at '%s'", c.cfg.BaseURL), err, false, false)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, exception.NewExtractError(moduleName, "failed to build source request", err, false, false)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, exception.NewExtractError(moduleName,
			fmt.Sprintf("source request to '%s' failed", endpoint), err, false, true)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, exception.NewExtractError(moduleName,
			fmt.Sprintf("source responded with status %d", resp.StatusCode), nil, false, true)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, exception.NewExtractErrorf(moduleName, "source responded with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, exception.NewExtractError(moduleName, "failed to read source response", err, false, true)
	}
	return c.decode(body)
}

func (c *HTTPClient) buildURL(params port.ReadParams) (string, error) {
	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return "", err
	}
	u = u.JoinPath(c.cfg.Path)

	q := u.Query()
	for name, value := range params.Variables {
		q.Set(name, strconv.FormatInt(value, 10))
	}
	if params.CursorField != "" && params.CursorValue != "" {
		q.Set(params.CursorField, params.CursorValue)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// decode unpacks the response body into records. The body is either a bare
// JSON array or an object whose DataKey field holds the array.
func (c *HTTPClient) decode(body []byte) ([]port.Record, error) {
	raw := body
	if c.cfg.DataKey != "" {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, exception.NewExtractError(moduleName, "failed to decode source response envelope", err, false, false)
		}
		inner, ok := envelope[c.cfg.DataKey]
		if !ok {
			return nil, exception.NewExtractErrorf(moduleName,
				"source response has no '%s' field", c.cfg.DataKey)
		}
		raw = inner
	}

	var rows []model.RecordData
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, exception.NewExtractError(moduleName, "failed to decode source records", err, false, false)
	}

	now := time.Now()
	records := make([]port.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, port.Record{Data: row, EmittedAt: now})
	}
	return records, nil
}
