package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Multiwoven/multiwoven-sub000/pkg/extract/support/util/exception"
	"github.com/Multiwoven/multiwoven-sub000/pkg/extract/support/util/logger"
)

// SyncMode determines how each run of a Sync bounds its source query.
type SyncMode string

const (
	SyncModeFullRefresh SyncMode = "full_refresh"
	SyncModeIncremental SyncMode = "incremental"
)

// String returns the string representation of the SyncMode.
func (m SyncMode) String() string {
	return string(m)
}

// SyncStatus represents the health of a configured Sync, derived from its
// most recent run outcomes.
type SyncStatus string

const (
	SyncStatusPending  SyncStatus = "pending"
	SyncStatusHealthy  SyncStatus = "healthy"
	SyncStatusFailed   SyncStatus = "failed"
	SyncStatusDisabled SyncStatus = "disabled"
)

// RunType distinguishes scheduled/manual runs from one-off connection tests.
// Both flow through the engine identically.
type RunType string

const (
	RunTypeGeneral RunType = "general"
	RunTypeTest    RunType = "test"
)

// RunStatus represents the state of a SyncRun.
type RunStatus string

const (
	RunStatusPending    RunStatus = "pending"
	RunStatusStarted    RunStatus = "started"
	RunStatusQuerying   RunStatus = "querying"
	RunStatusQueued     RunStatus = "queued"
	RunStatusInProgress RunStatus = "in_progress"
	RunStatusSuccess    RunStatus = "success"
	RunStatusFailed     RunStatus = "failed"
	RunStatusCanceled   RunStatus = "canceled"
	RunStatusPaused     RunStatus = "paused"
)

// String returns the string representation of the RunStatus.
func (s RunStatus) String() string {
	return string(s)
}

// Terminal reports whether the status is one of the terminal outcomes.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunStatusSuccess, RunStatusFailed, RunStatusCanceled:
		return true
	default:
		return false
	}
}

// runTransitions is the transition table for SyncRun statuses. Failed,
// canceled and paused are reachable from every non-terminal state and are
// appended at lookup time rather than repeated per row.
var runTransitions = map[RunStatus][]RunStatus{
	RunStatusPending:    {RunStatusStarted},
	RunStatusStarted:    {RunStatusQuerying},
	RunStatusQuerying:   {RunStatusQueued},
	RunStatusQueued:     {RunStatusInProgress},
	RunStatusInProgress: {RunStatusSuccess},
	RunStatusPaused:     {RunStatusStarted},
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s RunStatus) CanTransitionTo(next RunStatus) bool {
	if s.Terminal() {
		return false
	}
	if next == RunStatusFailed || next == RunStatusCanceled {
		return true
	}
	if next == RunStatusPaused {
		return s != RunStatusPaused
	}
	for _, allowed := range runTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// FailureList holds a deduplicated list of error messages for a run.
type FailureList []string

// Value implements driver.Valuer, converting the FailureList to a JSON string.
func (fl FailureList) Value() (driver.Value, error) {
	if fl == nil {
		return "[]", nil
	}
	data, err := json.Marshal(fl)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner, converting a JSON string to a FailureList.
func (fl *FailureList) Scan(value interface{}) error {
	if value == nil {
		*fl = make(FailureList, 0)
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported Scan type for FailureList: %T", value)
	}
	if len(b) == 0 {
		*fl = make(FailureList, 0)
		return nil
	}
	if err := json.Unmarshal(b, fl); err != nil {
		return fmt.Errorf("failed to unmarshal FailureList JSON: %w", err)
	}
	return nil
}

// QueryType selects how a model's Query is interpreted by the source client.
type QueryType string

const (
	QueryTypeRawSQL        QueryType = "raw_sql"
	QueryTypeTableSelector QueryType = "table_selector"
	QueryTypeWebScrape     QueryType = "web_scrape"
)

// ModelConfig is the named query or table selector a Sync evaluates against
// its source connector.
type ModelConfig struct {
	Name       string    `json:"name"`
	Query      string    `json:"query"`
	QueryType  QueryType `json:"query_type"`
	PrimaryKey string    `json:"primary_key"`
}

// Value implements driver.Valuer.
func (m ModelConfig) Value() (driver.Value, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (m *ModelConfig) Scan(value interface{}) error {
	return scanJSON(value, m, "ModelConfig")
}

// IncrementType selects the pagination style of a source connector.
type IncrementType string

const (
	IncrementTypeOffset IncrementType = "offset"
	IncrementTypePage   IncrementType = "page"
)

// SourceConfig is the protocol-level configuration of a source connector:
// the increment strategy, the connector-specific names of its offset/limit
// variables, and rate limits. It is embedded into the batch parameters passed
// down to the source client for one run.
type SourceConfig struct {
	IncrementType IncrementType `json:"increment_type"`
	// OffsetParam and LimitParam are the connector-specific variable names,
	// e.g. "offset"/"limit" for query sources or "page"/"per_page" for
	// page-style REST sources. Empty values fall back to the defaults for the
	// increment type.
	OffsetParam string `json:"offset_param"`
	LimitParam  string `json:"limit_param"`
	// StartPage is the first page number of a page-style source (default 1).
	StartPage int `json:"start_page"`
	// PageSize is the page size of a page-style source.
	PageSize int `json:"page_size"`
	// RateLimit is the maximum number of source requests per minute; zero
	// means unlimited. Enforcement is the source client's concern.
	RateLimit int `json:"rate_limit"`
}

// Value implements driver.Valuer.
func (c SourceConfig) Value() (driver.Value, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (c *SourceConfig) Scan(value interface{}) error {
	return scanJSON(value, c, "SourceConfig")
}

// OffsetVariable returns the connector-specific offset variable name.
func (c SourceConfig) OffsetVariable() string {
	if c.OffsetParam != "" {
		return c.OffsetParam
	}
	if c.IncrementType == IncrementTypePage {
		return "page"
	}
	return "offset"
}

// LimitVariable returns the connector-specific limit variable name.
func (c SourceConfig) LimitVariable() string {
	if c.LimitParam != "" {
		return c.LimitParam
	}
	if c.IncrementType == IncrementTypePage {
		return "per_page"
	}
	return "limit"
}

// Sync is a configured source-to-destination pipeline.
type Sync struct {
	ID                     string
	WorkspaceID            string
	SourceConnectorID      string
	DestinationConnectorID string
	Model                  ModelConfig
	Source                 SourceConfig
	Mode                   SyncMode
	Status                 SyncStatus
	// Schedule is the cron expression driving scheduled runs. The scheduler
	// itself lives outside the engine; the field is configuration only.
	Schedule string
	// CursorField is the monotonically increasing source column used to bound
	// incremental queries. Empty for sources without one.
	CursorField string
	// CurrentCursor is the highest cursor value observed so far. It only
	// advances forward in incremental mode and is reset to empty when cleared
	// by a configuration change.
	CurrentCursor string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	// DiscardedAt marks the Sync as soft-deleted. Discarded Syncs are invisible
	// to lookups; their historical SyncRecords are detached, not deleted.
	DiscardedAt *time.Time
}

// NewSync creates a new Sync in pending status.
func NewSync(workspaceID, sourceConnectorID, destinationConnectorID string, modelCfg ModelConfig, sourceCfg SourceConfig, mode SyncMode) *Sync {
	now := time.Now()
	return &Sync{
		ID:                     NewID(),
		WorkspaceID:            workspaceID,
		SourceConnectorID:      sourceConnectorID,
		DestinationConnectorID: destinationConnectorID,
		Model:                  modelCfg,
		Source:                 sourceCfg,
		Mode:                   mode,
		Status:                 SyncStatusPending,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
}

// Discarded reports whether the Sync has been soft-deleted.
func (s *Sync) Discarded() bool {
	return s.DiscardedAt != nil
}

// Incremental reports whether this Sync runs in incremental mode with a
// configured cursor field.
func (s *Sync) Incremental() bool {
	return s.Mode == SyncModeIncremental && s.CursorField != ""
}

// AdvanceCursor moves the current cursor forward. In incremental mode the
// cursor never moves backwards; full-refresh Syncs ignore cursor advances.
func (s *Sync) AdvanceCursor(value string) {
	if s.Mode != SyncModeIncremental || value == "" {
		return
	}
	if s.CurrentCursor == "" || CompareCursor(value, s.CurrentCursor) > 0 {
		s.CurrentCursor = value
		s.UpdatedAt = time.Now()
	}
}

// ClearCursor resets the cursor, used when configuration changes invalidate
// previously observed progress.
func (s *Sync) ClearCursor() {
	s.CurrentCursor = ""
	s.UpdatedAt = time.Now()
}

// SyncRun is one execution attempt of a Sync.
type SyncRun struct {
	ID          string
	SyncID      string
	WorkspaceID string
	Status      RunStatus
	RunType     RunType

	// TotalQueryRows counts every row returned by source queries, including
	// rows later skipped as in-batch duplicates.
	TotalQueryRows int64
	// TotalRows counts logical rows staged for delivery by this run.
	TotalRows int64
	// SuccessfulRows and FailedRows are per-destination-write outcomes,
	// incremented by the delivery side.
	SuccessfulRows int64
	FailedRows     int64
	// SkippedRows is a running total of rows skipped within batches
	// (duplicate primary keys); it is reset only at run creation.
	SkippedRows int64

	// CurrentOffset is checkpointed after each processed batch so a resumed
	// run can skip already-seen data. For page-style sources it holds the
	// last completed page number.
	CurrentOffset int64

	StartedAt  time.Time
	FinishedAt *time.Time
	Failures   FailureList

	CreatedAt   time.Time
	LastUpdated time.Time
	// Version supports optimistic locking in the persistence layer.
	Version int
}

// NewSyncRun creates a new SyncRun in pending status.
func NewSyncRun(sync *Sync, runType RunType) *SyncRun {
	now := time.Now()
	return &SyncRun{
		ID:          NewID(),
		SyncID:      sync.ID,
		WorkspaceID: sync.WorkspaceID,
		Status:      RunStatusPending,
		RunType:     runType,
		StartedAt:   now,
		Failures:    make(FailureList, 0),
		CreatedAt:   now,
		LastUpdated: now,
	}
}

// TransitionTo moves the run to newStatus if the transition table allows it.
// An illegal transition returns an error and leaves the status unchanged;
// this is a programming-error guard, not a user-facing condition.
func (r *SyncRun) TransitionTo(newStatus RunStatus) error {
	if !r.Status.CanTransitionTo(newStatus) {
		return exception.NewExtractErrorf("sync_run",
			"invalid state transition for SyncRun %s: %s -> %s", r.ID, r.Status, newStatus)
	}
	r.Status = newStatus
	r.LastUpdated = time.Now()
	return nil
}

// MarkAsStarted transitions the run from pending to started.
func (r *SyncRun) MarkAsStarted() error {
	return r.TransitionTo(RunStatusStarted)
}

// MarkAsQuerying transitions the run into the extraction phase.
func (r *SyncRun) MarkAsQuerying() error {
	return r.TransitionTo(RunStatusQuerying)
}

// MarkAsQueued records that extraction is complete and the staged records are
// ready for delivery.
func (r *SyncRun) MarkAsQueued() error {
	return r.TransitionTo(RunStatusQueued)
}

// MarkAsInProgress records that delivery has picked up the run.
func (r *SyncRun) MarkAsInProgress() error {
	return r.TransitionTo(RunStatusInProgress)
}

// MarkAsSuccess terminates the run successfully and stamps FinishedAt.
func (r *SyncRun) MarkAsSuccess() error {
	if err := r.TransitionTo(RunStatusSuccess); err != nil {
		return err
	}
	now := time.Now()
	r.FinishedAt = &now
	return nil
}

// MarkAsFailed terminates the run as failed, stamps FinishedAt and records
// the failure reason. Valid from every non-terminal state.
func (r *SyncRun) MarkAsFailed(cause error) error {
	if err := r.TransitionTo(RunStatusFailed); err != nil {
		return err
	}
	now := time.Now()
	r.FinishedAt = &now
	if cause != nil {
		r.AddFailure(cause)
	}
	return nil
}

// MarkAsCanceled terminates the run as canceled and stamps FinishedAt.
func (r *SyncRun) MarkAsCanceled() error {
	if err := r.TransitionTo(RunStatusCanceled); err != nil {
		return err
	}
	now := time.Now()
	r.FinishedAt = &now
	return nil
}

// MarkAsPaused parks the run in the paused state.
func (r *SyncRun) MarkAsPaused() error {
	return r.TransitionTo(RunStatusPaused)
}

// TerminalStatus reports whether the run reached a terminal outcome.
func (r *SyncRun) TerminalStatus() bool {
	return r.Status.Terminal()
}

// AddFailure appends an error message to the run, skipping duplicates.
func (r *SyncRun) AddFailure(err error) {
	if err == nil {
		return
	}
	msg := exception.ExtractErrorMessage(err)
	for _, existing := range r.Failures {
		if existing == msg {
			logger.Debugf("Skipped adding duplicate failure '%s' to SyncRun (ID: %s).", msg, r.ID)
			return
		}
	}
	r.Failures = append(r.Failures, msg)
	r.LastUpdated = time.Now()
}

// RowFailurePercent returns failed rows as a percentage of total rows,
// defaulting to 0 when no rows were processed.
func (r *SyncRun) RowFailurePercent() float64 {
	if r.TotalRows == 0 {
		return 0
	}
	return float64(r.FailedRows) / float64(r.TotalRows) * 100
}

// NewID generates a new UUID string.
func NewID() string {
	return uuid.New().String()
}

// scanJSON decodes a JSON column value into target.
func scanJSON(value interface{}, target interface{}, typeName string) error {
	if value == nil {
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported Scan type for %s: %T", typeName, value)
	}
	if len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, target); err != nil {
		return fmt.Errorf("failed to unmarshal %s JSON: %w", typeName, err)
	}
	return nil
}
