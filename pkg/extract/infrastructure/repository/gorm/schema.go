package gorm

import (
	"time"

	model "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/domain/model"
)

// SyncEntity is a schema model used for persistence.
type SyncEntity struct {
	ID                     string `gorm:"primaryKey"`
	WorkspaceID            string `gorm:"index"`
	SourceConnectorID      string
	DestinationConnectorID string
	Model                  model.ModelConfig  `gorm:"type:text"`
	Source                 model.SourceConfig `gorm:"type:text"`
	Mode                   model.SyncMode
	Status                 model.SyncStatus
	Schedule               string
	CursorField            string
	CurrentCursor          string
	CreatedAt              time.Time
	UpdatedAt              time.Time
	DiscardedAt            *time.Time `gorm:"index"`
}

func (SyncEntity) TableName() string {
	return "syncs"
}

// SyncRunEntity is a schema model used for persistence.
type SyncRunEntity struct {
	ID          string `gorm:"primaryKey"`
	SyncID      string `gorm:"index"`
	WorkspaceID string
	Status      model.RunStatus
	RunType     model.RunType

	TotalQueryRows int64
	TotalRows      int64
	SuccessfulRows int64
	FailedRows     int64
	SkippedRows    int64
	CurrentOffset  int64

	StartedAt  time.Time
	FinishedAt *time.Time
	Failures   model.FailureList `gorm:"type:text"`

	CreatedAt   time.Time
	LastUpdated time.Time
	Version     int
}

func (SyncRunEntity) TableName() string {
	return "sync_runs"
}

// SyncRecordEntity is a schema model used for persistence. The unique index
// on (sync_id, primary_key_value) is the concurrency-safety mechanism
// preventing duplicate records under concurrent or retried runs.
type SyncRecordEntity struct {
	ID              string  `gorm:"primaryKey"`
	SyncID          string  `gorm:"uniqueIndex:idx_sync_records_sync_pk"`
	SyncRunID       *string `gorm:"index"`
	PrimaryKeyValue string  `gorm:"uniqueIndex:idx_sync_records_sync_pk"`
	Record          model.RecordData `gorm:"type:text"`
	Fingerprint     string
	Action          model.Action
	Status          model.RecordStatus
	ErrorLogs       model.RecordData `gorm:"type:text"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (SyncRecordEntity) TableName() string {
	return "sync_records"
}
