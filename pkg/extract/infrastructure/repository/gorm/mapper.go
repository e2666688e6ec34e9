package gorm

import (
	model "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/domain/model"
)

func fromDomainSync(s *model.Sync) *SyncEntity {
	return &SyncEntity{
		ID:                     s.ID,
		WorkspaceID:            s.WorkspaceID,
		SourceConnectorID:      s.SourceConnectorID,
		DestinationConnectorID: s.DestinationConnectorID,
		Model:                  s.Model,
		Source:                 s.Source,
		Mode:                   s.Mode,
		Status:                 s.Status,
		Schedule:               s.Schedule,
		CursorField:            s.CursorField,
		CurrentCursor:          s.CurrentCursor,
		CreatedAt:              s.CreatedAt,
		UpdatedAt:              s.UpdatedAt,
		DiscardedAt:            s.DiscardedAt,
	}
}

func toDomainSync(e *SyncEntity) *model.Sync {
	return &model.Sync{
		ID:                     e.ID,
		WorkspaceID:            e.WorkspaceID,
		SourceConnectorID:      e.SourceConnectorID,
		DestinationConnectorID: e.DestinationConnectorID,
		Model:                  e.Model,
		Source:                 e.Source,
		Mode:                   e.Mode,
		Status:                 e.Status,
		Schedule:               e.Schedule,
		CursorField:            e.CursorField,
		CurrentCursor:          e.CurrentCursor,
		CreatedAt:              e.CreatedAt,
		UpdatedAt:              e.UpdatedAt,
		DiscardedAt:            e.DiscardedAt,
	}
}

func fromDomainSyncRun(r *model.SyncRun) *SyncRunEntity {
	return &SyncRunEntity{
		ID:             r.ID,
		SyncID:         r.SyncID,
		WorkspaceID:    r.WorkspaceID,
		Status:         r.Status,
		RunType:        r.RunType,
		TotalQueryRows: r.TotalQueryRows,
		TotalRows:      r.TotalRows,
		SuccessfulRows: r.SuccessfulRows,
		FailedRows:     r.FailedRows,
		SkippedRows:    r.SkippedRows,
		CurrentOffset:  r.CurrentOffset,
		StartedAt:      r.StartedAt,
		FinishedAt:     r.FinishedAt,
		Failures:       r.Failures,
		CreatedAt:      r.CreatedAt,
		LastUpdated:    r.LastUpdated,
		Version:        r.Version,
	}
}

func toDomainSyncRun(e *SyncRunEntity) *model.SyncRun {
	return &model.SyncRun{
		ID:             e.ID,
		SyncID:         e.SyncID,
		WorkspaceID:    e.WorkspaceID,
		Status:         e.Status,
		RunType:        e.RunType,
		TotalQueryRows: e.TotalQueryRows,
		TotalRows:      e.TotalRows,
		SuccessfulRows: e.SuccessfulRows,
		FailedRows:     e.FailedRows,
		SkippedRows:    e.SkippedRows,
		CurrentOffset:  e.CurrentOffset,
		StartedAt:      e.StartedAt,
		FinishedAt:     e.FinishedAt,
		Failures:       e.Failures,
		CreatedAt:      e.CreatedAt,
		LastUpdated:    e.LastUpdated,
		Version:        e.Version,
	}
}

func fromDomainSyncRecord(r *model.SyncRecord) *SyncRecordEntity {
	return &SyncRecordEntity{
		ID:              r.ID,
		SyncID:          r.SyncID,
		SyncRunID:       r.SyncRunID,
		PrimaryKeyValue: r.PrimaryKeyValue,
		Record:          r.Record,
		Fingerprint:     r.Fingerprint,
		Action:          r.Action,
		Status:          r.Status,
		ErrorLogs:       r.ErrorLogs,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func toDomainSyncRecord(e *SyncRecordEntity) *model.SyncRecord {
	return &model.SyncRecord{
		ID:              e.ID,
		SyncID:          e.SyncID,
		SyncRunID:       e.SyncRunID,
		PrimaryKeyValue: e.PrimaryKeyValue,
		Record:          e.Record,
		Fingerprint:     e.Fingerprint,
		Action:          e.Action,
		Status:          e.Status,
		ErrorLogs:       e.ErrorLogs,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}
