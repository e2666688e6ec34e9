// Package inmemory provides a mutex-guarded, map-backed SyncRepository. It
// backs engine tests and DB-less development runs.
package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	model "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/domain/model"
	repo "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/domain/repository"
)

// Repository implements repository.SyncRepository in memory.
type Repository struct {
	mu      sync.RWMutex
	syncs   map[string]*model.Sync
	runs    map[string]*model.SyncRun
	records map[string]map[string]*model.SyncRecord // syncID -> primary key -> record
}

// NewRepository creates an empty in-memory repository.
func NewRepository() *Repository {
	return &Repository{
		syncs:   make(map[string]*model.Sync),
		runs:    make(map[string]*model.SyncRun),
		records: make(map[string]map[string]*model.SyncRecord),
	}
}

func cloneSync(s *model.Sync) *model.Sync {
	c := *s
	if s.DiscardedAt != nil {
		t := *s.DiscardedAt
		c.DiscardedAt = &t
	}
	return &c
}

func cloneRun(r *model.SyncRun) *model.SyncRun {
	c := *r
	if r.FinishedAt != nil {
		t := *r.FinishedAt
		c.FinishedAt = &t
	}
	c.Failures = append(model.FailureList(nil), r.Failures...)
	return &c
}

func cloneRecord(r *model.SyncRecord) *model.SyncRecord {
	c := *r
	if r.SyncRunID != nil {
		id := *r.SyncRunID
		c.SyncRunID = &id
	}
	if r.Record != nil {
		data := make(model.RecordData, len(r.Record))
		for k, v := range r.Record {
			data[k] = v
		}
		c.Record = data
	}
	return &c
}

// SaveSync persists a new Sync.
func (r *Repository) SaveSync(_ context.Context, s *model.Sync) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.syncs[s.ID]; exists {
		return fmt.Errorf("sync '%s' already exists", s.ID)
	}
	r.syncs[s.ID] = cloneSync(s)
	return nil
}

// UpdateSync updates an existing Sync.
func (r *Repository) UpdateSync(_ context.Context, s *model.Sync) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.syncs[s.ID]; !exists {
		return repo.ErrSyncNotFound
	}
	r.syncs[s.ID] = cloneSync(s)
	return nil
}

// FindSyncByID finds a Sync by ID; discarded Syncs are treated as not found.
func (r *Repository) FindSyncByID(_ context.Context, id string) (*model.Sync, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.syncs[id]
	if !ok || s.Discarded() {
		return nil, repo.ErrSyncNotFound
	}
	return cloneSync(s), nil
}

// UpdateSyncCursor persists a cursor advance.
func (r *Repository) UpdateSyncCursor(_ context.Context, syncID, cursor string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.syncs[syncID]
	if !ok {
		return repo.ErrSyncNotFound
	}
	s.CurrentCursor = cursor
	s.UpdatedAt = time.Now()
	return nil
}

// SoftDeleteSync stamps DiscardedAt on the Sync.
func (r *Repository) SoftDeleteSync(_ context.Context, syncID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.syncs[syncID]
	if !ok {
		return repo.ErrSyncNotFound
	}
	if s.DiscardedAt == nil {
		now := time.Now()
		s.DiscardedAt = &now
		s.UpdatedAt = now
	}
	return nil
}

// SaveSyncRun persists a new SyncRun.
func (r *Repository) SaveSyncRun(_ context.Context, run *model.SyncRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.runs[run.ID]; exists {
		return fmt.Errorf("sync run '%s' already exists", run.ID)
	}
	r.runs[run.ID] = cloneRun(run)
	return nil
}

// UpdateSyncRun updates a SyncRun with optimistic locking on Version.
func (r *Repository) UpdateSyncRun(_ context.Context, run *model.SyncRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.runs[run.ID]
	if !ok {
		return repo.ErrSyncRunNotFound
	}
	if stored.Version != run.Version {
		return fmt.Errorf("optimistic lock conflict on sync run '%s': have version %d, want %d", run.ID, run.Version, stored.Version)
	}
	run.Version++
	run.LastUpdated = time.Now()
	r.runs[run.ID] = cloneRun(run)
	return nil
}

// FindSyncRunByID finds a SyncRun by ID.
func (r *Repository) FindSyncRunByID(_ context.Context, id string) (*model.SyncRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[id]
	if !ok {
		return nil, repo.ErrSyncRunNotFound
	}
	return cloneRun(run), nil
}

// ApplyRunCounters applies counter deltas and the offset checkpoint, both to
// the stored run and to the caller's copy.
func (r *Repository) ApplyRunCounters(_ context.Context, run *model.SyncRun, deltas repo.RunCounters) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.runs[run.ID]
	if !ok {
		return repo.ErrSyncRunNotFound
	}
	stored.TotalQueryRows += deltas.TotalQueryRows
	stored.TotalRows += deltas.TotalRows
	stored.SuccessfulRows += deltas.SuccessfulRows
	stored.FailedRows += deltas.FailedRows
	stored.SkippedRows += deltas.SkippedRows
	stored.CurrentOffset = run.CurrentOffset
	stored.LastUpdated = time.Now()

	run.TotalQueryRows = stored.TotalQueryRows
	run.TotalRows = stored.TotalRows
	run.SuccessfulRows = stored.SuccessfulRows
	run.FailedRows = stored.FailedRows
	run.SkippedRows = stored.SkippedRows
	return nil
}

// FindSyncRunsBySync lists all runs of a Sync, newest first.
func (r *Repository) FindSyncRunsBySync(_ context.Context, syncID string) ([]*model.SyncRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var runs []*model.SyncRun
	for _, run := range r.runs {
		if run.SyncID == syncID {
			runs = append(runs, cloneRun(run))
		}
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	return runs, nil
}

// FindSyncRecord finds the record for a (syncID, primaryKeyValue) pair.
func (r *Repository) FindSyncRecord(_ context.Context, syncID, primaryKeyValue string) (*model.SyncRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[syncID][primaryKeyValue]
	if !ok {
		return nil, repo.ErrSyncRecordNotFound
	}
	return cloneRecord(rec), nil
}

// UpsertSyncRecord inserts or replaces the record for its
// (sync_id, primary_key) pair.
func (r *Repository) UpsertSyncRecord(_ context.Context, record *model.SyncRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	byPK, ok := r.records[record.SyncID]
	if !ok {
		byPK = make(map[string]*model.SyncRecord)
		r.records[record.SyncID] = byPK
	}
	if existing, exists := byPK[record.PrimaryKeyValue]; exists {
		record.ID = existing.ID
	}
	byPK[record.PrimaryKeyValue] = cloneRecord(record)
	return nil
}

// CountSyncRecordsByRun counts records attached to a run.
func (r *Repository) CountSyncRecordsByRun(_ context.Context, syncRunID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, byPK := range r.records {
		for _, rec := range byPK {
			if rec.SyncRunID != nil && *rec.SyncRunID == syncRunID {
				count++
			}
		}
	}
	return count, nil
}

// DetachSyncRecordsBySync nulls the run pointer on every record of the Sync.
func (r *Repository) DetachSyncRecordsBySync(_ context.Context, syncID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, rec := range r.records[syncID] {
		if rec.SyncRunID != nil {
			rec.SyncRunID = nil
			rec.UpdatedAt = time.Now()
			count++
		}
	}
	return count, nil
}

// Close implements repository.SyncRepository.
func (r *Repository) Close() error {
	return nil
}

var _ repo.SyncRepository = (*Repository)(nil)
