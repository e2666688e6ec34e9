package model

import (
	"crypto/sha256"
	"database/sql/driver"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Action is the destination operation a SyncRecord is staged for.
type Action string

const (
	ActionDestinationInsert Action = "destination_insert"
	ActionDestinationUpdate Action = "destination_update"
)

// RecordStatus is the per-attempt delivery status of a SyncRecord.
type RecordStatus string

const (
	RecordStatusPending RecordStatus = "pending"
	RecordStatusSuccess RecordStatus = "success"
	RecordStatusFailed  RecordStatus = "failed"
)

// RecordData is the normalized field map of one source row.
type RecordData map[string]interface{}

// Value implements driver.Valuer, converting the RecordData to a JSON string.
func (d RecordData) Value() (driver.Value, error) {
	if d == nil {
		return "{}", nil
	}
	data, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner, converting a JSON string to RecordData.
func (d *RecordData) Scan(value interface{}) error {
	if value == nil {
		*d = make(RecordData)
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported Scan type for RecordData: %T", value)
	}
	if len(b) == 0 {
		*d = make(RecordData)
		return nil
	}
	if err := json.Unmarshal(b, d); err != nil {
		return fmt.Errorf("failed to unmarshal RecordData JSON: %w", err)
	}
	return nil
}

// SyncRecord is the most-recent known state of one logical source row for a
// Sync, keyed uniquely by (SyncID, PrimaryKeyValue). It is created on first
// sight of a primary key and updated when the row's fingerprint changes; the
// extraction engine never deletes it.
type SyncRecord struct {
	ID              string
	SyncID          string
	// SyncRunID points at the run that last touched this record. It is nil
	// after the parent Sync is soft-deleted and its records are detached.
	SyncRunID       *string
	PrimaryKeyValue string
	Record          RecordData
	Fingerprint     string
	Action          Action
	Status          RecordStatus
	// ErrorLogs holds structured destination-side error output for the last
	// failed delivery attempt.
	ErrorLogs RecordData
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSyncRecord initializes a SyncRecord for a primary key never seen before.
// The fingerprint is left empty until the first observation is applied.
func NewSyncRecord(syncID, primaryKeyValue string) *SyncRecord {
	now := time.Now()
	return &SyncRecord{
		ID:              NewID(),
		SyncID:          syncID,
		PrimaryKeyValue: primaryKeyValue,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// New reports whether the record has never been persisted with an
// observation (no prior fingerprint).
func (r *SyncRecord) New() bool {
	return r.Fingerprint == ""
}

// ApplyObservation records a new sighting of the row. A new record is staged
// as an insert; an existing record whose content changed is staged as an
// update with its status reset to pending and reattached to the current run.
// The caller is responsible for not invoking this when the fingerprint is
// unchanged.
func (r *SyncRecord) ApplyObservation(data RecordData, fingerprint, syncRunID string) {
	if r.New() {
		r.Action = ActionDestinationInsert
	} else {
		r.Action = ActionDestinationUpdate
	}
	r.Record = data
	r.Fingerprint = fingerprint
	r.Status = RecordStatusPending
	r.ErrorLogs = nil
	r.SyncRunID = &syncRunID
	r.UpdatedAt = time.Now()
}

// Fingerprint computes a deterministic content hash over a record's field
// map. The map is serialized as canonical JSON with recursively sorted keys,
// so the hash is stable across key ordering and changes if and only if any
// field value changes.
func Fingerprint(data RecordData) (string, error) {
	canonical, err := marshalCanonical(map[string]interface{}(data))
	if err != nil {
		return "", fmt.Errorf("failed to marshal record to canonical JSON: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// marshalCanonical serializes a value as JSON with map keys sorted at every
// nesting level.
func marshalCanonical(val interface{}) ([]byte, error) {
	m, ok := val.(map[string]interface{})
	if !ok {
		if rd, isRD := val.(RecordData); isRD {
			m = map[string]interface{}(rd)
		} else {
			return json.Marshal(val)
		}
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString("{")
	for i, k := range keys {
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		valBytes, err := marshalCanonical(m[k])
		if err != nil {
			return nil, err
		}
		sb.Write(keyBytes)
		sb.WriteString(":")
		sb.Write(valBytes)
		if i < len(keys)-1 {
			sb.WriteString(",")
		}
	}
	sb.WriteString("}")
	return []byte(sb.String()), nil
}

// CompareCursor orders two cursor values. Values that both parse as numbers
// compare numerically; everything else compares lexicographically, which is
// correct for ISO-8601 timestamps.
func CompareCursor(a, b string) int {
	af, aErr := strconv.ParseFloat(a, 64)
	bf, bErr := strconv.ParseFloat(b, 64)
	if aErr == nil && bErr == nil {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}

// CursorValueString renders a record field value as a cursor string.
func CursorValueString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		// JSON numbers decode as float64; render integers without a decimal
		// point so cursors round-trip cleanly.
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprintf("%v", val)
	}
}
