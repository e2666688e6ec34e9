package repository

// SyncRepository is the interface for persisting and managing extraction
// metadata. It embeds the per-aggregate interfaces to separate concerns.
type SyncRepository interface {
	Sync
	SyncRun
	SyncRecord

	// Close releases resources (such as database connections) used by the
	// repository.
	Close() error
}
