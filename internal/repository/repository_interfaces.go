package repository

import "context"

// StateRepositoryInterface stores opaque JSON blobs by storage key.
type StateRepositoryInterface interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// LogsRepositoryInterface defines the interface for logs repository operations.
type LogsRepositoryInterface interface {
	Create(ctx context.Context, entry *LogEntryDocument) error
	CreateMany(ctx context.Context, entries []*LogEntryDocument) error
	Query(ctx context.Context, opts LogQueryOptions) ([]*LogEntryDocument, error)
	Count(ctx context.Context, opts LogQueryOptions) (int64, error)
}

var (
	_ StateRepositoryInterface = (*StateRepository)(nil)
	_ StateRepositoryInterface = (*MemoryStateRepository)(nil)
	_ StateRepositoryInterface = (*StateRepositoryWithCircuitBreaker)(nil)
	_ LogsRepositoryInterface  = (*LogsRepository)(nil)
	_ LogsRepositoryInterface  = (*LogsRepositoryWithCircuitBreaker)(nil)
)
