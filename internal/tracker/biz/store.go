package biz

import "context"

const (
	TableLatest  = "FileMetadataLatest"
	TableSkipped = "FileMetadataSkipped"
	TableFailed  = "FileMetadataFailed"
	TableHistory = "FileMetadataHistory"
	TableDeleted = "FileDeleted"
)

// Table latest-value store keyed by filepath. Get returns ErrNotFound when absent.
type Table interface {
	Name() string
	Get(ctx context.Context, filepath string) (*FileMetadataRecord, error)
	Put(ctx context.Context, record *FileMetadataRecord) error
	Delete(ctx context.Context, filepath string) error
}

// VersionedTable append-only store keyed by (filepath, version)
type VersionedTable interface {
	Name() string
	Append(ctx context.Context, version string, record *FileMetadataRecord) error
	// Versions returns every version of filepath ordered by version
	Versions(ctx context.Context, filepath string) ([]*FileMetadataRecord, error)
}

// Tables the five metadata tables
type Tables struct {
	Latest  Table
	Skipped Table
	Failed  Table
	History VersionedTable
	Deleted VersionedTable
}

// ObjectInfo result of a head request
type ObjectInfo struct {
	Size        int64
	ContentType string
}

// ObjectStore read access to the tracked buckets
type ObjectStore interface {
	Head(ctx context.Context, bucket, key string) (*ObjectInfo, error)
	Get(ctx context.Context, bucket, key string) ([]byte, error)
}

// HeaderSniffer extracts column names from file bytes
type HeaderSniffer interface {
	Sniff(data []byte, key string) ([]string, error)
}

// HeaderSnifferFunc adapts a function to HeaderSniffer
type HeaderSnifferFunc func(data []byte, key string) ([]string, error)

func (f HeaderSnifferFunc) Sniff(data []byte, key string) ([]string, error) {
	return f(data, key)
}
