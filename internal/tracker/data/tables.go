package data

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dixithak/FileInsights/internal/pkg/database"
	"github.com/dixithak/FileInsights/internal/pkg/redis"
	"github.com/dixithak/FileInsights/internal/tracker/biz"
)

// Table backends
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// TableNames configured names of the five metadata tables
type TableNames struct {
	Latest  string `mapstructure:"latest"`
	Skipped string `mapstructure:"skipped"`
	Failed  string `mapstructure:"failed"`
	History string `mapstructure:"history"`
	Deleted string `mapstructure:"deleted"`
}

// DefaultTableNames returns the standard table names
func DefaultTableNames() TableNames {
	return TableNames{
		Latest:  biz.TableLatest,
		Skipped: biz.TableSkipped,
		Failed:  biz.TableFailed,
		History: biz.TableHistory,
		Deleted: biz.TableDeleted,
	}
}

// withDefaults fills empty names
func (n TableNames) withDefaults() TableNames {
	def := DefaultTableNames()
	if n.Latest == "" {
		n.Latest = def.Latest
	}
	if n.Skipped == "" {
		n.Skipped = def.Skipped
	}
	if n.Failed == "" {
		n.Failed = def.Failed
	}
	if n.History == "" {
		n.History = def.History
	}
	if n.Deleted == "" {
		n.Deleted = def.Deleted
	}
	return n
}

// NewTables builds the tables for backend. rdb is required for redis and db
// for the SQL backends.
func NewTables(backend string, names TableNames, rdb *redis.Client, db *database.DB) (*biz.Tables, error) {
	names = names.withDefaults()

	switch backend {
	case BackendMemory, "":
		return NewMemoryTables(names), nil
	case BackendRedis:
		if rdb == nil {
			return nil, fmt.Errorf("tracker backend %q requires a redis client", backend)
		}
		return NewRedisTables(rdb, names), nil
	case BackendPostgres, BackendSQLite:
		if db == nil {
			return nil, fmt.Errorf("tracker backend %q requires a database", backend)
		}
		return NewGormTables(db, names)
	default:
		return nil, fmt.Errorf("unknown tracker backend %q", backend)
	}
}

// sameRecord compares records by their serialized form, so a nil and an empty
// header are equal
func sameRecord(a, b *biz.FileMetadataRecord) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	return errA == nil && errB == nil && bytes.Equal(ja, jb)
}
