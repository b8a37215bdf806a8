package data

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dixithak/FileInsights/internal/tracker/biz"
)

// MemoryTable in-process latest-value table
type MemoryTable struct {
	name string
	mu   sync.RWMutex
	rows map[string]*biz.FileMetadataRecord
}

var _ biz.Table = (*MemoryTable)(nil)

func NewMemoryTable(name string) *MemoryTable {
	return &MemoryTable{name: name, rows: make(map[string]*biz.FileMetadataRecord)}
}

func (t *MemoryTable) Name() string { return t.name }

func (t *MemoryTable) Get(_ context.Context, filepath string) (*biz.FileMetadataRecord, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	rec, ok := t.rows[filepath]
	if !ok {
		return nil, biz.ErrNotFound
	}
	return rec.Clone(), nil
}

func (t *MemoryTable) Put(_ context.Context, record *biz.FileMetadataRecord) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rows[record.Filepath] = record.Clone()
	return nil
}

func (t *MemoryTable) Delete(_ context.Context, filepath string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.rows, filepath)
	return nil
}

// Len number of rows
func (t *MemoryTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// MemoryVersionedTable in-process append-only table
type MemoryVersionedTable struct {
	name string
	mu   sync.RWMutex
	rows map[string]map[string]*biz.FileMetadataRecord
}

var _ biz.VersionedTable = (*MemoryVersionedTable)(nil)

func NewMemoryVersionedTable(name string) *MemoryVersionedTable {
	return &MemoryVersionedTable{name: name, rows: make(map[string]map[string]*biz.FileMetadataRecord)}
}

func (t *MemoryVersionedTable) Name() string { return t.name }

func (t *MemoryVersionedTable) Append(_ context.Context, version string, record *biz.FileMetadataRecord) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	versions, ok := t.rows[record.Filepath]
	if !ok {
		versions = make(map[string]*biz.FileMetadataRecord)
		t.rows[record.Filepath] = versions
	}
	if existing, ok := versions[version]; ok {
		if sameRecord(existing, record) {
			return nil
		}
		return fmt.Errorf("%s %s@%s: %w", t.name, record.Filepath, version, biz.ErrVersionConflict)
	}
	versions[version] = record.Clone()
	return nil
}

func (t *MemoryVersionedTable) Versions(_ context.Context, filepath string) ([]*biz.FileMetadataRecord, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	versions := t.rows[filepath]
	keys := make([]string, 0, len(versions))
	for k := range versions {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]*biz.FileMetadataRecord, 0, len(keys))
	for _, k := range keys {
		out = append(out, versions[k].Clone())
	}
	return out, nil
}

// Len number of stored versions across all filepaths
func (t *MemoryVersionedTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n := 0
	for _, v := range t.rows {
		n += len(v)
	}
	return n
}

// NewMemoryTables in-memory backend
func NewMemoryTables(names TableNames) *biz.Tables {
	names = names.withDefaults()
	return &biz.Tables{
		Latest:  NewMemoryTable(names.Latest),
		Skipped: NewMemoryTable(names.Skipped),
		Failed:  NewMemoryTable(names.Failed),
		History: NewMemoryVersionedTable(names.History),
		Deleted: NewMemoryVersionedTable(names.Deleted),
	}
}
