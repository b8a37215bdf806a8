package data

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/dixithak/FileInsights/internal/pkg/redis"
	"github.com/dixithak/FileInsights/internal/tracker/biz"
)

// RedisTable latest-value table stored as JSON strings under <name>:<filepath>
type RedisTable struct {
	name   string
	client *redis.Client
}

var _ biz.Table = (*RedisTable)(nil)

func NewRedisTable(client *redis.Client, name string) *RedisTable {
	return &RedisTable{name: name, client: client}
}

func (t *RedisTable) Name() string { return t.name }

func (t *RedisTable) key(filepath string) string {
	return t.name + ":" + filepath
}

func (t *RedisTable) Get(ctx context.Context, filepath string) (*biz.FileMetadataRecord, error) {
	raw, err := t.client.Get(ctx, t.key(filepath))
	if err != nil {
		if redis.IsNil(err) {
			return nil, biz.ErrNotFound
		}
		return nil, err
	}
	return decodeRecord(raw)
}

func (t *RedisTable) Put(ctx context.Context, record *biz.FileMetadataRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	return t.client.Set(ctx, t.key(record.Filepath), payload, 0)
}

func (t *RedisTable) Delete(ctx context.Context, filepath string) error {
	_, err := t.client.Del(ctx, t.key(filepath))
	return err
}

// RedisVersionedTable append-only table stored as a hash per filepath whose
// fields are versions
type RedisVersionedTable struct {
	name   string
	client *redis.Client
}

var _ biz.VersionedTable = (*RedisVersionedTable)(nil)

func NewRedisVersionedTable(client *redis.Client, name string) *RedisVersionedTable {
	return &RedisVersionedTable{name: name, client: client}
}

func (t *RedisVersionedTable) Name() string { return t.name }

func (t *RedisVersionedTable) key(filepath string) string {
	return t.name + ":" + filepath
}

func (t *RedisVersionedTable) Append(ctx context.Context, version string, record *biz.FileMetadataRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	key := t.key(record.Filepath)
	written, err := t.client.HSetNX(ctx, key, version, payload)
	if err != nil || written {
		return err
	}

	raw, err := t.client.HGet(ctx, key, version)
	if err != nil {
		return err
	}
	existing, err := decodeRecord(raw)
	if err != nil {
		return err
	}
	if !sameRecord(existing, record) {
		return fmt.Errorf("%s %s@%s: %w", t.name, record.Filepath, version, biz.ErrVersionConflict)
	}
	return nil
}

func (t *RedisVersionedTable) Versions(ctx context.Context, filepath string) ([]*biz.FileMetadataRecord, error) {
	fields, err := t.client.HGetAll(ctx, t.key(filepath))
	if err != nil {
		return nil, err
	}

	versions := make([]string, 0, len(fields))
	for v := range fields {
		versions = append(versions, v)
	}
	sort.Strings(versions)

	out := make([]*biz.FileMetadataRecord, 0, len(versions))
	for _, v := range versions {
		rec, err := decodeRecord(fields[v])
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// NewRedisTables redis backend
func NewRedisTables(client *redis.Client, names TableNames) *biz.Tables {
	names = names.withDefaults()
	return &biz.Tables{
		Latest:  NewRedisTable(client, names.Latest),
		Skipped: NewRedisTable(client, names.Skipped),
		Failed:  NewRedisTable(client, names.Failed),
		History: NewRedisVersionedTable(client, names.History),
		Deleted: NewRedisVersionedTable(client, names.Deleted),
	}
}

func decodeRecord(raw string) (*biz.FileMetadataRecord, error) {
	var rec biz.FileMetadataRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return &rec, nil
}
