package biz

import (
	"context"
	"errors"
	"time"

	"github.com/dixithak/FileInsights/internal/pkg/logger"
	"go.uber.org/zap"
)

// DeletionStatus result status of a deletion event
type DeletionStatus string

const (
	DeletionArchived  DeletionStatus = "archived"
	DeletionUntracked DeletionStatus = "not_found"
)

// DeletionResult what the deletion processor wrote to Deleted
type DeletionResult struct {
	Status DeletionStatus       `json:"status"`
	Record *FileMetadataRecord `json:"record"`
}

// DeletionProcessor archives the live record of a deleted object
type DeletionProcessor struct {
	tables *Tables
	logger *logger.Logger
	now    func() time.Time
}

// NewDeletionProcessor creates a deletion processor
func NewDeletionProcessor(tables *Tables, log *logger.Logger) *DeletionProcessor {
	if log == nil {
		log = logger.L()
	}
	return &DeletionProcessor{
		tables: tables,
		logger: log.Named("deletion"),
		now:    time.Now,
	}
}

// OnDeleted moves the Latest record of bucket/key into Deleted. A key with
// no Latest record still gets a synthetic Deleted entry.
func (p *DeletionProcessor) OnDeleted(ctx context.Context, bucket, key string) (*DeletionResult, error) {
	filepath := Filepath(bucket, key)
	deletedAt := FormatTimestamp(p.now())
	log := p.logger.WithContext(ctx).With(zap.String("filepath", filepath), zap.String("bucket", bucket))

	item, err := p.tables.Latest.Get(ctx, filepath)
	if err != nil && !errors.Is(err, ErrNotFound) {
		log.Error("failed to read latest record", zap.Error(err))
		return nil, storeErr(p.tables.Latest.Name(), "get", filepath, err)
	}

	if item == nil {
		rec := newRecord(bucket, key)
		rec.DeletionTimestamp = deletedAt
		rec.Comment = CommentUntracked
		if err := p.tables.Deleted.Append(ctx, deletedAt, rec); err != nil {
			log.Error("failed to record untracked deletion", zap.Error(err))
			return nil, storeErr(p.tables.Deleted.Name(), "append", filepath, err)
		}
		log.Info("deleted file was not tracked", zap.String("outcome", string(DeletionUntracked)))
		return &DeletionResult{Status: DeletionUntracked, Record: rec}, nil
	}

	rec := item.Clone()
	rec.DeletionTimestamp = deletedAt
	if err := p.tables.Deleted.Append(ctx, deletedAt, rec); err != nil {
		log.Error("failed to archive deleted record", zap.Error(err))
		return nil, storeErr(p.tables.Deleted.Name(), "append", filepath, err)
	}
	if err := p.tables.Latest.Delete(ctx, filepath); err != nil {
		log.Error("failed to remove latest record", zap.Error(err))
		return nil, storeErr(p.tables.Latest.Name(), "delete", filepath, err)
	}

	log.Info("file deleted", zap.String("outcome", string(DeletionArchived)))
	return &DeletionResult{Status: DeletionArchived, Record: rec}, nil
}
