package biz

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dixithak/FileInsights/internal/pkg/logger"
	"go.uber.org/zap"
)

// CreationProcessor classifies and persists "object created" events
type CreationProcessor struct {
	objects ObjectStore
	sniffer HeaderSniffer
	tables  *Tables
	logger  *logger.Logger
	now     func() time.Time
}

// NewCreationProcessor creates a creation processor
func NewCreationProcessor(objects ObjectStore, sniffer HeaderSniffer, tables *Tables, log *logger.Logger) *CreationProcessor {
	if log == nil {
		log = logger.L()
	}
	return &CreationProcessor{
		objects: objects,
		sniffer: sniffer,
		tables:  tables,
		logger:  log.Named("creation"),
		now:     time.Now,
	}
}

// OnCreated handles one created object. The returned error is non-nil only
// when the outcome could not be written.
func (p *CreationProcessor) OnCreated(ctx context.Context, bucket, key string) (Outcome, error) {
	outcome := p.classify(ctx, bucket, key)

	log := p.logger.WithContext(ctx).With(
		zap.String("filepath", outcome.Record.Filepath),
		zap.String("bucket", bucket),
		zap.Stringer("outcome", outcome.Kind),
	)

	if err := dispatch(ctx, p.tables, outcome); err != nil {
		log.Error("failed to persist outcome", zap.Error(err))
		return outcome, err
	}

	switch outcome.Kind {
	case OutcomeFailed:
		log.Warn("file metadata failed", zap.String("reason", outcome.Reason), zap.Error(outcome.Cause))
	case OutcomeSkipped:
		log.Info("file metadata skipped", zap.String("reason", outcome.Reason))
	default:
		log.Info("file metadata stored", zap.Int("column_count", outcome.Record.ColumnCount))
	}
	return outcome, nil
}

func (p *CreationProcessor) classify(ctx context.Context, bucket, key string) Outcome {
	filepath := Filepath(bucket, key)
	timestamp := FormatTimestamp(p.now())

	info, err := p.objects.Head(ctx, bucket, key)
	if err != nil {
		cause := &ExistenceCheckError{Filepath: filepath, Err: err}
		return Failed(&FileMetadataRecord{
			Filepath:  filepath,
			Bucket:    bucket,
			Timestamp: timestamp,
			Error:     err.Error(),
		}, "", cause)
	}

	rec := newRecord(bucket, key)
	rec.Timestamp = timestamp
	rec.Size = info.Size
	if info.ContentType != "" {
		rec.ContentType = info.ContentType
	}

	if strings.HasSuffix(key, "/") || rec.Size == 0 {
		return Skipped(rec, ReasonFolderOrEmpty)
	}

	header, err := p.readHeader(ctx, bucket, key)
	if err != nil {
		return Failed(rec, ReasonHeaderParse, err)
	}
	rec.SetHeader(header)

	return Stored(rec)
}

// readHeader fetches the body and sniffs it. A panic while reading or
// sniffing is reported as a HeaderParseError.
func (p *CreationProcessor) readHeader(ctx context.Context, bucket, key string) (header []string, err error) {
	filepath := Filepath(bucket, key)
	defer func() {
		if r := recover(); r != nil {
			header = nil
			err = &HeaderParseError{Filepath: filepath, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	data, err := p.objects.Get(ctx, bucket, key)
	if err != nil {
		return nil, &BodyFetchError{Filepath: filepath, Err: err}
	}
	header, err = p.sniffer.Sniff(data, key)
	if err != nil {
		return nil, &HeaderParseError{Filepath: filepath, Err: err}
	}
	return header, nil
}
