package biz

import (
	"context"
	"errors"
	"fmt"
)

// OutcomeKind terminal classification of a creation event
type OutcomeKind int

const (
	OutcomeStored OutcomeKind = iota + 1
	OutcomeSkipped
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeStored:
		return "stored"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome result of classifying a creation event. Record is the full
// metadata for Stored and Skipped and may be a fragment for Failed.
type Outcome struct {
	Kind   OutcomeKind
	Record *FileMetadataRecord
	Reason string
	// Cause is set on Failed outcomes
	Cause error
}

func Stored(record *FileMetadataRecord) Outcome {
	return Outcome{Kind: OutcomeStored, Record: record}
}

func Skipped(record *FileMetadataRecord, reason string) Outcome {
	return Outcome{Kind: OutcomeSkipped, Record: record, Reason: reason}
}

func Failed(record *FileMetadataRecord, reason string, cause error) Outcome {
	return Outcome{Kind: OutcomeFailed, Record: record, Reason: reason, Cause: cause}
}

// dispatch performs the single write an outcome calls for. Stored archives
// the previous Latest to History before overwriting it.
func dispatch(ctx context.Context, tables *Tables, o Outcome) error {
	rec := o.Record
	switch o.Kind {
	case OutcomeStored:
		prev, err := tables.Latest.Get(ctx, rec.Filepath)
		switch {
		case err == nil:
			if err := tables.History.Append(ctx, prev.Timestamp, prev); err != nil {
				return storeErr(tables.History.Name(), "append", rec.Filepath, err)
			}
		case !errors.Is(err, ErrNotFound):
			return storeErr(tables.Latest.Name(), "get", rec.Filepath, err)
		}
		if err := tables.Latest.Put(ctx, rec); err != nil {
			return storeErr(tables.Latest.Name(), "put", rec.Filepath, err)
		}
	case OutcomeSkipped:
		rec.Reason = o.Reason
		if err := tables.Skipped.Put(ctx, rec); err != nil {
			return storeErr(tables.Skipped.Name(), "put", rec.Filepath, err)
		}
	case OutcomeFailed:
		rec.Reason = o.Reason
		if err := tables.Failed.Put(ctx, rec); err != nil {
			return storeErr(tables.Failed.Name(), "put", rec.Filepath, err)
		}
	default:
		return &ProcessingError{Filepath: rec.Filepath, Err: fmt.Errorf("unknown outcome kind %d", o.Kind)}
	}
	return nil
}
