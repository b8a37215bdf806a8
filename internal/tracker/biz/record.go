package biz

import (
	"time"
)

// TimestampLayout UTC ISO-8601 with microseconds
const TimestampLayout = "2006-01-02T15:04:05.000000"

const (
	ReasonFolderOrEmpty = "folder-like or empty object"
	ReasonHeaderParse   = "Header parsing Issue"
	CommentUntracked    = "Deleted file was not tracked"

	DefaultContentType = "unknown"
)

// FileMetadataRecord metadata tracked for one object, addressed by Filepath (bucket/key)
type FileMetadataRecord struct {
	Filepath          string   `json:"filepath"`
	Bucket            string   `json:"bucket"`
	Folder            string   `json:"folder"`
	Filename          string   `json:"filename"`
	FileType          string   `json:"file_type"`
	Compression       string   `json:"compression,omitempty"`
	Size              int64    `json:"size"`
	ContentType       string   `json:"content_type"`
	Timestamp         string   `json:"timestamp,omitempty"`
	DeletionTimestamp string   `json:"deletion_timestamp,omitempty"`
	Header            []string `json:"header,omitempty"`
	ColumnCount       int      `json:"column_count,omitempty"`

	Reason  string `json:"reason,omitempty"`
	Error   string `json:"error,omitempty"`
	Comment string `json:"comment,omitempty"`
}

// SetHeader sets Header and keeps ColumnCount in step with it
func (r *FileMetadataRecord) SetHeader(header []string) {
	r.Header = header
	r.ColumnCount = len(header)
}

// Clone returns a deep copy
func (r *FileMetadataRecord) Clone() *FileMetadataRecord {
	if r == nil {
		return nil
	}
	c := *r
	if r.Header != nil {
		c.Header = append([]string(nil), r.Header...)
	}
	return &c
}

// FormatTimestamp formats t in TimestampLayout after converting to UTC
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Filepath joins bucket and key
func Filepath(bucket, key string) string {
	return bucket + "/" + key
}

// newRecord assembles the metadata derived from the key alone
func newRecord(bucket, key string) *FileMetadataRecord {
	parts := Decompose(key)
	return &FileMetadataRecord{
		Filepath:    Filepath(bucket, key),
		Bucket:      bucket,
		Folder:      parts.Folder,
		Filename:    parts.Filename,
		FileType:    parts.FileType,
		Compression: parts.Compression,
		ContentType: DefaultContentType,
	}
}
