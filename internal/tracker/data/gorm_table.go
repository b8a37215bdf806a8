package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dixithak/FileInsights/internal/pkg/database"
	"github.com/dixithak/FileInsights/internal/tracker/biz"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// RecordPO row of a latest-value table
type RecordPO struct {
	Filepath          string `gorm:"column:filepath;primaryKey;size:1024"`
	Bucket            string `gorm:"column:bucket;size:255;index"`
	Folder            string `gorm:"column:folder;size:1024"`
	Filename          string `gorm:"column:filename;size:1024"`
	FileType          string `gorm:"column:file_type;size:64"`
	Compression       string `gorm:"column:compression;size:16"`
	Size              int64  `gorm:"column:size;not null;default:0"`
	ContentType       string `gorm:"column:content_type;size:255"`
	Timestamp         string `gorm:"column:timestamp;size:32"`
	DeletionTimestamp string `gorm:"column:deletion_timestamp;size:32"`
	Header            string `gorm:"column:header;type:text"`
	ColumnCount       int    `gorm:"column:column_count;not null;default:0"`
	Reason            string `gorm:"column:reason;type:text"`
	Error             string `gorm:"column:error;type:text"`
	Comment           string `gorm:"column:comment;type:text"`
}

// VersionPO row of an append-only table keyed by (filepath, version)
type VersionPO struct {
	RecordPO
	Version string `gorm:"column:version;primaryKey;size:32"`
}

// SQLTableName maps a configured table name such as FileMetadataLatest to file_metadata_latest
func SQLTableName(name string) string {
	return schema.NamingStrategy{SingularTable: true}.TableName(name)
}

func toPO(rec *biz.FileMetadataRecord) (RecordPO, error) {
	po := RecordPO{
		Filepath:          rec.Filepath,
		Bucket:            rec.Bucket,
		Folder:            rec.Folder,
		Filename:          rec.Filename,
		FileType:          rec.FileType,
		Compression:       rec.Compression,
		Size:              rec.Size,
		ContentType:       rec.ContentType,
		Timestamp:         rec.Timestamp,
		DeletionTimestamp: rec.DeletionTimestamp,
		ColumnCount:       rec.ColumnCount,
		Reason:            rec.Reason,
		Error:             rec.Error,
		Comment:           rec.Comment,
	}
	if rec.Header != nil {
		b, err := json.Marshal(rec.Header)
		if err != nil {
			return RecordPO{}, fmt.Errorf("marshal header: %w", err)
		}
		po.Header = string(b)
	}
	return po, nil
}

func (po *RecordPO) toDomain() (*biz.FileMetadataRecord, error) {
	rec := &biz.FileMetadataRecord{
		Filepath:          po.Filepath,
		Bucket:            po.Bucket,
		Folder:            po.Folder,
		Filename:          po.Filename,
		FileType:          po.FileType,
		Compression:       po.Compression,
		Size:              po.Size,
		ContentType:       po.ContentType,
		Timestamp:         po.Timestamp,
		DeletionTimestamp: po.DeletionTimestamp,
		ColumnCount:       po.ColumnCount,
		Reason:            po.Reason,
		Error:             po.Error,
		Comment:           po.Comment,
	}
	if po.Header != "" {
		if err := json.Unmarshal([]byte(po.Header), &rec.Header); err != nil {
			return nil, fmt.Errorf("unmarshal header: %w", err)
		}
	}
	return rec, nil
}

// GormTable latest-value table on SQL
type GormTable struct {
	name  string
	table string
	db    *database.DB
}

var _ biz.Table = (*GormTable)(nil)

func NewGormTable(db *database.DB, name string) *GormTable {
	return &GormTable{name: name, table: SQLTableName(name), db: db}
}

func (t *GormTable) Name() string { return t.name }

func (t *GormTable) conn(ctx context.Context) *gorm.DB {
	return t.db.GetDBFromContext(ctx).WithContext(ctx).Table(t.table)
}

func (t *GormTable) Get(ctx context.Context, filepath string) (*biz.FileMetadataRecord, error) {
	var po RecordPO
	err := t.conn(ctx).Where("filepath = ?", filepath).Take(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, biz.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s record: %w", t.name, err)
	}
	return po.toDomain()
}

func (t *GormTable) Put(ctx context.Context, record *biz.FileMetadataRecord) error {
	po, err := toPO(record)
	if err != nil {
		return err
	}
	err = t.conn(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&po).Error
	if err != nil {
		return fmt.Errorf("failed to put %s record: %w", t.name, err)
	}
	return nil
}

func (t *GormTable) Delete(ctx context.Context, filepath string) error {
	err := t.conn(ctx).Where("filepath = ?", filepath).Delete(&RecordPO{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete %s record: %w", t.name, err)
	}
	return nil
}

// GormVersionedTable append-only table on SQL
type GormVersionedTable struct {
	name  string
	table string
	db    *database.DB
}

var _ biz.VersionedTable = (*GormVersionedTable)(nil)

func NewGormVersionedTable(db *database.DB, name string) *GormVersionedTable {
	return &GormVersionedTable{name: name, table: SQLTableName(name), db: db}
}

func (t *GormVersionedTable) Name() string { return t.name }

func (t *GormVersionedTable) conn(ctx context.Context) *gorm.DB {
	return t.db.GetDBFromContext(ctx).WithContext(ctx).Table(t.table)
}

func (t *GormVersionedTable) Append(ctx context.Context, version string, record *biz.FileMetadataRecord) error {
	po, err := toPO(record)
	if err != nil {
		return err
	}
	row := VersionPO{RecordPO: po, Version: version}
	res := t.conn(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return fmt.Errorf("failed to append %s record: %w", t.name, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var existing VersionPO
	err = t.conn(ctx).Where("filepath = ? AND version = ?", record.Filepath, version).Take(&existing).Error
	if err != nil {
		return fmt.Errorf("failed to read %s version: %w", t.name, err)
	}
	prev, err := existing.toDomain()
	if err != nil {
		return err
	}
	if !sameRecord(prev, record) {
		return fmt.Errorf("%s %s@%s: %w", t.name, record.Filepath, version, biz.ErrVersionConflict)
	}
	return nil
}

func (t *GormVersionedTable) Versions(ctx context.Context, filepath string) ([]*biz.FileMetadataRecord, error) {
	var rows []VersionPO
	err := t.conn(ctx).Where("filepath = ?", filepath).Order("version ASC").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list %s versions: %w", t.name, err)
	}

	out := make([]*biz.FileMetadataRecord, 0, len(rows))
	for i := range rows {
		rec, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// NewGormTables SQL backend. Tables are migrated unless auto migration is disabled.
func NewGormTables(db *database.DB, names TableNames) (*biz.Tables, error) {
	names = names.withDefaults()

	for _, name := range []string{names.Latest, names.Skipped, names.Failed} {
		if err := db.MigrateTable(SQLTableName(name), &RecordPO{}); err != nil {
			return nil, err
		}
	}
	for _, name := range []string{names.History, names.Deleted} {
		if err := db.MigrateTable(SQLTableName(name), &VersionPO{}); err != nil {
			return nil, err
		}
	}

	return &biz.Tables{
		Latest:  NewGormTable(db, names.Latest),
		Skipped: NewGormTable(db, names.Skipped),
		Failed:  NewGormTable(db, names.Failed),
		History: NewGormVersionedTable(db, names.History),
		Deleted: NewGormVersionedTable(db, names.Deleted),
	}, nil
}
