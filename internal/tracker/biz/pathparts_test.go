package biz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecompose(t *testing.T) {
	tests := []struct {
		key  string
		want PathParts
	}{
		{"data/2024/sales.csv.gz", PathParts{Folder: "data/2024", Filename: "sales.csv.gz", FileType: "csv", Compression: "gz"}},
		{"backup.TAR", PathParts{Filename: "backup.TAR", FileType: "tar"}},
		{"dump/archive.json.tar", PathParts{Folder: "dump", Filename: "archive.json.tar", FileType: "json", Compression: "tar"}},
		{"sales.gz", PathParts{Filename: "sales.gz", FileType: "unknown", Compression: "gz"}},
		{"README", PathParts{Filename: "README", FileType: "unknown"}},
		{"logs/2024/run.log", PathParts{Folder: "logs/2024", Filename: "run.log", FileType: "log"}},
		{"a/b/Report.PARQUET", PathParts{Folder: "a/b", Filename: "Report.PARQUET", FileType: "parquet"}},
		{"folder/", PathParts{Folder: "folder", Filename: "", FileType: "unknown"}},
		{"", PathParts{FileType: "unknown"}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, Decompose(tt.key))
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := FormatTimestamp(fixedTime())
	assert.Equal(t, "2024-03-05T09:08:07.123456", ts)
}
