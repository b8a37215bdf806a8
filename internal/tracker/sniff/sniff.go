// Package sniff extracts the column header of a file from its first record.
package sniff

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dixithak/FileInsights/internal/pkg/logger"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/parquet-go/parquet-go"
	"go.uber.org/zap"
)

// Diagnostic headers. They are stored in place of column names rather than
// reported as errors.
const (
	UnsupportedFormat   = "Unsupported file format"
	NoDelimitedInZip    = "No CSV or TXT file in ZIP"
	DecodeError         = "Decode error"
	HeaderParsingFailed = "Header parsing failed: "
)

// Format recognized file format
type Format int

const (
	FormatUnsupported Format = iota
	FormatParquet
	FormatZip
	FormatGzip
	FormatDelimited
)

func (f Format) String() string {
	switch f {
	case FormatParquet:
		return "parquet"
	case FormatZip:
		return "zip"
	case FormatGzip:
		return "gzip"
	case FormatDelimited:
		return "delimited"
	default:
		return "unsupported"
	}
}

// DetectFormat dispatches on the key suffix. Matching is case-sensitive.
func DetectFormat(key string) Format {
	switch {
	case hasAnySuffix(key, ".parquet", ".pq"):
		return FormatParquet
	case strings.HasSuffix(key, ".zip"):
		return FormatZip
	case strings.HasSuffix(key, ".gz"):
		return FormatGzip
	case hasAnySuffix(key, ".csv", ".txt", ".psv"):
		return FormatDelimited
	default:
		return FormatUnsupported
	}
}

// Sniffer reads headers from file bytes
type Sniffer struct {
	logger *logger.Logger
}

// New creates a sniffer
func New(log *logger.Logger) *Sniffer {
	if log == nil {
		log = logger.L()
	}
	return &Sniffer{logger: log.Named("sniff")}
}

// Sniff returns the ordered column names of data, or a one-element
// diagnostic header. Only parquet schema failures are returned as errors.
func (s *Sniffer) Sniff(data []byte, key string) ([]string, error) {
	format := DetectFormat(key)

	var (
		header []string
		err    error
	)
	switch format {
	case FormatParquet:
		header, err = ParquetColumns(data)
		if err != nil {
			return nil, err
		}
		return header, nil
	case FormatZip:
		header, err = zipHeader(data)
	case FormatGzip:
		header, err = gzipHeader(data)
	case FormatDelimited:
		header, err = firstLineHeader(bytes.NewReader(data))
	default:
		return []string{UnsupportedFormat}, nil
	}

	if err != nil {
		s.logger.Warn("header parsing error",
			zap.String("key", key),
			zap.Stringer("format", format),
			zap.Error(err),
		)
		return []string{HeaderParsingFailed + err.Error()}, nil
	}
	return header, nil
}

// Sniff runs a default Sniffer
func Sniff(data []byte, key string) ([]string, error) {
	return New(nil).Sniff(data, key)
}

// ParquetColumns returns the top-level column names of a parquet file in schema order
func ParquetColumns(data []byte) ([]string, error) {
	f, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}
	fields := f.Schema().Fields()
	names := make([]string, 0, len(fields))
	for _, field := range fields {
		names = append(names, field.Name())
	}
	return names, nil
}

func zipHeader(data []byte) ([]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	for _, entry := range zr.File {
		if !hasAnySuffix(entry.Name, ".csv", ".txt") {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("open zip entry %s: %w", entry.Name, err)
		}
		defer rc.Close()
		return firstLineHeader(rc)
	}
	return []string{NoDelimitedInZip}, nil
}

func gzipHeader(data []byte) ([]string, error) {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open gzip: %w", err)
	}
	defer gr.Close()
	return firstLineHeader(gr)
}

func firstLineHeader(r io.Reader) ([]string, error) {
	line, err := bufio.NewReader(r).ReadBytes('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read first line: %w", err)
	}
	return ParseHeaderLine(line), nil
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}
