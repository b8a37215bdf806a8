package sniff

import (
	"bytes"
	"testing"

	"github.com/dixithak/FileInsights/internal/pkg/logger"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestSniffer() *Sniffer {
	return New(logger.NewFromZap(zap.NewNop()))
}

func TestParseHeaderLine(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want []string
	}{
		{name: "comma", raw: []byte("id,name,amount\n"), want: []string{"id", "name", "amount"}},
		{name: "comma wins over semicolon", raw: []byte("a;b,c"), want: []string{"a;b", "c"}},
		{name: "tab", raw: []byte("a\tb\tc\r\n"), want: []string{"a", "b", "c"}},
		{name: "semicolon", raw: []byte("x; y ;z"), want: []string{"x", "y", "z"}},
		{name: "pipe", raw: []byte("id|name|amount"), want: []string{"id", "name", "amount"}},
		{name: "quoted", raw: []byte(`"id", "first name" ,"x"`), want: []string{"id", "first name", "x"}},
		{name: "one pair of quotes only", raw: []byte(`""id""`), want: []string{`"id"`}},
		{name: "lone quote kept", raw: []byte(`"`), want: []string{`"`}},
		{name: "single column", raw: []byte("  value  "), want: []string{"value"}},
		{name: "empty line", raw: []byte("\n"), want: []string{""}},
		{name: "invalid utf8", raw: []byte{0xff, 0xfe, ','}, want: []string{DecodeError}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseHeaderLine(tt.raw))
		})
	}
}

func TestParseHeaderLine_DelimiterPriority(t *testing.T) {
	// tab outranks semicolon and pipe
	assert.Equal(t, []string{"a;b", "c|d"}, ParseHeaderLine([]byte("a;b\tc|d")))
	// comma present: semicolon is part of the field
	assert.Equal(t, []string{"a;b", "c"}, ParseHeaderLine([]byte("a;b,c")))
}

func TestDetectFormat(t *testing.T) {
	tests := map[string]Format{
		"data/file.parquet": FormatParquet,
		"data/file.pq":      FormatParquet,
		"a.zip":             FormatZip,
		"a.csv.gz":          FormatGzip,
		"a.csv":             FormatDelimited,
		"a.txt":             FormatDelimited,
		"a.psv":             FormatDelimited,
		"a.CSV":             FormatUnsupported,
		"logs/2024/run.log": FormatUnsupported,
		"noext":             FormatUnsupported,
	}
	for key, want := range tests {
		assert.Equal(t, want, DetectFormat(key), key)
	}
}

func TestSniff_Delimited(t *testing.T) {
	s := newTestSniffer()

	header, err := s.Sniff([]byte("id,name,amount\n1,a,2\n"), "sales.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "amount"}, header)

	header, err = s.Sniff([]byte("col_a|col_b"), "x.psv")
	require.NoError(t, err)
	assert.Equal(t, []string{"col_a", "col_b"}, header)
}

func TestSniff_Unsupported(t *testing.T) {
	header, err := newTestSniffer().Sniff([]byte("2024-01-01 started"), "logs/2024/run.log")
	require.NoError(t, err)
	assert.Equal(t, []string{UnsupportedFormat}, header)
}

func TestSniff_Gzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte("region\tcount\nEU\t3\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	header, err := newTestSniffer().Sniff(buf.Bytes(), "data/2024/sales.tsv.gz")
	require.NoError(t, err)
	assert.Equal(t, []string{"region", "count"}, header)
}

func TestSniff_GzipCorrupt(t *testing.T) {
	header, err := newTestSniffer().Sniff([]byte("not gzip"), "broken.csv.gz")
	require.NoError(t, err)
	require.Len(t, header, 1)
	assert.Contains(t, header[0], HeaderParsingFailed)
}

func buildZip(t *testing.T, entries map[string]string, order []string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range order {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(entries[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestSniff_Zip(t *testing.T) {
	s := newTestSniffer()

	t.Run("only notes.txt", func(t *testing.T) {
		data := buildZip(t, map[string]string{"notes.txt": "id|name|amount\n1|a|3\n"}, []string{"notes.txt"})
		header, err := s.Sniff(data, "archive.zip")
		require.NoError(t, err)
		assert.Equal(t, []string{"id", "name", "amount"}, header)
	})

	t.Run("first matching entry in archive order", func(t *testing.T) {
		data := buildZip(t, map[string]string{
			"readme.md": "# hello",
			"b.csv":     "b1,b2",
			"a.csv":     "a1,a2",
		}, []string{"readme.md", "b.csv", "a.csv"})
		header, err := s.Sniff(data, "archive.zip")
		require.NoError(t, err)
		assert.Equal(t, []string{"b1", "b2"}, header)
	})

	t.Run("no delimited entry", func(t *testing.T) {
		data := buildZip(t, map[string]string{"image.png": "xx"}, []string{"image.png"})
		header, err := s.Sniff(data, "archive.zip")
		require.NoError(t, err)
		assert.Equal(t, []string{NoDelimitedInZip}, header)
	})

	t.Run("corrupt archive", func(t *testing.T) {
		header, err := s.Sniff([]byte("PK garbage"), "archive.zip")
		require.NoError(t, err)
		require.Len(t, header, 1)
		assert.Contains(t, header[0], HeaderParsingFailed)
	})
}

type salesRow struct {
	OrderID  int64   `parquet:"order_id"`
	Customer string  `parquet:"customer"`
	Amount   float64 `parquet:"amount"`
}

func TestSniff_Parquet(t *testing.T) {
	var buf bytes.Buffer
	w := parquet.NewGenericWriter[salesRow](&buf)
	_, err := w.Write([]salesRow{{OrderID: 1, Customer: "acme", Amount: 9.5}})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	header, err := newTestSniffer().Sniff(buf.Bytes(), "warehouse/sales.parquet")
	require.NoError(t, err)
	assert.Equal(t, []string{"order_id", "customer", "amount"}, header)
}

func TestSniff_ParquetErrorPropagates(t *testing.T) {
	_, err := newTestSniffer().Sniff([]byte("definitely not parquet"), "bad.pq")
	assert.Error(t, err)
}
