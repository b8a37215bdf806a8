package biz_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/dixithak/FileInsights/internal/pkg/logger"
	"github.com/dixithak/FileInsights/internal/tracker/biz"
	"github.com/dixithak/FileInsights/internal/tracker/data"
	"github.com/dixithak/FileInsights/internal/tracker/sniff"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type object struct {
	body        []byte
	contentType string
}

type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string]object
	headErr error
	getErr  error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string]object)}
}

func (f *fakeObjectStore) put(bucket, key string, body []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[bucket+"/"+key] = object{body: body, contentType: "text/plain"}
}

func (f *fakeObjectStore) Head(_ context.Context, bucket, key string) (*biz.ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.headErr != nil {
		return nil, f.headErr
	}
	obj, ok := f.objects[bucket+"/"+key]
	if !ok {
		return nil, errors.New("NoSuchKey: object does not exist")
	}
	return &biz.ObjectInfo{Size: int64(len(obj.body)), ContentType: obj.contentType}, nil
}

func (f *fakeObjectStore) Get(_ context.Context, bucket, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.objects[bucket+"/"+key].body, nil
}

// failingTable wraps a table and fails the chosen operation
type failingTable struct {
	biz.Table
	failGet bool
	failPut bool
}

func (t *failingTable) Get(ctx context.Context, fp string) (*biz.FileMetadataRecord, error) {
	if t.failGet {
		return nil, errors.New("connection reset")
	}
	return t.Table.Get(ctx, fp)
}

func (t *failingTable) Put(ctx context.Context, rec *biz.FileMetadataRecord) error {
	if t.failPut {
		return errors.New("throughput exceeded")
	}
	return t.Table.Put(ctx, rec)
}

type fixture struct {
	objects  *fakeObjectStore
	tables   *biz.Tables
	creation *biz.CreationProcessor
	deletion *biz.DeletionProcessor
	router   *biz.Router
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.NewFromZap(zap.NewNop())
	objects := newFakeObjectStore()
	tables := data.NewMemoryTables(data.DefaultTableNames())
	creation := biz.NewCreationProcessor(objects, sniff.New(log), tables, log)
	deletion := biz.NewDeletionProcessor(tables, log)
	return &fixture{
		objects:  objects,
		tables:   tables,
		creation: creation,
		deletion: deletion,
		router:   biz.NewRouter(creation, deletion, 4, log),
	}
}

func TestOnCreated_Stored(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.objects.put("landing", "data/2024/sales.csv", []byte("id,name,amount\n1,a,3\n"))

	outcome, err := f.creation.OnCreated(ctx, "landing", "data/2024/sales.csv")
	require.NoError(t, err)
	assert.Equal(t, biz.OutcomeStored, outcome.Kind)

	rec, err := f.tables.Latest.Get(ctx, "landing/data/2024/sales.csv")
	require.NoError(t, err)
	assert.Equal(t, "landing", rec.Bucket)
	assert.Equal(t, "data/2024", rec.Folder)
	assert.Equal(t, "sales.csv", rec.Filename)
	assert.Equal(t, "csv", rec.FileType)
	assert.Empty(t, rec.Compression)
	assert.Equal(t, int64(21), rec.Size)
	assert.Equal(t, "text/plain", rec.ContentType)
	assert.Equal(t, []string{"id", "name", "amount"}, rec.Header)
	assert.Equal(t, len(rec.Header), rec.ColumnCount)
	assert.Len(t, rec.Timestamp, len(biz.TimestampLayout))
}

func TestOnCreated_SkipsFolderAndEmpty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.objects.put("landing", "incoming/", []byte("x"))
	f.objects.put("landing", "empty.csv", nil)

	for _, key := range []string{"incoming/", "empty.csv"} {
		outcome, err := f.creation.OnCreated(ctx, "landing", key)
		require.NoError(t, err)
		assert.Equal(t, biz.OutcomeSkipped, outcome.Kind, key)

		rec, err := f.tables.Skipped.Get(ctx, "landing/"+key)
		require.NoError(t, err)
		assert.Equal(t, biz.ReasonFolderOrEmpty, rec.Reason)
		assert.Nil(t, rec.Header)
	}

	assert.Equal(t, 2, f.tables.Skipped.(*data.MemoryTable).Len())
	assert.Zero(t, f.tables.Latest.(*data.MemoryTable).Len())
	assert.Zero(t, f.tables.Failed.(*data.MemoryTable).Len())
}

func TestOnCreated_ExistenceCheckFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	outcome, err := f.creation.OnCreated(ctx, "landing", "ghost.csv")
	require.NoError(t, err)
	assert.Equal(t, biz.OutcomeFailed, outcome.Kind)

	var existErr *biz.ExistenceCheckError
	assert.ErrorAs(t, outcome.Cause, &existErr)

	rec, err := f.tables.Failed.Get(ctx, "landing/ghost.csv")
	require.NoError(t, err)
	assert.Equal(t, "landing", rec.Bucket)
	assert.Contains(t, rec.Error, "NoSuchKey")
	assert.NotEmpty(t, rec.Timestamp)
	assert.Empty(t, rec.Filename)
	assert.Empty(t, rec.Reason)
	assert.Zero(t, f.tables.Latest.(*data.MemoryTable).Len())
}

func TestOnCreated_BodyFetchFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.objects.put("landing", "a.csv", []byte("a,b"))
	f.objects.getErr = errors.New("read timeout")

	outcome, err := f.creation.OnCreated(ctx, "landing", "a.csv")
	require.NoError(t, err)
	assert.Equal(t, biz.OutcomeFailed, outcome.Kind)
	var fetchErr *biz.BodyFetchError
	assert.ErrorAs(t, outcome.Cause, &fetchErr)

	rec, err := f.tables.Failed.Get(ctx, "landing/a.csv")
	require.NoError(t, err)
	assert.Equal(t, biz.ReasonHeaderParse, rec.Reason)
	assert.Equal(t, "csv", rec.FileType)
	assert.Nil(t, rec.Header)
}

func TestOnCreated_ParquetFailureGoesToFailed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.objects.put("landing", "broken.parquet", []byte("not parquet at all"))

	outcome, err := f.creation.OnCreated(ctx, "landing", "broken.parquet")
	require.NoError(t, err)
	assert.Equal(t, biz.OutcomeFailed, outcome.Kind)
	var parseErr *biz.HeaderParseError
	assert.ErrorAs(t, outcome.Cause, &parseErr)

	rec, err := f.tables.Failed.Get(ctx, "landing/broken.parquet")
	require.NoError(t, err)
	assert.Equal(t, biz.ReasonHeaderParse, rec.Reason)
}

func TestOnCreated_UnsupportedFormatStoredInLatest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.objects.put("landing", "logs/2024/run.log", []byte("2024-01-01 started\n"))

	outcome, err := f.creation.OnCreated(ctx, "landing", "logs/2024/run.log")
	require.NoError(t, err)
	assert.Equal(t, biz.OutcomeStored, outcome.Kind)

	rec, err := f.tables.Latest.Get(ctx, "landing/logs/2024/run.log")
	require.NoError(t, err)
	assert.Equal(t, []string{sniff.UnsupportedFormat}, rec.Header)
	assert.Equal(t, 1, rec.ColumnCount)
}

func TestOnCreated_ZipWithNotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("notes.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("id|name|amount\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	f.objects.put("landing", "bundle.zip", buf.Bytes())

	_, err = f.creation.OnCreated(ctx, "landing", "bundle.zip")
	require.NoError(t, err)

	rec, err := f.tables.Latest.Get(ctx, "landing/bundle.zip")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "amount"}, rec.Header)
	assert.Equal(t, "zip", rec.FileType)
}

func TestOnCreated_RecreationArchivesPrevious(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	fp := "landing/a.csv"

	f.objects.put("landing", "a.csv", []byte("a,b\n"))
	_, err := f.creation.OnCreated(ctx, "landing", "a.csv")
	require.NoError(t, err)
	first, err := f.tables.Latest.Get(ctx, fp)
	require.NoError(t, err)

	f.objects.put("landing", "a.csv", []byte("a,b,c\n"))
	_, err = f.creation.OnCreated(ctx, "landing", "a.csv")
	require.NoError(t, err)

	history, err := f.tables.History.Versions(ctx, fp)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, first, history[0])

	latest, err := f.tables.Latest.Get(ctx, fp)
	require.NoError(t, err)
	assert.Equal(t, 3, latest.ColumnCount)
}

func TestOnCreated_StoreErrorSurfaces(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.tables.Latest = &failingTable{Table: f.tables.Latest, failPut: true}
	f.objects.put("landing", "a.csv", []byte("a,b\n"))

	outcome, err := f.creation.OnCreated(ctx, "landing", "a.csv")
	require.Error(t, err)
	assert.True(t, biz.IsStoreError(err))
	assert.Equal(t, biz.OutcomeStored, outcome.Kind)
}

func TestOnCreated_LatestReadFailureDoesNotOverwrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inner := f.tables.Latest
	f.tables.Latest = &failingTable{Table: inner, failGet: true}
	f.objects.put("landing", "a.csv", []byte("a,b\n"))

	_, err := f.creation.OnCreated(ctx, "landing", "a.csv")
	require.Error(t, err)
	assert.True(t, biz.IsStoreError(err))
	assert.Zero(t, inner.(*data.MemoryTable).Len())
}

func TestOnDeleted_Tracked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.objects.put("landing", "a.csv", []byte("a,b\n"))
	_, err := f.creation.OnCreated(ctx, "landing", "a.csv")
	require.NoError(t, err)

	res, err := f.deletion.OnDeleted(ctx, "landing", "a.csv")
	require.NoError(t, err)
	assert.Equal(t, biz.DeletionArchived, res.Status)

	_, err = f.tables.Latest.Get(ctx, "landing/a.csv")
	assert.ErrorIs(t, err, biz.ErrNotFound)

	deleted, err := f.tables.Deleted.Versions(ctx, "landing/a.csv")
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	assert.NotEmpty(t, deleted[0].DeletionTimestamp)
	assert.NotEmpty(t, deleted[0].Timestamp)
	assert.Equal(t, []string{"a", "b"}, deleted[0].Header)
	assert.Empty(t, deleted[0].Comment)
}

func TestOnDeleted_Untracked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.deletion.OnDeleted(ctx, "landing", "data/2024/sales.csv.gz")
	require.NoError(t, err)
	assert.Equal(t, biz.DeletionUntracked, res.Status)
	assert.Equal(t, "not_found", string(res.Status))

	deleted, err := f.tables.Deleted.Versions(ctx, "landing/data/2024/sales.csv.gz")
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	rec := deleted[0]
	assert.Equal(t, biz.CommentUntracked, rec.Comment)
	assert.Equal(t, "csv", rec.FileType)
	assert.Equal(t, "gz", rec.Compression)
	assert.Zero(t, rec.Size)
	assert.Equal(t, "unknown", rec.ContentType)
	assert.Empty(t, rec.Timestamp)
	assert.Nil(t, rec.Header)
	assert.Zero(t, f.tables.Latest.(*data.MemoryTable).Len())
}

func TestOnDeleted_StoreError(t *testing.T) {
	f := newFixture(t)
	f.tables.Latest = &failingTable{Table: f.tables.Latest, failGet: true}

	_, err := f.deletion.OnDeleted(context.Background(), "landing", "a.csv")
	require.Error(t, err)
	assert.True(t, biz.IsStoreError(err))
}

func TestRouter_Route(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.objects.put("landing", "a.csv", []byte("a,b\n"))

	res := f.router.Route(ctx, biz.Notification{Bucket: "landing", Key: "a.csv", EventType: "Object Created"})
	assert.Equal(t, biz.RouteDispatched, res.Status)
	assert.Equal(t, "stored", res.Outcome)

	res = f.router.Route(ctx, biz.Notification{Bucket: "landing", Key: "a.csv", EventType: "Object Deleted"})
	assert.Equal(t, biz.RouteDispatched, res.Status)
	assert.Equal(t, "archived", res.Outcome)

	res = f.router.Route(ctx, biz.Notification{Bucket: "landing", Key: "a.csv", EventType: "Object Restore Completed"})
	assert.Equal(t, biz.RouteUnrecognized, res.Status)
	assert.NoError(t, res.Err)

	res = f.router.Route(ctx, biz.Notification{EventType: "Object Created"})
	assert.Equal(t, biz.RouteError, res.Status)
	assert.ErrorIs(t, res.Err, biz.ErrInvalidNotification)
}

func TestRouter_RouteBatchContinuesPastFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.tables.Deleted = failingVersioned{}

	var batch []biz.Notification
	for i := 0; i < 10; i++ {
		key := fmt.Sprintf("file-%d.csv", i)
		f.objects.put("landing", key, []byte("x,y\n"))
		batch = append(batch, biz.Notification{ID: key, Bucket: "landing", Key: key, EventType: "Object Created"})
	}
	batch = append(batch,
		biz.Notification{ID: "del", Bucket: "landing", Key: "file-0.csv", EventType: "Object Deleted"},
		biz.Notification{ID: "odd", EventType: "Object Tagging"},
	)

	results := f.router.RouteBatch(ctx, batch)
	require.Len(t, results, len(batch))
	for i := 0; i < 10; i++ {
		assert.Equal(t, batch[i].ID, results[i].ID)
		assert.Equal(t, biz.RouteDispatched, results[i].Status)
	}
	assert.Equal(t, biz.RouteError, results[10].Status)
	assert.True(t, biz.IsRetryable(results[10].Err))
	assert.Equal(t, biz.RouteUnrecognized, results[11].Status)
}

func TestOnCreated_SnifferPanicGoesToFailed(t *testing.T) {
	f := newFixture(t)
	log := logger.NewFromZap(zap.NewNop())
	panicking := biz.NewCreationProcessor(f.objects, biz.HeaderSnifferFunc(func([]byte, string) ([]string, error) {
		panic("sniffer exploded")
	}), f.tables, log)
	router := biz.NewRouter(panicking, f.deletion, 1, log)
	f.objects.put("landing", "a.csv", []byte("a\n"))
	ctx := context.Background()

	res := router.Route(ctx, biz.Notification{Bucket: "landing", Key: "a.csv", EventType: "Object Created"})
	assert.Equal(t, biz.RouteDispatched, res.Status)
	assert.Equal(t, "failed", res.Outcome)
	assert.Contains(t, res.Message, "sniffer exploded")

	rec, err := f.tables.Failed.Get(ctx, "landing/a.csv")
	require.NoError(t, err)
	assert.Equal(t, biz.ReasonHeaderParse, rec.Reason)
	assert.Equal(t, "a.csv", rec.Filename)

	_, err = f.tables.Latest.Get(ctx, "landing/a.csv")
	assert.ErrorIs(t, err, biz.ErrNotFound)
}

type panickingObjectStore struct{}

func (panickingObjectStore) Head(context.Context, string, string) (*biz.ObjectInfo, error) {
	panic("head exploded")
}

func (panickingObjectStore) Get(context.Context, string, string) ([]byte, error) {
	return nil, errors.New("unreachable")
}

func TestRouter_RecoversPanics(t *testing.T) {
	f := newFixture(t)
	log := logger.NewFromZap(zap.NewNop())
	panicking := biz.NewCreationProcessor(panickingObjectStore{}, sniff.New(log), f.tables, log)
	router := biz.NewRouter(panicking, f.deletion, 1, log)

	res := router.Route(context.Background(), biz.Notification{Bucket: "landing", Key: "a.csv", EventType: "Object Created"})
	assert.Equal(t, biz.RouteError, res.Status)
	var pe *biz.ProcessingError
	assert.ErrorAs(t, res.Err, &pe)
	assert.True(t, biz.IsRetryable(res.Err))
}

func TestRouter_FlatEventTypes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.objects.put("landing", "a.csv", []byte("id,name\n1,x\n"))

	ns, err := biz.ParseNotifications([]byte(`{"bucket":"landing","key":"a.csv","event_type":"created"}`))
	require.NoError(t, err)
	require.Len(t, ns, 1)

	res := f.router.Route(ctx, ns[0])
	assert.Equal(t, biz.RouteDispatched, res.Status)
	assert.Equal(t, "stored", res.Outcome)

	rec, err := f.tables.Latest.Get(ctx, "landing/a.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, rec.Header)

	res = f.router.Route(ctx, biz.Notification{Bucket: "landing", Key: "a.csv", EventType: "deleted"})
	assert.Equal(t, biz.RouteDispatched, res.Status)
	assert.Equal(t, "archived", res.Outcome)

	_, err = f.tables.Latest.Get(ctx, "landing/a.csv")
	assert.ErrorIs(t, err, biz.ErrNotFound)
}

type failingVersioned struct{}

func (failingVersioned) Name() string { return "FileDeleted" }

func (failingVersioned) Append(context.Context, string, *biz.FileMetadataRecord) error {
	return errors.New("table unavailable")
}

func (failingVersioned) Versions(context.Context, string) ([]*biz.FileMetadataRecord, error) {
	return nil, errors.New("table unavailable")
}
