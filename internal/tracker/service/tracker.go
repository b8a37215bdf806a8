package service

import (
	"context"
	"errors"
	"io"
	"net/http"

	apperrors "github.com/dixithak/FileInsights/internal/pkg/errors"
	"github.com/dixithak/FileInsights/internal/pkg/logger"
	"github.com/dixithak/FileInsights/internal/pkg/response"
	"github.com/dixithak/FileInsights/internal/tracker/biz"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxBodyBytes caps request bodies accepted by the event and sniff endpoints
const maxBodyBytes = 32 << 20

// Enqueuer hands notifications to the background worker
type Enqueuer interface {
	Enqueue(ctx context.Context, n biz.Notification) (string, error)
}

// TrackerService HTTP surface of the tracker
type TrackerService struct {
	router   *biz.Router
	tables   *biz.Tables
	sniffer  biz.HeaderSniffer
	enqueuer Enqueuer
	logger   *logger.Logger
}

// NewTrackerService creates the service. enqueuer may be nil when no queue is configured.
func NewTrackerService(router *biz.Router, tables *biz.Tables, sniffer biz.HeaderSniffer, enqueuer Enqueuer, log *logger.Logger) *TrackerService {
	if log == nil {
		log = logger.L()
	}
	return &TrackerService{
		router:   router,
		tables:   tables,
		sniffer:  sniffer,
		enqueuer: enqueuer,
		logger:   log.Named("tracker-service"),
	}
}

// RegisterRoutes mounts the tracker endpoints on rg
func (s *TrackerService) RegisterRoutes(rg *gin.RouterGroup) {
	events := rg.Group("/events")
	{
		events.POST("", s.RouteEvents)
		events.POST("/enqueue", s.EnqueueEvents)
	}

	files := rg.Group("/files")
	{
		files.GET("/latest", s.GetLatest)
		files.GET("/history", s.GetHistory)
		files.GET("/deleted", s.GetDeleted)
	}

	rg.POST("/sniff", s.Sniff)
}

// BatchSummary counts of route statuses
type BatchSummary struct {
	Total        int `json:"total"`
	Dispatched   int `json:"dispatched"`
	Unrecognized int `json:"unrecognized"`
	Errors       int `json:"errors"`
}

// RouteEventsResponse body of POST /events
type RouteEventsResponse struct {
	Results []biz.RouteResult `json:"results"`
	Summary BatchSummary      `json:"summary"`
}

// RouteEvents routes a notification batch synchronously
func (s *TrackerService) RouteEvents(c *gin.Context) {
	notifications, ok := s.readNotifications(c)
	if !ok {
		return
	}

	results := s.router.RouteBatch(c.Request.Context(), notifications)

	summary := BatchSummary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case biz.RouteDispatched:
			summary.Dispatched++
		case biz.RouteUnrecognized:
			summary.Unrecognized++
		default:
			summary.Errors++
		}
	}

	s.logger.WithContext(c.Request.Context()).Info("event batch routed",
		zap.Int("total", summary.Total),
		zap.Int("dispatched", summary.Dispatched),
		zap.Int("errors", summary.Errors),
	)
	response.Success(c, RouteEventsResponse{Results: results, Summary: summary})
}

// EnqueueEvents pushes a notification batch onto the queue
func (s *TrackerService) EnqueueEvents(c *gin.Context) {
	if s.enqueuer == nil {
		response.ErrorWithCode(c, apperrors.ErrServiceUnavail, "event queue is not configured")
		return
	}

	notifications, ok := s.readNotifications(c)
	if !ok {
		return
	}

	ids := make([]string, 0, len(notifications))
	for _, n := range notifications {
		id, err := s.enqueuer.Enqueue(c.Request.Context(), n)
		if err != nil {
			s.logger.WithContext(c.Request.Context()).Error("failed to enqueue event", zap.Error(err))
			response.HandleError(c, apperrors.Wrap(err, apperrors.ErrQueueEnqueue))
			return
		}
		ids = append(ids, id)
	}

	response.Accepted(c, gin.H{"task_ids": ids})
}

func (s *TrackerService) readNotifications(c *gin.Context) ([]biz.Notification, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		response.BadRequest(c, "failed to read request body")
		return nil, false
	}

	notifications, err := biz.ParseNotifications(body)
	if err != nil {
		response.HandleError(c, toAppError(err))
		return nil, false
	}
	return notifications, true
}

// GetLatest current record of a filepath
func (s *TrackerService) GetLatest(c *gin.Context) {
	filepath, ok := requireFilepath(c)
	if !ok {
		return
	}

	rec, err := s.tables.Latest.Get(c.Request.Context(), filepath)
	if err != nil {
		if errors.Is(err, biz.ErrNotFound) {
			response.HandleError(c, apperrors.NewNotFoundError(filepath))
			return
		}
		response.HandleError(c, apperrors.Wrap(err, apperrors.ErrStoreRead))
		return
	}
	response.Success(c, rec)
}

// GetHistory archived versions of a filepath
func (s *TrackerService) GetHistory(c *gin.Context) {
	s.listVersions(c, s.tables.History)
}

// GetDeleted deletion records of a filepath
func (s *TrackerService) GetDeleted(c *gin.Context) {
	s.listVersions(c, s.tables.Deleted)
}

func (s *TrackerService) listVersions(c *gin.Context, table biz.VersionedTable) {
	filepath, ok := requireFilepath(c)
	if !ok {
		return
	}

	records, err := table.Versions(c.Request.Context(), filepath)
	if err != nil {
		response.HandleError(c, apperrors.Wrap(err, apperrors.ErrStoreRead))
		return
	}
	response.Success(c, gin.H{"filepath": filepath, "table": table.Name(), "records": records})
}

// SniffResponse body of POST /sniff
type SniffResponse struct {
	Key         string        `json:"key"`
	Parts       biz.PathParts `json:"parts"`
	Header      []string      `json:"header"`
	ColumnCount int           `json:"column_count"`
}

// Sniff runs header extraction on the request body
func (s *TrackerService) Sniff(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		response.BadRequest(c, "key is required")
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		response.BadRequest(c, "failed to read request body")
		return
	}

	header, err := s.sniffer.Sniff(data, key)
	if err != nil {
		response.HandleError(c, apperrors.Wrap(err, apperrors.ErrHeaderParse))
		return
	}
	response.Success(c, SniffResponse{
		Key:         key,
		Parts:       biz.Decompose(key),
		Header:      header,
		ColumnCount: len(header),
	})
}

func requireFilepath(c *gin.Context) (string, bool) {
	filepath := c.Query("filepath")
	if filepath == "" {
		response.BadRequest(c, "filepath is required")
		return "", false
	}
	return filepath, true
}

// toAppError maps tracker errors onto response codes
func toAppError(err error) *apperrors.AppError {
	var (
		storeErr *biz.StoreError
		existErr *biz.ExistenceCheckError
	)
	switch {
	case errors.Is(err, biz.ErrNotFound):
		return apperrors.Wrap(err, apperrors.ErrRecordNotFound)
	case errors.Is(err, biz.ErrInvalidNotification):
		return apperrors.Wrap(err, apperrors.ErrInvalidNotification)
	case errors.As(err, &existErr):
		return apperrors.Wrap(err, apperrors.ErrExistenceCheck)
	case errors.As(err, &storeErr):
		if storeErr.Op == "get" {
			return apperrors.Wrap(err, apperrors.ErrStoreRead)
		}
		return apperrors.Wrap(err, apperrors.ErrStoreWrite)
	default:
		return apperrors.Wrap(err, apperrors.ErrTrackerProcessing)
	}
}
