package errors

import (
	"net/http"
)

// Code binds a business error code to an HTTP status and message
type Code struct {
	Code    int
	Status  int
	Message string
}

const (
	Success = 0

	// Common errors (1000-1999)
	ErrInternalServer = 1000
	ErrInvalidParams  = 1001
	ErrNotFound       = 1002
	ErrBadRequest     = 1003
	ErrServiceUnavail = 1004

	// Tracker errors (2000-2999)
	ErrRecordNotFound      = 2000
	ErrExistenceCheck      = 2001
	ErrBodyFetch           = 2002
	ErrHeaderParse         = 2003
	ErrTrackerProcessing   = 2004
	ErrUnrecognizedEvent   = 2005
	ErrInvalidNotification = 2006

	// Storage errors (3000-3999)
	ErrStoreWrite       = 3000
	ErrStoreRead        = 3001
	ErrObjectStore      = 3002
	ErrStoreUnavailable = 3003

	// Queue errors (4000-4999)
	ErrQueueEnqueue = 4000
	ErrQueueDecode  = 4001
)

var codeMap = map[int]Code{
	Success: {Success, http.StatusOK, "Success"},

	ErrInternalServer: {ErrInternalServer, http.StatusInternalServerError, "Internal server error"},
	ErrInvalidParams:  {ErrInvalidParams, http.StatusBadRequest, "Invalid parameters"},
	ErrNotFound:       {ErrNotFound, http.StatusNotFound, "Resource not found"},
	ErrBadRequest:     {ErrBadRequest, http.StatusBadRequest, "Bad request"},
	ErrServiceUnavail: {ErrServiceUnavail, http.StatusServiceUnavailable, "Service unavailable"},

	ErrRecordNotFound:      {ErrRecordNotFound, http.StatusNotFound, "File metadata not found"},
	ErrExistenceCheck:      {ErrExistenceCheck, http.StatusBadGateway, "Object existence check failed"},
	ErrBodyFetch:           {ErrBodyFetch, http.StatusBadGateway, "Object body fetch failed"},
	ErrHeaderParse:         {ErrHeaderParse, http.StatusUnprocessableEntity, "Header parsing failed"},
	ErrTrackerProcessing:   {ErrTrackerProcessing, http.StatusInternalServerError, "File event processing failed"},
	ErrUnrecognizedEvent:   {ErrUnrecognizedEvent, http.StatusBadRequest, "Unrecognized event type"},
	ErrInvalidNotification: {ErrInvalidNotification, http.StatusBadRequest, "Invalid change notification"},

	ErrStoreWrite:       {ErrStoreWrite, http.StatusInternalServerError, "Metadata store write failed"},
	ErrStoreRead:        {ErrStoreRead, http.StatusInternalServerError, "Metadata store read failed"},
	ErrObjectStore:      {ErrObjectStore, http.StatusBadGateway, "Object store request failed"},
	ErrStoreUnavailable: {ErrStoreUnavailable, http.StatusServiceUnavailable, "Metadata store unavailable"},

	ErrQueueEnqueue: {ErrQueueEnqueue, http.StatusServiceUnavailable, "Failed to enqueue event"},
	ErrQueueDecode:  {ErrQueueDecode, http.StatusBadRequest, "Failed to decode queued event"},
}

// GetCode returns the Code for a given error code
func GetCode(code int) Code {
	if c, ok := codeMap[code]; ok {
		return c
	}
	return codeMap[ErrInternalServer]
}

// GetHTTPStatus returns HTTP status for a given error code
func GetHTTPStatus(code int) int {
	return GetCode(code).Status
}

// GetMessage returns the message for a given error code
func GetMessage(code int) string {
	return GetCode(code).Message
}

func IsClientError(code int) bool {
	status := GetHTTPStatus(code)
	return status >= 400 && status < 500
}

func IsServerError(code int) bool {
	return GetHTTPStatus(code) >= 500
}
