package response

import (
	"net/http"

	apperrors "github.com/dixithak/FileInsights/internal/pkg/errors"
	"github.com/gin-gonic/gin"
)

// Response common response envelope
type Response struct {
	Code    int         `json:"code"` // business code, 0 on success
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

// Success 200
func Success(c *gin.Context, data interface{}) {
	if data == nil {
		data = struct{}{}
	}
	c.JSON(http.StatusOK, Response{
		Code: apperrors.Success,
		Data: data,
	})
}

// Accepted 202, for work handed to the queue
func Accepted(c *gin.Context, data interface{}) {
	if data == nil {
		data = struct{}{}
	}
	c.JSON(http.StatusAccepted, Response{
		Code: apperrors.Success,
		Data: data,
	})
}

// Error responds with a plain HTTP status
func Error(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, Response{
		Code:    httpStatus,
		Message: message,
		Data:    struct{}{},
	})
}

func BadRequest(c *gin.Context, message string) {
	ErrorWithCode(c, apperrors.ErrBadRequest, message)
}

func NotFound(c *gin.Context, message string) {
	ErrorWithCode(c, apperrors.ErrNotFound, message)
}

func InternalError(c *gin.Context, message string) {
	ErrorWithCode(c, apperrors.ErrInternalServer, message)
}

// HandleError responds with the code carried by err, or 500
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	code := apperrors.ExtractCode(err)
	c.JSON(apperrors.GetHTTPStatus(code), Response{
		Code:    code,
		Message: formatMessage(code, apperrors.GetDetails(err)),
		Data:    struct{}{},
	})
}

// ErrorWithCode responds with a business code
func ErrorWithCode(c *gin.Context, code int, details ...string) {
	detail := ""
	if len(details) > 0 {
		detail = details[0]
	}
	c.JSON(apperrors.GetHTTPStatus(code), Response{
		Code:    code,
		Message: formatMessage(code, detail),
		Data:    struct{}{},
	})
}

func formatMessage(code int, detail string) string {
	msg := apperrors.GetMessage(code)
	if detail == "" || detail == msg {
		return msg
	}
	return msg + ": " + detail
}
