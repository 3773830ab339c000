// internal/api/response_helpers.go
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Corphon/ScriptBreakdown/internal/errors"
	"github.com/Corphon/ScriptBreakdown/internal/models"
)

// APIResponse 标准API响应格式
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"`
}

// APIError 标准错误格式
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
}

// ResponseHelper 响应助手类
type ResponseHelper struct{}

// NewResponseHelper 创建响应助手
func NewResponseHelper() *ResponseHelper {
	return &ResponseHelper{}
}

// Success 成功响应
func (rh *ResponseHelper) Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, &APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
		RequestID: rh.getRequestID(c),
	})
}

// Error 错误响应，data 可携带客户端需要渲染的状态
func (rh *ResponseHelper) Error(c *gin.Context, statusCode int, apiError *APIError, data interface{}) {
	c.JSON(statusCode, &APIResponse{
		Success:   false,
		Data:      data,
		Error:     apiError,
		Timestamp: time.Now(),
		RequestID: rh.getRequestID(c),
	})
}

// BadRequest 400错误响应
func (rh *ResponseHelper) BadRequest(c *gin.Context, message string) {
	rh.Error(c, http.StatusBadRequest, &APIError{Code: ErrorBadRequest, Message: message}, nil)
}

// NotFound 404错误响应
func (rh *ResponseHelper) NotFound(c *gin.Context, code, message string) {
	rh.Error(c, http.StatusNotFound, &APIError{Code: code, Message: message}, nil)
}

// InternalError 500错误响应
func (rh *ResponseHelper) InternalError(c *gin.Context, code, message string) {
	rh.Error(c, http.StatusInternalServerError, &APIError{Code: code, Message: message}, nil)
}

// AppError 按错误类型映射HTTP状态码
func (rh *ResponseHelper) AppError(c *gin.Context, err error, data interface{}) {
	kind := apperrors.TypeOf(err)
	rh.Error(c, statusForKind(kind), &APIError{
		Code:    apperrors.CodeOf(err),
		Message: apperrors.UserMessage(err),
		Kind:    string(kind),
	}, data)
}

// DownloadResponse 下载响应（强制下载）
func (rh *ResponseHelper) DownloadResponse(c *gin.Context, result *models.ExportResult) {
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Header("Content-Length", strconv.FormatInt(result.FileSize, 10))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

// getRequestID 获取请求ID
func (rh *ResponseHelper) getRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// statusForKind 错误类型到HTTP状态码
func statusForKind(kind apperrors.ErrorType) int {
	switch kind {
	case apperrors.ErrorTypeValidation:
		return http.StatusBadRequest
	case apperrors.ErrorTypeParse, apperrors.ErrorTypeSchemaMismatch, apperrors.ErrorTypeTransport:
		return http.StatusBadGateway
	case apperrors.ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	case apperrors.ErrorTypeCanceled:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
