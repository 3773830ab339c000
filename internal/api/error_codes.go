// internal/api/error_codes.go
package api

// API错误代码常量
const (
	// 通用错误
	ErrorBadRequest    = "BAD_REQUEST"
	ErrorNotFound      = "NOT_FOUND"
	ErrorInternalError = "INTERNAL_ERROR"
	ErrorRateLimited   = "RATE_LIMIT_EXCEEDED"
	ErrorBodyTooLarge  = "BODY_TOO_LARGE"

	// 生成相关错误，与 errors.CodeOf 一一对应
	ErrorValidation     = "VALIDATION_ERROR"
	ErrorTransport      = "TRANSPORT_ERROR"
	ErrorParse          = "PARSE_ERROR"
	ErrorSchemaMismatch = "SCHEMA_MISMATCH"
	ErrorTimeout        = "TIMEOUT"
	ErrorCanceled       = "CANCELED"
	ErrorConfig         = "CONFIG_ERROR"

	// 导出相关错误
	ErrorNoBreakdown  = "NO_BREAKDOWN"
	ErrorExportFailed = "EXPORT_FAILED"
)
