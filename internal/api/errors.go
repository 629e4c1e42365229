package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/dl-alexandre/gxlib/internal/logging"
	"github.com/dl-alexandre/gxlib/internal/types"
	"github.com/dl-alexandre/gxlib/internal/utils"
)

// HTTPError is a non-2xx response from Galaxy
type HTTPError struct {
	StatusCode int
	// Code is Galaxy's err_code, e.g. 403002
	Code    int
	Message string
	Path    string
}

func (e *HTTPError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("galaxy %s: %d %s (err_code %d)", e.Path, e.StatusCode, e.Message, e.Code)
	}
	return fmt.Sprintf("galaxy %s: %d %s", e.Path, e.StatusCode, e.Message)
}

func newHTTPError(resp *http.Response, body []byte) *HTTPError {
	httpErr := &HTTPError{StatusCode: resp.StatusCode}
	if resp.Request != nil && resp.Request.URL != nil {
		httpErr.Path = resp.Request.URL.Path
	}

	var payload struct {
		ErrMsg  string `json:"err_msg"`
		ErrCode int    `json:"err_code"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.ErrMsg != "" {
		httpErr.Message = payload.ErrMsg
		httpErr.Code = payload.ErrCode
		return httpErr
	}

	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	httpErr.Message = msg
	return httpErr
}

// classifyError converts transport and API errors into AppErrors
func classifyError(err error, reqCtx *types.RequestContext, logger logging.Logger) error {
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, context.Canceled) {
		return utils.WrapAppError(utils.NewCLIError(utils.ErrCodeCancelled, "request cancelled").
			WithContext("traceId", reqCtx.TraceID).
			Build(), err)
	}

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		code := utils.ErrCodeNetworkError
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			code = utils.ErrCodeTimeout
		}
		logger.Error("Non-API error",
			logging.F("error", err.Error()),
			logging.F("errorCode", code),
			logging.F("traceId", reqCtx.TraceID),
		)
		return utils.WrapAppError(utils.NewCLIError(code, err.Error()).
			WithRetryable(true).
			WithContext("traceId", reqCtx.TraceID).
			WithContext("requestType", string(reqCtx.RequestType)).
			Build(), err)
	}

	var code string
	retryable := false
	switch httpErr.StatusCode {
	case http.StatusBadRequest:
		code = utils.ErrCodeInvalidArgument
	case http.StatusUnauthorized:
		code = utils.ErrCodeAuthInvalid
	case http.StatusForbidden:
		code = utils.ErrCodePermissionDenied
	case http.StatusNotFound:
		code = utils.ErrCodeNotFound
	case http.StatusConflict:
		code = utils.ErrCodeConflict
	case http.StatusTooManyRequests:
		code = utils.ErrCodeServerError
		retryable = true
	default:
		if httpErr.StatusCode >= 500 {
			code = utils.ErrCodeServerError
			retryable = true
		} else {
			code = utils.ErrCodeUnknown
		}
	}

	logger.Error("API error classified",
		logging.F("httpStatus", httpErr.StatusCode),
		logging.F("galaxyErrCode", httpErr.Code),
		logging.F("errorCode", code),
		logging.F("message", httpErr.Message),
		logging.F("traceId", reqCtx.TraceID),
	)

	builder := utils.NewCLIError(code, httpErr.Message).
		WithHTTPStatus(httpErr.StatusCode).
		WithRetryable(retryable).
		WithContext("traceId", reqCtx.TraceID).
		WithContext("requestType", string(reqCtx.RequestType)).
		WithContext("path", httpErr.Path)
	if httpErr.Code != 0 {
		builder.WithContext("galaxyErrCode", httpErr.Code)
	}
	if reqCtx.LibraryID != "" {
		builder.WithContext("libraryId", reqCtx.LibraryID)
	}

	switch code {
	case utils.ErrCodeAuthInvalid:
		builder.WithContext("suggestedAction", "check GALAXY_DEFAULT_ADMIN_USER and GALAXY_DEFAULT_ADMIN_PASSWORD")
	case utils.ErrCodePermissionDenied:
		builder.WithContext("suggestedAction", "the account must be a Galaxy admin with library_import_dir or allow_path_paste enabled")
	}

	return utils.WrapAppError(builder.Build(), err)
}
