package handler

import (
	stdErrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/call-coach/errors"
	"github.com/johnquangdev/call-coach/internal/adapter/dto/common"
)

// getRequestID tries to read X-Request-ID from the request or the response
func getRequestID(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	if id := c.Request().Header.Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Response().Header().Get(echo.HeaderXRequestID)
}

// HandleSuccess writes a standardized success response using provided logger
func HandleSuccess(logger *zap.Logger, c echo.Context, status int, data interface{}) error {
	resp := common.SuccessResponse{
		Code:    int(errors.ErrorCode_HTTP_OK),
		Message: "success",
		Data:    data,
	}

	if logger != nil {
		logger.Debug("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
		)
	}

	return c.JSON(status, resp)
}

// HandleError centralizes error handling and logging using provided logger.
// Domain errors are mapped with the :id path parameter as the call ID.
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	// errors raised by echo itself, such as bind failures or the body limit
	var httpErr *echo.HTTPError
	if stdErrors.As(err, &httpErr) {
		if httpErr.Code == http.StatusRequestEntityTooLarge {
			appErr := errors.ErrFileTooLarge(0)
			appErr.Raw = httpErr
			err = appErr
		} else {
			err = errors.AppError{
				Raw:      httpErr,
				HTTPCode: httpErr.Code,
				Code:     errors.ErrorCode_INVALID_ARGUMENT,
				Message:  http.StatusText(httpErr.Code),
			}
		}
	}

	appErr := errors.FromDomain(err, c.Param("id"))

	if logger != nil {
		fields := []zap.Field{
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
			zap.String("app_code", appErr.Code.String()),
			zap.Error(err),
		}
		if appErr.HTTPCode >= http.StatusInternalServerError {
			logger.Error("http.response.error", fields...)
		} else {
			logger.Warn("http.response.error", fields...)
		}
	}

	body := common.ErrorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	}
	if appErr.Raw != nil {
		body.Info = appErr.Raw.Error()
	}

	return c.JSON(appErr.HTTPCode, body)
}
