package handler

import (
	stdErrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/meetwise-team/meeting-insights/errors"
	ucerrors "github.com/meetwise-team/meeting-insights/internal/usecase/errors"
)

// Response shapes
type success struct {
	Code    interface{} `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type errs struct {
	Code    interface{} `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Info    string      `json:"info,omitempty"`
}

// getRequestID tries to read X-Request-ID from the request
func getRequestID(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	return c.Request().Header.Get("X-Request-ID")
}

// MapUsecaseError converts usecase sentinel errors into transport
// AppErrors so HandleError can pick the right status code.
func MapUsecaseError(err error) error {
	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		return err
	}

	switch {
	case stdErrors.Is(err, ucerrors.ErrNotFound):
		e := errors.ErrNotFound("Resource")
		e.Raw = err
		return e
	case stdErrors.Is(err, ucerrors.ErrInvalidInput):
		e := errors.ErrInvalidArgument("Invalid request")
		e.Raw = err
		return e
	case stdErrors.Is(err, ucerrors.ErrUnsupportedMedia):
		return errors.ErrUnsupportedMedia(err)
	case stdErrors.Is(err, ucerrors.ErrUploadTooLarge):
		return errors.ErrUploadTooLarge(err)
	case stdErrors.Is(err, ucerrors.ErrJobAlreadyActive):
		e := errors.ErrConflict("A job is already running for this meeting")
		e.Raw = err
		return e
	case stdErrors.Is(err, ucerrors.ErrMeetingNotReady):
		e := errors.ErrConflict("Meeting has not been processed yet")
		e.Raw = err
		return e
	default:
		return errors.ErrInternal(err)
	}
}

// HandleSuccess writes a standardized success response
func HandleSuccess(logger *zap.Logger, c echo.Context, data interface{}) error {
	resp := success{
		Code:    errors.ErrorCode_HTTP_OK,
		Message: "success",
		Data:    data,
	}

	if logger != nil {
		logger.Info("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
		)
	}

	return c.JSON(http.StatusOK, resp)
}

// HandleError centralizes error handling and logging
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	reqID := getRequestID(c)

	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		if logger != nil {
			logger.Error("http.response.error",
				zap.String("request_id", reqID),
				zap.String("path", c.Path()),
				zap.Any("app_code", appErr.Code),
				zap.Error(err),
			)
		}

		info := ""
		if appErr.Raw != nil {
			info = appErr.Raw.Error()
		}

		body := errs{
			Code:    appErr.Code,
			Message: appErr.Message,
			Info:    info,
		}

		return c.JSON(appErr.HTTPCode, body)
	}

	if logger != nil {
		logger.Error("http.response.error",
			zap.String("request_id", reqID),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}

	body := errs{
		Code:    errors.ErrorCode_INTERNAL,
		Message: "Internal server error",
		Info:    err.Error(),
	}

	return c.JSON(http.StatusInternalServerError, body)
}
