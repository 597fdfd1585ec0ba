// Package httpx shapes every handler response into the portal's uniform
// JSON envelope: {data, count?} on success, {error} on failure, and
// {success:true} for deletions.
package httpx

import (
	"fmt"
	"net/http"
	"reflect"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// ListResponse is the envelope for list endpoints.
type ListResponse struct {
	Data  interface{} `json:"data"`
	Count int         `json:"count"`
}

// OK writes {data} with status 200.
func OK(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{"data": data})
}

// Created writes {data} with status 201.
func Created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, map[string]interface{}{"data": data})
}

// List writes {data, count} with status 200. A nil slice is rendered as [].
func List(c echo.Context, data interface{}, count int) error {
	return c.JSON(http.StatusOK, ListResponse{Data: emptyIfNil(data), Count: count})
}

// Deleted writes {success:true} with status 200.
func Deleted(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func emptyIfNil(data interface{}) interface{} {
	if data == nil {
		return []interface{}{}
	}
	// A nil slice inside a non-nil interface still marshals to null.
	if v := reflect.ValueOf(data); v.Kind() == reflect.Slice && v.IsNil() {
		return reflect.MakeSlice(v.Type(), 0, 0).Interface()
	}
	return data
}

// ErrorHandler converts every error that escapes a handler into the
// {error} envelope. Errors without a specific status map to 500 with the
// underlying message passed through, matching the portal's contract that
// store failures are surfaced, not retried.
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		msg := err.Error()

		if he, ok := err.(*echo.HTTPError); ok {
			status = he.Code
			switch m := he.Message.(type) {
			case string:
				msg = m
			case error:
				msg = m.Error()
			default:
				msg = fmt.Sprintf("%v", m)
			}
			if he.Internal != nil {
				logger.Error().Err(he.Internal).Int("status", status).Msg("handler error")
			}
		} else {
			logger.Error().Err(err).Msg("unhandled error")
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, map[string]string{"error": msg})
	}
}
