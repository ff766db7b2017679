package middleware

import (
	"net/http"

	"github.com/deppfellow/formapplication/internal/dberr"
	"github.com/deppfellow/formapplication/internal/errs"
	"github.com/deppfellow/formapplication/internal/lib/utils"
	"github.com/deppfellow/formapplication/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// GlobalMiddlewares holds the middleware applied to every route and the
// global error handler.
type GlobalMiddlewares struct {
	server *server.Server
}

func NewGlobalMiddlewares(s *server.Server) *GlobalMiddlewares {
	return &GlobalMiddlewares{
		server: s,
	}
}

// CORS allows the configured origins and exposes the alert and pagination
// headers so browser clients can read them.
func (global *GlobalMiddlewares) CORS() echo.MiddlewareFunc {
	appName := global.server.Config.Primary.AppName

	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: global.server.Config.Server.CORSAllowedOrigins,
		ExposeHeaders: []string{
			"Location",
			"Link",
			"X-Total-Count",
			"X-Total-Pages",
			RequestIDHeader,
			utils.AlertHeader(appName),
			utils.ErrorHeader(appName),
			utils.ParamsHeader(appName),
		},
	})
}

// RequestLogger writes one "API" line per request. The level follows the
// final status, which for failed requests is taken from the returned error
// because the error handler has not written the response yet.
func (global *GlobalMiddlewares) RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogError:   true,
		LogLatency: true,
		LogHost:    true,
		LogMethod:  true,
		LogURIPath: true,

		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			statusCode := v.Status

			if v.Error != nil {
				var httpErr *errs.HTTPError
				var echoErr *echo.HTTPError

				if errors.As(v.Error, &httpErr) {
					statusCode = httpErr.Status
				} else if errors.As(v.Error, &echoErr) {
					statusCode = echoErr.Code
				}
			}

			logger := GetLogger(c)

			var e *zerolog.Event
			switch {
			case statusCode >= 500:
				e = logger.Error().Err(v.Error)
			case statusCode >= 400:
				e = logger.Warn()
			default:
				e = logger.Info()
			}

			e.
				Dur("latency", v.Latency).
				Int("status", statusCode).
				Str("method", v.Method).
				Str("uri", v.URI).
				Str("host", v.Host).
				Str("ip", c.RealIP()).
				Str("user_agent", c.Request().UserAgent()).
				Msg("API")

			return nil
		},
	})
}

// Recover turns handler panics into errors for the global error handler.
func (global *GlobalMiddlewares) Recover() echo.MiddlewareFunc {
	return middleware.Recover()
}

// Secure sets the standard security headers.
func (global *GlobalMiddlewares) Secure() echo.MiddlewareFunc {
	return middleware.Secure()
}

// GlobalErrorHandler is the single place errors become responses.
//
// Errors that are not already *errs.HTTPError are classified first: echo's
// own errors keep their status, driver errors go through dberr and
// anything else is a plain 500. Entity alerts (idexists, idnull) also get the X-<app>-error and
// X-<app>-params headers. Server errors are logged at error level with the
// original error; client errors at warn.
func (global *GlobalMiddlewares) GlobalErrorHandler(err error, c echo.Context) {
	originalErr := err

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) {
			switch echoErr.Code {
			case http.StatusNotFound:
				err = errs.NewNotFoundError("Route not found", false, nil)
			case http.StatusTooManyRequests:
				err = errs.NewTooManyRequestsError("Too many requests")
			}
		} else if dberr.IsDriverError(err) {
			err = dberr.HandleError(err, "")
		} else {
			err = errs.NewInternalServerError()
		}
	}

	response := errs.HTTPError{}
	httpErr = nil

	var echoErr *echo.HTTPError
	switch {
	case errors.As(err, &httpErr):
		response = *httpErr

	case errors.As(err, &echoErr):
		response.Status = echoErr.Code
		response.Code = errs.MakeUpperCaseWithUnderscores(http.StatusText(echoErr.Code))
		if msg, ok := echoErr.Message.(string); ok {
			response.Message = msg
		} else {
			response.Message = http.StatusText(echoErr.Code)
		}

	default:
		response = *errs.NewInternalServerError()
	}

	logger := GetLogger(c)
	event := logger.Warn()
	if response.Status >= http.StatusInternalServerError {
		event = logger.Error().Stack()
	}
	event.
		Err(originalErr).
		Int("status", response.Status).
		Str("error_code", response.Code).
		Msg(response.Message)

	if c.Response().Committed {
		return
	}

	if response.IsAlert() {
		utils.CopyHeaders(c.Response().Header(),
			utils.FailureAlert(global.server.Config.Primary.AppName, response.EntityName, response.ErrorKey))
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(response.Status)
		return
	}
	_ = c.JSON(response.Status, response)
}
