// Package testutil builds a fully wired application on the in-memory
// driver for HTTP-level tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deppfellow/formapplication/internal/config"
	"github.com/deppfellow/formapplication/internal/handler"
	"github.com/deppfellow/formapplication/internal/repository"
	"github.com/deppfellow/formapplication/internal/router"
	"github.com/deppfellow/formapplication/internal/server"
	"github.com/deppfellow/formapplication/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// AppName is the application name the test config uses for alert headers.
const AppName = "formapplicationApp"

// TestConfig returns a valid configuration for the in-memory driver with
// rate limiting disabled.
func TestConfig() *config.Config {
	return &config.Config{
		Primary: config.Primary{
			Env:     "test",
			AppName: AppName,
		},
		Server: config.ServerConfig{
			Port:               "0",
			ReadTimeout:        30,
			WriteTimeout:       30,
			IdleTimeout:        60,
			CORSAllowedOrigins: []string{"*"},
		},
		Database: config.DatabaseConfig{
			Driver: config.DriverMemory,
		},
		RateLimit: config.RateLimitConfig{
			RequestsPerSecond: 20,
			Burst:             40,
		},
	}
}

// TestApp is a wired application plus direct access to its parts.
type TestApp struct {
	Server *server.Server
	Router *echo.Echo
	Repos  *repository.Repositories
}

// NewTestApp wires the application the same way the serve command does.
// Each option may adjust the config before it is validated.
func NewTestApp(t *testing.T, opts ...func(*config.Config)) *TestApp {
	t.Helper()

	cfg := TestConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("invalid test config: %v", err)
	}

	logger := zerolog.Nop()
	srv, err := server.New(cfg, &logger, nil)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	repos, err := repository.NewRepositories(srv)
	if err != nil {
		t.Fatalf("failed to create repositories: %v", err)
	}

	services := service.NewServices(srv, repos)
	handlers := handler.NewHandlers(srv, services)

	return &TestApp{
		Server: srv,
		Router: router.NewRouter(srv, handlers),
		Repos:  repos,
	}
}

// DoRequest runs one request through h. A string body is sent verbatim,
// anything else is encoded as JSON; nil sends no body.
func DoRequest(h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, _ := json.Marshal(b)
		reader = bytes.NewBuffer(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// ParseResponse decodes the JSON response body into a T.
func ParseResponse[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to parse response %q: %v", rec.Body.String(), err)
	}
	return out
}
