// Package router builds the echo instance: the middleware chain, the
// system routes and the /api route group.
package router

import (
	"net/http"

	"github.com/deppfellow/formapplication/internal/handler"
	"github.com/deppfellow/formapplication/internal/middleware"
	"github.com/deppfellow/formapplication/internal/server"
	"github.com/labstack/echo/v4"
)

// NewRouter wires the middleware chain and every route.
//
// Request ids and tracing come first so that the request-scoped logger,
// the request log line and the rate limiter's rejections all carry them.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.RateLimit.Limiter(),
	)

	registerSystemRoutes(router, h)

	api := router.Group("/api")
	registerFormRoutes(api, h)

	return router
}

func registerFormRoutes(api *echo.Group, h *handler.Handlers) {
	forms := api.Group("/form-v-1-s")

	forms.POST("", handler.Handle(h.Form.Handler, h.Form.CreateForm, http.StatusCreated, &handler.CreateFormRequest{}))
	forms.PUT("", handler.Handle(h.Form.Handler, h.Form.UpdateForm, http.StatusOK, &handler.UpdateFormRequest{}))
	forms.GET("", handler.Handle(h.Form.Handler, h.Form.ListForms, http.StatusOK, &handler.ListFormsRequest{}))
	forms.GET("/:id", handler.Handle(h.Form.Handler, h.Form.GetForm, http.StatusOK, &handler.FormIDRequest{}))
	forms.DELETE("/:id", handler.HandleNoContent(h.Form.Handler, h.Form.DeleteForm, http.StatusOK, &handler.FormIDRequest{}))
}
