// Package middleware holds the echo middleware applied to every request:
// request ids, the request-scoped logger, New Relic tracing, CORS, secure
// headers, request logging, rate limiting, panic recovery and the global
// error handler that turns every failure into the errs.HTTPError shape.
package middleware
