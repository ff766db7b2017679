// Package errs defines the error shapes the API returns to clients.
//
// Every failure that reaches the HTTP boundary is turned into an
// HTTPError so clients always receive the same JSON structure:
// a machine-friendly code, a human message, the status, optional
// field-level errors and, for entity precondition failures, the
// entity name and error key of the alert.
package errs
