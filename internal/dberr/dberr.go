// Package dberr translates storage driver errors into application errors.
//
// Both supported drivers report failures in their own shape: PostgreSQL
// through SQLSTATE codes on *pgconn.PgError, MongoDB through write and
// command errors. Both are normalized into an *Error with a driver-neutral
// Code, and HandleError turns that into the *errs.HTTPError the HTTP layer
// renders.
package dberr

import "fmt"

// Code is a driver-neutral error category.
type Code string

const (
	Other               Code = "other"
	UniqueViolation     Code = "unique_violation"
	ForeignKeyViolation Code = "foreign_key_violation"
	NotNullViolation    Code = "not_null_violation"
	CheckViolation      Code = "check_violation"
	Unavailable         Code = "unavailable"
	Timeout             Code = "timeout"
)

// Severity mirrors the PostgreSQL message severities. MongoDB errors are
// always SeverityError.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityFatal   Severity = "FATAL"
	SeverityPanic   Severity = "PANIC"
	SeverityWarning Severity = "WARNING"
	SeverityNotice  Severity = "NOTICE"
	SeverityDebug   Severity = "DEBUG"
	SeverityInfo    Severity = "INFO"
	SeverityLog     Severity = "LOG"
)

// Error is a normalized driver error.
type Error struct {
	Code           Code
	Severity       Severity
	DatabaseCode   string
	Message        string
	TableName      string
	ColumnName     string
	ConstraintName string

	driverErr error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.DatabaseCode)
}

func (e *Error) Unwrap() error {
	return e.driverErr
}

// MapCode maps a PostgreSQL SQLSTATE onto a Code.
//
// Class 08 (connection exception) and the operator-intervention shutdown
// codes count as Unavailable; 57014 (query_canceled) counts as Timeout.
func MapCode(sqlState string) Code {
	switch sqlState {
	case "23505":
		return UniqueViolation
	case "23503":
		return ForeignKeyViolation
	case "23502":
		return NotNullViolation
	case "23514":
		return CheckViolation
	case "57014":
		return Timeout
	case "57P01", "57P02", "57P03":
		return Unavailable
	}
	if len(sqlState) == 5 && sqlState[:2] == "08" {
		return Unavailable
	}
	return Other
}

// MapSeverity maps a PostgreSQL severity string onto a Severity.
func MapSeverity(severity string) Severity {
	switch Severity(severity) {
	case SeverityFatal, SeverityPanic, SeverityWarning, SeverityNotice,
		SeverityDebug, SeverityInfo, SeverityLog:
		return Severity(severity)
	default:
		return SeverityError
	}
}
