// Package sqlerr translates database driver errors.
//
// It maps Postgres SQLSTATE codes to a small set of Codes, converts them to
// client facing errs.HTTPError values, and classifies failures by Kind so
// logs can tell a constraint violation from an unreachable database.
package sqlerr

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Code is the normalized category of a database error.
type Code string

const (
	Other               Code = "other"
	NotNullViolation    Code = "not_null_violation"
	ForeignKeyViolation Code = "foreign_key_violation"
	UniqueViolation     Code = "unique_violation"
	CheckViolation      Code = "check_violation"
	InvalidText         Code = "invalid_text_representation"
	ConnectionFailure   Code = "connection_failure"
	QueryCanceled       Code = "query_canceled"
	TooManyConnections  Code = "too_many_connections"
)

// Severity mirrors the Postgres severity levels.
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

// Error is a normalized Postgres error.
type Error struct {
	Code           Code
	Severity       Severity
	DatabaseCode   string
	Message        string
	SchemaName     string
	TableName      string
	ColumnName     string
	DataTypeName   string
	ConstraintName string
	driverErr      error
}

func (e *Error) Error() string {
	return string(e.Severity) + ": " + e.Message + " (SQLSTATE " + e.DatabaseCode + ")"
}

func (e *Error) Unwrap() error {
	return e.driverErr
}

// MapCode converts a SQLSTATE into a Code.
func MapCode(sqlState string) Code {
	switch sqlState {
	case "23502":
		return NotNullViolation
	case "23503":
		return ForeignKeyViolation
	case "23505":
		return UniqueViolation
	case "23514":
		return CheckViolation
	case "22P02":
		return InvalidText
	case "57014":
		return QueryCanceled
	case "53300":
		return TooManyConnections
	}

	// Class 08: connection exceptions.
	if strings.HasPrefix(sqlState, "08") {
		return ConnectionFailure
	}

	return Other
}

// MapSeverity converts a Postgres severity string.
func MapSeverity(severity string) Severity {
	switch s := Severity(strings.ToUpper(severity)); s {
	case SeverityError, SeverityFatal, SeverityPanic, SeverityWarning,
		SeverityNotice, SeverityDebug, SeverityInfo, SeverityLog:
		return s
	default:
		return SeverityError
	}
}

// Kind is the coarse failure class of a persistence error.
type Kind string

const (
	// KindConstraint means the data conflicted with the schema (duplicate,
	// missing reference, null, check). Retrying the same data will fail again.
	KindConstraint Kind = "constraint"

	// KindUnavailable means the database could not be reached or the call
	// ran out of time.
	KindUnavailable Kind = "unavailable"

	// KindUnknown is everything else.
	KindUnknown Kind = "unknown"
)

// Classify reports the Kind of err. Postgres errors are classified by their
// SQLSTATE, whether raw or already converted by ConvertPgError; other errors
// count as unavailable when they are timeouts, cancellations or failed
// connects.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	switch ErrCode(err) {
	case NotNullViolation, ForeignKeyViolation, UniqueViolation, CheckViolation, InvalidText:
		return KindConstraint
	case ConnectionFailure, QueryCanceled, TooManyConnections:
		return KindUnavailable
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || pgconn.Timeout(err) {
		return KindUnavailable
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return KindUnavailable
	}

	return KindUnknown
}
