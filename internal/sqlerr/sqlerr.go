// Package sqlerr normalizes low-level PostgreSQL driver errors into the
// store-layer envelopes the rest of the core understands.
//
// pgx surfaces failures as *pgconn.PgError (SQLSTATE + metadata), pgx.ErrNoRows,
// or plain network errors. Translate collapses those into errs envelopes
// tagged LayerStore while keeping the driver error as the cause.
package sqlerr

import "github.com/jackc/pgx/v5/pgconn"

// Code is the friendly enum for the SQLSTATE classes the core cares about.
type Code string

const (
	UniqueViolation     Code = "unique_violation"
	ForeignKeyViolation Code = "foreign_key_violation"
	NotNullViolation    Code = "not_null_violation"
	CheckViolation      Code = "check_violation"
	ConnectionFailure   Code = "connection_failure"
	Other               Code = "other"
)

// MapCode maps a raw SQLSTATE onto a Code.
//
// Class 23 covers integrity constraint violations, class 08 connection
// exceptions. Everything else is Other.
func MapCode(sqlstate string) Code {
	switch sqlstate {
	case "23505":
		return UniqueViolation
	case "23503":
		return ForeignKeyViolation
	case "23502":
		return NotNullViolation
	case "23514":
		return CheckViolation
	}
	if len(sqlstate) >= 2 && sqlstate[:2] == "08" {
		return ConnectionFailure
	}
	return Other
}

// Error is the structured form of a Postgres server error, retaining the
// metadata needed to build user-facing messages (table, column, constraint).
type Error struct {
	Code           Code
	DatabaseCode   string
	Message        string
	SchemaName     string
	TableName      string
	ColumnName     string
	ConstraintName string

	driverErr error
}

// Error implements the error interface with the DB's own message.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the original driver error.
func (e *Error) Unwrap() error {
	return e.driverErr
}

// Convert turns a raw pgconn.PgError into a structured sqlerr.Error.
func Convert(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}
