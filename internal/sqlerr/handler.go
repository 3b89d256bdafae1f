package sqlerr

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/statloop/fplsync/internal/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Translate converts a low-level database error into a store-layer envelope.
//
// Mapping:
//   - pgconn.PgError constraint classes -> KindConstraint (with a
//     user-presentable message built from table/column metadata)
//   - pgconn.PgError connection class, net errors, context deadline -> KindConnection
//   - pgx.ErrNoRows / sql.ErrNoRows -> KindNotFound
//   - anything else -> KindQuery
//
// The incoming error is always retained as the envelope's cause. Callers lift
// the result further with errs.StoreToDomain; this function is the only place
// raw driver errors are inspected.
func Translate(entity string, err error) error {
	if err == nil {
		return nil
	}

	// Already an envelope: don't re-wrap, the taxonomy tags are in place.
	var envelope *errs.Error
	if errors.As(err, &envelope) {
		return err
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		sqlErr := Convert(pgerr)

		switch sqlErr.Code {
		case UniqueViolation, ForeignKeyViolation, NotNullViolation, CheckViolation:
			return errs.Wrap(errs.LayerStore, errs.KindConstraint, friendlyMessage(entity, sqlErr), sqlErr).
				WithDetail("entity", entity).
				WithDetail("constraint", sqlErr.ConstraintName).
				WithDetail("sqlstate", sqlErr.DatabaseCode)

		case ConnectionFailure:
			return errs.Wrap(errs.LayerStore, errs.KindConnection, "database connection failed", sqlErr).
				WithDetail("entity", entity)

		default:
			return errs.Wrap(errs.LayerStore, errs.KindQuery, sqlErr.Message, sqlErr).
				WithDetail("entity", entity).
				WithDetail("sqlstate", sqlErr.DatabaseCode)
		}
	}

	switch {
	case errors.Is(err, pgx.ErrNoRows), errors.Is(err, sql.ErrNoRows):
		return errs.Wrap(errs.LayerStore, errs.KindNotFound, fmt.Sprintf("%s not found", humanizeText(entity)), err).
			WithDetail("entity", entity)

	case isConnectionError(err):
		return errs.Wrap(errs.LayerStore, errs.KindConnection, "database unreachable", err).
			WithDetail("entity", entity)
	}

	return errs.Wrap(errs.LayerStore, errs.KindQuery, err.Error(), err).
		WithDetail("entity", entity)
}

// isConnectionError classifies transport-level failures that never reached
// the server as connection errors.
func isConnectionError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// friendlyMessage produces an end-user-facing message for constraint
// violations, phrased from table/column metadata rather than raw SQL text.
func friendlyMessage(entity string, sqlErr *Error) string {
	name := entityName(entity, sqlErr.ColumnName)

	switch sqlErr.Code {
	case ForeignKeyViolation:
		return fmt.Sprintf("The referenced %s does not exist", name)
	case UniqueViolation:
		return fmt.Sprintf("A %s with this identifier already exists", name)
	case NotNullViolation:
		field := humanizeText(sqlErr.ColumnName)
		if field == "" {
			field = "field"
		}
		return fmt.Sprintf("The %s is required", field)
	case CheckViolation:
		if field := humanizeText(sqlErr.ColumnName); field != "" {
			return fmt.Sprintf("The %s value does not meet required conditions", field)
		}
		return "One or more values do not meet required conditions"
	}
	return "An error occurred while processing the request"
}

// entityName infers a readable entity name, preferring foreign-key column
// names like "player_id" over the table name.
func entityName(entity, columnName string) string {
	if columnName != "" && strings.HasSuffix(strings.ToLower(columnName), "_id") {
		return humanizeText(strings.TrimSuffix(strings.ToLower(columnName), "_id"))
	}
	if entity != "" {
		singular := entity
		if strings.HasSuffix(singular, "s") && len(singular) > 1 {
			singular = singular[:len(singular)-1]
		}
		return humanizeText(singular)
	}
	return "record"
}

// humanizeText converts snake_case identifiers into Title Case,
// e.g. "now_cost" -> "Now Cost".
func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}
