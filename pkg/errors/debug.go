package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// constraintHints translates the schema's constraint names into something a
// log reader can act on without opening the migration.
var constraintHints = map[string]string{
	"users_email_key":                          "email already registered",
	"item_requests_quantity_check":             "request quantity must be positive",
	"inventory_items_quantity_available_check": "available quantity cannot go negative",
	"inventory_items_quantity_reserved_check":  "reserved quantity cannot go negative",
	"inventory_items_category_id_fkey":         "item references a missing category",
	"item_requests_category_id_fkey":           "request references a missing category",
	"item_requests_user_id_fkey":               "request references a missing user",
	"comments_request_id_fkey":                 "comment references a missing request",
	"notifications_user_id_fkey":               "notification references a missing user",
}

type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	PGCode       string `json:"pg_code,omitempty"`
	PGConstraint string `json:"pg_constraint,omitempty"`
	PGHint       string `json:"pg_hint,omitempty"`
	PGTable      string `json:"pg_table,omitempty"`
	PGColumn     string `json:"pg_column,omitempty"`
	PGDetail     string `json:"pg_detail,omitempty"`
	PGMessage    string `json:"pg_message,omitempty"`
}

// Dump flattens an error chain for structured logging. Postgres errors
// surfaced by the pgx driver get their SQLSTATE details pulled out, and
// constraints from our schema are annotated with a readable hint.
func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
	}

	if te := As(err); te != nil {
		d.Code = te.Code()
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		d.PGCode = pgErr.Code
		d.PGConstraint = pgErr.ConstraintName
		d.PGHint = constraintHints[pgErr.ConstraintName]
		d.PGTable = pgErr.TableName
		d.PGColumn = pgErr.ColumnName
		d.PGDetail = pgErr.Detail
		d.PGMessage = pgErr.Message
	}

	return d
}
