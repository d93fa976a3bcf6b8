package errors

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestDumpFlattensChainAndCode(t *testing.T) {
	inner := New(CodeStateConflict, "already fulfilled")
	outer := fmt.Errorf("fulfill request: %w", inner)

	d := Dump(outer)
	if d.Code != CodeStateConflict {
		t.Fatalf("expected state conflict code, got %s", d.Code)
	}
	if len(d.Chain) != 2 {
		t.Fatalf("expected 2 chain entries, got %d: %v", len(d.Chain), d.Chain)
	}
	if d.TopMessage != outer.Error() {
		t.Fatalf("unexpected top message: %s", d.TopMessage)
	}
}

func TestDumpExtractsPostgresDetails(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23514",
		ConstraintName: "item_requests_quantity_check",
		TableName:      "item_requests",
		Message:        "new row violates check constraint",
	}
	d := Dump(fmt.Errorf("create request: %w", pgErr))

	if d.PGCode != "23514" {
		t.Fatalf("expected SQLSTATE 23514, got %q", d.PGCode)
	}
	if d.PGConstraint != "item_requests_quantity_check" {
		t.Fatalf("unexpected constraint: %q", d.PGConstraint)
	}
	if d.PGHint != "request quantity must be positive" {
		t.Fatalf("expected schema hint, got %q", d.PGHint)
	}
	if d.PGTable != "item_requests" {
		t.Fatalf("unexpected table: %q", d.PGTable)
	}
}

func TestDumpUnknownConstraintHasNoHint(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "some_future_constraint",
	}
	d := Dump(pgErr)
	if d.PGHint != "" {
		t.Fatalf("expected no hint for unknown constraint, got %q", d.PGHint)
	}
	if d.PGCode != "23505" {
		t.Fatalf("expected SQLSTATE preserved, got %q", d.PGCode)
	}
}

func TestDumpNilError(t *testing.T) {
	d := Dump(nil)
	if d.TopMessage != "" || len(d.Chain) != 0 {
		t.Fatalf("expected zero dump for nil error, got %+v", d)
	}
}
