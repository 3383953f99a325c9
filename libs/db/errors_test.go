package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestErrorClassification(t *testing.T) {
	overlap := fmt.Errorf("insert booking: %w", &pgconn.PgError{Code: CodeExclusionViolation, ConstraintName: "bookings_no_overlap"})
	if !IsExclusionViolation(overlap) {
		t.Fatal("expected wrapped 23P01 to be an exclusion violation")
	}
	if IsUniqueViolation(overlap) {
		t.Fatal("exclusion violation must not look like a unique violation")
	}
	if !IsUniqueViolation(&pgconn.PgError{Code: CodeUniqueViolation}) {
		t.Fatal("expected unique violation")
	}
	if !IsForeignKeyViolation(&pgconn.PgError{Code: CodeForeignKeyViolation}) {
		t.Fatal("expected foreign key violation")
	}
	if !IsCheckViolation(&pgconn.PgError{Code: CodeCheckViolation}) {
		t.Fatal("expected check violation")
	}
	if !IsNoRows(fmt.Errorf("get: %w", pgx.ErrNoRows)) {
		t.Fatal("expected wrapped ErrNoRows to match")
	}
	if IsExclusionViolation(errors.New("boom")) || IsNoRows(nil) {
		t.Fatal("plain errors must not classify")
	}
}
