package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	if !IsUniqueViolation(&pgconn.PgError{Code: "23505"}) {
		t.Fatalf("expected unique violation")
	}
	if !IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})) {
		t.Fatalf("expected wrapped unique violation")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatalf("foreign key violation is not unique violation")
	}
	if IsUniqueViolation(errors.New("boom")) {
		t.Fatalf("plain error is not unique violation")
	}
}

func TestIsNotFound(t *testing.T) {
	malformed := fmt.Errorf("load invitation: %w", &pgconn.PgError{Code: "22P02"})
	if !IsInvalidText(malformed) {
		t.Fatalf("expected invalid text representation")
	}
	if !IsNotFound(malformed) {
		t.Fatalf("malformed id should read as not found")
	}
	if !IsNotFound(fmt.Errorf("get: %w", pgx.ErrNoRows)) {
		t.Fatalf("expected wrapped ErrNoRows to be not found")
	}
	if IsNotFound(&pgconn.PgError{Code: "23505"}) || IsNotFound(errors.New("boom")) {
		t.Fatalf("other errors are not not-found")
	}
}
