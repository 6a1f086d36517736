package errors

import (
	stderrs "errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func pg(code, col, constraint string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           code,
		ColumnName:     col,
		ConstraintName: constraint,
	}
}

func TestDBErrorCodeMappings(t *testing.T) {
	cases := []struct {
		code string
		want ErrorCode
	}{
		{"23505", ErrorCodeDuplicateKey},    // unique violation
		{"23503", ErrorCodeInvalidArgument}, // fk violation
		{"23502", ErrorCodeValidation},      // not null
		{"23514", ErrorCodeValidation},      // check
		{"22001", ErrorCodeInvalidArgument}, // string truncation
		{"22P02", ErrorCodeInvalidArgument}, // invalid text representation
		{"42P01", ErrorCodeNotFound},        // undefined table / view
		{"42703", ErrorCodeNotFound},        // undefined column
		{"40001", ErrorCodeConflict},        // serialization failure
		{"40P01", ErrorCodeConflict},        // deadlock
		{"55P03", ErrorCodeConflict},        // lock not available
		{"25006", ErrorCodeUnavailable},     // read-only
		{"57P03", ErrorCodeUnavailable},     // cannot connect now
		{"08006", ErrorCodeUnavailable},     // connection failure class
		{"42501", ErrorCodeDB},              // insufficient privilege
		{"XXXXX", ErrorCodeDB},              // default branch
	}
	for _, c := range cases {
		got, ok := DBErrorCode(pg(c.code, "", ""))
		if !ok {
			t.Fatalf("expected ok for PgError code %s", c.code)
		}
		if got != c.want {
			t.Fatalf("DBErrorCode(%s) = %v, want %v", c.code, got, c.want)
		}
	}

	if _, ok := DBErrorCode(stderrs.New("nope")); ok {
		t.Fatalf("DBErrorCode should return ok=false for non-pg error")
	}
}

func TestFromPostgresVariants(t *testing.T) {
	if FromPostgres(nil, "x") != nil {
		t.Fatalf("FromPostgres(nil) should be nil")
	}
	if FromPostgresf(nil, "x %d", 1) != nil {
		t.Fatalf("FromPostgresf(nil) should be nil")
	}

	err := FromPostgres(fmt.Errorf("exec: %w", pg("42P01", "", "")), "read max event_time")
	if CodeOf(err) != ErrorCodeNotFound {
		t.Fatalf("FromPostgres map code = %v", CodeOf(err))
	}
	if !IsUndefinedTable(err) {
		t.Fatalf("IsUndefinedTable should see through wrapping")
	}
	errf := FromPostgresf(pg("23505", "", ""), "insert %s", "dim_production_line")
	if !IsDuplicateKey(errf) || CodeOf(errf) != ErrorCodeDuplicateKey {
		t.Fatalf("FromPostgresf code = %v", CodeOf(errf))
	}

	// foreign non-pg error defaults to DB
	if CodeOf(FromPostgres(stderrs.New("conn reset"), "x")) != ErrorCodeDB {
		t.Fatalf("foreign error should map to DB")
	}
	// already-coded errors keep their code
	if CodeOf(FromPostgres(InvalidArgf("bad"), "x")) != ErrorCodeInvalidArgument {
		t.Fatalf("coded error should pass through")
	}
}

func TestAttachFieldFromPg(t *testing.T) {
	withCol := AttachFieldFromPg(Wrap(pg("23502", "event_time", ""), ErrorCodeValidation, "oops"))
	e, ok := As(withCol)
	if !ok || e.Field() != "event_time" {
		t.Fatalf("AttachFieldFromPg column name failed: %+v", e)
	}

	fk := AttachFieldFromPg(Wrap(pg("23503", "", "fact_process_events_line_fkey"), ErrorCodeInvalidArgument, "fk"))
	if fe, _ := As(fk); fe.Field() != "" {
		t.Fatalf("fkey suffix should not become a field, got %q", fe.Field())
	}

	named := AttachFieldFromPg(Wrap(pg("23514", "", "fact_process_events_status"), ErrorCodeValidation, "chk"))
	if fe, _ := As(named); fe.Field() != "status" {
		t.Fatalf("constraint token field = %q, want status", fe.Field())
	}

	plain := stderrs.New("plain")
	if AttachFieldFromPg(plain) != plain {
		t.Fatalf("non-pg error should be returned unchanged")
	}
}
