package errors

import (
	stderrs "errors"
	"fmt"
	"testing"
)

func TestExitCodeMapping(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{ErrorCodeInvalidArgument, 2},
		{ErrorCodeValidation, 2},
		{ErrorCodeNotFound, 3},
		{ErrorCodeIO, 3},
		{ErrorCodeDB, 4},
		{ErrorCodeDuplicateKey, 4},
		{ErrorCodeConflict, 4},
		{ErrorCodeUnavailable, 5},
		{ErrorCodeUnknown, 1},
		{9999, 1}, // default branch
	}
	for _, c := range cases {
		if got := ExitCodeFor(c.code); got != c.want {
			t.Fatalf("ExitCodeFor(%v) = %d, want %d", c.code, got, c.want)
		}
	}

	if ExitCode(nil) != 0 {
		t.Fatalf("ExitCode(nil) should be 0")
	}
	if got := ExitCode(stderrs.New("plain")); got != 1 {
		t.Fatalf("ExitCode(foreign) = %d, want 1", got)
	}
	if got := ExitCode(fmt.Errorf("ctx: %w", DBf("boom"))); got != 4 {
		t.Fatalf("ExitCode(wrapped db) = %d, want 4", got)
	}
}

func TestErrorCodeString(t *testing.T) {
	if ErrorCodeDB.String() != "db" || ErrorCodeIO.String() != "io" || ErrorCode(77).String() != "unknown" {
		t.Fatalf("unexpected code names")
	}
}

func TestErrorTypeAndMethods(t *testing.T) {
	// nil *Error should render "<nil>"
	var e *Error
	if e.Error() != "<nil>" {
		t.Fatalf("nil *Error render = %q, want <nil>", e.Error())
	}

	e1 := New(ErrorCodeValidation, "bad stuff")
	if CodeOf(e1) != ErrorCodeValidation {
		t.Fatalf("CodeOf(New) = %v", CodeOf(e1))
	}
	e2 := Newf(ErrorCodeInvalidArgument, "missing column %q", "status")
	if got := e2.Error(); got != `missing column "status"` {
		t.Fatalf("Newf().Error = %q", got)
	}

	src := stderrs.New("root")
	e3 := Wrap(src, ErrorCodeDB, "db failed")
	if u := stderrs.Unwrap(e3); u == nil || u.Error() != "root" {
		t.Fatalf("Wrap did not keep orig")
	}
	e4 := Wrapf(src, ErrorCodeIO, "write %s", "report.txt")
	if want := "write report.txt: root"; e4.Error() != want {
		t.Fatalf("Wrapf().Error = %q, want %q", e4.Error(), want)
	}
	if got, ok := As(e4); !ok || got.Message() != "write report.txt" {
		t.Fatalf("Message() should omit the cause")
	}
	if _, ok := As(src); ok {
		t.Fatalf("As() true for foreign error")
	}

	e5 := Wrap(src, ErrorCodeInvalidArgument, "oops")
	e6 := WithField(e5, "timestamp")
	e7 := WithOp(e6, "normalize")
	if fe, ok := As(e6); !ok || fe.Field() != "timestamp" {
		t.Fatalf("WithField failed")
	}
	if oe, ok := As(e7); !ok || oe.Op() != "normalize" {
		t.Fatalf("WithOp failed")
	}
	if fe0, _ := As(e5); fe0.Field() != "" || fe0.Op() != "" {
		t.Fatalf("copy-on-write mutated original")
	}
	if WithField(src, "x") != src || WithOp(src, "x") != src {
		t.Fatalf("mutators should pass foreign errors through")
	}

	if !IsCode(NotFoundf("x"), ErrorCodeNotFound) ||
		!IsCode(InvalidArgf("x"), ErrorCodeInvalidArgument) ||
		!IsCode(Validationf("x"), ErrorCodeValidation) ||
		!IsCode(DBf("x"), ErrorCodeDB) ||
		!IsCode(Unavailablef("x"), ErrorCodeUnavailable) ||
		!IsCode(IOf("x"), ErrorCodeIO) {
		t.Fatalf("sugar helpers code mismatch")
	}

	if WrapIf(nil, ErrorCodeDB, "ignored") != nil {
		t.Fatalf("WrapIf(nil) should return nil")
	}
	if WrapIf(src, ErrorCodeDB, "db") == nil {
		t.Fatalf("WrapIf(non-nil) should wrap")
	}

	deep := fmt.Errorf("level2: %w", fmt.Errorf("level1: %w", src))
	if got := Root(deep); got == nil || got.Error() != "root" {
		t.Fatalf("Root() failed, got %v", got)
	}
	if !Is(deep, src) {
		t.Fatalf("Is() should see through wrapping")
	}

	if !IsCode(ErrNotFound, ErrorCodeNotFound) {
		t.Fatalf("ErrNotFound code mismatch")
	}
}
