package normalize

import (
	"testing"
)

func TestField_Table(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "START", "START"},
		{"trim", "  STOP \t", "STOP"},
		{"case kept", "start", "start"},
		{"interior whitespace", "gr-np   47", "gr-np 47"},
		{"newline collapses", "L1\r\n", "L1"},
		{"fullwidth", "\uff33\uff34\uff21\uff32\uff34", "START"},
		{"nfkc ligature", "\ufb01ller", "filler"},
		{"zero width joiner", "S\u200dTOP", "STOP"},
		{"bom", "\ufeffproduction_line_id", "production_line_id"},
		{"nul and del", "O\x00N\x7f", "ON"},
		{"c1 control", "ON\u0085", "ON"},
		{"invalid utf8", "L\xff1", "L1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Field(tt.in); got != tt.want {
				t.Fatalf("Field(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestField_Idempotent(t *testing.T) {
	for _, s := range []string{"  \uff33\uff34\uff2f\uff30 ", "gr-np-47", "a\u200db  c"} {
		once := Field(s)
		if twice := Field(once); twice != once {
			t.Fatalf("not idempotent: %q -> %q -> %q", s, once, twice)
		}
	}
}

func TestSanitize(t *testing.T) {
	clean := "gr-np-47\tSTART\n"
	if got := Sanitize(clean); got != clean {
		t.Fatalf("clean input changed: %q", got)
	}
	if got := Sanitize("a\x00b\x1bc\x7fd\u0090e\xfef"); got != "abcdef" {
		t.Fatalf("Sanitize = %q", got)
	}
}
