package store

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestWithLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := &Store{}
	if err := WithLogger(zerolog.New(&buf))(s); err != nil {
		t.Fatalf("WithLogger: %v", err)
	}
	s.Log.Info().Str("backend", "postgres").Msg("opened")
	if !strings.Contains(buf.String(), `"backend":"postgres"`) {
		t.Fatalf("store logger not wired, got %q", buf.String())
	}
}
