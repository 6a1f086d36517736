package module

import (
	"context"
	"testing"

	"floordwh/internal/modkit"
	modreg "floordwh/internal/modkit/module"
	"floordwh/internal/platform/config"
	perr "floordwh/internal/platform/errors"
	"floordwh/internal/platform/store"
	"floordwh/internal/services/analytics/domain"
)

type nopCH struct{}

func (nopCH) Exec(context.Context, string, ...any) error                { return nil }
func (nopCH) Insert(context.Context, string, []string, [][]any) error   { return nil }
func (nopCH) Query(context.Context, string, ...any) (store.Rows, error) { return nil, nil }
func (nopCH) Close() error                                              { return nil }

func TestFromConfig(t *testing.T) {
	o := FromConfig(config.New())
	if o.LineID != "gr-np-47" || o.TopN != 1 || o.ReportPath != "analytics_report.txt" {
		t.Fatalf("unexpected defaults %+v", o)
	}

	t.Setenv("CORE_ANALYTICS_TOP_N", "0")
	err := FromConfig(config.New()).Validate()
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("top n 0 should fail validation, got %v", err)
	}
	if e, _ := perr.As(err); e.Field() != "CORE_ANALYTICS_TOP_N" {
		t.Fatalf("field = %q", e.Field())
	}
}

func TestNew(t *testing.T) {
	if _, err := New(modkit.Deps{Cfg: config.New()}); !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("missing postgres should be unavailable, got %v", err)
	}

	m, err := New(modkit.Deps{Cfg: config.New(), Backend: store.BackendClickhouse, CH: nopCH{}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if m.Name() != "analytics" {
		t.Fatalf("name = %q", m.Name())
	}
	if _, ok := modreg.PortsOf[domain.ReporterPort](m); !ok {
		t.Fatal("reporter port not exposed")
	}
}
