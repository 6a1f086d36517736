package schema

import (
	"context"
	"io/fs"
	"path"
	"sort"
	"strings"

	perr "floordwh/internal/platform/errors"
	"floordwh/internal/platform/logger"
	"floordwh/internal/platform/store"
)

const chReset = "reset.sql"

// ApplyCH runs the embedded clickhouse scripts in name order, one statement at a time
// every statement is idempotent so repeated runs converge
func ApplyCH(ctx context.Context, ch store.Clickhouse, reset bool) error {
	log := logger.C(ctx).With().Str("component", "schema").Logger()

	if reset {
		log.Warn().Msg("resetting schema, all warehouse data will be dropped")
		if err := execScript(ctx, ch, chReset); err != nil {
			return err
		}
	}

	names, err := CHScripts()
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := execScript(ctx, ch, name); err != nil {
			return err
		}
		log.Info().Str("script", name).Msg("schema script applied")
	}
	return nil
}

// CHScripts lists the forward scripts in apply order
func CHScripts() ([]string, error) {
	entries, err := fs.ReadDir(migrationsFS, chDir)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeIO, "list clickhouse scripts")
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || e.Name() == chReset || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out, nil
}

func execScript(ctx context.Context, ch store.Clickhouse, name string) error {
	body, err := fs.ReadFile(migrationsFS, path.Join(chDir, name))
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeIO, "read %s", name)
	}
	for i, stmt := range SplitStatements(string(body)) {
		if err := ch.Exec(ctx, stmt); err != nil {
			return perr.FromClickhousef(err, "%s statement %d", name, i+1)
		}
	}
	return nil
}

// SplitStatements cuts a script on ';' and drops empty and comment only chunks
// the scripts carry no ';' inside literals
func SplitStatements(script string) []string {
	var out []string
	for _, chunk := range strings.Split(script, ";") {
		if stmt := strings.TrimSpace(chunk); stmt != "" && !commentOnly(stmt) {
			out = append(out, stmt)
		}
	}
	return out
}

func commentOnly(stmt string) bool {
	for _, line := range strings.Split(stmt, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "--") {
			return false
		}
	}
	return true
}
