// Package fsx holds small filesystem helpers shared by the pipeline's file outputs
package fsx

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	perr "floordwh/internal/platform/errors"
)

// partSuffix marks an in-flight write next to its destination
const partSuffix = ".part"

// WriteAtomic streams write into path.part and renames it over path on success
// readers never observe a half written file; on any failure the previous file is left untouched
func WriteAtomic(path string, write func(w io.Writer) error) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return perr.Wrapf(err, perr.ErrorCodeIO, "create dir %s", dir)
		}
	}
	tmp := path + partSuffix
	f, err := os.Create(tmp)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeIO, "create %s", tmp)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	bw := bufio.NewWriter(f)
	if werr := write(bw); werr != nil {
		_ = f.Close()
		if _, coded := perr.As(werr); coded {
			return werr
		}
		return perr.Wrapf(werr, perr.ErrorCodeIO, "write %s", path)
	}
	if ferr := bw.Flush(); ferr != nil {
		_ = f.Close()
		return perr.Wrapf(ferr, perr.ErrorCodeIO, "flush %s", path)
	}
	if cerr := f.Close(); cerr != nil {
		return perr.Wrapf(cerr, perr.ErrorCodeIO, "close %s", tmp)
	}
	if rerr := os.Rename(tmp, path); rerr != nil {
		return perr.Wrapf(rerr, perr.ErrorCodeIO, "rename %s", tmp)
	}
	return nil
}
