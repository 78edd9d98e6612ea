// Package output writes the report file atomically: rows go to a temp file in
// the destination directory, which replaces the destination only on Commit.
// A failed run leaves the previous report untouched.
package output

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultFileName is used when the configured path names a directory.
const DefaultFileName = "report.csv"

// Pending is a report being written. Exactly one of Commit or Abort must be
// called.
type Pending struct {
	final  string
	f      *os.File
	w      *csv.Writer
	rows   int
	sealed bool
	done   bool
}

// ResolvePath returns the file the report is written to: path itself, or
// path/report.csv when path is an existing directory or ends in a separator.
func ResolvePath(path string) string {
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(os.PathSeparator)) {
		return filepath.Join(path, DefaultFileName)
	}
	if st, err := os.Stat(path); err == nil && st.IsDir() {
		return filepath.Join(path, DefaultFileName)
	}
	return path
}

// Create starts a report at path, creating missing parent directories.
func Create(path string, comma rune) (*Pending, error) {
	final := ResolvePath(path)
	dir := filepath.Dir(final)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", dir, err)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(final)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	w := csv.NewWriter(f)
	if comma != 0 {
		w.Comma = comma
	}
	return &Pending{final: final, f: f, w: w}, nil
}

// Path returns the destination the report is committed to.
func (p *Pending) Path() string { return p.final }

// Rows returns the number of records written, header included.
func (p *Pending) Rows() int { return p.rows }

// Write appends one record.
func (p *Pending) Write(record []string) error {
	if p.done || p.sealed {
		return errors.New("output: write after seal, commit or abort")
	}
	if err := p.w.Write(record); err != nil {
		return fmt.Errorf("write %s: %w", p.f.Name(), err)
	}
	p.rows++
	return nil
}

// Seal flushes, syncs and closes the temp file and checks the destination can
// be replaced, leaving only the rename for Commit. No writes are accepted
// after Seal. It fails on any error Commit could otherwise hit before the
// rename; a failed Seal removes the temp file.
func (p *Pending) Seal() error {
	if p.done {
		return errors.New("output: already finished")
	}
	if p.sealed {
		return nil
	}
	p.sealed = true
	p.w.Flush()
	err := p.w.Error()
	if err == nil {
		err = p.f.Sync()
	}
	if cerr := p.f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(p.f.Name(), 0o644)
	}
	if err == nil {
		if st, serr := os.Stat(p.final); serr == nil && st.IsDir() {
			err = fmt.Errorf("%s is a directory", p.final)
		}
	}
	if err != nil {
		p.done = true
		_ = os.Remove(p.f.Name())
		return fmt.Errorf("seal %s: %w", p.final, err)
	}
	return nil
}

// Commit seals the temp file if needed and renames it over the destination.
func (p *Pending) Commit() error {
	if err := p.Seal(); err != nil {
		return err
	}
	p.done = true
	if err := os.Rename(p.f.Name(), p.final); err != nil {
		_ = os.Remove(p.f.Name())
		return fmt.Errorf("commit %s: %w", p.final, err)
	}
	return nil
}

// Abort discards the temp file. It is a no-op after Commit.
func (p *Pending) Abort() error {
	if p.done {
		return nil
	}
	p.done = true
	if !p.sealed {
		_ = p.f.Close()
	}
	if err := os.Remove(p.f.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", p.f.Name(), err)
	}
	return nil
}
