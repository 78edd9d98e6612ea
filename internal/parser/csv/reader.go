// Package csv loads header-described delimited text into a table.Table.
//
// Input bytes are decoded to UTF-8 first (any encoding known to the WHATWG
// index, a leading BOM overrides the configured encoding), header names are
// trimmed and NFC-normalized, and rows whose width differs from the header are
// soft-skipped: they are reported through onErr and reading continues. Strict
// tables fail on the first malformed row instead.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"payroll/internal/config"
	"payroll/internal/table"
)

// Options configures ReadTable. The zero value reads comma-separated UTF-8.
type Options struct {
	// Comma is the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing white space from each value.
	TrimSpace bool

	// LazyQuotes lets a quote appear in an unquoted field and a non-doubled
	// quote appear in a quoted field.
	LazyQuotes bool

	// HeaderMap renames source header names before column resolution, e.g.
	// localized headers to the configured column names.
	HeaderMap map[string]string

	// Encoding is a WHATWG encoding label ("windows-1250", "latin1", ...).
	// Empty means UTF-8.
	Encoding string

	// Strict makes a malformed row a *RowError instead of a skipped row.
	Strict bool
}

// OptionsFrom maps parser.options from the config file onto Options.
func OptionsFrom(o config.Options) Options {
	return Options{
		Comma:      o.Rune("comma", ','),
		TrimSpace:  o.Bool("trim_space", true),
		LazyQuotes: o.Bool("lazy_quotes", false),
		HeaderMap:  o.StringMap("header_map"),
		Encoding:   o.String("encoding", ""),
	}
}

// ErrFieldCount is reported through onErr for rows whose width differs from
// the header.
var ErrFieldCount = errors.New("incorrect number of fields")

// RowError is a malformed row in a strict table.
type RowError struct {
	Table string
	Line  int
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s line %d: %v", e.Table, e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// ctxCheckEvery bounds how many rows are read between context checks.
const ctxCheckEvery = 4096

// ReadTable reads a header row and all data rows from r.
//
// Behavior:
//   - A missing header (empty input) is an error.
//   - Blank lines are skipped.
//   - Malformed rows (quote errors, wrong width) are reported via
//     onErr(line, err) and skipped; onErr may be nil. With opt.Strict the
//     first malformed row returns a *RowError and no table.
//   - A canceled context aborts the read.
func ReadTable(ctx context.Context, name string, r io.Reader, opt Options, onErr func(line int, err error)) (*table.Table, error) {
	dec, err := decoder(opt.Encoding)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(dec)))
	if opt.Comma != 0 {
		cr.Comma = opt.Comma
	}
	cr.LazyQuotes = opt.LazyQuotes
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: read header: empty input", name)
		}
		return nil, fmt.Errorf("%s: read header: %w", name, err)
	}

	t := &table.Table{Name: name, Columns: normalizeHeader(header, opt.HeaderMap)}
	malformed := func(line int, err error) error {
		if opt.Strict {
			return &RowError{Table: name, Line: line, Err: err}
		}
		if onErr != nil {
			onErr(line, err)
		}
		return nil
	}

	for n := 0; ; n++ {
		if n%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				if err := malformed(pe.StartLine, pe.Err); err != nil {
					return nil, err
				}
				continue
			}
			return nil, fmt.Errorf("%s: read: %w", name, err)
		}
		line, _ := cr.FieldPos(0)
		if len(rec) != len(t.Columns) {
			if err := malformed(line, fmt.Errorf("%w (expected %d, got %d)", ErrFieldCount, len(t.Columns), len(rec))); err != nil {
				return nil, err
			}
			continue
		}
		if opt.TrimSpace {
			for i := range rec {
				rec[i] = strings.TrimSpace(rec[i])
			}
		}
		t.Rows = append(t.Rows, table.Row{Line: line, V: rec})
	}
	return t, nil
}

func decoder(label string) (transform.Transformer, error) {
	if label == "" {
		return unicode.UTF8.NewDecoder(), nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", label, err)
	}
	return enc.NewDecoder(), nil
}

// normalizeHeader trims and NFC-normalizes header cells, then applies
// headerMap. Map keys are normalized the same way before matching.
func normalizeHeader(h []string, headerMap map[string]string) []string {
	rename := make(map[string]string, len(headerMap))
	for k, v := range headerMap {
		rename[norm.NFC.String(strings.TrimSpace(k))] = v
	}
	out := make([]string, len(h))
	for i, c := range h {
		c = norm.NFC.String(strings.TrimSpace(c))
		if m, ok := rename[c]; ok {
			c = m
		}
		out[i] = c
	}
	return out
}
