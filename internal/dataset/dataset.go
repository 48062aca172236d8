// Package dataset reads numeric point matrices from delimited text.
//
// Each non-empty line holds one point. Values are separated by commas,
// semicolons, tabs or spaces, or by a single explicit delimiter. Lines
// starting with '#' are comments. Files ending in .gz or .zst are
// decompressed while reading.
package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrEmpty is returned when the input holds no data rows.
	ErrEmpty = errors.New("dataset: no data rows")
	// ErrMalformed is returned for lines that are not a row of numbers of the expected width.
	ErrMalformed = errors.New("dataset: malformed line")
)

// Options controls how lines are split.
type Options struct {
	// Delimiter separates values. Zero splits on any run of ',', ';', tab or space.
	Delimiter rune
	// Header skips the first data line.
	Header bool
}

// Load reads the file at path.
func Load(path string, opts Options) (*mat.Dense, error) {
	rc, err := open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	m, err := Read(rc, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return stacked{Reader: zr, closers: []io.Closer{zr, f}}, nil
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		rc := zr.IOReadCloser()
		return stacked{Reader: rc, closers: []io.Closer{rc, f}}, nil
	}
	return f, nil
}

// stacked closes a decompressor before the file underneath it.
type stacked struct {
	io.Reader
	closers []io.Closer
}

func (s stacked) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// Read parses r into a rows x cols matrix. The first data row fixes cols.
func Read(r io.Reader, opts Options) (*mat.Dense, error) {
	split := func(c rune) bool {
		return c == ',' || c == ';' || c == '\t' || c == ' '
	}
	if opts.Delimiter != 0 {
		split = func(c rune) bool { return c == opts.Delimiter }
	}

	var (
		values []float64
		rows   int
		cols   int
		header = opts.Header
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if header {
			header = false
			continue
		}

		fields := strings.FieldsFunc(text, split)
		if rows == 0 {
			cols = len(fields)
		}
		if len(fields) != cols {
			return nil, fmt.Errorf("%w: line %d has %d values, want %d", ErrMalformed, line, len(fields), cols)
		}
		for _, f := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %q is not a number", ErrMalformed, line, f)
			}
			values = append(values, v)
		}
		rows++
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if rows == 0 || cols == 0 {
		return nil, ErrEmpty
	}
	return mat.NewDense(rows, cols, values), nil
}
