// Package csvdata reads the engagement dataset CSV into SourceRows, one per
// line, in file order. The first line is the header; later cells map to
// headers positionally. Ragged lines are tolerated: missing trailing cells
// leave their fields absent, extra cells are dropped.
package csvdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/engagemark/engagemark/pkg/types"
)

// Reader streams SourceRows from a CSV stream. Not safe for concurrent use.
type Reader struct {
	csv     *csv.Reader
	headers []string
	closer  io.Closer
}

// NewReader wraps an open CSV stream and reads its header line.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	headers, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("csvdata: empty input, no header line")
		}
		return nil, fmt.Errorf("csvdata: failed to read header: %w", err)
	}

	return &Reader{csv: cr, headers: headers}, nil
}

// Open opens the CSV file at path.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csvdata: failed to open %s: %w", path, err)
	}

	r, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// Headers returns the header line as read from the input.
func (r *Reader) Headers() []string {
	return r.headers
}

// Next returns the next row, or io.EOF after the last one.
func (r *Reader) Next() (types.SourceRow, error) {
	cells, err := r.csv.Read()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("csvdata: read failed: %w", err)
	}

	row := make(types.SourceRow, len(r.headers))
	for i, header := range r.headers {
		if i < len(cells) {
			row[header] = cells[i]
		}
	}
	return row, nil
}

// Close closes the underlying file when the reader owns one.
func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
