// SPDX-License-Identifier: MIT
// Package: lvspline/datatable
//
// csv.go - CSV ingestion and export.
//
// Layout: one sample per record; the last field is the output, the others are
// the inputs. A first record that does not parse as numbers is a header.

package datatable

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadCSV parses samples from r into a new table built with opts.
//
// Errors:
//   - ErrParse: a non-header field is not a number, or a record has fewer than two fields.
//   - ErrEmptyTable: no data records.
//   - any error of Table.Add (dimension mismatch, NaN/Inf, duplicates).
func ReadCSV(r io.Reader, opts ...Option) (*Table, error) {
	t, err := New(0, opts...)
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var (
		record []string
		line   int
	)
	for {
		record, err = cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, tableErrorf("ReadCSV", fmt.Errorf("%v: %w", err, ErrParse))
		}
		line++
		if len(record) < 2 {
			return nil, tableErrorf("ReadCSV", fmt.Errorf("record %d: %d fields: %w", line, len(record), ErrParse))
		}
		vals, perr := parseRecord(record)
		if perr != nil {
			if line == 1 {
				continue // header
			}
			return nil, tableErrorf("ReadCSV", fmt.Errorf("record %d: %w", line, perr))
		}
		if err = t.Add(vals[:len(vals)-1], vals[len(vals)-1]); err != nil {
			return nil, tableErrorf("ReadCSV", fmt.Errorf("record %d: %w", line, err))
		}
	}
	if t.NumSamples() == 0 {
		return nil, tableErrorf("ReadCSV", ErrEmptyTable)
	}

	return t, nil
}

func parseRecord(record []string) ([]float64, error) {
	vals := make([]float64, len(record))
	for i, field := range record {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, fmt.Errorf("field %d %q: %w", i, field, ErrParse)
		}
		vals[i] = v
	}

	return vals, nil
}

// WriteCSV writes every sample of t as one record, inputs first, output last.
// A header x0,...,x{d-1},y is emitted when header is true.
func WriteCSV(w io.Writer, t *Table, header bool) error {
	cw := csv.NewWriter(w)
	d := t.NumVariables()
	if header {
		h := make([]string, 0, d+1)
		for k := 0; k < d; k++ {
			h = append(h, "x"+strconv.Itoa(k))
		}
		if err := cw.Write(append(h, "y")); err != nil {
			return tableErrorf("WriteCSV", err)
		}
	}
	record := make([]string, d+1)
	for _, s := range t.Samples() {
		for k, v := range s.X {
			record[k] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		record[d] = strconv.FormatFloat(s.Y, 'g', -1, 64)
		if err := cw.Write(record); err != nil {
			return tableErrorf("WriteCSV", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return tableErrorf("WriteCSV", err)
	}

	return nil
}
