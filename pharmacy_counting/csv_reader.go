package main

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"

	"pharmacy/aggregate"
)

// ErrMissingColumn is returned when the input header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// CSVReader streams a header-bearing prescription CSV and emits one
// aggregate.Record per data row.
type CSVReader struct {
	file    *os.File
	csv     *csv.Reader
	rowNum  int64
	colIdx  map[string]int // lowercase trimmed header → column index
	headers []string
	minLen  int // row length needed to hold every required column
}

func NewCSVReader(filepath string) (*CSVReader, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath, err)
	}

	bufReader := bufio.NewReaderSize(file, 256*1024)

	// Skip UTF-8 BOM if present
	bom, err := bufReader.Peek(3)
	if err == nil && len(bom) >= 3 && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		bufReader.Discard(3)
	}

	reader := csv.NewReader(bufReader)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	r := &CSVReader{
		file:   file,
		csv:    reader,
		colIdx: make(map[string]int),
	}

	if err := r.readHeaders(); err != nil {
		file.Close()
		return nil, err
	}

	return r, nil
}

func (r *CSVReader) readHeaders() error {
	headerRow, err := r.csv.Read()
	if err != nil {
		return fmt.Errorf("read header row: %w", err)
	}
	r.rowNum++

	r.headers = make([]string, len(headerRow))
	for i, h := range headerRow {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		r.headers[i] = strings.ToLower(h)
		r.colIdx[r.headers[i]] = i
	}

	var missing []string
	for _, col := range aggregate.RequiredFields {
		idx, ok := r.colIdx[col]
		if !ok {
			missing = append(missing, col)
			continue
		}
		if idx+1 > r.minLen {
			r.minLen = idx + 1
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

// Next returns the record for the next non-empty CSV row, or nil, io.EOF
// when done. A row too short to carry every required column is an error.
func (r *CSVReader) Next() (aggregate.Record, error) {
	for {
		row, err := r.csv.Read()
		if err != nil {
			return nil, err
		}
		r.rowNum++

		// Skip empty rows
		if len(row) == 0 || (len(row) == 1 && row[0] == "") {
			continue
		}
		if len(row) < r.minLen {
			return nil, fmt.Errorf("row %d: %d fields, need at least %d", r.rowNum, len(row), r.minLen)
		}

		rec := make(aggregate.Record, len(row))
		for i, v := range row {
			if i < len(r.headers) {
				rec[r.headers[i]] = v
			}
		}
		return rec, nil
	}
}

// Format returns the input format label.
func (r *CSVReader) Format() string { return "csv" }

// RowNum returns the current CSV row number (1-based, header included).
func (r *CSVReader) RowNum() int64 {
	return r.rowNum
}

// Columns returns the normalized header names in file order.
func (r *CSVReader) Columns() []string {
	return r.headers
}

func (r *CSVReader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}
