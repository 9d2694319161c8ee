package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"pharmacy/aggregate"
)

// ParquetReader streams PrescriptionRow records from a Parquet file and
// emits them as aggregate.Records.
type ParquetReader struct {
	file   *os.File
	reader *parquet.GenericReader[PrescriptionRow]
	buf    []PrescriptionRow
	n, pos int
	rowNum int64
	done   bool
}

const parquetReadBatch = 8192

func NewParquetReader(path string) (*ParquetReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat parquet: %w", err)
	}

	pf, err := parquet.OpenFile(f, fi.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	var missing []string
	for _, col := range aggregate.RequiredFields {
		if _, ok := pf.Schema().Lookup(col); !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		f.Close()
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	return &ParquetReader{
		file:   f,
		reader: parquet.NewGenericReader[PrescriptionRow](f),
		buf:    make([]PrescriptionRow, parquetReadBatch),
	}, nil
}

// Next returns the record for the next Parquet row, or nil, io.EOF when done.
func (r *ParquetReader) Next() (aggregate.Record, error) {
	for r.pos >= r.n {
		if r.done {
			return nil, io.EOF
		}
		n, err := r.reader.Read(r.buf)
		r.n, r.pos = n, 0
		if err != nil {
			if err != io.EOF {
				return nil, fmt.Errorf("read parquet: %w", err)
			}
			r.done = true
		}
	}

	row := &r.buf[r.pos]
	r.pos++
	r.rowNum++

	cost := ""
	if row.DrugCost != nil {
		cost = *row.DrugCost
	}
	rec := aggregate.Record{
		aggregate.FieldID:       row.ID,
		aggregate.FieldDrugName: row.DrugName,
		aggregate.FieldDrugCost: cost,
	}
	if row.PrescriberLastName != nil {
		rec["prescriber_last_name"] = *row.PrescriberLastName
	}
	if row.PrescriberFirstName != nil {
		rec["prescriber_first_name"] = *row.PrescriberFirstName
	}
	return rec, nil
}

// Format returns the input format label.
func (r *ParquetReader) Format() string { return "parquet" }

// RowNum returns the number of rows returned so far.
func (r *ParquetReader) RowNum() int64 { return r.rowNum }

// NumRows returns the total row count recorded in the file footer.
func (r *ParquetReader) NumRows() int64 { return r.reader.NumRows() }

func (r *ParquetReader) Close() error {
	r.reader.Close()
	return r.file.Close()
}

// ReportParquetWriter writes ranked DrugCostRow records to a Parquet file.
type ReportParquetWriter struct {
	file   *os.File
	writer *parquet.GenericWriter[DrugCostRow]
	count  int
}

func NewReportParquetWriter(filename string) (*ReportParquetWriter, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create parquet file: %w", err)
	}

	writer := parquet.NewGenericWriter[DrugCostRow](file,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedDefault}),
		parquet.DataPageStatistics(true),
		parquet.CreatedBy("pharmacy_counting", "1.0", ""),
	)

	return &ReportParquetWriter{
		file:   file,
		writer: writer,
	}, nil
}

// Write appends ranked drugs; rank numbering continues across calls.
func (w *ReportParquetWriter) Write(drugs []aggregate.DrugCost) error {
	rows := make([]DrugCostRow, len(drugs))
	for i, d := range drugs {
		rows[i] = DrugCostRow{
			Rank:          int32(w.count + i + 1),
			DrugName:      sanitizeUTF8(d.DrugName),
			NumPrescriber: int64(d.NumPrescriber),
			TotalCost:     d.TotalCost.Float64(),
			TotalCostText: d.TotalCost.String(),
		}
	}
	n, err := w.writer.Write(rows)
	w.count += n
	if err != nil {
		return fmt.Errorf("write parquet rows: %w", err)
	}
	return nil
}

// Close flushes the final row group and closes the file.
func (w *ReportParquetWriter) Close() error {
	if err := w.writer.Close(); err != nil {
		w.file.Close()
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return w.file.Close()
}

// Count returns the total number of rows written.
func (w *ReportParquetWriter) Count() int {
	return w.count
}
