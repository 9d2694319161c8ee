package main

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"pharmacy/aggregate"
)

// reportWriter is the common interface for CSV and Parquet report sinks.
type reportWriter interface {
	Write(drugs []aggregate.DrugCost) error
	Count() int
	Close() error
}

// ReportCSVWriter writes the ranked report as drug_name,num_prescriber,total_cost.
type ReportCSVWriter struct {
	file  *os.File
	buf   *bufio.Writer
	csv   *csv.Writer
	count int
}

func NewReportCSVWriter(filename string) (*ReportCSVWriter, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", filename, err)
	}
	buf := bufio.NewWriterSize(file, 256*1024)
	w := &ReportCSVWriter{file: file, buf: buf, csv: csv.NewWriter(buf)}
	if err := w.csv.Write(reportHeader); err != nil {
		file.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	return w, nil
}

func (w *ReportCSVWriter) Write(drugs []aggregate.DrugCost) error {
	for _, d := range drugs {
		if err := w.csv.Write([]string{
			d.DrugName,
			strconv.Itoa(d.NumPrescriber),
			d.TotalCost.String(),
		}); err != nil {
			return fmt.Errorf("write row %d: %w", w.count+1, err)
		}
		w.count++
	}
	return nil
}

func (w *ReportCSVWriter) Count() int { return w.count }

// Close flushes buffered rows and closes the file.
func (w *ReportCSVWriter) Close() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.file.Close()
		return fmt.Errorf("flush csv: %w", err)
	}
	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return fmt.Errorf("flush csv: %w", err)
	}
	return w.file.Close()
}

func isParquet(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".parquet")
}

// newReportWriter creates the sink for outputPath's format, writing to dst.
func newReportWriter(outputPath, dst string) (reportWriter, error) {
	if isParquet(outputPath) {
		return NewReportParquetWriter(dst)
	}
	return NewReportCSVWriter(dst)
}

// writeReport writes drugs to outputPath, choosing the format by extension.
// Rows go to a temp file next to outputPath that is renamed into place only
// after every row is flushed; on failure the temp file is removed and
// outputPath is left untouched.
func writeReport(outputPath string, drugs []aggregate.DrugCost) (int, error) {
	tmp := outputPath + ".tmp"

	w, err := newReportWriter(outputPath, tmp)
	if err != nil {
		return 0, err
	}

	if err := w.Write(drugs); err != nil {
		w.Close()
		os.Remove(tmp)
		return 0, err
	}
	if err := w.Close(); err != nil {
		os.Remove(tmp)
		return 0, err
	}
	if err := os.Rename(tmp, outputPath); err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("rename %s: %w", tmp, err)
	}
	return w.Count(), nil
}

// sanitizeUTF8 replaces invalid UTF-8 bytes with spaces.
func sanitizeUTF8(s string) string {
	return strings.ToValidUTF8(s, " ")
}
