package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ppiankov/tvlabel/internal/model"
)

// RecordWriter writes labeled records as JSON Lines.
type RecordWriter struct {
	bw  *bufio.Writer
	enc *json.Encoder
}

// NewRecordWriter wraps w. Call Flush when done.
func NewRecordWriter(w io.Writer) *RecordWriter {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	return &RecordWriter{bw: bw, enc: enc}
}

// Write appends one record.
func (w *RecordWriter) Write(r model.Record) error {
	return w.enc.Encode(r)
}

// Flush flushes buffered records.
func (w *RecordWriter) Flush() error {
	return w.bw.Flush()
}

// WriteRecordsFile writes all records to path.
func WriteRecordsFile(path string, records []model.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := NewRecordWriter(f)
	for _, r := range records {
		if err := w.Write(r); err != nil {
			_ = f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// ReadRecords decodes JSON Lines records.
func ReadRecords(r io.Reader) ([]model.Record, error) {
	dec := json.NewDecoder(r)

	var out []model.Record
	for {
		var rec model.Record
		err := dec.Decode(&rec)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("record %d: %w", len(out)+1, err)
		}
		out = append(out, rec)
	}
}

// ReadRecordsFile decodes a JSON Lines file.
func ReadRecordsFile(path string) ([]model.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	records, err := ReadRecords(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}
