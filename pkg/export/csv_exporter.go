package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Dataset defines tabular export content. Rows are keyed by header.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

func (d Dataset) validate(kind string) error {
	if len(d.Headers) == 0 {
		return fmt.Errorf("%s requires at least one header", kind)
	}
	return nil
}

// record returns the row values in header order.
func (d Dataset) record(row map[string]string) []string {
	out := make([]string, len(d.Headers))
	for i, header := range d.Headers {
		out[i] = row[header]
	}
	return out
}

// CSVExporter renders datasets into CSV bytes.
type CSVExporter struct {
	comma rune
}

// NewCSVExporter builds a comma separated exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{comma: ','}
}

// Render produces CSV encoded bytes for the dataset.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if err := data.validate("csv"); err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	writer.Comma = e.comma
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range data.Rows {
		if err := writer.Write(data.record(row)); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
