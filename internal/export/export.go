// Package export serializes full tables to a single JSON or CSV
// document for user-triggered data extraction.
package export

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

var (
	ErrNoTables     = errors.New("no tables selected")
	ErrUnknownTable = errors.New("unknown table")
)

// exportable is the fixed allow-list; table names are interpolated
// into SQL and must never come from the request unchecked.
var exportable = map[string]bool{
	"clients":          true,
	"personnel":        true,
	"contracts":        true,
	"contract_history": true,
	"invoices":         true,
	"invoice_lines":    true,
	"payrolls":         true,
	"trainings":        true,
	"events":           true,
	"profiles":         true,
	"audit_logs":       true,
}

// Tables returns the allow-listed table names, for the handler to
// advertise.
func Tables() []string {
	names := make([]string, 0, len(exportable))
	for name := range exportable {
		names = append(names, name)
	}
	return names
}

type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

type Result struct {
	ContentType string
	Filename    string
	Data        []byte
}

// Export reads each selected table in full and serializes the lot as
// one document. Selection is validated before the first query runs.
func (s *Service) Export(ctx context.Context, tables []string, format Format) (*Result, error) {
	if len(tables) == 0 {
		return nil, ErrNoTables
	}
	for _, t := range tables {
		if !exportable[t] {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTable, t)
		}
	}

	switch format {
	case FormatJSON:
		return s.exportJSON(ctx, tables)
	case FormatCSV:
		return s.exportCSV(ctx, tables)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

type table struct {
	columns []string
	rows    [][]string
}

func (s *Service) read(ctx context.Context, name string) (*table, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT * FROM `+name)
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", name, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", name, err)
	}

	t := &table{columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", name, err)
		}

		row := make([]string, len(columns))
		for i, v := range values {
			row[i] = renderValue(v)
		}
		t.rows = append(t.rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", name, err)
	}
	return t, nil
}

func renderValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func (s *Service) exportJSON(ctx context.Context, tables []string) (*Result, error) {
	doc := make(map[string][]map[string]string, len(tables))
	for _, name := range tables {
		t, err := s.read(ctx, name)
		if err != nil {
			return nil, err
		}

		objects := make([]map[string]string, 0, len(t.rows))
		for _, row := range t.rows {
			obj := make(map[string]string, len(t.columns))
			for i, col := range t.columns {
				obj[col] = row[i]
			}
			objects = append(objects, obj)
		}
		doc[name] = objects
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return &Result{
		ContentType: "application/json",
		Filename:    exportFilename("json"),
		Data:        data,
	}, nil
}

func (s *Service) exportCSV(ctx context.Context, tables []string) (*Result, error) {
	var buf bytes.Buffer
	for i, name := range tables {
		t, err := s.read(ctx, name)
		if err != nil {
			return nil, err
		}

		if i > 0 {
			buf.WriteByte('\n')
		}
		fmt.Fprintf(&buf, "=== %s ===\n", name)

		w := csv.NewWriter(&buf)
		if err := w.Write(t.columns); err != nil {
			return nil, fmt.Errorf("write header of %s: %w", name, err)
		}
		for _, row := range t.rows {
			if err := w.Write(row); err != nil {
				return nil, fmt.Errorf("write row of %s: %w", name, err)
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, fmt.Errorf("flush %s: %w", name, err)
		}
	}

	return &Result{
		ContentType: "text/csv; charset=utf-8",
		Filename:    exportFilename("csv"),
		Data:        buf.Bytes(),
	}, nil
}

func exportFilename(ext string) string {
	return fmt.Sprintf("export_%s.%s", time.Now().Format("2006-01-02"), ext)
}
