package export

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestExportRejectsEmptySelectionBeforeQuerying(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	svc := NewService(db)
	if _, err := svc.Export(context.Background(), nil, FormatCSV); !errors.Is(err, ErrNoTables) {
		t.Fatalf("err = %v, want ErrNoTables", err)
	}

	// No query may have reached the database.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected database access: %v", err)
	}
}

func TestExportRejectsUnknownTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	svc := NewService(db)
	if _, err := svc.Export(context.Background(), []string{"clients", "pg_shadow"}, FormatJSON); !errors.Is(err, ErrUnknownTable) {
		t.Fatalf("err = %v, want ErrUnknownTable", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected database access: %v", err)
	}
}

func TestExportCSVQuotingAndSections(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT \* FROM clients`).WillReturnRows(
		sqlmock.NewRows([]string{"id", "company_name", "notes"}).
			AddRow("1", "Dupont, Fils & Cie", `dit "le grand"`).
			AddRow("2", "Atelier Nord", ""),
	)

	svc := NewService(db)
	res, err := svc.Export(context.Background(), []string{"clients"}, FormatCSV)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	out := string(res.Data)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if lines[0] != "=== clients ===" {
		t.Fatalf("section marker = %q", lines[0])
	}
	if lines[1] != "id,company_name,notes" {
		t.Fatalf("header = %q", lines[1])
	}
	// Comma forces quoting, embedded quotes are doubled.
	if lines[2] != `1,"Dupont, Fils & Cie","dit ""le grand"""` {
		t.Fatalf("row 1 = %q", lines[2])
	}
	if lines[3] != "2,Atelier Nord," {
		t.Fatalf("row 2 = %q", lines[3])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestExportCSVMultipleTables(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT \* FROM clients`).WillReturnRows(
		sqlmock.NewRows([]string{"id"}).AddRow("1"),
	)
	mock.ExpectQuery(`SELECT \* FROM personnel`).WillReturnRows(
		sqlmock.NewRows([]string{"id"}).AddRow("7"),
	)

	svc := NewService(db)
	res, err := svc.Export(context.Background(), []string{"clients", "personnel"}, FormatCSV)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	out := string(res.Data)
	ci := strings.Index(out, "=== clients ===")
	pi := strings.Index(out, "=== personnel ===")
	if ci < 0 || pi < 0 || pi < ci {
		t.Fatalf("sections missing or out of order:\n%s", out)
	}
}

func TestExportJSON(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT \* FROM trainings`).WillReturnRows(
		sqlmock.NewRows([]string{"id", "title"}).
			AddRow("t1", "Habilitation électrique").
			AddRow("t2", "SST recyclage"),
	)

	svc := NewService(db)
	res, err := svc.Export(context.Background(), []string{"trainings"}, FormatJSON)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	var doc map[string][]map[string]string
	if err := json.Unmarshal(res.Data, &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	rows := doc["trainings"]
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0]["title"] != "Habilitation électrique" || rows[1]["id"] != "t2" {
		t.Fatalf("row content wrong: %v", rows)
	}
}
