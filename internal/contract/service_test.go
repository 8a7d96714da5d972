package contract

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/redis/go-redis/v9"

	"github.com/Messano/brain-hr-hub/internal/cache"
	"github.com/Messano/brain-hr-hub/internal/models"
)

func sampleContract() *models.Contract {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return &models.Contract{
		ID:          uuid.New(),
		ClientID:    uuid.New(),
		PersonnelID: uuid.New(),
		Type:        "interim",
		Position:    "cariste",
		StartDate:   time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		HourlyRate:  26.5,
		Status:      models.ContractActive,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func contractRows(cs ...*models.Contract) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{
		"id", "client_id", "personnel_id", "type", "position", "start_date",
		"end_date", "hourly_rate", "status", "version", "created_at", "updated_at",
	})
	for _, c := range cs {
		rows.AddRow(c.ID, c.ClientID, c.PersonnelID, c.Type, c.Position, c.StartDate,
			c.EndDate, c.HourlyRate, c.Status, c.Version, c.CreatedAt, c.UpdatedAt)
	}
	return rows
}

func TestHistoryNewestFirst(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	contractID := uuid.New()
	base := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{
		"id", "contract_id", "version", "change_type", "changes", "snapshot",
		"actor_id", "actor_email", "created_at",
	}).
		AddRow(uuid.New(), contractID, 3, models.ChangeStatus,
			[]byte(`{"status":{"old":"actif","new":"suspendu"}}`), json.RawMessage(`{}`),
			(*uuid.UUID)(nil), "", base.Add(2*time.Hour)).
		AddRow(uuid.New(), contractID, 2, models.ChangeModification,
			[]byte(`{"hourly_rate":{"old":25.5,"new":27}}`), json.RawMessage(`{}`),
			(*uuid.UUID)(nil), "", base.Add(time.Hour)).
		AddRow(uuid.New(), contractID, 1, models.ChangeCreation,
			[]byte(nil), json.RawMessage(`{}`),
			(*uuid.UUID)(nil), "", base)

	mock.ExpectQuery(`(?s)FROM contract_history WHERE contract_id = \$1.*ORDER BY created_at DESC`).
		WithArgs(contractID).
		WillReturnRows(rows)

	svc := &Service{db: mock}
	entries, err := svc.History(context.Background(), contractID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}

	for i := 1; i < len(entries); i++ {
		if !entries[i-1].CreatedAt.After(entries[i].CreatedAt) {
			t.Errorf("entry %d is not newer than entry %d", i-1, i)
		}
		if entries[i-1].Version <= entries[i].Version {
			t.Errorf("versions must decrease newest first, got %d then %d",
				entries[i-1].Version, entries[i].Version)
		}
	}

	oldest := entries[len(entries)-1]
	if oldest.ChangeType != models.ChangeCreation || oldest.Version != 1 || oldest.Changes != nil {
		t.Errorf("creation entry malformed: %+v", oldest)
	}
	if c := entries[0].Changes["status"]; c.New != "suspendu" {
		t.Errorf("decoded diff: %+v", entries[0].Changes)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpdateBumpsVersionAndAppendsHistory(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	prev := sampleContract()
	prev.Version = 2
	next := *prev
	next.Status = models.ContractSuspended
	next.Version = 3

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM contracts WHERE id = \$1 FOR UPDATE`).
		WithArgs(prev.ID).
		WillReturnRows(contractRows(prev))
	mock.ExpectQuery(`(?s)UPDATE contracts.*RETURNING`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), models.ContractSuspended, 3, prev.ID).
		WillReturnRows(contractRows(&next))
	mock.ExpectExec(`INSERT INTO contract_history`).
		WithArgs(prev.ID, 3, models.ChangeStatus, pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	svc := &Service{db: mock}
	status := models.ContractSuspended
	curr, err := svc.Update(context.Background(), prev.ID, UpdateRequest{Status: &status})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if curr.Version != 3 {
		t.Errorf("version = %d, want 3", curr.Version)
	}
	if curr.Status != models.ContractSuspended {
		t.Errorf("status = %q", curr.Status)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpdateNoopPatchLeavesVersionAlone(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	prev := sampleContract()
	prev.Version = 4

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM contracts WHERE id = \$1 FOR UPDATE`).
		WithArgs(prev.ID).
		WillReturnRows(contractRows(prev))

	svc := &Service{db: mock}
	same := prev.Status
	curr, err := svc.Update(context.Background(), prev.ID, UpdateRequest{Status: &same})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if curr.Version != 4 {
		t.Errorf("no-op patch must not bump the version, got %d", curr.Version)
	}
}

func TestListUnfilteredIsServedFromCache(t *testing.T) {
	mr := miniredis.RunT(t)
	c := cache.NewCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	svc := &Service{db: mock, cache: c}
	ctx := context.Background()
	want := sampleContract()

	mock.ExpectQuery(`FROM contracts WHERE 1=1 ORDER BY created_at DESC`).
		WillReturnRows(contractRows(want))

	first, err := svc.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("first List: %v", err)
	}
	if len(first) != 1 || first[0].ID != want.ID {
		t.Fatalf("first List = %+v", first)
	}

	// No second query expectation: a database read here fails the test.
	second, err := svc.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("cached List: %v", err)
	}
	if len(second) != 1 || second[0].ID != want.ID {
		t.Fatalf("cached List = %+v", second)
	}

	// After an invalidation the next read goes back to the database.
	c.InvalidateCollection(ctx, collection)
	mock.ExpectQuery(`FROM contracts WHERE 1=1 ORDER BY created_at DESC`).
		WillReturnRows(contractRows(want))
	if _, err := svc.List(ctx, Filter{}); err != nil {
		t.Fatalf("List after invalidation: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestListFilteredBypassesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	c := cache.NewCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	svc := &Service{db: mock, cache: c}
	want := sampleContract()

	mock.ExpectQuery(`FROM contracts WHERE 1=1 AND status = \$1`).
		WithArgs(models.ContractActive).
		WillReturnRows(contractRows(want))

	if _, err := svc.List(context.Background(), Filter{Status: models.ContractActive}); err != nil {
		t.Fatalf("filtered List: %v", err)
	}
	if mr.Exists(cache.CollectionKey(collection)) {
		t.Fatal("a filtered read must not populate the collection cache")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
