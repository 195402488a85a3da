package consent

import (
	"context"
	"testing"

	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestStoreInsertAndCheck(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	store := newStoreWithExec(mock)

	mock.ExpectExec("INSERT INTO consent_records").
		WithArgs(pgxmock.AnyArg(), "pat-1", "privacy", true, "2024-01", "it", "Mozilla/5.0").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	id, err := store.Insert(context.Background(), "pat-1",
		Decision{ConsentType: TypePrivacy, Accepted: true},
		Meta{Version: "2024-01", Language: "it", UserAgent: "Mozilla/5.0"})
	if err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}
	if id == "" {
		t.Fatalf("expected generated record id")
	}

	mock.ExpectQuery("SELECT 1 FROM consent_records").
		WithArgs("pat-1", "privacy").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(1))
	ok, err := store.HasAccepted(context.Background(), "pat-1", TypePrivacy)
	if err != nil || !ok {
		t.Fatalf("expected accepted privacy row, got ok=%v err=%v", ok, err)
	}

	mock.ExpectQuery("SELECT 1 FROM consent_records").
		WithArgs("pat-2", "privacy").
		WillReturnError(pgx.ErrNoRows)
	ok, err = store.HasAccepted(context.Background(), "pat-2", TypePrivacy)
	if err != nil || ok {
		t.Fatalf("expected no accepted row, got ok=%v err=%v", ok, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
