package rates

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// stubDB records statements instead of hitting Postgres
type stubDB struct {
	execSQL  []string
	execArgs [][]any
	row      stubRow
}

type stubRow struct {
	value string
	err   error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*string) = r.value
	return nil
}

func (s *stubDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	s.execSQL = append(s.execSQL, sql)
	s.execArgs = append(s.execArgs, args)
	return pgconn.CommandTag{}, nil
}

func (s *stubDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}

func (s *stubDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return s.row
}

func TestSettingsRepositorySet(t *testing.T) {
	db := &stubDB{}
	repo := NewSettingsRepository(db)

	if err := repo.Set(context.Background(), "dollar_price", "5000"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(db.execSQL) != 1 {
		t.Fatalf("exec count = %d, want 1", len(db.execSQL))
	}
	if !strings.Contains(db.execSQL[0], "ON CONFLICT") {
		t.Errorf("set should upsert: %q", db.execSQL[0])
	}
	if db.execArgs[0][0] != "dollar_price" || db.execArgs[0][1] != "5000" {
		t.Errorf("unexpected args: %v", db.execArgs[0])
	}
}

func TestSettingsRepositoryGet(t *testing.T) {
	repo := NewSettingsRepository(&stubDB{row: stubRow{value: "750"}})

	value, err := repo.Get(context.Background(), "yuan_price")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "750" {
		t.Errorf("value = %q, want 750", value)
	}
}

func TestSettingsRepositoryGetMiss(t *testing.T) {
	repo := NewSettingsRepository(&stubDB{row: stubRow{err: pgx.ErrNoRows}})

	if _, err := repo.Get(context.Background(), "missing"); err != pgx.ErrNoRows {
		t.Errorf("err = %v, want pgx.ErrNoRows", err)
	}
}
