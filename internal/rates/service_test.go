package rates

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/digitalogic/catalog/internal/audit"
	"github.com/digitalogic/catalog/pkg/rest"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// mockSettings implements SettingsRepository over a map
type mockSettings struct {
	mu     sync.Mutex
	values map[string]string
	sets   []string
}

func newMockSettings(values map[string]string) *mockSettings {
	if values == nil {
		values = map[string]string{}
	}
	return &mockSettings{values: values}
}

func (m *mockSettings) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.values[key]
	if !ok {
		return "", pgx.ErrNoRows
	}
	return value, nil
}

func (m *mockSettings) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	m.sets = append(m.sets, key)
	return nil
}

type nopAudit struct{}

func (nopAudit) Log(ctx context.Context, action, objectType string, objectID int64, oldValue, newValue any) int64 {
	return 0
}
func (nopAudit) List(ctx context.Context, filter audit.Filter) (*audit.ListOutput, *rest.ApiErr) {
	return &audit.ListOutput{}, nil
}
func (nopAudit) Prune(ctx context.Context, retentionDays int) (int64, error) { return 0, nil }

func newTestService(repo SettingsRepository) Service {
	return NewService(repo, nil, nopAudit{}, zap.NewNop())
}

func TestRateDefaultsToZero(t *testing.T) {
	svc := newTestService(newMockSettings(nil))

	if got := svc.Rate(context.Background(), CurrencyUSD); got != 0 {
		t.Errorf("Rate(usd) = %v, want 0", got)
	}
	if got := svc.Rate(context.Background(), "eur"); got != 0 {
		t.Errorf("Rate(eur) = %v, want 0", got)
	}
}

func TestRateReadsCanonicalKey(t *testing.T) {
	repo := newMockSettings(map[string]string{"dollar_price": "5500.5"})
	svc := newTestService(repo)

	if got := svc.Rate(context.Background(), CurrencyUSD); got != 5500.5 {
		t.Errorf("Rate(usd) = %v, want 5500.5", got)
	}
}

func TestRateMigratesLegacyAlias(t *testing.T) {
	repo := newMockSettings(map[string]string{"options_yuan_price": "750"})
	svc := newTestService(repo)

	if got := svc.Rate(context.Background(), CurrencyCNY); got != 750 {
		t.Errorf("Rate(cny) = %v, want 750", got)
	}

	// The value must now live under the canonical key.
	if repo.values["yuan_price"] != "750" {
		t.Errorf("legacy value was not migrated: %v", repo.values)
	}

	// A second read hits the canonical key directly; no new migration write.
	writesAfterMigration := len(repo.sets)
	if got := svc.Rate(context.Background(), CurrencyCNY); got != 750 {
		t.Errorf("Rate(cny) after migration = %v, want 750", got)
	}
	if len(repo.sets) != writesAfterMigration {
		t.Errorf("migration ran again: %v", repo.sets)
	}
}

func TestSetWritesCanonicalAndAlias(t *testing.T) {
	repo := newMockSettings(nil)
	svc := newTestService(repo)

	usd := 5000.0
	out, apiErr := svc.Set(context.Background(), UpdateInput{DollarPrice: &usd})
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}

	if repo.values["dollar_price"] != "5000" {
		t.Errorf("canonical key = %q, want 5000", repo.values["dollar_price"])
	}
	if repo.values["options_dollar_price"] != "5000" {
		t.Errorf("alias key = %q, want 5000", repo.values["options_dollar_price"])
	}
	if out.DollarPrice != 5000 {
		t.Errorf("output dollar price = %v, want 5000", out.DollarPrice)
	}

	today := time.Now().Format("2006-01-02")
	if out.UpdateDate != today {
		t.Errorf("update date = %q, want %q", out.UpdateDate, today)
	}
}

func TestSetRejectsNegativeAndEmpty(t *testing.T) {
	svc := newTestService(newMockSettings(nil))

	if _, apiErr := svc.Set(context.Background(), UpdateInput{}); apiErr == nil {
		t.Error("expected error when no rate is provided")
	}

	negative := -1.0
	if _, apiErr := svc.Set(context.Background(), UpdateInput{DollarPrice: &negative}); apiErr == nil {
		t.Error("expected error for negative rate")
	}
}

func TestSetRejectedInputMutatesNothing(t *testing.T) {
	repo := newMockSettings(nil)
	svc := newTestService(repo)

	usd := 5.0
	cny := -1.0
	if _, apiErr := svc.Set(context.Background(), UpdateInput{DollarPrice: &usd, YuanPrice: &cny}); apiErr == nil {
		t.Fatal("expected error for negative yuan rate")
	}

	// The valid dollar rate must not have been persisted before the rejection.
	if len(repo.sets) != 0 {
		t.Errorf("rejected request wrote settings: %v", repo.sets)
	}
}

func TestRateNonNumericValue(t *testing.T) {
	repo := newMockSettings(map[string]string{"dollar_price": "not-a-number"})
	svc := newTestService(repo)

	if got := svc.Rate(context.Background(), CurrencyUSD); got != 0 {
		t.Errorf("Rate(usd) with garbage value = %v, want 0", got)
	}
}
