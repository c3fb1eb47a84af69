package pricing

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/digitalogic/catalog/internal/audit"
	"github.com/digitalogic/catalog/internal/products"
	"github.com/digitalogic/catalog/pkg/rest"
	"go.uber.org/zap"
)

// mockCatalog implements catalog for testing
type mockCatalog struct {
	mu       sync.Mutex
	list     []products.Product
	listErr  error
	updErr   map[int64]error
	updated  []products.Product
	lookups  []products.LookupRow
}

func (m *mockCatalog) ListDynamicPricing(ctx context.Context) ([]products.Product, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.list, nil
}

func (m *mockCatalog) Update(ctx context.Context, p products.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.updErr[p.ID]; ok {
		return err
	}
	m.updated = append(m.updated, p)
	for i := range m.list {
		if m.list[i].ID == p.ID {
			m.list[i] = p
		}
	}
	return nil
}

func (m *mockCatalog) UpsertLookup(ctx context.Context, row products.LookupRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups = append(m.lookups, row)
	return nil
}

// mockRates implements rateProvider for testing
type mockRates struct {
	rates map[string]float64
}

func (m *mockRates) Rate(ctx context.Context, currency string) float64 {
	return m.rates[currency]
}

// mockAudit implements audit.Service for testing
type mockAudit struct {
	mu      sync.Mutex
	actions []string
}

func (m *mockAudit) Log(ctx context.Context, action, objectType string, objectID int64, oldValue, newValue any) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions = append(m.actions, action)
	return int64(len(m.actions))
}

func (m *mockAudit) List(ctx context.Context, filter audit.Filter) (*audit.ListOutput, *rest.ApiErr) {
	return &audit.ListOutput{}, nil
}

func (m *mockAudit) Prune(ctx context.Context, retentionDays int) (int64, error) {
	return 0, nil
}

// mockDispatcher implements dispatcher for testing
type mockDispatcher struct {
	mu     sync.Mutex
	events []string
}

func (m *mockDispatcher) Dispatch(event string, payload any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

func dynamicProduct(id int64, base, markup float64) products.Product {
	return products.Product{
		ID:             id,
		Type:           products.TypeSimple,
		RegularPrice:   1,
		DynamicPricing: true,
		CurrencyType:   "usd",
		BasePrice:      base,
		Markup:         markup,
		MarkupType:     MarkupPercentage,
	}
}

func TestRecalculateAllUpdatesPrices(t *testing.T) {
	catalog := &mockCatalog{
		list: []products.Product{
			dynamicProduct(1, 10, 10),
			dynamicProduct(2, 20, 0),
		},
	}
	auditSvc := &mockAudit{}
	events := &mockDispatcher{}
	svc := NewService(catalog, &mockRates{rates: map[string]float64{"usd": 5}}, auditSvc, events, zap.NewNop())

	result, apiErr := svc.RecalculateAll(context.Background())
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}

	if result.Total != 2 || result.Success != 2 || result.Failed != 0 {
		t.Errorf("unexpected result: %+v", result)
	}
	if len(catalog.updated) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(catalog.updated))
	}
	if catalog.updated[0].RegularPrice != 55.00 {
		t.Errorf("product 1 price = %v, want 55.00", catalog.updated[0].RegularPrice)
	}
	if catalog.updated[1].RegularPrice != 100.00 {
		t.Errorf("product 2 price = %v, want 100.00", catalog.updated[1].RegularPrice)
	}
	if len(catalog.lookups) != 2 {
		t.Errorf("expected 2 lookup refreshes, got %d", len(catalog.lookups))
	}
	if len(auditSvc.actions) != 1 || auditSvc.actions[0] != audit.ActionBulkRecalculate {
		t.Errorf("unexpected audit actions: %v", auditSvc.actions)
	}
	if len(events.events) != 1 || events.events[0] != "pricing.recalculated" {
		t.Errorf("unexpected events: %v", events.events)
	}
}

func TestRecalculateAllIsIdempotent(t *testing.T) {
	catalog := &mockCatalog{list: []products.Product{dynamicProduct(1, 10, 10)}}
	svc := NewService(catalog, &mockRates{rates: map[string]float64{"usd": 5}}, &mockAudit{}, &mockDispatcher{}, zap.NewNop())

	if _, apiErr := svc.RecalculateAll(context.Background()); apiErr != nil {
		t.Fatalf("first run failed: %v", apiErr)
	}
	firstUpdates := len(catalog.updated)

	result, apiErr := svc.RecalculateAll(context.Background())
	if apiErr != nil {
		t.Fatalf("second run failed: %v", apiErr)
	}
	if result.Success != 1 {
		t.Errorf("second run success = %d, want 1", result.Success)
	}
	if len(catalog.updated) != firstUpdates {
		t.Errorf("second run wrote %d extra updates, prices should already match",
			len(catalog.updated)-firstUpdates)
	}
}

func TestRecalculateAllPartialFailure(t *testing.T) {
	catalog := &mockCatalog{
		list: []products.Product{
			dynamicProduct(1, 10, 10),
			dynamicProduct(2, 20, 10),
			dynamicProduct(3, 30, 10),
		},
		updErr: map[int64]error{2: errors.New("write conflict")},
	}
	svc := NewService(catalog, &mockRates{rates: map[string]float64{"usd": 5}}, &mockAudit{}, &mockDispatcher{}, zap.NewNop())

	result, apiErr := svc.RecalculateAll(context.Background())
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}

	if result.Total != 3 || result.Success != 2 || result.Failed != 1 {
		t.Errorf("unexpected result: %+v", result)
	}
	if result.Errors[2] != "write conflict" {
		t.Errorf("expected error for product 2, got %v", result.Errors)
	}
}

func TestRecalculateAllUnknownCurrencyLeavesPrice(t *testing.T) {
	p := dynamicProduct(1, 10, 10)
	p.CurrencyType = "eur"
	catalog := &mockCatalog{list: []products.Product{p}}
	svc := NewService(catalog, &mockRates{rates: map[string]float64{"usd": 5}}, &mockAudit{}, &mockDispatcher{}, zap.NewNop())

	result, apiErr := svc.RecalculateAll(context.Background())
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}
	if result.Success != 1 || len(catalog.updated) != 0 {
		t.Errorf("product with unknown currency should be untouched: %+v", result)
	}
}
