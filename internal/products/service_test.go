package products

import (
	"context"
	"sync"
	"testing"

	"github.com/digitalogic/catalog/internal/audit"
	"github.com/digitalogic/catalog/pkg/rest"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// mockRepository implements Repository over in-memory maps
type mockRepository struct {
	mu       sync.Mutex
	products map[int64]Product
	lookups  map[int64]LookupRow
	children map[int64][]Product
}

func newMockRepository(list ...Product) *mockRepository {
	m := &mockRepository{
		products: map[int64]Product{},
		lookups:  map[int64]LookupRow{},
		children: map[int64][]Product{},
	}
	for _, p := range list {
		m.products[p.ID] = p
	}
	return m
}

func (m *mockRepository) FindByID(ctx context.Context, id int64) (Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return Product{}, pgx.ErrNoRows
	}
	return p, nil
}

func (m *mockRepository) FindBySKU(ctx context.Context, sku string) (Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.SKU == sku {
			return p, nil
		}
	}
	return Product{}, pgx.ErrNoRows
}

func (m *mockRepository) FindChildren(ctx context.Context, parentID int64, limit int) ([]Product, error) {
	kids := m.children[parentID]
	if len(kids) > limit {
		kids = kids[:limit]
	}
	return kids, nil
}

func (m *mockRepository) CountChildren(ctx context.Context, parentID int64) (int64, error) {
	return int64(len(m.children[parentID])), nil
}

func (m *mockRepository) List(ctx context.Context, filter ListFilter) ([]Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if filter.Page > 1 {
		return nil, nil
	}
	var out []Product
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockRepository) Count(ctx context.Context, filter ListFilter) (int64, error) {
	return int64(len(m.products)), nil
}

func (m *mockRepository) Update(ctx context.Context, p Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
	return nil
}

func (m *mockRepository) ListDynamicPricing(ctx context.Context) ([]Product, error) {
	return nil, nil
}

func (m *mockRepository) FindLookup(ctx context.Context, productID int64) (LookupRow, error) {
	row, ok := m.lookups[productID]
	if !ok {
		return LookupRow{}, pgx.ErrNoRows
	}
	return row, nil
}

func (m *mockRepository) UpsertLookup(ctx context.Context, row LookupRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups[row.ProductID] = row
	return nil
}

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

func (m *mockAudit) Prune(ctx context.Context, retentionDays int) (int64, error) { return 0, nil }

type mockDispatcher struct {
	mu     sync.Mutex
	events []string
}

func (m *mockDispatcher) Dispatch(event string, payload any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

func simple(id int64, sku string, price float64, stock int) Product {
	return Product{
		ID:            id,
		Name:          "Product",
		SKU:           sku,
		Type:          TypeSimple,
		Status:        "publish",
		RegularPrice:  price,
		StockQuantity: stock,
		StockStatus:   "instock",
	}
}

func newTestService(repo Repository) (Service, *mockAudit, *mockDispatcher) {
	auditSvc := &mockAudit{}
	events := &mockDispatcher{}
	return NewService(repo, auditSvc, events, zap.NewNop()), auditSvc, events
}

func TestCountWithoutFetchingPage(t *testing.T) {
	repo := newMockRepository(
		simple(1, "SKU-1", 100, 5),
		simple(2, "SKU-2", 200, 5),
		simple(3, "SKU-3", 300, 5),
	)
	svc, _, _ := newTestService(repo)

	total, apiErr := svc.Count(context.Background(), ListFilter{})
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
}

func TestUpdateAppliesOnlyProvidedFields(t *testing.T) {
	repo := newMockRepository(simple(1, "SKU-1", 100, 5))
	svc, auditSvc, events := newTestService(repo)

	price := 120.0
	updated, apiErr := svc.Update(context.Background(), 1, UpdateInput{RegularPrice: &price})
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}

	if updated.RegularPrice != 120 {
		t.Errorf("regular price = %v, want 120", updated.RegularPrice)
	}
	if updated.SKU != "SKU-1" || updated.StockQuantity != 5 {
		t.Errorf("untouched fields changed: %+v", updated)
	}

	row, ok := repo.lookups[1]
	if !ok {
		t.Fatal("lookup row was not refreshed")
	}
	if row.MinPrice != 120 {
		t.Errorf("lookup min price = %v, want 120", row.MinPrice)
	}

	if len(auditSvc.actions) != 1 || auditSvc.actions[0] != audit.ActionUpdateProduct {
		t.Errorf("unexpected audit actions: %v", auditSvc.actions)
	}
	if len(events.events) != 1 || events.events[0] != "product.updated" {
		t.Errorf("unexpected events: %v", events.events)
	}
}

func TestUpdateRejectsInvalidInput(t *testing.T) {
	repo := newMockRepository(simple(1, "SKU-1", 100, 5))
	svc, _, _ := newTestService(repo)

	negative := -5.0
	if _, apiErr := svc.Update(context.Background(), 1, UpdateInput{RegularPrice: &negative}); apiErr == nil {
		t.Error("expected error for negative price")
	}

	badCurrency := "eur"
	if _, apiErr := svc.Update(context.Background(), 1, UpdateInput{CurrencyType: &badCurrency}); apiErr == nil {
		t.Error("expected error for unsupported currency")
	}

	badMarkup := "multiplier"
	if _, apiErr := svc.Update(context.Background(), 1, UpdateInput{MarkupType: &badMarkup}); apiErr == nil {
		t.Error("expected error for unknown markup type")
	}

	if repo.products[1].RegularPrice != 100 {
		t.Errorf("product mutated by rejected update: %+v", repo.products[1])
	}
}

func TestUpdateNotFound(t *testing.T) {
	svc, _, _ := newTestService(newMockRepository())

	price := 10.0
	_, apiErr := svc.Update(context.Background(), 99, UpdateInput{RegularPrice: &price})
	if apiErr == nil || apiErr.Code != 404 {
		t.Errorf("expected not found, got %v", apiErr)
	}
}

func TestBulkUpdatePartialFailure(t *testing.T) {
	repo := newMockRepository(
		simple(1, "SKU-1", 100, 5),
		simple(2, "SKU-2", 200, 5),
		simple(3, "SKU-3", 300, 5),
	)
	svc, auditSvc, _ := newTestService(repo)

	good := 150.0
	bad := -1.0
	result, apiErr := svc.BulkUpdate(context.Background(), BatchUpdateInput{
		Updates: map[int64]UpdateInput{
			1: {RegularPrice: &good},
			2: {RegularPrice: &bad},
			3: {RegularPrice: &good},
		},
	})
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}

	if result.Success != 2 || result.Failed != 1 {
		t.Errorf("result = %+v, want 2 success / 1 failed", result)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected exactly one error entry, got %v", result.Errors)
	}
	if _, ok := result.Errors[2]; !ok {
		t.Errorf("error should be keyed by the failing product id: %v", result.Errors)
	}

	if repo.products[1].RegularPrice != 150 || repo.products[3].RegularPrice != 150 {
		t.Error("successful updates were not applied")
	}
	if repo.products[2].RegularPrice != 200 {
		t.Error("failed update mutated the product")
	}

	// Per-product entries plus one batch summary.
	if auditSvc.actions[len(auditSvc.actions)-1] != audit.ActionBulkUpdate {
		t.Errorf("last audit action = %v, want bulk_update", auditSvc.actions)
	}
}

func TestCheckConsistencyStockMismatch(t *testing.T) {
	p := simple(1, "SKU-1", 100, 5)
	repo := newMockRepository(p)
	repo.lookups[1] = LookupRow{
		ProductID:     1,
		SKU:           "SKU-1",
		MinPrice:      100,
		MaxPrice:      100,
		StockQuantity: 3,
		StockStatus:   "instock",
	}
	svc, _, _ := newTestService(repo)

	report, apiErr := svc.CheckConsistency(context.Background(), 1)
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}

	if report.Consistent {
		t.Error("report should flag the stock mismatch")
	}
	if len(report.Mismatches) != 1 {
		t.Fatalf("expected exactly one mismatch, got %v", report.Mismatches)
	}

	m := report.Mismatches[0]
	if m.Message != "Stock quantity mismatch" {
		t.Errorf("message = %q, want %q", m.Message, "Stock quantity mismatch")
	}
	if m.Canonical != "5" || m.Lookup != "3" {
		t.Errorf("mismatch should cite both values: %+v", m)
	}
}

func TestCheckConsistencyMissingLookup(t *testing.T) {
	repo := newMockRepository(simple(1, "SKU-1", 100, 5))
	svc, _, _ := newTestService(repo)

	report, apiErr := svc.CheckConsistency(context.Background(), 1)
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}
	if !report.LookupMissing {
		t.Errorf("expected missing lookup flag: %+v", report)
	}
}

func TestGetLoadsVariationsWithCap(t *testing.T) {
	parent := simple(1, "PARENT", 0, 0)
	parent.Type = TypeVariable
	repo := newMockRepository(parent)

	for i := int64(0); i < MaxVariationChildren+20; i++ {
		v := simple(100+i, "", 10, 1)
		v.Type = TypeVariation
		v.ParentID = 1
		repo.children[1] = append(repo.children[1], v)
	}

	svc, _, _ := newTestService(repo)
	got, apiErr := svc.Get(context.Background(), 1)
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}

	if len(got.Variations) != MaxVariationChildren {
		t.Errorf("variations = %d, want cap of %d", len(got.Variations), MaxVariationChildren)
	}
}

func TestRegenerateLookup(t *testing.T) {
	sale := 80.0
	p := simple(1, "SKU-1", 100, 5)
	p.SalePrice = &sale
	repo := newMockRepository(p, simple(2, "SKU-2", 200, 1))
	svc, auditSvc, _ := newTestService(repo)

	written, apiErr := svc.RegenerateLookup(context.Background())
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}
	if written != 2 {
		t.Errorf("written = %d, want 2", written)
	}
	if repo.lookups[1].MinPrice != 80 {
		t.Errorf("lookup should use the sale price: %+v", repo.lookups[1])
	}
	if auditSvc.actions[len(auditSvc.actions)-1] != audit.ActionRegenerateLookup {
		t.Errorf("unexpected audit actions: %v", auditSvc.actions)
	}
}
