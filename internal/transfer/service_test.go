package transfer

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/digitalogic/catalog/internal/audit"
	"github.com/digitalogic/catalog/internal/products"
	"github.com/digitalogic/catalog/pkg/rest"
	"go.uber.org/zap"
)

// mockCatalog implements catalog for testing
type mockCatalog struct {
	mu      sync.Mutex
	byID    map[int64]products.Product
	updates map[int64]products.UpdateInput
}

func newMockCatalog(list ...products.Product) *mockCatalog {
	m := &mockCatalog{
		byID:    map[int64]products.Product{},
		updates: map[int64]products.UpdateInput{},
	}
	for _, p := range list {
		m.byID[p.ID] = p
	}
	return m
}

func (m *mockCatalog) List(ctx context.Context, filter products.ListFilter) (*products.PaginatedProductsOutput, *rest.ApiErr) {
	out := &products.PaginatedProductsOutput{Page: filter.Page, PageSize: filter.PageSize}
	if filter.Page > 1 {
		return out, nil
	}
	for _, p := range m.byID {
		out.Products = append(out.Products, p)
	}
	out.Total = int64(len(out.Products))
	return out, nil
}

func (m *mockCatalog) Get(ctx context.Context, id int64) (*products.Product, *rest.ApiErr) {
	p, ok := m.byID[id]
	if !ok {
		return nil, rest.NewNotFoundError("product not found")
	}
	return &p, nil
}

func (m *mockCatalog) Update(ctx context.Context, id int64, input products.UpdateInput) (*products.Product, *rest.ApiErr) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, rest.NewNotFoundError("product not found")
	}
	m.updates[id] = input
	return &p, nil
}

type nopAudit struct{}

func (nopAudit) Log(ctx context.Context, action, objectType string, objectID int64, oldValue, newValue any) int64 {
	return 0
}
func (nopAudit) List(ctx context.Context, filter audit.Filter) (*audit.ListOutput, *rest.ApiErr) {
	return &audit.ListOutput{}, nil
}
func (nopAudit) Prune(ctx context.Context, retentionDays int) (int64, error) { return 0, nil }

func testProduct() products.Product {
	sale := 80.0
	return products.Product{
		ID:             7,
		Name:           "Widget",
		SKU:            "W-7",
		Type:           products.TypeSimple,
		Status:         "publish",
		RegularPrice:   100,
		SalePrice:      &sale,
		StockQuantity:  12,
		StockStatus:    "instock",
		Weight:         1.5,
		Length:         10,
		Width:          4,
		Height:         2,
		DynamicPricing: true,
		CurrencyType:   "usd",
		BasePrice:      10,
		Markup:         15,
		MarkupType:     "percentage",
	}
}

func TestCSVRoundTrip(t *testing.T) {
	want := recordFrom(testProduct())

	data, err := encodeCSV([]Record{want})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	header := strings.SplitN(string(data), "\n", 2)[0]
	if got := len(strings.Split(strings.TrimSpace(header), ",")); got != len(headers) {
		t.Errorf("header has %d columns, want %d", got, len(headers))
	}

	records, err := decodeCSV(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0] != want {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", records[0], want)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	want := recordFrom(testProduct())

	data, err := encodeJSON([]Record{want})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	records, err := decodeJSON(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0] != want {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", records[0], want)
	}
}

func TestXLSXRoundTrip(t *testing.T) {
	want := recordFrom(testProduct())

	data, err := encodeXLSX([]Record{want})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	records, err := decodeXLSX(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0] != want {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", records[0], want)
	}
}

func TestRecordFromDisabledPricingOmitsMeta(t *testing.T) {
	p := testProduct()
	p.DynamicPricing = false

	r := recordFrom(p)
	if r.DynamicPricing != "no" {
		t.Errorf("dynamic pricing = %q, want no", r.DynamicPricing)
	}
	if r.CurrencyType != "" || r.BasePrice != "" || r.Markup != "" || r.MarkupType != "" {
		t.Errorf("pricing fields should be blank when disabled: %+v", r)
	}
}

func TestImportMissingProductID(t *testing.T) {
	catalog := newMockCatalog(testProduct())
	svc := NewService(catalog, nopAudit{}, zap.NewNop())

	r := recordFrom(testProduct())
	r.ID = ""
	good := recordFrom(testProduct())

	data, err := encodeCSV([]Record{r, good})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	result, apiErr := svc.Import(context.Background(), FormatCSV, bytes.NewReader(data))
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}

	if result.Failed != 1 || result.Success != 1 {
		t.Errorf("result = %+v, want 1 failed / 1 success", result)
	}
	if len(result.Errors) != 1 || result.Errors[0].Message != "Missing product ID" {
		t.Errorf("expected Missing product ID error, got %v", result.Errors)
	}
	if len(catalog.updates) != 1 {
		t.Errorf("only the valid row should reach the catalog: %v", catalog.updates)
	}
	// First data row of a CSV sits under the header.
	if result.Errors[0].Row != 2 {
		t.Errorf("row = %d, want 2", result.Errors[0].Row)
	}
}

func TestImportRowNumbersPerFormat(t *testing.T) {
	catalog := newMockCatalog(testProduct())
	svc := NewService(catalog, nopAudit{}, zap.NewNop())

	bad := recordFrom(testProduct())
	bad.ID = ""

	// JSON has no header row; the first element is row 1.
	data, err := encodeJSON([]Record{bad})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	result, apiErr := svc.Import(context.Background(), FormatJSON, bytes.NewReader(data))
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}
	if len(result.Errors) != 1 || result.Errors[0].Row != 1 {
		t.Errorf("json errors = %v, want row 1", result.Errors)
	}
}

func TestImportAppliesPricingOnlyWhenEnabled(t *testing.T) {
	catalog := newMockCatalog(testProduct())
	svc := NewService(catalog, nopAudit{}, zap.NewNop())

	r := recordFrom(testProduct())
	r.DynamicPricing = "no"
	r.CurrencyType = "cny"
	r.BasePrice = "999"

	data, err := encodeCSV([]Record{r})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	result, apiErr := svc.Import(context.Background(), FormatCSV, bytes.NewReader(data))
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}
	if result.Success != 1 {
		t.Fatalf("result = %+v, want 1 success", result)
	}

	input := catalog.updates[7]
	if input.DynamicPricing == nil || *input.DynamicPricing {
		t.Error("dynamic pricing should be explicitly disabled")
	}
	if input.CurrencyType != nil || input.BasePrice != nil {
		t.Errorf("pricing fields must not be applied when disabled: %+v", input)
	}
}

func TestExportAll(t *testing.T) {
	catalog := newMockCatalog(testProduct())
	svc := NewService(catalog, nopAudit{}, zap.NewNop())

	file, apiErr := svc.Export(context.Background(), FormatCSV, nil)
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}
	if file.ContentType != "text/csv" {
		t.Errorf("content type = %q", file.ContentType)
	}
	if !strings.HasPrefix(file.Filename, "products-") || !strings.HasSuffix(file.Filename, ".csv") {
		t.Errorf("unexpected filename: %q", file.Filename)
	}
	if !bytes.Contains(file.Data, []byte("W-7")) {
		t.Error("exported data should contain the product SKU")
	}
}

func TestExportUnsupportedFormat(t *testing.T) {
	svc := NewService(newMockCatalog(), nopAudit{}, zap.NewNop())

	if _, apiErr := svc.Export(context.Background(), "xml", nil); apiErr == nil {
		t.Error("expected error for unsupported format")
	}
}
