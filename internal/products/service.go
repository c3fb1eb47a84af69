package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/digitalogic/catalog/internal/audit"
	"github.com/digitalogic/catalog/internal/webhooks"
	"github.com/digitalogic/catalog/pkg/rest"
	"github.com/jackc/pgx/v5"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type dispatcher interface {
	Dispatch(event string, payload any)
}

type Service interface {
	List(ctx context.Context, filter ListFilter) (*PaginatedProductsOutput, *rest.ApiErr)

	// Count answers count-only queries without fetching a page.
	Count(ctx context.Context, filter ListFilter) (int64, *rest.ApiErr)

	Get(ctx context.Context, id int64) (*Product, *rest.ApiErr)
	GetBySKU(ctx context.Context, sku string) (*Product, *rest.ApiErr)
	Update(ctx context.Context, id int64, input UpdateInput) (*Product, *rest.ApiErr)
	UpdateBySKU(ctx context.Context, sku string, input UpdateInput) (*Product, *rest.ApiErr)

	// BulkUpdate applies each update independently; one invalid item never
	// aborts the batch.
	BulkUpdate(ctx context.Context, input BatchUpdateInput) (*BulkResult, *rest.ApiErr)

	Metadata(ctx context.Context, id int64) (*MetadataOutput, *rest.ApiErr)
	CheckConsistency(ctx context.Context, id int64) (*ConsistencyReport, *rest.ApiErr)

	// RegenerateLookup rebuilds the denormalized lookup rows for every
	// product and reports how many were written.
	RegenerateLookup(ctx context.Context) (int64, *rest.ApiErr)
}

type svc struct {
	repo   Repository
	audit  audit.Service
	events dispatcher
	logger *zap.Logger
}

func NewService(repo Repository, auditService audit.Service, events dispatcher, logger *zap.Logger) Service {
	return &svc{
		repo:   repo,
		audit:  auditService,
		events: events,
		logger: logger,
	}
}

func (s *svc) List(ctx context.Context, filter ListFilter) (*PaginatedProductsOutput, *rest.ApiErr) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = defaultPageSize
	}
	if filter.PageSize > maxPageSize {
		filter.PageSize = maxPageSize
	}

	list, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list products", zap.Error(err))
		return nil, rest.NewInternalServerError("failed to list products")
	}

	filtered := make([]Product, 0, len(list))
	for _, p := range list {
		if matchesRanges(p, filter) {
			filtered = append(filtered, p)
		}
	}

	total, apiErr := s.Count(ctx, filter)
	if apiErr != nil {
		return nil, apiErr
	}

	return &PaginatedProductsOutput{
		Products: filtered,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

func (s *svc) Count(ctx context.Context, filter ListFilter) (int64, *rest.ApiErr) {
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		s.logger.Error("failed to count products", zap.Error(err))
		return 0, rest.NewInternalServerError("failed to count products")
	}
	return total, nil
}

// matchesRanges applies the numeric range filters the SQL query does not
// cover.
func matchesRanges(p Product, f ListFilter) bool {
	if f.PriceMin != nil && p.RegularPrice < *f.PriceMin {
		return false
	}
	if f.PriceMax != nil && p.RegularPrice > *f.PriceMax {
		return false
	}
	if f.StockMin != nil && p.StockQuantity < *f.StockMin {
		return false
	}
	if f.StockMax != nil && p.StockQuantity > *f.StockMax {
		return false
	}
	if f.WeightMin != nil && p.Weight < *f.WeightMin {
		return false
	}
	if f.WeightMax != nil && p.Weight > *f.WeightMax {
		return false
	}
	return true
}

func (s *svc) Get(ctx context.Context, id int64) (*Product, *rest.ApiErr) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, rest.NewNotFoundError("product not found")
		}
		s.logger.Error("failed to fetch product", zap.Int64("product_id", id), zap.Error(err))
		return nil, rest.NewInternalServerError("failed to fetch product")
	}

	s.loadVariations(ctx, &p, 1)
	return &p, nil
}

func (s *svc) GetBySKU(ctx context.Context, sku string) (*Product, *rest.ApiErr) {
	if sku == "" {
		return nil, rest.NewBadRequestError("sku is required")
	}

	p, err := s.repo.FindBySKU(ctx, sku)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, rest.NewNotFoundError("product not found")
		}
		s.logger.Error("failed to fetch product", zap.String("sku", sku), zap.Error(err))
		return nil, rest.NewInternalServerError("failed to fetch product")
	}

	s.loadVariations(ctx, &p, 1)
	return &p, nil
}

func (s *svc) loadVariations(ctx context.Context, p *Product, depth int) {
	if p.Type != TypeVariable || depth > MaxVariationDepth {
		return
	}

	total, err := s.repo.CountChildren(ctx, p.ID)
	if err != nil {
		s.logger.Warn("failed to count variations", zap.Int64("product_id", p.ID), zap.Error(err))
		return
	}
	if total > MaxVariationChildren {
		s.logger.Warn("variation list truncated",
			zap.Int64("product_id", p.ID),
			zap.Int64("total", total),
			zap.Int("limit", MaxVariationChildren),
		)
	}

	children, err := s.repo.FindChildren(ctx, p.ID, MaxVariationChildren)
	if err != nil {
		s.logger.Warn("failed to load variations", zap.Int64("product_id", p.ID), zap.Error(err))
		return
	}

	for i := range children {
		s.loadVariations(ctx, &children[i], depth+1)
	}
	p.Variations = children
}

func validate(input UpdateInput) *rest.ApiErr {
	var causes []rest.Causes
	addCause := func(field, message string) {
		causes = append(causes, rest.Causes{Field: field, Message: message})
	}

	if input.RegularPrice != nil && *input.RegularPrice < 0 {
		addCause("regular_price", "must not be negative")
	}
	if input.SalePrice != nil && *input.SalePrice < 0 {
		addCause("sale_price", "must not be negative")
	}
	if input.BasePrice != nil && *input.BasePrice < 0 {
		addCause("base_price", "must not be negative")
	}
	if input.StockQuantity != nil && *input.StockQuantity < 0 {
		addCause("stock_quantity", "must not be negative")
	}
	if input.Weight != nil && *input.Weight < 0 {
		addCause("weight", "must not be negative")
	}
	if input.CurrencyType != nil {
		switch *input.CurrencyType {
		case "", "usd", "cny":
		default:
			addCause("currency_type", "must be usd or cny")
		}
	}
	if input.MarkupType != nil {
		switch *input.MarkupType {
		case "percentage", "fixed":
		default:
			addCause("markup_type", "must be percentage or fixed")
		}
	}

	if len(causes) > 0 {
		return rest.NewBadRequestValidationError("invalid product data", causes)
	}
	return nil
}

// apply copies the provided fields onto the product, leaving absent fields
// untouched.
func apply(p *Product, input UpdateInput) {
	if input.Name != nil {
		p.Name = *input.Name
	}
	if input.SKU != nil {
		p.SKU = *input.SKU
	}
	if input.Status != nil {
		p.Status = *input.Status
	}
	if input.Category != nil {
		p.Category = *input.Category
	}
	if input.RegularPrice != nil {
		p.RegularPrice = *input.RegularPrice
	}
	if input.SalePrice != nil {
		if *input.SalePrice > 0 {
			v := *input.SalePrice
			p.SalePrice = &v
		} else {
			p.SalePrice = nil
		}
	}
	if input.StockQuantity != nil {
		p.StockQuantity = *input.StockQuantity
	}
	if input.StockStatus != nil {
		p.StockStatus = *input.StockStatus
	}
	if input.ManageStock != nil {
		p.ManageStock = *input.ManageStock
	}
	if input.Weight != nil {
		p.Weight = *input.Weight
	}
	if input.Length != nil {
		p.Length = *input.Length
	}
	if input.Width != nil {
		p.Width = *input.Width
	}
	if input.Height != nil {
		p.Height = *input.Height
	}
	if input.DynamicPricing != nil {
		p.DynamicPricing = *input.DynamicPricing
	}
	if input.CurrencyType != nil {
		p.CurrencyType = *input.CurrencyType
	}
	if input.BasePrice != nil {
		p.BasePrice = *input.BasePrice
	}
	if input.Markup != nil {
		p.Markup = *input.Markup
	}
	if input.MarkupType != nil {
		p.MarkupType = *input.MarkupType
	}
}

func (s *svc) Update(ctx context.Context, id int64, input UpdateInput) (*Product, *rest.ApiErr) {
	before, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, rest.NewNotFoundError("product not found")
		}
		s.logger.Error("failed to fetch product", zap.Int64("product_id", id), zap.Error(err))
		return nil, rest.NewInternalServerError("failed to fetch product")
	}
	return s.update(ctx, before, input)
}

func (s *svc) UpdateBySKU(ctx context.Context, sku string, input UpdateInput) (*Product, *rest.ApiErr) {
	if sku == "" {
		return nil, rest.NewBadRequestError("sku is required")
	}

	before, err := s.repo.FindBySKU(ctx, sku)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, rest.NewNotFoundError("product not found")
		}
		s.logger.Error("failed to fetch product", zap.String("sku", sku), zap.Error(err))
		return nil, rest.NewInternalServerError("failed to fetch product")
	}
	return s.update(ctx, before, input)
}

func (s *svc) update(ctx context.Context, before Product, input UpdateInput) (*Product, *rest.ApiErr) {
	if apiErr := validate(input); apiErr != nil {
		return nil, apiErr
	}

	after := before
	apply(&after, input)

	if err := s.repo.Update(ctx, after); err != nil {
		s.logger.Error("failed to update product", zap.Int64("product_id", after.ID), zap.Error(err))
		return nil, rest.NewInternalServerError("failed to update product")
	}

	if err := s.repo.UpsertLookup(ctx, lookupRowFor(after)); err != nil {
		s.logger.Warn("failed to refresh product lookup", zap.Int64("product_id", after.ID), zap.Error(err))
	}

	s.audit.Log(ctx, audit.ActionUpdateProduct, audit.ObjectProduct, after.ID, before, after)
	s.events.Dispatch(webhooks.EventProductUpdated, after)
	return &after, nil
}

func (s *svc) BulkUpdate(ctx context.Context, input BatchUpdateInput) (*BulkResult, *rest.ApiErr) {
	if len(input.Updates) == 0 {
		return nil, rest.NewBadRequestError("no updates provided")
	}

	result := &BulkResult{Errors: map[int64]string{}}
	for id, update := range input.Updates {
		if _, apiErr := s.Update(ctx, id, update); apiErr != nil {
			result.Failed++
			result.Errors[id] = apiErr.Message
			continue
		}
		result.Success++
	}
	if len(result.Errors) == 0 {
		result.Errors = nil
	}

	s.audit.Log(ctx, audit.ActionBulkUpdate, audit.ObjectProduct, 0, nil, result)
	return result, nil
}

func (s *svc) Metadata(ctx context.Context, id int64) (*MetadataOutput, *rest.ApiErr) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, rest.NewNotFoundError("product not found")
		}
		s.logger.Error("failed to fetch product", zap.Int64("product_id", id), zap.Error(err))
		return nil, rest.NewInternalServerError("failed to fetch product")
	}

	report, apiErr := s.CheckConsistency(ctx, id)
	if apiErr != nil {
		return nil, apiErr
	}

	return &MetadataOutput{
		ProductID:      p.ID,
		DynamicPricing: p.DynamicPricing,
		CurrencyType:   p.CurrencyType,
		BasePrice:      p.BasePrice,
		Markup:         p.Markup,
		MarkupType:     p.MarkupType,
		Consistency:    report,
	}, nil
}

func (s *svc) CheckConsistency(ctx context.Context, id int64) (*ConsistencyReport, *rest.ApiErr) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, rest.NewNotFoundError("product not found")
		}
		s.logger.Error("failed to fetch product", zap.Int64("product_id", id), zap.Error(err))
		return nil, rest.NewInternalServerError("failed to fetch product")
	}

	report := &ConsistencyReport{ProductID: id}

	row, err := s.repo.FindLookup(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			report.LookupMissing = true
			return report, nil
		}
		s.logger.Error("failed to fetch product lookup", zap.Int64("product_id", id), zap.Error(err))
		return nil, rest.NewInternalServerError("failed to check product consistency")
	}

	report.Mismatches = compare(p, row)
	report.Consistent = len(report.Mismatches) == 0
	return report, nil
}

func compare(p Product, row LookupRow) []Mismatch {
	var out []Mismatch
	add := func(field, message string, canonical, lookup any) {
		out = append(out, Mismatch{
			Field:     field,
			Message:   message,
			Canonical: cast.ToString(canonical),
			Lookup:    cast.ToString(lookup),
		})
	}

	if p.SKU != row.SKU {
		add("sku", "SKU mismatch", p.SKU, row.SKU)
	}

	price := effectivePrice(p)
	if price != row.MinPrice {
		add("min_price", "Price mismatch", price, row.MinPrice)
	}
	if p.StockQuantity != row.StockQuantity {
		add("stock_quantity", "Stock quantity mismatch", p.StockQuantity, row.StockQuantity)
	}
	if p.StockStatus != row.StockStatus {
		add("stock_status", "Stock status mismatch", p.StockStatus, row.StockStatus)
	}
	if p.TaxStatus != row.TaxStatus {
		add("tax_status", "Tax status mismatch", p.TaxStatus, row.TaxStatus)
	}
	return out
}

func effectivePrice(p Product) float64 {
	if p.SalePrice != nil && *p.SalePrice > 0 {
		return *p.SalePrice
	}
	return p.RegularPrice
}

func lookupRowFor(p Product) LookupRow {
	price := effectivePrice(p)
	return LookupRow{
		ProductID:     p.ID,
		SKU:           p.SKU,
		MinPrice:      price,
		MaxPrice:      price,
		StockQuantity: p.StockQuantity,
		StockStatus:   p.StockStatus,
		TaxStatus:     p.TaxStatus,
	}
}

func (s *svc) RegenerateLookup(ctx context.Context) (int64, *rest.ApiErr) {
	filter := ListFilter{Status: "any", Page: 1, PageSize: maxPageSize}
	var written int64

	for {
		page, err := s.repo.List(ctx, filter)
		if err != nil {
			s.logger.Error("failed to list products for lookup rebuild", zap.Error(err))
			return written, rest.NewInternalServerError("failed to regenerate lookup table")
		}
		if len(page) == 0 {
			break
		}

		for _, p := range page {
			if err := s.repo.UpsertLookup(ctx, lookupRowFor(p)); err != nil {
				s.logger.Warn("failed to write lookup row", zap.Int64("product_id", p.ID), zap.Error(err))
				continue
			}
			written++
		}
		filter.Page++
	}

	s.audit.Log(ctx, audit.ActionRegenerateLookup, audit.ObjectProduct, 0, nil, fmt.Sprintf("rows=%d", written))
	return written, nil
}
