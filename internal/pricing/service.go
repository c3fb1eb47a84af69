package pricing

import (
	"context"

	"github.com/digitalogic/catalog/internal/audit"
	"github.com/digitalogic/catalog/internal/products"
	"github.com/digitalogic/catalog/internal/webhooks"
	"github.com/digitalogic/catalog/pkg/rest"
	"go.uber.org/zap"
)

type RecalculateOutput struct {
	Total   int              `json:"total"`
	Success int              `json:"success"`
	Failed  int              `json:"failed"`
	Errors  map[int64]string `json:"errors,omitempty"`
}

// catalog is the slice of the product repository this service touches.
type catalog interface {
	ListDynamicPricing(ctx context.Context) ([]products.Product, error)
	Update(ctx context.Context, p products.Product) error
	UpsertLookup(ctx context.Context, row products.LookupRow) error
}

// rateProvider resolves the exchange rate for a currency code.
type rateProvider interface {
	Rate(ctx context.Context, currency string) float64
}

type dispatcher interface {
	Dispatch(event string, payload any)
}

type Service interface {
	// RecalculateAll reprices every product with dynamic pricing enabled
	// against the current rates. One failing product does not abort the run.
	RecalculateAll(ctx context.Context) (*RecalculateOutput, *rest.ApiErr)
}

type svc struct {
	catalog catalog
	rates   rateProvider
	audit   audit.Service
	events  dispatcher
	logger  *zap.Logger
}

func NewService(catalog catalog, rates rateProvider, auditService audit.Service, events dispatcher, logger *zap.Logger) Service {
	return &svc{
		catalog: catalog,
		rates:   rates,
		audit:   auditService,
		events:  events,
		logger:  logger,
	}
}

func (s *svc) RecalculateAll(ctx context.Context) (*RecalculateOutput, *rest.ApiErr) {
	list, err := s.catalog.ListDynamicPricing(ctx)
	if err != nil {
		s.logger.Error("failed to list dynamically priced products", zap.Error(err))
		return nil, rest.NewInternalServerError("failed to load products for recalculation")
	}

	out := &RecalculateOutput{Total: len(list), Errors: map[int64]string{}}
	for _, p := range list {
		rate := s.rates.Rate(ctx, p.CurrencyType)
		price := Calculate(p, rate)
		if price == p.RegularPrice {
			out.Success++
			continue
		}

		p.RegularPrice = price
		if err := s.catalog.Update(ctx, p); err != nil {
			s.logger.Warn("failed to update product price",
				zap.Int64("product_id", p.ID),
				zap.Error(err),
			)
			out.Failed++
			out.Errors[p.ID] = err.Error()
			continue
		}

		if err := s.catalog.UpsertLookup(ctx, lookupFor(p)); err != nil {
			s.logger.Warn("failed to refresh product lookup",
				zap.Int64("product_id", p.ID),
				zap.Error(err),
			)
		}
		out.Success++
	}

	if len(out.Errors) == 0 {
		out.Errors = nil
	}

	s.audit.Log(ctx, audit.ActionBulkRecalculate, audit.ObjectProduct, 0, nil, out)
	s.events.Dispatch(webhooks.EventPricingRecalculated, out)
	return out, nil
}

func lookupFor(p products.Product) products.LookupRow {
	price := p.RegularPrice
	if p.SalePrice != nil && *p.SalePrice > 0 {
		price = *p.SalePrice
	}
	return products.LookupRow{
		ProductID:     p.ID,
		SKU:           p.SKU,
		MinPrice:      price,
		MaxPrice:      price,
		StockQuantity: p.StockQuantity,
		StockStatus:   p.StockStatus,
		TaxStatus:     p.TaxStatus,
	}
}
