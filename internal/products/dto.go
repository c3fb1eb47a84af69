package products

import "time"

// Product types and statuses mirror the storefront catalog.
const (
	TypeSimple    = "simple"
	TypeVariable  = "variable"
	TypeVariation = "variation"
)

const (
	// Variable products include their variations in read paths, bounded so a
	// pathological catalog cannot blow up a response.
	MaxVariationDepth    = 2
	MaxVariationChildren = 100
)

type Product struct {
	ID            int64     `json:"id"`
	ParentID      int64     `json:"parent_id,omitempty"`
	Name          string    `json:"name"`
	SKU           string    `json:"sku"`
	Type          string    `json:"type"`
	Status        string    `json:"status"`
	Category      string    `json:"category,omitempty"`
	RegularPrice  float64   `json:"regular_price"`
	SalePrice     *float64  `json:"sale_price,omitempty"`
	StockQuantity int       `json:"stock_quantity"`
	StockStatus   string    `json:"stock_status"`
	ManageStock   bool      `json:"manage_stock"`
	Weight        float64   `json:"weight"`
	Length        float64   `json:"length"`
	Width         float64   `json:"width"`
	Height        float64   `json:"height"`
	TaxStatus     string    `json:"tax_status,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	DynamicPricing bool    `json:"dynamic_pricing"`
	CurrencyType   string  `json:"currency_type,omitempty"`
	BasePrice      float64 `json:"base_price,omitempty"`
	Markup         float64 `json:"markup,omitempty"`
	MarkupType     string  `json:"markup_type,omitempty"`

	Variations []Product `json:"variations,omitempty"`
}

// LookupRow is the denormalized copy of a product kept for fast querying.
// It must agree with the canonical record after every write.
type LookupRow struct {
	ProductID     int64     `json:"product_id"`
	SKU           string    `json:"sku"`
	MinPrice      float64   `json:"min_price"`
	MaxPrice      float64   `json:"max_price"`
	StockQuantity int       `json:"stock_quantity"`
	StockStatus   string    `json:"stock_status"`
	TaxStatus     string    `json:"tax_status"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// UpdateInput applies only the fields that are present; nil means untouched.
type UpdateInput struct {
	Name          *string  `json:"name"`
	SKU           *string  `json:"sku"`
	Status        *string  `json:"status"`
	Category      *string  `json:"category"`
	RegularPrice  *float64 `json:"regular_price"`
	SalePrice     *float64 `json:"sale_price"`
	StockQuantity *int     `json:"stock_quantity"`
	StockStatus   *string  `json:"stock_status"`
	ManageStock   *bool    `json:"manage_stock"`
	Weight        *float64 `json:"weight"`
	Length        *float64 `json:"length"`
	Width         *float64 `json:"width"`
	Height        *float64 `json:"height"`

	DynamicPricing *bool    `json:"dynamic_pricing"`
	CurrencyType   *string  `json:"currency_type"`
	BasePrice      *float64 `json:"base_price"`
	Markup         *float64 `json:"markup"`
	MarkupType     *string  `json:"markup_type"`
}

type ListFilter struct {
	Search      string `query:"search"`
	SKU         string `query:"sku"`
	Status      string `query:"status"`
	Type        string `query:"type"`
	Category    string `query:"category"`
	StockStatus string `query:"stock_status"`

	// Range filters the catalog query cannot express natively; applied as a
	// post-filter on the fetched page.
	PriceMin  *float64 `query:"price_min"`
	PriceMax  *float64 `query:"price_max"`
	StockMin  *int     `query:"stock_min"`
	StockMax  *int     `query:"stock_max"`
	WeightMin *float64 `query:"weight_min"`
	WeightMax *float64 `query:"weight_max"`

	Page     int    `query:"page"`
	PageSize int    `query:"page_size"`
	OrderBy  string `query:"order_by"`
	Order    string `query:"order"`
}

type PaginatedProductsOutput struct {
	Products []Product `json:"products"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}

// BulkResult carries partial-failure accounting; one bad item never aborts
// the rest of the batch.
type BulkResult struct {
	Success int              `json:"success"`
	Failed  int              `json:"failed"`
	Errors  map[int64]string `json:"errors,omitempty"`
}

type BatchUpdateInput struct {
	Updates map[int64]UpdateInput `json:"updates"`
}

type Mismatch struct {
	Field     string `json:"field"`
	Message   string `json:"message"`
	Canonical string `json:"canonical"`
	Lookup    string `json:"lookup"`
}

type ConsistencyReport struct {
	ProductID     int64      `json:"product_id"`
	Consistent    bool       `json:"consistent"`
	Mismatches    []Mismatch `json:"mismatches,omitempty"`
	LookupMissing bool       `json:"lookup_missing,omitempty"`
}

// MetadataOutput backs GET /products/:id/metadata.
type MetadataOutput struct {
	ProductID      int64              `json:"product_id"`
	DynamicPricing bool               `json:"dynamic_pricing"`
	CurrencyType   string             `json:"currency_type,omitempty"`
	BasePrice      float64            `json:"base_price,omitempty"`
	Markup         float64            `json:"markup,omitempty"`
	MarkupType     string             `json:"markup_type,omitempty"`
	Consistency    *ConsistencyReport `json:"consistency,omitempty"`
}
