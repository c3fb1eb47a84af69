package transfer

import (
	"strconv"

	"github.com/digitalogic/catalog/internal/products"
	"github.com/digitalogic/catalog/pkg/parser"
)

const (
	FormatCSV   = "csv"
	FormatJSON  = "json"
	FormatExcel = "excel"
)

// Record is one exported product row. Everything is a string so an import
// can distinguish a blank cell (leave the field untouched) from an explicit
// zero.
type Record struct {
	ID             string `csv:"ID" json:"id"`
	Name           string `csv:"Name" json:"name"`
	SKU            string `csv:"SKU" json:"sku"`
	Type           string `csv:"Type" json:"type"`
	RegularPrice   string `csv:"Regular Price" json:"regular_price"`
	SalePrice      string `csv:"Sale Price" json:"sale_price"`
	StockQuantity  string `csv:"Stock Quantity" json:"stock_quantity"`
	StockStatus    string `csv:"Stock Status" json:"stock_status"`
	Weight         string `csv:"Weight" json:"weight"`
	Length         string `csv:"Length" json:"length"`
	Width          string `csv:"Width" json:"width"`
	Height         string `csv:"Height" json:"height"`
	DynamicPricing string `csv:"Dynamic Pricing" json:"dynamic_pricing"`
	CurrencyType   string `csv:"Currency Type" json:"currency_type"`
	BasePrice      string `csv:"Base Price" json:"base_price"`
	Markup         string `csv:"Markup" json:"markup"`
	MarkupType     string `csv:"Markup Type" json:"markup_type"`
}

// headers is the column order shared by the CSV and spreadsheet writers.
var headers = []string{
	"ID", "Name", "SKU", "Type", "Regular Price", "Sale Price",
	"Stock Quantity", "Stock Status", "Weight", "Length", "Width", "Height",
	"Dynamic Pricing", "Currency Type", "Base Price", "Markup", "Markup Type",
}

func (r Record) values() []string {
	return []string{
		r.ID, r.Name, r.SKU, r.Type, r.RegularPrice, r.SalePrice,
		r.StockQuantity, r.StockStatus, r.Weight, r.Length, r.Width, r.Height,
		r.DynamicPricing, r.CurrencyType, r.BasePrice, r.Markup, r.MarkupType,
	}
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatDimension(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func recordFrom(p products.Product) Record {
	r := Record{
		ID:            strconv.FormatInt(p.ID, 10),
		Name:          p.Name,
		SKU:           p.SKU,
		Type:          p.Type,
		RegularPrice:  formatPrice(p.RegularPrice),
		StockQuantity: strconv.Itoa(p.StockQuantity),
		StockStatus:   p.StockStatus,
		Weight:        formatDimension(p.Weight),
		Length:        formatDimension(p.Length),
		Width:         formatDimension(p.Width),
		Height:        formatDimension(p.Height),
	}
	if p.SalePrice != nil && *p.SalePrice > 0 {
		r.SalePrice = formatPrice(*p.SalePrice)
	}

	if p.DynamicPricing {
		r.DynamicPricing = "yes"
		r.CurrencyType = p.CurrencyType
		r.BasePrice = formatPrice(p.BasePrice)
		r.Markup = strconv.FormatFloat(p.Markup, 'f', -1, 64)
		r.MarkupType = p.MarkupType
	} else {
		r.DynamicPricing = "no"
	}
	return r
}

// updateFrom maps the non-blank cells of a record onto an update. The
// dynamic-pricing columns are applied only when the record explicitly marks
// pricing as enabled; an imported "no" turns it off without touching the
// stored pricing parameters.
func updateFrom(r Record) products.UpdateInput {
	input := products.UpdateInput{
		Name:          parser.StringPtr(r.Name),
		SKU:           parser.StringPtr(r.SKU),
		RegularPrice:  parser.FloatPtr(r.RegularPrice),
		SalePrice:     parser.FloatPtr(r.SalePrice),
		StockQuantity: parser.IntPtr(r.StockQuantity),
		StockStatus:   parser.StringPtr(r.StockStatus),
		Weight:        parser.FloatPtr(r.Weight),
		Length:        parser.FloatPtr(r.Length),
		Width:         parser.FloatPtr(r.Width),
		Height:        parser.FloatPtr(r.Height),
	}

	switch r.DynamicPricing {
	case "yes":
		enabled := true
		input.DynamicPricing = &enabled
		input.CurrencyType = parser.StringPtr(r.CurrencyType)
		input.BasePrice = parser.FloatPtr(r.BasePrice)
		input.Markup = parser.FloatPtr(r.Markup)
		input.MarkupType = parser.StringPtr(r.MarkupType)
	case "no":
		enabled := false
		input.DynamicPricing = &enabled
	}
	return input
}

type ImportError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult accumulates per-row outcomes; a bad row never aborts the rest
// of the file.
type ImportResult struct {
	Success int           `json:"success"`
	Failed  int           `json:"failed"`
	Errors  []ImportError `json:"errors"`
}

type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}
