package pricing

import (
	"math"

	"github.com/digitalogic/catalog/internal/products"
)

const (
	MarkupPercentage = "percentage"
	MarkupFixed      = "fixed"
)

// Round2 rounds to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Calculate returns the selling price for a product. When dynamic pricing is
// not applicable the current regular price passes through untouched:
// pricing must be enabled, a currency selected, the base price positive and
// the exchange rate positive. Otherwise the price is base price times rate,
// plus the markup (percentage of the converted value or a fixed amount),
// rounded to cents.
func Calculate(p products.Product, rate float64) float64 {
	if !p.DynamicPricing || p.CurrencyType == "" || p.BasePrice <= 0 || rate <= 0 {
		return p.RegularPrice
	}

	price := p.BasePrice * rate
	switch p.MarkupType {
	case MarkupPercentage:
		price *= 1 + p.Markup/100
	default:
		price += p.Markup
	}

	return Round2(price)
}
