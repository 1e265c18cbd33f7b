package domain

import "slices"

// DefaultMaxPrice is the upper price bound the catalog filter starts with.
const DefaultMaxPrice = 10000

type Range [2]float64

func (r Range) Min() float64 { return r[0] }
func (r Range) Max() float64 { return r[1] }

func (r Range) Contains(v float64) bool {
	return v >= r[0] && v <= r[1]
}

// FilterOptions holds inclusive bounds. A nil range does not filter.
type FilterOptions struct {
	PriceRange      *Range
	PopularityRange *Range
}

func DefaultFilterOptions() FilterOptions {
	return FilterOptions{
		PriceRange:      &Range{0, DefaultMaxPrice},
		PopularityRange: &Range{0, 1},
	}
}

// IsActive reports whether f narrows the catalog compared to the defaults.
func (f FilterOptions) IsActive() bool {
	if r := f.PriceRange; r != nil && (r.Min() > 0 || r.Max() < DefaultMaxPrice) {
		return true
	}
	if r := f.PopularityRange; r != nil && (r.Min() > 0 || r.Max() < 1) {
		return true
	}
	return false
}

// FilterProducts returns the products whose derived price and popularity
// fall within filters. Every price in one call is derived from goldPrice.
// The input slice is left untouched.
func FilterProducts(
	products []Product, filters FilterOptions, goldPrice float64,
) []Product {
	filtered := make([]Product, 0, len(products))
	for _, p := range products {
		if r := filters.PriceRange; r != nil {
			price := CalculatePrice(p.PopularityScore, p.Weight, goldPrice)
			if !r.Contains(float64(price)) {
				continue
			}
		}
		if r := filters.PopularityRange; r != nil {
			if !r.Contains(p.PopularityScore) {
				continue
			}
		}
		filtered = append(filtered, p)
	}
	return slices.Clip(filtered)
}
