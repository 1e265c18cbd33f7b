package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProduct(name string, score, weight float64) Product {
	return Product{
		Name:            name,
		PopularityScore: score,
		Weight:          weight,
		Images: ProductImages{
			Yellow: name + "-yellow.jpg",
			Rose:   name + "-rose.jpg",
			White:  name + "-white.jpg",
		},
	}
}

func testCatalog() []Product {
	return []Product{
		testProduct("Ring A", 0.5, 10),  // 975 @ 65
		testProduct("Ring B", 0.9, 2.5), // 309 @ 65
		testProduct("Ring C", 0.2, 4),   // 312 @ 65
		testProduct("Ring D", 0.7, 6.1), // 674 @ 65
	}
}

func names(ps []Product) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return out
}

func TestFilterProducts(t *testing.T) {
	const goldPrice = 65

	t.Run("NoFilters", func(t *testing.T) {
		got := FilterProducts(testCatalog(), FilterOptions{}, goldPrice)
		assert.Equal(t, names(testCatalog()), names(got))
	})

	t.Run("Defaults", func(t *testing.T) {
		got := FilterProducts(testCatalog(), DefaultFilterOptions(), goldPrice)
		assert.Len(t, got, 4)
	})

	t.Run("PriceRangeInclusive", func(t *testing.T) {
		f := FilterOptions{PriceRange: &Range{309, 674}}
		got := FilterProducts(testCatalog(), f, goldPrice)
		assert.Equal(t, []string{"Ring B", "Ring C", "Ring D"}, names(got))
	})

	t.Run("PopularityRangeInclusive", func(t *testing.T) {
		f := FilterOptions{PopularityRange: &Range{0.5, 0.7}}
		got := FilterProducts(testCatalog(), f, goldPrice)
		assert.Equal(t, []string{"Ring A", "Ring D"}, names(got))
	})

	t.Run("Conjunctive", func(t *testing.T) {
		f := FilterOptions{
			PriceRange:      &Range{300, 700},
			PopularityRange: &Range{0.6, 1},
		}
		got := FilterProducts(testCatalog(), f, goldPrice)
		assert.Equal(t, []string{"Ring B", "Ring D"}, names(got))
	})

	t.Run("ZeroPriceRange", func(t *testing.T) {
		f := FilterOptions{PriceRange: &Range{0, 0}}
		got := FilterProducts(testCatalog(), f, goldPrice)
		assert.Empty(t, got)
	})

	t.Run("EmptyRange", func(t *testing.T) {
		f := FilterOptions{PopularityRange: &Range{0.8, 0.2}}
		got := FilterProducts(testCatalog(), f, goldPrice)
		assert.Empty(t, got)
	})

	t.Run("UsesGivenRate", func(t *testing.T) {
		f := FilterOptions{PriceRange: &Range{0, 1000}}
		assert.Len(t, FilterProducts(testCatalog(), f, 65), 4)
		// Ring A: 1.5 * 10 * 70 = 1050
		assert.Len(t, FilterProducts(testCatalog(), f, 70), 3)
	})

	t.Run("InputUntouched", func(t *testing.T) {
		in := testCatalog()
		f := FilterOptions{PopularityRange: &Range{0.9, 1}}
		got := FilterProducts(in, f, goldPrice)
		require.Len(t, got, 1)

		got[0].Name = "changed"
		assert.Equal(t, names(testCatalog()), names(in))
	})
}

func TestFilterOptionsIsActive(t *testing.T) {
	assert.False(t, FilterOptions{}.IsActive())
	assert.False(t, DefaultFilterOptions().IsActive())
	assert.True(t, FilterOptions{PriceRange: &Range{100, DefaultMaxPrice}}.IsActive())
	assert.True(t, FilterOptions{PopularityRange: &Range{0, 0.5}}.IsActive())
}

func TestProductValidate(t *testing.T) {
	assert.NoError(t, testProduct("Ring A", 0.5, 10).Validate())

	invalid := map[string]Product{
		"EmptyName":     testProduct("", 0.5, 10),
		"ScoreAboveOne": testProduct("Ring", 1.2, 10),
		"NegativeScore": testProduct("Ring", -0.1, 10),
		"ZeroWeight":    testProduct("Ring", 0.5, 0),
	}
	noImage := testProduct("Ring", 0.5, 1)
	noImage.Images.Rose = ""
	invalid["MissingImage"] = noImage

	for name, p := range invalid {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, p.Validate(), ErrInvalidProduct)
		})
	}
}

func TestParseGoldColor(t *testing.T) {
	for _, c := range GoldColors {
		got, err := ParseGoldColor(string(c))
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	_, err := ParseGoldColor("platinum")
	assert.ErrorIs(t, err, ErrInvalidColor)
}

func TestFindProduct(t *testing.T) {
	p, err := FindProduct(testCatalog(), "Ring C")
	require.NoError(t, err)
	assert.Equal(t, 0.2, p.PopularityScore)

	_, err = FindProduct(testCatalog(), "Ring Z")
	assert.ErrorIs(t, err, ErrProductNotFound)
}
