package feed

import "github.com/niksmo/luxe-storefront/internal/core/domain"

type (
	Product struct {
		Name            string        `json:"name"`
		PopularityScore float64       `json:"popularityScore"`
		Weight          float64       `json:"weight"`
		Images          ProductImages `json:"images"`
	}

	ProductImages struct {
		Yellow string `json:"yellow"`
		Rose   string `json:"rose"`
		White  string `json:"white"`
	}
)

type GoldPrice struct {
	Price float64 `json:"price"`
}

func toDomain(ps []Product) []domain.Product {
	domainPs := make([]domain.Product, len(ps))
	for i, p := range ps {
		domainPs[i] = domain.Product{
			Name:            p.Name,
			PopularityScore: p.PopularityScore,
			Weight:          p.Weight,
			Images: domain.ProductImages{
				Yellow: p.Images.Yellow,
				Rose:   p.Images.Rose,
				White:  p.Images.White,
			},
		}
	}
	return domainPs
}
