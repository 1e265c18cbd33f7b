package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/niksmo/luxe-storefront/internal/core/domain"
	"github.com/niksmo/luxe-storefront/internal/core/port"
	"github.com/niksmo/luxe-storefront/internal/core/service"
)

// GET v1/products?price_min=&price_max=&popularity_min=&popularity_max= (200 OK, 400 Bad request, 503 Service unavailable)
// GET v1/products/{name} (200 OK, 404 Not found, 503 Service unavailable)
// GET v1/gold-price (200 OK)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to write response body", "err", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

// writeLookupError maps catalog lookup failures to a response.
func writeLookupError(w http.ResponseWriter, log *slog.Logger, err error) {
	if service.IsNotFound(err) {
		http.Error(w, "product not found", http.StatusNotFound)
		return
	}
	http.Error(w, "catalog is unavailable", http.StatusServiceUnavailable)
	log.Error("failed to get product", "err", err)
}

type CatalogHandler struct {
	catalog port.ProductsLister
}

func RegisterCatalog(mux *http.ServeMux, catalog port.ProductsLister) {
	if catalog == nil {
		panic("RegisterCatalog: catalog is nil") // develop mistake
	}
	h := CatalogHandler{catalog}
	mux.HandleFunc("GET /v1/products", h.GetProducts)
	mux.HandleFunc("GET /v1/products/{name}", h.GetProduct)
}

func (h CatalogHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetProducts"
	log := slog.With("op", op)

	filters, err := parseFilterOptions(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		log.Warn("invalid filters", "err", err)
		return
	}

	ps, err := h.catalog.ListProducts(r.Context(), filters)
	if err != nil {
		writeJSON(w, log, http.StatusServiceUnavailable, ProductList{
			Products:      []PricedProduct{},
			FiltersActive: filters.IsActive(),
			Error:         "catalog is unavailable",
		})
		log.Error("failed to list products", "err", err)
		return
	}

	res := ProductList{
		Products:      make([]PricedProduct, len(ps)),
		FiltersActive: filters.IsActive(),
	}
	for i, p := range ps {
		res.Products[i] = fromDomainPricedProduct(p)
	}
	writeJSON(w, log, http.StatusOK, res)
}

func (h CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetProduct"
	log := slog.With("op", op)

	p, err := h.catalog.GetProduct(r.Context(), r.PathValue("name"))
	if err != nil {
		writeLookupError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, fromDomainPricedProduct(p))
}

// parseFilterOptions builds a range for each bounded dimension. A missing
// bound of a present range takes the default one.
func parseFilterOptions(q url.Values) (domain.FilterOptions, error) {
	var filters domain.FilterOptions

	price, err := parseRange(q, "price_min", "price_max", 0, domain.DefaultMaxPrice)
	if err != nil {
		return domain.FilterOptions{}, err
	}
	filters.PriceRange = price

	popularity, err := parseRange(q, "popularity_min", "popularity_max", 0, 1)
	if err != nil {
		return domain.FilterOptions{}, err
	}
	filters.PopularityRange = popularity

	return filters, nil
}

func parseRange(
	q url.Values, minKey, maxKey string, minDefault, maxDefault float64,
) (*domain.Range, error) {
	if !q.Has(minKey) && !q.Has(maxKey) {
		return nil, nil
	}

	r := domain.Range{minDefault, maxDefault}
	for i, key := range []string{minKey, maxKey} {
		if !q.Has(key) {
			continue
		}
		v, err := strconv.ParseFloat(q.Get(key), 64)
		if err != nil {
			return nil, errors.New("invalid " + key)
		}
		r[i] = v
	}
	return &r, nil
}

type goldPriceReader interface {
	port.GoldPriceSnapshotter
	port.GoldPriceSource
}

type GoldPriceHandler struct {
	goldPrice goldPriceReader
}

func RegisterGoldPrice(mux *http.ServeMux, goldPrice goldPriceReader) {
	if goldPrice == nil {
		panic("RegisterGoldPrice: gold price is nil") // develop mistake
	}
	h := GoldPriceHandler{goldPrice}
	mux.HandleFunc("GET /v1/gold-price", h.GetGoldPrice)
}

func (h GoldPriceHandler) GetGoldPrice(w http.ResponseWriter, r *http.Request) {
	const op = "GoldPriceHandler.GetGoldPrice"
	log := slog.With("op", op)

	res := fromDomainGoldPrice(h.goldPrice.Snapshot())
	res.Rate = h.goldPrice.GoldPrice()
	writeJSON(w, log, http.StatusOK, res)
}
