package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/niksmo/luxe-storefront/internal/core/domain"
	"github.com/niksmo/luxe-storefront/internal/core/port"
	"github.com/niksmo/luxe-storefront/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

const testRate = 65

type MockCatalog struct {
	products []domain.Product
	err      error
}

func (c MockCatalog) ListProducts(
	_ context.Context, filters domain.FilterOptions,
) ([]domain.PricedProduct, error) {
	if c.err != nil {
		return nil, c.err
	}
	ps := domain.FilterProducts(c.products, filters, testRate)
	res := make([]domain.PricedProduct, len(ps))
	for i, p := range ps {
		res[i] = p.WithPrice(testRate)
	}
	return res, nil
}

func (c MockCatalog) GetProduct(
	_ context.Context, name string,
) (domain.PricedProduct, error) {
	if c.err != nil {
		return domain.PricedProduct{}, c.err
	}
	p, err := domain.FindProduct(c.products, name)
	if err != nil {
		return domain.PricedProduct{}, fmt.Errorf("MockCatalog.GetProduct: %w", err)
	}
	return p.WithPrice(testRate), nil
}

type MockGoldPrice struct {
	snapshot domain.GoldPriceSnapshot
	rate     float64
}

func (g MockGoldPrice) Snapshot() domain.GoldPriceSnapshot { return g.snapshot }
func (g MockGoldPrice) GoldPrice() float64                 { return g.rate }

type nopActivity struct{}

func (nopActivity) ProduceActivity(context.Context, domain.Activity) error { return nil }

// stalledActivity waits for the publish deadline like an unreachable broker.
type stalledActivity struct{}

func (stalledActivity) ProduceActivity(ctx context.Context, _ domain.Activity) error {
	<-ctx.Done()
	return ctx.Err()
}

// --- Helpers ---

func testProduct(name string, score, weight float64) domain.Product {
	return domain.Product{
		Name:            name,
		PopularityScore: score,
		Weight:          weight,
		Images: domain.ProductImages{
			Yellow: name + "-yellow.jpg",
			Rose:   name + "-rose.jpg",
			White:  name + "-white.jpg",
		},
	}
}

var testProducts = []domain.Product{
	testProduct("Ring A", 0.5, 10),  // 975
	testProduct("Ring B", 0.9, 2.5), // 309
}

type testServer struct {
	handler   http.Handler
	cart      *service.CartStore
	favorites *service.FavoritesStore
}

func newTestServer(catalog MockCatalog) testServer {
	return newTestServerWithProducer(catalog, nopActivity{})
}

func newTestServerWithProducer(
	catalog MockCatalog, producer port.ActivityProducer,
) testServer {
	queue := service.NewActivityQueue(
		service.ActivityQueueConfig{Producer: producer},
	)
	cart := service.NewCartStore(queue)
	favorites := service.NewFavoritesStore(queue)

	mux := http.NewServeMux()
	RegisterCatalog(mux, catalog)
	RegisterCart(mux, cart, catalog)
	RegisterFavorites(mux, favorites, catalog)
	RegisterGoldPrice(mux, MockGoldPrice{rate: testRate})

	return testServer{AllowJSON(mux), cart, favorites}
}

func (s testServer) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

// --- Tests ---

func TestHandleGetProducts(t *testing.T) {
	testCases := []struct {
		name               string
		query              string
		catalog            MockCatalog
		expectedStatusCode int
		expectedNames      []string
		expectedActive     bool
	}{
		{
			name:               "No filters",
			catalog:            MockCatalog{products: testProducts},
			expectedStatusCode: http.StatusOK,
			expectedNames:      []string{"Ring A", "Ring B"},
		},
		{
			name:               "Price max only",
			query:              "?price_max=500",
			catalog:            MockCatalog{products: testProducts},
			expectedStatusCode: http.StatusOK,
			expectedNames:      []string{"Ring B"},
			expectedActive:     true,
		},
		{
			name:               "Popularity range",
			query:              "?popularity_min=0.6&popularity_max=1",
			catalog:            MockCatalog{products: testProducts},
			expectedStatusCode: http.StatusOK,
			expectedNames:      []string{"Ring B"},
			expectedActive:     true,
		},
		{
			name:               "Default bounds are inactive",
			query:              "?price_min=0&price_max=10000",
			catalog:            MockCatalog{products: testProducts},
			expectedStatusCode: http.StatusOK,
			expectedNames:      []string{"Ring A", "Ring B"},
		},
		{
			name:               "Inverted range",
			query:              "?price_min=1000&price_max=10",
			catalog:            MockCatalog{products: testProducts},
			expectedStatusCode: http.StatusOK,
			expectedNames:      []string{},
			expectedActive:     true,
		},
		{
			name:               "Catalog unavailable",
			catalog:            MockCatalog{err: errors.New("feed is down")},
			expectedStatusCode: http.StatusServiceUnavailable,
			expectedNames:      []string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(tc.catalog)
			rec := s.do(http.MethodGet, "/v1/products"+tc.query, "")

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			resp := decode[ProductList](t, rec)
			names := make([]string, len(resp.Products))
			for i, p := range resp.Products {
				names[i] = p.Name
			}
			assert.Equal(t, tc.expectedNames, names)
			assert.Equal(t, tc.expectedActive, resp.FiltersActive)
		})
	}

	t.Run("Invalid bound", func(t *testing.T) {
		s := newTestServer(MockCatalog{products: testProducts})
		rec := s.do(http.MethodGet, "/v1/products?price_min=cheap", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleGetProduct(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		s := newTestServer(MockCatalog{products: testProducts})
		rec := s.do(http.MethodGet, "/v1/products/Ring%20A", "")
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decode[PricedProduct](t, rec)
		assert.Equal(t, "Ring A", resp.Name)
		assert.Equal(t, int64(975), resp.Price)
		assert.Equal(t, "$975", resp.FormattedPrice)
		assert.Equal(t, 2.5, resp.Stars)
		assert.Equal(t, "Ring A-rose.jpg", resp.Images.Rose)
	})

	t.Run("Not found", func(t *testing.T) {
		s := newTestServer(MockCatalog{products: testProducts})
		rec := s.do(http.MethodGet, "/v1/products/Ring%20Z", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "product not found\n", rec.Body.String())
	})

	t.Run("Catalog unavailable", func(t *testing.T) {
		s := newTestServer(MockCatalog{err: errors.New("feed is down")})
		rec := s.do(http.MethodGet, "/v1/products/Ring%20A", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestHandleCart(t *testing.T) {
	s := newTestServer(MockCatalog{products: testProducts})

	rec := s.do(http.MethodGet, "/v1/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cart := decode[Cart](t, rec)
	assert.Empty(t, cart.Items)
	assert.Equal(t, "$0", cart.FormattedTotal)

	t.Run("Add defaults to one piece", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/v1/cart/items", `{"name":"Ring A","color":"rose"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		cart := decode[Cart](t, rec)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, CartItem{
			Name:           "Ring A",
			Color:          "rose",
			Image:          "Ring A-rose.jpg",
			Quantity:       1,
			Price:          975,
			FormattedPrice: "$975",
			Subtotal:       975,
		}, cart.Items[0])
		assert.Equal(t, int64(975), cart.Total)
	})

	t.Run("Add merges same key", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/v1/cart/items", `{"name":"Ring A","color":"rose","quantity":2}`)
		require.Equal(t, http.StatusOK, rec.Code)

		cart := decode[Cart](t, rec)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, 3, cart.Items[0].Quantity)
		assert.Equal(t, 3, cart.ItemCount)
		assert.Equal(t, "$2,925", cart.FormattedTotal)
	})

	t.Run("Add other color", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/v1/cart/items", `{"name":"Ring B","color":"white"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		cart := decode[Cart](t, rec)
		assert.Len(t, cart.Items, 2)
		assert.Equal(t, int64(2925+309), cart.Total)
	})

	t.Run("Add rejects", func(t *testing.T) {
		testCases := []struct {
			name string
			body string
			code int
		}{
			{"Zero quantity", `{"name":"Ring A","color":"rose","quantity":0}`, http.StatusBadRequest},
			{"Overflowing quantity", `{"name":"Ring A","color":"rose","quantity":9223372036854775807}`, http.StatusBadRequest},
			{"Unknown color", `{"name":"Ring A","color":"green"}`, http.StatusBadRequest},
			{"Unknown product", `{"name":"Ring Z","color":"rose"}`, http.StatusNotFound},
			{"Malformed body", `{"name":`, http.StatusBadRequest},
		}
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				before := s.cart.State()
				rec := s.do(http.MethodPost, "/v1/cart/items", tc.body)
				assert.Equal(t, tc.code, rec.Code)
				assert.Equal(t, before, s.cart.State())
			})
		}
	})

	t.Run("Update quantity", func(t *testing.T) {
		rec := s.do(http.MethodPatch, "/v1/cart/items/Ring%20A/rose", `{"quantity":5}`)
		require.Equal(t, http.StatusOK, rec.Code)

		cart := decode[Cart](t, rec)
		assert.Equal(t, 5, cart.Items[0].Quantity)
		assert.Equal(t, int64(5*975+309), cart.Total)
	})

	t.Run("Update quantity rejects zero", func(t *testing.T) {
		rec := s.do(http.MethodPatch, "/v1/cart/items/Ring%20A/rose", `{"quantity":0}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		item, ok := s.cart.State().Item("Ring A", domain.Rose)
		require.True(t, ok)
		assert.Equal(t, 5, item.Quantity)
	})

	t.Run("Update quantity rejects overflow", func(t *testing.T) {
		rec := s.do(http.MethodPatch, "/v1/cart/items/Ring%20A/rose", `{"quantity":94599979618745987}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, int64(5*975+309), s.cart.State().Total)
	})

	t.Run("Update absent item", func(t *testing.T) {
		rec := s.do(http.MethodPatch, "/v1/cart/items/Ring%20A/yellow", `{"quantity":2}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Remove item", func(t *testing.T) {
		rec := s.do(http.MethodDelete, "/v1/cart/items/Ring%20B/white", "")
		require.Equal(t, http.StatusOK, rec.Code)

		cart := decode[Cart](t, rec)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, int64(5*975), cart.Total)
	})

	t.Run("Remove absent item", func(t *testing.T) {
		rec := s.do(http.MethodDelete, "/v1/cart/items/Ring%20B/white", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[Cart](t, rec).Items, 1)
	})

	t.Run("Remove with unknown color", func(t *testing.T) {
		rec := s.do(http.MethodDelete, "/v1/cart/items/Ring%20A/green", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Clear", func(t *testing.T) {
		rec := s.do(http.MethodDelete, "/v1/cart", "")
		require.Equal(t, http.StatusOK, rec.Code)

		cart := decode[Cart](t, rec)
		assert.Empty(t, cart.Items)
		assert.Zero(t, cart.Total)
		assert.Zero(t, cart.ItemCount)
	})
}

func TestCartDoesNotWaitForBroker(t *testing.T) {
	s := newTestServerWithProducer(
		MockCatalog{products: testProducts}, stalledActivity{},
	)
	handler := http.TimeoutHandler(s.handler, 200*time.Millisecond, "timeout")

	req := httptest.NewRequest(
		http.MethodPost, "/v1/cart/items",
		strings.NewReader(`{"name":"Ring A","color":"rose","quantity":2}`),
	)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(2*975), decode[Cart](t, rec).Total)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(
		http.MethodPost, "/v1/favorites/Ring%20B/toggle", nil,
	))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleFavorites(t *testing.T) {
	s := newTestServer(MockCatalog{products: testProducts})

	t.Run("Add", func(t *testing.T) {
		rec := s.do(http.MethodPut, "/v1/favorites/Ring%20B", "")
		require.Equal(t, http.StatusOK, rec.Code)

		favs := decode[Favorites](t, rec)
		require.Len(t, favs.Items, 1)
		assert.Equal(t, "Ring B", favs.Items[0].Name)
	})

	t.Run("Add is idempotent", func(t *testing.T) {
		rec := s.do(http.MethodPut, "/v1/favorites/Ring%20B", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[Favorites](t, rec).Items, 1)
	})

	t.Run("Add unknown product", func(t *testing.T) {
		rec := s.do(http.MethodPut, "/v1/favorites/Ring%20Z", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Toggle", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/v1/favorites/Ring%20A/toggle", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, FavoriteToggle{Name: "Ring A", Favorite: true}, decode[FavoriteToggle](t, rec))

		rec = s.do(http.MethodPost, "/v1/favorites/Ring%20A/toggle", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, FavoriteToggle{Name: "Ring A", Favorite: false}, decode[FavoriteToggle](t, rec))
	})

	t.Run("List", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/v1/favorites", "")
		require.Equal(t, http.StatusOK, rec.Code)
		favs := decode[Favorites](t, rec)
		require.Len(t, favs.Items, 1)
		assert.Equal(t, "Ring B", favs.Items[0].Name)
	})

	t.Run("Remove", func(t *testing.T) {
		rec := s.do(http.MethodDelete, "/v1/favorites/Ring%20B", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, decode[Favorites](t, rec).Items)
	})

	t.Run("Remove absent", func(t *testing.T) {
		rec := s.do(http.MethodDelete, "/v1/favorites/Ring%20B", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, decode[Favorites](t, rec).Items)
	})
}

func TestHandleGoldPrice(t *testing.T) {
	t.Run("Before first fetch", func(t *testing.T) {
		mux := http.NewServeMux()
		RegisterGoldPrice(mux, MockGoldPrice{
			snapshot: domain.GoldPriceSnapshot{Loading: true},
			rate:     65,
		})

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/gold-price", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decode[GoldPrice](t, rec)
		assert.Equal(t, GoldPrice{Rate: 65, Loading: true}, resp)
	})

	t.Run("Failed refresh", func(t *testing.T) {
		updatedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		mux := http.NewServeMux()
		RegisterGoldPrice(mux, MockGoldPrice{
			snapshot: domain.GoldPriceSnapshot{
				Rate:      70.5,
				Fetched:   true,
				Err:       errors.New("timeout"),
				UpdatedAt: updatedAt,
			},
			rate: 70.5,
		})

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/gold-price", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decode[GoldPrice](t, rec)
		assert.Equal(t, 70.5, resp.Rate)
		assert.True(t, resp.Fetched)
		assert.Equal(t, "gold price is unavailable", resp.Error)
		require.NotNil(t, resp.UpdatedAt)
		assert.True(t, updatedAt.Equal(*resp.UpdatedAt))
	})
}

func TestAllowJSON(t *testing.T) {
	s := newTestServer(MockCatalog{products: testProducts})

	t.Run("Rejects other media types", func(t *testing.T) {
		req := httptest.NewRequest(
			http.MethodPost, "/v1/cart/items",
			strings.NewReader(`{"name":"Ring A","color":"rose"}`),
		)
		req.Header.Set("Content-Type", "text/plain")
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})

	t.Run("Accepts charset parameter", func(t *testing.T) {
		req := httptest.NewRequest(
			http.MethodPost, "/v1/cart/items",
			strings.NewReader(`{"name":"Ring A","color":"rose"}`),
		)
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
