package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/niksmo/luxe-storefront/internal/core/port"
)

var (
	_ port.GoldPriceFetcher = (*HTTPGoldPriceFetcher)(nil)
	_ port.GoldPriceFetcher = FixedGoldPrice(0)
)

// A HTTPGoldPriceFetcher reads the per-gram gold rate from a JSON endpoint
// answering {"price": <rate>}.
//
// Requests are not retried: the tracker tries again on its next tick.
type HTTPGoldPriceFetcher struct {
	url string
	cl  *http.Client
}

func NewHTTPGoldPriceFetcher(url string, cl *http.Client) HTTPGoldPriceFetcher {
	const op = "NewHTTPGoldPriceFetcher"

	if url == "" {
		panic(op + ": URL is empty") // develop mistake
	}
	if cl == nil {
		cl = &http.Client{Timeout: 10 * time.Second}
	}
	return HTTPGoldPriceFetcher{url, cl}
}

func (f HTTPGoldPriceFetcher) FetchGoldPrice(ctx context.Context) (float64, error) {
	const op = "HTTPGoldPriceFetcher.FetchGoldPrice"

	body, err := get(ctx, f.cl, f.url)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer body.Close()

	var v GoldPrice
	if err := json.NewDecoder(body).Decode(&v); err != nil {
		return 0, fmt.Errorf(
			"%s: %w: malformed gold price: %w", op, ErrFetchFailed, err,
		)
	}
	return v.Price, nil
}

// FixedGoldPrice always reports the same rate.
type FixedGoldPrice float64

func (p FixedGoldPrice) FetchGoldPrice(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return float64(p), nil
}
