package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/niksmo/luxe-storefront/internal/core/domain"
	"github.com/niksmo/luxe-storefront/internal/core/port"
	"github.com/niksmo/luxe-storefront/pkg/retry"
)

var (
	_ port.ProductsReader = (*FileProductsReader)(nil)
	_ port.ProductsReader = (*HTTPProductsReader)(nil)
)

var (
	ErrFetchFailed = errors.New("feed fetch failed")
	ErrBadStatus   = errors.New("unexpected response status")
)

func decodeProducts(r io.Reader) ([]domain.Product, error) {
	var ps []Product
	if err := json.NewDecoder(r).Decode(&ps); err != nil {
		return nil, fmt.Errorf("%w: malformed products: %w", ErrFetchFailed, err)
	}
	return toDomain(ps), nil
}

// A FileProductsReader reads the static product list from a JSON file.
type FileProductsReader struct {
	path string
}

func NewFileProductsReader(path string) FileProductsReader {
	return FileProductsReader{path}
}

func (r FileProductsReader) ReadProducts(ctx context.Context) ([]domain.Product, error) {
	const op = "FileProductsReader.ReadProducts"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrFetchFailed, err)
	}
	defer f.Close()

	ps, err := decodeProducts(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ps, nil
}

// A HTTPProductsReaderConfig used for setup [HTTPProductsReader].
//
// URL is required.
type HTTPProductsReaderConfig struct {
	URL         string
	Client      *http.Client
	MaxAttempts int
	RetryDelay  time.Duration
}

// A HTTPProductsReader requests the product list from a JSON endpoint.
//
// Transport errors and 5xx responses are retried with backoff.
type HTTPProductsReader struct {
	url      string
	cl       *http.Client
	retryCfg retry.RetryConfig
}

func NewHTTPProductsReader(config HTTPProductsReaderConfig) HTTPProductsReader {
	const op = "NewHTTPProductsReader"

	if config.URL == "" {
		panic(op + ": URL is empty") // develop mistake
	}

	cl := config.Client
	if cl == nil {
		cl = &http.Client{Timeout: 10 * time.Second}
	}

	delay := config.RetryDelay
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}

	return HTTPProductsReader{
		url: config.URL,
		cl:  cl,
		retryCfg: retry.RetryConfig{
			MaxAttempts: config.MaxAttempts,
			Backoff:     retry.ExponentialBackoff(delay),
			ShouldRetry: isTemporary,
		},
	}
}

func (r HTTPProductsReader) ReadProducts(ctx context.Context) ([]domain.Product, error) {
	const op = "HTTPProductsReader.ReadProducts"
	log := slog.With("op", op)

	ps, err := retry.DoWithResult(ctx, r.retryCfg, func() ([]domain.Product, error) {
		ps, err := r.request(ctx)
		if err != nil && isTemporary(err) {
			log.Warn("products request failed", "err", err)
		}
		return ps, err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ps, nil
}

func (r HTTPProductsReader) request(ctx context.Context) ([]domain.Product, error) {
	body, err := get(ctx, r.cl, r.url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	return decodeProducts(body)
}

// statusError carries a non-2xx response status.
type statusError struct {
	code int
}

func (e statusError) Error() string {
	return fmt.Sprintf("%s: %d %s", ErrBadStatus, e.code, http.StatusText(e.code))
}

func (e statusError) Unwrap() error {
	return ErrBadStatus
}

func get(ctx context.Context, cl *http.Client, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := cl.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, res.Body)
		res.Body.Close()
		return nil, fmt.Errorf(
			"%w: %w", ErrFetchFailed, statusError{res.StatusCode},
		)
	}
	return res.Body, nil
}

func isTemporary(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var se statusError
	if errors.As(err, &se) {
		return se.code >= 500
	}

	// malformed bodies will not fix themselves
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return false
	}
	return errors.Is(err, ErrFetchFailed)
}
