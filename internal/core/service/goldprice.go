package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/niksmo/luxe-storefront/internal/core/domain"
	"github.com/niksmo/luxe-storefront/internal/core/port"
)

var (
	_ port.GoldPriceSource      = (*GoldPriceTracker)(nil)
	_ port.GoldPriceSnapshotter = (*GoldPriceTracker)(nil)
)

var ErrInvalidGoldPrice = errors.New("invalid gold price")

const (
	DefaultRefreshInterval = 5 * time.Minute
	DefaultFetchTimeout    = 10 * time.Second
)

// A GoldPriceTrackerConfig used for setup [GoldPriceTracker].
//
// Fetcher is required. FallbackRate prices the catalog until the first
// successful fetch.
type GoldPriceTrackerConfig struct {
	Fetcher         port.GoldPriceFetcher
	RefreshInterval time.Duration
	FetchTimeout    time.Duration
	FallbackRate    float64
}

// A GoldPriceTracker keeps the gold rate fresh by refetching it on a fixed
// interval. A failed refresh keeps the previous rate.
type GoldPriceTracker struct {
	fetcher      port.GoldPriceFetcher
	interval     time.Duration
	fetchTimeout time.Duration
	fallbackRate float64
	now          func() time.Time

	mu       sync.RWMutex
	snapshot domain.GoldPriceSnapshot

	running  atomic.Bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewGoldPriceTracker(config GoldPriceTrackerConfig) *GoldPriceTracker {
	const op = "NewGoldPriceTracker"

	if config.Fetcher == nil {
		panic(fmt.Errorf("%s: fetcher is nil", op)) // develop mistake
	}
	if config.RefreshInterval <= 0 {
		config.RefreshInterval = DefaultRefreshInterval
	}
	if config.FetchTimeout <= 0 {
		config.FetchTimeout = DefaultFetchTimeout
	}

	return &GoldPriceTracker{
		fetcher:      config.Fetcher,
		interval:     config.RefreshInterval,
		fetchTimeout: config.FetchTimeout,
		fallbackRate: config.FallbackRate,
		now:          time.Now,
		snapshot:     domain.GoldPriceSnapshot{Loading: true},
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// Run fetches the rate at once and then every refresh interval.
//
// Blocks until ctx is done or Close is called.
func (t *GoldPriceTracker) Run(ctx context.Context) {
	const op = "GoldPriceTracker.Run"
	log := slog.With("op", op)

	if !t.running.CompareAndSwap(false, true) {
		panic(op + ": already running") // develop mistake
	}
	defer close(t.done)

	select {
	case <-t.stop:
		return
	default:
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-t.stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	log.Info("running", "interval", t.interval)

	t.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Info("stopped")
			return
		case <-ticker.C:
			t.refresh(ctx)
		}
	}
}

// Close stops Run and waits for it to return.
func (t *GoldPriceTracker) Close() {
	const op = "GoldPriceTracker.Close"
	log := slog.With("op", op)

	log.Info("closing gold price tracker...")
	t.stopOnce.Do(func() { close(t.stop) })
	if t.running.Load() {
		<-t.done
	}
	log.Info("gold price tracker is closed")
}

// Refresh fetches the rate once, outside the refresh schedule.
func (t *GoldPriceTracker) Refresh(ctx context.Context) {
	t.refresh(ctx)
}

func (t *GoldPriceTracker) refresh(ctx context.Context) {
	const op = "GoldPriceTracker.refresh"
	log := slog.With("op", op)

	t.setLoading()

	rate, err := t.fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			t.setIdle()
			return
		}
		log.Warn("keep previous gold price", "err", err)
		t.setFailed(fmt.Errorf("%s: %w", op, err))
		return
	}

	t.setRate(rate)
	log.Debug("gold price refreshed", "rate", rate)
}

func (t *GoldPriceTracker) fetch(ctx context.Context) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, t.fetchTimeout)
	defer cancel()

	rate, err := t.fetcher.FetchGoldPrice(ctx)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidGoldPrice, rate)
	}
	return rate, nil
}

func (t *GoldPriceTracker) setLoading() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snapshot.Loading = true
}

func (t *GoldPriceTracker) setIdle() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snapshot.Loading = false
}

func (t *GoldPriceTracker) setFailed(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snapshot.Loading = false
	t.snapshot.Err = err
}

func (t *GoldPriceTracker) setRate(rate float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snapshot = domain.GoldPriceSnapshot{
		Rate:      rate,
		Fetched:   true,
		UpdatedAt: t.now(),
	}
}

func (t *GoldPriceTracker) Snapshot() domain.GoldPriceSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshot
}

// GoldPrice returns the last fetched rate, or the fallback rate while no
// fetch has succeeded yet.
func (t *GoldPriceTracker) GoldPrice() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if !t.snapshot.Fetched {
		return t.fallbackRate
	}
	return t.snapshot.Rate
}
