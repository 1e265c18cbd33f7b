package domain

import "time"

// A GoldPriceSnapshot is the gold rate as last observed by the tracker.
//
// Rate keeps the last successfully fetched value when a refresh fails,
// Err carries that failure until the next successful refresh.
type GoldPriceSnapshot struct {
	Rate      float64
	Fetched   bool
	Loading   bool
	Err       error
	UpdatedAt time.Time
}
