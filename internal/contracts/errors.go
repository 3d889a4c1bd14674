package contracts

import (
	"errors"
	"fmt"
)

// 에러 분류 체계 (per-ticker 실패는 skip-and-continue, run-level 실패만 전파)
var (
	// ErrInsufficientData means there is not enough statement or price
	// history to compute a required quantity. The affected factor or
	// ticker is excluded; never fatal for the run.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrUniverseEmpty means no tickers passed the universe filters for a
	// date. The cycle is skipped and accounted for.
	ErrUniverseEmpty = errors.New("universe empty")

	// ErrMissingPriorSnapshot marks a cold start: no prior ranking
	// snapshot exists. Treated as penalty rank, not as a failure.
	ErrMissingPriorSnapshot = errors.New("missing prior snapshot")
)

// FetchError wraps an external collaborator I/O failure.
// The core treats the ticker as missing-data for that cycle.
type FetchError struct {
	Source string // "naver", "krx", "db", ...
	Ticker string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Ticker == "" {
		return fmt.Sprintf("%s: fetch failed: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("%s: fetch failed for %s: %v", e.Source, e.Ticker, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a FetchError for a source/ticker pair.
func NewFetchError(source, ticker string, err error) *FetchError {
	return &FetchError{Source: source, Ticker: ticker, Err: err}
}
