package models

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrModelNotTrained      = errors.New("model not trained")
	ErrUnknownTicker        = errors.New("unknown ticker")
	ErrInsufficientHistory  = errors.New("insufficient history")
	ErrInsufficientData     = errors.New("insufficient data")
	ErrNoObservation        = errors.New("no observation")
	ErrInvalidParams        = errors.New("invalid params")
	ErrDuplicateObservation = errors.New("duplicate observation")
)

// ModelNotTrainedError is returned when a prediction is requested before any training run.
type ModelNotTrainedError struct{}

func (e *ModelNotTrainedError) Error() string {
	return "model not trained: call train first"
}

func (e *ModelNotTrainedError) Is(target error) bool { return target == ErrModelNotTrained }

// UnknownTickerError is returned for tickers absent from the training vocabulary.
type UnknownTickerError struct {
	Ticker string
}

func (e *UnknownTickerError) Error() string {
	return fmt.Sprintf("ticker %q not found in the training data", e.Ticker)
}

func (e *UnknownTickerError) Is(target error) bool { return target == ErrUnknownTicker }

// InsufficientHistoryError is returned when a ticker has fewer observations than the lag window.
// Date is the requested day; it is zero when the ticker has no observations at all.
type InsufficientHistoryError struct {
	Ticker    string
	Date      time.Time
	Required  int
	Available int
}

func (e *InsufficientHistoryError) Error() string {
	if e.Date.IsZero() {
		return fmt.Sprintf("not enough historical data for ticker %q: required=%d available=%d",
			e.Ticker, e.Required, e.Available)
	}
	return fmt.Sprintf("not enough historical data for ticker %q on %s: required=%d available=%d",
		e.Ticker, e.Date.Format(time.DateOnly), e.Required, e.Available)
}

func (e *InsufficientHistoryError) Is(target error) bool { return target == ErrInsufficientHistory }

// InsufficientDataError is returned when feature building yields no usable rows.
type InsufficientDataError struct {
	Tickers int      // tickers considered
	Rows    int      // usable rows produced
	Skipped []string // tickers rejected for short history
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("no usable training rows: tickers=%d rows=%d skipped=%d",
		e.Tickers, e.Rows, len(e.Skipped))
}

func (e *InsufficientDataError) Is(target error) bool { return target == ErrInsufficientData }

// NoObservationError is returned when a historical date has no recorded close.
type NoObservationError struct {
	Ticker string
	Date   time.Time
}

func (e *NoObservationError) Error() string {
	return fmt.Sprintf("no observation for ticker %q on %s", e.Ticker, e.Date.Format(time.DateOnly))
}

func (e *NoObservationError) Is(target error) bool { return target == ErrNoObservation }

// ForecastError reports the first date a forecast series could not be produced for.
type ForecastError struct {
	Date time.Time
	Err  error
}

func (e *ForecastError) Error() string {
	return fmt.Sprintf("forecast stopped at %s: %v", e.Date.Format(time.DateOnly), e.Err)
}

func (e *ForecastError) Unwrap() error { return e.Err }
