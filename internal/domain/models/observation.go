package models

import "time"

// PriceObservation is one daily OHLCV record for a ticker.
// Values are immutable once loaded into a series store.
type PriceObservation struct {
	Ticker string
	Sector string
	Date   time.Time // UTC midnight
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// SameDay reports whether the observation falls on the calendar day of d.
func (o PriceObservation) SameDay(d time.Time) bool {
	return o.Date.Equal(TruncateDay(d))
}

// TruncateDay drops the clock part of t and returns UTC midnight of its calendar day.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
