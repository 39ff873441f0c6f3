package repository

import (
	"fmt"
	"slices"
	"time"

	"PriceCast/internal/domain/models"
	domrepo "PriceCast/internal/domain/repository"
	applogger "PriceCast/pkg/logger"
)

// MemorySeriesStore holds the full observation table in memory, grouped by ticker and
// sorted ascending by date. It is read-only after construction.
type MemorySeriesStore struct {
	byTicker map[string][]models.PriceObservation
	tickers  []string
	rows     int
}

var _ domrepo.SeriesStore = (*MemorySeriesStore)(nil)

// NewMemorySeriesStore groups and sorts obs. A second observation for the same
// ticker and day fails with ErrDuplicateObservation.
func NewMemorySeriesStore(obs []models.PriceObservation, l *applogger.Logger) (*MemorySeriesStore, error) {
	s := &MemorySeriesStore{byTicker: make(map[string][]models.PriceObservation)}
	for _, o := range obs {
		o.Date = models.TruncateDay(o.Date)
		s.byTicker[o.Ticker] = append(s.byTicker[o.Ticker], o)
	}

	for t, series := range s.byTicker {
		slices.SortStableFunc(series, func(a, b models.PriceObservation) int {
			return a.Date.Compare(b.Date)
		})
		for i := 1; i < len(series); i++ {
			if series[i].SameDay(series[i-1].Date) {
				return nil, fmt.Errorf("%w: ticker %s on %s", models.ErrDuplicateObservation,
					t, series[i].Date.Format(time.DateOnly))
			}
		}
		s.tickers = append(s.tickers, t)
		s.rows += len(series)
	}
	slices.Sort(s.tickers)

	if l != nil {
		l.Info("observations loaded",
			applogger.Int("rows", s.rows),
			applogger.Int("tickers", len(s.tickers)))
	}
	return s, nil
}

func (s *MemorySeriesStore) Tickers() []string { return slices.Clone(s.tickers) }

func (s *MemorySeriesStore) Len() int { return s.rows }

func (s *MemorySeriesStore) Series(ticker string) ([]models.PriceObservation, bool) {
	series, ok := s.byTicker[ticker]
	if !ok {
		return nil, false
	}
	return slices.Clone(series), true
}

// Recent returns up to n of the newest observations, newest first.
func (s *MemorySeriesStore) Recent(ticker string, n int) []models.PriceObservation {
	series := s.byTicker[ticker]
	if n > len(series) {
		n = len(series)
	}
	if n <= 0 {
		return nil
	}
	out := make([]models.PriceObservation, n)
	for i := range out {
		out[i] = series[len(series)-1-i]
	}
	return out
}

// Lookup finds the observation for ticker on the calendar day of date.
func (s *MemorySeriesStore) Lookup(ticker string, date time.Time) (models.PriceObservation, bool) {
	series := s.byTicker[ticker]
	day := models.TruncateDay(date)
	i, found := slices.BinarySearchFunc(series, day, func(o models.PriceObservation, d time.Time) int {
		return o.Date.Compare(d)
	})
	if !found {
		return models.PriceObservation{}, false
	}
	return series[i], true
}

func (s *MemorySeriesStore) Latest(ticker string) (models.PriceObservation, bool) {
	series := s.byTicker[ticker]
	if len(series) == 0 {
		return models.PriceObservation{}, false
	}
	return series[len(series)-1], true
}
