package features

import (
	"math"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PriceCast/internal/domain/models"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func series(ticker, sector string, n int) []models.PriceObservation {
	out := make([]models.PriceObservation, n)
	for i := range out {
		c := 100 + float64(i)
		out[i] = models.PriceObservation{
			Ticker: ticker, Sector: sector,
			Date: day0.AddDate(0, 0, i),
			Open: c - 0.5, High: c + 1, Low: c - 1, Close: c,
			Volume: int64(1000 + i),
		}
	}
	return out
}

type fakeStore map[string][]models.PriceObservation

func (f fakeStore) Tickers() []string {
	var out []string
	for t := range f {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

func (f fakeStore) Series(t string) ([]models.PriceObservation, bool) {
	s, ok := f[t]
	return s, ok
}

func (f fakeStore) Recent(string, int) []models.PriceObservation { return nil }

func (f fakeStore) Lookup(string, time.Time) (models.PriceObservation, bool) {
	return models.PriceObservation{}, false
}

func (f fakeStore) Latest(string) (models.PriceObservation, bool) {
	return models.PriceObservation{}, false
}

func (f fakeStore) Len() int { return 0 }

func TestNumericColumnsOrder(t *testing.T) {
	cols := NumericColumns(2)
	assert.Equal(t, []string{
		"close_lag_1", "open_lag_1", "low_lag_1", "high_lag_1", "volume_lag_1",
		"close_lag_2", "open_lag_2", "low_lag_2", "high_lag_2", "volume_lag_2",
		"ma_5", "ma_10", "ma_20", "volatility_5", "daily_return",
	}, cols)
}

func TestSchemaWidth(t *testing.T) {
	vocab := Vocabulary{Tickers: []string{"MSFT", "AAPL", "GOOG"}, Sectors: []string{"Tech", "Comm"}}
	s := NewSchema(30, vocab)

	require.Equal(t, 5*30+5+3+2, s.Len())
	cols := s.Columns()
	assert.Equal(t, "ticker_AAPL", cols[155])
	assert.Equal(t, "ticker_MSFT", cols[157])
	assert.Equal(t, "sector_Comm", cols[158])
	assert.True(t, s.HasTicker("GOOG"))
	assert.False(t, s.HasTicker("TSLA"))
}

func TestSchemaVersionStable(t *testing.T) {
	a := NewSchema(5, Vocabulary{Tickers: []string{"B", "A"}, Sectors: []string{"X"}})
	b := NewSchema(5, Vocabulary{Tickers: []string{"A", "B", "A"}, Sectors: []string{"X"}})
	c := NewSchema(6, Vocabulary{Tickers: []string{"A", "B"}, Sectors: []string{"X"}})

	assert.Equal(t, a.Version(), b.Version())
	assert.NotEqual(t, a.Version(), c.Version())
}

func TestSchemaAccessorsReturnCopies(t *testing.T) {
	s := NewSchema(1, Vocabulary{Tickers: []string{"A"}, Sectors: []string{"X"}})
	cols := s.Columns()
	cols[0] = "mutated"
	assert.Equal(t, "close_lag_1", s.Columns()[0])
}

func TestConformZeroFillAndIdempotent(t *testing.T) {
	s := NewSchema(1, Vocabulary{Tickers: []string{"A", "B"}, Sectors: []string{"X"}})
	row := map[string]float64{"close_lag_1": 3, "ticker_A": 1, "ticker_ZZZ": 1, "junk": 7}

	once := s.ConformRow(row)
	require.Len(t, once, s.Len())
	assert.Equal(t, 3.0, once["close_lag_1"])
	assert.Equal(t, 0.0, once["ma_5"])
	assert.Equal(t, 0.0, once["ticker_B"])
	assert.NotContains(t, once, "junk")
	assert.NotContains(t, once, "ticker_ZZZ")

	assert.Equal(t, once, s.ConformRow(once))
	assert.Equal(t, s.Conform(row), s.Conform(once))
}

func TestBuildFortyRowsYieldsNine(t *testing.T) {
	b := NewBuilder(30)
	s := series("AAA", "Tech", 40)
	rows, dropped := b.Build(s, NewVocabulary(s))

	require.Len(t, rows, 9)
	assert.Equal(t, 31, dropped)

	first := rows[0]
	assert.Equal(t, s[30].Date, first.Date)
	assert.Equal(t, s[31].Close, first.Target)
	assert.Equal(t, s[29].Close, first.Values["close_lag_1"])
	assert.Equal(t, s[0].Open, first.Values["open_lag_30"])
	assert.Equal(t, float64(s[28].Volume), first.Values["volume_lag_2"])
	assert.Equal(t, 1.0, first.Values["ticker_AAA"])
	assert.Equal(t, 1.0, first.Values["sector_Tech"])

	last := rows[len(rows)-1]
	assert.Equal(t, s[38].Date, last.Date)
	assert.Equal(t, s[39].Close, last.Target)
}

func TestBuildRollingFeatures(t *testing.T) {
	b := NewBuilder(3)
	s := series("AAA", "Tech", 25)
	rows, _ := b.Build(s, NewVocabulary(s))

	// warm-up is bounded by the 20-row moving average
	require.Len(t, rows, 25-1-19)
	r := rows[0]
	assert.InDelta(t, 117.0, r.Values["ma_5"], 1e-9)  // closes 115..119
	assert.InDelta(t, 114.5, r.Values["ma_10"], 1e-9) // closes 110..119
	assert.InDelta(t, 109.5, r.Values["ma_20"], 1e-9) // closes 100..119
	assert.InDelta(t, math.Sqrt(2.5), r.Values["volatility_5"], 1e-9)
	assert.InDelta(t, 1.0/118.0, r.Values["daily_return"], 1e-12)
}

func TestBuildDropsNonFinite(t *testing.T) {
	b := NewBuilder(2)
	s := series("AAA", "Tech", 24)
	s[21].Close = math.NaN()
	rows, dropped := b.Build(s, NewVocabulary(s))

	// rows 19..22 carry targets; NaN poisons row 20 (target), 21 and 22 (lag/ma)
	require.Len(t, rows, 1)
	assert.Equal(t, s[19].Date, rows[0].Date)
	assert.Equal(t, 23, dropped)
}

func TestBuildAllSkipsShortTickersButKeepsVocabulary(t *testing.T) {
	store := fakeStore{
		"AAA": series("AAA", "Tech", 40),
		"BBB": series("BBB", "Energy", 10),
	}
	b := NewBuilder(30)
	table := b.BuildAll(store, nil)

	assert.Equal(t, []string{"BBB"}, table.Skipped)
	assert.Len(t, table.Rows, 9)
	assert.True(t, table.Schema.HasTicker("BBB"))
	assert.True(t, table.Schema.Has("sector_Energy"))
	assert.Equal(t, []string{"AAA"}, table.Tickers())

	x, y := table.Matrix()
	require.Len(t, x, 9)
	require.Len(t, y, 9)
	assert.Len(t, x[0], table.Schema.Len())
}

func TestBuildAllFilter(t *testing.T) {
	store := fakeStore{
		"AAA": series("AAA", "Tech", 40),
		"BBB": series("BBB", "Energy", 40),
	}
	table := NewBuilder(30).BuildAll(store, []string{"BBB"})

	assert.Equal(t, []string{"BBB"}, table.Schema.Tickers())
	assert.Equal(t, []string{"Energy"}, table.Schema.Sectors())
	assert.Len(t, table.Rows, 9)
}

func TestInferenceRow(t *testing.T) {
	s := series("AAA", "Tech", 40)
	window := make([]models.PriceObservation, 0, 31)
	for i := len(s) - 1; i >= len(s)-31; i-- {
		window = append(window, s[i])
	}

	row := InferenceRow(window, 30)
	assert.Equal(t, s[39].Close, row["close_lag_1"])
	assert.Equal(t, s[10].High, row["high_lag_30"])
	assert.InDelta(t, 137.0, row["ma_5"], 1e-9)
	assert.InDelta(t, 129.5, row["ma_20"], 1e-9)
	assert.InDelta(t, 1.0/138.0, row["daily_return"], 1e-12)
	assert.Equal(t, 1.0, row["ticker_AAA"])
	assert.Equal(t, 1.0, row["sector_Tech"])
}

func TestInferenceRowShortWindow(t *testing.T) {
	s := series("AAA", "Tech", 3)
	window := []models.PriceObservation{s[2], s[1], s[0]}

	row := InferenceRow(window, 3)
	assert.InDelta(t, 101.0, row["ma_5"], 1e-9)
	assert.InDelta(t, 101.0, row["ma_20"], 1e-9)
	assert.InDelta(t, 1.0, row["volatility_5"], 1e-9)

	single := InferenceRow(window[:1], 1)
	assert.Equal(t, 0.0, single["volatility_5"])
	assert.Equal(t, 0.0, single["daily_return"])
	assert.Equal(t, 102.0, single["ma_10"])
}

func TestInferenceRowKeysRegisteredInSchema(t *testing.T) {
	store := fakeStore{
		"AAA": series("AAA", "Tech", 40),
		"BBB": series("BBB", "Energy", 40),
	}
	table := NewBuilder(30).BuildAll(store, nil)
	require.NotEmpty(t, table.Rows)

	for _, ticker := range []string{"AAA", "BBB"} {
		s := store[ticker]
		window := make([]models.PriceObservation, 0, 31)
		for i := len(s) - 1; i >= len(s)-31; i-- {
			window = append(window, s[i])
		}
		row := InferenceRow(window, 30)
		for k := range row {
			assert.True(t, table.Schema.Has(k), "%s: column %q not in schema", ticker, k)
		}
		for _, c := range NumericColumns(30) {
			assert.Contains(t, row, c, ticker)
		}
	}
}
