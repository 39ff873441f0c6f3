package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PriceCast/internal/domain/models"
	applogger "PriceCast/pkg/logger"
)

func date(s string) time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return t
}

func obs(ticker, d string, c float64) models.PriceObservation {
	return models.PriceObservation{Ticker: ticker, Sector: "Tech", Date: date(d), Open: c, High: c, Low: c, Close: c, Volume: 10}
}

func TestMemorySeriesStore(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewMemorySeriesStore([]models.PriceObservation{
		obs("MSFT", "2024-01-03", 3),
		obs("AAPL", "2024-01-02", 20),
		obs("MSFT", "2024-01-01", 1),
		obs("MSFT", "2024-01-02", 2),
	}, applogger.NewWithWriter(&buf, "info"))
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL", "MSFT"}, s.Tickers())
	assert.Equal(t, 4, s.Len())
	assert.Contains(t, buf.String(), `"rows":4`)
	assert.Contains(t, buf.String(), `"tickers":2`)

	series, ok := s.Series("MSFT")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2, 3}, []float64{series[0].Close, series[1].Close, series[2].Close})

	recent := s.Recent("MSFT", 2)
	require.Len(t, recent, 2)
	assert.Equal(t, 3.0, recent[0].Close)
	assert.Equal(t, 2.0, recent[1].Close)
	assert.Len(t, s.Recent("MSFT", 10), 3)
	assert.Nil(t, s.Recent("NOPE", 3))

	got, ok := s.Lookup("MSFT", date("2024-01-02").Add(15*time.Hour))
	require.True(t, ok)
	assert.Equal(t, 2.0, got.Close)
	_, ok = s.Lookup("MSFT", date("2024-01-05"))
	assert.False(t, ok)

	latest, ok := s.Latest("MSFT")
	require.True(t, ok)
	assert.Equal(t, date("2024-01-03"), latest.Date)
	_, ok = s.Latest("NOPE")
	assert.False(t, ok)
}

func TestMemorySeriesStoreSeriesIsCopy(t *testing.T) {
	s, err := NewMemorySeriesStore([]models.PriceObservation{obs("A", "2024-01-01", 1)}, nil)
	require.NoError(t, err)
	series, _ := s.Series("A")
	series[0].Close = 99
	again, _ := s.Series("A")
	assert.Equal(t, 1.0, again[0].Close)
}

func TestMemorySeriesStoreDuplicate(t *testing.T) {
	_, err := NewMemorySeriesStore([]models.PriceObservation{
		obs("A", "2024-01-01", 1),
		obs("A", "2024-01-01", 2),
	}, nil)
	assert.ErrorIs(t, err, models.ErrDuplicateObservation)
}

func TestReadObservationsHeaderOrder(t *testing.T) {
	in := "Date,Ticker,Volume,Close,Open,Low,High,Sector\n" +
		"2024-01-02,AAPL,1200.0,185.5,184,183.1,186.2,Technology\n" +
		"2024-01-03, AAPL ,900,184.25,185,183,185.5,Technology\n"

	got, err := ReadObservations(context.Background(), strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, models.PriceObservation{
		Ticker: "AAPL", Sector: "Technology", Date: date("2024-01-02"),
		Open: 184, High: 186.2, Low: 183.1, Close: 185.5, Volume: 1200,
	}, got[0])
	assert.Equal(t, "AAPL", got[1].Ticker)
}

func TestReadObservationsErrors(t *testing.T) {
	cases := map[string]string{
		"empty":          "",
		"missing column": "ticker,date,close\nA,2024-01-01,1\n",
		"bad date":       "ticker,sector,date,close,open,low,high,volume\nA,S,yesterday,1,1,1,1,1\n",
		"compact date":   "ticker,sector,date,close,open,low,high,volume\nX,Tech,20240105,1,1,1,1,1\n",
		"unix date":      "ticker,sector,date,close,open,low,high,volume\nX,Tech,1704412800,1,1,1,1,1\n",
		"bad close":      "ticker,sector,date,close,open,low,high,volume\nA,S,2024-01-01,x,1,1,1,1\n",
		"empty ticker":   "ticker,sector,date,close,open,low,high,volume\n,S,2024-01-01,1,1,1,1,1\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadObservations(context.Background(), strings.NewReader(in))
			assert.Error(t, err)
		})
	}
}

func TestCSVObservationSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"ticker,sector,date,close,open,low,high,volume\nA,S,2024-01-01,1,1,1,1,5\n"), 0o644))

	src := NewCSVObservationSource(path)
	src.SetLogger(applogger.Nop())
	got, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = NewCSVObservationSource(filepath.Join(t.TempDir(), "missing.csv")).Load(context.Background())
	assert.Error(t, err)
}

func TestCSVObservationSourceTickerFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.csv")
	require.NoError(t, os.WriteFile(path, []byte("ticker,sector,date,close,open,low,high,volume\n"+
		"A,S,2024-01-01,1,1,1,1,5\nB,S,2024-01-01,2,2,2,2,5\nC,S,2024-01-01,3,3,3,3,5\n"), 0o644))

	src := NewCSVObservationSource(path)
	src.SetTickers([]string{"C", "A"})
	got, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Ticker)
	assert.Equal(t, "C", got[1].Ticker)
}

func TestCHLoadQuery(t *testing.T) {
	src := &CHObservationSource{table: "pricecast.daily_ohlcv"}
	q, args := src.loadQuery()
	assert.Contains(t, q, "FROM pricecast.daily_ohlcv FINAL")
	assert.NotContains(t, q, "WHERE")
	assert.Empty(t, args)

	src.SetTickers([]string{"AAA", "BBB"})
	q, args = src.loadQuery()
	assert.Contains(t, q, "WHERE has(?, ticker) ORDER BY ticker ASC, date ASC")
	assert.Equal(t, []any{[]string{"AAA", "BBB"}}, args)
}

type fakeProducer struct {
	topic  string
	keys   []string
	values []any
	err    error
	closed bool
}

func (f *fakeProducer) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	f.topic = topic
	f.keys = append(f.keys, string(key))
	f.values = append(f.values, value)
	return f.err
}

func (f *fakeProducer) Close() error {
	f.closed = true
	return nil
}

func TestKafkaEventPublisher(t *testing.T) {
	fp := &fakeProducer{}
	p := NewKafkaEventPublisher(fp, "pricecast.events")
	p.now = func() time.Time { return date("2024-02-01") }

	require.NoError(t, p.PublishModelTrained(context.Background(), models.ModelTrainedEvent{ModelID: "m-1"}))
	require.NoError(t, p.PublishForecast(context.Background(), models.ForecastEvent{ModelID: "m-1", Ticker: "AAPL"}))

	assert.Equal(t, "pricecast.events", fp.topic)
	assert.Equal(t, []string{"m-1", "AAPL"}, fp.keys)

	raw, err := json.Marshal(fp.values[1])
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"forecast_generated","at":"2024-02-01T00:00:00Z",
		"data":{"model_id":"m-1","ticker":"AAPL","points":null}}`, string(raw))

	fp.err = errors.New("broker down")
	assert.Error(t, p.PublishModelTrained(context.Background(), models.ModelTrainedEvent{}))

	require.NoError(t, p.Close())
	assert.True(t, fp.closed)
}

func TestWriteForecast(t *testing.T) {
	var buf bytes.Buffer
	err := WriteForecast(&buf,
		[]models.PriceObservation{obs("A", "2024-01-01", 1.5)},
		[]models.ForecastPoint{{Date: date("2024-01-02"), Price: 1.75}})
	require.NoError(t, err)
	assert.Equal(t, "date,price,kind\n"+
		"2024-01-01,1.500000,historical\n"+
		"2024-01-02,1.750000,forecast\n", buf.String())
}

func TestWriteForecastCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	path, err := WriteForecastCSV(dir, "AAPL", nil, []models.ForecastPoint{{Date: date("2024-01-02"), Price: 2}})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "AAPL_prediction.csv"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "2024-01-02,2.000000,forecast")
}

func TestObservationRows(t *testing.T) {
	in := []models.PriceObservation{
		obs("AAA", "2023-01-02", 5),
		{Date: date("2023-01-02")},
	}
	in[0].Date = in[0].Date.Add(15 * time.Hour)

	rows := observationRows(in)
	require.Len(t, rows, 1)
	assert.Equal(t, []any{"AAA", "Tech", date("2023-01-02"), 5.0, 5.0, 5.0, 5.0, int64(10)}, rows[0])
}

func TestCreateTableStmt(t *testing.T) {
	stmt := CreateTableStmt("pricecast.daily_ohlcv")
	assert.Contains(t, stmt, "CREATE TABLE IF NOT EXISTS pricecast.daily_ohlcv")
	assert.Contains(t, stmt, "ReplacingMergeTree")
	assert.Contains(t, stmt, "ORDER BY (ticker, date)")
}

func TestReadObservationsRejectsCompactDate(t *testing.T) {
	in := "ticker,sector,date,close,open,low,high,volume\nX,Tech,20240105,1,1,1,1,1\n"
	got, err := ReadObservations(context.Background(), strings.NewReader(in))
	assert.ErrorContains(t, err, `line 2: bad date "20240105"`)
	assert.Nil(t, got)
}
