package features

import (
	"slices"
	"time"

	"PriceCast/internal/domain/models"
	"PriceCast/internal/domain/repository"
	"PriceCast/pkg/logger"
)

// Row is one training example: features at Date and the next row's close as Target.
type Row struct {
	Ticker    string
	Date      time.Time
	Values    map[string]float64
	Target    float64
	HasTarget bool
}

// Table is the finalized training data for one corpus.
type Table struct {
	Schema  *Schema
	Rows    []Row
	Skipped []string
	Dropped int
}

// Matrix returns the conformed feature matrix and targets in row order.
func (t *Table) Matrix() ([][]float64, []float64) {
	x := make([][]float64, len(t.Rows))
	y := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		x[i] = t.Schema.Conform(r.Values)
		y[i] = r.Target
	}
	return x, y
}

// Tickers returns the distinct tickers contributing rows.
func (t *Table) Tickers() []string {
	var out []string
	for _, r := range t.Rows {
		out = append(out, r.Ticker)
	}
	return sortedUnique(out)
}

// Builder turns chronological observation series into feature rows.
type Builder struct {
	predictionDays int
	l              *logger.Logger
}

func NewBuilder(predictionDays int) *Builder {
	return &Builder{predictionDays: predictionDays}
}

func (b *Builder) SetLogger(l *logger.Logger) { b.l = l }

func (b *Builder) PredictionDays() int { return b.predictionDays }

// Build derives feature rows for one ticker's ascending series. Rows with any missing
// or non-finite feature, and the final row (no target), are dropped and counted.
func (b *Builder) Build(series []models.PriceObservation, vocab Vocabulary) ([]Row, int) {
	n := len(series)
	if n <= b.predictionDays {
		return nil, n
	}
	c := closes(series)

	rows := make([]Row, 0, n)
	for j := WarmUp(b.predictionDays); j < n-1; j++ {
		vals := make(map[string]float64, len(LagFields)*b.predictionDays+5+len(vocab.Tickers)+len(vocab.Sectors))
		for i := 1; i <= b.predictionDays; i++ {
			for _, f := range LagFields {
				vals[LagColumn(f, i)] = fieldValue(f, series[j-i])
			}
		}
		vals[ColMA5] = mean(c[j-shortWindow+1 : j+1])
		vals[ColMA10] = mean(c[j-mediumWindow+1 : j+1])
		vals[ColMA20] = mean(c[j-longWindow+1 : j+1])
		vals[ColVolatility5] = sampleStd(c[j-shortWindow+1 : j+1])
		vals[ColDailyReturn] = pctChange(c[j], c[j-1])

		if !allFinite(vals) || !finite(c[j+1]) {
			continue
		}

		oneHot(vals, vocab, series[j].Ticker, series[j].Sector)
		rows = append(rows, Row{
			Ticker:    series[j].Ticker,
			Date:      series[j].Date,
			Values:    vals,
			Target:    c[j+1],
			HasTarget: true,
		})
	}
	return rows, n - len(rows)
}

// BuildAll builds the training table over every ticker in store, or only those in
// filter when it is non-empty. Tickers with too little history are skipped but still
// contribute to the category vocabulary.
func (b *Builder) BuildAll(store repository.SeriesStore, filter []string) *Table {
	tickers := store.Tickers()
	if len(filter) > 0 {
		tickers = slices.DeleteFunc(tickers, func(t string) bool {
			return !slices.Contains(filter, t)
		})
	}

	all := make([][]models.PriceObservation, 0, len(tickers))
	for _, t := range tickers {
		if s, ok := store.Series(t); ok {
			all = append(all, s)
		}
	}
	vocab := NewVocabulary(all...)

	table := &Table{Schema: NewSchema(b.predictionDays, vocab)}
	for _, s := range all {
		ticker := s[0].Ticker
		if len(s) <= b.predictionDays {
			table.Skipped = append(table.Skipped, ticker)
			if b.l != nil {
				b.l.Warn("skipping ticker: not enough history",
					logger.String("ticker", ticker),
					logger.Int("rows", len(s)),
					logger.Int("required", b.predictionDays+1))
			}
			continue
		}
		rows, dropped := b.Build(s, vocab)
		table.Rows = append(table.Rows, rows...)
		table.Dropped += dropped
	}

	if b.l != nil {
		b.l.Info("feature table built",
			logger.Int("tickers", len(all)),
			logger.Int("rows", len(table.Rows)),
			logger.Int("dropped", table.Dropped),
			logger.Int("skipped", len(table.Skipped)),
			logger.Int("columns", table.Schema.Len()),
			logger.String("schema_version", table.Schema.Version()))
	}
	return table
}

func oneHot(vals map[string]float64, vocab Vocabulary, ticker, sector string) {
	for _, t := range vocab.Tickers {
		vals[TickerColumn(t)] = indicator(t == ticker)
	}
	for _, s := range vocab.Sectors {
		vals[SectorColumn(s)] = indicator(s == sector)
	}
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func allFinite(vals map[string]float64) bool {
	for _, v := range vals {
		if !finite(v) {
			return false
		}
	}
	return true
}
