package features

import (
	"crypto/sha256"
	"fmt"
	"slices"
	"strconv"
)

// Schema is the ordered feature column contract fixed when training data is finalized.
// It is never mutated after construction; accessors hand out copies.
type Schema struct {
	predictionDays int
	columns        []string
	index          map[string]int
	tickers        []string
	sectors        []string
	version        string
}

// NewSchema fixes the column order for a lag window and a category vocabulary.
func NewSchema(predictionDays int, vocab Vocabulary) *Schema {
	tickers := sortedUnique(vocab.Tickers)
	sectors := sortedUnique(vocab.Sectors)

	cols := NumericColumns(predictionDays)
	for _, t := range tickers {
		cols = append(cols, TickerColumn(t))
	}
	for _, s := range sectors {
		cols = append(cols, SectorColumn(s))
	}

	idx := make(map[string]int, len(cols))
	for i, c := range cols {
		idx[c] = i
	}

	return &Schema{
		predictionDays: predictionDays,
		columns:        cols,
		index:          idx,
		tickers:        tickers,
		sectors:        sectors,
		version:        fingerprint(predictionDays, cols),
	}
}

func (s *Schema) Columns() []string   { return slices.Clone(s.columns) }
func (s *Schema) Len() int            { return len(s.columns) }
func (s *Schema) Version() string     { return s.version }
func (s *Schema) PredictionDays() int { return s.predictionDays }
func (s *Schema) Tickers() []string   { return slices.Clone(s.tickers) }
func (s *Schema) Sectors() []string   { return slices.Clone(s.sectors) }
func (s *Schema) Vocabulary() Vocabulary {
	return Vocabulary{Tickers: s.Tickers(), Sectors: s.Sectors()}
}

// HasTicker reports whether ticker was part of the training vocabulary.
func (s *Schema) HasTicker(ticker string) bool {
	_, ok := slices.BinarySearch(s.tickers, ticker)
	return ok
}

// Has reports whether column is registered.
func (s *Schema) Has(column string) bool {
	_, ok := s.index[column]
	return ok
}

// Conform reshapes row into the registered column order: absent columns are 0,
// unknown columns are dropped.
func (s *Schema) Conform(row map[string]float64) []float64 {
	out := make([]float64, len(s.columns))
	for k, v := range row {
		if i, ok := s.index[k]; ok {
			out[i] = v
		}
	}
	return out
}

// ConformRow is Conform keyed by column name. Conforming a conformed row is a no-op.
func (s *Schema) ConformRow(row map[string]float64) map[string]float64 {
	vec := s.Conform(row)
	out := make(map[string]float64, len(vec))
	for i, c := range s.columns {
		out[c] = vec[i]
	}
	return out
}

func fingerprint(predictionDays int, cols []string) string {
	h := sha256.New()
	h.Write([]byte(strconv.Itoa(predictionDays)))
	for _, c := range cols {
		h.Write([]byte{0})
		h.Write([]byte(c))
	}
	return fmt.Sprintf("%x", h.Sum(nil))[:16]
}
