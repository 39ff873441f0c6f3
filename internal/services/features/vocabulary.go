package features

import (
	"slices"

	"PriceCast/internal/domain/models"
)

// Vocabulary holds the distinct categorical values seen across a training corpus.
type Vocabulary struct {
	Tickers []string
	Sectors []string
}

// NewVocabulary collects distinct tickers and sectors from every observation given,
// including tickers later skipped for short history.
func NewVocabulary(series ...[]models.PriceObservation) Vocabulary {
	var v Vocabulary
	for _, s := range series {
		for _, o := range s {
			v.Tickers = append(v.Tickers, o.Ticker)
			v.Sectors = append(v.Sectors, o.Sector)
		}
	}
	v.Tickers = sortedUnique(v.Tickers)
	v.Sectors = sortedUnique(v.Sectors)
	return v
}

func sortedUnique(xs []string) []string {
	out := slices.Clone(xs)
	slices.Sort(out)
	return slices.Compact(out)
}
