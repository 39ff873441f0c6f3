package repository

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"PriceCast/internal/domain/models"
)

const (
	KindHistorical = "historical"
	KindForecast   = "forecast"
)

// ForecastFileName is the artifact name for a ticker's forecast.
func ForecastFileName(ticker string) string {
	return ticker + "_prediction.csv"
}

// WriteForecastCSV writes the historical closes followed by the forecast points to
// dir/{TICKER}_prediction.csv and returns the path.
func WriteForecastCSV(dir, ticker string, history []models.PriceObservation, points []models.ForecastPoint) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, ForecastFileName(ticker))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := WriteForecast(f, history, points); err != nil {
		return "", err
	}
	return path, nil
}

// WriteForecast emits date,price,kind rows.
func WriteForecast(out io.Writer, history []models.PriceObservation, points []models.ForecastPoint) error {
	w := csv.NewWriter(out)

	if err := w.Write([]string{"date", "price", "kind"}); err != nil {
		return err
	}
	for _, o := range history {
		if err := w.Write([]string{fmtDate(o.Date), fmtFloat(o.Close), KindHistorical}); err != nil {
			return err
		}
	}
	for _, p := range points {
		kind := KindForecast
		if p.Actual {
			kind = KindHistorical
		}
		if err := w.Write([]string{fmtDate(p.Date), fmtFloat(p.Price), kind}); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func fmtDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
