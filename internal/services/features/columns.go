package features

import (
	"fmt"
	"strconv"

	"PriceCast/internal/domain/models"
)

const (
	ColMA5         = "ma_5"
	ColMA10        = "ma_10"
	ColMA20        = "ma_20"
	ColVolatility5 = "volatility_5"
	ColDailyReturn = "daily_return"

	tickerPrefix = "ticker_"
	sectorPrefix = "sector_"
)

// LagFields are the raw fields lagged for every offset, in column order.
var LagFields = []string{"close", "open", "low", "high", "volume"}

// Rolling windows over close.
const (
	shortWindow  = 5
	mediumWindow = 10
	longWindow   = 20
)

// LagColumn names the value of field i rows earlier.
func LagColumn(field string, i int) string {
	return field + "_lag_" + strconv.Itoa(i)
}

func TickerColumn(ticker string) string { return tickerPrefix + ticker }

func SectorColumn(sector string) string { return sectorPrefix + sector }

// NumericColumns returns the lag, rolling and return columns in canonical order.
func NumericColumns(predictionDays int) []string {
	cols := make([]string, 0, len(LagFields)*predictionDays+5)
	for i := 1; i <= predictionDays; i++ {
		for _, f := range LagFields {
			cols = append(cols, LagColumn(f, i))
		}
	}
	return append(cols, ColMA5, ColMA10, ColMA20, ColVolatility5, ColDailyReturn)
}

// WarmUp is the number of leading rows of a series that cannot carry a full feature set.
func WarmUp(predictionDays int) int {
	return max(predictionDays, longWindow-1)
}

func fieldValue(field string, o models.PriceObservation) float64 {
	switch field {
	case "close":
		return o.Close
	case "open":
		return o.Open
	case "low":
		return o.Low
	case "high":
		return o.High
	case "volume":
		return float64(o.Volume)
	default:
		panic(fmt.Sprintf("features: unknown lag field %q", field))
	}
}
