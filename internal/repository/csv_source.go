package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"PriceCast/internal/domain/models"
	domrepo "PriceCast/internal/domain/repository"
	applogger "PriceCast/pkg/logger"
	"PriceCast/pkg/util"
)

// Input columns; order in the file is free.
var csvColumns = []string{"ticker", "sector", "date", "close", "open", "low", "high", "volume"}

// CSVObservationSource reads the observation table from a headered CSV file.
type CSVObservationSource struct {
	path    string
	tickers []string
	l       *applogger.Logger
}

var _ domrepo.ObservationSource = (*CSVObservationSource)(nil)

func NewCSVObservationSource(path string) *CSVObservationSource {
	return &CSVObservationSource{path: path}
}

func (s *CSVObservationSource) SetLogger(l *applogger.Logger) { s.l = l }

// SetTickers keeps only rows of the given tickers.
func (s *CSVObservationSource) SetTickers(tickers []string) { s.tickers = tickers }

func (s *CSVObservationSource) Load(ctx context.Context) ([]models.PriceObservation, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	obs, err := ReadObservations(ctx, f)
	if err != nil {
		if s.l != nil {
			s.l.Error("csv load failed", applogger.String("path", s.path), applogger.Error(err))
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	obs = keepTickers(obs, s.tickers)
	if s.l != nil {
		s.l.Debug("csv loaded", applogger.String("path", s.path), applogger.Int("rows", len(obs)))
	}
	return obs, nil
}

func keepTickers(obs []models.PriceObservation, tickers []string) []models.PriceObservation {
	if len(tickers) == 0 {
		return obs
	}
	out := obs[:0]
	for _, o := range obs {
		if slices.Contains(tickers, o.Ticker) {
			out = append(out, o)
		}
	}
	return out
}

// ReadObservations parses CSV rows keyed by header name.
func ReadObservations(ctx context.Context, r io.Reader) ([]models.PriceObservation, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty csv: missing header")
		}
		return nil, fmt.Errorf("header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range csvColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	var out []models.PriceObservation
	for line := 2; ; line++ {
		if line%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		o, err := parseRecord(rec, col)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, o)
	}
	return out, nil
}

func parseRecord(rec []string, col map[string]int) (models.PriceObservation, error) {
	get := func(name string) string { return strings.TrimSpace(rec[col[name]]) }

	o := models.PriceObservation{Ticker: get("ticker"), Sector: get("sector")}
	if o.Ticker == "" {
		return o, errors.New("empty ticker")
	}
	d, ok := util.ParseCalendarDate(get("date"))
	if !ok {
		return o, fmt.Errorf("bad date %q", get("date"))
	}
	o.Date = d

	for _, f := range []struct {
		name string
		dst  *float64
	}{{"open", &o.Open}, {"high", &o.High}, {"low", &o.Low}, {"close", &o.Close}} {
		v, err := strconv.ParseFloat(get(f.name), 64)
		if err != nil {
			return o, fmt.Errorf("bad %s %q", f.name, get(f.name))
		}
		*f.dst = v
	}

	vol, err := strconv.ParseFloat(get("volume"), 64)
	if err != nil {
		return o, fmt.Errorf("bad volume %q", get("volume"))
	}
	o.Volume = int64(vol)
	return o, nil
}
