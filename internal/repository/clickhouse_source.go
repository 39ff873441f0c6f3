package repository

import (
	"context"
	"fmt"
	"time"

	"PriceCast/internal/domain/models"
	domrepo "PriceCast/internal/domain/repository"
	pkgch "PriceCast/pkg/clickhouse"
	applogger "PriceCast/pkg/logger"
)

// CHObservationSource loads daily OHLCV rows from ClickHouse.
type CHObservationSource struct {
	ch      *pkgch.Client
	table   string
	tickers []string
	l       *applogger.Logger
}

var _ domrepo.ObservationSource = (*CHObservationSource)(nil)

func NewCHObservationSource(ch *pkgch.Client, table string) *CHObservationSource {
	return &CHObservationSource{ch: ch, table: table}
}

// SetLogger injects a structured logger.
func (s *CHObservationSource) SetLogger(l *applogger.Logger) { s.l = l }

// SetTickers restricts loading to the given tickers.
func (s *CHObservationSource) SetTickers(tickers []string) { s.tickers = tickers }

// CreateTableStmt is the DDL for the observation table.
func CreateTableStmt(table string) string {
	return fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            ticker LowCardinality(String),
            sector LowCardinality(String),
            date   Date,
            open   Float64,
            high   Float64,
            low    Float64,
            close  Float64,
            volume Int64
        ) ENGINE = ReplacingMergeTree
        ORDER BY (ticker, date)
    `, table)
}

func (s *CHObservationSource) Load(ctx context.Context) ([]models.PriceObservation, error) {
	start := time.Now()
	q, args := s.loadQuery()
	rows, err := s.ch.DB().QueryContext(ctx, q, args...)
	if err != nil {
		s.logErr("clickhouse load_observations query error", err)
		return nil, fmt.Errorf("load observations: %w", err)
	}
	defer rows.Close()

	out := make([]models.PriceObservation, 0, 4096)
	for rows.Next() {
		var o models.PriceObservation
		if err := rows.Scan(&o.Ticker, &o.Sector, &o.Date, &o.Open, &o.High, &o.Low, &o.Close, &o.Volume); err != nil {
			s.logErr("clickhouse load_observations scan error", err)
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		o.Date = models.TruncateDay(o.Date)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		s.logErr("clickhouse load_observations rows error", err)
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse load_observations ok",
			applogger.String("table", s.table),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHObservationSource) loadQuery() (string, []any) {
	q := fmt.Sprintf(`
        SELECT ticker, sector, date, open, high, low, close, volume
        FROM %s FINAL
    `, s.table)
	var args []any
	if len(s.tickers) > 0 {
		q += " WHERE has(?, ticker)"
		args = append(args, s.tickers)
	}
	return q + " ORDER BY ticker ASC, date ASC", args
}

func (s *CHObservationSource) logErr(msg string, err error) {
	if s.l == nil {
		return
	}
	s.l.Error(msg, applogger.String("table", s.table), applogger.Error(err))
}

// StoreBatch inserts observations in native blocks of storeChunk rows.
// ReplacingMergeTree collapses re-imported (ticker, date) pairs.
func (s *CHObservationSource) StoreBatch(ctx context.Context, obs []models.PriceObservation) error {
	q := fmt.Sprintf("INSERT INTO %s (ticker, sector, date, open, high, low, close, volume)", s.table)
	for start := 0; start < len(obs); start += storeChunk {
		end := min(start+storeChunk, len(obs))
		if err := s.ch.InsertBatch(ctx, q, observationRows(obs[start:end])); err != nil {
			s.logErr("clickhouse store_observations error", err)
			return fmt.Errorf("store observations: %w", err)
		}
	}
	if s.l != nil {
		s.l.Info("clickhouse store_observations ok",
			applogger.String("table", s.table),
			applogger.Int("rows", len(obs)),
		)
	}
	return nil
}

const storeChunk = 5000

func observationRows(obs []models.PriceObservation) [][]any {
	rows := make([][]any, 0, len(obs))
	for _, o := range obs {
		if o.Ticker == "" {
			continue
		}
		rows = append(rows, []any{o.Ticker, o.Sector, models.TruncateDay(o.Date), o.Open, o.High, o.Low, o.Close, o.Volume})
	}
	return rows
}
