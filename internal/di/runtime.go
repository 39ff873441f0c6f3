package di

import (
	"errors"

	"PriceCast/internal/domain/repository"
	"PriceCast/internal/usecase"
	pkgch "PriceCast/pkg/clickhouse"
	applogger "PriceCast/pkg/logger"
)

// Runtime is the headless part of the application: a loaded store and a
// predictor, without the HTTP surface.
type Runtime struct {
	Logger    *applogger.Logger
	Predictor *usecase.Predictor

	pub repository.EventPublisher
	ch  *pkgch.Client
}

// Close releases the publisher and database connections.
func (r *Runtime) Close() error {
	var errs []error
	if r.pub != nil {
		errs = append(errs, r.pub.Close())
	}
	if r.ch != nil {
		errs = append(errs, r.ch.Close())
	}
	return errors.Join(errs...)
}
