package reports

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnknownReport indicates an export request for a report name the
// service does not produce.
var ErrUnknownReport = errors.New("unknown report")

// Exporter hands a CSV export off to the background worker.
type Exporter interface {
	EnqueueReportExport(ctx context.Context, report string, period Range, requestedBy int64) error
}

// Service produces back-office summaries and CSV exports.
type Service struct {
	repo     Repository
	exporter Exporter
}

func NewService(repo Repository, exporter Exporter) *Service {
	return &Service{repo: repo, exporter: exporter}
}

func (s *Service) OrderSummary(ctx context.Context, period Range) ([]OrderSummaryRow, error) {
	return s.repo.OrderSummary(ctx, period)
}

func (s *Service) DispatchSummary(ctx context.Context, period Range) ([]DispatchSummaryRow, error) {
	return s.repo.DispatchSummary(ctx, period)
}

func (s *Service) TopProducts(ctx context.Context, period Range, limit int) ([]TopProductRow, error) {
	return s.repo.TopProducts(ctx, period, limit)
}

// RenderCSV produces the named report inline.
func (s *Service) RenderCSV(ctx context.Context, report string, period Range) ([]byte, error) {
	switch report {
	case "pedidos":
		rows, err := s.repo.OrderSummary(ctx, period)
		if err != nil {
			return nil, err
		}
		return OrderSummaryCSV(rows)
	case "despachos":
		rows, err := s.repo.DispatchSummary(ctx, period)
		if err != nil {
			return nil, err
		}
		return DispatchSummaryCSV(rows)
	case "productos":
		rows, err := s.repo.TopProducts(ctx, period, 0)
		if err != nil {
			return nil, err
		}
		return TopProductsCSV(rows)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownReport, report)
	}
}

// ScheduleExport queues the named report for background rendering.
func (s *Service) ScheduleExport(ctx context.Context, report string, period Range, requestedBy int64) error {
	switch report {
	case "pedidos", "despachos", "productos":
	default:
		return fmt.Errorf("%w: %s", ErrUnknownReport, report)
	}
	if s.exporter == nil {
		return errors.New("no exporter configured")
	}
	return s.exporter.EnqueueReportExport(ctx, report, period, requestedBy)
}
