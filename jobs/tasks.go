package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hibiken/asynq"

	"github.com/telaris-erp/telaris/internal/reports"
	"github.com/telaris-erp/telaris/internal/shared"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"

	// TaskDeliveryNotification notifies a customer that their
	// shipment was delivered.
	TaskDeliveryNotification = "despacho:notificar"
	// TaskReportExport renders a CSV report in the background.
	TaskReportExport = "informe:exportar"
	// TaskIdempotencyCleanup prunes expired idempotency keys.
	TaskIdempotencyCleanup = "mantenimiento:idempotencia"
)

// DeliveryNotificationPayload identifies the delivered shipment.
type DeliveryNotificationPayload struct {
	DispatchID   int64  `json:"dispatch_id"`
	TrackingCode string `json:"tracking_code"`
}

// NewDeliveryNotificationTask constructs the Asynq task.
func NewDeliveryNotificationTask(payload DeliveryNotificationPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDeliveryNotification, data), nil
}

// NewDeliveryNotificationHandler builds the handler that sends the
// delivered notification. Mail transport integration is pending; for
// now delivery is recorded in the worker log.
func NewDeliveryNotificationHandler(logger *slog.Logger, metrics *Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track("despacho_notificar")
		var payload DeliveryNotificationPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return tracker.End(asynq.SkipRetry)
		}
		logger.Info("delivery notification sent",
			slog.Int64("despacho_id", payload.DispatchID),
			slog.String("codigo", payload.TrackingCode))
		return tracker.End(nil)
	}
}

// ReportExportPayload describes a background CSV export.
type ReportExportPayload struct {
	Report      string    `json:"report"`
	From        time.Time `json:"from,omitzero"`
	To          time.Time `json:"to,omitzero"`
	RequestedBy int64     `json:"requested_by"`
}

// NewReportExportTask constructs the Asynq task.
func NewReportExportTask(payload ReportExportPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportExport, data), nil
}

// NewReportExportHandler renders the requested report and drops the
// CSV in the export directory.
func NewReportExportHandler(logger *slog.Logger, metrics *Metrics, svc *reports.Service, exportDir string) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track("informe_exportar")
		var payload ReportExportPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return tracker.End(asynq.SkipRetry)
		}

		data, err := svc.RenderCSV(ctx, payload.Report, reports.Range{From: payload.From, To: payload.To})
		if err != nil {
			return tracker.End(err)
		}

		name := payload.Report + "-" + time.Now().UTC().Format("20060102T150405") + ".csv"
		path := filepath.Join(exportDir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return tracker.End(err)
		}

		logger.Info("report exported",
			slog.String("report", payload.Report),
			slog.String("path", path),
			slog.Int64("requested_by", payload.RequestedBy))
		return tracker.End(nil)
	}
}

// NewIdempotencyCleanupTask constructs the periodic cleanup task.
func NewIdempotencyCleanupTask() *asynq.Task {
	return asynq.NewTask(TaskIdempotencyCleanup, nil)
}

// NewIdempotencyCleanupHandler prunes idempotency keys older than the
// retention window.
func NewIdempotencyCleanupHandler(logger *slog.Logger, metrics *Metrics, store *shared.IdempotencyStore, retention time.Duration) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track("idempotencia_limpieza")
		if err := store.Cleanup(ctx, retention); err != nil {
			logger.Warn("idempotency cleanup", slog.Any("error", err))
			return tracker.End(err)
		}
		return tracker.End(nil)
	}
}
