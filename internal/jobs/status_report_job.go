package jobs

import (
	"context"
	"log/slog"

	"parceldesk/internal/core/application/usecases/queries"
	"parceldesk/internal/core/domain/model/parcel"

	"github.com/robfig/cron/v3"
)

// DefaultReportSchedule runs the status report at the top of every minute.
const DefaultReportSchedule = "0 * * * * *"

// SubscriberCounter reports how many live subscriptions the event hub holds.
type SubscriberCounter interface {
	SubscriberCount() int
}

// StatusReportJob periodically logs how many packages sit in each status.
type StatusReportJob struct {
	handler     queries.GetStatusReportQueryHandler
	subscribers SubscriberCounter
	schedule    string
	cron        *cron.Cron
	logger      *slog.Logger
}

// NewStatusReportJob creates a job that runs handler on schedule, a six-field cron
// expression with seconds. An empty schedule falls back to DefaultReportSchedule.
// subscribers may be nil.
func NewStatusReportJob(
	handler queries.GetStatusReportQueryHandler,
	subscribers SubscriberCounter,
	schedule string,
	logger *slog.Logger,
) *StatusReportJob {
	if schedule == "" {
		schedule = DefaultReportSchedule
	}
	return &StatusReportJob{
		handler:     handler,
		subscribers: subscribers,
		schedule:    schedule,
		cron:        cron.New(cron.WithSeconds()),
		logger:      logger.With("component", "status_report_job"),
	}
}

// Start schedules the report and starts the cron runner.
func (j *StatusReportJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		_ = j.Run(context.Background())
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Status report job started", "schedule", j.schedule)
	return nil
}

// Stop stops scheduling and waits for a running report to finish.
func (j *StatusReportJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Status report job stopped")
}

// Run builds and logs a single report.
func (j *StatusReportJob) Run(ctx context.Context) error {
	report, err := j.handler.Handle(ctx, queries.NewGetStatusReportQuery())
	if err != nil {
		j.logger.ErrorContext(ctx, "Status report job failed", "error", err)
		return err
	}

	attrs := make([]any, 0, 2*len(parcel.Statuses())+6)
	attrs = append(attrs, "total", report.Total, "active", report.Active)
	for _, s := range parcel.Statuses() {
		attrs = append(attrs, s.String(), report.ByStatus[s])
	}
	if j.subscribers != nil {
		attrs = append(attrs, "subscribers", j.subscribers.SubscriberCount())
	}

	j.logger.InfoContext(ctx, "Package status report", attrs...)
	return nil
}
