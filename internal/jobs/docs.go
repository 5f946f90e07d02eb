// Package jobs provides scheduled background tasks for the parcel desk.
//
// Jobs are built on github.com/robfig/cron/v3 with second-resolution schedules.
//
// # Available Jobs
//
// StatusReportJob logs the number of packages per status, the active total and the
// number of live event subscribers. It runs on REPORT_SCHEDULE, every minute by default.
//
// # Usage
//
//	report := jobs.NewStatusReportJob(reportHandler, hub, cfg.ReportSchedule, logger)
//	jobManager := jobs.NewJobManager(report)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// A failed report is logged and retried on the next tick. A job that fails to start
// stops every job started before it.
package jobs
