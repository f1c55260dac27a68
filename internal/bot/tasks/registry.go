package tasks

import (
	"context"
)

// ScheduledTaskFunc defines the signature of a scheduled task.
// The context provided by the scheduler should be respected for cancellation.
type ScheduledTaskFunc func(ctx context.Context) error

// Task names, matching the keys of the scheduler.tasks config section.
const (
	SQLMaintenanceTask     = "sql_maintenance"
	RegistrationReportTask = "registration_report"
)

// RegisterAllTasks returns every scheduled task keyed by its config name.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	tasks := map[string]ScheduledTaskFunc{
		SQLMaintenanceTask:     newSQLMaintenanceTask(deps),
		RegistrationReportTask: newRegistrationReportTask(deps),
	}

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
