package tasks

import (
	"context"
	"fmt"
)

// newRegistrationReportTask logs how many users are registered.
func newRegistrationReportTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "registration_report")

	return func(ctx context.Context) error {
		if err := deps.Store.Ping(ctx); err != nil {
			return fmt.Errorf("registration store unreachable: %w", err)
		}

		count, err := deps.Store.CountUsers(ctx)
		if err != nil {
			log.ErrorContext(ctx, "Failed to count registered users", "error", err)
			return fmt.Errorf("count registered users: %w", err)
		}

		log.InfoContext(ctx, "Registered users", "count", count)
		return nil
	}
}
