package tasks

import (
	"github.com/telesearch/telesearch/internal/history"
	"github.com/telesearch/telesearch/internal/scheduler"
)

const HistoryCleanupTaskID = "history-cleanup"

// RegisterHistoryCleanupTask registers the search history cleanup task.
// It runs daily at 2 AM and deletes entries older than the configured
// retention period.
func RegisterHistoryCleanupTask(sched *scheduler.Scheduler, historyService *history.Service) error {
	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          HistoryCleanupTaskID,
		Name:        "History Cleanup",
		Description: "Deletes search history entries older than the retention period",
		Cron:        "0 2 * * *",
		RunOnStart:  false,
		Func:        historyService.CleanupOldEntries,
	})
}
