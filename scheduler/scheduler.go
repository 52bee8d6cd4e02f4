// scheduler/scheduler.go
package scheduler

import (
	"sectorcheck/services/notify"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StartReminderScheduler runs the daily digest that reminds leaders of
// checklists still awaiting a decision. Read-only; it never touches the
// instance state machine.
func StartReminderScheduler(dispatcher *notify.Dispatcher, logger *zap.Logger) *cron.Cron {
	c := cron.New()

	// Every day at 08:00 server time.
	_, err := c.AddFunc("0 8 * * *", func() {
		logger.Info("running pending checklist reminder job")
		if err := dispatcher.SendPendingReminders(); err != nil {
			logger.Warn("reminder job failed", zap.Error(err))
		}
	})
	if err != nil {
		logger.Fatal("failed to register reminder job", zap.Error(err))
	}

	c.Start()
	logger.Info("reminder scheduler started")
	return c
}
