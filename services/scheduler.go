// services/scheduler.go
package services

import (
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// StartMaintenanceScheduler runs periodic housekeeping: stale delegation
// prompts are declined every 30 seconds. Call Shutdown on the returned
// scheduler to stop it.
func StartMaintenanceScheduler(broker *ConfirmationBroker, logger *zap.Logger) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(30*time.Second),
		gocron.NewTask(func() {
			if n := broker.ExpireStale(); n > 0 {
				logger.Info("[Scheduler] Expired stale delegation prompts", zap.Int("count", n))
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, err
	}

	sched.Start()
	return sched, nil
}
