// Package scheduler runs the background side of the reminder pipeline:
// an asynq worker consuming scan and retention tasks, and a dispatcher
// that enqueues them on an interval.
package scheduler

import (
	"context"
	"time"

	"fleet_portal_backend/internal/notification"
	reminders "fleet_portal_backend/internal/reminders/service"
	"fleet_portal_backend/platform/config"
	"fleet_portal_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Read notifications older than this are pruned by the retention task.
// Ledger rows are kept forever; they are the dedup record.
const notificationRetention = 90 * 24 * time.Hour

type Worker struct {
	server        *asynq.Server
	mux           *asynq.ServeMux
	pipeline      *reminders.Service
	notifications *notification.Service
	log           *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, pipeline *reminders.Service, notifications *notification.Service, log *logger.Logger) (*Worker, error) {
	opt, err := clientOptFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:        server,
		mux:           mux,
		pipeline:      pipeline,
		notifications: notifications,
		log:           log,
	}

	mux.HandleFunc(TaskScheduledNotifications, w.handleScheduledNotifications)
	mux.HandleFunc(TaskNotificationRetention, w.handleNotificationRetention)

	return w, nil
}

func (w *Worker) handleScheduledNotifications(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseScheduledNotificationsPayload(task)
	if err != nil {
		return err
	}

	res, err := w.pipeline.Run(ctx)
	if err != nil {
		return err
	}

	w.log.Info("scheduled notification scan done",
		"scheduledAt", payload.ScheduledAt,
		"processed", res.Processed,
		"emailsSent", res.EmailsSent,
		"expired", res.Expired,
	)
	return nil
}

func (w *Worker) handleNotificationRetention(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseNotificationRetentionPayload(task)
	if err != nil {
		return err
	}

	cutoff := payload.Cutoff
	if cutoff.IsZero() {
		cutoff = time.Now().Add(-notificationRetention)
	}

	pruned, err := w.notifications.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	w.log.Info("notification retention done", "pruned", pruned, "cutoff", cutoff)
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
