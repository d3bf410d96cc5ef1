package scheduler

import (
	"context"
	"errors"
	"time"

	"fleet_portal_backend/platform/config"
	"fleet_portal_backend/platform/logger"

	"github.com/hibiken/asynq"
)

const retentionInterval = 24 * time.Hour

// Dispatcher enqueues the periodic scan and retention tasks. The scan
// task is unique per interval so overlapping dispatchers do not pile up
// duplicate scans.
type Dispatcher struct {
	client   *asynq.Client
	queue    string
	interval time.Duration
	log      *logger.Logger
}

func NewDispatcher(cfg config.SchedulerConfig, log *logger.Logger) (*Dispatcher, error) {
	opt, err := clientOptFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	interval := cfg.GetScanInterval()
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	return &Dispatcher{
		client:   asynq.NewClient(opt),
		queue:    queueName(cfg),
		interval: interval,
		log:      log,
	}, nil
}

func (d *Dispatcher) Close() error {
	if d == nil || d.client == nil {
		return nil
	}
	return d.client.Close()
}

func (d *Dispatcher) Run(ctx context.Context) {
	if d == nil || d.client == nil {
		return
	}

	scanTicker := time.NewTicker(d.interval)
	defer scanTicker.Stop()

	retentionTicker := time.NewTicker(retentionInterval)
	defer retentionTicker.Stop()

	d.enqueueScan(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-scanTicker.C:
			d.enqueueScan(ctx)
		case <-retentionTicker.C:
			d.enqueueRetention(ctx)
		}
	}
}

func (d *Dispatcher) enqueueScan(ctx context.Context) {
	// Truncating to the interval keeps the payload identical within one
	// interval bucket, so uniqueness holds across dispatcher replicas.
	task, err := NewScheduledNotificationsTask(ScheduledNotificationsPayload{
		ScheduledAt: time.Now().UTC().Truncate(d.interval),
	})
	if err != nil {
		d.log.Warn("scan task build failed", "error", err)
		return
	}

	_, err = d.client.EnqueueContext(ctx, task,
		asynq.Queue(d.queue),
		asynq.Unique(d.interval),
	)
	if err != nil && !errors.Is(err, asynq.ErrDuplicateTask) {
		d.log.Warn("scan task enqueue failed", "error", err)
	}
}

func (d *Dispatcher) enqueueRetention(ctx context.Context) {
	task, err := NewNotificationRetentionTask(NotificationRetentionPayload{})
	if err != nil {
		d.log.Warn("retention task build failed", "error", err)
		return
	}

	_, err = d.client.EnqueueContext(ctx, task, asynq.Queue(d.queue))
	if err != nil {
		d.log.Warn("retention task enqueue failed", "error", err)
	}
}
