package scheduler

import (
	"context"
	"testing"
	"time"

	"fleet_portal_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
)

type fakeSchedulerCfg struct {
	redisURL string
	queue    string
	interval time.Duration
}

func (f fakeSchedulerCfg) GetRedisURL() string            { return f.redisURL }
func (f fakeSchedulerCfg) GetRedisTLSInsecure() bool      { return false }
func (f fakeSchedulerCfg) GetAsynqQueueName() string      { return f.queue }
func (f fakeSchedulerCfg) GetAsynqConcurrency() int       { return 1 }
func (f fakeSchedulerCfg) GetScanInterval() time.Duration { return f.interval }

func TestDispatcher_EnqueueScanIsUniquePerInterval(t *testing.T) {
	srv := miniredis.RunT(t)

	cfg := fakeSchedulerCfg{
		redisURL: "redis://" + srv.Addr(),
		queue:    "fleet",
		interval: 5 * time.Minute,
	}

	d, err := NewDispatcher(cfg, logger.New("development"))
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	defer d.Close()

	ctx := context.Background()
	d.enqueueScan(ctx)
	d.enqueueScan(ctx)

	opt, err := clientOptFromConfig(cfg)
	if err != nil {
		t.Fatalf("clientOptFromConfig: %v", err)
	}
	inspector := asynq.NewInspector(opt)
	defer inspector.Close()

	pending, err := inspector.ListPendingTasks("fleet")
	if err != nil {
		t.Fatalf("ListPendingTasks: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending tasks = %d, want 1 after duplicate enqueue", len(pending))
	}
	if pending[0].Type != TaskScheduledNotifications {
		t.Fatalf("task type = %q", pending[0].Type)
	}
}

func TestRedisClientOpt_ParsesURL(t *testing.T) {
	opt, err := redisClientOpt("redis://:secret@localhost:6380/2", false)
	if err != nil {
		t.Fatalf("redisClientOpt: %v", err)
	}
	if opt.Addr != "localhost:6380" {
		t.Fatalf("Addr = %q", opt.Addr)
	}
	if opt.Password != "secret" {
		t.Fatalf("Password = %q", opt.Password)
	}
	if opt.DB != 2 {
		t.Fatalf("DB = %d", opt.DB)
	}
	if opt.TLSConfig != nil {
		t.Fatalf("TLSConfig should be nil for redis scheme")
	}

	opt, err = redisClientOpt("redis://localhost:6379", true)
	if err != nil {
		t.Fatalf("redisClientOpt insecure: %v", err)
	}
	if opt.TLSConfig == nil || !opt.TLSConfig.InsecureSkipVerify {
		t.Fatalf("insecure flag should force a TLS config with InsecureSkipVerify")
	}
}
