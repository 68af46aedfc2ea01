// workers/snapshot_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"web3-dashboard/services"

	"go.uber.org/zap"
)

// SnapshotSink stores an exported snapshot and returns where it went.
type SnapshotSink interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// SnapshotSource builds the snapshot to export.
type SnapshotSource func(ctx context.Context) (*services.Snapshot, error)

// SnapshotWorker periodically exports every table as JSON.
type SnapshotWorker struct {
	source   SnapshotSource
	sink     SnapshotSink
	interval time.Duration
	logger   *zap.Logger
	done     chan struct{}
}

func NewSnapshotWorker(source SnapshotSource, sink SnapshotSink, interval time.Duration, logger *zap.Logger) *SnapshotWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &SnapshotWorker{
		source:   source,
		sink:     sink,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start runs the worker in the background. Done is closed once it stops.
func (w *SnapshotWorker) Start(ctx context.Context) {
	w.logger.Info("🔁 [SNAPSHOT] Starting snapshot worker", zap.Duration("interval", w.interval))
	go w.run(ctx)
}

// Done is closed when the worker has stopped.
func (w *SnapshotWorker) Done() <-chan struct{} {
	return w.done
}

func (w *SnapshotWorker) run(ctx context.Context) {
	defer close(w.done)

	if _, err := w.RunOnce(ctx); err != nil {
		w.logger.Warn("⚠️ [SNAPSHOT] Initial snapshot failed", zap.Error(err))
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				w.logger.Error("❌ [SNAPSHOT] Snapshot failed", zap.Error(err))
			}
		case <-ctx.Done():
			w.logger.Info("⏹️ [SNAPSHOT] Snapshot worker stopped")
			return
		}
	}
}

// RunOnce exports a single snapshot and returns its location.
func (w *SnapshotWorker) RunOnce(ctx context.Context) (string, error) {
	snap, err := w.source(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to build snapshot: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	key := SnapshotKey(snap.GeneratedAt)
	location, err := w.sink.Put(ctx, key, data, "application/json")
	if err != nil {
		return "", err
	}

	w.logger.Info("✅ [SNAPSHOT] Exported",
		zap.String("location", location),
		zap.Int("wallets", len(snap.Wallets)),
		zap.Int("posts", len(snap.Posts)),
		zap.Int("comments", len(snap.Comments)))
	return location, nil
}

// SnapshotKey is the object key for a snapshot taken at t.
func SnapshotKey(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("dashboard/%s/export-%s.json", t.Format("2006-01-02"), t.Format("20060102T150405Z"))
}
