package senders

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fiffu/streamwatch/config"
	"github.com/fiffu/streamwatch/lib/metrics"
	"github.com/fiffu/streamwatch/lib/models"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrUnsupportedPlatform = errors.New("unsupported notifier platform")

// Dispatcher delivers notifications without making the caller wait. Failed
// sends are logged and counted, never retried.
type Dispatcher struct {
	log     *zap.Logger
	senders Registry
	metrics *metrics.Metrics
	timeout time.Duration

	wg sync.WaitGroup
}

func NewDispatcher(lc fx.Lifecycle, log *zap.Logger, cfg *config.Config, senders Registry, m *metrics.Metrics) *Dispatcher {
	d := &Dispatcher{
		log:     log,
		senders: senders,
		metrics: m,
		timeout: cfg.SendTimeout(),
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Sugar().Info("Waiting for in-flight notifications")
			return d.WaitContext(ctx)
		},
	})

	return d
}

func (d *Dispatcher) Dispatch(dest models.Destination, text string) {
	sender, ok := d.senders[dest.Platform]
	if !ok {
		d.record(dest, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, dest.Platform))
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		id, err := sender.Send(ctx, dest, text)
		d.record(dest, err)
		if err == nil && id != "" {
			d.log.Sugar().Debugw("Sent notification", "platform", dest.Platform, "message_id", id)
		}
	}()
}

func (d *Dispatcher) record(dest models.Destination, err error) {
	result := "ok"
	if err != nil {
		result = "error"
		d.log.Sugar().Errorw("Failed to send notification", "platform", dest.Platform, "err", err)
	}
	d.metrics.Sends.WithLabelValues(dest.Platform, result).Inc()
}

// Wait blocks until every dispatched send has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) WaitContext(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
