package lib

import (
	"context"
	"errors"
	"sync"

	"github.com/fiffu/streamwatch/lib/metrics"
	"github.com/fiffu/streamwatch/lib/models"
	"github.com/fiffu/streamwatch/lib/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrMissingArgument = errors.New("missing required argument")

// Listener toggles upstream event delivery for a single streamer. Calls must
// not block, since they run while the service holds its lock.
type Listener interface {
	EnableListening(streamer string)
	DisableListening(streamer string)
}

type Service struct {
	log      *zap.Logger
	store    *store.Store
	listener Listener
	metrics  *metrics.Metrics

	*subscribe
	*unsubscribe
}

func NewService(lc fx.Lifecycle, log *zap.Logger, s *store.Store, listener Listener, m *metrics.Metrics) *Service {
	// One lock spans each store mutation and the listener call it implies,
	// so enable/disable calls are observed in the same order as transitions.
	mu := &sync.Mutex{}
	base := &base{mu, log, s, listener, m}
	return &Service{
		log, s, listener, m,
		&subscribe{base},
		&unsubscribe{base},
	}
}

func (svc *Service) ListSubscriptions(ctx context.Context, subscriber string) models.Subscriptions {
	return svc.store.ListForSubscriber(subscriber)
}

type base struct {
	mu       *sync.Mutex
	log      *zap.Logger
	store    *store.Store
	listener Listener
	metrics  *metrics.Metrics
}

func (b *base) enable(streamer string) {
	b.listener.EnableListening(streamer)
	b.metrics.ListenerToggles.WithLabelValues("enable").Inc()
	b.log.Sugar().Infow("Enabled listening", "streamer", streamer)
}

func (b *base) disable(streamer string) {
	b.listener.DisableListening(streamer)
	b.metrics.ListenerToggles.WithLabelValues("disable").Inc()
	b.log.Sugar().Infow("Disabled listening", "streamer", streamer)
}

func (b *base) updateGauges() {
	b.metrics.TrackedStreamers.Set(float64(len(b.store.Streamers())))
	b.metrics.Subscriptions.Set(float64(b.store.Len()))
}
