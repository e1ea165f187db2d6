package router

import (
	"context"

	"github.com/fiffu/streamwatch/lib/metrics"
	"github.com/fiffu/streamwatch/lib/models"
	"go.uber.org/zap"
)

type SubscriptionLookup interface {
	Lookup(streamer string) models.Subscriptions
}

type Dispatcher interface {
	Dispatch(dest models.Destination, text string)
}

// Router is the single upstream event handler. It resolves subscriptions at
// event time, so it never needs re-registering as subscriptions change.
type Router struct {
	log      *zap.Logger
	subs     SubscriptionLookup
	dispatch Dispatcher
	metrics  *metrics.Metrics
}

func NewRouter(log *zap.Logger, subs SubscriptionLookup, dispatch Dispatcher, m *metrics.Metrics) *Router {
	return &Router{log, subs, dispatch, m}
}

// HandleEvent fires every subscription of evt.Streamer whose predicate holds
// for evt.GameName, once each, and returns how many fired.
func (r *Router) HandleEvent(ctx context.Context, evt models.StreamEvent) int {
	evt.Streamer = models.Canonical(evt.Streamer)
	evt.GameName = models.Canonical(evt.GameName)

	r.metrics.EventsReceived.WithLabelValues(evt.Kind.String()).Inc()
	if evt.Kind == models.LiveStarted {
		r.log.Sugar().Infow("Streamer went live", "streamer", evt.Streamer, "game", evt.GameName, "title", evt.Title)
	} else {
		r.log.Sugar().Infow("Streamer changed game", "streamer", evt.Streamer, "game", evt.GameName)
	}

	subs := r.subs.Lookup(evt.Streamer)
	if len(subs) == 0 {
		return 0
	}

	fired := 0
	for _, sub := range subs {
		if !sub.Matches(evt.GameName) {
			continue
		}
		n := models.Notification{Subscription: sub, Event: evt}
		r.dispatch.Dispatch(sub.Destination, n.Text())
		fired++
	}

	if fired > 0 {
		r.metrics.Matches.WithLabelValues(evt.Kind.String()).Add(float64(fired))
		r.log.Sugar().Infow("Dispatched notifications", "streamer", evt.Streamer, "count", fired)
	}
	return fired
}
