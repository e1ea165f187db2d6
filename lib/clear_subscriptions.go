package lib

import (
	"context"

	"github.com/fiffu/streamwatch/lib/models"
)

type unsubscribe struct {
	*base
}

// RemoveSubscriptions drops all of subscriber's subscriptions. Unknown
// subscribers are not an error.
func (svc *unsubscribe) RemoveSubscriptions(ctx context.Context, subscriber string) int {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	removed, untracked := svc.store.RemoveAllForSubscriber(subscriber)
	for _, streamer := range untracked {
		svc.disable(streamer)
	}
	svc.updateGauges()

	if removed > 0 {
		svc.log.Sugar().Infow("Removed subscriptions", "subscriber", subscriber, "count", removed)
	}
	return removed
}

func (svc *unsubscribe) RemoveStreamerSubscriptions(ctx context.Context, subscriber, streamer string) int {
	streamer = models.Canonical(streamer)

	svc.mu.Lock()
	defer svc.mu.Unlock()

	removed, untracked := svc.store.RemoveForSubscriberAndStreamer(subscriber, streamer)
	if untracked {
		svc.disable(streamer)
	}
	svc.updateGauges()

	if removed > 0 {
		svc.log.Sugar().Infow("Removed subscriptions", "subscriber", subscriber, "streamer", streamer, "count", removed)
	}
	return removed
}
