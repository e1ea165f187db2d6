package lib

import (
	"context"
	"fmt"
	"strings"

	"github.com/fiffu/streamwatch/lib/models"
)

type subscribe struct {
	*base
}

func (svc *subscribe) AddSubscription(ctx context.Context, subscriber, streamer, game string, exclude bool, dest models.Destination) (models.Subscription, error) {
	switch {
	case strings.TrimSpace(subscriber) == "":
		return models.Subscription{}, fmt.Errorf("%w: subscriber", ErrMissingArgument)
	case strings.TrimSpace(streamer) == "":
		return models.Subscription{}, fmt.Errorf("%w: streamer", ErrMissingArgument)
	case strings.TrimSpace(game) == "":
		return models.Subscription{}, fmt.Errorf("%w: game", ErrMissingArgument)
	case dest.IsZero():
		return models.Subscription{}, fmt.Errorf("%w: destination", ErrMissingArgument)
	}

	sub := models.NewSubscription(subscriber, streamer, game, exclude, dest)

	svc.mu.Lock()
	defer svc.mu.Unlock()

	if tracked := svc.store.Add(sub); tracked {
		svc.enable(sub.Streamer)
	}
	svc.updateGauges()

	svc.log.Sugar().Infow("Created subscription",
		"id", sub.ID, "subscriber", sub.Subscriber, "streamer", sub.Streamer, "game", sub.Game, "exclude", sub.Exclude,
	)
	return sub, nil
}
