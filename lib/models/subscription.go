package models

import (
	"github.com/google/uuid"
)

// Subscription is a notification rule for one subscriber on one streamer.
// Values are never mutated after creation; removal replaces them.
type Subscription struct {
	ID          uuid.UUID
	Subscriber  string
	Streamer    string
	Game        string
	Exclude     bool
	Destination Destination
}

type Subscriptions []Subscription

func NewSubscription(subscriber, streamer, game string, exclude bool, dest Destination) Subscription {
	return Subscription{
		ID:          uuid.New(),
		Subscriber:  subscriber,
		Streamer:    Canonical(streamer),
		Game:        Canonical(game),
		Exclude:     exclude,
		Destination: dest,
	}
}

// Matches reports whether a stream currently playing game should fire this
// subscription. game must already be canonical.
func (s Subscription) Matches(game string) bool {
	if s.Exclude {
		return game != s.Game
	}
	return game == s.Game
}

// OwnedBy is used as a filter when removing or listing.
func (s Subscription) OwnedBy(subscriber string) bool {
	return s.Subscriber == subscriber
}
