package models

import "fmt"

type Notification struct {
	Subscription Subscription
	Event        StreamEvent
}

func (n Notification) Text() string {
	sub := n.Subscription
	if sub.Exclude {
		return fmt.Sprintf(
			"<@%s>, %s just started playing %s, which is not %s!",
			sub.Subscriber, sub.Streamer, n.Event.GameName, sub.Game,
		)
	}
	return fmt.Sprintf("<@%s>, %s just started playing %s!", sub.Subscriber, sub.Streamer, sub.Game)
}
