package senders

import (
	"context"

	"github.com/carlmjohnson/requests"
	"github.com/fiffu/streamwatch/lib/models"
)

type discordSender struct {
	base
}

type discordWebhookMessage struct {
	Content         string                 `json:"content"`
	AllowedMentions discordAllowedMentions `json:"allowed_mentions"`
}

type discordAllowedMentions struct {
	Parse []string `json:"parse"`
}

type discordWebhookResponse struct {
	ID string `json:"id"`
}

// Send posts text to the webhook URL held in dest.Identifier. wait=true asks
// Discord to echo the created message so we can log its ID.
func (d *discordSender) Send(ctx context.Context, dest models.Destination, text string) (string, error) {
	var resp discordWebhookResponse
	err := requests.URL(dest.Identifier).
		Param("wait", "true").
		Transport(d.transport).
		BodyJSON(&discordWebhookMessage{
			Content:         text,
			AllowedMentions: discordAllowedMentions{Parse: []string{"users"}},
		}).
		ToJSON(&resp).
		Fetch(ctx)
	return resp.ID, err
}
