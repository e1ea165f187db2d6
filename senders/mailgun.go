package senders

import (
	"context"

	"github.com/fiffu/streamwatch/lib/models"
	"github.com/fiffu/streamwatch/senders/email"
	"github.com/mailgun/mailgun-go/v4"
)

type mailgunSender struct {
	base
}

func (e *mailgunSender) Send(ctx context.Context, dest models.Destination, text string) (string, error) {
	mg := mailgun.NewMailgun(e.cfg.Mailgun.Domain, e.cfg.Mailgun.APIKey)
	mg.Client().Transport = e.transport

	format := &email.NotificationEmailFormat{Text: text}

	// Create message with empty body first.
	message := mg.NewMessage(e.cfg.Mailgun.SenderFrom, format.Subject(), "", dest.Identifier)
	// SetHtml with the payload proper. This will assign the MIME type properly.
	message.SetHtml(format.Body())

	_, id, err := mg.Send(ctx, message)
	return id, err
}
