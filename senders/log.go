package senders

import (
	"context"

	"github.com/fiffu/streamwatch/lib/models"
)

type logSender struct {
	base
}

func (l *logSender) Send(ctx context.Context, dest models.Destination, text string) (string, error) {
	l.log.Sugar().Infow("Notification", "channel", dest.Identifier, "text", text)
	return "", nil
}
