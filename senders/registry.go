package senders

import (
	"context"
	"net/http"

	"github.com/fiffu/streamwatch/config"
	"github.com/fiffu/streamwatch/lib/models"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	PlatformDiscord = "discord"
	PlatformEmail   = "email"
	PlatformLog     = "log"
)

type Sender interface {
	Send(ctx context.Context, dest models.Destination, text string) (string, error)
}

type Registry map[string]Sender

func NewSenderRegistry(lc fx.Lifecycle, log *zap.Logger, cfg *config.Config, transport http.RoundTripper) Registry {
	base := base{log, cfg, transport}
	registry := Registry{
		PlatformDiscord: &discordSender{base},
		PlatformLog:     &logSender{base},
	}
	if cfg.Mailgun.Domain != "" && cfg.Mailgun.APIKey != "" {
		registry[PlatformEmail] = &mailgunSender{base}
	} else {
		log.Sugar().Info("Email delivery is disabled since Mailgun is not configured")
	}
	return registry
}

type base struct {
	log       *zap.Logger
	cfg       *config.Config
	transport http.RoundTripper
}
