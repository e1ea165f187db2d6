package main

import (
	"net/http"
	"os"
	"time"

	"github.com/fiffu/streamwatch/app"
	"github.com/fiffu/streamwatch/config"
	"github.com/fiffu/streamwatch/lib"
	"github.com/fiffu/streamwatch/lib/commands"
	"github.com/fiffu/streamwatch/lib/metrics"
	"github.com/fiffu/streamwatch/lib/router"
	"github.com/fiffu/streamwatch/lib/store"
	"github.com/fiffu/streamwatch/lib/twitch"
	"github.com/fiffu/streamwatch/senders"
	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func NewLogger() (*zap.Logger, error) {
	switch os.Getenv("ENVIRONMENT") {
	default:
		return zap.NewDevelopment()

	case "production":
		logCfg := zap.NewProductionConfig()
		logCfg.EncoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			t = t.UTC()
			zapcore.ISO8601TimeEncoder(t, enc)
		}
		return logCfg.Build()
	}
}

func NewRouter(log *zap.Logger, s *store.Store, d *senders.Dispatcher, m *metrics.Metrics) *router.Router {
	return router.NewRouter(log, s, d, m)
}

func NewListener(p *twitch.Poller) lib.Listener {
	return p
}

// RegisterRouter installs the one long-lived upstream event handler.
func RegisterRouter(p *twitch.Poller, r *router.Router) error {
	return p.RegisterHandler(r)
}

func main() {
	fx.New(
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),

		fx.Provide(config.NewConfig),
		fx.Provide(NewLogger),
		fx.Provide(metrics.NewMetrics),
		fx.Provide(clockwork.NewRealClock),

		fx.Provide(app.NewTransport),
		fx.Provide(senders.NewSenderRegistry),
		fx.Provide(senders.NewDispatcher),

		fx.Provide(store.New),
		fx.Provide(twitch.NewHelixStreams),
		fx.Provide(twitch.NewPoller),
		fx.Provide(NewListener),
		fx.Provide(NewRouter),
		fx.Provide(lib.NewService),
		fx.Provide(commands.NewHandler),
		fx.Provide(app.NewAPI),

		fx.Invoke(RegisterRouter),
		fx.Invoke(func(*http.Server) {}),
	).Run()
}
