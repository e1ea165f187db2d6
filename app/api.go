package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fiffu/streamwatch/config"
	"github.com/fiffu/streamwatch/lib/commands"
	"github.com/fiffu/streamwatch/lib/metrics"
	"github.com/fiffu/streamwatch/lib/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewAPI(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger, handler *commands.Handler, m *metrics.Metrics) *http.Server {
	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	srv := &http.Server{Addr: addr, Handler: router(cfg, log, handler, m)}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Sugar().Errorw("HTTP server stopped", "err", err)
				}
			}()
			log.Sugar().Infow("HTTP server started", "addr", addr)
			return nil
		},
		OnStop: srv.Shutdown,
	})

	return srv
}

func router(cfg *config.Config, log *zap.Logger, handler *commands.Handler, m *metrics.Metrics) http.Handler {
	ctrl := &controller{log, handler}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", m.Handler())

	r.Route("/api", func(r chi.Router) {
		if creds := cfg.GetCreds(); len(creds) > 0 {
			r.Use(middleware.BasicAuth("streamwatch", creds))
		} else {
			log.Sugar().Info("Auth is disabled since no credentials are defined")
		}

		r.Post("/users/{user_id}/commands", ctrl.runCommand)
	})

	return r
}

type controller struct {
	log     *zap.Logger
	handler *commands.Handler
}

func (ctrl *controller) reject(w http.ResponseWriter, status int, err error) {
	if err != nil {
		http.Error(w, err.Error(), status)
	} else {
		w.WriteHeader(status)
	}
}

func (ctrl *controller) resolve(w http.ResponseWriter, status int, reply string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(reply))
}

// runCommand accepts either a chat line in "text", or structured "command",
// "streamer" and "game" fields.
func (ctrl *controller) runCommand(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := commands.Caller{
		Subscriber: chi.URLParam(r, "user_id"),
		Destination: models.Destination{
			Platform:   r.FormValue("platform"),
			Identifier: r.FormValue("destination"),
		},
	}

	if text := r.FormValue("text"); text != "" {
		ctrl.resolve(w, http.StatusOK, ctrl.handler.Run(ctx, caller, text))
		return
	}

	name := r.FormValue("command")
	if name == "" {
		ctrl.reject(w, http.StatusBadRequest, errors.New("either text or command is required"))
		return
	}

	cmd, err := commands.Parse(name, r.FormValue("streamer"), r.FormValue("game"))
	if err != nil {
		ctrl.resolve(w, http.StatusOK, ctrl.handler.ReplyError(err))
		return
	}
	ctrl.resolve(w, http.StatusOK, ctrl.handler.Execute(ctx, caller, cmd))
}
