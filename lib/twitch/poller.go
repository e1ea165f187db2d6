package twitch

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/fiffu/streamwatch/config"
	"github.com/fiffu/streamwatch/lib/metrics"
	"github.com/fiffu/streamwatch/lib/models"
	"github.com/jonboulle/clockwork"
	"github.com/nicklaw5/helix/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrHandlerRegistered = errors.New("an event handler is already registered")

type EventHandler interface {
	HandleEvent(ctx context.Context, evt models.StreamEvent) int
}

type channelState struct {
	observed bool // false until the first poll after enabling
	live     bool
	game     string
}

// Poller watches the live status of enabled channels and reports
// LiveStarted/GameChanged transitions to a single registered handler.
type Poller struct {
	log      *zap.Logger
	client   StreamsClient
	clock    clockwork.Clock
	metrics  *metrics.Metrics
	interval time.Duration

	mu       sync.Mutex
	channels map[string]*channelState
	handler  EventHandler

	cancel context.CancelFunc
	done   chan struct{}
}

func NewPoller(lc fx.Lifecycle, log *zap.Logger, cfg *config.Config, client StreamsClient, clock clockwork.Clock, m *metrics.Metrics) *Poller {
	p := &Poller{
		log:      log,
		client:   client,
		clock:    clock,
		metrics:  m,
		interval: cfg.PollInterval(),
		channels: make(map[string]*channelState),
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Sugar().Info("Trying to stop poller")
			p.Stop()
			return nil
		},
	})

	return p
}

// RegisterHandler installs the event handler. Only one may ever be registered.
func (p *Poller) RegisterHandler(h EventHandler) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.handler != nil {
		return ErrHandlerRegistered
	}
	p.handler = h
	return nil
}

func (p *Poller) EnableListening(streamer string) {
	streamer = models.Canonical(streamer)

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.channels[streamer]; !ok {
		p.channels[streamer] = &channelState{}
	}
}

func (p *Poller) DisableListening(streamer string) {
	streamer = models.Canonical(streamer)

	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.channels, streamer)
}

// Listening returns the enabled channels, sorted.
func (p *Poller) Listening() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.listeningLocked()
}

func (p *Poller) listeningLocked() []string {
	logins := make([]string, 0, len(p.channels))
	for login := range p.channels {
		logins = append(logins, login)
	}
	sort.Strings(logins)
	return logins
}

func (p *Poller) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})

	ticker := p.clock.NewTicker(p.interval)
	go func() {
		defer close(p.done)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				p.log.Sugar().Info("Poller stopped")
				return

			case <-ticker.Chan():
				p.poll(ctx)
			}
		}
	}()
}

func (p *Poller) Stop() {
	if p.cancel != nil {
		p.cancel()
		<-p.done
	}
}

func (p *Poller) poll(ctx context.Context) {
	p.mu.Lock()
	logins := p.listeningLocked()
	handler := p.handler
	p.mu.Unlock()

	if len(logins) == 0 {
		return
	}

	streams, err := p.fetch(ctx, logins)
	if err != nil {
		p.metrics.Polls.WithLabelValues("error").Inc()
		p.log.Sugar().Errorw("Failed to poll streams", "channels", len(logins), "err", err)
		return
	}
	p.metrics.Polls.WithLabelValues("ok").Inc()

	events := p.transition(logins, streams)
	if handler == nil {
		if len(events) > 0 {
			p.log.Sugar().Warnw("Dropping stream events, no handler registered", "count", len(events))
		}
		return
	}
	for _, evt := range events {
		handler.HandleEvent(ctx, evt)
	}
}

// fetch looks up live streams for logins, keyed by canonical login.
func (p *Poller) fetch(ctx context.Context, logins []string) (map[string]helix.Stream, error) {
	var mu sync.Mutex
	live := make(map[string]helix.Stream)

	g, ctx := errgroup.WithContext(ctx)
	for start := 0; start < len(logins); start += maxLoginsPerRequest {
		batch := logins[start:min(start+maxLoginsPerRequest, len(logins))]
		g.Go(func() error {
			streams, err := p.client.GetStreams(ctx, batch)
			if err != nil {
				p.metrics.PollErrors.Inc()
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			for _, stream := range streams {
				if stream.Type != "" && stream.Type != "live" {
					continue
				}
				live[models.Canonical(stream.UserLogin)] = stream
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return live, nil
}

// transition updates channel state from a poll result and returns the events
// it implies. Channels disabled while the poll was in flight are skipped.
func (p *Poller) transition(logins []string, live map[string]helix.Stream) []models.StreamEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	events := make([]models.StreamEvent, 0)
	for _, login := range logins {
		state, ok := p.channels[login]
		if !ok {
			continue
		}

		stream, isLive := live[login]
		if !isLive {
			state.observed, state.live, state.game = true, false, ""
			continue
		}

		switch {
		case !state.observed:
			// Baseline: a channel that was already live when enabled does not fire.
		case !state.live:
			events = append(events, models.StreamEvent{
				Kind:     models.LiveStarted,
				Streamer: login,
				GameName: stream.GameName,
				Title:    stream.Title,
			})
		case models.Canonical(stream.GameName) != models.Canonical(state.game):
			events = append(events, models.StreamEvent{
				Kind:     models.GameChanged,
				Streamer: login,
				GameName: stream.GameName,
			})
		}
		state.observed, state.live, state.game = true, true, stream.GameName
	}
	return events
}
