package lib

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/fiffu/streamwatch/lib/metrics"
	"github.com/fiffu/streamwatch/lib/models"
	"github.com/fiffu/streamwatch/lib/router"
	"github.com/fiffu/streamwatch/lib/store"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

// fakeListener mirrors what an upstream client would see and fails the test
// on redundant toggles.
type fakeListener struct {
	t       *testing.T
	mu      sync.Mutex
	enabled map[string]bool
	calls   []string
}

func newFakeListener(t *testing.T) *fakeListener {
	return &fakeListener{t: t, enabled: make(map[string]bool)}
}

func (l *fakeListener) EnableListening(streamer string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	assert.False(l.t, l.enabled[streamer], "enable called for already tracked %s", streamer)
	l.enabled[streamer] = true
	l.calls = append(l.calls, "enable:"+streamer)
}

func (l *fakeListener) DisableListening(streamer string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	assert.True(l.t, l.enabled[streamer], "disable called for untracked %s", streamer)
	delete(l.enabled, streamer)
	l.calls = append(l.calls, "disable:"+streamer)
}

func (l *fakeListener) Enabled() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.enabled))
	for s := range l.enabled {
		out = append(out, s)
	}
	return out
}

func (l *fakeListener) Calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type recordingDispatcher struct {
	mu   sync.Mutex
	sent []models.Destination
}

func (d *recordingDispatcher) Dispatch(dest models.Destination, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, dest)
}

func (d *recordingDispatcher) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sent)
}

type fixture struct {
	svc      *Service
	store    *store.Store
	listener *fakeListener
	metrics  *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	s := store.New()
	l := newFakeListener(t)
	m := metrics.NewMetrics()
	svc := NewService(fxtest.NewLifecycle(t), zap.NewNop(), s, l, m)
	return &fixture{svc, s, l, m}
}

var dest = models.Destination{Platform: "discord", Identifier: "https://discord.example/hook"}

func TestService_EnableOnlyOnFirstSubscription(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddSubscription(ctx, "A", "ninja", "valorant", false, dest)
	require.NoError(t, err)
	_, err = f.svc.AddSubscription(ctx, "B", "Ninja", "fortnite", false, dest)
	require.NoError(t, err)
	_, err = f.svc.AddSubscription(ctx, "A", "ninja", "chess", true, dest)
	require.NoError(t, err)

	assert.Equal(t, []string{"enable:ninja"}, f.listener.Calls())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.TrackedStreamers))
	assert.Equal(t, 3.0, testutil.ToFloat64(f.metrics.Subscriptions))
}

func TestService_DisableOnlyOnLastRemoval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.svc.AddSubscription(ctx, "A", "ninja", "valorant", false, dest)
	f.svc.AddSubscription(ctx, "B", "ninja", "valorant", false, dest)
	f.svc.AddSubscription(ctx, "A", "shroud", "valorant", false, dest)

	assert.Equal(t, 1, f.svc.RemoveStreamerSubscriptions(ctx, "A", "NINJA"))
	assert.Equal(t, []string{"enable:ninja", "enable:shroud"}, f.listener.Calls())

	assert.Equal(t, 1, f.svc.RemoveSubscriptions(ctx, "A"))
	assert.Equal(t, []string{"enable:ninja", "enable:shroud", "disable:shroud"}, f.listener.Calls())

	assert.Equal(t, 1, f.svc.RemoveSubscriptions(ctx, "B"))
	assert.Equal(t, []string{"enable:ninja", "enable:shroud", "disable:shroud", "disable:ninja"}, f.listener.Calls())
	assert.Zero(t, testutil.ToFloat64(f.metrics.TrackedStreamers))
}

func TestService_RemoveUnknownIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Zero(t, f.svc.RemoveSubscriptions(ctx, "ghost"))
	assert.Zero(t, f.svc.RemoveStreamerSubscriptions(ctx, "ghost", "nobody"))
	assert.Empty(t, f.listener.Calls())
}

func TestService_MissingArguments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		subscriber, streamer, game string
		dest                       models.Destination
	}{
		{"", "ninja", "valorant", dest},
		{"A", " ", "valorant", dest},
		{"A", "ninja", "", dest},
		{"A", "ninja", "valorant", models.Destination{}},
	}
	for _, c := range cases {
		_, err := f.svc.AddSubscription(ctx, c.subscriber, c.streamer, c.game, false, c.dest)
		assert.ErrorIs(t, err, ErrMissingArgument)
	}
	assert.Empty(t, f.listener.Calls())
	assert.Zero(t, f.store.Len())
}

func TestService_ListSubscriptions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a1, _ := f.svc.AddSubscription(ctx, "A", "shroud", "valorant", false, dest)
	f.svc.AddSubscription(ctx, "B", "ninja", "valorant", false, dest)
	a2, _ := f.svc.AddSubscription(ctx, "A", "ninja", "Fortnite", true, dest)

	assert.Equal(t, models.Subscriptions{a2, a1}, f.svc.ListSubscriptions(ctx, "A"))
	assert.Empty(t, f.svc.ListSubscriptions(ctx, "C"))
}

func TestService_TrackedMatchesListenerUnderConcurrency(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	streamers := []string{"ninja", "shroud", "pokimane"}

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		subscriber := fmt.Sprintf("user-%d", i%5)
		streamer := streamers[i%len(streamers)]
		i := i
		wg.Add(2)
		go func() {
			defer wg.Done()
			f.svc.AddSubscription(ctx, subscriber, streamer, "valorant", false, dest)
		}()
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				f.svc.RemoveSubscriptions(ctx, subscriber)
			} else {
				f.svc.RemoveStreamerSubscriptions(ctx, subscriber, streamer)
			}
		}()
	}
	wg.Wait()

	assert.ElementsMatch(t, f.store.Streamers(), f.listener.Enabled())
}

func TestService_Scenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := &recordingDispatcher{}
	r := router.NewRouter(zap.NewNop(), f.store, d, f.metrics)
	evt := models.StreamEvent{Kind: models.LiveStarted, Streamer: "ninja", GameName: "Valorant"}

	_, err := f.svc.AddSubscription(ctx, "A", "ninja", "valorant", false, dest)
	require.NoError(t, err)

	r.HandleEvent(ctx, evt)
	assert.Equal(t, 1, d.Count())

	f.svc.RemoveStreamerSubscriptions(ctx, "A", "ninja")
	assert.Equal(t, []string{"enable:ninja", "disable:ninja"}, f.listener.Calls())

	r.HandleEvent(ctx, evt)
	assert.Equal(t, 1, d.Count())
}
