package app

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/fiffu/streamwatch/config"
	"github.com/fiffu/streamwatch/lib"
	"github.com/fiffu/streamwatch/lib/commands"
	"github.com/fiffu/streamwatch/lib/metrics"
	"github.com/fiffu/streamwatch/lib/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

type nopListener struct{}

func (nopListener) EnableListening(string)  {}
func (nopListener) DisableListening(string) {}

func newTestServer(t *testing.T, cfg *config.Config) (*httptest.Server, *store.Store) {
	s := store.New()
	m := metrics.NewMetrics()
	svc := lib.NewService(fxtest.NewLifecycle(t), zap.NewNop(), s, nopListener{}, m)
	handler := commands.NewHandler(zap.NewNop(), svc)

	srv := httptest.NewServer(router(cfg, zap.NewNop(), handler, m))
	t.Cleanup(srv.Close)
	return srv, s
}

func post(t *testing.T, srv *httptest.Server, path string, form url.Values) (int, string) {
	resp, err := http.PostForm(srv.URL+path, form)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestAPI_Health(t *testing.T) {
	srv, _ := newTestServer(t, &config.Config{})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_Metrics(t *testing.T) {
	srv, _ := newTestServer(t, &config.Config{})

	post(t, srv, "/api/users/42/commands", url.Values{
		"text": {"/addsub ninja valorant"}, "platform": {"log"}, "destination": {"general"},
	})

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "streamwatch_tracked_streamers 1")
}

func TestAPI_TextCommands(t *testing.T) {
	srv, s := newTestServer(t, &config.Config{})
	dest := url.Values{"platform": {"log"}, "destination": {"general"}}

	form := url.Values{"text": {"/addsub Ninja League of Legends"}}
	for k, v := range dest {
		form[k] = v
	}
	status, body := post(t, srv, "/api/users/42/commands", form)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Subscription created for ninja playing league of legends", body)
	assert.Equal(t, []string{"ninja"}, s.Streamers())

	_, body = post(t, srv, "/api/users/42/commands", url.Values{"text": {"/getsubs"}})
	assert.Equal(t, "List of Subscriptions for <@42>:\nninja: league of legends\n", body)
}

func TestAPI_StructuredCommands(t *testing.T) {
	srv, s := newTestServer(t, &config.Config{})

	_, body := post(t, srv, "/api/users/7/commands", url.Values{
		"command": {"exclude"}, "streamer": {"shroud"}, "game": {"Chess"},
		"platform": {"discord"}, "destination": {"https://discord.example/hook"},
	})
	assert.Equal(t, "Subscription created for shroud playing anything except chess", body)

	_, body = post(t, srv, "/api/users/7/commands", url.Values{"command": {"addsub"}, "streamer": {"shroud"}})
	assert.Equal(t, "Unable to create subscription. Check command and try again", body)

	_, body = post(t, srv, "/api/users/7/commands", url.Values{"command": {"clearsubs"}, "streamer": {"shroud"}})
	assert.Equal(t, "Subscriptions removed for shroud", body)
	assert.Empty(t, s.Streamers())
}

func TestAPI_MissingDestinationIsRejectedWithoutMutation(t *testing.T) {
	srv, s := newTestServer(t, &config.Config{})

	_, body := post(t, srv, "/api/users/7/commands", url.Values{"text": {"/addsub ninja valorant"}})
	assert.Equal(t, "Unable to create subscription. Check command and try again", body)
	assert.Zero(t, s.Len())
}

func TestAPI_RequiresCommand(t *testing.T) {
	srv, _ := newTestServer(t, &config.Config{})

	status, _ := post(t, srv, "/api/users/7/commands", url.Values{})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAPI_BasicAuth(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("BASIC_AUTH_CREDS", "admin:secret")
	cfg, err := config.NewConfig(fxtest.NewLifecycle(t), zap.NewNop())
	require.NoError(t, err)
	srv, _ := newTestServer(t, cfg)

	status, _ := post(t, srv, "/api/users/7/commands", url.Values{"text": {"/help"}})
	assert.Equal(t, http.StatusUnauthorized, status)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/users/7/commands", strings.NewReader("text=%2Fhelp"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("admin", "secret")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
