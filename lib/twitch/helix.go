package twitch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/fiffu/streamwatch/config"
	"github.com/nicklaw5/helix/v2"
	"go.uber.org/zap"
)

// Helix caps user_login filters at 100 per request.
const maxLoginsPerRequest = 100

var ErrMissingCredentials = errors.New("twitch client id and secret are required")

// StreamsClient is the subset of Helix the poller needs.
type StreamsClient interface {
	GetStreams(ctx context.Context, logins []string) ([]helix.Stream, error)
}

type helixStreams struct {
	log *zap.Logger

	mu       sync.Mutex
	client   *helix.Client
	hasToken bool
}

func NewHelixStreams(log *zap.Logger, cfg *config.Config, transport http.RoundTripper) (StreamsClient, error) {
	if cfg.Twitch.ClientID == "" || cfg.Twitch.ClientSecret == "" {
		return nil, ErrMissingCredentials
	}

	client, err := helix.NewClient(&helix.Options{
		ClientID:     cfg.Twitch.ClientID,
		ClientSecret: cfg.Twitch.ClientSecret,
		HTTPClient:   &http.Client{Transport: transport},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create helix client: %w", err)
	}
	return &helixStreams{log: log, client: client}, nil
}

func (h *helixStreams) GetStreams(ctx context.Context, logins []string) ([]helix.Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.hasToken {
		if err := h.refreshTokenLocked(); err != nil {
			return nil, err
		}
	}

	resp, err := h.getStreamsLocked(logins)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		h.log.Sugar().Info("Twitch app token rejected, requesting a new one")
		if err := h.refreshTokenLocked(); err != nil {
			return nil, err
		}
		if resp, err = h.getStreamsLocked(logins); err != nil {
			return nil, err
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get streams: unexpected status code: %d, error: %s, message: %s", resp.StatusCode, resp.Error, resp.ErrorMessage)
	}
	return resp.Data.Streams, nil
}

func (h *helixStreams) getStreamsLocked(logins []string) (*helix.StreamsResponse, error) {
	resp, err := h.client.GetStreams(&helix.StreamsParams{
		First:      maxLoginsPerRequest,
		UserLogins: logins,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get streams: %w", err)
	}
	return resp, nil
}

func (h *helixStreams) refreshTokenLocked() error {
	resp, err := h.client.RequestAppAccessToken([]string{})
	if err != nil {
		return fmt.Errorf("failed to request app access token: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("app access token: unexpected status code: %d, message: %s", resp.StatusCode, resp.ErrorMessage)
	}

	h.client.SetAppAccessToken(resp.Data.AccessToken)
	h.hasToken = true
	return nil
}
