package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cissero/platform/internal/guard"
)

// ErrNotConfigured is returned when the provider has no credentials.
var ErrNotConfigured = errors.New("provider not configured")

const twitchCircuitKey = "twitch"

// Stream is one live stream as returned by the streams proxy.
type Stream struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	UserLogin    string    `json:"user_login"`
	UserName     string    `json:"user_name"`
	GameName     string    `json:"game_name"`
	Title        string    `json:"title"`
	ViewerCount  int       `json:"viewer_count"`
	StartedAt    time.Time `json:"started_at"`
	Language     string    `json:"language"`
	ThumbnailURL string    `json:"thumbnail_url"`
}

// TwitchConfig holds the Helix credentials and endpoints.
type TwitchConfig struct {
	ClientID     string
	ClientSecret string
	APIURL       string
	AuthURL      string
}

// TwitchClient reads live stream data from the Twitch Helix API using an
// app access token obtained with the client-credentials grant.
type TwitchClient struct {
	cfg     TwitchConfig
	breaker *guard.CircuitBreaker
	logger  *slog.Logger
	client  *http.Client
	now     func() time.Time

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewTwitchClient creates a Twitch client. breaker may be shared with other providers.
func NewTwitchClient(cfg TwitchConfig, breaker *guard.CircuitBreaker, logger *slog.Logger) *TwitchClient {
	return &TwitchClient{
		cfg:     cfg,
		breaker: breaker,
		logger:  logger,
		client:  &http.Client{Timeout: 5 * time.Second},
		now:     time.Now,
	}
}

// TopStreams returns the most watched live streams, at most limit (1-100).
func (c *TwitchClient) TopStreams(ctx context.Context, limit int) ([]Stream, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	q := url.Values{"first": {strconv.Itoa(limit)}}
	return c.streams(ctx, q)
}

// StreamByUsername returns the live stream of a channel, or nil when the
// channel is offline or unknown.
func (c *TwitchClient) StreamByUsername(ctx context.Context, username string) (*Stream, error) {
	q := url.Values{"user_login": {strings.ToLower(username)}}
	streams, err := c.streams(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(streams) == 0 {
		return nil, nil
	}
	return &streams[0], nil
}

func (c *TwitchClient) streams(ctx context.Context, q url.Values) ([]Stream, error) {
	if c.cfg.ClientID == "" || c.cfg.ClientSecret == "" {
		return nil, ErrNotConfigured
	}

	var out []Stream
	err := c.breaker.Do(ctx, twitchCircuitKey, func(ctx context.Context) error {
		streams, status, err := c.getStreams(ctx, q)
		if status == http.StatusUnauthorized {
			// Token revoked or expired early: refresh once.
			c.invalidateToken()
			streams, _, err = c.getStreams(ctx, q)
		}
		out = streams
		return err
	})
	return out, err
}

func (c *TwitchClient) getStreams(ctx context.Context, q url.Values) ([]Stream, int, error) {
	token, err := c.appToken(ctx)
	if err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		strings.TrimRight(c.cfg.APIURL, "/")+"/streams?"+q.Encode(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Client-Id", c.cfg.ClientID)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("twitch streams: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, fmt.Errorf("twitch streams returned %d", resp.StatusCode)
	}

	var body struct {
		Data []Stream `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("decode streams: %w", err)
	}
	if body.Data == nil {
		body.Data = []Stream{}
	}
	return body.Data, resp.StatusCode, nil
}

// appToken returns the cached app token, fetching a new one a minute
// before the current one expires, or halfway through a shorter lifetime.
func (c *TwitchClient) appToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"grant_type":    {"client_credentials"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AuthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("twitch token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("twitch token returned %d", resp.StatusCode)
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("twitch token: empty access_token")
	}

	c.token = tok.AccessToken
	lifetime := time.Duration(tok.ExpiresIn) * time.Second
	c.tokenExpiry = c.now().Add(lifetime - min(time.Minute, lifetime/2))
	c.logger.Debug("twitch app token refreshed", "expires_in", tok.ExpiresIn)
	return c.token, nil
}

func (c *TwitchClient) invalidateToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
}
