package paypal

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"payment-service/internal/config"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

const defaultTokenMarginSeconds = 600

// TokenSource owns the provider's bearer credential. The cached token and
// its expiry are replaced together under one mutex hold, so concurrent
// callers never observe a half-updated pair. Tokens are never persisted.
type TokenSource struct {
	cfg    config.PayPal
	client *resty.Client
	logger *slog.Logger
	now    func() time.Time

	mu     sync.Mutex
	token  string
	expiry time.Time
}

func NewTokenSource(cfg config.PayPal, client *resty.Client, logger *slog.Logger) *TokenSource {
	if cfg.TokenMarginSeconds <= 0 {
		cfg.TokenMarginSeconds = defaultTokenMarginSeconds
	}
	return &TokenSource{
		cfg:    cfg,
		client: client,
		logger: logger,
		now:    time.Now,
	}
}

// Token returns the cached credential while it is still valid. The safety
// margin is already baked into the stored expiry, so a plain expiry check
// suffices. With forceRefresh, or when the cache is stale, a
// client-credentials exchange is performed.
func (s *TokenSource) Token(ctx context.Context, forceRefresh bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !forceRefresh && s.token != "" && s.expiry.After(s.now()) {
		return s.token, nil
	}

	if s.cfg.ClientID == "" || s.cfg.ClientSecret == "" || s.cfg.TokenURL == "" {
		return "", ErrConfiguration
	}

	s.logger.InfoContext(ctx, "Requesting new provider access token")

	resp, err := s.client.R().
		SetContext(ctx).
		SetBasicAuth(s.cfg.ClientID, s.cfg.ClientSecret).
		SetFormData(map[string]string{"grant_type": "client_credentials"}).
		Post(s.cfg.TokenURL)
	if err != nil {
		return "", errors.Wrap(ErrProviderUnavailable, err.Error())
	}

	if !resp.IsSuccess() {
		return "", errors.Wrapf(ErrProviderUnavailable, "token endpoint returned %s", resp.Status())
	}

	var tokenResp AccessTokenResponse
	if err := json.Unmarshal(resp.Body(), &tokenResp); err != nil {
		return "", errors.Wrap(ErrMalformedResponse, err.Error())
	}

	if tokenResp.AccessToken == "" {
		return "", errors.Wrap(ErrMalformedResponse, "no access_token in token response")
	}

	ttl := time.Duration(tokenResp.ExpiresIn-s.cfg.TokenMarginSeconds) * time.Second
	s.token = tokenResp.AccessToken
	s.expiry = s.now().Add(ttl)

	s.logger.InfoContext(ctx, "Cached new provider access token", "expiresAt", s.expiry)

	return s.token, nil
}
