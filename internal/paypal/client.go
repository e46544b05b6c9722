package paypal

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/VictoriaMetrics/metrics"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

var (
	clientRequestCounter   = metrics.GetOrCreateCounter(`paypal_client_requests_total{result="sent"}`)
	clientTransportCounter = metrics.GetOrCreateCounter(`paypal_client_requests_total{result="transport_error"}`)
	clientRetryCounter     = metrics.GetOrCreateCounter(`paypal_client_requests_total{result="auth_retry"}`)
)

// Client issues authorized requests against the provider API. Non-2xx
// responses are data, not errors: the only status this layer interprets is
// Unauthorized, which triggers one forced token refresh and, when the
// refresh yields a materially new token, exactly one resend.
type Client struct {
	tokens *TokenSource
	http   *resty.Client
	logger *slog.Logger
}

func NewClient(tokens *TokenSource, httpClient *resty.Client, logger *slog.Logger) *Client {
	return &Client{
		tokens: tokens,
		http:   httpClient,
		logger: logger,
	}
}

func (c *Client) Execute(ctx context.Context, method, url string, body []byte) (int, []byte, error) {
	token, err := c.tokens.Token(ctx, false)
	if err != nil {
		return 0, nil, err
	}

	resp, err := c.attempt(ctx, method, url, body, token)
	if err != nil {
		clientTransportCounter.Inc()
		return 0, nil, errors.Wrap(ErrTransport, err.Error())
	}
	clientRequestCounter.Inc()

	if resp.StatusCode() == http.StatusUnauthorized {
		newToken, refreshErr := c.tokens.Token(ctx, true)
		if refreshErr != nil || newToken == token {
			if refreshErr != nil {
				c.logger.WarnContext(ctx, "Token refresh after 401 failed", "error", refreshErr)
			}
			return resp.StatusCode(), resp.Body(), nil
		}

		c.logger.InfoContext(ctx, "Retrying provider request with refreshed token", "url", url)
		clientRetryCounter.Inc()

		resp, err = c.attempt(ctx, method, url, body, newToken)
		if err != nil {
			clientTransportCounter.Inc()
			return 0, nil, errors.Wrap(ErrTransport, err.Error())
		}
		clientRequestCounter.Inc()
	}

	return resp.StatusCode(), resp.Body(), nil
}

func (c *Client) PostJSON(ctx context.Context, url string, body []byte) (int, []byte, error) {
	return c.Execute(ctx, http.MethodPost, url, body)
}

func (c *Client) GetJSON(ctx context.Context, url string) (int, []byte, error) {
	return c.Execute(ctx, http.MethodGet, url, nil)
}

func (c *Client) attempt(ctx context.Context, method, url string, body []byte, token string) (*resty.Response, error) {
	req := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Accept", "application/json")

	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	return req.Execute(method, url)
}
