package tokensource

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
)

// Option configures a TokenSource built by NewTokenSource.
type Option func(*tokenSourceConfig)

type tokenSourceConfig struct {
	transport http.RoundTripper
}

// WithTransport overrides the HTTP transport used to perform refresh
// requests against the provider's token endpoint.
func WithTransport(t http.RoundTripper) Option {
	return func(c *tokenSourceConfig) { c.transport = t }
}

// NewTokenSource returns an oauth2.TokenSource that exchanges refreshToken
// for access tokens against endpoint, refreshing automatically and caching
// the result until it is close to expiry. The returned source is safe for
// concurrent use (golang.org/x/oauth2.ReuseTokenSource is goroutine-safe).
func NewTokenSource(ctx context.Context, refreshToken, clientID string, endpoint oauth2.Endpoint, opts ...Option) oauth2.TokenSource {
	cfg := &tokenSourceConfig{transport: http.DefaultTransport}
	for _, opt := range opts {
		opt(cfg)
	}

	httpClient := &http.Client{Transport: cfg.transport}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)

	oauthCfg := &oauth2.Config{
		ClientID: clientID,
		Endpoint: endpoint,
	}

	seed := &oauth2.Token{RefreshToken: refreshToken}
	return oauth2.ReuseTokenSource(nil, oauthCfg.TokenSource(ctx, seed))
}
