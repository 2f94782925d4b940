package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"

	"github.com/wrenhollow/anthropic-bridge/internal/config"
	"github.com/wrenhollow/anthropic-bridge/internal/proxy"
	"github.com/wrenhollow/anthropic-bridge/internal/tokensource"
)

// App orchestrates the lifecycle of the proxy server and its collaborators.
type App struct {
	cfg    *config.Config
	proxy  *proxy.Proxy
	health *Health
}

// New builds an App from cfg: it assembles the upstream-facing transport
// (credential forwarding, plus OAuth2 refresh when configured) and the
// Proxy that uses it.
func New(cfg *config.Config) (*App, error) {
	transport, err := upstreamTransport(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build upstream transport: %w", err)
	}

	health := NewHealth()

	proxyServer, err := proxy.New(
		cfg.Upstream.BaseURL,
		cfg.Upstream.Model,
		health,
		proxy.WithTransport(transport),
		proxy.WithMaxBodyBytes(cfg.MaxBodyBytes),
		proxy.WithDebugDump(cfg.DebugDumpDir),
		proxy.WithRequestTimeout(cfg.Upstream.RequestTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create proxy: %w", err)
	}

	return &App{cfg: cfg, proxy: proxyServer, health: health}, nil
}

// upstreamTransport builds the http.RoundTripper handed to the proxy. When
// an OAuth2 client ID is configured and a refresh token is stored, the
// credential-forwarding transport sits on top of a refreshing OAuth2
// transport, whose access token replaces the Authorization header set above
// it; otherwise it forwards either the client's own credential or the
// operator's static API key (§4.10).
func upstreamTransport(cfg *config.Config) (http.RoundTripper, error) {
	base := http.DefaultTransport

	if cfg.Auth.ClientID == "" {
		// No OAuth2 authorization server configured; forward the client's
		// own credential or the operator's static key.
		return &proxy.CredentialForwardingTransport{Base: base, APIKey: cfg.Upstream.APIKey}, nil
	}

	store, err := cfg.Auth.NewTokenStore()
	if err != nil {
		return nil, err
	}

	refreshToken, err := store.Read(context.Background())
	if err != nil {
		return nil, fmt.Errorf("reading refresh token: %w", err)
	}
	if refreshToken == "" {
		// No OAuth session established yet (run `gatewayctl auth login`);
		// fall back to the static key in the meantime.
		return &proxy.CredentialForwardingTransport{Base: base, APIKey: cfg.Upstream.APIKey}, nil
	}

	endpoint := oauth2.Endpoint{AuthURL: cfg.Auth.AuthURL, TokenURL: cfg.Auth.TokenURL}
	ts := tokensource.NewTokenSource(context.Background(), refreshToken, cfg.Auth.ClientID, endpoint, tokensource.WithTransport(base))
	oauthTransport := &oauth2.Transport{Source: ts, Base: base}
	return &proxy.CredentialForwardingTransport{Base: oauthTransport, APIKey: cfg.Upstream.APIKey}, nil
}

// Start starts all services and blocks until shutdown is triggered.
// Uses errgroup for runtime error monitoring and shutdown function collection for coordinated cleanup.
func (a *App) Start(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	var shutdownFuncs []func(context.Context) error

	// Startup phase: Start services
	slog.InfoContext(gCtx, "starting proxy server", "listen", a.cfg.Listen)
	proxyErrCh, err := a.proxy.Start(gCtx, a.cfg.Listen)
	if err != nil {
		return fmt.Errorf("proxy startup failed: %w", err)
	}
	shutdownFuncs = append(shutdownFuncs, a.proxy.Shutdown)
	a.health.SetReady(true)
	shutdownFuncs = append(shutdownFuncs, func(context.Context) error {
		a.health.SetReady(false)
		return nil
	})

	// Monitor runtime errors - errgroup cancels context on first error
	g.Go(func() error {
		select {
		case err := <-proxyErrCh:
			if err != nil {
				slog.ErrorContext(gCtx, "proxy runtime error", "error", err)
				return fmt.Errorf("proxy: %w", err)
			}
			return nil
		case <-gCtx.Done():
			return nil
		}
	})

	runtimeErr := g.Wait()

	slog.InfoContext(gCtx, "shutting down services")

	// Shutdown phase: Stop all services
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownWait)
	defer cancel()

	var errs []error
	if runtimeErr != nil {
		errs = append(errs, fmt.Errorf("runtime: %w", runtimeErr))
	}

	for i := len(shutdownFuncs) - 1; i >= 0; i-- {
		if err := shutdownFuncs[i](shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "service shutdown failed", "error", err)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	slog.Info("application stopped")
	return nil
}
