// Package tokensource provides a provider-agnostic OAuth2
// authorization-code-with-PKCE flow plus a refreshing oauth2.TokenSource,
// for OpenAI-compatible upstreams that sit behind an OAuth2 authorization
// server instead of a static API key.
//
// # Authorization flow
//
// Use Authorizer for the initial flow to obtain a refresh token:
//
//	auth := tokensource.NewAuthorizer(clientID, endpoint, redirectURL, scopes)
//	verifier := oauth2.GenerateVerifier()
//	state := oauth2.GenerateVerifier()
//	authURL := auth.AuthCodeURL(state, verifier)
//	// after the user authorizes, the provider redirects back with a code
//	token, err := auth.Exchange(ctx, code, verifier)
//	// persist token.RefreshToken with a TokenStore
//
// # Token sources
//
// Use NewTokenSource to turn a persisted refresh token into a TokenSource
// that transparently refreshes the access token as needed:
//
//	ts := tokensource.NewTokenSource(ctx, refreshToken, clientID, endpoint)
//	client := oauth2.NewClient(ctx, ts)
//
// WithTransport overrides the HTTP transport used for refresh requests
// (proxies, custom timeouts, test doubles):
//
//	ts := tokensource.NewTokenSource(ctx, refreshToken, clientID, endpoint,
//		tokensource.WithTransport(customTransport))
//
// # Storage
//
// TokenStore persists the refresh token across process restarts. Three
// backends are provided: Env (read-only), File, and Keyring.
package tokensource
