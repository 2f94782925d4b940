package tokensource

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// Authorizer drives the authorization-code-with-PKCE flow against a single
// OAuth2 provider. It always attaches a PKCE challenge/verifier pair, since
// every upstream this gateway talks to is expected to require one.
type Authorizer struct {
	config *oauth2.Config
	client *http.Client
}

// NewAuthorizer builds an Authorizer for the given provider. clientID,
// endpoint, redirectURL, and scopes are supplied by the caller rather than
// hardcoded, so the same flow serves any OAuth2-fronted OpenAI-compatible
// upstream (Azure AD, Okta, a vendor's own authorization server, and so on),
// not only the one the flow was first written against.
func NewAuthorizer(clientID string, endpoint oauth2.Endpoint, redirectURL string, scopes []string) *Authorizer {
	return &Authorizer{
		config: &oauth2.Config{
			ClientID:    clientID,
			RedirectURL: redirectURL,
			Scopes:      scopes,
			Endpoint:    endpoint,
		},
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// AuthCodeURL generates the authorization URL for the PKCE flow. verifier
// must be generated with oauth2.GenerateVerifier and passed unchanged to
// Exchange once the provider redirects back with a code.
func (a *Authorizer) AuthCodeURL(state, verifier string) string {
	return a.config.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
}

// Exchange completes the flow, trading an authorization code for tokens.
// verifier must be the value passed to AuthCodeURL for the same flow.
func (a *Authorizer) Exchange(ctx context.Context, code, verifier string) (*oauth2.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if verifier == "" {
		return nil, fmt.Errorf("tokensource: verifier must not be empty")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.client)
	token, err := a.config.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("tokensource: exchanging authorization code: %w", err)
	}
	return token, nil
}
