package proxy

import (
	"context"
	"net/http"
)

type inboundCredentialContextKey struct{}

// withInboundCredential attaches the client's own Anthropic credential
// (Authorization or x-api-key) to ctx, if present, so a
// CredentialForwardingTransport further down the line can decide whether to
// pass it through or substitute the operator's upstream key (§4.10
// "Forwarding"). The core adapter never sees or inspects this value.
func withInboundCredential(ctx context.Context, r *http.Request) context.Context {
	cred := r.Header.Get("Authorization")
	if cred == "" {
		if apiKey := r.Header.Get("x-api-key"); apiKey != "" {
			cred = "Bearer " + apiKey
		}
	}
	if cred == "" {
		return ctx
	}
	return context.WithValue(ctx, inboundCredentialContextKey{}, cred)
}

// CredentialForwardingTransport sets the upstream request's Authorization
// header to the client's own inbound credential when one was provided,
// falling back to a fixed operator-configured API key otherwise. It never
// overwrites an Authorization header the adapter itself already set.
type CredentialForwardingTransport struct {
	Base   http.RoundTripper
	APIKey string
}

func (t *CredentialForwardingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if req.Header.Get("Authorization") != "" {
		return base.RoundTrip(req)
	}

	cred, _ := req.Context().Value(inboundCredentialContextKey{}).(string)
	if cred == "" && t.APIKey == "" {
		return base.RoundTrip(req)
	}

	req = req.Clone(req.Context())
	if cred != "" {
		req.Header.Set("Authorization", cred)
	} else {
		req.Header.Set("Authorization", "Bearer "+t.APIKey)
	}
	return base.RoundTrip(req)
}
