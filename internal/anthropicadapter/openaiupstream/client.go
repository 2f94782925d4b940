package openaiupstream

import (
	"fmt"
	"net/http"
	"time"
)

// newClient builds the http.Client used to call the upstream Chat
// Completions endpoint. The transport chain is expected to handle
// authentication (either the operator's configured upstream key or the
// forwarded client credential; see the proxy-level collaborator).
func newClient(transport http.RoundTripper) (*http.Client, error) {
	if transport == nil {
		return nil, fmt.Errorf("transport cannot be nil")
	}

	return &http.Client{
		Transport: transport,
		// Timeout = 0 allows long-running SSE streams. The non-streaming
		// path bounds itself with a context deadline instead (see
		// Adapter.requestTimeout / withRequestTimeout), since a client-level
		// Timeout here would apply to both paths indiscriminately.
	}, nil
}

// chatCompletionsPath is appended to the configured upstream base URL
// (§6 "HTTP egress").
const chatCompletionsPath = "/v1/chat/completions"

// promptCachingBetaHeaderName/Value are attached to the outgoing upstream
// request iff the incoming Anthropic request carried any cache-control
// directive (§4.6 "Cache-control").
const (
	promptCachingBetaHeaderName  = "anthropic-beta"
	promptCachingBetaHeaderValue = "prompt-caching-2024-07-31"
)

func upstreamURL(baseURL string) string {
	for len(baseURL) > 0 && baseURL[len(baseURL)-1] == '/' {
		baseURL = baseURL[:len(baseURL)-1]
	}
	return baseURL + chatCompletionsPath
}

func withRequestTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
