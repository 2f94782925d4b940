package openaiupstream

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wrenhollow/anthropic-bridge/internal/schema/anthropic"
)

func TestAdapter_ProcessRequest_NonStreaming(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"x","model":"upstream-model","choices":[{"index":0,"message":{"role":"assistant","content":"Hello"},"finish_reason":"stop"}],"usage":{"prompt_tokens":1,"completion_tokens":1,"total_tokens":2}}`))
	}))
	defer upstream.Close()

	a := New(upstream.URL, "upstream-model", nil, 0)
	req := anthropic.Request{
		Model:     "claude-3-5-sonnet-20241022",
		MaxTokens: 100,
		Messages:  []anthropic.Message{{Role: "user", Content: anthropic.MessageContent{Text: strPtr("Hi")}}},
	}

	resp, err := a.ProcessRequest(t.Context(), req, http.DefaultTransport, nil)
	if err != nil {
		t.Fatalf("ProcessRequest: %v", err)
	}
	if len(resp.Content) != 1 || resp.Content[0].Text != "Hello" {
		t.Fatalf("content = %+v", resp.Content)
	}
	if resp.StopReason != anthropic.StopReasonEndTurn {
		t.Errorf("stop_reason = %q", resp.StopReason)
	}
}

func TestAdapter_ProcessStreamingRequest(t *testing.T) {
	sseBody := strings.Join([]string{
		`data: {"id":"x","model":"upstream-model","choices":[{"delta":{"role":"assistant"}}]}`,
		`data: {"id":"x","choices":[{"delta":{"content":"Hel"}}]}`,
		`data: {"id":"x","choices":[{"delta":{"content":"lo"},"finish_reason":null}]}`,
		`data: {"id":"x","choices":[{"delta":{},"finish_reason":"stop"}]}`,
		`data: [DONE]`,
		"",
	}, "\n\n")

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte(sseBody))
	}))
	defer upstream.Close()

	a := New(upstream.URL, "upstream-model", nil, 0)
	req := anthropic.Request{
		Model:     "claude-3-5-sonnet-20241022",
		MaxTokens: 100,
		Stream:    boolPtr(true),
		Messages:  []anthropic.Message{{Role: "user", Content: anthropic.MessageContent{Text: strPtr("Hi")}}},
	}

	seq, err := a.ProcessStreamingRequest(t.Context(), req, http.DefaultTransport, nil)
	if err != nil {
		t.Fatalf("ProcessStreamingRequest: %v", err)
	}

	var types []string
	var textConcat strings.Builder
	for ev, err := range seq {
		if err != nil {
			t.Fatalf("stream error: %v", err)
		}
		types = append(types, ev.Type)
		if ev.Type == anthropic.EventContentBlockDelta && ev.Delta.Type == anthropic.DeltaTypeText {
			textConcat.WriteString(ev.Delta.Text)
		}
	}

	if textConcat.String() != "Hello" {
		t.Errorf("text = %q, want Hello", textConcat.String())
	}
	if types[0] != anthropic.EventMessageStart || types[len(types)-1] != anthropic.EventMessageStop {
		t.Errorf("event sequence = %v", types)
	}
}

func TestAdapter_ProcessRequest_UpstreamServerError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer upstream.Close()

	a := New(upstream.URL, "upstream-model", nil, 0)
	req := anthropic.Request{
		Model:     "m",
		MaxTokens: 10,
		Messages:  []anthropic.Message{{Role: "user", Content: anthropic.MessageContent{Text: strPtr("hi")}}},
	}

	_, err := a.ProcessRequest(t.Context(), req, http.DefaultTransport, nil)
	if err == nil {
		t.Fatal("expected error for upstream 500")
	}
}

func boolPtr(b bool) *bool { return &b }
