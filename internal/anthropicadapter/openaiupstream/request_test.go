package openaiupstream

import (
	"encoding/json"
	"testing"

	"github.com/wrenhollow/anthropic-bridge/internal/schema/anthropic"
)

func strPtr(s string) *string { return &s }

// S1 — Basic text round trip.
func TestTransformRequest_BasicText(t *testing.T) {
	req := anthropic.Request{
		Model:     "claude-3-5-sonnet-20241022",
		MaxTokens: 100,
		Messages: []anthropic.Message{
			{Role: "user", Content: anthropic.MessageContent{Text: strPtr("Hi")}},
		},
	}

	out, err := TransformRequest(req, "upstream-model")
	if err != nil {
		t.Fatalf("TransformRequest: %v", err)
	}

	if out.Model != "upstream-model" {
		t.Errorf("model = %q, want upstream-model", out.Model)
	}
	if len(out.Messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(out.Messages))
	}
	if out.Messages[0].Role != "user" {
		t.Errorf("role = %q, want user", out.Messages[0].Role)
	}
	if out.Messages[0].Content == nil || out.Messages[0].Content.Text == nil || *out.Messages[0].Content.Text != "Hi" {
		t.Errorf("content = %+v, want string \"Hi\"", out.Messages[0].Content)
	}
	if out.MaxTokens == nil || *out.MaxTokens != 100 {
		t.Errorf("max_tokens = %v, want 100", out.MaxTokens)
	}
}

// S2 — System + multimodal.
func TestTransformRequest_SystemAndMultimodal(t *testing.T) {
	req := anthropic.Request{
		Model:     "claude-3-5-sonnet-20241022",
		MaxTokens: 100,
		System:    &anthropic.SystemPrompt{Text: strPtr("You are X")},
		Messages: []anthropic.Message{
			{
				Role: "user",
				Content: anthropic.MessageContent{
					Blocks: []anthropic.ContentBlock{
						{Type: anthropic.BlockTypeText, Text: "Look:"},
						{Type: anthropic.BlockTypeImage, Source: &anthropic.ImageSource{
							Type: "base64", MediaType: "image/jpeg", Data: "RkFLRQ==",
						}},
					},
				},
			},
		},
	}

	out, err := TransformRequest(req, "upstream-model")
	if err != nil {
		t.Fatalf("TransformRequest: %v", err)
	}
	if len(out.Messages) != 2 {
		t.Fatalf("got %d messages, want 2 (system + user)", len(out.Messages))
	}
	if out.Messages[0].Role != "system" || out.Messages[0].Content.Text == nil || *out.Messages[0].Content.Text != "You are X" {
		t.Errorf("system message = %+v", out.Messages[0])
	}
	parts := out.Messages[1].Content.Parts
	if len(parts) != 2 {
		t.Fatalf("got %d content parts, want 2", len(parts))
	}
	if parts[0].Type != "text" || parts[0].Text != "Look:" {
		t.Errorf("part 0 = %+v", parts[0])
	}
	if parts[1].Type != "image_url" || parts[1].ImageURL == nil {
		t.Fatalf("part 1 = %+v", parts[1])
	}
	wantURL := "data:image/jpeg;base64,RkFLRQ=="
	if parts[1].ImageURL.URL != wantURL {
		t.Errorf("image url = %q, want %q", parts[1].ImageURL.URL, wantURL)
	}
}

// S3 — tool definitions map through, and a tool_use block round-trips to a
// tool_calls entry on the assistant message.
func TestTransformRequest_Tools(t *testing.T) {
	req := anthropic.Request{
		Model:     "claude-3-5-sonnet-20241022",
		MaxTokens: 100,
		Tools: []anthropic.ToolDef{
			{Name: "get_weather", Description: "gets weather", InputSchema: json.RawMessage(`{"type":"object","properties":{"loc":{"type":"string"}},"required":["loc"]}`)},
		},
		Messages: []anthropic.Message{
			{Role: "user", Content: anthropic.MessageContent{Text: strPtr("weather in SF?")}},
			{
				Role: "assistant",
				Content: anthropic.MessageContent{
					Blocks: []anthropic.ContentBlock{
						{Type: anthropic.BlockTypeToolUse, ID: "tc1", Name: "get_weather", Input: json.RawMessage(`{"loc":"SF"}`)},
					},
				},
			},
			{
				Role: "user",
				Content: anthropic.MessageContent{
					Blocks: []anthropic.ContentBlock{
						{Type: anthropic.BlockTypeToolResult, ToolUseID: "tc1", Content: &anthropic.ToolResultContent{Text: strPtr("72F")}},
					},
				},
			},
		},
	}

	out, err := TransformRequest(req, "upstream-model")
	if err != nil {
		t.Fatalf("TransformRequest: %v", err)
	}
	if len(out.Tools) != 1 || out.Tools[0].Function.Name != "get_weather" {
		t.Fatalf("tools = %+v", out.Tools)
	}
	if out.ToolChoice == nil || *out.ToolChoice != "auto" {
		t.Errorf("tool_choice = %v, want auto", out.ToolChoice)
	}

	if len(out.Messages) != 3 {
		t.Fatalf("got %d messages, want 3", len(out.Messages))
	}
	assistantMsg := out.Messages[1]
	if len(assistantMsg.ToolCalls) != 1 || assistantMsg.ToolCalls[0].ID != "tc1" {
		t.Fatalf("assistant tool calls = %+v", assistantMsg.ToolCalls)
	}
	if assistantMsg.ToolCalls[0].Function.Arguments != `{"loc":"SF"}` {
		t.Errorf("arguments = %q", assistantMsg.ToolCalls[0].Function.Arguments)
	}

	toolMsg := out.Messages[2]
	if toolMsg.Role != "tool" || toolMsg.ToolCallID != "tc1" {
		t.Fatalf("tool message = %+v", toolMsg)
	}
	if toolMsg.Content == nil || toolMsg.Content.Text == nil || *toolMsg.Content.Text != "72F" {
		t.Errorf("tool message content = %+v", toolMsg.Content)
	}
}

// Invariant 2: outgoing max_tokens == min(requested, 8192).
func TestTransformRequest_ClampsMaxTokens(t *testing.T) {
	cases := []struct {
		requested int
		want      int
	}{
		{100, 100},
		{8192, 8192},
		{20000, 8192},
	}
	for _, c := range cases {
		req := anthropic.Request{
			Model:     "m",
			MaxTokens: c.requested,
			Messages:  []anthropic.Message{{Role: "user", Content: anthropic.MessageContent{Text: strPtr("hi")}}},
		}
		out, err := TransformRequest(req, "upstream-model")
		if err != nil {
			t.Fatalf("TransformRequest: %v", err)
		}
		if out.MaxTokens == nil || *out.MaxTokens != c.want {
			t.Errorf("requested=%d: max_tokens = %v, want %d", c.requested, out.MaxTokens, c.want)
		}
	}
}

// Invariant 1: role order and textual content preserved verbatim when no
// tool_use content is present.
func TestTransformRequest_PreservesRoleOrderAndText(t *testing.T) {
	req := anthropic.Request{
		Model:     "m",
		MaxTokens: 100,
		Messages: []anthropic.Message{
			{Role: "user", Content: anthropic.MessageContent{Text: strPtr("one")}},
			{Role: "assistant", Content: anthropic.MessageContent{Text: strPtr("two")}},
			{Role: "user", Content: anthropic.MessageContent{Text: strPtr("three")}},
		},
	}
	out, err := TransformRequest(req, "upstream-model")
	if err != nil {
		t.Fatalf("TransformRequest: %v", err)
	}
	wantRoles := []string{"user", "assistant", "user"}
	wantTexts := []string{"one", "two", "three"}
	if len(out.Messages) != len(wantRoles) {
		t.Fatalf("got %d messages, want %d", len(out.Messages), len(wantRoles))
	}
	for i, m := range out.Messages {
		if m.Role != wantRoles[i] {
			t.Errorf("message %d role = %q, want %q", i, m.Role, wantRoles[i])
		}
		if m.Content == nil || m.Content.Text == nil || *m.Content.Text != wantTexts[i] {
			t.Errorf("message %d content = %+v, want %q", i, m.Content, wantTexts[i])
		}
	}
}

func TestTransformRequest_ModelIsAlwaysUpstreamConfigured(t *testing.T) {
	req := anthropic.Request{
		Model:     "claude-3-5-sonnet-20241022",
		MaxTokens: 10,
		Messages:  []anthropic.Message{{Role: "user", Content: anthropic.MessageContent{Text: strPtr("hi")}}},
	}
	out, err := TransformRequest(req, "configured-model")
	if err != nil {
		t.Fatalf("TransformRequest: %v", err)
	}
	if out.Model != "configured-model" {
		t.Errorf("model = %q, want configured-model (client's model name must be discarded)", out.Model)
	}
}

func TestTransformRequest_StopSequencesCollapseToSingleString(t *testing.T) {
	req := anthropic.Request{
		Model:         "m",
		MaxTokens:     10,
		StopSequences: []string{"STOP"},
		Messages:      []anthropic.Message{{Role: "user", Content: anthropic.MessageContent{Text: strPtr("hi")}}},
	}
	out, err := TransformRequest(req, "m")
	if err != nil {
		t.Fatalf("TransformRequest: %v", err)
	}
	if out.Stop == nil || out.Stop.One == nil || *out.Stop.One != "STOP" {
		t.Errorf("stop = %+v, want single string STOP", out.Stop)
	}
}

func TestRequestNeedsPromptCachingHeader(t *testing.T) {
	ttl := 300
	req := anthropic.Request{
		Model:     "m",
		MaxTokens: 10,
		Messages: []anthropic.Message{
			{Role: "user", Content: anthropic.MessageContent{
				Blocks: []anthropic.ContentBlock{
					{Type: anthropic.BlockTypeText, Text: "hi", CacheControl: &anthropic.CacheControl{Type: "ephemeral", TTL: &ttl}},
				},
			}},
		},
	}
	if !RequestNeedsPromptCachingHeader(req) {
		t.Error("expected prompt caching header to be needed")
	}

	req.Messages[0].Content.Blocks[0].CacheControl = nil
	if RequestNeedsPromptCachingHeader(req) {
		t.Error("expected prompt caching header not to be needed")
	}
}
