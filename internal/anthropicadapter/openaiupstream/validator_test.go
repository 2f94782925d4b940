package openaiupstream

import (
	"errors"
	"testing"

	"github.com/wrenhollow/anthropic-bridge/internal/anthropicadapter"
)

func TestValidate_Valid(t *testing.T) {
	body := []byte(`{"model":"claude-3-5-sonnet-20241022","max_tokens":100,"messages":[{"role":"user","content":"Hi"}]}`)
	req, err := Validate(body)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if req.Model != "claude-3-5-sonnet-20241022" || req.MaxTokens != 100 {
		t.Errorf("req = %+v", req)
	}
}

func TestValidate_MissingMaxTokens(t *testing.T) {
	body := []byte(`{"model":"m","messages":[{"role":"user","content":"hi"}]}`)
	_, err := Validate(body)
	if err == nil {
		t.Fatal("expected validation error for missing max_tokens")
	}
	var invalidErr *anthropicadapter.InvalidRequestError
	if !errors.As(err, &invalidErr) {
		t.Fatalf("error = %v, want *InvalidRequestError", err)
	}
}

func TestValidate_EmptyMessages(t *testing.T) {
	body := []byte(`{"model":"m","max_tokens":10,"messages":[]}`)
	_, err := Validate(body)
	if err == nil {
		t.Fatal("expected validation error for empty messages")
	}
}

func TestValidate_MalformedJSON(t *testing.T) {
	_, err := Validate([]byte(`{not json`))
	if err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestValidate_BadContentBlockType(t *testing.T) {
	body := []byte(`{"model":"m","max_tokens":10,"messages":[{"role":"user","content":[{"type":"bogus"}]}]}`)
	_, err := Validate(body)
	if err == nil {
		t.Fatal("expected validation error for unknown content block type")
	}
}

func TestValidate_CacheControlTTLOutOfRange(t *testing.T) {
	body := []byte(`{"model":"m","max_tokens":10,"messages":[{"role":"user","content":[{"type":"text","text":"hi","cache_control":{"type":"ephemeral","ttl":10}}]}]}`)
	_, err := Validate(body)
	if err == nil {
		t.Fatal("expected validation error for out-of-range cache-control TTL")
	}
}

func TestValidate_CacheControlTTLInRange(t *testing.T) {
	body := []byte(`{"model":"m","max_tokens":10,"messages":[{"role":"user","content":[{"type":"text","text":"hi","cache_control":{"type":"ephemeral","ttl":300}}]}]}`)
	_, err := Validate(body)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidate_DanglingToolResultIsNonFatal(t *testing.T) {
	body := []byte(`{"model":"m","max_tokens":10,"messages":[{"role":"user","content":[{"type":"tool_result","tool_use_id":"toolu_never_seen","content":"ok"}]}]}`)
	req, err := Validate(body)
	if err != nil {
		t.Fatalf("Validate: %v, want request forwarded despite dangling tool_result (§3.1 invariant is non-fatal)", err)
	}
	if req.Messages[0].Content.Blocks[0].ToolUseID != "toolu_never_seen" {
		t.Errorf("req = %+v", req)
	}
}
