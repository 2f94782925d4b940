package openaiupstream

import (
	"errors"
	"testing"

	"github.com/wrenhollow/anthropic-bridge/internal/anthropicadapter"
	"github.com/wrenhollow/anthropic-bridge/internal/schema/anthropic"
	"github.com/wrenhollow/anthropic-bridge/internal/schema/openaicompat"
)

func strp(s string) *string { return &s }

// S1 — Basic text round trip (response half).
func TestTransformResponse_BasicText(t *testing.T) {
	resp := openaicompat.Response{
		ID:    "x",
		Model: "upstream-model",
		Choices: []openaicompat.Choice{
			{Index: 0, Message: openaicompat.ResponseMessage{Role: "assistant", Content: strp("Hello")}, FinishReason: strp("stop")},
		},
		Usage: &openaicompat.Usage{PromptTokens: 1, CompletionTokens: 1, TotalTokens: 2},
	}

	out, err := TransformResponse(resp)
	if err != nil {
		t.Fatalf("TransformResponse: %v", err)
	}
	if len(out.Content) != 1 || out.Content[0].Type != anthropic.BlockTypeText || out.Content[0].Text != "Hello" {
		t.Fatalf("content = %+v", out.Content)
	}
	if out.StopReason != anthropic.StopReasonEndTurn {
		t.Errorf("stop_reason = %q, want end_turn", out.StopReason)
	}
	if out.Usage.InputTokens != 1 || out.Usage.OutputTokens != 1 {
		t.Errorf("usage = %+v", out.Usage)
	}
}

// S3 — Tool round-trip, non-streaming.
func TestTransformResponse_ToolCall(t *testing.T) {
	resp := openaicompat.Response{
		ID: "x",
		Choices: []openaicompat.Choice{
			{Message: openaicompat.ResponseMessage{
				Role: "assistant",
				ToolCalls: []openaicompat.ToolCall{
					{ID: "tc1", Type: "function", Function: openaicompat.ToolCallFunction{Name: "get_weather", Arguments: `{"loc":"SF"}`}},
				},
			}, FinishReason: strp("tool_calls")},
		},
	}

	out, err := TransformResponse(resp)
	if err != nil {
		t.Fatalf("TransformResponse: %v", err)
	}
	if len(out.Content) != 1 {
		t.Fatalf("content = %+v, want 1 block", out.Content)
	}
	block := out.Content[0]
	if block.Type != anthropic.BlockTypeToolUse || block.ID != "tc1" || block.Name != "get_weather" {
		t.Fatalf("block = %+v", block)
	}
	if string(block.Input) != `{"loc":"SF"}` {
		t.Errorf("input = %s", block.Input)
	}
	if out.StopReason != anthropic.StopReasonToolUse {
		t.Errorf("stop_reason = %q, want tool_use", out.StopReason)
	}
}

func TestTransformResponse_MalformedToolArguments(t *testing.T) {
	resp := openaicompat.Response{
		Choices: []openaicompat.Choice{
			{Message: openaicompat.ResponseMessage{
				ToolCalls: []openaicompat.ToolCall{
					{ID: "tc1", Function: openaicompat.ToolCallFunction{Name: "f", Arguments: "not json"}},
				},
			}},
		},
	}
	_, err := TransformResponse(resp)
	if err == nil {
		t.Fatal("expected error for malformed tool arguments")
	}
	var target *anthropicadapter.MalformedToolArgumentsError
	if !errors.As(err, &target) {
		t.Fatalf("error = %v, want *MalformedToolArgumentsError", err)
	}
}

// §4.6 "Empty content": no text and no tool calls yields one empty text block.
func TestTransformResponse_EmptyContent(t *testing.T) {
	resp := openaicompat.Response{
		Choices: []openaicompat.Choice{
			{Message: openaicompat.ResponseMessage{Role: "assistant"}, FinishReason: strp("stop")},
		},
	}
	out, err := TransformResponse(resp)
	if err != nil {
		t.Fatalf("TransformResponse: %v", err)
	}
	if len(out.Content) != 1 || out.Content[0].Type != anthropic.BlockTypeText || out.Content[0].Text != "" {
		t.Fatalf("content = %+v, want single empty text block", out.Content)
	}
}

func TestTransformResponse_NoChoices(t *testing.T) {
	_, err := TransformResponse(openaicompat.Response{})
	if err == nil {
		t.Fatal("expected error for response with no choices")
	}
}

func TestToStopReason(t *testing.T) {
	cases := map[string]string{
		openaicompat.FinishReasonStop:          anthropic.StopReasonEndTurn,
		openaicompat.FinishReasonLength:        anthropic.StopReasonMaxTokens,
		openaicompat.FinishReasonToolCalls:     anthropic.StopReasonToolUse,
		openaicompat.FinishReasonContentFilter: anthropic.StopReasonEndTurn,
		"something_else":                       anthropic.StopReasonEndTurn,
	}
	for in, want := range cases {
		got := toStopReason(&in)
		if got != want {
			t.Errorf("toStopReason(%q) = %q, want %q", in, got, want)
		}
	}
	if got := toStopReason(nil); got != anthropic.StopReasonEndTurn {
		t.Errorf("toStopReason(nil) = %q, want end_turn", got)
	}
}
