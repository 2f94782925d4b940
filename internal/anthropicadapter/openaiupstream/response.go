package openaiupstream

import (
	"encoding/json"
	"fmt"

	"github.com/wrenhollow/anthropic-bridge/internal/anthropicadapter"
	"github.com/wrenhollow/anthropic-bridge/internal/schema/anthropic"
	"github.com/wrenhollow/anthropic-bridge/internal/schema/openaicompat"
)

// TransformResponse is the pure non-streaming response transformer (§4.3):
// OpenAIResponse → AnthropicResponse.
func TransformResponse(resp openaicompat.Response) (*anthropic.Response, error) {
	if len(resp.Choices) == 0 {
		return nil, &anthropicadapter.MalformedUpstreamError{Message: "upstream response carries no choices"}
	}
	choice := resp.Choices[0] // §4.6 "Multiple choices": only choices[0] is consumed.

	var content []anthropic.ContentBlock
	if choice.Message.Content != nil && *choice.Message.Content != "" {
		content = append(content, anthropic.NewTextBlock(*choice.Message.Content))
	}

	for i, tc := range choice.Message.ToolCalls {
		input, err := normalizeToolArguments(tc.Function.Arguments)
		if err != nil {
			return nil, &anthropicadapter.MalformedToolArgumentsError{
				ToolCallID: tc.ID,
				ToolName:   tc.Function.Name,
				Cause:      err,
			}
		}
		id := tc.ID
		if id == "" {
			id = synthesizeToolUseID(i)
		}
		content = append(content, anthropic.NewToolUseBlock(id, tc.Function.Name, input))
	}

	if len(content) == 0 {
		content = append(content, anthropic.NewTextBlock(""))
	}

	var stopSeq *string
	resp2 := &anthropic.Response{
		ID:           resp.ID,
		Type:         "message",
		Role:         "assistant",
		Model:        resp.Model,
		Content:      content,
		StopReason:   toStopReason(choice.FinishReason),
		StopSequence: stopSeq,
		Usage:        toUsage(resp.Usage),
	}
	return resp2, nil
}

// normalizeToolArguments parses a tool call's arguments string as JSON
// (§4.3: "If arguments are not valid JSON, fail with MalformedToolArguments").
func normalizeToolArguments(arguments string) (json.RawMessage, error) {
	if arguments == "" {
		return json.RawMessage("{}"), nil
	}
	var v any
	if err := json.Unmarshal([]byte(arguments), &v); err != nil {
		return nil, fmt.Errorf("arguments not valid JSON: %w", err)
	}
	return json.RawMessage(arguments), nil
}

// toStopReason maps an OpenAI finish_reason onto an Anthropic stop_reason
// (§4.3).
func toStopReason(finishReason *string) string {
	if finishReason == nil {
		return anthropic.StopReasonEndTurn
	}
	switch *finishReason {
	case openaicompat.FinishReasonStop:
		return anthropic.StopReasonEndTurn
	case openaicompat.FinishReasonLength:
		return anthropic.StopReasonMaxTokens
	case openaicompat.FinishReasonToolCalls:
		return anthropic.StopReasonToolUse
	case openaicompat.FinishReasonContentFilter:
		return anthropic.StopReasonEndTurn
	default:
		return anthropic.StopReasonEndTurn
	}
}
