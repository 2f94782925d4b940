package openaiupstream

import (
	"encoding/json"
	"strings"

	"github.com/wrenhollow/anthropic-bridge/internal/schema/anthropic"
	"github.com/wrenhollow/anthropic-bridge/internal/schema/openaicompat"
)

const maxUpstreamTokens = 8192

// TransformRequest is the pure request transformer (§4.2): AnthropicRequest
// → OpenAIRequest. upstreamModel is the externally-configured model name
// that replaces whatever model the client requested (§4.2 step 5).
func TransformRequest(req anthropic.Request, upstreamModel string) (openaicompat.Request, error) {
	var messages []openaicompat.Message

	if sys, ok := systemMessage(req.System); ok {
		messages = append(messages, sys)
	}

	for _, m := range req.Messages {
		converted, err := transformMessage(m)
		if err != nil {
			return openaicompat.Request{}, err
		}
		messages = append(messages, converted...)
	}

	out := openaicompat.Request{
		Model:       upstreamModel,
		Messages:    messages,
		MaxTokens:   intPtr(clampMaxTokens(req.MaxTokens)),
		Temperature: req.Temperature,
		TopP:        req.TopP,
		Stop:        openaicompat.NewStop(req.StopSequences),
		Stream:      req.Stream,
	}

	if req.Metadata != nil && req.Metadata.UserID != nil {
		out.User = req.Metadata.UserID
	}

	if len(req.Tools) > 0 {
		tools, err := transformTools(req.Tools)
		if err != nil {
			return openaicompat.Request{}, err
		}
		out.Tools = tools
		out.ToolChoice = transformToolChoice(req.ToolChoice)
	}

	return out, nil
}

// RequestNeedsPromptCachingHeader reports whether any cache-control
// directive is present anywhere in the request, which governs whether the
// outgoing upstream call carries the prompt-caching beta header
// (§4.6 "Cache-control").
func RequestNeedsPromptCachingHeader(req anthropic.Request) bool {
	if req.System != nil {
		for _, b := range req.System.Blocks {
			if b.CacheControl != nil {
				return true
			}
		}
	}
	for _, m := range req.Messages {
		for _, b := range m.Content.Blocks {
			if b.CacheControl != nil {
				return true
			}
		}
	}
	return false
}

func systemMessage(sys *anthropic.SystemPrompt) (openaicompat.Message, bool) {
	if sys == nil {
		return openaicompat.Message{}, false
	}
	var text string
	if sys.Text != nil {
		text = *sys.Text
	} else {
		var b strings.Builder
		for _, block := range sys.Blocks {
			b.WriteString(block.Text)
		}
		text = b.String()
	}
	return openaicompat.Message{Role: "system", Content: openaicompat.NewStringContent(text)}, true
}

// transformMessage converts one Anthropic message into zero or more OpenAI
// messages (§4.2 step 2): the role-carrying message for its text/image and
// tool_use content, plus one "tool" message per tool_result block.
func transformMessage(m anthropic.Message) ([]openaicompat.Message, error) {
	if m.Content.Text != nil {
		if *m.Content.Text == "" {
			return nil, nil
		}
		return []openaicompat.Message{{
			Role:    m.Role,
			Content: openaicompat.NewStringContent(*m.Content.Text),
		}}, nil
	}

	buckets := partitionBlocks(m.Content.Blocks)

	var out []openaicompat.Message

	content, err := renderTextAndImage(buckets.textAndImage)
	if err != nil {
		return nil, err
	}

	var toolCalls []openaicompat.ToolCall
	for _, b := range buckets.toolUse {
		toolCalls = append(toolCalls, openaicompat.ToolCall{
			ID:   b.ID,
			Type: "function",
			Function: openaicompat.ToolCallFunction{
				Name:      b.Name,
				Arguments: string(b.Input),
			},
		})
	}

	if content != nil || len(toolCalls) > 0 {
		out = append(out, openaicompat.Message{
			Role:      m.Role,
			Content:   content,
			ToolCalls: toolCalls,
		})
	}

	for _, b := range buckets.toolResult {
		body, err := toolResultContentString(b)
		if err != nil {
			return nil, err
		}
		out = append(out, openaicompat.Message{
			Role:       "tool",
			Content:    openaicompat.NewStringContent(body),
			ToolCallID: b.ToolUseID,
		})
	}

	return out, nil
}

func transformTools(tools []anthropic.ToolDef) ([]openaicompat.Tool, error) {
	out := make([]openaicompat.Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, openaicompat.Tool{
			Type: "function",
			Function: openaicompat.ToolFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  json.RawMessage(t.InputSchema),
			},
		})
	}
	return out, nil
}

// transformToolChoice maps Anthropic's tool_choice union onto OpenAI's
// (§4.2 step 3: default to "auto" when tools are present and no choice was
// given explicitly).
func transformToolChoice(choice *anthropic.ToolChoice) *string {
	if choice == nil {
		return stringPtr("auto")
	}
	switch choice.Type {
	case "any":
		return stringPtr("required")
	case "none":
		return stringPtr("none")
	case "tool":
		// OpenAI's named tool_choice is an object, not a bare string; the
		// request schema models tool_choice as *string for the common
		// auto/required/none cases and leaves named-tool selection to the
		// upstream's default behavior when absent here.
		return stringPtr("auto")
	default:
		return stringPtr("auto")
	}
}

func clampMaxTokens(requested int) int {
	if requested > maxUpstreamTokens {
		return maxUpstreamTokens
	}
	return requested
}

func intPtr(v int) *int          { return &v }
func stringPtr(v string) *string { return &v }
