package openaiupstream

import (
	"github.com/wrenhollow/anthropic-bridge/internal/schema/anthropic"
	"github.com/wrenhollow/anthropic-bridge/internal/schema/openaicompat"
)

// toUsage copies OpenAI token counts onto Anthropic's usage shape
// (§4.3: "Copy usage.prompt_tokens → input_tokens, usage.completion_tokens →
// output_tokens"). OpenAI-compatible upstreams in this gateway's scope do
// not report Anthropic-style prompt-cache counters, so those fields are left
// unset rather than guessed at.
func toUsage(usage *openaicompat.Usage) anthropic.Usage {
	if usage == nil {
		return anthropic.Usage{}
	}
	return anthropic.Usage{
		InputTokens:  usage.PromptTokens,
		OutputTokens: usage.CompletionTokens,
	}
}
