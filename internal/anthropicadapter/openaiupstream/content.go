package openaiupstream

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wrenhollow/anthropic-bridge/internal/schema/anthropic"
	"github.com/wrenhollow/anthropic-bridge/internal/schema/openaicompat"
)

// contentBuckets is the partition of one Anthropic message's content blocks
// into the three buckets the request transformer operates on (§4.2 step 2).
type contentBuckets struct {
	textAndImage []anthropic.ContentBlock
	toolUse      []anthropic.ContentBlock
	toolResult   []anthropic.ContentBlock
}

// partitionBlocks buckets content blocks by kind, dropping thinking blocks:
// the OpenAI schema has no reasoning-trace equivalent, and replaying a prior
// assistant's thinking signature back upstream has no defined meaning here.
func partitionBlocks(blocks []anthropic.ContentBlock) contentBuckets {
	var b contentBuckets
	for _, block := range blocks {
		switch block.Type {
		case anthropic.BlockTypeText, anthropic.BlockTypeImage:
			b.textAndImage = append(b.textAndImage, block)
		case anthropic.BlockTypeToolUse:
			b.toolUse = append(b.toolUse, block)
		case anthropic.BlockTypeToolResult:
			b.toolResult = append(b.toolResult, block)
		case anthropic.BlockTypeThinking:
			// dropped, see above.
		}
	}
	return b
}

// renderTextAndImage renders the text/image bucket as either a joined
// string (text-only) or a sequence of OpenAI content parts (§4.2 step 2).
func renderTextAndImage(blocks []anthropic.ContentBlock) (*openaicompat.Content, error) {
	if len(blocks) == 0 {
		return nil, nil
	}

	onlyText := true
	for _, b := range blocks {
		if b.Type != anthropic.BlockTypeText {
			onlyText = false
			break
		}
	}

	if onlyText {
		lines := make([]string, 0, len(blocks))
		for _, b := range blocks {
			lines = append(lines, b.Text)
		}
		joined := strings.TrimSpace(strings.Join(lines, "\n"))
		return openaicompat.NewStringContent(joined), nil
	}

	parts := make([]openaicompat.ContentPart, 0, len(blocks))
	for _, b := range blocks {
		switch b.Type {
		case anthropic.BlockTypeText:
			parts = append(parts, openaicompat.NewTextPart(b.Text))
		case anthropic.BlockTypeImage:
			part, err := renderImagePart(b)
			if err != nil {
				return nil, err
			}
			parts = append(parts, part)
		}
	}
	return openaicompat.NewPartsContent(parts), nil
}

// renderImagePart renders one Anthropic image block as an OpenAI
// image_url part carrying a data: URL (§4.2 step 2). Anthropic's ingress
// schema only accepts base64 image sources (§3.1), so there is no remote
// URL case on this direction.
func renderImagePart(block anthropic.ContentBlock) (openaicompat.ContentPart, error) {
	if block.Source == nil {
		return openaicompat.ContentPart{}, fmt.Errorf("image block missing source")
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", block.Source.MediaType, block.Source.Data)
	return openaicompat.NewImageURLPart(dataURL), nil
}

// toolResultContentString renders a tool_result block's content as the
// string an OpenAI "tool" message carries: the raw string when content is a
// string, or the JSON encoding of the structured content otherwise
// (§4.2 step 2).
func toolResultContentString(block anthropic.ContentBlock) (string, error) {
	if block.Content == nil {
		return "", nil
	}
	if block.Content.Text != nil {
		return *block.Content.Text, nil
	}
	encoded, err := json.Marshal(block.Content.Blocks)
	if err != nil {
		return "", fmt.Errorf("encode tool_result content: %w", err)
	}
	return string(encoded), nil
}
