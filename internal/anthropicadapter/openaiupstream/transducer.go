package openaiupstream

import (
	"github.com/wrenhollow/anthropic-bridge/internal/schema/anthropic"
	"github.com/wrenhollow/anthropic-bridge/internal/schema/openaicompat"
)

// activeBlock is the kind of Anthropic content block currently open
// (§4.5.1).
type activeBlock int

const (
	activeBlockNone activeBlock = iota
	activeBlockText
	activeBlockTool
)

// toolRow is one tool_table entry (§4.5.1): the upstream tool-call index's
// accumulated state.
type toolRow struct {
	id                   string
	name                 string
	accumulatedArguments string
	anthropicBlockIndex  int
	started              bool
}

// transducer is the stateful OpenAI SSE → Anthropic SSE transformer
// (§4.5, CORE). One instance is private to a single request; it is driven
// by exactly one producer (the framer reading the upstream body).
type transducer struct {
	requestID string // fallback id if the upstream never supplies one

	started bool
	stopped bool

	active         activeBlock
	blockIndex     int
	toolTable      map[int]*toolRow
	lastUsage      anthropic.Usage
	sawToolCall    bool
	openedAnyBlock bool

	finishReason *string
}

func newTransducer(requestID string) *transducer {
	return &transducer{
		requestID: requestID,
		toolTable: make(map[int]*toolRow),
	}
}

// feed processes one OpenAI chunk (§4.5.3) and returns the Anthropic events
// it produces, in order.
func (t *transducer) feed(c *openaicompat.Chunk) []anthropic.Event {
	if t.stopped {
		return nil
	}
	var events []anthropic.Event

	if !t.started {
		id := c.ID
		if id == "" {
			id = t.requestID
		}
		events = append(events, anthropic.NewMessageStart(id, c.Model, t.lastUsage))
		t.started = true
	}

	if c.Usage != nil {
		t.lastUsage = toUsage(c.Usage)
	}

	if len(c.Choices) == 0 {
		return events
	}
	choice := c.Choices[0]

	if choice.Delta.Content != "" {
		events = append(events, t.feedText(choice.Delta.Content)...)
	}

	if len(choice.Delta.ToolCalls) > 0 {
		events = append(events, t.feedToolCalls(choice.Delta.ToolCalls)...)
	}

	if choice.FinishReason != nil {
		t.finishReason = choice.FinishReason
	}

	return events
}

// feedText implements §4.5.3 step 3.
func (t *transducer) feedText(text string) []anthropic.Event {
	var events []anthropic.Event

	if t.active == activeBlockTool {
		events = append(events, anthropic.NewContentBlockStop(t.blockIndex))
		t.blockIndex++
		t.active = activeBlockNone
	}
	if t.active != activeBlockText {
		events = append(events, anthropic.NewContentBlockStart(t.blockIndex, anthropic.NewTextBlock("")))
		t.active = activeBlockText
		t.openedAnyBlock = true
	}
	events = append(events, anthropic.NewTextDelta(t.blockIndex, text))
	return events
}

// feedToolCalls implements §4.5.3 step 4.
func (t *transducer) feedToolCalls(calls []openaicompat.ChunkToolCall) []anthropic.Event {
	var events []anthropic.Event

	for _, tc := range calls {
		row, exists := t.toolTable[tc.Index]
		if !exists {
			row = &toolRow{}
			t.toolTable[tc.Index] = row
		}

		if tc.ID != nil {
			row.id = *tc.ID
		}
		var newArgs string
		if tc.Function != nil {
			if tc.Function.Name != nil {
				row.name = *tc.Function.Name
			}
			if tc.Function.Arguments != nil {
				newArgs = *tc.Function.Arguments
			}
		}
		row.accumulatedArguments += newArgs

		if !row.started && row.name != "" {
			if t.active == activeBlockText || t.active == activeBlockTool {
				events = append(events, anthropic.NewContentBlockStop(t.blockIndex))
				t.blockIndex++
			}
			row.anthropicBlockIndex = t.blockIndex
			row.started = true
			t.sawToolCall = true
			t.active = activeBlockTool
			t.openedAnyBlock = true

			id := row.id
			if id == "" {
				id = synthesizeToolUseID(tc.Index)
			}
			events = append(events, anthropic.NewContentBlockStart(row.anthropicBlockIndex, anthropic.ContentBlock{
				Type:  anthropic.BlockTypeToolUse,
				ID:    id,
				Name:  row.name,
				Input: []byte("{}"),
			}))

			// §4.6 "Tool arguments seen before name": replay any buffered
			// argument fragment(s) as a single delta now that the block is open.
			if row.accumulatedArguments != "" {
				events = append(events, anthropic.NewInputJSONDelta(row.anthropicBlockIndex, row.accumulatedArguments))
			}
			continue
		}

		if row.started && newArgs != "" {
			events = append(events, anthropic.NewInputJSONDelta(row.anthropicBlockIndex, newArgs))
		}
	}

	return events
}

// finalize implements §4.5.4, guarded by stopped. It is triggered by a
// finish_reason chunk, the [DONE] marker, or end-of-stream, whichever comes
// first, and also on an upstream read failure (§4.5.5: "Upstream connection
// errors after started and before finalization must still produce a valid
// finalization sequence"). It takes no cause argument: on the failure path
// TransduceStream clears sawToolCall first, so that path ends with end_turn.
func (t *transducer) finalize() []anthropic.Event {
	if t.stopped {
		return nil
	}
	t.stopped = true

	var events []anthropic.Event

	if !t.started {
		// Nothing was ever emitted; still produce a well-formed, if empty,
		// protocol tail so callers always see a terminated stream.
		events = append(events, anthropic.NewMessageStart(t.requestID, "", t.lastUsage))
	}

	if t.active == activeBlockText || t.active == activeBlockTool {
		events = append(events, anthropic.NewContentBlockStop(t.blockIndex))
		t.active = activeBlockNone
	} else if !t.openedAnyBlock {
		// §4.6 "Empty content": a reply with neither text nor tool-calls
		// yields a single empty-text block.
		events = append(events, anthropic.NewContentBlockStart(t.blockIndex, anthropic.NewTextBlock("")))
		events = append(events, anthropic.NewContentBlockStop(t.blockIndex))
	}

	events = append(events, anthropic.NewMessageDelta(t.stopReason(), t.lastUsage))
	events = append(events, anthropic.NewMessageStop())
	return events
}

func (t *transducer) stopReason() string {
	if t.finishReason != nil && *t.finishReason == openaicompat.FinishReasonLength {
		return anthropic.StopReasonMaxTokens
	}
	if t.sawToolCall {
		return anthropic.StopReasonToolUse
	}
	return anthropic.StopReasonEndTurn
}
