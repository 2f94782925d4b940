package openaiupstream

import (
	"strings"
	"testing"

	"github.com/wrenhollow/anthropic-bridge/internal/schema/anthropic"
	"github.com/wrenhollow/anthropic-bridge/internal/schema/openaicompat"
)

func chunkWithText(id, content string, finish *string) *openaicompat.Chunk {
	return &openaicompat.Chunk{
		ID:      id,
		Choices: []openaicompat.ChunkChoice{{Delta: openaicompat.ChunkDelta{Content: content}, FinishReason: finish}},
	}
}

// S4 — Streaming text.
func TestTransducer_StreamingText(t *testing.T) {
	tr := newTransducer("fallback")

	var events []anthropic.Event
	events = append(events, tr.feed(chunkWithText("x", "Hel", nil))...)
	events = append(events, tr.feed(chunkWithText("x", "lo", nil))...)
	finish := openaicompat.FinishReasonStop
	events = append(events, tr.feed(chunkWithText("x", "", &finish))...)
	events = append(events, tr.finalize()...)

	wantTypes := []string{
		anthropic.EventMessageStart,
		anthropic.EventContentBlockStart,
		anthropic.EventContentBlockDelta,
		anthropic.EventContentBlockDelta,
		anthropic.EventContentBlockStop,
		anthropic.EventMessageDelta,
		anthropic.EventMessageStop,
	}
	assertEventTypes(t, events, wantTypes)

	messageDelta := events[5]
	if messageDelta.Delta == nil || messageDelta.Delta.StopReason == nil || *messageDelta.Delta.StopReason != anthropic.StopReasonEndTurn {
		t.Errorf("message_delta stop_reason = %+v, want end_turn", messageDelta.Delta)
	}
}

// S5 — Streaming tool call across chunks.
func TestTransducer_StreamingToolCall(t *testing.T) {
	tr := newTransducer("fallback")

	name := "f"
	id := "t1"
	args1 := `{"a":`
	args2 := `1}`

	var events []anthropic.Event
	events = append(events, tr.feed(&openaicompat.Chunk{ID: "x", Choices: []openaicompat.ChunkChoice{{
		Delta: openaicompat.ChunkDelta{ToolCalls: []openaicompat.ChunkToolCall{
			{Index: 0, ID: &id, Function: &openaicompat.ChunkToolCallFunction{Name: &name}},
		}},
	}}})...)
	events = append(events, tr.feed(&openaicompat.Chunk{ID: "x", Choices: []openaicompat.ChunkChoice{{
		Delta: openaicompat.ChunkDelta{ToolCalls: []openaicompat.ChunkToolCall{
			{Index: 0, Function: &openaicompat.ChunkToolCallFunction{Arguments: &args1}},
		}},
	}}})...)
	finish := openaicompat.FinishReasonToolCalls
	events = append(events, tr.feed(&openaicompat.Chunk{ID: "x", Choices: []openaicompat.ChunkChoice{{
		Delta:        openaicompat.ChunkDelta{ToolCalls: []openaicompat.ChunkToolCall{{Index: 0, Function: &openaicompat.ChunkToolCallFunction{Arguments: &args2}}}},
		FinishReason: &finish,
	}}})...)
	events = append(events, tr.finalize()...)

	wantTypes := []string{
		anthropic.EventMessageStart,
		anthropic.EventContentBlockStart,
		anthropic.EventContentBlockDelta,
		anthropic.EventContentBlockDelta,
		anthropic.EventContentBlockStop,
		anthropic.EventMessageDelta,
		anthropic.EventMessageStop,
	}
	assertEventTypes(t, events, wantTypes)

	start := events[1]
	if start.ContentBlock == nil || start.ContentBlock.ID != "t1" || start.ContentBlock.Name != "f" {
		t.Fatalf("content_block_start = %+v", start.ContentBlock)
	}

	var argConcat strings.Builder
	for _, e := range events {
		if e.Type == anthropic.EventContentBlockDelta && e.Delta.Type == anthropic.DeltaTypeInputJSON {
			argConcat.WriteString(e.Delta.PartialJSON)
		}
	}
	if argConcat.String() != `{"a":1}` {
		t.Errorf("concatenated partial_json = %q, want {\"a\":1}", argConcat.String())
	}

	md := events[len(events)-2]
	if md.Delta == nil || md.Delta.StopReason == nil || *md.Delta.StopReason != anthropic.StopReasonToolUse {
		t.Errorf("message_delta stop_reason = %+v, want tool_use", md.Delta)
	}
}

// S6 — Streaming text then tool: text block at index 0, tool block at index 1.
func TestTransducer_TextThenTool(t *testing.T) {
	tr := newTransducer("fallback")

	var events []anthropic.Event
	events = append(events, tr.feed(chunkWithText("x", "hello", nil))...)

	name := "f"
	finish := openaicompat.FinishReasonToolCalls
	events = append(events, tr.feed(&openaicompat.Chunk{ID: "x", Choices: []openaicompat.ChunkChoice{{
		Delta:        openaicompat.ChunkDelta{ToolCalls: []openaicompat.ChunkToolCall{{Index: 0, Function: &openaicompat.ChunkToolCallFunction{Name: &name}}}},
		FinishReason: &finish,
	}}})...)
	events = append(events, tr.finalize()...)

	var starts []int
	for _, e := range events {
		if e.Type == anthropic.EventContentBlockStart {
			starts = append(starts, *e.Index)
		}
	}
	if len(starts) != 2 || starts[0] != 0 || starts[1] != 1 {
		t.Fatalf("content_block_start indices = %v, want [0 1]", starts)
	}
}

// Invariant 4: well-formed block nesting with strictly non-decreasing
// indices, exactly one message_start/message_stop, exactly one
// message_delta immediately before message_stop.
func TestTransducer_ProtocolInvariants(t *testing.T) {
	tr := newTransducer("fallback")
	var events []anthropic.Event
	events = append(events, tr.feed(chunkWithText("x", "a", nil))...)
	events = append(events, tr.feed(chunkWithText("x", "b", nil))...)
	finish := openaicompat.FinishReasonStop
	events = append(events, tr.feed(chunkWithText("x", "", &finish))...)
	events = append(events, tr.finalize()...)

	if events[0].Type != anthropic.EventMessageStart {
		t.Fatalf("first event = %q, want message_start", events[0].Type)
	}
	if last := events[len(events)-1]; last.Type != anthropic.EventMessageStop {
		t.Fatalf("last event = %q, want message_stop", last.Type)
	}
	if second := events[len(events)-2]; second.Type != anthropic.EventMessageDelta {
		t.Fatalf("second-to-last event = %q, want message_delta", second.Type)
	}

	messageStarts, messageStops := 0, 0
	lastIndex := -1
	for _, e := range events {
		switch e.Type {
		case anthropic.EventMessageStart:
			messageStarts++
		case anthropic.EventMessageStop:
			messageStops++
		case anthropic.EventContentBlockStart, anthropic.EventContentBlockDelta, anthropic.EventContentBlockStop:
			if *e.Index < lastIndex {
				t.Errorf("block index decreased: %d after %d", *e.Index, lastIndex)
			}
			lastIndex = *e.Index
		}
	}
	if messageStarts != 1 || messageStops != 1 {
		t.Errorf("message_start count = %d, message_stop count = %d, want 1 and 1", messageStarts, messageStops)
	}
}

// Invariant 5: concatenating text_delta.text equals concatenating upstream
// delta.content strings.
func TestTransducer_TextConcatenation(t *testing.T) {
	tr := newTransducer("fallback")
	parts := []string{"Hel", "lo, ", "world"}
	var events []anthropic.Event
	for _, p := range parts {
		events = append(events, tr.feed(chunkWithText("x", p, nil))...)
	}
	finish := openaicompat.FinishReasonStop
	events = append(events, tr.feed(chunkWithText("x", "", &finish))...)
	events = append(events, tr.finalize()...)

	var got strings.Builder
	for _, e := range events {
		if e.Type == anthropic.EventContentBlockDelta && e.Delta.Type == anthropic.DeltaTypeText {
			got.WriteString(e.Delta.Text)
		}
	}
	want := strings.Join(parts, "")
	if got.String() != want {
		t.Errorf("concatenated text = %q, want %q", got.String(), want)
	}
}

func TestTransducer_EmptyStreamStillFinalizes(t *testing.T) {
	tr := newTransducer("fallback-id")
	events := tr.finalize()

	wantTypes := []string{
		anthropic.EventMessageStart,
		anthropic.EventContentBlockStart,
		anthropic.EventContentBlockStop,
		anthropic.EventMessageDelta,
		anthropic.EventMessageStop,
	}
	assertEventTypes(t, events, wantTypes)
}

func TestTransducer_FinalizeIsIdempotent(t *testing.T) {
	tr := newTransducer("fallback")
	tr.feed(chunkWithText("x", "hi", nil))
	first := tr.finalize()
	second := tr.finalize()
	if len(first) == 0 {
		t.Fatal("expected finalize to emit events the first time")
	}
	if len(second) != 0 {
		t.Errorf("expected no events from a second finalize call, got %d", len(second))
	}
}

func assertEventTypes(t *testing.T, events []anthropic.Event, want []string) {
	t.Helper()
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d: %v", len(events), len(want), eventTypeNames(events))
	}
	for i, e := range events {
		if e.Type != want[i] {
			t.Errorf("event %d type = %q, want %q", i, e.Type, want[i])
		}
	}
}

func eventTypeNames(events []anthropic.Event) []string {
	names := make([]string, len(events))
	for i, e := range events {
		names[i] = e.Type
	}
	return names
}
