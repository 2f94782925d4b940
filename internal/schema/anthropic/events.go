package anthropic

// Event is the outbound Anthropic SSE event union (§3.3). Only the payload
// fields that belong to Type are populated. The streaming
// transducer (internal/anthropicadapter/openaiupstream) is the sole producer
// of these; internal/proxy only serializes them to the wire (§6 "SSE wire
// format").
type Event struct {
	Type string `json:"type"`

	Message            *MessageStartPayload     `json:"message,omitempty"`
	Index              *int                     `json:"index,omitempty"`
	ContentBlock       *ContentBlock            `json:"content_block,omitempty"`
	Delta              *EventDelta              `json:"delta,omitempty"`
	MessageDeltaUsage  *Usage                   `json:"usage,omitempty"`
}

// Event type discriminators (§3.3).
const (
	EventMessageStart      = "message_start"
	EventContentBlockStart = "content_block_start"
	EventContentBlockDelta = "content_block_delta"
	EventContentBlockStop  = "content_block_stop"
	EventMessageDelta      = "message_delta"
	EventMessageStop       = "message_stop"
)

// MessageStartPayload is the message_start event's nested message object.
type MessageStartPayload struct {
	ID      string         `json:"id"`
	Type    string         `json:"type"`
	Role    string         `json:"role"`
	Model   string         `json:"model"`
	Content []ContentBlock `json:"content"`
	Usage   Usage          `json:"usage"`
}

// EventDelta is the union of delta payloads attached to content_block_delta
// and message_delta events.
type EventDelta struct {
	// content_block_delta
	Type        string `json:"type,omitempty"`
	Text        string `json:"text,omitempty"`
	PartialJSON string `json:"partial_json,omitempty"`

	// message_delta
	StopReason   *string `json:"stop_reason,omitempty"`
	StopSequence *string `json:"stop_sequence,omitempty"`
}

// Delta type discriminators for content_block_delta events.
const (
	DeltaTypeText       = "text_delta"
	DeltaTypeInputJSON  = "input_json_delta"
)

// NewMessageStart builds a message_start event.
func NewMessageStart(id, model string, usage Usage) Event {
	return Event{
		Type: EventMessageStart,
		Message: &MessageStartPayload{
			ID:      id,
			Type:    "message",
			Role:    "assistant",
			Model:   model,
			Content: []ContentBlock{},
			Usage:   usage,
		},
	}
}

// NewContentBlockStart builds a content_block_start event.
func NewContentBlockStart(index int, block ContentBlock) Event {
	return Event{Type: EventContentBlockStart, Index: &index, ContentBlock: &block}
}

// NewTextDelta builds a content_block_delta event carrying a text_delta.
func NewTextDelta(index int, text string) Event {
	return Event{Type: EventContentBlockDelta, Index: &index, Delta: &EventDelta{Type: DeltaTypeText, Text: text}}
}

// NewInputJSONDelta builds a content_block_delta event carrying an
// input_json_delta.
func NewInputJSONDelta(index int, partialJSON string) Event {
	return Event{Type: EventContentBlockDelta, Index: &index, Delta: &EventDelta{Type: DeltaTypeInputJSON, PartialJSON: partialJSON}}
}

// NewContentBlockStop builds a content_block_stop event.
func NewContentBlockStop(index int) Event {
	return Event{Type: EventContentBlockStop, Index: &index}
}

// NewMessageDelta builds the terminal message_delta event.
func NewMessageDelta(stopReason string, usage Usage) Event {
	return Event{
		Type:              EventMessageDelta,
		Delta:             &EventDelta{StopReason: &stopReason},
		MessageDeltaUsage: &usage,
	}
}

// NewMessageStop builds the terminal message_stop event.
func NewMessageStop() Event {
	return Event{Type: EventMessageStop}
}
