package openaicompat

// Chunk is one inbound OpenAI Chat Completions SSE chunk (§3.4). The
// terminal marker ("[DONE]") is represented out-of-band by the framer
// (internal/anthropicadapter/openaiupstream/framer.go), not as a Chunk.
type Chunk struct {
	ID      string        `json:"id"`
	Model   string        `json:"model"`
	Choices []ChunkChoice `json:"choices"`
	Usage   *Usage        `json:"usage,omitempty"`
}

// ChunkChoice is a chunk's single choice.
type ChunkChoice struct {
	Index        int         `json:"index"`
	Delta        ChunkDelta  `json:"delta"`
	FinishReason *string     `json:"finish_reason"`
}

// ChunkDelta is the incremental content of one chunk (§3.4). Role appears
// only on the first chunk (and only optionally there); Content is a text
// fragment; ToolCalls carries partial tool-call data keyed by index.
type ChunkDelta struct {
	Role      string           `json:"role,omitempty"`
	Content   string           `json:"content,omitempty"`
	ToolCalls []ChunkToolCall  `json:"tool_calls,omitempty"`
}

// ChunkToolCall is one incremental fragment of a tool call, addressed by its
// upstream index (§3.4, §4.5.1 "tool_table").
type ChunkToolCall struct {
	Index    int                   `json:"index"`
	ID       *string               `json:"id,omitempty"`
	Function *ChunkToolCallFunction `json:"function,omitempty"`
}

// ChunkToolCallFunction carries the optional name and the partial arguments
// JSON-string fragment for one tool-call chunk.
type ChunkToolCallFunction struct {
	Name      *string `json:"name,omitempty"`
	Arguments *string `json:"arguments,omitempty"`
}
