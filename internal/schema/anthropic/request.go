package anthropic

import "encoding/json"

// Request is the inbound Anthropic Messages API request (§3.1).
type Request struct {
	Model         string          `json:"model" validate:"required"`
	Messages      []Message       `json:"messages" validate:"required,min=1,dive"`
	MaxTokens     int             `json:"max_tokens" validate:"required,min=1"`
	System        *SystemPrompt   `json:"system,omitempty"`
	Tools         []ToolDef       `json:"tools,omitempty" validate:"dive"`
	ToolChoice    *ToolChoice     `json:"tool_choice,omitempty"`
	Temperature   *float64        `json:"temperature,omitempty"`
	TopP          *float64        `json:"top_p,omitempty"`
	TopK          *int            `json:"top_k,omitempty"`
	StopSequences []string        `json:"stop_sequences,omitempty"`
	Stream        *bool           `json:"stream,omitempty"`
	Metadata      *RequestMetadata `json:"metadata,omitempty"`
}

// RequestMetadata carries caller-supplied request metadata.
type RequestMetadata struct {
	UserID *string `json:"user_id,omitempty"`
}

// SystemPrompt is either a plain string or an ordered sequence of text blocks
// with optional cache-control (§3.1). Exactly one of the two fields is set
// once UnmarshalJSON has run.
type SystemPrompt struct {
	Text   *string
	Blocks []SystemTextBlock
}

// SystemTextBlock is one element of a block-form system prompt.
type SystemTextBlock struct {
	Type         string        `json:"type"`
	Text         string        `json:"text"`
	CacheControl *CacheControl `json:"cache_control,omitempty"`
}

// CacheControl is a prompt-caching annotation. TTL, when present, must lie in
// [60, 3600] seconds per §3.1 — validated, never itself altering the body
// (§4.6).
type CacheControl struct {
	Type string `json:"type"`
	TTL  *int   `json:"ttl,omitempty"`
}

func (s *SystemPrompt) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		s.Text = &asString
		s.Blocks = nil
		return nil
	}

	var asBlocks []SystemTextBlock
	if err := json.Unmarshal(data, &asBlocks); err != nil {
		return err
	}
	s.Blocks = asBlocks
	s.Text = nil
	return nil
}

func (s SystemPrompt) MarshalJSON() ([]byte, error) {
	if s.Text != nil {
		return json.Marshal(*s.Text)
	}
	return json.Marshal(s.Blocks)
}

// Message is one turn of the conversation (§3.1). Content is either a plain
// string or an ordered sequence of content blocks.
type Message struct {
	Role    string         `json:"role" validate:"required,oneof=user assistant"`
	Content MessageContent `json:"content" validate:"required"`
}

// MessageContent holds either a string body or a block sequence. Exactly one
// is populated after UnmarshalJSON.
type MessageContent struct {
	Text   *string
	Blocks []ContentBlock `validate:"dive"`
}

func (c *MessageContent) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		c.Text = &asString
		c.Blocks = nil
		return nil
	}

	var asBlocks []ContentBlock
	if err := json.Unmarshal(data, &asBlocks); err != nil {
		return err
	}
	c.Blocks = asBlocks
	c.Text = nil
	return nil
}

func (c MessageContent) MarshalJSON() ([]byte, error) {
	if c.Text != nil {
		return json.Marshal(*c.Text)
	}
	if c.Blocks == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.Blocks)
}

// IsEmpty reports whether the message carries no text and no blocks.
func (c MessageContent) IsEmpty() bool {
	return c.Text == nil && len(c.Blocks) == 0
}

// Content block type discriminators (§3.1, GLOSSARY "Content block").
const (
	BlockTypeText       = "text"
	BlockTypeImage      = "image"
	BlockTypeToolUse    = "tool_use"
	BlockTypeToolResult = "tool_result"
	BlockTypeThinking   = "thinking"
)

// ContentBlock is a closed sum type over the five content-block kinds named
// in §3.1. Only the fields relevant to Type are populated; transformation
// sites switch exhaustively on Type rather than probing which fields are set.
type ContentBlock struct {
	Type string `json:"type" validate:"required,oneof=text image tool_use tool_result thinking"`

	// text
	Text string `json:"text,omitempty"`

	// image
	Source *ImageSource `json:"source,omitempty"`

	// tool_use (assistant-originated)
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`

	// tool_result (user-originated)
	ToolUseID string               `json:"tool_use_id,omitempty"`
	Content   *ToolResultContent   `json:"content,omitempty"`
	IsError   bool                 `json:"is_error,omitempty"`

	// thinking (assistant-originated, optional)
	Thinking  string `json:"thinking,omitempty"`
	Signature string `json:"signature,omitempty"`

	CacheControl *CacheControl `json:"cache_control,omitempty"`
}

// ImageSource is an image content block's payload: a declared media type
// plus base64 data (§3.1). Anthropic ingress never carries remote image URLs
// — that shape only appears on the sibling OpenAI→Anthropic request path,
// which is out of scope (§1 Non-goals).
type ImageSource struct {
	Type      string `json:"type" validate:"required,oneof=base64"`
	MediaType string `json:"media_type" validate:"required"`
	Data      string `json:"data" validate:"required"`
}

// ToolResultContent is either a plain string or a sequence of text/image
// blocks (§3.1).
type ToolResultContent struct {
	Text   *string
	Blocks []ContentBlock `validate:"dive"`
}

func (t *ToolResultContent) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		t.Text = &asString
		t.Blocks = nil
		return nil
	}

	var asBlocks []ContentBlock
	if err := json.Unmarshal(data, &asBlocks); err != nil {
		return err
	}
	t.Blocks = asBlocks
	t.Text = nil
	return nil
}

func (t ToolResultContent) MarshalJSON() ([]byte, error) {
	if t.Text != nil {
		return json.Marshal(*t.Text)
	}
	return json.Marshal(t.Blocks)
}

// ToolDef declares one tool a model may invoke (§3.1).
type ToolDef struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema" validate:"required"`
}

// ToolChoice mirrors Anthropic's tool_choice object: Type is the mode
// ("auto"/"any"/"none"/"tool") and Name names the tool when Type is "tool".
// Only the object form decodes; a bare string is a JSON decode error.
type ToolChoice struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}
