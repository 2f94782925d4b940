package openaicompat

import "encoding/json"

// Request is the outbound OpenAI Chat Completions request (§3.2) this
// gateway builds and POSTs to the configured upstream.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
	TopP        *float64  `json:"top_p,omitempty"`
	Stop        *Stop     `json:"stop,omitempty"`
	Stream      *bool     `json:"stream,omitempty"`
	User        *string   `json:"user,omitempty"`
	Tools       []Tool    `json:"tools,omitempty"`
	ToolChoice  *string   `json:"tool_choice,omitempty"`
}

// Message is one flat OpenAI chat message over the four supported roles
// (§3.2). Content is either a plain string or a sequence of content parts.
type Message struct {
	Role       string      `json:"role"`
	Content    *Content    `json:"content,omitempty"`
	ToolCalls  []ToolCall  `json:"tool_calls,omitempty"`
	ToolCallID string      `json:"tool_call_id,omitempty"`
}

// Content holds either a string body or an ordered sequence of parts.
// Exactly one is populated.
type Content struct {
	Text  *string
	Parts []ContentPart
}

func (c Content) MarshalJSON() ([]byte, error) {
	if c.Text != nil {
		return json.Marshal(*c.Text)
	}
	return json.Marshal(c.Parts)
}

func (c *Content) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		c.Text = &asString
		c.Parts = nil
		return nil
	}
	var asParts []ContentPart
	if err := json.Unmarshal(data, &asParts); err != nil {
		return err
	}
	c.Parts = asParts
	c.Text = nil
	return nil
}

// NewStringContent wraps a plain string body.
func NewStringContent(s string) *Content {
	return &Content{Text: &s}
}

// NewPartsContent wraps a sequence of content parts.
func NewPartsContent(parts []ContentPart) *Content {
	return &Content{Parts: parts}
}

// ContentPart is one element of a multimodal OpenAI message: a "text" part
// or an "image_url" part (§3.2). Anthropic's `image` content blocks always
// carry base64 data, which this gateway renders as a data: URL here.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL is an image_url part's payload: either a data: URL or a remote
// URL (§3.2).
type ImageURL struct {
	URL string `json:"url"`
}

// NewTextPart constructs a text content part.
func NewTextPart(text string) ContentPart {
	return ContentPart{Type: "text", Text: text}
}

// NewImageURLPart constructs an image_url content part from a data: URL.
func NewImageURLPart(dataURL string) ContentPart {
	return ContentPart{Type: "image_url", ImageURL: &ImageURL{URL: dataURL}}
}

// ToolCall is an assistant message's request to invoke a function (§3.2).
type ToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function ToolCallFunction `json:"function"`
}

// ToolCallFunction names the function and carries its JSON-encoded
// arguments string.
type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Tool declares one function the model may call (§3.2).
type Tool struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

// ToolFunction is a tool's function declaration.
type ToolFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// Stop is either a single stop string or a sequence of them (§4.2 step 4:
// "forward stop_sequences as stop, collapsing to a single string if
// length 1").
type Stop struct {
	One  *string
	Many []string
}

func (s Stop) MarshalJSON() ([]byte, error) {
	if s.One != nil {
		return json.Marshal(*s.One)
	}
	return json.Marshal(s.Many)
}

// NewStop builds a Stop from the Anthropic stop_sequences list, collapsing a
// single-element list to a bare string.
func NewStop(sequences []string) *Stop {
	switch len(sequences) {
	case 0:
		return nil
	case 1:
		return &Stop{One: &sequences[0]}
	default:
		return &Stop{Many: sequences}
	}
}
