// Package types holds the data model shared by every component of the
// runtime: messages, memory items, vector items, agent descriptors, task
// requests/results, and RAG loop state.
package types

import "time"

// Role identifies who produced a Message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ContentKind tags the variant carried by a Content value.
type ContentKind string

const (
	ContentText       ContentKind = "text"
	ContentImage      ContentKind = "image"
	ContentData       ContentKind = "data"
	ContentToolCall   ContentKind = "tool_call"
	ContentToolResult ContentKind = "tool_result"
)

// Content is a sum type over the parts a Message can carry. Exactly the
// fields matching Kind are meaningful; this mirrors the tagged-enum content
// model rather than an untyped blob.
type Content struct {
	Kind ContentKind `json:"kind"`

	Text string `json:"text,omitempty"`

	ImageURL  string `json:"image_url,omitempty"`
	ImageData []byte `json:"image_data,omitempty"`

	Data map[string]any `json:"data,omitempty"`

	ToolCallID   string         `json:"tool_call_id,omitempty"`
	ToolName     string         `json:"tool_name,omitempty"`
	ToolArgs     map[string]any `json:"tool_args,omitempty"`
	ToolResultID string         `json:"tool_result_id,omitempty"`
	ToolResult   map[string]any `json:"tool_result,omitempty"`
}

func TextContent(s string) Content { return Content{Kind: ContentText, Text: s} }

// Message is immutable once enqueued into any memory tier or prompt.
type Message struct {
	Role      Role      `json:"role"`
	Content   []Content `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Name      string    `json:"name,omitempty"`
}

func NewMessage(role Role, content ...Content) Message {
	return Message{Role: role, Content: content, Timestamp: time.Now().UTC()}
}

func UserMessage(text string) Message      { return NewMessage(RoleUser, TextContent(text)) }
func AssistantMessage(text string) Message { return NewMessage(RoleAssistant, TextContent(text)) }

// TextContent concatenates every Text content part, in order. Returns ""
// (not an error) when the message carries no text parts.
func (m Message) TextContent() string {
	var out string
	for _, c := range m.Content {
		if c.Kind == ContentText {
			out += c.Text
		}
	}
	return out
}
