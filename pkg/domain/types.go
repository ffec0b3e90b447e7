package domain

// ToolCall represents a single tool invocation requested by the model.
// IDs are assigned by the model adapter and are unique within a run.
type ToolCall struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Input map[string]any `json:"input"`
}

// Message is one entry in a run's transcript. Messages are immutable once
// appended; the transcript itself is append-only.
//
// ToolCalls is populated only on assistant messages that request actions.
// ToolCallID is populated only on tool messages and links the result back to
// the requesting call.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	IsError    bool       `json:"is_error,omitempty"`
}

// NewUserMessage is a convenience constructor for seed messages.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewToolResult builds a tool message answering the given call.
func NewToolResult(callID, content string, isErr bool) Message {
	return Message{
		Role:       RoleTool,
		Content:    content,
		ToolCallID: callID,
		IsError:    isErr,
	}
}

// Model describes an available LLM.
type Model struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Provider  string `json:"provider"`
	MaxTokens int    `json:"max_tokens,omitempty"`
}
