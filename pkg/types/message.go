package types

import "fmt"

// Role identifies the author of a message in a conversation transcript.
type Role string

const (
	RoleSystem     Role = "system"
	RoleUser       Role = "user"
	RoleAssistant  Role = "assistant"
	RoleToolResult Role = "tool_result"
)

// ToolCall records a tool invocation requested by an assistant message.
type ToolCall struct {
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
	Result    any            `json:"result,omitempty"`
}

// GenerationContext records which prior messages and tool calls an assistant
// message was generated from.
type GenerationContext struct {
	Messages  []Message  `json:"messages,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// Message is one transcript entry. The Role tag determines which of the
// remaining fields are valid: ToolCalls and Generation only appear on
// assistant messages, ToolCallID/ToolName only on tool_result messages.
type Message struct {
	Role       Role               `json:"role"`
	Content    string             `json:"content,omitempty"`
	ToolCalls  []ToolCall         `json:"tool_calls,omitempty"`
	Generation *GenerationContext `json:"generation,omitempty"`
	ToolCallID string             `json:"tool_call_id,omitempty"`
	ToolName   string             `json:"tool_name,omitempty"`
}

// System builds a system message.
func System(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// User builds a user message.
func User(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Assistant builds an assistant message, optionally carrying tool calls.
func Assistant(content string, calls ...ToolCall) Message {
	return Message{Role: RoleAssistant, Content: content, ToolCalls: calls}
}

// ToolResult builds a tool_result message referencing the originating call.
// Either callID or toolName must be non-empty.
func ToolResult(callID, toolName, content string) Message {
	return Message{Role: RoleToolResult, Content: content, ToolCallID: callID, ToolName: toolName}
}

// Validate checks the role-discriminated field invariant.
func (m Message) Validate() error {
	switch m.Role {
	case RoleSystem, RoleUser:
		if len(m.ToolCalls) > 0 || m.Generation != nil {
			return fmt.Errorf("%s message must not carry tool calls or generation context", m.Role)
		}
		if m.ToolCallID != "" || m.ToolName != "" {
			return fmt.Errorf("%s message must not reference a tool call", m.Role)
		}
	case RoleAssistant:
		if m.ToolCallID != "" || m.ToolName != "" {
			return fmt.Errorf("assistant message must not reference a tool call result")
		}
	case RoleToolResult:
		if m.ToolCallID == "" && m.ToolName == "" {
			return fmt.Errorf("tool_result message must reference the originating call by id or name")
		}
		if len(m.ToolCalls) > 0 || m.Generation != nil {
			return fmt.Errorf("tool_result message must not carry tool calls or generation context")
		}
	case "":
		return fmt.Errorf("message missing role")
	default:
		return fmt.Errorf("unknown role: %s", m.Role)
	}
	return nil
}

// CloneMessage returns a deep copy suitable for isolation across component
// boundaries.
func CloneMessage(in Message) Message {
	out := in
	if len(in.ToolCalls) > 0 {
		out.ToolCalls = cloneToolCalls(in.ToolCalls)
	}
	if in.Generation != nil {
		gen := GenerationContext{
			Messages:  CloneMessages(in.Generation.Messages),
			ToolCalls: cloneToolCalls(in.Generation.ToolCalls),
		}
		out.Generation = &gen
	}
	return out
}

// CloneMessages returns deep copies of all messages.
func CloneMessages(in []Message) []Message {
	if in == nil {
		return nil
	}
	out := make([]Message, len(in))
	for i := range in {
		out[i] = CloneMessage(in[i])
	}
	return out
}

func cloneToolCalls(in []ToolCall) []ToolCall {
	if in == nil {
		return nil
	}
	out := make([]ToolCall, len(in))
	for i, c := range in {
		out[i] = c
		if c.Arguments != nil {
			args := make(map[string]any, len(c.Arguments))
			for k, v := range c.Arguments {
				args[k] = v
			}
			out[i].Arguments = args
		}
	}
	return out
}
