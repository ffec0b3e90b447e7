package domain

// Role identifies the sender of a transcript message.
type Role string

const (
	// RoleSystem indicates instruction-level context supplied by the host.
	RoleSystem Role = "system"
	// RoleUser indicates a message from the end user or advisor.
	RoleUser Role = "user"
	// RoleAssistant indicates a message produced by the model.
	RoleAssistant Role = "assistant"
	// RoleTool indicates the result of a tool invocation.
	RoleTool Role = "tool"
)
