package core

import "strings"

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleHuman marks a message authored by the end user.
	RoleHuman Role = "human"
	// RoleAssistant marks a message produced by the generation stage.
	RoleAssistant Role = "assistant"
	// RoleSystem marks synthetic messages such as compaction summaries.
	RoleSystem Role = "system"
)

// Message is a single role-tagged conversation turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// HumanMessage constructs a user-authored message.
func HumanMessage(content string) Message {
	return Message{Role: RoleHuman, Content: content}
}

// AssistantMessage constructs an assistant-authored message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// SystemMessage constructs a system message (e.g. a compaction summary).
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// SerializeHistory renders messages in the tagged format consumed by the
// classification, rewriting and summarization collaborators. Human and
// assistant turns get distinct tags; any other role (compaction summaries)
// is tagged as previous conversation. Returns "" for an empty window.
func SerializeHistory(messages []Message) string {
	if len(messages) == 0 {
		return ""
	}
	var b strings.Builder
	for _, m := range messages {
		switch m.Role {
		case RoleHuman:
			b.WriteString("<human>")
			b.WriteString(m.Content)
			b.WriteString("</human>\n")
		case RoleAssistant:
			b.WriteString("<assistant>")
			b.WriteString(m.Content)
			b.WriteString("</assistant>\n")
		default:
			b.WriteString("<previous-conversation>")
			b.WriteString(m.Content)
			b.WriteString("</previous-conversation>\n")
		}
	}
	return b.String()
}
