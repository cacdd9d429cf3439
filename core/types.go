package core

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// Role represents a message participant role.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Config describes the provider and model a prompt step executes with.
// It is authored in the prompt document on the server and reported back
// with chain events.
type Config struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// Content represents a single typed content part of a message.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ContentTypeText is the content part type for plain text.
const ContentTypeText = "text"

// TextContent builds a text content part.
func TextContent(text string) Content {
	return Content{Type: ContentTypeText, Text: text}
}

// Message represents a single message in a prompt conversation.
// For simple text messages, use Content. For structured content, use Parts.
// If Parts is non-empty, Content is ignored when marshaling.
//
// On the wire the content field is either a plain string or an array of
// typed parts; both forms unmarshal into this type.
type Message struct {
	Role      Role
	Content   string
	Parts     []Content
	ToolCalls []ToolCall
}

// messageWire is the JSON shape of a message. Content stays raw so both
// wire forms round-trip.
type messageWire struct {
	Role      Role            `json:"role"`
	Content   json.RawMessage `json:"content,omitempty"`
	ToolCalls []ToolCall      `json:"toolCalls,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (m Message) MarshalJSON() ([]byte, error) {
	w := messageWire{Role: m.Role, ToolCalls: m.ToolCalls}

	var err error
	if len(m.Parts) > 0 {
		w.Content, err = json.Marshal(m.Parts)
	} else {
		w.Content, err = json.Marshal(m.Content)
	}
	if err != nil {
		return nil, err
	}

	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Message) UnmarshalJSON(data []byte) error {
	var w messageWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	m.Role = w.Role
	m.ToolCalls = w.ToolCalls
	m.Content = ""
	m.Parts = nil

	if len(w.Content) == 0 {
		return nil
	}

	// Plain string content is the common case; fall back to typed parts.
	var s string
	if err := json.Unmarshal(w.Content, &s); err == nil {
		m.Content = s
		return nil
	}
	return json.Unmarshal(w.Content, &m.Parts)
}

// Text returns the textual content of the message: Content when set,
// otherwise the concatenated text of all parts.
func (m Message) Text() string {
	if m.Content != "" || len(m.Parts) == 0 {
		return m.Content
	}
	var b strings.Builder
	for _, p := range m.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// SystemMessage builds a simple text message with the system role.
func SystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: text}
}

// UserMessage builds a simple text message with the user role.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// AssistantMessage builds a simple text message with the assistant role.
func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Content: text}
}

// Usage tracks token consumption for a prompt execution.
type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

// ToolCall represents a tool invocation requested by the model.
// Arguments MUST be valid JSON bytes and MUST preserve raw JSON (no reformatting).
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// RunRequest executes a prompt document by path.
type RunRequest struct {
	// Path is the document path within the project, e.g. "jokes/opener".
	Path string
	// Parameters are the template inputs the document expects.
	Parameters map[string]any
	// ProjectID overrides the client default project when non-zero.
	ProjectID uint64
	// VersionID overrides the client default version when non-empty.
	VersionID string
}

// ChatRequest continues an existing conversation by uuid.
type ChatRequest struct {
	// ConversationID is the conversation uuid from a previous run.
	ConversationID string
	// Messages are appended to the conversation before generating.
	Messages []Message
}

// RunResponse is the final envelope of a non-streaming run or chat.
type RunResponse struct {
	// UUID identifies the conversation created or continued by the request.
	UUID  uuid.UUID `json:"uuid"`
	Text  string    `json:"text"`
	Usage Usage     `json:"usage"`
}

// LogRequest records an externally produced completion against a document.
type LogRequest struct {
	Path      string
	Messages  []Message
	Response  string
	ProjectID uint64
	VersionID string
}

// LogResponse describes the document log created by a LogRequest.
type LogResponse struct {
	ID               int64           `json:"id"`
	UUID             uuid.UUID       `json:"uuid"`
	DocumentUUID     uuid.UUID       `json:"documentUuid"`
	CommitID         int64           `json:"commitId"`
	ResolvedContent  string          `json:"resolvedContent"`
	ContentHash      string          `json:"contentHash"`
	Parameters       json.RawMessage `json:"parameters,omitempty"`
	CustomIdentifier json.RawMessage `json:"customIdentifier,omitempty"`
	Duration         json.RawMessage `json:"duration,omitempty"`
	Source           string          `json:"source"`
	CreatedAt        string          `json:"createdAt"`
	UpdatedAt        string          `json:"updatedAt"`
}

// EvaluationRequest triggers evaluations for a conversation.
// An empty EvaluationUUIDs list triggers every evaluation connected to
// the document.
type EvaluationRequest struct {
	ConversationID  string
	EvaluationUUIDs []uuid.UUID
}

// EvaluationResponse lists the evaluations that were queued.
type EvaluationResponse struct {
	Evaluations []uuid.UUID `json:"evaluations"`
}

// DocumentRequest fetches a prompt document by path.
type DocumentRequest struct {
	Path      string
	ProjectID uint64
	VersionID string
}

// Document describes a prompt document stored in a project.
type Document struct {
	ID              int64     `json:"id"`
	DocumentUUID    uuid.UUID `json:"documentUuid"`
	Path            string    `json:"path"`
	Content         string    `json:"content"`
	ResolvedContent string    `json:"resolvedContent"`
	ContentHash     string    `json:"contentHash"`
	CommitID        int64     `json:"commitId"`
}
