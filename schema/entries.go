package schema

import "time"

// EntryKind describes the kind of a conversation entry.
type EntryKind string

const (
	// EntryChat is a chat message from the user or the agent.
	EntryChat EntryKind = "chat"
	// EntrySystem is a phase-change or lifecycle note.
	EntrySystem EntryKind = "system"
	// EntryQA carries a clarification request or response.
	EntryQA EntryKind = "qa"
)

// MessageRole identifies the author of a chat entry.
type MessageRole string

const (
	// RoleUser marks an entry authored by the human.
	RoleUser MessageRole = "user"
	// RoleAgent marks an entry authored by the agent.
	RoleAgent MessageRole = "agent"
)

// ConversationEntry is one persisted message unit. Entries without a
// timestamp keep their insertion order relative to each other.
type ConversationEntry struct {
	ID          EntryID         `json:"id"`
	Kind        EntryKind       `json:"kind"`
	Role        MessageRole     `json:"role,omitempty"`
	Content     string          `json:"content,omitempty"`
	Timestamp   time.Time       `json:"timestamp,omitzero"`
	ToolCallID  ToolCallID      `json:"tool_call_id,omitempty"`
	ToolName    string          `json:"tool_name,omitempty"`
	Attachments []AttachmentRef `json:"attachments,omitempty"`
	QARequest   *QARequest      `json:"qa_request,omitempty"`
	QAResponse  *QAResponse     `json:"qa_response,omitempty"`
}

// AttachmentRef points at an uploaded file attached to an entry.
type AttachmentRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// QAQuestionType describes how a clarification question is answered.
type QAQuestionType string

const (
	// QAFreeText expects a free-form text answer.
	QAFreeText QAQuestionType = "text"
	// QAMultipleChoice expects one of the listed options.
	QAMultipleChoice QAQuestionType = "choice"
)

// QARequest is a structured set of questions the agent poses mid-run. The
// request is open from first sighting until a response with the same
// request id is observed on any channel.
type QARequest struct {
	RequestID RequestID    `json:"request_id"`
	Questions []QAQuestion `json:"questions,omitempty"`
}

// Clone returns a deep copy of the request.
func (r QARequest) Clone() QARequest {
	out := QARequest{RequestID: r.RequestID}
	if len(r.Questions) > 0 {
		out.Questions = make([]QAQuestion, len(r.Questions))
		for i, q := range r.Questions {
			out.Questions[i] = q
			out.Questions[i].Options = append([]string(nil), q.Options...)
		}
	}
	return out
}

// QAQuestion is a single question within a clarification request.
type QAQuestion struct {
	ID      string         `json:"id"`
	Prompt  string         `json:"prompt"`
	Type    QAQuestionType `json:"type,omitempty"`
	Options []string       `json:"options,omitempty"`
}

// QAResponse answers a clarification request, keyed by the request id.
type QAResponse struct {
	RequestID RequestID  `json:"request_id"`
	Answers   []QAAnswer `json:"answers,omitempty"`
}

// QAAnswer answers one question of a clarification request.
type QAAnswer struct {
	QuestionID string `json:"question_id"`
	Value      string `json:"value"`
}
