package chat

import "time"

// Senders recognised in a conversation log.
const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
	SenderSystem    = "system"
)

// Attachment describes an uploaded image or context file by metadata only;
// the bytes themselves never enter the conversation log.
type Attachment struct {
	Name      string `json:"name"`
	MediaType string `json:"mediaType"`
	Size      int64  `json:"size"`
}

// Message is one turn-unit of a conversation. Immutable once appended,
// except for the review fields carried on its Action.
type Message struct {
	ID           string          `json:"id"`
	SessionID    string          `json:"sessionId"`
	Sender       string          `json:"sender"`
	Content      string          `json:"content"`
	Images       []Attachment    `json:"images,omitempty"`
	ContextFiles []Attachment    `json:"contextFiles,omitempty"`
	Action       *ActionProposal `json:"action,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}
