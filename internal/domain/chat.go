package domain

// Chat message roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a single prompt message sent to the language model
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatTurn is one completed question/answer exchange in a session's
// history
type ChatTurn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// AnswerResult is the outcome of answering a question against a
// session's ingested material
type AnswerResult struct {
	Answer          string  `json:"answer"`
	ConfidenceScore float64 `json:"confidence_score"`
}
