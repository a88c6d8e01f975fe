package studyassist

// Role identifies who a chat message is from
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in the chat transcript. Messages are appended in
// order and never removed; a summarize placeholder is the only message whose
// text is replaced after the fact, through the handle Append returns.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
	// HasAudio marks messages that carry a playback control.
	HasAudio bool `json:"has_audio"`
	// CanGenerateQuiz marks the specific summary message that carries the
	// quiz affordance.
	CanGenerateQuiz bool `json:"can_generate_quiz,omitempty"`
}

// Question represents a single multiple-choice question with its answer key
type Question struct {
	Text        string   `json:"question"`
	Choices     []string `json:"choices"`
	AnswerIndex int      `json:"answer_index"` // 0-based index into Choices
	Explanation string   `json:"explanation,omitempty"`
}

// Quiz is an ordered set of questions as delivered by the backend. It is
// immutable once received; regeneration replaces it wholesale.
type Quiz struct {
	Questions []Question `json:"questions"`
}

// SummarizeResult is the decoded body of a summarize call. Either Summary
// or Error is set; backend-reported errors are data here, not Go errors.
type SummarizeResult struct {
	Summary string `json:"summary,omitempty"`
	Error   string `json:"error,omitempty"`
}

// QuizResponse is the decoded body of a generate-quiz call. Raw carries any
// diagnostic payload the backend attaches to an error, verbatim.
type QuizResponse struct {
	Quiz   *Quiz  `json:"quiz,omitempty"`
	QuizID string `json:"quiz_id,omitempty"`
	Error  string `json:"error,omitempty"`
	Raw    string `json:"raw,omitempty"`
}

// AttemptReport is one graded attempt as reported back to the backend.
// Answers holds the chosen choice index for each question, in question order.
type AttemptReport struct {
	QuizID  string `json:"quiz_id"`
	Score   int    `json:"score"`
	Total   int    `json:"total"`
	Answers []int  `json:"answers"`
}
