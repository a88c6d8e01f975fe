package studyassist

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// QuizState identifies where the engine is within one quiz attempt.
type QuizState string

const (
	QuizIdle    QuizState = "idle"
	QuizLoading QuizState = "loading"
	QuizLoaded  QuizState = "loaded"
	QuizGraded  QuizState = "graded"
	QuizError   QuizState = "error"
)

// BlockKind classifies a rendered quiz block.
type BlockKind string

const (
	BlockSummary      BlockKind = "summary"
	BlockQuestion     BlockKind = "question"
	BlockInstructions BlockKind = "instructions"
	BlockResult       BlockKind = "result"
)

// Block is one rendered unit of the quiz view. Question blocks carry their
// question index explicitly, so feedback is attached by id rather than by
// position among the surrounding summary and instruction blocks.
type Block struct {
	Kind          BlockKind
	QuestionIndex int // -1 for non-question blocks
	Text          string
	Choices       []string
	Feedback      *Feedback
}

// Feedback is the grading outcome rendered beneath one question.
type Feedback struct {
	Correct     bool
	Explanation string
	ChosenText  string
	CorrectText string
}

// Fixed status strings on the quiz page.
const (
	missingSessionStatus = "Missing session id. Return to chat and generate quiz again."
	loadingStatus        = "Loading quiz..."
	regeneratingStatus   = "Regenerating quiz..."
	loadFailedStatus     = "Failed to load quiz."
	invalidQuizStatus    = "Invalid quiz format."
)

// Submit validation errors.
var (
	errNotLoaded  = errors.New("quiz not loaded yet")
	errUnanswered = errors.New("please answer all questions before submitting")
)

// QuizEngine runs one quiz attempt for a session: fetch, render, collect
// answers, grade, and report. Regeneration discards the quiz and attempt
// wholesale and starts over.
type QuizEngine struct {
	backend   QuizBackend
	sessionID string

	state      QuizState
	status     string
	quiz       *Quiz
	quizID     string
	selections map[int]int
	submitted  bool
	score      int
	blocks     []*Block
}

// NewQuizEngine creates an idle engine for the given session id, which may
// be empty when the navigation carried none.
func NewQuizEngine(backend QuizBackend, sessionID string) *QuizEngine {
	return &QuizEngine{
		backend:    backend,
		sessionID:  sessionID,
		state:      QuizIdle,
		selections: make(map[int]int),
	}
}

// State returns the engine's current state.
func (qe *QuizEngine) State() QuizState {
	return qe.state
}

// Status returns the user-visible status line.
func (qe *QuizEngine) Status() string {
	return qe.status
}

// Blocks returns a snapshot of the rendered blocks in display order.
func (qe *QuizEngine) Blocks() []*Block {
	out := make([]*Block, len(qe.blocks))
	copy(out, qe.blocks)
	return out
}

// Quiz returns the current quiz document, or nil before a successful fetch.
func (qe *QuizEngine) Quiz() *Quiz {
	return qe.quiz
}

// Score returns the graded score and the question total. Meaningful only
// after a successful Submit.
func (qe *QuizEngine) Score() (score, total int) {
	if qe.quiz == nil {
		return 0, 0
	}
	return qe.score, len(qe.quiz.Questions)
}

// FetchQuiz requests the quiz document for the engine's session and renders
// it. Without a session id it goes straight to the error state and no
// request is sent. regenerate only changes the status shown while loading.
func (qe *QuizEngine) FetchQuiz(ctx context.Context, regenerate bool) {
	if qe.sessionID == "" {
		qe.state = QuizError
		qe.status = missingSessionStatus
		return
	}

	qe.state = QuizLoading
	if regenerate {
		qe.status = regeneratingStatus
	} else {
		qe.status = loadingStatus
	}

	resp, err := qe.backend.GenerateQuiz(ctx, qe.sessionID)
	if err != nil {
		log.Printf("Quiz fetch failed: %v", err)
		qe.state = QuizError
		qe.status = loadFailedStatus
		return
	}

	if resp.Error != "" {
		qe.state = QuizError
		qe.status = "Error: " + resp.Error
		if resp.Raw != "" {
			qe.status += " Raw: " + resp.Raw
		}
		return
	}

	if resp.Quiz == nil {
		qe.state = QuizError
		qe.status = invalidQuizStatus
		return
	}

	qe.quiz = resp.Quiz
	qe.quizID = resp.QuizID
	qe.selections = make(map[int]int)
	qe.submitted = false
	qe.score = 0
	qe.render()
	qe.state = QuizLoaded
	qe.status = ""
}

// render builds the block sequence: one summary line, one block per
// question in received order, one closing instructional line.
func (qe *QuizEngine) render() {
	blocks := make([]*Block, 0, len(qe.quiz.Questions)+2)
	blocks = append(blocks, &Block{
		Kind:          BlockSummary,
		QuestionIndex: -1,
		Text:          fmt.Sprintf("Quiz loaded: %d advanced university-level questions.", len(qe.quiz.Questions)),
	})
	for i, q := range qe.quiz.Questions {
		blocks = append(blocks, &Block{
			Kind:          BlockQuestion,
			QuestionIndex: i,
			Text:          q.Text,
			Choices:       append([]string(nil), q.Choices...),
		})
	}
	blocks = append(blocks, &Block{
		Kind:          BlockInstructions,
		QuestionIndex: -1,
		Text:          "Select answers and submit to see results.",
	})
	qe.blocks = blocks
}

// SelectAnswer records the chosen choice for a question. Each question
// keeps exactly one selection; choosing again replaces it.
func (qe *QuizEngine) SelectAnswer(questionIndex, choiceIndex int) error {
	if qe.state != QuizLoaded {
		return errNotLoaded
	}
	if questionIndex < 0 || questionIndex >= len(qe.quiz.Questions) {
		return fmt.Errorf("question index out of range: %d", questionIndex)
	}
	if choiceIndex < 0 || choiceIndex >= len(qe.quiz.Questions[questionIndex].Choices) {
		return fmt.Errorf("choice index out of range: %d", choiceIndex)
	}
	qe.selections[questionIndex] = choiceIndex
	return nil
}

// Submit grades the attempt. Every question must carry a selection, or the
// engine stays loaded and returns a validation error. Grading attaches
// feedback to each question block, appends the final score block, disables
// further submission, and reports the attempt when a quiz id is present.
// Reporting is best effort: a failure is logged and changes nothing on
// screen. Calling Submit again after grading is a no-op.
func (qe *QuizEngine) Submit(ctx context.Context) error {
	if qe.submitted {
		// The control is disabled after grading.
		return nil
	}
	if qe.state != QuizLoaded {
		return errNotLoaded
	}
	if len(qe.selections) < len(qe.quiz.Questions) {
		return errUnanswered
	}

	score := 0
	answers := make([]int, len(qe.quiz.Questions))
	for i, q := range qe.quiz.Questions {
		chosen := qe.selections[i]
		answers[i] = chosen

		fb := &Feedback{
			Correct:     chosen == q.AnswerIndex,
			Explanation: q.Explanation,
			ChosenText:  q.Choices[chosen],
			CorrectText: q.Choices[q.AnswerIndex],
		}
		if fb.Correct {
			score++
		}
		if block := qe.questionBlock(i); block != nil {
			block.Feedback = fb
		}
	}

	qe.score = score
	qe.blocks = append(qe.blocks, &Block{
		Kind:          BlockResult,
		QuestionIndex: -1,
		Text:          fmt.Sprintf("Score: %d / %d", score, len(qe.quiz.Questions)),
	})
	qe.submitted = true
	qe.state = QuizGraded

	if qe.quizID != "" {
		report := AttemptReport{
			QuizID:  qe.quizID,
			Score:   score,
			Total:   len(qe.quiz.Questions),
			Answers: answers,
		}
		if err := qe.backend.ReportAttempt(ctx, report); err != nil {
			log.Printf("Quiz attempt store failed: %v", err)
		}
	}
	return nil
}

// questionBlock finds the rendered block for a question index. Lookup is by
// the block's own index tag, never by position.
func (qe *QuizEngine) questionBlock(index int) *Block {
	for _, b := range qe.blocks {
		if b.Kind == BlockQuestion && b.QuestionIndex == index {
			return b
		}
	}
	return nil
}

// Retry discards the current quiz and attempt and fetches a fresh one.
// Valid from the graded state and tolerated from any other.
func (qe *QuizEngine) Retry(ctx context.Context) {
	qe.submitted = false
	qe.quiz = nil
	qe.quizID = ""
	qe.selections = make(map[int]int)
	qe.score = 0
	qe.blocks = nil
	qe.FetchQuiz(ctx, true)
}
