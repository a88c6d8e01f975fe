package studyassist

import (
	"context"
	"errors"
	"testing"
)

type fakeQuizBackend struct {
	resp      *QuizResponse
	respErr   error
	reportErr error

	generateCalls int
	lastSessionID string
	reports       []AttemptReport
}

func (f *fakeQuizBackend) GenerateQuiz(ctx context.Context, sessionID string) (*QuizResponse, error) {
	f.generateCalls++
	f.lastSessionID = sessionID
	return f.resp, f.respErr
}

func (f *fakeQuizBackend) ReportAttempt(ctx context.Context, report AttemptReport) error {
	f.reports = append(f.reports, report)
	return f.reportErr
}

func arithmeticQuiz() *QuizResponse {
	return &QuizResponse{
		QuizID: "quiz-1",
		Quiz: &Quiz{Questions: []Question{
			{
				Text:        "2+2?",
				Choices:     []string{"3", "4", "5"},
				AnswerIndex: 1,
				Explanation: "basic arithmetic",
			},
		}},
	}
}

func threeQuestionQuiz() *QuizResponse {
	return &QuizResponse{
		QuizID: "quiz-3",
		Quiz: &Quiz{Questions: []Question{
			{Text: "q0", Choices: []string{"a", "b"}, AnswerIndex: 0},
			{Text: "q1", Choices: []string{"a", "b", "c"}, AnswerIndex: 2},
			{Text: "q2", Choices: []string{"a", "b"}, AnswerIndex: 1},
		}},
	}
}

func TestFetchQuizMissingSessionID(t *testing.T) {
	backend := &fakeQuizBackend{resp: arithmeticQuiz()}
	engine := NewQuizEngine(backend, "")

	engine.FetchQuiz(context.Background(), false)

	if engine.State() != QuizError {
		t.Errorf("expected error state, got %v", engine.State())
	}
	if engine.Status() != missingSessionStatus {
		t.Errorf("expected missing-session status, got %q", engine.Status())
	}
	if backend.generateCalls != 0 {
		t.Error("no request may be sent without a session id")
	}
}

func TestFetchQuizRendersBlocks(t *testing.T) {
	backend := &fakeQuizBackend{resp: threeQuestionQuiz()}
	engine := NewQuizEngine(backend, "sess-1")

	engine.FetchQuiz(context.Background(), false)

	if engine.State() != QuizLoaded {
		t.Fatalf("expected loaded state, got %v (%s)", engine.State(), engine.Status())
	}
	if backend.lastSessionID != "sess-1" {
		t.Errorf("request carried wrong session id: %q", backend.lastSessionID)
	}

	blocks := engine.Blocks()
	if len(blocks) != 5 {
		t.Fatalf("expected 3 question blocks + 2 auxiliary blocks, got %d", len(blocks))
	}
	if blocks[0].Kind != BlockSummary {
		t.Errorf("first block must be the summary, got %v", blocks[0].Kind)
	}
	if blocks[len(blocks)-1].Kind != BlockInstructions {
		t.Errorf("last block must be the instructions, got %v", blocks[len(blocks)-1].Kind)
	}
	for i := 0; i < 3; i++ {
		block := blocks[i+1]
		if block.Kind != BlockQuestion || block.QuestionIndex != i {
			t.Errorf("block %d: expected question index %d, got kind=%v index=%d",
				i+1, i, block.Kind, block.QuestionIndex)
		}
	}
}

func TestFetchQuizBackendError(t *testing.T) {
	backend := &fakeQuizBackend{resp: &QuizResponse{Error: "rate limited", Raw: "upstream said no"}}
	engine := NewQuizEngine(backend, "sess-1")

	engine.FetchQuiz(context.Background(), false)

	if engine.State() != QuizError {
		t.Errorf("expected error state, got %v", engine.State())
	}
	if engine.Status() != "Error: rate limited Raw: upstream said no" {
		t.Errorf("status must show error and raw diagnostic verbatim: %q", engine.Status())
	}
	if len(engine.Blocks()) != 0 {
		t.Errorf("no question blocks may be rendered on error, got %d", len(engine.Blocks()))
	}
}

func TestFetchQuizTransportError(t *testing.T) {
	backend := &fakeQuizBackend{respErr: errors.New("connection refused")}
	engine := NewQuizEngine(backend, "sess-1")

	engine.FetchQuiz(context.Background(), false)

	if engine.State() != QuizError {
		t.Errorf("expected error state, got %v", engine.State())
	}
	if engine.Status() != loadFailedStatus {
		t.Errorf("expected fixed failure message, got %q", engine.Status())
	}
}

func TestFetchQuizInvalidFormat(t *testing.T) {
	backend := &fakeQuizBackend{resp: &QuizResponse{QuizID: "quiz-x"}}
	engine := NewQuizEngine(backend, "sess-1")

	engine.FetchQuiz(context.Background(), false)

	if engine.State() != QuizError || engine.Status() != invalidQuizStatus {
		t.Errorf("expected invalid-format error, got %v %q", engine.State(), engine.Status())
	}
}

func TestSubmitRequiresAllAnswers(t *testing.T) {
	backend := &fakeQuizBackend{resp: threeQuestionQuiz()}
	engine := NewQuizEngine(backend, "sess-1")
	engine.FetchQuiz(context.Background(), false)

	if err := engine.SelectAnswer(0, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := engine.Submit(context.Background())
	if err == nil {
		t.Fatal("expected validation error with unanswered questions")
	}
	if engine.State() != QuizLoaded {
		t.Errorf("failed validation must not change state, got %v", engine.State())
	}
	if len(backend.reports) != 0 {
		t.Error("no attempt may be reported before grading")
	}
}

func TestGradingIsDeterministic(t *testing.T) {
	grade := func() (int, int) {
		backend := &fakeQuizBackend{resp: threeQuestionQuiz()}
		engine := NewQuizEngine(backend, "sess-1")
		engine.FetchQuiz(context.Background(), false)
		engine.SelectAnswer(0, 0) // correct
		engine.SelectAnswer(1, 1) // incorrect
		engine.SelectAnswer(2, 1) // correct
		if err := engine.Submit(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return engine.Score()
	}

	score1, total1 := grade()
	score2, total2 := grade()

	if score1 != 2 || total1 != 3 {
		t.Errorf("expected 2/3, got %d/%d", score1, total1)
	}
	if score1 != score2 || total1 != total2 {
		t.Errorf("grading not deterministic: %d/%d vs %d/%d", score1, total1, score2, total2)
	}
}

func TestSelectAnswerReplacesPriorChoice(t *testing.T) {
	backend := &fakeQuizBackend{resp: arithmeticQuiz()}
	engine := NewQuizEngine(backend, "sess-1")
	engine.FetchQuiz(context.Background(), false)

	engine.SelectAnswer(0, 0)
	engine.SelectAnswer(0, 1)
	if err := engine.Submit(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if score, _ := engine.Score(); score != 1 {
		t.Errorf("re-selection must replace the prior choice, score=%d", score)
	}
}

func TestSelectAnswerValidatesIndices(t *testing.T) {
	backend := &fakeQuizBackend{resp: arithmeticQuiz()}
	engine := NewQuizEngine(backend, "sess-1")

	if err := engine.SelectAnswer(0, 0); err == nil {
		t.Error("expected error selecting before a quiz is loaded")
	}

	engine.FetchQuiz(context.Background(), false)
	if err := engine.SelectAnswer(5, 0); err == nil {
		t.Error("expected error for question index out of range")
	}
	if err := engine.SelectAnswer(0, 9); err == nil {
		t.Error("expected error for choice index out of range")
	}
}

func TestScenarioCorrectAnswer(t *testing.T) {
	backend := &fakeQuizBackend{resp: arithmeticQuiz()}
	engine := NewQuizEngine(backend, "sess-1")
	engine.FetchQuiz(context.Background(), false)

	engine.SelectAnswer(0, 1)
	if err := engine.Submit(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	blocks := engine.Blocks()
	result := blocks[len(blocks)-1]
	if result.Kind != BlockResult || result.Text != "Score: 1 / 1" {
		t.Errorf("expected final score block 'Score: 1 / 1', got %v %q", result.Kind, result.Text)
	}

	var question *Block
	for _, b := range blocks {
		if b.Kind == BlockQuestion && b.QuestionIndex == 0 {
			question = b
		}
	}
	if question == nil || question.Feedback == nil {
		t.Fatal("expected feedback attached to the question block")
	}
	fb := question.Feedback
	if !fb.Correct {
		t.Error("expected feedback marked correct")
	}
	if fb.ChosenText != "4" || fb.CorrectText != "4" {
		t.Errorf("expected chosen and correct text '4', got %q / %q", fb.ChosenText, fb.CorrectText)
	}
	if fb.Explanation != "basic arithmetic" {
		t.Errorf("expected explanation text, got %q", fb.Explanation)
	}
}

func TestScenarioIncorrectAnswerReportsAttempt(t *testing.T) {
	backend := &fakeQuizBackend{resp: arithmeticQuiz()}
	engine := NewQuizEngine(backend, "sess-1")
	engine.FetchQuiz(context.Background(), false)

	engine.SelectAnswer(0, 0)
	if err := engine.Submit(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	blocks := engine.Blocks()
	if got := blocks[len(blocks)-1].Text; got != "Score: 0 / 1" {
		t.Errorf("expected 'Score: 0 / 1', got %q", got)
	}

	fb := blocks[1].Feedback
	if fb == nil {
		t.Fatal("expected feedback on the question block")
	}
	if fb.Correct {
		t.Error("expected feedback marked incorrect")
	}
	if fb.ChosenText != "3" || fb.CorrectText != "4" {
		t.Errorf("expected chosen '3' and correct '4', got %q / %q", fb.ChosenText, fb.CorrectText)
	}

	if len(backend.reports) != 1 {
		t.Fatalf("expected one attempt report, got %d", len(backend.reports))
	}
	report := backend.reports[0]
	if report.QuizID != "quiz-1" || report.Score != 0 || report.Total != 1 {
		t.Errorf("unexpected report: %+v", report)
	}
	if len(report.Answers) != 1 || report.Answers[0] != 0 {
		t.Errorf("expected answers [0], got %v", report.Answers)
	}
}

func TestSubmitIsIdempotent(t *testing.T) {
	backend := &fakeQuizBackend{resp: arithmeticQuiz()}
	engine := NewQuizEngine(backend, "sess-1")
	engine.FetchQuiz(context.Background(), false)
	engine.SelectAnswer(0, 1)

	if err := engine.Submit(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	scoreBefore, _ := engine.Score()
	blocksBefore := len(engine.Blocks())

	if err := engine.Submit(context.Background()); err != nil {
		t.Fatalf("second submit must be a no-op, got error: %v", err)
	}

	scoreAfter, _ := engine.Score()
	if scoreAfter != scoreBefore {
		t.Errorf("second submit changed the score: %d -> %d", scoreBefore, scoreAfter)
	}
	if len(engine.Blocks()) != blocksBefore {
		t.Error("second submit appended blocks")
	}
	if len(backend.reports) != 1 {
		t.Errorf("expected exactly one attempt report, got %d", len(backend.reports))
	}
}

func TestReportFailureDoesNotAffectGrading(t *testing.T) {
	backend := &fakeQuizBackend{resp: arithmeticQuiz(), reportErr: errors.New("store down")}
	engine := NewQuizEngine(backend, "sess-1")
	engine.FetchQuiz(context.Background(), false)
	engine.SelectAnswer(0, 1)

	if err := engine.Submit(context.Background()); err != nil {
		t.Fatalf("report failure must not surface: %v", err)
	}
	if engine.State() != QuizGraded {
		t.Errorf("expected graded state, got %v", engine.State())
	}
	if score, total := engine.Score(); score != 1 || total != 1 {
		t.Errorf("expected 1/1 despite report failure, got %d/%d", score, total)
	}
}

func TestNoReportWithoutQuizID(t *testing.T) {
	resp := arithmeticQuiz()
	resp.QuizID = ""
	backend := &fakeQuizBackend{resp: resp}
	engine := NewQuizEngine(backend, "sess-1")
	engine.FetchQuiz(context.Background(), false)
	engine.SelectAnswer(0, 1)

	if err := engine.Submit(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(backend.reports) != 0 {
		t.Errorf("no report may be sent without a quiz id, got %d", len(backend.reports))
	}
}

func TestRetryDiscardsPreviousAttempt(t *testing.T) {
	backend := &fakeQuizBackend{resp: arithmeticQuiz()}
	engine := NewQuizEngine(backend, "sess-1")
	engine.FetchQuiz(context.Background(), false)
	engine.SelectAnswer(0, 0)
	if err := engine.Submit(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	backend.resp = threeQuestionQuiz()
	engine.Retry(context.Background())

	if engine.State() != QuizLoaded {
		t.Fatalf("expected loaded state after retry, got %v", engine.State())
	}
	if backend.generateCalls != 2 {
		t.Errorf("retry must refetch, got %d calls", backend.generateCalls)
	}

	for _, block := range engine.Blocks() {
		if block.Feedback != nil {
			t.Error("feedback from the previous attempt survived retry")
		}
		if block.Kind == BlockResult {
			t.Error("score block from the previous attempt survived retry")
		}
	}

	// The fresh attempt needs fresh selections.
	if err := engine.Submit(context.Background()); err == nil {
		t.Error("expected validation error: old selections must be discarded")
	}
}

func TestZeroQuestionQuiz(t *testing.T) {
	backend := &fakeQuizBackend{resp: &QuizResponse{QuizID: "quiz-0", Quiz: &Quiz{}}}
	engine := NewQuizEngine(backend, "sess-1")

	engine.FetchQuiz(context.Background(), false)

	blocks := engine.Blocks()
	if len(blocks) != 2 {
		t.Fatalf("expected summary + instructions blocks, got %d", len(blocks))
	}
	if blocks[0].Kind != BlockSummary || blocks[1].Kind != BlockInstructions {
		t.Errorf("unexpected block kinds: %v, %v", blocks[0].Kind, blocks[1].Kind)
	}

	// Submission succeeds immediately with no selections.
	if err := engine.Submit(context.Background()); err != nil {
		t.Fatalf("zero-question submit must succeed: %v", err)
	}
	if score, total := engine.Score(); score != 0 || total != 0 {
		t.Errorf("expected 0/0, got %d/%d", score, total)
	}
	blocks = engine.Blocks()
	if got := blocks[len(blocks)-1].Text; got != "Score: 0 / 0" {
		t.Errorf("expected 'Score: 0 / 0', got %q", got)
	}
}

type funcQuizBackend struct {
	generate func(ctx context.Context, sessionID string) (*QuizResponse, error)
}

func (f *funcQuizBackend) GenerateQuiz(ctx context.Context, sessionID string) (*QuizResponse, error) {
	return f.generate(ctx, sessionID)
}

func (f *funcQuizBackend) ReportAttempt(ctx context.Context, report AttemptReport) error {
	return nil
}

func TestLoadingStatusDistinguishesRegeneration(t *testing.T) {
	var engine *QuizEngine
	var statuses []string
	var states []QuizState

	backend := &funcQuizBackend{
		generate: func(ctx context.Context, sessionID string) (*QuizResponse, error) {
			// Observed while the request is outstanding.
			statuses = append(statuses, engine.Status())
			states = append(states, engine.State())
			return arithmeticQuiz(), nil
		},
	}
	engine = NewQuizEngine(backend, "sess-1")

	engine.FetchQuiz(context.Background(), false)
	engine.Retry(context.Background())

	if len(statuses) != 2 {
		t.Fatalf("expected two fetches, got %d", len(statuses))
	}
	if states[0] != QuizLoading || states[1] != QuizLoading {
		t.Errorf("expected loading state during fetches, got %v", states)
	}
	if statuses[0] != loadingStatus {
		t.Errorf("first load status: got %q", statuses[0])
	}
	if statuses[1] != regeneratingStatus {
		t.Errorf("regeneration status: got %q", statuses[1])
	}
}
