package studyassist

import "testing"

func TestParseQuizArguments(t *testing.T) {
	data := []byte(`{
		"questions": [
			{"question": "2+2?", "choices": ["3","4","5"], "answer_index": 1, "explanation": "basic arithmetic"},
			{"question": "capital of France?", "choices": ["Paris","Lyon"], "answer_index": 0}
		]
	}`)

	quiz, err := parseQuizArguments(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quiz.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(quiz.Questions))
	}
	if quiz.Questions[0].AnswerIndex != 1 || quiz.Questions[0].Explanation != "basic arithmetic" {
		t.Errorf("first question not parsed: %+v", quiz.Questions[0])
	}
}

func TestParseQuizArgumentsRejectsBadQuizzes(t *testing.T) {
	testCases := []struct {
		name string
		data string
	}{
		{"not json", `submit_quiz(...)`},
		{"no questions", `{"questions": []}`},
		{"missing text", `{"questions": [{"question": "", "choices": ["a","b"], "answer_index": 0}]}`},
		{"single choice", `{"questions": [{"question": "q", "choices": ["a"], "answer_index": 0}]}`},
		{"answer index out of range", `{"questions": [{"question": "q", "choices": ["a","b"], "answer_index": 2}]}`},
		{"negative answer index", `{"questions": [{"question": "q", "choices": ["a","b"], "answer_index": -1}]}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parseQuizArguments([]byte(tc.data)); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}
