package studyassist

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// QuizMaker generates multiple-choice quizzes from session material using
// GPT-4o's tool calling for structured output.
type QuizMaker struct {
	client *openai.Client
}

// NewQuizMaker creates a new quiz maker with OpenAI client
func NewQuizMaker(apiKey string) *QuizMaker {
	return &QuizMaker{
		client: openai.NewClient(apiKey),
	}
}

// GenerateQuiz builds a quiz of numQuestions questions from the session's
// accumulated material. When the model's output cannot be parsed, the raw
// output is returned alongside the error so callers can surface it
// verbatim for debugging.
func (qm *QuizMaker) GenerateQuiz(ctx context.Context, material string, numQuestions int) (quiz *Quiz, raw string, err error) {
	VerboseLog("Generating %d-question quiz from %d characters of material", numQuestions, len(material))

	resp, err := qm.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are an expert quiz question generator. Generate advanced university-level multiple choice questions strictly based on the provided study material.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: qm.buildPrompt(material, numQuestions),
				},
			},
			Tools: []openai.Tool{
				{
					Type: openai.ToolTypeFunction,
					Function: &openai.FunctionDefinition{
						Name:        "submit_quiz",
						Description: "Submit the generated quiz",
						Parameters: map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"questions": map[string]interface{}{
									"type": "array",
									"items": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"question": map[string]interface{}{
												"type":        "string",
												"description": "The question text",
											},
											"choices": map[string]interface{}{
												"type": "array",
												"items": map[string]interface{}{
													"type": "string",
												},
												"description": "Array of 4 multiple choice options",
											},
											"answer_index": map[string]interface{}{
												"type":        "integer",
												"description": "0-based index of the correct choice",
											},
											"explanation": map[string]interface{}{
												"type":        "string",
												"description": "Brief explanation of why the answer is correct",
											},
										},
										"required": []string{"question", "choices", "answer_index", "explanation"},
									},
								},
							},
							"required": []string{"questions"},
						},
					},
				},
			},
			ToolChoice: openai.ToolChoice{
				Type: openai.ToolTypeFunction,
				Function: openai.ToolFunction{
					Name: "submit_quiz",
				},
			},
		},
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate quiz: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, "", fmt.Errorf("no response from GPT-4o")
	}

	choice := resp.Choices[0]
	if len(choice.Message.ToolCalls) == 0 {
		return nil, choice.Message.Content, fmt.Errorf("no tool calls in response")
	}

	toolCall := choice.Message.ToolCalls[0]
	if toolCall.Function.Name != "submit_quiz" {
		return nil, toolCall.Function.Arguments, fmt.Errorf("unexpected tool call: %s", toolCall.Function.Name)
	}

	quiz, err = parseQuizArguments([]byte(toolCall.Function.Arguments))
	if err != nil {
		return nil, toolCall.Function.Arguments, err
	}

	VerboseLog("Generated quiz with %d questions", len(quiz.Questions))
	return quiz, "", nil
}

func (qm *QuizMaker) buildPrompt(material string, numQuestions int) string {
	return fmt.Sprintf(`Generate %d multiple choice questions from the following study material.

Study material:
%s

Requirements:
- Each question must have exactly 4 multiple choice options
- The correct answer should be non-obvious but clearly correct
- Incorrect options should be plausible but clearly wrong
- Questions should test understanding, not just memorization
- Provide a brief explanation for why the correct answer is right
- Use the submit_quiz tool to return the quiz`, numQuestions, material)
}

// parseQuizArguments decodes and validates the submit_quiz tool arguments.
func parseQuizArguments(data []byte) (*Quiz, error) {
	var quiz Quiz
	if err := json.Unmarshal(data, &quiz); err != nil {
		return nil, fmt.Errorf("failed to parse tool arguments: %w", err)
	}

	if len(quiz.Questions) == 0 {
		return nil, fmt.Errorf("quiz contains no questions")
	}
	for i, q := range quiz.Questions {
		if q.Text == "" {
			return nil, fmt.Errorf("question %d has no text", i)
		}
		if len(q.Choices) < 2 {
			return nil, fmt.Errorf("question %d has %d choices, need at least 2", i, len(q.Choices))
		}
		if q.AnswerIndex < 0 || q.AnswerIndex >= len(q.Choices) {
			return nil, fmt.Errorf("question %d has answer index %d out of range", i, q.AnswerIndex)
		}
	}
	return &quiz, nil
}
