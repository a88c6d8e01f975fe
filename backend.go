package studyassist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
)

// Backend endpoint paths, shared with cmd/webserver.
const (
	SessionPath      = "/session"
	SummarizePath    = "/summarize"
	GenerateQuizPath = "/generate_quiz"
	QuizAttemptPath  = "/quiz_attempt"
	LoginPath        = "/login"
)

// ChatBackend is the slice of the backend contract the chat controller uses.
type ChatBackend interface {
	CreateSession(ctx context.Context) (string, error)
	Summarize(ctx context.Context, text, sessionID string) (*SummarizeResult, error)
}

// QuizBackend is the slice of the backend contract the quiz engine uses.
type QuizBackend interface {
	GenerateQuiz(ctx context.Context, sessionID string) (*QuizResponse, error)
	ReportAttempt(ctx context.Context, report AttemptReport) error
}

// BackendClient talks to the study-assistant backend over HTTP JSON. It
// implements both ChatBackend and QuizBackend and keeps a cookie jar so the
// login cookie carries across calls.
type BackendClient struct {
	baseURL string
	client  *http.Client
}

// NewBackendClient creates a client for the backend at baseURL.
func NewBackendClient(baseURL string) *BackendClient {
	jar, _ := cookiejar.New(nil)
	return &BackendClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Jar: jar},
	}
}

func (bc *BackendClient) post(ctx context.Context, path string, body, out interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, bc.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := bc.client.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

// CreateSession asks the backend for a fresh session id. A non-JSON reply
// or a reply without a session id is an error; the caller degrades to
// running without session tracking.
func (bc *BackendClient) CreateSession(ctx context.Context) (string, error) {
	var out struct {
		SessionID string `json:"session_id"`
	}
	if err := bc.post(ctx, SessionPath, nil, &out); err != nil {
		return "", err
	}
	if out.SessionID == "" {
		return "", fmt.Errorf("backend returned no session id")
	}
	return out.SessionID, nil
}

// Summarize submits text for summarization under the given session. The
// backend's own error message comes back inside the result, not as a Go
// error; only transport or decoding failures are errors.
func (bc *BackendClient) Summarize(ctx context.Context, text, sessionID string) (*SummarizeResult, error) {
	body := map[string]string{"text": text, "session_id": sessionID}
	var out SummarizeResult
	if err := bc.post(ctx, SummarizePath, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateQuiz requests a quiz document for the session.
func (bc *BackendClient) GenerateQuiz(ctx context.Context, sessionID string) (*QuizResponse, error) {
	body := map[string]string{"session_id": sessionID}
	var out QuizResponse
	if err := bc.post(ctx, GenerateQuizPath, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReportAttempt stores a graded attempt. Best effort: callers log failures
// and never surface them.
func (bc *BackendClient) ReportAttempt(ctx context.Context, report AttemptReport) error {
	var out struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	if err := bc.post(ctx, QuizAttemptPath, report, &out); err != nil {
		return err
	}
	if out.Error != "" {
		return fmt.Errorf("backend rejected attempt: %s", out.Error)
	}
	return nil
}

// Login authenticates against the backend's login form so that the
// session-scoped endpoints stop redirecting to the login view.
func (bc *BackendClient) Login(ctx context.Context, name string) error {
	form := url.Values{}
	form.Set("name", name)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, bc.baseURL+LoginPath, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := bc.client.Do(req)
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("login failed: %s", resp.Status)
	}
	return nil
}
