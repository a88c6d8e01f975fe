package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"studyassist"

	"github.com/google/uuid"
)

// summarizer and quizMaker are satisfied by the OpenAI-backed
// implementations in the root package and by stubs in tests.
type summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

type quizMaker interface {
	GenerateQuiz(ctx context.Context, material string, numQuestions int) (*studyassist.Quiz, string, error)
}

const authCookie = "studyassist-auth"

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("/", s.handleHome)
	mux.HandleFunc("/quiz", s.requireLogin(s.handleQuizPage))
	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc(studyassist.SessionPath, s.requireLogin(s.handleSession))
	mux.HandleFunc(studyassist.SummarizePath, s.handleSummarize)
	mux.HandleFunc(studyassist.GenerateQuizPath, s.requireLogin(s.handleGenerateQuiz))
	mux.HandleFunc(studyassist.QuizAttemptPath, s.handleQuizAttempt)
}

// requireLogin redirects unauthenticated session/quiz requests to the login
// view instead of issuing the backend call.
func (s *Server) requireLogin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.userName(r) == "" {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

// userName returns the logged-in user's name, or "" when not authenticated.
func (s *Server) userName(r *http.Request) string {
	session, err := s.store.Get(r, authCookie)
	if err != nil {
		return ""
	}
	name, _ := session.Values["name"].(string)
	return name
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

// handleSession issues a fresh session id and persists it.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := uuid.NewString()
	if err := s.db.CreateSession(sessionID, s.userName(r)); err != nil {
		log.Printf("Failed to create session: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create session"})
		return
	}

	studyassist.VerboseLog("Created session %s", sessionID)
	writeJSON(w, http.StatusOK, map[string]string{"session_id": sessionID})
}

// handleSummarize summarizes the submitted text and, when the request
// carries a known session id, appends the exchange to that session's
// stored history so quiz generation can draw on it later.
func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Text      string `json:"text"`
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no text to summarize"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	summary, err := s.summarizer.Summarize(ctx, req.Text)
	if err != nil {
		log.Printf("Summarization failed: %v", err)
		writeJSON(w, http.StatusOK, map[string]string{"error": "Failed to summarize text."})
		return
	}

	if req.SessionID != "" {
		s.recordExchange(req.SessionID, req.Text, summary)
	}

	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

// recordExchange stores a user text and its summary under a session.
// History is advisory; a storage failure must not fail the summarize call.
func (s *Server) recordExchange(sessionID, text, summary string) {
	exists, err := s.db.SessionExists(sessionID)
	if err != nil || !exists {
		if err != nil {
			log.Printf("Session lookup failed: %v", err)
		}
		return
	}
	if err := s.db.AddMessage(sessionID, string(studyassist.RoleUser), text); err != nil {
		log.Printf("Failed to store user message: %v", err)
	}
	if err := s.db.AddMessage(sessionID, string(studyassist.RoleAssistant), summary); err != nil {
		log.Printf("Failed to store summary: %v", err)
	}
}

// handleGenerateQuiz builds a quiz from the session's accumulated material
// and persists it with its answer key.
func (s *Server) handleGenerateQuiz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.SessionID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing session id"})
		return
	}

	messages, err := s.db.GetMessages(req.SessionID)
	if err != nil {
		log.Printf("Failed to load session history: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load session history"})
		return
	}
	if len(messages) == 0 {
		writeJSON(w, http.StatusOK, map[string]string{"error": "no session material to generate a quiz from"})
		return
	}

	var sb strings.Builder
	for _, m := range messages {
		if m.Role == string(studyassist.RoleAssistant) {
			sb.WriteString(m.Text)
			sb.WriteString("\n\n")
		}
	}
	material := sb.String()
	if strings.TrimSpace(material) == "" {
		writeJSON(w, http.StatusOK, map[string]string{"error": "no session material to generate a quiz from"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	quiz, raw, err := s.quizzer.GenerateQuiz(ctx, material, s.questions)
	if err != nil {
		log.Printf("Quiz generation failed: %v", err)
		resp := map[string]string{"error": err.Error()}
		if raw != "" {
			resp["raw"] = raw
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	quizID := uuid.NewString()
	if err := s.db.SaveQuiz(quizID, req.SessionID, quiz); err != nil {
		log.Printf("Failed to save quiz: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save quiz"})
		return
	}

	studyassist.VerboseLog("Generated quiz %s with %d questions for session %s",
		quizID, len(quiz.Questions), req.SessionID)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"quiz":    quiz,
		"quiz_id": quizID,
	})
}

// handleQuizAttempt stores a graded attempt. The client treats this as
// fire-and-forget, so failures are logged and answered briefly.
func (s *Server) handleQuizAttempt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var report studyassist.AttemptReport
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if report.QuizID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing quiz id"})
		return
	}

	if err := s.db.SaveAttempt(report); err != nil {
		log.Printf("Failed to save attempt: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save attempt"})
		return
	}

	studyassist.VerboseLog("Stored attempt for quiz %s: %d/%d", report.QuizID, report.Score, report.Total)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleHome serves the chat page.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	err := s.templates["home"].ExecuteTemplate(w, "base.html", map[string]interface{}{
		"LoggedIn": s.userName(r) != "",
		"Name":     s.userName(r),
	})
	if err != nil {
		log.Printf("Template error in home: %v", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}

// handleQuizPage serves the quiz page. The session id rides in the query
// string; its absence is the page's problem to display, not ours to reject.
func (s *Server) handleQuizPage(w http.ResponseWriter, r *http.Request) {
	err := s.templates["quiz"].ExecuteTemplate(w, "base.html", map[string]interface{}{
		"SessionID": r.URL.Query().Get("session_id"),
	})
	if err != nil {
		log.Printf("Template error in quiz: %v", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}

// handleLogin shows the login form and sets the auth cookie on POST.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		err := s.templates["login"].ExecuteTemplate(w, "base.html", nil)
		if err != nil {
			log.Printf("Template error in login: %v", err)
			http.Error(w, "Template error", http.StatusInternalServerError)
		}
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		http.Error(w, "Name is required", http.StatusBadRequest)
		return
	}

	session, _ := s.store.Get(r, authCookie)
	session.Values["name"] = name
	if err := session.Save(r, w); err != nil {
		log.Printf("Session save error: %v", err)
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
