package studyassist

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
)

// Navigator abstracts the page navigation the chat controller can trigger.
type Navigator interface {
	OpenQuiz(sessionID string)
	OpenLogin()
}

// Fixed user-facing notices for the chat page.
const (
	loginNotice          = "Login to create a session and save your history."
	sessionFailedNotice  = "Failed to start session, continuing without session tracking."
	rejectionNotice      = "Offensive language detected. Please enter appropriate text."
	summarizingNotice    = "Summarizing your text..."
	summarizeFailedText  = "Error summarizing text."
	noResponseText       = "No response received."
	missingSessionNotice = "Session ID missing; start a new session first."
)

// ChatController owns the chat page: at most one current session id, the
// message transcript, and the handoff to the quiz view. Backend failures
// degrade to locally rendered notices; none of them stop the page.
type ChatController struct {
	backend    ChatBackend
	nav        Navigator
	speaker    Speaker
	voices     *VoiceStore
	transcript *Transcript
	loggedIn   bool
	sessionID  string
}

// NewChatController creates a controller for one page view. speaker may be
// nil when no text-to-speech capability is available.
func NewChatController(backend ChatBackend, nav Navigator, speaker Speaker, loggedIn bool) *ChatController {
	return &ChatController{
		backend:    backend,
		nav:        nav,
		speaker:    speaker,
		voices:     Voices,
		transcript: NewTranscript(),
		loggedIn:   loggedIn,
	}
}

// SessionID returns the current session id, or "" when absent.
func (cc *ChatController) SessionID() string {
	return cc.sessionID
}

// Transcript returns the controller's message transcript.
func (cc *ChatController) Transcript() *Transcript {
	return cc.transcript
}

// Start prepares the chat page: logged-in users get a fresh session right
// away, logged-out users a notice inviting them to log in.
func (cc *ChatController) Start(ctx context.Context) {
	if cc.loggedIn {
		cc.NewSession(ctx)
		return
	}
	cc.transcript.Append(RoleAssistant, loginNotice)
}

// NewSession requests a fresh session id from the backend. On success the
// new id replaces the current one and the transcript restarts with a notice
// announcing it. On failure the session becomes absent, but the page keeps
// working: later submissions simply go out without a session id.
func (cc *ChatController) NewSession(ctx context.Context) {
	if !cc.loggedIn {
		cc.nav.OpenLogin()
		return
	}

	id, err := cc.backend.CreateSession(ctx)
	if err != nil {
		log.Printf("Failed to create session: %v", err)
		cc.sessionID = ""
		cc.transcript.Append(RoleAssistant, sessionFailedNotice)
		return
	}

	cc.sessionID = id
	cc.transcript.Clear()
	cc.transcript.Append(RoleAssistant, fmt.Sprintf("Started new session: %s", id))
}

// Submit handles one user submission. Empty or whitespace-only input is
// ignored. Blocklisted input is rejected with a single assistant notice and
// never reaches the backend. Otherwise the user message and a provisional
// placeholder are appended, and the placeholder is resolved with the
// summarize outcome: summary, backend error message, or a generic fallback.
func (cc *ChatController) Submit(ctx context.Context, text string) {
	value := strings.TrimSpace(text)
	if value == "" {
		return
	}

	if ContainsProfanity(value) {
		cc.transcript.Append(RoleAssistant, rejectionNotice)
		return
	}

	cc.transcript.Append(RoleUser, value)
	placeholder := cc.transcript.Append(RoleAssistant, summarizingNotice)

	result, err := cc.backend.Summarize(ctx, value, cc.sessionID)
	if err != nil {
		log.Printf("Summarize request failed: %v", err)
		placeholder.Text = summarizeFailedText
		return
	}

	summary := result.Summary
	if summary == "" {
		summary = result.Error
	}
	if summary == "" {
		summary = noResponseText
	}

	// The playback control and the quiz affordance attach to this message
	// only, whether the backend answered with a summary or its own error.
	placeholder.Text = summary
	placeholder.HasAudio = true
	placeholder.CanGenerateQuiz = true
}

// RequestQuiz hands the current session off to the quiz view. Without a
// session id it returns the blocking notice as an error and navigates
// nowhere.
func (cc *ChatController) RequestQuiz() error {
	if cc.sessionID == "" {
		return errors.New(missingSessionNotice)
	}
	cc.nav.OpenQuiz(cc.sessionID)
	return nil
}

// Play speaks a message's text through the injected speaker using the
// current voice preference. Any previous playback is stopped first.
func (cc *ChatController) Play(msg *Message) error {
	if cc.speaker == nil {
		return errors.New("no speech capability available")
	}
	if msg == nil || strings.TrimSpace(msg.Text) == "" {
		return nil
	}
	cc.speaker.Stop()
	return cc.speaker.Speak(msg.Text, cc.voices.Selected())
}

// StopPlayback stops any in-progress speech.
func (cc *ChatController) StopPlayback() {
	if cc.speaker != nil {
		cc.speaker.Stop()
	}
}
