package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"studyassist"
)

func main() {
	var (
		server  = flag.String("server", "http://localhost:8180", "Backend base URL")
		name    = flag.String("name", "", "Login name (required for sessions and quizzes)")
		verbose = flag.Bool("verbose", false, "Enable verbose debugging output")
	)
	flag.Parse()

	studyassist.SetVerbose(*verbose)

	backend := studyassist.NewBackendClient(*server)
	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)

	loggedIn := false
	if *name != "" {
		if err := backend.Login(ctx, *name); err != nil {
			log.Printf("Login failed: %v", err)
		} else {
			loggedIn = true
			fmt.Printf("Logged in as %s\n", *name)
		}
	}

	// The terminal has no platform voice list; register the console voice
	// so playback has something to select.
	studyassist.Voices.SetVoices([]studyassist.Voice{
		{Name: "console", Lang: "en-US"},
	})

	nav := &consoleNavigator{ctx: ctx, backend: backend, scanner: scanner}
	chat := studyassist.NewChatController(backend, nav, &consoleSpeaker{}, loggedIn)

	chat.Start(ctx)
	printed := printNewMessages(chat, 0)

	fmt.Println("Type your study text to summarize it, or /help for commands.")
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "/quit":
			return
		case line == "/help":
			printHelp()
		case line == "/new":
			chat.NewSession(ctx)
			printed = 0
		case line == "/quiz":
			if err := chat.RequestQuiz(); err != nil {
				fmt.Println(err)
			}
		case line == "/play":
			playLast(chat)
		case line == "/voices":
			printVoices()
		case strings.HasPrefix(line, "/voice "):
			if err := studyassist.Voices.Select(strings.TrimSpace(strings.TrimPrefix(line, "/voice"))); err != nil {
				fmt.Println(err)
			}
		default:
			chat.Submit(ctx, line)
		}

		printed = printNewMessages(chat, printed)
	}
}

func printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  /new          start a new session")
	fmt.Println("  /quiz         generate a quiz for the current session")
	fmt.Println("  /play         speak the latest summary")
	fmt.Println("  /voices       list available voices")
	fmt.Println("  /voice NAME   select a voice")
	fmt.Println("  /quit         exit")
	fmt.Println("Anything else is submitted for summarization.")
}

// printNewMessages prints transcript entries appended since the last call
// and returns the new printed count. A count above the transcript length
// means the transcript was cleared for a new session.
func printNewMessages(chat *studyassist.ChatController, printed int) int {
	messages := chat.Transcript().Messages()
	if printed > len(messages) {
		printed = 0
	}
	for _, msg := range messages[printed:] {
		if msg.Role == studyassist.RoleUser {
			fmt.Printf("You: %s\n", msg.Text)
		} else {
			fmt.Printf("AI:  %s\n", msg.Text)
		}
	}
	return len(messages)
}

func playLast(chat *studyassist.ChatController) {
	messages := chat.Transcript().Messages()
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].HasAudio {
			if err := chat.Play(messages[i]); err != nil {
				fmt.Println(err)
			}
			return
		}
	}
	fmt.Println("Nothing to play yet.")
}

func printVoices() {
	voices, selected := studyassist.Voices.Snapshot()
	if len(voices) == 0 {
		fmt.Println("No voices available.")
		return
	}
	for _, v := range voices {
		marker := " "
		if v.Name == selected {
			marker = "*"
		}
		fmt.Printf("%s %s (%s)\n", marker, v.Name, v.Lang)
	}
}

// consoleNavigator stands in for browser navigation: opening the quiz view
// runs the interactive quiz loop in place.
type consoleNavigator struct {
	ctx     context.Context
	backend studyassist.QuizBackend
	scanner *bufio.Scanner
}

func (n *consoleNavigator) OpenQuiz(sessionID string) {
	runQuiz(n.ctx, n.backend, sessionID, n.scanner)
}

func (n *consoleNavigator) OpenLogin() {
	fmt.Println("Login required. Restart with -name to log in.")
}

// consoleSpeaker is the terminal's stand-in for text-to-speech.
type consoleSpeaker struct{}

func (consoleSpeaker) Speak(text, voiceName string) error {
	fmt.Printf("🔊 [%s] %s\n", voiceName, text)
	return nil
}

func (consoleSpeaker) Stop() {}

// runQuiz drives one quiz view: fetch, answer, grade, optionally retry.
func runQuiz(ctx context.Context, backend studyassist.QuizBackend, sessionID string, scanner *bufio.Scanner) {
	engine := studyassist.NewQuizEngine(backend, sessionID)
	engine.FetchQuiz(ctx, false)

	for {
		if engine.State() == studyassist.QuizError {
			fmt.Println(engine.Status())
			return
		}

		printQuiz(engine)
		collectAnswers(engine, scanner)

		if err := engine.Submit(ctx); err != nil {
			fmt.Println(err)
			continue
		}

		printResults(engine)

		fmt.Print("Retry with a fresh quiz? (y/n): ")
		if !scanner.Scan() || strings.ToLower(strings.TrimSpace(scanner.Text())) != "y" {
			return
		}
		engine.Retry(ctx)
	}
}

func printQuiz(engine *studyassist.QuizEngine) {
	fmt.Println()
	for _, block := range engine.Blocks() {
		switch block.Kind {
		case studyassist.BlockQuestion:
			fmt.Printf("Q%d: %s\n", block.QuestionIndex+1, block.Text)
			for i, choice := range block.Choices {
				fmt.Printf("  %c) %s\n", 'A'+i, choice)
			}
		default:
			fmt.Println(block.Text)
		}
	}
	fmt.Println()
}

func collectAnswers(engine *studyassist.QuizEngine, scanner *bufio.Scanner) {
	for _, block := range engine.Blocks() {
		if block.Kind != studyassist.BlockQuestion {
			continue
		}
		last := byte('A' + len(block.Choices) - 1)
		for {
			fmt.Printf("Q%d answer (A-%c): ", block.QuestionIndex+1, last)
			if !scanner.Scan() {
				return
			}
			answer := strings.ToUpper(strings.TrimSpace(scanner.Text()))
			if len(answer) == 1 && answer[0] >= 'A' && answer[0] <= last {
				if err := engine.SelectAnswer(block.QuestionIndex, int(answer[0]-'A')); err != nil {
					fmt.Println(err)
					continue
				}
				break
			}
			fmt.Printf("Please enter a letter from A to %c\n", last)
		}
	}
}

func printResults(engine *studyassist.QuizEngine) {
	fmt.Println()
	for _, block := range engine.Blocks() {
		switch block.Kind {
		case studyassist.BlockQuestion:
			fb := block.Feedback
			if fb == nil {
				continue
			}
			if fb.Correct {
				fmt.Printf("✅ Q%d: Correct!", block.QuestionIndex+1)
			} else {
				fmt.Printf("❌ Q%d: Incorrect.", block.QuestionIndex+1)
			}
			if fb.Explanation != "" {
				fmt.Printf(" %s", fb.Explanation)
			}
			fmt.Println()
			fmt.Printf("   Your answer: %s\n", fb.ChosenText)
			fmt.Printf("   Correct answer: %s\n", fb.CorrectText)
		case studyassist.BlockResult:
			fmt.Printf("🏆 %s\n", block.Text)
		}
	}
	fmt.Println()
}
