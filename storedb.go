package studyassist

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB persists sessions, their chat history, generated quizzes, and reported
// attempts for the backend.
type DB struct {
	db *sql.DB
}

// StoredMessage is one chat exchange entry as persisted per session
type StoredMessage struct {
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// StoredQuiz is a generated quiz as persisted, answer key included
type StoredQuiz struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Questions string    `json:"questions"` // JSON array in the wire format
	CreatedAt time.Time `json:"created_at"`
}

// StoredAttempt is one graded attempt as reported by the client
type StoredAttempt struct {
	ID        int64     `json:"id"`
	QuizID    string    `json:"quiz_id"`
	Score     int       `json:"score"`
	Total     int       `json:"total"`
	Answers   string    `json:"answers"` // JSON array of chosen indices
	CreatedAt time.Time `json:"created_at"`
}

// OpenDB opens a new database connection
func OpenDB(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{db: db}, nil
}

// CloseDB closes the database connection
func (db *DB) CloseDB() error {
	return db.db.Close()
}

// CreateTables creates the necessary tables if they don't exist
func (db *DB) CreateTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			user_name TEXT,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			text TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (session_id) REFERENCES sessions(id)
		)`,
		`CREATE TABLE IF NOT EXISTS quizzes (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			questions TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (session_id) REFERENCES sessions(id)
		)`,
		`CREATE TABLE IF NOT EXISTS attempts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			quiz_id TEXT NOT NULL,
			score INTEGER NOT NULL,
			total INTEGER NOT NULL,
			answers TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (quiz_id) REFERENCES quizzes(id)
		)`,
	}

	for _, query := range queries {
		if _, err := db.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute %s: %w", query, err)
		}
	}
	return nil
}

// CreateSession creates a new session row
func (db *DB) CreateSession(id, userName string) error {
	_, err := db.db.Exec(
		"INSERT INTO sessions (id, user_name, created_at) VALUES (?, ?, ?)",
		id, userName, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// SessionExists reports whether a session id is known
func (db *DB) SessionExists(id string) (bool, error) {
	var found string
	err := db.db.QueryRow("SELECT id FROM sessions WHERE id = ?", id).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up session: %w", err)
	}
	return true, nil
}

// AddMessage appends one chat exchange entry to a session's history
func (db *DB) AddMessage(sessionID, role, text string) error {
	_, err := db.db.Exec(
		"INSERT INTO messages (session_id, role, text, created_at) VALUES (?, ?, ?, ?)",
		sessionID, role, text, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to add message: %w", err)
	}
	return nil
}

// GetMessages retrieves a session's history in insertion order
func (db *DB) GetMessages(sessionID string) ([]StoredMessage, error) {
	rows, err := db.db.Query(
		"SELECT session_id, role, text, created_at FROM messages WHERE session_id = ? ORDER BY id",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	defer rows.Close()

	var messages []StoredMessage
	for rows.Next() {
		var m StoredMessage
		if err := rows.Scan(&m.SessionID, &m.Role, &m.Text, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}
	return messages, nil
}

// SaveQuiz persists a generated quiz with its answer key
func (db *DB) SaveQuiz(quizID, sessionID string, quiz *Quiz) error {
	questions, err := json.Marshal(quiz.Questions)
	if err != nil {
		return fmt.Errorf("failed to marshal questions: %w", err)
	}

	_, err = db.db.Exec(
		"INSERT INTO quizzes (id, session_id, questions, created_at) VALUES (?, ?, ?, ?)",
		quizID, sessionID, string(questions), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to save quiz: %w", err)
	}
	return nil
}

// GetQuiz retrieves a stored quiz by ID
func (db *DB) GetQuiz(quizID string) (*StoredQuiz, *Quiz, error) {
	var stored StoredQuiz
	err := db.db.QueryRow(
		"SELECT id, session_id, questions, created_at FROM quizzes WHERE id = ?",
		quizID,
	).Scan(&stored.ID, &stored.SessionID, &stored.Questions, &stored.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, fmt.Errorf("quiz not found: %s", quizID)
		}
		return nil, nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	var questions []Question
	if err := json.Unmarshal([]byte(stored.Questions), &questions); err != nil {
		return nil, nil, fmt.Errorf("failed to parse stored questions: %w", err)
	}
	return &stored, &Quiz{Questions: questions}, nil
}

// SaveAttempt persists one reported attempt
func (db *DB) SaveAttempt(report AttemptReport) error {
	answers, err := json.Marshal(report.Answers)
	if err != nil {
		return fmt.Errorf("failed to marshal answers: %w", err)
	}

	_, err = db.db.Exec(
		"INSERT INTO attempts (quiz_id, score, total, answers, created_at) VALUES (?, ?, ?, ?, ?)",
		report.QuizID, report.Score, report.Total, string(answers), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to save attempt: %w", err)
	}
	return nil
}

// GetAttempts retrieves all attempts for a quiz, newest first
func (db *DB) GetAttempts(quizID string) ([]StoredAttempt, error) {
	rows, err := db.db.Query(
		"SELECT id, quiz_id, score, total, answers, created_at FROM attempts WHERE quiz_id = ? ORDER BY id DESC",
		quizID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get attempts: %w", err)
	}
	defer rows.Close()

	var attempts []StoredAttempt
	for rows.Next() {
		var a StoredAttempt
		if err := rows.Scan(&a.ID, &a.QuizID, &a.Score, &a.Total, &a.Answers, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		attempts = append(attempts, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attempts: %w", err)
	}
	return attempts, nil
}
