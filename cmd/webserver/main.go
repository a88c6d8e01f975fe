package main

import (
	"html/template"
	"log"
	"net/http"
	"os"

	"studyassist"

	"github.com/gorilla/sessions"
	"github.com/joho/godotenv"
)

// Server serves the study-assistant pages and the four JSON endpoints the
// page scripts call.
type Server struct {
	db         *studyassist.DB
	store      *sessions.CookieStore
	templates  map[string]*template.Template
	summarizer summarizer
	quizzer    quizMaker
	questions  int // questions per generated quiz
}

func main() {
	// .env is optional; real environment wins
	if err := godotenv.Load(); err == nil {
		log.Printf("Loaded configuration from .env")
	}

	studyassist.SetVerbose(os.Getenv("VERBOSE") == "1")

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatal("OPENAI_API_KEY environment variable is required")
	}

	dbPath := os.Getenv("QUIZ_DB")
	if dbPath == "" {
		dbPath = "./studyassist.db"
	}

	db, err := studyassist.OpenDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.CloseDB()

	if err := db.CreateTables(); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "studyassist-dev-secret"
		log.Printf("SESSION_SECRET not set, using development default")
	}
	store := sessions.NewCookieStore([]byte(secret))

	templates := make(map[string]*template.Template)
	templateFiles := []struct {
		name string
		file string
	}{
		{"home", "templates/home.html"},
		{"quiz", "templates/quiz.html"},
		{"login", "templates/login.html"},
	}
	for _, tmpl := range templateFiles {
		templates[tmpl.name] = template.Must(template.ParseFiles("templates/base.html", tmpl.file))
	}

	server := &Server{
		db:         db,
		store:      store,
		templates:  templates,
		summarizer: studyassist.NewSummarizer(apiKey),
		quizzer:    studyassist.NewQuizMaker(apiKey),
		questions:  5,
	}

	mux := http.NewServeMux()
	server.routes(mux)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8180"
	}

	log.Printf("Starting server on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, mux))
}
