package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qjs/madlibgen_gemma/pipeline"
	"github.com/qjs/madlibgen_gemma/server/agents"
	"github.com/qjs/madlibgen_gemma/server/madlib"
	pdfgenerator "github.com/qjs/madlibgen_gemma/server/pdf_generator"
	"github.com/qjs/madlibgen_gemma/server/prompts"
	"github.com/qjs/madlibgen_gemma/server/store"
	"github.com/qjs/madlibgen_gemma/server/webapp"
)

var (
	dbPath      = flag.String("db", "./madlibs.db", "path of the SQLite database")
	httpPort    = flag.String("http-port", ":8081", "port for the madlib REST API")
	ollama      = flag.String("ollama_url", "http://localhost:11434", "base URL of Ollama API")
	model       = flag.String("model", "gemma3n:e4b", "model name to pass to Ollama")
	apiKey      = flag.String("api-key", os.Getenv("MADLIB_API_KEY"), "API key clients must send (empty disables auth)")
	seedCSV     = flag.String("seed_csv", "./data/seed_templates.csv", "seed template CSV for offline mode")
	offline     = flag.Bool("offline", false, "serve canned templates instead of calling Ollama")
	profiles    = flag.String("prompt_profiles", "", "optional YAML file overriding agent instructions")
	maxAttempts = flag.Int("max_attempts", agents.DefaultMaxAttempts, "template generation attempts before giving up")
)

func main() {
	flag.Parse()

	//------------------------------------------------------------
	// Graceful-shutdown context
	//------------------------------------------------------------
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	//------------------------------------------------------------
	// Storage
	//------------------------------------------------------------
	db, err := store.Open(*dbPath)
	if err != nil {
		log.Fatalf("open store %s: %v", *dbPath, err)
	}
	defer db.Close()

	//------------------------------------------------------------
	// Prompts + agents
	//------------------------------------------------------------
	builder := prompts.Builder{Style: prompts.StyleStoryteller, Model: *model}
	if *profiles != "" {
		p, err := prompts.LoadProfiles(*profiles)
		if err != nil {
			log.Fatalf("load prompt profiles: %v", err)
		}
		builder.Profiles = p
	}

	var (
		moderator webapp.Moderator
		generator pipeline.TemplateGenerator
	)
	if *offline {
		repo, err := store.NewCSVRepo(*seedCSV)
		if err != nil {
			log.Fatalf("load seed templates %s: %v", *seedCSV, err)
		}
		moderator = acceptAll{}
		generator = repo
		log.Printf("offline mode: serving seed templates from %s", *seedCSV)
	} else {
		runner, err := agents.NewOllamaRunner(*ollama, *model)
		if err != nil {
			log.Fatalf("ollama client: %v", err)
		}
		moderator = agents.NewModerator(runner, builder)
		generator = agents.NewTemplateAgent(runner, builder, madlib.DefaultLimits, *maxAttempts)
	}

	//------------------------------------------------------------
	// Web API
	//------------------------------------------------------------
	pdf := pdfgenerator.NewPDFGenerator(pdfgenerator.DefaultConfig)
	app := webapp.NewWebApp(db, moderator, generator, pdf, *apiKey)
	app.Run(*httpPort)

	<-ctx.Done()
	log.Println("shutting down ...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := app.Shutdown(shutdownCtx); err != nil {
		log.Printf("web app shutdown error: %v", err)
	}
	log.Println("server shut down.")
}

// acceptAll stands in for the moderator in offline mode; seed templates are
// curated by hand.
type acceptAll struct{}

func (acceptAll) Check(context.Context, string) error { return nil }
