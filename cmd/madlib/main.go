// Command madlib is the interactive agentic madlib generator: it asks for a
// topic, screens it, has the model draft a template and the word agents fill
// adjectives and verbs, collects nouns from the user, then submits the
// completed madlib to the storage daemon.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/qjs/madlibgen_gemma/client"
	"github.com/qjs/madlibgen_gemma/pipeline"
	"github.com/qjs/madlibgen_gemma/server/agents"
	"github.com/qjs/madlibgen_gemma/server/madlib"
	pdfgenerator "github.com/qjs/madlibgen_gemma/server/pdf_generator"
	"github.com/qjs/madlibgen_gemma/server/prompts"
	"github.com/qjs/madlibgen_gemma/server/store"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	errStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	storyStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 2).
			Width(72)
	faintStyle = lipgloss.NewStyle().Faint(true)
)

var rootCmd = &cobra.Command{
	Use:          "madlib [topic]",
	Short:        "Generate a madlib about a topic with a little help from some agents",
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	f := rootCmd.Flags()
	f.String("ollama-url", "http://localhost:11434", "base URL of Ollama API")
	f.String("model", "gemma3n:e4b", "model name to pass to Ollama")
	f.String("server-url", "", "madlib daemon URL for persistence (env MADLIB_URL)")
	f.String("api-key", "", "API key for the daemon (env MADLIB_API_KEY)")
	f.String("pdf", "", "also write the completed madlib to this PDF file")
	f.String("out-dir", "./output", "directory for local JSON fallback saves")
	f.Bool("offline", false, "use canned seed templates instead of Ollama")
	f.String("seed-csv", "./data/seed_templates.csv", "seed template CSV for offline mode")
	f.String("prompt-profiles", "", "optional YAML file overriding agent instructions")
	f.Int("max-attempts", agents.DefaultMaxAttempts, "template generation attempts before giving up")

	viper.SetEnvPrefix("MADLIB")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if err := viper.BindPFlags(f); err != nil {
		panic(err)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	in := bufio.NewScanner(os.Stdin)
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, titleStyle.Render("Welcome to the AI Madlib Generator!"))

	topic := ""
	if len(args) == 1 {
		topic = strings.TrimSpace(args[0])
	}
	for topic == "" {
		fmt.Fprint(out, "What topic would you like for your madlib? ")
		if !in.Scan() {
			return errors.New("no topic provided")
		}
		topic = strings.TrimSpace(in.Text())
	}

	p, pdfGen, err := buildPipeline(in, out)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, faintStyle.Render(fmt.Sprintf("Creating a madlib about %q ...", topic)))

	done, err := p.Run(ctx, topic)
	switch {
	case errors.Is(err, agents.ErrTopicRejected):
		fmt.Fprintln(out, errStyle.Render(
			fmt.Sprintf("Sorry, %q is not appropriate for a family-friendly madlib.", topic)))
		fmt.Fprintln(out, "Please try again with a different topic!")
		return err
	case errors.Is(err, agents.ErrGenerationFailed):
		fmt.Fprintln(out, errStyle.Render("The model could not produce a usable template."))
		return err
	case err != nil:
		return err
	}

	fmt.Fprintln(out, titleStyle.Render("\nYour Completed Madlib:"))
	fmt.Fprintln(out, storyStyle.Render(done.FilledText))
	fmt.Fprintln(out, faintStyle.Render("saved as "+done.ID))

	if path := viper.GetString("pdf"); path != "" {
		if err := pdfGen.GeneratePDF(ctx, done, path); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
		fmt.Fprintln(out, faintStyle.Render("pdf written to "+path))
	}
	return nil
}

// buildPipeline wires the agents (or offline seeds), the noun collector, and
// the persister according to the flags.
func buildPipeline(in *bufio.Scanner, out io.Writer) (*pipeline.Pipeline, *pdfgenerator.PDFGenerator, error) {
	builder := prompts.Builder{Style: prompts.StyleStoryteller, Model: viper.GetString("model")}
	if path := viper.GetString("prompt-profiles"); path != "" {
		profiles, err := prompts.LoadProfiles(path)
		if err != nil {
			return nil, nil, fmt.Errorf("load prompt profiles: %w", err)
		}
		builder.Profiles = profiles
	}

	p := &pipeline.Pipeline{}

	if viper.GetBool("offline") {
		repo, err := store.NewCSVRepo(viper.GetString("seed-csv"))
		if err != nil {
			return nil, nil, fmt.Errorf("load seed templates: %w", err)
		}
		p.Moderator = acceptAll{}
		p.Templates = repo
		p.Fillers = []pipeline.WordFiller{
			canned{kind: madlib.KindAdjective, words: offlineAdjectives},
			canned{kind: madlib.KindVerb, words: offlineVerbs},
		}
		p.Nouns = &stdinNouns{in: in, out: out} // no validator offline
	} else {
		runner, err := agents.NewOllamaRunner(viper.GetString("ollama-url"), viper.GetString("model"))
		if err != nil {
			return nil, nil, err
		}
		p.Moderator = agents.NewModerator(runner, builder)
		p.Templates = agents.NewTemplateAgent(runner, builder, madlib.DefaultLimits, viper.GetInt("max-attempts"))
		p.Fillers = []pipeline.WordFiller{
			agents.NewWordAgent(runner, builder, madlib.KindAdjective),
			agents.NewWordAgent(runner, builder, madlib.KindVerb),
		}
		p.Nouns = &stdinNouns{in: in, out: out, validator: agents.NewNounValidator(runner, builder)}
	}

	rest := client.New(client.Config{
		URL:    viper.GetString("server-url"),
		APIKey: viper.GetString("api-key"),
	})
	if rest.Available() {
		p.Persister = rest
	} else {
		p.Persister = &localPersister{dir: viper.GetString("out-dir")}
		fmt.Fprintln(out, faintStyle.Render("no daemon configured, saving locally"))
	}

	return p, pdfgenerator.NewPDFGenerator(pdfgenerator.DefaultConfig), nil
}

type acceptAll struct{}

func (acceptAll) Check(context.Context, string) error { return nil }

var offlineAdjectives = []string{"sparkly", "gigantic", "wobbly", "ancient", "fuzzy", "mysterious", "squeaky", "brave"}
var offlineVerbs = []string{"juggle", "gallop", "whisper", "bounce", "paint", "tumble", "snore", "zoom"}

// canned hands out words from a fixed list in offline mode.
type canned struct {
	kind  madlib.SlotKind
	words []string
}

func (c canned) Kind() madlib.SlotKind { return c.kind }

func (c canned) Fill(_ context.Context, _ string, n int) ([]string, error) {
	if n > len(c.words) {
		return nil, fmt.Errorf("only %d canned %ss available, want %d", len(c.words), c.kind, n)
	}
	return c.words[:n], nil
}
