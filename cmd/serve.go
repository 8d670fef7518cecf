package cmd

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/abhisek/mltutor/internal/evaluate"
	"github.com/abhisek/mltutor/internal/explain"
	"github.com/abhisek/mltutor/internal/knowledge"
	"github.com/abhisek/mltutor/internal/llm"
	"github.com/abhisek/mltutor/internal/retrieval"
	"github.com/abhisek/mltutor/internal/server"
	"github.com/abhisek/mltutor/internal/store"
	"github.com/abhisek/mltutor/internal/tutor"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the tutoring HTTP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "Listen address")
	serveCmd.Flags().String("dataset", "data/expert_knowledge.json", "Path to the knowledge dataset")
	serveCmd.Flags().String("provider", "", "LLM provider (gemini, openai, anthropic, mock); empty auto-discovers")
	serveCmd.Flags().Bool("llm-eval", false, "Grade answers with the LLM instead of keyword matching alone")
	serveCmd.Flags().Duration("oracle-timeout", 30*time.Second, "Timeout for a single explanation call")

	viper.SetEnvPrefix("MLTUTOR")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	for _, flag := range []string{"addr", "dataset", "provider", "llm-eval", "oracle-timeout"} {
		_ = viper.BindPFlag(flag, serveCmd.Flags().Lookup(flag))
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// A broken or empty dataset is a startup error, never a per-turn one.
	base, err := knowledge.Load(viper.GetString("dataset"))
	if err != nil {
		return fmt.Errorf("load knowledge dataset: %w", err)
	}
	logger.Info("knowledge dataset loaded", "chunks", base.Len())

	cfg, err := providerConfig()
	if err != nil {
		return err
	}

	eventStore, err := store.Open(resolveDBPath(cmd))
	if err != nil {
		return fmt.Errorf("open event store: %w", err)
	}
	defer eventStore.Close()

	provider, err := llm.NewProvider(cmd.Context(), cfg, eventStore)
	if err != nil {
		return fmt.Errorf("create LLM provider: %w", err)
	}
	logger.Info("LLM provider ready", "provider", cfg.Provider, "model", provider.ModelID())

	oracle := explain.NewService(provider, viper.GetDuration("oracle-timeout"))

	var scorer evaluate.Scorer = evaluate.RubricScorer{}
	if viper.GetBool("llm-eval") {
		scorer = evaluate.FallbackScorer{
			Primary:   evaluate.NewLLMScorer(provider),
			Secondary: evaluate.RubricScorer{},
		}
	}

	registry := tutor.NewRegistry(tutor.Config{
		Base:   base,
		Scorer: scorer,
		Oracle: oracle,
		Events: eventStore,
		Logger: logger,
	})

	srv := server.New(registry, buildRetriever(cmd, base, cfg, logger), logger)

	addr := viper.GetString("addr")
	logger.Info("listening", "addr", addr)
	return http.ListenAndServe(addr, srv.Router())
}

// providerConfig resolves LLM credentials. Missing generation credentials
// are fatal at startup; the mock provider is the explicit opt-out.
func providerConfig() (llm.Config, error) {
	if p := viper.GetString("provider"); p != "" {
		cfg := llm.ConfigFromEnv()
		cfg.Provider = p
		if err := cfg.Validate(); err != nil {
			return llm.Config{}, err
		}
		return cfg, nil
	}

	cfg, ok := llm.DiscoverConfig()
	if !ok {
		return llm.Config{}, fmt.Errorf(
			"no LLM credentials found: set GEMINI_API_KEY, OPENAI_API_KEY, or ANTHROPIC_API_KEY (or --provider mock)")
	}
	return cfg, nil
}

// buildRetriever wires the /ask capability: a cosine index when OpenAI
// credentials exist, keyword overlap otherwise.
func buildRetriever(cmd *cobra.Command, base *knowledge.Base, cfg llm.Config, logger *slog.Logger) retrieval.Retriever {
	apiKey := cfg.OpenAI.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		logger.Info("no embedding credentials, using keyword retrieval")
		return retrieval.NewKeywordRetriever(base)
	}

	embedder, err := retrieval.NewOpenAIEmbedder(apiKey, cfg.OpenAI.BaseURL, "")
	if err != nil {
		logger.Warn("embedder unavailable, using keyword retrieval", "error", err)
		return retrieval.NewKeywordRetriever(base)
	}

	index, err := retrieval.BuildIndex(cmd.Context(), embedder, base)
	if err != nil {
		logger.Warn("failed to build retrieval index, using keyword retrieval", "error", err)
		return retrieval.NewKeywordRetriever(base)
	}
	logger.Info("retrieval index built", "chunks", base.Len())
	return index
}
