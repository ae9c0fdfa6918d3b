package main

import (
	"fmt"
	"os"

	"signal-classifier/config"
	"signal-classifier/database"
	"signal-classifier/llm"
	"signal-classifier/pipeline"
	"signal-classifier/providers"

	"github.com/apex/log"
	jsonhandler "github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/text"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "signal-classifier",
	Short: "Classify radio signal observations with a language model",
	Long: `Classifies a radio observation from four metadata values (peak frequency,
drift rate, signal-to-noise ratio, pulse width) into one of seven signal classes
by asking a hosted language model.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd, classifyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads configuration and sets up logging for a command.
func loadConfig() (*config.Config, error) {
	// A .env file in the working directory is optional.
	envErr := godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := setupLogging(cfg); err != nil {
		return nil, err
	}
	if envErr != nil {
		log.Debug(".env file not found, using system environment variables")
	}
	return cfg, nil
}

func setupLogging(cfg *config.Config) error {
	switch cfg.LogFormat {
	case "json":
		log.SetHandler(jsonhandler.New(os.Stderr))
	default:
		log.SetHandler(text.New(os.Stderr))
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	if verbose {
		level = log.DebugLevel
	}
	log.SetLevel(level)
	return nil
}

// newClassifier builds the pipeline and, when enabled, the history store.
// The caller closes the store.
func newClassifier(cfg *config.Config) (*pipeline.Classifier, *database.Store, error) {
	factory, err := providers.NewFactory(cfg)
	if err != nil {
		return nil, nil, err
	}

	var store *database.Store
	var opts []pipeline.Option
	if cfg.HistoryEnabled() {
		store, err = database.Open(cfg.HistoryDB)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, pipeline.WithRecorder(store))
	}

	classifier := pipeline.New(pipeline.Options{
		APIKey: cfg.APIKey,
		Retry: llm.Policy{
			Timeout:    cfg.RequestTimeout,
			MaxRetries: cfg.MaxRetries,
			Backoff:    cfg.RetryBackoff,
		},
		PromptTimestamp: cfg.PromptTimestamp,
	}, factory, opts...)

	return classifier, store, nil
}
