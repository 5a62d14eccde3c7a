package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"leolani/internal/analyze"
	"leolani/internal/brain"
	"leolani/internal/config"
	"leolani/internal/history"
	"leolani/internal/lexicon"
	"leolani/internal/logging"
	"leolani/internal/nlp"
	"leolani/internal/pipeline"
	"leolani/internal/reply"
	"leolani/internal/roster"
	"leolani/internal/storage"
)

const version = "0.3.0"

var rootCmd = &cobra.Command{
	Use:   "leolani",
	Short: "Leolani - a conversational brain for a social robot",
	Long: `Leolani listens to what people tell it, stores the facts in an RDF
triple store with full provenance, and answers questions about what it
has been told.`,
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(tellCmd)
	rootCmd.AddCommand(meetCmd)
	rootCmd.AddCommand(recentCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(doctorCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("leolani %s\n", version)
	},
}

// app bundles everything a command needs.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       *storage.DB
	roster   *roster.Service
	history  *history.Service
	pipeline *pipeline.Pipeline
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.NewLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	lex := lexicon.New()
	client := brain.NewClient(cfg.StoreURL, time.Duration(cfg.StoreTimeoutSeconds)*time.Second, logger)
	store := brain.New(client, logger)
	extractor := analyze.NewExtractor(lex, cfg.RobotName)
	phraser := reply.New(cfg.RobotName, rand.New(rand.NewSource(time.Now().UnixNano())))
	tagger := nlp.NewLexiconTagger(lex)

	return &app{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		roster:   roster.NewService(db),
		history:  history.NewService(db),
		pipeline: pipeline.New(lex, tagger, extractor, store, phraser, logger),
	}, nil
}

func (a *app) close() {
	a.logger.Sync() //nolint:errcheck
	a.db.Close()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
