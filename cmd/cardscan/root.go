package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/console"
	"github.com/joseph-ayodele/cardscan/internal/credential"
	"github.com/joseph-ayodele/cardscan/internal/journal"
	"github.com/joseph-ayodele/cardscan/internal/llm"
	"github.com/joseph-ayodele/cardscan/internal/llm/openai"
	"github.com/joseph-ayodele/cardscan/internal/ocr"
	"github.com/joseph-ayodele/cardscan/internal/pipeline"
)

const folderPrompt = "Enter the folder path containing business card images: "

var (
	cfgPath string
	debug   bool
	logJSON bool
)

var rootCmd = &cobra.Command{
	Use:           "cardscan",
	Short:         "Extract contacts from business card images",
	Long:          "cardscan runs OCR over a folder of business card photos, asks an OpenAI model for the contact details and writes them to CSV or XLSX.",
	SilenceUsage:  true,
	SilenceErrors: true,
	// `cardscan` with no subcommand behaves like `cardscan run`.
	RunE: runBatch,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to YAML config file (default: CARDSCAN_CONFIG env var)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON")
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err: err}
	})
	addBatchFlags(rootCmd)
}

// setupLogger writes structured logs to stderr so stdout stays for the console.
func setupLogger(w io.Writer, dbg, asJSON bool) *slog.Logger {
	level := slog.LevelInfo
	if dbg {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if asJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// loadConfig resolves the config path and parses it.
// Priority: --config > CARDSCAN_CONFIG env var > built-in defaults.
func loadConfig() (*common.Config, error) {
	path := cfgPath
	if path == "" {
		path = os.Getenv("CARDSCAN_CONFIG")
	}
	return common.LoadConfig(path)
}

// app holds what a command needs once config is loaded.
type app struct {
	cfg      *common.Config
	logger   *slog.Logger
	stdout   io.Writer
	prompter console.Prompter
}

func newApp(cmd *cobra.Command) (*app, error) {
	logger := setupLogger(cmd.ErrOrStderr(), debug, logJSON)
	slog.SetDefault(logger)

	cfg, err := loadConfig()
	if err != nil {
		logger.Error("config.load_failed", "error", err)
		return nil, err
	}
	return &app{
		cfg:      cfg,
		logger:   logger,
		stdout:   cmd.OutOrStdout(),
		prompter: console.NewPrompter(os.Stdin, cmd.OutOrStdout()),
	}, nil
}

// recordingPrompter notes whether the credential store had to ask for a key.
type recordingPrompter struct {
	console.Prompter
	asked bool
}

func (p *recordingPrompter) Secret(ctx context.Context, label string) (string, error) {
	p.asked = true
	return p.Prompter.Secret(ctx, label)
}

// resolveAPIKey prefers a configured key and falls back to the credential store.
func (a *app) resolveAPIKey(ctx context.Context) (string, error) {
	if k := strings.TrimSpace(a.cfg.LLM.APIKey); k != "" {
		a.logger.Debug("credential.from_config")
		return k, nil
	}
	store := credential.NewStore(a.cfg.Credential.KeyFile, a.logger, credential.WithConsole(a.stdout))
	rp := &recordingPrompter{Prompter: a.prompter}
	key, err := store.GetOrPrompt(ctx, rp)
	if err != nil {
		return "", common.NewAppError(common.CodeCredential, "resolve api key", err)
	}
	if rp.asked {
		fmt.Fprintln(a.stdout, "API key stored securely.")
	} else {
		fmt.Fprintln(a.stdout, "API key loaded successfully.")
	}
	return key, nil
}

// resolveDir returns the folder from flags, config, or an interactive prompt.
func (a *app) resolveDir(ctx context.Context, flagDir string) (string, error) {
	if flagDir != "" {
		return flagDir, nil
	}
	if a.cfg.Input.Dir != "" {
		return a.cfg.Input.Dir, nil
	}
	dir, err := a.prompter.Line(ctx, folderPrompt)
	if err != nil {
		return "", common.NewAppError(common.CodeInput, "read folder path", err)
	}
	return strings.TrimSpace(dir), nil
}

// buildRunner wires OCR, the OpenAI client and the journal into a pipeline runner.
// The returned close func releases the journal.
func (a *app) buildRunner(ctx context.Context, apiKey string, opts pipeline.Options) (*pipeline.Runner, func(), error) {
	extractor, err := ocr.NewExtractor(ocr.Config{
		Engine:        a.cfg.OCR.Engine,
		Tesseract:     a.cfg.OCR.Tesseract,
		Lang:          a.cfg.OCR.Lang,
		TessdataDir:   a.cfg.OCR.TessdataDir,
		HeicConverter: a.cfg.OCR.HeicConverter,
	}, a.logger)
	if err != nil {
		return nil, nil, common.NewAppError(common.CodeConfig, "build ocr extractor", err)
	}

	client := openai.NewClient(openai.Config{
		APIKey:    apiKey,
		BaseURL:   a.cfg.LLM.BaseURL,
		Model:     a.cfg.LLM.Model,
		MaxTokens: a.cfg.LLM.MaxTokens,
		Timeout:   a.cfg.LLM.Timeout,
	}, a.logger)
	var contacts llm.ContactExtractor
	if a.cfg.LLM.Strict {
		contacts = client
	}

	j, err := journal.Open(ctx, journal.Config{Driver: a.cfg.Journal.Driver, DSN: a.cfg.Journal.DSN}, a.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open journal: %w", err)
	}
	closeJournal := func() {
		if err := j.Close(); err != nil {
			a.logger.Warn("journal.close_failed", "error", err)
		}
	}

	proc := pipeline.NewProcessor(a.logger, a.stdout,
		pipeline.NewOCRStage(extractor, a.stdout, a.logger),
		pipeline.NewParseStage(client, contacts, a.logger),
		j,
	)
	return pipeline.NewRunner(proc, opts, a.stdout, a.logger), closeJournal, nil
}

// printSummary renders the stats box when stdout is a terminal.
func (a *app) printSummary(stats pipeline.Stats) {
	if f, ok := a.stdout.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		fmt.Fprintln(a.stdout, console.RenderSummary(stats))
	}
}
