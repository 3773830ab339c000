package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Corphon/ScriptBreakdown/internal/app"
	"github.com/Corphon/ScriptBreakdown/internal/config"
	apperrors "github.com/Corphon/ScriptBreakdown/internal/errors"
	"github.com/Corphon/ScriptBreakdown/internal/services"
	"github.com/Corphon/ScriptBreakdown/internal/storage"
	"github.com/Corphon/ScriptBreakdown/internal/utils"
)

type generateOptions struct {
	ScriptFile string
	OutputDir  string
	Provider   string
	Model      string
	EnvFile    string
	Stdout     bool
	Verbose    bool
}

// generatorFactory builds the generator for one run and a cleanup func
type generatorFactory func(opts *generateOptions) (services.Generator, func(), error)

func newGenerateCommand(factory generatorFactory) *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a breakdown for one script",
		Long: `Reads a script from --script-file ('-' for standard input), sends it to the
configured model and writes scene_breakdown.json into --output-dir, or prints
it with --stdout. The API key comes from the environment or a .env file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts, factory)
		},
	}

	cmd.Flags().StringVarP(&opts.ScriptFile, "script-file", "f", "-", "script to read ('-' reads standard input)")
	cmd.Flags().StringVarP(&opts.OutputDir, "output-dir", "o", ".", "directory that receives "+services.ExportFileName)
	cmd.Flags().StringVar(&opts.Provider, "provider", "", "LLM provider (google or openai); overrides LLM_PROVIDER")
	cmd.Flags().StringVarP(&opts.Model, "model", "m", "", "model name; overrides LLM_MODEL")
	cmd.Flags().StringVar(&opts.EnvFile, "env-file", "", "env file to load instead of .env")
	cmd.Flags().BoolVar(&opts.Stdout, "stdout", false, "print the breakdown instead of writing a file")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log progress to standard error")
	return cmd
}

func runGenerate(cmd *cobra.Command, opts *generateOptions, factory generatorFactory) error {
	script, err := readScript(cmd.InOrStdin(), opts.ScriptFile)
	if err != nil {
		return err
	}
	if strings.TrimSpace(script) == "" {
		return apperrors.NewValidationError(apperrors.EmptyScriptMessage, nil)
	}

	generator, cleanup, err := factory(opts)
	if err != nil {
		return err
	}
	defer cleanup()

	breakdown, err := generator.Generate(cmd.Context(), script)
	if err != nil {
		return err
	}

	if opts.Stdout {
		out, err := services.RenderBreakdown(breakdown)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return err
	}

	store, err := storage.NewFileStorage(opts.OutputDir)
	if err != nil {
		return err
	}
	result, err := services.NewExportService(store).SaveToDir(breakdown, "")
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d scenes, %d bytes)\n", result.FilePath, result.SceneCount, result.FileSize)
	return nil
}

func readScript(stdin io.Reader, path string) (string, error) {
	if path == "" || path == "-" {
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read standard input: %w", err)
		}
		return string(raw), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", apperrors.NewValidationError(fmt.Sprintf("cannot read script file %q", path), err)
	}
	return string(raw), nil
}

// defaultGenerator loads the configuration, applies flag overrides and
// builds the same generation service the server uses.
func defaultGenerator(opts *generateOptions) (services.Generator, func(), error) {
	var envFiles []string
	if opts.EnvFile != "" {
		envFiles = append(envFiles, opts.EnvFile)
	}

	cfg, err := config.Read(envFiles...)
	if err != nil {
		return nil, nil, err
	}
	if opts.Provider != "" {
		cfg.LLMProvider = strings.ToLower(opts.Provider)
	}
	if opts.Model != "" {
		cfg.LLMModel = opts.Model
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logCfg := cfg.LogConfig()
	logCfg.Encoding = "console"
	if cfg.LogFile == "" {
		logCfg.OutputPath = "stderr"
	}
	if !opts.Verbose && !cfg.DebugMode {
		logCfg.Level = "warn"
	}
	logger, err := utils.NewLogger(logCfg)
	if err != nil {
		return nil, nil, err
	}

	generation, err := app.NewGeneration(cfg, logger, nil)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, err
	}
	logger.Info("generating breakdown", zap.String("provider", cfg.LLMProvider), zap.String("model", generation.Status().Model))

	return generation, func() { _ = logger.Sync() }, nil
}
