package commands

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/biodoia/intellidoc/internal/orchestrator"
	"github.com/biodoia/intellidoc/internal/parser"
	"github.com/biodoia/intellidoc/internal/providers/factory"
	"github.com/biodoia/intellidoc/internal/stats"
	"github.com/biodoia/intellidoc/pkg/config"
	"github.com/biodoia/intellidoc/pkg/resilience"
)

var (
	languageFlag string
	contextFlag  string
	docTypeFlag  string
	outputFlag   string
)

var generateCmd = &cobra.Command{
	Use:   "generate <file>",
	Short: "Generate documentation for a source file",
	Args:  cobra.ExactArgs(1),
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&languageFlag, "language", "l", "", "source language (detected from the extension when omitted)")
	generateCmd.Flags().StringVar(&contextFlag, "context", "", "extra context for the documentation")
	generateCmd.Flags().StringVar(&docTypeFlag, "doc-type", "general", "documentation type (general|api|tutorial)")
	generateCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "write the documentation to a file instead of stdout")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	path := args[0]

	code, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	language := languageFlag
	if language == "" {
		lang, ok := parser.DetectLanguage(path)
		if !ok {
			return fmt.Errorf("cannot detect language of %s, pass --language", path)
		}
		language = string(lang)
	}

	registry, err := factory.BuildRegistry(cfg)
	if err != nil {
		return err
	}

	collector := stats.NewCollector(prometheus.DefaultRegisterer)
	strategy, err := orchestrator.ParseStrategy(cfg.Strategy)
	if err != nil {
		return err
	}

	opts := []orchestrator.Option{
		orchestrator.WithTaskTimeout(cfg.TaskTimeout),
		orchestrator.WithRetryConfig(retryConfig(cfg.Retry)),
		orchestrator.WithCollector(collector),
	}
	if cfg.PrimaryProvider != "" {
		opts = append(opts, orchestrator.WithPrimaryProvider(cfg.PrimaryProvider))
	}

	orch, err := orchestrator.New(registry, strategy, opts...)
	if err != nil {
		return err
	}

	task := &orchestrator.DocumentationTask{
		Code:     string(code),
		Language: language,
		Context:  contextFlag,
		DocType:  docTypeFlag,
	}

	result, err := orch.GenerateDocumentation(cmd.Context(), task)
	if err != nil {
		return err
	}

	log.Info().
		Float64("confidence", result.Confidence).
		Int("providers", len(result.Contributing)).
		Msg("Documentation generated")

	if outputFlag != "" {
		if err := os.WriteFile(outputFlag, []byte(result.Documentation+"\n"), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", outputFlag, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (confidence %.2f)\n", outputFlag, result.Confidence)
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.Documentation)
	fmt.Fprintf(cmd.ErrOrStderr(), "\nconfidence: %.2f  strategy: %s  tokens: %d\n",
		result.Confidence, result.Strategy, result.TotalTokens)
	return nil
}

// retryConfig maps the configuration file's retry section onto the
// resilience layer.
func retryConfig(rc config.RetryConfig) resilience.Config {
	cfg := resilience.DefaultConfig()
	if rc.MaxAttempts > 0 {
		cfg.MaxAttempts = rc.MaxAttempts
	}
	if rc.BaseDelay > 0 {
		cfg.BaseDelay = rc.BaseDelay
	}
	if rc.MaxDelay > 0 {
		cfg.MaxDelay = rc.MaxDelay
	}
	if rc.JitterFraction > 0 {
		cfg.JitterFraction = rc.JitterFraction
	}
	return cfg
}
