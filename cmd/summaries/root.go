package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jonathan/essay-site/internal/builder"
	"github.com/jonathan/essay-site/internal/config"
	"github.com/jonathan/essay-site/internal/content"
	"github.com/jonathan/essay-site/internal/llm"
	"github.com/jonathan/essay-site/internal/observability"
	"github.com/jonathan/essay-site/internal/site"
	"github.com/jonathan/essay-site/internal/summarize"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	siteRoot   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "summaries",
		Short: "Generate and maintain article summaries for the essay site",
		Long: `summaries scans the site's content directories (opeds, investigate) and asks a
text-generation service for a one or two sentence teaser for every article that does not
have one yet. All summaries are kept in _data/summaries.json; existing entries are never
regenerated.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config file (default ./summaries.{yaml,json,toml} if present)")
	cmd.PersistentFlags().StringVar(&opts.siteRoot, "site", ".", "Site root containing the content directories")
	cmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Print run details")

	generate := newGenerateCmd(opts)
	cmd.AddCommand(generate, newStatusCmd(opts), newValidateCmd(opts), newWatchCmd(opts))

	// Running the bare command performs a generate pass.
	cmd.RunE = generate.RunE
	addProviderFlags(cmd)

	return cmd
}

// addProviderFlags registers the flags that shape summary requests.
func addProviderFlags(cmd *cobra.Command) {
	cmd.Flags().String("provider", "", "LLM provider: anthropic or gemini")
	cmd.Flags().String("model", "", "Model identifier (overrides the provider default)")
	cmd.Flags().Int("max-tokens", 0, "Maximum output tokens per summary")
	cmd.Flags().Int("retries", 0, "Retries for rate-limited or failed requests (Anthropic)")
	cmd.Flags().Int("timeout", 0, "Per-request timeout in seconds (0 disables)")
	cmd.Flags().String("base-url", "", "Override the provider API endpoint")
	cmd.Flags().Bool("plain-text", false, "Strip Markdown syntax from article bodies before summarizing")
}

// loadConfig resolves configuration and installs the process logger.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath, cmd.Flags())
	if err != nil {
		return nil, err
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
	return cfg, nil
}

// session bundles what one or more generate passes need.
type session struct {
	cfg        *config.Config
	layout     site.Layout
	client     llm.Client
	summarizer *summarize.LLMSummarizer
	printer    *observability.Printer
}

func newSession(ctx context.Context, cmd *cobra.Command, opts *rootOptions) (*session, error) {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return nil, err
	}

	llmCfg := cfg.LLMConfig()
	client := llm.NewClient(ctx, llmCfg, llm.APIKeyFromEnv(llmCfg.Provider))

	return &session{
		cfg:        cfg,
		layout:     site.DefaultLayout(opts.siteRoot),
		client:     client,
		summarizer: summarize.NewLLMSummarizer(client, cfg.Timeout()),
		printer:    observability.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr()),
	}, nil
}

func (s *session) builder() *builder.Builder {
	return builder.New(s.summarizer, builder.Options{
		Layout:  s.layout,
		Read:    content.ReadOptions{PlainText: s.cfg.PlainText},
		Printer: s.printer,
	})
}

func (s *session) Close() error {
	return s.client.Close()
}
