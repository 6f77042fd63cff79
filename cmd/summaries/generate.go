package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/jonathan/essay-site/internal/observability"
	"github.com/jonathan/essay-site/internal/schemas"
	"github.com/spf13/cobra"
)

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Summarize every article that has no cached summary",
		Long: `Loads _data/summaries.json, requests a summary for each article in opeds/ and
investigate/ that is missing from it, and writes the merged result back.

When a request fails the article gets its first two sentences as a summary instead;
the run still succeeds. Credentials are read from ANTHROPIC_API_KEY or GEMINI_API_KEY
(a .env file in the working directory is loaded automatically).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, opts)
		},
	}
	addProviderFlags(cmd)
	return cmd
}

func runGenerate(cmd *cobra.Command, opts *rootOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sess, err := newSession(ctx, cmd, opts)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	b := sess.builder()
	if sess.cfg.Verbose {
		sess.printer.PrintRunInfo(observability.RunInfo{
			RunID:    b.RunID(),
			Provider: sess.cfg.Provider,
			Model:    sess.summarizer.Model(),
			Dirs:     sess.layout.Dirs,
			Output:   sess.layout.OutputPath,
		})
	}

	report, err := b.Run(ctx)
	if err != nil {
		return fmt.Errorf("summary run failed: %w", err)
	}

	warnIfInvalid(cmd, report.OutputPath)
	return nil
}

// warnIfInvalid checks the written cache against its schema without failing the run.
func warnIfInvalid(cmd *cobra.Command, path string) {
	err := schemas.ValidateSummariesFile(path)
	if err == nil {
		return
	}

	var validationErr *schemas.ValidationError
	if errors.As(err, &validationErr) {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s does not match the summaries schema: %v\n", path, err)
		return
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not validate %s: %v\n", path, err)
}
