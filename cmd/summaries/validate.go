package main

import (
	"fmt"

	"github.com/jonathan/essay-site/internal/schemas"
	"github.com/jonathan/essay-site/internal/site"
	"github.com/spf13/cobra"
)

func newValidateCmd(opts *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the summary cache against its JSON schema",
		Long:  "Validates that the cache file is a JSON object mapping slugs to summary strings.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if file == "" {
				file = site.DefaultLayout(opts.siteRoot).OutputPath
			}

			if err := schemas.ValidateSummariesFile(file); err != nil {
				return fmt.Errorf("validation failed for %s: %w", file, err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Validation passed: %s\n", file)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Cache file to validate (default <site>/_data/summaries.json)")
	return cmd
}
