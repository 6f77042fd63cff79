package main

import (
	"github.com/jonathan/essay-site/internal/builder"
	"github.com/jonathan/essay-site/internal/observability"
	"github.com/jonathan/essay-site/internal/site"
	"github.com/spf13/cobra"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List articles and whether they already have a summary",
		Long:  "Lists every article a generate pass would consider, marking it cached or pending. Makes no requests and writes nothing.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := loadConfig(cmd, opts); err != nil {
				return err
			}

			b := builder.New(nil, builder.Options{Layout: site.DefaultLayout(opts.siteRoot)})
			printer := observability.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr())

			var pending, cached int
			for _, st := range b.Status() {
				printer.Status(st.Entry.Label(), st.Cached)
				if st.Cached {
					cached++
				} else {
					pending++
				}
			}
			printer.StatusTally(pending, cached)
			return nil
		},
	}
}
