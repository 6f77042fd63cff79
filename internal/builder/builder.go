// Package builder runs the summary cache pass over the site's content directories.
package builder

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jonathan/essay-site/internal/cache"
	"github.com/jonathan/essay-site/internal/content"
	"github.com/jonathan/essay-site/internal/observability"
	"github.com/jonathan/essay-site/internal/site"
	"github.com/jonathan/essay-site/internal/summarize"
)

// Options configures a Builder.
type Options struct {
	Layout  site.Layout
	Read    content.ReadOptions
	Printer *observability.Printer
	// RunID tags log records; a random one is generated when empty.
	RunID string
}

// Report is the outcome of a run. Fallbacks is the part of New that was extracted locally.
type Report struct {
	RunID      string
	New        int
	Skipped    int
	Fallbacks  int
	OutputPath string
}

// Builder fills the summary cache for articles that do not have a summary yet.
type Builder struct {
	summarizer summarize.Summarizer
	opts       Options
	log        *slog.Logger
}

// New creates a Builder.
func New(s summarize.Summarizer, opts Options) *Builder {
	if opts.Printer == nil {
		opts.Printer = observability.NewPrinter(io.Discard, nil)
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	return &Builder{
		summarizer: s,
		opts:       opts,
		log:        slog.With("run_id", opts.RunID),
	}
}

// RunID identifies this builder's runs in logs.
func (b *Builder) RunID() string {
	return b.opts.RunID
}

// Run processes every configured directory in order, one article at a time, and writes
// the cache once at the end. Articles with a non-empty cached summary are never re-requested.
// Only a failed article read, a failed write or a cancelled context abort the run; in that
// case the existing cache file is left untouched.
func (b *Builder) Run(ctx context.Context) (*Report, error) {
	layout := b.opts.Layout
	summaries := cache.Load(layout.OutputPath)
	report := &Report{RunID: b.opts.RunID, OutputPath: layout.OutputPath}

	b.log.Info("Summary run starting", "cached", summaries.Len(), "dirs", layout.Dirs)

	for _, dir := range layout.Dirs {
		entries, ok := content.ScanDir(layout, dir)
		if !ok {
			continue
		}

		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			if summaries.Has(entry.Slug) {
				b.opts.Printer.Skipped(entry.Label())
				report.Skipped++
				continue
			}

			article, err := content.Read(entry, b.opts.Read)
			if err != nil {
				return nil, err
			}

			result := summarize.Run(ctx, b.summarizer, article.Body, article.Title)
			if result.Fallback() {
				b.opts.Printer.Failed(entry.Label(), result.Err)
				b.log.Warn("Summary request failed, using opening sentences", "article", entry.Label(), "error", result.Err)
				report.Fallbacks++
			} else {
				b.opts.Printer.Generated(entry.Label(), result.Summary)
			}

			summaries.Set(entry.Slug, result.Summary)
			report.New++
		}
	}

	b.opts.Printer.Tally(report.New, report.Skipped)

	if err := cache.Save(layout.OutputPath, summaries); err != nil {
		return nil, err
	}
	b.opts.Printer.Wrote(layout.OutputPath)

	b.log.Info("Summary run complete", "new", report.New, "skipped", report.Skipped, "fallbacks", report.Fallbacks)
	return report, nil
}

// ArticleStatus is one qualifying article and whether it already has a summary.
type ArticleStatus struct {
	Entry  content.Entry
	Cached bool
}

// Status lists every qualifying article without requesting or writing anything.
func (b *Builder) Status() []ArticleStatus {
	layout := b.opts.Layout
	summaries := cache.Load(layout.OutputPath)

	var out []ArticleStatus
	for _, dir := range layout.Dirs {
		entries, ok := content.ScanDir(layout, dir)
		if !ok {
			continue
		}
		for _, entry := range entries {
			out = append(out, ArticleStatus{Entry: entry, Cached: summaries.Has(entry.Slug)})
		}
	}
	return out
}
