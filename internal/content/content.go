// Package content reads article files from the site's content directories.
package content

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/jonathan/essay-site/internal/site"
)

// Entry is a qualifying article file found while scanning a directory.
type Entry struct {
	Dir      string // content directory name, e.g. "opeds"
	FileName string // e.g. "a.md"
	Path     string
	Slug     string
}

// Label is the "dir/file" form used in progress output.
func (e Entry) Label() string {
	return e.Dir + "/" + e.FileName
}

// Article is a parsed content item.
type Article struct {
	Entry
	Title       string
	Body        string // normalized body text, front matter stripped
	FrontMatter map[string]interface{}
}

// ReadOptions controls how an article body is turned into text.
type ReadOptions struct {
	// PlainText renders Markdown and keeps only the visible text.
	PlainText bool
}

// ScanDir lists the qualifying files of one content directory in listing order.
// ok is false when the directory is missing or unreadable; that is not an error.
func ScanDir(layout site.Layout, dir string) (entries []Entry, ok bool) {
	dirPath := layout.DirPath(dir)
	files, err := os.ReadDir(dirPath)
	if err != nil {
		slog.Debug("Content directory skipped", "dir", dirPath, "error", err)
		return nil, false
	}

	for _, f := range files {
		name := f.Name()
		if f.IsDir() || !strings.HasSuffix(name, layout.Ext) || name == layout.IndexFile {
			continue
		}
		entries = append(entries, Entry{
			Dir:      dir,
			FileName: name,
			Path:     filepath.Join(dirPath, name),
			Slug:     Slug(name, layout.Ext),
		})
	}
	return entries, true
}

// Slug derives the cache key from a file name.
func Slug(fileName, ext string) string {
	return strings.TrimSuffix(filepath.Base(fileName), ext)
}

// Read loads and parses an article.
func Read(entry Entry, opts ReadOptions) (*Article, error) {
	raw, err := os.ReadFile(entry.Path)
	if err != nil {
		return nil, &ReadError{Path: entry.Path, Cause: err}
	}
	return Parse(entry, raw, opts)
}

// Parse splits front matter from body and normalizes the body text.
func Parse(entry Entry, raw []byte, opts ReadOptions) (*Article, error) {
	var fm map[string]interface{}
	body, err := frontmatter.Parse(bytes.NewReader(raw), &fm)
	if err != nil {
		return nil, &ReadError{Path: entry.Path, Cause: fmt.Errorf("parse front matter: %w", err)}
	}
	if fm == nil {
		fm = make(map[string]interface{})
	}

	text := string(body)
	if opts.PlainText {
		text, err = PlainText(body)
		if err != nil {
			return nil, &ReadError{Path: entry.Path, Cause: fmt.Errorf("render markdown: %w", err)}
		}
	}

	return &Article{
		Entry:       entry,
		Title:       titleOf(fm, entry.Slug),
		Body:        Normalize(text),
		FrontMatter: fm,
	}, nil
}

// Normalize collapses every whitespace run, newlines included, to a single space.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// titleOf returns the front matter title, or slug when the title is absent, blank,
// false or zero. Non-string titles such as `title: 2024` are formatted as text.
func titleOf(fm map[string]interface{}, slug string) string {
	var title string
	switch v := fm["title"].(type) {
	case nil:
	case string:
		title = strings.TrimSpace(v)
	case bool:
		if v {
			title = "true"
		}
	case int:
		if v != 0 {
			title = fmt.Sprint(v)
		}
	case int64:
		if v != 0 {
			title = fmt.Sprint(v)
		}
	case uint64:
		if v != 0 {
			title = fmt.Sprint(v)
		}
	case float64:
		if v != 0 {
			title = fmt.Sprint(v)
		}
	default:
		title = strings.TrimSpace(fmt.Sprint(v))
	}

	if title == "" {
		return slug
	}
	return title
}
