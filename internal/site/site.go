// Package site enumerates the fixed content layout of the essay site.
// The summary builder never discovers directories on its own; everything it scans is listed here.
package site

import "path/filepath"

const (
	// ContentExt is the extension of article files.
	ContentExt = ".md"
	// IndexFile is the per-directory listing page, never summarized.
	IndexFile = "index.md"
	// DataDir is where the site generator reads global data files from.
	DataDir = "_data"
	// SummariesFile is the cache file name inside DataDir.
	SummariesFile = "summaries.json"
)

// ContentDirs lists the article directories in scan order.
var ContentDirs = []string{"opeds", "investigate"}

// Layout is the resolved set of paths a run operates on.
type Layout struct {
	Root       string
	Dirs       []string
	Ext        string
	IndexFile  string
	OutputPath string
}

// DefaultLayout returns the site layout rooted at root.
func DefaultLayout(root string) Layout {
	dirs := make([]string, len(ContentDirs))
	copy(dirs, ContentDirs)

	return Layout{
		Root:       root,
		Dirs:       dirs,
		Ext:        ContentExt,
		IndexFile:  IndexFile,
		OutputPath: filepath.Join(root, DataDir, SummariesFile),
	}
}

// DirPath returns the absolute-or-relative path of a content directory under the root.
func (l Layout) DirPath(dir string) string {
	return filepath.Join(l.Root, dir)
}
