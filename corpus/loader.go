package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/docentlabs/docent/core"
	"github.com/tmc/langchaingo/documentloaders"
)

// Loader reads a directory of source documents and produces page-level
// text units with source metadata. The directory is treated as read-only
// input. PDF files yield one Page per physical page; plain-text and
// markdown files yield a single Page.
type Loader struct {
	dir    string
	logger *slog.Logger
}

// NewLoader creates a loader for the given corpus directory.
func NewLoader(dir string) *Loader {
	return &Loader{
		dir:    dir,
		logger: slog.Default().With("component", "corpus-loader"),
	}
}

// Load reads every supported document under the corpus directory, in
// lexical file order so repeated loads of an unchanged corpus produce an
// identical page sequence.
//
// Returns ErrCorpusNotFound if the directory is missing and ErrCorpusEmpty
// if it contains no loadable documents.
func (l *Loader) Load(ctx context.Context) ([]core.Page, error) {
	info, err := os.Stat(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrCorpusNotFound, l.dir)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrCorpusNotFound, l.dir)
	}

	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, err
	}

	var pages []core.Page
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		var filePages []core.Page
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".pdf":
			filePages, err = l.loadPDF(ctx, entry.Name())
		case ".txt", ".md":
			filePages, err = l.loadText(entry.Name())
		default:
			l.logger.Debug("skipping unsupported file", "file", entry.Name())
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", entry.Name(), err)
		}

		l.logger.Info("loaded document", "file", entry.Name(), "pages", len(filePages))
		pages = append(pages, filePages...)
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrCorpusEmpty, l.dir)
	}

	return pages, nil
}

// loadPDF loads one Page per physical PDF page.
func (l *Loader) loadPDF(ctx context.Context, name string) ([]core.Page, error) {
	f, err := os.Open(filepath.Join(l.dir, name))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	docs, err := documentloaders.NewPDF(f, info.Size()).Load(ctx)
	if err != nil {
		return nil, err
	}

	pages := make([]core.Page, 0, len(docs))
	for i, doc := range docs {
		pages = append(pages, core.Page{
			File:   name,
			Number: pageNumber(doc.Metadata, i+1),
			Text:   doc.PageContent,
		})
	}
	return pages, nil
}

// loadText loads a plain-text or markdown file as a single page.
func (l *Loader) loadText(name string) ([]core.Page, error) {
	data, err := os.ReadFile(filepath.Join(l.dir, name))
	if err != nil {
		return nil, err
	}
	return []core.Page{{File: name, Number: 1, Text: string(data)}}, nil
}

// pageNumber extracts the 1-based page number from loader metadata,
// falling back to the document's position when absent.
func pageNumber(metadata map[string]any, fallback int) int {
	switch v := metadata["page"].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return fallback
}
