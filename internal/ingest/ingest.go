// Package ingest copies pages of the RAWG catalog listing into a local JSON file.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"questlog/backend/internal/rawg"

	"github.com/sirupsen/logrus"
)

// MaxPageSize is the largest page RAWG serves.
const MaxPageSize = 40

// Lister fetches one page of the catalog listing.
type Lister interface {
	ListGames(ctx context.Context, page, pageSize int) (*rawg.Page, error)
}

// Options selects the page range and the output file.
type Options struct {
	StartPage int
	EndPage   int
	PageSize  int
	Path      string
}

func (o Options) validate() error {
	if o.StartPage < 1 || o.EndPage < o.StartPage {
		return fmt.Errorf("invalid page range %d..%d", o.StartPage, o.EndPage)
	}
	if o.PageSize < 1 || o.PageSize > MaxPageSize {
		return fmt.Errorf("page size must be between 1 and %d", MaxPageSize)
	}
	if o.Path == "" {
		return errors.New("output path is required")
	}
	return nil
}

// Result summarizes a run.
type Result struct {
	Added int
	Total int
}

// Run fetches StartPage..EndPage sequentially, stopping early when the
// listing has no next page, and appends the results to the existing file.
// The file is only rewritten when every fetch succeeded.
func Run(ctx context.Context, lister Lister, opts Options) (*Result, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	existing, err := readExisting(opts.Path)
	if err != nil {
		return nil, err
	}

	var fetched []json.RawMessage
	for page := opts.StartPage; page <= opts.EndPage; page++ {
		logrus.WithField("page", page).Info("Fetching page")

		p, err := lister.ListGames(ctx, page, opts.PageSize)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", page, err)
		}
		fetched = append(fetched, p.Results...)

		if p.Next == nil || *p.Next == "" {
			break
		}
	}

	updated := append(existing, fetched...)
	if err := writeAll(opts.Path, updated); err != nil {
		return nil, err
	}

	return &Result{Added: len(fetched), Total: len(updated)}, nil
}

func readExisting(path string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var games []json.RawMessage
	if err := json.Unmarshal(data, &games); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return games, nil
}

func writeAll(path string, games []json.RawMessage) error {
	if games == nil {
		games = []json.RawMessage{}
	}
	data, err := json.MarshalIndent(games, "", "  ")
	if err != nil {
		return fmt.Errorf("encode games: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
