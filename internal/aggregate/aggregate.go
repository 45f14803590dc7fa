package aggregate

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"truckspec/internal/catalog"
	"truckspec/internal/config"
	"truckspec/internal/filewalker"
	"truckspec/internal/parser"
	"truckspec/internal/worker"
)

// ErrFolderSkipped is wrapped by every reason a model folder is left out.
var ErrFolderSkipped = errors.New("folder skipped")

// Stats summarises a run.
type Stats struct {
	Folders        int
	Models         int
	SkippedFolders int
	Engines        int
	Transmissions  int
	SkippedFiles   int
}

// Aggregator turns a tree of brand.model folders into a catalog.Document.
type Aggregator struct {
	walker        *filewalker.Walker
	engines       parser.Parser[catalog.Engine]
	transmissions parser.Parser[catalog.Transmission]
	workers       int
}

// New creates an Aggregator from cfg.
func New(cfg *config.Config) *Aggregator {
	opts := cfg.ParserOptions()
	return &Aggregator{
		walker:        filewalker.NewWalker(cfg.Extension),
		engines:       parser.NewEngineParser(opts),
		transmissions: parser.NewTransmissionParser(opts),
		workers:       cfg.WorkerCount,
	}
}

type folderResult struct {
	entry        catalog.ModelEntry
	skippedFiles int
}

// Run scans root. Only an unreadable root is an error; problems with single
// folders or files are logged at debug level and counted in Stats.
func (a *Aggregator) Run(ctx context.Context, root string) (catalog.Document, Stats, error) {
	var stats Stats

	folders, err := a.walker.Folders(root)
	if err != nil {
		return nil, stats, fmt.Errorf("list model folders: %w", err)
	}
	stats.Folders = len(folders)

	pool := worker.NewPool[filewalker.Entry, folderResult](a.workers,
		func(_ context.Context, folder filewalker.Entry) (folderResult, error) {
			return a.scanFolder(folder)
		},
	)

	var entries []catalog.ModelEntry
	for _, r := range pool.Execute(ctx, folders) {
		stats.SkippedFiles += r.Value.skippedFiles
		if r.Err != nil {
			stats.SkippedFolders++
			log.Debug().Err(r.Err).Str("folder", r.Input.Name).Msg("Skipping model folder")
			continue
		}

		entry := r.Value.entry
		stats.Models++
		stats.Engines += len(entry.Engines)
		stats.Transmissions += len(entry.Transmissions)
		entries = append(entries, entry)
	}

	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}

	log.Info().
		Int("folders", stats.Folders).
		Int("models", stats.Models).
		Int("engines", stats.Engines).
		Int("transmissions", stats.Transmissions).
		Msg("Scanned truck tree")

	return catalog.Group(entries), stats, nil
}

// scanFolder builds the entry of one model folder. A folder needs a
// brand.model name plus at least one engine and one transmission.
func (a *Aggregator) scanFolder(folder filewalker.Entry) (folderResult, error) {
	var res folderResult

	brand, model, ok := parser.PathSegment(folder.Name)
	if !ok {
		return res, fmt.Errorf("%w: name is not brand.model", ErrFolderSkipped)
	}

	engines, skipped := collect(a.walker, a.engines, folder)
	res.skippedFiles += skipped
	if len(engines) == 0 {
		return res, fmt.Errorf("%w: no valid engines", ErrFolderSkipped)
	}

	transmissions, skipped := collect(a.walker, a.transmissions, folder)
	res.skippedFiles += skipped
	if len(transmissions) == 0 {
		return res, fmt.Errorf("%w: no valid transmissions", ErrFolderSkipped)
	}

	res.entry = catalog.ModelEntry{
		Brand:         brand,
		Model:         model,
		Engines:       engines,
		Transmissions: transmissions,
	}
	return res, nil
}

// collect parses every file in the kind subfolder of folder and returns the
// records that were complete, plus how many files produced nothing.
func collect[R any](w *filewalker.Walker, p parser.Parser[R], folder filewalker.Entry) ([]R, int) {
	dir := filepath.Join(folder.Path, string(p.Kind()))
	files, err := w.Files(dir)
	if err != nil {
		log.Debug().Err(err).Str("dir", dir).Msg("Component folder unreadable")
		return nil, 0
	}

	var records []R
	skipped := 0
	for _, f := range files {
		rec, err := p.ParseFile(f.Path, parser.Source{Folder: folder.Name, File: f.Name})
		if err != nil {
			skipped++
			log.Debug().Err(err).Str("file", f.Path).Msg("No record produced")
			continue
		}
		records = append(records, rec)
	}
	return records, skipped
}
