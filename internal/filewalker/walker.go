package filewalker

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// DefaultExtension is the extension of game definition files.
const DefaultExtension = "sii"

// Walker enumerates model folders and the definition files inside them.
type Walker struct {
	ext string
}

// NewWalker creates a Walker matching files with the given extension,
// with or without its leading dot. An empty extension means DefaultExtension.
func NewWalker(ext string) *Walker {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" {
		ext = DefaultExtension
	}
	return &Walker{ext: "." + ext}
}

// Entry is a directory entry discovered by the walker.
type Entry struct {
	Name string
	Path string
}

// Folders lists the immediate subdirectories of root in name order.
func (w *Walker) Folders(root string) ([]Entry, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}

	dirEntries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read root: %w", err)
	}

	var folders []Entry
	for _, de := range dirEntries {
		path := filepath.Join(root, de.Name())
		// Stat follows symlinked model folders.
		info, err := os.Stat(path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error reading folder entry")
			continue
		}
		if !info.IsDir() {
			continue
		}
		folders = append(folders, Entry{Name: de.Name(), Path: path})
	}

	log.Debug().Int("count", len(folders)).Str("root", root).Msg("Discovered folders")
	return folders, nil
}

// Files lists the definition files directly inside dir in name order.
// Subdirectories are not descended into.
func (w *Walker) Files(dir string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var files []Entry
	for _, de := range dirEntries {
		if de.IsDir() || !w.CanParse(de.Name()) {
			continue
		}
		files = append(files, Entry{Name: de.Name(), Path: filepath.Join(dir, de.Name())})
	}
	return files, nil
}

// CanParse reports whether name carries the walker's extension.
func (w *Walker) CanParse(name string) bool {
	return strings.ToLower(filepath.Ext(name)) == w.ext
}
