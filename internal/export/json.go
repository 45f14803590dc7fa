package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"truckspec/internal/catalog"
)

// EncodeJSON writes doc to w, indented with two spaces when pretty is set.
func EncodeJSON(w io.Writer, doc catalog.Document, pretty bool) error {
	if doc == nil {
		doc = catalog.Document{}
	}

	encoder := json.NewEncoder(w)
	if pretty {
		encoder.SetIndent("", "  ")
	}
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

// WriteJSON writes doc to outputPath, creating parent directories.
func WriteJSON(doc catalog.Document, outputPath string, pretty bool) error {
	var buf bytes.Buffer
	if err := EncodeJSON(&buf, doc, pretty); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(outputPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write JSON file: %w", err)
	}

	log.Info().Str("path", outputPath).Int("brands", len(doc)).Bool("pretty", pretty).Msg("Exported catalogue to JSON")
	return nil
}

// DecodeJSON parses a catalogue document and restores brand fields.
func DecodeJSON(data []byte) (catalog.Document, error) {
	var doc catalog.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}
	doc.Restore()
	return doc, nil
}

// ReadJSON loads a catalogue document written by WriteJSON.
func ReadJSON(path string) (catalog.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read JSON file: %w", err)
	}
	return DecodeJSON(data)
}
