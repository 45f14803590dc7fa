package textutil

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrNoLineTerminator is returned when the text contains neither CRLF nor LF.
var ErrNoLineTerminator = errors.New("no line terminator found")

// Decode converts raw file bytes to text. Invalid UTF-8 sequences are
// replaced with U+FFFD and a leading byte order mark is dropped.
func Decode(raw []byte) (string, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(decoder, raw)
	if err != nil {
		return "", fmt.Errorf("decode text: %w", err)
	}
	return string(out), nil
}

// SplitLines splits text on CRLF when present, otherwise on LF.
// Text without any terminator yields ErrNoLineTerminator.
func SplitLines(text string) ([]string, error) {
	switch {
	case strings.Contains(text, "\r\n"):
		return strings.Split(text, "\r\n"), nil
	case strings.Contains(text, "\n"):
		return strings.Split(text, "\n"), nil
	}
	return nil, ErrNoLineTerminator
}

// ReadLines reads, decodes and splits a file.
func ReadLines(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	text, err := Decode(raw)
	if err != nil {
		return nil, err
	}

	lines, err := SplitLines(text)
	if err != nil {
		return nil, fmt.Errorf("split %s: %w", path, err)
	}
	return lines, nil
}
