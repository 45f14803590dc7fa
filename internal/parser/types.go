package parser

import (
	"errors"
	"fmt"
	"strings"

	"truckspec/internal/catalog"
)

// Kind names the component folder a definition file lives in.
type Kind string

const (
	KindEngine       Kind = "engine"
	KindTransmission Kind = "transmission"
)

// DefaultDefPrefix is the definition path trucks are registered under.
const DefaultDefPrefix = "/def/vehicle/truck"

// ErrIncomplete matches every *IncompleteError via errors.Is.
var ErrIncomplete = errors.New("incomplete record")

// IncompleteError reports why a file did not produce a record.
type IncompleteError struct {
	Kind   Kind
	Reason string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("%s record incomplete: %s", e.Kind, e.Reason)
}

func (e *IncompleteError) Is(target error) bool {
	return target == ErrIncomplete
}

func incomplete(kind Kind, reason string) error {
	return &IncompleteError{Kind: kind, Reason: reason}
}

// Source locates a definition file inside the truck tree.
type Source struct {
	// Folder is the brand.model folder name.
	Folder string
	// File is the file name including its extension.
	File string
}

// Options controls record building.
type Options struct {
	// DefPrefix is prepended to the code of every record.
	DefPrefix string
	// RequireRPMLimit rejects engines without an rpm_limit line.
	RequireRPMLimit bool
}

func (o Options) code(kind Kind, src Source) string {
	prefix := strings.TrimRight(o.DefPrefix, "/")
	if prefix == "" {
		prefix = DefaultDefPrefix
	}
	return fmt.Sprintf("%s/%s/%s/%s", prefix, src.Folder, kind, src.File)
}

// Parser builds one record of type R from a definition file.
type Parser[R any] interface {
	// Kind returns the component folder this parser reads.
	Kind() Kind
	// Parse builds a record from already split lines.
	Parse(lines []string, src Source) (R, error)
	// ParseFile reads filePath and builds a record from it.
	ParseFile(filePath string, src Source) (R, error)
}

// fold runs step over every line, threading the state through.
func fold[S any](lines []string, state S, step func(S, int, string) S) S {
	for i, line := range lines {
		state = step(state, i, line)
	}
	return state
}

var (
	_ Parser[catalog.Engine]       = (*EngineParser)(nil)
	_ Parser[catalog.Transmission] = (*TransmissionParser)(nil)
)
