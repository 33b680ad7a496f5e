// Package source adapts external content-extraction collaborators into
// the span model the engine consumes. Each Source owns the binary
// decoding for one family of formats; the engine itself never touches
// raw bytes.
package source

import (
	"context"
	"fmt"

	"github.com/brunobiangulo/outliner/span"
)

// Metadata is document-level information a source may supply alongside
// spans.
type Metadata struct {
	Title    string
	Language string
}

// Document is the raw extraction output for one file: an ordered span
// list plus optional metadata.
type Document struct {
	Spans []span.TextSpan
	Meta  Metadata
}

// Source extracts spans from a specific document format.
type Source interface {
	Extract(ctx context.Context, path string) (*Document, error)
	SupportedFormats() []string
}

// Registry maps file formats to sources.
type Registry struct {
	sources map[string]Source
}

// NewRegistry builds a registry with the built-in sources registered.
// MaxPages caps how many pages the paged sources read.
func NewRegistry(maxPages int) *Registry {
	r := &Registry{sources: make(map[string]Source)}
	for _, s := range []Source{
		&PDF{MaxPages: maxPages},
		&XLSX{},
		&PPTX{MaxSlides: maxPages},
		&DOCX{MaxPages: maxPages},
		&Text{},
	} {
		for _, f := range s.SupportedFormats() {
			r.sources[f] = s
		}
	}
	return r
}

// Register adds or replaces the source for a format.
func (r *Registry) Register(format string, s Source) {
	r.sources[format] = s
}

// Get returns the source for a format.
func (r *Registry) Get(format string) (Source, error) {
	s, ok := r.sources[format]
	if !ok {
		return nil, fmt.Errorf("no source for format: %s", format)
	}
	return s, nil
}
