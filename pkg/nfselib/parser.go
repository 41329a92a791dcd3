package nfselib

import (
	"context"
	"io"
)

// Parser parses NFSe documents
type Parser interface {
	// Parse opens, reads and decodes one file
	Parse(ctx context.Context, path string) (*InvoiceResponse, error)

	// ParseReader decodes a document from r; name labels any error
	ParseReader(ctx context.Context, name string, r io.Reader) (*InvoiceResponse, error)
}

// BatchRunner processes an ordered list of files
type BatchRunner interface {
	// Extract returns the flattened records or the first failure
	Extract(ctx context.Context, paths []string) ([]InvoiceDetail, error)

	// Run returns the full batch outcome
	Run(ctx context.Context, paths []string) *BatchResult
}

// Options configures the processor
type Options struct {
	// Concurrency is the number of files parsed at once (default: 1)
	Concurrency int

	// Partial keeps the records of files that parse and reports the others
	// instead of failing the whole batch
	Partial bool
}

// DefaultOptions returns sequential all-or-nothing options
func DefaultOptions() Options {
	return Options{
		Concurrency: 1,
	}
}
