package nfselib

import (
	"context"
	"errors"
	"io"

	"github.com/rezonia/nfse-reader/internal/extractor"
	"github.com/rezonia/nfse-reader/internal/model"
	"github.com/rezonia/nfse-reader/internal/processor"
)

// Processor implements Parser and BatchRunner using the internal extractor
type Processor struct {
	extractor *extractor.Extractor
	runner    *processor.Runner
	options   Options
}

var (
	_ Parser      = (*Processor)(nil)
	_ BatchRunner = (*Processor)(nil)
)

// NewProcessor creates a new processor with the given options
func NewProcessor(opts Options) *Processor {
	ex := extractor.New()

	mode := processor.ModeAllOrNothing
	if opts.Partial {
		mode = processor.ModePartial
	}

	return &Processor{
		extractor: ex,
		runner: processor.NewRunner(
			processor.WithParser(ex),
			processor.WithMode(mode),
			processor.WithConcurrency(opts.Concurrency),
		),
		options: opts,
	}
}

// NewDefaultProcessor creates a processor with default options
func NewDefaultProcessor() *Processor {
	return NewProcessor(DefaultOptions())
}

// Options returns the processor options
func (p *Processor) Options() Options {
	return p.options
}

// Parse opens, reads and decodes one file
func (p *Processor) Parse(ctx context.Context, path string) (*InvoiceResponse, error) {
	return p.extractor.Parse(ctx, path)
}

// ParseReader decodes a document from r
func (p *Processor) ParseReader(ctx context.Context, name string, r io.Reader) (*InvoiceResponse, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, model.NewExtractionError(model.KindRead, name, err)
	}
	return p.extractor.ParseContent(ctx, name, data)
}

// Run returns the full batch outcome
func (p *Processor) Run(ctx context.Context, paths []string) *BatchResult {
	return p.runner.Run(ctx, paths)
}

// Extract returns the flattened records of every file in order. A failed
// batch returns no records and an error carrying the batch message.
func (p *Processor) Extract(ctx context.Context, paths []string) ([]InvoiceDetail, error) {
	result := p.runner.Run(ctx, paths)
	if result.State == processor.StateFailed {
		return nil, &BatchError{Message: result.Message, Cause: result.Err}
	}
	return result.Records, nil
}

// Scan lists the .xml files under dir
func Scan(dir string) ([]string, error) {
	return processor.ScanDir(dir)
}

// BatchError is the single error of a failed batch
type BatchError struct {
	Message string
	Cause   error
}

func (e *BatchError) Error() string {
	return e.Message
}

func (e *BatchError) Unwrap() error {
	return e.Cause
}

// IsKind reports whether err is an ExtractionError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var extErr *model.ExtractionError
	return errors.As(err, &extErr) && extErr.Kind == kind
}
