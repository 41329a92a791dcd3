package extractor

import (
	"context"
	"errors"
	"io"
	"os"
	"unicode/utf8"

	"github.com/rezonia/nfse-reader/internal/logger"
	"github.com/rezonia/nfse-reader/internal/model"
	xmlparser "github.com/rezonia/nfse-reader/internal/parser/xml"
)

var (
	// ErrNotRegularFile is the open cause for directories, devices and pipes
	ErrNotRegularFile = errors.New("not a regular file")

	// ErrInvalidUTF8 is the read cause for content that is not UTF-8 text
	ErrInvalidUTF8 = errors.New("stream did not contain valid UTF-8")
)

// Extractor turns one NFSe file into an InvoiceResponse.
// It keeps no state between calls.
type Extractor struct {
	decoder *xmlparser.Decoder
	logger  *logger.Logger
}

// Option configures the extractor
type Option func(*Extractor)

// WithLogger sets the logger
func WithLogger(l *logger.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates a new extractor
func New(opts ...Option) *Extractor {
	e := &Extractor{
		decoder: xmlparser.NewDecoder(),
		logger:  logger.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Parse opens, reads and decodes the file at path. The file is closed
// before Parse returns; every call reads the file again.
func (e *Extractor) Parse(ctx context.Context, path string) (*model.InvoiceResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	return e.ParseContent(ctx, path, data)
}

// ParseContent decodes content already in memory. name is used as the
// path of any error.
func (e *Extractor) ParseContent(ctx context.Context, name string, data []byte) (*model.InvoiceResponse, error) {
	if !utf8.Valid(data) {
		return nil, model.NewExtractionError(model.KindRead, name, ErrInvalidUTF8)
	}

	resp, err := e.decoder.DecodeString(ctx, string(data))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		e.logger.Debugw("decode failed", "path", name, "error", err)
		return nil, model.NewExtractionError(model.KindDecode, name, err)
	}

	e.logger.Debugw("file parsed", "path", name, "envelopes", resp.Len())
	return resp, nil
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, model.NewExtractionError(model.KindOpen, path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, model.NewExtractionError(model.KindOpen, path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, model.NewExtractionError(model.KindOpen, path, ErrNotRegularFile)
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, model.NewExtractionError(model.KindRead, path, err)
	}
	return data, nil
}
