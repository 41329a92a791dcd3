package xml

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rezonia/nfse-reader/internal/model"
)

// ByteOrderMark is the UTF-8 BOM as a decoded character
const ByteOrderMark = "\uFEFF"

// Decoder decodes NFSe query responses into the document model
type Decoder struct{}

// NewDecoder creates a new decoder
func NewDecoder() *Decoder {
	return &Decoder{}
}

// DecodeString strips a single leading byte-order mark and decodes the rest
func (d *Decoder) DecodeString(ctx context.Context, content string) (*model.InvoiceResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var wire abrasfResponse
	dec := xml.NewDecoder(strings.NewReader(StripBOM(content)))
	dec.CharsetReader = passthroughCharset
	if err := dec.Decode(&wire); err != nil {
		return nil, model.NewParseError("xml", "failed to parse XML", err)
	}
	if err := checkTrailing(dec); err != nil {
		return nil, model.NewParseError("xml", "failed to parse XML", err)
	}

	return convertResponse(&wire)
}

// checkTrailing consumes the rest of the document. Only whitespace,
// comments and processing instructions may follow the root element.
func checkTrailing(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.Comment, xml.ProcInst:
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return fmt.Errorf("unexpected text %q after root element", bytes.TrimSpace(t))
			}
		case xml.StartElement:
			return fmt.Errorf("unexpected element <%s> after root element", t.Name.Local)
		default:
			return fmt.Errorf("unexpected %T after root element", tok)
		}
	}
}

// StripBOM removes one byte-order mark from the start of s only
func StripBOM(s string) string {
	return strings.TrimPrefix(s, ByteOrderMark)
}

// HasBOM reports whether s starts with a byte-order mark
func HasBOM(s string) bool {
	return strings.HasPrefix(s, ByteOrderMark)
}

// Content reaching the decoder is already UTF-8 text, so the declared
// encoding label is ignored.
func passthroughCharset(_ string, input io.Reader) (io.Reader, error) {
	return input, nil
}
