// Package nfselib provides a public API for reading Brazilian NFSe
// (Nota Fiscal de Serviços Eletrônica) query responses.
//
// This package exposes the record types, the single-file parser and the
// batch runner used by the nfse-reader CLI.
//
// Example usage:
//
//	proc := nfselib.NewDefaultProcessor()
//	records, err := proc.Extract(ctx, []string{"nota1.xml", "nota2.xml"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(records[0].Service.Amount)
package nfselib

import (
	"github.com/rezonia/nfse-reader/internal/model"
	"github.com/rezonia/nfse-reader/internal/processor"
)

// Re-export core types for public API
type (
	InvoiceResponse = model.InvoiceResponse
	InvoiceEnvelope = model.InvoiceEnvelope
	Invoice         = model.Invoice
	InvoiceDetail   = model.InvoiceDetail
	Service         = model.Service
	Party           = model.Party
	TaxID           = model.TaxID
	TaxIDKind       = model.TaxIDKind
)

// Re-export tax identifier kinds
const (
	TaxIDNeither = model.TaxIDNeither
	TaxIDCNPJ    = model.TaxIDCNPJ
	TaxIDCPF     = model.TaxIDCPF
	TaxIDBoth    = model.TaxIDBoth
)

// Re-export error types
type (
	ParseError      = model.ParseError
	ExtractionError = model.ExtractionError
	ErrorKind       = model.ErrorKind
)

// Re-export error kinds
const (
	KindOpen   = model.KindOpen
	KindRead   = model.KindRead
	KindDecode = model.KindDecode
)

// Re-export batch types
type (
	BatchResult = processor.BatchResult
	FileResult  = processor.FileResult
	State       = processor.State
	Mode        = processor.Mode
)

// Re-export batch states and modes
const (
	StateIdle       = processor.StateIdle
	StateProcessing = processor.StateProcessing
	StateDone       = processor.StateDone
	StateFailed     = processor.StateFailed

	ModeAllOrNothing = processor.ModeAllOrNothing
	ModePartial      = processor.ModePartial
)
