package model

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// InvoiceResponse is one decoded NFSe query response document
type InvoiceResponse struct {
	// Root is the local name of the document element (ConsultarNfseResposta, ...)
	Root      string            `json:"root,omitempty"`
	Envelopes []InvoiceEnvelope `json:"envelopes"`
}

// InvoiceEnvelope pairs the response list with exactly one invoice (CompNfse)
type InvoiceEnvelope struct {
	Invoice Invoice `json:"invoice"`
}

// Invoice wraps the invoice detail block (Nfse)
type Invoice struct {
	Detail InvoiceDetail `json:"detail"`
}

// InvoiceDetail is the record surfaced to the display layer (InfNfse)
type InvoiceDetail struct {
	Number    uint32  `json:"number"`
	IssueDate string  `json:"issue_date"`
	Service   Service `json:"service"`
	Provider  Party   `json:"provider"`
	Recipient Party   `json:"recipient"`
}

// Service holds the rendered service values
type Service struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// Party is either the issuer (provider) or the service recipient
type Party struct {
	LegalName string `json:"legal_name"`
	TaxID     TaxID  `json:"tax_id"`
}

// Details flattens the envelope sequence into invoice details, in document order
func (r *InvoiceResponse) Details() []InvoiceDetail {
	if r == nil {
		return nil
	}
	return lo.Map(r.Envelopes, func(env InvoiceEnvelope, _ int) InvoiceDetail {
		return env.Invoice.Detail
	})
}

// Len returns the number of envelopes in the response
func (r *InvoiceResponse) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Envelopes)
}
