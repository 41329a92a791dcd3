package server

import (
	"github.com/rezonia/nfse-reader/internal/inspect"
	"github.com/rezonia/nfse-reader/internal/model"
	"github.com/rezonia/nfse-reader/internal/processor"
)

// ExtractRequest names the files of one batch, in order
type ExtractRequest struct {
	Paths       []string `json:"paths" binding:"required"`
	Partial     *bool    `json:"partial,omitempty"`
	Concurrency int      `json:"concurrency,omitempty" binding:"gte=0,lte=64"`
}

// ExtractResponse is the response for a successful batch
type ExtractResponse struct {
	ID       string                 `json:"id"`
	Count    int                    `json:"count"`
	Records  []model.InvoiceDetail  `json:"records"`
	Failures []processor.FileResult `json:"failures,omitempty"`
}

// BatchRequest names the files of a run on the shared session. The
// session uses the server's batch defaults.
type BatchRequest struct {
	Paths []string `json:"paths" binding:"required"`
}

// ScanRequest names the directory to scan
type ScanRequest struct {
	Dir string `json:"dir" binding:"required"`
}

// ScanResponse lists the selected files
type ScanResponse struct {
	Dir   string   `json:"dir"`
	Count int      `json:"count"`
	Files []string `json:"files"`
}

// DecodeResponse is the response for an in-memory document
type DecodeResponse struct {
	Root    string                `json:"root"`
	Count   int                   `json:"count"`
	Records []model.InvoiceDetail `json:"records"`
}

// InfoResponse is the response for info endpoint
type InfoResponse struct {
	Size    int              `json:"size"`
	Outline *inspect.Outline `json:"outline"`
}

// ErrorResponse is the standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
