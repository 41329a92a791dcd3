// Package inspect reports the shape of an NFSe document without decoding
// it into invoices. Signatures are located and their certificate subject is
// read, but nothing is verified.
package inspect

import (
	"bytes"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/beevik/etree"

	xmlparser "github.com/rezonia/nfse-reader/internal/parser/xml"
)

// XMLDSigNamespace is the namespace of enveloped signatures
const XMLDSigNamespace = "http://www.w3.org/2000/09/xmldsig#"

// Outline describes one document
type Outline struct {
	Root       string   `json:"root"`
	Namespace  string   `json:"namespace,omitempty"`
	HasBOM     bool     `json:"has_bom"`
	HasList    bool     `json:"has_list"`
	Envelopes  int      `json:"envelopes"`
	Signatures int      `json:"signatures"`
	Signer     *Signer  `json:"signer,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

// Signer is the subject of the first embedded certificate
type Signer struct {
	Name         string    `json:"name"`
	Organization string    `json:"organization,omitempty"`
	SerialNumber string    `json:"serial_number"`
	Issuer       string    `json:"issuer"`
	ValidFrom    time.Time `json:"valid_from"`
	ValidTo      time.Time `json:"valid_to"`
}

// Inspect parses data with etree and builds its outline
func Inspect(data []byte) (*Outline, error) {
	outline := &Outline{HasBOM: xmlparser.HasBOM(string(data))}
	data = bytes.TrimPrefix(data, []byte(xmlparser.ByteOrderMark))

	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("empty XML document")
	}
	outline.Root = root.Tag
	outline.Namespace = root.NamespaceURI()

	if list := childByLocalName(root, "ListaNfse"); list != nil {
		outline.HasList = true
		for _, child := range list.ChildElements() {
			if hasLocalName(child, "CompNfse") {
				outline.Envelopes++
			}
		}
	}

	signatures := findElementsRecursive(root, "Signature", nil)
	outline.Signatures = len(signatures)
	if len(signatures) > 0 {
		if ns := signatures[0].NamespaceURI(); ns != XMLDSigNamespace {
			outline.Warnings = append(outline.Warnings, fmt.Sprintf("signature namespace %q is not XMLDSig", ns))
		}
		signer, err := signerOf(signatures[0])
		if err != nil {
			outline.Warnings = append(outline.Warnings, err.Error())
		}
		outline.Signer = signer
	}

	return outline, nil
}

func signerOf(sig *etree.Element) (*Signer, error) {
	data, err := ExtractCertificateData(sig)
	if err != nil {
		return nil, err
	}

	der, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(string(data)), ""))
	if err != nil {
		return nil, fmt.Errorf("failed to decode certificate: %w", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("failed to parse certificate: %w", err)
	}

	signer := &Signer{
		Name:         cert.Subject.CommonName,
		SerialNumber: cert.SerialNumber.String(),
		ValidFrom:    cert.NotBefore,
		ValidTo:      cert.NotAfter,
	}
	if len(cert.Subject.Organization) > 0 {
		signer.Organization = cert.Subject.Organization[0]
	}
	if cert.Issuer.CommonName != "" {
		signer.Issuer = cert.Issuer.CommonName
	} else if len(cert.Issuer.Organization) > 0 {
		signer.Issuer = cert.Issuer.Organization[0]
	}
	return signer, nil
}

// ExtractCertificateData returns the base64 text of
// Signature/KeyInfo/X509Data/X509Certificate, matching local names only
func ExtractCertificateData(sig *etree.Element) ([]byte, error) {
	elem := sig
	for _, name := range []string{"KeyInfo", "X509Data", "X509Certificate"} {
		elem = childByLocalName(elem, name)
		if elem == nil {
			return nil, fmt.Errorf("no X509Certificate found in Signature")
		}
	}

	text := strings.TrimSpace(elem.Text())
	if text == "" {
		return nil, fmt.Errorf("empty X509Certificate in Signature")
	}
	return []byte(text), nil
}

func childByLocalName(elem *etree.Element, localName string) *etree.Element {
	for _, child := range elem.ChildElements() {
		if hasLocalName(child, localName) {
			return child
		}
	}
	return nil
}

// findElementsRecursive collects elements by local name in document order
func findElementsRecursive(elem *etree.Element, localName string, found []*etree.Element) []*etree.Element {
	if hasLocalName(elem, localName) {
		found = append(found, elem)
	}
	for _, child := range elem.ChildElements() {
		found = findElementsRecursive(child, localName, found)
	}
	return found
}

// hasLocalName ignores any namespace prefix
func hasLocalName(elem *etree.Element, localName string) bool {
	tag := elem.Tag
	if idx := strings.IndexByte(tag, ':'); idx >= 0 {
		tag = tag[idx+1:]
	}
	return tag == localName
}
