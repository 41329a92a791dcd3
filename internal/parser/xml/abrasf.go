package xml

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	money "github.com/rezonia/nfse-reader/internal/decimal"
	"github.com/rezonia/nfse-reader/internal/model"
)

// ABRASF NFSe query response structures.
// Singular elements decode as slices so a repeated element is rejected
// instead of silently overwritten; see single.
type abrasfResponse struct {
	XMLName   xml.Name
	ListaNfse []abrasfList `xml:"ListaNfse"`
}

type abrasfList struct {
	CompNfse []abrasfComp `xml:"CompNfse"`
}

type abrasfComp struct {
	Nfse []abrasfNfse `xml:"Nfse"`
}

type abrasfNfse struct {
	InfNfse []abrasfInfNfse `xml:"InfNfse"`
}

type abrasfInfNfse struct {
	Numero           []string          `xml:"Numero"`
	DataEmissao      []string          `xml:"DataEmissao"`
	Servico          []abrasfServico   `xml:"Servico"`
	PrestadorServico []abrasfPrestador `xml:"PrestadorServico"`
	TomadorServico   []abrasfTomador   `xml:"TomadorServico"`
}

type abrasfServico struct {
	Valores       []abrasfValores `xml:"Valores"`
	Discriminacao []string        `xml:"Discriminacao"`
}

type abrasfValores struct {
	ValorServicos []string `xml:"ValorServicos"`
}

type abrasfPrestador struct {
	RazaoSocial            []string               `xml:"RazaoSocial"`
	IdentificacaoPrestador []abrasfIdentPrestador `xml:"IdentificacaoPrestador"`
}

type abrasfIdentPrestador struct {
	Cnpj []string `xml:"Cnpj"`
}

type abrasfTomador struct {
	RazaoSocial          []string             `xml:"RazaoSocial"`
	IdentificacaoTomador []abrasfIdentTomador `xml:"IdentificacaoTomador"`
}

type abrasfIdentTomador struct {
	CpfCnpj []abrasfCpfCnpj `xml:"CpfCnpj"`
}

// Both identifiers are optional
type abrasfCpfCnpj struct {
	Cnpj []string `xml:"Cnpj"`
	Cpf  []string `xml:"Cpf"`
}

func convertResponse(resp *abrasfResponse) (*model.InvoiceResponse, error) {
	list, err := mandatory("ListaNfse", resp.ListaNfse)
	if err != nil {
		return nil, err
	}

	result := &model.InvoiceResponse{
		Root:      resp.XMLName.Local,
		Envelopes: make([]model.InvoiceEnvelope, 0, len(list.CompNfse)),
	}

	for i, comp := range list.CompNfse {
		path := fmt.Sprintf("ListaNfse/CompNfse[%d]", i)
		env, err := convertComp(path, &comp)
		if err != nil {
			return nil, err
		}
		result.Envelopes = append(result.Envelopes, *env)
	}

	return result, nil
}

func convertComp(path string, comp *abrasfComp) (*model.InvoiceEnvelope, error) {
	path += "/Nfse"
	nfse, err := mandatory(path, comp.Nfse)
	if err != nil {
		return nil, err
	}
	path += "/InfNfse"
	inf, err := mandatory(path, nfse.InfNfse)
	if err != nil {
		return nil, err
	}

	detail, err := convertInfNfse(path, inf)
	if err != nil {
		return nil, err
	}

	return &model.InvoiceEnvelope{
		Invoice: model.Invoice{Detail: *detail},
	}, nil
}

func convertInfNfse(path string, inf *abrasfInfNfse) (*model.InvoiceDetail, error) {
	numero, err := requireText(path+"/Numero", inf.Numero)
	if err != nil {
		return nil, err
	}
	number, err := strconv.ParseUint(numero, 10, 32)
	if err != nil {
		return nil, model.NewParseError(path+"/Numero", "invalid unsigned integer", err)
	}

	issueDate, err := requireText(path+"/DataEmissao", inf.DataEmissao)
	if err != nil {
		return nil, err
	}

	servico, err := mandatory(path+"/Servico", inf.Servico)
	if err != nil {
		return nil, err
	}
	service, err := convertServico(path+"/Servico", servico)
	if err != nil {
		return nil, err
	}

	prestador, err := mandatory(path+"/PrestadorServico", inf.PrestadorServico)
	if err != nil {
		return nil, err
	}
	provider, err := convertPrestador(path+"/PrestadorServico", prestador)
	if err != nil {
		return nil, err
	}

	tomador, err := mandatory(path+"/TomadorServico", inf.TomadorServico)
	if err != nil {
		return nil, err
	}
	recipient, err := convertTomador(path+"/TomadorServico", tomador)
	if err != nil {
		return nil, err
	}

	return &model.InvoiceDetail{
		Number:    uint32(number),
		IssueDate: issueDate,
		Service:   *service,
		Provider:  *provider,
		Recipient: *recipient,
	}, nil
}

func convertServico(path string, s *abrasfServico) (*model.Service, error) {
	valores, err := mandatory(path+"/Valores", s.Valores)
	if err != nil {
		return nil, err
	}

	valor, err := requireText(path+"/Valores/ValorServicos", valores.ValorServicos)
	if err != nil {
		return nil, err
	}
	amount, err := money.FromString(valor)
	if err != nil {
		return nil, model.NewParseError(path+"/Valores/ValorServicos", "invalid decimal", err)
	}

	description, err := requireText(path+"/Discriminacao", s.Discriminacao)
	if err != nil {
		return nil, err
	}

	return &model.Service{
		Amount:      amount,
		Description: description,
	}, nil
}

func convertPrestador(path string, p *abrasfPrestador) (*model.Party, error) {
	name, err := requireText(path+"/RazaoSocial", p.RazaoSocial)
	if err != nil {
		return nil, err
	}

	ident, err := mandatory(path+"/IdentificacaoPrestador", p.IdentificacaoPrestador)
	if err != nil {
		return nil, err
	}
	cnpj, err := requireText(path+"/IdentificacaoPrestador/Cnpj", ident.Cnpj)
	if err != nil {
		return nil, err
	}

	return &model.Party{
		LegalName: name,
		TaxID:     model.NewCNPJ(cnpj),
	}, nil
}

func convertTomador(path string, t *abrasfTomador) (*model.Party, error) {
	name, err := requireText(path+"/RazaoSocial", t.RazaoSocial)
	if err != nil {
		return nil, err
	}

	ident, err := mandatory(path+"/IdentificacaoTomador", t.IdentificacaoTomador)
	if err != nil {
		return nil, err
	}
	path += "/IdentificacaoTomador/CpfCnpj"
	cpfCnpj, err := mandatory(path, ident.CpfCnpj)
	if err != nil {
		return nil, err
	}

	cnpj, err := optionalText(path+"/Cnpj", cpfCnpj.Cnpj)
	if err != nil {
		return nil, err
	}
	cpf, err := optionalText(path+"/Cpf", cpfCnpj.Cpf)
	if err != nil {
		return nil, err
	}

	return &model.Party{
		LegalName: name,
		TaxID: model.TaxID{
			CNPJ: cnpj,
			CPF:  cpf,
		},
	}, nil
}

// Helper functions

// single returns the only element of items, nil when there is none, and an
// error when the element is repeated.
func single[T any](field string, items []T) (*T, error) {
	switch len(items) {
	case 0:
		return nil, nil
	case 1:
		return &items[0], nil
	default:
		return nil, model.NewParseError(field, "duplicate element", fmt.Errorf("found %d occurrences", len(items)))
	}
}

func mandatory[T any](field string, items []T) (*T, error) {
	item, err := single(field, items)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, model.ErrMissing(field)
	}
	return item, nil
}

func requireText(field string, items []string) (string, error) {
	s, err := mandatory(field, items)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(*s), nil
}

func optionalText(field string, items []string) (*string, error) {
	s, err := single(field, items)
	if err != nil || s == nil {
		return nil, err
	}
	v := strings.TrimSpace(*s)
	return &v, nil
}
