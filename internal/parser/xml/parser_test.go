package xml_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/nfse-reader/internal/model"
	xmlparser "github.com/rezonia/nfse-reader/internal/parser/xml"
)

func TestDecoder_ConsultaNfse(t *testing.T) {
	content := readTestFile(t, "consulta_nfse.xml")

	resp, err := decode(t, content)
	require.NoError(t, err)

	assert.Equal(t, "ConsultarNfseResposta", resp.Root)
	require.Len(t, resp.Envelopes, 2)

	first := resp.Envelopes[0].Invoice.Detail
	assert.Equal(t, uint32(1001), first.Number)
	assert.Equal(t, "2024-03-15T10:30:00", first.IssueDate)
	assert.True(t, first.Service.Amount.Equal(decimal.RequireFromString("1500.75")))
	assert.Equal(t, "Suporte tecnico em informatica", first.Service.Description)

	// Verify provider
	assert.Equal(t, "Prestadora Exemplo LTDA", first.Provider.LegalName)
	assert.Equal(t, model.TaxIDCNPJ, first.Provider.TaxID.Kind())
	assert.Equal(t, "12345678000199", first.Provider.TaxID.CNPJValue())

	// Verify recipient (CNPJ only)
	assert.Equal(t, "Tomadora Comercio SA", first.Recipient.LegalName)
	require.NotNil(t, first.Recipient.TaxID.CNPJ)
	assert.Equal(t, "98765432000155", *first.Recipient.TaxID.CNPJ)
	assert.Nil(t, first.Recipient.TaxID.CPF)

	second := resp.Envelopes[1].Invoice.Detail
	assert.Equal(t, uint32(1002), second.Number)
	assert.True(t, second.Service.Amount.Equal(decimal.NewFromInt(250)))

	// Verify recipient (CPF only)
	assert.Equal(t, "Maria da Silva", second.Recipient.LegalName)
	assert.Nil(t, second.Recipient.TaxID.CNPJ)
	require.NotNil(t, second.Recipient.TaxID.CPF)
	assert.Equal(t, "12345678909", *second.Recipient.TaxID.CPF)
}

func TestDecoder_EmptyList(t *testing.T) {
	resp, err := decode(t, readTestFile(t, "lista_vazia.xml"))
	require.NoError(t, err)
	assert.Empty(t, resp.Envelopes)
	assert.Empty(t, resp.Details())
}

func TestDecoder_EnvelopeCount(t *testing.T) {
	for _, n := range []int{0, 1, 3, 10} {
		t.Run(fmt.Sprintf("%d envelopes", n), func(t *testing.T) {
			var sb strings.Builder
			sb.WriteString(`<ConsultarNfseResposta><ListaNfse>`)
			for i := 0; i < n; i++ {
				sb.WriteString(compNfse(uint32(i+1), recipientCNPJ))
			}
			sb.WriteString(`</ListaNfse></ConsultarNfseResposta>`)

			resp, err := decode(t, []byte(sb.String()))
			require.NoError(t, err)
			require.Len(t, resp.Envelopes, n)
			for i, detail := range resp.Details() {
				assert.Equal(t, uint32(i+1), detail.Number, "document order")
			}
		})
	}
}

func TestDecoder_ByteOrderMark(t *testing.T) {
	content := readTestFile(t, "consulta_nfse.xml")

	plain, err := decode(t, content)
	require.NoError(t, err)

	withBOM, err := decode(t, append([]byte(xmlparser.ByteOrderMark), content...))
	require.NoError(t, err)

	assert.Equal(t, plain, withBOM)
}

func TestDecoder_BOMInsideContentKept(t *testing.T) {
	bom := xmlparser.ByteOrderMark
	comp := strings.Replace(compNfse(1, recipientCNPJ), "<Discriminacao>Servico</Discriminacao>",
		"<Discriminacao>"+bom+"Servico</Discriminacao>", 1)

	resp, err := xmlparser.NewDecoder().DecodeString(context.Background(), bom+document(comp))
	require.NoError(t, err)
	assert.Equal(t, bom+"Servico", resp.Envelopes[0].Invoice.Detail.Service.Description)
}

func TestStripBOM(t *testing.T) {
	bom := xmlparser.ByteOrderMark

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no BOM", "<a/>", "<a/>"},
		{"leading BOM", bom + "<a/>", "<a/>"},
		{"only one stripped", bom + bom + "<a/>", bom + "<a/>"},
		{"BOM elsewhere kept", "<a>" + bom + "</a>", "<a>" + bom + "</a>"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, xmlparser.StripBOM(tt.input))
		})
	}

	assert.True(t, xmlparser.HasBOM(bom+"<a/>"))
	assert.False(t, xmlparser.HasBOM("<a/>"))
}

func TestDecoder_PrefixedNamespaceAndDeclaredEncoding(t *testing.T) {
	resp, err := decode(t, readTestFile(t, "prefixado_latin1.xml"))
	require.NoError(t, err)

	assert.Equal(t, "ConsultarNfseServicoPrestadoResposta", resp.Root)
	require.Len(t, resp.Envelopes, 1)

	detail := resp.Envelopes[0].Invoice.Detail
	assert.Equal(t, uint32(55), detail.Number)
	assert.True(t, detail.Service.Amount.Equal(decimal.RequireFromString("99.90")))

	// Both identifiers present is accepted as is
	assert.Equal(t, model.TaxIDBoth, detail.Recipient.TaxID.Kind())
	assert.Equal(t, "44555666000177", detail.Recipient.TaxID.CNPJValue())
	assert.Equal(t, "11122233344", detail.Recipient.TaxID.CPFValue())
}

func TestDecoder_RecipientWithoutIdentifiers(t *testing.T) {
	resp, err := decode(t, []byte(document(compNfse(9, `<CpfCnpj></CpfCnpj>`))))
	require.NoError(t, err)
	require.Len(t, resp.Envelopes, 1)

	tax := resp.Envelopes[0].Invoice.Detail.Recipient.TaxID
	assert.Equal(t, model.TaxIDNeither, tax.Kind())
	assert.Nil(t, tax.CNPJ)
	assert.Nil(t, tax.CPF)
}

func TestDecoder_MissingServiceAmount(t *testing.T) {
	resp, err := decode(t, readTestFile(t, "sem_valor_servicos.xml"))
	require.Error(t, err)
	assert.Nil(t, resp, "no partial record")

	var parseErr *model.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "ListaNfse/CompNfse[0]/Nfse/InfNfse/Servico/Valores/ValorServicos", parseErr.Field)
}

func TestDecoder_MissingMandatoryElements(t *testing.T) {
	tests := []struct {
		name  string
		xml   string
		field string
	}{
		{
			name:  "no ListaNfse",
			xml:   `<ConsultarNfseResposta><ListaMensagemRetorno/></ConsultarNfseResposta>`,
			field: "ListaNfse",
		},
		{
			name:  "no Nfse",
			xml:   document(`<CompNfse></CompNfse>`),
			field: "ListaNfse/CompNfse[0]/Nfse",
		},
		{
			name:  "no InfNfse",
			xml:   document(`<CompNfse><Nfse></Nfse></CompNfse>`),
			field: "ListaNfse/CompNfse[0]/Nfse/InfNfse",
		},
		{
			name:  "no Numero",
			xml:   document(strings.Replace(compNfse(1, recipientCNPJ), "<Numero>1</Numero>", "", 1)),
			field: "ListaNfse/CompNfse[0]/Nfse/InfNfse/Numero",
		},
		{
			name:  "no DataEmissao",
			xml:   document(strings.Replace(compNfse(1, recipientCNPJ), "<DataEmissao>2024-01-01</DataEmissao>", "", 1)),
			field: "ListaNfse/CompNfse[0]/Nfse/InfNfse/DataEmissao",
		},
		{
			name:  "no Discriminacao",
			xml:   document(strings.Replace(compNfse(1, recipientCNPJ), "<Discriminacao>Servico</Discriminacao>", "", 1)),
			field: "ListaNfse/CompNfse[0]/Nfse/InfNfse/Servico/Discriminacao",
		},
		{
			name:  "no provider Cnpj",
			xml:   document(strings.Replace(compNfse(1, recipientCNPJ), "<Cnpj>12345678000199</Cnpj>", "", 1)),
			field: "ListaNfse/CompNfse[0]/Nfse/InfNfse/PrestadorServico/IdentificacaoPrestador/Cnpj",
		},
		{
			name:  "no CpfCnpj container",
			xml:   document(compNfse(1, `<Cnpj>98765432000155</Cnpj>`)),
			field: "ListaNfse/CompNfse[0]/Nfse/InfNfse/TomadorServico/IdentificacaoTomador/CpfCnpj",
		},
		{
			name:  "second envelope broken",
			xml:   document(compNfse(1, recipientCNPJ) + `<CompNfse><Nfse/></CompNfse>`),
			field: "ListaNfse/CompNfse[1]/Nfse/InfNfse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := decode(t, []byte(tt.xml))
			require.Error(t, err)
			assert.Nil(t, resp)

			var parseErr *model.ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tt.field, parseErr.Field)
		})
	}
}

func TestDecoder_WrongFieldTypes(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
	}{
		{"negative number", "<Numero>1</Numero>", "<Numero>-1</Numero>"},
		{"text number", "<Numero>1</Numero>", "<Numero>abc</Numero>"},
		{"number overflow", "<Numero>1</Numero>", "<Numero>4294967296</Numero>"},
		{"comma decimal", "<ValorServicos>10.50</ValorServicos>", "<ValorServicos>10,50</ValorServicos>"},
		{"empty amount", "<ValorServicos>10.50</ValorServicos>", "<ValorServicos/>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			xml := document(strings.Replace(compNfse(1, recipientCNPJ), tt.from, tt.to, 1))
			_, err := decode(t, []byte(xml))
			require.Error(t, err)

			var parseErr *model.ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.NotNil(t, parseErr.Cause)
		})
	}
}

func TestDecoder_MaxNumber(t *testing.T) {
	xml := document(strings.Replace(compNfse(1, recipientCNPJ), "<Numero>1</Numero>", "<Numero>4294967295</Numero>", 1))
	resp, err := decode(t, []byte(xml))
	require.NoError(t, err)
	assert.Equal(t, uint32(4294967295), resp.Envelopes[0].Invoice.Detail.Number)
}

func TestDecoder_InvalidXML(t *testing.T) {
	inputs := map[string]string{
		"unclosed":         `<Invalid><Unclosed>`,
		"not xml":          `not xml`,
		"empty":            ``,
		"mismatch":         `<ConsultarNfseResposta><ListaNfse></Lista></ConsultarNfseResposta>`,
		"bare text":        `   `,
		"trailing garbage": document(compNfse(1, recipientCNPJ)) + `<<<garbage`,
		"trailing element": document(compNfse(1, recipientCNPJ)) + `<ConsultarNfseResposta/>`,
		"trailing text":    document(compNfse(1, recipientCNPJ)) + ` fim`,
		"trailing close":   document(compNfse(1, recipientCNPJ)) + `</ListaNfse>`,
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := decode(t, []byte(input))
			require.Error(t, err)

			var parseErr *model.ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, "xml", parseErr.Field)
		})
	}
}

func TestDecoder_TrailingMiscellany(t *testing.T) {
	xml := document(compNfse(4, recipientCNPJ)) + "\n<!-- gerado em 2024-01-01 -->\n<?processado sim?>\n"

	resp, err := decode(t, []byte(xml))
	require.NoError(t, err)
	require.Len(t, resp.Envelopes, 1)
	assert.Equal(t, uint32(4), resp.Envelopes[0].Invoice.Detail.Number)
}

func TestDecoder_DuplicateElements(t *testing.T) {
	comp := compNfse(7, recipientCNPJ)

	tests := []struct {
		name  string
		xml   string
		field string
	}{
		{
			name:  "repeated Numero",
			xml:   document(strings.Replace(comp, "<Numero>7</Numero>", "<Numero>7</Numero><Numero>8</Numero>", 1)),
			field: "ListaNfse/CompNfse[0]/Nfse/InfNfse/Numero",
		},
		{
			name: "repeated ListaNfse",
			xml: `<ConsultarNfseResposta><ListaNfse>` + comp + `</ListaNfse><ListaNfse>` +
				compNfse(8, recipientCNPJ) + `</ListaNfse></ConsultarNfseResposta>`,
			field: "ListaNfse",
		},
		{
			name:  "repeated CpfCnpj",
			xml:   document(compNfse(7, recipientCNPJ+`<CpfCnpj><Cpf>12345678909</Cpf></CpfCnpj>`)),
			field: "ListaNfse/CompNfse[0]/Nfse/InfNfse/TomadorServico/IdentificacaoTomador/CpfCnpj",
		},
		{
			name:  "repeated recipient Cnpj",
			xml:   document(compNfse(7, `<CpfCnpj><Cnpj>98765432000155</Cnpj><Cnpj>11222333000181</Cnpj></CpfCnpj>`)),
			field: "ListaNfse/CompNfse[0]/Nfse/InfNfse/TomadorServico/IdentificacaoTomador/CpfCnpj/Cnpj",
		},
		{
			name:  "repeated Servico",
			xml:   document(strings.Replace(comp, "</Servico>", "</Servico><Servico/>", 1)),
			field: "ListaNfse/CompNfse[0]/Nfse/InfNfse/Servico",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := decode(t, []byte(tt.xml))
			require.Error(t, err)
			assert.Nil(t, resp)

			var parseErr *model.ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tt.field, parseErr.Field)
			assert.Equal(t, "duplicate element", parseErr.Message)
		})
	}
}

func TestDecoder_TrimsSurroundingWhitespace(t *testing.T) {
	comp := strings.Replace(compNfse(3, recipientCNPJ), "<ValorServicos>10.50</ValorServicos>",
		"<ValorServicos>\n   10.50\n </ValorServicos>", 1)
	comp = strings.Replace(comp, "<Numero>3</Numero>", "<Numero> 3 </Numero>", 1)

	resp, err := decode(t, []byte(document(comp)))
	require.NoError(t, err)

	detail := resp.Envelopes[0].Invoice.Detail
	assert.Equal(t, uint32(3), detail.Number)
	assert.True(t, detail.Service.Amount.Equal(decimal.RequireFromString("10.5")))
}

func TestDecoder_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := xmlparser.NewDecoder().DecodeString(ctx, document(compNfse(1, recipientCNPJ)))
	require.ErrorIs(t, err, context.Canceled)
}

func TestDecoder_IndependentResults(t *testing.T) {
	content := readTestFile(t, "consulta_nfse.xml")

	first, err := decode(t, content)
	require.NoError(t, err)
	second, err := decode(t, content)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotSame(t, first, second)

	// Mutating one result must not leak into the other
	first.Envelopes[0].Invoice.Detail.Number = 0
	assert.Equal(t, uint32(1001), second.Envelopes[0].Invoice.Detail.Number)
}

// Helper functions

const recipientCNPJ = `<CpfCnpj><Cnpj>98765432000155</Cnpj></CpfCnpj>`

func compNfse(number uint32, recipientIdent string) string {
	return fmt.Sprintf(`<CompNfse><Nfse><InfNfse>
	<Numero>%d</Numero>
	<DataEmissao>2024-01-01</DataEmissao>
	<Servico>
		<Valores><ValorServicos>10.50</ValorServicos></Valores>
		<Discriminacao>Servico</Discriminacao>
	</Servico>
	<PrestadorServico>
		<IdentificacaoPrestador><Cnpj>12345678000199</Cnpj></IdentificacaoPrestador>
		<RazaoSocial>Prestadora</RazaoSocial>
	</PrestadorServico>
	<TomadorServico>
		<IdentificacaoTomador>%s</IdentificacaoTomador>
		<RazaoSocial>Tomadora</RazaoSocial>
	</TomadorServico>
</InfNfse></Nfse></CompNfse>`, number, recipientIdent)
}

func document(comps string) string {
	return `<?xml version="1.0" encoding="UTF-8"?><ConsultarNfseResposta><ListaNfse>` +
		comps + `</ListaNfse></ConsultarNfseResposta>`
}

func readTestFile(t *testing.T, filename string) []byte {
	t.Helper()
	path := filepath.Join("testdata", filename)
	content, err := os.ReadFile(path)
	require.NoError(t, err, "failed to read test file: %s", filename)
	return content
}

func decode(t *testing.T, content []byte) (*model.InvoiceResponse, error) {
	t.Helper()
	return xmlparser.NewDecoder().DecodeString(context.Background(), string(content))
}
