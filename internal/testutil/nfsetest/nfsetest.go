// Package nfsetest builds NFSe response documents and files for tests.
package nfsetest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Comp returns a complete CompNfse element for the given invoice number.
// The recipient is identified by CNPJ.
func Comp(number uint32) string {
	return CompWithRecipient(number, `<CpfCnpj><Cnpj>98765432000155</Cnpj></CpfCnpj>`)
}

// CompWithRecipient returns a CompNfse element with a custom IdentificacaoTomador body
func CompWithRecipient(number uint32, recipientIdent string) string {
	return fmt.Sprintf(`<CompNfse><Nfse><InfNfse>
	<Numero>%d</Numero>
	<DataEmissao>2024-01-01T09:00:00</DataEmissao>
	<Servico>
		<Valores><ValorServicos>%d.50</ValorServicos></Valores>
		<Discriminacao>Servico %d</Discriminacao>
	</Servico>
	<PrestadorServico>
		<IdentificacaoPrestador><Cnpj>12345678000199</Cnpj></IdentificacaoPrestador>
		<RazaoSocial>Prestadora Exemplo LTDA</RazaoSocial>
	</PrestadorServico>
	<TomadorServico>
		<IdentificacaoTomador>%s</IdentificacaoTomador>
		<RazaoSocial>Tomadora %d</RazaoSocial>
	</TomadorServico>
</InfNfse></Nfse></CompNfse>`, number, number, number, recipientIdent, number)
}

// Document wraps CompNfse elements into a ConsultarNfseResposta document
func Document(comps ...string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<ConsultarNfseResposta xmlns="http://www.abrasf.org.br/nfse.xsd"><ListaNfse>` +
		strings.Join(comps, "\n") +
		`</ListaNfse></ConsultarNfseResposta>`
}

// Numbered returns a document with one envelope per number
func Numbered(numbers ...uint32) string {
	comps := make([]string, 0, len(numbers))
	for _, n := range numbers {
		comps = append(comps, Comp(n))
	}
	return Document(comps...)
}

// Invalid is a document missing the mandatory service amount
const Invalid = `<ConsultarNfseResposta><ListaNfse><CompNfse><Nfse><InfNfse>
	<Numero>1</Numero>
	<DataEmissao>2024-01-01</DataEmissao>
	<Servico><Valores></Valores><Discriminacao>x</Discriminacao></Servico>
</InfNfse></Nfse></CompNfse></ListaNfse></ConsultarNfseResposta>`

// WriteFile writes content under dir (creating parents) and returns the path
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
