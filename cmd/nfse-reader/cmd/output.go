package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	money "github.com/rezonia/nfse-reader/internal/decimal"
	"github.com/rezonia/nfse-reader/internal/model"
)

func outputRecords(w io.Writer, format string, records []model.InvoiceDetail) error {
	switch format {
	case "json":
		return outputJSON(w, records)
	case "table":
		return outputTable(w, records)
	case "csv":
		return outputCSV(w, records)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func outputJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func outputTable(w io.Writer, records []model.InvoiceDetail) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NUMBER\tISSUED\tPROVIDER\tPROVIDER CNPJ\tRECIPIENT\tRECIPIENT ID\tAMOUNT")
	fmt.Fprintln(tw, "------\t------\t--------\t-------------\t---------\t------------\t------")

	for _, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Number,
			r.IssueDate,
			r.Provider.LegalName,
			displayTaxID(r.Provider.TaxID),
			r.Recipient.LegalName,
			displayTaxID(r.Recipient.TaxID),
			money.FormatBRL(r.Service.Amount),
		)
	}

	amounts := lo.Map(records, func(r model.InvoiceDetail, _ int) decimal.Decimal {
		return r.Service.Amount
	})
	fmt.Fprintf(tw, "\t\t\t\t\tTOTAL (%d)\t%s\n", len(records), money.FormatBRL(money.Sum(amounts)))

	return tw.Flush()
}

func outputCSV(w io.Writer, records []model.InvoiceDetail) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"number", "issue_date", "amount", "description",
		"provider_name", "provider_cnpj",
		"recipient_name", "recipient_cnpj", "recipient_cpf",
	}); err != nil {
		return err
	}

	for _, r := range records {
		if err := cw.Write([]string{
			strconv.FormatUint(uint64(r.Number), 10),
			r.IssueDate,
			money.Plain(r.Service.Amount),
			r.Service.Description,
			r.Provider.LegalName,
			r.Provider.TaxID.CNPJValue(),
			r.Recipient.LegalName,
			r.Recipient.TaxID.CNPJValue(),
			r.Recipient.TaxID.CPFValue(),
		}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func displayTaxID(id model.TaxID) string {
	switch id.Kind() {
	case model.TaxIDCNPJ:
		return "CNPJ " + id.CNPJValue()
	case model.TaxIDCPF:
		return "CPF " + id.CPFValue()
	case model.TaxIDBoth:
		return "CNPJ " + id.CNPJValue() + " / CPF " + id.CPFValue()
	default:
		return "-"
	}
}
