package model

// TaxIDKind describes which identifiers a TaxID carries
type TaxIDKind string

const (
	TaxIDNeither TaxIDKind = "none"
	TaxIDCNPJ    TaxIDKind = "cnpj"
	TaxIDCPF     TaxIDKind = "cpf"
	TaxIDBoth    TaxIDKind = "both"
)

// TaxID holds a company (CNPJ) and/or individual (CPF) taxpayer identifier.
//
// The source schema expects exactly one of them, but documents carrying both
// or neither are accepted as they are. Use Kind to tell the cases apart.
type TaxID struct {
	CNPJ *string `json:"cnpj,omitempty"`
	CPF  *string `json:"cpf,omitempty"`
}

// NewCNPJ returns a TaxID carrying only a CNPJ
func NewCNPJ(cnpj string) TaxID {
	return TaxID{CNPJ: &cnpj}
}

// NewCPF returns a TaxID carrying only a CPF
func NewCPF(cpf string) TaxID {
	return TaxID{CPF: &cpf}
}

// Kind reports which identifiers are present
func (t TaxID) Kind() TaxIDKind {
	switch {
	case t.CNPJ != nil && t.CPF != nil:
		return TaxIDBoth
	case t.CNPJ != nil:
		return TaxIDCNPJ
	case t.CPF != nil:
		return TaxIDCPF
	default:
		return TaxIDNeither
	}
}

// Value returns the populated identifier, preferring the CNPJ
func (t TaxID) Value() (string, bool) {
	if t.CNPJ != nil {
		return *t.CNPJ, true
	}
	if t.CPF != nil {
		return *t.CPF, true
	}
	return "", false
}

// CNPJValue returns the CNPJ or an empty string
func (t TaxID) CNPJValue() string {
	if t.CNPJ == nil {
		return ""
	}
	return *t.CNPJ
}

// CPFValue returns the CPF or an empty string
func (t TaxID) CPFValue() string {
	if t.CPF == nil {
		return ""
	}
	return *t.CPF
}
