// fields.go - Guarantee field set and type labels

package ai

import "fmt"

// GuaranteeType is the caller-selected kind of bank guarantee.
type GuaranteeType string

const (
	TenderBond      GuaranteeType = "Tender Bond Guarantee"
	PerformanceBond GuaranteeType = "Performance Bond Guarantee"
)

// ParseGuaranteeType validates a guarantee type label from the caller.
// Both the full display label and a short form are accepted.
func ParseGuaranteeType(s string) (GuaranteeType, error) {
	switch s {
	case string(TenderBond), "tender_bond":
		return TenderBond, nil
	case string(PerformanceBond), "performance_bond":
		return PerformanceBond, nil
	}
	return "", fmt.Errorf("unsupported guarantee type: %q", s)
}

// FieldKeys is the fixed key set of an extraction result. Every key is
// always present after a successful extraction; absent values are empty
// strings, never missing keys.
var FieldKeys = []string{
	"date",
	"bank_name",
	"bank_name_ar",
	"guarantee_number",
	"guarantee_date",
	"amount",
	"company_name",
	"company_name_ar",
	"guarantee_type_ar",
}

// GuaranteeFields holds the reviewed/extracted data for one guarantee
// document. All values are free-text strings. A fresh value set is created
// per extraction and superseded wholesale; attempts are never merged.
type GuaranteeFields struct {
	Date            string `json:"date"`
	BankName        string `json:"bank_name"`
	BankNameAr      string `json:"bank_name_ar"`
	GuaranteeNumber string `json:"guarantee_number"`
	GuaranteeDate   string `json:"guarantee_date"`
	Amount          string `json:"amount"`
	CompanyName     string `json:"company_name"`
	CompanyNameAr   string `json:"company_name_ar"`
	GuaranteeTypeAr string `json:"guarantee_type_ar"`
}

// FieldsFromMap builds a GuaranteeFields from a recovered record,
// backfilling any key the model omitted with an empty string.
// Unrecognized keys (including the English guarantee_type echo the prompt
// asks for) are dropped; the caller's own label is authoritative.
func FieldsFromMap(record map[string]string) GuaranteeFields {
	get := func(key string) string { return record[key] }

	return GuaranteeFields{
		Date:            get("date"),
		BankName:        get("bank_name"),
		BankNameAr:      get("bank_name_ar"),
		GuaranteeNumber: get("guarantee_number"),
		GuaranteeDate:   get("guarantee_date"),
		Amount:          get("amount"),
		CompanyName:     get("company_name"),
		CompanyNameAr:   get("company_name_ar"),
		GuaranteeTypeAr: get("guarantee_type_ar"),
	}
}

// ToMap renders the field set as a complete map over FieldKeys.
func (f GuaranteeFields) ToMap() map[string]string {
	return map[string]string{
		"date":              f.Date,
		"bank_name":         f.BankName,
		"bank_name_ar":      f.BankNameAr,
		"guarantee_number":  f.GuaranteeNumber,
		"guarantee_date":    f.GuaranteeDate,
		"amount":            f.Amount,
		"company_name":      f.CompanyName,
		"company_name_ar":   f.CompanyNameAr,
		"guarantee_type_ar": f.GuaranteeTypeAr,
	}
}
