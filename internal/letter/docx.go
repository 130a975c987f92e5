// docx.go - Fills the bilingual Word letter templates

package letter

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/bosocmputer/guarantee_letter_gemini/internal/ai"
	"github.com/nguyenthenguyen/docx"
)

// Template file names expected under the configured template directory.
const (
	TemplatePerformance = "performance-bond-contract-letter.docx"
	TemplateTender      = "bid-bond-tender-letter.docx"
)

// TemplatePath returns the template file for a guarantee type.
func TemplatePath(templateDir string, guaranteeType ai.GuaranteeType) string {
	name := TemplateTender
	if guaranteeType == ai.PerformanceBond {
		name = TemplatePerformance
	}
	return filepath.Join(templateDir, name)
}

// FillTemplate opens the Word template for the guarantee type, substitutes
// every placeholder from the field set and returns the filled .docx bytes.
// Empty fields are substituted as empty strings; a missing value never makes
// the fill fail. Arabic-script values fall back to their English
// counterparts, matching the letter builder.
func FillTemplate(fields ai.GuaranteeFields, guaranteeType ai.GuaranteeType, templateDir string) ([]byte, error) {
	path := TemplatePath(templateDir, guaranteeType)

	reader, err := docx.ReadDocxFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open template %s: %w", path, err)
	}
	defer reader.Close()

	doc := reader.Editable()

	bankAr := fields.BankNameAr
	if bankAr == "" {
		bankAr = fields.BankName
	}
	companyAr := fields.CompanyNameAr
	if companyAr == "" {
		companyAr = fields.CompanyName
	}

	replacements := map[string]string{
		"{{DATE}}":             fields.Date,
		"{{BANK_NAME}}":        fields.BankName,
		"{{BANK_NAME_AR}}":     bankAr,
		"{{GUARANTEE_NUMBER}}": fields.GuaranteeNumber,
		"{{GUARANTEE_DATE}}":   fields.GuaranteeDate,
		"{{AMOUNT}}":           fields.Amount,
		"{{COMPANY_NAME}}":     fields.CompanyName,
		"{{COMPANY_NAME_AR}}":  companyAr,
	}

	for placeholder, value := range replacements {
		if err := doc.Replace(placeholder, value, -1); err != nil {
			return nil, fmt.Errorf("failed to substitute %s: %w", placeholder, err)
		}
	}

	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write filled template: %w", err)
	}
	return buf.Bytes(), nil
}
