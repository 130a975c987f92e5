// prompt.go - Extraction prompt template

package ai

import "strings"

// promptKeys is the exact key list the model is asked to return. It includes
// an English guarantee_type echo alongside the fixed field set; the
// orchestrator discards the echo in favor of the caller's label.
var promptKeys = []string{
	"date",
	"bank_name",
	"bank_name_ar",
	"guarantee_number",
	"guarantee_date",
	"amount",
	"company_name",
	"company_name_ar",
	"guarantee_type",
	"guarantee_type_ar",
}

// BuildExtractionPrompt returns the fixed instruction payload for one
// extraction attempt, parameterized only by the guarantee type label.
func BuildExtractionPrompt(guaranteeType GuaranteeType) string {
	var b strings.Builder

	b.WriteString("You are extracting data from a bank guarantee document. ")
	b.WriteString("The document may be in Arabic, English, or both. ")
	b.WriteString("Only use text you can see in the document. ")
	b.WriteString("For each field, provide TWO versions: one in English (translate if needed) and one in Arabic (translate if needed). ")
	b.WriteString("Return JSON with exactly these keys: ")
	b.WriteString(strings.Join(promptKeys, ", "))
	b.WriteString(". ")
	b.WriteString("The '_ar' keys must contain the Arabic version. Non-_ar keys must be in English. ")
	b.WriteString("If a field is missing, set it to null. ")
	b.WriteString("Guarantee type is: " + string(guaranteeType) + ".")

	return b.String()
}
