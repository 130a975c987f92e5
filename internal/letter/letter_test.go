package letter

import (
	"strings"
	"testing"

	"github.com/bosocmputer/guarantee_letter_gemini/internal/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFields() ai.GuaranteeFields {
	return ai.GuaranteeFields{
		Date:            "27/08/2026",
		BankName:        "Ajman Bank",
		BankNameAr:      "مصرف عجمان",
		GuaranteeNumber: "TG-2026-0042",
		GuaranteeDate:   "15/08/2026",
		Amount:          "AED 50,000.00",
		CompanyName:     "Gulf Contracting LLC",
		CompanyNameAr:   "شركة الخليج للمقاولات",
		GuaranteeTypeAr: "ضمان ابتدائي",
	}
}

func TestBuildLetterPartsEnglish(t *testing.T) {
	english, _ := BuildLetterParts(sampleFields(), ai.TenderBond)

	assert.Contains(t, english, "Date: 27/08/2026")
	assert.Contains(t, english, "To: The Chairman")
	assert.Contains(t, english, "Municipality and Planning Department - Ajman")
	assert.Contains(t, english, "Subject: Bank Guarantee Confirmation")
	assert.Contains(t, english, "We hereby confirm the tender bond guarantee issued by Ajman Bank.")
	assert.Contains(t, english, "Guarantee No.: TG-2026-0042, dated 15/08/2026")
	assert.Contains(t, english, "in the amount of AED 50,000.00")
	assert.Contains(t, english, "on behalf of Gulf Contracting LLC")
	assert.Contains(t, english, "For and on behalf of Ajman Bank")
}

func TestBuildLetterPartsArabic(t *testing.T) {
	_, arabic := BuildLetterParts(sampleFields(), ai.TenderBond)

	assert.Contains(t, arabic, "التاريخ: 27/08/2026")
	assert.Contains(t, arabic, "نؤكد بموجبه ضمان ابتدائي الصادر من مصرف عجمان.")
	assert.Contains(t, arabic, "رقم الضمان: TG-2026-0042")
	assert.Contains(t, arabic, "نيابة عن شركة الخليج للمقاولات")
	assert.Contains(t, arabic, "بالنيابة عن مصرف عجمان")
}

func TestBuildLetterCombined(t *testing.T) {
	combined := BuildLetter(sampleFields(), ai.PerformanceBond)

	require.Contains(t, combined, Separator)
	parts := strings.SplitN(combined, Separator, 2)
	require.Len(t, parts, 2)
	assert.Contains(t, parts[0], "Dear Sir,")
	assert.Contains(t, parts[1], "سيدي العزيز،")
	assert.Len(t, Separator, 60)
}

func TestBuildLetterArabicFallbacks(t *testing.T) {
	fields := sampleFields()
	fields.BankNameAr = ""
	fields.CompanyNameAr = ""
	fields.GuaranteeTypeAr = ""

	_, arabic := BuildLetterParts(fields, ai.PerformanceBond)

	// Empty Arabic values fall back to the English ones so the letter never
	// renders with holes.
	assert.Contains(t, arabic, "الصادر من Ajman Bank")
	assert.Contains(t, arabic, "نيابة عن Gulf Contracting LLC")
	assert.Contains(t, arabic, "نؤكد بموجبه Performance Bond Guarantee")
}

func TestBuildLetterEmptyFields(t *testing.T) {
	combined := BuildLetter(ai.GuaranteeFields{}, ai.TenderBond)

	// Missing fields leave blanks, never errors or placeholders.
	assert.Contains(t, combined, "Date: \n")
	assert.Contains(t, combined, "Guarantee No.: , dated ")
	assert.NotContains(t, combined, "<nil>")
}
