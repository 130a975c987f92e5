// letter.go - Bilingual confirmation letter rendering

package letter

import (
	"strings"

	"github.com/bosocmputer/guarantee_letter_gemini/internal/ai"
)

// Separator divides the English and Arabic halves of a combined letter.
const Separator = "============================================================"

// BuildLetter renders the combined English + Arabic confirmation letter for
// the reviewed field set. Arabic-script values fall back to their English
// counterparts when the model left them empty; letter generation never fails
// on missing fields.
func BuildLetter(fields ai.GuaranteeFields, guaranteeType ai.GuaranteeType) string {
	english, arabic := BuildLetterParts(fields, guaranteeType)
	return english + "\n" + Separator + "\n\n" + arabic
}

// BuildLetterParts renders the two halves separately for the review UI.
func BuildLetterParts(fields ai.GuaranteeFields, guaranteeType ai.GuaranteeType) (english, arabic string) {
	typeAr := fields.GuaranteeTypeAr
	if typeAr == "" {
		typeAr = string(guaranteeType)
	}
	bankAr := fields.BankNameAr
	if bankAr == "" {
		bankAr = fields.BankName
	}
	companyAr := fields.CompanyNameAr
	if companyAr == "" {
		companyAr = fields.CompanyName
	}

	english = buildEnglishLetter(string(guaranteeType), fields.Date, fields.BankName,
		fields.GuaranteeNumber, fields.GuaranteeDate, fields.Amount, fields.CompanyName)
	arabic = buildArabicLetter(typeAr, fields.Date, bankAr,
		fields.GuaranteeNumber, fields.GuaranteeDate, fields.Amount, companyAr)
	return english, arabic
}

func buildEnglishLetter(guaranteeType, date, bankName, guaranteeNumber, guaranteeDate, amount, companyName string) string {
	header := "Date: " + date + "\n" +
		"To: The Chairman\n" +
		"Municipality and Planning Department - Ajman\n" +
		"P.O. Box 03 Ajman, UAE\n\n" +
		"Subject: Bank Guarantee Confirmation\n\n" +
		"Dear Sir,\n\n"

	body := "We hereby confirm the " + strings.ToLower(guaranteeType) + " issued by " + bankName + ". " +
		"Guarantee No.: " + guaranteeNumber + ", dated " + guaranteeDate + ", " +
		"in the amount of " + amount + ", issued in favor of your department " +
		"on behalf of " + companyName + ".\n\n"

	footer := "Should you require any further information, please contact us.\n\n" +
		"Yours faithfully,\n" +
		"For and on behalf of " + bankName + "\n"

	return header + body + footer
}

func buildArabicLetter(guaranteeType, date, bankName, guaranteeNumber, guaranteeDate, amount, companyName string) string {
	header := "التاريخ: " + date + "\n" +
		"إلى: السيد الرئيس\n" +
		"بلدية ودائرة التخطيط - عجمان\n" +
		"ص.ب. 03 عجمان، الإمارات العربية المتحدة\n\n" +
		"الموضوع: تأكيد خطاب ضمان بنكي\n\n" +
		"سيدي العزيز،\n\n"

	body := "نؤكد بموجبه " + guaranteeType + " الصادر من " + bankName + ". " +
		"رقم الضمان: " + guaranteeNumber + "، بتاريخ " + guaranteeDate + "، " +
		"بمبلغ " + amount + "، لصالح دائرتكم " +
		"نيابة عن " + companyName + ".\n\n"

	footer := "لأي استفسارات إضافية، يرجى التواصل معنا.\n\n" +
		"مع خالص التقدير،\n" +
		"بالنيابة عن " + bankName + "\n"

	return header + body + footer
}
