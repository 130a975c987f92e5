package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverFieldsDirectObject(t *testing.T) {
	record, ok := RecoverFields(`  {"date": "04 Dec"}  `)
	require.True(t, ok)
	assert.Equal(t, "04 Dec", record["date"])
}

func TestRecoverFieldsProseWrapped(t *testing.T) {
	raw := "Here is the JSON you asked for: {\"company_name\": \"Ali\"} hope this helps"
	record, ok := RecoverFields(raw)
	require.True(t, ok)
	assert.Equal(t, "Ali", record["company_name"])
}

func TestRecoverFieldsNoBraces(t *testing.T) {
	_, ok := RecoverFields("I could not find any guarantee data in this document.")
	assert.False(t, ok)
}

func TestRecoverFieldsEmptyText(t *testing.T) {
	_, ok := RecoverFields("   \n  ")
	assert.False(t, ok)
}

func TestRecoverFieldsTwoObjectBlobRejected(t *testing.T) {
	// First-{ to last-} spans both objects, which is not valid JSON.
	_, ok := RecoverFields(`{"bank_name": "A"} {"bank_name": "B"}`)
	assert.False(t, ok)
}

func TestRecoverFieldsEmptyObjectRejected(t *testing.T) {
	_, ok := RecoverFields("{}")
	assert.False(t, ok)
}

func TestRecoverFieldsValueCoercion(t *testing.T) {
	record, ok := RecoverFields(`{"amount": 50000.75, "bank_name": null, "flag": true}`)
	require.True(t, ok)
	assert.Equal(t, "50000.75", record["amount"])
	assert.Equal(t, "", record["bank_name"])
	assert.Equal(t, "true", record["flag"])
}

func TestRecoverFieldsNestedValueRejected(t *testing.T) {
	_, ok := RecoverFields(`{"fields": {"bank_name": "A"}}`)
	assert.False(t, ok)
}

func TestRecoverFieldsArrayTopLevelRejected(t *testing.T) {
	_, ok := RecoverFields(`[{"bank_name": "A"}]`)
	assert.False(t, ok)
}

func TestRecoverFieldsUnbalancedBraces(t *testing.T) {
	_, ok := RecoverFields(`} nothing useful {`)
	assert.False(t, ok)
}
