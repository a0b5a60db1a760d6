package ledgerrecon

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGLDocumentNormalizesEntries(t *testing.T) {
	raw := json.RawMessage(`{
		"ecritures_comptables": [
			{"N° Compte": "512000", "Libellé": "virement", "Date": "15/03/2024", "débit": "1000", "crédit": "0"},
			{"Libellé": "orphan, no account"}
		]
	}`)

	entries, err := ParseGLDocument(raw)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, "512000", entries[0].Account)
	assert.Equal(t, "2024-03-15", entries[0].Date)
}

func TestParseGLDocumentMissingKeyIsAnError(t *testing.T) {
	_, err := ParseGLDocument(json.RawMessage(`{"other": []}`))
	require.Error(t, err)
}

func TestParseRLDocumentParsesOperations(t *testing.T) {
	raw := json.RawMessage(`{
		"operations": [
			{"date": "16/03/2024", "nature": "VIR FA2024001", "montant": "1.000,00", "type": "credit"}
		]
	}`)

	ops, err := ParseRLDocument(raw)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, "2024-03-16", ops[0].Date)
	assert.True(t, ops[0].Montant.Equal(decimal.RequireFromString("1000")))
}
