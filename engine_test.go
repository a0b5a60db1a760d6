package ledgerrecon

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEngineEndToEndReconciliation demonstrates the full pipeline: a GL
// export and an RL export come in, a detection pass raises an alert,
// the alert resolves to a corrective guide, and applying a correction
// against its reference leaves a second pass with no amount-discrepancy
// alert.
func TestEngineEndToEndReconciliation(t *testing.T) {
	dbFile := "test_engine_e2e.db"
	defer os.Remove(dbFile)

	engine, err := NewEngine(dbFile, NewLogger(nil, false))
	require.NoError(t, err)
	defer engine.Close()

	gl := json.RawMessage(`{
		"ecritures_comptables": [
			{"N° Compte": "512000", "Libellé": "REF001 reglement client", "Date": "15/03/2024", "débit": "1000", "crédit": "0"}
		]
	}`)
	require.NoError(t, engine.Store().SaveDocument("gl-1", "grandlivre", gl))

	rl := json.RawMessage(`{
		"operations": [
			{"date": "16/03/2024", "nature": "REF001 virement", "montant": "900", "type": "credit"}
		]
	}`)
	require.NoError(t, engine.Store().SaveDocument("rl-1", "releve", rl))

	alerts, err := engine.DetectAnomalies(DefaultAnomalyConfig(), "test_user")
	require.NoError(t, err)

	var discrepancy *Alert
	for _, a := range alerts {
		if a.Kind == KindEcartMontant {
			discrepancy = a
		}
	}
	require.NotNil(t, discrepancy, "expected an ECART_MONTANT alert, got %+v", alerts)
	assert.True(t, discrepancy.Delta.IsPositive())

	fetched, guide, err := engine.GetAlert(discrepancy.ID)
	require.NoError(t, err)
	assert.Equal(t, discrepancy.Kind, fetched.Kind)
	require.NotNil(t, guide)
	assert.Equal(t, "Écart de montant", guide.Title)

	newEntries := []map[string]interface{}{
		{"N° Compte": "512000", "Libellé": "REF001 reglement client corrige", "Date": "15/03/2024", "débit": "900", "crédit": "0"},
	}
	require.NoError(t, engine.ApplyGLCorrection("gl-1", "REF001", newEntries, "test_user"))

	second, err := engine.DetectAnomalies(DefaultAnomalyConfig(), "test_user")
	require.NoError(t, err)
	for _, a := range second {
		assert.NotEqual(t, KindEcartMontant, a.Kind, "correction should have resolved the amount discrepancy")
	}
}

// TestEngineCorrectionAgainstUnknownReferenceIsANoOp covers the
// reference-miss idempotence policy: a correction targeting a
// reference nothing carries succeeds quietly rather than erroring.
func TestEngineCorrectionAgainstUnknownReferenceIsANoOp(t *testing.T) {
	dbFile := "test_engine_noop.db"
	defer os.Remove(dbFile)

	engine, err := NewEngine(dbFile, NewLogger(nil, false))
	require.NoError(t, err)
	defer engine.Close()

	err = engine.ApplySourceDocumentCorrection("NO-SUCH-REF", SourceDocument{KeyTotalTTC: "1"}, "test_user")
	assert.NoError(t, err)
}

// TestEngineSourceDocumentCorrectionMergesByReference covers the
// invoice-correction path end to end through the store.
func TestEngineSourceDocumentCorrectionMergesByReference(t *testing.T) {
	dbFile := "test_engine_doc_correction.db"
	defer os.Remove(dbFile)

	engine, err := NewEngine(dbFile, NewLogger(nil, false))
	require.NoError(t, err)
	defer engine.Close()

	require.NoError(t, engine.Store().SaveInvoice("FA2024001", SourceDocument{
		KeyNumeroFacture: "FA2024001",
		KeyTotalTTC:      "100",
	}))

	err = engine.ApplySourceDocumentCorrection("FA2024001", SourceDocument{KeyTotalTTC: "150"}, "test_user")
	require.NoError(t, err)

	updated, err := engine.Store().GetInvoice("FA2024001")
	require.NoError(t, err)
	assert.Equal(t, "150", updated[KeyTotalTTC])
	assert.Equal(t, "FA2024001", updated[KeyNumeroFacture])
}
