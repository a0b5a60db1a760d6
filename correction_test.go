package ledgerrecon

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCorrectionOrchestrator(t *testing.T) (*CorrectionOrchestrator, *DocumentStore, func()) {
	t.Helper()
	dbFile := "test_correction_" + t.Name() + ".db"
	store, err := NewDocumentStore(dbFile)
	require.NoError(t, err)
	audit := NewAuditLog(store)
	orch := NewCorrectionOrchestrator(store, audit, NewLogger(nil, false))
	return orch, store, func() {
		store.Close()
		os.Remove(dbFile)
	}
}

func TestCorrectGLReplacesOnlyEntriesMatchingReference(t *testing.T) {
	orch, store, cleanup := newTestCorrectionOrchestrator(t)
	defer cleanup()

	doc := map[string]interface{}{
		"ecritures_comptables": []interface{}{
			map[string]interface{}{"N° Compte": "512000", "Libellé": "REF001 reglement", "débit": "100", "crédit": "0"},
			map[string]interface{}{"N° Compte": "607000", "Libellé": "unrelated purchase", "débit": "50", "crédit": "0"},
		},
	}
	content, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, store.SaveDocument("gl-1", "grandlivre", content))

	newEntries := []map[string]interface{}{
		{"N° Compte": "512000", "Libellé": "REF001 reglement corrige", "débit": "120", "crédit": "0"},
	}
	require.NoError(t, orch.CorrectGL("gl-1", "REF001", newEntries, "tester"))

	raw, err := store.GetDocument("gl-1")
	require.NoError(t, err)
	entries, err := ParseGLDocument(raw)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var sawUnrelated, sawCorrected bool
	for _, e := range entries {
		if e.Account == "607000" {
			sawUnrelated = true
		}
		if e.Account == "512000" {
			sawCorrected = true
			assert.Equal(t, "120.00", e.Debit.StringFixed(2))
		}
	}
	assert.True(t, sawUnrelated, "correction must not touch entries for other references")
	assert.True(t, sawCorrected)
}

func TestCorrectSourceDocumentAgainstUnknownRefIsANoOp(t *testing.T) {
	orch, _, cleanup := newTestCorrectionOrchestrator(t)
	defer cleanup()

	err := orch.CorrectSourceDocument("NOPE", SourceDocument{KeyTotalTTC: "1"}, "tester")
	assert.NoError(t, err)
}

func TestCorrectSourceDocumentMergesKeys(t *testing.T) {
	orch, store, cleanup := newTestCorrectionOrchestrator(t)
	defer cleanup()

	require.NoError(t, store.SaveInvoice("FA2024002", SourceDocument{
		KeyNumeroFacture: "FA2024002",
		KeyTotalTTC:      "200",
		KeyNomClient:     "Dupont",
	}))

	require.NoError(t, orch.CorrectSourceDocument("FA2024002", SourceDocument{KeyTotalTTC: "250"}, "tester"))

	updated, err := store.GetInvoice("FA2024002")
	require.NoError(t, err)
	assert.Equal(t, "250", updated[KeyTotalTTC])
	assert.Equal(t, "Dupont", updated[KeyNomClient])
}
