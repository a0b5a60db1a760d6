package ledgerrecon

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditLogRecordsAndReplaysEvents(t *testing.T) {
	dbFile := "test_audit_log.db"
	store, err := NewDocumentStore(dbFile)
	require.NoError(t, err)
	defer func() {
		store.Close()
		os.Remove(dbFile)
	}()

	log := NewAuditLog(store)

	alerts := []*Alert{{ID: "alert-1", Kind: KindEcartMontant, Severity: SeverityHigh}}
	_, err = log.RecordDetectPass("gl-1", alerts, "tester")
	require.NoError(t, err)

	_, err = log.RecordCorrection("gl-1", "REF001", []byte(`{"debit":"100"}`), "tester")
	require.NoError(t, err)

	var kinds []string
	require.NoError(t, log.Replay(func(e *AuditEvent) error {
		kinds = append(kinds, e.Kind)
		return nil
	}))
	assert.Equal(t, []string{EventDetectPass, EventCorrection}, kinds)

	last, err := log.LastDetectPass("gl-1")
	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.Equal(t, KindEcartMontant, last[0].Kind)
}
