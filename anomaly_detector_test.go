package ledgerrecon

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findAlert(alerts []*Alert, kind AnomalyKind) *Alert {
	for _, a := range alerts {
		if a.Kind == kind {
			return a
		}
	}
	return nil
}

func TestDetectMissingNumberFlagsDocumentWithoutReference(t *testing.T) {
	snap := Snapshot{
		Docs: []IdentifiedDocument{
			{ID: "doc-1", Doc: SourceDocument{KeyTotalTTC: "100"}},
		},
	}

	d := NewAnomalyDetector(zerolog.Nop())
	alerts := d.Detect(snap, DefaultAnomalyConfig())

	a := findAlert(alerts, KindNumeroManquant)
	require.NotNil(t, a)
	assert.Equal(t, "doc-1", a.DocumentID)
	assert.Equal(t, SourceDoc, a.Source)
}

func TestDetectInvoiceReconciliationFlagsUnmatchedOriginEntry(t *testing.T) {
	snap := Snapshot{
		GLDocumentID: "gl-1",
		GL: []*LedgerEntry{
			entry("411000", "FA2024001 facture Dupont", "2024-03-15", 0, 500),
		},
		Docs: []IdentifiedDocument{
			{ID: "inv-1", Doc: SourceDocument{KeyNumeroFacture: "FA2024001", KeyTotalTTC: "500"}},
		},
	}

	d := NewAnomalyDetector(zerolog.Nop())
	alerts := d.Detect(snap, DefaultAnomalyConfig())

	a := findAlert(alerts, KindFactureNonRapprocheeGL)
	require.NotNil(t, a)
	assert.Equal(t, "FA2024001", a.Ref)
}

func TestDetectMissingNumberIsSuppressedWhenDisabled(t *testing.T) {
	snap := Snapshot{
		Docs: []IdentifiedDocument{
			{ID: "doc-1", Doc: SourceDocument{KeyTotalTTC: "100"}},
		},
	}

	cfg := DefaultAnomalyConfig()
	cfg.AlertOnMissingTransactions = false

	d := NewAnomalyDetector(zerolog.Nop())
	alerts := d.Detect(snap, cfg)

	assert.Nil(t, findAlert(alerts, KindNumeroManquant))
}

func TestDetectChequeNotRecordedIsSuppressedWhenMissingTransactionsDisabled(t *testing.T) {
	snap := Snapshot{
		GLDocumentID: "gl-1",
		RLDocumentID: "rl-1",
		RL: []*BankOperation{
			{Date: "2024-03-16", Nature: "CHQ0001 encaissement", Montant: decimal.NewFromInt(500), Type: "credit"},
		},
		Docs: []IdentifiedDocument{
			{ID: "chq-1", Doc: SourceDocument{KeyNumeroCheque: "CHQ0001", KeyMontantCheque: "500"}},
		},
	}

	cfg := DefaultAnomalyConfig()
	cfg.AlertOnMissingTransactions = false

	d := NewAnomalyDetector(zerolog.Nop())
	alerts := d.Detect(snap, cfg)

	assert.Nil(t, findAlert(alerts, KindChequeNonComptabiliseGL))
}

func TestDetectAmountDiscrepancyBeyondTolerance(t *testing.T) {
	snap := Snapshot{
		GLDocumentID: "gl-1",
		RLDocumentID: "rl-1",
		GL: []*LedgerEntry{
			entry("512000", "REF001 reglement", "2024-03-15", 1000, 0),
		},
		RL: []*BankOperation{
			{Date: "2024-03-16", Nature: "REF001 virement", Montant: decimal.NewFromInt(950), Type: "credit"},
		},
	}

	cfg := DefaultAnomalyConfig()
	d := NewAnomalyDetector(zerolog.Nop())
	alerts := d.Detect(snap, cfg)

	a := findAlert(alerts, KindEcartMontant)
	require.NotNil(t, a)
	assert.True(t, a.Delta.Equal(decimal.NewFromInt(50)))
}

func TestDetectAmountDiscrepancyWithinToleranceRaisesNoAlert(t *testing.T) {
	snap := Snapshot{
		GLDocumentID: "gl-1",
		RLDocumentID: "rl-1",
		GL: []*LedgerEntry{
			entry("512000", "REF002 reglement", "2024-03-15", 1000, 0),
		},
		RL: []*BankOperation{
			{Date: "2024-03-16", Nature: "REF002 virement", Montant: decimal.NewFromFloat(999.50), Type: "credit"},
		},
	}

	d := NewAnomalyDetector(zerolog.Nop())
	alerts := d.Detect(snap, DefaultAnomalyConfig())

	assert.Nil(t, findAlert(alerts, KindEcartMontant))
}

func TestDetectNonBusinessDayFlagsWeekendEntries(t *testing.T) {
	snap := Snapshot{
		GLDocumentID: "gl-1",
		GL: []*LedgerEntry{
			entry("512000", "weekend entry", "2024-03-16", 100, 0), // Saturday
		},
	}

	d := NewAnomalyDetector(zerolog.Nop())
	alerts := d.Detect(snap, DefaultAnomalyConfig())

	a := findAlert(alerts, KindJourNonOuvrable)
	require.NotNil(t, a)
	assert.Equal(t, "2024-03-16", a.Date)
}

func TestDetectIsDeterministicAcrossRepeatedPasses(t *testing.T) {
	snap := Snapshot{
		GLDocumentID: "gl-1",
		RLDocumentID: "rl-1",
		GL: []*LedgerEntry{
			entry("512000", "REF003 reglement", "2024-03-16", 1000, 0),
		},
		RL: []*BankOperation{
			{Date: "2024-03-16", Nature: "REF003 virement", Montant: decimal.NewFromInt(700), Type: "credit"},
		},
	}

	d := NewAnomalyDetector(zerolog.Nop())
	cfg := DefaultAnomalyConfig()
	first := d.Detect(snap, cfg)
	second := d.Detect(snap, cfg)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Kind, second[i].Kind)
		assert.Equal(t, first[i].Ref, second[i].Ref)
		assert.Equal(t, first[i].Severity, second[i].Severity)
	}
}
