package ledgerrecon

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(account, label, date string, debit, credit float64) *LedgerEntry {
	return &LedgerEntry{
		Account: account,
		Label:   label,
		Date:    date,
		Debit:   decimal.NewFromFloat(debit),
		Credit:  decimal.NewFromFloat(credit),
	}
}

func TestAnalyticsComputeBalancesByType(t *testing.T) {
	entries := []*LedgerEntry{
		entry("512000", "FA-001 virement client", "2024-03-15", 1000, 0),
		entry("411000", "FA-001 facture Dupont", "2024-03-14", 0, 1000),
		entry("607000", "achat fournitures", "2024-03-16", 250, 0),
		entry("401000", "facture fournisseur", "2024-03-16", 0, 250),
	}

	a := NewAnalytics(zerolog.Nop())
	c := a.Compute(entries, "gl.json", DefaultAnomalyConfig())

	require.Equal(t, 4, c.EntryCount)
	assert.True(t, c.TotalDebit.Equal(decimal.NewFromInt(1250)))
	assert.True(t, c.TotalCredit.Equal(decimal.NewFromInt(1250)))
	assert.True(t, c.Balance.IsZero())

	banque := c.BalancesByType[TypeBanque]
	require.NotNil(t, banque)
	assert.Equal(t, 1, banque.EntryCount)
	assert.True(t, banque.TotalDebit.Equal(decimal.NewFromInt(1000)))

	assert.Equal(t, "2024-03-14", c.DateAnalysis.PeriodStart)
	assert.Equal(t, "2024-03-16", c.DateAnalysis.PeriodEnd)
	assert.Equal(t, 2, c.DateAnalysis.DurationDays)
}

func TestAnalyticsFlagsDuplicateEntries(t *testing.T) {
	entries := []*LedgerEntry{
		entry("607000", "achat fournitures bureau", "2024-03-16", 250, 0),
		entry("607000", "achat fournitures bureau", "2024-03-16", 250, 0),
	}

	a := NewAnalytics(zerolog.Nop())
	c := a.Compute(entries, "gl.json", DefaultAnomalyConfig())

	foundDuplicate := false
	for _, an := range c.Anomalies {
		if an.Kind == "duplicate" {
			foundDuplicate = true
		}
	}
	assert.True(t, foundDuplicate, "expected a duplicate-entry anomaly, got %+v", c.Anomalies)
}

func TestAnalyticsSkipsDuplicateAnomaliesWhenDisabled(t *testing.T) {
	entries := []*LedgerEntry{
		entry("607000", "achat fournitures bureau", "2024-03-16", 250, 0),
		entry("607000", "achat fournitures bureau", "2024-03-16", 250, 0),
	}

	cfg := DefaultAnomalyConfig()
	cfg.AlertOnDuplicateTransactions = false

	a := NewAnalytics(zerolog.Nop())
	c := a.Compute(entries, "gl.json", cfg)

	for _, an := range c.Anomalies {
		assert.NotEqual(t, "duplicate", an.Kind, "duplicate anomaly should be suppressed when disabled")
	}
}

func TestAnalyticsIsIdempotentGivenSameInput(t *testing.T) {
	entries := []*LedgerEntry{
		entry("512000", "virement", "2024-03-15", 500, 0),
		entry("411000", "facture", "2024-03-15", 0, 500),
	}

	a := NewAnalytics(zerolog.Nop())
	first := a.Compute(entries, "gl.json", DefaultAnomalyConfig())
	second := a.Compute(entries, "gl.json", DefaultAnomalyConfig())

	assert.True(t, first.TotalDebit.Equal(second.TotalDebit))
	assert.True(t, first.Balance.Equal(second.Balance))
	assert.Equal(t, first.EntryCount, second.EntryCount)
	assert.Equal(t, len(first.Anomalies), len(second.Anomalies))
}
