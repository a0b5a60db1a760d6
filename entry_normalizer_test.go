package ledgerrecon

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEntryAcceptsAnyKnownAlias(t *testing.T) {
	raw := map[string]interface{}{
		"N° Compte": "411000",
		"Libellé":   "FA-2024-001 client Dupont",
		"Date":      "15/03/2024",
		"débit":     "1.234,56",
		"crédit":    0.0,
	}
	entry, ok := NormalizeEntry(raw)
	require.True(t, ok)
	assert.Equal(t, "411000", entry.Account)
	assert.Equal(t, "FA-2024-001 client Dupont", entry.Label)
	assert.Equal(t, "2024-03-15", entry.Date)
	assert.True(t, entry.Debit.Equal(decimal.RequireFromString("1234.56")))
	assert.True(t, entry.Net().Equal(decimal.RequireFromString("1234.56")))
}

func TestNormalizeEntryDiscardsRecordWithoutAccount(t *testing.T) {
	raw := map[string]interface{}{
		"Libellé": "orphan entry, no account field",
	}
	_, ok := NormalizeEntry(raw)
	assert.False(t, ok)
}

func TestNormalizeEntryIsIdempotent(t *testing.T) {
	raw := map[string]interface{}{
		"compte": "512000",
		"date":   "2024-03-15",
		"debit":  "500",
	}
	first, ok := NormalizeEntry(raw)
	require.True(t, ok)

	reRaw := map[string]interface{}{
		"N° Compte": first.Account,
		"Libellé":   first.Label,
		"Date":      first.Date,
		"débit":     first.Debit.String(),
		"crédit":    first.Credit.String(),
	}
	second, ok := NormalizeEntry(reRaw)
	require.True(t, ok)

	assert.Equal(t, first.Account, second.Account)
	assert.Equal(t, first.Date, second.Date)
	assert.True(t, first.Debit.Equal(second.Debit))
	assert.True(t, first.Credit.Equal(second.Credit))
}
