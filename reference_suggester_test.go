package ledgerrecon

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestExactAmountMatchWithinDateSkew(t *testing.T) {
	op := &BankOperation{Date: "2024-03-17", Montant: decimal.NewFromInt(500)}
	candidates := []*LedgerEntry{
		entry("512000", "unrelated", "2024-03-16", 500, 0),
		entry("512000", "unrelated, larger", "2024-03-16", 800, 0),
	}

	s := NewReferenceSuggester()
	got := s.Suggest(op, candidates)
	require.NotNil(t, got)
	assert.Equal(t, "EXACT_AMOUNT", got.MatchType)
	assert.Len(t, got.Entries, 1)
}

func TestSuggestRejectsMatchBeyondDateSkew(t *testing.T) {
	op := &BankOperation{Date: "2024-03-30", Montant: decimal.NewFromInt(500)}
	candidates := []*LedgerEntry{
		entry("512000", "too far in the past", "2024-03-01", 500, 0),
	}

	s := NewReferenceSuggester()
	assert.Nil(t, s.Suggest(op, candidates))
}

func TestSuggestFallsBackToTwoEntryCombination(t *testing.T) {
	op := &BankOperation{Date: "2024-03-16", Montant: decimal.NewFromInt(500)}
	candidates := []*LedgerEntry{
		entry("512000", "partial a", "2024-03-16", 300, 0),
		entry("512000", "partial b", "2024-03-16", 200, 0),
	}

	s := NewReferenceSuggester()
	got := s.Suggest(op, candidates)
	require.NotNil(t, got)
	assert.Equal(t, "COMBINATION", got.MatchType)
	assert.Len(t, got.Entries, 2)
}
