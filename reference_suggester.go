package ledgerrecon

import (
	"time"

	"github.com/shopspring/decimal"
)

// maxSuggestionDateSkewDays bounds how far apart a bank operation and a
// candidate ledger entry may be dated and still be suggested as a match.
const maxSuggestionDateSkewDays = 3

// Suggestion is a candidate match between a bank operation and one or
// more ledger entries, offered when the reference index finds no
// exact substring hit. It is advisory only: nothing in the core acts
// on a Suggestion without a caller confirming it.
type Suggestion struct {
	Operation *BankOperation
	Entries   []*LedgerEntry
	Score     float64
	MatchType string // "EXACT_AMOUNT", "COMBINATION"
}

// ReferenceSuggester proposes reconciliation matches by amount and
// date proximity when no reference token ties a bank operation to a
// ledger entry. This is a secondary, opt-in enrichment on top of the
// reference index, which itself never guesses.
type ReferenceSuggester struct{}

func NewReferenceSuggester() *ReferenceSuggester {
	return &ReferenceSuggester{}
}

// Suggest returns the best candidate match for op among candidates, or
// nil if nothing scores above zero. Single-entry exact-amount matches
// are tried first; if none qualifies, two-entry combinations that sum
// to the operation amount are tried as a weaker fallback.
func (s *ReferenceSuggester) Suggest(op *BankOperation, candidates []*LedgerEntry) *Suggestion {
	var best *Suggestion
	bestScore := 0.0

	for _, entry := range candidates {
		if !amountsMatch(op.Montant, entry.Net().Abs()) {
			continue
		}
		days, ok := dateSkewDays(op.Date, entry.Date)
		if !ok || days > maxSuggestionDateSkewDays {
			continue
		}
		score := 1.0 - float64(days)*0.1
		if score > bestScore {
			bestScore = score
			best = &Suggestion{Operation: op, Entries: []*LedgerEntry{entry}, Score: score, MatchType: "EXACT_AMOUNT"}
		}
	}
	if best != nil {
		return best
	}

	return s.suggestCombination(op, candidates)
}

// suggestCombination looks for a pair of candidate entries whose net
// amounts sum to the operation's amount, a weaker fallback used when
// no single entry matches exactly.
func (s *ReferenceSuggester) suggestCombination(op *BankOperation, candidates []*LedgerEntry) *Suggestion {
	for i, a := range candidates {
		for j := i + 1; j < len(candidates); j++ {
			b := candidates[j]
			combined := a.Net().Abs().Add(b.Net().Abs())
			if amountsMatch(op.Montant, combined) {
				return &Suggestion{
					Operation: op,
					Entries:   []*LedgerEntry{a, b},
					Score:     0.8,
					MatchType: "COMBINATION",
				}
			}
		}
	}
	return nil
}

func amountsMatch(a, b decimal.Decimal) bool {
	return a.Abs().Equal(b.Abs())
}

// dateSkewDays returns the absolute day difference between two ISO
// dates, or ok=false if either is unparsable/empty.
func dateSkewDays(isoA, isoB string) (days int, ok bool) {
	if isoA == "" || isoB == "" {
		return 0, false
	}
	a, err := time.Parse("2006-01-02", isoA)
	if err != nil {
		return 0, false
	}
	b, err := time.Parse("2006-01-02", isoB)
	if err != nil {
		return 0, false
	}
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return int(diff.Hours() / 24), true
}
