package ledgerrecon

import (
	"strings"

	"github.com/shopspring/decimal"
)

// accountAliases lists, in probe order, the raw keys that map onto
// each canonical GL field.
var accountAliases = []string{"n° compte", "numero_compte", "compte", "N° Compte"}
var labelAliases = []string{"libellé", "libelle", "description", "Libellé"}
var dateAliases = []string{"date", "Date", "DATE"}
var debitAliases = []string{"débit", "debit", "DÉBIT"}
var creditAliases = []string{"crédit", "credit", "CRÉDIT"}

func probeString(raw map[string]interface{}, aliases []string) (string, bool) {
	for _, key := range aliases {
		if v, ok := raw[key]; ok {
			if s, ok := v.(string); ok {
				return strings.TrimSpace(s), true
			}
		}
	}
	return "", false
}

func probeAmount(raw map[string]interface{}, aliases []string) decimal.Decimal {
	for _, key := range aliases {
		if v, ok := raw[key]; ok {
			return ParseAmount(v)
		}
	}
	return decimal.Zero
}

// NormalizeEntry collapses a raw, heterogeneously-keyed record into a
// canonical LedgerEntry. Returns (nil, false) when the record
// lacks an account: the entry is discarded, not treated as an error.
func NormalizeEntry(raw map[string]interface{}) (*LedgerEntry, bool) {
	account, ok := probeString(raw, accountAliases)
	if !ok || account == "" {
		return nil, false
	}

	label, _ := probeString(raw, labelAliases)
	rawDate, _ := probeString(raw, dateAliases)

	entry := &LedgerEntry{
		Account: NormalizeAccount(account),
		Label:   label,
		Date:    ParseDate(rawDate),
		Debit:   probeAmount(raw, debitAliases),
		Credit:  probeAmount(raw, creditAliases),
	}
	return entry, true
}
