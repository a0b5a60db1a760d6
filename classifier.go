package ledgerrecon

import "regexp"

type classifierRule struct {
	accountType AccountType
	pattern     *regexp.Regexp
}

// classifierTable is the ordered (type, regex) sequence used for classification.
// Order matters: it is treated as declarative data so future, more
// specific prefixes can be inserted ahead of broader ones without
// touching ClassifyAccount itself.
var classifierTable = []classifierRule{
	{TypeBanque, regexp.MustCompile(`^512\d*`)},
	{TypeClients, regexp.MustCompile(`^411\d*`)},
	{TypeFournisseurs, regexp.MustCompile(`^401\d*`)},
	{TypeTVADeductible, regexp.MustCompile(`^445661\d*`)},
	{TypeTVACollectee, regexp.MustCompile(`^445711\d*`)},
	{TypeVentes, regexp.MustCompile(`^70\d*`)},
	{TypeAchats, regexp.MustCompile(`^60\d*`)},
	{TypeCharges, regexp.MustCompile(`^6\d*`)},
	{TypeImmobilisations, regexp.MustCompile(`^2\d*`)},
	{TypeStocks, regexp.MustCompile(`^3\d*`)},
	{TypeCapitaux, regexp.MustCompile(`^1\d*`)},
}

// ClassifyAccount maps an account number to its semantic type by the
// first matching pattern in classifierTable; unmatched accounts fall
// back to TypeAutres. Classification is total: every retained
// entry gets exactly one type.
func ClassifyAccount(account string) AccountType {
	for _, rule := range classifierTable {
		if rule.pattern.MatchString(account) {
			return rule.accountType
		}
	}
	return TypeAutres
}
