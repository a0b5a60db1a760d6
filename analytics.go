package ledgerrecon

import (
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// significantThreshold is the |net| cutoff for a "significant" entry.
var significantThreshold = decimal.NewFromInt(10000)

const (
	maxSignificantEntries = 10
	maxActiveAccounts     = 10
	maxAnomalies          = 20
	significantLabelCap   = 50
)

// Analytics computes ledger characteristics snapshots.
type Analytics struct {
	log zerolog.Logger
}

// NewAnalytics creates a ledger analytics engine. A zero zerolog.Logger
// is a valid no-op logger.
func NewAnalytics(log zerolog.Logger) *Analytics {
	return &Analytics{log: log.With().Str("component", "analytics").Logger()}
}

// Compute derives the full characteristics snapshot for a set of
// already-normalized entries. An empty entry set yields a
// snapshot with all zeros and empty maps, never an error. A nil cfg
// falls back to DefaultAnomalyConfig.
func (a *Analytics) Compute(entries []*LedgerEntry, sourceFile string, cfg *AnomalyConfig) *Characteristics {
	if cfg == nil {
		cfg = DefaultAnomalyConfig()
	}
	snap := &Characteristics{
		AccountsByType: map[AccountType][]string{},
		BalancesByType: map[AccountType]*TypeBalance{},
		AccountDetails: map[string]*AccountDetail{},
		SourceFile:     sourceFile,
		ProcessedAt:    time.Now(),
	}
	snap.DateAnalysis.MonthlyDistribution = map[string]int{}

	if len(entries) == 0 {
		a.log.Debug().Msg("computing characteristics over empty entry set")
		return snap
	}

	a.log.Debug().Int("entry_count", len(entries)).Msg("computing ledger characteristics")

	snap.EntryCount = len(entries)

	var totalDebit, totalCredit decimal.Decimal
	accountSeen := map[string]bool{}
	accountEntryCount := map[string]int{}
	accountLabelCount := map[string]map[string]int{}
	accountDetail := map[string]*AccountDetail{}

	var allNets []decimal.Decimal
	var dates []string
	seenTriples := map[string]int{}

	for _, e := range entries {
		totalDebit = totalDebit.Add(e.Debit)
		totalCredit = totalCredit.Add(e.Credit)

		accountType := ClassifyAccount(e.Account)
		if !accountSeen[e.Account] {
			accountSeen[e.Account] = true
			snap.AccountsByType[accountType] = append(snap.AccountsByType[accountType], e.Account)
		}

		tb := snap.BalancesByType[accountType]
		if tb == nil {
			tb = &TypeBalance{}
			snap.BalancesByType[accountType] = tb
		}
		tb.TotalDebit = tb.TotalDebit.Add(e.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(e.Credit)
		tb.Balance = tb.Balance.Add(e.Net())
		tb.EntryCount++

		accountEntryCount[e.Account]++

		detail := accountDetail[e.Account]
		if detail == nil {
			detail = &AccountDetail{EarliestDate: e.Date, LatestDate: e.Date}
			accountDetail[e.Account] = detail
			accountLabelCount[e.Account] = map[string]int{}
		}
		detail.EntryCount++
		detail.TotalDebit = detail.TotalDebit.Add(e.Debit)
		detail.TotalCredit = detail.TotalCredit.Add(e.Credit)
		detail.Balance = detail.Balance.Add(e.Net())
		if e.Date != "" {
			if detail.EarliestDate == "" || e.Date < detail.EarliestDate {
				detail.EarliestDate = e.Date
			}
			if detail.LatestDate == "" || e.Date > detail.LatestDate {
				detail.LatestDate = e.Date
			}
		}
		if e.Label != "" {
			accountLabelCount[e.Account][e.Label]++
		}

		if e.Date == "" {
			snap.DateAnalysis.EntriesWithoutDate++
		} else {
			dates = append(dates, e.Date)
			month := e.Date
			if len(e.Date) >= 7 {
				month = e.Date[:7]
			}
			snap.DateAnalysis.MonthlyDistribution[month]++
		}

		net := e.Net()
		if !net.IsZero() {
			allNets = append(allNets, net.Abs())
		}

		key := e.Account + "|" + e.Date + "|" + net.String()
		seenTriples[key]++

		if accountType == TypeAutres {
			snap.Anomalies = append(snap.Anomalies, AnalyticsAnomaly{
				Kind:        "unusual_account",
				Description: "account matches no classifier pattern",
				Account:     e.Account,
				Date:        e.Date,
			})
		}
	}

	snap.TotalDebit = totalDebit
	snap.TotalCredit = totalCredit
	snap.Balance = totalDebit.Sub(totalCredit)

	a.computeMovements(entries, snap)
	a.computeRatios(snap)
	a.computeDateAnalysis(dates, snap)
	if cfg.AlertOnDuplicateTransactions {
		a.computeDuplicateAnomalies(seenTriples, entries, snap)
	}
	a.computeLargeAmountAnomalies(allNets, entries, snap)

	if len(snap.Anomalies) > maxAnomalies {
		snap.Anomalies = snap.Anomalies[:maxAnomalies]
	}

	for account, detail := range accountDetail {
		detail.PrincipalLabel = mostFrequentLabel(accountLabelCount[account])
		snap.AccountDetails[account] = detail
	}

	return snap
}

func mostFrequentLabel(counts map[string]int) string {
	best := ""
	bestCount := 0
	// deterministic ordering: walk sorted keys so ties always resolve
	// to the lexicographically-first label.
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if counts[k] > bestCount {
			bestCount = counts[k]
			best = k
		}
	}
	return best
}

func (a *Analytics) computeMovements(entries []*LedgerEntry, snap *Characteristics) {
	var largestDebit, largestCredit decimal.Decimal
	var debitSum, creditSum decimal.Decimal
	var debitCount, creditCount int

	type significant struct {
		entry *LedgerEntry
		net   decimal.Decimal
	}
	var sigs []significant

	for _, e := range entries {
		if e.Debit.IsPositive() {
			debitSum = debitSum.Add(e.Debit)
			debitCount++
			if e.Debit.GreaterThan(largestDebit) {
				largestDebit = e.Debit
			}
		}
		if e.Credit.IsPositive() {
			creditSum = creditSum.Add(e.Credit)
			creditCount++
			if e.Credit.GreaterThan(largestCredit) {
				largestCredit = e.Credit
			}
		}
		net := e.Net()
		if net.Abs().GreaterThan(significantThreshold) {
			sigs = append(sigs, significant{e, net})
		}
	}

	snap.Mouvements.LargestDebit = largestDebit
	snap.Mouvements.LargestCredit = largestCredit
	if debitCount > 0 {
		snap.Mouvements.MeanDebit = debitSum.DivRound(decimal.NewFromInt(int64(debitCount)), 4)
	}
	if creditCount > 0 {
		snap.Mouvements.MeanCredit = creditSum.DivRound(decimal.NewFromInt(int64(creditCount)), 4)
	}

	if len(sigs) > maxSignificantEntries {
		sigs = sigs[:maxSignificantEntries]
	}
	for _, s := range sigs {
		label := s.entry.Label
		if len(label) > significantLabelCap {
			label = label[:significantLabelCap]
		}
		snap.Mouvements.SignificantEntries = append(snap.Mouvements.SignificantEntries, SignificantEntry{
			Account: s.entry.Account,
			Label:   label,
			Date:    s.entry.Date,
			Net:     s.net,
		})
	}

	counts := map[string]int{}
	for _, e := range entries {
		counts[e.Account]++
	}
	type acctCount struct {
		account string
		count   int
	}
	var list []acctCount
	for account, count := range counts {
		list = append(list, acctCount{account, count})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].count != list[j].count {
			return list[i].count > list[j].count
		}
		return list[i].account < list[j].account
	})
	if len(list) > maxActiveAccounts {
		list = list[:maxActiveAccounts]
	}
	for _, ac := range list {
		snap.Mouvements.MostActiveAccounts = append(snap.Mouvements.MostActiveAccounts, ActiveAccount{
			Account:    ac.account,
			EntryCount: ac.count,
		})
	}
}

func (a *Analytics) computeRatios(snap *Characteristics) {
	if snap.TotalDebit.IsPositive() {
		r := snap.TotalCredit.DivRound(snap.TotalDebit, 6)
		snap.Ratios.BalanceRatio = &r
	}

	bank := typeBalanceOf(snap, TypeBanque)
	suppliers := typeBalanceOf(snap, TypeFournisseurs)
	equity := typeBalanceOf(snap, TypeCapitaux)
	purchases := typeBalanceOf(snap, TypeAchats)
	stocks := typeBalanceOf(snap, TypeStocks)

	if !suppliers.IsZero() {
		r := bank.DivRound(suppliers.Abs(), 6)
		snap.Ratios.LiquidityRatio = &r
	}
	if !equity.IsZero() {
		r := bank.DivRound(equity, 6)
		snap.Ratios.DebtRatio = &r
	}
	if !stocks.IsZero() {
		r := purchases.DivRound(stocks, 6)
		snap.Ratios.StockRotationRatio = &r
	}
}

func typeBalanceOf(snap *Characteristics, t AccountType) decimal.Decimal {
	tb := snap.BalancesByType[t]
	if tb == nil {
		return decimal.Zero
	}
	return tb.Balance
}

func (a *Analytics) computeDateAnalysis(dates []string, snap *Characteristics) {
	if len(dates) == 0 {
		return
	}
	sort.Strings(dates)
	snap.DateAnalysis.PeriodStart = dates[0]
	snap.DateAnalysis.PeriodEnd = dates[len(dates)-1]

	start, errStart := time.Parse("2006-01-02", dates[0])
	end, errEnd := time.Parse("2006-01-02", dates[len(dates)-1])
	if errStart == nil && errEnd == nil {
		snap.DateAnalysis.DurationDays = int(end.Sub(start).Hours() / 24)
	}
}

func (a *Analytics) computeDuplicateAnomalies(seenTriples map[string]int, entries []*LedgerEntry, snap *Characteristics) {
	// Emit one anomaly per duplicate occurrence beyond the first, in a
	// deterministic (sorted-key) order.
	keys := make([]string, 0, len(seenTriples))
	for k := range seenTriples {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		count := seenTriples[key]
		if count < 2 {
			continue
		}
		for i := 1; i < count; i++ {
			snap.Anomalies = append(snap.Anomalies, AnalyticsAnomaly{
				Kind:        "duplicate",
				Description: "duplicate (account, date, net) combination: " + key,
			})
		}
	}
}

func (a *Analytics) computeLargeAmountAnomalies(allNets []decimal.Decimal, entries []*LedgerEntry, snap *Characteristics) {
	if len(allNets) == 0 {
		return
	}
	threshold := percentile95(allNets)
	for _, e := range entries {
		net := e.Net()
		if net.IsZero() {
			continue
		}
		if net.Abs().GreaterThan(threshold) {
			snap.Anomalies = append(snap.Anomalies, AnalyticsAnomaly{
				Kind:        "large_amount",
				Description: "amount exceeds the 95th percentile of nonzero entries",
				Account:     e.Account,
				Date:        e.Date,
				Net:         net.String(),
			})
		}
	}
}

// percentile95 returns the 95th percentile of a set of nonnegative
// decimals: the sorted value at index floor(0.95*n), clamped to the
// last element.
func percentile95(values []decimal.Decimal) decimal.Decimal {
	sorted := make([]decimal.Decimal, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })

	idx := int(float64(len(sorted)) * 0.95)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
