package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	ledgerrecon "github.com/kheiriddine/smart-close"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	severityStyles = map[ledgerrecon.Severity]lipgloss.Style{
		ledgerrecon.SeverityCritical: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		ledgerrecon.SeverityHigh:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208")),
		ledgerrecon.SeverityMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		ledgerrecon.SeverityLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	}
)

func severityLabel(s ledgerrecon.Severity) string {
	style, ok := severityStyles[s]
	if !ok {
		style = lipgloss.NewStyle()
	}
	return style.Render(fmt.Sprintf("[%s]", s))
}

// renderCharacteristics prints a human-readable summary of a
// Characteristics snapshot, formatting decimal amounts with
// go-humanize for thousands separators.
func renderCharacteristics(c *ledgerrecon.Characteristics) {
	fmt.Println(titleStyle.Render("Ledger Characteristics"))
	if c.Error != "" {
		fmt.Printf("%s %s\n", labelStyle.Render("error:"), c.Error)
		return
	}

	fmt.Printf("%s %d\n", labelStyle.Render("entries:"), c.EntryCount)
	fmt.Printf("%s %s\n", labelStyle.Render("total debit:"), humanizeAmount(c.TotalDebit.String()))
	fmt.Printf("%s %s\n", labelStyle.Render("total credit:"), humanizeAmount(c.TotalCredit.String()))
	fmt.Printf("%s %s\n", labelStyle.Render("balance:"), humanizeAmount(c.Balance.String()))
	fmt.Printf("%s %s -> %s (%d days)\n", labelStyle.Render("period:"),
		c.DateAnalysis.PeriodStart, c.DateAnalysis.PeriodEnd, c.DateAnalysis.DurationDays)

	if len(c.AccountsByType) > 0 {
		fmt.Println(labelStyle.Render("balances by type:"))
		types := make([]string, 0, len(c.BalancesByType))
		for t := range c.BalancesByType {
			types = append(types, string(t))
		}
		sort.Strings(types)
		for _, t := range types {
			bal := c.BalancesByType[ledgerrecon.AccountType(t)]
			fmt.Printf("  %-16s debit=%s credit=%s balance=%s (%d entries)\n",
				t, humanizeAmount(bal.TotalDebit.String()), humanizeAmount(bal.TotalCredit.String()),
				humanizeAmount(bal.Balance.String()), bal.EntryCount)
		}
	}

	if len(c.Anomalies) > 0 {
		fmt.Println(labelStyle.Render(fmt.Sprintf("analytic anomalies (%d):", len(c.Anomalies))))
		for _, a := range c.Anomalies {
			fmt.Printf("  - [%s] %s\n", a.Kind, a.Description)
		}
	}
}

// renderAlerts prints one line per alert from a detection pass, most
// severe first.
func renderAlerts(alerts []*ledgerrecon.Alert) {
	fmt.Println(titleStyle.Render(fmt.Sprintf("Detection pass: %d alert(s)", len(alerts))))
	sorted := make([]*ledgerrecon.Alert, len(alerts))
	copy(sorted, alerts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return severityRank(sorted[i].Severity) > severityRank(sorted[j].Severity)
	})
	for _, a := range sorted {
		fmt.Printf("%s %-28s ref=%-16s id=%s\n  %s\n",
			severityLabel(a.Severity), a.Kind, a.Ref, a.ID, a.Description)
	}
}

// renderGuide prints the alert record plus its resolved correction
// guide.
func renderGuide(alert *ledgerrecon.Alert, guide *ledgerrecon.Guide) {
	fmt.Println(titleStyle.Render(guide.Title))
	fmt.Printf("%s %s\n", labelStyle.Render("alert:"), alert.Description)
	fmt.Printf("%s %s\n", labelStyle.Render("action:"), guide.Action)
	if guide.SuggestedAccount != "" {
		fmt.Printf("%s %s\n", labelStyle.Render("suggested account:"), guide.SuggestedAccount)
	}
	if guide.CounterEntryHint != "" {
		fmt.Printf("%s %s\n", labelStyle.Render("counter-entry:"), guide.CounterEntryHint)
	}
	if guide.LabelTemplate != nil {
		fmt.Printf("%s %s\n", labelStyle.Render("suggested label:"), guide.LabelTemplate(alert.Ref, alert.NomClient))
	}
}

func severityRank(s ledgerrecon.Severity) int {
	switch s {
	case ledgerrecon.SeverityCritical:
		return 3
	case ledgerrecon.SeverityHigh:
		return 2
	case ledgerrecon.SeverityMedium:
		return 1
	default:
		return 0
	}
}

// humanizeAmount renders a decimal string with thousands separators,
// falling back to the raw string if it isn't parseable as a float
// (shouldn't happen for a decimal.Decimal.String() output).
func humanizeAmount(s string) string {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	return humanize.CommafWithDigits(f, 2)
}
