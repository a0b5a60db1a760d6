package ledgerrecon

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// dateLayouts is the ordered list of wire formats tried by ParseDate.
// First success wins.
var dateLayouts = []string{
	"02/01/2006",
	"2006-01-02",
	"02-01-2006",
	"02/01/06",
	"2006/01/02",
	"02.01.2006",
	"2006.01.02",
	"02 01 2006",
	"2006 01 02",
}

var amountStripRe = regexp.MustCompile(`[^0-9.,\-]`)

// ParseAmount parses an amount that may arrive as a real, an integer,
// or a locale-formatted string (FR or EN, with signs and separators).
// Unparsable or empty/"N/A" input yields 0.0, never an error -- value
// parsing is a recoverable error, not a hard failure.
func ParseAmount(raw interface{}) decimal.Decimal {
	switch v := raw.(type) {
	case nil:
		return decimal.Zero
	case float64:
		return decimal.NewFromFloat(v)
	case float32:
		return decimal.NewFromFloat32(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	case string:
		return parseAmountString(v)
	default:
		return decimal.Zero
	}
}

// parseAmountString implements the comma-vs-period heuristic of
// heuristic: strip anything outside [0-9.,-], then if both separators
// are present the rightmost one is decimal and the other is grouping;
// if only a comma is present, it is decimal iff its right segment is
// 1-2 digits, otherwise it is grouping.
func parseAmountString(s string) decimal.Decimal {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || strings.EqualFold(trimmed, "N/A") {
		return decimal.Zero
	}

	negative := strings.HasPrefix(strings.TrimSpace(trimmed), "-")
	stripped := amountStripRe.ReplaceAllString(trimmed, "")
	stripped = strings.TrimPrefix(stripped, "-")
	if stripped == "" {
		return decimal.Zero
	}

	lastComma := strings.LastIndex(stripped, ",")
	lastDot := strings.LastIndex(stripped, ".")

	var normalized string
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			normalized = removeGroupingExceptDecimal(stripped, lastComma, ',')
		} else {
			normalized = removeGroupingExceptDecimal(stripped, lastDot, '.')
		}
	case lastComma >= 0:
		decimalDigits := len(stripped) - lastComma - 1
		if decimalDigits >= 1 && decimalDigits <= 2 {
			normalized = removeGroupingExceptDecimal(stripped, lastComma, ',')
		} else {
			normalized = strings.ReplaceAll(stripped, ",", "")
		}
	case lastDot >= 0:
		decimalDigits := len(stripped) - lastDot - 1
		if decimalDigits >= 1 && decimalDigits <= 2 {
			normalized = stripped
		} else {
			normalized = strings.ReplaceAll(stripped, ".", "")
		}
	default:
		normalized = stripped
	}

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero
	}
	if negative && d.IsPositive() {
		d = d.Neg()
	}
	return d
}

// removeGroupingExceptDecimal drops every occurrence of sep except the
// one at decimalPos, which becomes the decimal point.
func removeGroupingExceptDecimal(s string, decimalPos int, sep byte) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch {
		case i == decimalPos:
			b.WriteByte('.')
		case s[i] == sep || s[i] == ',' || s[i] == '.':
			// any other grouping separator, drop it
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// FormatAmount renders a decimal back to a plain numeric string, the
// inverse used by the amount-parser round-trip property.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// ParseDate tries the ordered dateLayouts list and returns the
// canonical ISO YYYY-MM-DD form, or "" if nothing matched.
func ParseDate(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, trimmed)
		if err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// ToWireDate renders a canonical ISO date as the DD/MM/YYYY form used
// inside GL documents on the wire.
func ToWireDate(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format("02/01/2006")
}

// NormalizeAccount trims an account number string to its canonical
// form (digits and separators as given; classification works on the
// trimmed prefix so no further canonicalization is imposed here).
func NormalizeAccount(raw string) string {
	return strings.TrimSpace(raw)
}

// NormalizeReference canonicalizes a reference token to uppercase,
// references are compared
// case-insensitively by upper-casing both the carrier field and the
// label/nature being searched.
func NormalizeReference(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// IsNonBusinessDay reports whether the ISO date d falls on a weekend
// or is present in the supplied holiday set.
func IsNonBusinessDay(isoDate string, holidays map[string]bool) bool {
	if isoDate == "" {
		return false
	}
	if holidays[isoDate] {
		return true
	}
	t, err := time.Parse("2006-01-02", isoDate)
	if err != nil {
		return false
	}
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
