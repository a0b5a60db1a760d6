package ledgerrecon

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseAmountLocaleHeuristic(t *testing.T) {
	cases := []struct {
		name string
		in   interface{}
		want string
	}{
		{"plain float", 1234.5, "1234.5"},
		{"fr thousands comma decimal", "1.234,56", "1234.56"},
		{"en thousands dot decimal", "1,234.56", "1234.56"},
		{"comma as decimal, two digits", "1234,56", "1234.56"},
		{"comma as grouping, three digits", "1,234", "1234"},
		{"dot as decimal, two digits", "1234.56", "1234.56"},
		{"dot as grouping, three digits", "1.234", "1234"},
		{"negative value", "-45,90", "-45.9"},
		{"not available", "N/A", "0"},
		{"empty string", "", "0"},
		{"nil", nil, "0"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ParseAmount(c.in)
			want, err := decimal.NewFromString(c.want)
			assert.NoError(t, err)
			assert.True(t, want.Equal(got), "ParseAmount(%v) = %s, want %s", c.in, got, want)
		})
	}
}

func TestParseDateFormats(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"15/03/2024", "2024-03-15"},
		{"2024-03-15", "2024-03-15"},
		{"15-03-2024", "2024-03-15"},
		{"15/03/24", "2024-03-15"},
		{"2024/03/15", "2024-03-15"},
		{"15.03.2024", "2024-03-15"},
		{"not a date", ""},
		{"", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ParseDate(c.in), "ParseDate(%q)", c.in)
	}
}

func TestParseDateRoundTripsThroughWireFormat(t *testing.T) {
	iso := "2024-03-15"
	wire := ToWireDate(iso)
	assert.Equal(t, "15/03/2024", wire)
	assert.Equal(t, iso, ParseDate(wire))
}

func TestNormalizeReferenceIsCaseInsensitive(t *testing.T) {
	assert.Equal(t, NormalizeReference("fa-2024-001"), NormalizeReference("FA-2024-001"))
	assert.Equal(t, "FA-2024-001", NormalizeReference("  fa-2024-001  "))
}

func TestIsNonBusinessDay(t *testing.T) {
	assert.True(t, IsNonBusinessDay("2024-03-16", nil))  // Saturday
	assert.True(t, IsNonBusinessDay("2024-03-17", nil))  // Sunday
	assert.False(t, IsNonBusinessDay("2024-03-18", nil)) // Monday
	assert.True(t, IsNonBusinessDay("2024-03-18", map[string]bool{"2024-03-18": true}))
	assert.False(t, IsNonBusinessDay("", nil))
}
