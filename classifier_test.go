package ledgerrecon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyAccountIsTotal(t *testing.T) {
	cases := []struct {
		account string
		want    AccountType
	}{
		{"512000", TypeBanque},
		{"411000", TypeClients},
		{"401000", TypeFournisseurs},
		{"445661", TypeTVADeductible},
		{"445711", TypeTVACollectee},
		{"707000", TypeVentes},
		{"607000", TypeAchats},
		{"613000", TypeCharges},
		{"213000", TypeImmobilisations},
		{"370000", TypeStocks},
		{"101000", TypeCapitaux},
		{"999999", TypeAutres},
		{"", TypeAutres},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ClassifyAccount(c.account), "ClassifyAccount(%q)", c.account)
	}
}

func TestClassifyAccountMoreSpecificPrefixWinsOverBroader(t *testing.T) {
	// 445661 (TVA deductible) must win over the broader 4-prefix classes
	// that don't otherwise exist in the table, and 60-prefix (achats)
	// must win over the broader 6-prefix charges class.
	assert.Equal(t, TypeTVADeductible, ClassifyAccount("4456610000"))
	assert.Equal(t, TypeAchats, ClassifyAccount("607100"))
	assert.Equal(t, TypeCharges, ClassifyAccount("613200"))
}
