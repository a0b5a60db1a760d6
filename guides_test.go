package ledgerrecon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveGuideDirectKindLookup(t *testing.T) {
	g := ResolveGuide(KindEcartMontant, "")
	require.NotNil(t, g)
	assert.Equal(t, "Écart de montant", g.Title)
	assert.Equal(t, "Ajustement écart REF1 - Dupont", g.LabelTemplate("REF1", "Dupont"))
}

func TestResolveGuideFallsBackToTitleAlias(t *testing.T) {
	g := ResolveGuide(AnomalyKind("unknown_kind"), "Chèque incohérent")
	require.NotNil(t, g)
	assert.Equal(t, "Chèque incohérent", g.Title)
}

func TestResolveGuideReturnsNilWhenNothingMatches(t *testing.T) {
	g := ResolveGuide(AnomalyKind("unknown_kind"), "not a recognized title")
	assert.Nil(t, g)
}

func TestEveryAnomalyKindHasAGuide(t *testing.T) {
	kinds := []AnomalyKind{
		KindFactureNonRapprocheeGL, KindChequeNonComptabiliseGL,
		KindChequeEmisNonEncaisseGL, KindChequeEncaisseNonEmisGL,
		KindChequeIncoherentGL, KindEcartMontant,
		KindNumeroManquant, KindJourNonOuvrable,
	}
	for _, k := range kinds {
		assert.NotNil(t, ResolveGuide(k, ""), "missing guide for %s", k)
	}
}
