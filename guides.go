package ledgerrecon

import "strings"

// guideRegistry maps each anomaly kind to its corrective guide. Guides
// are data, not control flow: the detector never embeds guide text,
// and adding a kind never touches detection logic.
var guideRegistry = map[AnomalyKind]*Guide{
	KindFactureNonRapprocheeGL: {
		Title:            "Facture non rapprochée",
		Action:           "Post the matching bank settlement entry for this invoice.",
		SuggestedAccount: "512200",
		LabelTemplate: func(ref, counterpartyName string) string {
			return "Règlement facture " + ref + " - " + counterpartyName
		},
		CounterEntryHint: "Debit the bank account (512xxx), credit the origin account carrying the invoice.",
	},
	KindChequeNonComptabiliseGL: {
		Title:            "Chèque non comptabilisé",
		Action:           "Record the missing general-ledger entry for this cheque.",
		SuggestedAccount: "512200",
		LabelTemplate: func(ref, counterpartyName string) string {
			return "Chèque " + ref + " - " + counterpartyName
		},
		CounterEntryHint: "Post against the counterparty's account (411000/401000) depending on direction.",
	},
	KindChequeEmisNonEncaisseGL: {
		Title:            "Chèque émis non encaissé",
		Action:           "Confirm whether the cheque is still outstanding or should be investigated as lost.",
		SuggestedAccount: "511200",
		LabelTemplate: func(ref, counterpartyName string) string {
			return "Chèque émis " + ref + " en attente d'encaissement - " + counterpartyName
		},
		CounterEntryHint: "Leave the emission entry in place; post the bank side only once the statement confirms it cleared.",
	},
	KindChequeEncaisseNonEmisGL: {
		Title:            "Chèque encaissé non émis",
		Action:           "Post the retroactive emission entry so the ledger reflects the cashed cheque.",
		SuggestedAccount: "411000",
		LabelTemplate: func(ref, counterpartyName string) string {
			return "Régularisation chèque encaissé " + ref + " - " + counterpartyName
		},
		CounterEntryHint: "Debit the origin account, credit the bank account already showing the cash movement.",
	},
	KindChequeIncoherentGL: {
		Title:            "Chèque incohérent",
		Action:           "Reconcile the amount difference between the ledger entry and the bank statement.",
		SuggestedAccount: "658000",
		LabelTemplate: func(ref, counterpartyName string) string {
			return "Écart chèque " + ref + " - " + counterpartyName
		},
		CounterEntryHint: "Post the difference to a write-off/adjustment account (658000) once the cause is confirmed.",
	},
	KindEcartMontant: {
		Title:            "Écart de montant",
		Action:           "Investigate and post the adjusting entry for the amount difference.",
		SuggestedAccount: "658000",
		LabelTemplate: func(ref, counterpartyName string) string {
			return "Ajustement écart " + ref + " - " + counterpartyName
		},
		CounterEntryHint: "Write off small residual differences to 658000; larger ones require tracing the source document.",
	},
	KindNumeroManquant: {
		Title:            "Numéro manquant",
		Action:           "Request or assign a document number before it can be reconciled.",
		SuggestedAccount: "",
		LabelTemplate: func(ref, counterpartyName string) string {
			return "Numéro manquant - " + counterpartyName
		},
		CounterEntryHint: "No posting is possible until the invoice/cheque number is supplied.",
	},
	KindJourNonOuvrable: {
		Title:            "Jour non ouvrable",
		Action:           "Confirm the date was intentional; non-business-day postings often indicate a transcription error.",
		SuggestedAccount: "",
		LabelTemplate: func(ref, counterpartyName string) string {
			return "Vérification date - " + counterpartyName
		},
		CounterEntryHint: "No counter-entry; this is a date-quality flag, not an amount discrepancy.",
	},
}

// guideTitleAliases maps localized/legacy titles onto the canonical
// kind they resolve to, the fallback step of guide
// resolution.
var guideTitleAliases = map[string]AnomalyKind{
	"facture non rapprochée":    KindFactureNonRapprocheeGL,
	"facture non rapprochee":    KindFactureNonRapprocheeGL,
	"cheque non comptabilise":   KindChequeNonComptabiliseGL,
	"chèque non comptabilisé":   KindChequeNonComptabiliseGL,
	"cheque emis non encaisse":  KindChequeEmisNonEncaisseGL,
	"chèque émis non encaissé":  KindChequeEmisNonEncaisseGL,
	"cheque encaisse non emis":  KindChequeEncaisseNonEmisGL,
	"chèque encaissé non émis":  KindChequeEncaisseNonEmisGL,
	"cheque incoherent":         KindChequeIncoherentGL,
	"chèque incohérent":         KindChequeIncoherentGL,
	"ecart de montant":          KindEcartMontant,
	"écart de montant":          KindEcartMontant,
	"numero manquant":           KindNumeroManquant,
	"numéro manquant":           KindNumeroManquant,
	"jour non ouvrable":         KindJourNonOuvrable,
}

// ResolveGuide implements a three-step lookup: direct
// kind lookup, then title-alias fallback, then nil.
func ResolveGuide(kind AnomalyKind, title string) *Guide {
	if g, ok := guideRegistry[kind]; ok {
		return g
	}
	if title != "" {
		if resolvedKind, ok := guideTitleAliases[strings.ToLower(strings.TrimSpace(title))]; ok {
			if g, ok := guideRegistry[resolvedKind]; ok {
				return g
			}
		}
	}
	return nil
}
