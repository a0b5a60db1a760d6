package ledgerrecon

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// AnomalyDetector runs the eight fixed reconciliation rules over a
// consistent snapshot of GL, RL, and source documents.
type AnomalyDetector struct {
	log zerolog.Logger
}

func NewAnomalyDetector(log zerolog.Logger) *AnomalyDetector {
	return &AnomalyDetector{log: log.With().Str("component", "anomaly_detector").Logger()}
}

// Snapshot bundles one pass's consistent view of the three document
// families, taken at the start of the pass: detection never
// observes in-flight corrections.
type Snapshot struct {
	GLDocumentID string
	GL           []*LedgerEntry
	RLDocumentID string
	RL           []*BankOperation
	Docs         []IdentifiedDocument
}

// Detect runs all eight rules and returns the resulting alert set.
// Given identical inputs and config, the returned alerts are identical
// up to id and creation time.
func (d *AnomalyDetector) Detect(snap Snapshot, cfg *AnomalyConfig) []*Alert {
	if cfg == nil {
		cfg = DefaultAnomalyConfig()
	}

	idx := BuildReferenceIndex(snap.GL, nil, nil)
	rlIdx := BuildReferenceIndex(nil, snap.RL, nil)

	var alerts []*Alert

	if cfg.AlertOnMissingTransactions {
		alerts = append(alerts, d.detectMissingNumbers(snap)...)
	}
	alerts = append(alerts, d.detectInvoiceReconciliation(snap, idx)...)
	alerts = append(alerts, d.detectChequeReconciliation(snap, idx, rlIdx, cfg)...)
	alerts = append(alerts, d.detectAmountDiscrepancies(snap, idx, rlIdx, cfg)...)
	alerts = append(alerts, d.detectNonBusinessDays(snap, cfg)...)

	d.log.Debug().Int("alert_count", len(alerts)).Msg("detection pass complete")
	return alerts
}

func newAlert(kind AnomalyKind, severity Severity, source DocSource, documentID, ref, description string) *Alert {
	return &Alert{
		ID:          uuid.New().String(),
		Kind:        kind,
		Severity:    severity,
		Ref:         ref,
		DocumentID:  documentID,
		Source:      source,
		Description: description,
		CreatedAt:   time.Now(),
	}
}

// detectMissingNumbers implements NUMERO_MANQUANT.
func (d *AnomalyDetector) detectMissingNumbers(snap Snapshot) []*Alert {
	var alerts []*Alert
	for _, idoc := range snap.Docs {
		if documentReference(idoc.Doc) != "" {
			continue
		}
		a := newAlert(KindNumeroManquant, SeverityMedium, SourceDoc, idoc.ID, "",
			"source document has neither a Numéro Facture nor a Numéro de Chèque")
		alerts = append(alerts, a)
	}
	return alerts
}

// detectInvoiceReconciliation implements FACTURE_NON_RAPPROCHEE_GL.
func (d *AnomalyDetector) detectInvoiceReconciliation(snap Snapshot, idx *ReferenceIndex) []*Alert {
	var alerts []*Alert
	for _, idoc := range snap.Docs {
		v, ok := idoc.Doc[KeyNumeroFacture]
		ref, isStr := v.(string)
		if !ok || !isStr || ref == "" {
			continue
		}
		ref = NormalizeReference(ref)
		matches := idx.GLByReference(ref)
		if len(matches) == 0 {
			continue
		}

		var onOriginAccount, onBankAccount bool
		for _, e := range matches {
			switch ClassifyAccount(e.Account) {
			case TypeBanque:
				onBankAccount = true
			case TypeFournisseurs, TypeClients, TypeCharges, TypeAchats:
				onOriginAccount = true
			}
		}
		if onOriginAccount && !onBankAccount {
			alerts = append(alerts, newAlert(KindFactureNonRapprocheeGL, SeverityHigh, SourceGL, snap.GLDocumentID, ref,
				"invoice reference posted on an origin account but never reconciled against a bank account"))
		}
	}
	return alerts
}

// detectChequeReconciliation implements the four cheque-lifecycle
// kinds: CHEQUE_NON_COMPTABILISE_GL, CHEQUE_EMIS_NON_ENCAISSE_GL,
// CHEQUE_ENCAISSE_NON_EMIS_GL, CHEQUE_INCOHERENT_GL.
func (d *AnomalyDetector) detectChequeReconciliation(snap Snapshot, glIdx, rlIdx *ReferenceIndex, cfg *AnomalyConfig) []*Alert {
	var alerts []*Alert
	for _, idoc := range snap.Docs {
		v, ok := idoc.Doc[KeyNumeroCheque]
		ref, isStr := v.(string)
		if !ok || !isStr || ref == "" {
			continue
		}
		ref = NormalizeReference(ref)

		glEntries := glIdx.GLByReference(ref)
		rlOps := rlIdx.RLByReference(ref)

		hasGL := len(glEntries) > 0
		hasRL := len(rlOps) > 0

		var onBankAccount, onEmissionAccount bool
		for _, e := range glEntries {
			if ClassifyAccount(e.Account) == TypeBanque {
				onBankAccount = true
			} else {
				onEmissionAccount = true
			}
		}

		switch {
		case hasRL && !hasGL:
			if cfg.AlertOnMissingTransactions {
				alerts = append(alerts, newAlert(KindChequeNonComptabiliseGL, SeverityHigh, SourceGL, snap.GLDocumentID, ref,
					"cheque appears on the bank statement but has no general-ledger entry"))
			}
		case hasRL && hasGL && !onEmissionAccount:
			alerts = append(alerts, newAlert(KindChequeEncaisseNonEmisGL, SeverityHigh, SourceGL, snap.GLDocumentID, ref,
				"cheque was cashed but no emission entry was ever posted"))
		case !hasRL && onEmissionAccount && !onBankAccount:
			alerts = append(alerts, newAlert(KindChequeEmisNonEncaisseGL, SeverityMedium, SourceGL, snap.GLDocumentID, ref,
				"cheque was issued but has not been cashed at the bank nor credited in the ledger"))
		}

		if hasGL && hasRL {
			glAmt := sumAbsNet(glEntries)
			rlAmt := sumAbsMontant(rlOps)
			delta := glAmt.Sub(rlAmt).Abs()
			if delta.GreaterThan(toleranceFor(cfg, glAmt, rlAmt)) {
				a := newAlert(KindChequeIncoherentGL, severityForDelta(cfg, delta), SourceGL, snap.GLDocumentID, ref,
					"cheque amount in the ledger does not match the amount cashed at the bank")
				a.MontantGL = glAmt
				a.MontantReleve = rlAmt
				a.Delta = delta
				alerts = append(alerts, a)
			}
		}
	}
	return alerts
}

// detectAmountDiscrepancies implements ECART_MONTANT over every
// reference seen on both sides that is not already covered by the
// cheque-specific incoherence check.
func (d *AnomalyDetector) detectAmountDiscrepancies(snap Snapshot, glIdx, rlIdx *ReferenceIndex, cfg *AnomalyConfig) []*Alert {
	chequeRefs := map[string]bool{}
	for _, idoc := range snap.Docs {
		if v, ok := idoc.Doc[KeyNumeroCheque]; ok {
			if s, ok := v.(string); ok && s != "" {
				chequeRefs[NormalizeReference(s)] = true
			}
		}
	}

	seen := map[string]bool{}
	var alerts []*Alert
	for _, e := range snap.GL {
		ref := extractReference(e.Label)
		if ref == "" || chequeRefs[ref] || seen[ref] {
			continue
		}
		rlOps := rlIdx.RLByReference(ref)
		if len(rlOps) == 0 {
			continue
		}
		seen[ref] = true

		entries := glIdx.GLByReference(ref)
		glAmt := sumAbsNet(entries)
		rlAmt := sumAbsMontant(rlOps)
		delta := glAmt.Sub(rlAmt).Abs()
		if delta.GreaterThan(toleranceFor(cfg, glAmt, rlAmt)) {
			a := newAlert(KindEcartMontant, severityForDelta(cfg, delta), SourceGL, snap.GLDocumentID, ref,
				"amount recorded in the ledger differs from the matching bank operation beyond tolerance")
			a.MontantGL = glAmt
			a.MontantReleve = rlAmt
			a.Delta = delta
			alerts = append(alerts, a)
		}
	}
	return alerts
}

// detectNonBusinessDays implements JOUR_NON_OUVRABLE over both GL and
// RL entries.
func (d *AnomalyDetector) detectNonBusinessDays(snap Snapshot, cfg *AnomalyConfig) []*Alert {
	var alerts []*Alert
	for _, e := range snap.GL {
		if IsNonBusinessDay(e.Date, cfg.HolidaySet) {
			a := newAlert(KindJourNonOuvrable, SeverityMedium, SourceGL, snap.GLDocumentID, "",
				"entry dated on a weekend or holiday")
			a.Date = e.Date
			alerts = append(alerts, a)
		}
	}
	for _, op := range snap.RL {
		if IsNonBusinessDay(op.Date, cfg.HolidaySet) {
			a := newAlert(KindJourNonOuvrable, SeverityMedium, SourceRL, snap.RLDocumentID, "",
				"bank operation dated on a weekend or holiday")
			a.Date = op.Date
			alerts = append(alerts, a)
		}
	}
	return alerts
}

func sumAbsNet(entries []*LedgerEntry) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Net().Abs())
	}
	return sum
}

func sumAbsMontant(ops []*BankOperation) decimal.Decimal {
	sum := decimal.Zero
	for _, op := range ops {
		sum = sum.Add(op.Montant.Abs())
	}
	return sum
}

// toleranceFor computes max(absolute_tolerance, percentage_tolerance *
// max_amount), the tolerance threshold used across discrepancy checks.
func toleranceFor(cfg *AnomalyConfig, amounts ...decimal.Decimal) decimal.Decimal {
	maxAmount := decimal.Zero
	for _, a := range amounts {
		if a.GreaterThan(maxAmount) {
			maxAmount = a
		}
	}
	pct := cfg.AmountTolerancePercentage.Mul(maxAmount)
	if cfg.AmountToleranceAbsolute.GreaterThan(pct) {
		return cfg.AmountToleranceAbsolute
	}
	return pct
}

func severityForDelta(cfg *AnomalyConfig, delta decimal.Decimal) Severity {
	switch {
	case delta.GreaterThanOrEqual(cfg.SeverityThresholdCritical):
		return SeverityCritical
	case delta.GreaterThanOrEqual(cfg.SeverityThresholdHigh):
		return SeverityHigh
	case delta.GreaterThanOrEqual(cfg.SeverityThresholdMedium):
		return SeverityMedium
	default:
		return SeverityLow
	}
}
