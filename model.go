package ledgerrecon

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// ----------------------------------------------------------------------------
// 📐 Analytic Tagging ---------------------------------------------------------
// ----------------------------------------------------------------------------

type DimensionKey string

const (
	DimDepartment DimensionKey = "department"
	DimCostCenter DimensionKey = "cost_center"
)

// Dimension is an optional analytic tag carried by an entry when the
// source document supplies one. Never required by any invariant.
type Dimension struct {
	Key   DimensionKey `json:"key"`
	Value string       `json:"value"`
}

// ----------------------------------------------------------------------------
// 🗃️ Account Classification ----------------------------------------------------
// ----------------------------------------------------------------------------

// AccountType is one of the fixed twelve semantic classes a GL account
// number is mapped to by the classifier table.
type AccountType string

const (
	TypeBanque          AccountType = "banque"
	TypeClients          AccountType = "clients"
	TypeFournisseurs     AccountType = "fournisseurs"
	TypeTVADeductible    AccountType = "tva_deductible"
	TypeTVACollectee     AccountType = "tva_collectee"
	TypeVentes           AccountType = "ventes"
	TypeAchats           AccountType = "achats"
	TypeCharges          AccountType = "charges"
	TypeImmobilisations  AccountType = "immobilisations"
	TypeStocks           AccountType = "stocks"
	TypeCapitaux         AccountType = "capitaux"
	TypeAutres           AccountType = "autres"
)

// ----------------------------------------------------------------------------
// 📜 Canonical Ledger Entry (GL) -----------------------------------------------
// ----------------------------------------------------------------------------

// LedgerEntry is one canonical general-ledger line, produced by the
// Entry Normalizer from a heterogeneously-shaped raw record.
type LedgerEntry struct {
	Account string          `json:"account"`
	Label   string          `json:"label"`
	Date    string          `json:"date"` // ISO YYYY-MM-DD, "" if unparsable
	Debit   decimal.Decimal `json:"debit"`
	Credit  decimal.Decimal `json:"credit"`

	// Dimensions is populated only when the source record carries
	// analytic tags; purely additive, never inspected by any invariant.
	Dimensions []Dimension `json:"dimensions,omitempty"`
}

// Net returns debit minus credit, the entry's signed net movement.
func (e *LedgerEntry) Net() decimal.Decimal {
	return e.Debit.Sub(e.Credit)
}

// ----------------------------------------------------------------------------
// 🏦 Canonical Bank Operation (RL) ---------------------------------------------
// ----------------------------------------------------------------------------

// BankOperation is one canonical bank-statement line.
type BankOperation struct {
	Date    string          `json:"date"`
	Nature  string          `json:"nature"`
	Montant decimal.Decimal `json:"montant"`
	Type    string          `json:"type"`
}

// ----------------------------------------------------------------------------
// 🧾 Source Documents -----------------------------------------------------------
// ----------------------------------------------------------------------------

// SourceDocument is an opaque key/value map for an invoice or cheque.
// Known keys are documented alongside the constants below; unknown keys pass through.
type SourceDocument map[string]interface{}

const (
	KeyNumeroFacture   = "Numéro Facture"
	KeyTotalTTC        = "Total TTC"
	KeyDateFacturation = "Date Facturation"
	KeyDateEcheance    = "Date Echeance"
	KeyNomClient       = "Nom Client/Fournisseur"

	KeyNumeroCheque  = "Numéro de Chèque"
	KeyMontantCheque = "Montant du Chèque"
	KeyLe            = "Le"
	KeyEmetteur      = "Emetteur"
	KeyBanque        = "Banque"
)

// IdentifiedDocument pairs a source document with the document id the
// host store addresses it by, so the anomaly detector and correction
// orchestrator can point alerts back at an editable resource.
type IdentifiedDocument struct {
	ID  string
	Doc SourceDocument
}

// ----------------------------------------------------------------------------
// 🚨 Alerts & Guides ------------------------------------------------------------
// ----------------------------------------------------------------------------

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// AnomalyKind enumerates the eight fixed accounting anomalies the
// detector recognizes.
type AnomalyKind string

const (
	KindFactureNonRapprocheeGL AnomalyKind = "FACTURE_NON_RAPPROCHEE_GL"
	KindChequeNonComptabiliseGL AnomalyKind = "CHEQUE_NON_COMPTABILISE_GL"
	KindChequeEmisNonEncaisseGL AnomalyKind = "CHEQUE_EMIS_NON_ENCAISSE_GL"
	KindChequeEncaisseNonEmisGL AnomalyKind = "CHEQUE_ENCAISSE_NON_EMIS_GL"
	KindChequeIncoherentGL      AnomalyKind = "CHEQUE_INCOHERENT_GL"
	KindEcartMontant            AnomalyKind = "ECART_MONTANT"
	KindNumeroManquant           AnomalyKind = "NUMERO_MANQUANT"
	KindJourNonOuvrable          AnomalyKind = "JOUR_NON_OUVRABLE"
)

// DocSource identifies which cross-referenced document an alert binds to.
type DocSource string

const (
	SourceGL  DocSource = "GL"
	SourceRL  DocSource = "RL"
	SourceDoc DocSource = "DOC"
)

// Alert is a structured record describing one detected anomaly.
type Alert struct {
	ID         string          `json:"id"`
	Kind       AnomalyKind     `json:"kind"`
	Severity   Severity        `json:"severity"`
	Ref        string          `json:"ref"`
	DocumentID string          `json:"document_id"`
	Source     DocSource       `json:"source"`
	Date       string          `json:"date,omitempty"`
	Montant        decimal.Decimal `json:"montant,omitempty"`
	MontantGL      decimal.Decimal `json:"montant_gl,omitempty"`
	MontantReleve  decimal.Decimal `json:"montant_releve,omitempty"`
	Delta          decimal.Decimal `json:"delta,omitempty"`
	NomClient      string          `json:"nom_client,omitempty"`
	TypeFacture    string          `json:"type_facture,omitempty"`
	Type           string          `json:"type,omitempty"`
	Description string    `json:"description"`
	Title       string    `json:"title,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Guide is the corrective template attached to an alert kind.
type Guide struct {
	Title             string
	Action            string
	SuggestedAccount  string
	LabelTemplate     func(ref, counterpartyName string) string
	CounterEntryHint  string
}

// ----------------------------------------------------------------------------
// 📊 Ledger Analytics Snapshot --------------------------------------------
// ----------------------------------------------------------------------------

type TypeBalance struct {
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	Balance     decimal.Decimal `json:"balance"`
	EntryCount  int             `json:"entry_count"`
}

type SignificantEntry struct {
	Account string          `json:"account"`
	Label   string          `json:"label"`
	Date    string          `json:"date"`
	Net     decimal.Decimal `json:"net"`
}

type ActiveAccount struct {
	Account    string `json:"account"`
	EntryCount int    `json:"entry_count"`
}

type Movements struct {
	LargestDebit        decimal.Decimal     `json:"largest_debit"`
	LargestCredit       decimal.Decimal     `json:"largest_credit"`
	MeanDebit           decimal.Decimal     `json:"mean_debit"`
	MeanCredit          decimal.Decimal     `json:"mean_credit"`
	SignificantEntries  []SignificantEntry  `json:"significant_entries"`
	MostActiveAccounts  []ActiveAccount     `json:"most_active_accounts"`
}

type Ratios struct {
	BalanceRatio        *decimal.Decimal `json:"balance_ratio,omitempty"`
	LiquidityRatio      *decimal.Decimal `json:"liquidity_ratio,omitempty"`
	DebtRatio           *decimal.Decimal `json:"debt_ratio,omitempty"`
	StockRotationRatio  *decimal.Decimal `json:"stock_rotation_ratio,omitempty"`
}

type DateAnalysis struct {
	PeriodStart          string         `json:"period_start"`
	PeriodEnd            string         `json:"period_end"`
	DurationDays         int            `json:"duration_days"`
	MonthlyDistribution  map[string]int `json:"monthly_distribution"`
	EntriesWithoutDate   int            `json:"entries_without_date"`
}

type AnalyticsAnomaly struct {
	Kind        string `json:"kind"`
	Description string `json:"description"`
	Account     string `json:"account,omitempty"`
	Date        string `json:"date,omitempty"`
	Net         string `json:"net,omitempty"`
}

type AccountDetail struct {
	EntryCount     int             `json:"entry_count"`
	TotalDebit     decimal.Decimal `json:"total_debit"`
	TotalCredit    decimal.Decimal `json:"total_credit"`
	Balance        decimal.Decimal `json:"balance"`
	EarliestDate   string          `json:"earliest_date"`
	LatestDate     string          `json:"latest_date"`
	PrincipalLabel string          `json:"principal_label"`
}

// Characteristics is the full analytic snapshot computed for one GL
// document at one point in time.
type Characteristics struct {
	EntryCount     int                        `json:"entry_count"`
	TotalDebit     decimal.Decimal            `json:"total_debit"`
	TotalCredit    decimal.Decimal            `json:"total_credit"`
	Balance        decimal.Decimal            `json:"balance"`
	AccountsByType map[AccountType][]string   `json:"accounts_by_type"`
	BalancesByType map[AccountType]*TypeBalance `json:"balances_by_type"`
	Mouvements     Movements                  `json:"mouvements"`
	Ratios         Ratios                     `json:"ratios"`
	DateAnalysis   DateAnalysis               `json:"date_analysis"`
	Anomalies      []AnalyticsAnomaly         `json:"anomalies"`
	AccountDetails map[string]*AccountDetail  `json:"account_details"`
	SourceFile     string                     `json:"source_file"`
	ProcessedAt    time.Time                  `json:"processed_at"`
	Error          string                     `json:"error,omitempty"`
}

// ----------------------------------------------------------------------------
// ⚙️ Anomaly Detection Configuration --------------------------------------------
// ----------------------------------------------------------------------------

// AnomalyConfig holds the tolerances, severity thresholds, and feature
// flags that parameterize anomaly detection. Unknown JSON keys
// round-trip via Raw.
type AnomalyConfig struct {
	AmountTolerancePercentage decimal.Decimal `json:"amount_tolerance_percentage"`
	AmountToleranceAbsolute   decimal.Decimal `json:"amount_tolerance_absolute"`

	SeverityThresholdCritical decimal.Decimal `json:"severity_threshold_critical"`
	SeverityThresholdHigh     decimal.Decimal `json:"severity_threshold_high"`
	SeverityThresholdMedium   decimal.Decimal `json:"severity_threshold_medium"`

	AlertOnMissingTransactions   bool `json:"alert_on_missing_transactions"`
	AlertOnDuplicateTransactions bool `json:"alert_on_duplicate_transactions"`

	// HolidaySet holds ISO (YYYY-MM-DD) dates treated as non-business
	// days in addition to Saturdays/Sundays. Host-supplied.
	HolidaySet map[string]bool `json:"holiday_set,omitempty"`

	// Raw preserves unknown keys across load/save round-trips.
	Raw json.RawMessage `json:"-"`
}

// DefaultAnomalyConfig returns the documented default tolerances and thresholds.
func DefaultAnomalyConfig() *AnomalyConfig {
	return &AnomalyConfig{
		AmountTolerancePercentage:    decimal.NewFromFloat(0.01),
		AmountToleranceAbsolute:      decimal.NewFromFloat(1.00),
		SeverityThresholdCritical:    decimal.NewFromFloat(1000),
		SeverityThresholdHigh:        decimal.NewFromFloat(100),
		SeverityThresholdMedium:      decimal.NewFromFloat(10),
		AlertOnMissingTransactions:   true,
		AlertOnDuplicateTransactions: true,
		HolidaySet:                   map[string]bool{},
	}
}

// ----------------------------------------------------------------------------
// 📝 Audit Trail (internal replay aid, not a signed audit log) ----------------
// ----------------------------------------------------------------------------

// AuditEvent is an append-only record of a detection pass or a
// correction, kept so a pass's alert set can be diffed/replayed
// against a prior one (serves the determinism/idempotence properties
// of the system). It is not a signed external audit trail.
type AuditEvent struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"` // "DETECT_PASS", "CORRECTION"
	DocumentID string          `json:"document_id,omitempty"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurred_at"`
	UserID     string          `json:"user_id,omitempty"`
}
