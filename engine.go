package ledgerrecon

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Engine is the main entry point for the ledger-reconciliation system.
// It wires together document storage, analytics, the reference index,
// anomaly detection, guide resolution, and the correction orchestrator
// behind one facade, the way a host (CLI, HTTP handler, scheduled job)
// is expected to drive the whole pipeline.
type Engine struct {
	store      *DocumentStore
	audit      *AuditLog
	analytics  *Analytics
	detector   *AnomalyDetector
	correction *CorrectionOrchestrator
	suggester  *ReferenceSuggester
	log        zerolog.Logger
}

// NewEngine opens the document store at dbPath and constructs every
// component over it.
func NewEngine(dbPath string, log zerolog.Logger) (*Engine, error) {
	store, err := NewDocumentStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("initialize document store: %w", err)
	}

	audit := NewAuditLog(store)
	return &Engine{
		store:      store,
		audit:      audit,
		analytics:  NewAnalytics(log),
		detector:   NewAnomalyDetector(log),
		correction: NewCorrectionOrchestrator(store, audit, log),
		suggester:  NewReferenceSuggester(),
		log:        log.With().Str("component", "engine").Logger(),
	}, nil
}

func (e *Engine) Close() error {
	return e.store.Close()
}

// Store exposes the underlying document store for hosts that need
// direct document fetch/save access beyond what the engine wraps
// (the get_document/save_document contract).
func (e *Engine) Store() *DocumentStore {
	return e.store
}

// configOrDefault loads the persisted anomaly configuration, falling
// back to DefaultAnomalyConfig when none has been saved yet.
func (e *Engine) configOrDefault() *AnomalyConfig {
	cfg, err := e.Config()
	if err != nil {
		return DefaultAnomalyConfig()
	}
	return cfg
}

// ComputeCharacteristics loads the GL document by id and runs the
// ledger analytics pass over its normalized entries. An
// input-shape error yields a zero snapshot carrying an error field,
// never a hard failure.
func (e *Engine) ComputeCharacteristics(documentID string) *Characteristics {
	raw, err := e.store.GetDocument(documentID)
	if err != nil {
		return &Characteristics{Error: err.Error(), SourceFile: documentID}
	}

	entries, err := ParseGLDocument(raw)
	if err != nil {
		return &Characteristics{Error: err.Error(), SourceFile: documentID}
	}

	return e.analytics.Compute(entries, documentID, e.configOrDefault())
}

// ComputeLatestCharacteristics is ComputeCharacteristics over
// get_latest("grandlivre").
func (e *Engine) ComputeLatestCharacteristics() *Characteristics {
	documentID, raw, err := e.store.GetLatest("grandlivre")
	if err != nil {
		return &Characteristics{Error: err.Error()}
	}
	entries, err := ParseGLDocument(raw)
	if err != nil {
		return &Characteristics{Error: err.Error(), SourceFile: documentID}
	}
	return e.analytics.Compute(entries, documentID, e.configOrDefault())
}

// DetectAnomalies takes a consistent snapshot of the latest GL, the
// latest RL, and every known source document, runs the eight
// reconciliation rules, persists the resulting alerts, and records a
// DETECT_PASS audit event. A store failure at snapshot time aborts the
// pass and returns no partial alert set.
func (e *Engine) DetectAnomalies(cfg *AnomalyConfig, userID string) ([]*Alert, error) {
	snap, err := e.takeSnapshot()
	if err != nil {
		return nil, fmt.Errorf("take detection snapshot: %w", err)
	}

	alerts := e.detector.Detect(*snap, cfg)

	for _, a := range alerts {
		if err := e.store.SaveAlert(a); err != nil {
			return nil, fmt.Errorf("persist alert %s: %w", a.ID, err)
		}
	}

	if _, err := e.audit.RecordDetectPass(snap.GLDocumentID, alerts, userID); err != nil {
		e.log.Warn().Err(err).Msg("failed to record detect-pass audit event")
	}

	e.log.Info().Int("alert_count", len(alerts)).Msg("anomaly detection pass complete")
	return alerts, nil
}

// takeSnapshot assembles the GL/RL/source-document snapshot consumed
// by Detect. Documents the host never saved are simply empty in the
// snapshot rather than a fatal error, except when neither GL nor RL
// has ever been saved at all.
func (e *Engine) takeSnapshot() (*Snapshot, error) {
	glID, glRaw, glErr := e.store.GetLatest("grandlivre")
	rlID, rlRaw, rlErr := e.store.GetLatest("releve")
	if glErr != nil && rlErr != nil {
		return nil, fmt.Errorf("no GL or RL document has been saved: %v / %v", glErr, rlErr)
	}

	var gl []*LedgerEntry
	if glErr == nil {
		parsed, err := ParseGLDocument(glRaw)
		if err != nil {
			return nil, fmt.Errorf("parse GL document: %w", err)
		}
		gl = parsed
	}

	var rl []*BankOperation
	if rlErr == nil {
		parsed, err := ParseRLDocument(rlRaw)
		if err != nil {
			return nil, fmt.Errorf("parse RL document: %w", err)
		}
		rl = parsed
	}

	invoices, err := e.store.ListInvoices()
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	cheques, err := e.store.ListCheques()
	if err != nil {
		return nil, fmt.Errorf("list cheques: %w", err)
	}
	docs := make([]IdentifiedDocument, 0, len(invoices)+len(cheques))
	docs = append(docs, invoices...)
	docs = append(docs, cheques...)

	return &Snapshot{
		GLDocumentID: glID,
		GL:           gl,
		RLDocumentID: rlID,
		RL:           rl,
		Docs:         docs,
	}, nil
}

// DetectAnomaliesOver runs the detector over an explicitly supplied
// snapshot instead of the store's latest documents -- used by hosts
// that assemble source documents themselves (invoices/cheques fetched
// by ref) or by tests.
func (e *Engine) DetectAnomaliesOver(snap Snapshot, cfg *AnomalyConfig, userID string) ([]*Alert, error) {
	alerts := e.detector.Detect(snap, cfg)
	for _, a := range alerts {
		if err := e.store.SaveAlert(a); err != nil {
			return nil, fmt.Errorf("persist alert %s: %w", a.ID, err)
		}
	}
	if _, err := e.audit.RecordDetectPass(snap.GLDocumentID, alerts, userID); err != nil {
		e.log.Warn().Err(err).Msg("failed to record detect-pass audit event")
	}
	return alerts, nil
}

// GetAlert fetches a persisted alert together with its resolved guide
// (fetching an alert returns its full record plus a
// resolved guide").
func (e *Engine) GetAlert(alertID string) (*Alert, *Guide, error) {
	alert, err := e.store.GetAlert(alertID)
	if err != nil {
		return nil, nil, err
	}
	return alert, ResolveGuide(alert.Kind, alert.Title), nil
}

// ListAlerts returns every persisted alert.
func (e *Engine) ListAlerts() ([]*Alert, error) {
	return e.store.ListAlerts()
}

// ApplyGLCorrection delegates to the correction orchestrator.
func (e *Engine) ApplyGLCorrection(documentID, ref string, newEntries []map[string]interface{}, userID string) error {
	return e.correction.CorrectGL(documentID, ref, newEntries, userID)
}

// ApplyRLCorrection delegates to the correction orchestrator.
func (e *Engine) ApplyRLCorrection(documentID, ref string, newOperations []map[string]interface{}, userID string) error {
	return e.correction.CorrectRL(documentID, ref, newOperations, userID)
}

// ApplySourceDocumentCorrection delegates to the correction
// orchestrator.
func (e *Engine) ApplySourceDocumentCorrection(ref string, newContent SourceDocument, userID string) error {
	return e.correction.CorrectSourceDocument(ref, newContent, userID)
}

// SuggestMatch proposes an amount/date-proximity match for a bank
// operation lacking a reference hit, the opt-in enrichment on top of
// the reference index.
func (e *Engine) SuggestMatch(op *BankOperation, candidates []*LedgerEntry) *Suggestion {
	return e.suggester.Suggest(op, candidates)
}

// Config returns the persisted anomaly configuration, or the
// documented defaults.
func (e *Engine) Config() (*AnomalyConfig, error) {
	return e.store.GetConfig()
}

// SaveConfig persists the anomaly configuration.
func (e *Engine) SaveConfig(cfg *AnomalyConfig) error {
	return e.store.SaveConfig(cfg)
}
