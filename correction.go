package ledgerrecon

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// CorrectionOrchestrator applies atomic, per-document corrections to
// GL, RL, and source documents by reference.
type CorrectionOrchestrator struct {
	store *DocumentStore
	audit *AuditLog
	log   zerolog.Logger
}

func NewCorrectionOrchestrator(store *DocumentStore, audit *AuditLog, log zerolog.Logger) *CorrectionOrchestrator {
	return &CorrectionOrchestrator{
		store: store,
		audit: audit,
		log:   log.With().Str("component", "correction").Logger(),
	}
}

// CorrectGL partitions ecritures_comptables into {entries whose label
// does not contain ref} ∪ newEntries, preserving every other top-level
// key, then persists atomically. A reference that matches nothing is
// a no-op success.
func (c *CorrectionOrchestrator) CorrectGL(documentID, ref string, newEntries []map[string]interface{}, userID string) error {
	doc, err := c.loadDocument(documentID)
	if err != nil {
		return fmt.Errorf("load GL document %s: %w", documentID, err)
	}

	rawEntries, _ := doc["ecritures_comptables"].([]interface{})
	kept := partitionByLabelRef(rawEntries, ref)
	if len(kept) == len(rawEntries) {
		c.log.Debug().Str("ref", ref).Msg("correction ref matched no GL entry, treating as no-op")
		return nil
	}
	for _, e := range newEntries {
		kept = append(kept, e)
	}
	doc["ecritures_comptables"] = kept

	return c.persist(documentID, "grandlivre", doc, ref, userID)
}

// CorrectRL is CorrectGL's RL counterpart: partitions "operations" by
// "nature" instead of "ecritures_comptables" by "libellé"/"description".
func (c *CorrectionOrchestrator) CorrectRL(documentID, ref string, newOperations []map[string]interface{}, userID string) error {
	doc, err := c.loadDocument(documentID)
	if err != nil {
		return fmt.Errorf("load RL document %s: %w", documentID, err)
	}

	rawOps, _ := doc["operations"].([]interface{})
	kept := partitionByNatureRef(rawOps, ref)
	if len(kept) == len(rawOps) {
		c.log.Debug().Str("ref", ref).Msg("correction ref matched no RL operation, treating as no-op")
		return nil
	}
	for _, op := range newOperations {
		kept = append(kept, op)
	}
	doc["operations"] = kept

	return c.persist(documentID, "releve", doc, ref, userID)
}

// CorrectSourceDocument shallow-merges newContent into the invoice or
// cheque addressed by ref and persists atomically. A ref matching no
// known source document is treated as a no-op success rather than an
// error.
func (c *CorrectionOrchestrator) CorrectSourceDocument(ref string, newContent SourceDocument, userID string) error {
	doc, err := c.store.GetSourceDocument(ref)
	if err != nil {
		c.log.Debug().Str("ref", ref).Msg("correction ref matched no source document, treating as no-op")
		return nil
	}
	for k, v := range newContent {
		doc[k] = v
	}
	if err := c.store.SaveSourceDocument(ref, doc); err != nil {
		return fmt.Errorf("save corrected source document %s: %w", ref, err)
	}
	if c.audit != nil {
		payload, _ := json.Marshal(doc)
		if _, err := c.audit.RecordCorrection(ref, ref, payload, userID); err != nil {
			c.log.Warn().Err(err).Str("ref", ref).Msg("failed to record correction audit event")
		}
	}
	c.log.Info().Str("ref", ref).Msg("source document correction applied")
	return nil
}

func (c *CorrectionOrchestrator) loadDocument(documentID string) (map[string]interface{}, error) {
	raw, err := c.store.GetDocument(documentID)
	if err != nil {
		return nil, err
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return doc, nil
}

func (c *CorrectionOrchestrator) persist(documentID, kind string, doc map[string]interface{}, ref, userID string) error {
	content, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal corrected document: %w", err)
	}
	if err := c.store.SaveDocument(documentID, kind, content); err != nil {
		return fmt.Errorf("save corrected document: %w", err)
	}
	if c.audit != nil {
		if _, err := c.audit.RecordCorrection(documentID, ref, content, userID); err != nil {
			c.log.Warn().Err(err).Str("document_id", documentID).Msg("failed to record correction audit event")
		}
	}
	c.log.Info().Str("document_id", documentID).Str("ref", ref).Msg("correction applied")
	return nil
}

// partitionByLabelRef keeps every raw GL entry map whose label field
// does not contain ref as a substring (case-insensitive, via
// NormalizeReference), dropping entries that match so the caller's
// new entries can replace them.
func partitionByLabelRef(rawEntries []interface{}, ref string) []interface{} {
	ref = NormalizeReference(ref)
	var kept []interface{}
	for _, raw := range rawEntries {
		m, ok := raw.(map[string]interface{})
		if !ok {
			kept = append(kept, raw)
			continue
		}
		label, _ := probeString(m, labelAliases)
		if label != "" && strings.Contains(NormalizeReference(label), ref) {
			continue
		}
		kept = append(kept, raw)
	}
	return kept
}

// partitionByNatureRef is partitionByLabelRef's RL analogue, matching
// on the "nature" field instead of the GL label aliases.
func partitionByNatureRef(rawOps []interface{}, ref string) []interface{} {
	ref = NormalizeReference(ref)
	var kept []interface{}
	for _, raw := range rawOps {
		m, ok := raw.(map[string]interface{})
		if !ok {
			kept = append(kept, raw)
			continue
		}
		nature, _ := m["nature"].(string)
		if nature != "" && strings.Contains(NormalizeReference(nature), ref) {
			continue
		}
		kept = append(kept, raw)
	}
	return kept
}
