package ledgerrecon

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Audit event kinds (model.go's AuditEvent.Kind values).
const (
	EventDetectPass = "DETECT_PASS"
	EventCorrection = "CORRECTION"
)

// AuditLog manages the append-only audit trail that lets a detection
// pass or correction be diffed or replayed against a prior one, so
// callers can confirm a second pass over the same input is quiet.
type AuditLog struct {
	store *DocumentStore
}

func NewAuditLog(store *DocumentStore) *AuditLog {
	return &AuditLog{store: store}
}

// detectPassPayload is the payload shape recorded for a DETECT_PASS
// event: the full alert set produced by that pass.
type detectPassPayload struct {
	Alerts []*Alert `json:"alerts"`
}

// correctionPayload is the payload shape recorded for a CORRECTION
// event: what reference was corrected and the new content applied.
type correctionPayload struct {
	Ref        string          `json:"ref"`
	NewContent json.RawMessage `json:"new_content"`
}

// RecordDetectPass appends an audit entry capturing the alert set
// produced by one anomaly-detection pass over documentID.
func (l *AuditLog) RecordDetectPass(documentID string, alerts []*Alert, userID string) (*AuditEvent, error) {
	return l.record(EventDetectPass, documentID, detectPassPayload{Alerts: alerts}, userID)
}

// RecordCorrection appends an audit entry capturing one applied correction.
func (l *AuditLog) RecordCorrection(documentID, ref string, newContent json.RawMessage, userID string) (*AuditEvent, error) {
	return l.record(EventCorrection, documentID, correctionPayload{Ref: ref, NewContent: newContent}, userID)
}

func (l *AuditLog) record(kind, documentID string, payload interface{}, userID string) (*AuditEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", kind, err)
	}

	event := &AuditEvent{
		ID:         uuid.New().String(),
		Kind:       kind,
		DocumentID: documentID,
		Payload:    data,
		OccurredAt: time.Now(),
		UserID:     userID,
	}
	if err := l.store.AppendAuditEvent(event); err != nil {
		return nil, fmt.Errorf("append audit event: %w", err)
	}
	return event, nil
}

// Replay walks every recorded event in chronological order, invoking
// handler for each. It is a read path only -- it never re-applies a
// correction or re-runs detection, it just hands the caller the
// historical record so a UI or test can reconstruct "what happened."
func (l *AuditLog) Replay(handler func(*AuditEvent) error) error {
	events, err := l.store.GetAuditEvents()
	if err != nil {
		return fmt.Errorf("load audit events: %w", err)
	}
	for _, event := range events {
		if err := handler(event); err != nil {
			return fmt.Errorf("handle audit event %s: %w", event.ID, err)
		}
	}
	return nil
}

// LastDetectPass returns the most recently recorded alert set for
// documentID, or nil if none has been recorded.
func (l *AuditLog) LastDetectPass(documentID string) ([]*Alert, error) {
	events, err := l.store.GetAuditEvents()
	if err != nil {
		return nil, fmt.Errorf("load audit events: %w", err)
	}

	var last *AuditEvent
	for _, event := range events {
		if event.Kind == EventDetectPass && event.DocumentID == documentID {
			last = event
		}
	}
	if last == nil {
		return nil, nil
	}

	var payload detectPassPayload
	if err := json.Unmarshal(last.Payload, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal detect pass payload: %w", err)
	}
	return payload.Alerts, nil
}
