package ledgerrecon

// Storage Layer Serialization Strategy:
// - All records are persisted as JSON. The documents this system reads
//   and writes are themselves JSON (GL/RL/invoice/cheque bodies coming
//   from the host), so there is no wire format to convert to/from; JSON
//   in, JSON out. A document is stored byte-identical to what the host
//   saved until a correction, which re-serializes the whole document
//   (key order and whitespace may change).

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var (
	bucketDocuments  = []byte("documents")   // document_id -> raw JSON body
	bucketLatest     = []byte("latest")      // kind ("grandlivre"|"releve") -> document_id
	bucketInvoices   = []byte("invoices")    // invoice ref -> raw JSON body
	bucketCheques    = []byte("cheques")     // cheque ref -> raw JSON body
	bucketAlerts     = []byte("alerts")      // alert id -> Alert JSON
	bucketConfig     = []byte("config")      // singleton key -> AnomalyConfig JSON
	bucketAuditTrail = []byte("audit_trail") // timestamp_id -> AuditEvent JSON
)

const configKey = "anomaly_config"

// DocumentStore is the bbolt-backed persistence layer for GL/RL
// documents, source documents, alerts, configuration, and the audit
// trail.
type DocumentStore struct {
	db *bbolt.DB
}

// NewDocumentStore opens (creating if absent) the bbolt database at
// dbPath and ensures all buckets exist.
func NewDocumentStore(dbPath string) (*DocumentStore, error) {
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: 10 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open document store: %w", err)
	}

	store := &DocumentStore{db: db}
	if err := store.initBuckets(); err != nil {
		return nil, fmt.Errorf("initialize document store buckets: %w", err)
	}
	return store, nil
}

func (s *DocumentStore) Close() error {
	return s.db.Close()
}

func (s *DocumentStore) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		buckets := [][]byte{
			bucketDocuments, bucketLatest, bucketInvoices, bucketCheques,
			bucketAlerts, bucketConfig, bucketAuditTrail,
		}
		for _, bucket := range buckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
}

// SaveDocument atomically replaces a document's JSON body and, for any
// non-empty kind, points that kind's "latest" entry at it. A correction
// always replaces the whole document rather than patching it in place.
func (s *DocumentStore) SaveDocument(documentID string, kind string, content json.RawMessage) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		docs := tx.Bucket(bucketDocuments)
		if err := docs.Put([]byte(documentID), content); err != nil {
			return fmt.Errorf("save document %s: %w", documentID, err)
		}
		if kind != "" {
			latest := tx.Bucket(bucketLatest)
			if err := latest.Put([]byte(kind), []byte(documentID)); err != nil {
				return fmt.Errorf("update latest pointer for %s: %w", kind, err)
			}
		}
		return nil
	})
}

// GetDocument fetches a document's raw JSON body by id.
func (s *DocumentStore) GetDocument(documentID string) (json.RawMessage, error) {
	var content json.RawMessage
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketDocuments).Get([]byte(documentID))
		if data == nil {
			return fmt.Errorf("document not found: %s", documentID)
		}
		content = append(json.RawMessage(nil), data...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return content, nil
}

// GetLatest resolves the "latest" document of the given kind
// ("grandlivre" or "releve") and returns its id and raw JSON body.
func (s *DocumentStore) GetLatest(kind string) (documentID string, content json.RawMessage, err error) {
	err = s.db.View(func(tx *bbolt.Tx) error {
		id := tx.Bucket(bucketLatest).Get([]byte(kind))
		if id == nil {
			return fmt.Errorf("no document of kind %q has been saved yet", kind)
		}
		documentID = string(id)
		data := tx.Bucket(bucketDocuments).Get(id)
		if data == nil {
			return fmt.Errorf("latest pointer for %q references missing document %s", kind, documentID)
		}
		content = append(json.RawMessage(nil), data...)
		return nil
	})
	if err != nil {
		return "", nil, err
	}
	return documentID, content, nil
}

// SaveInvoice/SaveCheque/GetInvoice/GetCheque implement the per-ref
// source-document lookups (get_invoice/get_cheque).

func (s *DocumentStore) SaveInvoice(ref string, doc SourceDocument) error {
	return s.putJSON(bucketInvoices, NormalizeReference(ref), doc)
}

func (s *DocumentStore) SaveCheque(ref string, doc SourceDocument) error {
	return s.putJSON(bucketCheques, NormalizeReference(ref), doc)
}

func (s *DocumentStore) GetInvoice(ref string) (SourceDocument, error) {
	var doc SourceDocument
	if err := s.getJSON(bucketInvoices, NormalizeReference(ref), &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *DocumentStore) GetCheque(ref string) (SourceDocument, error) {
	var doc SourceDocument
	if err := s.getJSON(bucketCheques, NormalizeReference(ref), &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ListInvoices and ListCheques return every known source document
// of their kind, identified by the reference they are addressed by --
// the detector and correction orchestrator treat that reference as
// the document id for these document families (invoices and
// cheques are fetched by ref, not by an opaque document id).
func (s *DocumentStore) ListInvoices() ([]IdentifiedDocument, error) {
	return s.listBucket(bucketInvoices)
}

func (s *DocumentStore) ListCheques() ([]IdentifiedDocument, error) {
	return s.listBucket(bucketCheques)
}

func (s *DocumentStore) listBucket(bucket []byte) ([]IdentifiedDocument, error) {
	var docs []IdentifiedDocument
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var doc SourceDocument
			if err := json.Unmarshal(v, &doc); err != nil {
				return fmt.Errorf("unmarshal %s/%s: %w", bucket, k, err)
			}
			docs = append(docs, IdentifiedDocument{ID: string(k), Doc: doc})
		}
		return nil
	})
	return docs, err
}

// SaveSourceDocument replaces the stored body with doc in whichever of
// the invoice/cheque buckets currently holds ref; it does no merging
// itself (the caller passes the already-merged document).
func (s *DocumentStore) SaveSourceDocument(ref string, doc SourceDocument) error {
	ref = NormalizeReference(ref)
	_, err := s.getRawFromEither(bucketInvoices, bucketCheques, ref)
	if err != nil {
		return fmt.Errorf("source document not found for ref %s: %w", ref, err)
	}
	// try invoices first, fall back to cheques
	var probe SourceDocument
	if err := s.getJSON(bucketInvoices, ref, &probe); err == nil {
		return s.putJSON(bucketInvoices, ref, doc)
	}
	return s.putJSON(bucketCheques, ref, doc)
}

// GetSourceDocument fetches whichever of the invoice/cheque buckets
// currently holds ref.
func (s *DocumentStore) GetSourceDocument(ref string) (SourceDocument, error) {
	ref = NormalizeReference(ref)
	var doc SourceDocument
	if err := s.getJSON(bucketInvoices, ref, &doc); err == nil {
		return doc, nil
	}
	if err := s.getJSON(bucketCheques, ref, &doc); err == nil {
		return doc, nil
	}
	return nil, fmt.Errorf("source document not found: %s", ref)
}

func (s *DocumentStore) getRawFromEither(bucketA, bucketB []byte, key string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(bucketA).Get([]byte(key)); v != nil {
			data = v
			return nil
		}
		if v := tx.Bucket(bucketB).Get([]byte(key)); v != nil {
			data = v
			return nil
		}
		return fmt.Errorf("not found in either bucket: %s", key)
	})
	return data, err
}

// SaveAlert persists an alert, addressable later by opaque id.
func (s *DocumentStore) SaveAlert(alert *Alert) error {
	return s.putJSON(bucketAlerts, alert.ID, alert)
}

// GetAlert fetches an alert record by id.
func (s *DocumentStore) GetAlert(id string) (*Alert, error) {
	var alert Alert
	if err := s.getJSON(bucketAlerts, id, &alert); err != nil {
		return nil, err
	}
	return &alert, nil
}

// ListAlerts returns every persisted alert, in bucket key (alert id)
// order, which is not insertion order.
func (s *DocumentStore) ListAlerts() ([]*Alert, error) {
	var alerts []*Alert
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketAlerts).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var a Alert
			if err := json.Unmarshal(v, &a); err != nil {
				return fmt.Errorf("unmarshal alert %s: %w", k, err)
			}
			alerts = append(alerts, &a)
		}
		return nil
	})
	return alerts, err
}

// SaveConfig persists the anomaly detector configuration, preserving
// unknown keys via cfg.Raw.
func (s *DocumentStore) SaveConfig(cfg *AnomalyConfig) error {
	merged, err := mergeConfigRaw(cfg)
	if err != nil {
		return fmt.Errorf("merge config raw keys: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketConfig).Put([]byte(configKey), merged)
	})
}

// GetConfig loads the persisted configuration, or the documented
// defaults if none has ever been saved.
func (s *DocumentStore) GetConfig() (*AnomalyConfig, error) {
	var raw []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		raw = tx.Bucket(bucketConfig).Get([]byte(configKey))
		return nil
	})
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return DefaultAnomalyConfig(), nil
	}

	cfg := &AnomalyConfig{}
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Raw = append(json.RawMessage(nil), raw...)
	return cfg, nil
}

// mergeConfigRaw re-serializes cfg's known fields, then layers any
// unknown keys from cfg.Raw back on top so a round-trip never drops
// host-specific keys the model doesn't understand.
func mergeConfigRaw(cfg *AnomalyConfig) ([]byte, error) {
	known, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	if len(cfg.Raw) == 0 {
		return known, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(cfg.Raw, &merged); err != nil {
		return known, nil
	}
	var fresh map[string]json.RawMessage
	if err := json.Unmarshal(known, &fresh); err != nil {
		return known, nil
	}
	for k, v := range fresh {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// AppendAuditEvent records an append-only trail entry (replay aid, not
// a signed audit log; see model.go's AuditEvent doc comment).
func (s *DocumentStore) AppendAuditEvent(event *AuditEvent) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("marshal audit event: %w", err)
		}
		key := fmt.Sprintf("%d_%s", event.OccurredAt.UnixNano(), event.ID)
		return tx.Bucket(bucketAuditTrail).Put([]byte(key), data)
	})
}

// GetAuditEvents retrieves every audit event in chronological order.
func (s *DocumentStore) GetAuditEvents() ([]*AuditEvent, error) {
	var events []*AuditEvent
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketAuditTrail).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var e AuditEvent
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("unmarshal audit event %s: %w", k, err)
			}
			events = append(events, &e)
		}
		return nil
	})
	return events, err
}

func (s *DocumentStore) putJSON(bucket []byte, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", bucket, key, err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), data)
	})
}

func (s *DocumentStore) getJSON(bucket []byte, key string, v interface{}) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucket).Get([]byte(key))
		if data == nil {
			return fmt.Errorf("not found: %s/%s", bucket, key)
		}
		return json.Unmarshal(data, v)
	})
}
