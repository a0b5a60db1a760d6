package ledgerrecon

import "encoding/json"

// ParseGLDocument/ParseRLDocument decode GL/RL wire documents through
// map[string]interface{} rather than a strict struct and return only the
// canonical entries/operations. Other top-level keys are not returned;
// correction.go keeps them on write by rewriting the decoded map.

// ParseGLDocument decodes a GL wire document and normalizes its
// ecritures_comptables into canonical entries. A document missing the
// expected list key yields (nil, error) per the input-shape
// policy -- the caller is expected to fall back to a zero snapshot.
func ParseGLDocument(raw json.RawMessage) ([]*LedgerEntry, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	rawEntries, ok := doc["ecritures_comptables"].([]interface{})
	if !ok {
		return nil, errMissingKey("ecritures_comptables")
	}

	entries := make([]*LedgerEntry, 0, len(rawEntries))
	for _, re := range rawEntries {
		m, ok := re.(map[string]interface{})
		if !ok {
			continue
		}
		entry, ok := NormalizeEntry(m)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ParseRLDocument decodes an RL wire document into canonical bank
// operations.
func ParseRLDocument(raw json.RawMessage) ([]*BankOperation, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	rawOps, ok := doc["operations"].([]interface{})
	if !ok {
		return nil, errMissingKey("operations")
	}

	ops := make([]*BankOperation, 0, len(rawOps))
	for _, ro := range rawOps {
		m, ok := ro.(map[string]interface{})
		if !ok {
			continue
		}
		date, _ := probeString(m, []string{"date", "Date", "DATE"})
		nature, _ := probeString(m, []string{"nature", "Nature"})
		typ, _ := probeString(m, []string{"type", "Type"})
		ops = append(ops, &BankOperation{
			Date:    ParseDate(date),
			Nature:  nature,
			Montant: probeAmount(m, []string{"montant", "Montant"}),
			Type:    typ,
		})
	}
	return ops, nil
}

type missingKeyError struct{ key string }

func (e *missingKeyError) Error() string {
	return "document missing expected key: " + e.key
}

func errMissingKey(key string) error {
	return &missingKeyError{key: key}
}
