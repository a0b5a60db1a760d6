package ledgerrecon

import "strings"

// ReferenceIndex answers "which GL entries, bank operations, and source
// documents carry this reference token". Matching is substring,
// case-insensitive (via NormalizeReference), against the label/nature
// field of GL/RL and the invoice/cheque number fields of documents.
// The entry or operation is the unit of matching: one whose text
// contains ref several times is returned once.
type ReferenceIndex struct {
	gl   []refEntry
	rl   []refOp
	docs []refDoc

	docsByRef map[string][]SourceDocument
}

type refEntry struct {
	label string
	entry *LedgerEntry
}

type refOp struct {
	nature string
	op     *BankOperation
}

type refDoc struct {
	ref string
	doc SourceDocument
}

// BuildReferenceIndex scans the three document sets once and produces
// an index supporting repeated lookups without re-scanning.
func BuildReferenceIndex(gl []*LedgerEntry, rl []*BankOperation, docs []SourceDocument) *ReferenceIndex {
	idx := &ReferenceIndex{
		docsByRef: map[string][]SourceDocument{},
	}

	for _, e := range gl {
		idx.gl = append(idx.gl, refEntry{NormalizeReference(e.Label), e})
	}

	for _, op := range rl {
		idx.rl = append(idx.rl, refOp{NormalizeReference(op.Nature), op})
	}

	for _, d := range docs {
		ref := documentReference(d)
		if ref == "" {
			continue
		}
		idx.docsByRef[ref] = append(idx.docsByRef[ref], d)
		idx.docs = append(idx.docs, refDoc{ref, d})
	}

	return idx
}

// documentReference extracts the canonical reference token of a source
// document: invoice number if present, otherwise cheque number.
func documentReference(d SourceDocument) string {
	if v, ok := d[KeyNumeroFacture]; ok {
		if s, ok := v.(string); ok && s != "" {
			return NormalizeReference(s)
		}
	}
	if v, ok := d[KeyNumeroCheque]; ok {
		if s, ok := v.(string); ok && s != "" {
			return NormalizeReference(s)
		}
	}
	return ""
}

// GLByReference returns every GL entry whose label contains ref as a
// substring (case-insensitive).
func (idx *ReferenceIndex) GLByReference(ref string) []*LedgerEntry {
	ref = NormalizeReference(ref)
	var matches []*LedgerEntry
	for _, re := range idx.gl {
		if strings.Contains(re.label, ref) {
			matches = append(matches, re.entry)
		}
	}
	return matches
}

// RLByReference returns every bank operation whose nature contains ref.
func (idx *ReferenceIndex) RLByReference(ref string) []*BankOperation {
	ref = NormalizeReference(ref)
	var matches []*BankOperation
	for _, ro := range idx.rl {
		if strings.Contains(ro.nature, ref) {
			matches = append(matches, ro.op)
		}
	}
	return matches
}

// DocsByReference returns every source document carrying ref as its
// invoice or cheque number. When no number equals ref exactly, it
// returns the documents whose number contains ref or is contained in
// it.
func (idx *ReferenceIndex) DocsByReference(ref string) []SourceDocument {
	ref = NormalizeReference(ref)
	if exact := idx.docsByRef[ref]; len(exact) > 0 {
		return exact
	}
	var matches []SourceDocument
	for _, rd := range idx.docs {
		if strings.Contains(rd.ref, ref) || strings.Contains(ref, rd.ref) {
			matches = append(matches, rd.doc)
		}
	}
	return matches
}

// AllDocumentReferences returns the distinct set of reference tokens
// carried by the source documents, in no particular order.
func (idx *ReferenceIndex) AllDocumentReferences() []string {
	refs := make([]string, 0, len(idx.docsByRef))
	for ref := range idx.docsByRef {
		refs = append(refs, ref)
	}
	return refs
}

// extractReference pulls a candidate reference-looking token out of a
// free-text GL label: its first maximal run of alphanumerics of length
// >= 3, normalized to uppercase. It only seeds which references a GL
// entry might carry for ECART_MONTANT's unguided GL/RL scan, which has
// no externally known reference to start from; it is never used to
// decide whether a *known* reference matches an entry -- that decision
// always goes through GLByReference/RLByReference's substring test
// against the entry's full label/nature text.
func extractReference(text string) string {
	normalized := NormalizeReference(text)
	var best string
	var current strings.Builder
	flush := func() {
		if current.Len() >= 3 && best == "" {
			best = current.String()
		}
		current.Reset()
	}
	for _, r := range normalized {
		if isAlnum(r) {
			current.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return best
}

func isAlnum(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}
