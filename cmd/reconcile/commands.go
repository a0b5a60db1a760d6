package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"

	ledgerrecon "github.com/kheiriddine/smart-close"
)

// CharacteristicsCmd normalizes a GL export and prints the resulting
// analytic snapshot.
type CharacteristicsCmd struct {
	GL string `arg:"" help:"Path to the GL (grand livre) JSON export." type:"existingfile"`
}

func (cmd *CharacteristicsCmd) Run(app *appContext) error {
	raw, err := os.ReadFile(cmd.GL)
	if err != nil {
		return fmt.Errorf("read GL file: %w", err)
	}

	documentID := uuid.New().String()
	if err := app.engine.Store().SaveDocument(documentID, "grandlivre", raw); err != nil {
		return fmt.Errorf("save GL document: %w", err)
	}

	chars := app.engine.ComputeCharacteristics(documentID)
	renderCharacteristics(chars)
	return nil
}

// DetectCmd ingests a GL export, an RL export, and zero or more source
// documents (invoices/cheques), then runs an anomaly detection pass
// over the resulting snapshot.
type DetectCmd struct {
	GL   string   `arg:"" help:"Path to the GL (grand livre) JSON export." type:"existingfile"`
	RL   string   `arg:"" help:"Path to the RL (releve bancaire) JSON export." type:"existingfile"`
	Docs []string `arg:"" optional:"" help:"Paths to invoice/cheque source document JSON files." type:"existingfile"`
}

func (cmd *DetectCmd) Run(app *appContext) error {
	store := app.engine.Store()

	glRaw, err := os.ReadFile(cmd.GL)
	if err != nil {
		return fmt.Errorf("read GL file: %w", err)
	}
	if err := store.SaveDocument(uuid.New().String(), "grandlivre", glRaw); err != nil {
		return fmt.Errorf("save GL document: %w", err)
	}

	rlRaw, err := os.ReadFile(cmd.RL)
	if err != nil {
		return fmt.Errorf("read RL file: %w", err)
	}
	if err := store.SaveDocument(uuid.New().String(), "releve", rlRaw); err != nil {
		return fmt.Errorf("save RL document: %w", err)
	}

	for _, path := range cmd.Docs {
		if err := loadSourceDocument(app, path); err != nil {
			return fmt.Errorf("load source document %s: %w", path, err)
		}
	}

	cfg, err := app.engine.Config()
	if err != nil {
		cfg = ledgerrecon.DefaultAnomalyConfig()
	}
	ledgerrecon.ApplyEnvOverrides(cfg)

	alerts, err := app.engine.DetectAnomalies(cfg, "cli")
	if err != nil {
		return fmt.Errorf("run detection pass: %w", err)
	}

	renderAlerts(alerts)
	return nil
}

// loadSourceDocument reads one invoice/cheque JSON file and saves it
// under the invoice or cheque bucket, keyed by its own reference
// field, by inspecting which of the known key sets it carries.
func loadSourceDocument(app *appContext, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var doc ledgerrecon.SourceDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse source document: %w", err)
	}

	store := app.engine.Store()
	if ref, ok := doc[ledgerrecon.KeyNumeroFacture].(string); ok && ref != "" {
		return store.SaveInvoice(ref, doc)
	}
	if ref, ok := doc[ledgerrecon.KeyNumeroCheque].(string); ok && ref != "" {
		return store.SaveCheque(ref, doc)
	}
	return fmt.Errorf("document carries neither %q nor %q", ledgerrecon.KeyNumeroFacture, ledgerrecon.KeyNumeroCheque)
}

// GuideCmd resolves and prints the corrective guide for a previously
// raised alert.
type GuideCmd struct {
	AlertID string `arg:"" help:"ID of a previously raised alert."`
}

func (cmd *GuideCmd) Run(app *appContext) error {
	alert, guide, err := app.engine.GetAlert(cmd.AlertID)
	if err != nil {
		return fmt.Errorf("fetch alert: %w", err)
	}
	renderGuide(alert, guide)
	return nil
}

// CorrectCmd applies a correction to a GL document, an RL document, or
// a source document addressed by reference. Kind selects which
// of the three the new content replaces.
type CorrectCmd struct {
	Kind       string `arg:"" help:"One of: gl, rl, doc." enum:"gl,rl,doc"`
	DocumentID string `arg:"" help:"Document id (ignored for kind=doc, where ref alone addresses the document)."`
	Ref        string `arg:"" help:"Reference whose matching entries/operations are replaced."`
	NewContent string `arg:"" help:"Path to a JSON file with the replacement content." type:"existingfile"`
}

func (cmd *CorrectCmd) Run(app *appContext) error {
	raw, err := os.ReadFile(cmd.NewContent)
	if err != nil {
		return fmt.Errorf("read new-content file: %w", err)
	}

	switch cmd.Kind {
	case "gl":
		var entries []map[string]interface{}
		if err := json.Unmarshal(raw, &entries); err != nil {
			return fmt.Errorf("parse new GL entries: %w", err)
		}
		if err := app.engine.ApplyGLCorrection(cmd.DocumentID, cmd.Ref, entries, "cli"); err != nil {
			return fmt.Errorf("apply GL correction: %w", err)
		}
	case "rl":
		var ops []map[string]interface{}
		if err := json.Unmarshal(raw, &ops); err != nil {
			return fmt.Errorf("parse new RL operations: %w", err)
		}
		if err := app.engine.ApplyRLCorrection(cmd.DocumentID, cmd.Ref, ops, "cli"); err != nil {
			return fmt.Errorf("apply RL correction: %w", err)
		}
	case "doc":
		var content ledgerrecon.SourceDocument
		if err := json.Unmarshal(raw, &content); err != nil {
			return fmt.Errorf("parse new source document content: %w", err)
		}
		if err := app.engine.ApplySourceDocumentCorrection(cmd.Ref, content, "cli"); err != nil {
			return fmt.Errorf("apply source document correction: %w", err)
		}
	}

	fmt.Printf("correction applied: kind=%s ref=%s\n", cmd.Kind, cmd.Ref)
	return nil
}
