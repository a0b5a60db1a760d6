// Command reconcile drives the ledger-reconciliation engine from the
// shell: computing analytics on a GL export, running a detection pass
// over a GL/RL pair plus source documents, resolving guides for a
// raised alert, applying a correction, or watching a pair of files for
// changes and re-running detection on every edit.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	ledgerrecon "github.com/kheiriddine/smart-close"
)

var cli struct {
	DB    string `help:"Path to the reconciliation document store." default:"reconcile.db"`
	Debug bool   `help:"Enable debug logging."`

	Characteristics CharacteristicsCmd `cmd:"" help:"Ingest a GL export and print its analytic characteristics."`
	Detect          DetectCmd          `cmd:"" help:"Ingest a GL/RL pair plus source documents and run an anomaly detection pass."`
	Guide           GuideCmd           `cmd:"" help:"Resolve and print the correction guide for a raised alert."`
	Correct         CorrectCmd         `cmd:"" help:"Apply a correction to a document by reference."`
	Watch           WatchCmd           `cmd:"" help:"Watch a GL/RL pair for changes and re-run detection on every edit."`
}

// loadEnvOverrides applies .env-style AMOUNT_TOLERANCE_* /
// SEVERITY_THRESHOLD_* overrides onto the process environment before
// any command reads config, so deployment-local overrides don't
// require hand-editing a persisted config document. A missing .env
// file is not an error -- most runs have none.
func loadEnvOverrides() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: failed to load .env: %v\n", err)
	}
}

func main() {
	loadEnvOverrides()

	ctx := kong.Parse(&cli,
		kong.Name("reconcile"),
		kong.Description("GL/RL reconciliation, anomaly detection, and corrective guides."),
		kong.UsageOnError(),
	)

	log := ledgerrecon.NewConsoleLogger(cli.Debug)
	engine, err := ledgerrecon.NewEngine(cli.DB, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	err = ctx.Run(&appContext{engine: engine})
	ctx.FatalIfErrorf(err)
}

// appContext is threaded through every subcommand's Run method by kong.
type appContext struct {
	engine *ledgerrecon.Engine
}
