package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	ledgerrecon "github.com/kheiriddine/smart-close"
)

// WatchCmd re-runs a detection pass every time the GL or RL file on
// disk changes, serializing passes one at a time so a
// burst of writes (an editor's save-then-rewrite) never runs two
// passes over an inconsistent half-written file concurrently.
type WatchCmd struct {
	GL string `arg:"" help:"Path to the GL (grand livre) JSON export." type:"existingfile"`
	RL string `arg:"" help:"Path to the RL (releve bancaire) JSON export." type:"existingfile"`
}

func (cmd *WatchCmd) Run(app *appContext) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start file watcher: %w", err)
	}
	defer watcher.Close()

	for _, path := range []string{cmd.GL, cmd.RL} {
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
	}

	fmt.Printf("watching %s and %s for changes; Ctrl+C to stop\n", cmd.GL, cmd.RL)

	if err := cmd.runPass(app); err != nil {
		fmt.Fprintf(os.Stderr, "initial detection pass failed: %v\n", err)
	}

	// debounce: editors frequently emit multiple events (write, chmod,
	// rename-and-replace) per logical save, so passes are coalesced
	// behind a short quiet window rather than firing on every event.
	var pending *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(300*time.Millisecond, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watcher error: %v\n", err)
		case <-fire:
			if err := cmd.runPass(app); err != nil {
				fmt.Fprintf(os.Stderr, "detection pass failed: %v\n", err)
			}
		}
	}
}

func (cmd *WatchCmd) runPass(app *appContext) error {
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

	cfg, err := app.engine.Config()
	if err != nil {
		cfg = ledgerrecon.DefaultAnomalyConfig()
	}
	ledgerrecon.ApplyEnvOverrides(cfg)

	alerts, err := app.engine.DetectAnomalies(cfg, "watch")
	if err != nil {
		return fmt.Errorf("run detection pass: %w", err)
	}

	fmt.Printf("--- pass at %s ---\n", time.Now().Format(time.RFC3339))
	renderAlerts(alerts)
	return nil
}
