package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/desertthunder/smartlist/internal/models"
	"github.com/desertthunder/smartlist/internal/tasks"
	"github.com/urfave/cli/v3"
)

// errSyncIncomplete marks a session in which at least one artist did not complete.
var errSyncIncomplete = errors.New("sync incomplete")

// Sync runs one headless sync session and prints every indicator transition.
//
// Exits non-zero when any artist ends in error, including artists left unresolved by a dropped stream.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	simulate := cmd.Bool("simulate") || r.config.Panel.Simulate
	if timeout := cmd.Duration("timeout"); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var artists []models.Artist
	ids := cmd.StringSlice("artist")
	if !simulate || len(ids) == 0 {
		listed, err := r.panelClient().Artists(ctx)
		if err != nil {
			return fmt.Errorf("failed to list saved artists: %w", err)
		}
		artists = listed
		ids = savedIDs(listed)
	}

	source, err := r.syncSource(simulate, ids, cmd)
	if err != nil {
		return err
	}

	orchestrator := tasks.NewOrchestrator(source, ids...)
	orchestrator.SetLogger(r.logger)
	for _, a := range artists {
		if a.Saved && a.LastUpdated != nil {
			orchestrator.SetLastUpdated(a.ID, *a.LastUpdated)
		}
	}

	progress := make(chan tasks.ProgressUpdate, 4*len(ids)+8)
	orchestrator.SetProgress(progress)

	asJSON := cmd.Bool("json")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			// stdout carries only the result document in JSON mode
			if asJSON {
				r.logger.Info(update.Message, "phase", update.Phase.String())
				continue
			}
			r.writePlain("%s\n", update.Message)
			if update.Phase == tasks.ItemCompleted {
				if s := update.State.LastUpdatedText(); s != "" {
					r.writePlain("    %s\n", s)
				}
			}
		}
	}()

	if !asJSON {
		r.writePlainHeader(fmt.Sprintf("Syncing %d saved artists", len(ids)))
	}

	res, runErr := orchestrator.Run(ctx)
	close(progress)
	wg.Wait()

	if asJSON {
		if err := r.writeJSON(res, true); err != nil {
			return err
		}
	}

	if runErr != nil {
		return fmt.Errorf("sync failed: %w", runErr)
	}
	if !res.OK() {
		return fmt.Errorf("%w: %d failed, %d not synced", errSyncIncomplete, len(res.Failed), len(res.Disconnected))
	}
	return nil
}

func (r *Runner) syncSource(simulate bool, ids []string, cmd *cli.Command) (tasks.EventSource, error) {
	if !simulate {
		src, err := r.panelClient().SyncSource()
		if err != nil {
			return nil, fmt.Errorf("failed to build sync source: %w", err)
		}
		src.Logger = r.logger
		return src, nil
	}

	delay := cmd.Duration("delay")
	if delay <= 0 {
		delay = r.config.Panel.Delay()
	}

	src := tasks.NewScriptedSource(delay, ids...)
	if fails := cmd.StringSlice("fail"); len(fails) > 0 {
		src.Failures = make(map[string]string, len(fails))
		for _, id := range fails {
			src.Failures[id] = "simulated failure"
		}
	}
	r.logger.Info("simulating sync", "artists", len(ids), "delay", delay)
	return src, nil
}

func savedIDs(artists []models.Artist) []string {
	var ids []string
	for _, a := range artists {
		if a.Saved {
			ids = append(ids, a.ID)
		}
	}
	return ids
}
