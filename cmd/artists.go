package main

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/desertthunder/smartlist/internal/form"
	"github.com/desertthunder/smartlist/internal/formatter"
	"github.com/desertthunder/smartlist/internal/models"
	"github.com/desertthunder/smartlist/internal/shared"
	"github.com/urfave/cli/v3"
)

// ArtistsList prints the followed artists, optionally fuzzy-filtered by name.
func (r *Runner) ArtistsList(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	artists, err := r.panelClient().Artists(ctx)
	if err != nil {
		return fmt.Errorf("failed to list artists: %w", err)
	}

	if cmd.Bool("saved") {
		artists = slices.DeleteFunc(artists, func(a models.Artist) bool { return !a.Saved })
	}
	artists = formatter.Filter(artists, cmd.String("filter"))
	r.logger.Debug("listing artists", "count", len(artists), "format", format)

	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteExport(artists, format, path); err != nil {
			return err
		}
		return r.writePlain("✓ Wrote %d artists to %s\n", len(artists), path)
	}

	data, err := formatter.Render(artists, format)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// ArtistsSave commits --on and --off ids in a single request.
//
// Each id becomes a toggle whose baseline is the opposite of the wanted value, so the form controller sees
// exactly the requested changes as dirty and commits them atomically.
func (r *Runner) ArtistsSave(ctx context.Context, cmd *cli.Command) error {
	changes, err := parseChanges(cmd.StringSlice("on"), cmd.StringSlice("off"))
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(changes))
	for id := range changes {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	fields := make([]*form.ToggleField, 0, len(ids))
	for _, id := range ids {
		f := form.NewToggleField(id, id, !changes[id])
		f.Set(changes[id])
		fields = append(fields, f)
	}

	ctl, err := form.NewController(r.panelClient(), fields...)
	if err != nil {
		return err
	}
	ctl.SetLogger(r.logger)

	res, err := ctl.Save(ctx)
	if err != nil {
		if errors.Is(err, form.ErrNothingToSave) {
			return fmt.Errorf("%w: nothing to save", shared.ErrMissingArgument)
		}
		return fmt.Errorf("%s: %w", ctl.Message(), err)
	}

	on, off := models.ArtistsPayload{Artists: res.Changes}.Split()
	r.writePlain("✓ Saved %d artists, removed %d\n", len(on), len(off))
	return nil
}

// parseChanges merges --on and --off into a commit payload. An id on both sides is rejected.
func parseChanges(on, off []string) (map[string]bool, error) {
	if len(on) == 0 && len(off) == 0 {
		return nil, fmt.Errorf("%w: pass at least one --on or --off artist id", shared.ErrMissingArgument)
	}

	changes := make(map[string]bool, len(on)+len(off))
	for _, id := range on {
		changes[id] = true
	}
	for _, id := range off {
		if changes[id] {
			return nil, fmt.Errorf("%w: artist %q is in both --on and --off", shared.ErrInvalidArgument, id)
		}
		changes[id] = false
	}

	if err := (models.ArtistsPayload{Artists: changes}).Validate(); err != nil {
		return nil, err
	}
	return changes, nil
}
