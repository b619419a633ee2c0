package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/smartlist/internal/repositories"
	"github.com/desertthunder/smartlist/internal/server"
	"github.com/desertthunder/smartlist/internal/services"
	"github.com/desertthunder/smartlist/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the persistence and sync service until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if r.config.EnsureCSRFToken() {
		r.logger.Info("generated a new csrf token")
		if r.configPath != "" {
			if err := shared.SaveConfig(r.configPath, r.config); err != nil {
				return fmt.Errorf("failed to save generated csrf token: %w", err)
			}
			r.logger.Info("csrf token saved", "path", r.configPath)
		}
	}

	db, err := shared.OpenMigrated(ctx, r.config.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	srv, err := server.New(server.Options{
		Addr:        addr,
		CSRFToken:   r.config.Server.CSRFToken,
		DefaultUser: r.config.Panel.UserID,
		SyncRate:    r.config.Panel.SyncRate,
		Store:       repositories.NewArtistRepository(db),
		Provider:    r.spotifyProvider(ctx),
		Logger:      r.logger,
	})
	if err != nil {
		return err
	}

	r.writePlain("→ Serving on http://%s (ctrl+c to stop)\n", addr)
	return srv.ListenAndServe(ctx)
}

// spotifyProvider returns an authenticated Spotify client, or nil when credentials or tokens are missing.
// Without it the service lists saved ids only.
func (r *Runner) spotifyProvider(ctx context.Context) services.ArtistProvider {
	creds := r.config.Credentials.Spotify
	if !creds.Configured() {
		r.logger.Warn("spotify credentials not configured, serving saved artists only")
		return nil
	}

	token := creds.Token()
	if token == nil {
		r.logger.Warn("spotify not authorized, run 'smartlist auth spotify'")
		return nil
	}

	svc, err := services.NewSpotifyService(creds.Map())
	if err != nil {
		r.logger.Warn("failed to create spotify service", "error", err)
		return nil
	}
	if err := svc.AuthenticateToken(ctx, token); err != nil {
		r.logger.Warn("failed to authenticate spotify service", "error", err)
		return nil
	}
	return svc
}
