package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/desertthunder/songrec/internal/credentials"
	"github.com/desertthunder/songrec/internal/server"
	"github.com/desertthunder/songrec/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// AuthSpotify runs the Spotify consent flow and saves the token file.
func (r *Runner) AuthSpotify(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Credentials.Spotify
	oauthCfg, err := credentials.SpotifyOAuth(cfg)
	if err != nil {
		return err
	}
	return r.login(ctx, "Spotify", credentials.NewFileStore(credentials.ServiceSpotify, cfg.TokenPath, oauthCfg))
}

// AuthYouTube runs the Google consent flow and saves the token file.
func (r *Runner) AuthYouTube(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Credentials.YouTube
	oauthCfg, err := credentials.YouTubeOAuth(cfg)
	if err != nil {
		return err
	}
	return r.login(ctx, "YouTube", credentials.NewFileStore(credentials.ServiceYouTube, cfg.TokenPath, oauthCfg))
}

func (r *Runner) login(ctx context.Context, platform string, store *credentials.FileStore) error {
	r.logger.Info("starting authorization", "platform", platform)

	token, err := r.authorize(ctx, server.AuthorizeOpts{
		Platform: platform,
		Config:   store.Config(),
		Addr:     r.config.Server.Addr(),
		Prompt:   r.prompt,
		Logger:   r.logger,
	})
	if err != nil {
		return err
	}

	if err := store.Save(token); err != nil {
		return err
	}

	r.logger.Info("token saved", "platform", platform, "path", store.Path())
	return r.writePlain("✓ %s authorized, token saved to %s\n", platform, store.Path())
}

// TokenStatus describes one saved token file.
type TokenStatus struct {
	Service string    `json:"service"`
	Path    string    `json:"path"`
	Saved   bool      `json:"saved"`
	Refresh bool      `json:"refreshable"`
	Expiry  time.Time `json:"expiry,omitzero"`
	Error   string    `json:"error,omitempty"`
}

// AuthStatus reports saved tokens and runs the Spotify self-test.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("checking auth status")

	statuses := []TokenStatus{
		tokenStatus(ctx, credentials.ServiceSpotify, r.config.Credentials.Spotify.TokenPath),
		tokenStatus(ctx, credentials.ServiceYouTube, r.config.Credentials.YouTube.TokenPath),
	}

	r.connect(ctx)
	user, selfTestErr := r.selfTest(ctx)

	if cmd.Bool("json") {
		data := map[string]any{"tokens": statuses, "spotify_user": user}
		if selfTestErr != nil {
			data["self_test_error"] = selfTestErr.Error()
		}
		return r.writeJSON(data, true)
	}

	r.writePlainHeader("Authorization")
	for _, s := range statuses {
		switch {
		case s.Error != "":
			r.writePlain("✗ %s: %s\n", shared.Capitalize(s.Service), s.Error)
		case !s.Saved:
			r.writePlain("✗ %s: not authorized (run `songrec auth %s`)\n", shared.Capitalize(s.Service), s.Service)
		case s.Expiry.IsZero():
			r.writePlain("✓ %s: token saved at %s\n", shared.Capitalize(s.Service), s.Path)
		default:
			r.writePlain("✓ %s: token saved at %s, expires %s\n", shared.Capitalize(s.Service), s.Path, s.Expiry.Format(time.RFC3339))
		}
	}

	if title, err := r.channelTitle(ctx); err != nil {
		r.logger.Warn("youtube self-test failed", "error", err)
	} else {
		r.writePlain("YouTube channel: %s\n", title)
	}

	if selfTestErr != nil {
		return r.writePlainln("Spotify self-test failed: %v", selfTestErr)
	}
	return r.writePlainln("Spotify self-test: logged in as %s", user)
}

// selfTest asks the catalog for the current user's display name.
func (r *Runner) selfTest(ctx context.Context) (string, error) {
	if r.catalog == nil {
		return "", fmt.Errorf("%w: spotify client not configured", shared.ErrMissingCredentials)
	}
	return r.catalog.CurrentUserName(ctx)
}

// channelTitle asks the video platform for the signed-in channel.
func (r *Runner) channelTitle(ctx context.Context) (string, error) {
	channel, ok := r.video.(interface {
		ChannelTitle(context.Context) (string, error)
	})
	if !ok {
		return "", fmt.Errorf("%w: youtube client not configured", shared.ErrMissingCredentials)
	}
	return channel.ChannelTitle(ctx)
}

func tokenStatus(ctx context.Context, service, path string) TokenStatus {
	store := credentials.NewFileStore(service, path, &oauth2.Config{})
	status := TokenStatus{Service: service, Path: store.Path()}

	if _, err := os.Stat(store.Path()); err != nil {
		return status
	}
	status.Saved = true

	tok, err := store.Token(ctx)
	if err != nil {
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			status.Error = err.Error()
		} else {
			status.Saved = false
		}
		return status
	}
	status.Refresh = tok.RefreshToken != ""
	status.Expiry = tok.Expiry
	return status
}
