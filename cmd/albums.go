package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/songrec/internal/formatter"
	"github.com/desertthunder/songrec/internal/recommend"
	"github.com/desertthunder/songrec/internal/shared"
	"github.com/urfave/cli/v3"
)

// AlbumsRandom picks a random album from the user's saved albums.
func (r *Runner) AlbumsRandom(ctx context.Context, cmd *cli.Command) error {
	r.connect(ctx)
	if r.catalog == nil {
		return fmt.Errorf("%w: set the spotify client_id and client_secret", shared.ErrMissingCredentials)
	}

	album, err := recommend.NewAlbumPicker(r.deps()).Pick(ctx)
	if err != nil {
		return err
	}

	if path := cmd.String("cover"); path != "" {
		if err := formatter.WriteAlbumCover(*album, path); err != nil {
			return err
		}
		r.logger.Info("cover saved", "path", path)
	}

	if cmd.Bool("json") {
		return r.writeJSON(album, true)
	}

	r.writePlain("%s\n", recommend.AlbumLine(*album))
	if album.ImageURL != "" {
		r.writePlain("Cover: %s\n", album.ImageURL)
	}
	return nil
}
