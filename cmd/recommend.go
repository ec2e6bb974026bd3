package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/songrec/internal/formatter"
	"github.com/desertthunder/songrec/internal/publish"
	"github.com/desertthunder/songrec/internal/recommend"
	"github.com/desertthunder/songrec/internal/shared"
	"github.com/urfave/cli/v3"
)

// RecommendGenre collects tracks for --seed and its similar tags.
func (r *Runner) RecommendGenre(ctx context.Context, cmd *cli.Command) error {
	params := recommend.Params{Genre: cmd.String("seed"), Limit: cmd.Int("limit")}
	return r.recommend(ctx, cmd, recommend.EngineGenre, &params)
}

// RecommendUser builds a batch from the caller's top artists.
func (r *Runner) RecommendUser(ctx context.Context, cmd *cli.Command) error {
	params := recommend.Params{TimeRange: cmd.String("time-range"), ArtistCount: cmd.Int("artists")}
	return r.recommend(ctx, cmd, recommend.EngineUser, &params)
}

// RecommendSeasonal builds a batch for the current season and time of day.
func (r *Runner) RecommendSeasonal(ctx context.Context, cmd *cli.Command) error {
	return r.recommend(ctx, cmd, recommend.EngineSeasonal, nil)
}

// RecommendWeather builds a batch for the weather at the caller's location.
func (r *Runner) RecommendWeather(ctx context.Context, cmd *cli.Command) error {
	return r.recommend(ctx, cmd, recommend.EngineWeather, nil)
}

// recommend runs one engine. A nil params uses the engine's own seed selection.
func (r *Runner) recommend(ctx context.Context, cmd *cli.Command, name string, params *recommend.Params) error {
	platform := cmd.String("publish")
	if platform != "" && !publish.ValidPlatform(platform) {
		return fmt.Errorf("%w: %q, expected one of %v", shared.ErrUnknownPlatform, platform, publish.Platforms)
	}
	asJSON := cmd.Bool("json")

	r.connect(ctx)
	if err := r.requireEngines(); err != nil {
		return err
	}

	engine, err := recommend.New(name, r.deps())
	if err != nil {
		return err
	}

	r.logger.Info("running engine", "engine", name)

	progressCh := make(chan recommend.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			if asJSON {
				r.logger.Debug(update.Message, "phase", update.Phase)
				continue
			}
			switch update.Phase {
			case recommend.FetchTopTracks, recommend.FetchArtistTracks:
				r.writePlain("   %s\n", update.Message)
			case recommend.ResolveURIs:
				r.logger.Debug(update.Message)
			case recommend.Complete:
			default:
				r.writePlain("🔍 %s\n", update.Message)
			}
		}
	}()

	var result *recommend.Result
	if params != nil {
		result, err = engine.Recommend(ctx, *params, progressCh)
	} else {
		result, err = engine.Generate(ctx, progressCh)
	}
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	runID := r.history.RecordRun(result)

	if output := cmd.String("output"); output != "" {
		if err := formatter.WriteExport(result, output); err != nil {
			return err
		}
		r.logger.Info("batch exported", "path", output)
	}

	if asJSON {
		data, err := formatter.ExportToJSON(result)
		if err != nil {
			return err
		}
		if err := r.writePlain("%s\n", data); err != nil {
			return err
		}
	} else {
		r.printBatch(result)
	}

	if platform == "" {
		return nil
	}
	return r.publish(ctx, runID, result, platform, asJSON)
}

func (r *Runner) printBatch(result *recommend.Result) {
	r.writePlain("\n")
	r.writePlainHeader(fmt.Sprintf("%s: %s", shared.Capitalize(result.Engine), result.PlaylistName))
	if result.Seed != "" {
		r.writePlain("Seed: %s\n\n", result.Seed)
	}
	for i, track := range result.Tracks {
		r.writePlain("%3d. %s\n", i+1, track)
	}
	r.writePlain("\n%d tracks, %d with catalog matches\n", len(result.Tracks), len(result.URIs))
}

// publish sends result to platform and records every playlist that was created.
func (r *Runner) publish(ctx context.Context, runID string, result *recommend.Result, platform string, quiet bool) error {
	progressCh := make(chan publish.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch {
			case quiet:
				r.logger.Debug(update.Message, "platform", update.Platform, "phase", update.Phase)
			case update.Phase == publish.SearchVideos || update.Phase == publish.InsertVideos:
				r.writePlain("   %s\n", update.Message)
			default:
				r.writePlain("📝 %s\n", update.Message)
			}
		}
	}()

	published, err := r.publisher.Publish(ctx, publish.Request{
		Name:     result.PlaylistName,
		URIs:     result.URIs,
		Platform: platform,
	}, progressCh)
	close(progressCh)
	<-done

	if published == nil {
		return err
	}

	r.history.RecordPublish(runID, published)
	if !quiet {
		r.printPublished(published)
	}
	return err
}

func (r *Runner) printPublished(result *publish.Result) {
	r.writePlain("\n")
	r.writePlainHeader(fmt.Sprintf("Published: %s", result.Name))
	for _, p := range result.Platforms {
		if p.Error != nil {
			r.writePlain("✗ %s: %v\n", shared.Capitalize(p.Platform), p.Error)
			continue
		}
		r.writePlain("✓ %s playlist %s (%d added)\n", shared.Capitalize(p.Platform), p.PlaylistID, p.Added)
		for _, query := range p.Skipped {
			r.writePlain("  - no video for %s\n", query)
		}
	}
}
