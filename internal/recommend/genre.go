package recommend

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/desertthunder/songrec/internal/services"
	"github.com/desertthunder/songrec/internal/shared"
)

const (
	defaultGenreLimit = 20
	similarTagCount   = 2
)

// GenreEngine expands a seed tag with its closest similar tags and collects their top tracks.
type GenreEngine struct {
	similarity services.SimilarityClient
	catalog    services.CatalogClient
	limit      int
	logger     *log.Logger
}

// NewGenreEngine creates a genre engine.
func NewGenreEngine(deps Deps) *GenreEngine {
	deps = deps.withDefaults()
	limit := deps.Config.GenreLimit
	if limit <= 0 {
		limit = defaultGenreLimit
	}
	return &GenreEngine{
		similarity: deps.Similarity,
		catalog:    deps.Catalog,
		limit:      limit,
		logger:     deps.Logger.With("engine", EngineGenre),
	}
}

func (e *GenreEngine) Name() string { return EngineGenre }

// Generate fails with [shared.ErrInvalidInput]: the genre engine has no default seed.
func (e *GenreEngine) Generate(ctx context.Context, progress chan<- ProgressUpdate) (*Result, error) {
	return e.Recommend(ctx, Params{}, progress)
}

// Recommend queries the seed tag and then up to two similar tags, in that order. Each
// tag contributes up to limit new tracks; the run stops after the first tag whose batch
// brings the total to limit or more, so the result may overshoot by part of one batch.
func (e *GenreEngine) Recommend(ctx context.Context, params Params, progress chan<- ProgressUpdate) (*Result, error) {
	seed := strings.TrimSpace(params.Genre)
	if seed == "" {
		return nil, fmt.Errorf("%w: genre seed is required", shared.ErrInvalidInput)
	}
	limit := params.Limit
	if limit <= 0 {
		limit = e.limit
	}

	sendProgress(progress, similarUpdate(seed))
	similar := e.similarity.SimilarTags(ctx, seed)
	if len(similar) > similarTagCount {
		similar = similar[:similarTagCount]
	}
	tags := append([]string{seed}, similar...)
	e.logger.Debug("expanded seed", "seed", seed, "tags", tags)

	result := &Result{Engine: EngineGenre, Seed: seed, PlaylistName: seed + " songs"}
	seen := mapset.NewThreadUnsafeSet[string]()

	for i, tag := range tags {
		sendProgress(progress, tagTracksUpdate(i+1, len(tags), tag))

		for _, t := range e.similarity.TopTracksForTag(ctx, tag, limit) {
			label := shared.TrackLabel(t.Name, t.Artist)
			if !seen.Add(label) {
				continue
			}
			sendProgress(progress, resolveUpdate(len(result.Tracks)+1, limit, label))
			query := fmt.Sprintf("track:%q artist:%q", t.Name, t.Artist)
			uri, err := e.catalog.SearchTrack(ctx, query, 1)
			if err != nil {
				e.logger.Warn("catalog search failed", "track", label, "error", err)
				uri = ""
			}
			result.add(label, uri)
		}

		if len(result.Tracks) >= limit {
			break
		}
	}

	// Display may overshoot by one batch; the publishable list may not.
	if len(result.URIs) > limit {
		result.URIs = result.URIs[:limit]
	}

	sendProgress(progress, completeUpdate(result))
	return result, nil
}
