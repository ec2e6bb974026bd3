package recommend

import (
	"context"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/desertthunder/songrec/internal/services"
	"github.com/desertthunder/songrec/internal/shared"
)

const (
	defaultTopArtists = 5
	defaultTimeRange  = "medium_term"
	userTrackCap      = 30
	artistTopTracks   = 10
)

var timeRanges = mapset.NewSet("short_term", "medium_term", "long_term")

// UserEngine builds a playlist from artists similar to the signed-in user's top artists.
type UserEngine struct {
	similarity services.SimilarityClient
	catalog    services.CatalogClient
	artists    int
	timeRange  string
	logger     *log.Logger
}

// NewUserEngine creates a user-taste engine.
func NewUserEngine(deps Deps) *UserEngine {
	deps = deps.withDefaults()
	e := &UserEngine{
		similarity: deps.Similarity,
		catalog:    deps.Catalog,
		artists:    deps.Config.TopArtists,
		timeRange:  deps.Config.TimeRange,
		logger:     deps.Logger.With("engine", EngineUser),
	}
	if e.artists <= 0 {
		e.artists = defaultTopArtists
	}
	if e.timeRange == "" {
		e.timeRange = defaultTimeRange
	}
	return e
}

func (e *UserEngine) Name() string { return EngineUser }

func (e *UserEngine) Generate(ctx context.Context, progress chan<- ProgressUpdate) (*Result, error) {
	return e.Recommend(ctx, Params{}, progress)
}

func (e *UserEngine) Recommend(ctx context.Context, params Params, progress chan<- ProgressUpdate) (*Result, error) {
	n := params.ArtistCount
	if n <= 0 {
		n = e.artists
	}
	timeRange := params.TimeRange
	if timeRange == "" {
		timeRange = e.timeRange
	}
	if !timeRanges.Contains(timeRange) {
		return nil, fmt.Errorf("%w: time range %q (want short_term, medium_term or long_term)", shared.ErrInvalidInput, timeRange)
	}

	sendProgress(progress, topArtistsUpdate(timeRange))
	seeds, err := e.catalog.UserTopArtists(ctx, timeRange, n)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch top artists: %w", err)
	}

	candidates := e.candidates(ctx, seeds)
	e.logger.Debug("candidate artists", "seeds", seeds, "candidates", candidates)

	result := &Result{Engine: EngineUser, Seed: timeRange}
	if len(candidates) > 0 {
		e.collect(ctx, result, candidates, progress)
	}

	name, err := e.catalog.CurrentUserName(ctx)
	if err != nil {
		e.logger.Warn("could not read display name", "error", err)
		result.PlaylistName = "Your playlist"
	} else {
		result.PlaylistName = name + "'s playlist"
	}

	sendProgress(progress, completeUpdate(result))
	return result, nil
}

// candidates ranks similar artists for the seeds (best first, rank 0).
//
// Each seed's first similar artist is always kept. The rest follow by summed weight
// (N - rank per recommending seed), ties broken by name, up to 2N names in total.
func (e *UserEngine) candidates(ctx context.Context, seeds []string) []string {
	n := len(seeds)
	weights := map[string]int{}
	mustInclude := make([]string, 0, n)
	included := mapset.NewThreadUnsafeSet[string]()

	for rank, seed := range seeds {
		similar := e.similarity.SimilarArtists(ctx, seed)
		for _, name := range similar {
			weights[name] += n - rank
		}
		if len(similar) > 0 && included.Add(similar[0]) {
			mustInclude = append(mustInclude, similar[0])
		}
	}

	if len(weights) == 0 {
		return seeds
	}

	rest := make([]string, 0, len(weights))
	for name := range weights {
		if !included.Contains(name) {
			rest = append(rest, name)
		}
	}
	sort.Slice(rest, func(i, j int) bool {
		if weights[rest[i]] != weights[rest[j]] {
			return weights[rest[i]] > weights[rest[j]]
		}
		return rest[i] < rest[j]
	})

	out := mustInclude
	for _, name := range rest {
		if len(out) >= 2*n {
			break
		}
		out = append(out, name)
	}
	return out
}

// collect takes floor(30/len(candidates)) tracks per artist (at least one), skipping
// tracks already selected, until 30 tracks are chosen.
func (e *UserEngine) collect(ctx context.Context, result *Result, candidates []string, progress chan<- ProgressUpdate) {
	perArtist := max(1, userTrackCap/len(candidates))
	selected := mapset.NewThreadUnsafeSet[string]()
	labels := mapset.NewThreadUnsafeSet[string]()

	for i, artist := range candidates {
		if len(result.Items) >= userTrackCap {
			break
		}
		sendProgress(progress, artistTracksUpdate(i+1, len(candidates), artist))

		top, err := e.catalog.TopTracksForArtist(ctx, artist, artistTopTracks)
		if err != nil {
			e.logger.Warn("top tracks failed", "artist", artist, "error", err)
			continue
		}

		taken := 0
		for _, t := range top {
			if taken >= perArtist || len(result.Items) >= userTrackCap {
				break
			}
			label := shared.TrackLabel(t.Name, t.Artist)
			// Same id means same track. The label check also keeps one batch free of
			// duplicate display strings when a track is released under several ids.
			if selected.Contains(t.ID) || labels.Contains(label) {
				continue
			}
			selected.Add(t.ID)
			labels.Add(label)
			result.add(label, t.URI)
			taken++
		}
	}
}
