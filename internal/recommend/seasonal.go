package recommend

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songrec/internal/services"
	"github.com/desertthunder/songrec/internal/shared"
)

const seasonalTrackCount = 30

// Palettes maps a season to its candidate tags.
var Palettes = map[string][]string{
	"spring":    {"indie pop", "folk", "acoustic", "singer-songwriter", "indie folk"},
	"summer":    {"pop", "dance", "reggae", "summer", "house", "tropical house"},
	"autumn":    {"indie", "alternative", "folk rock", "lo-fi", "dream pop"},
	"winter":    {"classical", "ambient", "jazz", "piano", "chillout"},
	"christmas": {"christmas", "christmas pop", "holiday", "xmas", "christmas classics"},
}

var seasonAdjectives = map[string]string{
	"spring":    "spring",
	"summer":    "summery",
	"autumn":    "autumnal",
	"winter":    "wintry",
	"christmas": "festive",
}

// Moment is the derived label pair for a point in time.
type Moment struct {
	Season    string
	TimeOfDay string
}

// MomentOf classifies t. December 25 is its own season.
func MomentOf(t time.Time) Moment {
	return Moment{Season: seasonOf(t), TimeOfDay: timeOfDay(t.Hour())}
}

func timeOfDay(hour int) string {
	switch {
	case hour >= 5 && hour <= 11:
		return "morning"
	case hour >= 12 && hour <= 17:
		return "afternoon"
	case hour >= 18 && hour <= 20:
		return "evening"
	default:
		return "night"
	}
}

func seasonOf(t time.Time) string {
	if t.Month() == time.December && t.Day() == 25 {
		return "christmas"
	}
	switch t.Month() {
	case time.March, time.April, time.May:
		return "spring"
	case time.June, time.July, time.August:
		return "summer"
	case time.September, time.October, time.November:
		return "autumn"
	default:
		return "winter"
	}
}

// SeasonalEngine picks a tag from the palette for the current season and time of day.
type SeasonalEngine struct {
	similarity services.SimilarityClient
	catalog    services.CatalogClient
	now        func() time.Time
	rng        *rand.Rand
	logger     *log.Logger
}

// NewSeasonalEngine creates a seasonal engine. The clock and random source come from deps.
func NewSeasonalEngine(deps Deps) *SeasonalEngine {
	deps = deps.withDefaults()
	return &SeasonalEngine{
		similarity: deps.Similarity,
		catalog:    deps.Catalog,
		now:        deps.Now,
		rng:        deps.Rand,
		logger:     deps.Logger.With("engine", EngineSeasonal),
	}
}

func (e *SeasonalEngine) Name() string { return EngineSeasonal }

func (e *SeasonalEngine) Generate(ctx context.Context, progress chan<- ProgressUpdate) (*Result, error) {
	return e.Recommend(ctx, Params{}, progress)
}

// Recommend ignores params: the moment decides everything.
func (e *SeasonalEngine) Recommend(ctx context.Context, _ Params, progress chan<- ProgressUpdate) (*Result, error) {
	moment := MomentOf(e.now())
	palette := Palettes[moment.Season]
	genre := palette[e.rng.IntN(len(palette))]

	sendProgress(progress, pickGenreUpdate(genre, moment.Season+" "+moment.TimeOfDay))
	e.logger.Debug("picked genre", "season", moment.Season, "time_of_day", moment.TimeOfDay, "genre", genre)

	result := &Result{
		Engine:       EngineSeasonal,
		Seed:         genre,
		PlaylistName: fmt.Sprintf("%s songs on a %s %s", genre, seasonAdjectives[moment.Season], moment.TimeOfDay),
	}

	sendProgress(progress, tagTracksUpdate(1, 1, genre))
	top := e.similarity.TopTracksForTag(ctx, genre, seasonalTrackCount)
	for i, t := range top {
		label := shared.TrackLabel(t.Name, t.Artist)

		sendProgress(progress, resolveUpdate(i+1, len(top), label))
		uri, err := e.catalog.SearchTrack(ctx, t.Name+" "+t.Artist, 1)
		if err != nil {
			e.logger.Warn("catalog search failed", "track", label, "error", err)
			uri = ""
		}
		result.add(label, uri)
	}

	sendProgress(progress, completeUpdate(result))
	return result, nil
}
