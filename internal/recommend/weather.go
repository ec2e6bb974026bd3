package recommend

import (
	"context"
	"math/rand/v2"
	"strings"

	"github.com/charmbracelet/log"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/desertthunder/songrec/internal/services"
	"github.com/desertthunder/songrec/internal/shared"
)

const (
	weatherTrackCap   = 30
	weatherSearchSize = 5
	unknownCondition  = "Unknown"
)

// WeatherGenres maps a lower-cased primary condition to its tags.
var WeatherGenres = map[string][]string{
	"clear":        {"pop", "dance", "summer", "indie pop"},
	"clouds":       {"indie", "alternative", "lo-fi"},
	"rain":         {"acoustic", "jazz", "blues", "sad"},
	"drizzle":      {"chillout", "lo-fi", "acoustic"},
	"thunderstorm": {"rock", "metal", "hard rock"},
	"snow":         {"christmas", "folk", "classical"},
	"mist":         {"ambient", "trip-hop", "shoegaze"},
}

// TornadoGenres wins over the condition map whenever the description mentions a tornado.
var TornadoGenres = []string{"heavy metal", "industrial", "punk"}

var defaultWeatherGenres = []string{"pop"}

// GenresForWeather picks the tag list for a condition and its detailed description.
func GenresForWeather(condition, description string) []string {
	if strings.Contains(strings.ToLower(description), "tornado") {
		return TornadoGenres
	}
	if genres, ok := WeatherGenres[strings.ToLower(condition)]; ok {
		return genres
	}
	return defaultWeatherGenres
}

// WeatherEngine matches tags to the current weather at the caller's location.
type WeatherEngine struct {
	similarity services.SimilarityClient
	catalog    services.CatalogClient
	weather    services.WeatherClient
	rng        *rand.Rand
	logger     *log.Logger
}

// NewWeatherEngine creates a weather engine.
func NewWeatherEngine(deps Deps) *WeatherEngine {
	deps = deps.withDefaults()
	return &WeatherEngine{
		similarity: deps.Similarity,
		catalog:    deps.Catalog,
		weather:    deps.Weather,
		rng:        deps.Rand,
		logger:     deps.Logger.With("engine", EngineWeather),
	}
}

func (e *WeatherEngine) Name() string { return EngineWeather }

func (e *WeatherEngine) Generate(ctx context.Context, progress chan<- ProgressUpdate) (*Result, error) {
	return e.Recommend(ctx, Params{}, progress)
}

// Recommend never fails on a lookup error: it logs and falls back to the default tags.
//
// The display list is shuffled after truncation and the URI list keeps selection order,
// so the two orders are independent.
func (e *WeatherEngine) Recommend(ctx context.Context, _ Params, progress chan<- ProgressUpdate) (*Result, error) {
	condition, genres := e.conditions(ctx, progress)
	perGenre := weatherTrackCap / len(genres)

	result := &Result{Engine: EngineWeather, Seed: condition, PlaylistName: "Songs for " + condition}
	seen := mapset.NewThreadUnsafeSet[string]()
	labels := mapset.NewThreadUnsafeSet[string]()

	for i, genre := range genres {
		sendProgress(progress, tagTracksUpdate(i+1, len(genres), genre))

		found := 0
		for _, t := range e.similarity.TopTracksForTag(ctx, genre, perGenre) {
			if found >= perGenre {
				break
			}
			label := shared.TrackLabel(t.Name, t.Artist)
			if labels.Contains(label) {
				continue
			}

			uri, err := e.catalog.SearchTrack(ctx, t.Name+" "+t.Artist, weatherSearchSize)
			if err != nil {
				e.logger.Warn("catalog search failed", "track", label, "error", err)
				uri = ""
			}
			if uri == "" {
				labels.Add(label)
				result.add(label, "")
				continue
			}
			if !seen.Add(uri) {
				continue
			}
			labels.Add(label)
			result.add(label, uri)
			found++
		}
	}

	if len(result.Items) > weatherTrackCap {
		result.Items = result.Items[:weatherTrackCap]
	}
	if len(result.URIs) > weatherTrackCap {
		result.URIs = result.URIs[:weatherTrackCap]
	}
	// Items move with their URIs; the publishable list keeps selection order.
	e.rng.Shuffle(len(result.Items), func(i, j int) {
		result.Items[i], result.Items[j] = result.Items[j], result.Items[i]
	})
	result.Tracks = result.Tracks[:0]
	for _, item := range result.Items {
		result.Tracks = append(result.Tracks, item.Display)
	}

	sendProgress(progress, completeUpdate(result))
	return result, nil
}

func (e *WeatherEngine) conditions(ctx context.Context, progress chan<- ProgressUpdate) (string, []string) {
	if e.weather == nil {
		e.logger.Warn("no weather client configured, using default genres")
		return unknownCondition, defaultWeatherGenres
	}

	sendProgress(progress, locateUpdate())
	city, err := e.weather.CurrentCity(ctx)
	if err != nil {
		e.logger.Warn("location lookup failed, using default genres", "error", err)
		return unknownCondition, defaultWeatherGenres
	}

	sendProgress(progress, weatherUpdate(city))
	w, err := e.weather.CurrentWeather(ctx, city)
	if err != nil || w == nil {
		e.logger.Warn("weather lookup failed, using default genres", "city", city, "error", err)
		return unknownCondition, defaultWeatherGenres
	}

	genres := GenresForWeather(w.Condition, w.Description)
	e.logger.Info("current weather", "city", w.City, "condition", w.Condition, "description", w.Description)
	sendProgress(progress, pickGenreUpdate(strings.Join(genres, ", "), w.Description))
	return w.Condition, genres
}
