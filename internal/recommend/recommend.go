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

const (
	EngineGenre    = "genre"
	EngineUser     = "user"
	EngineSeasonal = "seasonal"
	EngineWeather  = "weather"
)

// Engines lists the engine names in menu order.
var Engines = []string{EngineGenre, EngineUser, EngineSeasonal, EngineWeather}

// Params are the per-run inputs. Zero values fall back to the engine's defaults.
type Params struct {
	Genre       string // seed tag, genre engine only
	Limit       int    // genre engine only
	TimeRange   string // user engine only
	ArtistCount int    // user engine only
}

// Recommendation is one selected track and its catalog URI, empty when nothing matched.
type Recommendation struct {
	Display string `json:"track"`
	URI     string `json:"uri,omitempty"`
}

// Result is one recommendation batch.
//
// Items keeps each track paired with its own URI. Tracks mirrors Items in display order.
// URIs is the publishable list in selection order: it skips unmatched tracks, may be
// capped below len(Items) and is not reordered when the weather engine shuffles.
type Result struct {
	Engine       string
	Seed         string
	Items        []Recommendation
	Tracks       []string
	URIs         []string
	PlaylistName string
}

// add records a selected track. An empty uri counts as no catalog match.
func (r *Result) add(display, uri string) {
	r.Items = append(r.Items, Recommendation{Display: display, URI: uri})
	r.Tracks = append(r.Tracks, display)
	if uri != "" {
		r.URIs = append(r.URIs, uri)
	}
}

// Engine produces a recommendation batch.
type Engine interface {
	// Name returns the engine identifier used on the command line.
	Name() string

	// Recommend runs the engine with explicit parameters.
	Recommend(ctx context.Context, params Params, progress chan<- ProgressUpdate) (*Result, error)

	// Generate runs the engine with its configured defaults.
	Generate(ctx context.Context, progress chan<- ProgressUpdate) (*Result, error)
}

// Deps are the collaborators shared by every engine.
type Deps struct {
	Similarity services.SimilarityClient
	Catalog    services.CatalogClient
	Weather    services.WeatherClient
	Config     shared.RecommendConfig
	Logger     *log.Logger
	Now        func() time.Time // defaults to time.Now
	Rand       *rand.Rand       // defaults to a time-seeded source
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = log.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Rand == nil {
		seed := uint64(time.Now().UnixNano())
		d.Rand = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return d
}

// New builds the engine registered under name.
func New(name string, deps Deps) (Engine, error) {
	deps = deps.withDefaults()
	switch name {
	case EngineGenre:
		return NewGenreEngine(deps), nil
	case EngineUser:
		return NewUserEngine(deps), nil
	case EngineSeasonal:
		return NewSeasonalEngine(deps), nil
	case EngineWeather:
		return NewWeatherEngine(deps), nil
	default:
		return nil, fmt.Errorf("%w: %q", shared.ErrUnknownEngine, name)
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
