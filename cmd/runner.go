package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songrec/internal/credentials"
	"github.com/desertthunder/songrec/internal/publish"
	"github.com/desertthunder/songrec/internal/recommend"
	"github.com/desertthunder/songrec/internal/repositories"
	"github.com/desertthunder/songrec/internal/server"
	"github.com/desertthunder/songrec/internal/services"
	"github.com/desertthunder/songrec/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Authorizer runs an OAuth authorization code flow.
type Authorizer func(ctx context.Context, opts server.AuthorizeOpts) (*oauth2.Token, error)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Clients that were not injected are built from the configuration on first use by [Runner.connect].
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	similarity services.SimilarityClient
	catalog    services.CatalogClient
	video      services.VideoClient
	weather    services.WeatherClient
	history    *repositories.HistoryRecorder
	publisher  *publish.Publisher
	authorize  Authorizer

	connected bool
	closers   []io.Closer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer

	Similarity services.SimilarityClient
	Catalog    services.CatalogClient
	Video      services.VideoClient
	Weather    services.WeatherClient
	History    *repositories.HistoryRecorder
	Authorize  Authorizer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Authorize == nil {
		opts.Authorize = server.Authorize
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		similarity: opts.Similarity,
		catalog:    opts.Catalog,
		video:      opts.Video,
		weather:    opts.Weather,
		history:    opts.History,
		authorize:  opts.Authorize,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		recommendCommand, albumsCommand, authCommand, setupCommand, historyCommand, interactiveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// load is the root Before hook: it reads the config file and the environment overlay.
func (r *Runner) load(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	r.configPath = cmd.String("config")
	if _, err := os.Stat(r.configPath); err == nil {
		config, err := shared.LoadConfig(r.configPath)
		if err != nil {
			return ctx, err
		}
		r.config = config
	} else {
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
	}

	if err := shared.ApplyEnv(r.config, cmd.String("env-file")); err != nil {
		return ctx, err
	}
	return ctx, nil
}

// connect builds every client that was not injected. Missing credentials leave the
// client unset; commands that need it report that through [Runner.requireEngines].
func (r *Runner) connect(ctx context.Context) {
	if r.connected {
		return
	}
	r.connected = true
	cfg := r.config

	if r.similarity == nil {
		if key := cfg.Credentials.LastFM.APIKey; configured(key) {
			r.similarity = services.NewLastFMService(services.LastFMOpts{
				APIKey:            key,
				BaseURL:           cfg.Credentials.LastFM.BaseURL,
				HTTPClient:        r.httpClient,
				RequestsPerSecond: cfg.Recommend.RequestsPerS,
				Cache:             r.responseCache(ctx),
				CacheTTL:          time.Duration(cfg.Cache.TTLMinutes) * time.Minute,
				Logger:            r.logger,
			})
		} else {
			r.logger.Debug("last.fm api key not set")
		}
	}

	if r.catalog == nil && configured(cfg.Credentials.Spotify.ClientID) {
		if oauthCfg, err := credentials.SpotifyOAuth(cfg.Credentials.Spotify); err != nil {
			r.logger.Debug("spotify not configured", "error", err)
		} else {
			r.catalog = services.NewSpotifyService(ctx, services.SpotifyOpts{
				Store:       r.spotifyStore(oauthCfg),
				Market:      cfg.Recommend.Market,
				Description: cfg.Publish.Description,
				Logger:      r.logger,
			})
		}
	}

	if r.video == nil && configured(cfg.Credentials.YouTube.ClientID) {
		if oauthCfg, err := credentials.YouTubeOAuth(cfg.Credentials.YouTube); err != nil {
			r.logger.Debug("youtube not configured", "error", err)
		} else {
			store := credentials.NewFileStore(credentials.ServiceYouTube, cfg.Credentials.YouTube.TokenPath, oauthCfg)
			svc, err := services.NewYouTubeService(ctx, services.YouTubeOpts{
				Store:       store,
				Description: cfg.Publish.Description,
				Logger:      r.logger,
			})
			if err != nil {
				r.logger.Warn("youtube client unavailable", "error", err)
			} else {
				r.video = svc
			}
		}
	}

	if r.weather == nil && configured(cfg.Credentials.OpenWeather.APIKey) {
		r.weather = services.NewWeatherService(services.WeatherOpts{
			APIKey:     cfg.Credentials.OpenWeather.APIKey,
			Country:    cfg.Recommend.Country,
			WeatherURL: cfg.Credentials.OpenWeather.BaseURL,
			HTTPClient: r.httpClient,
			Logger:     r.logger,
		})
	}

	if r.history == nil {
		db, err := shared.OpenHistory(cfg.Database)
		if err != nil {
			r.logger.Warn("history disabled", "path", cfg.Database.Path, "error", err)
		} else {
			r.closers = append(r.closers, db)
			r.history = repositories.NewHistoryRecorder(db, r.logger)
		}
	}

	r.publisher = publish.New(publish.Opts{
		Catalog:            r.catalog,
		Video:              r.video,
		MinVideoSimilarity: cfg.Publish.MinVideoSimilarity,
		Logger:             r.logger,
	})
}

// configured reports whether v holds a real value rather than a template placeholder.
func configured(v string) bool {
	return v != "" && !strings.HasPrefix(v, "your_")
}

// spotifyStore prefers the user token saved by `songrec auth spotify`. Without one,
// client credentials still allow catalog search.
func (r *Runner) spotifyStore(oauthCfg *oauth2.Config) credentials.Store {
	path := shared.ExpandPath(r.config.Credentials.Spotify.TokenPath)
	if _, err := os.Stat(path); err == nil {
		return credentials.NewFileStore(credentials.ServiceSpotify, path, oauthCfg)
	}
	r.logger.Debug("no spotify user token, falling back to client credentials", "path", path)
	return credentials.NewAppStore(oauthCfg.ClientID, oauthCfg.ClientSecret, oauthCfg.Endpoint.TokenURL)
}

func (r *Runner) responseCache(ctx context.Context) services.Cache {
	cfg := r.config.Cache
	if cfg.RedisAddr == "" {
		return nil
	}

	cache := services.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, r.logger)
	if err := cache.Ping(ctx); err != nil {
		r.logger.Warn("redis unavailable, caching disabled", "addr", cfg.RedisAddr, "error", err)
		cache.Close()
		return nil
	}
	r.closers = append(r.closers, cache)
	return cache
}

// Close releases the database and cache connections opened by [Runner.connect].
func (r *Runner) Close() error {
	var errs []error
	for _, c := range r.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

// requireEngines checks the clients every engine depends on.
func (r *Runner) requireEngines() error {
	if r.similarity == nil {
		return fmt.Errorf("%w: set credentials.lastfm.api_key or LASTFM_API_KEY", shared.ErrMissingCredentials)
	}
	if r.catalog == nil {
		return fmt.Errorf("%w: set the spotify client_id and client_secret", shared.ErrMissingCredentials)
	}
	return nil
}

func (r *Runner) deps() recommend.Deps {
	return recommend.Deps{
		Similarity: r.similarity,
		Catalog:    r.catalog,
		Weather:    r.weather,
		Config:     r.config.Recommend,
		Logger:     r.logger,
	}
}

// engines builds one instance of every engine for the interactive loop.
func (r *Runner) engines() (map[string]recommend.Engine, error) {
	engines := make(map[string]recommend.Engine, len(recommend.Engines))
	for _, name := range recommend.Engines {
		engine, err := recommend.New(name, r.deps())
		if err != nil {
			return nil, err
		}
		engines[name] = engine
	}
	return engines, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// prompt writes interactive guidance, such as the OAuth consent URL.
func (r *Runner) prompt(format string, args ...any) {
	r.writePlain(format, args...)
}
