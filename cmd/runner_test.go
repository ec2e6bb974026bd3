package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songrec/internal/server"
	"github.com/desertthunder/songrec/internal/services"
	"github.com/desertthunder/songrec/internal/shared"
	tu "github.com/desertthunder/songrec/internal/testing"
	"golang.org/x/oauth2"
)

// testConfig returns defaults with every credential cleared and a private database.
func testConfig(t *testing.T) *shared.Config {
	t.Helper()
	config := shared.DefaultConfig()
	config.Credentials.Spotify = shared.OAuthConfig{TokenPath: filepath.Join(t.TempDir(), "spotify.json")}
	config.Credentials.YouTube = shared.OAuthConfig{TokenPath: filepath.Join(t.TempDir(), "youtube.json")}
	config.Credentials.LastFM.APIKey = ""
	config.Credentials.OpenWeather.APIKey = ""
	config.Cache.RedisAddr = ""
	config.Database.Path = filepath.Join(t.TempDir(), "songrec.db")
	return config
}

func jazzSimilarity() *tu.MockSimilarity {
	return &tu.MockSimilarity{
		Tags: map[string][]string{"jazz": {"blues"}},
		TopTracks: map[string][]services.TagTrack{
			"jazz": {
				{Name: "So What", Artist: "Miles Davis"},
				{Name: "Naima", Artist: "John Coltrane"},
			},
			"blues": {
				{Name: "The Thrill Is Gone", Artist: "B.B. King"},
			},
		},
	}
}

func searchURI(query string) string {
	return "spotify:track:" + strings.ReplaceAll(query, " ", "_")
}

type harness struct {
	runner  *Runner
	output  *bytes.Buffer
	config  *shared.Config
	catalog *tu.MockCatalog
}

func newHarness(t *testing.T, opts RunnerOpts) *harness {
	t.Helper()
	output := &bytes.Buffer{}
	if opts.Config == nil {
		opts.Config = testConfig(t)
	}
	catalog, _ := opts.Catalog.(*tu.MockCatalog)
	if opts.Catalog == nil {
		catalog = &tu.MockCatalog{SearchFunc: searchURI, UserName: "tester"}
		opts.Catalog = catalog
	}
	if opts.Similarity == nil {
		opts.Similarity = jazzSimilarity()
	}
	opts.Output = output
	opts.Logger = shared.NewLogger(io.Discard)

	runner := NewRunner(opts)
	t.Cleanup(func() { runner.Close() })
	return &harness{runner: runner, output: output, config: opts.Config, catalog: catalog}
}

// run executes args against a fresh command tree. A missing config file keeps the injected config.
func (h *harness) run(t *testing.T, args ...string) error {
	t.Helper()
	base := []string{"songrec", "--config", filepath.Join(t.TempDir(), "missing.toml"), "--env-file", ""}
	return newApp(h.runner).Run(context.Background(), append(base, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			similarity := &tu.MockSimilarity{}
			catalog := &tu.MockCatalog{}
			video := &tu.MockVideo{}
			weather := &tu.MockWeather{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Similarity: similarity,
				Catalog:    catalog,
				Video:      video,
				Weather:    weather,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.similarity != similarity || runner.catalog != catalog {
				t.Error("expected engine clients to be set")
			}
			if runner.video != video || runner.weather != weather {
				t.Error("expected video and weather clients to be set")
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
			if runner.authorize == nil {
				t.Error("expected the OAuth flow to default to server.Authorize")
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{ConfigPath: "/test/path/config.toml"})

			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: tu.NewLimitedWriter(1, &bytes.Buffer{})})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		want := []string{"recommend", "albums", "auth", "setup", "history", "interactive"}
		if len(commands) != len(want) {
			t.Fatalf("expected %d commands, got %d", len(want), len(commands))
		}
		for i, cmd := range commands {
			if cmd == nil || cmd.Name != want[i] {
				t.Errorf("command %d: expected %s, got %+v", i, want[i], cmd)
			}
		}
	})

	t.Run("configured", func(t *testing.T) {
		tests := []struct {
			value string
			want  bool
		}{
			{"", false},
			{"your_lastfm_api_key", false},
			{"abc123", true},
		}
		for _, tt := range tests {
			if got := configured(tt.value); got != tt.want {
				t.Errorf("configured(%q) = %v, want %v", tt.value, got, tt.want)
			}
		}
	})
}

func TestLoad(t *testing.T) {
	t.Run("reads the config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		config := shared.DefaultConfig()
		config.Recommend.GenreLimit = 7
		if err := shared.SaveConfig(path, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: &bytes.Buffer{}})
		err := newApp(runner).Run(context.Background(), []string{"songrec", "--config", path, "--env-file", "", "--verbose", "setup"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if runner.config.Recommend.GenreLimit != 7 {
			t.Errorf("expected genre limit 7 from file, got %d", runner.config.Recommend.GenreLimit)
		}
		if runner.configPath != path {
			t.Errorf("expected config path %s, got %s", path, runner.configPath)
		}
		if runner.logger.GetLevel() != log.DebugLevel {
			t.Errorf("expected --verbose to enable debug logging, got %v", runner.logger.GetLevel())
		}
	})

	t.Run("environment overrides credentials", func(t *testing.T) {
		t.Setenv("LASTFM_API_KEY", "from-env")
		h := newHarness(t, RunnerOpts{})

		if err := h.run(t, "setup"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if h.runner.config.Credentials.LastFM.APIKey != "from-env" {
			t.Errorf("expected env api key, got %q", h.runner.config.Credentials.LastFM.APIKey)
		}
	})

	t.Run("invalid config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte("[recommend\ngenre_limit = "), 0644); err != nil {
			t.Fatal(err)
		}

		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: &bytes.Buffer{}})
		if err := newApp(runner).Run(context.Background(), []string{"songrec", "--config", path, "setup"}); err == nil {
			t.Error("expected a parse error")
		}
	})
}

func TestRecommend(t *testing.T) {
	t.Run("genre prints the batch and records it", func(t *testing.T) {
		h := newHarness(t, RunnerOpts{})

		if err := h.run(t, "recommend", "genre", "--seed", "jazz", "--limit", "2"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := h.output.String()
		for _, want := range []string{"Genre: jazz songs", "1. So What by Miles Davis", "2. Naima by John Coltrane"} {
			if !strings.Contains(output, want) {
				t.Errorf("output missing %q:\n%s", want, output)
			}
		}

		runs, err := h.runner.history.Runs.List(map[string]any{})
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 1 || runs[0].Engine() != "genre" || runs[0].Seed() != "jazz" {
			t.Fatalf("expected one recorded genre run, got %d", len(runs))
		}
	})

	t.Run("json output", func(t *testing.T) {
		h := newHarness(t, RunnerOpts{})

		if err := h.run(t, "recommend", "genre", "-s", "jazz", "--json"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(h.output.Bytes(), &decoded); err != nil {
			t.Fatalf("expected JSON output, got %q: %v", h.output.String(), err)
		}
		if strings.Contains(h.output.String(), "═") {
			t.Error("expected no plain-text header in JSON mode")
		}
	})

	t.Run("exports to a file", func(t *testing.T) {
		h := newHarness(t, RunnerOpts{})
		path := filepath.Join(t.TempDir(), "batch.csv")

		if err := h.run(t, "recommend", "genre", "-s", "jazz", "-o", path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		tu.AssertFileExists(t, path)
		content := tu.MustReadFile(t, path)
		if !strings.HasPrefix(content, "Position,Track,URI") {
			t.Errorf("expected CSV header, got %q", content)
		}
	})

	t.Run("publishes to spotify and records the playlist", func(t *testing.T) {
		h := newHarness(t, RunnerOpts{})

		if err := h.run(t, "recommend", "genre", "-s", "jazz", "--publish", "spotify"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := len(h.catalog.Added["playlist-1"]); got != 3 {
			t.Errorf("expected 3 tracks added, got %d", got)
		}
		if !strings.Contains(h.output.String(), "✓ Spotify playlist playlist-1 (3 added)") {
			t.Errorf("expected publish summary, got:\n%s", h.output.String())
		}

		published, err := h.runner.history.Published.List(map[string]any{"platform": "spotify"})
		if err != nil {
			t.Fatalf("failed to list published playlists: %v", err)
		}
		if len(published) != 1 || published[0].RemoteID() != "playlist-1" {
			t.Errorf("expected the playlist to be recorded, got %d rows", len(published))
		}
	})

	t.Run("publish failure is returned after printing", func(t *testing.T) {
		catalog := &tu.MockCatalog{SearchFunc: searchURI, AddErr: errors.New("quota")}
		h := newHarness(t, RunnerOpts{Catalog: catalog})

		err := h.run(t, "recommend", "genre", "-s", "jazz", "-p", "spotify")
		if err == nil || !strings.Contains(err.Error(), "quota") {
			t.Errorf("expected add failure, got %v", err)
		}
		if !strings.Contains(h.output.String(), "✗ Spotify") {
			t.Errorf("expected failure line, got:\n%s", h.output.String())
		}
	})

	t.Run("rejects an unknown platform before running", func(t *testing.T) {
		similarity := jazzSimilarity()
		h := newHarness(t, RunnerOpts{Similarity: similarity})

		err := h.run(t, "recommend", "genre", "-s", "jazz", "-p", "tidal")
		if !errors.Is(err, shared.ErrUnknownPlatform) {
			t.Errorf("expected ErrUnknownPlatform, got %v", err)
		}
		if len(similarity.TagCalls) != 0 {
			t.Error("expected no engine calls")
		}
	})

	t.Run("user engine passes flags through", func(t *testing.T) {
		catalog := &tu.MockCatalog{
			SearchFunc: searchURI,
			TopArtists: []string{"Miles Davis"},
			ArtistTracks: map[string][]services.CatalogTrack{
				"Miles Davis": {{ID: "1", URI: "spotify:track:1", Name: "So What", Artist: "Miles Davis"}},
			},
		}
		h := newHarness(t, RunnerOpts{Catalog: catalog})

		if err := h.run(t, "recommend", "user", "--time-range", "short_term", "--artists", "1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if catalog.TimeRange != "short_term" {
			t.Errorf("expected short_term, got %q", catalog.TimeRange)
		}
		if !strings.Contains(h.output.String(), "User:") {
			t.Errorf("expected user header, got:\n%s", h.output.String())
		}
	})

	t.Run("user engine rejects a bad time range", func(t *testing.T) {
		h := newHarness(t, RunnerOpts{})

		err := h.run(t, "recommend", "user", "--time-range", "forever")
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("seasonal engine generates its own seed", func(t *testing.T) {
		h := newHarness(t, RunnerOpts{})

		if err := h.run(t, "recommend", "seasonal"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(h.output.String(), "Seasonal:") {
			t.Errorf("expected seasonal header, got:\n%s", h.output.String())
		}
	})

	t.Run("builds the last.fm client from config", func(t *testing.T) {
		config := testConfig(t)
		config.Credentials.LastFM.APIKey = "key"
		config.Credentials.LastFM.BaseURL = "http://lastfm.invalid/2.0/"
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Config:     config,
			HTTPClient: &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("offline"))},
			Catalog:    &tu.MockCatalog{},
			Logger:     shared.NewLogger(io.Discard),
			Output:     output,
		})
		t.Cleanup(func() { runner.Close() })
		h := &harness{runner: runner, output: output, config: config}

		if err := h.run(t, "recommend", "genre", "-s", "jazz"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if runner.similarity == nil {
			t.Fatal("expected a similarity client")
		}
		if !strings.Contains(output.String(), "0 tracks") {
			t.Errorf("expected an empty batch when last.fm is unreachable, got:\n%s", output.String())
		}
	})

	t.Run("missing similarity credentials", func(t *testing.T) {
		h := newHarness(t, RunnerOpts{})
		h.runner.similarity = nil

		err := h.run(t, "recommend", "seasonal")
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})
}

func TestAlbumsRandom(t *testing.T) {
	t.Run("prints the picked album", func(t *testing.T) {
		catalog := &tu.MockCatalog{Albums: []services.Album{
			{ID: "a1", Name: "Blue", Artists: []string{"Joni Mitchell"}, ImageURL: "https://img.example/blue.jpg"},
		}}
		h := newHarness(t, RunnerOpts{Catalog: catalog})

		if err := h.run(t, "albums", "random"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := h.output.String()
		if !strings.Contains(output, "Blue - Joni Mitchell") || !strings.Contains(output, "https://img.example/blue.jpg") {
			t.Errorf("unexpected output:\n%s", output)
		}
	})

	t.Run("empty library", func(t *testing.T) {
		h := newHarness(t, RunnerOpts{Catalog: &tu.MockCatalog{}})

		if err := h.run(t, "albums", "random"); !errors.Is(err, shared.ErrNoSavedAlbums) {
			t.Errorf("expected ErrNoSavedAlbums, got %v", err)
		}
	})
}

func TestAuth(t *testing.T) {
	t.Run("saves the authorized token", func(t *testing.T) {
		config := testConfig(t)
		config.Credentials.Spotify.ClientID = "id"
		config.Credentials.Spotify.ClientSecret = "secret"

		var got server.AuthorizeOpts
		authorize := func(_ context.Context, opts server.AuthorizeOpts) (*oauth2.Token, error) {
			got = opts
			return &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", Expiry: time.Now().Add(time.Hour)}, nil
		}
		h := newHarness(t, RunnerOpts{Config: config, Authorize: authorize})

		if err := h.run(t, "auth", "spotify"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got.Platform != "Spotify" || got.Addr != "127.0.0.1:3000" {
			t.Errorf("unexpected authorize options %+v", got)
		}
		if got.Config == nil || got.Config.ClientID != "id" {
			t.Error("expected the spotify OAuth config")
		}
		content := tu.MustReadFile(t, config.Credentials.Spotify.TokenPath)
		if !strings.Contains(content, "refresh") {
			t.Errorf("expected refresh token on disk, got %s", content)
		}
	})

	t.Run("missing client credentials", func(t *testing.T) {
		called := false
		authorize := func(context.Context, server.AuthorizeOpts) (*oauth2.Token, error) {
			called = true
			return nil, nil
		}
		h := newHarness(t, RunnerOpts{Authorize: authorize})

		if err := h.run(t, "auth", "youtube"); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
		if called {
			t.Error("expected no authorization attempt")
		}
	})

	t.Run("authorization failure saves nothing", func(t *testing.T) {
		config := testConfig(t)
		config.Credentials.YouTube.ClientID = "id"
		config.Credentials.YouTube.ClientSecret = "secret"
		authorize := func(context.Context, server.AuthorizeOpts) (*oauth2.Token, error) {
			return nil, shared.ErrAuthFailed
		}
		h := newHarness(t, RunnerOpts{Config: config, Authorize: authorize})

		if err := h.run(t, "auth", "youtube"); !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
		if _, err := os.Stat(config.Credentials.YouTube.TokenPath); !os.IsNotExist(err) {
			t.Error("expected no token file")
		}
	})

	t.Run("status reports tokens and the self-test", func(t *testing.T) {
		config := testConfig(t)
		data := `{"access_token":"access","refresh_token":"refresh"}`
		if err := os.WriteFile(config.Credentials.Spotify.TokenPath, []byte(data), 0600); err != nil {
			t.Fatal(err)
		}
		h := newHarness(t, RunnerOpts{Config: config})

		if err := h.run(t, "auth", "status"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := h.output.String()
		for _, want := range []string{"✓ Spotify: token saved", "✗ Youtube: not authorized", "logged in as tester"} {
			if !strings.Contains(output, want) {
				t.Errorf("output missing %q:\n%s", want, output)
			}
		}
	})

	t.Run("status shows the youtube channel", func(t *testing.T) {
		h := newHarness(t, RunnerOpts{Video: &tu.MockVideo{Channel: "Tester Tunes"}})

		if err := h.run(t, "auth", "status"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(h.output.String(), "YouTube channel: Tester Tunes") {
			t.Errorf("expected channel title, got:\n%s", h.output.String())
		}
	})

	t.Run("status self-test failure is reported, not returned", func(t *testing.T) {
		h := newHarness(t, RunnerOpts{Catalog: &tu.MockCatalog{}})

		if err := h.run(t, "auth", "status", "--json"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded struct {
			Tokens        []TokenStatus `json:"tokens"`
			SelfTestError string        `json:"self_test_error"`
		}
		if err := json.Unmarshal(h.output.Bytes(), &decoded); err != nil {
			t.Fatalf("expected JSON output: %v", err)
		}
		if len(decoded.Tokens) != 2 || decoded.SelfTestError == "" {
			t.Errorf("unexpected status %+v", decoded)
		}
	})
}

func TestPreflight(t *testing.T) {
	ctx := context.Background()

	t.Run("checks spotify and youtube", func(t *testing.T) {
		h := newHarness(t, RunnerOpts{Video: &tu.MockVideo{Channel: "Tester Tunes"}})

		h.runner.preflight(ctx)

		output := h.output.String()
		for _, want := range []string{"Logged in to Spotify as tester", "Logged in to YouTube as Tester Tunes"} {
			if !strings.Contains(output, want) {
				t.Errorf("output missing %q:\n%s", want, output)
			}
		}
	})

	t.Run("failures are reported, not returned", func(t *testing.T) {
		video := &tu.MockVideo{ChannelErr: shared.ErrAPIRequest}
		h := newHarness(t, RunnerOpts{Catalog: &tu.MockCatalog{}, Video: video})

		h.runner.preflight(ctx)

		output := h.output.String()
		for _, want := range []string{"Spotify session unavailable", "YouTube session unavailable"} {
			if !strings.Contains(output, want) {
				t.Errorf("output missing %q:\n%s", want, output)
			}
		}
	})

	t.Run("no youtube client", func(t *testing.T) {
		h := newHarness(t, RunnerOpts{})

		if _, err := h.runner.channelTitle(ctx); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})
}

func TestSetup(t *testing.T) {
	t.Run("config writes the template once", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: output})
		args := []string{"songrec", "--config", path, "--env-file", "", "setup", "config"}

		if err := newApp(runner).Run(context.Background(), args); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		tu.AssertFileExists(t, path)
		if !strings.Contains(output.String(), "songrec setup database") {
			t.Errorf("expected next steps, got %s", output.String())
		}

		runner = NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: &bytes.Buffer{}})
		if err := newApp(runner).Run(context.Background(), args); err == nil {
			t.Error("expected an error when the file exists")
		}
	})

	t.Run("database applies and rolls back migrations", func(t *testing.T) {
		h := newHarness(t, RunnerOpts{})

		if err := h.run(t, "setup", "database"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(h.output.String(), "[✓] 0000") {
			t.Errorf("expected applied migration, got:\n%s", h.output.String())
		}

		h.output.Reset()
		if err := h.run(t, "setup", "database", "--rollback"); err != nil {
			t.Fatalf("unexpected rollback error: %v", err)
		}
		output := h.output.String()
		if !strings.Contains(output, "[✓] 0000") || !strings.Contains(output, "[ ] 0001") {
			t.Errorf("expected only the latest migration rolled back, got:\n%s", output)
		}
	})
}

func TestHistory(t *testing.T) {
	h := newHarness(t, RunnerOpts{})
	for _, seed := range []string{"jazz", "jazz"} {
		if err := h.run(t, "recommend", "genre", "-s", seed); err != nil {
			t.Fatalf("failed to seed history: %v", err)
		}
	}

	t.Run("list", func(t *testing.T) {
		h.output.Reset()
		if err := h.run(t, "history", "list", "--engine", "genre", "--json"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var runs []RunSummary
		if err := json.Unmarshal(h.output.Bytes(), &runs); err != nil {
			t.Fatalf("expected JSON output: %v", err)
		}
		if len(runs) != 2 || runs[0].Sequence < runs[1].Sequence {
			t.Fatalf("expected two runs newest first, got %+v", runs)
		}
		if len(runs[0].Tracks) != 3 {
			t.Errorf("expected tracks to be loaded, got %v", runs[0].Tracks)
		}
	})

	t.Run("show by sequence", func(t *testing.T) {
		h.output.Reset()
		if err := h.run(t, "history", "show", "1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := h.output.String()
		if !strings.Contains(output, "Run #1: jazz songs") || !strings.Contains(output, "So What by Miles Davis") {
			t.Errorf("unexpected output:\n%s", output)
		}
	})

	t.Run("delete hides the run", func(t *testing.T) {
		if err := h.run(t, "history", "delete", "2"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		err := h.run(t, "history", "show", "2")
		if !errors.Is(err, shared.ErrRecordNotFound) {
			t.Errorf("expected ErrRecordNotFound, got %v", err)
		}
	})

	t.Run("show without a reference", func(t *testing.T) {
		if err := h.run(t, "history", "show"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"much longer name", 8, "much lo…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
