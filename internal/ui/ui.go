package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/songrec/internal/publish"
	"github.com/desertthunder/songrec/internal/recommend"
	"github.com/desertthunder/songrec/internal/services"
	"github.com/desertthunder/songrec/internal/shared"
)

const progressBuffer = 50

// ViewState represents the current view in the TUI.
type ViewState int

const (
	MenuView ViewState = iota
	GenreInputView
	RunningView
	ResultView
	PlatformView
	PublishingView
	DoneView
)

// AlbumPicker picks a random album from the user's library.
type AlbumPicker interface {
	Pick(ctx context.Context) (*services.Album, error)
}

// Publisher writes a recommendation batch to one or both platforms.
type Publisher interface {
	Publish(ctx context.Context, req publish.Request, progress chan<- publish.ProgressUpdate) (*publish.Result, error)
}

// Recorder stores runs and publish outcomes. Implementations must not fail.
type Recorder interface {
	RecordRun(result *recommend.Result) string
	RecordPublish(runID string, result *publish.Result)
}

// Opts are the dependencies of the interactive loop. Albums, Publisher and History may be nil.
type Opts struct {
	Engines   map[string]recommend.Engine
	Albums    AlbumPicker
	Publisher Publisher
	History   Recorder
	Logger    *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	engines   map[string]recommend.Engine
	albums    AlbumPicker
	publisher Publisher
	history   Recorder
	logger    *log.Logger

	width     int
	height    int
	menu      list.Model
	platforms list.Model
	genre     textinput.Model
	spinner   spinner.Model
	help      help.Model
	keys      keyMap

	label       string // title of the running engine
	status      string // latest progress message
	notice      string
	recProgress chan recommend.ProgressUpdate
	pubProgress chan publish.ProgressUpdate
	done        chan Msg

	result    *recommend.Result
	runID     string
	album     *services.Album
	published *publish.Result
	skipped   bool
	err       error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Opts) *Model {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	menu := list.New(menuItems(), list.NewDefaultDelegate(), 60, 20)
	menu.Title = "What should we play?"
	menu.SetFilteringEnabled(false)
	menu.SetShowHelp(false)

	platforms := list.New(platformItems(), list.NewDefaultDelegate(), 60, 14)
	platforms.Title = "Publish to"
	platforms.SetFilteringEnabled(false)
	platforms.SetShowHelp(false)

	genre := textinput.New()
	genre.Placeholder = "jazz"
	genre.Prompt = "› "
	genre.CharLimit = 64

	spin := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.ok))

	return &Model{
		ctx:       ctx,
		view:      MenuView,
		engines:   opts.Engines,
		albums:    opts.Albums,
		publisher: opts.Publisher,
		history:   opts.History,
		logger:    opts.Logger,
		menu:      menu,
		platforms: platforms,
		genre:     genre,
		spinner:   spin,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Run starts the interactive loop and blocks until the user quits.
func Run(ctx context.Context, opts Opts) error {
	p := tea.NewProgram(NewModel(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

func (m *Model) Init() tea.Cmd {
	return tea.SetWindowTitle("songrec")
}

// View returns the current view state.
func (m *Model) View() string {
	switch m.view {
	case MenuView:
		return m.renderMenu()
	case GenreInputView:
		return m.renderGenreInput()
	case RunningView, PublishingView:
		return m.renderRunning()
	case ResultView:
		return m.renderResult()
	case PlatformView:
		return m.renderPlatforms()
	case DoneView:
		return m.renderDone()
	default:
		return ""
	}
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.menu.SetSize(msg.Width-4, msg.Height-6)
		m.platforms.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.view {
		case MenuView:
			return m.handleMenuKeys(msg)
		case GenreInputView:
			return m.handleGenreKeys(msg)
		case RunningView, PublishingView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
		case ResultView:
			return m.handleResultKeys(msg)
		case PlatformView:
			return m.handlePlatformKeys(msg)
		case DoneView:
			return m.handleDoneKeys(msg)
		}
		return m, nil

	case spinner.TickMsg:
		if m.view != RunningView && m.view != PublishingView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	if m.view == GenreInputView {
		var cmd tea.Cmd
		m.genre, cmd = m.genre.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgRecommendProgress:
		m.status = msg.data.(recommend.ProgressUpdate).Message
		return m, m.waitForRecommend()

	case MsgRecommendDone:
		d := msg.data.(recommendDone)
		m.recProgress, m.done = nil, nil
		if d.err != nil {
			return m.fail(d.err)
		}
		m.result = d.result
		if m.history != nil {
			m.runID = m.history.RecordRun(d.result)
		}
		m.view = ResultView
		return m, nil

	case MsgAlbumPicked:
		d := msg.data.(albumPicked)
		m.done = nil
		if d.err != nil {
			return m.fail(d.err)
		}
		m.album = d.album
		m.view = DoneView
		return m, nil

	case MsgPublishProgress:
		m.status = msg.data.(publish.ProgressUpdate).Message
		return m, m.waitForPublish()

	case MsgPublishDone:
		d := msg.data.(publishDone)
		m.pubProgress, m.done = nil, nil
		m.published = d.result
		m.err = d.err
		if m.history != nil {
			m.history.RecordPublish(m.runID, d.result)
		}
		m.view = DoneView
		return m, nil
	}
	return m, nil
}

func (m *Model) handleMenuKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		return m, nil
	case key.Matches(msg, m.keys.enter):
		item, ok := m.menu.SelectedItem().(menuItem)
		if !ok {
			return m, nil
		}
		m.label = item.title
		switch item.name {
		case recommend.EngineGenre:
			m.view = GenreInputView
			m.notice = ""
			m.genre.Reset()
			return m, m.genre.Focus()
		case EngineAlbum:
			return m, m.startAlbum()
		default:
			return m, m.startRecommend(item.name, nil)
		}
	}

	var cmd tea.Cmd
	m.menu, cmd = m.menu.Update(msg)
	return m, cmd
}

func (m *Model) handleGenreKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.genre.Blur()
		m.view = MenuView
		return m, nil
	case key.Matches(msg, m.keys.enter):
		seed := strings.TrimSpace(m.genre.Value())
		if seed == "" {
			m.notice = "Enter a genre, e.g. jazz or trip hop"
			return m, nil
		}
		m.genre.Blur()
		return m, m.startRecommend(recommend.EngineGenre, &recommend.Params{Genre: seed})
	}

	var cmd tea.Cmd
	m.genre, cmd = m.genre.Update(msg)
	return m, cmd
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.yes):
		m.view = PlatformView
	case key.Matches(msg, m.keys.no):
		m.skipped = true
		m.view = DoneView
	}
	return m, nil
}

func (m *Model) handlePlatformKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = ResultView
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.platforms.SelectedItem().(platformItem); ok {
			return m, m.startPublish(item.platform)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.platforms, cmd = m.platforms.Update(msg)
	return m, cmd
}

func (m *Model) handleDoneKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.next):
		m.reset()
	}
	return m, nil
}

func (m *Model) fail(err error) (tea.Model, tea.Cmd) {
	m.logger.Debug("interactive step failed", "error", err)
	m.err = err
	m.view = DoneView
	return m, nil
}

// reset returns to the menu for another pass through the loop.
func (m *Model) reset() {
	m.view = MenuView
	m.label = ""
	m.status = ""
	m.notice = ""
	m.result = nil
	m.runID = ""
	m.album = nil
	m.published = nil
	m.skipped = false
	m.err = nil
	m.genre.Reset()
}

// startRecommend runs the named engine in the background. A nil params uses the engine's defaults.
func (m *Model) startRecommend(name string, params *recommend.Params) tea.Cmd {
	engine, ok := m.engines[name]
	if !ok || engine == nil {
		m.fail(fmt.Errorf("%w: %q", shared.ErrUnknownEngine, name))
		return nil
	}

	m.view = RunningView
	m.status = fmt.Sprintf("Running the %s engine...", name)
	progress := make(chan recommend.ProgressUpdate, progressBuffer)
	done := make(chan Msg, 1)
	m.recProgress, m.done = progress, done

	ctx := m.ctx
	go func() {
		var result *recommend.Result
		var err error
		if params != nil {
			result, err = engine.Recommend(ctx, *params, progress)
		} else {
			result, err = engine.Generate(ctx, progress)
		}
		done <- recommendDoneMsg(result, err)
	}()

	return tea.Batch(m.spinner.Tick, m.waitForRecommend())
}

func (m *Model) startAlbum() tea.Cmd {
	if m.albums == nil {
		m.fail(fmt.Errorf("%w: album picker not configured", shared.ErrServiceUnavailable))
		return nil
	}

	m.view = RunningView
	m.status = "Picking an album from your library..."
	done := make(chan Msg, 1)
	m.done = done

	ctx, picker := m.ctx, m.albums
	go func() {
		album, err := picker.Pick(ctx)
		done <- albumPickedMsg(album, err)
	}()

	return tea.Batch(m.spinner.Tick, m.waitForRecommend())
}

func (m *Model) startPublish(platform string) tea.Cmd {
	if m.publisher == nil {
		m.fail(fmt.Errorf("%w: publisher not configured", shared.ErrServiceUnavailable))
		return nil
	}

	m.view = PublishingView
	m.status = fmt.Sprintf("Publishing to %s...", platform)
	progress := make(chan publish.ProgressUpdate, progressBuffer)
	done := make(chan Msg, 1)
	m.pubProgress, m.done = progress, done

	req := publish.Request{Name: m.result.PlaylistName, URIs: m.result.URIs, Platform: platform}
	ctx, publisher := m.ctx, m.publisher
	go func() {
		result, err := publisher.Publish(ctx, req, progress)
		done <- publishDoneMsg(result, err)
	}()

	return tea.Batch(m.spinner.Tick, m.waitForPublish())
}

// waitForRecommend blocks for the next engine update or the final result.
// A nil progress channel never fires, which is how the album picker uses it.
func (m *Model) waitForRecommend() tea.Cmd {
	progress, done := m.recProgress, m.done
	return func() tea.Msg {
		select {
		case update := <-progress:
			return recommendProgressMsg(update)
		case msg := <-done:
			return msg
		}
	}
}

func (m *Model) waitForPublish() tea.Cmd {
	progress, done := m.pubProgress, m.done
	return func() tea.Msg {
		select {
		case update := <-progress:
			return publishProgressMsg(update)
		case msg := <-done:
			return msg
		}
	}
}

func (m *Model) renderMenu() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.up, m.keys.down, m.keys.enter, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.menu.View(), helpView)
}

func (m *Model) renderGenreInput() string {
	title := styles.title.Render("Which genre?")
	var notice string
	if m.notice != "" {
		notice = "\n" + styles.warn.Render(m.notice)
	}
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.back})
	return fmt.Sprintf("%s\n%s%s\n\n%s", title, m.genre.View(), notice, helpView)
}

func (m *Model) renderRunning() string {
	title := m.label
	if m.view == PublishingView && m.result != nil {
		title = fmt.Sprintf("Publishing '%s'", m.result.PlaylistName)
	}
	return fmt.Sprintf("%s\n%s %s\n\n%s", styles.title.Render(title), m.spinner.View(), m.status, styles.help.Render("q to quit"))
}

func (m *Model) renderResult() string {
	if m.result == nil {
		return styles.err.Render("No result available")
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(m.result.PlaylistName))
	fmt.Fprintf(&b, "\n%d tracks, %d with catalog matches\n\n", len(m.result.Tracks), len(m.result.URIs))
	for i, track := range m.result.Tracks {
		b.WriteString(styles.track.Render(fmt.Sprintf("%2d. %s", i+1, track)))
		b.WriteString("\n")
	}
	b.WriteString("\nCreate a playlist from these tracks?\n\n")
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no, m.keys.quit}))
	return b.String()
}

func (m *Model) renderPlatforms() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.platforms.View(), helpView)
}

func (m *Model) renderDone() string {
	var b strings.Builder

	switch {
	case m.album != nil:
		b.WriteString(styles.ok.Render("♫ " + recommend.AlbumLine(*m.album)))
		if m.album.ImageURL != "" {
			fmt.Fprintf(&b, "\n%s", styles.help.Render(m.album.ImageURL))
		}
		b.WriteString("\n")
	case m.published != nil:
		b.WriteString(styles.title.Render(fmt.Sprintf("Published '%s'", m.published.Name)))
		b.WriteString("\n")
		for _, pr := range m.published.Platforms {
			b.WriteString(renderPlatformResult(pr))
		}
	case m.skipped:
		b.WriteString("Playlist not published.\n")
	}

	if m.err != nil {
		fmt.Fprintf(&b, "\n%s\n", styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	fmt.Fprintf(&b, "\n%s", m.help.ShortHelpView([]key.Binding{m.keys.next, m.keys.quit}))
	return b.String()
}

func renderPlatformResult(pr publish.PlatformResult) string {
	name := platformTitle(pr.Platform)
	if pr.Error != nil {
		return styles.err.Render(fmt.Sprintf("✗ %s: %v", name, pr.Error)) + "\n"
	}

	line := styles.ok.Render(fmt.Sprintf("✓ %s: %d tracks added", name, pr.Added))
	if len(pr.Skipped) > 0 {
		line += styles.warn.Render(fmt.Sprintf(" (%d without a match)", len(pr.Skipped)))
	}
	return line + "\n"
}

func platformTitle(platform string) string {
	switch platform {
	case publish.PlatformSpotify:
		return "Spotify"
	case publish.PlatformYouTube:
		return "YouTube"
	default:
		return platform
	}
}
