package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songrec/internal/shared"
	"golang.org/x/oauth2"
)

const (
	defaultAuthTimeout = 2 * time.Minute
	shutdownTimeout    = 5 * time.Second
)

// AuthorizeOpts configures one authorization code flow.
type AuthorizeOpts struct {
	Platform string
	Config   *oauth2.Config
	Addr     string       // callback listen address, e.g. 127.0.0.1:3000
	Listener net.Listener // optional; takes precedence over Addr
	Timeout  time.Duration

	// OpenURL presents the consent page. A failure is logged and the URL is
	// printed through Prompt instead.
	OpenURL func(url string) error
	Prompt  func(format string, args ...any)
	Logger  *log.Logger
}

// Authorize runs the authorization code flow and returns the exchanged token.
//
// Offline access is requested so the token carries a refresh token.
func Authorize(ctx context.Context, opts AuthorizeOpts) (*oauth2.Token, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("%w: no OAuth configuration for %s", shared.ErrMissingCredentials, opts.Platform)
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultAuthTimeout
	}
	if opts.OpenURL == nil {
		opts.OpenURL = shared.OpenBrowser
	}
	if opts.Prompt == nil {
		opts.Prompt = func(string, ...any) {}
	}

	ln := opts.Listener
	if ln == nil {
		var err error
		if ln, err = net.Listen("tcp", opts.Addr); err != nil {
			return nil, fmt.Errorf("%w: callback server: %v", shared.ErrServiceUnavailable, err)
		}
	}

	state := shared.GenerateID()
	handler := NewOAuthHandler(opts.Config, state, opts.Platform)
	handler.SetLogger(opts.Logger)
	router := NewBasicRouter()
	router.Use(LoggingMiddleware(opts.Logger))
	router.Handler(handler)

	httpServer := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}
	serverErrors := make(chan error, 1)
	go func() {
		opts.Logger.Info("starting OAuth callback server", "platform", opts.Platform, "addr", ln.Addr().String())
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			opts.Logger.Warn("error shutting down server", "error", err)
		}
	}()

	authURL := opts.Config.AuthCodeURL(state, oauth2.AccessTypeOffline)
	opts.Prompt("→ Opening browser for %s authorization...\n", opts.Platform)
	if err := opts.OpenURL(authURL); err != nil {
		opts.Logger.Warn("failed to open browser automatically", "error", err)
		opts.Prompt("⚠ Could not open browser automatically.\nPlease open this URL in your browser:\n%s\n\n", authURL)
	}
	opts.Prompt("→ Waiting for authorization (%s timeout)...\n", opts.Timeout)

	timeout := time.NewTimer(opts.Timeout)
	defer timeout.Stop()

	var result OAuthResult
	select {
	case result = <-handler.Result():
	case err := <-serverErrors:
		return nil, fmt.Errorf("%w: callback server: %v", shared.ErrServiceUnavailable, err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after %s", shared.ErrAuthFailed, opts.Timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, result.Error())
	}
	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}

	return result.Token, nil
}
