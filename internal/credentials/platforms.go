package credentials

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/desertthunder/songrec/internal/shared"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/oauth2/google"
)

const (
	ServiceSpotify = "spotify"
	ServiceYouTube = "youtube"

	youtubeScope = "https://www.googleapis.com/auth/youtube"
)

// SpotifyScopes are the permissions the catalog client and publisher need.
var SpotifyScopes = []string{
	spotifyauth.ScopeUserReadPrivate,
	spotifyauth.ScopeUserLibraryRead,
	spotifyauth.ScopeUserTopRead,
	spotifyauth.ScopePlaylistModifyPublic,
	spotifyauth.ScopePlaylistModifyPrivate,
}

// SpotifyOAuth builds the authorization code configuration for Spotify.
func SpotifyOAuth(cfg shared.OAuthConfig) (*oauth2.Config, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client_id and client_secret are required", shared.ErrMissingCredentials)
	}
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Scopes:       SpotifyScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyauth.AuthURL,
			TokenURL: spotifyauth.TokenURL,
		},
	}, nil
}

// YouTubeOAuth builds the Google authorization code configuration for the YouTube Data API.
func YouTubeOAuth(cfg shared.OAuthConfig) (*oauth2.Config, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: youtube client_id and client_secret are required", shared.ErrMissingCredentials)
	}
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Scopes:       []string{youtubeScope},
		Endpoint:     google.Endpoint,
	}, nil
}

// AppStore issues client-credential tokens. They carry no user identity, so only
// catalog reads (search, artist top tracks) work with them.
type AppStore struct {
	config *clientcredentials.Config
	now    func() time.Time

	mu    sync.Mutex
	token *oauth2.Token
}

// NewAppStore creates a client-credential store against tokenURL.
func NewAppStore(clientID, clientSecret, tokenURL string) *AppStore {
	if tokenURL == "" {
		tokenURL = spotifyauth.TokenURL
	}
	return &AppStore{
		config: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
		},
		now: time.Now,
	}
}

func (s *AppStore) Token(ctx context.Context) (*oauth2.Token, error) {
	s.mu.Lock()
	cached := s.token
	s.mu.Unlock()
	if cached != nil {
		return cached, nil
	}
	return s.Refresh(ctx, nil)
}

func (s *AppStore) Expired(tok *oauth2.Token) bool {
	if tok == nil || tok.AccessToken == "" {
		return true
	}
	return !tok.Expiry.IsZero() && !tok.Expiry.After(s.now().Add(expiryDelta))
}

// Refresh requests a new token; client credentials have no refresh token.
func (s *AppStore) Refresh(ctx context.Context, _ *oauth2.Token) (*oauth2.Token, error) {
	tok, err := s.config.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: client credentials: %v", shared.ErrAuthFailed, err)
	}
	s.mu.Lock()
	s.token = tok
	s.mu.Unlock()
	return tok, nil
}
