package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrRefreshFailed    = fmt.Errorf("token refresh failed")
	ErrNoRefreshToken   = fmt.Errorf("no refresh token available")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrLocationLookup     = fmt.Errorf("location lookup failed")

	// Recommendation and publishing preconditions
	ErrEmptyTrackList   = fmt.Errorf("no tracks to add")
	ErrNoVideosSelected = fmt.Errorf("no videos selected")
	ErrNoSavedAlbums    = fmt.Errorf("no saved albums")
	ErrUnknownEngine    = fmt.Errorf("unknown recommendation engine")
	ErrUnknownPlatform  = fmt.Errorf("unknown platform")

	// Persistence errors
	ErrRecordNotFound = fmt.Errorf("record not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
