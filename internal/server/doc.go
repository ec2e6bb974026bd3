// Package server runs the local OAuth callback used by `songrec auth spotify` and `songrec auth youtube`.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
// [Middleware] wraps handlers in reverse order (last added executes first).
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the OAuth2 authorization code callback. It validates the state
// parameter, exchanges the code for a token and sends the result through a channel. It only
// processes one callback.
//
// # Authorization Flow
//
// [Authorize] starts a temporary HTTP server on the configured callback address, opens the
// consent page, waits for the callback and shuts the server down again.
package server
