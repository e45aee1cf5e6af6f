// Package server provides HTTP routing, middleware, and the OAuth and
// migration endpoints.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method-qualified patterns.
//
// # OAuth Endpoints
//
// [AuthHandler] serves the authorization code flow for every configured platform:
// login redirects to the provider's consent screen with a single-use state
// token, the callback exchanges the authorization code through the platform's
// token manager, and revoke discards a user's stored tokens.
//
// [CallbackHandler] is the one-shot variant used by CLI login flows.
// When the user runs authentication commands, a temporary HTTP server starts on localhost,
// handles the callback, and shuts down after the tokens are stored.
//
// # Migration Endpoint
//
// [MigrateHandler] runs a playlist migration synchronously:
//
//	POST /migrate/{source}-to-{destination}/{playlist_id}
//
// with the X-User-ID header identifying whose tokens to use. Domain errors map
// to HTTP status codes: missing playlists are 404, authorization failures are
// 401, malformed requests are 400.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
