package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/playlistbridge/playlistbridge/internal/shared"
)

// Middleware wraps an [http.Handler] with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler extends [http.Handler] with route registration.
//
// Routes returns method-qualified [http.ServeMux] patterns, allowing handlers
// to encapsulate their own route definitions.
type Handler interface {
	http.Handler
	Routes() []string
}

// Router defines HTTP routing with middleware support.
type Router interface {
	// Use adds middleware to the router, applied in the order it's added.
	Use(middleware ...Middleware)

	// Handle registers a handler for the specified HTTP method and path.
	Handle(method, path string, handler http.Handler)

	// Handler registers a custom Handler implementation for all its routes.
	Handler(handler Handler)

	// ServeHTTP implements the http.Handler interface.
	ServeHTTP(w http.ResponseWriter, r *http.Request)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrPlaylistNotFound), errors.Is(err, shared.ErrTrackNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrAuthFailed),
		errors.Is(err, shared.ErrNoRefreshToken),
		errors.Is(err, shared.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrInvalidPlaylistID),
		errors.Is(err, shared.ErrInvalidPlatform),
		errors.Is(err, shared.ErrMissingArgument),
		errors.Is(err, shared.ErrInvalidArgument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
