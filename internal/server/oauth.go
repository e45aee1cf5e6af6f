package server

import (
	"fmt"
	"net/http"
	"path"
	"sync"

	"github.com/playlistbridge/playlistbridge/internal/shared"
	"github.com/playlistbridge/playlistbridge/internal/tokens"
)

const successPage = `
<!DOCTYPE html>
<html>
<head>
    <title>Authorization Successful</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>✓ Authorization Successful</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`

// AuthHandler serves the OAuth2 authorization code flow for every configured
// platform. Implements the [Handler] interface for registration with a [Router].
//
// Login issues a random state token bound to the requesting user; the callback
// consumes it exactly once, so replayed callbacks are rejected.
type AuthHandler struct {
	managers map[string]*tokens.Manager

	mu     sync.Mutex
	states map[string]string
}

// NewAuthHandler creates an auth handler over the given per-platform token managers.
func NewAuthHandler(managers map[string]*tokens.Manager) *AuthHandler {
	return &AuthHandler{
		managers: managers,
		states:   map[string]string{},
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *AuthHandler) Routes() []string {
	return []string{
		"GET /auth/{platform}/login",
		"GET /auth/{platform}/callback",
		"POST /auth/{platform}/revoke",
	}
}

// ServeHTTP dispatches to the login, callback, or revoke flow.
func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	manager, ok := h.managers[r.PathValue("platform")]
	if !ok {
		writeError(w, fmt.Errorf("%w: %q", shared.ErrInvalidPlatform, r.PathValue("platform")))
		return
	}

	switch path.Base(r.URL.Path) {
	case "login":
		h.login(w, r, manager)
	case "callback":
		h.callback(w, r, manager)
	case "revoke":
		h.revoke(w, r, manager)
	}
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request, manager *tokens.Manager) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, fmt.Errorf("%w: user_id", shared.ErrMissingArgument))
		return
	}

	state := shared.GenerateID()
	h.mu.Lock()
	h.states[state] = userID
	h.mu.Unlock()

	http.Redirect(w, r, manager.AuthURL(state), http.StatusFound)
}

func (h *AuthHandler) callback(w http.ResponseWriter, r *http.Request, manager *tokens.Manager) {
	h.mu.Lock()
	userID, ok := h.states[r.URL.Query().Get("state")]
	delete(h.states, r.URL.Query().Get("state"))
	h.mu.Unlock()

	if !ok {
		writeError(w, fmt.Errorf("%w: unknown state parameter", shared.ErrInvalidArgument))
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		errParam := r.URL.Query().Get("error")
		errDesc := r.URL.Query().Get("error_description")
		writeError(w, fmt.Errorf("%w: %s - %s", shared.ErrAuthFailed, errParam, errDesc))
		return
	}

	if _, err := manager.ExchangeCode(r.Context(), userID, code); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, successPage)
}

func (h *AuthHandler) revoke(w http.ResponseWriter, r *http.Request, manager *tokens.Manager) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		writeError(w, fmt.Errorf("%w: X-User-ID header", shared.ErrMissingArgument))
		return
	}

	if err := manager.Revoke(userID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CallbackResult contains the result of a one-shot OAuth authorization flow.
type CallbackResult struct {
	Pair tokens.TokenPair
	err  error
}

func (c *CallbackResult) Error() error {
	return c.err
}

// CallbackHandler handles a single OAuth2 callback for CLI login flows.
//
// A temporary HTTP server registers this handler, the browser completes the
// consent screen, and the exchanged tokens arrive on the result channel.
// Only one callback is processed to prevent replay.
type CallbackHandler struct {
	manager     *tokens.Manager
	userID      string
	state       string
	resultChan  chan CallbackResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewCallbackHandler creates a one-shot callback handler exchanging codes for
// userID through manager. The state token should be cryptographically random
// for CSRF protection.
func NewCallbackHandler(manager *tokens.Manager, userID, state string) *CallbackHandler {
	return &CallbackHandler{
		manager:    manager,
		userID:     userID,
		state:      state,
		resultChan: make(chan CallbackResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{"GET /callback"}
}

// ServeHTTP handles the OAuth callback request.
//
// Validates the state parameter, exchanges the authorization code through the
// token manager, and sends the result through the result channel.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	if r.URL.Query().Get("state") != h.state {
		err := fmt.Errorf("%w: invalid state parameter", shared.ErrAuthFailed)
		h.Send(CallbackResult{err: err})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		errParam := r.URL.Query().Get("error")
		errDesc := r.URL.Query().Get("error_description")
		err := fmt.Errorf("%w: %s - %s", shared.ErrAuthFailed, errParam, errDesc)
		h.Send(CallbackResult{err: err})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	pair, err := h.manager.ExchangeCode(r.Context(), h.userID, code)
	if err != nil {
		h.Send(CallbackResult{err: err})
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}

	h.Send(CallbackResult{Pair: pair})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, successPage)
}

// Send sends the callback result through the channel (only once).
func (h *CallbackHandler) Send(result CallbackResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving flow completion.
//
// Channel will receive exactly one result and then be closed.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.resultChan
}
