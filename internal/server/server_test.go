package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/playlistbridge/playlistbridge/internal/services"
	"github.com/playlistbridge/playlistbridge/internal/shared"
	"github.com/playlistbridge/playlistbridge/internal/store"
	"github.com/playlistbridge/playlistbridge/internal/tasks"
	mocks "github.com/playlistbridge/playlistbridge/internal/testing"
	"github.com/playlistbridge/playlistbridge/internal/tokens"
)

type fakeProvider struct {
	pair        tokens.TokenPair
	exchangeErr error
}

func (f *fakeProvider) Exchange(ctx context.Context, code string) (tokens.TokenPair, error) {
	if f.exchangeErr != nil {
		return tokens.TokenPair{}, f.exchangeErr
	}
	return f.pair, nil
}

func (f *fakeProvider) Refresh(ctx context.Context, refreshToken string) (tokens.TokenPair, error) {
	return f.pair, nil
}

func (f *fakeProvider) AuthURL(state string) string {
	return "https://auth.example.com/authorize?state=" + state
}

func newTestManager(t *testing.T, platform string, provider tokens.Provider) *tokens.Manager {
	t.Helper()
	return tokens.NewManager(platform, provider, store.NewMemoryStore(), nil)
}

func TestBasicRouter(t *testing.T) {
	t.Run("routes by method and path", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "pong")
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

		if rec.Code != http.StatusOK || rec.Body.String() != "pong" {
			t.Errorf("unexpected response: %d %q", rec.Code, rec.Body.String())
		}
	})

	t.Run("rejects wrong method", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("applies middleware in registration order", func(t *testing.T) {
		var order []string
		tag := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(tag("first"), tag("second"))
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

		if strings.Join(order, ",") != "first,second,handler" {
			t.Errorf("unexpected middleware order: %v", order)
		}
	})

	t.Run("registers all handler routes", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handler(NewAuthHandler(map[string]*tokens.Manager{}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/spotify/login", nil))

		// Unknown platform still proves the route resolved to the handler.
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})
}

func TestAuthHandler(t *testing.T) {
	newRouter := func(manager *tokens.Manager) *BasicRouter {
		router := NewBasicRouter()
		router.Handler(NewAuthHandler(map[string]*tokens.Manager{"spotify": manager}))
		return router
	}

	t.Run("login requires user_id", func(t *testing.T) {
		router := newRouter(newTestManager(t, "spotify", &fakeProvider{}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/spotify/login", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("login rejects unknown platform", func(t *testing.T) {
		router := newRouter(newTestManager(t, "spotify", &fakeProvider{}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/deezer/login?user_id=u1", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("login redirects to the consent URL", func(t *testing.T) {
		router := newRouter(newTestManager(t, "spotify", &fakeProvider{}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/spotify/login?user_id=u1", nil))

		if rec.Code != http.StatusFound {
			t.Fatalf("expected 302, got %d", rec.Code)
		}
		location := rec.Header().Get("Location")
		if !strings.HasPrefix(location, "https://auth.example.com/authorize?state=") {
			t.Errorf("unexpected redirect location: %q", location)
		}
	})

	t.Run("callback stores tokens for the login's user", func(t *testing.T) {
		manager := newTestManager(t, "spotify", &fakeProvider{
			pair: tokens.TokenPair{AccessToken: "access", RefreshToken: "refresh", ExpiresIn: 3600},
		})
		router := newRouter(manager)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/spotify/login?user_id=u1", nil))

		location := rec.Header().Get("Location")
		state := location[strings.Index(location, "state=")+len("state="):]

		rec = httptest.NewRecorder()
		target := fmt.Sprintf("/auth/spotify/callback?state=%s&code=auth-code", state)
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		authorized, err := manager.Authorized("u1")
		if err != nil || !authorized {
			t.Errorf("expected u1 to be authorized: (%v, %v)", authorized, err)
		}
	})

	t.Run("callback rejects unknown state", func(t *testing.T) {
		router := newRouter(newTestManager(t, "spotify", &fakeProvider{}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/spotify/callback?state=bogus&code=c", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("callback state is single use", func(t *testing.T) {
		router := newRouter(newTestManager(t, "spotify", &fakeProvider{
			pair: tokens.TokenPair{AccessToken: "access", RefreshToken: "refresh"},
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/spotify/login?user_id=u1", nil))
		location := rec.Header().Get("Location")
		state := location[strings.Index(location, "state=")+len("state="):]

		target := fmt.Sprintf("/auth/spotify/callback?state=%s&code=auth-code", state)
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected replayed callback to be rejected, got %d", rec.Code)
		}
	})

	t.Run("callback maps exchange failures to 401", func(t *testing.T) {
		router := newRouter(newTestManager(t, "spotify", &fakeProvider{
			exchangeErr: fmt.Errorf("%w: code rejected", shared.ErrAuthFailed),
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/spotify/login?user_id=u1", nil))
		location := rec.Header().Get("Location")
		state := location[strings.Index(location, "state=")+len("state="):]

		rec = httptest.NewRecorder()
		target := fmt.Sprintf("/auth/spotify/callback?state=%s&code=bad", state)
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("revoke discards stored tokens", func(t *testing.T) {
		manager := newTestManager(t, "spotify", &fakeProvider{
			pair: tokens.TokenPair{AccessToken: "access", RefreshToken: "refresh"},
		})
		if _, err := manager.ExchangeCode(context.Background(), "u1", "code"); err != nil {
			t.Fatalf("exchange failed: %v", err)
		}
		router := newRouter(manager)

		req := httptest.NewRequest(http.MethodPost, "/auth/spotify/revoke", nil)
		req.Header.Set("X-User-ID", "u1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
		authorized, _ := manager.Authorized("u1")
		if authorized {
			t.Error("expected tokens to be revoked")
		}
	})

	t.Run("revoke requires the user header", func(t *testing.T) {
		router := newRouter(newTestManager(t, "spotify", &fakeProvider{}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/spotify/revoke", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})
}

func TestCallbackHandler(t *testing.T) {
	t.Run("exchanges the code and delivers the result", func(t *testing.T) {
		manager := newTestManager(t, "spotify", &fakeProvider{
			pair: tokens.TokenPair{AccessToken: "access", RefreshToken: "refresh"},
		})
		handler := NewCallbackHandler(manager, "u1", "expected-state")

		router := NewBasicRouter()
		router.Handler(handler)
		server := httptest.NewServer(router)
		defer server.Close()

		resp, err := http.Get(server.URL + "/callback?state=expected-state&code=auth-code")
		if err != nil {
			t.Fatalf("callback request failed: %v", err)
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200, got %d", resp.StatusCode)
		}

		result := <-handler.Result()
		if result.Error() != nil {
			t.Fatalf("unexpected result error: %v", result.Error())
		}
		if result.Pair.AccessToken != "access" {
			t.Errorf("unexpected token pair: %+v", result.Pair)
		}
		authorized, _ := manager.Authorized("u1")
		if !authorized {
			t.Error("expected u1 to be authorized")
		}
	})

	t.Run("rejects a bad state", func(t *testing.T) {
		handler := NewCallbackHandler(newTestManager(t, "spotify", &fakeProvider{}), "u1", "expected-state")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=wrong&code=c", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		result := <-handler.Result()
		if result.Error() == nil {
			t.Error("expected an error result")
		}
	})

	t.Run("processes only one callback", func(t *testing.T) {
		handler := NewCallbackHandler(newTestManager(t, "spotify", &fakeProvider{}), "u1", "s")

		first := httptest.NewRecorder()
		handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/callback?state=s&code=c", nil))

		second := httptest.NewRecorder()
		handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/callback?state=s&code=c", nil))

		if second.Code != http.StatusBadRequest {
			t.Errorf("expected repeated callback to be rejected, got %d", second.Code)
		}
	})

	t.Run("reports the provider error parameters", func(t *testing.T) {
		handler := NewCallbackHandler(newTestManager(t, "spotify", &fakeProvider{}), "u1", "s")

		rec := httptest.NewRecorder()
		target := "/callback?state=s&error=access_denied&error_description=user+declined"
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

		result := <-handler.Result()
		if result.Error() == nil || !strings.Contains(result.Error().Error(), "access_denied") {
			t.Errorf("expected access_denied in error, got %v", result.Error())
		}
	})
}

func TestMigrateHandler(t *testing.T) {
	sourceTracks := []services.Track{
		{ID: "s1", Title: "Karma Police", Artist: "Radiohead"},
		{ID: "s2", Title: "Paranoid Android", Artist: "Radiohead"},
	}

	newRouter := func(source, dest services.PlaylistClient) *BasicRouter {
		clients := map[string]services.PlaylistClient{"spotify": source, "youtube": dest}
		router := NewBasicRouter()
		router.Handler(NewMigrateHandler(tasks.NewEngine(nil, nil), clients, nil))
		return router
	}

	migrateRequest := func(target string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, target, nil)
		req.Header.Set("X-User-ID", "u1")
		return req
	}

	t.Run("requires the user header", func(t *testing.T) {
		router := newRouter(&mocks.MockPlaylistClient{}, &mocks.MockPlaylistClient{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/migrate/spotify-to-youtube/pl1", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("rejects a malformed pair", func(t *testing.T) {
		router := newRouter(&mocks.MockPlaylistClient{}, &mocks.MockPlaylistClient{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, migrateRequest("/migrate/spotify-youtube/pl1"))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("rejects unknown platforms", func(t *testing.T) {
		router := newRouter(&mocks.MockPlaylistClient{}, &mocks.MockPlaylistClient{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, migrateRequest("/migrate/spotify-to-deezer/pl1"))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("rejects identical source and destination", func(t *testing.T) {
		router := newRouter(&mocks.MockPlaylistClient{}, &mocks.MockPlaylistClient{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, migrateRequest("/migrate/spotify-to-spotify/pl1"))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("runs the migration and reports per-track results", func(t *testing.T) {
		source := &mocks.MockPlaylistClient{
			PlatformName: "Spotify",
			GetPlaylistFunc: func(ctx context.Context, userID, playlistID string) (*services.Playlist, error) {
				return &services.Playlist{ID: playlistID, Name: "Road Trip", TrackCount: len(sourceTracks)}, nil
			},
			GetPlaylistTracksFunc: func(ctx context.Context, userID, playlistID string) ([]services.Track, error) {
				return sourceTracks, nil
			},
		}
		dest := &mocks.MockPlaylistClient{
			PlatformName: "YouTube",
			SearchTrackFunc: func(ctx context.Context, userID, title, artist string) (*services.Track, bool, error) {
				if title == "Paranoid Android" {
					return nil, false, nil
				}
				return &services.Track{ID: "yt-1", Title: title + " (Official Video)", Artist: artist}, true, nil
			},
		}
		router := newRouter(source, dest)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, migrateRequest("/migrate/spotify-to-youtube/pl1"))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var body MigrateResponse
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if body.CreatedPlaylistID != "mock-created" {
			t.Errorf("unexpected created playlist id: %q", body.CreatedPlaylistID)
		}
		if body.TracksTotal != 2 || body.MigratedCount != 1 || body.FailedCount != 1 {
			t.Errorf("unexpected counts: %+v", body)
		}

		want := []MigratedTrack{
			{Title: "Karma Police (Official Video)", Artist: "Radiohead", Found: true},
			{Title: "Paranoid Android", Artist: "Radiohead", Found: false},
		}
		if !reflect.DeepEqual(body.TracksMigrated, want) {
			t.Errorf("unexpected per-track results: %+v", body.TracksMigrated)
		}
		if len(dest.AddedTracks()) != 1 {
			t.Errorf("expected 1 track added, got %d", len(dest.AddedTracks()))
		}
	})

	t.Run("maps missing playlists to 404", func(t *testing.T) {
		source := &mocks.MockPlaylistClient{
			GetPlaylistFunc: func(ctx context.Context, userID, playlistID string) (*services.Playlist, error) {
				return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
			},
		}
		router := newRouter(source, &mocks.MockPlaylistClient{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, migrateRequest("/migrate/spotify-to-youtube/missing"))

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}

		var body errorResponse
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode error body: %v", err)
		}
		if !strings.Contains(body.Error, "playlist not found") {
			t.Errorf("unexpected error message: %q", body.Error)
		}
	})

	t.Run("maps authorization failures to 401", func(t *testing.T) {
		source := &mocks.MockPlaylistClient{
			GetPlaylistFunc: func(ctx context.Context, userID, playlistID string) (*services.Playlist, error) {
				return nil, shared.ErrNoRefreshToken
			},
		}
		router := newRouter(source, &mocks.MockPlaylistClient{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, migrateRequest("/migrate/spotify-to-youtube/pl1"))

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})
}

func TestRequestLogger(t *testing.T) {
	router := NewBasicRouter()
	router.Use(RequestLogger(nil))
	router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("expected status to pass through, got %d", rec.Code)
	}
}
