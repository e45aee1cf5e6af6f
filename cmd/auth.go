package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/playlistbridge/playlistbridge/internal/server"
	"github.com/playlistbridge/playlistbridge/internal/services"
	"github.com/playlistbridge/playlistbridge/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin performs the OAuth2 authorization flow for a platform.
//
// Starts a local HTTP server, opens the browser for user authorization, and
// stores the exchanged tokens in the credential store.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	platform := cmd.String("platform")
	userID := cmd.String("user")

	manager, err := r.resolveManager(platform)
	if err != nil {
		return err
	}

	state := shared.GenerateID()
	authURL := manager.AuthURL(state)

	handler := server.NewCallbackHandler(manager, userID, state)
	router := server.NewBasicRouter()
	router.Handle(http.MethodGet, r.callbackPath(platform), handler)

	serverAddr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth callback server for %s at %v", platform, serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for %s authorization...\n", platform)
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.CallbackResult

	select {
	case result = <-handler.Result():
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrAuthFailed)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return fmt.Errorf("authorization failed: %w", result.Error())
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Tokens stored for user %q\n\n", userID)
	r.writePlain("You can now use: playlistbridge playlists --platform %s\n", platform)

	return nil
}

// AuthStatus reports which platforms hold a refresh token for the user.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	userID := cmd.String("user")

	r.writePlain("Authorization status for user %q:\n", userID)

	for _, platform := range []string{services.PlatformSpotify, services.PlatformYouTube} {
		manager, ok := r.managers[platform]
		if !ok {
			r.writePlain("  %s: ✗ No credentials configured\n", platform)
			continue
		}

		authorized, err := manager.Authorized(userID)
		if err != nil {
			return fmt.Errorf("failed to check %s authorization: %w", platform, err)
		}
		if authorized {
			r.writePlain("  %s: ✓ Authorized\n", platform)
		} else {
			r.writePlain("  %s: ✗ Not authorized\n", platform)
		}
	}

	return nil
}

// AuthRevoke discards the stored tokens for a platform.
func (r *Runner) AuthRevoke(ctx context.Context, cmd *cli.Command) error {
	platform := cmd.String("platform")
	userID := cmd.String("user")

	manager, err := r.resolveManager(platform)
	if err != nil {
		return err
	}

	if err := manager.Revoke(userID); err != nil {
		return fmt.Errorf("failed to revoke %s tokens: %w", platform, err)
	}

	r.logger.Info("tokens revoked", "platform", platform, "user", userID)
	return r.writePlain("✓ %s tokens revoked for user %q\n", platform, userID)
}

// callbackPath extracts the callback route from the platform's configured
// redirect URI, falling back to /callback.
func (r *Runner) callbackPath(platform string) string {
	var redirect string
	switch platform {
	case services.PlatformSpotify:
		redirect = r.config.Credentials.Spotify.RedirectURI
	case services.PlatformYouTube:
		redirect = r.config.Credentials.YouTube.RedirectURI
	}

	if parsed, err := url.Parse(redirect); err == nil && parsed.Path != "" {
		return parsed.Path
	}
	return "/callback"
}
