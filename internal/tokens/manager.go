package tokens

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/playlistbridge/playlistbridge/internal/shared"
	"github.com/playlistbridge/playlistbridge/internal/store"
)

// Manager keeps per-user tokens for one platform valid.
//
// Access tokens live in the store under a TTL matching their expiry; refresh
// tokens are stored without expiry. Concurrent callers for the same user are
// serialized so at most one refresh is in flight per user.
type Manager struct {
	platform string
	provider Provider
	store    store.Store
	logger   *log.Logger

	mu    sync.Mutex
	users map[string]*sync.Mutex
}

// NewManager creates a Manager for platform backed by the given provider and store.
func NewManager(platform string, provider Provider, st store.Store, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}

	return &Manager{
		platform: platform,
		provider: provider,
		store:    st,
		logger:   logger,
		users:    make(map[string]*sync.Mutex),
	}
}

// Platform returns the platform name this manager serves.
func (m *Manager) Platform() string { return m.platform }

// AuthURL returns the platform authorization URL for the given state.
func (m *Manager) AuthURL(state string) string {
	return m.provider.AuthURL(state)
}

// userLock returns the mutex serializing token operations for userID.
func (m *Manager) userLock(userID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	lock, ok := m.users[userID]
	if !ok {
		lock = &sync.Mutex{}
		m.users[userID] = lock
	}
	return lock
}

// ExchangeCode trades an authorization code for tokens and persists them for userID.
func (m *Manager) ExchangeCode(ctx context.Context, userID, code string) (TokenPair, error) {
	lock := m.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	pair, err := m.provider.Exchange(ctx, code)
	if err != nil {
		return TokenPair{}, err
	}

	if err := m.persist(userID, pair); err != nil {
		return TokenPair{}, err
	}

	m.logger.Debug("exchanged auth code", "platform", m.platform, "user", userID)
	return pair, nil
}

// GetValidAccessToken returns a live access token for userID, refreshing it
// when the cached one has expired.
//
// Returns [shared.ErrNoRefreshToken] when the user never authorized the
// platform, and [shared.ErrInvalidToken] when the stored refresh token was
// rejected; the rejected refresh token is removed so the next call reports
// missing authorization instead of retrying a dead credential.
func (m *Manager) GetValidAccessToken(ctx context.Context, userID string) (string, error) {
	lock := m.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	accessKey := store.AccessTokenKey(m.platform, userID)

	token, ok, err := m.store.Get(accessKey)
	if err != nil {
		return "", fmt.Errorf("failed to read access token: %w", err)
	}
	if ok {
		return token, nil
	}

	refreshToken, ok, err := m.store.Get(store.RefreshTokenKey(m.platform, userID))
	if err != nil {
		return "", fmt.Errorf("failed to read refresh token: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("%w: %s user %s", shared.ErrNoRefreshToken, m.platform, userID)
	}

	pair, err := m.provider.Refresh(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidToken) {
			if delErr := m.store.Delete(store.RefreshTokenKey(m.platform, userID)); delErr != nil {
				m.logger.Warn("failed to remove rejected refresh token", "platform", m.platform, "user", userID, "error", delErr)
			}
		}
		return "", err
	}

	if err := m.persist(userID, pair); err != nil {
		return "", err
	}

	m.logger.Debug("refreshed access token", "platform", m.platform, "user", userID, "expires_in", pair.ExpiresIn)
	return pair.AccessToken, nil
}

// Revoke removes all stored tokens for userID. Revoking a user with no
// stored tokens succeeds.
func (m *Manager) Revoke(userID string) error {
	lock := m.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if err := m.store.Delete(store.AccessTokenKey(m.platform, userID)); err != nil {
		return fmt.Errorf("failed to remove access token: %w", err)
	}
	if err := m.store.Delete(store.RefreshTokenKey(m.platform, userID)); err != nil {
		return fmt.Errorf("failed to remove refresh token: %w", err)
	}

	m.logger.Debug("revoked tokens", "platform", m.platform, "user", userID)
	return nil
}

// Authorized reports whether userID holds a refresh token for the platform.
func (m *Manager) Authorized(userID string) (bool, error) {
	_, ok, err := m.store.Get(store.RefreshTokenKey(m.platform, userID))
	return ok, err
}

// persist writes a token pair to the store, keeping the previous refresh
// token when the pair does not carry a rotated one.
func (m *Manager) persist(userID string, pair TokenPair) error {
	var ttl time.Duration
	if pair.ExpiresIn > 0 {
		ttl = time.Duration(pair.ExpiresIn) * time.Second
	}

	if err := m.store.Put(store.AccessTokenKey(m.platform, userID), pair.AccessToken, ttl); err != nil {
		return fmt.Errorf("failed to store access token: %w", err)
	}

	if pair.RefreshToken != "" {
		if err := m.store.Put(store.RefreshTokenKey(m.platform, userID), pair.RefreshToken, 0); err != nil {
			return fmt.Errorf("failed to store refresh token: %w", err)
		}
	}

	return nil
}
