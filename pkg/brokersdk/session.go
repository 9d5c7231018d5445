package brokersdk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"sync"
	"time"
)

// ErrNoRefreshToken is returned when the access token has expired and the
// session cannot refresh it.
var ErrNoRefreshToken = errors.New("brokersdk: access token expired and no refresh token available")

// Session is an authenticated caller. It is safe for concurrent use.
type Session struct {
	client *SDKClient

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
	roles        []string
}

// NewSessionFromTokens resumes a session from stored tokens.
func (c *SDKClient) NewSessionFromTokens(accessToken, refreshToken string, expiresIn int, roles []string) *Session {
	return newSession(c, &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
		Roles:        roles,
	})
}

func newSession(c *SDKClient, tok *TokenResponse) *Session {
	s := &Session{client: c}
	s.apply(tok)
	return s
}

// apply must be called with mu held for writing (or before s is shared).
func (s *Session) apply(tok *TokenResponse) {
	s.accessToken = tok.AccessToken
	s.refreshToken = tok.RefreshToken
	s.expiresAt = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - s.client.RefreshLeeway)
	s.roles = slices.Clone(tok.Roles)
}

// AccessToken returns the current access token without refreshing it.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the current refresh token.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// Roles returns the roles reported at the last issuance.
func (s *Session) Roles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.roles)
}

// HasRole reports whether the last issuance included role.
func (s *Session) HasRole(role string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.roles, role)
}

// Refresh forces a refresh regardless of the access token's expiry.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *Session) refreshLocked(ctx context.Context) error {
	if s.refreshToken == "" {
		return ErrNoRefreshToken
	}

	tok, err := s.client.RefreshGrant(ctx, s.refreshToken)
	if err != nil {
		return fmt.Errorf("failed to refresh token: %w", err)
	}
	s.apply(tok)
	return nil
}

// getValidToken returns a usable access token, refreshing when it is about
// to expire.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if time.Now().Before(s.expiresAt) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have refreshed while we waited.
	if time.Now().Before(s.expiresAt) {
		return s.accessToken, nil
	}
	if err := s.refreshLocked(ctx); err != nil {
		return "", err
	}
	return s.accessToken, nil
}

// doAuthRequest sends an authenticated request.
func (s *Session) doAuthRequest(
	ctx context.Context,
	method, path string,
	body io.Reader,
	headers map[string]string,
) (*http.Response, error) {
	token, err := s.getValidToken(ctx)
	if err != nil {
		return nil, err
	}

	hdrs := map[string]string{"Authorization": "Bearer " + token}
	for k, v := range headers {
		hdrs[k] = v
	}
	return s.client.doRequest(ctx, method, path, body, hdrs)
}

func (s *Session) doJSON(ctx context.Context, method, path string, in, out any, expected int) error {
	body, hdrs, err := jsonBody(in, nil)
	if err != nil {
		return err
	}

	resp, err := s.doAuthRequest(ctx, method, path, body, hdrs)
	if err != nil {
		return err
	}
	return decodeJSON(resp, out, expected)
}
