package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Manager owns the token pair for one account session. It hands out the
// cached access token while it is still valid, refreshes it with the
// refresh token when it is not, and falls back to a full login whenever
// the refresh path cannot deliver. Renewal is serialized under the mutex
// so concurrent callers never trigger duplicate refreshes.
type Manager struct {
	sequencer  *Sequencer
	refreshURL string
	httpClient *http.Client

	mu   sync.Mutex
	pair TokenPair
}

func NewManager(creds Credentials) *Manager {
	return NewManagerWithEndpoints(creds, DefaultEndpoints())
}

func NewManagerWithEndpoints(creds Credentials, endpoints Endpoints) *Manager {
	return &Manager{
		sequencer:  NewSequencerWithEndpoints(creds, endpoints),
		refreshURL: endpoints.RefreshURL,
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: userAgentTransport{agent: TokenUserAgent},
		},
	}
}

// AccessToken returns a currently valid access token, renewing the pair
// if needed. Repeated calls before expiry return the cached token with
// no network traffic. There is no "no token yet" error: an absent pair
// simply means a full login.
func (m *Manager) AccessToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pair.Valid(time.Now()) {
		return m.pair.AccessToken, nil
	}

	pair, err := m.renew(ctx)
	if err != nil {
		tokenValid.Set(0)
		return "", err
	}

	m.pair = pair
	tokenValid.Set(1)
	return pair.AccessToken, nil
}

// renew refreshes the pair when a refresh token is on hand, otherwise
// performs the full login. A failed refresh is never fatal; it only
// demotes the attempt to a login.
func (m *Manager) renew(ctx context.Context) (TokenPair, error) {
	if m.pair.RefreshToken == "" {
		return m.login(ctx)
	}

	pair, err := m.refresh(ctx, m.pair.RefreshToken)
	if err != nil {
		refreshFailure.Inc()
		log.Printf("auth: token refresh failed, falling back to login: %v", err)
		return m.login(ctx)
	}

	refreshSuccess.Inc()
	return pair, nil
}

func (m *Manager) login(ctx context.Context) (TokenPair, error) {
	pair, err := m.sequencer.Login(ctx)
	if err != nil {
		loginFailure.Inc()
		return TokenPair{}, fmt.Errorf("login: %w", err)
	}
	loginSuccess.Inc()
	return pair, nil
}

func (m *Manager) refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	payload, err := json.Marshal(map[string]any{
		"user": map[string]string{"refresh_token": refreshToken},
	})
	if err != nil {
		return TokenPair{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.refreshURL, bytes.NewReader(payload))
	if err != nil {
		return TokenPair{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return TokenPair{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return TokenPair{}, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var body struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return TokenPair{}, fmt.Errorf("decode response: %w", err)
	}
	if body.AccessToken == "" || body.RefreshToken == "" || body.ExpiresIn == 0 {
		return TokenPair{}, errors.New("response missing access_token, refresh_token or expires_in")
	}

	return TokenPair{
		AccessToken:  body.AccessToken,
		RefreshToken: body.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(body.ExpiresIn) * time.Second),
	}, nil
}
