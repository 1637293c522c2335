package auth

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"
)

func TestAccessTokenReusesCachedToken(t *testing.T) {
	script := newIdentityScript()
	server, endpoints := script.serve(t)
	defer server.Close()

	manager := NewManagerWithEndpoints(testCredentials(), endpoints)
	manager.pair = TokenPair{
		AccessToken:  "cached",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(time.Hour),
	}

	for i := 0; i < 3; i++ {
		token, err := manager.AccessToken(context.Background())
		if err != nil {
			t.Fatalf("AccessToken: %v", err)
		}
		if token != "cached" {
			t.Fatalf("unexpected token: %s", token)
		}
	}

	for path, count := range script.calls {
		t.Fatalf("unexpected request to %s (%d)", path, count)
	}
}

func TestAccessTokenRefreshesExpiredToken(t *testing.T) {
	script := newIdentityScript()
	script.overrides["/refresh_token"] = func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST refresh, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"fresh","refresh_token":"next","expires_in":900}`)
	}
	server, endpoints := script.serve(t)
	defer server.Close()

	manager := NewManagerWithEndpoints(testCredentials(), endpoints)
	manager.pair = TokenPair{
		AccessToken:  "stale",
		RefreshToken: "old-refresh",
		ExpiresAt:    time.Now().Add(-time.Second),
	}

	token, err := manager.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("AccessToken: %v", err)
	}
	if token != "fresh" {
		t.Fatalf("unexpected token: %s", token)
	}
	if manager.pair.RefreshToken != "next" {
		t.Fatalf("refresh token not rotated: %s", manager.pair.RefreshToken)
	}
	if script.callCount("/refresh_token") != 1 {
		t.Fatalf("expected one refresh call, got %d", script.callCount("/refresh_token"))
	}
	if script.callCount("/authorize") != 0 {
		t.Fatalf("unexpected login during refresh")
	}
}

func TestAccessTokenFallsBackToLoginOnRefreshFailure(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"http error": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		},
		"missing fields": func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"access_token":"only"}`)
		},
	}

	for name, refreshHandler := range cases {
		t.Run(name, func(t *testing.T) {
			script := newIdentityScript()
			script.overrides["/refresh_token"] = refreshHandler
			server, endpoints := script.serve(t)
			defer server.Close()

			manager := NewManagerWithEndpoints(testCredentials(), endpoints)
			manager.pair = TokenPair{
				AccessToken:  "stale",
				RefreshToken: "dead-refresh",
				ExpiresAt:    time.Now().Add(-time.Minute),
			}

			token, err := manager.AccessToken(context.Background())
			if err != nil {
				t.Fatalf("AccessToken: %v", err)
			}
			if token != "T1" {
				t.Fatalf("expected login token, got %s", token)
			}
			if script.callCount("/refresh_token") != 1 {
				t.Fatalf("expected one refresh attempt")
			}
			if script.callCount("/token_sign_in") != 1 {
				t.Fatalf("expected full login after refresh failure")
			}
			if !manager.pair.Valid(time.Now()) {
				t.Fatalf("expected a valid pair after fallback")
			}
		})
	}
}

func TestAccessTokenLogsInWithoutRefreshToken(t *testing.T) {
	script := newIdentityScript()
	server, endpoints := script.serve(t)
	defer server.Close()

	manager := NewManagerWithEndpoints(testCredentials(), endpoints)

	token, err := manager.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("AccessToken: %v", err)
	}
	if token != "T1" {
		t.Fatalf("unexpected token: %s", token)
	}
	if script.callCount("/refresh_token") != 0 {
		t.Fatalf("refresh attempted without a refresh token")
	}

	// Second call stays on the cached pair.
	signIns := script.callCount("/token_sign_in")
	if _, err := manager.AccessToken(context.Background()); err != nil {
		t.Fatalf("AccessToken: %v", err)
	}
	if script.callCount("/token_sign_in") != signIns {
		t.Fatalf("expected no second login inside the TTL window")
	}
}
