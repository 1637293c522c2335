package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// identityScript is a scripted stand-in for the Gigya/Ayla identity stack.
// Individual steps can be overridden to inject failures.
type identityScript struct {
	mu    sync.Mutex
	calls map[string]int

	overrides map[string]http.HandlerFunc
}

func newIdentityScript() *identityScript {
	return &identityScript{
		calls:     make(map[string]int),
		overrides: make(map[string]http.HandlerFunc),
	}
}

func (s *identityScript) count(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[path]++
}

func (s *identityScript) callCount(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[path]
}

func (s *identityScript) serve(t *testing.T) (*httptest.Server, Endpoints) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.count(r.URL.Path)
		if handler, ok := s.overrides[r.URL.Path]; ok {
			handler(w, r)
			return
		}

		switch r.URL.Path {
		case "/authorize":
			if r.URL.Query().Get("client_id") == "" {
				t.Errorf("authorize missing client_id")
			}
			if r.URL.Query().Get("nonce") == "" {
				t.Errorf("authorize missing nonce")
			}
			w.Header().Set("Location", "https://google.it/?context=ctx-1")
			w.WriteHeader(http.StatusFound)
		case "/getIDs":
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"ucid":"ucid-1","gmid":"gmid-1","gmidTicket":"ticket-1"}`)
		case "/login":
			if err := r.ParseForm(); err != nil {
				t.Errorf("parse login form: %v", err)
			}
			if r.PostForm.Get("loginID") != "user@example.com" {
				t.Errorf("unexpected loginID: %s", r.PostForm.Get("loginID"))
			}
			if r.PostForm.Get("password") != "hunter2" {
				t.Errorf("unexpected password: %s", r.PostForm.Get("password"))
			}
			if r.PostForm.Get("gmid") != "gmid-1" || r.PostForm.Get("ucid") != "ucid-1" {
				t.Errorf("login missing session ids")
			}
			if !strings.Contains(r.PostForm.Get("riskContext"), "%22b0%22") {
				t.Errorf("riskContext is not url-encoded json: %s", r.PostForm.Get("riskContext"))
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"sessionInfo":{"login_token":"login-token-1"}}`)
		case "/getUserInfo":
			if err := r.ParseForm(); err != nil {
				t.Errorf("parse userinfo form: %v", err)
			}
			if r.PostForm.Get("login_token") != "login-token-1" {
				t.Errorf("unexpected login_token: %s", r.PostForm.Get("login_token"))
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"UID":"uid-1","UIDSignature":"uidsig-1","signatureTimestamp":"1700000000"}`)
		case "/consent":
			if r.URL.Query().Get("UID") != "uid-1" {
				t.Errorf("consent missing UID")
			}
			_, _ = io.WriteString(w, "<script>\nconst consentObj2 = {};\nconst consentObj2Sig = 'consent-sig-1';\n</script>")
		case "/continue":
			query := r.URL.Query()
			if query.Get("sig") != "consent-sig-1" {
				t.Errorf("unexpected sig: %s", query.Get("sig"))
			}
			if query.Get("gmidTicket") != "ticket-1" {
				t.Errorf("unexpected gmidTicket: %s", query.Get("gmidTicket"))
			}
			var consent map[string]any
			if err := json.Unmarshal([]byte(query.Get("consent")), &consent); err != nil {
				t.Errorf("consent is not json: %v", err)
			} else if consent["UID"] != "uid-1" || consent["consent"] != true {
				t.Errorf("unexpected consent object: %v", consent)
			}
			w.Header().Set("Location", "https://google.it/?code=auth-code-1")
			w.WriteHeader(http.StatusFound)
		case "/token":
			user, pass, ok := r.BasicAuth()
			if !ok || user == "" || pass == "" {
				t.Errorf("token exchange missing basic auth")
			}
			if err := r.ParseForm(); err != nil {
				t.Errorf("parse token form: %v", err)
			}
			if r.PostForm.Get("grant_type") != "authorization_code" {
				t.Errorf("unexpected grant_type: %s", r.PostForm.Get("grant_type"))
			}
			if r.PostForm.Get("code") != "auth-code-1" {
				t.Errorf("unexpected code: %s", r.PostForm.Get("code"))
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"access_token":"idp-token-1","token_type":"Bearer"}`)
		case "/token_sign_in":
			if err := r.ParseForm(); err != nil {
				t.Errorf("parse sign-in form: %v", err)
			}
			if r.PostForm.Get("token") != "idp-token-1" {
				t.Errorf("unexpected idp token: %s", r.PostForm.Get("token"))
			}
			if r.PostForm.Get("app_id") == "" || r.PostForm.Get("app_secret") == "" {
				t.Errorf("sign-in missing app credentials")
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"access_token":"T1","refresh_token":"R1","expires_in":3600}`)
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	endpoints := Endpoints{
		AuthorizeURL: server.URL + "/authorize",
		SessionURL:   server.URL + "/getIDs",
		LoginURL:     server.URL + "/login",
		UserInfoURL:  server.URL + "/getUserInfo",
		ConsentURL:   server.URL + "/consent",
		ContinueURL:  server.URL + "/continue",
		TokenURL:     server.URL + "/token",
		SignInURL:    server.URL + "/token_sign_in",
		RefreshURL:   server.URL + "/refresh_token",
	}
	return server, endpoints
}

func testCredentials() Credentials {
	return Credentials{Language: "en", Email: "user@example.com", Password: "hunter2"}
}

func TestLoginSequence(t *testing.T) {
	script := newIdentityScript()
	server, endpoints := script.serve(t)
	defer server.Close()

	sequencer := NewSequencerWithEndpoints(testCredentials(), endpoints)

	before := time.Now()
	pair, err := sequencer.Login(context.Background())
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if pair.AccessToken != "T1" {
		t.Fatalf("unexpected access token: %s", pair.AccessToken)
	}
	if pair.RefreshToken != "R1" {
		t.Fatalf("unexpected refresh token: %s", pair.RefreshToken)
	}
	expiry := before.Add(3600 * time.Second)
	if pair.ExpiresAt.Before(expiry.Add(-30*time.Second)) || pair.ExpiresAt.After(expiry.Add(30*time.Second)) {
		t.Fatalf("unexpected expiry: %s", pair.ExpiresAt)
	}

	for _, path := range []string{"/authorize", "/getIDs", "/login", "/getUserInfo", "/consent", "/continue", "/token", "/token_sign_in"} {
		if script.callCount(path) != 1 {
			t.Fatalf("expected exactly one call to %s, got %d", path, script.callCount(path))
		}
	}
}

func TestLoginFailsOnMissingLoginToken(t *testing.T) {
	script := newIdentityScript()
	script.overrides["/login"] = func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"sessionInfo":{}}`)
	}
	server, endpoints := script.serve(t)
	defer server.Close()

	sequencer := NewSequencerWithEndpoints(testCredentials(), endpoints)
	_, err := sequencer.Login(context.Background())
	if err == nil {
		t.Fatalf("expected error for missing login_token")
	}
	if !strings.Contains(err.Error(), "credential login") {
		t.Fatalf("unexpected error: %v", err)
	}
	if script.callCount("/getUserInfo") != 0 {
		t.Fatalf("sequence continued past failed step")
	}
}

func TestLoginFailsOnMissingAuthorizationCode(t *testing.T) {
	script := newIdentityScript()
	script.overrides["/continue"] = func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Location", "https://google.it/?error=denied")
		w.WriteHeader(http.StatusFound)
	}
	server, endpoints := script.serve(t)
	defer server.Close()

	sequencer := NewSequencerWithEndpoints(testCredentials(), endpoints)
	_, err := sequencer.Login(context.Background())
	if err == nil || !strings.Contains(err.Error(), "authorization continuation") {
		t.Fatalf("expected continuation failure, got %v", err)
	}
}

func TestExtractConsentSignature(t *testing.T) {
	page := "const consentObj2 = {\"a\":1};\nconst consentObj2Sig = 'abc123';\nmore();"
	sig, err := extractConsentSignature(page)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if sig != "abc123" {
		t.Fatalf("unexpected signature: %s", sig)
	}

	if _, err := extractConsentSignature("<html>totally different page</html>"); err == nil {
		t.Fatalf("expected error for missing marker")
	}
	if _, err := extractConsentSignature("const consentObj2Sig = 'truncated"); err == nil {
		t.Fatalf("expected error for malformed signature")
	}
}
