package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// TokenPair is the Ayla API session produced by a login or refresh.
// A pair with an empty access token counts as absent.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

func (p TokenPair) Valid(now time.Time) bool {
	return p.AccessToken != "" && p.ExpiresAt.After(now)
}

// Sequencer runs the 8-step browser-emulating handshake that exchanges
// end-user credentials for an Ayla token pair. Any missing field at any
// step fails the whole sequence; steps are never retried individually.
type Sequencer struct {
	creds     Credentials
	endpoints Endpoints

	// browser never follows redirects: steps 1 and 6 carry their result
	// in the Location header.
	browser *http.Client
	token   *http.Client
}

func NewSequencer(creds Credentials) *Sequencer {
	return NewSequencerWithEndpoints(creds, DefaultEndpoints())
}

func NewSequencerWithEndpoints(creds Credentials, endpoints Endpoints) *Sequencer {
	return &Sequencer{
		creds:     creds,
		endpoints: endpoints,
		browser: &http.Client{
			Timeout:   30 * time.Second,
			Transport: userAgentTransport{agent: BrowserUserAgent},
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		token: &http.Client{
			Timeout:   30 * time.Second,
			Transport: userAgentTransport{agent: TokenUserAgent},
		},
	}
}

// Login executes the full handshake and returns a fresh token pair.
func (s *Sequencer) Login(ctx context.Context) (TokenPair, error) {
	authContext, err := s.authorize(ctx)
	if err != nil {
		return TokenPair{}, fmt.Errorf("authorize: %w", err)
	}

	session, err := s.fetchSession(ctx)
	if err != nil {
		return TokenPair{}, fmt.Errorf("session bootstrap: %w", err)
	}

	loginToken, err := s.credentialLogin(ctx, session)
	if err != nil {
		return TokenPair{}, fmt.Errorf("credential login: %w", err)
	}

	identity, err := s.fetchUserInfo(ctx, session, loginToken)
	if err != nil {
		return TokenPair{}, fmt.Errorf("user info: %w", err)
	}

	signature, err := s.consent(ctx, authContext, identity)
	if err != nil {
		return TokenPair{}, fmt.Errorf("consent: %w", err)
	}

	code, err := s.continueAuthorization(ctx, authContext, loginToken, identity, signature, session.GMIDTicket)
	if err != nil {
		return TokenPair{}, fmt.Errorf("authorization continuation: %w", err)
	}

	idpToken, err := s.exchangeCode(ctx, code)
	if err != nil {
		return TokenPair{}, fmt.Errorf("code exchange: %w", err)
	}

	pair, err := s.signIn(ctx, idpToken)
	if err != nil {
		return TokenPair{}, fmt.Errorf("token sign-in: %w", err)
	}
	return pair, nil
}

// Step 1: request an authorization context from the OIDC provider.
func (s *Sequencer) authorize(ctx context.Context) (string, error) {
	params := url.Values{}
	params.Set("client_id", clientID)
	params.Set("response_type", "code")
	params.Set("redirect_uri", redirectURI)
	params.Set("scope", authorizeScope)
	params.Set("nonce", strconv.FormatInt(time.Now().Unix(), 10))

	resp, err := s.browserGet(ctx, s.endpoints.AuthorizeURL, params)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	authContext, err := locationParam(resp, "context")
	if err != nil {
		return "", err
	}
	return authContext, nil
}

type gigyaSession struct {
	UCID       string `json:"ucid"`
	GMID       string `json:"gmid"`
	GMIDTicket string `json:"gmidTicket"`
}

// Step 2: fetch the Gigya session identifiers.
func (s *Sequencer) fetchSession(ctx context.Context) (gigyaSession, error) {
	params := url.Values{}
	params.Set("APIKey", apiKey)
	params.Set("includeTicket", "true")
	params.Set("pageURL", pageURL)
	params.Set("sdk", "js_latest")
	params.Set("sdkBuild", sdkBuild)
	params.Set("format", "json")

	var session gigyaSession
	if err := s.browserGetJSON(ctx, s.endpoints.SessionURL, params, &session); err != nil {
		return gigyaSession{}, err
	}
	if session.UCID == "" || session.GMID == "" || session.GMIDTicket == "" {
		return gigyaSession{}, errors.New("response missing ucid, gmid or gmidTicket")
	}
	return session, nil
}

// Step 3: log in with the end-user credentials.
func (s *Sequencer) credentialLogin(ctx context.Context, session gigyaSession) (string, error) {
	risk, err := riskContext(time.Now())
	if err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("loginID", s.creds.Email)
	form.Set("password", s.creds.Password)
	form.Set("sessionExpiration", "7884009")
	form.Set("targetEnv", "jssdk")
	form.Set("include", "profile,data,emails,subscriptions,preferences")
	form.Set("includeUserInfo", "true")
	form.Set("loginMode", "standard")
	form.Set("lang", s.creds.Language)
	form.Set("riskContext", url.QueryEscape(risk))
	form.Set("APIKey", apiKey)
	form.Set("source", "showScreenSet")
	form.Set("sdk", "js_latest")
	form.Set("authMode", "cookie")
	form.Set("pageURL", pageURL)
	form.Set("gmid", session.GMID)
	form.Set("ucid", session.UCID)
	form.Set("sdkBuild", sdkBuild)
	form.Set("format", "json")

	var body struct {
		SessionInfo struct {
			LoginToken string `json:"login_token"`
		} `json:"sessionInfo"`
	}
	if err := s.browserPostForm(ctx, s.endpoints.LoginURL, form, &body); err != nil {
		return "", err
	}
	if body.SessionInfo.LoginToken == "" {
		return "", errors.New("response missing sessionInfo.login_token")
	}
	return body.SessionInfo.LoginToken, nil
}

type userIdentity struct {
	UID                string `json:"UID"`
	UIDSignature       string `json:"UIDSignature"`
	SignatureTimestamp string `json:"signatureTimestamp"`
}

// Step 4: resolve the signed user identity for the login token.
func (s *Sequencer) fetchUserInfo(ctx context.Context, session gigyaSession, loginToken string) (userIdentity, error) {
	form := url.Values{}
	form.Set("enabledProviders", "*")
	form.Set("APIKey", apiKey)
	form.Set("sdk", "js_latest")
	form.Set("login_token", loginToken)
	form.Set("authMode", "cookie")
	form.Set("pageURL", pageURL)
	form.Set("gmid", session.GMID)
	form.Set("ucid", session.UCID)
	form.Set("sdkBuild", sdkBuild)
	form.Set("format", "json")

	var identity userIdentity
	if err := s.browserPostForm(ctx, s.endpoints.UserInfoURL, form, &identity); err != nil {
		return userIdentity{}, err
	}
	if identity.UID == "" || identity.UIDSignature == "" || identity.SignatureTimestamp == "" {
		return userIdentity{}, errors.New("response missing UID, UIDSignature or signatureTimestamp")
	}
	return identity, nil
}

// Step 5: load the consent page and scrape the consent signature out of it.
func (s *Sequencer) consent(ctx context.Context, authContext string, identity userIdentity) (string, error) {
	params := url.Values{}
	params.Set("lang", s.creds.Language)
	params.Set("context", authContext)
	params.Set("clientID", clientID)
	params.Set("scope", consentScope)
	params.Set("UID", identity.UID)
	params.Set("UIDSignature", identity.UIDSignature)
	params.Set("signatureTimestamp", identity.SignatureTimestamp)

	resp, err := s.browserGet(ctx, s.endpoints.ConsentURL, params)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	page, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return extractConsentSignature(string(page))
}

const consentSignatureMarker = "const consentObj2Sig = '"

// extractConsentSignature pulls the consent signature out of the consent
// page script. This is the one deliberately brittle spot in the handshake:
// a page-format change breaks it, so it lives behind its own function.
func extractConsentSignature(page string) (string, error) {
	_, rest, found := strings.Cut(page, consentSignatureMarker)
	if !found {
		return "", errors.New("consent page missing signature marker")
	}
	signature, _, found := strings.Cut(rest, "';")
	if !found || signature == "" {
		return "", errors.New("consent page signature is malformed")
	}
	return signature, nil
}

// Step 6: hand the consent back and collect the authorization code.
func (s *Sequencer) continueAuthorization(ctx context.Context, authContext, loginToken string, identity userIdentity, signature, gmidTicket string) (string, error) {
	// Field order matters: the signature covers the compact JSON encoding.
	consent, err := json.Marshal(struct {
		Scope    string `json:"scope"`
		ClientID string `json:"clientID"`
		Context  string `json:"context"`
		UID      string `json:"UID"`
		Consent  bool   `json:"consent"`
	}{
		Scope:    authorizeScope,
		ClientID: clientID,
		Context:  authContext,
		UID:      identity.UID,
		Consent:  true,
	})
	if err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("context", authContext)
	params.Set("login_token", loginToken)
	params.Set("consent", string(consent))
	params.Set("sig", signature)
	params.Set("gmidTicket", gmidTicket)

	resp, err := s.browserGet(ctx, s.endpoints.ContinueURL, params)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	code, err := locationParam(resp, "code")
	if err != nil {
		return "", err
	}
	return code, nil
}

// Step 7: trade the authorization code for an identity-provider token.
// This leg is plain OAuth, so it goes through oauth2 with Basic auth.
func (s *Sequencer) exchangeCode(ctx context.Context, code string) (string, error) {
	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Endpoint: oauth2.Endpoint{
			TokenURL:  s.endpoints.TokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.token)
	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			body := strings.TrimSpace(string(retrieveErr.Body))
			return "", fmt.Errorf("http %d: %s", retrieveErr.Response.StatusCode, body)
		}
		return "", err
	}
	if tok.AccessToken == "" {
		return "", errors.New("response missing access_token")
	}
	return tok.AccessToken, nil
}

// Step 8: exchange the identity-provider token for the Ayla token pair.
func (s *Sequencer) signIn(ctx context.Context, idpToken string) (TokenPair, error) {
	form := url.Values{}
	form.Set("app_id", appID)
	form.Set("app_secret", appSecret)
	form.Set("token", idpToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoints.SignInURL, strings.NewReader(form.Encode()))
	if err != nil {
		return TokenPair{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.token.Do(req)
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

func (s *Sequencer) browserGet(ctx context.Context, endpoint string, params url.Values) (*http.Response, error) {
	reqURL, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	reqURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.browser.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp, nil
}

func (s *Sequencer) browserGetJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	resp, err := s.browserGet(ctx, endpoint, params)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (s *Sequencer) browserPostForm(ctx context.Context, endpoint string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.browser.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// locationParam extracts a query parameter from a redirect's Location header.
func locationParam(resp *http.Response, name string) (string, error) {
	location := resp.Header.Get("Location")
	if location == "" {
		return "", errors.New("response missing Location header")
	}
	parsed, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("parse Location header: %w", err)
	}
	value := parsed.Query().Get(name)
	if value == "" {
		return "", fmt.Errorf("Location header missing %q parameter", name)
	}
	return value, nil
}

// riskContext synthesizes the browser-fingerprint blob accounts.login
// expects alongside the credentials.
func riskContext(now time.Time) (string, error) {
	type pdfPlugin struct {
		Name     string `json:"name"`
		Filename string `json:"filename"`
		Length   int    `json:"length"`
	}

	blob := map[string]any{
		"b0": 4494,
		"b1": []int{0, 2, 2, 0},
		"b2": 2,
		"b3": []any{},
		"b4": 2,
		"b5": 1,
		"b6": BrowserUserAgent,
		"b7": []pdfPlugin{
			{Name: "PDF Viewer", Filename: "internal-pdf-viewer", Length: 2},
			{Name: "Chrome PDF Viewer", Filename: "internal-pdf-viewer", Length: 2},
			{Name: "Chromium PDF Viewer", Filename: "internal-pdf-viewer", Length: 2},
			{Name: "Microsoft Edge PDF Viewer", Filename: "internal-pdf-viewer", Length: 2},
			{Name: "WebKit built-in PDF", Filename: "internal-pdf-viewer", Length: 2},
		},
		"b8":  now.Format("15:04:05"),
		"b9":  0,
		"b10": map[string]string{"state": "denied"},
		"b11": false,
		"b13": []any{5, "440|956|24", false, true},
	}

	data, err := json.Marshal(blob)
	if err != nil {
		return "", fmt.Errorf("marshal risk context: %w", err)
	}
	return string(data), nil
}

// userAgentTransport forces a fixed user-agent on every request.
type userAgentTransport struct {
	agent string
	base  http.RoundTripper
}

func (t userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	cloned := req.Clone(req.Context())
	cloned.Header.Set("User-Agent", t.agent)
	return base.RoundTrip(cloned)
}
