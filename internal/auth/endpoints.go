package auth

// API docs: https://docs.aylanetworks.com/reference
// The identity side of the flow is Gigya (SAP CDC); the device side is Ayla.

const (
	sdkBuild = "16650"

	apiKey       = "3_e5qn7USZK-QtsIso1wCelqUKAK_IVEsYshRIssQ-X-k55haiZXmKWDHDRul2e5Y2"
	clientID     = "1S8q1WJEs-emOB43Z0-66WnL"
	clientSecret = "lmnceiD0B-4KPNN5ZS6WuWU70j9V5BCuSlz2OPsvHkyLryhMkJkPvKsivfTq3RfNYj8GpCELtOBvhaDIzKcBtg"
	appID        = "DeLonghiComfort2-mw-id"
	appSecret    = "DeLonghiComfort2-Yg4miiqiNcf0Or-EhJwRh7ACfBY"

	// The redirect URI never resolves; the flow stops at the Location header.
	redirectURI = "https://google.it"
	pageURL     = "https://aylaopenid.delonghigroup.com/"

	authorizeScope = "openid email profile UID comfort en alexa"
	consentScope   = "openid+email+profile+UID+comfort+en+alexa"
)

// The remote services reject requests whose user-agent does not match one of
// the strings the official apps send. Three distinct values are in play.
const (
	BrowserUserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 13_3 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) CriOS/79.0.3945.73 Mobile/15E148 Safari/604.1"
	TokenUserAgent   = "DeLonghiComfort/3 CFNetwork/1568.300.101 Darwin/24.2.0"
	APIUserAgent     = "DeLonghiComfort/5.1.1 (iPhone; iOS 18.2; Scale/3.00)"
)

// Endpoints lists every identity and token URL the login sequence touches.
// Overridable so tests can script the whole handshake.
type Endpoints struct {
	AuthorizeURL string
	SessionURL   string
	LoginURL     string
	UserInfoURL  string
	ConsentURL   string
	ContinueURL  string
	TokenURL     string
	SignInURL    string
	RefreshURL   string
}

func DefaultEndpoints() Endpoints {
	return Endpoints{
		AuthorizeURL: "https://fidm.eu1.gigya.com/oidc/op/v1.0/" + apiKey + "/authorize",
		SessionURL:   "https://socialize.eu1.gigya.com/socialize.getIDs",
		LoginURL:     "https://accounts.eu1.gigya.com/accounts.login",
		UserInfoURL:  "https://socialize.eu1.gigya.com/socialize.getUserInfo",
		ConsentURL:   "https://aylaopenid.delonghigroup.com/OIDCConsentPage.php",
		ContinueURL:  "https://fidm.eu1.gigya.com/oidc/op/v1.0/" + apiKey + "/authorize/continue",
		TokenURL:     "https://fidm.eu1.gigya.com/oidc/op/v1.0/" + apiKey + "/token",
		SignInURL:    "https://user-field-eu.aylanetworks.com/api/v1/token_sign_in",
		RefreshURL:   "https://user-field-eu.aylanetworks.com/users/refresh_token.json",
	}
}

// Credentials are supplied once at construction and only ever used as
// request parameters.
type Credentials struct {
	Language string
	Email    string
	Password string
}
