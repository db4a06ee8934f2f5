// Package keycloak probes a Keycloak realm by requesting a token and
// verifying it against the realm's published signing keys.
package keycloak

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jonwraymond/healthops/probe"
)

// Kind is the configuration kind of this adapter.
const Kind = "keycloak"

// DefaultClientID is the client used by UsernamePassword mode when the
// client_id parameter is unset.
const DefaultClientID = "admin-cli"

// Modes lists the creation modes Factory accepts. In ClientSecret mode the
// tenant ID is the realm; UsernamePassword mode reads the realm parameter.
var Modes = []probe.ModeKind{probe.KindRegistry, probe.KindClientSecret, probe.KindUsernamePassword}

// Params lists the parameters UsernamePassword mode reads. realm is required.
var Params = []string{"realm", "client_id"}

// Client requests tokens from one realm.
type Client struct {
	http     *http.Client
	issuer   string
	tokenURL string
	form     url.Values
	keys     *KeySet
}

// NewClient creates a client for realm at baseURL. form holds the grant
// parameters sent to the token endpoint.
func NewClient(baseURL, realm string, form url.Values, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{}
	}
	issuer := strings.TrimRight(baseURL, "/") + "/realms/" + url.PathEscape(realm)
	return &Client{
		http:     hc,
		issuer:   issuer,
		tokenURL: issuer + "/protocol/openid-connect/token",
		form:     form,
		keys:     NewKeySet(issuer+"/protocol/openid-connect/certs", hc, 0),
	}
}

// Issuer returns the realm URL tokens must be issued by.
func (c *Client) Issuer() string { return c.issuer }

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// New creates a check.
func New(name string, source probe.OptionsSource, opts ...probe.Option) *probe.Check[*Client] {
	opts = append([]probe.Option{
		probe.WithKind(Kind),
		probe.WithModes(Modes...),
		probe.WithModeParams(probe.KindUsernamePassword, "realm"),
	}, opts...)
	return probe.New(name, source, Factory, Probe, opts...)
}

// Factory builds a client for the client-credentials or password grant.
func Factory(ctx context.Context, opts *probe.Options) (*Client, error) {
	switch m := opts.Mode.(type) {
	case probe.ClientSecret:
		return NewClient(m.ServiceURI, m.TenantID, url.Values{
			"grant_type":    {"client_credentials"},
			"client_id":     {m.ClientID},
			"client_secret": {m.ClientSecret},
		}, nil), nil

	case probe.UsernamePassword:
		realm := opts.Param("realm")
		if realm == "" {
			return nil, errors.New("keycloak: parameter realm is required in UsernamePassword mode")
		}
		clientID := opts.Param("client_id")
		if clientID == "" {
			clientID = DefaultClientID
		}
		return NewClient(m.ServiceURI, realm, url.Values{
			"grant_type": {"password"},
			"client_id":  {clientID},
			"username":   {m.Username},
			"password":   {m.Password},
		}, nil), nil

	default:
		return nil, probe.Unsupported(opts.Mode)
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	Error       string `json:"error"`
}

// Probe requests a token and verifies its signature and issuer. A rejected
// grant or a token that fails verification fails the check.
func Probe(ctx context.Context, client *Client, opts *probe.Options) (probe.Verdict, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, client.tokenURL, strings.NewReader(client.form.Encode()))
	if err != nil {
		return probe.Verdict{}, fmt.Errorf("keycloak: token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.http.Do(req)
	if err != nil {
		return probe.Verdict{}, fmt.Errorf("keycloak: token request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var tok tokenResponse
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return probe.Verdict{}, fmt.Errorf("keycloak: read token response: %w", err)
	}
	// Error bodies are best effort; only a 200 must decode.
	if err := json.Unmarshal(body, &tok); err != nil && resp.StatusCode == http.StatusOK {
		return probe.Verdict{}, fmt.Errorf("keycloak: decode token response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized:
		reason := tok.Error
		if reason == "" {
			reason = http.StatusText(resp.StatusCode)
		}
		return probe.Fail(fmt.Sprintf("Token request rejected: %s.", reason)), nil
	case resp.StatusCode != http.StatusOK:
		return probe.Verdict{}, fmt.Errorf("keycloak: token endpoint status %d", resp.StatusCode)
	case tok.AccessToken == "":
		return probe.Verdict{}, errors.New("keycloak: token response has no access_token")
	}

	token, err := jwt.Parse(tok.AccessToken, client.keys.Keyfunc(ctx),
		jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"}),
		jwt.WithIssuer(client.issuer),
		jwt.WithExpirationRequired(),
	)
	if errors.Is(err, ErrKeySetUnavailable) {
		return probe.Verdict{}, err
	}
	if err != nil {
		return probe.Fail("Access token failed verification.").WithDetails(map[string]any{"reason": err.Error()}), nil
	}

	kid, _ := token.Header["kid"].(string)
	return probe.Pass().WithDetails(map[string]any{
		"expires_in": tok.ExpiresIn,
		"kid":        kid,
	}), nil
}
