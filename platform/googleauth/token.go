// Package googleauth mints Google API access tokens from service account
// credentials using the OAuth 2.0 JWT bearer grant.
// This is part of the platform layer and contains no business logic.
package googleauth

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"
)

// Scopes used by this application.
const (
	ScopeSpreadsheets = "https://www.googleapis.com/auth/spreadsheets"
	ScopeCalendar     = "https://www.googleapis.com/auth/calendar"
)

const (
	defaultTokenURI = "https://oauth2.googleapis.com/token"
	jwtBearerGrant  = "urn:ietf:params:oauth:grant-type:jwt-bearer"

	assertionLifetime = time.Hour
	// refreshSlack forces a refresh shortly before the token expires.
	refreshSlack = time.Minute
)

// Credentials holds the fields of a service account key file that the
// token exchange needs.
type Credentials struct {
	ClientEmail  string `json:"client_email"`
	PrivateKey   string `json:"private_key"`
	PrivateKeyID string `json:"private_key_id"`
	TokenURI     string `json:"token_uri"`
}

// ParseCredentials decodes a service account JSON key.
func ParseCredentials(data string) (*Credentials, error) {
	var creds Credentials
	if err := json.Unmarshal([]byte(data), &creds); err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}
	if creds.ClientEmail == "" || creds.PrivateKey == "" {
		return nil, fmt.Errorf("service account credentials missing client_email or private_key")
	}
	if creds.TokenURI == "" {
		creds.TokenURI = defaultTokenURI
	}
	return &creds, nil
}

// TokenSource exchanges a signed service account assertion for a bearer
// token and caches it until shortly before expiry. Concurrent refreshes
// collapse into a single exchange.
type TokenSource struct {
	creds      *Credentials
	scopes     []string
	signingKey *rsa.PrivateKey
	httpClient *http.Client

	group singleflight.Group

	mu     sync.Mutex
	token  string
	expiry time.Time
}

// NewTokenSource builds a TokenSource for the given credentials JSON and
// scopes.
func NewTokenSource(credsJSON string, scopes ...string) (*TokenSource, error) {
	creds, err := ParseCredentials(credsJSON)
	if err != nil {
		return nil, err
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(creds.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("parse service account private key: %w", err)
	}

	return &TokenSource{
		creds:      creds,
		scopes:     scopes,
		signingKey: key,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// Token returns a valid access token, refreshing it when the cached one
// is missing or about to expire.
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	if ts.token != "" && time.Until(ts.expiry) > refreshSlack {
		token := ts.token
		ts.mu.Unlock()
		return token, nil
	}
	ts.mu.Unlock()

	result, err, _ := ts.group.Do("token", func() (interface{}, error) {
		ts.mu.Lock()
		if ts.token != "" && time.Until(ts.expiry) > refreshSlack {
			token := ts.token
			ts.mu.Unlock()
			return token, nil
		}
		ts.mu.Unlock()

		token, expiry, err := ts.exchange(ctx)
		if err != nil {
			return nil, err
		}

		ts.mu.Lock()
		ts.token = token
		ts.expiry = expiry
		ts.mu.Unlock()

		return token, nil
	})
	if err != nil {
		return "", err
	}

	return result.(string), nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

func (ts *TokenSource) exchange(ctx context.Context) (string, time.Time, error) {
	assertion, err := ts.signAssertion()
	if err != nil {
		return "", time.Time{}, err
	}

	form := url.Values{}
	form.Set("grant_type", jwtBearerGrant)
	form.Set("assertion", assertion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.creds.TokenURI, strings.NewReader(form.Encode()))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ts.httpClient.Do(req)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("token exchange request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", time.Time{}, fmt.Errorf("token exchange failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", time.Time{}, fmt.Errorf("decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", time.Time{}, fmt.Errorf("token response contained no access token")
	}

	return tr.AccessToken, time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second), nil
}

func (ts *TokenSource) signAssertion() (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   ts.creds.ClientEmail,
		"scope": strings.Join(ts.scopes, " "),
		"aud":   ts.creds.TokenURI,
		"iat":   now.Unix(),
		"exp":   now.Add(assertionLifetime).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if ts.creds.PrivateKeyID != "" {
		token.Header["kid"] = ts.creds.PrivateKeyID
	}

	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign service account assertion: %w", err)
	}
	return signed, nil
}
