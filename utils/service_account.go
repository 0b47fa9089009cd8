// utils/service_account.go
package utils

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/pkcs12"
	"golang.org/x/oauth2"
)

const (
	// DefaultTokenURL is the provider's OAuth2 token endpoint.
	DefaultTokenURL = "https://oauth2.googleapis.com/token"

	// jwtBearerGrantType is the grant used to exchange a signed service
	// account assertion for an access token.
	jwtBearerGrantType = "urn:ietf:params:oauth:grant-type:jwt-bearer"

	// assertionLifetime is how long a signed assertion stays valid. The
	// token endpoint rejects anything above one hour.
	assertionLifetime = time.Hour
)

// ServiceAccountConfig holds what is needed to mint access tokens for a
// service account via the JWT-bearer flow.
type ServiceAccountConfig struct {
	ClientEmail string
	PrivateKey  *rsa.PrivateKey
	TokenURL    string // defaults to DefaultTokenURL
	Scopes      []string
}

// tokenResponse represents the JSON structure returned by the token endpoint.
type tokenResponse struct {
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	AccessToken string `json:"access_token"`
}

// ServiceAccountTokenSource returns a caching oauth2.TokenSource that signs a
// fresh assertion whenever the current token expires.
func ServiceAccountTokenSource(cfg *ServiceAccountConfig) (oauth2.TokenSource, error) {
	if cfg.ClientEmail == "" {
		return nil, fmt.Errorf("service account client email is required")
	}
	if cfg.PrivateKey == nil {
		return nil, fmt.Errorf("service account private key is required")
	}
	src := &serviceAccountTokenSource{
		config: cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
	return oauth2.ReuseTokenSource(nil, src), nil
}

type serviceAccountTokenSource struct {
	config *ServiceAccountConfig
	client *http.Client
}

// Token signs a new assertion and exchanges it at the token endpoint.
func (s *serviceAccountTokenSource) Token() (*oauth2.Token, error) {
	assertion, err := s.createAssertion()
	if err != nil {
		return nil, fmt.Errorf("failed to create client assertion: %w", err)
	}

	form := url.Values{}
	form.Set("grant_type", jwtBearerGrantType)
	form.Set("assertion", assertion)

	return s.doTokenRequest(context.Background(), form)
}

// createAssertion signs the JWT-bearer claims with the account's private key.
func (s *serviceAccountTokenSource) createAssertion() (string, error) {
	tokenURL := s.config.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   s.config.ClientEmail,
		"scope": strings.Join(s.config.Scopes, " "),
		"aud":   tokenURL,
		"iat":   now.Unix(),
		"exp":   now.Add(assertionLifetime).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(s.config.PrivateKey)
}

func (s *serviceAccountTokenSource) doTokenRequest(ctx context.Context, form url.Values) (*oauth2.Token, error) {
	tokenURL := s.config.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}

	req, err := http.NewRequestWithContext(ctx, "POST", tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("token request failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}

	return &oauth2.Token{
		AccessToken: tr.AccessToken,
		TokenType:   tr.TokenType,
		Expiry:      time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second),
	}, nil
}

// ParsePrivateKeyPEM reads an RSA private key in PKCS#1 or PKCS#8 PEM form.
func ParsePrivateKeyPEM(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found in private key data")
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("private key is not RSA")
	}
	return key, nil
}

// ParsePrivateKeyP12 reads an RSA private key from a legacy PKCS#12 key file.
// The provider historically issued these protected with the password
// "notasecret"; pass that unless the file was re-wrapped.
func ParsePrivateKeyP12(data []byte, password string) (*rsa.PrivateKey, error) {
	key, _, err := pkcs12.Decode(data, password)
	if err != nil {
		return nil, fmt.Errorf("failed to decode PKCS#12 key file: %w", err)
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("PKCS#12 key file does not contain an RSA key")
	}
	return rsaKey, nil
}
