package services

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const tokenExpiryLayout = "2006-01-02T15:04:05.000000Z"

// TokenFile is the authorized-user credential JSON shared with Google's client
// libraries: an access token plus what is needed to refresh it.
type TokenFile struct {
	Token          string   `json:"token"`
	RefreshToken   string   `json:"refresh_token"`
	TokenURI       string   `json:"token_uri"`
	ClientID       string   `json:"client_id"`
	ClientSecret   string   `json:"client_secret"`
	Scopes         []string `json:"scopes"`
	UniverseDomain string   `json:"universe_domain,omitempty"`
	Account        string   `json:"account"`
	Expiry         string   `json:"expiry,omitempty"`
}

// LoadTokenFile reads a token file. A missing file yields an error matching fs.ErrNotExist.
func LoadTokenFile(path string) (*TokenFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var tf TokenFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("failed to decode token file %s: %w", path, err)
	}

	return &tf, nil
}

// SaveTokenFile writes tf with owner-only permissions.
func SaveTokenFile(path string, tf *TokenFile) error {
	data, err := json.MarshalIndent(tf, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token file: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return nil
}

// NewTokenFile captures an OAuth client config and a token obtained through it.
func NewTokenFile(cfg *oauth2.Config, tok *oauth2.Token) *TokenFile {
	tf := &TokenFile{
		TokenURI:       cfg.Endpoint.TokenURL,
		ClientID:       cfg.ClientID,
		ClientSecret:   cfg.ClientSecret,
		Scopes:         cfg.Scopes,
		UniverseDomain: "googleapis.com",
	}
	tf.SetToken(tok)
	return tf
}

// SetToken replaces the stored access token, keeping the old refresh token
// when the new one carries none.
func (tf *TokenFile) SetToken(tok *oauth2.Token) {
	tf.Token = tok.AccessToken
	if tok.RefreshToken != "" {
		tf.RefreshToken = tok.RefreshToken
	}
	tf.Expiry = ""
	if !tok.Expiry.IsZero() {
		tf.Expiry = tok.Expiry.UTC().Format(tokenExpiryLayout)
	}
}

func (tf *TokenFile) OAuthConfig() *oauth2.Config {
	tokenURL := strings.TrimSpace(tf.TokenURI)
	if tokenURL == "" {
		tokenURL = google.Endpoint.TokenURL
	}

	return &oauth2.Config{
		ClientID:     tf.ClientID,
		ClientSecret: tf.ClientSecret,
		Scopes:       tf.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  google.Endpoint.AuthURL,
			TokenURL: tokenURL,
		},
	}
}

func (tf *TokenFile) OAuthToken() (*oauth2.Token, error) {
	tok := &oauth2.Token{
		AccessToken:  tf.Token,
		RefreshToken: tf.RefreshToken,
		TokenType:    "Bearer",
	}

	if tf.Expiry != "" {
		expiry, err := time.Parse(time.RFC3339Nano, tf.Expiry)
		if err != nil {
			return nil, fmt.Errorf("invalid token expiry %q: %w", tf.Expiry, err)
		}
		tok.Expiry = expiry
	}

	return tok, nil
}
