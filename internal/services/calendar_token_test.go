package services

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

func TestTokenFile_RoundTrip(t *testing.T) {
	cfg := &oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Scopes:       []string{"https://www.googleapis.com/auth/calendar"},
		Endpoint:     google.Endpoint,
	}
	expiry := time.Date(2025, 9, 15, 10, 0, 0, 123456000, time.UTC)
	tok := &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", Expiry: expiry}

	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, SaveTokenFile(path, NewTokenFile(cfg, tok)))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadTokenFile(path)
	require.NoError(t, err)
	assert.Equal(t, "2025-09-15T10:00:00.123456Z", loaded.Expiry)
	assert.Equal(t, google.Endpoint.TokenURL, loaded.TokenURI)

	restored, err := loaded.OAuthToken()
	require.NoError(t, err)
	assert.Equal(t, "access", restored.AccessToken)
	assert.Equal(t, "refresh", restored.RefreshToken)
	assert.True(t, expiry.Equal(restored.Expiry))

	oauthCfg := loaded.OAuthConfig()
	assert.Equal(t, cfg.ClientID, oauthCfg.ClientID)
	assert.Equal(t, cfg.Scopes, oauthCfg.Scopes)
}

func TestTokenFile_PythonFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"token": "ya29.a0",
		"refresh_token": "1//0g",
		"token_uri": "https://oauth2.googleapis.com/token",
		"client_id": "id.apps.googleusercontent.com",
		"client_secret": "secret",
		"scopes": ["https://www.googleapis.com/auth/calendar"],
		"universe_domain": "googleapis.com",
		"account": "",
		"expiry": "2025-09-15T10:00:00.000000Z"
	}`), 0600))

	tf, err := LoadTokenFile(path)
	require.NoError(t, err)

	tok, err := tf.OAuthToken()
	require.NoError(t, err)
	assert.Equal(t, "ya29.a0", tok.AccessToken)
	assert.Equal(t, time.Date(2025, 9, 15, 10, 0, 0, 0, time.UTC), tok.Expiry)
}

func TestTokenFile_SetTokenKeepsRefreshToken(t *testing.T) {
	tf := &TokenFile{Token: "old", RefreshToken: "keep"}

	tf.SetToken(&oauth2.Token{AccessToken: "new"})

	assert.Equal(t, "new", tf.Token)
	assert.Equal(t, "keep", tf.RefreshToken)
	assert.Empty(t, tf.Expiry)
}

func TestLoadTokenFile_Missing(t *testing.T) {
	_, err := LoadTokenFile(filepath.Join(t.TempDir(), "nope.json"))

	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestOAuthConfig_DefaultTokenURL(t *testing.T) {
	assert.Equal(t, google.Endpoint.TokenURL, (&TokenFile{}).OAuthConfig().Endpoint.TokenURL)
}
