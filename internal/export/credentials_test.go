package export

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"
)

const testClientSecrets = `{"installed":{
	"client_id":"client-1.apps.googleusercontent.com",
	"client_secret":"s3cret",
	"auth_uri":"https://accounts.google.com/o/oauth2/auth",
	"token_uri":"https://oauth2.googleapis.com/token",
	"redirect_uris":["http://localhost"]
}}`

func TestOAuthConfig(t *testing.T) {
	cfg, err := OAuthConfig([]byte(testClientSecrets), "http://localhost:8085/callback")
	if err != nil {
		t.Fatalf("OAuthConfig: %v", err)
	}
	if cfg.ClientID != "client-1.apps.googleusercontent.com" {
		t.Errorf("ClientID = %q", cfg.ClientID)
	}
	if cfg.RedirectURL != "http://localhost:8085/callback" {
		t.Errorf("RedirectURL = %q", cfg.RedirectURL)
	}
	if len(cfg.Scopes) != 1 || cfg.Scopes[0] != sheets.SpreadsheetsScope {
		t.Errorf("Scopes = %v", cfg.Scopes)
	}

	if _, err := OAuthConfig([]byte("{"), ""); err == nil {
		t.Error("expected error for malformed client secrets")
	}
}

func TestAuthorizedUserJSON(t *testing.T) {
	cfg, err := OAuthConfig([]byte(testClientSecrets), "")
	if err != nil {
		t.Fatalf("OAuthConfig: %v", err)
	}

	b, err := AuthorizedUserJSON(cfg, &oauth2.Token{AccessToken: "a", RefreshToken: "r-1"})
	if err != nil {
		t.Fatalf("AuthorizedUserJSON: %v", err)
	}

	var got map[string]string
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["type"] != "authorized_user" || got["refresh_token"] != "r-1" || got["client_secret"] != "s3cret" {
		t.Errorf("unexpected credentials: %v", got)
	}
	if strings.Contains(string(b), `"a"`) {
		t.Error("access token must not be persisted")
	}

	if _, err := google.CredentialsFromJSON(context.Background(), b, sheets.SpreadsheetsScope); err != nil {
		t.Errorf("credentials not loadable: %v", err)
	}
}

func TestAuthorizedUserJSONRequiresRefreshToken(t *testing.T) {
	cfg := &oauth2.Config{ClientID: "c"}
	if _, err := AuthorizedUserJSON(cfg, &oauth2.Token{AccessToken: "a"}); err == nil {
		t.Error("expected error without refresh token")
	}
	if _, err := AuthorizedUserJSON(cfg, nil); err == nil {
		t.Error("expected error for nil token")
	}
}
