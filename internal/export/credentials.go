package export

import (
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"
)

// OAuthConfig builds the installed-app OAuth config for the Sheets scope
// from a Google client secrets file.
func OAuthConfig(clientJSON []byte, redirectURL string) (*oauth2.Config, error) {
	cfg, err := google.ConfigFromJSON(clientJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}
	cfg.RedirectURL = redirectURL
	return cfg, nil
}

type authorizedUser struct {
	Type         string `json:"type"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RefreshToken string `json:"refresh_token"`
}

// AuthorizedUserJSON encodes a user grant as "authorized_user" credentials,
// a format NewSheetsExporter accepts in place of a service account key.
func AuthorizedUserJSON(cfg *oauth2.Config, tok *oauth2.Token) ([]byte, error) {
	if tok == nil || tok.RefreshToken == "" {
		return nil, errors.New("token has no refresh token; revoke access and authorize again")
	}
	return json.MarshalIndent(authorizedUser{
		Type:         "authorized_user",
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RefreshToken: tok.RefreshToken,
	}, "", "  ")
}
