package tesla

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Token is the credential pair issued by the auth service. RefreshToken is
// empty when the service did not rotate it.
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// Exchange trades a refresh token for a new access token using the OAuth2
// refresh_token grant.
func Exchange(ctx context.Context, config Config, refreshToken string) (*Token, error) {
	config = config.withDefaults()
	if refreshToken == "" {
		return nil, fmt.Errorf("refresh token is empty")
	}

	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("client_id", config.ClientID)
	data.Set("refresh_token", refreshToken)
	data.Set("scope", "openid email offline_access")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, config.AuthHost+"/oauth2/v3/token", strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", UserAgent)

	// the exchange must not carry a stale bearer token
	httpClient := &http.Client{Timeout: config.Timeout}
	log.Debugf("exchanging refresh token at %s", config.AuthHost)
	res, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("refresh token request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, getError(res)
	}

	var token Token
	if err := json.NewDecoder(res.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("token response carries no access token")
	}
	return &token, nil
}
