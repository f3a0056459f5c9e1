// Package oauth wraps the Google OAuth code flow: building the consent
// URL, exchanging the callback code and fetching the user profile.
// Identity proof is fully delegated to Google; the caller only receives
// the verified email and display name.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const defaultUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Profile is the subset of the Google userinfo payload the auth flow
// needs.
type Profile struct {
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Photo         string `json:"picture"`
}

// GoogleClient drives the authorization-code flow against Google.
type GoogleClient struct {
	cfg         *oauth2.Config
	userinfoURL string
}

// NewGoogle builds a client for the given OAuth application.
func NewGoogle(clientID, clientSecret, redirectURL string) *GoogleClient {
	return &GoogleClient{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		userinfoURL: defaultUserinfoURL,
	}
}

// AuthCodeURL returns the consent page URL carrying the given
// anti-forgery state.
func (g *GoogleClient) AuthCodeURL(state string) string {
	return g.cfg.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// FetchProfile exchanges the callback code for a token and loads the
// user profile. Fails when the exchange is rejected or the profile has
// no verified email.
func (g *GoogleClient) FetchProfile(ctx context.Context, code string) (*Profile, error) {
	const op = "oauth.FetchProfile"

	token, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	client := g.cfg.Client(ctx, token)
	resp, err := client.Get(g.userinfoURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%s: unexpected status %s: %s", op, resp.Status, body)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if profile.Email == "" {
		return nil, fmt.Errorf("%s: provider returned no email", op)
	}
	if !profile.VerifiedEmail {
		return nil, fmt.Errorf("%s: provider email is not verified", op)
	}
	return &profile, nil
}
