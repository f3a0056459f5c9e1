package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTestClient(t *testing.T, userinfoStatus int, userinfoBody string) *GoogleClient {
	t.Helper()

	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"test-access","token_type":"Bearer","expires_in":3600}`))
	}))
	t.Cleanup(tokenSrv.Close)

	userinfoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Authorization"), "test-access") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(userinfoStatus)
		_, _ = w.Write([]byte(userinfoBody))
	}))
	t.Cleanup(userinfoSrv.Close)

	g := NewGoogle("client-id", "client-secret", "http://localhost/callback")
	g.cfg.Endpoint = oauth2.Endpoint{AuthURL: tokenSrv.URL + "/auth", TokenURL: tokenSrv.URL + "/token"}
	g.userinfoURL = userinfoSrv.URL
	return g
}

func TestAuthCodeURL_CarriesState(t *testing.T) {
	g := NewGoogle("client-id", "client-secret", "http://localhost/callback")
	url := g.AuthCodeURL("state-123")
	assert.Contains(t, url, "state=state-123")
	assert.Contains(t, url, "client_id=client-id")
}

func TestFetchProfile(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		g := newTestClient(t, http.StatusOK,
			`{"email":"coach@gmail.com","verified_email":true,"name":"Pep Segura","picture":"https://photo"}`)

		profile, err := g.FetchProfile(context.Background(), "auth-code")
		require.NoError(t, err)
		assert.Equal(t, "coach@gmail.com", profile.Email)
		assert.Equal(t, "Pep Segura", profile.Name)
		assert.Equal(t, "https://photo", profile.Photo)
	})

	t.Run("missing email rejected", func(t *testing.T) {
		g := newTestClient(t, http.StatusOK, `{"name":"No Email","verified_email":true}`)
		_, err := g.FetchProfile(context.Background(), "auth-code")
		assert.Error(t, err)
	})

	t.Run("unverified email rejected", func(t *testing.T) {
		g := newTestClient(t, http.StatusOK,
			`{"email":"coach@gmail.com","verified_email":false,"name":"Pep Segura"}`)
		_, err := g.FetchProfile(context.Background(), "auth-code")
		assert.Error(t, err)
	})

	t.Run("userinfo error surfaces", func(t *testing.T) {
		g := newTestClient(t, http.StatusForbidden, `forbidden`)
		_, err := g.FetchProfile(context.Background(), "auth-code")
		assert.Error(t, err)
	})
}
