package bc

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCredentials() Credentials {
	return Credentials{
		TenantID:     "tenant-guid",
		ClientID:     "client-id",
		ClientSecret: "secret",
		Environment:  "production",
	}
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(testCredentials(), "company-guid", Config{
		IdentityBaseURL: srv.URL,
		APIBaseURL:      srv.URL,
	})
	return client, srv
}

func writeToken(w http.ResponseWriter, token string, expiresIn int) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"access_token":%q,"expires_in":%d}`, token, expiresIn)
}

func TestGetAccessTokenCachesUntilExpiry(t *testing.T) {
	exchanges := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/tenant-guid/oauth2/v2.0/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.Form.Get("grant_type"))
		assert.Equal(t, "client-id", r.Form.Get("client_id"))
		assert.Equal(t, "secret", r.Form.Get("client_secret"))
		exchanges++
		writeToken(w, fmt.Sprintf("tok-%d", exchanges), 3600)
	})

	client, _ := newTestClient(t, mux)

	tok1, err := client.getAccessToken(context.Background())
	require.NoError(t, err)
	tok2, err := client.getAccessToken(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "tok-1", tok1)
	assert.Equal(t, tok1, tok2)
	assert.Equal(t, 1, exchanges, "second call must reuse the cached token")
}

func TestGetAccessTokenRefreshesInsideExpiryMargin(t *testing.T) {
	exchanges := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/tenant-guid/oauth2/v2.0/token", func(w http.ResponseWriter, r *http.Request) {
		exchanges++
		// Lifetime shorter than the safety margin, so every call refreshes
		writeToken(w, fmt.Sprintf("tok-%d", exchanges), 30)
	})

	client, _ := newTestClient(t, mux)

	_, err := client.getAccessToken(context.Background())
	require.NoError(t, err)
	tok, err := client.getAccessToken(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "tok-2", tok)
	assert.Equal(t, 2, exchanges)
}

func TestGetAccessTokenMissingCredentials(t *testing.T) {
	client := NewClient(Credentials{TenantID: "t"}, "company-guid", Config{})

	_, err := client.getAccessToken(context.Background())
	assert.ErrorIs(t, err, ErrAuthConfig)
}

func TestGetAccessTokenExchangeRejected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/tenant-guid/oauth2/v2.0/token", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"invalid_client"}`)
	})

	client, _ := newTestClient(t, mux)

	_, err := client.getAccessToken(context.Background())
	var exchangeErr *AuthExchangeError
	require.ErrorAs(t, err, &exchangeErr)
	assert.Equal(t, http.StatusUnauthorized, exchangeErr.Status)
}

func TestRemoteCallErrorParsesODataEnvelope(t *testing.T) {
	e := newRemoteCallError(400, []byte(`{"error":{"code":"BadRequest_InvalidToken","message":"The posting date is not valid"}}`))

	assert.Equal(t, 400, e.Status)
	assert.Equal(t, "BadRequest_InvalidToken", e.Code)
	assert.Equal(t, "The posting date is not valid", e.Message)
	assert.Contains(t, e.Error(), "BadRequest_InvalidToken")
}

func TestRemoteCallErrorPlainBody(t *testing.T) {
	e := newRemoteCallError(502, []byte("bad gateway"))

	assert.Equal(t, 502, e.Status)
	assert.Empty(t, e.Code)
	assert.Contains(t, e.Error(), "bad gateway")
}
