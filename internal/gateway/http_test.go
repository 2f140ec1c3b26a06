package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpetrov/chipsync/internal/payout"
)

const testJWTSecret = "test-secret"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	gw, adminSvc := newTestGateway(t)
	router := NewRouter(gw, adminSvc, payout.NewEngine(payout.DefaultTable()), testJWTSecret, zerolog.Nop())

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func signToken(t *testing.T, userID int64, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": userID})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestHTTP_Health(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// TestHTTP_Sync tests the sync endpoint end to end: a get_data for a fresh
// user returns the prefixed snapshot
func TestHTTP_Sync(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Post(server.URL+"/v1/sync/42", "application/json",
		strings.NewReader(`{"action":"get_data"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body syncHTTPResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, strings.HasPrefix(body.Message, DataMessagePrefix))
	assert.Contains(t, body.Message, `"balance":10000`)
	assert.Empty(t, body.Notification)
}

// TestHTTP_Sync_NoOp tests that an unknown action yields 204 and no body
func TestHTTP_Sync_NoOp(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Post(server.URL+"/v1/sync/42", "application/json",
		strings.NewReader(`{"action":"noop_test"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestHTTP_Sync_BadUserID(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Post(server.URL+"/v1/sync/not-a-number", "application/json",
		strings.NewReader(`{"action":"get_data"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// TestHTTP_Evaluate tests server-side payout evaluation over HTTP
func TestHTTP_Evaluate(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Post(server.URL+"/v1/payout/evaluate", "application/json",
		strings.NewReader(`{"symbols":["💎","💎","💎"]}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body evaluateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "5", body.Multiplier)
}

func TestHTTP_Evaluate_WrongLength(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Post(server.URL+"/v1/payout/evaluate", "application/json",
		strings.NewReader(`{"symbols":["💎","💎"]}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// TestHTTP_AdminReset tests the JWT guard: the admin's token succeeds, a
// non-admin's token is forbidden, garbage is unauthorized
func TestHTTP_AdminReset(t *testing.T) {
	server := newTestServer(t)

	// Seed an account through the sync endpoint
	resp, err := http.Post(server.URL+"/v1/sync/1", "application/json",
		strings.NewReader(`{"action":"update_balance","balance":500}`))
	require.NoError(t, err)
	resp.Body.Close()

	reset := func(token string) *http.Response {
		req, err := http.NewRequest(http.MethodPost, server.URL+"/v1/admin/reset", nil)
		require.NoError(t, err)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		return resp
	}

	// Admin (user 99 per newTestGateway) resets one account
	resp = reset(signToken(t, 99, testJWTSecret))
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]int
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 1, body["accounts_reset"])

	// Valid token, wrong user
	forbidden := reset(signToken(t, 1, testJWTSecret))
	forbidden.Body.Close()
	assert.Equal(t, http.StatusForbidden, forbidden.StatusCode)

	// Token signed with the wrong secret
	unauthorized := reset(signToken(t, 99, "wrong-secret"))
	unauthorized.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, unauthorized.StatusCode)

	// No token at all
	missing := reset("")
	missing.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, missing.StatusCode)
}
