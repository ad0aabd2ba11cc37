package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newStubAPI(t *testing.T, authorized bool) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		if !authorized {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{"message": "Bad credentials"})
			return
		}

		json.NewEncoder(w).Encode(map[string]any{"login": "octocat"})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server
}

func TestGatewayConnect(t *testing.T) {
	server := newStubAPI(t, true)
	gateway := NewGateway(WithBaseURL(server.URL))

	require.NoError(t, gateway.Connect(context.Background(), "token-a"))
	require.Equal(t, 1, gateway.connected())

	// Reconnecting with the same token reuses the held client.
	require.NoError(t, gateway.Connect(context.Background(), "token-a"))
	require.Equal(t, 1, gateway.connected())

	require.NoError(t, gateway.Connect(context.Background(), "token-b"))
	require.Equal(t, 2, gateway.connected())
}

func TestGatewayConnectRejectsBadCredential(t *testing.T) {
	server := newStubAPI(t, false)
	gateway := NewGateway(WithBaseURL(server.URL))

	err := gateway.Connect(context.Background(), "bad-token")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid or expired")
	require.Equal(t, 0, gateway.connected())
}

func TestGatewayConnectRequiresToken(t *testing.T) {
	gateway := NewGateway()

	err := gateway.Connect(context.Background(), "")
	require.ErrorIs(t, err, ErrMissingCredential)
}

func TestGatewayClientFallsBackToMostRecent(t *testing.T) {
	server := newStubAPI(t, true)
	gateway := NewGateway(WithBaseURL(server.URL))

	require.NoError(t, gateway.Connect(context.Background(), "token-a"))
	require.NoError(t, gateway.Connect(context.Background(), "token-b"))

	exact, err := gateway.Client("token-a")
	require.NoError(t, err)
	require.NotNil(t, exact)

	// Unknown tokens fall back to the most recently connected client.
	fallback, err := gateway.Client("never-connected")
	require.NoError(t, err)
	require.NotNil(t, fallback)

	recent, err := gateway.Client("token-b")
	require.NoError(t, err)
	require.Same(t, recent, fallback)
}

func TestGatewayDisconnectDropsEverything(t *testing.T) {
	server := newStubAPI(t, true)
	gateway := NewGateway(WithBaseURL(server.URL))

	require.NoError(t, gateway.Connect(context.Background(), "token-a"))
	gateway.Disconnect()

	require.Equal(t, 0, gateway.connected())

	_, err := gateway.Client("token-a")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not connected")
}
