package tools

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	gh "github.com/theapemachine/ghops/pkg/github"
)

func TestReleaseGetByID(t *testing.T) {
	server := stubUpstream(t, map[string]http.HandlerFunc{
		"/repos/user/demo/releases/9": func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"id": 9, "tag_name": "v1.2.0"})
		},
	})

	tool := NewReleaseTool(gh.NewGateway(gh.WithBaseURL(server.URL)))
	res := callTool(t, tool, map[string]any{
		"operation":  "get",
		"owner":      "user",
		"repo":       "demo",
		"release_id": float64(9),
		"token":      "test-token",
	})

	require.False(t, res.IsError)
	require.Contains(t, textSegments(t, res)[1], "v1.2.0")
}

func TestReleaseGetByTag(t *testing.T) {
	server := stubUpstream(t, map[string]http.HandlerFunc{
		"/repos/user/demo/releases/tags/v1.2.0": func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"id": 9, "tag_name": "v1.2.0"})
		},
	})

	tool := NewReleaseTool(gh.NewGateway(gh.WithBaseURL(server.URL)))
	res := callTool(t, tool, map[string]any{
		"operation": "get",
		"owner":     "user",
		"repo":      "demo",
		"tag_name":  "v1.2.0",
		"token":     "test-token",
	})

	require.False(t, res.IsError)

	segments := textSegments(t, res)
	require.Contains(t, segments[0], "get operation completed successfully")
	require.Contains(t, segments[1], "v1.2.0")
}

func TestReleaseCreate(t *testing.T) {
	var captured map[string]any

	server := stubUpstream(t, map[string]http.HandlerFunc{
		"/repos/user/demo/releases": func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]any{"id": 10, "tag_name": "v2.0.0"})
		},
	})

	tool := NewReleaseTool(gh.NewGateway(gh.WithBaseURL(server.URL)))
	res := callTool(t, tool, map[string]any{
		"operation":  "create",
		"owner":      "user",
		"repo":       "demo",
		"tag_name":   "v2.0.0",
		"name":       "Version 2",
		"prerelease": true,
		"token":      "test-token",
	})

	require.False(t, res.IsError)
	require.Equal(t, "v2.0.0", captured["tag_name"])
	require.Equal(t, "Version 2", captured["name"])
	require.Equal(t, true, captured["prerelease"])
}
