package tools

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	gh "github.com/theapemachine/ghops/pkg/github"
)

/*
The dispatch ref falls back to the literal "main" when absent. It does not
resolve the repository's actual default branch, so repositories with a
different default branch get a dispatch against a ref that may not exist.
*/
func TestTriggerWorkflowDefaultsRefToLiteralMain(t *testing.T) {
	var captured map[string]any

	server := stubUpstream(t, map[string]http.HandlerFunc{
		"/repos/user/demo/actions/workflows/ci.yml/dispatches": func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			w.WriteHeader(http.StatusNoContent)
		},
	})

	tool := NewActionsTool(gh.NewGateway(gh.WithBaseURL(server.URL)))
	res := callTool(t, tool, map[string]any{
		"operation":   "trigger_workflow",
		"owner":       "user",
		"repo":        "demo",
		"workflow_id": "ci.yml",
		"token":       "test-token",
	})

	require.False(t, res.IsError)
	require.Equal(t, "main", captured["ref"])

	segments := textSegments(t, res)
	require.Contains(t, segments[0], "trigger_workflow operation completed successfully")

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(segments[1]), &payload))
	require.Equal(t, "workflow dispatched", payload["status"])
	require.Equal(t, "main", payload["ref"])
}

func TestTriggerWorkflowPassesExplicitRefAndInputs(t *testing.T) {
	var captured map[string]any

	server := stubUpstream(t, map[string]http.HandlerFunc{
		"/repos/user/demo/actions/workflows/42/dispatches": func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			w.WriteHeader(http.StatusNoContent)
		},
	})

	tool := NewActionsTool(gh.NewGateway(gh.WithBaseURL(server.URL)))
	res := callTool(t, tool, map[string]any{
		"operation":   "trigger_workflow",
		"owner":       "user",
		"repo":        "demo",
		"workflow_id": float64(42),
		"ref":         "release",
		"inputs":      map[string]any{"environment": "staging"},
		"token":       "test-token",
	})

	require.False(t, res.IsError)
	require.Equal(t, "release", captured["ref"])

	inputs, ok := captured["inputs"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "staging", inputs["environment"])
}

func TestCancelRunAcceptsQueuedResponse(t *testing.T) {
	server := stubUpstream(t, map[string]http.HandlerFunc{
		"/repos/user/demo/actions/runs/77/cancel": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusAccepted)
			json.NewEncoder(w).Encode(map[string]any{})
		},
	})

	tool := NewActionsTool(gh.NewGateway(gh.WithBaseURL(server.URL)))
	res := callTool(t, tool, map[string]any{
		"operation": "cancel_run",
		"owner":     "user",
		"repo":      "demo",
		"run_id":    float64(77),
		"token":     "test-token",
	})

	require.False(t, res.IsError)

	segments := textSegments(t, res)
	require.Contains(t, segments[0], "cancel_run operation completed successfully")

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(segments[1]), &payload))
	require.Equal(t, "cancellation requested", payload["status"])
	require.Equal(t, "77", payload["run_id"])
}
