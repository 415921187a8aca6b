package phantombuster

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLaunch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/agents/launch", r.URL.Path)
		assert.Equal(t, "pb-key", r.Header.Get("X-Phantombuster-Key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "agent-1", body["id"])
		assert.Equal(t, true, body["manualLaunch"])
		bonus := body["bonusArgument"].(map[string]any)
		assert.Equal(t, "linkedInProfileUrl", bonus["columnName"])
		assert.Equal(t, float64(10), bonus["numberOfAddsPerLaunch"])

		_, _ = io.WriteString(w, `{"containerId": "c-42"}`)
	}))
	defer srv.Close()

	c := NewClient("pb-key", WithBaseURL(srv.URL))
	containerID, err := c.Launch(context.Background(), "agent-1", LaunchArgs{
		ColumnName:            "linkedInProfileUrl",
		EmailDiscovery:        true,
		NumberOfAddsPerLaunch: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, "c-42", containerID)
}

func TestAgentStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/agents/fetch", r.URL.Path)
		assert.Equal(t, "agent-1", r.URL.Query().Get("id"))
		_, _ = io.WriteString(w, `{"lastStatus": "running"}`)
	}))
	defer srv.Close()

	c := NewClient("pb-key", WithBaseURL(srv.URL))
	status, err := c.AgentStatus(context.Background(), "agent-1")
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, status)
}

func TestLaunch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error": "bad key"}`)
	}))
	defer srv.Close()

	c := NewClient("bad", WithBaseURL(srv.URL))
	_, err := c.Launch(context.Background(), "agent-1", LaunchArgs{})
	assert.Error(t, err)
}
