package enrich

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAIClientEnrich(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/enrich", r.URL.Path)

		var req enrichRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "Get-Process", req.Command)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"description":  "Gets the processes running on the local computer.",
			"howTo":        "Run Get-Process with no arguments.",
			"parameters":   []map[string]string{{"name": "Name", "type": "string[]"}},
			"examples":     []string{"Get-Process -Name pwsh"},
			"sampleOutput": "Handles  NPM(K)  PM(K) ...",
			"flags":        []string{"ReadOnly"},
			"sourceUrls":   []string{"https://learn.microsoft.com/powershell/get-process"},
		})
	}))
	defer srv.Close()

	client := NewAIClient(srv.URL, "test-key", 5*time.Second)

	card, err := client.Enrich(context.Background(), "Get-Process")
	require.NoError(t, err)
	require.Equal(t, "Get-Process", card.Name)
	require.Equal(t, "Gets the processes running on the local computer.", card.Description)
	require.Equal(t, "Run Get-Process with no arguments.", card.HowTo)
	require.NotEmpty(t, card.Parameters)
	require.False(t, card.EnrichedAt.IsZero())
}

func TestAIClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewAIClient(srv.URL, "", 5*time.Second)

	_, err := client.Enrich(context.Background(), "Get-Process")
	require.Error(t, err)
}

func TestAIClientRejectsEmptyDescription(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"howTo": "no description here"}`))
	}))
	defer srv.Close()

	client := NewAIClient(srv.URL, "", 5*time.Second)

	_, err := client.Enrich(context.Background(), "Get-Process")
	require.Error(t, err)
	require.Contains(t, err.Error(), "no description")
}

func TestAIClientHonorsContextDeadline(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	client := NewAIClient(srv.URL, "", time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.Enrich(ctx, "Get-Process")
	require.Error(t, err)
	require.Less(t, time.Since(start), 5*time.Second)
}
