package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ordinate-io/sequencer/internal/client"
)

func TestLayoutClient_RegisterNode_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sequencers", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "message": "ok"})
	}))
	defer srv.Close()

	c := client.NewLayoutClient(srv.URL, zap.NewNop())
	err := c.RegisterNode(context.Background(), "seq-1", "127.0.0.1", 9090, 100_000)
	require.NoError(t, err)
}

func TestLayoutClient_RegisterNode_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer srv.Close()

	c := client.NewLayoutClient(srv.URL, zap.NewNop())
	err := c.RegisterNode(context.Background(), "seq-1", "127.0.0.1", 9090, 100_000)
	require.Error(t, err)
}

func TestLayoutClient_RegisterWithRetry_EventuallySucceeds(t *testing.T) {
	var attempts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	}))
	defer srv.Close()

	c := client.NewLayoutClient(srv.URL, zap.NewNop())
	err := c.RegisterWithRetry(context.Background(), "seq-1", "127.0.0.1", 9090, 100_000, 5, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestLayoutClient_RegisterWithRetry_ExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := client.NewLayoutClient(srv.URL, zap.NewNop())
	err := c.RegisterWithRetry(context.Background(), "seq-1", "127.0.0.1", 9090, 100_000, 2, time.Millisecond)
	require.Error(t, err)
}
