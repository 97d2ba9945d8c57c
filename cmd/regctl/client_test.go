package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient(t *testing.T) {
	var lastAuth, lastPath, lastMethod string
	var lastBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastAuth = r.Header.Get("Authorization")
		lastPath = r.URL.Path
		lastMethod = r.Method
		lastBody = nil
		_ = json.NewDecoder(r.Body).Decode(&lastBody)

		switch {
		case r.URL.Path == "/identities/ghost":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"not_found","error_description":"identity not found"}`))
		case r.Method == http.MethodPut:
			w.WriteHeader(http.StatusNoContent)
		default:
			_, _ = w.Write([]byte(`{"status":"verified"}`))
		}
	}))
	defer srv.Close()

	var out bytes.Buffer
	c := NewClient(srv.URL+"/", "tok", &out)
	ctx := context.Background()

	t.Run("verify sends proof with bearer", func(t *testing.T) {
		require.NoError(t, c.Verify(ctx, "alice", "0xabc"))
		assert.Equal(t, "Bearer tok", lastAuth)
		assert.Equal(t, http.MethodPost, lastMethod)
		assert.Equal(t, "/identities/alice/verify", lastPath)
		assert.Equal(t, "0xabc", lastBody["proof_hash"])
		assert.Contains(t, out.String(), `"verified"`)
	})

	t.Run("no content prints ok", func(t *testing.T) {
		out.Reset()
		require.NoError(t, c.AddVerifier(ctx, "v1"))
		assert.Equal(t, "/verifiers/v1", lastPath)
		assert.Contains(t, out.String(), `"ok":true`)
	})

	t.Run("error envelope becomes APIError", func(t *testing.T) {
		err := c.Identity(ctx, "ghost")
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusNotFound, apiErr.Status)
		assert.Equal(t, "not_found", apiErr.Code)
	})

	t.Run("mutations require a token", func(t *testing.T) {
		anon := NewClient(srv.URL, "", &out)
		require.Error(t, anon.RemoveVerifier(ctx, "v1"))
	})
}
