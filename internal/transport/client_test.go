package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rbxsync/rbxsync/pkg/errors"
)

func TestDoSetsAuthAndDefaultHeaders(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New("secret-key")
	req, err := client.NewRequest(context.Background(), http.MethodPost, server.URL, nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	require.NoError(t, DecodeResponse(resp, nil))

	assert.Equal(t, "secret-key", got.Get(APIKeyHeader))
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Equal(t, "application/json", got.Get("Content-Type"))
}

func TestDoPreservesExplicitContentType(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New("secret-key")
	req, err := client.NewRequest(context.Background(), http.MethodPost, server.URL, nil)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/octet-stream")
	resp, err := client.Do(req)
	require.NoError(t, err)
	require.NoError(t, DecodeResponse(resp, nil))

	assert.Equal(t, "application/octet-stream", got)
}

func TestDecodeResponseSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"name":"VIP"}`))
	}))
	defer server.Close()

	resp, err := New("").Get(context.Background(), server.URL)
	require.NoError(t, err)

	var payload struct {
		Name string `json:"name"`
	}
	require.NoError(t, DecodeResponse(resp, &payload))
	assert.Equal(t, "VIP", payload.Name)
}

func TestDecodeResponseEmptyBodyIntoTarget(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	resp, err := New("").Get(context.Background(), server.URL)
	require.NoError(t, err)

	var payload struct{}
	assert.NoError(t, DecodeResponse(resp, &payload))
}

func TestDecodeResponseErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	}))
	defer server.Close()

	resp, err := New("").Get(context.Background(), server.URL)
	require.NoError(t, err)

	err = DecodeResponse(resp, nil)
	require.Error(t, err)

	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, "slow down", apiErr.Message)
	assert.True(t, errors.IsRateLimited(err))
}

func TestDecodeResponseMalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"name":`))
	}))
	defer server.Close()

	resp, err := New("").Get(context.Background(), server.URL)
	require.NoError(t, err)

	var payload struct{}
	err = DecodeResponse(resp, &payload)
	require.Error(t, err)

	var parseErr *errors.ParseError
	assert.ErrorAs(t, err, &parseErr)
}
