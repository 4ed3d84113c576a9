package util

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, ContentTypeJSON, r.Header.Get("Accept"))
		w.Header().Set("X-Trace", "abc")
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))
	defer srv.Close()

	c := NewHttpClient("secret", 5*time.Second)
	body, header, err := c.SendRequest(context.Background(), http.MethodGet, srv.URL,
		map[string]string{"Accept": ContentTypeJSON}, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(body))
	assert.Equal(t, "abc", header.Get("X-Trace"))
}

func TestSendRequestStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "  upstream down \n")
	}))
	defer srv.Close()

	_, _, err := NewHttpClient("", time.Second).SendRequest(context.Background(), http.MethodPost, srv.URL, nil, nil, 0)
	wrapped := errors.Wrap(err, "call upstream")

	var se *StatusError
	require.True(t, errors.As(wrapped, &se))
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)
	assert.Equal(t, "upstream down", se.Body)
	assert.Equal(t, http.StatusBadGateway, StatusCode(wrapped))
	assert.Zero(t, StatusCode(errors.New("plain")))
}

func TestSendRequestNoTokenHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
	}))
	defer srv.Close()

	_, _, err := NewHttpClient("", time.Second).SendRequest(context.Background(), http.MethodGet, srv.URL, nil, nil, 0)
	require.NoError(t, err)
}

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad" {
			_, _ = io.WriteString(w, "<html>")
			return
		}
		_, _ = io.WriteString(w, `{"name":"Ada"}`)
	}))
	defer srv.Close()

	c := NewHttpClient("", time.Second)
	var out struct {
		Name string `json:"name"`
	}
	_, err := c.GetJSON(context.Background(), srv.URL+"/ok", &out)
	require.NoError(t, err)
	assert.Equal(t, "Ada", out.Name)

	_, err = c.GetJSON(context.Background(), srv.URL+"/bad", &out)
	assert.Error(t, err)
	assert.Zero(t, StatusCode(err))
}

func TestSendRequestHidesQueryString(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, "0123456789")
	}))
	c := NewHttpClient("", time.Second)
	ctx := context.Background()

	_, _, err := c.SendRequest(ctx, http.MethodGet, srv.URL+"/missing?verifier=secret", nil, nil, 0)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, srv.URL+"/missing", se.URL)
	assert.NotContains(t, err.Error(), "secret")

	_, _, err = c.SendRequest(ctx, http.MethodGet, srv.URL+"/big?verifier=secret", nil, nil, 4)
	assert.True(t, errors.Is(err, ErrResponseTooLarge), "got %v", err)
	assert.NotContains(t, err.Error(), "secret")

	closedURL := srv.URL
	srv.Close()
	_, _, err = c.SendRequest(ctx, http.MethodGet, closedURL+"/files/1/download?verifier=secret", nil, nil, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/files/1/download")
	assert.NotContains(t, err.Error(), "secret")
}

func TestSendRequestSizeCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "0123")
	}))
	defer srv.Close()

	body, _, err := NewHttpClient("", time.Second).SendRequest(context.Background(), http.MethodGet, srv.URL, nil, nil, 4)
	require.NoError(t, err)
	assert.Equal(t, "0123", string(body))
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "https://canvas.example.edu/files/9/download",
		redactURL("https://user:pw@canvas.example.edu/files/9/download?download_frd=1&verifier=abc#page"))
	assert.Equal(t, "<invalid url>", redactURL("http://[::1"))
}
