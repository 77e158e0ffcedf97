package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_Load(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><body><div id="articletxt">본문</div></body></html>`)
	}))
	defer srv.Close()

	page, err := NewLoader(5*time.Second).Load(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Contains(t, page, "본문")
}

func TestLoader_LoadNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewLoader(5*time.Second).Load(context.Background(), srv.URL)

	assert.ErrorContains(t, err, "HTTP error: 404")
}

func TestLoader_LoadTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewLoader(5*time.Second).Load(ctx, srv.URL)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
