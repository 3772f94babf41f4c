package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(retries int) *Client {
	return NewClient(5*time.Second, retries, time.Millisecond)
}

func TestGet_RetriesTransient502(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, err := newTestClient(5).Get(context.Background(), srv.URL, nil)

	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls), "two failed attempts plus the success")
}

func TestGet_PermanentStatusNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(5).Get(context.Background(), srv.URL, nil)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "permanent statuses must not be retried")
}

func TestGet_MaxRetriesExceeded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(3).Get(context.Background(), srv.URL, nil)

	assert.ErrorIs(t, err, ErrMaxRetries)
}

func TestGet_ParamsEncoded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "in", r.URL.Query().Get("lang"))
		w.Write([]byte("{}"))
	}))
	defer srv.Close()

	params := map[string][]string{"page": {"2"}, "lang": {"in"}}
	_, err := newTestClient(1).Get(context.Background(), srv.URL, params)
	require.NoError(t, err)
}

func TestPostJSON_SendsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	body, err := newTestClient(1).PostJSON(context.Background(), srv.URL, nil, map[string]string{"bookId": "42"})

	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true}`, string(body))
}

func TestContentLength_Head(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "4096")
	}))
	defer srv.Close()

	size := newTestClient(1).ContentLength(context.Background(), srv.URL)
	assert.Equal(t, int64(4096), size)
}

func TestContentLength_GetFallbackWhenHeadRejected(t *testing.T) {
	payload := []byte("0123456789")
	var gets int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		atomic.AddInt32(&gets, 1)
		w.Write(payload)
	}))
	defer srv.Close()

	size := newTestClient(1).ContentLength(context.Background(), srv.URL)

	assert.Equal(t, int64(len(payload)), size)
	assert.Equal(t, int32(1), atomic.LoadInt32(&gets))
}

func TestContentLength_UnknownResolvesToZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	size := newTestClient(1).ContentLength(context.Background(), srv.URL)
	assert.Equal(t, int64(0), size)
}

func TestDownloadFile_StreamsToDisk(t *testing.T) {
	payload := []byte("episode payload bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "ep.mp4")

	var lastWritten int64
	err := newTestClient(1).DownloadFile(context.Background(), srv.URL, dest, func(written, total int64) {
		lastWritten = written
	})

	require.NoError(t, err)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
	assert.Equal(t, int64(len(payload)), lastWritten)
}

func TestDownloadFile_OverwritesStalePartial(t *testing.T) {
	payload := []byte("full file")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "ep.mp4")
	require.NoError(t, os.WriteFile(dest, []byte("stale partial content that is longer"), 0644))

	err := newTestClient(1).DownloadFile(context.Background(), srv.URL, dest, nil)

	require.NoError(t, err)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestGet_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(3).Get(ctx, srv.URL, nil)
	assert.True(t, errors.Is(err, context.Canceled))
}
