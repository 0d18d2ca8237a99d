package banner

import (
	"context"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alrashid-edu/portal/core"
)

var testLogger = core.NewStdLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags))

func TestClient_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/banner/get-banner", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":{"image":"uploads/banner.png"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client(), nil, testLogger)
	image, err := c.Get(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "uploads/banner.png", image)
}

func TestClient_GetUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client(), nil, testLogger)
	_, err := c.Get(context.Background())
	assert.True(t, core.IsTransport(err))
}

func TestClient_GetUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	c := NewClient(srv.URL, nil, nil, testLogger)
	_, err := c.Get(context.Background())
	assert.True(t, core.IsTransport(err))
}

func TestClient_GetMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client(), nil, testLogger)
	_, err := c.Get(context.Background())
	assert.True(t, core.IsTransport(err))
}
