package portalapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alrashid-edu/portal/core"
	"github.com/alrashid-edu/portal/core/banner"
)

func TestMain(m *testing.M) {
	core.Conf.Debug = false
	core.Conf.TestMode = true
	os.Exit(m.Run())
}

var testLogger = core.NewStdLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags))

func newTestServer(t *testing.T, opts ...func(*Options)) Server {
	t.Helper()
	validate, uni := core.NewValidator()
	o := &Options{
		DisableReqLogs: true,
		Logger:         testLogger,
		Validate:       validate,
		Uni:            uni,
		Client:         http.DefaultClient,
	}
	for _, f := range opts {
		f(o)
	}
	return NewServer(o)
}

func doRequest(srv Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

// withUpstream points the gateway at a stubbed school API for one test.
func withUpstream(t *testing.T, url string) {
	t.Helper()
	prev := core.Conf.Upstream.APIBaseURL
	core.Conf.Upstream.APIBaseURL = url
	t.Cleanup(func() { core.Conf.Upstream.APIBaseURL = prev })
}

func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	assert.NoError(t, err)
	return bytes.NewReader(data)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func authCookies(req *http.Request, role string) {
	req.AddCookie(&http.Cookie{Name: "access_token", Value: "at"})
	req.AddCookie(&http.Cookie{Name: "user_role", Value: role})
}

func TestHome(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(srv, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to "+core.Conf.AppName+"!", decodeBody(t, rec)["message"])
}

func TestHome_withBanner(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/banner/get-banner", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":{"image":"uploads/banner.png"}}`))
	}))
	defer upstream.Close()

	srv := newTestServer(t, func(o *Options) {
		o.Banner = banner.NewClient(upstream.URL, upstream.Client(), nil, testLogger)
	})

	rec := doRequest(srv, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "uploads/banner.png", decodeBody(t, rec)["banner"])
}

func TestHome_bannerUnavailable(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer upstream.Close()

	srv := newTestServer(t, func(o *Options) {
		o.Banner = banner.NewClient(upstream.URL, upstream.Client(), nil, testLogger)
	})

	// the landing page still renders, just without a banner
	rec := doRequest(srv, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.NotContains(t, body, "banner")
	assert.Contains(t, body, "message")
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(srv, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "portal_http_in_flight_requests")
}

func TestTrailingSlashRemoved(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(srv, httptest.NewRequest(http.MethodGet, "/auth/login/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
