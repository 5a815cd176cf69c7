package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareCountsRequests(t *testing.T) {
	Init()
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/missing", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	ts := httptest.NewServer(r)
	defer ts.Close()

	okBefore := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "200"))
	notFoundBefore := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "404"))

	for _, path := range []string{"/healthz", "/missing"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		if err := resp.Body.Close(); err != nil {
			t.Log(err)
		}
	}

	okAfter := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "200"))
	notFoundAfter := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "404"))

	if okAfter != okBefore+1 {
		t.Errorf("expected one more 200, got %f -> %f", okBefore, okAfter)
	}
	if notFoundAfter != notFoundBefore+1 {
		t.Errorf("expected one more 404, got %f -> %f", notFoundBefore, notFoundAfter)
	}
}
