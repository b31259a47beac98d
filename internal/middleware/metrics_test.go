package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/taskwise/taskwise/internal/metrics"
)

func TestMetrics_RecordsStatus(t *testing.T) {
	t.Parallel()

	recorder := metrics.NewInMemory()
	mw := Metrics(recorder)

	ok := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	missing := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	ok.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	ok.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	missing.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	snap := recorder.Snapshot()
	if snap.HTTPStatuses[http.StatusOK] != 2 {
		t.Errorf("200 count = %d, want 2", snap.HTTPStatuses[http.StatusOK])
	}
	if snap.HTTPStatuses[http.StatusNotFound] != 1 {
		t.Errorf("404 count = %d, want 1", snap.HTTPStatuses[http.StatusNotFound])
	}
}
