package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jmhodges/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"georemind/locate"
	"georemind/notify"
	"georemind/schedule"
	"georemind/store"
)

func newTestServer(t *testing.T) (*Server, *store.EventCache, *locate.LastReport) {
	t.Helper()

	logger := zap.NewNop().Sugar()
	clk := clock.NewFake()
	clk.Set(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))

	kv := store.NewMemKV()
	cache := store.NewEventCache(kv, logger)
	ledger := store.NewNotificationLedger(kv, 24*time.Hour, 7*24*time.Hour, logger)
	position := locate.NewLastReport(5*time.Minute, clk)

	sched := schedule.New(schedule.Options{
		Lead:            time.Hour,
		Tolerance:       30 * time.Second,
		RadiusKm:        1,
		TickTimeout:     10 * time.Second,
		LocationTimeout: time.Second,
	}, cache, ledger, position, &notify.Log{Logger: logger}, clk, logger)

	return NewServer(cache, position, sched, logger), cache, position
}

func TestPutEvents(t *testing.T) {
	srv, cache, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	body := `[{"id":"ev-1","title":"standup","startAt":"2026-08-01T13:00:00Z","lat":60.17,"lon":24.94}]`
	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/events", strings.NewReader(body))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	events := cache.GetAll(context.Background())
	require.Len(t, events, 1)
	assert.Equal(t, "ev-1", events[0].ID)
}

func TestPutEventsRejectsGarbage(t *testing.T) {
	srv, _, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/events", strings.NewReader("{not json"))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPostPosition(t *testing.T) {
	srv, _, position := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/position", "application/json",
		strings.NewReader(`{"lat":60.17,"lon":24.94,"at":"2026-08-01T12:00:00Z"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	pt, err := position.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 60.17, pt.Lat)

	// Out-of-range coordinates never make it into the provider.
	resp, err = http.Post(ts.URL+"/api/position", "application/json",
		strings.NewReader(`{"lat":120,"lon":24.94}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStatusAndHealth(t *testing.T) {
	srv, _, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/api/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}
