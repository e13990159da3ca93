// Package httpapi is the boundary where the external collaborators push
// state in: the event source replaces the tracked snapshot and the
// reporting client posts the device position. The scheduler itself never
// serves requests; it only reads what arrived here.
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"georemind/geo"
	"georemind/locate"
	"georemind/schedule"
	"georemind/store"
)

type Server struct {
	cache    *store.EventCache
	position *locate.LastReport
	sched    *schedule.Scheduler
	logger   *zap.SugaredLogger
}

func NewServer(cache *store.EventCache, position *locate.LastReport, sched *schedule.Scheduler, l *zap.SugaredLogger) *Server {
	return &Server{cache: cache, position: position, sched: sched, logger: l}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.AllowAll().Handler)

	r.Put("/api/events", s.putEvents)
	r.Post("/api/position", s.postPosition)
	r.Get("/api/status", s.getStatus)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// putEvents replaces the whole tracked-event snapshot.
func (s *Server) putEvents(w http.ResponseWriter, r *http.Request) {
	var events []store.TrackedEvent
	if err := json.NewDecoder(r.Body).Decode(&events); err != nil {
		http.Error(w, "invalid event list: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.cache.ReplaceAll(r.Context(), events); err != nil {
		s.logger.Errorw("failed replacing event snapshot", "err", err)
		http.Error(w, "failed storing events", http.StatusInternalServerError)
		return
	}

	s.logger.Infow("event snapshot replaced", "count", len(events))
	w.WriteHeader(http.StatusNoContent)
}

type positionReport struct {
	Lat float64    `json:"lat"`
	Lon float64    `json:"lon"`
	At  *time.Time `json:"at,omitempty"` // defaults to receipt time
}

func (s *Server) postPosition(w http.ResponseWriter, r *http.Request) {
	var rep positionReport
	if err := json.NewDecoder(r.Body).Decode(&rep); err != nil {
		http.Error(w, "invalid position report: "+err.Error(), http.StatusBadRequest)
		return
	}

	if rep.Lat < -90 || rep.Lat > 90 || rep.Lon < -180 || rep.Lon > 180 {
		http.Error(w, "coordinate out of range", http.StatusBadRequest)
		return
	}

	at := time.Now().UTC()
	if rep.At != nil {
		at = rep.At.UTC()
	}
	s.position.Report(geo.Point{Lat: rep.Lat, Lon: rep.Lon}, at)

	w.WriteHeader(http.StatusNoContent)
}

type statusResponse struct {
	LastTick       schedule.Status `json:"lastTick"`
	Events         int             `json:"events"`
	PositionSeenAt *time.Time      `json:"positionSeenAt,omitempty"`
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		LastTick: s.sched.Status(),
		Events:   len(s.cache.GetAll(r.Context())),
	}
	if at, ok := s.position.LastAt(); ok {
		resp.PositionSeenAt = &at
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Errorw("failed writing status response", "err", err)
	}
}
