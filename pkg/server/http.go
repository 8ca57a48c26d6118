package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wordscope/wordscope/pkg/stats"
	"github.com/wordscope/wordscope/pkg/wordstat"
)

// NewRouter builds the REST facade: the three operations plus health
// and Prometheus metrics.
func NewRouter(svc StatsService, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	h := &httpHandlers{svc: svc, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/v1/regions", h.regions)
	r.Get("/v1/regions/{id}/children", h.regionChildren)
	r.Post("/v1/distribution", h.distribution)

	return r
}

type httpHandlers struct {
	svc StatsService
	log *slog.Logger
}

func (h *httpHandlers) regions(w http.ResponseWriter, r *http.Request) {
	depth := intQuery(r, "depth", 2)

	forest, err := h.svc.RegionsProjection(r.Context(), depth)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, forest)
}

func (h *httpHandlers) regionChildren(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid region id"))
		return
	}
	depth := intQuery(r, "depth", 1)

	children, err := h.svc.RegionChildren(r.Context(), id, depth)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, children)
}

type distributionBody struct {
	Phrase    string   `json:"phrase"`
	RegionIDs []int64  `json:"region_ids"`
	Devices   []string `json:"devices"`
	Limit     int      `json:"limit"`
}

func (h *httpHandlers) distribution(w http.ResponseWriter, r *http.Request) {
	var body distributionBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	if body.Phrase == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("phrase is required"))
		return
	}

	report, err := h.svc.EnrichedRegionalDistribution(r.Context(), body.Phrase, body.RegionIDs, body.Devices, body.Limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// writeError maps the client error taxonomy onto facade status codes.
// Upstream throttling and quota statuses pass through recognizably;
// everything else from upstream is a bad gateway.
func (h *httpHandlers) writeError(w http.ResponseWriter, err error) {
	var notFound *stats.RegionNotFoundError
	switch {
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	case wordstat.IsRateLimited(err):
		if hint := wordstat.RetryAfterHint(err); hint > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(int(hint.Seconds())))
		}
		writeJSON(w, http.StatusTooManyRequests, errorBody(err.Error()))
	case wordstat.IsQuotaExceeded(err):
		writeJSON(w, http.StatusServiceUnavailable, errorBody(err.Error()))
	case wordstat.IsTransport(err):
		writeJSON(w, http.StatusBadGateway, errorBody(err.Error()))
	default:
		var remote *wordstat.RemoteError
		if errors.As(err, &remote) {
			writeJSON(w, http.StatusBadGateway, errorBody(err.Error()))
			return
		}
		h.log.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
	}
}

func intQuery(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
