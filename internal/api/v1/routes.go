// Package v1 provides the display timing REST API handlers.
package v1

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stacklok/vsync-reactor/internal/api/common"
	"github.com/stacklok/vsync-reactor/internal/reactor"
	"github.com/stacklok/vsync-reactor/internal/service"
)

// Routes defines the display API routes
type Routes struct {
	service service.DisplayService
}

// NewRoutes creates a new Routes instance with the provided service
func NewRoutes(svc service.DisplayService) *Routes {
	return &Routes{
		service: svc,
	}
}

// Router creates a new router for the display API
func Router(svc service.DisplayService) http.Handler {
	routes := NewRoutes(svc)

	r := chi.NewRouter()

	r.Get("/timing", routes.getTiming)
	r.Put("/period", routes.putPeriod)
	r.Put("/fences/ignore", routes.putIgnoreFences)
	r.Get("/listeners", routes.listListeners)
	r.Get("/listeners/{name}", routes.getListener)
	r.Get("/state", routes.getState)
	r.Get("/dump", routes.getDump)

	return r
}

// getTiming handles GET /v1/timing?periodOffset=N
func (rr *Routes) getTiming(w http.ResponseWriter, r *http.Request) {
	periodOffset := 0
	if raw := r.URL.Query().Get("periodOffset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			common.WriteErrorResponse(w, "Invalid periodOffset parameter: must be an integer", http.StatusBadRequest)
			return
		}
		periodOffset = n
	}

	timing, err := rr.service.Timing(r.Context(), periodOffset)
	if err != nil {
		writeServiceError(w, r, "Failed to compute timing", err)
		return
	}
	common.WriteJSONResponse(w, newTimingResponse(timing), http.StatusOK)
}

// putPeriod handles PUT /v1/period
func (rr *Routes) putPeriod(w http.ResponseWriter, r *http.Request) {
	var req PeriodRequest
	if err := common.DecodeJSONBody(w, r, &req); err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Period == "" {
		common.WriteErrorResponse(w, "period is required", http.StatusBadRequest)
		return
	}
	period, err := time.ParseDuration(req.Period)
	if err != nil {
		common.WriteErrorResponse(w, fmt.Sprintf("invalid period %q", req.Period), http.StatusBadRequest)
		return
	}

	if err := rr.service.SetPeriod(r.Context(), period); err != nil {
		writeServiceError(w, r, "Failed to set period", err)
		return
	}
	common.WriteJSONResponse(w, PeriodResponse{RequestedPeriod: period.String()}, http.StatusAccepted)
}

// putIgnoreFences handles PUT /v1/fences/ignore
func (rr *Routes) putIgnoreFences(w http.ResponseWriter, r *http.Request) {
	var req IgnoreFencesRequest
	if err := common.DecodeJSONBody(w, r, &req); err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Ignore == nil {
		common.WriteErrorResponse(w, "ignore is required", http.StatusBadRequest)
		return
	}

	if err := rr.service.SetIgnorePresentFences(r.Context(), *req.Ignore); err != nil {
		writeServiceError(w, r, "Failed to update present fence refinement", err)
		return
	}
	common.WriteJSONResponse(w, IgnoreFencesResponse{IgnorePresentFences: *req.Ignore}, http.StatusOK)
}

// listListeners handles GET /v1/listeners
func (rr *Routes) listListeners(w http.ResponseWriter, r *http.Request) {
	listeners, err := rr.service.Listeners(r.Context())
	if err != nil {
		writeServiceError(w, r, "Failed to list listeners", err)
		return
	}
	common.WriteJSONResponse(w, ListenersResponse{
		Listeners: newListenerResponses(listeners),
		Limit:     reactor.MaxListeners,
	}, http.StatusOK)
}

// getListener handles GET /v1/listeners/{name}
func (rr *Routes) getListener(w http.ResponseWriter, r *http.Request) {
	name, err := common.PathParam(r, "name")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	listeners, err := rr.service.Listeners(r.Context())
	if err != nil {
		writeServiceError(w, r, "Failed to list listeners", err)
		return
	}
	for _, l := range listeners {
		if l.Name == name {
			common.WriteJSONResponse(w, newListenerResponse(l), http.StatusOK)
			return
		}
	}
	common.WriteErrorResponse(w, fmt.Sprintf("listener %s not found", name), http.StatusNotFound)
}

// getState handles GET /v1/state
func (rr *Routes) getState(w http.ResponseWriter, r *http.Request) {
	snap, err := rr.service.State(r.Context())
	if err != nil {
		writeServiceError(w, r, "Failed to get reactor state", err)
		return
	}
	common.WriteJSONResponse(w, newStateResponse(snap), http.StatusOK)
}

// getDump handles GET /v1/dump
func (rr *Routes) getDump(w http.ResponseWriter, r *http.Request) {
	dump, err := rr.service.Dump(r.Context())
	if err != nil {
		writeServiceError(w, r, "Failed to dump reactor state", err)
		return
	}
	common.WriteTextResponse(w, dump, http.StatusOK)
}

// writeServiceError maps service errors to HTTP status codes
func writeServiceError(w http.ResponseWriter, r *http.Request, message string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidPeriod), errors.Is(err, service.ErrInvalidPeriodOffset):
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrNotReady):
		common.WriteErrorResponse(w, err.Error(), http.StatusServiceUnavailable)
	default:
		slog.ErrorContext(r.Context(), message, "error", err)
		common.WriteErrorResponse(w, message, http.StatusInternalServerError)
	}
}
