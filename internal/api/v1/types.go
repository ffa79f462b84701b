package v1

import (
	"github.com/stacklok/vsync-reactor/internal/reactor"
	"github.com/stacklok/vsync-reactor/internal/repeater"
	"github.com/stacklok/vsync-reactor/internal/service"
)

// TimingResponse is the reply to GET /v1/timing
type TimingResponse struct {
	Display                 string `json:"display"`
	Period                  string `json:"period"`
	PeriodNanos             int64  `json:"period_ns"`
	PeriodOffset            int    `json:"period_offset"`
	NowNanos                int64  `json:"now_ns"`
	NextRefreshNanos        int64  `json:"next_refresh_ns"`
	ExpectedPresentNanos    int64  `json:"expected_present_ns"`
	NextRefreshFromNowNanos int64  `json:"next_refresh_in_ns"`
}

// PeriodRequest is the body of PUT /v1/period
type PeriodRequest struct {
	Period string `json:"period"`
}

// PeriodResponse acknowledges a period request. The change is committed
// once vsync samples confirm it.
type PeriodResponse struct {
	RequestedPeriod string `json:"requested_period"`
}

// IgnoreFencesRequest is the body of PUT /v1/fences/ignore
type IgnoreFencesRequest struct {
	Ignore *bool `json:"ignore"`
}

// IgnoreFencesResponse reports the fence refinement switch
type IgnoreFencesResponse struct {
	IgnorePresentFences bool `json:"ignore_present_fences"`
}

// ListenerResponse describes one listener
type ListenerResponse struct {
	Name          string `json:"name"`
	Period        string `json:"period"`
	Phase         string `json:"phase"`
	LastCallNanos int64  `json:"last_call_ns"`
	Running       bool   `json:"running"`
}

// ListenersResponse is the reply to GET /v1/listeners
type ListenersResponse struct {
	Listeners []ListenerResponse `json:"listeners"`
	Limit     int                `json:"limit"`
}

// StateResponse is the reply to GET /v1/state
type StateResponse struct {
	Period              string             `json:"period"`
	TransitioningTo     string             `json:"transitioning_to,omitempty"`
	LastHwVsyncNanos    *int64             `json:"last_hw_vsync_ns,omitempty"`
	MoreSamplesNeeded   bool               `json:"more_samples_needed"`
	IgnorePresentFences bool               `json:"ignore_present_fences"`
	PendingFences       int                `json:"pending_fences"`
	PendingFenceLimit   int                `json:"pending_fence_limit"`
	Listeners           []ListenerResponse `json:"listeners"`
}

func newTimingResponse(t *service.Timing) TimingResponse {
	return TimingResponse{
		Display:                 t.DisplayName,
		Period:                  t.Period.String(),
		PeriodNanos:             t.Period.Nanoseconds(),
		PeriodOffset:            t.PeriodOffset,
		NowNanos:                t.Now.Nanoseconds(),
		NextRefreshNanos:        t.NextRefresh.Nanoseconds(),
		ExpectedPresentNanos:    t.ExpectedPresentTime.Nanoseconds(),
		NextRefreshFromNowNanos: t.NextRefresh.Sub(t.Now).Nanoseconds(),
	}
}

func newListenerResponse(s repeater.State) ListenerResponse {
	return ListenerResponse{
		Name:          s.Name,
		Period:        s.Period.String(),
		Phase:         s.Phase.String(),
		LastCallNanos: s.LastCallTime.Nanoseconds(),
		Running:       s.Running,
	}
}

func newListenerResponses(states []repeater.State) []ListenerResponse {
	out := make([]ListenerResponse, 0, len(states))
	for _, s := range states {
		out = append(out, newListenerResponse(s))
	}
	return out
}

func newStateResponse(snap *reactor.Snapshot) StateResponse {
	resp := StateResponse{
		Period:              snap.Period.String(),
		MoreSamplesNeeded:   snap.MoreSamplesNeeded,
		IgnorePresentFences: snap.IgnorePresentFences,
		PendingFences:       snap.PendingFences,
		PendingFenceLimit:   snap.PendingFenceLimit,
		Listeners:           newListenerResponses(snap.Listeners),
	}
	if snap.TransitioningTo != nil {
		resp.TransitioningTo = snap.TransitioningTo.String()
	}
	if snap.LastHwVsync != nil {
		last := snap.LastHwVsync.Nanoseconds()
		resp.LastHwVsyncNanos = &last
	}
	return resp
}
