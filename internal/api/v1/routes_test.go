package v1_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	v1 "github.com/stacklok/vsync-reactor/internal/api/v1"
	"github.com/stacklok/vsync-reactor/internal/clock"
	"github.com/stacklok/vsync-reactor/internal/reactor"
	"github.com/stacklok/vsync-reactor/internal/repeater"
	"github.com/stacklok/vsync-reactor/internal/service"
	"github.com/stacklok/vsync-reactor/internal/service/mocks"
)

func ms(n int64) clock.Time {
	return clock.Time(n * int64(time.Millisecond))
}

var testListeners = []repeater.State{
	{Name: "app", Period: 16 * time.Millisecond, Phase: time.Millisecond, LastCallTime: ms(32), Running: true},
	{Name: "compositor", Period: 16 * time.Millisecond, Phase: -2 * time.Millisecond, LastCallTime: ms(48), Running: false},
}

func serve(t *testing.T, setup func(*mocks.MockDisplayService), method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockSvc := mocks.NewMockDisplayService(ctrl)
	if setup != nil {
		setup(mockSvc)
	}

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	v1.Router(mockSvc).ServeHTTP(rr, req)
	return rr
}

func TestGetTiming(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		target     string
		setup      func(*mocks.MockDisplayService)
		wantStatus int
		wantOffset int
	}{
		{
			name:   "default offset",
			target: "/timing",
			setup: func(m *mocks.MockDisplayService) {
				m.EXPECT().Timing(gomock.Any(), 0).Return(&service.Timing{
					DisplayName: "primary", Period: 16 * time.Millisecond, PeriodOffset: 0,
					Now: ms(100), NextRefresh: ms(112), ExpectedPresentTime: ms(112),
				}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "explicit offset",
			target: "/timing?periodOffset=2",
			setup: func(m *mocks.MockDisplayService) {
				m.EXPECT().Timing(gomock.Any(), 2).Return(&service.Timing{
					DisplayName: "primary", Period: 16 * time.Millisecond, PeriodOffset: 2,
					Now: ms(100), NextRefresh: ms(144), ExpectedPresentTime: ms(112),
				}, nil)
			},
			wantStatus: http.StatusOK,
			wantOffset: 2,
		},
		{
			name:       "non integer offset",
			target:     "/timing?periodOffset=two",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "offset out of range",
			target: "/timing?periodOffset=5000",
			setup: func(m *mocks.MockDisplayService) {
				m.EXPECT().Timing(gomock.Any(), 5000).
					Return(nil, fmt.Errorf("%w: 5000", service.ErrInvalidPeriodOffset))
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "service failure",
			target: "/timing",
			setup: func(m *mocks.MockDisplayService) {
				m.EXPECT().Timing(gomock.Any(), 0).Return(nil, errors.New("boom"))
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rr := serve(t, tt.setup, http.MethodGet, tt.target, "")
			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp v1.TimingResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, "primary", resp.Display)
			assert.Equal(t, "16ms", resp.Period)
			assert.Equal(t, int64(16_000_000), resp.PeriodNanos)
			assert.Equal(t, tt.wantOffset, resp.PeriodOffset)
			assert.Equal(t, int64(100_000_000), resp.NowNanos)
			assert.Equal(t, int64(112_000_000), resp.ExpectedPresentNanos)
			assert.Equal(t, resp.NextRefreshNanos-resp.NowNanos, resp.NextRefreshFromNowNanos)
		})
	}
}

func TestPutPeriod(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		setup      func(*mocks.MockDisplayService)
		wantStatus int
		wantBody   string
	}{
		{
			name: "accepted",
			body: `{"period":"11.111111ms"}`,
			setup: func(m *mocks.MockDisplayService) {
				m.EXPECT().SetPeriod(gomock.Any(), 11111111*time.Nanosecond).Return(nil)
			},
			wantStatus: http.StatusAccepted,
			wantBody:   `{"requested_period":"11.111111ms"}`,
		},
		{
			name:       "missing period",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"period is required"}`,
		},
		{
			name:       "unparseable period",
			body:       `{"period":"fast"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"invalid period \"fast\""}`,
		},
		{
			name:       "unknown field",
			body:       `{"period":"16ms","mode":2}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "rejected by service",
			body: `{"period":"-1ms"}`,
			setup: func(m *mocks.MockDisplayService) {
				m.EXPECT().SetPeriod(gomock.Any(), -time.Millisecond).
					Return(fmt.Errorf("%w: -1ms", service.ErrInvalidPeriod))
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"invalid refresh period: -1ms"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rr := serve(t, tt.setup, http.MethodPut, "/period", tt.body)
			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rr.Body.String())
			}
		})
	}
}

func TestPutIgnoreFences(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		setup      func(*mocks.MockDisplayService)
		wantStatus int
		wantBody   string
	}{
		{
			name: "ignore",
			body: `{"ignore":true}`,
			setup: func(m *mocks.MockDisplayService) {
				m.EXPECT().SetIgnorePresentFences(gomock.Any(), true).Return(nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"ignore_present_fences":true}`,
		},
		{
			name: "resume",
			body: `{"ignore":false}`,
			setup: func(m *mocks.MockDisplayService) {
				m.EXPECT().SetIgnorePresentFences(gomock.Any(), false).Return(nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"ignore_present_fences":false}`,
		},
		{
			name:       "missing flag",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"ignore is required"}`,
		},
		{
			name:       "wrong type",
			body:       `{"ignore":"yes"}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rr := serve(t, tt.setup, http.MethodPut, "/fences/ignore", tt.body)
			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rr.Body.String())
			}
		})
	}
}

func TestListeners(t *testing.T) {
	t.Parallel()

	t.Run("list", func(t *testing.T) {
		t.Parallel()

		rr := serve(t, func(m *mocks.MockDisplayService) {
			m.EXPECT().Listeners(gomock.Any()).Return(testListeners, nil)
		}, http.MethodGet, "/listeners", "")

		require.Equal(t, http.StatusOK, rr.Code)
		var resp v1.ListenersResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, reactor.MaxListeners, resp.Limit)
		assert.Equal(t, []v1.ListenerResponse{
			{Name: "app", Period: "16ms", Phase: "1ms", LastCallNanos: 32_000_000, Running: true},
			{Name: "compositor", Period: "16ms", Phase: "-2ms", LastCallNanos: 48_000_000, Running: false},
		}, resp.Listeners)
	})

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantName   string
	}{
		{name: "found", target: "/listeners/compositor", wantStatus: http.StatusOK, wantName: "compositor"},
		{name: "not found", target: "/listeners/overlay", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rr := serve(t, func(m *mocks.MockDisplayService) {
				m.EXPECT().Listeners(gomock.Any()).Return(testListeners, nil)
			}, http.MethodGet, tt.target, "")

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantName == "" {
				return
			}
			var resp v1.ListenerResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantName, resp.Name)
		})
	}

	t.Run("invalid name", func(t *testing.T) {
		t.Parallel()

		rr := serve(t, nil, http.MethodGet, "/listeners/my%20app", "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestGetState(t *testing.T) {
	t.Parallel()

	target := 11 * time.Millisecond
	last := ms(64)
	rr := serve(t, func(m *mocks.MockDisplayService) {
		m.EXPECT().State(gomock.Any()).Return(&reactor.Snapshot{
			Period:            16 * time.Millisecond,
			TransitioningTo:   &target,
			LastHwVsync:       &last,
			MoreSamplesNeeded: true,
			PendingFences:     1,
			PendingFenceLimit: 20,
			Listeners:         testListeners[:1],
		}, nil)
	}, http.MethodGet, "/state", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{
		"period": "16ms",
		"transitioning_to": "11ms",
		"last_hw_vsync_ns": 64000000,
		"more_samples_needed": true,
		"ignore_present_fences": false,
		"pending_fences": 1,
		"pending_fence_limit": 20,
		"listeners": [
			{"name": "app", "period": "16ms", "phase": "1ms", "last_call_ns": 32000000, "running": true}
		]
	}`, rr.Body.String())
}

func TestGetDump(t *testing.T) {
	t.Parallel()

	rr := serve(t, func(m *mocks.MockDisplayService) {
		m.EXPECT().Dump(gomock.Any()).Return("VsyncReactor in use\n", nil)
	}, http.MethodGet, "/dump", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Equal(t, "VsyncReactor in use\n", rr.Body.String())

	rr = serve(t, func(m *mocks.MockDisplayService) {
		m.EXPECT().Dump(gomock.Any()).Return("", errors.New("boom"))
	}, http.MethodGet, "/dump", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Failed to dump reactor state"}`, rr.Body.String())
}
