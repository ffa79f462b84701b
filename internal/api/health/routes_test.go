package health_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/vsync-reactor/internal/api/health"
	"github.com/stacklok/vsync-reactor/internal/service/mocks"
)

func TestRouter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		path       string
		setupMock  func(*mocks.MockDisplayService)
		wantStatus int
		wantKeys   []string
		wantValues map[string]string
	}{
		{
			name:       "health",
			path:       "/health",
			wantStatus: http.StatusOK,
			wantValues: map[string]string{"status": "healthy"},
		},
		{
			name: "ready",
			path: "/readiness",
			setupMock: func(m *mocks.MockDisplayService) {
				m.EXPECT().CheckReadiness(gomock.Any()).Return(nil)
			},
			wantStatus: http.StatusOK,
			wantValues: map[string]string{"status": "ready"},
		},
		{
			name: "not ready",
			path: "/readiness",
			setupMock: func(m *mocks.MockDisplayService) {
				m.EXPECT().CheckReadiness(gomock.Any()).Return(errors.New("no vsync samples"))
			},
			wantStatus: http.StatusServiceUnavailable,
			wantValues: map[string]string{"error": "display service not ready: no vsync samples"},
		},
		{
			name:       "version",
			path:       "/version",
			wantStatus: http.StatusOK,
			wantKeys:   []string{"version", "commit", "build_date", "build_type", "go_version", "platform"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)
			t.Cleanup(ctrl.Finish)

			mockSvc := mocks.NewMockDisplayService(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(mockSvc)
			}

			rr := httptest.NewRecorder()
			health.Router(mockSvc).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var response map[string]string
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
			for _, key := range tt.wantKeys {
				assert.Contains(t, response, key)
			}
			for key, value := range tt.wantValues {
				assert.Equal(t, value, response[key])
			}
		})
	}
}
