package updateprofile

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mdc-cast/expense-approval/internal/http/middlewarectx"
	"github.com/mdc-cast/expense-approval/internal/models"
	services "github.com/mdc-cast/expense-approval/internal/services/auth"
)

// MockService реализует интерфейс updateprofile.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) UpdateProfile(ctx context.Context, userUID, actorRole string, req models.DummyProfile) error {
	args := m.Called(ctx, userUID, actorRole, req)
	return args.Error(0)
}

func TestUpdateProfileHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		requestBody    interface{}
		ctxUserUID     string
		ctxRole        string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "успешное обновление профиля",
			requestBody: models.DummyProfile{FullName: "New Name", IDNumber: "EMP-0042"},
			ctxUserUID:  "user-1",
			ctxRole:     models.RoleUser,
			setupMock: func(s *MockService) {
				s.On("UpdateProfile", mock.Anything, "user-1", models.RoleUser,
					mock.AnythingOfType("models.DummyProfile")).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"message":"profile updated"`,
		},
		{
			name:        "смена установленного табельного номера запрещена",
			requestBody: models.DummyProfile{FullName: "New Name", IDNumber: "EMP-9999"},
			ctxUserUID:  "user-1",
			ctxRole:     models.RoleUser,
			setupMock: func(s *MockService) {
				s.On("UpdateProfile", mock.Anything, "user-1", models.RoleUser,
					mock.AnythingOfType("models.DummyProfile")).Return(services.ErrIDNumberLocked)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `{"status":"Error","error":"id number can only be changed by admin"}`,
		},
		{
			name:           "некорректный JSON",
			requestBody:    "not a json",
			ctxUserUID:     "user-1",
			ctxRole:        models.RoleUser,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid request body"}`,
		},
		{
			name:           "ошибка валидации",
			requestBody:    models.DummyProfile{FullName: "A"},
			ctxUserUID:     "user-1",
			ctxRole:        models.RoleUser,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field FullName`,
		},
		{
			name:           "запрос без аутентификации",
			requestBody:    models.DummyProfile{FullName: "New Name"},
			ctxUserUID:     "",
			ctxRole:        "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"unauthorized"}`,
		},
		{
			name:        "ошибка сервиса",
			requestBody: models.DummyProfile{FullName: "New Name"},
			ctxUserUID:  "user-1",
			ctxRole:     models.RoleUser,
			setupMock: func(s *MockService) {
				s.On("UpdateProfile", mock.Anything, "user-1", models.RoleUser,
					mock.AnythingOfType("models.DummyProfile")).Return(assert.AnError)
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"failed to update profile"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			var body []byte
			var err error
			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				body, err = json.Marshal(tt.requestBody)
				assert.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPut, "/profile", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			ctx := req.Context()
			if tt.ctxUserUID != "" {
				ctx = context.WithValue(ctx, middlewarectx.UserUID, tt.ctxUserUID)
				ctx = context.WithValue(ctx, middlewarectx.Role, tt.ctxRole)
			}
			ctx = context.WithValue(ctx, middleware.RequestIDKey, "req-id")
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)

			mockService.AssertExpectations(t)
		})
	}
}
