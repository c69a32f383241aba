package register

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mdc-cast/expense-approval/internal/models"
	services "github.com/mdc-cast/expense-approval/internal/services/auth"
)

// MockService реализует интерфейс register.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Register(ctx context.Context, req models.DummyRegister) (*models.User, *models.Event, error) {
	args := m.Called(ctx, req)
	var user *models.User
	var event *models.Event
	if args.Get(0) != nil {
		user = args.Get(0).(*models.User)
	}
	if args.Get(1) != nil {
		event = args.Get(1).(*models.Event)
	}
	return user, event, args.Error(2)
}

// MockDispatcher реализует интерфейс register.Dispatcher
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, events ...*models.Event) {
	m.Called(ctx, events)
}

func TestRegisterHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	newUser := &models.User{
		UID:      "uid-1",
		Email:    "new@example.com",
		FullName: "New User",
		Role:     models.RoleUser,
		Status:   models.UserStatusPending,
	}
	newUserEvent := &models.Event{
		Type:    models.NotificationNewUser,
		Message: "New user registration from: New User (new@example.com) - needs approval",
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		setupMocks     func(*MockService, *MockDispatcher)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешная регистрация публикует событие",
			requestBody: models.DummyRegister{
				Email:    "new@example.com",
				FullName: "New User",
				Password: "secret123",
			},
			setupMocks: func(s *MockService, d *MockDispatcher) {
				s.On("Register", mock.Anything, mock.AnythingOfType("models.DummyRegister")).
					Return(newUser, newUserEvent, nil)
				d.On("Dispatch", mock.Anything, []*models.Event{newUserEvent}).Return()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"message":"registration submitted, awaiting admin approval"`,
		},
		{
			name:           "некорректный JSON",
			requestBody:    "not a json",
			setupMocks:     func(_ *MockService, _ *MockDispatcher) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid request body"}`,
		},
		{
			name: "ошибка валидации",
			requestBody: models.DummyRegister{
				Email:    "new@example.com",
				FullName: "New User",
				Password: "123",
			},
			setupMocks:     func(_ *MockService, _ *MockDispatcher) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Password is too short`,
		},
		{
			name: "занятая почта",
			requestBody: models.DummyRegister{
				Email:    "taken@example.com",
				FullName: "New User",
				Password: "secret123",
			},
			setupMocks: func(s *MockService, _ *MockDispatcher) {
				s.On("Register", mock.Anything, mock.AnythingOfType("models.DummyRegister")).
					Return(nil, nil, services.ErrEmailTaken)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"status":"Error","error":"an account with this email already exists"}`,
		},
		{
			name: "ошибка сервиса",
			requestBody: models.DummyRegister{
				Email:    "new@example.com",
				FullName: "New User",
				Password: "secret123",
			},
			setupMocks: func(s *MockService, _ *MockDispatcher) {
				s.On("Register", mock.Anything, mock.AnythingOfType("models.DummyRegister")).
					Return(nil, nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"failed to register user"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			mockDispatcher := new(MockDispatcher)
			tt.setupMocks(mockService, mockDispatcher)

			handler := New(logger, mockService, mockDispatcher)

			var body []byte
			var err error
			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				body, err = json.Marshal(tt.requestBody)
				assert.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "req-id"))

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)

			mockService.AssertExpectations(t)
			mockDispatcher.AssertExpectations(t)
		})
	}
}
