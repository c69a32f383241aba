// Package create реализует HTTP-обработчик подачи нового расхода.
//
// Handler принимает JSON-запрос с данными расхода, валидирует их, извлекает
// идентификатор пользователя из контекста, вызывает бизнес-логику подачи
// через сервис и публикует событие, если запись ожидает одобрения.
//
// В случае ошибок формируются соответствующие HTTP-ответы с описанием проблемы.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/mdc-cast/expense-approval/internal/http/middlewarectx"
	"github.com/mdc-cast/expense-approval/internal/http/response"
	"github.com/mdc-cast/expense-approval/internal/lib/sl"
	"github.com/mdc-cast/expense-approval/internal/models"
	services "github.com/mdc-cast/expense-approval/internal/services/expense"
)

// Handler управляет HTTP-запросами на подачу расходов.
//
// Использует логгер для записи операций и ошибок,
// сервис бизнес-логики для подачи расхода,
// а также валидатор для проверки структуры входных данных.
type Handler struct {
	log        *slog.Logger        // Логгер для записи информации и ошибок
	service    Service             // Сервис бизнес-логики подачи расходов
	dispatcher Dispatcher          // Координатор доменных событий
	validate   *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики подачи расхода.
type Service interface {
	Submit(ctx context.Context, userUID string, req models.DummyExpense) (*models.Expense, *models.Event, error)
}

// Dispatcher описывает интерфейс координатора доменных событий.
type Dispatcher interface {
	Dispatch(ctx context.Context, events ...*models.Event)
}

// New создает новый Handler с переданными логгером, сервисом и координатором событий.
func New(log *slog.Logger, service Service, dispatcher Dispatcher) *Handler {
	return &Handler{
		log:        log,
		service:    service,
		dispatcher: dispatcher,
		validate:   validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Подать новый расход
// @Description Создает запись расхода. Записи администратора одобряются сразу, остальные ожидают решения.
// @Tags Expenses
// @Accept  json
// @Produce  json
// @Param request body models.DummyExpense true "Данные нового расхода"
// @Success 200 {object} map[string]any "Успешная подача расхода"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при создании записи"
// @Router /expenses [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.expense.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyExpense
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.Any("request", req))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	expense, event, err := h.service.Submit(r.Context(), userUID, req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidAmount) {
			log.Error("invalid amount", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("amount must be a non-negative number"))
			return
		}
		log.Error("failed to create expense", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create expense"))
		return
	}

	h.dispatcher.Dispatch(r.Context(), event)

	log.Info("expense created", slog.String("uid", expense.UID), slog.String("status", expense.Status))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"expense": expense,
	}))
}
