// Package summary реализует HTTP-обработчик сводки по одобренным расходам.
//
// Handler принимает диапазон времени в query-параметре range (week, month,
// year, all), извлекает пользователя из контекста и возвращает агрегаты:
// общую сумму, количество записей и разбивку по годам обучения.
// Администратор получает сводку по всем записям, пользователь — по своим.
package summary

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/mdc-cast/expense-approval/internal/http/middlewarectx"
	"github.com/mdc-cast/expense-approval/internal/http/response"
	"github.com/mdc-cast/expense-approval/internal/lib/sl"
	"github.com/mdc-cast/expense-approval/internal/models"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики агрегации расходов.
type Service interface {
	Summary(ctx context.Context, userUID, role, timeRange string) (*models.ExpenseSummary, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Сводка по одобренным расходам
// @Description Возвращает сумму, количество и разбивку по годам за выбранный период.
// @Tags Expenses
// @Produce  json
// @Param range query string false "Период: week, month, year или all" default(all)
// @Success 200 {object} map[string]any "Сводка по расходам"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /expenses/summary [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.expense.summary"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	timeRange := r.URL.Query().Get("range")
	if timeRange == "" {
		timeRange = "all"
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}
	role, _ := r.Context().Value(middlewarectx.Role).(string)

	res, err := h.service.Summary(r.Context(), userUID, role, timeRange)
	if err != nil {
		log.Error("failed to calculate summary", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not calculate summary"))
		return
	}

	log.Info("summary calculated", slog.Any("total", res.Total))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"summary": res,
	}))
}
