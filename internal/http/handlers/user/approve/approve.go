// Package approve реализует HTTP-обработчик одобрения учётной записи администратором.
//
// Handler извлекает идентификатор пользователя из URL, вызывает бизнес-логику
// одобрения и публикует событие о смене статуса учётной записи.
package approve

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/mdc-cast/expense-approval/internal/http/response"
	"github.com/mdc-cast/expense-approval/internal/lib/sl"
	"github.com/mdc-cast/expense-approval/internal/models"
)

type Handler struct {
	log        *slog.Logger
	service    Service
	dispatcher Dispatcher
}

// Service описывает интерфейс бизнес-логики одобрения пользователя.
type Service interface {
	Approve(ctx context.Context, userUID string) (*models.Event, error)
}

// Dispatcher описывает интерфейс координатора доменных событий.
type Dispatcher interface {
	Dispatch(ctx context.Context, events ...*models.Event)
}

func New(log *slog.Logger, service Service, dispatcher Dispatcher) *Handler {
	return &Handler{
		log:        log,
		service:    service,
		dispatcher: dispatcher,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.approve"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID := chi.URLParam(r, "uid")
	if userUID == "" {
		log.Error("missing user uid in url")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing user uid"))
		return
	}

	event, err := h.service.Approve(r.Context(), userUID)
	if err != nil {
		log.Error("failed to approve user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to approve user"))
		return
	}

	h.dispatcher.Dispatch(r.Context(), event)

	log.Info("user approved", slog.String("user_uid", userUID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"user_uid": userUID,
		"message":  "user approved",
	}))
}
