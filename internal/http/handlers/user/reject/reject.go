// Package reject реализует HTTP-обработчик отклонения учётной записи администратором.
// Отклонённая запись удаляется, уведомление о решении публикуется до удаления.
package reject

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

type Service interface {
	Reject(ctx context.Context, userUID string) (*models.Event, error)
}

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
	const op = "handlers.user.reject"

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

	event, err := h.service.Reject(r.Context(), userUID)
	if err != nil {
		log.Error("failed to reject user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to reject user"))
		return
	}

	h.dispatcher.Dispatch(r.Context(), event)

	log.Info("user rejected", slog.String("user_uid", userUID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"user_uid": userUID,
		"message":  "user rejected and removed",
	}))
}
