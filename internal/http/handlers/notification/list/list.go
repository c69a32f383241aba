// Package list реализует HTTP-обработчик ленты уведомлений.
// Вместе со списком возвращается счётчик непрочитанных, вычисляемый заново
// при каждом запросе.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/mdc-cast/expense-approval/internal/http/response"
	"github.com/mdc-cast/expense-approval/internal/lib/sl"
	"github.com/mdc-cast/expense-approval/internal/models"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики ленты уведомлений.
type Service interface {
	List(ctx context.Context) ([]*models.Notification, error)
	UnreadCount(ctx context.Context) (int, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.notification.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	res, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list notifications", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list notifications"))
		return
	}

	unread, err := h.service.UnreadCount(r.Context())
	if err != nil {
		log.Error("failed to count unread notifications", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to count unread notifications"))
		return
	}

	log.Info("notifications listed", "count", len(res), "unread", unread)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"list_count":    len(res),
		"unread_count":  unread,
		"notifications": res,
	}))
}
