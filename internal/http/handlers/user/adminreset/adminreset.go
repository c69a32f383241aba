// Package adminreset реализует HTTP-обработчик выдачи временного пароля
// пользователю администратором. Временный пароль возвращается в ответе,
// чтобы администратор мог передать его лично.
package adminreset

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/mdc-cast/expense-approval/internal/http/middlewarectx"
	"github.com/mdc-cast/expense-approval/internal/http/response"
	"github.com/mdc-cast/expense-approval/internal/lib/sl"
	services "github.com/mdc-cast/expense-approval/internal/services/auth"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	AdminResetPassword(ctx context.Context, actorRole, userUID string) (string, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.adminreset"

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

	role, _ := r.Context().Value(middlewarectx.Role).(string)

	temp, err := h.service.AdminResetPassword(r.Context(), role, userUID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotAdmin):
			log.Error("admin privileges required")
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("admin privileges required"))
		case errors.Is(err, services.ErrUserNotFound):
			log.Error("user not found", slog.String("user_uid", userUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		default:
			log.Error("failed to reset password", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to reset password"))
		}
		return
	}

	log.Info("temporary password issued by admin", slog.String("user_uid", userUID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"user_uid":      userUID,
		"temp_password": temp,
	}))
}
