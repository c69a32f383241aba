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
	Reject(ctx context.Context, uid string) (*models.Event, error)
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
	const op = "handlers.expense.reject"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	uid := chi.URLParam(r, "uid")
	if uid == "" {
		log.Error("missing expense uid in url")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing expense uid"))
		return
	}

	event, err := h.service.Reject(r.Context(), uid)
	if err != nil {
		log.Error("failed to reject expense", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to reject expense"))
		return
	}

	h.dispatcher.Dispatch(r.Context(), event)

	log.Info("expense rejected", slog.String("uid", uid))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"uid":     uid,
		"message": "expense rejected",
	}))
}
