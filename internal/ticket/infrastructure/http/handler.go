package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	identity "github.com/dmehra2102/storefront/internal/identity/domain"
	identityhttp "github.com/dmehra2102/storefront/internal/identity/infrastructure/http"
	"github.com/dmehra2102/storefront/internal/platform/httpapi"
	"github.com/dmehra2102/storefront/internal/ticket/application"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("ticket-http"),
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/carts/{cartID}/tickets", h.listByCart)
	r.Get("/tickets", h.listByPurchaser)
	r.Get("/tickets/{code}", h.getByCode)
}

func (h *Handler) listByCart(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListCartTickets")
	defer span.End()

	ts, err := h.service.ListByCart(ctx, chi.URLParam(r, "cartID"))
	if err != nil {
		httpapi.Error(w, h.log, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, ts)
}

// listByPurchaser defaults to the caller's own tickets. Only admins may read
// another purchaser's history.
func (h *Handler) listByPurchaser(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListPurchaserTickets")
	defer span.End()

	caller := identityhttp.FromContext(ctx)
	purchaser := r.URL.Query().Get("purchaser")
	if purchaser == "" {
		purchaser = caller.ID
	}
	if caller.Anonymous() || (purchaser != caller.ID && caller.Role != identity.RoleAdmin) {
		httpapi.Error(w, h.log, identity.ErrForbidden)
		return
	}

	ts, err := h.service.ListByPurchaser(ctx, purchaser)
	if err != nil {
		httpapi.Error(w, h.log, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, ts)
}

func (h *Handler) getByCode(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetTicket")
	defer span.End()

	t, err := h.service.GetByCode(ctx, chi.URLParam(r, "code"))
	if err != nil {
		httpapi.Error(w, h.log, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, t)
}
