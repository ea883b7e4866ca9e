package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/storefront/internal/checkout/application"
	identity "github.com/dmehra2102/storefront/internal/identity/domain"
	identityhttp "github.com/dmehra2102/storefront/internal/identity/infrastructure/http"
	"github.com/dmehra2102/storefront/internal/platform/httpapi"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
	replay  func(http.Handler) http.Handler
	tracer  trace.Tracer
}

// NewHandler builds the checkout endpoint. replay, when not nil, wraps it with
// Idempotency-Key handling.
func NewHandler(log *slog.Logger, service *application.Service, replay func(http.Handler) http.Handler) *Handler {
	return &Handler{
		log:     log,
		service: service,
		replay:  replay,
		tracer:  otel.Tracer("checkout-http"),
	}
}

func (h *Handler) Routes(r chi.Router) {
	var checkout http.Handler = http.HandlerFunc(h.checkout)
	if h.replay != nil {
		checkout = h.replay(checkout)
	}
	r.Method(http.MethodPost, "/carts/{cartID}/checkout", checkout)
}

// ReplayScope keys idempotent checkouts by cart and purchaser.
func ReplayScope(r *http.Request) string {
	return "checkout:" + chi.URLParam(r, "cartID") + ":" + identityhttp.FromContext(r.Context()).ID
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CheckoutRequest")
	defer span.End()

	caller := identityhttp.FromContext(ctx)
	if !identity.CanCheckout(caller) {
		httpapi.Error(w, h.log, identity.ErrForbidden)
		return
	}

	res, err := h.service.Checkout(ctx, chi.URLParam(r, "cartID"), caller.ID)
	if err != nil {
		httpapi.Error(w, h.log, err)
		return
	}
	status := http.StatusOK
	if res.Ticket != nil {
		status = http.StatusCreated
	}
	httpapi.JSON(w, status, res)
}
