package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/storefront/internal/cart/application"
	identity "github.com/dmehra2102/storefront/internal/identity/domain"
	identityhttp "github.com/dmehra2102/storefront/internal/identity/infrastructure/http"
	"github.com/dmehra2102/storefront/internal/platform/httpapi"
)

type Handler struct {
	log      *slog.Logger
	service  *application.Service
	products application.ProductLookup
	tracer   trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service, products application.ProductLookup) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		products: products,
		tracer:   otel.Tracer("cart-http"),
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/carts", h.create)
	r.Get("/carts/{cartID}", h.get)
	r.Post("/carts/{cartID}/items/{productID}", h.addItem)
	r.Delete("/carts/{cartID}/items/{productID}", h.removeItem)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateCart")
	defer span.End()

	c, err := h.service.Create(ctx)
	if err != nil {
		httpapi.Error(w, h.log, err)
		return
	}
	httpapi.JSON(w, http.StatusCreated, c)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetCart")
	defer span.End()

	c, err := h.service.Get(ctx, chi.URLParam(r, "cartID"))
	if err != nil {
		httpapi.Error(w, h.log, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, c)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	cartID, productID := chi.URLParam(r, "cartID"), chi.URLParam(r, "productID")
	ctx, span := h.tracer.Start(r.Context(), "AddCartItem", trace.WithAttributes(
		attribute.String("cart_id", cartID),
		attribute.String("product_id", productID),
	))
	defer span.End()

	p, err := h.products.Get(ctx, productID)
	if err != nil {
		httpapi.Error(w, h.log, err)
		return
	}
	if !identity.CanAddToCart(identityhttp.FromContext(ctx), p.ID, p.Owner) {
		httpapi.Error(w, h.log, identity.ErrForbidden)
		return
	}

	c, err := h.service.AddItem(ctx, cartID, productID)
	if err != nil {
		httpapi.Error(w, h.log, err)
		return
	}
	if c == nil {
		httpapi.Message(w, http.StatusConflict, "no stock")
		return
	}
	httpapi.JSON(w, http.StatusOK, c)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RemoveCartItem")
	defer span.End()

	c, err := h.service.RemoveItem(ctx, chi.URLParam(r, "cartID"), chi.URLParam(r, "productID"))
	if err != nil {
		httpapi.Error(w, h.log, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, c)
}
