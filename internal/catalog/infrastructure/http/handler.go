package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/storefront/internal/catalog/application"
	"github.com/dmehra2102/storefront/internal/catalog/domain"
	identity "github.com/dmehra2102/storefront/internal/identity/domain"
	identityhttp "github.com/dmehra2102/storefront/internal/identity/infrastructure/http"
	"github.com/dmehra2102/storefront/internal/platform/httpapi"
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
		tracer:  otel.Tracer("catalog-http"),
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/products", h.list)
	r.Post("/products", h.create)
	r.Get("/products/{productID}", h.get)
	r.Patch("/products/{productID}", h.update)
	r.Delete("/products/{productID}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListProducts")
	defer span.End()

	page, err := queryInt(r, "page")
	if err != nil {
		httpapi.Error(w, h.log, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		httpapi.Error(w, h.log, err)
		return
	}
	res, err := h.service.List(ctx, page, limit)
	if err != nil {
		httpapi.Error(w, h.log, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, res)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateProduct")
	defer span.End()

	caller := identityhttp.FromContext(ctx)
	if !identity.CanManageProducts(caller) {
		httpapi.Error(w, h.log, identity.ErrForbidden)
		return
	}

	var req domain.NewProduct
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.Error(w, h.log, err)
		return
	}
	// Sellers always list under their own identity.
	if req.Owner == "" || caller.Role == identity.RoleSeller {
		req.Owner = caller.ID
	}

	p, err := h.service.Create(ctx, req)
	if err != nil {
		httpapi.Error(w, h.log, err)
		return
	}
	span.SetAttributes(attribute.String("product_id", p.ID))
	httpapi.JSON(w, http.StatusCreated, p)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetProduct")
	defer span.End()

	p, err := h.service.Get(ctx, chi.URLParam(r, "productID"))
	if err != nil {
		httpapi.Error(w, h.log, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, p)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateProduct")
	defer span.End()

	id := chi.URLParam(r, "productID")
	if err := h.authorize(r, id); err != nil {
		httpapi.Error(w, h.log, err)
		return
	}

	var patch domain.ProductPatch
	if err := httpapi.Decode(r, &patch); err != nil {
		httpapi.Error(w, h.log, err)
		return
	}
	p, err := h.service.Update(ctx, id, patch)
	if err != nil {
		httpapi.Error(w, h.log, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, p)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DeleteProduct")
	defer span.End()

	id := chi.URLParam(r, "productID")
	if err := h.authorize(r, id); err != nil {
		httpapi.Error(w, h.log, err)
		return
	}
	if _, err := h.service.Delete(ctx, id); err != nil {
		httpapi.Error(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) authorize(r *http.Request, productID string) error {
	p, err := h.service.Get(r.Context(), productID)
	if err != nil {
		return err
	}
	if !identity.CanModifyProduct(identityhttp.FromContext(r.Context()), p.ID, p.Owner) {
		return identity.ErrForbidden
	}
	return nil
}

func queryInt(r *http.Request, key string) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, domain.ErrInvalidInput
	}
	return n, nil
}
