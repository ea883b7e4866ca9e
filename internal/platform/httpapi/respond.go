// Package httpapi holds the JSON response helpers shared by the storefront handlers.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	cart "github.com/dmehra2102/storefront/internal/cart/domain"
	catalog "github.com/dmehra2102/storefront/internal/catalog/domain"
	identity "github.com/dmehra2102/storefront/internal/identity/domain"
	ticket "github.com/dmehra2102/storefront/internal/ticket/domain"
	"github.com/dmehra2102/storefront/pkg/storage"
)

type errorBody struct {
	Error string `json:"error"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, errorBody{Error: msg})
}

// Error maps a domain error to its HTTP status. Unmapped errors are logged and
// reported as 500 without detail.
func Error(w http.ResponseWriter, log *slog.Logger, err error) {
	status := StatusOf(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "status", status, "err", err)
		Message(w, status, http.StatusText(status))
		return
	}
	Message(w, status, err.Error())
}

func StatusOf(err error) int {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, cart.ErrCartNotFound),
		errors.Is(err, ticket.ErrTicketNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrDuplicateCode),
		errors.Is(err, cart.ErrNotInCart):
		return http.StatusConflict
	case errors.Is(err, catalog.ErrInvalidInput),
		errors.Is(err, identity.ErrInvalidRole):
		return http.StatusBadRequest
	case errors.Is(err, identity.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, storage.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Decode reads a JSON request body, rejecting unknown fields.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", catalog.ErrInvalidInput, err)
	}
	return nil
}
