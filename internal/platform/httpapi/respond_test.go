package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cart "github.com/dmehra2102/storefront/internal/cart/domain"
	catalog "github.com/dmehra2102/storefront/internal/catalog/domain"
	identity "github.com/dmehra2102/storefront/internal/identity/domain"
	ticket "github.com/dmehra2102/storefront/internal/ticket/domain"
	"github.com/dmehra2102/storefront/pkg/logging"
	"github.com/dmehra2102/storefront/pkg/storage"
)

func TestStatusOf(t *testing.T) {
	cases := map[error]int{
		catalog.ErrProductNotFound:                  http.StatusNotFound,
		fmt.Errorf("get: %w", cart.ErrCartNotFound): http.StatusNotFound,
		ticket.ErrTicketNotFound:                    http.StatusNotFound,
		catalog.ErrDuplicateCode:                    http.StatusConflict,
		cart.ErrNotInCart:                           http.StatusConflict,
		catalog.ErrInvalidInput:                     http.StatusBadRequest,
		identity.ErrForbidden:                       http.StatusForbidden,
		fmt.Errorf("x: %w", storage.ErrUnavailable): http.StatusServiceUnavailable,
		errors.New("boom"):                          http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, StatusOf(err), err.Error())
	}
}

func TestErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, logging.Discard(), errors.New("pq: password authentication failed"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	Error(rec, logging.Discard(), catalog.ErrDuplicateCode)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"product code already exists"}`, rec.Body.String())
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a","extra":1}`))
	err := Decode(req, &v)
	require.Error(t, err)
	assert.ErrorIs(t, err, catalog.ErrInvalidInput)
}
