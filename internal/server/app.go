package server

import (
	"log/slog"
	"net/http"

	cartapp "github.com/dmehra2102/storefront/internal/cart/application"
	carthttp "github.com/dmehra2102/storefront/internal/cart/infrastructure/http"
	catalogapp "github.com/dmehra2102/storefront/internal/catalog/application"
	cataloghttp "github.com/dmehra2102/storefront/internal/catalog/infrastructure/http"
	checkoutapp "github.com/dmehra2102/storefront/internal/checkout/application"
	checkouthttp "github.com/dmehra2102/storefront/internal/checkout/infrastructure/http"
	notificationapp "github.com/dmehra2102/storefront/internal/notification/application"
	ticketapp "github.com/dmehra2102/storefront/internal/ticket/application"
	tickethttp "github.com/dmehra2102/storefront/internal/ticket/infrastructure/http"
)

// Stores are the persistence adapters of one driver (postgres or memory).
type Stores struct {
	Products catalogapp.ProductRepository
	Carts    cartapp.CartRepository
	Tickets  ticketapp.TicketRepository
}

type Deps struct {
	Log              *slog.Logger
	Stores           Stores
	Sink             notificationapp.Sink
	Observer         checkoutapp.Observer
	DefaultPageLimit int
	// Replay wraps the checkout endpoint with Idempotency-Key handling; optional.
	Replay func(http.Handler) http.Handler
}

type App struct {
	Catalog  *catalogapp.Service
	Carts    *cartapp.Service
	Tickets  *ticketapp.Service
	Checkout *checkoutapp.Service
	Handlers []Routes
}

func NewApp(d Deps) *App {
	publisher := notificationapp.NewPublisher(d.Sink)

	catalog := catalogapp.NewService(d.Log, d.Stores.Products, publisher, d.DefaultPageLimit)
	carts := cartapp.NewService(d.Log, d.Stores.Carts, catalog)
	tickets := ticketapp.NewService(d.Log, d.Stores.Tickets)
	checkout := checkoutapp.NewService(d.Log, carts, catalog, tickets, publisher, d.Observer)

	return &App{
		Catalog:  catalog,
		Carts:    carts,
		Tickets:  tickets,
		Checkout: checkout,
		Handlers: []Routes{
			cataloghttp.NewHandler(d.Log, catalog),
			carthttp.NewHandler(d.Log, carts, catalog),
			checkouthttp.NewHandler(d.Log, checkout, d.Replay),
			tickethttp.NewHandler(d.Log, tickets),
		},
	}
}
