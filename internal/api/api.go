package api

import (
	"context"
	"embed"
	"html/template"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"multi-tenant-booking/internal/model"
	"multi-tenant-booking/internal/notify"
	"multi-tenant-booking/internal/service"
	"multi-tenant-booking/internal/session"
	"multi-tenant-booking/internal/tenant"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Store is the slice of the datastore the handlers use directly.
type Store interface {
	ListStaff(ctx context.Context, clientID uuid.UUID) ([]model.Staff, error)
	Ping(ctx context.Context) error
}

type API struct {
	Service  *service.BookingService
	Storage  Store
	Resolver *tenant.Resolver // nil in single-tenant mode
	Hub      *notify.Hub
	Flash    *session.Flasher
	Routers  chi.Router
}

func NewAPI(svc *service.BookingService, db Store, resolver *tenant.Resolver, hub *notify.Hub, flash *session.Flasher) *API {
	return &API{
		Service:  svc,
		Storage:  db,
		Resolver: resolver,
		Hub:      hub,
		Flash:    flash,
		Routers:  chi.NewRouter(),
	}
}
