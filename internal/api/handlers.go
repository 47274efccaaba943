package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "multi-tenant-booking/docs" // registers the swagger spec
	"multi-tenant-booking/internal/metrics"
	"multi-tenant-booking/internal/model"
	"multi-tenant-booking/internal/notify"
	"multi-tenant-booking/internal/service"
	"multi-tenant-booking/internal/tenant"
)

const (
	msgSaved   = "Booking saved. Thank you!"
	msgMissing = "Please fill in all fields."
	msgInvalid = "Please check the date, time and staff member."
)

func (a *API) Router() http.Handler {
	a.Routers.Use(middleware.RequestID)
	a.Routers.Use(middleware.RealIP)
	a.Routers.Use(middleware.Logger)
	a.Routers.Use(middleware.Recoverer)

	// Infrastructure
	a.Routers.Get("/healthz", a.Health)
	a.Routers.Handle("/metrics", metrics.Handler())
	a.Routers.Get("/swagger/*", httpSwagger.WrapHandler)

	// Tenant scoped
	a.Routers.Group(func(r chi.Router) {
		if a.Resolver != nil {
			r.Use(a.Resolver.Middleware)
		}

		r.Get("/", a.Index)
		r.Post("/", a.SubmitForm)
		r.Get("/bookings", a.BookingsPage)
		r.Get("/dashboard", a.Dashboard)
		r.Get("/ws", a.Subscribe)

		r.Get("/api/bookings", a.ListBookings)
		r.Post("/api/bookings", a.CreateBooking)
	})

	return a.Routers
}

type formPage struct {
	Client *model.Client
	Staff  []model.Staff
	Flash  string
	Form   service.SubmitRequest
}

func (a *API) renderForm(w http.ResponseWriter, r *http.Request, status int, page formPage) {
	page.Client = tenant.FromContext(r.Context())
	if page.Client != nil {
		staff, err := a.Storage.ListStaff(r.Context(), page.Client.ID)
		if err != nil {
			log.Printf("API: list staff for %s: %v", page.Client.Subdomain, err)
			http.Error(w, "service unavailable", http.StatusInternalServerError)
			return
		}
		page.Staff = staff
	}
	render(w, status, "index.html", page)
}

func (a *API) Index(w http.ResponseWriter, r *http.Request) {
	a.renderForm(w, r, http.StatusOK, formPage{Flash: a.Flash.Pop(w, r)})
}

func (a *API) SubmitForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	req := service.SubmitRequest{
		Name:    r.PostFormValue("name"),
		Email:   r.PostFormValue("email"),
		Service: r.PostFormValue("service"),
		Date:    r.PostFormValue("date"),
		Time:    r.PostFormValue("time"),
		StaffID: r.PostFormValue("staff_id"),
	}

	_, err := a.Service.Submit(r.Context(), tenant.FromContext(r.Context()), req)
	switch {
	case errors.Is(err, model.ErrMissingField):
		a.renderForm(w, r, http.StatusBadRequest, formPage{Flash: msgMissing, Form: req})
		return
	case errors.Is(err, model.ErrValidation):
		a.renderForm(w, r, http.StatusBadRequest, formPage{Flash: msgInvalid, Form: req})
		return
	case err != nil:
		httpError(w, err)
		return
	}

	if err := a.Flash.Set(w, msgSaved); err != nil {
		log.Printf("API: set flash: %v", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type listPage struct {
	Client   *model.Client
	Bookings []model.Booking
}

func (a *API) BookingsPage(w http.ResponseWriter, r *http.Request) {
	client := tenant.FromContext(r.Context())
	bookings, err := a.Service.List(r.Context(), client)
	if err != nil {
		httpError(w, err)
		return
	}
	render(w, http.StatusOK, "bookings.html", listPage{Client: client, Bookings: bookings})
}

func (a *API) Dashboard(w http.ResponseWriter, r *http.Request) {
	client := tenant.FromContext(r.Context())
	bookings, err := a.Service.List(r.Context(), client)
	if err != nil {
		httpError(w, err)
		return
	}
	render(w, http.StatusOK, "dashboard.html", listPage{Client: client, Bookings: bookings})
}

// Subscribe streams booking-created events for the current tenant over a websocket.
func (a *API) Subscribe(w http.ResponseWriter, r *http.Request) {
	a.Hub.ServeWS(w, r, notify.TopicFor(tenant.FromContext(r.Context())))
}

// @Summary List bookings
// @Description Full booking history of the tenant resolved from the host, newest first
// @Tags Bookings
// @Produce json
// @Success 200 {array} model.Booking
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/bookings [get]
func (a *API) ListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := a.Service.List(r.Context(), tenant.FromContext(r.Context()))
	if err != nil {
		jsonError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

// @Summary Create a booking
// @Tags Bookings
// @Accept json
// @Produce json
// @Param body body service.SubmitRequest true "Booking fields"
// @Success 201 {object} model.Booking
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/bookings [post]
func (a *API) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var body service.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad request body"})
		return
	}

	b, err := a.Service.Submit(r.Context(), tenant.FromContext(r.Context()), body)
	if err != nil {
		jsonError(w, err)
		return
	}

	log.Printf("API: Created booking %d", b.ID)
	writeJSON(w, http.StatusCreated, b)
}

// @Summary Health check
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /healthz [get]
func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	if err := a.Storage.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrTenantNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func publicMessage(err error, status int) string {
	if status == http.StatusInternalServerError {
		log.Printf("API: %v", err)
		return "service unavailable"
	}
	return err.Error()
}

func httpError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	http.Error(w, publicMessage(err, status), status)
}

func jsonError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	writeJSON(w, status, map[string]string{"error": publicMessage(err, status)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("API: encode response: %v", err)
	}
}

func render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("API: render %s: %v", name, err)
	}
}
