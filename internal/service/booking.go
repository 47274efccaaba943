// Package service holds the booking workflow: validate, persist, notify.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"multi-tenant-booking/internal/metrics"
	"multi-tenant-booking/internal/model"
	"multi-tenant-booking/internal/notify"
)

type BookingStore interface {
	InsertBooking(ctx context.Context, nb model.NewBooking) (*model.Booking, error)
	ListBookings(ctx context.Context, clientID uuid.NullUUID) ([]model.Booking, error)
}

// Notifier delivers a serialized event to a topic's subscribers.
type Notifier interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// SubmitRequest carries the raw, untrimmed fields of a booking form or JSON body.
type SubmitRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Service string `json:"service"`
	Date    string `json:"date"`
	Time    string `json:"time"`
	StaffID string `json:"staff_id"`
}

type BookingService struct {
	store         BookingStore
	notifier      Notifier
	requireTenant bool
}

// NewBookingService builds the service. With requireTenant set, every call must
// carry a resolved client.
func NewBookingService(store BookingStore, notifier Notifier, requireTenant bool) *BookingService {
	return &BookingService{
		store:         store,
		notifier:      notifier,
		requireTenant: requireTenant,
	}
}

func (s *BookingService) validate(tenant *model.Client, req SubmitRequest) (model.NewBooking, error) {
	nb := model.NewBooking{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
		Date:  strings.TrimSpace(req.Date),
		Time:  strings.TrimSpace(req.Time),
	}
	if nb.Name == "" || nb.Email == "" || nb.Date == "" || nb.Time == "" {
		return nb, model.ErrMissingField
	}

	if err := s.checkTenant(tenant); err != nil {
		return nb, err
	}
	if tenant != nil {
		nb.ClientID = uuid.NullUUID{UUID: tenant.ID, Valid: true}
	}

	if svc := strings.TrimSpace(req.Service); svc != "" {
		nb.Service = &svc
	}
	if raw := strings.TrimSpace(req.StaffID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nb, fmt.Errorf("staff id %q: %w", raw, model.ErrValidation)
		}
		// Staff always belong to a client; unscoped bookings cannot name one.
		if tenant == nil {
			return nb, fmt.Errorf("staff id %q without tenant: %w", raw, model.ErrValidation)
		}
		nb.StaffID = uuid.NullUUID{UUID: id, Valid: true}
	}
	return nb, nil
}

func (s *BookingService) checkTenant(tenant *model.Client) error {
	if s.requireTenant && tenant == nil {
		return model.ErrTenantNotFound
	}
	return nil
}

// Submit validates and persists a booking, then publishes it to the tenant's
// dashboard topic. A failed publish never fails the call: the booking is
// already committed.
func (s *BookingService) Submit(ctx context.Context, tenant *model.Client, req SubmitRequest) (*model.Booking, error) {
	nb, err := s.validate(tenant, req)
	if err != nil {
		metrics.BookingsRejected.WithLabelValues(reason(err)).Inc()
		return nil, err
	}

	b, err := s.store.InsertBooking(ctx, nb)
	if err != nil {
		metrics.BookingsRejected.WithLabelValues(reason(err)).Inc()
		return nil, err
	}
	topic := notify.TopicFor(tenant)
	metrics.BookingsCreated.WithLabelValues(topic).Inc()

	s.publish(ctx, topic, b)
	return b, nil
}

func (s *BookingService) publish(ctx context.Context, topic string, b *model.Booking) {
	if s.notifier == nil {
		return
	}
	payload, err := json.Marshal(b.Event())
	if err == nil {
		err = s.notifier.Publish(ctx, topic, payload)
	}
	if err != nil {
		metrics.NotificationsPublished.WithLabelValues("failed").Inc()
		log.Printf("[Booking] Notify %s for booking %d failed: %v", topic, b.ID, err)
		return
	}
	metrics.NotificationsPublished.WithLabelValues("ok").Inc()
}

// List returns the tenant's bookings, newest first.
func (s *BookingService) List(ctx context.Context, tenant *model.Client) ([]model.Booking, error) {
	if err := s.checkTenant(tenant); err != nil {
		return nil, err
	}
	var scope uuid.NullUUID
	if tenant != nil {
		scope = uuid.NullUUID{UUID: tenant.ID, Valid: true}
	}
	return s.store.ListBookings(ctx, scope)
}

func reason(err error) string {
	switch {
	case errors.Is(err, model.ErrValidation):
		return "validation"
	case errors.Is(err, model.ErrTenantNotFound):
		return "tenant_not_found"
	default:
		return "store"
	}
}
