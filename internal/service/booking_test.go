package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multi-tenant-booking/internal/model"
	"multi-tenant-booking/internal/notify"
)

// memStore mimics the Postgres store: serial ids, creation timestamps, newest-first listing.
type memStore struct {
	mu      sync.Mutex
	rows    []model.Booking
	inserts int
	err     error
	clock   time.Time
}

func (m *memStore) InsertBooking(_ context.Context, nb model.NewBooking) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.inserts++
	m.clock = m.clock.Add(time.Second)
	b := model.Booking{
		ID:        int64(len(m.rows) + 1),
		ClientID:  nb.ClientID,
		StaffID:   nb.StaffID,
		Name:      nb.Name,
		Email:     nb.Email,
		Service:   nb.Service,
		Date:      nb.Date,
		Time:      nb.Time,
		Status:    model.StatusPending,
		CreatedAt: m.clock,
	}
	m.rows = append(m.rows, b)
	return &b, nil
}

func (m *memStore) ListBookings(_ context.Context, clientID uuid.NullUUID) ([]model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []model.Booking{}
	for i := len(m.rows) - 1; i >= 0; i-- {
		if m.rows[i].ClientID == clientID {
			out = append(out, m.rows[i])
		}
	}
	return out, nil
}

type recordingNotifier struct {
	topics   []string
	payloads [][]byte
	err      error
}

func (n *recordingNotifier) Publish(_ context.Context, topic string, payload []byte) error {
	n.topics = append(n.topics, topic)
	n.payloads = append(n.payloads, payload)
	return n.err
}

func validRequest() SubmitRequest {
	return SubmitRequest{Name: "Ada", Email: "ada@example.com", Date: "2024-05-01", Time: "10:00"}
}

func TestSubmitSingleTenant(t *testing.T) {
	store := &memStore{}
	n := &recordingNotifier{}
	svc := NewBookingService(store, n, false)

	b, err := svc.Submit(context.Background(), nil, validRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(1), b.ID)
	assert.Equal(t, model.StatusPending, b.Status)
	assert.False(t, b.ClientID.Valid)

	list, err := svc.List(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)

	require.Equal(t, []string{notify.GlobalTopic}, n.topics)
	var ev model.BookingEvent
	require.NoError(t, json.Unmarshal(n.payloads[0], &ev))
	assert.Equal(t, model.BookingEvent{ID: 1, Name: "Ada", Email: "ada@example.com", Date: "2024-05-01", Time: "10:00"}, ev)
}

func TestSubmitTrimsFields(t *testing.T) {
	store := &memStore{}
	svc := NewBookingService(store, nil, false)

	b, err := svc.Submit(context.Background(), nil, SubmitRequest{
		Name: "  Ada ", Email: " ada@example.com", Date: "2024-05-01 ", Time: "\t10:00", Service: "  haircut ",
	})
	require.NoError(t, err)

	assert.Equal(t, "Ada", b.Name)
	assert.Equal(t, "ada@example.com", b.Email)
	assert.Equal(t, "10:00", b.Time)
	require.NotNil(t, b.Service)
	assert.Equal(t, "haircut", *b.Service)
}

func TestSubmitIdentifiersStrictlyIncrease(t *testing.T) {
	svc := NewBookingService(&memStore{}, nil, false)

	var last int64
	for i := 0; i < 5; i++ {
		b, err := svc.Submit(context.Background(), nil, validRequest())
		require.NoError(t, err)
		assert.Greater(t, b.ID, last)
		last = b.ID
	}
}

func TestSubmitMissingFieldsWritesNothing(t *testing.T) {
	blank := func(mut func(r *SubmitRequest)) SubmitRequest {
		r := validRequest()
		mut(&r)
		return r
	}
	cases := map[string]SubmitRequest{
		"name":  blank(func(r *SubmitRequest) { r.Name = "" }),
		"email": blank(func(r *SubmitRequest) { r.Email = "   " }),
		"date":  blank(func(r *SubmitRequest) { r.Date = "\t" }),
		"time":  blank(func(r *SubmitRequest) { r.Time = "" }),
		"all":   {},
	}

	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			store := &memStore{}
			n := &recordingNotifier{}
			svc := NewBookingService(store, n, false)

			b, err := svc.Submit(context.Background(), nil, req)
			assert.Nil(t, b)
			assert.ErrorIs(t, err, model.ErrValidation)
			assert.ErrorIs(t, err, model.ErrMissingField)
			assert.Zero(t, store.inserts)
			assert.Empty(t, n.topics)
		})
	}
}

func TestSubmitRejectsMalformedStaffID(t *testing.T) {
	store := &memStore{}
	svc := NewBookingService(store, nil, false)

	req := validRequest()
	req.StaffID = "not-a-uuid"
	_, err := svc.Submit(context.Background(), nil, req)

	assert.ErrorIs(t, err, model.ErrValidation)
	assert.Zero(t, store.inserts)
}

func TestSubmitRejectsStaffWithoutTenant(t *testing.T) {
	store := &memStore{}
	svc := NewBookingService(store, nil, false)

	req := validRequest()
	req.StaffID = uuid.NewString()
	_, err := svc.Submit(context.Background(), nil, req)

	assert.ErrorIs(t, err, model.ErrValidation)
	assert.NotErrorIs(t, err, model.ErrMissingField)
	assert.Zero(t, store.inserts)
}

func TestSubmitPassesStaffScopedToTenant(t *testing.T) {
	store := &memStore{}
	svc := NewBookingService(store, nil, true)
	acme := &model.Client{ID: uuid.New()}
	staffID := uuid.New()

	req := validRequest()
	req.StaffID = " " + staffID.String() + " "
	b, err := svc.Submit(context.Background(), acme, req)
	require.NoError(t, err)

	assert.Equal(t, uuid.NullUUID{UUID: staffID, Valid: true}, b.StaffID)
	assert.Equal(t, uuid.NullUUID{UUID: acme.ID, Valid: true}, b.ClientID)
}

func TestSubmitMultiTenantRequiresTenant(t *testing.T) {
	store := &memStore{}
	svc := NewBookingService(store, &recordingNotifier{}, true)

	_, err := svc.Submit(context.Background(), nil, validRequest())
	assert.ErrorIs(t, err, model.ErrTenantNotFound)
	assert.Zero(t, store.inserts)

	_, err = svc.List(context.Background(), nil)
	assert.ErrorIs(t, err, model.ErrTenantNotFound)
}

func TestSubmitValidationCheckedBeforeTenant(t *testing.T) {
	svc := NewBookingService(&memStore{}, nil, true)

	_, err := svc.Submit(context.Background(), nil, SubmitRequest{})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestTenantIsolationAndOrdering(t *testing.T) {
	store := &memStore{}
	n := &recordingNotifier{}
	svc := NewBookingService(store, n, true)
	acme := &model.Client{ID: uuid.New(), Subdomain: "acme"}
	globex := &model.Client{ID: uuid.New(), Subdomain: "globex"}

	a, err := svc.Submit(context.Background(), acme, validRequest())
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), globex, validRequest())
	require.NoError(t, err)
	b, err := svc.Submit(context.Background(), acme, validRequest())
	require.NoError(t, err)

	list, err := svc.List(context.Background(), acme)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)
	assert.Equal(t, a.ID, list[1].ID)
	for _, row := range list {
		assert.Equal(t, acme.ID, row.ClientID.UUID)
	}

	assert.Equal(t, []string{notify.TopicFor(acme), notify.TopicFor(globex), notify.TopicFor(acme)}, n.topics)
}

func TestSubmitPublishFailureStillSucceeds(t *testing.T) {
	store := &memStore{}
	svc := NewBookingService(store, &recordingNotifier{err: errors.New("broker down")}, false)

	b, err := svc.Submit(context.Background(), nil, validRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(1), b.ID)
	assert.Equal(t, 1, store.inserts)
}

func TestSubmitPropagatesStoreError(t *testing.T) {
	storeErr := fmt.Errorf("insert booking: %w: %w", model.ErrStoreUnavailable, errors.New("connection refused"))
	n := &recordingNotifier{}
	svc := NewBookingService(&memStore{err: storeErr}, n, false)

	_, err := svc.Submit(context.Background(), nil, validRequest())
	assert.ErrorIs(t, err, model.ErrStoreUnavailable)
	assert.Empty(t, n.topics)
}

func TestSubmitPublishesToLiveHub(t *testing.T) {
	hub := notify.NewHub(4)
	acme := &model.Client{ID: uuid.New()}
	sub := hub.Subscribe(notify.TopicFor(acme))
	defer sub.Close()

	svc := NewBookingService(&memStore{}, hub, true)
	req := validRequest()
	req.Service = "massage"
	_, err := svc.Submit(context.Background(), acme, req)
	require.NoError(t, err)

	select {
	case payload := <-sub.C:
		assert.JSONEq(t, `{"id":1,"name":"Ada","email":"ada@example.com","service":"massage","date":"2024-05-01","time":"10:00"}`, string(payload))
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
}
