// internal/storage/postgres.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"multi-tenant-booking/internal/model"
)

type Storage struct {
	DB *sqlx.DB
}

func NewStorage(dsn string) (*Storage, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}
	return &Storage{DB: db}, nil
}

func (s *Storage) Close() error {
	return s.DB.Close()
}

func (s *Storage) Ping(ctx context.Context) error {
	if err := s.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w: %w", model.ErrStoreUnavailable, err)
	}
	return nil
}

// classify maps driver errors onto the model error taxonomy. Data exceptions
// (SQLSTATE class 22, e.g. an unparseable date), foreign key violations (staff
// unknown or owned by another client) and check violations are the caller's
// fault; everything else means the store could not serve the request.
func classify(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code.Class() == "22",
			pqErr.Code.Name() == "foreign_key_violation",
			pqErr.Code.Name() == "check_violation":
			return fmt.Errorf("%s: %w: %s", op, model.ErrValidation, pqErr.Message)
		}
	}
	return fmt.Errorf("%s: %w: %w", op, model.ErrStoreUnavailable, err)
}

const bookingColumns = `
	id, client_id, staff_id, name, email, service,
	to_char(bookings.date, 'YYYY-MM-DD') AS date,
	CASE WHEN extract(second FROM bookings.time) = 0
		THEN to_char(bookings.time, 'HH24:MI')
		ELSE bookings.time::text
	END AS time,
	status, created_at`

// InsertBooking appends a single booking and returns the persisted row.
func (s *Storage) InsertBooking(ctx context.Context, nb model.NewBooking) (*model.Booking, error) {
	query := `
		INSERT INTO bookings (client_id, staff_id, name, email, service, date, time)
		VALUES ($1, $2, $3, $4, $5, $6::date, $7::time)
		RETURNING` + bookingColumns

	var b model.Booking
	err := s.DB.QueryRowxContext(ctx, query,
		nb.ClientID, nb.StaffID, nb.Name, nb.Email, nb.Service, nb.Date, nb.Time,
	).StructScan(&b)
	if err != nil {
		return nil, classify("insert booking", err)
	}
	return &b, nil
}

// ListBookings returns every booking in scope, newest first. An invalid
// clientID selects the unscoped (single-tenant) rows.
func (s *Storage) ListBookings(ctx context.Context, clientID uuid.NullUUID) ([]model.Booking, error) {
	query := `
		SELECT` + bookingColumns + `
		FROM bookings
		WHERE client_id IS NOT DISTINCT FROM $1::uuid
		ORDER BY created_at DESC, id DESC`

	bookings := []model.Booking{}
	if err := s.DB.SelectContext(ctx, &bookings, query, clientID); err != nil {
		return nil, classify("list bookings", err)
	}
	return bookings, nil
}

// ClientBySubdomain looks up a tenant by subdomain label.
func (s *Storage) ClientBySubdomain(ctx context.Context, subdomain string) (*model.Client, error) {
	var c model.Client
	err := s.DB.GetContext(ctx, &c, `
		SELECT id, name, subdomain, logo_url, primary_color, created_at
		FROM clients
		WHERE subdomain = $1`, subdomain)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("client %q: %w", subdomain, model.ErrTenantNotFound)
	}
	if err != nil {
		return nil, classify("get client", err)
	}
	return &c, nil
}

// CreateClient inserts a tenant. Tenants are provisioned out-of-band; this is
// used by tooling and tests.
func (s *Storage) CreateClient(ctx context.Context, name, subdomain string) (*model.Client, error) {
	var c model.Client
	err := s.DB.QueryRowxContext(ctx, `
		INSERT INTO clients (id, name, subdomain)
		VALUES ($1, $2, $3)
		RETURNING id, name, subdomain, logo_url, primary_color, created_at`,
		uuid.New(), name, subdomain,
	).StructScan(&c)
	if err != nil {
		return nil, classify("create client", err)
	}
	return &c, nil
}

func (s *Storage) CreateStaff(ctx context.Context, clientID uuid.UUID, name string, role *string) (*model.Staff, error) {
	var st model.Staff
	err := s.DB.QueryRowxContext(ctx, `
		INSERT INTO staff (id, client_id, name, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, client_id, name, email, role, schedule::text AS schedule, created_at`,
		uuid.New(), clientID, name, role,
	).StructScan(&st)
	if err != nil {
		return nil, classify("create staff", err)
	}
	return &st, nil
}

func (s *Storage) ListStaff(ctx context.Context, clientID uuid.UUID) ([]model.Staff, error) {
	staff := []model.Staff{}
	err := s.DB.SelectContext(ctx, &staff, `
		SELECT id, client_id, name, email, role, schedule::text AS schedule, created_at
		FROM staff
		WHERE client_id = $1
		ORDER BY name`, clientID)
	if err != nil {
		return nil, classify("list staff", err)
	}
	return staff, nil
}
