// internal/model/tenant.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// Client is a tenant, addressed by its subdomain.
type Client struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Subdomain    string    `db:"subdomain" json:"subdomain"`
	LogoURL      *string   `db:"logo_url" json:"logo_url,omitempty"`
	PrimaryColor *string   `db:"primary_color" json:"primary_color,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type Staff struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ClientID  uuid.UUID `db:"client_id" json:"client_id"`
	Name      string    `db:"name" json:"name"`
	Email     *string   `db:"email" json:"email,omitempty"`
	Role      *string   `db:"role" json:"role,omitempty"`
	Schedule  string    `db:"schedule" json:"schedule"` // raw JSON, shape not enforced
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
