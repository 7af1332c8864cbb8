package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRole represents user role type
type UserRole string

const (
	RoleRider  UserRole = "rider"
	RoleDriver UserRole = "driver"
)

// User is the actor contract consumed from the identity service. Account
// state flags are checked by the auth middleware before any ride operation
// is reached.
type User struct {
	ID          uuid.UUID `json:"id" db:"id"`
	PhoneNumber string    `json:"phone_number" db:"phone_number"`
	FirstName   string    `json:"first_name" db:"first_name"`
	LastName    string    `json:"last_name" db:"last_name"`
	Role        UserRole  `json:"role" db:"role"`
	CountryCode string    `json:"country_code" db:"country_code"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	IsVerified  bool      `json:"is_verified" db:"is_verified"`
	IsSuspended bool      `json:"is_suspended" db:"is_suspended"`
	IsDeleted   bool      `json:"is_deleted" db:"is_deleted"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Actor identifies the authenticated party acting on a ride.
type Actor struct {
	ID          uuid.UUID
	Role        UserRole
	CountryCode string
}
