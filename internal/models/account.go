// Package models contains the domain structures shared by the service,
// storage and HTTP layers: accounts, payments and subscriptions.
package models

import "time"

// Roles an account may carry. Guests are synthesized throwaway accounts,
// admins may act on any resource.
const (
	RoleCoach = "coach"
	RoleGuest = "guest"
	RoleAdmin = "admin"
)

// Account is a registered identity: a coach, a guest or an admin.
// PasswordHash and the reset ticket fields never leave the server.
type Account struct {
	UID           string     `json:"uid"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	PasswordHash  string     `json:"-"`
	Role          string     `json:"role"`
	Plan          string     `json:"plan"`
	PlanStartsAt  *time.Time `json:"plan_starts_at,omitempty"`
	PlanEndsAt    *time.Time `json:"plan_ends_at,omitempty"`
	Location      string     `json:"location,omitempty"`
	Photo         string     `json:"photo,omitempty"`
	Sport         string     `json:"sport,omitempty"`
	SportSelected bool       `json:"sport_selected"`
	IsGuest       bool       `json:"is_guest"`

	// Reset ticket: only the SHA-256 hash of the code is stored, valid
	// while now < ResetExpires and cleared after one successful use.
	ResetTokenHash string     `json:"-"`
	ResetExpires   *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
}
