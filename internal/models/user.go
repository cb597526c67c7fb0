package models

import "time"

// UserRole represents the available roles.
type UserRole string

const (
	RoleUser    UserRole = "USER"
	RoleManager UserRole = "MANAGER"
	RoleAdmin   UserRole = "ADMIN"
)

// User represents an application user stored in the users table.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Name         string    `db:"name" json:"name"`
	Image        *string   `db:"image" json:"image,omitempty"`
	Role         UserRole  `db:"role" json:"role"`
	SchoolID     *string   `db:"school_id" json:"schoolId"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// Principal is the resolved identity attached to every authenticated
// request: who is calling, with which role, in which school. It is loaded
// fresh from the users table so role and school changes take effect on the
// next request.
type Principal struct {
	ID       string
	Role     UserRole
	SchoolID *string
}

// HasSchool reports whether the principal belongs to a school.
func (p *Principal) HasSchool() bool {
	return p != nil && p.SchoolID != nil && *p.SchoolID != ""
}
