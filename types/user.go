package types

import "time"

// Role is the authorization level carried in tokens and identity headers.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// UserType distinguishes the kind of account an applicant registered as.
type UserType string

const (
	UserTypeStudent UserType = "STUDENT"
	UserTypeStartup UserType = "STARTUP"
	UserTypeAdmin   UserType = "ADMIN"
)

// User represents an account in the identity service.
// It contains identity, role, and audit metadata.
type User struct {
	// ID is the unique identifier of the user. It is opaque and stable.
	ID string `json:"id" db:"id"`

	// Email is the user's email address. Comparison is case-insensitive.
	Email string `json:"email" db:"email"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// Role indicates the user's authorization level ("USER" or "ADMIN").
	Role Role `json:"role" db:"role"`

	// UserType is the kind of account ("STUDENT", "STARTUP", "ADMIN").
	UserType UserType `json:"userType" db:"user_type"`

	// FullName is the display name for student accounts.
	FullName string `json:"fullName,omitempty" db:"full_name"`

	// CompanyName is the display name for startup accounts.
	CompanyName string `json:"companyName,omitempty" db:"company_name"`

	// EmailVerified reports whether the address has been confirmed.
	EmailVerified bool `json:"emailVerified" db:"email_verified"`

	// AccountEnabled gates login; a disabled account cannot authenticate.
	AccountEnabled bool `json:"accountEnabled" db:"account_enabled"`

	// AccountLocked gates login; a locked account cannot authenticate.
	AccountLocked bool `json:"accountLocked" db:"account_locked"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the account.
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// LastLoginAt is the timestamp of the most recent successful login.
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
}
