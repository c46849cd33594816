package models

import "time"

// User defines the user model based on the 'users' table
type User struct {
	ID            int64    `json:"id" db:"id"`
	Email         string   `json:"email" db:"email"`
	Password      string   `json:"-" db:"password"`
	FirstName     string   `json:"firstName" db:"first_name"`
	LastName      string   `json:"lastName" db:"last_name"`
	RoleType      RoleType `json:"roleType" db:"role_type"`
	StudentNumber *string  `json:"studentNumber,omitempty" db:"student_number"` // nil for advisors and admins
	Department    *string  `json:"department,omitempty" db:"department"`
	IsActive      bool     `json:"isActive" db:"is_active"`
	EmailVerified bool     `json:"emailVerified" db:"email_verified"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// IsStudent reports whether the user holds the student role.
func (u *User) IsStudent() bool {
	return u.RoleType == RoleStudent
}

// IsAdvisor reports whether the user holds the advisor role.
func (u *User) IsAdvisor() bool {
	return u.RoleType == RoleAdvisor
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.RoleType == RoleAdmin
}
