package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	Email         string     `json:"email" db:"email"`
	FirstName     *string    `json:"first_name,omitempty" db:"first_name"`
	LastName      *string    `json:"last_name,omitempty" db:"last_name"`
	Role          Role       `json:"role" db:"role"`
	PasswordHash  string     `json:"-" db:"password_hash"` // наружу не отдаётся никогда
	EmailVerified bool       `json:"email_verified" db:"email_verified"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

type Role string

const RoleUser Role = "user"
const RoleAdmin Role = "admin"

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}
