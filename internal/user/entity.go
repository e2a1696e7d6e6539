// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

type User struct {
	ID           int64     `db:"user_id"`
	Username     string    `db:"username"`
	FullName     string    `db:"full_name"`
	Email        string    `db:"email"`
	Mobile       string    `db:"mobile"`
	Role         string    `db:"role"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Assignment links a user to a project with the kind of support they give.
type Assignment struct {
	ProjectID   int64  `db:"project_id"`
	ProjectName string `db:"project_name"`
	SupportType string `db:"support_type"`
}

const (
	RoleAdmin           = "Admin"
	RoleDeveloper       = "Developer"
	RoleTester          = "Tester"
	RoleCustomerSupport = "Customer Support"
)

var Roles = []string{
	RoleAdmin,
	RoleDeveloper,
	RoleTester,
	RoleCustomerSupport,
}

func IsValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}
