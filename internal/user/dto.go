// AngelaMos | 2026
// dto.go

package user

import (
	"strings"
)

type ProjectInput struct {
	ProjectID   int64  `json:"project_id"   validate:"required,gt=0"`
	SupportType string `json:"support_type" validate:"required,max=100"`
}

type CreateUserRequest struct {
	Username string         `json:"username"  validate:"required,min=3,max=50"`
	FullName string         `json:"full_name" validate:"required,min=3,max=100"`
	Email    string         `json:"email"     validate:"required,email,max=255"`
	Mobile   string         `json:"mobile"    validate:"required,mobile"`
	Role     string         `json:"role"      validate:"required,user_role"`
	Password string         `json:"password"  validate:"required,min=6,max=128"`
	Projects []ProjectInput `json:"projects"  validate:"required,min=1,dive"`
}

// Normalize trims every text field and lowercases the email. The password
// is left as typed.
func (r *CreateUserRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = normalizeEmail(r.Email)
	r.Mobile = strings.TrimSpace(r.Mobile)
	r.Role = strings.TrimSpace(r.Role)
	for i := range r.Projects {
		r.Projects[i].SupportType = strings.TrimSpace(r.Projects[i].SupportType)
	}
}

// UpdateUserRequest carries only the fields to change. A nil field keeps
// its stored value; a nil Projects keeps the current assignments.
type UpdateUserRequest struct {
	Username *string        `json:"username,omitempty"  validate:"omitempty,min=3,max=50"`
	FullName *string        `json:"full_name,omitempty" validate:"omitempty,min=3,max=100"`
	Email    *string        `json:"email,omitempty"     validate:"omitempty,email,max=255"`
	Mobile   *string        `json:"mobile,omitempty"    validate:"omitempty,mobile"`
	Role     *string        `json:"role,omitempty"      validate:"omitempty,user_role"`
	Projects []ProjectInput `json:"projects,omitempty"  validate:"omitempty,min=1,dive"`
}

func (r *UpdateUserRequest) Normalize() {
	trimPtr(r.Username)
	trimPtr(r.FullName)
	trimPtr(r.Mobile)
	trimPtr(r.Role)
	if r.Email != nil {
		*r.Email = normalizeEmail(*r.Email)
	}
	for i := range r.Projects {
		r.Projects[i].SupportType = strings.TrimSpace(r.Projects[i].SupportType)
	}
}

// BootstrapAdminRequest creates the first Admin account, which has no
// project assignments.
type BootstrapAdminRequest struct {
	Username string `validate:"required,min=3,max=50"`
	FullName string `validate:"required,min=3,max=100"`
	Email    string `validate:"required,email,max=255"`
	Mobile   string `validate:"required,mobile"`
	Password string `validate:"required,min=6,max=128"`
}

type ListUsersParams struct {
	Search string
	Role   string
}

type AssignmentResponse struct {
	ProjectID   int64  `json:"project_id"`
	ProjectName string `json:"project_name"`
	SupportType string `json:"support_type"`
}

type UserDetail struct {
	UserID   int64                `json:"user_id"`
	Username string               `json:"username"`
	FullName string               `json:"full_name"`
	Email    string               `json:"email"`
	Mobile   string               `json:"mobile"`
	Role     string               `json:"role"`
	Projects []AssignmentResponse `json:"projects"`
}

type UserSummary struct {
	UserID   int64  `json:"user_id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type UpdatedUser struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	Role     string `json:"role"`
}

type CreateUserResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"userId"`
	Role    string `json:"role"`
}

type UserResponse struct {
	Message string     `json:"message"`
	User    UserDetail `json:"user"`
}

type UserListResponse struct {
	Message string        `json:"message"`
	Users   []UserSummary `json:"users"`
}

type UpdateUserResponse struct {
	Message string      `json:"message"`
	User    UpdatedUser `json:"user"`
}

type DeleteUserResponse struct {
	Message       string `json:"message"`
	DeletedUserID int64  `json:"deletedUserId"`
}

func ToUserDetail(u *User, assignments []Assignment) UserDetail {
	projects := make([]AssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		projects = append(projects, AssignmentResponse(a))
	}

	return UserDetail{
		UserID:   u.ID,
		Username: u.Username,
		FullName: u.FullName,
		Email:    u.Email,
		Mobile:   u.Mobile,
		Role:     u.Role,
		Projects: projects,
	}
}

func ToUpdatedUser(u *User) UpdatedUser {
	return UpdatedUser{
		UserID:   u.ID,
		Username: u.Username,
		FullName: u.FullName,
		Email:    u.Email,
		Mobile:   u.Mobile,
		Role:     u.Role,
	}
}

func ToUserSummaryList(users []User) []UserSummary {
	out := make([]UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, UserSummary{
			UserID:   u.ID,
			FullName: u.FullName,
			Email:    u.Email,
			Role:     u.Role,
		})
	}
	return out
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
