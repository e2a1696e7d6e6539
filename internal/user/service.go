// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/templates/admin-console/internal/auth"
	"github.com/carterperez-dev/templates/admin-console/internal/core"
	"github.com/carterperez-dev/templates/admin-console/internal/middleware"
)

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:     repo,
		validate: NewValidator(),
	}
}

// NewValidator extends the shared validator with the user_role tag.
func NewValidator() *validator.Validate {
	v := core.NewValidator()
	//nolint:errcheck // tag name and func are static
	_ = v.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		return IsValidRole(fl.Field().String())
	})
	return v
}

func (s *Service) CreateUser(
	ctx context.Context,
	req CreateUserRequest,
) (*User, error) {
	req.Normalize()

	if err := s.validate.Struct(req); err != nil {
		return nil, core.ValidationError(core.ValidationMessages(err))
	}

	if err := checkDuplicateProjects(req.Projects); err != nil {
		return nil, err
	}

	conflicts, err := s.repo.FindConflicts(ctx, req.Username, req.Email, 0)
	if err != nil {
		return nil, err
	}
	if conflicts.Any() {
		return nil, core.ConflictError(conflictMessages(conflicts, "already exists"))
	}

	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		Username:     req.Username,
		FullName:     req.FullName,
		Email:        req.Email,
		Mobile:       req.Mobile,
		Role:         req.Role,
		PasswordHash: passwordHash,
	}

	if err := s.repo.CreateWithProjects(ctx, user, req.Projects); err != nil {
		return nil, writeConflict(err, "already exists")
	}

	core.AddSpanEvent(ctx, "user.created",
		attribute.Int64("user.id", user.ID),
		attribute.String("user.role", user.Role),
		attribute.Int("user.projects", len(req.Projects)),
	)

	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (*UserDetail, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	assignments, err := s.repo.GetAssignments(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := ToUserDetail(user, assignments)
	return &detail, nil
}

// GetProfile returns requestedID for Admins and the caller's own record
// for everyone else, whatever id they asked for.
func (s *Service) GetProfile(
	ctx context.Context,
	caller *middleware.AccessTokenClaims,
	requestedID int64,
) (*UserDetail, error) {
	if caller == nil {
		return nil, fmt.Errorf("get profile: %w", core.ErrUnauthorized)
	}

	id := requestedID
	if caller.Role != RoleAdmin {
		id = caller.UserID
	}

	return s.GetUser(ctx, id)
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, error) {
	if params.Role != "" && !IsValidRole(params.Role) {
		return nil, core.ValidationError([]string{
			"role must be Admin, Developer, Tester, or Customer Support",
		})
	}

	return s.repo.List(ctx, params)
}

func (s *Service) UpdateUser(
	ctx context.Context,
	id int64,
	req UpdateUserRequest,
) (*User, error) {
	req.Normalize()

	if err := s.validate.Struct(req); err != nil {
		return nil, core.ValidationError(core.ValidationMessages(err))
	}

	if err := checkDuplicateProjects(req.Projects); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	conflicts, err := s.repo.FindConflicts(
		ctx,
		deref(req.Username),
		deref(req.Email),
		id,
	)
	if err != nil {
		return nil, err
	}
	if conflicts.Any() {
		return nil, core.ConflictError(
			conflictMessages(conflicts, "already in use by another user"),
		)
	}

	updated, err := s.repo.Update(ctx, id, Changes{
		Username: req.Username,
		FullName: req.FullName,
		Email:    req.Email,
		Mobile:   req.Mobile,
		Role:     req.Role,
	}, req.Projects)
	if err != nil {
		return nil, writeConflict(err, "already in use by another user")
	}

	core.AddSpanEvent(ctx, "user.updated",
		attribute.Int64("user.id", id),
		attribute.Bool("user.projects_replaced", req.Projects != nil),
	)

	return updated, nil
}

// DeleteUser removes a user and their assignments. Admins cannot remove
// their own account.
func (s *Service) DeleteUser(
	ctx context.Context,
	requesterID, targetID int64,
) error {
	if requesterID == targetID {
		return core.ForbiddenError("Admins cannot delete their own account")
	}

	if err := s.repo.Delete(ctx, targetID); err != nil {
		return err
	}

	core.AddSpanEvent(ctx, "user.deleted", attribute.Int64("user.id", targetID))
	return nil
}

// BootstrapAdmin creates an Admin without project assignments unless the
// username or email is already taken. It reports whether a user was made.
func (s *Service) BootstrapAdmin(
	ctx context.Context,
	req BootstrapAdminRequest,
) (int64, bool, error) {
	req.Email = normalizeEmail(req.Email)

	if err := s.validate.Struct(req); err != nil {
		return 0, false, core.ValidationError(core.ValidationMessages(err))
	}

	conflicts, err := s.repo.FindConflicts(ctx, req.Username, req.Email, 0)
	if err != nil {
		return 0, false, err
	}
	if conflicts.Any() {
		return 0, false, nil
	}

	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return 0, false, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		Username:     req.Username,
		FullName:     req.FullName,
		Email:        req.Email,
		Mobile:       req.Mobile,
		Role:         RoleAdmin,
		PasswordHash: passwordHash,
	}
	if err := s.repo.CreateWithProjects(ctx, user, nil); err != nil {
		return 0, false, err
	}

	return user.ID, true, nil
}

func (s *Service) CountByRole(ctx context.Context) (map[string]int64, error) {
	return s.repo.CountByRole(ctx)
}

func (s *Service) GetCredentialsByEmail(
	ctx context.Context,
	email string,
) (*auth.Credentials, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}

	return &auth.Credentials{
		UserID:       user.ID,
		Username:     user.Username,
		FullName:     user.FullName,
		Role:         user.Role,
		PasswordHash: user.PasswordHash,
	}, nil
}

func (s *Service) UpdatePasswordHash(
	ctx context.Context,
	userID int64,
	passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func checkDuplicateProjects(projects []ProjectInput) error {
	seen := make(map[int64]struct{}, len(projects))
	var details []string

	for _, p := range projects {
		if _, dup := seen[p.ProjectID]; dup {
			details = append(details, fmt.Sprintf(
				"Duplicate project_id: %d. Each project can be assigned once.",
				p.ProjectID,
			))
			continue
		}
		seen[p.ProjectID] = struct{}{}
	}

	if len(details) > 0 {
		return core.ValidationError(details)
	}
	return nil
}

func conflictMessages(c Conflicts, suffix string) []string {
	var msgs []string
	if c.Username {
		msgs = append(msgs, "Username "+suffix)
	}
	if c.Email {
		msgs = append(msgs, "Email "+suffix)
	}
	return msgs
}

// writeConflict turns a unique violation that slipped past the pre-check
// into the same answer the pre-check would have given.
func writeConflict(err error, suffix string) error {
	switch {
	case errors.Is(err, ErrUsernameTaken):
		return core.ConflictError(conflictMessages(Conflicts{Username: true}, suffix))
	case errors.Is(err, ErrEmailTaken):
		return core.ConflictError(conflictMessages(Conflicts{Email: true}, suffix))
	case errors.Is(err, core.ErrInvalidInput):
		return core.ValidationError([]string{"Each project can be assigned once"})
	default:
		return err
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var _ auth.CredentialStore = (*Service)(nil)
