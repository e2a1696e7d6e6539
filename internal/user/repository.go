// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/templates/admin-console/internal/core"
)

var (
	ErrUsernameTaken = fmt.Errorf("username taken: %w", core.ErrDuplicateKey)
	ErrEmailTaken    = fmt.Errorf("email taken: %w", core.ErrDuplicateKey)
)

// ProjectNotFoundError names the first project id of a request that does
// not exist. It matches core.ErrNotFound.
type ProjectNotFoundError struct {
	ProjectID int64
}

func (e *ProjectNotFoundError) Error() string {
	return fmt.Sprintf(
		"Invalid project_id: %d. Project does not exist.",
		e.ProjectID,
	)
}

func (e *ProjectNotFoundError) Unwrap() error {
	return core.ErrNotFound
}

// Conflicts reports which unique fields already belong to another user.
type Conflicts struct {
	Username bool
	Email    bool
}

func (c Conflicts) Any() bool {
	return c.Username || c.Email
}

// Changes holds the columns of a partial update. Nil leaves a column as is.
type Changes struct {
	Username *string
	FullName *string
	Email    *string
	Mobile   *string
	Role     *string
}

type Repository interface {
	CreateWithProjects(ctx context.Context, user *User, projects []ProjectInput) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetAssignments(ctx context.Context, userID int64) ([]Assignment, error)
	List(ctx context.Context, params ListUsersParams) ([]User, error)
	FindConflicts(ctx context.Context, username, email string, excludeID int64) (Conflicts, error)
	Update(ctx context.Context, id int64, changes Changes, projects []ProjectInput) (*User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error
	CountByRole(ctx context.Context) (map[string]int64, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const userColumns = `user_id, username, full_name, email, mobile, role,
		       created_at, updated_at`

// CreateWithProjects inserts the user and every assignment in one
// transaction. A missing project aborts the whole write.
func (r *repository) CreateWithProjects(
	ctx context.Context,
	user *User,
	projects []ProjectInput,
) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO users (username, full_name, email, mobile, role, password_hash)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING user_id, created_at, updated_at`

		err := tx.GetContext(ctx, user, query,
			user.Username,
			user.FullName,
			user.Email,
			user.Mobile,
			user.Role,
			user.PasswordHash,
		)
		if err != nil {
			return fmt.Errorf("create user: %w", mapWriteError(err))
		}

		return insertAssignments(ctx, tx, user.ID, projects)
	})
}

func insertAssignments(
	ctx context.Context,
	tx *sqlx.Tx,
	userID int64,
	projects []ProjectInput,
) error {
	for _, p := range projects {
		var exists bool
		err := tx.GetContext(ctx, &exists,
			`SELECT EXISTS(SELECT 1 FROM projects WHERE project_id = $1)`,
			p.ProjectID,
		)
		if err != nil {
			return fmt.Errorf("check project %d: %w", p.ProjectID, err)
		}
		if !exists {
			return &ProjectNotFoundError{ProjectID: p.ProjectID}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO user_projects (user_id, project_id, support_type)
			VALUES ($1, $2, $3)`,
			userID, p.ProjectID, p.SupportType,
		)
		if err != nil {
			if core.IsForeignKeyViolation(err) {
				return &ProjectNotFoundError{ProjectID: p.ProjectID}
			}
			return fmt.Errorf("assign project %d: %w", p.ProjectID, mapWriteError(err))
		}
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	query := `SELECT ` + userColumns + `, password_hash
		FROM users
		WHERE email = $1`

	var user User
	err := r.db.GetContext(ctx, &user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return &user, nil
}

func (r *repository) GetAssignments(
	ctx context.Context,
	userID int64,
) ([]Assignment, error) {
	query := `
		SELECT p.project_id, p.project_name, up.support_type
		FROM user_projects up
		JOIN projects p ON p.project_id = up.project_id
		WHERE up.user_id = $1
		ORDER BY p.project_name`

	assignments := []Assignment{}
	if err := r.db.SelectContext(ctx, &assignments, query, userID); err != nil {
		return nil, fmt.Errorf("get assignments: %w", err)
	}

	return assignments, nil
}

// List returns users newest first. There is no pagination.
func (r *repository) List(
	ctx context.Context,
	params ListUsersParams,
) ([]User, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(username ILIKE $%d OR full_name ILIKE $%d OR email ILIKE $%d)",
			argIdx, argIdx, argIdx))
		args = append(args, "%"+escapeLike(params.Search)+"%")
		argIdx++
	}

	if params.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", argIdx))
		args = append(args, params.Role)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		%s
		ORDER BY created_at DESC, user_id DESC`,
		userColumns, whereClause)

	users := []User{}
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return users, nil
}

// FindConflicts checks username and email against every user except
// excludeID. Pass 0 when creating.
func (r *repository) FindConflicts(
	ctx context.Context,
	username, email string,
	excludeID int64,
) (Conflicts, error) {
	var found Conflicts
	if username == "" && email == "" {
		return found, nil
	}

	query := `
		SELECT username, email
		FROM users
		WHERE (username = $1 OR email = $2) AND user_id <> $3`

	var rows []struct {
		Username string `db:"username"`
		Email    string `db:"email"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, username, email, excludeID); err != nil {
		return found, fmt.Errorf("find conflicts: %w", err)
	}

	for _, row := range rows {
		if username != "" && row.Username == username {
			found.Username = true
		}
		if email != "" && row.Email == email {
			found.Email = true
		}
	}

	return found, nil
}

// Update applies changes and, when projects is non-nil, replaces the
// user's assignments, all in one transaction. It returns the merged row.
func (r *repository) Update(
	ctx context.Context,
	id int64,
	changes Changes,
	projects []ProjectInput,
) (*User, error) {
	var updated User

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			UPDATE users
			SET username   = COALESCE($2, username),
			    full_name  = COALESCE($3, full_name),
			    email      = COALESCE($4, email),
			    mobile     = COALESCE($5, mobile),
			    role       = COALESCE($6, role),
			    updated_at = NOW()
			WHERE user_id = $1
			RETURNING ` + userColumns

		err := tx.GetContext(ctx, &updated, query,
			id,
			nullable(changes.Username),
			nullable(changes.FullName),
			nullable(changes.Email),
			nullable(changes.Mobile),
			nullable(changes.Role),
		)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("update user: %w", core.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("update user: %w", mapWriteError(err))
		}

		if projects == nil {
			return nil
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM user_projects WHERE user_id = $1`, id,
		); err != nil {
			return fmt.Errorf("clear assignments: %w", err)
		}

		return insertAssignments(ctx, tx, id, projects)
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	id int64,
	passwordHash string,
) error {
	query := `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE user_id = $1`

	result, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}

	return nil
}

// Delete removes the user's assignments and then the user. The row lock
// keeps a concurrent create-assignment from slipping in between.
func (r *repository) Delete(ctx context.Context, id int64) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var locked int64
		err := tx.GetContext(ctx, &locked,
			`SELECT user_id FROM users WHERE user_id = $1 FOR UPDATE`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("delete user: %w", core.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM user_projects WHERE user_id = $1`, id,
		); err != nil {
			return fmt.Errorf("delete assignments: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM users WHERE user_id = $1`, id,
		); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}

		return nil
	})
}

func (r *repository) CountByRole(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Role  string `db:"role"`
		Count int64  `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &rows,
		`SELECT role, COUNT(*) AS count FROM users GROUP BY role`,
	); err != nil {
		return nil, fmt.Errorf("count users by role: %w", err)
	}

	counts := make(map[string]int64, len(Roles))
	for _, role := range Roles {
		counts[role] = 0
	}
	for _, row := range rows {
		counts[row.Role] = row.Count
	}

	return counts, nil
}

func mapWriteError(err error) error {
	if !core.IsUniqueViolation(err) {
		return err
	}

	switch core.ConstraintName(err) {
	case "users_username_key":
		return ErrUsernameTaken
	case "users_email_key":
		return ErrEmailTaken
	case "user_projects_pkey":
		return fmt.Errorf("project assigned twice: %w", core.ErrInvalidInput)
	default:
		return fmt.Errorf("%w: %w", core.ErrDuplicateKey, err)
	}
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
